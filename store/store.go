// Package store wires root data, computed properties and watches on top of
// the reactive core, the way a component instance does.
package store

import (
	"errors"
	"fmt"
	"slices"

	"github.com/delaneyj/watchparty/reactive"
)

var ErrDataFactory = errors.New("store: data factory failed")

// Computed defines a cached derived property. Set is optional; a computed
// without one is read-only. NoCache computeds run Get on every read and the
// reader depends directly on what Get reads.
type Computed struct {
	Get     func(s *Store) (any, error)
	Set     func(s *Store, v any) error
	NoCache bool
}

// Handler is one declarative watch on a path.
type Handler struct {
	Fn        func(s *Store, newValue, oldValue any) error
	Deep      bool
	Immediate bool
	Sync      bool
}

type Options struct {
	Name     string
	Data     func() (map[string]any, error)
	Computed map[string]Computed
	Watch    map[string][]Handler
}

type Store struct {
	rs        *reactive.System
	name      string
	data      *reactive.Object
	computed  map[string]*computedProp
	watchers  []*reactive.Watcher
	destroyed bool
}

type computedProp struct {
	def     Computed
	watcher *reactive.Watcher
}

// New builds a store. The data factory runs untracked and its result becomes
// root data; computed properties are lazy watchers; declarative watches are
// installed last, in key order.
func New(rs *reactive.System, opts Options) (*Store, error) {
	s := &Store{
		rs:       rs,
		name:     opts.Name,
		computed: map[string]*computedProp{},
	}
	if s.name == "" {
		s.name = "store"
	}

	if err := s.initData(opts.Data); err != nil {
		return nil, err
	}
	s.initComputed(opts.Computed)
	s.initWatch(opts.Watch)
	return s, nil
}

func (s *Store) initData(factory func() (map[string]any, error)) error {
	raw := map[string]any{}
	if factory != nil {
		var err error
		s.rs.Untrack(func() {
			raw, err = factory()
		})
		if err != nil {
			return fmt.Errorf("%w for %s: %w", ErrDataFactory, s.name, err)
		}
		if raw == nil {
			s.rs.Warn("store: data functions should return an object", "store", s.name)
			raw = map[string]any{}
		}
	}
	s.data = s.rs.NewObject(raw)
	s.rs.ObserveRoot(s.data)
	return nil
}

func (s *Store) initComputed(defs map[string]Computed) {
	for _, key := range sortedKeys(defs) {
		def := defs[key]
		if def.Get == nil {
			s.rs.Warn(fmt.Sprintf("store: getter is missing for computed property %q", key), "store", s.name)
			continue
		}
		if s.data.Has(key) {
			s.rs.Warn(fmt.Sprintf("store: the computed property %q is already defined in data", key), "store", s.name)
			continue
		}
		w := s.rs.Watch(s, func() (any, error) {
			return def.Get(s)
		}, nil, reactive.WatchOptions{Lazy: true, Expression: key})
		s.computed[key] = &computedProp{def: def, watcher: w}
		s.watchers = append(s.watchers, w)
	}
}

func (s *Store) initWatch(watch map[string][]Handler) {
	keys := make([]string, 0, len(watch))
	for k := range watch {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, key := range keys {
		for _, h := range watch[key] {
			s.Watch(key, h.Fn, reactive.WatchOptions{
				Deep:      h.Deep,
				Immediate: h.Immediate,
				Sync:      h.Sync,
			})
		}
	}
}

func sortedKeys(m map[string]Computed) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (s *Store) Name() string {
	return s.name
}

func (s *Store) System() *reactive.System {
	return s.rs
}

// Data returns the root data object.
func (s *Store) Data() *reactive.Object {
	return s.data
}

// Get reads a computed property or a data property. Cached computed values
// are recomputed only when dirty and make the active watcher depend on what
// the computed depends on.
func (s *Store) Get(key string) any {
	if c, ok := s.computed[key]; ok {
		if c.def.NoCache {
			return s.getUncached(key, c.def)
		}
		return c.watcher.Value()
	}
	return s.data.Get(key)
}

func (s *Store) getUncached(key string, def Computed) any {
	var v any
	s.rs.Invoke(func() error {
		var err error
		v, err = def.Get(s)
		return err
	}, s, fmt.Sprintf("getter for computed %q", key))
	return v
}

// Set writes a data property or calls a computed setter. Assigning to a
// computed without a setter is diagnosed and ignored.
func (s *Store) Set(key string, v any) {
	if c, ok := s.computed[key]; ok {
		if c.def.Set == nil {
			s.rs.Warn(fmt.Sprintf("store: computed property %q was assigned to but it has no setter", key), "store", s.name)
			return
		}
		s.rs.Invoke(func() error { return c.def.Set(s, v) }, s, fmt.Sprintf("setter for computed %q", key))
		return
	}
	s.data.Set(key, v)
}

// Computed returns the lazy watcher behind a computed property.
func (s *Store) Computed(key string) (*reactive.Watcher, bool) {
	c, ok := s.computed[key]
	if !ok {
		return nil, false
	}
	return c.watcher, true
}

// Watch calls fn whenever the value at path changes. The returned function
// stops the watch.
func (s *Store) Watch(path string, fn func(s *Store, newValue, oldValue any) error, opts reactive.WatchOptions) (unwatch func()) {
	var cb reactive.Callback
	if fn != nil {
		cb = func(newValue, oldValue any) error {
			return fn(s, newValue, oldValue)
		}
	}
	w := s.rs.WatchPath(s, path, cb, opts)
	return s.track(w)
}

// WatchFunc is Watch for an arbitrary getter.
func (s *Store) WatchFunc(getter reactive.Getter, fn func(s *Store, newValue, oldValue any) error, opts reactive.WatchOptions) (unwatch func()) {
	opts.User = true
	var cb reactive.Callback
	if fn != nil {
		cb = func(newValue, oldValue any) error {
			return fn(s, newValue, oldValue)
		}
	}
	w := s.rs.Watch(s, getter, cb, opts)
	return s.track(w)
}

func (s *Store) track(w *reactive.Watcher) func() {
	s.watchers = append(s.watchers, w)
	return func() {
		w.Teardown()
		s.watchers = slices.DeleteFunc(s.watchers, func(x *reactive.Watcher) bool { return x == w })
	}
}

// SetProp adds or replaces key on a nested container reactively.
func (s *Store) SetProp(target any, key any, v any) any {
	return s.rs.Set(target, key, v)
}

// DeleteProp removes key from a nested container reactively.
func (s *Store) DeleteProp(target any, key any) {
	s.rs.Del(target, key)
}

// Watchers returns the watchers owned by the store.
func (s *Store) Watchers() []*reactive.Watcher {
	return slices.Clone(s.watchers)
}

// Destroy tears down every watcher and releases the root data.
func (s *Store) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	for i := len(s.watchers) - 1; i >= 0; i-- {
		s.watchers[i].Teardown()
	}
	s.watchers = nil
	if ob := s.data.Observer(); ob != nil {
		ob.ReleaseRoot()
	}
}
