package reactive

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

// Getter is the function a watcher tracks.
type Getter func() (any, error)

// Callback receives the new and previous value of a watcher.
type Callback func(newValue, oldValue any) error

type WatchOptions struct {
	// Lazy watchers only mark themselves dirty when notified and recompute on
	// the next read.
	Lazy bool
	// User watchers belong to user code; their errors are reported with the
	// watcher's expression.
	User bool
	// Sync watchers re-run inside the notification instead of being queued.
	Sync bool
	// Deep watchers depend on everything reachable from their value.
	Deep bool
	// Immediate invokes the callback once with the initial value.
	Immediate bool
	// Before runs ahead of each scheduled re-run.
	Before func()
	// Expression names the watcher in diagnostics.
	Expression string
}

// Watcher is one reactive computation. It records the deps touched while its
// getter runs and is notified through Update when any of them changes.
type Watcher struct {
	rs         *System
	id         uint64
	owner      any
	expression string
	getter     Getter
	cb         Callback
	before     func()

	deep, user, lazy, sync bool
	dirty                  bool
	active                 bool
	running, pending       bool

	deps      []*Dep
	newDeps   []*Dep
	depIDs    mapset.Set[uint64]
	newDepIDs mapset.Set[uint64]

	value any
}

// Watch creates a watcher for getter. Unless opts.Lazy is set the getter runs
// immediately to collect dependencies and establish the initial value.
func (rs *System) Watch(owner any, getter Getter, cb Callback, opts WatchOptions) *Watcher {
	rs.lastWatcherID++
	w := &Watcher{
		rs:         rs,
		id:         rs.lastWatcherID,
		owner:      owner,
		expression: opts.Expression,
		getter:     getter,
		cb:         cb,
		before:     opts.Before,
		deep:       opts.Deep,
		user:       opts.User,
		lazy:       opts.Lazy,
		sync:       opts.Sync,
		dirty:      opts.Lazy,
		active:     true,
		depIDs:     mapset.NewThreadUnsafeSet[uint64](),
		newDepIDs:  mapset.NewThreadUnsafeSet[uint64](),
	}
	if w.expression == "" {
		w.expression = fmt.Sprintf("watcher#%d", w.id)
	}
	if w.getter == nil {
		w.getter = func() (any, error) { return nil, nil }
	}
	if !w.lazy {
		w.running = true
		w.value = w.get()
		w.running = false
		if w.pending {
			w.Run()
		}
	}
	if opts.Immediate && cb != nil {
		info := fmt.Sprintf("callback for immediate watcher %q", w.expression)
		rs.Untrack(func() {
			rs.invoke(func() error { return cb(w.value, nil) }, owner, info)
		})
	}
	return w
}

func (w *Watcher) ID() uint64 {
	return w.id
}

func (w *Watcher) Owner() any {
	return w.owner
}

func (w *Watcher) Expression() string {
	return w.expression
}

func (w *Watcher) Dirty() bool {
	return w.dirty
}

func (w *Watcher) Active() bool {
	return w.active
}

func (w *Watcher) Lazy() bool {
	return w.lazy
}

func (w *Watcher) User() bool {
	return w.user
}

// Before runs the pre-update hook, if any.
func (w *Watcher) Before() {
	if w.before != nil {
		w.before()
	}
}

// Deps returns the deps collected by the most recent run.
func (w *Watcher) Deps() []*Dep {
	out := make([]*Dep, len(w.deps))
	copy(out, w.deps)
	return out
}

// get runs the getter with w as the active watcher and reconciles deps.
// Errors and panics are reported, never propagated.
func (w *Watcher) get() (value any) {
	w.rs.pushTarget(w)
	defer func() {
		if r := recover(); r != nil {
			w.rs.handleError(panicError(r), w.owner, w.getterInfo())
			value = nil
		}
		if w.deep {
			traverse(value)
		}
		w.rs.popTarget()
		w.cleanupDeps()
	}()

	v, err := w.getter()
	if err != nil {
		w.rs.handleError(err, w.owner, w.getterInfo())
		return nil
	}
	return v
}

func (w *Watcher) getterInfo() string {
	if w.user {
		return fmt.Sprintf("getter for watcher %q", w.expression)
	}
	return fmt.Sprintf("getter for %q", w.expression)
}

func (w *Watcher) addDep(d *Dep) {
	id := d.id
	if !w.active || w.newDepIDs.Contains(id) {
		return
	}
	w.newDepIDs.Add(id)
	w.newDeps = append(w.newDeps, d)
	if !w.depIDs.Contains(id) {
		d.AddSub(w)
	}
}

// cleanupDeps drops subscriptions not touched by the last run and makes the
// new dep list the baseline.
func (w *Watcher) cleanupDeps() {
	for _, d := range w.deps {
		if !w.newDepIDs.Contains(d.id) {
			d.RemoveSub(w)
		}
	}
	w.depIDs, w.newDepIDs = w.newDepIDs, w.depIDs
	w.newDepIDs.Clear()
	w.deps, w.newDeps = w.newDeps, w.deps
	clear(w.newDeps)
	w.newDeps = w.newDeps[:0]
}

// Update is called by a Dep when something the watcher read has changed.
func (w *Watcher) Update() {
	if !w.active {
		return
	}
	switch {
	case w.lazy:
		w.dirty = true
	case w.sync:
		w.Run()
	case w.rs.scheduler != nil:
		w.rs.scheduler.Queue(w)
	default:
		w.Run()
	}
}

// Run re-evaluates the watcher and invokes the callback when the value
// changed, is a container, or the watcher is deep. A Run requested while one
// is in progress is deferred and performed after it, up to MaxUpdateCount
// times in a row.
func (w *Watcher) Run() {
	if !w.active {
		return
	}
	if w.running {
		w.pending = true
		return
	}
	w.running = true
	defer func() { w.running = false }()

	for runs := 0; ; runs++ {
		w.pending = false
		w.run()
		if !w.pending || !w.active {
			return
		}
		if runs >= MaxUpdateCount {
			w.pending = false
			err := fmt.Errorf("%w in watcher %q", ErrInfiniteUpdate, w.expression)
			w.rs.handleError(err, w.owner, fmt.Sprintf("update loop for watcher %q", w.expression))
			return
		}
	}
}

func (w *Watcher) run() {
	value := w.get()
	if hasChanged(value, w.value) || isObject(value) || w.deep {
		oldValue := w.value
		w.value = value
		if w.cb != nil {
			info := fmt.Sprintf("callback for watcher %q", w.expression)
			w.rs.invoke(func() error { return w.cb(value, oldValue) }, w.owner, info)
		}
	}
}

// Evaluate recomputes the value unconditionally and clears the dirty flag.
func (w *Watcher) Evaluate() any {
	w.value = w.get()
	w.dirty = false
	return w.value
}

// Value returns the cached value. For lazy watchers it recomputes when dirty
// and makes the active watcher, if any, depend on everything this one
// depends on.
func (w *Watcher) Value() any {
	if w.lazy {
		if w.dirty {
			w.Evaluate()
		}
		if w.rs.target != nil {
			w.Depend()
		}
	}
	return w.value
}

// Depend registers the active watcher with every dep held by w.
func (w *Watcher) Depend() {
	for i := len(w.deps) - 1; i >= 0; i-- {
		w.deps[i].Depend()
	}
}

// Teardown unsubscribes w from every dep. It is idempotent.
func (w *Watcher) Teardown() {
	if !w.active {
		return
	}
	for i := len(w.deps) - 1; i >= 0; i-- {
		w.deps[i].RemoveSub(w)
	}
	w.deps = nil
	w.depIDs.Clear()
	w.active = false
}
