package reactive

import "slices"

// Object is an ordered string-keyed container. Once observed, each property
// is backed by its own Dep and reads/writes through Get/Set are tracked.
type Object struct {
	rs     *System
	keys   []string
	props  map[string]*property
	ob     *Observer
	raw    bool
	frozen bool
}

type property struct {
	value  any
	getter func() any
	setter func(any)
	fixed  bool

	dep          *Dep
	childOb      *Observer
	shallow      bool
	customSetter func()
}

// Descriptor describes a property installed with DefineProperty. Get/Set
// define an accessor pair; Fixed marks the property non-configurable so it
// can never be made reactive.
type Descriptor struct {
	Value any
	Get   func() any
	Set   func(any)
	Fixed bool
}

// NewObject copies m into a new unobserved Object. Nested maps and slices are
// converted to containers too.
func (rs *System) NewObject(m map[string]any) *Object {
	o := &Object{
		rs:    rs,
		props: make(map[string]*property, len(m)),
	}
	for _, k := range sortedKeys(m) {
		o.keys = append(o.keys, k)
		o.props[k] = &property{value: rs.normalize(m[k])}
	}
	return o
}

// Reactive builds an Object from m and observes it.
func (rs *System) Reactive(m map[string]any) *Object {
	o := rs.NewObject(m)
	rs.Observe(o)
	return o
}

func (o *Object) Observer() *Observer {
	return o.ob
}

// MarkRaw flags the object so it is never observed.
func (o *Object) MarkRaw() *Object {
	o.raw = true
	return o
}

// Freeze makes the object non-extensible: it will not be observed and no new
// keys can be added.
func (o *Object) Freeze() *Object {
	o.frozen = true
	return o
}

func (o *Object) Frozen() bool {
	return o.frozen
}

// dependShape registers interest in the set of keys.
func (o *Object) dependShape() {
	if o.ob != nil && o.rs.target != nil {
		o.ob.dep.Depend()
	}
}

func (o *Object) Has(key string) bool {
	o.dependShape()
	_, ok := o.props[key]
	return ok
}

// Get reads key. Reading a missing key on an observed object makes the active
// watcher depend on the object's shape.
func (o *Object) Get(key string) any {
	p, ok := o.props[key]
	if !ok {
		o.dependShape()
		return nil
	}
	return p.get(o.rs)
}

// Set assigns to key. A new key is added as a plain property and does not
// notify anyone; use System.Set for reactive additions.
func (o *Object) Set(key string, v any) {
	p, ok := o.props[key]
	if !ok {
		if o.frozen {
			return
		}
		o.keys = append(o.keys, key)
		o.props[key] = &property{value: o.rs.normalize(v)}
		return
	}
	p.set(o.rs, v)
}

func (o *Object) Keys() []string {
	o.dependShape()
	return slices.Clone(o.keys)
}

func (o *Object) Len() int {
	o.dependShape()
	return len(o.keys)
}

// DefineProperty installs or replaces key with the given descriptor. Fixed
// properties cannot be redefined.
func (o *Object) DefineProperty(key string, d Descriptor) bool {
	p, ok := o.props[key]
	switch {
	case ok && p.fixed:
		return false
	case !ok && o.frozen:
		return false
	case !ok:
		o.keys = append(o.keys, key)
	}
	o.props[key] = &property{
		value:  o.rs.normalize(d.Value),
		getter: d.Get,
		setter: d.Set,
		fixed:  d.Fixed,
	}
	return true
}

// Delete removes key without notifying anyone.
func (o *Object) Delete(key string) bool {
	p, ok := o.props[key]
	if !ok || p.fixed {
		return false
	}
	delete(o.props, key)
	o.keys = slices.DeleteFunc(o.keys, func(k string) bool { return k == key })
	return true
}

// Dep returns the dep for key, nil if the property is not reactive.
func (o *Object) Dep(key string) *Dep {
	if p, ok := o.props[key]; ok {
		return p.dep
	}
	return nil
}

func (p *property) current() any {
	if p.getter != nil {
		return p.getter()
	}
	return p.value
}

func (p *property) get(rs *System) any {
	value := p.current()
	if p.dep != nil && rs.target != nil {
		p.dep.Depend()
		if p.childOb != nil {
			p.childOb.dep.Depend()
			if arr, ok := value.(*Array); ok {
				dependArray(arr)
			}
		}
	}
	return value
}

func (p *property) set(rs *System, newVal any) {
	newVal = rs.normalize(newVal)
	value := p.current()
	if !hasChanged(newVal, value) {
		return
	}
	if p.dep == nil {
		// plain property
		if p.setter != nil {
			p.setter(newVal)
		} else if p.getter == nil {
			p.value = newVal
		}
		return
	}
	if p.customSetter != nil && !rs.production {
		p.customSetter()
	}
	if p.getter != nil && p.setter == nil {
		return
	}
	if p.setter != nil {
		p.setter(newVal)
	} else {
		p.value = newVal
	}
	if !p.shallow {
		p.childOb = rs.Observe(newVal)
	}
	p.dep.Notify()
}
