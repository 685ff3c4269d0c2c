package reactive

// Observer is attached to each observed container. It owns the container's
// Dep, which is notified on structural changes (keys added or removed,
// array mutations).
type Observer struct {
	value     any
	dep       *Dep
	rootCount int
}

func (ob *Observer) Value() any {
	return ob.value
}

func (ob *Observer) Dep() *Dep {
	return ob.dep
}

// RootCount is the number of owners using this container as root data.
func (ob *Observer) RootCount() int {
	return ob.rootCount
}

// ReleaseRoot undoes one ObserveRoot.
func (ob *Observer) ReleaseRoot() {
	if ob.rootCount > 0 {
		ob.rootCount--
	}
}

// Observe attaches an Observer to value, or returns the one it already has.
// Leaf values, raw or frozen containers and anything seen while observation
// is switched off are left alone and yield nil.
func (rs *System) Observe(value any) *Observer {
	switch c := value.(type) {
	case *Object:
		if c.ob != nil {
			return c.ob
		}
		if !rs.observing || c.raw || c.frozen {
			return nil
		}
		ob := &Observer{value: c, dep: newDep(rs)}
		c.ob = ob
		ob.walk(c)
		return ob
	case *Array:
		if c.ob != nil {
			return c.ob
		}
		if !rs.observing || c.raw || c.frozen {
			return nil
		}
		ob := &Observer{value: c, dep: newDep(rs)}
		c.ob = ob
		ob.observeArray(c.items)
		return ob
	default:
		return nil
	}
}

// ObserveRoot is Observe for a container used as an owner's root data.
// Adding or deleting keys on root data at runtime is diagnosed instead of
// performed.
func (rs *System) ObserveRoot(value any) *Observer {
	ob := rs.Observe(value)
	if ob != nil {
		ob.rootCount++
	}
	return ob
}

func (ob *Observer) walk(o *Object) {
	for _, key := range o.keys {
		p := o.props[key]
		o.rs.DefineReactive(o, key, p.value)
	}
}

func (ob *Observer) observeArray(items []any) {
	for _, item := range items {
		ob.dep.rs.Observe(item)
	}
}

type defineConfig struct {
	customSetter func()
	shallow      bool
}

type DefineOption func(*defineConfig)

// WithCustomSetter registers a hook run before every effective write, used
// to flag writes that should not happen. It is skipped in production mode.
func WithCustomSetter(fn func()) DefineOption {
	return func(c *defineConfig) {
		c.customSetter = fn
	}
}

// Shallow stops the property's value from being observed.
func Shallow() DefineOption {
	return func(c *defineConfig) {
		c.shallow = true
	}
}

// DefineReactive turns key on obj into a tracked property holding val. An
// existing accessor pair is kept and wrapped. Fixed properties, and new keys
// on frozen objects, are skipped.
func (rs *System) DefineReactive(obj *Object, key string, val any, opts ...DefineOption) {
	cfg := defineConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	p, ok := obj.props[key]
	switch {
	case ok && p.fixed:
		return
	case !ok && obj.frozen:
		return
	case !ok:
		obj.keys = append(obj.keys, key)
		p = &property{}
		obj.props[key] = p
	}

	p.value = rs.normalize(val)
	p.dep = newDep(rs)
	p.shallow = cfg.shallow
	p.customSetter = cfg.customSetter
	p.childOb = nil
	if !cfg.shallow && (p.getter == nil || p.setter != nil) {
		p.childOb = rs.Observe(p.current())
	}
}
