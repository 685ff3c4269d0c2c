package reactive

import "slices"

// Dep is the set of watchers interested in one property or one container.
type Dep struct {
	rs   *System
	id   uint64
	subs []*Watcher
}

func newDep(rs *System) *Dep {
	rs.lastDepID++
	return &Dep{rs: rs, id: rs.lastDepID}
}

func (d *Dep) ID() uint64 {
	return d.id
}

func (d *Dep) AddSub(w *Watcher) {
	d.subs = append(d.subs, w)
}

func (d *Dep) RemoveSub(w *Watcher) {
	if i := slices.Index(d.subs, w); i >= 0 {
		d.subs = slices.Delete(d.subs, i, i+1)
	}
}

// Depend registers the active watcher, if any, with this dep and the dep with
// the watcher.
func (d *Dep) Depend() {
	if t := d.rs.target; t != nil {
		t.addDep(d)
	}
}

// Notify calls Update on every subscriber in registration order, lazy ones
// first. The subscriber list is snapshotted first so that watchers re-running during the
// fan-out can re-register without disturbing it.
func (d *Dep) Notify() {
	updateAll(slices.Clone(d.subs))
}

// Subscribers returns a copy of the current subscriber list.
func (d *Dep) Subscribers() []*Watcher {
	return slices.Clone(d.subs)
}

// notifyAll fans out to the union of the deps' subscribers, snapshotted up
// front. A watcher subscribed to several of them is updated once.
func notifyAll(deps ...*Dep) {
	var subs []*Watcher
	for _, d := range deps {
		if d == nil {
			continue
		}
		for _, sub := range d.subs {
			if !slices.Contains(subs, sub) {
				subs = append(subs, sub)
			}
		}
	}
	updateAll(subs)
}

// updateAll marks lazy subscribers dirty before any other subscriber runs, so
// an eager watcher re-running synchronously never reads a stale cached value.
func updateAll(subs []*Watcher) {
	for _, sub := range subs {
		if sub.lazy {
			sub.Update()
		}
	}
	for _, sub := range subs {
		if !sub.lazy {
			sub.Update()
		}
	}
}
