package reactive

import (
	"fmt"
	"slices"
	"strings"
)

// Array is a list container. Once observed, the mutating methods Push, Pop,
// Shift, Unshift, Splice, Sort and Reverse observe inserted elements and
// notify the array's Dep. SetIndex and Truncate are not intercepted.
type Array struct {
	rs     *System
	items  []any
	ob     *Observer
	raw    bool
	frozen bool
}

// NewArray builds an unobserved Array. Plain maps and slices among items are
// converted to containers.
func (rs *System) NewArray(items ...any) *Array {
	a := &Array{rs: rs, items: make([]any, len(items))}
	for i, v := range items {
		a.items[i] = rs.normalize(v)
	}
	return a
}

func (a *Array) Observer() *Observer {
	return a.ob
}

func (a *Array) MarkRaw() *Array {
	a.raw = true
	return a
}

func (a *Array) Freeze() *Array {
	a.frozen = true
	return a
}

func (a *Array) depend() {
	if a.ob != nil && a.rs.target != nil {
		a.ob.dep.Depend()
	}
}

func (a *Array) Len() int {
	a.depend()
	return len(a.items)
}

// At returns the element at i, nil when out of range.
func (a *Array) At(i int) any {
	a.depend()
	if i < 0 || i >= len(a.items) {
		return nil
	}
	return a.items[i]
}

// Items returns a copy of the elements.
func (a *Array) Items() []any {
	a.depend()
	return slices.Clone(a.items)
}

// SetIndex writes directly to an index. Nobody is notified; use System.Set
// for a reactive replacement.
func (a *Array) SetIndex(i int, v any) {
	if a.frozen || i < 0 || i >= len(a.items) {
		return
	}
	a.items[i] = a.rs.normalize(v)
}

// Truncate shortens the array without notifying anyone.
func (a *Array) Truncate(n int) {
	if a.frozen || n < 0 || n >= len(a.items) {
		return
	}
	clear(a.items[n:])
	a.items = a.items[:n]
}

func (a *Array) mutated(inserted []any) {
	if a.ob == nil {
		return
	}
	if len(inserted) > 0 {
		a.ob.observeArray(inserted)
	}
	a.ob.dep.Notify()
}

func (a *Array) normalizeAll(vals []any) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = a.rs.normalize(v)
	}
	return out
}

// Push appends vals and returns the new length.
func (a *Array) Push(vals ...any) int {
	if a.frozen {
		return len(a.items)
	}
	vals = a.normalizeAll(vals)
	a.items = append(a.items, vals...)
	a.mutated(vals)
	return len(a.items)
}

// Pop removes and returns the last element.
func (a *Array) Pop() any {
	if a.frozen {
		return nil
	}
	var last any
	if n := len(a.items); n > 0 {
		last = a.items[n-1]
		a.items[n-1] = nil
		a.items = a.items[:n-1]
	}
	a.mutated(nil)
	return last
}

// Shift removes and returns the first element.
func (a *Array) Shift() any {
	if a.frozen {
		return nil
	}
	var first any
	if len(a.items) > 0 {
		first = a.items[0]
		a.items = slices.Delete(a.items, 0, 1)
	}
	a.mutated(nil)
	return first
}

// Unshift prepends vals and returns the new length.
func (a *Array) Unshift(vals ...any) int {
	if a.frozen {
		return len(a.items)
	}
	vals = a.normalizeAll(vals)
	a.items = slices.Insert(a.items, 0, vals...)
	a.mutated(vals)
	return len(a.items)
}

// Splice removes deleteCount elements starting at start, inserts vals in their
// place and returns the removed elements. A negative start counts from the
// end.
func (a *Array) Splice(start, deleteCount int, vals ...any) []any {
	if a.frozen {
		return nil
	}
	n := len(a.items)
	if start < 0 {
		start = max(n+start, 0)
	}
	start = min(start, n)
	deleteCount = min(max(deleteCount, 0), n-start)

	removed := slices.Clone(a.items[start : start+deleteCount])
	vals = a.normalizeAll(vals)
	a.items = slices.Replace(a.items, start, start+deleteCount, vals...)
	a.mutated(vals)
	return removed
}

// Sort sorts in place with cmp. A nil cmp compares the string forms of the
// elements.
func (a *Array) Sort(cmp func(x, y any) int) {
	if a.frozen {
		return
	}
	if cmp == nil {
		cmp = func(x, y any) int {
			return strings.Compare(fmt.Sprint(x), fmt.Sprint(y))
		}
	}
	slices.SortStableFunc(a.items, cmp)
	a.mutated(nil)
}

func (a *Array) Reverse() {
	if a.frozen {
		return
	}
	slices.Reverse(a.items)
	a.mutated(nil)
}

// dependArray registers the active watcher with every observed element,
// recursing into nested arrays, since element access is not tracked.
func dependArray(a *Array) {
	for _, e := range a.items {
		switch e := e.(type) {
		case *Object:
			if e.ob != nil {
				e.ob.dep.Depend()
			}
		case *Array:
			if e.ob != nil {
				e.ob.dep.Depend()
			}
			dependArray(e)
		}
	}
}
