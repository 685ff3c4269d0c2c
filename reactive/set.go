package reactive

import (
	"fmt"
	"math"
	"strconv"
)

// Set adds or replaces key on target so that watchers are notified, which a
// bare Object.Set on a new key or Array.SetIndex would not do. It returns val.
func (rs *System) Set(target any, key any, val any) any {
	switch t := target.(type) {
	case *Array:
		idx, ok := arrayIndex(key)
		if !ok {
			rs.warn("reactive: cannot set non-index key on an array", "key", key)
			return val
		}
		if idx > len(t.items) && !t.frozen {
			t.items = append(t.items, make([]any, idx-len(t.items))...)
		}
		t.Splice(idx, 1, val)
		return val
	case *Object:
		k, ok := key.(string)
		if !ok {
			rs.warn("reactive: object keys must be strings", "key", key)
			return val
		}
		if _, exists := t.props[k]; exists {
			t.Set(k, val)
			return val
		}
		ob := t.ob
		if t.raw || (ob != nil && ob.rootCount > 0) {
			rs.warn("reactive: avoid adding reactive properties to root data at runtime, declare it upfront", "key", k)
			return val
		}
		if ob == nil {
			t.Set(k, val)
			return val
		}
		if t.frozen {
			return val
		}
		rs.DefineReactive(t, k, val)
		ob.dep.Notify()
		return val
	default:
		rs.warn(fmt.Sprintf("reactive: cannot set reactive property on nil or primitive value: %v", target))
		return val
	}
}

// Del removes key from target and notifies watchers.
func (rs *System) Del(target any, key any) {
	switch t := target.(type) {
	case *Array:
		idx, ok := arrayIndex(key)
		if !ok {
			rs.warn("reactive: cannot delete non-index key on an array", "key", key)
			return
		}
		if idx < len(t.items) {
			t.Splice(idx, 1)
		}
	case *Object:
		k, ok := key.(string)
		if !ok {
			return
		}
		ob := t.ob
		if t.raw || (ob != nil && ob.rootCount > 0) {
			rs.warn("reactive: avoid deleting properties on root data, just set it to nil", "key", k)
			return
		}
		p, exists := t.props[k]
		if !exists {
			return
		}
		if !t.Delete(k) {
			return
		}
		if ob == nil {
			return
		}
		notifyAll(p.dep, ob.dep)
	default:
		rs.warn(fmt.Sprintf("reactive: cannot delete reactive property on nil or primitive value: %v", target))
	}
}

func arrayIndex(key any) (int, bool) {
	switch k := key.(type) {
	case int:
		return k, k >= 0
	case int64:
		return int(k), k >= 0 && k <= math.MaxInt
	case uint:
		return int(k), k <= math.MaxInt
	case string:
		i, err := strconv.Atoi(k)
		if err != nil {
			return 0, false
		}
		return i, i >= 0
	}
	return 0, false
}
