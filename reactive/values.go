package reactive

import (
	"math"
	"reflect"
	"sort"
)

// normalize turns plain map[string]any and []any values into containers owned
// by rs. Everything else is returned unchanged.
func (rs *System) normalize(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return rs.NewObject(v)
	case []any:
		return rs.NewArray(v...)
	default:
		return v
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// identical reports reference/value identity the way a strict equality
// check would, without panicking on uncomparable dynamic types.
func identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Comparable() {
		return a == b
	}
	switch va.Kind() {
	case reflect.Map:
		return va.UnsafePointer() == vb.UnsafePointer()
	case reflect.Slice:
		return va.UnsafePointer() == vb.UnsafePointer() && va.Len() == vb.Len()
	default:
		// funcs and structs holding uncomparable fields
		return false
	}
}

func isNaN(v any) bool {
	switch f := v.(type) {
	case float64:
		return math.IsNaN(f)
	case float32:
		return math.IsNaN(float64(f))
	}
	return false
}

// hasChanged treats NaN as equal to itself.
func hasChanged(newVal, oldVal any) bool {
	if identical(newVal, oldVal) {
		return false
	}
	return !(isNaN(newVal) && isNaN(oldVal))
}

// isObject reports whether v is a container or reference-like value, for
// which a watcher callback fires even when the reference is unchanged.
func isObject(v any) bool {
	switch v.(type) {
	case nil:
		return false
	case *Object, *Array:
		return true
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer, reflect.Struct:
		return true
	}
	return false
}
