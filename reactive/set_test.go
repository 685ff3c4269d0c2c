package reactive_test

import (
	"testing"

	"github.com/delaneyj/watchparty/reactive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// From the end-to-end scenario: root {a: 1, b: {c: 2}} with one eager watcher
// summing a and b.c.
func TestEndToEnd(t *testing.T) {
	h := newHarness(t)
	rs := h.rs

	root := rs.Reactive(map[string]any{
		"a": 1,
		"b": map[string]any{"c": 2},
	})
	runs := 0
	w := rs.Watch(nil, counter(&runs, func() any {
		b := root.Get("b").(*reactive.Object)
		return num(root.Get("a")) + num(b.Get("c"))
	}), nil, reactive.WatchOptions{})
	assert.Equal(t, 3, w.Value())
	assert.Equal(t, 1, runs)

	root.Get("b").(*reactive.Object).Set("c", 5)
	assert.Equal(t, 2, runs)
	assert.Equal(t, 6, w.Value())

	root.Set("b", map[string]any{"c": 5})
	assert.Equal(t, 3, runs)
	assert.Equal(t, 6, w.Value())

	fresh := root.Get("b").(*reactive.Object)
	fresh.Set("c", 7)
	assert.Equal(t, 4, runs)
	assert.Equal(t, 8, w.Value())

	rs.Del(root, "a")
	assert.Equal(t, 5, runs)
	assert.Equal(t, 7, w.Value())
	assert.False(t, root.Has("a"))

	rs.Set(root, "a", 10)
	assert.Equal(t, 6, runs)
	assert.Equal(t, 17, w.Value())

	root.Set("a", 11)
	assert.Equal(t, 7, runs, "the re-added key is reactive")
	h.assertNoErrors(t)
}

func TestSetOnNestedObjectAddsReactiveKey(t *testing.T) {
	rs := newHarness(t).rs

	root := rs.Reactive(map[string]any{"nested": map[string]any{}})
	calls := 0
	rs.Watch(nil, counter(&calls, func() any {
		return root.Get("nested").(*reactive.Object).Len()
	}), nil, reactive.WatchOptions{})

	nested := root.Get("nested").(*reactive.Object)
	assert.Equal(t, "v", rs.Set(nested, "k", "v"))
	assert.Equal(t, 2, calls)
	assert.NotNil(t, nested.Dep("k"))

	rs.Set(nested, "k", "w")
	assert.Equal(t, "w", nested.Get("k"))

	rs.Del(nested, "k")
	assert.Equal(t, 3, calls)
	assert.False(t, nested.Has("k"))

	rs.Del(nested, "missing")
	assert.Equal(t, 3, calls)
}

// Root data and nested objects deliberately behave differently: adding or
// deleting keys on root data is diagnosed and skipped.
func TestRootDataRejectsRuntimeKeys(t *testing.T) {
	h := newHarness(t)
	rs := h.rs

	root := rs.NewObject(map[string]any{"a": 1})
	ob := rs.ObserveRoot(root)
	require.NotNil(t, ob)
	assert.Equal(t, 1, ob.RootCount())

	rs.Set(root, "b", 2)
	assert.False(t, root.Has("b"))
	assert.Contains(t, h.logs.String(), "declare it upfront")

	rs.Del(root, "a")
	assert.True(t, root.Has("a"))
	assert.Contains(t, h.logs.String(), "just set it to nil")

	rs.Set(root, "a", 3)
	assert.Equal(t, 3, root.Get("a"), "existing keys are plain writes")

	ob.ReleaseRoot()
	rs.Set(root, "b", 2)
	assert.Equal(t, 2, root.Get("b"))
}

func TestSetOnUnobservedObjectIsPlain(t *testing.T) {
	rs := newHarness(t).rs

	obj := rs.NewObject(nil)
	rs.Set(obj, "a", 1)
	assert.Equal(t, 1, obj.Get("a"))
	assert.Nil(t, obj.Dep("a"))

	rs.Del(obj, "a")
	assert.False(t, obj.Has("a"))
}

func TestSetAndDelUsageErrors(t *testing.T) {
	h := newHarness(t)
	rs := h.rs

	assert.Equal(t, 1, rs.Set(nil, "a", 1))
	assert.Contains(t, h.logs.String(), "cannot set reactive property on nil or primitive value")

	rs.Del(42, "a")
	assert.Contains(t, h.logs.String(), "cannot delete reactive property on nil or primitive value")

	quiet := newHarness(t, reactive.WithProduction())
	quiet.rs.Set("str", "a", 1)
	assert.Empty(t, quiet.logs.String())
}

func TestSetArrayIndexPastEndGrows(t *testing.T) {
	rs := newHarness(t).rs

	arr := rs.NewArray(1)
	rs.Observe(arr)
	rs.Set(arr, 3, map[string]any{"x": 1})
	require.Equal(t, 4, len(arr.Items()))
	assert.Nil(t, arr.At(1))
	assert.NotNil(t, arr.At(3).(*reactive.Object).Observer())

	rs.Del(arr, "0")
	assert.Equal(t, 3, len(arr.Items()))
}

func TestKeysTrackShape(t *testing.T) {
	rs := newHarness(t).rs

	obj := rs.Reactive(map[string]any{"a": 1})
	var keys []string
	rs.Watch(nil, func() (any, error) {
		keys = obj.Keys()
		return len(keys), nil
	}, nil, reactive.WatchOptions{})
	assert.Equal(t, []string{"a"}, keys)

	rs.Set(obj, "b", 2)
	assert.Equal(t, []string{"a", "b"}, keys)

	rs.Del(obj, "a")
	assert.Equal(t, []string{"b"}, keys)
}
