package scheduler_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/delaneyj/watchparty/reactive"
	"github.com/delaneyj/watchparty/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failure struct {
	err  error
	info string
}

func setup(t *testing.T, opts ...scheduler.Option) (*reactive.System, *scheduler.Queue, *bytes.Buffer, *[]failure) {
	t.Helper()
	logs := &bytes.Buffer{}
	failures := &[]failure{}
	rs := reactive.CreateReactiveSystem(
		reactive.WithLogger(slog.New(slog.NewTextHandler(logs, nil))),
		reactive.WithErrorHandler(func(err error, owner any, info string) {
			*failures = append(*failures, failure{err, info})
		}),
	)
	return rs, scheduler.New(rs, opts...), logs, failures
}

func TestQueueDedupesWatchers(t *testing.T) {
	rs, q, _, failures := setup(t)

	obj := rs.Reactive(map[string]any{"a": 1, "b": 2})
	runs := 0
	w := rs.Watch(nil, func() (any, error) {
		runs++
		return obj.Get("a").(int) + obj.Get("b").(int), nil
	}, nil, reactive.WatchOptions{})
	require.Equal(t, 1, runs)

	obj.Set("a", 10)
	obj.Set("b", 20)
	assert.Equal(t, 1, runs, "nothing runs before a flush")
	assert.Equal(t, 1, q.Pending())

	require.NoError(t, q.Flush())
	assert.Equal(t, 2, runs)
	assert.Equal(t, 30, w.Value())
	assert.Equal(t, 0, q.Pending())
	assert.Empty(t, *failures)
}

func TestQueueOrder(t *testing.T) {
	for _, tc := range []struct {
		name string
		opts []scheduler.Option
		want []string
	}{
		{name: "fifo", want: []string{"second", "first"}},
		{name: "by id", opts: []scheduler.Option{scheduler.WithSortByID()}, want: []string{"first", "second"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rs, q, _, _ := setup(t, tc.opts...)
			obj := rs.Reactive(map[string]any{"x": 0, "y": 0})

			var order []string
			record := func(name string) reactive.Callback {
				return func(newValue, oldValue any) error {
					order = append(order, name)
					return nil
				}
			}
			rs.Watch(nil, func() (any, error) { return obj.Get("x"), nil }, record("first"), reactive.WatchOptions{User: true})
			rs.Watch(nil, func() (any, error) { return obj.Get("y"), nil }, record("second"), reactive.WatchOptions{User: true})

			obj.Set("y", 1)
			obj.Set("x", 1)
			require.NoError(t, q.Flush())
			assert.Equal(t, tc.want, order)
		})
	}
}

func TestSyncWatchersBypassQueue(t *testing.T) {
	rs, q, _, _ := setup(t)

	obj := rs.Reactive(map[string]any{"a": 1})
	runs := 0
	rs.Watch(nil, func() (any, error) {
		runs++
		return obj.Get("a"), nil
	}, nil, reactive.WatchOptions{Sync: true})

	obj.Set("a", 2)
	assert.Equal(t, 2, runs)
	assert.Equal(t, 0, q.Pending())
}

func TestWatchersQueuedDuringFlushRunInSameFlush(t *testing.T) {
	rs, q, _, _ := setup(t, scheduler.WithSortByID())

	obj := rs.Reactive(map[string]any{"src": 0, "dst": 0})
	var seen []any
	rs.Watch(nil, func() (any, error) {
		return obj.Get("src"), nil
	}, func(newValue, oldValue any) error {
		obj.Set("dst", newValue.(int)*2)
		return nil
	}, reactive.WatchOptions{User: true})
	rs.Watch(nil, func() (any, error) {
		return obj.Get("dst"), nil
	}, func(newValue, oldValue any) error {
		seen = append(seen, newValue)
		return nil
	}, reactive.WatchOptions{User: true})

	obj.Set("src", 3)
	require.NoError(t, q.Flush())
	assert.Equal(t, []any{6}, seen)
}

func TestInfiniteUpdateLoopIsStopped(t *testing.T) {
	rs, q, logs, _ := setup(t, scheduler.WithMaxUpdateCount(10))

	obj := rs.Reactive(map[string]any{"n": 0})
	rs.Watch(nil, func() (any, error) {
		return obj.Get("n"), nil
	}, func(newValue, oldValue any) error {
		obj.Set("n", newValue.(int)+1)
		return nil
	}, reactive.WatchOptions{User: true, Expression: "loop"})

	obj.Set("n", 1)
	err := q.Flush()
	require.ErrorIs(t, err, scheduler.ErrInfiniteUpdate)
	assert.Contains(t, err.Error(), `"loop"`)
	assert.Contains(t, logs.String(), "infinite update loop")
	assert.False(t, q.Flushing())
	assert.Equal(t, 0, q.Pending(), "the queue is reset after an aborted flush")
}

func TestNextTickRunsAfterWatchers(t *testing.T) {
	rs, q, _, failures := setup(t)

	obj := rs.Reactive(map[string]any{"a": 1})
	var events []string
	rs.Watch(nil, func() (any, error) {
		return obj.Get("a"), nil
	}, func(newValue, oldValue any) error {
		events = append(events, "watcher")
		return nil
	}, reactive.WatchOptions{User: true})

	boom := errors.New("boom")
	q.NextTick(func() error {
		events = append(events, "tick")
		return nil
	})
	q.NextTick(func() error { return boom })
	obj.Set("a", 2)

	require.NoError(t, q.Flush())
	assert.Equal(t, []string{"watcher", "tick"}, events)
	require.Len(t, *failures, 1)
	assert.ErrorIs(t, (*failures)[0].err, boom)
	assert.Equal(t, "nextTick", (*failures)[0].info)

	require.NoError(t, q.Flush())
	assert.Len(t, events, 2, "callbacks run once")
}

func TestBeforeHookRunsAheadOfEachRun(t *testing.T) {
	rs, q, _, _ := setup(t)

	obj := rs.Reactive(map[string]any{"a": 1})
	var events []string
	rs.Watch(nil, func() (any, error) {
		events = append(events, "get")
		return obj.Get("a"), nil
	}, nil, reactive.WatchOptions{Before: func() { events = append(events, "before") }})

	obj.Set("a", 2)
	require.NoError(t, q.Flush())
	assert.Equal(t, []string{"get", "before", "get"}, events)
}

func TestFlushIsNotReentrant(t *testing.T) {
	rs, q, _, _ := setup(t)

	obj := rs.Reactive(map[string]any{"a": 1})
	var inner error = errors.New("unset")
	rs.Watch(nil, func() (any, error) {
		return obj.Get("a"), nil
	}, func(newValue, oldValue any) error {
		assert.True(t, q.Flushing())
		inner = q.Flush()
		return nil
	}, reactive.WatchOptions{User: true})

	obj.Set("a", 2)
	require.NoError(t, q.Flush())
	assert.NoError(t, inner)
}
