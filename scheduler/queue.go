// Package scheduler batches eager watcher re-runs. Notifications queue
// watchers; Flush runs each queued watcher once, then the NextTick callbacks.
package scheduler

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/delaneyj/watchparty/reactive"
)

const DefaultMaxUpdateCount = reactive.MaxUpdateCount

var ErrInfiniteUpdate = reactive.ErrInfiniteUpdate

type Option func(*Queue)

// WithSortByID runs watchers in creation order instead of queue order.
func WithSortByID() Option {
	return func(q *Queue) {
		q.sortByID = true
	}
}

func WithMaxUpdateCount(n int) Option {
	return func(q *Queue) {
		q.maxUpdateCount = n
	}
}

// Queue implements reactive.Scheduler. It is not safe for concurrent use.
type Queue struct {
	rs             *reactive.System
	sortByID       bool
	maxUpdateCount int

	queue     []*reactive.Watcher
	has       map[uint64]bool
	circular  map[uint64]int
	callbacks []func() error
	flushing  bool
	index     int
}

// New creates a queue and installs it as rs's scheduler.
func New(rs *reactive.System, opts ...Option) *Queue {
	q := &Queue{
		rs:             rs,
		maxUpdateCount: DefaultMaxUpdateCount,
		has:            map[uint64]bool{},
		circular:       map[uint64]int{},
	}
	for _, opt := range opts {
		opt(q)
	}
	rs.SetScheduler(q)
	return q
}

// Queue adds w unless it is already waiting. Watchers queued while flushing
// are placed after the one currently running.
func (q *Queue) Queue(w *reactive.Watcher) {
	id := w.ID()
	if q.has[id] {
		return
	}
	q.has[id] = true
	if !q.flushing || !q.sortByID {
		q.queue = append(q.queue, w)
		return
	}
	i := len(q.queue) - 1
	for i > q.index && q.queue[i].ID() > id {
		i--
	}
	q.queue = slices.Insert(q.queue, i+1, w)
}

// NextTick defers fn until the end of the next Flush.
func (q *Queue) NextTick(fn func() error) {
	q.callbacks = append(q.callbacks, fn)
}

// Pending is the number of watchers waiting to run.
func (q *Queue) Pending() int {
	return len(q.queue) - q.index
}

func (q *Queue) Flushing() bool {
	return q.flushing
}

// Flush runs every queued watcher, including ones queued by the watchers
// themselves, then the NextTick callbacks. A watcher re-queued more than the
// max update count aborts the flush with ErrInfiniteUpdate.
func (q *Queue) Flush() error {
	if q.flushing {
		return nil
	}
	q.flushing = true
	defer q.reset()

	if q.sortByID {
		slices.SortStableFunc(q.queue, func(a, b *reactive.Watcher) int {
			switch {
			case a.ID() < b.ID():
				return -1
			case a.ID() > b.ID():
				return 1
			}
			return 0
		})
	}

	var flushErr error
	for q.index = 0; q.index < len(q.queue); q.index++ {
		w := q.queue[q.index]
		w.Before()
		id := w.ID()
		delete(q.has, id)
		w.Run()

		if q.has[id] {
			q.circular[id]++
			if q.circular[id] > q.maxUpdateCount {
				flushErr = fmt.Errorf("%w in watcher %q", ErrInfiniteUpdate, w.Expression())
				q.rs.Warn("scheduler: you may have an infinite update loop", "watcher", w.Expression())
				break
			}
		}
	}

	callbacks := q.callbacks
	q.callbacks = nil
	for _, cb := range callbacks {
		q.rs.Invoke(cb, nil, "nextTick")
	}
	return flushErr
}

func (q *Queue) reset() {
	clear(q.queue)
	q.queue = q.queue[:0]
	q.index = 0
	clear(q.has)
	clear(q.circular)
	q.flushing = false
	if q.rs.Logger() != nil && len(q.callbacks) > 0 {
		q.rs.Logger().Debug("scheduler: callbacks queued during flush wait for the next flush", slog.Int("count", len(q.callbacks)))
	}
}
