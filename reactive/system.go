package reactive

import (
	"errors"
	"fmt"
	"log/slog"
)

// MaxUpdateCount bounds how often one watcher may re-run because of its own
// writes before the loop is abandoned.
const MaxUpdateCount = 100

var (
	// ErrPanic wraps a value recovered from a panicking getter or callback.
	ErrPanic = errors.New("reactive: recovered panic")
	// ErrInfiniteUpdate is reported when a watcher keeps invalidating itself.
	ErrInfiniteUpdate = errors.New("reactive: infinite update loop")
)

// ErrorHandler receives errors raised by watcher getters and callbacks.
// owner is the context the watcher was created with, info describes where
// the error happened.
type ErrorHandler func(err error, owner any, info string)

// Scheduler decides what happens when an eager watcher is notified.
type Scheduler interface {
	Queue(w *Watcher)
}

type Option func(*System)

// WithLogger sets the logger used for usage diagnostics and unhandled errors.
func WithLogger(logger *slog.Logger) Option {
	return func(rs *System) {
		rs.logger = logger
	}
}

func WithErrorHandler(fn ErrorHandler) Option {
	return func(rs *System) {
		rs.onError = fn
	}
}

func WithScheduler(s Scheduler) Option {
	return func(rs *System) {
		rs.scheduler = s
	}
}

// WithProduction silences usage diagnostics.
func WithProduction() Option {
	return func(rs *System) {
		rs.production = true
	}
}

// System owns the active watcher stack and the observe toggle. Everything
// created through a System must be used from a single goroutine.
type System struct {
	target      *Watcher
	targetStack []*Watcher
	observing   bool

	production bool
	logger     *slog.Logger
	onError    ErrorHandler
	scheduler  Scheduler

	lastDepID     uint64
	lastWatcherID uint64
	pathCache     map[uint64]parsedPath
}

func CreateReactiveSystem(opts ...Option) *System {
	rs := &System{
		observing: true,
		logger:    slog.Default(),
		pathCache: map[uint64]parsedPath{},
	}
	for _, opt := range opts {
		opt(rs)
	}
	return rs
}

// SetScheduler swaps the scheduler used for eager watchers. Passing nil makes
// eager watchers run synchronously when notified.
func (rs *System) SetScheduler(s Scheduler) {
	rs.scheduler = s
}

func (rs *System) Logger() *slog.Logger {
	return rs.logger
}

// ActiveWatcher returns the watcher reads are currently attributed to.
func (rs *System) ActiveWatcher() *Watcher {
	return rs.target
}

func (rs *System) pushTarget(w *Watcher) {
	rs.targetStack = append(rs.targetStack, w)
	rs.target = w
}

func (rs *System) popTarget() {
	lastIdx := len(rs.targetStack) - 1
	rs.targetStack = rs.targetStack[:lastIdx]
	if lastIdx == 0 {
		rs.target = nil
		return
	}
	rs.target = rs.targetStack[lastIdx-1]
}

// Untrack runs fn with no active watcher, so nothing read inside it becomes
// a dependency of the caller.
func (rs *System) Untrack(fn func()) {
	rs.pushTarget(nil)
	defer rs.popTarget()
	fn()
}

// Observing reports whether new containers are currently being observed.
func (rs *System) Observing() bool {
	return rs.observing
}

// ToggleObserving switches observation on or off and returns the previous
// state. Calls must be paired by the caller.
func (rs *System) ToggleObserving(on bool) (prev bool) {
	prev = rs.observing
	rs.observing = on
	return prev
}

// WithoutObserving runs fn with observation disabled and restores the
// previous state afterwards.
func (rs *System) WithoutObserving(fn func()) {
	prev := rs.ToggleObserving(false)
	defer rs.ToggleObserving(prev)
	fn()
}

func (rs *System) warn(msg string, args ...any) {
	if rs.production || rs.logger == nil {
		return
	}
	rs.logger.Warn(msg, args...)
}

func (rs *System) handleError(err error, owner any, info string) {
	if rs.onError != nil {
		rs.onError(err, owner, info)
		return
	}
	if rs.logger != nil {
		rs.logger.Error("reactive: unhandled error", "info", info, "err", err)
	}
}

// invoke calls fn, routing a returned error or a panic to the error handler.
// It reports whether fn completed without error.
func (rs *System) invoke(fn func() error, owner any, info string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			rs.handleError(panicError(r), owner, info)
			ok = false
		}
	}()
	if err := fn(); err != nil {
		rs.handleError(err, owner, info)
		return false
	}
	return true
}

// Invoke is exported for collaborators such as the scheduler that run
// user callbacks on behalf of the system.
func (rs *System) Invoke(fn func() error, owner any, info string) bool {
	return rs.invoke(fn, owner, info)
}

// Warn emits a usage diagnostic unless the system runs in production mode.
func (rs *System) Warn(msg string, args ...any) {
	rs.warn(msg, args...)
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%w: %w", ErrPanic, err)
	}
	return fmt.Errorf("%w: %v", ErrPanic, r)
}
