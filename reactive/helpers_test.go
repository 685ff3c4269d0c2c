package reactive_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/delaneyj/watchparty/reactive"
	"github.com/stretchr/testify/assert"
)

type reported struct {
	err  error
	info string
}

type harness struct {
	rs       *reactive.System
	logs     *bytes.Buffer
	reported []reported
}

func newHarness(t *testing.T, opts ...reactive.Option) *harness {
	t.Helper()
	h := &harness{logs: &bytes.Buffer{}}
	logger := slog.New(slog.NewTextHandler(h.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	opts = append([]reactive.Option{
		reactive.WithLogger(logger),
		reactive.WithErrorHandler(func(err error, owner any, info string) {
			h.reported = append(h.reported, reported{err: err, info: info})
		}),
	}, opts...)
	h.rs = reactive.CreateReactiveSystem(opts...)
	return h
}

func (h *harness) assertNoErrors(t *testing.T) {
	t.Helper()
	for _, r := range h.reported {
		assert.Fail(t, "unexpected error", "%s: %v", r.info, r.err)
	}
}

func num(v any) int {
	n, _ := v.(int)
	return n
}

// counter returns a getter that counts its invocations.
func counter(calls *int, fn func() any) reactive.Getter {
	return func() (any, error) {
		*calls++
		return fn(), nil
	}
}
