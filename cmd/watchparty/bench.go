package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/delaneyj/watchparty/reactive"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

var (
	ww = []int{1, 10, 100, 1_000}
	hh = []int{1, 10, 100, 1_000}
)

func benchPropagate(ctx context.Context, cmd *cli.Command) error {
	if path := cmd.String(pgoKey); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("start profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	iters := int(cmd.Int(itersKey))
	log.Printf("warming up")
	propagate(cmd, iters, false)
	propagate(cmd, iters, true)
	return nil
}

// propagate builds w chains of h computed watchers over one source property,
// each chain ending in an eager watcher, then times writes to the source.
func propagate(cmd *cli.Command, iters int, shouldRender bool) {
	tbl := table.NewWriter()
	tbl.SetTitle("Watchers")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})

	for _, w := range ww {
		for _, h := range hh {
			tach := tachymeter.New(&tachymeter.Config{Size: iters})

			rs := newSystem(cmd)
			src := rs.Reactive(map[string]any{"n": 1})
			for i := 0; i < w; i++ {
				last := func() int { return asInt(src.Get("n")) }
				for j := 0; j < h; j++ {
					prev := last
					c := rs.Watch(nil, func() (any, error) {
						return prev() + 1, nil
					}, nil, reactive.WatchOptions{Lazy: true})
					last = func() int { return asInt(c.Value()) }
				}

				tail := last
				rs.Watch(nil, func() (any, error) {
					return tail(), nil
				}, nil, reactive.WatchOptions{})
			}

			for i := 0; i < iters; i++ {
				start := time.Now()
				src.Set("n", asInt(src.Get("n"))+1)
				tach.AddTime(time.Since(start))
			}

			calc := tach.Calc()
			tbl.AppendRows([]table.Row{
				{
					fmt.Sprintf("propagate: %d * %d", w, h),
					calc.Time.Avg,
					calc.Time.Min,
					calc.Time.P75,
					calc.Time.P99,
					calc.Time.Max,
				},
			})
		}
	}

	if shouldRender {
		tbl.Render()
	}
}
