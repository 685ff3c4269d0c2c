package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/delaneyj/watchparty/reactive"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

type arrayBenchConfig struct {
	name   string
	mutate func(arr *reactive.Array, i int)
}

var arrayBenchConfigs = []arrayBenchConfig{
	{
		name: "push/pop",
		mutate: func(arr *reactive.Array, i int) {
			if i%2 == 0 {
				arr.Push(i)
			} else {
				arr.Pop()
			}
		},
	},
	{
		name: "unshift/shift",
		mutate: func(arr *reactive.Array, i int) {
			if i%2 == 0 {
				arr.Unshift(i)
			} else {
				arr.Shift()
			}
		},
	},
	{
		name: "splice object",
		mutate: func(arr *reactive.Array, i int) {
			arr.Splice(i%8, 1, map[string]any{"i": i})
		},
	},
	{
		name: "reverse",
		mutate: func(arr *reactive.Array, i int) {
			arr.Reverse()
		},
	},
}

func benchArrays(ctx context.Context, cmd *cli.Command) error {
	log.Print("Starting array benchmark, please wait...")
	defer log.Print("Finished array benchmark")

	iters := int(cmd.Int(itersKey))
	sizes := cmd.IntSlice(sizesKey)

	type results struct {
		runs     int64
		duration time.Duration
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"test", "watchers", "nTimes", "time", "runs", "updateRate"})

	testRepeats := 5
	for _, cfg := range arrayBenchConfigs {
		for _, size := range sizes {
			log.Printf("Running '%s' with %d watchers", cfg.name, size)

			best := &results{duration: time.Hour}
			for i := 0; i < testRepeats; i++ {
				runs := new(int64)
				arr := arrayFixture(cmd, int(size), runs)

				start := time.Now()
				for n := 0; n < iters; n++ {
					cfg.mutate(arr, n)
				}
				duration := time.Since(start)
				if duration < best.duration {
					best.duration = duration
					best.runs = *runs
				}
			}

			updateRate := float64(best.runs) / (float64(best.duration) / float64(time.Millisecond))
			table.Append([]string{
				cfg.name,
				fmt.Sprint(size),
				humanize.Comma(int64(iters)),
				fmt.Sprint(best.duration),
				humanize.Comma(best.runs),
				humanize.Comma(int64(updateRate)),
			})
		}
	}
	table.Render()
	return nil
}

// arrayFixture returns an observed array of eight objects with n eager
// watchers reading its length. Watcher re-runs are counted into runs.
func arrayFixture(cmd *cli.Command, n int, runs *int64) *reactive.Array {
	rs := newSystem(cmd)
	items := make([]any, 8)
	for i := range items {
		items[i] = map[string]any{"i": i}
	}
	arr := rs.NewArray(items...)
	rs.Observe(arr)
	for i := 0; i < n; i++ {
		rs.Watch(nil, func() (any, error) {
			*runs++
			return arr.Len(), nil
		}, nil, reactive.WatchOptions{})
	}
	return arr
}
