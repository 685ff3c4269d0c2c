package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/delaneyj/watchparty/reactive"
	"github.com/urfave/cli/v3"
)

const (
	productionKey = "production"
	verboseKey    = "verbose"
	batchedKey    = "batched"
	itersKey      = "iters"
	pgoKey        = "pgo"
	outKey        = "out"
	sizesKey      = "sizes"
)

func main() {
	cmd := &cli.Command{
		Name:  "watchparty",
		Usage: "Poke at the observer/dep/watcher reactive core",
		Commands: []*cli.Command{
			{
				Name:   "demo",
				Usage:  "Walk through a small reactive data set and print what re-runs",
				Flags:  append(systemFlags(), &cli.BoolFlag{Name: batchedKey, Usage: "Queue watchers and flush after each step"}),
				Action: demo,
			},
			{
				Name:  "bench",
				Usage: "Benchmarks",
				Commands: []*cli.Command{
					{
						Name:  "propagate",
						Usage: "Chains of computed watchers fanning out from one source",
						Flags: append(systemFlags(),
							&cli.IntFlag{Name: itersKey, Usage: "Writes per shape", Value: 100},
							&cli.StringFlag{Name: pgoKey, Usage: "Write a CPU profile to this file"},
						),
						Action: benchPropagate,
					},
					{
						Name:  "arrays",
						Usage: "Intercepted array mutations under watchers",
						Flags: append(systemFlags(),
							&cli.IntFlag{Name: itersKey, Usage: "Mutations per run", Value: 10_000},
							&cli.IntSliceFlag{Name: sizesKey, Usage: "Number of watchers per array", Value: []int64{1, 10, 100}},
						),
						Action: benchArrays,
					},
				},
			},
			{
				Name:  "graph",
				Usage: "Render the dependency graph of the demo cart store",
				Flags: append(systemFlags(),
					&cli.StringFlag{Name: outKey, Usage: "Write the report to this file instead of stdout"},
				),
				Action: graph,
			},
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func systemFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: productionKey, Usage: "Silence usage diagnostics"},
		&cli.BoolFlag{Name: verboseKey, Usage: "Log at debug level"},
	}
}

// newSystem builds a reactive system configured from the shared flags.
func newSystem(cmd *cli.Command) *reactive.System {
	level := slog.LevelInfo
	if cmd.Bool(verboseKey) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	opts := []reactive.Option{
		reactive.WithLogger(logger),
		reactive.WithErrorHandler(func(err error, owner any, info string) {
			logger.Error("watcher failed", "info", info, "err", err)
		}),
	}
	if cmd.Bool(productionKey) {
		opts = append(opts, reactive.WithProduction())
	}
	return reactive.CreateReactiveSystem(opts...)
}
