package main

import (
	"context"
	"log"
	"time"

	"github.com/delaneyj/watchparty/reactive"
	"github.com/delaneyj/watchparty/scheduler"
	"github.com/urfave/cli/v3"
)

func demo(ctx context.Context, cmd *cli.Command) error {
	start := time.Now()
	log.Printf("demo started")
	defer func() {
		log.Printf("demo finished in %v", time.Since(start))
	}()

	rs := newSystem(cmd)
	var q *scheduler.Queue
	if cmd.Bool(batchedKey) {
		q = scheduler.New(rs)
		log.Printf("watchers are batched, flushing after each step")
	}
	flush := func() error {
		if q == nil {
			return nil
		}
		return q.Flush()
	}

	root := rs.Reactive(map[string]any{
		"a": 1,
		"b": map[string]any{"c": 2},
	})
	runs := 0
	sum := rs.Watch(nil, func() (any, error) {
		runs++
		b := root.Get("b").(*reactive.Object)
		return asInt(root.Get("a")) + asInt(b.Get("c")), nil
	}, nil, reactive.WatchOptions{Expression: "a + b.c"})

	steps := []struct {
		name string
		fn   func()
	}{
		{"write b.c = 5", func() { root.Get("b").(*reactive.Object).Set("c", 5) }},
		{"replace b with {c: 5}", func() { root.Set("b", map[string]any{"c": 5}) }},
		{"write new b.c = 7", func() { root.Get("b").(*reactive.Object).Set("c", 7) }},
		{"delete a", func() { rs.Del(root, "a") }},
		{"add a = 10", func() { rs.Set(root, "a", 10) }},
	}
	log.Printf("%-24s runs=%d value=%v", "initial", runs, sum.Value())
	for _, step := range steps {
		step.fn()
		if err := flush(); err != nil {
			return err
		}
		log.Printf("%-24s runs=%d value=%v", step.name, runs, sum.Value())
	}

	cart, err := newCartStore(rs)
	if err != nil {
		return err
	}
	defer cart.Destroy()
	log.Printf("cart total %v", cart.Get("total"))

	items := cart.Get("items").(*reactive.Array)
	items.Push(map[string]any{"sku": "plum", "qty": 4, "price": 1})
	if err := flush(); err != nil {
		return err
	}
	cart.Get("discount").(*reactive.Object).Set("percent", 10)
	if err := flush(); err != nil {
		return err
	}
	cart.SetProp(cart.Data(), "coupon", "SPRING")
	return nil
}
