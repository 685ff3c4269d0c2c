package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"slices"
	"strconv"

	"github.com/delaneyj/watchparty/cmd/watchparty/templates"
	"github.com/delaneyj/watchparty/reactive"
	"github.com/delaneyj/watchparty/store"
	"github.com/urfave/cli/v3"
)

func graph(ctx context.Context, cmd *cli.Command) error {
	rs := newSystem(cmd)
	cart, err := newCartStore(rs)
	if err != nil {
		return err
	}
	defer cart.Destroy()

	// reading total evaluates both computed properties
	log.Printf("cart total %v", cart.Get("total"))
	cart.Get("discount").(*reactive.Object).Set("percent", 5)

	var out io.Writer = os.Stdout
	if path := cmd.String(outKey); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		defer f.Close()
		out = f
	}

	watchers, deps := collectGraph(cart)
	templates.WriteGraphReport(out, "store "+cart.Name(), watchers, deps)
	return nil
}

// collectGraph lists the store's watchers and every dep they hold. Deps are
// labelled with the data path they guard.
func collectGraph(s *store.Store) ([]templates.WatcherRow, []templates.DepRow) {
	labels := map[uint64]string{}
	labelDeps(s.Data(), "data", labels)

	var watchers []templates.WatcherRow
	seen := map[uint64]*reactive.Dep{}
	for _, w := range s.Watchers() {
		row := templates.WatcherRow{
			ID:         w.ID(),
			Expression: w.Expression(),
			Kind:       watcherKind(w),
			Dirty:      w.Dirty(),
		}
		for _, d := range w.Deps() {
			row.Deps = append(row.Deps, d.ID())
			seen[d.ID()] = d
		}
		watchers = append(watchers, row)
	}

	ids := make([]uint64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	deps := make([]templates.DepRow, 0, len(ids))
	for _, id := range ids {
		row := templates.DepRow{ID: id, Label: labels[id]}
		if row.Label == "" {
			row.Label = "(unlabelled)"
		}
		for _, sub := range seen[id].Subscribers() {
			row.Subscribers = append(row.Subscribers, sub.ID())
		}
		deps = append(deps, row)
	}
	return watchers, deps
}

func watcherKind(w *reactive.Watcher) string {
	switch {
	case w.Lazy():
		return "computed"
	case w.User():
		return "watch"
	}
	return "eager"
}

// labelDeps walks a container without tracking anything and names the deps
// it finds: "path" for a property and "path{}" or "path[]" for a container.
func labelDeps(v any, path string, labels map[uint64]string) {
	switch c := v.(type) {
	case *reactive.Object:
		if ob := c.Observer(); ob != nil {
			labels[ob.Dep().ID()] = path + "{}"
		}
		for _, key := range c.Keys() {
			child := path + "." + key
			if d := c.Dep(key); d != nil {
				labels[d.ID()] = child
			}
			labelDeps(c.Get(key), child, labels)
		}
	case *reactive.Array:
		if ob := c.Observer(); ob != nil {
			labels[ob.Dep().ID()] = path + "[]"
		}
		for i, item := range c.Items() {
			labelDeps(item, path+"."+strconv.Itoa(i), labels)
		}
	}
}
