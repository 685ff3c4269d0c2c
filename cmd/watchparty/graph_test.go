package main

import (
	"testing"

	"github.com/delaneyj/watchparty/reactive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartStore(t *testing.T) {
	rs := reactive.CreateReactiveSystem(reactive.WithProduction())
	cart, err := newCartStore(rs)
	require.NoError(t, err)
	defer cart.Destroy()

	assert.Equal(t, 11, cart.Get("total"))

	cart.Get("items").(*reactive.Array).Push(map[string]any{"sku": "plum", "qty": 4, "price": 1})
	assert.Equal(t, 15, cart.Get("subtotal"))

	cart.Get("discount").(*reactive.Object).Set("percent", 20)
	assert.Equal(t, 12, cart.Get("total"))
}

func TestCollectGraph(t *testing.T) {
	rs := reactive.CreateReactiveSystem(reactive.WithProduction())
	cart, err := newCartStore(rs)
	require.NoError(t, err)
	defer cart.Destroy()

	watchers, deps := collectGraph(cart)
	require.Len(t, watchers, 3)

	kinds := map[string]string{}
	for _, w := range watchers {
		kinds[w.Expression] = w.Kind
	}
	assert.Equal(t, "computed", kinds["subtotal"])
	assert.Equal(t, "watch", kinds["total"], "the path watch is installed after the computed of the same name")

	labels := map[string][]uint64{}
	for _, d := range deps {
		labels[d.Label] = d.Subscribers
	}
	assert.Contains(t, labels, "data.items")
	assert.Contains(t, labels, "data.discount.percent")
	assert.Contains(t, labels, "data.items.0.qty")
	assert.NotContains(t, labels, "(unlabelled)")
}
