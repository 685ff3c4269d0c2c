package main

import (
	"fmt"
	"log"

	"github.com/delaneyj/watchparty/reactive"
	"github.com/delaneyj/watchparty/store"
)

// newCartStore is the sample store shared by demo and graph: line items,
// a discount and a couple of computed totals.
func newCartStore(rs *reactive.System) (*store.Store, error) {
	return store.New(rs, store.Options{
		Name: "cart",
		Data: func() (map[string]any, error) {
			return map[string]any{
				"items": []any{
					map[string]any{"sku": "apple", "qty": 3, "price": 2},
					map[string]any{"sku": "pear", "qty": 1, "price": 5},
				},
				"discount": map[string]any{"percent": 0},
			}, nil
		},
		Computed: map[string]store.Computed{
			"subtotal": {Get: cartSubtotal},
			"total": {Get: func(s *store.Store) (any, error) {
				subtotal, ok := s.Get("subtotal").(int)
				if !ok {
					return nil, fmt.Errorf("subtotal is %T", s.Get("subtotal"))
				}
				percent := asInt(s.Get("discount").(*reactive.Object).Get("percent"))
				return subtotal - subtotal*percent/100, nil
			}},
		},
		Watch: map[string][]store.Handler{
			"total": {{
				Fn: func(s *store.Store, newValue, oldValue any) error {
					log.Printf("cart total %v -> %v", oldValue, newValue)
					return nil
				},
			}},
		},
	})
}

func cartSubtotal(s *store.Store) (any, error) {
	items, ok := s.Get("items").(*reactive.Array)
	if !ok {
		return nil, fmt.Errorf("items is %T", s.Get("items"))
	}
	sum := 0
	for _, it := range items.Items() {
		item := it.(*reactive.Object)
		sum += asInt(item.Get("qty")) * asInt(item.Get("price"))
	}
	return sum, nil
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}
