package templates

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGraphReport(t *testing.T) {
	watchers := []WatcherRow{
		{ID: 1, Expression: "total", Kind: "computed", Dirty: true, Deps: []uint64{3, 4}},
		{ID: 2, Expression: "idle", Kind: "eager"},
	}
	deps := []DepRow{
		{ID: 3, Label: "data.items", Subscribers: []uint64{1}},
		{ID: 4, Label: "data.items[]", Subscribers: []uint64{1, 2}},
	}

	out := GraphReport("store cart", watchers, deps)
	assert.Contains(t, out, "# store cart\n")
	assert.Contains(t, out, `- watcher1 "total" [computed, dirty] reads dep3, dep4`)
	assert.Contains(t, out, `- watcher2 "idle" [eager] reads nothing`)
	assert.Contains(t, out, "- dep4 data.items[] notifies watcher1, watcher2")

	var buf bytes.Buffer
	WriteGraphReport(&buf, "store cart", watchers, deps)
	assert.Equal(t, out, buf.String())
}

func TestPrefixedIDs(t *testing.T) {
	assert.Equal(t, "nothing", prefixedIDs("dep", nil))
	assert.Equal(t, "dep7", prefixedIDs("dep", []uint64{7}))
	assert.Equal(t, "w1, w2, w3", prefixedIDs("w", []uint64{1, 2, 3}))
}
