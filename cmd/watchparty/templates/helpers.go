package templates

import (
	"strconv"
	"strings"
)

// WatcherRow is one watcher in the graph report.
type WatcherRow struct {
	ID         uint64
	Expression string
	Kind       string
	Dirty      bool
	Deps       []uint64
}

// DepRow is one dep and the watchers it notifies.
type DepRow struct {
	ID          uint64
	Label       string
	Subscribers []uint64
}

func prefixedIDs(prefix string, ids []uint64) string {
	if len(ids) == 0 {
		return "nothing"
	}
	var sb strings.Builder
	for i, id := range ids {
		sb.WriteString(prefix)
		sb.WriteString(strconv.FormatUint(id, 10))
		if i < len(ids)-1 {
			sb.WriteString(", ")
		}
	}
	return sb.String()
}
