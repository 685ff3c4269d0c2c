package reactive

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// PathRoot is anything a dotted watch path can start from.
type PathRoot interface {
	Get(key string) any
}

// WatchPath watches the value at a dotted path such as "user.tags.0" below
// root. User is implied. A path with characters other than letters, digits,
// '_', '$' and '.' is diagnosed and watches nothing.
func (rs *System) WatchPath(root PathRoot, path string, cb Callback, opts WatchOptions) *Watcher {
	opts.User = true
	if opts.Expression == "" {
		opts.Expression = path
	}
	segments, ok := rs.parsePath(path)
	var getter Getter
	if !ok {
		rs.warn(fmt.Sprintf("reactive: failed watching path %q, only simple dot-delimited paths are accepted", path))
		getter = func() (any, error) { return nil, nil }
	} else {
		getter = func() (any, error) {
			return resolvePath(root, segments), nil
		}
	}
	return rs.Watch(root, getter, cb, opts)
}

type parsedPath struct {
	path     string
	segments []string
}

func (rs *System) parsePath(path string) ([]string, bool) {
	key := xxhash.Sum64String(path)
	if cached, ok := rs.pathCache[key]; ok && cached.path == path {
		return cached.segments, true
	}
	for _, r := range path {
		if !(r == '.' || r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return nil, false
		}
	}
	segments := strings.Split(path, ".")
	rs.pathCache[key] = parsedPath{path: path, segments: segments}
	return segments, true
}

func resolvePath(root PathRoot, segments []string) any {
	var cur any = root
	for _, seg := range segments {
		switch c := cur.(type) {
		case nil:
			return nil
		case *Array:
			i, err := strconv.Atoi(seg)
			if err != nil {
				return nil
			}
			cur = c.At(i)
		case PathRoot:
			cur = c.Get(seg)
		default:
			return nil
		}
	}
	return cur
}
