package reactive

import mapset "github.com/deckarep/golang-set/v2"

// traverse reads everything reachable from val so the active watcher depends
// on the whole subgraph, container shapes included. Observed containers are visited once, keyed by the
// id of their Observer's Dep, which also stops cycles.
func traverse(val any) {
	seen := mapset.NewThreadUnsafeSet[uint64]()
	walkDeep(val, seen)
}

func walkDeep(val any, seen mapset.Set[uint64]) {
	switch c := val.(type) {
	case *Object:
		if c.frozen {
			return
		}
		if c.ob != nil {
			if !seen.Add(c.ob.dep.id) {
				return
			}
			c.ob.dep.Depend()
		}
		for _, key := range c.keys {
			walkDeep(c.Get(key), seen)
		}
	case *Array:
		if c.frozen {
			return
		}
		if c.ob != nil {
			if !seen.Add(c.ob.dep.id) {
				return
			}
			c.ob.dep.Depend()
		}
		for _, item := range c.items {
			walkDeep(item, seen)
		}
	}
}
