package solver

// caches holds per-model state keyed by model fingerprint. Entries live for
// the lifetime of the owning solver unless ClearCache is called; there is
// no eviction.
type caches struct {
	rootfinders map[uint64]Rootfinder
	ySols       map[uint64]*deferredTrajectory
}

func newCaches() caches {
	return caches{
		rootfinders: make(map[uint64]Rootfinder),
		ySols:       make(map[uint64]*deferredTrajectory),
	}
}

// CacheLen returns the number of cached rootfinders and deferred
// trajectories.
func (c *caches) CacheLen() (rootfinders, trajectories int) {
	return len(c.rootfinders), len(c.ySols)
}

func (c *caches) ClearCache() {
	clear(c.rootfinders)
	clear(c.ySols)
}
