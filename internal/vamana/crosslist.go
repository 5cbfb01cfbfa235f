package vamana

import "sync"

// CrossList is the companion adjacency for cross edges: tracked
// separately from the degree-capped intra-group Graph so the R
// cap never applies to them. Search treats CrossList neighbors
// uniformly with Graph neighbors; only construction and persistence
// distinguish the two.
type CrossList struct {
	mu    sync.Mutex
	edges map[uint32][]uint32
}

// NewCrossList creates an empty CrossList.
func NewCrossList() *CrossList {
	return &CrossList{edges: make(map[uint32][]uint32)}
}

// Add inserts a directed edge from -> to, ignoring duplicates and
// self-loops.
func (c *CrossList) Add(from, to uint32) {
	if from == to {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.edges[from] {
		if e == to {
			return
		}
	}
	c.edges[from] = append(c.edges[from], to)
}

// Neighbors returns from's cross-edge targets. The caller must not
// mutate the returned slice.
func (c *CrossList) Neighbors(from uint32) []uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.edges[from]
}

// All returns a defensive copy of the full edge map, keyed by source
// vertex id, for persistence.
func (c *CrossList) All() map[uint32][]uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[uint32][]uint32, len(c.edges))
	for k, v := range c.edges {
		out[k] = append([]uint32(nil), v...)
	}
	return out
}
