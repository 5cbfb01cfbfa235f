package vamana

import (
	"slices"

	"ung/distance"
	"ung/internal/visited"
	"ung/storage"
)

// Candidate pairs a vertex id with its distance to the current query.
type Candidate struct {
	ID   uint32
	Dist float32
}

// candidateList is the bounded, ascending-by-distance working set greedy
// search maintains. It never exceeds cap entries, so "closest unexpanded
// candidate is in the top-L" holds automatically — the list simply
// runs until every entry it holds has been expanded.
type candidateList struct {
	cap      int
	items    []Candidate
	expanded []bool
}

func newCandidateList(cap int) *candidateList {
	return &candidateList{cap: cap, items: make([]Candidate, 0, cap), expanded: make([]bool, 0, cap)}
}

func less(a, b Candidate) bool {
	if a.Dist != b.Dist {
		return a.Dist < b.Dist
	}
	return a.ID < b.ID
}

// insert adds c in sorted position. When the list is already at capacity,
// c is dropped if it does not improve on the worst entry; otherwise the
// worst entry is evicted to make room.
func (l *candidateList) insert(c Candidate) {
	idx, found := slices.BinarySearchFunc(l.items, c, func(a, b Candidate) int {
		if less(a, b) {
			return -1
		}
		if less(b, a) {
			return 1
		}
		return 0
	})
	if found {
		return
	}
	if len(l.items) >= l.cap {
		if idx >= l.cap {
			return // c is worse than everything already kept
		}
		l.items = l.items[:len(l.items)-1]
		l.expanded = l.expanded[:len(l.expanded)-1]
	}
	l.items = slices.Insert(l.items, idx, c)
	l.expanded = slices.Insert(l.expanded, idx, false)
}

// nextUnexpanded returns the index of the closest unexpanded candidate,
// or -1 if all candidates have been expanded.
func (l *candidateList) nextUnexpanded() int {
	for i := range l.items {
		if !l.expanded[i] {
			return i
		}
	}
	return -1
}

// GreedySearch walks g from entries toward query, maintaining a
// candidate list of at most L entries and a visited set. It returns the
// final candidate list (used by query-time top-k) and every vertex id
// visited along the way (used by construction as the robust-prune input
// pool).
func GreedySearch(s *storage.Storage, dist distance.Func, g *Graph, entries []uint32, query []byte, l int, vis *visited.Set) (topL []Candidate, visitedIDs []uint32) {
	vis.Reset()
	list := newCandidateList(l)

	for _, e := range entries {
		if vis.Visit(e) {
			d := dist(query, s.GetVector(int(e)))
			list.insert(Candidate{ID: e, Dist: d})
			visitedIDs = append(visitedIDs, e)
		}
	}

	for {
		idx := list.nextUnexpanded()
		if idx < 0 {
			break
		}
		list.expanded[idx] = true
		cur := list.items[idx].ID
		for _, nb := range g.Neighbors(cur) {
			if vis.Visit(nb) {
				d := dist(query, s.GetVector(int(nb)))
				list.insert(Candidate{ID: nb, Dist: d})
				visitedIDs = append(visitedIDs, nb)
			}
		}
	}

	return list.items, visitedIDs
}

// RobustPrune selects at most R candidates for p: sorted ascending by
// distance to p, a candidate q is accepted iff for every already
// accepted r, alpha*d(r,q) > d(p,q) — q is not dominated by a closer
// accepted neighbor. Candidates' Dist fields must already be distances
// to p; RobustPrune does not recompute them.
func RobustPrune(s *storage.Storage, dist distance.Func, p uint32, candidates []Candidate, alpha float32, r int) []uint32 {
	sorted := slices.Clone(candidates)
	slices.SortFunc(sorted, func(a, b Candidate) int {
		if less(a, b) {
			return -1
		}
		if less(b, a) {
			return 1
		}
		return 0
	})

	accepted := make([]uint32, 0, r)
	acceptedVecs := make([][]byte, 0, r)

	for _, c := range sorted {
		if c.ID == p || len(accepted) >= r {
			continue
		}
		dominated := false
		cVec := s.GetVector(int(c.ID))
		for _, rv := range acceptedVecs {
			drq := dist(rv, cVec)
			if alpha*drq <= c.Dist {
				dominated = true
				break
			}
		}
		if !dominated {
			accepted = append(accepted, c.ID)
			acceptedVecs = append(acceptedVecs, cVec)
		}
	}
	return accepted
}
