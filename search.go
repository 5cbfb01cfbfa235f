package ung

import (
	"context"
	"fmt"
	"slices"

	"ung/internal/errs"
	"ung/internal/lng"
	"ung/internal/visited"
	"ung/storage"
)

// SearchScenario selects the filter predicate applied between a query's
// label set Q and a candidate's label set L(id).
type SearchScenario int

const (
	// SearchEquality accepts id iff L(id) == Q.
	SearchEquality SearchScenario = iota
	// SearchContainment accepts id iff Q ⊆ L(id).
	SearchContainment
	// SearchOverlap accepts id iff Q ∩ L(id) ≠ ∅.
	SearchOverlap
)

// SearchResult is one accepted hit: a global point id and its distance to
// the query vector, ascending by distance.
type SearchResult struct {
	ID   uint32
	Dist float32
}

// SearchParams configures one Search call.
type SearchParams struct {
	K              int
	LSearch        int
	NumEntryPoints int
	Scenario       SearchScenario
}

// Search returns up to k nearest accepted points to query among those
// whose label set satisfies Scenario against labels. It never errors on
// a short result: when the filter excludes too much of the reachable
// graph, Search returns fewer than k results rather than padding or
// failing.
func (u *UniNavGraph) Search(ctx context.Context, query []byte, labels storage.LabelSet, p SearchParams) ([]SearchResult, error) {
	if u.opts.scenario == ScenarioEquality && p.Scenario != SearchEquality {
		return nil, errs.New(errs.ConfigError, "ung.Search", fmt.Errorf("index built with ScenarioEquality only supports SearchEquality queries"))
	}

	entryGroups := u.selectEntryGroups(p.Scenario, labels)
	seeds := u.entrySeeds(entryGroups, p.NumEntryPoints)
	if len(seeds) == 0 {
		u.logger.LogSearch(ctx, p.K, 0, 0, nil)
		return nil, nil
	}

	phi := u.predicate(p.Scenario, labels)
	cmp := 0
	results, visitedCount := u.beamSearch(ctx, query, seeds, p.LSearch, phi, &cmp)

	u.logger.LogSearch(ctx, p.K, len(results), visitedCount, nil)
	u.metrics.ObserveSearch(cmp, visitedCount, len(entryGroups), len(results))

	if p.K > 0 && len(results) > p.K {
		results = results[:p.K]
	}
	return results, nil
}

func (u *UniNavGraph) predicate(scenario SearchScenario, q storage.LabelSet) func(storage.LabelSet) bool {
	switch scenario {
	case SearchEquality:
		return func(l storage.LabelSet) bool { return l.Equal(q) }
	case SearchContainment:
		return func(l storage.LabelSet) bool { return q.Subset(l) }
	case SearchOverlap:
		return func(l storage.LabelSet) bool { return q.Overlaps(l) }
	default:
		return func(storage.LabelSet) bool { return false }
	}
}

// owningGroup returns the group whose [Lo,Hi) range contains the global
// id, via binary search over u.groups (sorted ascending by Lo).
func (u *UniNavGraph) owningGroup(id uint32) *lng.Group {
	x := int(id)
	idx, _ := slices.BinarySearchFunc(u.groups, x, func(g *lng.Group, x int) int {
		switch {
		case g.Hi <= x:
			return -1
		case g.Lo > x:
			return 1
		default:
			return 0
		}
	})
	if idx >= len(u.groups) {
		return nil
	}
	return u.groups[idx]
}

// neighbors returns id's out-neighbors in the unified graph: its owning
// group's intra-group adjacency (translated back to global ids) plus any
// cross edges out of id, appended into buf.
func (u *UniNavGraph) neighbors(id uint32, buf []uint32) []uint32 {
	buf = buf[:0]
	g := u.owningGroup(id)
	if g != nil {
		vg := u.vgraphs[g.ID]
		local := id - uint32(g.Lo)
		for _, n := range vg.Neighbors(local) {
			buf = append(buf, n+uint32(g.Lo))
		}
	}
	if u.crossList != nil {
		buf = append(buf, u.crossList.Neighbors(id)...)
	}
	return buf
}

type beamItem struct {
	id   uint32
	dist float32
}

func beamLess(a, b beamItem) bool {
	if a.dist != b.dist {
		return a.dist < b.dist
	}
	return a.id < b.id
}

func beamCmp(a, b beamItem) int {
	if beamLess(a, b) {
		return -1
	}
	if beamLess(b, a) {
		return 1
	}
	return 0
}

// beamSearch walks the unified graph from seeds toward query: identical
// to greedy search except the bounded frontier (size l) admits every
// visited candidate regardless of phi, while the unbounded accepted list
// only ever receives candidates phi accepts — so the walk can cross
// through non-matching points to reach matching ones deeper in the graph.
func (u *UniNavGraph) beamSearch(ctx context.Context, query []byte, seeds []uint32, l int, phi func(storage.LabelSet) bool, cmp *int) ([]SearchResult, int) {
	vis := visited.New(u.storage.NumPoints())
	list := make([]beamItem, 0, l)
	expanded := make([]bool, 0, l)
	var accepted []beamItem

	consider := func(c beamItem) {
		idx, found := slices.BinarySearchFunc(list, c, beamCmp)
		if found {
			return
		}
		if len(list) >= l {
			if idx >= l {
				return
			}
			list = list[:len(list)-1]
			expanded = expanded[:len(expanded)-1]
		}
		list = slices.Insert(list, idx, c)
		expanded = slices.Insert(expanded, idx, false)
	}

	visit := func(id uint32) {
		if !vis.Visit(id) {
			return
		}
		d := u.dist(query, u.storage.GetVector(int(id)))
		*cmp++
		consider(beamItem{id: id, dist: d})
		if phi(u.storage.GetLabels(int(id))) {
			accepted = append(accepted, beamItem{id: id, dist: d})
		}
	}

	for _, s := range seeds {
		visit(s)
	}

	visitedCount := 0
	buf := make([]uint32, 0, 64)
	for {
		if ctx.Err() != nil {
			break
		}
		idx := -1
		for i := range list {
			if !expanded[i] {
				idx = i
				break
			}
		}
		if idx < 0 {
			break
		}
		expanded[idx] = true
		visitedCount++
		buf = u.neighbors(list[idx].id, buf)
		for _, nb := range buf {
			visit(nb)
		}
	}

	slices.SortFunc(accepted, beamCmp)
	results := make([]SearchResult, len(accepted))
	for i, c := range accepted {
		results[i] = SearchResult{ID: c.id, Dist: c.dist}
	}
	return results, visitedCount
}
