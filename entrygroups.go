package ung

import (
	"github.com/RoaringBitmap/roaring/v2"

	"ung/internal/lng"
	"ung/storage"
)

// buildLabelIndex maintains, per label, the set of group ids whose label
// set carries that label. It accelerates entry-group selection for the
// containment and overlap scenarios; the LNG walk remains the
// correctness-defining path for containment, and the two must agree (see
// entrygroups_test.go). Overlap has no minimality step to agree on — both
// paths return the same unfiltered matching set.
func (u *UniNavGraph) buildLabelIndex() {
	idx := make(map[storage.LabelID]*roaring.Bitmap)
	for _, g := range u.groups {
		for _, lbl := range g.Labels {
			bm, ok := idx[lbl]
			if !ok {
				bm = roaring.New()
				idx[lbl] = bm
			}
			bm.Add(uint32(g.ID))
		}
	}
	u.labelIndex = idx
}

// selectEntryGroups picks the entry groups for a Search call's filter
// predicate. Equality always does a direct exact-match scan. Containment
// and overlap prefer the bitmap-accelerated path when the index was built
// with ScenarioGeneral; an equality-only build with no LNG falls back to
// returning nothing for those scenarios (rejected earlier by Search).
func (u *UniNavGraph) selectEntryGroups(scenario SearchScenario, q storage.LabelSet) []lng.GroupID {
	if scenario == SearchEquality {
		for _, g := range u.groups {
			if g.Labels.Equal(q) {
				return []lng.GroupID{g.ID}
			}
		}
		return nil
	}
	if u.labelIndex != nil {
		return u.entryGroupsBitmap(scenario, q)
	}
	return u.entryGroupsLNGWalk(scenario, q)
}

// entryGroupsLNGWalk is the correctness-defining path for containment: it
// walks the LNG from root, propagating domination in topological order so
// a matching ancestor excludes every descendant regardless of how many
// parents the descendant has. Overlap takes every intersecting group
// directly: containment alone gets the "minimal under ⊆" restriction;
// overlap keeps the full matching set since a cross edge reaching a
// dominated group would otherwise never get visited.
func (u *UniNavGraph) entryGroupsLNGWalk(scenario SearchScenario, q storage.LabelSet) []lng.GroupID {
	if u.lngGraph == nil {
		return nil
	}
	switch scenario {
	case SearchContainment:
		return u.lngGraph.SelectEntryGroups(func(id lng.GroupID) bool {
			return q.Subset(u.lngGraph.Group(id).Labels)
		})
	case SearchOverlap:
		var ids []lng.GroupID
		for _, g := range u.groups {
			if q.Overlaps(g.Labels) {
				ids = append(ids, g.ID)
			}
		}
		return ids
	default:
		return nil
	}
}

// entryGroupsBitmap computes the same containment result as
// entryGroupsLNGWalk without walking the DAG: it intersects the per-label
// group bitmaps to get every group satisfying containment, then keeps only
// the ones minimal under label-set inclusion within that candidate set —
// exactly the set an LNG walk from root would stop at, since any
// dominated candidate has some other candidate as an ancestor along every
// descent path reaching it. Overlap unions the per-label bitmaps and
// returns every matching group unfiltered, matching entryGroupsLNGWalk.
func (u *UniNavGraph) entryGroupsBitmap(scenario SearchScenario, q storage.LabelSet) []lng.GroupID {
	var candidates *roaring.Bitmap
	switch scenario {
	case SearchContainment:
		if len(q) == 0 {
			return u.minimalBySubset(u.allGroupIDs())
		}
		for _, lbl := range q {
			bm := u.labelIndex[lbl]
			if bm == nil {
				return nil
			}
			if candidates == nil {
				candidates = bm.Clone()
			} else {
				candidates.And(bm)
			}
		}
	case SearchOverlap:
		candidates = roaring.New()
		for _, lbl := range q {
			if bm := u.labelIndex[lbl]; bm != nil {
				candidates.Or(bm)
			}
		}
	default:
		return nil
	}
	if candidates == nil || candidates.IsEmpty() {
		return nil
	}

	ids := make([]lng.GroupID, 0, candidates.GetCardinality())
	candidates.Iterate(func(x uint32) bool {
		ids = append(ids, lng.GroupID(x))
		return true
	})
	if scenario == SearchContainment {
		return u.minimalBySubset(ids)
	}
	return ids
}

func (u *UniNavGraph) allGroupIDs() []lng.GroupID {
	ids := make([]lng.GroupID, len(u.groups))
	for i, g := range u.groups {
		ids[i] = g.ID
	}
	return ids
}

// minimalBySubset drops any id whose label set is a strict superset of
// some other candidate's, leaving the groups nearest the LNG root among
// the candidate set.
func (u *UniNavGraph) minimalBySubset(ids []lng.GroupID) []lng.GroupID {
	var result []lng.GroupID
	for _, id := range ids {
		g := u.byID[id]
		dominated := false
		for _, other := range ids {
			if other == id {
				continue
			}
			h := u.byID[other]
			if h.Labels.Len() < g.Labels.Len() && h.Labels.Subset(g.Labels) {
				dominated = true
				break
			}
		}
		if !dominated {
			result = append(result, id)
		}
	}
	return result
}

// entrySeeds returns, for each selected entry group, its medoid as a
// global point id. numEntryPoints is not consulted: every selected group
// contributes exactly one seed, its medoid.
func (u *UniNavGraph) entrySeeds(groups []lng.GroupID, numEntryPoints int) []uint32 {
	seeds := make([]uint32, 0, len(groups))
	for _, id := range groups {
		g := u.byID[id]
		if g == nil {
			continue
		}
		seeds = append(seeds, uint32(g.Lo)+g.Medoid)
	}
	return seeds
}
