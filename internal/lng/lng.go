package lng

import (
	"sort"

	"ung/storage"
)

// labelKey is retained as a thin alias over storage.LabelSet.Key so Build
// reads the same either way.
func labelKey(labels storage.LabelSet) string { return labels.Key() }

// GroupID identifies a group within a LNG. 0 is reserved for the
// synthetic root group, whose label set is empty.
type GroupID uint32

// Root is the synthetic group that precedes every other group in the DAG.
const Root GroupID = 0

// Group is one node of the label navigating graph: a contiguous run of
// points in storage sharing the same label set, plus that set's medoid.
type Group struct {
	ID     GroupID
	Labels storage.LabelSet
	Lo, Hi int // [Lo, Hi) point range within storage
	Medoid uint32
}

// LNG is the label navigating graph: a DAG of Groups rooted at Root.
type LNG struct {
	groups   map[GroupID]*Group
	children map[GroupID][]GroupID
	parents  map[GroupID][]GroupID
	topo     []GroupID // real groups only, ascending by label-set cardinality
	exact    map[string]GroupID
}

// Group returns the group with the given id, or nil if it does not exist.
func (l *LNG) Group(id GroupID) *Group {
	return l.groups[id]
}

// Children returns the immediate descendants of g in the DAG.
func (l *LNG) Children(g GroupID) []GroupID {
	return l.children[g]
}

// Len returns the number of real groups, excluding the synthetic root.
func (l *LNG) Len() int {
	return len(l.groups) - 1
}

// FindExact returns the group whose label set equals labels, if one
// exists. Used for the equality filter scenario, where there is at most
// one matching group and an LNG walk would be overkill.
func (l *LNG) FindExact(labels storage.LabelSet) (GroupID, bool) {
	id, ok := l.exact[labelKey(labels)]
	return id, ok
}

// Build constructs the LNG for the given groups. Groups must have
// pairwise-distinct, already-sorted label sets (see storage.NewLabelSet);
// Build attaches a synthetic Root with the empty label set as ancestor of
// every group that otherwise has no ancestor.
func Build(groups []Group) *LNG {
	l := &LNG{
		groups:   make(map[GroupID]*Group, len(groups)+1),
		children: make(map[GroupID][]GroupID, len(groups)+1),
		parents:  make(map[GroupID][]GroupID, len(groups)+1),
		exact:    make(map[string]GroupID, len(groups)),
	}
	l.groups[Root] = &Group{ID: Root, Labels: storage.LabelSet{}}

	ordered := make([]GroupID, 0, len(groups))
	for i := range groups {
		g := groups[i]
		l.groups[g.ID] = &g
		l.exact[labelKey(g.Labels)] = g.ID
		ordered = append(ordered, g.ID)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return l.groups[ordered[i]].Labels.Len() < l.groups[ordered[j]].Labels.Len()
	})

	for _, hID := range ordered {
		h := l.groups[hID]
		var candidates []GroupID
		for _, gID := range ordered {
			if gID == hID {
				continue
			}
			g := l.groups[gID]
			if g.Labels.Len() < h.Labels.Len() && g.Labels.Subset(h.Labels) {
				candidates = append(candidates, gID)
			}
		}
		ancestors := immediateAncestors(l, candidates)
		if len(ancestors) == 0 {
			ancestors = []GroupID{Root}
		}
		l.parents[hID] = ancestors
		for _, a := range ancestors {
			l.children[a] = append(l.children[a], hID)
		}
	}
	l.topo = ordered
	return l
}

// immediateAncestors keeps only the candidates g for which no other
// candidate k strictly lies between g and the target (S_g subset S_k).
// candidates are already known to be proper subsets of the target's
// label set, so it is enough to reject g whenever some other candidate k
// is a proper superset of g.
func immediateAncestors(l *LNG, candidates []GroupID) []GroupID {
	var result []GroupID
	for _, gID := range candidates {
		g := l.groups[gID]
		dominated := false
		for _, kID := range candidates {
			if kID == gID {
				continue
			}
			k := l.groups[kID]
			if g.Labels.Len() < k.Labels.Len() && g.Labels.Subset(k.Labels) {
				dominated = true
				break
			}
		}
		if !dominated {
			result = append(result, gID)
		}
	}
	return result
}

