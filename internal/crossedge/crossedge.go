package crossedge

import (
	"errors"

	"ung/distance"
	"ung/internal/errs"
	"ung/internal/lng"
	"ung/internal/vamana"
	"ung/internal/visited"
	"ung/storage"
)

var errEmptyGroups = errors.New("crossedge.Plan called with no groups")

// sentinelID never collides with a real group-local vertex id, so passing
// it as RobustPrune's "owner" argument disables its self-loop rejection
// without having to teach RobustPrune about two coordinate spaces.
const sentinelID = ^uint32(0)

// GroupGraph pairs a group with its already-built local Vamana graph and
// the group's medoid, both addressed in that group's local coordinates
// (global id = Group.Lo + local id).
type GroupGraph struct {
	Group  lng.Group
	Graph  *vamana.Graph
	Medoid uint32
}

// Plan inserts cross edges for every group in groups, one batch per LNG
// edge g -> h: up to numCrossEdges directed edges from g's medoid
// (translated to global coordinates) to points discovered inside h by a
// greedy search rooted at h's medoid with g's medoid vector as the query,
// then robust-pruned to the bound. The synthetic root is never a source
// since it owns no points; groups missing from the map are skipped, both
// as sources and as children.
func Plan(global *storage.Storage, dist distance.Func, l *lng.LNG, groups map[lng.GroupID]GroupGraph, lBuild, numCrossEdges int, alpha float32) (*vamana.CrossList, error) {
	if len(groups) == 0 {
		return nil, errs.New(errs.DataError, "crossedge.Plan", errEmptyGroups)
	}

	cl := vamana.NewCrossList()
	vis := visited.New(global.NumPoints())

	for gid, gg := range groups {
		globalMedoid := uint32(gg.Group.Lo) + gg.Medoid
		query := global.GetVector(int(globalMedoid))

		for _, hid := range l.Children(gid) {
			hg, ok := groups[hid]
			if !ok {
				continue
			}
			targets := planOne(global, dist, hg, query, lBuild, numCrossEdges, alpha, vis)
			for _, t := range targets {
				cl.Add(globalMedoid, uint32(hg.Group.Lo)+t)
			}
		}
	}
	return cl, nil
}

func planOne(global *storage.Storage, dist distance.Func, hg GroupGraph, query []byte, lBuild, numCrossEdges int, alpha float32, vis *visited.Set) []uint32 {
	view := global.SliceView(hg.Group.Lo, hg.Group.Hi)
	_, visitedIDs := vamana.GreedySearch(view, dist, hg.Graph, []uint32{hg.Medoid}, query, lBuild, vis)

	candidates := make([]vamana.Candidate, 0, len(visitedIDs))
	for _, id := range visitedIDs {
		candidates = append(candidates, vamana.Candidate{ID: id, Dist: dist(query, view.GetVector(int(id)))})
	}
	return vamana.RobustPrune(view, dist, sentinelID, candidates, alpha, numCrossEdges)
}
