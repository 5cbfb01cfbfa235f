package ung

import (
	"context"
	"fmt"
	"sort"

	"ung/blobstore"
	"ung/distance"
	"ung/internal/errs"
	"ung/internal/lng"
	"ung/internal/persist"
	"ung/internal/vamana"
	"ung/storage"
)

// Save persists the index under dir via a blobstore.LocalStore: one
// atomically-written container holding the merged graph, label sets,
// group table, and LNG adjacency — the index-directory artifact tuple,
// packed into a single blob rather than one file per artifact.
// Vectors are not part of the container — Load expects a Storage already
// carrying them.
func (u *UniNavGraph) Save(dir string, optFns ...Option) error {
	o := applyOptions(optFns)

	store, err := blobstore.NewLocalStore(dir)
	if err != nil {
		return errs.New(errs.IoError, "ung.Save", err)
	}

	if err := persist.Save(store, u.toPersistIndex(), o.compression); err != nil {
		return err
	}
	u.logger.LogSave(context.Background(), dir, 0, nil)
	return nil
}

func (u *UniNavGraph) toPersistIndex() *persist.Index {
	n := u.storage.NumPoints()
	neighbors := make([][]uint32, n)
	for _, g := range u.groups {
		vg := u.vgraphs[g.ID]
		for local := 0; local < g.Hi-g.Lo; local++ {
			global := uint32(g.Lo + local)
			var merged []uint32
			merged = append(merged, translate(vg.Neighbors(uint32(local)), uint32(g.Lo))...)
			if u.crossList != nil {
				merged = append(merged, u.crossList.Neighbors(global)...)
			}
			neighbors[global] = merged
		}
	}

	labels := make([]storage.LabelSet, n)
	for i := 0; i < n; i++ {
		labels[i] = u.storage.GetLabels(i)
	}

	groups := make([]persist.GroupRecord, len(u.groups))
	for i, g := range u.groups {
		groups[i] = persist.GroupRecord{ID: uint32(g.ID), Lo: g.Lo, Hi: g.Hi, Medoid: g.Medoid, Labels: g.Labels}
	}

	lngAdj := map[uint32][]uint32{}
	if u.lngGraph != nil {
		lngAdj[uint32(lng.Root)] = groupIDsToUint32(u.lngGraph.Children(lng.Root))
		for _, g := range u.groups {
			lngAdj[uint32(g.ID)] = groupIDsToUint32(u.lngGraph.Children(g.ID))
		}
	}

	return &persist.Index{
		Dim: u.storage.Dim(), N: n, Elem: u.elem, Metric: u.metric,
		MaxDegree: u.opts.maxDegree,
		Neighbors: neighbors, Labels: labels, Groups: groups, LNG: lngAdj,
	}
}

func translate(ids []uint32, offset uint32) []uint32 {
	out := make([]uint32, len(ids))
	for i, id := range ids {
		out[i] = id + offset
	}
	return out
}

func groupIDsToUint32(ids []lng.GroupID) []uint32 {
	out := make([]uint32, len(ids))
	for i, id := range ids {
		out[i] = uint32(id)
	}
	return out
}

// Load reconstructs a UniNavGraph from dir's persisted container. s must
// hold the same vectors and labels Build was given, in their original
// pre-reorder order: Load re-derives the build-time group-by-label-set
// permutation from (s's point order, s's labels) and reorders s itself
// the same way Build did, rather than persisting the permutation as a
// separate artifact, since the permutation is a deterministic function
// of exactly those two inputs.
func Load(dir string, s *storage.Storage, optFns ...Option) (*UniNavGraph, error) {
	o := applyOptions(optFns)

	perm, _ := groupByLabelSet(s)
	if err := s.Reorder(perm); err != nil {
		return nil, err
	}

	store, err := blobstore.NewLocalStore(dir)
	if err != nil {
		return nil, errs.New(errs.IoError, "ung.Load", err)
	}
	idx, err := persist.Load(store, o.verifyChecksum)
	if err != nil {
		return nil, err
	}

	if idx.N != s.NumPoints() || idx.Dim != s.Dim() {
		return nil, errs.New(errs.DataError, "ung.Load", fmt.Errorf(
			"persisted index shape (N=%d,Dim=%d) does not match storage (N=%d,Dim=%d)",
			idx.N, idx.Dim, s.NumPoints(), s.Dim()))
	}
	if idx.Elem != s.DataType() {
		return nil, errs.New(errs.ConfigError, "ung.Load", fmt.Errorf(
			"persisted element type %v does not match storage element type %v", idx.Elem, s.DataType()))
	}

	dist, err := distance.Provider(idx.Metric, idx.Elem)
	if err != nil {
		return nil, errs.New(errs.ConfigError, "ung.Load", err)
	}

	groups := make([]*lng.Group, len(idx.Groups))
	byID := make(map[lng.GroupID]*lng.Group, len(idx.Groups))
	vgraphs := make(map[lng.GroupID]*vamana.Graph, len(idx.Groups))
	crossList := vamana.NewCrossList()

	for i, rec := range idx.Groups {
		g := &lng.Group{ID: lng.GroupID(rec.ID), Labels: rec.Labels, Lo: rec.Lo, Hi: rec.Hi, Medoid: rec.Medoid}
		groups[i] = g
		byID[g.ID] = g

		size := rec.Hi - rec.Lo
		edges := make([][]uint32, size)
		for local := 0; local < size; local++ {
			global := rec.Lo + local
			var intra []uint32
			for _, nb := range idx.Neighbors[global] {
				if int(nb) >= rec.Lo && int(nb) < rec.Hi {
					intra = append(intra, nb-uint32(rec.Lo))
				} else {
					crossList.Add(uint32(global), nb)
				}
			}
			edges[local] = intra
		}
		vgraphs[g.ID] = vamana.LoadGraph(size, idx.MaxDegree, edges)
	}

	u := &UniNavGraph{
		storage: s, dist: dist, metric: idx.Metric, elem: idx.Elem,
		opts: o, byID: byID, vgraphs: vgraphs,
		logger: o.logger, metrics: o.metrics,
	}
	u.groups = append([]*lng.Group(nil), groups...)
	sort.Slice(u.groups, func(i, j int) bool { return u.groups[i].Lo < u.groups[j].Lo })

	if len(idx.LNG) > 0 {
		u.opts.scenario = ScenarioGeneral
		flat := make([]lng.Group, len(groups))
		for i, g := range groups {
			flat[i] = *g
		}
		u.lngGraph = lng.Build(flat)
		u.crossList = crossList
		u.buildLabelIndex()
	} else {
		u.opts.scenario = ScenarioEquality
	}

	u.logger.LogLoad(context.Background(), dir, idx.N, nil)
	return u, nil
}
