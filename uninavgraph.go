package ung

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/RoaringBitmap/roaring/v2"

	"ung/distance"
	"ung/internal/crossedge"
	"ung/internal/errs"
	"ung/internal/lng"
	"ung/internal/vamana"
	"ung/storage"
)

// UniNavGraph is a graph-based index for filtered approximate
// nearest-neighbor search: points are partitioned into groups sharing an
// identical label set, each group gets its own Vamana proximity graph, a
// label navigating graph (LNG) orders the groups by label-set containment,
// and cross edges let a filtered beam search descend from one group into
// another without leaving the unified adjacency.
type UniNavGraph struct {
	storage *storage.Storage
	dist    distance.Func
	metric  distance.Metric
	elem    distance.ElemType

	opts options

	groups  []*lng.Group // sorted ascending by Lo
	byID    map[lng.GroupID]*lng.Group
	vgraphs map[lng.GroupID]*vamana.Graph // local-indexed per group

	lngGraph  *lng.LNG        // nil under ScenarioEquality
	crossList *vamana.CrossList // nil under ScenarioEquality

	labelIndex map[storage.LabelID]*roaring.Bitmap // nil under ScenarioEquality

	logger  *Logger
	metrics MetricsCollector
}

// Dim returns the vector dimensionality.
func (u *UniNavGraph) Dim() int { return u.storage.Dim() }

// NumPoints returns the number of indexed points.
func (u *UniNavGraph) NumPoints() int { return u.storage.NumPoints() }

// NumGroups returns the number of label-set groups, excluding the
// synthetic LNG root.
func (u *UniNavGraph) NumGroups() int { return len(u.groups) }

// Metric returns the distance metric the index was built with.
func (u *UniNavGraph) Metric() distance.Metric { return u.metric }

type groupSpan struct {
	lo, hi int
	labels storage.LabelSet
}

// groupByLabelSet buckets s's points by identical label set and returns a
// new-to-old permutation (see storage.Storage.Reorder) that lays out
// points group by group, plus each resulting group's [lo,hi) span. Group
// order is deterministic — ascending by label-set cardinality, then
// lexicographically by label id — so Build and Load derive the identical
// permutation from the identical (vectors, labels) input.
func groupByLabelSet(s *storage.Storage) ([]int, []groupSpan) {
	n := s.NumPoints()
	buckets := make(map[string][]int)
	labelsByKey := make(map[string]storage.LabelSet)
	keys := make([]string, 0)

	for id := 0; id < n; id++ {
		l := s.GetLabels(id)
		key := l.Key()
		if _, ok := buckets[key]; !ok {
			keys = append(keys, key)
			labelsByKey[key] = l.Clone()
		}
		buckets[key] = append(buckets[key], id)
	}

	sort.Slice(keys, func(i, j int) bool {
		a, b := labelsByKey[keys[i]], labelsByKey[keys[j]]
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		for k := range a {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})

	perm := make([]int, 0, n)
	spans := make([]groupSpan, 0, len(keys))
	for _, key := range keys {
		ids := buckets[key]
		lo := len(perm)
		perm = append(perm, ids...)
		spans = append(spans, groupSpan{lo: lo, hi: len(perm), labels: labelsByKey[key]})
	}
	return perm, spans
}

// Build groups s by label set, builds a Vamana subgraph per group, and —
// unless configured with ScenarioEquality — derives the label navigating
// graph and plans cross edges between groups. s is reordered in place
// (storage.Storage.Reorder) so that points sharing a label set become
// contiguous.
func Build(ctx context.Context, s *storage.Storage, metric distance.Metric, optFns ...Option) (*UniNavGraph, error) {
	o := applyOptions(optFns)
	if o.indexType != IndexTypeVamana {
		return nil, errs.New(errs.ConfigError, "ung.Build", fmt.Errorf("unsupported index type %d", o.indexType))
	}
	n := s.NumPoints()
	if n == 0 {
		return nil, errs.New(errs.DataError, "ung.Build", fmt.Errorf("empty storage"))
	}

	dist, err := distance.Provider(metric, s.DataType())
	if err != nil {
		return nil, errs.New(errs.ConfigError, "ung.Build", err)
	}

	o.logger.LogBuildStart(ctx, n, s.Dim())
	start := time.Now()

	perm, spans := groupByLabelSet(s)
	if err := s.Reorder(perm); err != nil {
		return nil, err
	}

	groups := make([]*lng.Group, len(spans))
	vgraphSlice := make([]*vamana.Graph, len(spans))

	grp, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(max(o.numThreads, 1)))
	for i, span := range spans {
		i, span := i, span
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		grp.Go(func() error {
			defer sem.Release(1)
			view := s.SliceView(span.lo, span.hi)
			gStart := time.Now()
			g, medoid, buildErr := vamana.Build(gctx, view, dist, vamana.Params{
				R: o.maxDegree, LBuild: o.searchListSize, Alpha: o.alpha, NumThreads: o.numThreads,
			})
			o.logger.LogBuildGroup(gctx, uint32(i+1), span.hi-span.lo, time.Since(gStart).Milliseconds(), buildErr)
			if buildErr != nil {
				return buildErr
			}
			groups[i] = &lng.Group{ID: lng.GroupID(i + 1), Labels: span.labels, Lo: span.lo, Hi: span.hi, Medoid: medoid}
			vgraphSlice[i] = g
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		o.logger.LogBuildComplete(ctx, n, len(spans), 0, time.Since(start).Milliseconds(), err)
		return nil, errs.New(errs.InternalError, "ung.Build", err)
	}

	byID := make(map[lng.GroupID]*lng.Group, len(groups))
	vgraphs := make(map[lng.GroupID]*vamana.Graph, len(groups))
	for i, g := range groups {
		byID[g.ID] = g
		vgraphs[g.ID] = vgraphSlice[i]
	}

	u := &UniNavGraph{
		storage: s, dist: dist, metric: metric, elem: s.DataType(),
		opts: o, byID: byID, vgraphs: vgraphs,
		logger: o.logger, metrics: o.metrics,
	}
	u.groups = append([]*lng.Group(nil), groups...)
	sort.Slice(u.groups, func(i, j int) bool { return u.groups[i].Lo < u.groups[j].Lo })

	numCrossEdges := 0
	if o.scenario == ScenarioGeneral {
		flat := make([]lng.Group, len(groups))
		for i, g := range groups {
			flat[i] = *g
		}
		u.lngGraph = lng.Build(flat)

		ggs := make(map[lng.GroupID]crossedge.GroupGraph, len(groups))
		for id, g := range byID {
			ggs[id] = crossedge.GroupGraph{Group: *g, Graph: vgraphs[id], Medoid: g.Medoid}
		}
		cl, err := crossedge.Plan(s, dist, u.lngGraph, ggs, o.searchListSize, o.numCrossEdges, o.alpha)
		if err != nil {
			return nil, err
		}
		u.crossList = cl
		for _, targets := range cl.All() {
			numCrossEdges += len(targets)
		}
		u.buildLabelIndex()
	}

	o.logger.LogBuildComplete(ctx, n, len(groups), numCrossEdges, time.Since(start).Milliseconds(), nil)
	o.metrics.ObserveBuild(n, len(groups), numCrossEdges, time.Since(start).Milliseconds())
	return u, nil
}
