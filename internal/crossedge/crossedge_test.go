package crossedge

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ung/distance"
	"ung/internal/lng"
	"ung/internal/vamana"
	"ung/storage"
)

// buildStorage encodes each value in vals as a 1-dimensional point.
func buildStorage(t *testing.T, vals []float32) *storage.Storage {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(len(vals))))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(1)))
	for _, v := range vals {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, v))
	}
	s, err := storage.LoadFrom(&buf, nil, distance.F32, 0)
	require.NoError(t, err)
	return s
}

func TestPlanInsertsCrossEdgesToChildGroup(t *testing.T) {
	// group 1: points [0,5) with labels {1}; group 2: points [5,10) with
	// labels {1,2}, an immediate LNG child of group 1.
	vals := []float32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	global := buildStorage(t, vals)
	dist, err := distance.Provider(distance.L2, distance.F32)
	require.NoError(t, err)

	g1 := lng.Group{ID: 1, Labels: storage.NewLabelSet([]storage.LabelID{1}), Lo: 0, Hi: 5}
	g2 := lng.Group{ID: 2, Labels: storage.NewLabelSet([]storage.LabelID{1, 2}), Lo: 5, Hi: 10}
	l := lng.Build([]lng.Group{g1, g2})

	view1 := global.SliceView(g1.Lo, g1.Hi)
	view2 := global.SliceView(g2.Lo, g2.Hi)

	graph1, medoid1, err := vamana.Build(context.Background(), view1, dist, vamana.Params{R: 3, LBuild: 8, Alpha: 1.2, NumThreads: 2})
	require.NoError(t, err)
	graph2, medoid2, err := vamana.Build(context.Background(), view2, dist, vamana.Params{R: 3, LBuild: 8, Alpha: 1.2, NumThreads: 2})
	require.NoError(t, err)

	groups := map[lng.GroupID]GroupGraph{
		1: {Group: g1, Graph: graph1, Medoid: medoid1},
		2: {Group: g2, Graph: graph2, Medoid: medoid2},
	}

	cl, err := Plan(global, dist, l, groups, 8, 2, 1.2)
	require.NoError(t, err)

	globalMedoid1 := uint32(g1.Lo) + medoid1
	targets := cl.Neighbors(globalMedoid1)
	require.NotEmpty(t, targets)
	for _, target := range targets {
		assert.GreaterOrEqual(t, int(target), g2.Lo)
		assert.Less(t, int(target), g2.Hi)
	}
}

func TestPlanEmptyGroupsErrors(t *testing.T) {
	global := buildStorage(t, []float32{0, 1})
	dist, err := distance.Provider(distance.L2, distance.F32)
	require.NoError(t, err)
	l := lng.Build(nil)

	_, err = Plan(global, dist, l, map[lng.GroupID]GroupGraph{}, 8, 2, 1.2)
	assert.Error(t, err)
}

func TestPlanSkipsGroupsWithNoLNGChildren(t *testing.T) {
	vals := []float32{0, 1, 2}
	global := buildStorage(t, vals)
	dist, err := distance.Provider(distance.L2, distance.F32)
	require.NoError(t, err)

	g1 := lng.Group{ID: 1, Labels: storage.NewLabelSet([]storage.LabelID{1}), Lo: 0, Hi: 3}
	l := lng.Build([]lng.Group{g1})

	graph1, medoid1, err := vamana.Build(context.Background(), global.SliceView(g1.Lo, g1.Hi), dist, vamana.Params{R: 2, LBuild: 4, Alpha: 1.2, NumThreads: 1})
	require.NoError(t, err)

	groups := map[lng.GroupID]GroupGraph{1: {Group: g1, Graph: graph1, Medoid: medoid1}}
	cl, err := Plan(global, dist, l, groups, 4, 2, 1.2)
	require.NoError(t, err)
	assert.Empty(t, cl.Neighbors(uint32(g1.Lo)+medoid1))
}
