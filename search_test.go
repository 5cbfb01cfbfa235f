package ung

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ung/distance"
	"ung/storage"
)

func searchIDs(results []SearchResult) []uint32 {
	ids := make([]uint32, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	return ids
}

// S1 (tiny equality): query (0,0.1) with {A}, scenario=equality, k=2.
// Expected nearest ids in distance order: 0, 1.
func TestSearchEquality_S1(t *testing.T) {
	u := buildS1(t, ScenarioGeneral)
	q := vecBytes(t, []float32{0, 0.1})

	results, err := u.Search(context.Background(), q, storage.LabelSet{1}, SearchParams{
		K: 2, LSearch: 8, NumEntryPoints: 1, Scenario: SearchEquality,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, []uint32{0, 1}, searchIDs(results))
}

// S2 (containment): query (5.1,5.1) with {A}, scenario=containment, k=3.
// Points 0,1 carry {A} and 4,5 carry {A,B}, all four satisfying {A} ⊆
// L(id); point 1 at (0,1) is closer to the query than point 0 at (0,0),
// so the three nearest among those four are 4, 5, 1 in that order.
func TestSearchContainment_S2(t *testing.T) {
	u := buildS1(t, ScenarioGeneral)
	q := vecBytes(t, []float32{5.1, 5.1})

	results, err := u.Search(context.Background(), q, storage.LabelSet{1}, SearchParams{
		K: 3, LSearch: 8, NumEntryPoints: 1, Scenario: SearchContainment,
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []uint32{4, 5, 1}, searchIDs(results))
}

// S3 (overlap): query (9.9,9.9) with {A}, scenario=overlap, k=2. Points
// 2,3 labeled {B} are excluded; among 0,1,4,5 (all overlapping {A}),
// point 5 at (5,6) is slightly closer to the query than point 4 at (5,5).
func TestSearchOverlap_S3(t *testing.T) {
	u := buildS1(t, ScenarioGeneral)
	q := vecBytes(t, []float32{9.9, 9.9})

	results, err := u.Search(context.Background(), q, storage.LabelSet{1}, SearchParams{
		K: 2, LSearch: 8, NumEntryPoints: 1, Scenario: SearchOverlap,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, []uint32{5, 4}, searchIDs(results))
}

// S5 (empty label file): an index with no label file gives every point
// label {1}; an equality query for {1} returns every point, ranked
// purely by L2 distance to the query, identical to an unfiltered search.
func TestSearchEmptyLabelFile_S5(t *testing.T) {
	raw := encodeVectorFile(t, [][]float32{{0, 0}, {0, 1}, {10, 10}, {10, 11}, {5, 5}, {5, 6}})
	noLabels, err := storage.LoadFrom(bytes.NewReader(raw), nil, distance.F32, 0)
	require.NoError(t, err)

	u, err := Build(context.Background(), noLabels, distance.L2,
		WithScenario(ScenarioEquality), WithMaxDegree(4), WithSearchListSize(8), WithAlpha(1.2))
	require.NoError(t, err)
	q := vecBytes(t, []float32{0, 0.1})

	results, err := u.Search(context.Background(), q, storage.LabelSet{1}, SearchParams{
		K: 6, LSearch: 8, NumEntryPoints: 1, Scenario: SearchEquality,
	})
	require.NoError(t, err)
	require.Len(t, results, 6)
	assert.Equal(t, uint32(0), results[0].ID)
	assert.Equal(t, uint32(1), results[1].ID)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i].Dist, results[i-1].Dist)
	}
}

func TestSearchRejectsNonEqualityOnEqualityOnlyIndex(t *testing.T) {
	u := buildS1(t, ScenarioEquality)
	q := vecBytes(t, []float32{0, 0})

	_, err := u.Search(context.Background(), q, storage.LabelSet{1}, SearchParams{
		K: 2, LSearch: 8, Scenario: SearchContainment,
	})
	assert.Error(t, err)
}
