package vamana

import (
	"bytes"
	"context"
	"encoding/binary"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ung/distance"
	"ung/internal/visited"
	"ung/storage"
)

func randomStorage(t *testing.T, n, dim int) *storage.Storage {
	t.Helper()
	rng := rand.New(rand.NewPCG(42, 7))
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(n)))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(dim)))
	for i := 0; i < n*dim; i++ {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, rng.Float32()))
	}
	s, err := storage.LoadFrom(&buf, nil, distance.F32, 0)
	require.NoError(t, err)
	return s
}

func TestBuildDegreeCapAndNoDuplicates(t *testing.T) {
	s := randomStorage(t, 200, 8)
	fn, err := distance.Provider(distance.L2, distance.F32)
	require.NoError(t, err)

	g, medoid, err := Build(context.Background(), s, fn, Params{R: 16, LBuild: 32, Alpha: 1.2, NumThreads: 4})
	require.NoError(t, err)
	assert.Less(t, int(medoid), s.NumPoints())

	for id := 0; id < s.NumPoints(); id++ {
		neigh := g.Neighbors(uint32(id))
		assert.LessOrEqual(t, len(neigh), 16)

		seen := make(map[uint32]struct{}, len(neigh))
		for _, n := range neigh {
			assert.NotEqual(t, uint32(id), n, "self-loop at %d", id)
			_, dup := seen[n]
			assert.False(t, dup, "duplicate neighbor %d at vertex %d", n, id)
			seen[n] = struct{}{}
		}
	}
}

func TestBuildReachableFromMedoid(t *testing.T) {
	s := randomStorage(t, 150, 8)
	fn, err := distance.Provider(distance.L2, distance.F32)
	require.NoError(t, err)

	g, medoid, err := Build(context.Background(), s, fn, Params{R: 12, LBuild: 32, Alpha: 1.2, NumThreads: 4})
	require.NoError(t, err)

	visitedSet := visited.New(s.NumPoints())
	for target := 0; target < s.NumPoints(); target++ {
		query := s.GetVector(target)
		_, visitedIDs := GreedySearch(s, fn, g, []uint32{medoid}, query, s.NumPoints(), visitedSet)
		assert.Contains(t, visitedIDs, uint32(target), "point %d unreachable from medoid", target)
	}
}

func TestBuildEmptyStorageErrors(t *testing.T) {
	s := storage.New(4, distance.F32)
	fn, err := distance.Provider(distance.L2, distance.F32)
	require.NoError(t, err)

	_, _, err = Build(context.Background(), s, fn, Params{R: 4, LBuild: 8, Alpha: 1.2, NumThreads: 1})
	assert.Error(t, err)
}
