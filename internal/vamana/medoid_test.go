package vamana

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ung/distance"
	"ung/storage"
)

func vecStorage(t *testing.T, vecs [][]float32) *storage.Storage {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(len(vecs))))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(len(vecs[0]))))
	for _, v := range vecs {
		for _, f := range v {
			require.NoError(t, binary.Write(&buf, binary.LittleEndian, f))
		}
	}
	s, err := storage.LoadFrom(&buf, nil, distance.F32, 0)
	require.NoError(t, err)
	return s
}

func TestMedoidPicksCentralPoint(t *testing.T) {
	// Mean of these 5 points is (5,5); point 4 is exactly the centroid.
	s := vecStorage(t, [][]float32{{0, 0}, {10, 0}, {0, 10}, {10, 10}, {5, 5}})
	fn, err := distance.Provider(distance.L2, distance.F32)
	require.NoError(t, err)

	m := Medoid(s, fn, 2)
	assert.Equal(t, uint32(4), m)
}

func TestMedoidSinglePoint(t *testing.T) {
	s := vecStorage(t, [][]float32{{1, 1}})
	fn, err := distance.Provider(distance.L2, distance.F32)
	require.NoError(t, err)

	assert.Equal(t, uint32(0), Medoid(s, fn, 4))
}
