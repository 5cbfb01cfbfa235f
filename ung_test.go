package ung

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"ung/distance"
	"ung/storage"
)

// encodeVectorFile builds a {N,D} vector file matching the layout
// storage.LoadFrom expects, mirroring storage_test.go's helper since it
// is not exported.
func encodeVectorFile(t *testing.T, vecs [][]float32) []byte {
	t.Helper()
	var buf bytes.Buffer
	n := uint32(len(vecs))
	d := uint32(0)
	if n > 0 {
		d = uint32(len(vecs[0]))
	}
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, n))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, d))
	for _, v := range vecs {
		for _, f := range v {
			require.NoError(t, binary.Write(&buf, binary.LittleEndian, f))
		}
	}
	return buf.Bytes()
}

// s1Storage builds the 6-point 2D tiny-equality dataset:
// (0,0)[A], (0,1)[A], (10,10)[B], (10,11)[B], (5,5)[A,B], (5,6)[A,B].
// Label A=1, B=2.
func s1Storage(t *testing.T) *storage.Storage {
	t.Helper()
	vecs := [][]float32{
		{0, 0}, {0, 1}, {10, 10}, {10, 11}, {5, 5}, {5, 6},
	}
	raw := encodeVectorFile(t, vecs)
	labelText := "1\n1\n2\n2\n1,2\n1,2\n"
	s, err := storage.LoadFrom(bytes.NewReader(raw), strings.NewReader(labelText), distance.F32, 0)
	require.NoError(t, err)
	return s
}

func vecBytes(t *testing.T, v []float32) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, f := range v {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, f))
	}
	return buf.Bytes()
}
