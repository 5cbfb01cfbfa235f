package persist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ung/blobstore"
	"ung/distance"
	"ung/storage"
)

func sampleIndex() *Index {
	return &Index{
		Dim:       2,
		N:         4,
		Elem:      distance.F32,
		Metric:    distance.L2,
		MaxDegree: 2,
		Neighbors: [][]uint32{
			{1, 2},
			{0},
			{0, 3},
			{2},
		},
		Labels: []storage.LabelSet{
			storage.NewLabelSet([]storage.LabelID{1}),
			storage.NewLabelSet([]storage.LabelID{1}),
			storage.NewLabelSet([]storage.LabelID{1, 2}),
			storage.NewLabelSet([]storage.LabelID{1, 2}),
		},
		Groups: []GroupRecord{
			{ID: 1, Lo: 0, Hi: 2, Medoid: 0, Labels: storage.NewLabelSet([]storage.LabelID{1})},
			{ID: 2, Lo: 2, Hi: 4, Medoid: 2, Labels: storage.NewLabelSet([]storage.LabelID{1, 2})},
		},
		LNG: map[uint32][]uint32{
			0: {1},
			1: {2},
		},
	}
}

func roundTrip(t *testing.T, compression CompressionType, verify bool) *Index {
	t.Helper()
	store, err := blobstore.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	idx := sampleIndex()
	require.NoError(t, Save(store, idx, compression))

	loaded, err := Load(store, verify)
	require.NoError(t, err)
	return loaded
}

func TestSaveLoadRoundTripUncompressed(t *testing.T) {
	idx := sampleIndex()
	loaded := roundTrip(t, CompressionNone, true)

	assert.Equal(t, idx.Dim, loaded.Dim)
	assert.Equal(t, idx.N, loaded.N)
	assert.Equal(t, idx.Elem, loaded.Elem)
	assert.Equal(t, idx.Metric, loaded.Metric)
	assert.Equal(t, idx.MaxDegree, loaded.MaxDegree)
	assert.Equal(t, idx.Neighbors, loaded.Neighbors)
	assert.Equal(t, idx.Labels, loaded.Labels)
	assert.Equal(t, idx.Groups, loaded.Groups)
	assert.Equal(t, idx.LNG, loaded.LNG)
}

func TestSaveLoadRoundTripLZ4(t *testing.T) {
	idx := sampleIndex()
	loaded := roundTrip(t, CompressionLZ4, true)
	assert.Equal(t, idx.Neighbors, loaded.Neighbors)
	assert.Equal(t, idx.Labels, loaded.Labels)
}

func TestSaveLoadRoundTripZSTD(t *testing.T) {
	idx := sampleIndex()
	loaded := roundTrip(t, CompressionZSTD, true)
	assert.Equal(t, idx.Neighbors, loaded.Neighbors)
	assert.Equal(t, idx.Groups, loaded.Groups)
}

func TestLoadDetectsChecksumCorruption(t *testing.T) {
	store, err := blobstore.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, Save(store, sampleIndex(), CompressionNone))

	blob, err := store.Open(blobName)
	require.NoError(t, err)
	raw := make([]byte, blob.Size())
	_, _ = blob.ReadAt(raw, 0)
	blob.Close()

	raw[len(raw)-1] ^= 0xFF
	require.NoError(t, store.Put(blobName, raw))

	_, err = Load(store, true)
	assert.Error(t, err)
}

func TestSaveRejectsEmptyIndex(t *testing.T) {
	store, err := blobstore.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	err = Save(store, &Index{}, CompressionNone)
	assert.Error(t, err)
}

func TestLoadRejectsBadMagic(t *testing.T) {
	store, err := blobstore.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Put(blobName, make([]byte, headerSize+4)))

	_, err = Load(store, false)
	assert.Error(t, err)
}
