package distance

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f32Bytes(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}

func TestProviderF32(t *testing.T) {
	a := f32Bytes([]float32{1, 2, 3})
	b := f32Bytes([]float32{4, 5, 6})

	fn, err := Provider(L2, F32)
	require.NoError(t, err)
	assert.InDelta(t, float32(27), fn(a, b), 1e-5)

	fn, err = Provider(IP, F32)
	require.NoError(t, err)
	assert.InDelta(t, float32(-32), fn(a, b), 1e-5)

	fn, err = Provider(Cosine, F32)
	require.NoError(t, err)
	assert.Less(t, fn(a, b), float32(0))
	assert.InDelta(t, float32(-1), fn(a, a), 1e-4)
}

func TestProviderI8(t *testing.T) {
	a := []byte{1, 2, 3}
	b := []byte{4, 5, 6}

	fn, err := Provider(L2, I8)
	require.NoError(t, err)
	assert.InDelta(t, float32(27), fn(a, b), 1e-5)

	fn, err = Provider(IP, I8)
	require.NoError(t, err)
	assert.InDelta(t, float32(-32), fn(a, b), 1e-5)

	_, err = Provider(Cosine, I8)
	assert.Error(t, err)
}

func TestProviderU8(t *testing.T) {
	a := []byte{10, 20, 30}
	b := []byte{40, 50, 60}

	fn, err := Provider(L2, U8)
	require.NoError(t, err)
	assert.InDelta(t, float32(2700), fn(a, b), 1e-5)

	fn, err = Provider(IP, U8)
	require.NoError(t, err)
	assert.InDelta(t, float32(-3200), fn(a, b), 1e-5)
}

func TestProviderUnsupported(t *testing.T) {
	_, err := Provider(Metric(99), F32)
	assert.Error(t, err)

	_, err = Provider(L2, ElemType(99))
	assert.Error(t, err)
}

func TestMetricAndElemTypeString(t *testing.T) {
	assert.Equal(t, "L2", L2.String())
	assert.Equal(t, "IP", IP.String())
	assert.Equal(t, "Cosine", Cosine.String())
	assert.Equal(t, "Metric(99)", Metric(99).String())

	assert.Equal(t, "f32", F32.String())
	assert.Equal(t, "i8", I8.String())
	assert.Equal(t, "u8", U8.String())
	assert.Equal(t, "ElemType(99)", ElemType(99).String())
}

func TestElemSize(t *testing.T) {
	assert.Equal(t, 4, ElemSize(F32))
	assert.Equal(t, 1, ElemSize(I8))
	assert.Equal(t, 1, ElemSize(U8))
}
