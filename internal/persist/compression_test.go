package persist

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressDecompressSectionNone(t *testing.T) {
	data := []byte("some section bytes that are not compressed")
	sec, err := compressSection(data, CompressionNone)
	require.NoError(t, err)

	out, err := decompressSection(sec, CompressionNone)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestCompressDecompressSectionLZ4(t *testing.T) {
	data := bytes.Repeat([]byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"), 64)
	sec, err := compressSection(data, CompressionLZ4)
	require.NoError(t, err)

	out, err := decompressSection(sec, CompressionLZ4)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestCompressDecompressSectionZSTD(t *testing.T) {
	data := bytes.Repeat([]byte("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"), 64)
	sec, err := compressSection(data, CompressionZSTD)
	require.NoError(t, err)

	out, err := decompressSection(sec, CompressionZSTD)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestCompressSectionEmptyData(t *testing.T) {
	sec, err := compressSection(nil, CompressionLZ4)
	require.NoError(t, err)

	out, err := decompressSection(sec, CompressionLZ4)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDecompressSectionTooShortErrors(t *testing.T) {
	_, err := decompressSection([]byte{1, 2, 3}, CompressionNone)
	assert.Error(t, err)
}
