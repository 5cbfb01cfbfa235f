package persist

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"ung/internal/errs"
)

// CompressionType selects the algorithm applied to a persisted section.
type CompressionType uint8

const (
	CompressionNone CompressionType = 0
	CompressionLZ4  CompressionType = 1
	CompressionZSTD CompressionType = 2
)

// blockHeaderSize is the [uncompressedSize:u32][compressedSize:u32] prefix
// every compressed section carries; compressedSize == 0 means the section
// is stored uncompressed (compression did not help, or was disabled).
const blockHeaderSize = 8

// zstd encoders/decoders are pooled rather than shared as one instance,
// since neither type is safe for concurrent use across goroutines.
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) { zstdEncoderPool.Put(enc) }

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) { zstdDecoderPool.Put(dec) }

// compressSection compresses data with the given algorithm and prefixes
// it with a block header. CompressionNone (or empty input) is stored
// verbatim under the header, so decompressSection has one code path
// regardless of whether compression was applied.
func compressSection(data []byte, compression CompressionType) ([]byte, error) {
	if compression == CompressionNone || len(data) == 0 {
		return withHeader(data, nil), nil
	}

	var compressed []byte
	var err error
	switch compression {
	case CompressionLZ4:
		compressed, err = compressLZ4(data)
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		putZstdEncoder(enc)
	default:
		return nil, errs.New(errs.ConfigError, "persist.compressSection", fmt.Errorf("unknown compression type %d", compression))
	}
	if err != nil {
		return nil, err
	}
	if compressed == nil {
		return withHeader(data, nil), nil
	}
	return withHeader(data, compressed), nil
}

func withHeader(data, compressed []byte) []byte {
	if compressed == nil {
		out := make([]byte, blockHeaderSize+len(data))
		binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
		binary.LittleEndian.PutUint32(out[4:], 0)
		copy(out[blockHeaderSize:], data)
		return out
	}
	out := make([]byte, blockHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(out[4:], uint32(len(compressed)))
	copy(out[blockHeaderSize:], compressed)
	return out
}

func compressLZ4(data []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, dst, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // incompressible; caller falls back to storing verbatim
	}
	return dst[:n], nil
}

// decompressSection reverses compressSection.
func decompressSection(data []byte, compression CompressionType) ([]byte, error) {
	if len(data) < blockHeaderSize {
		return nil, errs.New(errs.FormatError, "persist.decompressSection", fmt.Errorf("section too small for block header"))
	}
	uncompressedSize := binary.LittleEndian.Uint32(data[0:])
	compressedSize := binary.LittleEndian.Uint32(data[4:])

	if compressedSize == 0 {
		if uint32(len(data)) < blockHeaderSize+uncompressedSize {
			return nil, errs.New(errs.FormatError, "persist.decompressSection", fmt.Errorf("section body shorter than declared size"))
		}
		return data[blockHeaderSize : blockHeaderSize+uncompressedSize], nil
	}
	if uint32(len(data)) < blockHeaderSize+compressedSize {
		return nil, errs.New(errs.FormatError, "persist.decompressSection", fmt.Errorf("compressed section body shorter than declared size"))
	}
	body := data[blockHeaderSize : blockHeaderSize+compressedSize]
	out := make([]byte, uncompressedSize)

	switch compression {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, errs.New(errs.FormatError, "persist.decompressSection", err)
		}
		if uint32(n) != uncompressedSize {
			return nil, errs.New(errs.FormatError, "persist.decompressSection", fmt.Errorf("lz4 decompressed size mismatch"))
		}
	case CompressionZSTD:
		dec := getZstdDecoder()
		decoded, err := dec.DecodeAll(body, out[:0])
		putZstdDecoder(dec)
		if err != nil {
			return nil, errs.New(errs.FormatError, "persist.decompressSection", err)
		}
		if uint32(len(decoded)) != uncompressedSize {
			return nil, errs.New(errs.FormatError, "persist.decompressSection", fmt.Errorf("zstd decompressed size mismatch"))
		}
		out = decoded
	default:
		return nil, errs.New(errs.ConfigError, "persist.decompressSection", fmt.Errorf("unknown compression type %d", compression))
	}
	return out, nil
}
