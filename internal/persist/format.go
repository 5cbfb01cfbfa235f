package persist

import (
	"encoding/binary"
	"errors"

	"ung/internal/errs"
)

const (
	magicNumber    uint32 = 0x554e4721 // "UNG!"
	formatVersion  uint32 = 1
	headerReserved        = 20
)

var (
	errShortHeader = errors.New("buffer too small for header")
	errBadMagic    = errors.New("invalid magic number")
	errBadVersion  = errors.New("unsupported format version")
)

// fileHeader is the fixed-size container header: magic, version, element
// type and metric tags, dimension/point/degree counts, and byte offsets
// into the body for each of the four variable-length sections. The
// separately-tracked "meta" artifact is these scalar fields themselves;
// there is no separate meta section to decode.
type fileHeader struct {
	Magic           uint32
	Version         uint32
	ElemType        uint8
	Metric          uint8
	CompressionType uint8
	_               uint8 // padding

	Dim       uint32
	N         uint32
	MaxDegree uint32
	NumGroups uint32

	GraphOffset  uint64
	GraphLen     uint64
	LabelsOffset uint64
	LabelsLen    uint64
	GroupsOffset uint64
	GroupsLen    uint64
	LNGOffset    uint64
	LNGLen       uint64

	Checksum uint32
	_        [headerReserved]byte
}

const headerSize = 4 + 4 + 1 + 1 + 1 + 1 +
	4 + 4 + 4 + 4 +
	8 + 8 + 8 + 8 + 8 + 8 + 8 + 8 +
	4 + headerReserved

func (h *fileHeader) encode() []byte {
	buf := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(buf[0:], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:], h.Version)
	buf[8] = h.ElemType
	buf[9] = h.Metric
	buf[10] = h.CompressionType
	binary.LittleEndian.PutUint32(buf[12:], h.Dim)
	binary.LittleEndian.PutUint32(buf[16:], h.N)
	binary.LittleEndian.PutUint32(buf[20:], h.MaxDegree)
	binary.LittleEndian.PutUint32(buf[24:], h.NumGroups)
	binary.LittleEndian.PutUint64(buf[28:], h.GraphOffset)
	binary.LittleEndian.PutUint64(buf[36:], h.GraphLen)
	binary.LittleEndian.PutUint64(buf[44:], h.LabelsOffset)
	binary.LittleEndian.PutUint64(buf[52:], h.LabelsLen)
	binary.LittleEndian.PutUint64(buf[60:], h.GroupsOffset)
	binary.LittleEndian.PutUint64(buf[68:], h.GroupsLen)
	binary.LittleEndian.PutUint64(buf[76:], h.LNGOffset)
	binary.LittleEndian.PutUint64(buf[84:], h.LNGLen)
	binary.LittleEndian.PutUint32(buf[92:], h.Checksum)
	return buf
}

func decodeHeader(buf []byte) (*fileHeader, error) {
	if len(buf) < headerSize {
		return nil, errs.New(errs.FormatError, "persist.decodeHeader", errShortHeader)
	}
	h := &fileHeader{}
	h.Magic = binary.LittleEndian.Uint32(buf[0:])
	if h.Magic != magicNumber {
		return nil, errs.New(errs.FormatError, "persist.decodeHeader", errBadMagic)
	}
	h.Version = binary.LittleEndian.Uint32(buf[4:])
	if h.Version != formatVersion {
		return nil, errs.New(errs.ConfigError, "persist.decodeHeader", errBadVersion)
	}
	h.ElemType = buf[8]
	h.Metric = buf[9]
	h.CompressionType = buf[10]
	h.Dim = binary.LittleEndian.Uint32(buf[12:])
	h.N = binary.LittleEndian.Uint32(buf[16:])
	h.MaxDegree = binary.LittleEndian.Uint32(buf[20:])
	h.NumGroups = binary.LittleEndian.Uint32(buf[24:])
	h.GraphOffset = binary.LittleEndian.Uint64(buf[28:])
	h.GraphLen = binary.LittleEndian.Uint64(buf[36:])
	h.LabelsOffset = binary.LittleEndian.Uint64(buf[44:])
	h.LabelsLen = binary.LittleEndian.Uint64(buf[52:])
	h.GroupsOffset = binary.LittleEndian.Uint64(buf[60:])
	h.GroupsLen = binary.LittleEndian.Uint64(buf[68:])
	h.LNGOffset = binary.LittleEndian.Uint64(buf[76:])
	h.LNGLen = binary.LittleEndian.Uint64(buf[84:])
	h.Checksum = binary.LittleEndian.Uint32(buf[92:])
	return h, nil
}
