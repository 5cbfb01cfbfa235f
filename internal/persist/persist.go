// Package persist implements the versioned binary container UniNavGraph
// saves to and loads from a single index prefix: one fixed-size header
// followed by four variable-length sections (graph, labels, groups, lng),
// each independently compressible and checksummed as a whole.
package persist

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"ung/blobstore"
	"ung/distance"
	"ung/internal/errs"
	"ung/internal/hash"
	"ung/storage"
)

// blobName is the single artifact written under an index prefix: the
// graph/labels/groups/lng/meta tuple packed into one file, since a
// single atomically-renamed blob is simplest to make crash safe with
// blobstore.LocalStore.Put.
const blobName = "index"

// GroupRecord is the on-disk shape of one group table row.
type GroupRecord struct {
	ID     uint32
	Lo, Hi int
	Medoid uint32
	Labels storage.LabelSet
}

// Index is everything UniNavGraph needs to reconstruct itself from disk:
// the merged intra+cross adjacency, per-point label sets, the group
// table, and the LNG's adjacency over group ids (root 0 included).
type Index struct {
	Dim       int
	N         int
	Elem      distance.ElemType
	Metric    distance.Metric
	MaxDegree int

	Neighbors [][]uint32 // length N, intra-group + cross edges merged
	Labels    []storage.LabelSet
	Groups    []GroupRecord
	LNG       map[uint32][]uint32 // group id -> immediate children
}

// Save encodes idx into the single-blob container format and writes it to
// store under blobName via an atomic Put.
func Save(store blobstore.BlobStore, idx *Index, compression CompressionType) error {
	if idx.N == 0 {
		return errs.New(errs.DataError, "persist.Save", fmt.Errorf("empty index"))
	}

	graphRaw := encodeGraph(idx.Neighbors)
	labelsRaw := encodeLabels(idx.Labels)
	groupsRaw := encodeGroups(idx.Groups)
	lngRaw := encodeLNG(idx.LNG)

	graphSec, err := compressSection(graphRaw, compression)
	if err != nil {
		return errs.New(errs.InternalError, "persist.Save", err)
	}
	labelsSec, err := compressSection(labelsRaw, compression)
	if err != nil {
		return errs.New(errs.InternalError, "persist.Save", err)
	}
	groupsSec, err := compressSection(groupsRaw, compression)
	if err != nil {
		return errs.New(errs.InternalError, "persist.Save", err)
	}
	lngSec, err := compressSection(lngRaw, compression)
	if err != nil {
		return errs.New(errs.InternalError, "persist.Save", err)
	}

	var body bytes.Buffer
	graphOff := uint64(0)
	body.Write(graphSec)
	labelsOff := uint64(body.Len())
	body.Write(labelsSec)
	groupsOff := uint64(body.Len())
	body.Write(groupsSec)
	lngOff := uint64(body.Len())
	body.Write(lngSec)

	h := &fileHeader{
		Magic:           magicNumber,
		Version:         formatVersion,
		ElemType:        uint8(idx.Elem),
		Metric:          uint8(idx.Metric),
		CompressionType: uint8(compression),
		Dim:             uint32(idx.Dim),
		N:               uint32(idx.N),
		MaxDegree:       uint32(idx.MaxDegree),
		NumGroups:       uint32(len(idx.Groups)),
		GraphOffset:     graphOff,
		GraphLen:        uint64(len(graphSec)),
		LabelsOffset:    labelsOff,
		LabelsLen:       uint64(len(labelsSec)),
		GroupsOffset:    groupsOff,
		GroupsLen:       uint64(len(groupsSec)),
		LNGOffset:       lngOff,
		LNGLen:          uint64(len(lngSec)),
		Checksum:        hash.CRC32C(body.Bytes()),
	}

	full := append(h.encode(), body.Bytes()...)
	if err := store.Put(blobName, full); err != nil {
		return errs.New(errs.IoError, "persist.Save", err)
	}
	return nil
}

// Load reads and decodes the container written by Save. When
// verifyChecksum is true the body's CRC32C is recomputed and compared
// against the header before any section is decoded.
func Load(store blobstore.BlobStore, verifyChecksum bool) (*Index, error) {
	blob, err := store.Open(blobName)
	if err != nil {
		return nil, errs.New(errs.IoError, "persist.Load", err)
	}
	defer blob.Close()

	buf := make([]byte, blob.Size())
	if _, err := blob.ReadAt(buf, 0); err != nil && err != io.EOF {
		return nil, errs.New(errs.IoError, "persist.Load", err)
	}

	h, err := decodeHeader(buf)
	if err != nil {
		return nil, err
	}
	body := buf[headerSize:]

	if verifyChecksum {
		if got := hash.CRC32C(body); got != h.Checksum {
			return nil, errs.New(errs.FormatError, "persist.Load", fmt.Errorf("checksum mismatch: have %d, want %d", got, h.Checksum))
		}
	}

	compression := CompressionType(h.CompressionType)
	graphRaw, err := decompressSection(section(body, h.GraphOffset, h.GraphLen), compression)
	if err != nil {
		return nil, err
	}
	labelsRaw, err := decompressSection(section(body, h.LabelsOffset, h.LabelsLen), compression)
	if err != nil {
		return nil, err
	}
	groupsRaw, err := decompressSection(section(body, h.GroupsOffset, h.GroupsLen), compression)
	if err != nil {
		return nil, err
	}
	lngRaw, err := decompressSection(section(body, h.LNGOffset, h.LNGLen), compression)
	if err != nil {
		return nil, err
	}

	neighbors, err := decodeGraph(graphRaw, int(h.N))
	if err != nil {
		return nil, err
	}
	labels, err := decodeLabels(labelsRaw, int(h.N))
	if err != nil {
		return nil, err
	}
	groups, err := decodeGroups(groupsRaw, int(h.NumGroups))
	if err != nil {
		return nil, err
	}
	lng, err := decodeLNG(lngRaw)
	if err != nil {
		return nil, err
	}

	return &Index{
		Dim:       int(h.Dim),
		N:         int(h.N),
		Elem:      distance.ElemType(h.ElemType),
		Metric:    distance.Metric(h.Metric),
		MaxDegree: int(h.MaxDegree),
		Neighbors: neighbors,
		Labels:    labels,
		Groups:    groups,
		LNG:       lng,
	}, nil
}

func section(body []byte, off, length uint64) []byte {
	return body[off : off+length]
}

// encodeGraph writes, for each id, degree:u32 then degree*u32 neighbor
// ids (intra + cross merged into one adjacency).
func encodeGraph(neighbors [][]uint32) []byte {
	var buf bytes.Buffer
	for _, n := range neighbors {
		writeU32(&buf, uint32(len(n)))
		for _, id := range n {
			writeU32(&buf, id)
		}
	}
	return buf.Bytes()
}

func decodeGraph(raw []byte, n int) ([][]uint32, error) {
	r := bytes.NewReader(raw)
	out := make([][]uint32, n)
	for i := 0; i < n; i++ {
		deg, err := readU32(r)
		if err != nil {
			return nil, errs.New(errs.FormatError, "persist.decodeGraph", err)
		}
		neigh := make([]uint32, deg)
		for j := range neigh {
			v, err := readU32(r)
			if err != nil {
				return nil, errs.New(errs.FormatError, "persist.decodeGraph", err)
			}
			neigh[j] = v
		}
		out[i] = neigh
	}
	return out, nil
}

// encodeLabels writes, for each id, length:u32 then length*u32 label ids.
func encodeLabels(labels []storage.LabelSet) []byte {
	var buf bytes.Buffer
	for _, l := range labels {
		writeU32(&buf, uint32(len(l)))
		for _, id := range l {
			writeU32(&buf, uint32(id))
		}
	}
	return buf.Bytes()
}

func decodeLabels(raw []byte, n int) ([]storage.LabelSet, error) {
	r := bytes.NewReader(raw)
	out := make([]storage.LabelSet, n)
	for i := 0; i < n; i++ {
		l, err := readU32(r)
		if err != nil {
			return nil, errs.New(errs.FormatError, "persist.decodeLabels", err)
		}
		ids := make([]storage.LabelID, l)
		for j := range ids {
			v, err := readU32(r)
			if err != nil {
				return nil, errs.New(errs.FormatError, "persist.decodeLabels", err)
			}
			ids[j] = storage.LabelID(v)
		}
		out[i] = storage.LabelSet(ids)
	}
	return out, nil
}

// encodeGroups writes count:u32 then, per group, id/lo/hi/medoid/|S_g|/S_g.
func encodeGroups(groups []GroupRecord) []byte {
	var buf bytes.Buffer
	writeU32(&buf, uint32(len(groups)))
	for _, g := range groups {
		writeU32(&buf, g.ID)
		writeU32(&buf, uint32(g.Lo))
		writeU32(&buf, uint32(g.Hi))
		writeU32(&buf, g.Medoid)
		writeU32(&buf, uint32(len(g.Labels)))
		for _, id := range g.Labels {
			writeU32(&buf, uint32(id))
		}
	}
	return buf.Bytes()
}

func decodeGroups(raw []byte, want int) ([]GroupRecord, error) {
	r := bytes.NewReader(raw)
	count, err := readU32(r)
	if err != nil {
		return nil, errs.New(errs.FormatError, "persist.decodeGroups", err)
	}
	if want > 0 && int(count) != want {
		return nil, errs.New(errs.FormatError, "persist.decodeGroups", fmt.Errorf("group count mismatch: header says %d, body has %d", want, count))
	}
	out := make([]GroupRecord, count)
	for i := range out {
		id, err := readU32(r)
		if err != nil {
			return nil, errs.New(errs.FormatError, "persist.decodeGroups", err)
		}
		lo, err := readU32(r)
		if err != nil {
			return nil, errs.New(errs.FormatError, "persist.decodeGroups", err)
		}
		hi, err := readU32(r)
		if err != nil {
			return nil, errs.New(errs.FormatError, "persist.decodeGroups", err)
		}
		medoid, err := readU32(r)
		if err != nil {
			return nil, errs.New(errs.FormatError, "persist.decodeGroups", err)
		}
		labelLen, err := readU32(r)
		if err != nil {
			return nil, errs.New(errs.FormatError, "persist.decodeGroups", err)
		}
		labels := make(storage.LabelSet, labelLen)
		for j := range labels {
			v, err := readU32(r)
			if err != nil {
				return nil, errs.New(errs.FormatError, "persist.decodeGroups", err)
			}
			labels[j] = storage.LabelID(v)
		}
		out[i] = GroupRecord{ID: id, Lo: int(lo), Hi: int(hi), Medoid: medoid, Labels: labels}
	}
	return out, nil
}

// encodeLNG writes count:u32 then, per entry, groupID:u32, childCount:u32,
// childCount*u32 child ids.
func encodeLNG(adj map[uint32][]uint32) []byte {
	var buf bytes.Buffer
	writeU32(&buf, uint32(len(adj)))
	for id, children := range adj {
		writeU32(&buf, id)
		writeU32(&buf, uint32(len(children)))
		for _, c := range children {
			writeU32(&buf, c)
		}
	}
	return buf.Bytes()
}

func decodeLNG(raw []byte) (map[uint32][]uint32, error) {
	r := bytes.NewReader(raw)
	count, err := readU32(r)
	if err != nil {
		return nil, errs.New(errs.FormatError, "persist.decodeLNG", err)
	}
	out := make(map[uint32][]uint32, count)
	for i := uint32(0); i < count; i++ {
		id, err := readU32(r)
		if err != nil {
			return nil, errs.New(errs.FormatError, "persist.decodeLNG", err)
		}
		n, err := readU32(r)
		if err != nil {
			return nil, errs.New(errs.FormatError, "persist.decodeLNG", err)
		}
		children := make([]uint32, n)
		for j := range children {
			v, err := readU32(r)
			if err != nil {
				return nil, errs.New(errs.FormatError, "persist.decodeLNG", err)
			}
			children[j] = v
		}
		out[id] = children
	}
	return out, nil
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func readU32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}
