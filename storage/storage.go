// Package storage owns the typed vector buffer and per-point label sets
// that every other UNG package operates over.
package storage

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"ung/distance"
	"ung/internal/errs"
	"ung/internal/mmap"
)

// fileHeader is the {N:u32, D:u32} vector-file header.
type fileHeader struct {
	N uint32
	D uint32
}

// Storage is a typed container for N vectors of dimension D plus, per
// point, a sorted label set. The backing vector buffer is a single
// 32-byte-aligned allocation; label sets are independent per-point slices.
type Storage struct {
	elem   distance.ElemType
	dim    int
	n      int
	data   []byte // n * dim * distance.ElemSize(elem) bytes
	labels []LabelSet

	mapping *mmap.Mapping // non-nil when data is backed by an mmap'd file
}

// New creates an empty Storage with elem-typed vectors of dimension dim.
func New(dim int, elem distance.ElemType) *Storage {
	return &Storage{elem: elem, dim: dim}
}

// Dim returns the vector dimensionality.
func (s *Storage) Dim() int { return s.dim }

// NumPoints returns the number of points N.
func (s *Storage) NumPoints() int { return s.n }

// DataType returns the element type vectors are stored as.
func (s *Storage) DataType() distance.ElemType { return s.elem }

// rowBytes returns the number of bytes occupied by one vector row.
func (s *Storage) rowBytes() int { return s.dim * distance.ElemSize(s.elem) }

// GetVector returns a zero-copy view of point id's raw element buffer.
func (s *Storage) GetVector(id int) []byte {
	rb := s.rowBytes()
	off := id * rb
	return s.data[off : off+rb : off+rb]
}

// GetLabels returns point id's label set. The returned slice must not be
// mutated by the caller.
func (s *Storage) GetLabels(id int) LabelSet {
	return s.labels[id]
}

// Prefetch hints that the vectors for ids will be accessed soon. On a
// plain heap-backed Storage this is a no-op; when the buffer is
// mmap-backed it advises the kernel the pages will be needed, collapsed
// to a single portable path (no per-arch intrinsics).
func (s *Storage) Prefetch(ids []uint32) {
	if s.mapping == nil || len(ids) == 0 {
		return
	}
	_ = s.mapping.Advise(mmap.AccessWillNeed)
}

// Close releases any mmap backing the Storage. It is a no-op for
// heap-allocated storages.
func (s *Storage) Close() error {
	if s.mapping == nil {
		return nil
	}
	return s.mapping.Close()
}

// Load reads a vector file and a label file into a fresh Storage.
//
// The vector file is a binary {N:u32, D:u32} header followed by N*D raw
// elements of elem's type; it is memory-mapped when possible and read
// through a buffered copy otherwise. The label file has one line per
// point, each a comma-separated list of non-negative integers; an empty
// or missing label path makes every point's label set {1}. maxN, if > 0,
// caps the number of points read.
func Load(vecPath, labelPath string, elem distance.ElemType, maxN int) (*Storage, error) {
	if m, err := mmap.Open(vecPath); err == nil {
		s, err := loadVectorsFromBytes(m.Bytes(), elem, maxN)
		if err != nil {
			_ = m.Close()
			return nil, err
		}
		s.mapping = m
		if err := s.loadLabels(labelPath); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	}

	f, err := os.Open(vecPath)
	if err != nil {
		return nil, errs.New(errs.IoError, "storage.Load", err)
	}
	defer f.Close()

	s, err := loadVectors(f, elem, maxN)
	if err != nil {
		return nil, err
	}
	if err := s.loadLabels(labelPath); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadFrom reads vectors and labels from arbitrary readers; it is the
// mmap-free path used by tests and by any caller that does not have a
// seekable on-disk file.
func LoadFrom(vecR io.Reader, labelR io.Reader, elem distance.ElemType, maxN int) (*Storage, error) {
	s, err := loadVectors(vecR, elem, maxN)
	if err != nil {
		return nil, err
	}
	if labelR == nil {
		s.labels = defaultLabels(s.n)
		return s, nil
	}
	labels, err := parseLabels(labelR, s.n)
	if err != nil {
		return nil, err
	}
	s.labels = labels
	return s, nil
}

func loadVectors(r io.Reader, elem distance.ElemType, maxN int) (*Storage, error) {
	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, errs.New(errs.IoError, "storage.Load", fmt.Errorf("read header: %w", err))
	}
	n := int(hdr.N)
	if maxN > 0 && maxN < n {
		n = maxN
	}
	dim := int(hdr.D)

	s := &Storage{elem: elem, dim: dim, n: n}
	s.data = allocAligned(n * s.rowBytes())
	if n > 0 {
		if _, err := io.ReadFull(r, s.data); err != nil {
			return nil, errs.New(errs.IoError, "storage.Load", fmt.Errorf("read vectors: %w", err))
		}
	}
	return s, nil
}

func loadVectorsFromBytes(buf []byte, elem distance.ElemType, maxN int) (*Storage, error) {
	if len(buf) < 8 {
		return nil, errs.New(errs.IoError, "storage.Load", fmt.Errorf("vector file too small for header"))
	}
	n := int(binary.LittleEndian.Uint32(buf[0:4]))
	dim := int(binary.LittleEndian.Uint32(buf[4:8]))
	if maxN > 0 && maxN < n {
		n = maxN
	}

	s := &Storage{elem: elem, dim: dim, n: n}
	want := n * s.rowBytes()
	body := buf[8:]
	if len(body) < want {
		return nil, errs.New(errs.IoError, "storage.Load", fmt.Errorf("vector file short: have %d bytes, want %d", len(body), want))
	}
	s.data = body[:want:want]
	return s, nil
}

func (s *Storage) loadLabels(labelPath string) error {
	if labelPath == "" {
		s.labels = defaultLabels(s.n)
		return nil
	}
	f, err := os.Open(labelPath)
	if err != nil {
		if os.IsNotExist(err) {
			s.labels = defaultLabels(s.n)
			return nil
		}
		return errs.New(errs.IoError, "storage.Load", err)
	}
	defer f.Close()

	labels, err := parseLabels(f, s.n)
	if err != nil {
		return err
	}
	s.labels = labels
	return nil
}

func defaultLabels(n int) []LabelSet {
	labels := make([]LabelSet, n)
	for i := range labels {
		labels[i] = LabelSet{1}
	}
	return labels
}

func parseLabels(r io.Reader, n int) ([]LabelSet, error) {
	labels := make([]LabelSet, 0, n)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			labels = append(labels, LabelSet{})
			continue
		}
		parts := strings.Split(line, ",")
		ids := make([]LabelID, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			v, err := strconv.ParseUint(p, 10, 32)
			if err != nil {
				return nil, errs.New(errs.FormatError, "storage.Load", fmt.Errorf("parse label %q: %w", p, err))
			}
			ids = append(ids, LabelID(v))
		}
		labels = append(labels, NewLabelSet(ids))
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.New(errs.IoError, "storage.Load", err)
	}
	if maxN := n; maxN > 0 && len(labels) > maxN {
		labels = labels[:maxN]
	}
	for len(labels) < n {
		labels = append(labels, LabelSet{})
	}
	return labels, nil
}

// SliceView returns a non-owning Storage exposing only points [lo, hi).
// The returned Storage shares the parent's backing array and label
// slice; it must not be used after the parent is closed.
func (s *Storage) SliceView(lo, hi int) *Storage {
	rb := s.rowBytes()
	return &Storage{
		elem:   s.elem,
		dim:    s.dim,
		n:      hi - lo,
		data:   s.data[lo*rb : hi*rb : hi*rb],
		labels: s.labels[lo:hi:hi],
	}
}
