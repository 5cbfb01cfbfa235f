package storage

import (
	"fmt"

	"ung/internal/errs"
)

// Reorder applies a new-to-old permutation in place: after Reorder, point
// i holds what was previously point perm[i]. It allocates a fresh
// 32-byte-aligned buffer, copies rows in the new order, and swaps it in —
// the multiset of (vector, label set) pairs is preserved (invariant 8).
func (s *Storage) Reorder(perm []int) error {
	if len(perm) != s.n {
		return errs.New(errs.InternalError, "storage.Reorder", fmt.Errorf("permutation length %d != %d points", len(perm), s.n))
	}
	seen := make([]bool, s.n)
	for _, old := range perm {
		if old < 0 || old >= s.n {
			return errs.New(errs.InternalError, "storage.Reorder", fmt.Errorf("permutation index %d out of range [0,%d)", old, s.n))
		}
		if seen[old] {
			return errs.New(errs.InternalError, "storage.Reorder", fmt.Errorf("permutation index %d repeated", old))
		}
		seen[old] = true
	}

	rb := s.rowBytes()
	newData := allocAligned(s.n * rb)
	newLabels := make([]LabelSet, s.n)

	for newID, oldID := range perm {
		copy(newData[newID*rb:(newID+1)*rb], s.data[oldID*rb:(oldID+1)*rb])
		newLabels[newID] = s.labels[oldID]
	}

	s.data = newData
	s.labels = newLabels
	// Reorder always produces a fresh heap buffer; any mmap backing is no
	// longer referenced by s.data and can be released.
	if s.mapping != nil {
		_ = s.mapping.Close()
		s.mapping = nil
	}
	return nil
}
