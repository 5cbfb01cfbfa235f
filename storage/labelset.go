package storage

import "slices"

// LabelID is a 32-bit discrete label identifier.
type LabelID uint32

// LabelSet is a label set stored as an ascending, deduplicated sequence.
// Equality, subset, and overlap tests are merge-style passes over the
// sorted sequence rather than a hash-set lookup: label sets must compare
// equal independent of insertion order, which sorted-sequence algorithms
// give for free at this layer.
type LabelSet []LabelID

// NewLabelSet sorts and deduplicates ids into a LabelSet.
func NewLabelSet(ids []LabelID) LabelSet {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

// Len returns the number of labels in the set.
func (s LabelSet) Len() int { return len(s) }

// Equal reports whether s and other contain exactly the same labels.
func (s LabelSet) Equal(other LabelSet) bool {
	return slices.Equal(s, other)
}

// Subset reports whether s ⊆ other via a merge over both sorted sequences.
func (s LabelSet) Subset(other LabelSet) bool {
	i, j := 0, 0
	for i < len(s) {
		for j < len(other) && other[j] < s[i] {
			j++
		}
		if j == len(other) || other[j] != s[i] {
			return false
		}
		i++
		j++
	}
	return true
}

// Overlaps reports whether s ∩ other ≠ ∅ via a merge over both sorted
// sequences.
func (s LabelSet) Overlaps(other LabelSet) bool {
	i, j := 0, 0
	for i < len(s) && j < len(other) {
		switch {
		case s[i] == other[j]:
			return true
		case s[i] < other[j]:
			i++
		default:
			j++
		}
	}
	return false
}

// Clone returns an independent copy of s.
func (s LabelSet) Clone() LabelSet {
	return slices.Clone(s)
}

// Key returns a byte-string encoding of s suitable for use as a map key;
// two label sets produce the same Key iff Equal reports true for them.
func (s LabelSet) Key() string {
	buf := make([]byte, 4*len(s))
	for i, id := range s {
		buf[i*4] = byte(id)
		buf[i*4+1] = byte(id >> 8)
		buf[i*4+2] = byte(id >> 16)
		buf[i*4+3] = byte(id >> 24)
	}
	return string(buf)
}
