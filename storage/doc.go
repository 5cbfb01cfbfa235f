// Package storage owns the N vectors of dimension D and their per-point
// label sets that every other UNG package reads from.
//
// # Layout
//
// Vectors live in one 32-byte-aligned buffer of N*D elements; label sets
// are a parallel slice of sorted LabelSet values. Load reads both from a
// binary vector file and a text label file; Reorder permutes
// both in lockstep so a later group-by-label-set pass can make each
// group's points contiguous. SliceView borrows a row range without
// copying — callers must not use the view after closing the parent.
package storage
