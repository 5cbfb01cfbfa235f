// Package blobstore provides a minimal storage abstraction over the
// immutable artifacts an index prefix is made of: open a blob for
// random-access reads, or atomically overwrite one in a single Put.
//
// LocalStore is the only implementation: cloud backends are out of scope
// for a memory-resident, locally-persisted index (see the root DESIGN.md
// for why the reference S3/MinIO backends were dropped rather than kept
// unused).
package blobstore
