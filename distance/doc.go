// Package distance computes distances between vectors.
//
// # Supported metrics and element types
//
//   - Metric: L2 (squared Euclidean), IP (negated inner product), Cosine
//     (negated cosine similarity)
//   - ElemType: F32, I8, U8
//
// Provider returns a monomorphic Func for one (Metric, ElemType) pair so
// the hot inner loop never branches on type at comparison time.
//
// # Usage
//
//	fn, err := distance.Provider(distance.L2, distance.F32)
//	d := fn(a, b)
//
// # Why no SIMD
//
// This package's inner loops are plain Go, generalized from the
// "*Generic" fallback implementations of a SIMD-dispatch package rather
// than from its architecture-specific assembly dispatch tree (AVX2/
// AVX-512/NEON kernels selected via CPU-feature detection). That
// dispatch tree is generated, platform-specific assembly; reproducing it
// by hand would not be learning an idiom, it would be transcribing
// machine-generated code.
// Plain Go loops over typed slices are themselves an idiom the pack uses
// throughout (e.g. internal/lng's merge-style set operations), so this
// is the one package in the module that is intentionally standard
// library only.
package distance
