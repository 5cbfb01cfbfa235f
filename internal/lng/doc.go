// Package lng builds and walks the label navigating graph: a DAG over
// groups keyed by their label set, with an edge g -> h whenever S_g is an
// immediate subset of S_h. A synthetic root with the empty label set is
// the ancestor of every group that has no other ancestor, so the DAG is
// always connected and rooted.
//
// Construction is pure in-memory graph work; no third-party library earns
// its keep here beyond sort for the cardinality-ascending pass, so this
// package is stdlib-only by design, not by default.
package lng
