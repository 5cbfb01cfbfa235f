// Package vamana implements the Vamana proximity-graph build algorithm
// and the greedy search / robust prune primitives it and the cross-edge
// planner share.
//
// Build produces a Graph whose every vertex has at most R out-neighbors,
// reachable from the graph's medoid (returned alongside it). GreedySearch
// and RobustPrune are exported because the cross-edge planner needs the
// same walk and the same pruning rule, just seeded differently. The
// top-level filtered search runs its own beam search instead.
package vamana
