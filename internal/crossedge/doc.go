// Package crossedge inserts the bounded inter-group edges that let
// filtered beam search leave an entry group's intra-group subgraph and
// descend into a label-navigating-graph child. Cross edges are tracked
// in a vamana.CrossList, separate from each group's R-capped intra-group
// adjacency; the per-vertex degree cap does not apply to them.
package crossedge
