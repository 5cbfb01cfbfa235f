package ung

// MetricsCollector receives counters from Build and Search so callers can
// wire them into their own monitoring stack without this package taking a
// dependency on any particular metrics backend.
type MetricsCollector interface {
	// ObserveSearch records one Search call's cost and outcome:
	// distance comparisons made, nodes expanded, entry groups selected,
	// and results found.
	ObserveSearch(distanceComparisons, nodesVisited, entryGroups int, resultsFound int)
	// ObserveBuild records one Build call's cost.
	ObserveBuild(points, groups, crossEdges int, elapsedMS int64)
}

type noopMetricsCollector struct{}

func (noopMetricsCollector) ObserveSearch(int, int, int, int)  {}
func (noopMetricsCollector) ObserveBuild(int, int, int, int64) {}
