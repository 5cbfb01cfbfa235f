package ung

import "ung/internal/persist"

// IndexType selects the proximity-graph algorithm a UniNavGraph's groups
// are built with. Vamana is the only implemented variant; the type is
// kept as an extensibility hook for future proximity-graph algorithms.
type IndexType int

const (
	IndexTypeVamana IndexType = iota
)

// BuildScenario controls whether Build connects the label-set groups it
// always forms. ScenarioEquality skips LNG construction and cross-edge
// planning entirely, since an equality-only deployment only ever needs
// exact-match entry groups; ScenarioGeneral builds the full LNG and
// cross-edge set so Search can also serve containment and overlap queries.
type BuildScenario int

const (
	ScenarioEquality BuildScenario = iota
	ScenarioGeneral
)

type options struct {
	indexType     IndexType
	scenario      BuildScenario
	maxDegree     int
	searchListSize int
	alpha         float32
	numThreads    int
	numCrossEdges int

	compression    persist.CompressionType
	verifyChecksum bool

	logger  *Logger
	metrics MetricsCollector
}

// Option configures Build, Save, and Load.
type Option func(*options)

// WithIndexType selects the proximity-graph algorithm. Build rejects any
// value other than IndexTypeVamana with a ConfigError.
func WithIndexType(t IndexType) Option {
	return func(o *options) { o.indexType = t }
}

// WithScenario selects whether Build derives the LNG and plans cross
// edges (ScenarioGeneral) or skips both for an equality-only index
// (ScenarioEquality). Points are grouped by label set either way.
func WithScenario(s BuildScenario) Option {
	return func(o *options) { o.scenario = s }
}

// WithMaxDegree sets R, the per-vertex out-degree cap for intra-group
// edges.
func WithMaxDegree(r int) Option {
	return func(o *options) { o.maxDegree = r }
}

// WithSearchListSize sets L_build, the candidate list size Vamana
// construction and the cross-edge planner's greedy search use.
func WithSearchListSize(l int) Option {
	return func(o *options) { o.searchListSize = l }
}

// WithAlpha sets the robust-prune distance-ratio factor; must be >= 1.0.
func WithAlpha(alpha float32) Option {
	return func(o *options) { o.alpha = alpha }
}

// WithNumThreads bounds the worker pool used across group builds, the
// per-group insertion passes, and medoid selection. Cross-edge planning
// runs on a single goroutine.
func WithNumThreads(n int) Option {
	return func(o *options) { o.numThreads = n }
}

// WithNumCrossEdges bounds the number of cross edges planned from a
// group's medoid into each immediate LNG child.
func WithNumCrossEdges(n int) Option {
	return func(o *options) { o.numCrossEdges = n }
}

// WithCompression enables block compression of every persisted section
// (graph, labels, groups, and LNG). Default is persist.CompressionNone, which keeps
// Save/Load trivially verifiable in round-trip tests.
func WithCompression(c persist.CompressionType) Option {
	return func(o *options) { o.compression = c }
}

// WithVerifyChecksum enables CRC32C verification of a loaded container's
// body before any section is decoded.
func WithVerifyChecksum(v bool) Option {
	return func(o *options) { o.verifyChecksum = v }
}

// WithLogger configures structured logging for Build/Search/Save/Load
// events. Pass NoopLogger() to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetricsCollector configures a metrics sink for distance-comparison
// and visited-node counts. Pass nil to disable.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) { o.metrics = mc }
}

func applyOptions(optFns []Option) options {
	o := options{
		indexType:      IndexTypeVamana,
		scenario:       ScenarioGeneral,
		maxDegree:      32,
		searchListSize: 64,
		alpha:          1.2,
		numThreads:     1,
		numCrossEdges:  8,
		compression:    persist.CompressionNone,
		verifyChecksum: false,
		logger:         NoopLogger(),
		metrics:        noopMetricsCollector{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metrics == nil {
		o.metrics = noopMetricsCollector{}
	}
	return o
}
