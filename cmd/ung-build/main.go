// Command ung-build builds a UniNavGraph index from a vector file and an
// optional label file and saves it to an index directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"ung"
	"ung/distance"
	"ung/storage"
)

func main() {
	dataType := flag.String("data-type", "f32", "vector element type: f32, i8, or u8")
	dist := flag.String("dist", "l2", "distance metric: l2, ip, or cosine")
	baseBin := flag.String("base-bin", "", "path to the base vector file (required)")
	baseLabels := flag.String("base-labels", "", "path to the base label file (empty: every point gets label {1})")
	indexPrefix := flag.String("index-prefix", "", "output index directory (required)")
	scenario := flag.String("scenario", "general", "build scenario: equality or general")
	maxDegree := flag.Int("max-degree", 32, "R, per-vertex out-degree cap")
	lBuild := flag.Int("l-build", 64, "L_build, candidate list size during construction")
	alpha := flag.Float64("alpha", 1.2, "robust-prune distance-ratio factor")
	numCrossEdges := flag.Int("num-cross-edges", 8, "cross edges planned per LNG edge")
	threads := flag.Int("threads", 1, "worker pool size")
	flag.Parse()

	if *baseBin == "" || *indexPrefix == "" {
		fmt.Fprintln(os.Stderr, "must specify -base-bin and -index-prefix")
		flag.PrintDefaults()
		os.Exit(1)
	}

	elem, err := parseElemType(*dataType)
	if err != nil {
		fatal(err)
	}
	metric, err := parseMetric(*dist)
	if err != nil {
		fatal(err)
	}
	bs, err := parseScenario(*scenario)
	if err != nil {
		fatal(err)
	}

	s, err := storage.Load(*baseBin, *baseLabels, elem, 0)
	if err != nil {
		fatal(err)
	}
	defer s.Close()

	idx, err := ung.Build(context.Background(), s, metric,
		ung.WithScenario(bs),
		ung.WithMaxDegree(*maxDegree),
		ung.WithSearchListSize(*lBuild),
		ung.WithAlpha(float32(*alpha)),
		ung.WithNumCrossEdges(*numCrossEdges),
		ung.WithNumThreads(*threads),
		ung.WithLogger(ung.NewTextLogger(slog.LevelInfo)),
	)
	if err != nil {
		fatal(err)
	}

	if err := idx.Save(*indexPrefix); err != nil {
		fatal(err)
	}
	fmt.Printf("built %d points into %d groups, saved to %s\n", idx.NumPoints(), idx.NumGroups(), *indexPrefix)
}

func parseElemType(s string) (distance.ElemType, error) {
	switch s {
	case "f32":
		return distance.F32, nil
	case "i8":
		return distance.I8, nil
	case "u8":
		return distance.U8, nil
	default:
		return 0, fmt.Errorf("unknown -data-type %q", s)
	}
}

func parseMetric(s string) (distance.Metric, error) {
	switch s {
	case "l2":
		return distance.L2, nil
	case "ip":
		return distance.IP, nil
	case "cosine":
		return distance.Cosine, nil
	default:
		return 0, fmt.Errorf("unknown -dist %q", s)
	}
}

func parseScenario(s string) (ung.BuildScenario, error) {
	switch s {
	case "equality":
		return ung.ScenarioEquality, nil
	case "general":
		return ung.ScenarioGeneral, nil
	default:
		return 0, fmt.Errorf("unknown -scenario %q", s)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "ung-build:", err)
	os.Exit(1)
}
