// Command ung-search loads a saved UniNavGraph index and runs every query
// in a query vector/label file against it, writing each query's result
// ids and distances to a result file. Distance-comparison counts are not
// written. Ground-truth comparison and recall reporting are out of scope;
// this tool only emits what the index returns.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"ung"
	"ung/distance"
	"ung/storage"
)

func main() {
	dataType := flag.String("data-type", "f32", "vector element type: f32, i8, or u8")
	dist := flag.String("dist", "l2", "distance metric: l2, ip, or cosine")
	baseBin := flag.String("base-bin", "", "path to the base vector file the index was built from (required)")
	baseLabels := flag.String("base-labels", "", "path to the base label file the index was built from (empty: every point gets label {1})")
	indexPrefix := flag.String("index-prefix", "", "saved index directory (required)")
	scenario := flag.String("scenario", "equality", "search scenario: equality, containment, or overlap")
	queryBin := flag.String("query-bin", "", "path to the query vector file (required)")
	queryLabels := flag.String("query-labels", "", "path to the query label file")
	k := flag.Int("k", 10, "number of results per query")
	lSearch := flag.Int("l-search", 64, "L_search, beam width")
	numEntryPoints := flag.Int("num-entry-points", 1, "passed to Search; each selected entry group contributes only its medoid as a seed")
	resultPrefix := flag.String("result-prefix", "", "output path for results (required)")
	threads := flag.Int("threads", 1, "number of queries run concurrently")
	flag.Parse()

	if *baseBin == "" || *indexPrefix == "" || *queryBin == "" || *resultPrefix == "" {
		fmt.Fprintln(os.Stderr, "must specify -base-bin, -index-prefix, -query-bin, and -result-prefix")
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
	ss, err := parseSearchScenario(*scenario)
	if err != nil {
		fatal(err)
	}

	base, err := storage.Load(*baseBin, *baseLabels, elem, 0)
	if err != nil {
		fatal(err)
	}
	defer base.Close()

	idx, err := ung.Load(*indexPrefix, base)
	if err != nil {
		fatal(err)
	}

	if idx.Metric() != metric {
		fmt.Fprintf(os.Stderr, "ung-search: warning: -dist %s does not match the index's build metric %s\n", *dist, idx.Metric())
	}

	queries, err := storage.Load(*queryBin, *queryLabels, elem, 0)
	if err != nil {
		fatal(err)
	}
	defer queries.Close()

	out, err := os.Create(*resultPrefix)
	if err != nil {
		fatal(err)
	}
	defer out.Close()

	results := make([][]ung.SearchResult, queries.NumPoints())
	errs := make([]error, queries.NumPoints())

	grp, gctx := errgroup.WithContext(context.Background())
	sem := semaphore.NewWeighted(int64(max(*threads, 1)))
	for q := 0; q < queries.NumPoints(); q++ {
		q := q
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		grp.Go(func() error {
			defer sem.Release(1)
			res, err := idx.Search(gctx, queries.GetVector(q), queries.GetLabels(q), ung.SearchParams{
				K: *k, LSearch: *lSearch, NumEntryPoints: *numEntryPoints, Scenario: ss,
			})
			results[q] = res
			errs[q] = err
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		fatal(err)
	}

	for q, res := range results {
		if errs[q] != nil {
			fmt.Fprintf(out, "query %d: error: %v\n", q, errs[q])
			continue
		}
		fmt.Fprintf(out, "query %d:", q)
		for _, r := range res {
			fmt.Fprintf(out, " %d:%f", r.ID, r.Dist)
		}
		fmt.Fprintln(out)
	}
	fmt.Printf("wrote %d query results to %s\n", queries.NumPoints(), *resultPrefix)
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

func parseSearchScenario(s string) (ung.SearchScenario, error) {
	switch s {
	case "equality":
		return ung.SearchEquality, nil
	case "containment":
		return ung.SearchContainment, nil
	case "overlap":
		return ung.SearchOverlap, nil
	default:
		return 0, fmt.Errorf("unknown -scenario %q", s)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "ung-search:", err)
	os.Exit(1)
}
