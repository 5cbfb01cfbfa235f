package vamana

import (
	"context"
	"fmt"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"ung/distance"
	"ung/internal/errs"
	"ung/internal/visited"
	"ung/storage"
)

// Params configures a Vamana build.
type Params struct {
	R          int     // max out-degree
	LBuild     int     // candidate list size during construction
	Alpha      float32 // robust-prune distance-ratio factor, >= 1.0
	NumThreads int
}

// Build constructs a Vamana proximity graph over every point in s:
// random R-regular initialization, medoid selection, then two insertion
// passes that each run greedy search + robust prune over a fixed random
// permutation of the ids, parallelized with a bounded worker pool.
// It returns the graph and the chosen medoid.
func Build(ctx context.Context, s *storage.Storage, dist distance.Func, p Params) (*Graph, uint32, error) {
	n := s.NumPoints()
	if n == 0 {
		return nil, 0, errs.New(errs.DataError, "vamana.Build", fmt.Errorf("empty storage"))
	}

	g := NewGraph(n, p.R)
	randRRegularInit(g, p.R)

	medoid := Medoid(s, dist, p.NumThreads)

	rng := rand.New(rand.NewPCG(1, uint64(n)))
	order := rng.Perm(n)

	for pass := 0; pass < 2; pass++ {
		if err := runPass(ctx, s, dist, g, medoid, order, p); err != nil {
			return nil, 0, errs.New(errs.InternalError, "vamana.Build", err)
		}
	}

	return g, medoid, nil
}

func runPass(ctx context.Context, s *storage.Storage, dist distance.Func, g *Graph, medoid uint32, order []int, p Params) error {
	threads := p.NumThreads
	if threads < 1 {
		threads = 1
	}

	grp, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(threads))

	for _, pid := range order {
		pid := uint32(pid)
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		grp.Go(func() error {
			defer sem.Release(1)
			vis := visited.New(g.N)
			insertPoint(s, dist, g, medoid, pid, vis, p)
			return nil
		})
	}

	return grp.Wait()
}

// insertPoint runs greedy search from medoid toward pid, robust-prunes
// the visited set union pid's current neighbors down to R, installs the
// result as pid's neighbor list, then adds the reverse edge to every new
// neighbor, re-pruning any neighbor that now exceeds R.
func insertPoint(s *storage.Storage, dist distance.Func, g *Graph, medoid, pid uint32, vis *visited.Set, p Params) {
	query := s.GetVector(int(pid))
	_, visitedIDs := GreedySearch(s, dist, g, []uint32{medoid}, query, p.LBuild, vis)

	cur := g.Neighbors(pid)
	pool := make(map[uint32]struct{}, len(visitedIDs)+len(cur))
	for _, v := range visitedIDs {
		if v != pid {
			pool[v] = struct{}{}
		}
	}
	for _, v := range cur {
		if v != pid {
			pool[v] = struct{}{}
		}
	}

	candidates := make([]Candidate, 0, len(pool))
	for id := range pool {
		candidates = append(candidates, Candidate{ID: id, Dist: dist(query, s.GetVector(int(id)))})
	}

	newNeighbors := RobustPrune(s, dist, pid, candidates, p.Alpha, p.R)
	g.setNeighborsLocked(pid, newNeighbors)

	for _, q := range newNeighbors {
		addReverseEdge(s, dist, g, q, pid, p.Alpha, p.R)
	}
}

// addReverseEdge appends pid to q's neighbor list, re-pruning q's list
// with alpha if it now exceeds R. Self-loops and duplicates are rejected.
func addReverseEdge(s *storage.Storage, dist distance.Func, g *Graph, q, pid uint32, alpha float32, r int) {
	g.locks.Lock(q)
	defer g.locks.Unlock(q)

	if q == pid {
		return
	}
	cur := g.edges[q]
	for _, n := range cur {
		if n == pid {
			return
		}
	}

	updated := append(append([]uint32{}, cur...), pid)
	if len(updated) <= r {
		g.edges[q] = updated
		return
	}

	qVec := s.GetVector(int(q))
	candidates := make([]Candidate, len(updated))
	for i, n := range updated {
		candidates[i] = Candidate{ID: n, Dist: dist(qVec, s.GetVector(int(n)))}
	}
	g.edges[q] = RobustPrune(s, dist, q, candidates, alpha, r)
}

// randRRegularInit fills g with a random R-regular adjacency: each
// vertex gets R distinct non-self out-neighbors chosen uniformly at
// random (fewer than R when n <= R).
func randRRegularInit(g *Graph, r int) {
	rng := rand.New(rand.NewPCG(7, uint64(g.N)))
	n := g.N
	deg := r
	if deg > n-1 {
		deg = max(n-1, 0)
	}

	for i := 0; i < n; i++ {
		if deg == 0 {
			g.edges[i] = nil
			continue
		}
		chosen := make(map[uint32]struct{}, deg)
		for len(chosen) < deg {
			j := uint32(rng.IntN(n))
			if int(j) == i {
				continue
			}
			chosen[j] = struct{}{}
		}
		list := make([]uint32, 0, deg)
		for j := range chosen {
			list = append(list, j)
		}
		g.edges[i] = list
	}
}
