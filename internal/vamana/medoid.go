package vamana

import (
	"context"

	"golang.org/x/sync/errgroup"

	"ung/distance"
	"ung/storage"
)

// Medoid returns argmin_{p in [0,n)} d(mean, p) over s's points, under
// dist. The mean vector is computed once in float64 and re-encoded into
// s's element type; the argmin scan is parallelized across numThreads
// workers, each reducing a contiguous slice of ids before a final
// sequential reduction.
func Medoid(s *storage.Storage, dist distance.Func, numThreads int) uint32 {
	mean := meanVector(s)

	n := s.NumPoints()
	if n == 0 {
		return 0
	}
	if numThreads < 1 {
		numThreads = 1
	}
	if numThreads > n {
		numThreads = n
	}

	type best struct {
		id   uint32
		dist float32
		set  bool
	}
	partials := make([]best, numThreads)

	grp, _ := errgroup.WithContext(context.Background())
	chunk := (n + numThreads - 1) / numThreads
	for w := 0; w < numThreads; w++ {
		w := w
		lo := w * chunk
		hi := min(lo+chunk, n)
		if lo >= hi {
			continue
		}
		grp.Go(func() error {
			var b best
			for id := lo; id < hi; id++ {
				d := dist(mean, s.GetVector(id))
				if !b.set || d < b.dist {
					b = best{id: uint32(id), dist: d, set: true}
				}
			}
			partials[w] = b
			return nil
		})
	}
	_ = grp.Wait()

	var result best
	for _, b := range partials {
		if !b.set {
			continue
		}
		if !result.set || b.dist < result.dist {
			result = b
		}
	}
	return result.id
}

func meanVector(s *storage.Storage) []byte {
	n := s.NumPoints()
	dim := s.Dim()
	elem := s.DataType()
	sum := make([]float64, dim)

	for i := 0; i < n; i++ {
		v := s.GetVector(i)
		switch elem {
		case distance.F32:
			fv := distance.BytesToF32(v)
			for j, f := range fv {
				sum[j] += float64(f)
			}
		case distance.I8:
			iv := distance.BytesToI8(v)
			for j, x := range iv {
				sum[j] += float64(x)
			}
		case distance.U8:
			for j, x := range v {
				sum[j] += float64(x)
			}
		}
	}

	buf := make([]byte, dim*distance.ElemSize(elem))
	denom := float64(max(n, 1))
	switch elem {
	case distance.F32:
		out := distance.BytesToF32(buf)
		for j := range out {
			out[j] = float32(sum[j] / denom)
		}
	case distance.I8:
		for j := range buf {
			buf[j] = byte(int8(clamp(sum[j]/denom, -128, 127)))
		}
	case distance.U8:
		for j := range buf {
			buf[j] = byte(clamp(sum[j]/denom, 0, 255))
		}
	}
	return buf
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
