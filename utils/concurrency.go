package utils

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ParallelMap applies fn to every item using at most workers goroutines and
// returns the results in input order. fn must not touch other items.
func ParallelMap[T, R any](items []T, workers int, fn func(int, T) R) []R {
	out := make([]R, len(items))
	if len(items) == 0 {
		return out
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers == 1 {
		for i, it := range items {
			out[i] = fn(i, it)
		}
		return out
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, it := range items {
		i, it := i, it
		g.Go(func() error {
			out[i] = fn(i, it)
			return nil
		})
	}
	_ = g.Wait()
	return out
}
