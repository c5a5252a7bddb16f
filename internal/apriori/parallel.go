package apriori

import "golang.org/x/sync/errgroup"

// forChunks splits [0, n) into contiguous chunks and runs fn on each, using
// up to workers goroutines. fn must only write to slots inside its own chunk.
func forChunks(n, workers int, fn func(lo, hi int) error) error {
	if n == 0 {
		return nil
	}
	if workers <= 1 || n == 1 {
		return fn(0, n)
	}
	if workers > n {
		workers = n
	}
	size := (n + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += size {
		lo, hi := lo, min(lo+size, n)
		g.Go(func() error {
			return fn(lo, hi)
		})
	}
	return g.Wait()
}
