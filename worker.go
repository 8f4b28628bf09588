package goarraycore

import (
	"fmt"
	"sync"
)

type gapJob struct {
	index int
	gap   float64
}

type gapResult struct {
	index     int
	magnitude []float64
	err       error
}

// RunSweepWithPool computes the same mapping as SweepByGap with a fixed
// number of goroutines. Every job runs its own pipeline.
func RunSweepWithPool(p Params, gaps []float64, rMax float64, n int, focal float64, obs Observation, workers int) (map[float64][]float64, error) {
	if workers <= 0 {
		workers = 1
	}
	jobs := make(chan gapJob, len(gaps))
	results := make(chan gapResult, len(gaps))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				res, err := Synthesize(p, Geometry{OuterRadius: rMax, MinGap: j.gap, Rings: n}, focal, obs)
				results <- gapResult{index: j.index, magnitude: res.Magnitude, err: err}
			}
		}()
	}

	for i, gap := range gaps {
		jobs <- gapJob{index: i, gap: gap}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	collected := make([]gapResult, len(gaps))
	for r := range results {
		collected[r.index] = r
	}

	out := make(map[float64][]float64, len(gaps))
	for i, r := range collected {
		if r.err != nil {
			return nil, fmt.Errorf("gap %v: %w", gaps[i], r.err)
		}
		out[gaps[i]] = r.magnitude
	}
	return out, nil
}
