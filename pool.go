package md2site

import (
	"runtime"
	"sync"
)

// MinWorkers ensures at least one render worker.
const MinWorkers = 1

// ResolveWorkers determines render concurrency.
// Priority: explicit workers > GOMAXPROCS-based calculation.
// Exported for use by CLIs.
func ResolveWorkers(workers int) int {
	if workers > 0 {
		return min(workers, MaxWorkers)
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers
	n := runtime.GOMAXPROCS(0)
	if n < MinWorkers {
		return MinWorkers
	}
	return min(n, MaxWorkers)
}

// forEach calls fn(i) for every i in [0, n) using at most workers
// goroutines. fn writes its own result slot, so callers keep input order.
func forEach(n, workers int, fn func(i int)) {
	if n == 0 {
		return
	}

	concurrency := min(max(workers, MinWorkers), n)
	if concurrency == 1 {
		for i := range n {
			fn(i)
		}
		return
	}

	var wg sync.WaitGroup
	jobs := make(chan int, n)

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				fn(idx)
			}
		}()
	}

	for i := range n {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
}
