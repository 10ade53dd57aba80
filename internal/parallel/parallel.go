// Package parallel splits per-sample loops across worker goroutines.
//
// Callers must only write disjoint outputs per index; results are then
// identical for every worker count.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Workers      int // Number of worker goroutines; <= 1 runs inline.
	MinChunkSize int // Minimum items per goroutine to avoid overhead.
}

// Sequential runs every loop inline on the calling goroutine.
func Sequential() Config {
	return Config{Workers: 1}
}

// WithWorkers returns a config using n workers; n <= 0 means one per CPU.
func WithWorkers(n int) Config {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return Config{
		Workers:      n,
		MinChunkSize: 64,
	}
}

// ForRange calls f on contiguous chunks [lo, hi) covering [0, n).
// Falls back to a single inline call if parallelism is disabled or n is too small.
func ForRange(n int, f func(lo, hi int), cfg Config) {
	if n <= 0 {
		return
	}
	if cfg.Workers <= 1 || n < 2*max(cfg.MinChunkSize, 1) {
		f(0, n)
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.Workers-1)/cfg.Workers, cfg.MinChunkSize)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			f(s, e)
		}(start, end)
	}
	wg.Wait()
}

