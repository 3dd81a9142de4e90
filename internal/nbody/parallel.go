package nbody

import (
	"runtime"
	"sync"
)

const minChunk = 256

// ParallelFor splits [0, n) into contiguous chunks and runs fn on each chunk
// concurrently. It returns only after every chunk has finished. workers <= 0
// uses GOMAXPROCS; ranges no larger than chunk run on the calling goroutine.
func ParallelFor(n, workers, chunk int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if chunk < 1 {
		chunk = 1
	}
	if n <= chunk || workers <= 1 {
		fn(0, n)
		return
	}

	if n/chunk < workers {
		workers = n / chunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}
