package micromag

import "sync"

// minChunk is the smallest number of sites handed to one worker.
const minChunk = 64

// parallelFor runs fn over [0, n) split into contiguous chunks and returns
// only after every chunk has finished.
func parallelFor(n, workers int, fn func(start, end int)) {
	if workers <= 1 || n <= minChunk {
		fn(0, n)
		return
	}

	if n/minChunk < workers {
		workers = n / minChunk
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
