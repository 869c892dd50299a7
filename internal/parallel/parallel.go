// Package parallel splits independent per-row or per-item work across
// GOMAXPROCS goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// minBand is the smallest number of rows handed to a single worker.
// Smaller images are processed on the calling goroutine.
const minBand = 16

// Workers returns the number of workers used for n items.
func Workers(n int) int {
	w := runtime.GOMAXPROCS(0)
	if w > n {
		w = n
	}
	if w < 1 {
		w = 1
	}
	return w
}

// Rows calls fn on disjoint half-open bands [y0, y1) that together cover
// [0, n). Bands run concurrently; fn must only write rows inside its band.
// Rows returns once every band has finished.
func Rows(n int, fn func(y0, y1 int)) {
	if n <= 0 {
		return
	}
	workers := Workers((n + minBand - 1) / minBand)
	if workers == 1 {
		fn(0, n)
		return
	}

	band := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for y0 := 0; y0 < n; y0 += band {
		y1 := min(y0+band, n)
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			fn(y0, y1)
		}(y0, y1)
	}
	wg.Wait()
}

// Each calls fn(i) for every i in [0, n) using a fixed set of workers
// pulling indices from a shared queue.
func Each(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	workers := Workers(n)
	if workers == 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	queue := make(chan int, n)
	for i := 0; i < n; i++ {
		queue <- i
	}
	close(queue)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range queue {
				fn(i)
			}
		}()
	}
	wg.Wait()
}
