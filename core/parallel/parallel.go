package parallel

import (
	"runtime"
	"sync"
)

// Parallelize divides [0, items) into at most workers contiguous ranges and
// executes fn in parallel for each range (start, end). A non-positive workers
// value uses the number of CPU cores.
func Parallelize(items, workers int, fn func(start, end int)) {
	if items == 0 {
		return
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > items {
		workers = items // No need for more workers than items
	}

	// Calculate the number of items each worker handles (ceiling division)
	chunkSize := (items + workers - 1) / workers

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}

// ParallelizeWithThreshold performs parallelization only when the number of items exceeds the threshold
// If below threshold, normal sequential processing is performed
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, 0, fn)
}

// ForEach calls fn for every index in [0, items) using at most workers
// goroutines. All calls run to completion; the returned error is the one
// from the lowest failing index, so the outcome does not depend on
// scheduling. workers <= 1 runs sequentially in index order.
func ForEach(items, workers int, fn func(i int) error) error {
	if items == 0 {
		return nil
	}
	errs := make([]error, items)

	if workers <= 1 {
		for i := 0; i < items; i++ {
			errs[i] = fn(i)
		}
	} else {
		sem := make(chan struct{}, workers)
		var wg sync.WaitGroup
		for i := 0; i < items; i++ {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int) {
				defer wg.Done()
				defer func() { <-sem }()
				errs[i] = fn(i)
			}(i)
		}
		wg.Wait()
	}

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
