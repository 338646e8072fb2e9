// Package parallel runs row-chunked work on a bounded set of goroutines.
//
// Frames large enough to cross the configured parallel threshold encode
// their join and group-by keys chunk by chunk on a WorkerPool. Results are
// always reassembled in input order, so a parallel run is observably
// identical to a sequential one.
package parallel

import (
	"runtime"
	"sync"
)

// WorkerPool bounds the goroutines ProcessIndexed fans out to.
type WorkerPool struct {
	numWorkers int
}

// NewWorkerPool creates a new worker pool; numWorkers <= 0 means one
// worker per CPU.
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{numWorkers: numWorkers}
}

// Workers returns the pool size.
func (wp *WorkerPool) Workers() int {
	return wp.numWorkers
}

// ProcessIndexed executes work items in parallel while preserving order.
func ProcessIndexed[T, R any](
	wp *WorkerPool,
	items []T,
	worker func(int, T) R,
) []R {
	if len(items) == 0 {
		return nil
	}

	itemCh := make(chan indexedItem[T], len(items))
	for i, item := range items {
		itemCh <- indexedItem[T]{index: i, value: item}
	}
	close(itemCh)

	results := make([]R, len(items))
	var wg sync.WaitGroup
	for range min(wp.numWorkers, len(items)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range itemCh {
				results[item.index] = worker(item.index, item.value)
			}
		}()
	}
	wg.Wait()

	return results
}

// Range is a half-open row interval [Start, End).
type Range struct {
	Start int
	End   int
}

// Split cuts n rows into consecutive ranges of at most chunkSize rows.
func Split(n, chunkSize int) []Range {
	if n <= 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = n
	}
	ranges := make([]Range, 0, (n+chunkSize-1)/chunkSize)
	for start := 0; start < n; start += chunkSize {
		ranges = append(ranges, Range{Start: start, End: min(start+chunkSize, n)})
	}
	return ranges
}

type indexedItem[T any] struct {
	index int
	value T
}
