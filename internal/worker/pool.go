// Package worker runs per-row work over an indexed batch with a fixed
// number of goroutines. Rows are addressed by index, so callers mutate
// their own slice elements and output order is independent of
// scheduling.
package worker

import (
	"context"
	"sync"
)

// RowFunc processes the row at the given index.
type RowFunc func(ctx context.Context, i int) error

// Pool is a bounded-concurrency executor for indexed batches.
type Pool struct {
	workers int
}

// NewPool creates a pool with the given worker count, minimum one.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Workers returns the configured concurrency.
func (p *Pool) Workers() int { return p.workers }

// Run applies fn to every index in [0, n). It stops handing out new
// indexes on the first error or context cancellation and returns the
// first error observed. Indexes already in flight run to completion.
func (p *Pool) Run(ctx context.Context, n int, fn RowFunc) error {
	if n <= 0 {
		return ctx.Err()
	}

	indexes := make(chan int)
	var errOnce sync.Once
	var firstErr error
	fail := func(err error) {
		errOnce.Do(func() { firstErr = err })
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				if err := fn(runCtx, i); err != nil {
					fail(err)
					cancel()
					return
				}
			}
		}()
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case indexes <- i:
		case <-runCtx.Done():
			break feed
		}
	}
	close(indexes)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
