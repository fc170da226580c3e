package processor

import (
	"context"
	"sync"
)

// fanOut runs task for every index concurrently, bounded by pipeline.max_concurrent,
// and returns once all of them have finished. errs[k] holds the outcome for indices[k];
// a task that could not start because the context ended gets the context error.
// With failFast the first error cancels the context seen by the other tasks and is returned.
func (p *implProcessor) fanOut(ctx context.Context, indices []int, failFast bool, task func(ctx context.Context, i int) error) (errs []error, first error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := newSemaphore(p.cfg.Pipeline.MaxConcurrent)
	errs = make([]error, len(indices))

	var (
		wg   sync.WaitGroup
		once sync.Once
	)
	for k, i := range indices {
		wg.Add(1)
		go func(k, i int) {
			defer wg.Done()

			if err := sem.acquire(ctx); err != nil {
				errs[k] = err
				return
			}
			defer sem.release()

			if err := task(ctx, i); err != nil {
				errs[k] = err
				if failFast {
					once.Do(func() {
						first = err
						cancel()
					})
				}
			}
		}(k, i)
	}
	wg.Wait()

	return errs, first
}
