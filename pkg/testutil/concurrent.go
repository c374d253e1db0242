package testutil

import (
	"sync"
	"sync/atomic"

	dErrors "realmbridge/pkg/domain-errors"
)

// ConcurrentResult counts outcomes of concurrent test operations by domain code.
type ConcurrentResult struct {
	Successes int32
	Conflicts int32
	NotFounds int32
	Errors    int32
}

func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Conflicts + r.NotFounds + r.Errors
}

// RunConcurrent starts all goroutines together and waits for them.
func RunConcurrent(goroutines int, fn func(idx int) error) *ConcurrentResult {
	var wg sync.WaitGroup
	var successes, conflicts, notFounds, errs atomic.Int32
	start := make(chan struct{})

	for i := range goroutines {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			<-start
			err := fn(idx)
			switch {
			case err == nil:
				successes.Add(1)
			case dErrors.HasCode(err, dErrors.CodeConflict):
				conflicts.Add(1)
			case dErrors.HasCode(err, dErrors.CodeNotFound):
				notFounds.Add(1)
			default:
				errs.Add(1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	return &ConcurrentResult{
		Successes: successes.Load(),
		Conflicts: conflicts.Load(),
		NotFounds: notFounds.Load(),
		Errors:    errs.Load(),
	}
}

// CollectConcurrent runs fn like RunConcurrent and returns every value produced.
func CollectConcurrent[T any](goroutines int, fn func(idx int) (T, error)) ([]T, []error) {
	var (
		mu     sync.Mutex
		values []T
		errs   []error
	)
	RunConcurrent(goroutines, func(idx int) error {
		v, err := fn(idx)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			errs = append(errs, err)
			return err
		}
		values = append(values, v)
		return nil
	})
	return values, errs
}
