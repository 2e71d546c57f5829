package main

import (
	"context"
	"fmt"
	"sync"
)

type fetchBranch func(ctx context.Context) (any, error)

// safeGather runs every branch concurrently and waits for all of them to
// settle. A branch that fails or panics resolves to nil after being logged;
// siblings are never cancelled. Results come back in submission order.
func safeGather(ctx context.Context, branches ...fetchBranch) []any {
	results := make([]any, len(branches))

	var wg sync.WaitGroup
	wg.Add(len(branches))

	for i, branch := range branches {
		// Each goroutine writes only its own slot
		go func(i int, branch fetchBranch) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logger(ctx, fmt.Errorf("fetch branch %d panicked: %v", i, r))
					results[i] = nil
				}
			}()

			value, err := branch(ctx)
			if err != nil {
				logger(ctx, err)
				return
			}
			results[i] = value
		}(i, branch)
	}

	wg.Wait()
	return results
}
