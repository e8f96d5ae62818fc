package worker

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Result pairs an input with the outcome of processing it.
type Result[T any] struct {
	Input T
	Err   error
}

// Run processes all inputs through a bounded pool of goroutines and returns
// one result per input, in input order. A cancelled context stops dispatch;
// in-flight work finishes before Run returns.
func Run[T any](ctx context.Context, workers int, inputs []T, fn func(context.Context, T) error) []Result[T] {
	if workers < 1 {
		workers = 1
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}

	results := make([]Result[T], len(inputs))
	indexCh := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexCh {
				err := fn(ctx, inputs[idx])
				results[idx] = Result[T]{Input: inputs[idx], Err: err}
				if err != nil {
					log.Error().Err(err).Int("index", idx).Msg("Job failed")
				}
			}
		}()
	}

dispatch:
	for i := range inputs {
		select {
		case <-ctx.Done():
			break dispatch
		case indexCh <- i:
		}
	}
	close(indexCh)
	wg.Wait()

	return results
}
