package worker

import (
	"context"
	"fmt"
	"testing"
)

func TestRunProcessesAllInOrder(t *testing.T) {
	inputs := []int{1, 2, 3, 4, 5, 6, 7, 8}

	results := Run(context.Background(), 3, inputs, func(_ context.Context, n int) error {
		if n%2 == 1 {
			return fmt.Errorf("odd input %d", n)
		}
		return nil
	})

	if len(results) != len(inputs) {
		t.Fatalf("got %d results, want %d", len(results), len(inputs))
	}
	for i, r := range results {
		if r.Input != inputs[i] {
			t.Errorf("result %d input = %d, want %d", i, r.Input, inputs[i])
		}
		if (inputs[i]%2 == 1) != (r.Err != nil) {
			t.Errorf("result %d err = %v for input %d", i, r.Err, inputs[i])
		}
	}
}

func TestRunClampsWorkerCount(t *testing.T) {
	// Zero workers must still make progress, and more workers than inputs
	// must not deadlock.
	for _, workers := range []int{0, 50} {
		results := Run(context.Background(), workers, []string{"a", "b"}, func(_ context.Context, s string) error {
			return nil
		})
		if len(results) != 2 || results[0].Err != nil || results[1].Err != nil {
			t.Errorf("workers=%d: results = %v", workers, results)
		}
	}
}

func TestRunEmptyInput(t *testing.T) {
	results := Run(context.Background(), 4, nil, func(_ context.Context, n int) error { return nil })
	if len(results) != 0 {
		t.Errorf("got %d results for empty input", len(results))
	}
}
