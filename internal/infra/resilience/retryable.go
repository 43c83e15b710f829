package resilience

import (
	"context"
	"sync"
)

// RetryableOperation wraps a load the user may re-trigger after it fails.
// Run performs exactly one attempt; retrying is calling Run again.
type RetryableOperation[T any] struct {
	op func(ctx context.Context) (T, error)

	mu       sync.Mutex
	attempts int
	lastErr  error
}

// NewRetryableOperation wraps op.
func NewRetryableOperation[T any](op func(ctx context.Context) (T, error)) *RetryableOperation[T] {
	return &RetryableOperation[T]{op: op}
}

// Run performs one attempt and records its outcome.
func (r *RetryableOperation[T]) Run(ctx context.Context) (T, error) {
	v, err := r.op(ctx)

	r.mu.Lock()
	r.attempts++
	r.lastErr = err
	r.mu.Unlock()

	return v, err
}

// Attempts returns how many times Run has been called.
func (r *RetryableOperation[T]) Attempts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts
}

// LastErr returns the error of the latest attempt, nil after a success.
func (r *RetryableOperation[T]) LastErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// CanRetry reports whether the latest attempt failed.
func (r *RetryableOperation[T]) CanRetry() bool {
	return r.LastErr() != nil
}
