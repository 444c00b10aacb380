package http

import (
	"context"
	"sync"
)

// Future is a write-once completion handle. It is resolved exactly once,
// either with a value or with an error, and may be read by any number of
// goroutines afterwards.
type Future[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

// NewFuture returns an unresolved future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Complete resolves f with v. It reports false if f was already resolved.
func (f *Future[T]) Complete(v T) bool {
	resolved := false
	f.once.Do(func() {
		f.value = v
		resolved = true
		close(f.done)
	})
	return resolved
}

// Fail resolves f with err. It reports false if f was already resolved.
func (f *Future[T]) Fail(err error) bool {
	resolved := false
	f.once.Do(func() {
		f.err = err
		resolved = true
		close(f.done)
	})
	return resolved
}

// Done is closed once f is resolved.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Poll returns the outcome without blocking. done is false while f is
// unresolved.
func (f *Future[T]) Poll() (value T, done bool, err error) {
	select {
	case <-f.done:
		return f.value, true, f.err
	default:
		var zero T
		return zero, false, nil
	}
}

// Get blocks until f is resolved or ctx is done.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (f *Future[T]) String() string {
	_, done, err := f.Poll()
	switch {
	case !done:
		return "Future[incomplete]"
	case err != nil:
		return "Future[failed: " + err.Error() + "]"
	default:
		return "Future[completed]"
	}
}
