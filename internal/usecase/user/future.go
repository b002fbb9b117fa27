package user

import (
	"context"

	domain "user-webclient/internal/domain/user"
)

// Future is the pending result of an asynchronous fetch.
// The result is written once, before done is closed.
type Future struct {
	done chan struct{}
	user domain.User
	err  error
}

func runAsync(fn func() (domain.User, error)) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.user, f.err = fn()
	}()
	return f
}

// CompletedFuture returns a Future that already holds u and err.
func CompletedFuture(u domain.User, err error) *Future {
	f := &Future{done: make(chan struct{}), user: u, err: err}
	close(f.done)
	return f
}

// Done returns a channel that is closed once the result is available.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the result is available or ctx is done. Cancelling ctx
// only stops waiting; the request itself follows the context it was started with.
func (f *Future) Await(ctx context.Context) (domain.User, error) {
	select {
	case <-f.done:
		return f.user, f.err
	case <-ctx.Done():
		return domain.User{}, ctx.Err()
	}
}
