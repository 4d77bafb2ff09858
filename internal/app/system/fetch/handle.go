package fetch

import (
	"context"
	"sync"

	"github.com/dalemusser/hrms/internal/domain/models"
)

// State is a point-in-time view of a handle.
//
//	Data == nil && IsLoading   not loaded yet
//	Data == nil && Err != nil  failed
//	Data != nil                loaded (possibly empty)
type State[T any] struct {
	Data      *models.Paginated[T]
	IsLoading bool
	Err       error
}

// Handle tracks one watched key until it resolves.
type Handle[T any] struct {
	key  Key
	done chan struct{}

	mu     sync.Mutex
	data   *models.Paginated[T]
	err    error
	closed bool
	subs   []func(State[T])
}

func newHandle[T any](key Key) *Handle[T] {
	return &Handle[T]{key: key, done: make(chan struct{})}
}

// Key returns the key the handle watches.
func (h *Handle[T]) Key() Key { return h.key }

// State returns the current state without blocking.
func (h *Handle[T]) State() State[T] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stateLocked()
}

func (h *Handle[T]) stateLocked() State[T] {
	select {
	case <-h.done:
		return State[T]{Data: h.data, Err: h.err}
	default:
		return State[T]{IsLoading: true}
	}
}

// Done is closed once the handle resolves.
func (h *Handle[T]) Done() <-chan struct{} { return h.done }

// Wait blocks until the handle resolves or ctx ends. On ctx expiry it
// returns the still-loading state together with ctx.Err().
func (h *Handle[T]) Wait(ctx context.Context) (State[T], error) {
	select {
	case <-h.done:
		return h.State(), nil
	case <-ctx.Done():
		return h.State(), ctx.Err()
	}
}

// OnChange registers fn to run once with the resolved state. If the handle
// has already resolved fn runs immediately on the caller's goroutine.
func (h *Handle[T]) OnChange(fn func(State[T])) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	select {
	case <-h.done:
		st := h.stateLocked()
		h.mu.Unlock()
		fn(st)
		return
	default:
	}
	h.subs = append(h.subs, fn)
	h.mu.Unlock()
}

// Close detaches the handle; registered callbacks will not run.
func (h *Handle[T]) Close() {
	h.mu.Lock()
	h.closed = true
	h.subs = nil
	h.mu.Unlock()
}

func (h *Handle[T]) resolve(data *models.Paginated[T], err error) {
	h.mu.Lock()
	select {
	case <-h.done:
		h.mu.Unlock()
		return
	default:
	}
	h.data, h.err = data, err
	close(h.done)
	subs := h.subs
	h.subs = nil
	st := h.stateLocked()
	h.mu.Unlock()

	for _, fn := range subs {
		fn(st)
	}
}
