// Package inflight rejects a second run of an operation while the first one
// is still outstanding.
package inflight

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/sync/semaphore"
)

// ErrInProgress is returned by Do when a call with the same key is outstanding.
var ErrInProgress = errors.New("operation already in progress")

// Actions used to build operation keys.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// KeyFor builds an operation key such as "create-interface" or
// "update-interface-7". An id of 0 is left out.
func KeyFor(action, kind string, id int64) string {
	if id == 0 {
		return action + "-" + kind
	}
	return action + "-" + kind + "-" + strconv.FormatInt(id, 10)
}

// Registry holds one weight-1 semaphore per outstanding key.
// The zero value is not usable; create one with New.
type Registry struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	sem  *semaphore.Weighted
	refs int
}

func New() *Registry {
	return &Registry{slots: make(map[string]*slot)}
}

// Do runs fn unless a call with the same key is outstanding, in which case it
// returns an error wrapping ErrInProgress without running fn. The key is
// released when fn returns or panics.
func (r *Registry) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s := r.ref(key)
	defer r.unref(key)

	if !s.sem.TryAcquire(1) {
		return fmt.Errorf("%w: %s", ErrInProgress, key)
	}
	defer s.sem.Release(1)

	return fn(ctx)
}

// InProgress reports whether a call with key is outstanding.
func (r *Registry) InProgress(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[key]
	if !ok {
		return false
	}
	if s.sem.TryAcquire(1) {
		s.sem.Release(1)
		return false
	}
	return true
}

// Len returns the number of keys currently tracked.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slots)
}

func (r *Registry) ref(key string) *slot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[key]
	if !ok {
		s = &slot{sem: semaphore.NewWeighted(1)}
		r.slots[key] = s
	}
	s.refs++
	return s
}

func (r *Registry) unref(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.slots[key]
	s.refs--
	if s.refs == 0 {
		delete(r.slots, key)
	}
}
