// Package seatlock provides named mutual-exclusion handles.  A handle is
// created the first time its key is requested and lives for the lifetime of
// the table.  Acquisition is bounded by a timeout so a stuck holder can
// never wedge the callers queued behind it.
package seatlock

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// DefaultTimeout bounds Acquire when the caller passes a zero timeout.
const DefaultTimeout = 5 * time.Second

// ErrTimeout is returned when a handle could not be acquired in time.
var ErrTimeout = errors.New("lock acquisition timed out")

// Table maps keys to mutual-exclusion handles.  The zero value is not
// usable; call NewTable.
type Table struct {
	mu      sync.Mutex
	handles map[string]chan struct{}
}

// NewTable returns an empty lock table.
func NewTable() *Table {
	return &Table{handles: make(map[string]chan struct{})}
}

// handle returns the handle for key, creating it on first use.  Two
// callers racing on a new key always receive the same handle.
func (t *Table) handle(key string) chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.handles[key]
	if !ok {
		h = make(chan struct{}, 1)
		t.handles[key] = h
	}
	return h
}

// Acquire blocks until the handle for key is free, the timeout elapses or
// ctx is done.  A non-positive timeout means DefaultTimeout.  The returned
// Lock must be released exactly once; extra Release calls are ignored.
// A caller must not acquire a key it already holds.
func (t *Table) Acquire(ctx context.Context, key string, timeout time.Duration) (*Lock, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	h := t.handle(key)

	// fast path
	select {
	case h <- struct{}{}:
		return &Lock{key: key, h: h}, nil
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case h <- struct{}{}:
		return &Lock{key: key, h: h}, nil
	case <-timer.C:
		log.Printf("seat-lock: timed out after %s waiting for %s", timeout, key)
		return nil, fmt.Errorf("%s: %w", key, ErrTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len reports how many handles have been created.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.handles)
}

// Lock is a held handle.
type Lock struct {
	key  string
	h    chan struct{}
	once sync.Once
}

// Key returns the key this lock was acquired for.
func (l *Lock) Key() string { return l.key }

// Release frees the handle.  It is safe to call more than once and on a
// nil Lock.
func (l *Lock) Release() {
	if l == nil {
		return
	}
	l.once.Do(func() { <-l.h })
}

// SeatKey names the handle guarding one seat of a flight.
func SeatKey(flightID uint64, seatNumber string) string {
	return fmt.Sprintf("seat:%d:%s", flightID, seatNumber)
}

// PassengerKey names the handle guarding one passenger's check-in.
func PassengerKey(passportNumber string) string {
	return "passenger:" + passportNumber
}

// StatusKey names the handle serializing status changes of a flight.
func StatusKey(flightID uint64) string {
	return fmt.Sprintf("status:%d", flightID)
}
