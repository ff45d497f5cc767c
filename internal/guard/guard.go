// Package guard provides per-session locks so that only one answer for a
// session is processed at a time, within one process (Local) or across
// processes sharing a Redis server (Redis).
package guard

import (
	"context"
	"errors"
	"sync"
)

// ErrHeld is returned when another caller holds the session.
var ErrHeld = errors.New("guard: session is being updated by another request")

// Guard serializes work on a session id. Acquire never blocks waiting for
// the holder; it fails fast with ErrHeld.
type Guard interface {
	Acquire(ctx context.Context, sessionID string) (release func(), err error)
}

// Local is an in-process Guard.
type Local struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewLocal creates an empty in-process guard.
func NewLocal() *Local {
	return &Local{held: make(map[string]bool)}
}

// Acquire implements Guard.
func (l *Local) Acquire(ctx context.Context, sessionID string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[sessionID] {
		return nil, ErrHeld
	}
	l.held[sessionID] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, sessionID)
			l.mu.Unlock()
		})
	}, nil
}
