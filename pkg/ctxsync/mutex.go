// Package ctxsync provides context-aware synchronization primitives used by
// the collection executor and the persistence flush-wait.
package ctxsync

import "context"

// A Mutex is a mutual exclusion lock whose Lock can be abandoned when a
// context is canceled.
type Mutex struct {
	slot chan struct{}
}

// NewMutex creates a new unlocked Mutex.
func NewMutex() *Mutex {
	return &Mutex{slot: make(chan struct{}, 1)}
}

// Lock locks m, blocking until the lock is available or the context is
// canceled.
func (m *Mutex) Lock(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case m.slot <- struct{}{}:
		return nil
	}
}

// TryLock tries to lock m and reports whether it succeeded.
func (m *Mutex) TryLock() bool {
	select {
	case m.slot <- struct{}{}:
		return true
	default:
		return false
	}
}

// Unlock unlocks m. Unlocking an unlocked Mutex panics.
func (m *Mutex) Unlock() {
	select {
	case <-m.slot:
	default:
		panic("ctxsync: unlock of unlocked mutex")
	}
}
