// Package optimistic applies local state changes before the remote call that
// makes them durable, and undoes them when that call fails.
package optimistic

import (
	"context"
	"fmt"
	"sync"
)

// Value is state that is updated optimistically.
type Value[S any] struct {
	mu    sync.RWMutex
	state S
}

func NewValue[S any](initial S) *Value[S] {
	return &Value[S]{state: initial}
}

// Get returns the current state.
func (v *Value[S]) Get() S {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state
}

// Set replaces the state, e.g. after a full refresh from the server.
func (v *Value[S]) Set(s S) {
	v.mu.Lock()
	v.state = s
	v.mu.Unlock()
}

// Update applies f under the lock.
func (v *Value[S]) Update(f func(S) S) {
	v.mu.Lock()
	v.state = f(v.state)
	v.mu.Unlock()
}

// Tx is one optimistic change.
type Tx[S any] struct {
	// Apply changes the local state immediately.
	Apply func(S) S
	// Commit makes the change durable. On success it may return a function
	// that reconciles the local state with the server's answer.
	Commit func(ctx context.Context) (reconcile func(S) S, err error)
	// Revert undoes Apply after a failed commit. Without it the state is
	// restored to the snapshot taken before Apply, discarding concurrent changes.
	Revert func(S) S
}

// Do runs tx: apply, commit, then reconcile or roll back.
func Do[S any](ctx context.Context, v *Value[S], tx Tx[S]) error {
	v.mu.Lock()
	before := v.state
	v.state = tx.Apply(v.state)
	v.mu.Unlock()

	reconcile, err := tx.Commit(ctx)
	if err != nil {
		v.mu.Lock()
		if tx.Revert != nil {
			v.state = tx.Revert(v.state)
		} else {
			v.state = before
		}
		v.mu.Unlock()
		return fmt.Errorf("change rolled back: %w", err)
	}
	if reconcile != nil {
		v.Update(reconcile)
	}
	return nil
}
