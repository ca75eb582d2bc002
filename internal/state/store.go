package state

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// FetchFunc loads a fresh snapshot for a store.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Projection derives the visible view from a snapshot. It must not modify
// its input.
type Projection[T any] func(T) T

// ViewState is the latest data available to a view.
type ViewState[T any] struct {
	Snapshot            T
	HasSnapshot         bool
	Visible             T // Snapshot with the current projection applied
	Loading             bool
	LastError           error
	LastUpdated         time.Time
	ConsecutiveFailures int
}

// IsOffline returns true when the API has failed for multiple refreshes in a row.
func (s ViewState[T]) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store owns one view's state and serializes updates to it.
type Store[T any] struct {
	name  string
	fetch FetchFunc[T]

	mu       sync.RWMutex
	state    ViewState[T]
	filter   Projection[T]
	started  uint64 // sequence of the latest refresh started
	resolved uint64 // sequence of the latest refresh applied
}

// NewStore builds a store that refreshes through fetch.
func NewStore[T any](name string, fetch FetchFunc[T]) *Store[T] {
	return &Store[T]{name: name, fetch: fetch}
}

// Name identifies the store in logs.
func (s *Store[T]) Name() string {
	return s.name
}

// Refresh fetches a new snapshot and applies it. The previous snapshot stays
// visible while the fetch is outstanding and survives a failed fetch.
//
// The result is dropped without touching state when ctx was cancelled before
// it could be applied, or when a refresh started later has already applied
// its own result. The returned error is the fetch error, if any.
func (s *Store[T]) Refresh(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	// Cancellation may land while we wait on a Barrier holder.
	if err := ctx.Err(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.started++
	seq := s.started
	s.state.Loading = true
	s.mu.Unlock()

	snapshot, err := s.fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if ctx.Err() != nil {
		// The owner went away mid-flight; its state is no longer ours to write.
		if err == nil {
			err = ctx.Err()
		}
		return err
	}
	if seq <= s.resolved {
		return err
	}
	s.resolved = seq
	s.state.Loading = s.started > s.resolved
	s.state.LastUpdated = time.Now()

	if err != nil {
		s.state.LastError = err
		s.state.ConsecutiveFailures++
		return err
	}

	s.state.Snapshot = snapshot
	s.state.HasSnapshot = true
	s.state.LastError = nil
	s.state.ConsecutiveFailures = 0
	s.state.Visible = s.project(snapshot)
	return nil
}

// SetFilter installs a projection over the current snapshot. It never
// triggers a fetch. A nil projection shows the snapshot unchanged.
func (s *Store[T]) SetFilter(p Projection[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filter = p
	if s.state.HasSnapshot {
		s.state.Visible = s.project(s.state.Snapshot)
	}
}

// Barrier waits for any result currently being applied to finish. Callers
// that cancel a refresh context and then call Barrier are guaranteed that
// refresh can no longer write to the store.
func (s *Store[T]) Barrier() {
	s.mu.Lock()
	defer s.mu.Unlock()
}

// State returns a copy of the current view state.
func (s *Store[T]) State() ViewState[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.state
	if s.state.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.state.LastError)
	}
	return snap
}

func (s *Store[T]) project(snapshot T) T {
	if s.filter == nil {
		return snapshot
	}
	return s.filter(snapshot)
}
