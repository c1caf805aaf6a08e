package store

import (
	"context"
	"sync"
)

// Store is the single holder of State. Every change goes through Dispatch.
type Store struct {
	mu      sync.Mutex
	state   State
	version uint64

	nextID      int
	subscribers map[int]func(State, uint64)
}

// New creates a store holding the initial state
func New() *Store {
	return &Store{
		state:       Initial(),
		subscribers: make(map[int]func(State, uint64)),
	}
}

// Dispatch applies one transition atomically and returns the resulting snapshot.
// Subscribers are notified after the lock is released.
func (s *Store) Dispatch(t Transition) State {
	s.mu.Lock()
	s.state = t(s.state)
	s.version++
	snapshot, version := s.state.clone(), s.version
	subscribers := make([]func(State, uint64), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subscribers = append(subscribers, fn)
	}
	s.mu.Unlock()

	for _, fn := range subscribers {
		fn(snapshot, version)
	}
	return snapshot
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() State {
	state, _ := s.SnapshotWithVersion()
	return state
}

// SnapshotWithVersion returns a copy of the current state and the number of
// transitions applied so far
func (s *Store) SnapshotWithVersion() (State, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone(), s.version
}

// Version returns the number of transitions applied so far
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Subscribe registers fn to be called after every dispatch. The returned
// function removes the subscription. fn must not block.
func (s *Store) Subscribe(fn func(State, uint64)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// WaitNewer blocks until the version exceeds after or ctx is done, then
// returns the latest snapshot
func (s *Store) WaitNewer(ctx context.Context, after uint64) (State, uint64) {
	changed := make(chan struct{}, 1)
	unsubscribe := s.Subscribe(func(_ State, version uint64) {
		if version > after {
			select {
			case changed <- struct{}{}:
			default:
			}
		}
	})
	defer unsubscribe()

	if state, version := s.SnapshotWithVersion(); version > after {
		return state, version
	}

	select {
	case <-changed:
	case <-ctx.Done():
	}
	return s.SnapshotWithVersion()
}
