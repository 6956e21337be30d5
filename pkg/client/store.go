package client

import "sync"

// Store holds a state value and tells subscribers about every change.
// Subscribers run after the lock is released.
type Store[S any] struct {
	mu     sync.RWMutex
	state  S
	subs   map[int]func(S)
	nextID int
}

func NewStore[S any](initial S) *Store[S] {
	return &Store[S]{state: initial, subs: make(map[int]func(S))}
}

func (s *Store[S]) State() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store[S]) Subscribe(fn func(S)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// update applies a transition and returns the new state.
func (s *Store[S]) update(next func(S) S) S {
	s.mu.Lock()
	s.state = next(s.state)
	state := s.state
	subs := make([]func(S), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
	return state
}
