package ai

import "sync"

// Sessions keeps the message history of each completion session so a request with
// Restart=false continues the conversation. T is the provider's message type.
type Sessions[T any] struct {
	mu      sync.Mutex
	history map[string][]T
}

func NewSessions[T any]() *Sessions[T] {
	return &Sessions[T]{history: make(map[string][]T)}
}

// Begin returns the history to send before the next prompt of key. A restart
// forgets whatever the session held.
func (s *Sessions[T]) Begin(key string, restart bool) []T {
	s.mu.Lock()
	defer s.mu.Unlock()

	if restart || key == "" {
		delete(s.history, key)
		return nil
	}
	prev := s.history[key]
	out := make([]T, len(prev))
	copy(out, prev)
	return out
}

// Record stores the exchanged messages as the new history of key.
func (s *Sessions[T]) Record(key string, messages ...T) {
	if key == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[key] = append(s.history[key], messages...)
}

// Len reports how many messages key currently holds.
func (s *Sessions[T]) Len(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history[key])
}
