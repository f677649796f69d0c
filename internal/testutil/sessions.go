package testutil

import (
	"context"
	"sync"
	"time"
)

// Sessions is an in-memory active-login registry.
type Sessions struct {
	mu   sync.Mutex
	data map[string]string
}

// NewSessions creates an empty Sessions registry.
func NewSessions() *Sessions {
	return &Sessions{data: make(map[string]string)}
}

func (s *Sessions) Set(_ context.Context, key, jti string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = jti
	return nil
}

func (s *Sessions) Lookup(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	jti, ok := s.data[key]
	return jti, ok, nil
}

func (s *Sessions) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Stored reports the JTI currently registered under key, if any.
func (s *Sessions) Stored(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	jti, ok := s.data[key]
	return jti, ok
}
