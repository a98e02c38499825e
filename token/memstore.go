package token

import (
	"context"
	"sync"
)

// MemoryStore holds the token in process memory only. Sessions backed by
// it do not survive a restart; it exists for tests and for callers that
// explicitly want ephemeral sessions.
type MemoryStore struct {
	mu  sync.Mutex
	tok string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tok, nil
}

func (s *MemoryStore) Set(ctx context.Context, tok string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tok = tok
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tok = ""
	return nil
}
