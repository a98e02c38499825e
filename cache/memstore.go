package cache

import (
	"context"
	"sync"

	"github.com/Manishmatre/clinicauth/identity"
)

// MemoryStore keeps the cache in process memory. Used by tests and by
// callers that want no persistence at all.
type MemoryStore struct {
	mu sync.Mutex
	st fileState
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) with(ctx context.Context, fn func(*fileState)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.st)
	return nil
}

func (s *MemoryStore) LoadRecord(ctx context.Context) (*Record, error) {
	var rec *Record
	err := s.with(ctx, func(st *fileState) { rec = st.Record })
	return rec, err
}

func (s *MemoryStore) SaveRecord(ctx context.Context, rec *Record) error {
	return s.with(ctx, func(st *fileState) { st.Record = rec })
}

func (s *MemoryStore) ClearRecord(ctx context.Context) error {
	return s.with(ctx, func(st *fileState) { st.Record = nil })
}

func (s *MemoryStore) LastEmail(ctx context.Context) (string, error) {
	var email string
	err := s.with(ctx, func(st *fileState) { email = st.LastEmail })
	return email, err
}

func (s *MemoryStore) SetLastEmail(ctx context.Context, email string) error {
	return s.with(ctx, func(st *fileState) { st.LastEmail = email })
}

func (s *MemoryStore) PreferredRole(ctx context.Context) (identity.Role, error) {
	var role identity.Role
	err := s.with(ctx, func(st *fileState) { role = st.PreferredRole })
	return role, err
}

func (s *MemoryStore) SetPreferredRole(ctx context.Context, role identity.Role) error {
	return s.with(ctx, func(st *fileState) { st.PreferredRole = role })
}

func (s *MemoryStore) SetRedirectPath(ctx context.Context, path string) error {
	return s.with(ctx, func(st *fileState) { st.RedirectPath = path })
}

func (s *MemoryStore) TakeRedirectPath(ctx context.Context) (string, error) {
	var path string
	err := s.with(ctx, func(st *fileState) {
		path = st.RedirectPath
		st.RedirectPath = ""
	})
	return path, err
}
