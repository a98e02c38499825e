package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/Manishmatre/clinicauth/identity"
)

// fileState is the single JSON document a FileStore keeps on disk.
type fileState struct {
	Record        *Record       `json:"record,omitempty"`
	LastEmail     string        `json:"lastEmail,omitempty"`
	PreferredRole identity.Role `json:"preferredRole,omitempty"`
	RedirectPath  string        `json:"redirectPath,omitempty"`
}

// FileStore keeps the whole cache in one JSON file, rewritten atomically
// on every mutation. Suited to single-process clients; multi-process
// terminals should use RedisStore instead.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a FileStore persisting to the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) load() (*fileState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &fileState{}, nil
		}
		return nil, err
	}
	st := &fileState{}
	if err := json.Unmarshal(data, st); err != nil {
		// A corrupt state file is treated as empty rather than wedging
		// every hydration behind a decode error.
		return &fileState{}, nil
	}
	return st, nil
}

func (s *FileStore) save(st *fileState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".cache-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path)
}

func (s *FileStore) mutate(ctx context.Context, fn func(*fileState)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load()
	if err != nil {
		return err
	}
	fn(st)
	return s.save(st)
}

func (s *FileStore) read(ctx context.Context) (*fileState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) LoadRecord(ctx context.Context) (*Record, error) {
	st, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return st.Record, nil
}

func (s *FileStore) SaveRecord(ctx context.Context, rec *Record) error {
	return s.mutate(ctx, func(st *fileState) { st.Record = rec })
}

func (s *FileStore) ClearRecord(ctx context.Context) error {
	return s.mutate(ctx, func(st *fileState) { st.Record = nil })
}

func (s *FileStore) LastEmail(ctx context.Context) (string, error) {
	st, err := s.read(ctx)
	if err != nil {
		return "", err
	}
	return st.LastEmail, nil
}

func (s *FileStore) SetLastEmail(ctx context.Context, email string) error {
	return s.mutate(ctx, func(st *fileState) { st.LastEmail = email })
}

func (s *FileStore) PreferredRole(ctx context.Context) (identity.Role, error) {
	st, err := s.read(ctx)
	if err != nil {
		return "", err
	}
	return st.PreferredRole, nil
}

func (s *FileStore) SetPreferredRole(ctx context.Context, role identity.Role) error {
	return s.mutate(ctx, func(st *fileState) { st.PreferredRole = role })
}

func (s *FileStore) SetRedirectPath(ctx context.Context, path string) error {
	return s.mutate(ctx, func(st *fileState) { st.RedirectPath = path })
}

func (s *FileStore) TakeRedirectPath(ctx context.Context) (string, error) {
	var path string
	err := s.mutate(ctx, func(st *fileState) {
		path = st.RedirectPath
		st.RedirectPath = ""
	})
	if err != nil {
		return "", err
	}
	return path, nil
}
