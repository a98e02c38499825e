package token

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps the token in a single file, written atomically via a
// temp file and rename so a crash mid-write never leaves a truncated
// credential behind. The file is created with 0600 permissions.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore persisting to the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Get reads the stored token. A missing file means no token.
func (s *FileStore) Get(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Set replaces the stored token.
func (s *FileStore) Set(ctx context.Context, tok string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(tok); err != nil {
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

// Clear removes the stored token. Removing an absent token is not an
// error.
func (s *FileStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
