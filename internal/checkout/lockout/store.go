package lockout

import (
	"errors"
	"io/fs"
	"os"
	"sync"
)

// Store holds one serialized ledger blob, mirroring the single storage key
// the browser uses. Load returns nil for missing data.
type Store interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

// MemoryStore keeps the ledger blob in memory. Used in tests and as the
// default when no persistence path is configured.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data, nil
}

func (s *MemoryStore) Save(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
	return nil
}

// FileStore persists the ledger blob to a single file, the CLI analog of the
// browser's persistent storage key. A missing file reads as empty.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *FileStore) Save(data []byte) error {
	return os.WriteFile(s.path, data, 0o600)
}
