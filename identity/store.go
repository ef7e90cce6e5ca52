// Package identity obtains or creates the anonymous session id shared by
// every game this client joins.
// file: identity/store.go
package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNoSessionID is returned by Store.Load when nothing has been stored yet.
var ErrNoSessionID = errors.New("identity: no stored session id")

// Store is durable client-side storage for the session id.
type Store interface {
	// Load returns the stored id, or ErrNoSessionID.
	Load() (string, error)
	// SaveIfAbsent stores id unless another value got there first, and
	// returns whichever value is stored afterwards.
	SaveIfAbsent(id string) (string, error)
}

// --------------- MemoryStore -----------------

// MemoryStore keeps the id for the lifetime of the process.
type MemoryStore struct {
	mu sync.Mutex
	id string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.id == "" {
		return "", ErrNoSessionID
	}
	return m.id, nil
}

func (m *MemoryStore) SaveIfAbsent(id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.id == "" {
		m.id = id
	}
	return m.id, nil
}

// --------------- FileStore -----------------

type fileRecord struct {
	SessionID string `json:"session_id"`
}

// FileStore persists the id as JSON in a single file. Creation is atomic
// across processes: the record is written to a temp file and hard-linked
// into place, so a second writer finds the first one's file and adopts it.
type FileStore struct {
	path string
}

// NewFileStore stores the id at path. The parent directory is created on
// first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath is <user config dir>/codenames-sync/session.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "codenames-sync", "session.json"), nil
}

func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Load() (string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoSessionID
	}
	if err != nil {
		return "", err
	}
	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil || !valid(rec.SessionID) {
		return "", ErrNoSessionID
	}
	return rec.SessionID, nil
}

func (f *FileStore) SaveIfAbsent(id string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".session-*.json")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := json.NewEncoder(tmp).Encode(fileRecord{SessionID: id}); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	err = os.Link(tmpName, f.path)
	switch {
	case err == nil:
		return id, nil
	case errors.Is(err, os.ErrExist):
		// lost the race, or the existing file holds no usable id
		existing, loadErr := f.Load()
		if loadErr == nil {
			return existing, nil
		}
		if errors.Is(loadErr, ErrNoSessionID) {
			if err := os.Rename(tmpName, f.path); err != nil {
				return "", err
			}
			return id, nil
		}
		return "", loadErr
	default:
		return "", fmt.Errorf("link session file: %w", err)
	}
}
