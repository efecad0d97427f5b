package wink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// LockTimeout bounds how long FileCredentialStore waits for the
// cross-process lock before giving up.
const LockTimeout = 2 * time.Second

// FileCredentialStore stores the credential set as a flat JSON document.
// Writes are atomic (temp file + rename) and serialized across processes
// with an exclusive lock on "<path>.lock".
type FileCredentialStore struct {
	path string
	mu   sync.Mutex
}

// NewFileCredentialStore creates a store backed by path.
func NewFileCredentialStore(path string) *FileCredentialStore {
	return &FileCredentialStore{path: path}
}

// Path returns the credential file path.
func (f *FileCredentialStore) Path() string {
	return f.path
}

func (f *FileCredentialStore) lock(ctx context.Context) (*flock.Flock, error) {
	if dir := filepath.Dir(f.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create credential directory: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, LockTimeout)
	defer cancel()

	fl := flock.New(f.path + ".lock")
	locked, err := fl.TryLockContext(ctx, 10*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("failed to lock credential file: %w", err)
	}
	if !locked {
		return nil, errors.New("failed to lock credential file: timed out")
	}
	return fl, nil
}

// Save writes creds to the file with 0600 permissions.
func (f *FileCredentialStore) Save(ctx context.Context, creds Credentials) error {
	if creds == nil {
		return &StoreError{Op: "save", Location: f.path, Err: errors.New("credentials cannot be nil")}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	fl, err := f.lock(ctx)
	if err != nil {
		return &StoreError{Op: "save", Location: f.path, Err: err}
	}
	defer fl.Unlock()

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return &StoreError{Op: "save", Location: f.path, Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+"-*.tmp")
	if err != nil {
		return &StoreError{Op: "save", Location: f.path, Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &StoreError{Op: "save", Location: f.path, Err: err}
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &StoreError{Op: "save", Location: f.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &StoreError{Op: "save", Location: f.path, Err: err}
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return &StoreError{Op: "save", Location: f.path, Err: err}
	}
	return nil
}

// Load reads the credential set. A missing file yields
// ErrCredentialsNotFound.
func (f *FileCredentialStore) Load(ctx context.Context) (Credentials, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &StoreError{Op: "load", Location: f.path, Err: ErrCredentialsNotFound}
		}
		return nil, &StoreError{Op: "load", Location: f.path, Err: err}
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, &StoreError{Op: "load", Location: f.path, Err: fmt.Errorf("invalid credential file: %w", err)}
	}
	if creds == nil {
		creds = Credentials{}
	}
	return creds, nil
}

// Delete removes the credential file.
func (f *FileCredentialStore) Delete(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return &StoreError{Op: "delete", Location: f.path, Err: err}
	}
	return nil
}

// Exists checks if the credential file exists.
func (f *FileCredentialStore) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

// MemoryCredentialStore keeps the credential set in memory. It counts
// saves, which makes it convenient in tests.
type MemoryCredentialStore struct {
	creds Credentials
	saves int
	mu    sync.RWMutex
}

// NewMemoryCredentialStore creates a store seeded with creds (may be nil).
func NewMemoryCredentialStore(creds Credentials) *MemoryCredentialStore {
	return &MemoryCredentialStore{creds: creds.Clone()}
}

// Save replaces the stored set with a copy of creds.
func (m *MemoryCredentialStore) Save(ctx context.Context, creds Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = creds.Clone()
	m.saves++
	return nil
}

// Load returns a copy of the stored set.
func (m *MemoryCredentialStore) Load(ctx context.Context) (Credentials, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.creds == nil {
		return nil, ErrCredentialsNotFound
	}
	return m.creds.Clone(), nil
}

// Saves returns how many times Save has been called.
func (m *MemoryCredentialStore) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
