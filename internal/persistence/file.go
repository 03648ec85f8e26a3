package persistence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// FileStore keeps each collection as one JSON file under a data directory.
// A single mutex serializes all access; beyond that window concurrent
// processes are last-writer-wins.
type FileStore struct {
	mu      sync.Mutex
	dataDir string
}

// NewFileStore creates the data directory and returns the store.
func NewFileStore(dataDir string, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	logger.Info("file store ready", zap.String("dir", dataDir))
	return &FileStore{dataDir: dataDir}, nil
}

// Read returns the raw collection contents; a missing file is an empty
// collection, not an error.
func (s *FileStore) Read(_ context.Context, name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// Write replaces the collection file via temp-file rename so a crashed
// write never leaves a truncated collection behind.
func (s *FileStore) Write(_ context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dataDir, name+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path(name))
}

// Ping verifies the data directory is still accessible.
func (s *FileStore) Ping(_ context.Context) error {
	_, err := os.Stat(s.dataDir)
	return err
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dataDir, name+".json")
}
