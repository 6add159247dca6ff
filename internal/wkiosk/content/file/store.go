// Package file stores content snapshots on local disk
package file

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/wrale/wrale-kiosk/internal/wkiosk/content"
	werrors "github.com/wrale/wrale-kiosk/internal/wkiosk/errors"
)

// Store implements content.SnapshotStore with a single JSON file. Writes
// replace the file atomically so a power cut never leaves a torn snapshot.
type Store struct {
	path string
}

// NewStore creates a store writing to path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load implements content.SnapshotStore
func (s *Store) Load(ctx context.Context) (*content.Snapshot, error) {
	const op = "FileStore.Load"

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, werrors.NewError(werrors.CodeNotFound, "no snapshot saved", op, werrors.ErrNotFound)
	}
	if err != nil {
		return nil, werrors.NewError(werrors.CodeInternal, "failed to read snapshot", op, err)
	}

	var snap content.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, werrors.NewError(werrors.CodeInternal, "failed to decode snapshot", op, err)
	}
	return &snap, nil
}

// Save implements content.SnapshotStore
func (s *Store) Save(ctx context.Context, snap *content.Snapshot) error {
	const op = "FileStore.Save"

	data, err := json.Marshal(snap)
	if err != nil {
		return werrors.NewError(werrors.CodeInternal, "failed to encode snapshot", op, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return werrors.NewError(werrors.CodeInternal, "failed to create snapshot directory", op, err)
	}
	if err := renameio.WriteFile(s.path, data, 0o644); err != nil {
		return werrors.NewError(werrors.CodeInternal, "failed to write snapshot", op, err)
	}
	return nil
}
