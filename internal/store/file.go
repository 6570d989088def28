package store

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
)

// FileStore keeps one snapshot file per room under a single directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	log.Printf("Snapshot store initialized at %s", dir)
	return &FileStore{dir: dir}, nil
}

// Room names come from a URL path segment, but escape anyway so a room
// can never name a file outside the snapshot directory.
func (s *FileStore) path(roomID string) string {
	return filepath.Join(s.dir, url.PathEscape(roomID)+".bin")
}

func (s *FileStore) Load(roomID string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(roomID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Save writes the snapshot through a temp file and renames it into
// place, so a crash mid-write never truncates the previous snapshot.
func (s *FileStore) Save(roomID string, data []byte) error {
	if len(data) == 0 {
		return nil
	}

	tmp, err := os.CreateTemp(s.dir, url.PathEscape(roomID)+".*.tmp")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	if err := os.Rename(tmp.Name(), s.path(roomID)); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
