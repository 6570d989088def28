package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// Both backends must behave identically from the relay's point of view.
func TestStoreRoundTrip(t *testing.T) {
	backends := map[string]Store{
		"file":   newFileStore(t),
		"sqlite": newSQLiteStore(t),
	}

	for name, s := range backends {
		t.Run(name, func(t *testing.T) {
			// Absent room
			data, ok, err := s.Load("r1")
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Nil(t, data)

			// Save and reload
			blob := []byte{0x01, 0x02, 0x03}
			require.NoError(t, s.Save("r1", blob))

			data, ok, err = s.Load("r1")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, blob, data)

			// Overwrite replaces, never appends
			next := []byte{0xaa}
			require.NoError(t, s.Save("r1", next))

			data, ok, err = s.Load("r1")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, next, data)
		})
	}
}

func TestStoreEmptySaveIsNoop(t *testing.T) {
	backends := map[string]Store{
		"file":   newFileStore(t),
		"sqlite": newSQLiteStore(t),
	}

	for name, s := range backends {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Save("r1", []byte{1}))
			require.NoError(t, s.Save("r1", nil))

			data, ok, err := s.Load("r1")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, []byte{1}, data, "empty save must not clobber the snapshot")
		})
	}
}

func TestStoreRoomIsolation(t *testing.T) {
	backends := map[string]Store{
		"file":   newFileStore(t),
		"sqlite": newSQLiteStore(t),
	}

	for name, s := range backends {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Save("r1", []byte{1}))
			require.NoError(t, s.Save("r2", []byte{2}))

			data, ok, err := s.Load("r1")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, []byte{1}, data)

			data, ok, err = s.Load("r2")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, []byte{2}, data)
		})
	}
}

func TestFileStoreRepeatedSaveIdentical(t *testing.T) {
	s := newFileStore(t)
	blob := []byte("same bytes")

	require.NoError(t, s.Save("r1", blob))
	first, err := os.ReadFile(s.path("r1"))
	require.NoError(t, err)

	require.NoError(t, s.Save("r1", blob))
	second, err := os.ReadFile(s.path("r1"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFileStoreEscapesRoomNames(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Save("../evil", []byte{1}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, strings.Contains(entries[0].Name(), "/"))

	data, ok, err := s.Load("../evil")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte{1}, data)
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, s.Save("r1", []byte{byte(i)}))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
