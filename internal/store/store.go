package store

// Store persists the latest known document blob for each room.
// Save overwrites the previous snapshot wholesale; Load reports
// absence (no snapshot yet) separately from read failure.
type Store interface {
	Load(roomID string) (data []byte, ok bool, err error)
	Save(roomID string, data []byte) error
	Close() error
}
