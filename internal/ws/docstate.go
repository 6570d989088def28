package ws

import (
	"sync"
)

// The latest authoritative document payload for one room. The relay
// never interprets it; the client-side CRDT layer produces full merged
// state, so each update replaces the previous one wholesale.
type DocState struct {
	mu   sync.RWMutex
	data []byte
}

func NewDocState() *DocState {
	return &DocState{}
}

// Replaces the payload. Last writer wins.
func (s *DocState) Replace(data []byte) {
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
}

// Returns a copy of the current payload, nil when empty.
func (s *DocState) Bytes() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.data) == 0 {
		return nil
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out
}

func (s *DocState) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
