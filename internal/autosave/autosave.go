package autosave

import (
	"log"
	"sync"
	"time"

	"github.com/jabelic/demo-sync-floweditor/internal/metrics"
	"github.com/jabelic/demo-sync-floweditor/internal/store"
)

// StateSource exposes the current non-empty document payload of every
// room. The websocket hub implements it.
type StateSource interface {
	DocSnapshots() map[string][]byte
}

// Service periodically flushes every room's in-memory state to the
// snapshot store, so a burst of dropped per-update saves never costs
// more than one interval of durability.
type Service struct {
	source   StateSource
	store    store.Store
	interval time.Duration
	stop     chan struct{}
	wg       sync.WaitGroup
}

func New(source StateSource, st store.Store, interval time.Duration) *Service {
	return &Service{
		source:   source,
		store:    st,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (s *Service) Start() {
	s.wg.Add(1)
	go s.run()
	log.Printf("Autosave started (interval: %v)", s.interval)
}

func (s *Service) Stop() {
	close(s.stop)
	s.wg.Wait()
	log.Println("Autosave stopped")
}

func (s *Service) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.Flush()
		}
	}
}

// Flush saves every room with a non-empty payload. Saving the same
// payload twice is harmless, so no change tracking is needed.
func (s *Service) Flush() {
	saved := 0
	for roomID, data := range s.source.DocSnapshots() {
		if err := s.store.Save(roomID, data); err != nil {
			metrics.SnapshotSaveErrors.Inc()
			log.Printf("Autosave: failed for room %s: %v", roomID, err)
			continue
		}
		metrics.SnapshotSaves.Inc()
		saved++
	}

	if saved > 0 {
		log.Printf("Autosave: saved %d rooms", saved)
	}
}
