package ws

import (
	"log"
	"sync"

	"github.com/jabelic/demo-sync-floweditor/internal/metrics"
	"github.com/jabelic/demo-sync-floweditor/internal/protocol"
	"github.com/jabelic/demo-sync-floweditor/internal/store"
)

// Hub tracks the connected clients and document state of every room and
// relays frames between room members.
type Hub struct {
	// Registered clients by room
	rooms map[string]map[*Client]bool

	// Latest document payload by room
	docs map[string]*DocState

	// Inbound frames from clients
	broadcast chan *Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Pending snapshot writes, drained by a single persister
	saves chan saveJob

	store store.Store
	opts  Options

	mu sync.RWMutex
}

type Message struct {
	RoomID string
	Data   []byte
	Sender *Client
}

type saveJob struct {
	roomID string
	data   []byte
}

type Options struct {
	SendQueueSize     int
	SaveQueueSize     int
	MaxClientsPerRoom int // 0 means unlimited
	MessagesPerSecond float64
	MessageBurst      int
}

func DefaultOptions() Options {
	return Options{
		SendQueueSize:     256,
		SaveQueueSize:     64,
		MaxClientsPerRoom: 0,
		MessagesPerSecond: 100,
		MessageBurst:      200,
	}
}

func NewHub(st store.Store, opts Options) *Hub {
	if opts.SendQueueSize <= 0 {
		opts.SendQueueSize = DefaultOptions().SendQueueSize
	}
	if opts.SaveQueueSize <= 0 {
		opts.SaveQueueSize = DefaultOptions().SaveQueueSize
	}
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		docs:       make(map[string]*DocState),
		broadcast:  make(chan *Message),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		saves:      make(chan saveJob, opts.SaveQueueSize),
		store:      st,
		opts:       opts,
	}
}

func (h *Hub) Run() {
	go h.persistLoop()

	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case message := <-h.broadcast:
			h.relay(message)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	clients, ok := h.rooms[client.roomID]
	if !ok {
		clients = make(map[*Client]bool)
		h.rooms[client.roomID] = clients
	}

	if h.opts.MaxClientsPerRoom > 0 && len(clients) >= h.opts.MaxClientsPerRoom {
		h.mu.Unlock()

		log.Printf("Room %s is full (%d clients), refusing client %s",
			client.roomID, h.opts.MaxClientsPerRoom, client.clientID)
		close(client.send)
		return
	}

	clients[client] = true
	clientCount := len(clients)
	roomCount := len(h.rooms)
	h.mu.Unlock()

	// Hydrate the room state from the last snapshot on first join.
	h.getDocState(client.roomID)

	metrics.ConnectedClients.Inc()
	metrics.ActiveRooms.Set(float64(roomCount))
	log.Printf("Client %s joined room %s (total: %d)", client.clientID, client.roomID, clientCount)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	clients, ok := h.rooms[client.roomID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, ok := clients[client]; !ok {
		h.mu.Unlock()
		return
	}

	delete(clients, client)
	close(client.send)

	remaining := len(clients)
	if remaining == 0 {
		delete(h.rooms, client.roomID)
	}
	roomCount := len(h.rooms)
	h.mu.Unlock()

	metrics.ConnectedClients.Dec()
	metrics.ActiveRooms.Set(float64(roomCount))

	if remaining == 0 {
		log.Printf("Room %s closed (empty)", client.roomID)
	} else {
		log.Printf("Client %s left room %s (remaining: %d)", client.clientID, client.roomID, remaining)
	}
}

// relay classifies one inbound frame, applies update side effects, and
// fans the original frame out to the sender's room.
func (h *Hub) relay(message *Message) {
	msg := protocol.Decode(message.Data)

	switch msg.Kind {
	case protocol.KindUpdate:
		if len(msg.Payload) > protocol.MaxUpdateSize {
			metrics.UpdatesRejected.Inc()
			log.Printf("WARNING: update in room %s exceeds size limit: %d bytes (max: %d), dropping",
				message.RoomID, len(msg.Payload), protocol.MaxUpdateSize)
			return
		}
		if len(msg.Payload) > 0 {
			h.getDocState(message.RoomID).Replace(msg.Payload)
			h.scheduleSave(message.RoomID, msg.Payload)
		}
	case protocol.KindSyncStep1, protocol.KindSyncStep2:
		// Relayed untouched; the clients drive the sync handshake.
	default:
		// Malformed or unknown frame, drop without closing the sender.
		return
	}

	h.fanOut(message)
	metrics.MessagesRelayed.WithLabelValues(msg.Kind.String()).Inc()
}

// fanOut delivers the frame to every other client in the room. Enqueue
// only, never a blocking write: a client whose queue is full misses the
// frame instead of stalling the room.
func (h *Hub) fanOut(message *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.rooms[message.RoomID]
	if !ok {
		return
	}

	for client := range clients {
		if client == message.Sender {
			continue
		}
		select {
		case client.send <- message.Data:
		default:
			metrics.MessagesDropped.Inc()
		}
	}
}

// getDocState returns the room's state, creating and hydrating it from
// the snapshot store the first time the room is seen.
func (h *Hub) getDocState(roomID string) *DocState {
	h.mu.RLock()
	doc, ok := h.docs[roomID]
	h.mu.RUnlock()
	if ok {
		return doc
	}

	h.mu.Lock()
	if doc, ok := h.docs[roomID]; ok {
		h.mu.Unlock()
		return doc
	}
	doc = NewDocState()
	h.docs[roomID] = doc
	h.mu.Unlock()

	if h.store != nil {
		data, found, err := h.store.Load(roomID)
		if err != nil {
			log.Printf("Error loading snapshot for room %s: %v (starting empty)", roomID, err)
		} else if found {
			doc.Replace(data)
			log.Printf("Room %s state loaded from snapshot (%d bytes)", roomID, len(data))
		}
	}
	return doc
}

// scheduleSave hands the payload to the persister without blocking the
// relay path. A full queue drops the job; the autosave tick catches up.
func (h *Hub) scheduleSave(roomID string, data []byte) {
	if h.store == nil {
		return
	}
	select {
	case h.saves <- saveJob{roomID: roomID, data: data}:
	default:
		log.Printf("Save queue full, deferring room %s snapshot to autosave", roomID)
	}
}

func (h *Hub) persistLoop() {
	for job := range h.saves {
		if err := h.store.Save(job.roomID, job.data); err != nil {
			metrics.SnapshotSaveErrors.Inc()
			log.Printf("Error saving snapshot for room %s: %v", job.roomID, err)
			continue
		}
		metrics.SnapshotSaves.Inc()
	}
}

// DocSnapshots returns a copy of every non-empty room payload, used by
// the autosave scheduler and the shutdown flush.
func (h *Hub) DocSnapshots() map[string][]byte {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string][]byte, len(h.docs))
	for roomID, doc := range h.docs {
		if data := doc.Bytes(); data != nil {
			out[roomID] = data
		}
	}
	return out
}

// DocBytes returns the current payload of one room.
func (h *Hub) DocBytes(roomID string) ([]byte, bool) {
	h.mu.RLock()
	doc, ok := h.docs[roomID]
	h.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return doc.Bytes(), true
}

func (h *Hub) GetRoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	count := 0
	for _, clients := range h.rooms {
		count += len(clients)
	}
	return count
}

// GetActiveRooms maps each room with connected clients to its client count.
func (h *Hub) GetActiveRooms() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	rooms := make(map[string]int, len(h.rooms))
	for roomID, clients := range h.rooms {
		rooms[roomID] = len(clients)
	}
	return rooms
}
