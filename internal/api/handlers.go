package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/jabelic/demo-sync-floweditor/internal/ws"
)

// API serves the operational HTTP surface next to the websocket relay:
// health, stats, and read-only room introspection.
type API struct {
	hub *ws.Hub
}

func New(hub *ws.Hub) *API {
	return &API{hub: hub}
}

func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

func (a *API) HealthHandler(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) StatsHandler(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"active_rooms":   a.hub.GetRoomCount(),
		"active_clients": a.hub.GetClientCount(),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	})
}

type RoomResponse struct {
	ID          string `json:"id"`
	ActiveUsers int    `json:"active_users"`
	StateBytes  int    `json:"state_bytes"`
}

func (a *API) ListRoomsHandler(w http.ResponseWriter, r *http.Request) {
	activeRooms := a.hub.GetActiveRooms()

	response := make([]RoomResponse, 0, len(activeRooms))
	for roomID, users := range activeRooms {
		stateBytes := 0
		if data, ok := a.hub.DocBytes(roomID); ok {
			stateBytes = len(data)
		}
		response = append(response, RoomResponse{
			ID:          roomID,
			ActiveUsers: users,
			StateBytes:  stateBytes,
		})
	}

	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"rooms": response,
	})
}

// SnapshotHandler returns the room's current payload verbatim, letting
// clients bootstrap over plain HTTP instead of waiting for a peer.
func (a *API) SnapshotHandler(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["room"]
	if roomID == "" {
		errorResponse(w, http.StatusBadRequest, "Room ID is required")
		return
	}

	data, ok := a.hub.DocBytes(roomID)
	if !ok || len(data) == 0 {
		errorResponse(w, http.StatusNotFound, "No state for room")
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("Error writing snapshot response: %v", err)
	}
}
