package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jabelic/demo-sync-floweditor/internal/api"
	"github.com/jabelic/demo-sync-floweditor/internal/autosave"
	"github.com/jabelic/demo-sync-floweditor/internal/config"
	"github.com/jabelic/demo-sync-floweditor/internal/store"
	"github.com/jabelic/demo-sync-floweditor/internal/ws"
)

func main() {
	cfgPath := os.Getenv("FLOWSYNC_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	st, err := newStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize snapshot store: %v", err)
	}
	defer st.Close()

	hub := ws.NewHub(st, ws.Options{
		SendQueueSize:     cfg.Relay.SendQueueSize,
		SaveQueueSize:     cfg.Relay.SaveQueueSize,
		MaxClientsPerRoom: cfg.Relay.MaxClientsPerRoom,
		MessagesPerSecond: cfg.Relay.RateLimit.MessagesPerSecond,
		MessageBurst:      cfg.Relay.RateLimit.Burst,
	})
	go hub.Run()

	saver := autosave.New(hub, st, cfg.Autosave.Interval.Std())
	saver.Start()

	apiHandler := api.New(hub)

	router := mux.NewRouter()
	router.HandleFunc("/ws/{room}", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWs(hub, w, r)
	})
	router.HandleFunc("/health", apiHandler.HealthHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/stats", apiHandler.StatsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/rooms", apiHandler.ListRoomsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/rooms/{room}/snapshot", apiHandler.SnapshotHandler).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler())

	handler := corsMiddleware(router)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		saver.Stop()
		// Flush whatever the async persister may have dropped.
		saver.Flush()
		st.Close()
		os.Exit(0)
	}()

	log.Printf("flowsync relay starting on :%s", cfg.Server.Port)
	log.Printf("Snapshot backend: %s", cfg.Store.Backend)
	log.Println("Endpoints:")
	log.Println("  - WebSocket: /ws/{room}")
	log.Println("  - Health:    GET /health")
	log.Println("  - Stats:     GET /api/stats")
	log.Println("  - Rooms:     GET /api/rooms")
	log.Println("  - Snapshot:  GET /api/rooms/{room}/snapshot")
	log.Println("  - Metrics:   GET /metrics")

	if err := http.ListenAndServe(":"+cfg.Server.Port, handler); err != nil {
		log.Fatal("ListenAndServe: ", err)
	}
}

func newStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "sqlite":
		return store.NewSQLiteStore(cfg.Store.DBPath)
	default:
		return store.NewFileStore(cfg.Store.Dir)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
