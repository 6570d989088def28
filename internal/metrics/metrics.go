package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ConnectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name:      "connected_clients",
		Subsystem: "relay",
		Help:      "Number of currently connected websocket clients.",
	})

	ActiveRooms = prometheus.NewGauge(prometheus.GaugeOpts{
		Name:      "active_rooms",
		Subsystem: "relay",
		Help:      "Number of rooms with at least one connected client.",
	})

	MessagesRelayed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:      "messages_relayed_total",
		Subsystem: "relay",
		Help:      "Frames fanned out to room peers, labelled by message kind.",
	}, []string{"kind"})

	MessagesDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name:      "messages_dropped_total",
		Subsystem: "relay",
		Help:      "Frames dropped because a client's send queue was full.",
	})

	UpdatesRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name:      "updates_rejected_total",
		Subsystem: "relay",
		Help:      "Update frames rejected for exceeding the size ceiling.",
	})

	SnapshotSaves = prometheus.NewCounter(prometheus.CounterOpts{
		Name:      "saves_total",
		Subsystem: "snapshot",
		Help:      "Completed snapshot writes.",
	})

	SnapshotSaveErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name:      "save_errors_total",
		Subsystem: "snapshot",
		Help:      "Snapshot writes that failed.",
	})
)

func init() {
	prometheus.MustRegister(ConnectedClients)
	prometheus.MustRegister(ActiveRooms)
	prometheus.MustRegister(MessagesRelayed)
	prometheus.MustRegister(MessagesDropped)
	prometheus.MustRegister(UpdatesRejected)
	prometheus.MustRegister(SnapshotSaves)
	prometheus.MustRegister(SnapshotSaveErrors)
}
