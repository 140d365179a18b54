package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RoomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "underbyte",
		Subsystem: "ws",
		Name:      "rooms_active",
		Help:      "Rooms with at least one live connection.",
	})
	ConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "underbyte",
		Subsystem: "ws",
		Name:      "connections_active",
		Help:      "Connections currently joined to a room.",
	})
	EventsBroadcast = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "underbyte",
		Subsystem: "ws",
		Name:      "events_broadcast_total",
		Help:      "Broadcast calls by event type.",
	}, []string{"type"})
	DeliveryFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "underbyte",
		Subsystem: "ws",
		Name:      "delivery_failures_total",
		Help:      "Per-connection sends that failed, by event type.",
	}, []string{"type"})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
