package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WSConnections is a gauge of currently admitted websocket connections.
	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chat_ws_connections",
		Help: "Number of admitted websocket connections on this gateway.",
	})

	// OnlineUsers is a gauge of users with at least one live connection.
	OnlineUsers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chat_online_users",
		Help: "Number of users with at least one live connection.",
	})

	// FanoutDelivered counts event frames enqueued to client send queues.
	FanoutDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_fanout_delivered_total",
		Help: "Event frames delivered to local connections.",
	})

	// FanoutDropped counts frames dropped because a client queue was full.
	FanoutDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_fanout_dropped_total",
		Help: "Event frames dropped due to slow clients.",
	})

	// EventsRelayed counts events published to the cross-node relay.
	EventsRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_events_relayed_total",
		Help: "Events published to the cross-node relay.",
	})

	// AuthFailures counts rejected connection credentials.
	AuthFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_ws_auth_failures_total",
		Help: "Websocket credentials rejected at admission time.",
	})

	// HTTPRequests counts REST API requests by route and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_http_requests_total",
		Help: "REST API requests.",
	}, []string{"method", "path", "status"})
)
