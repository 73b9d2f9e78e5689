package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthorizationDenials counts ownership checks that denied a request.
	AuthorizationDenials = promauto.NewCounter(prometheus.CounterOpts{
		Name: "devconnector_authorization_denials_total",
		Help: "Total number of requests denied by the ownership guard",
	})

	// VersionConflicts counts optimistic-concurrency conflicts by aggregate and outcome.
	VersionConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devconnector_version_conflicts_total",
		Help: "Optimistic concurrency conflicts on nested-list writes",
	}, []string{"aggregate", "outcome"})

	// GithubRequests counts GitHub proxy lookups by result.
	GithubRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devconnector_github_requests_total",
		Help: "GitHub repository lookups by result",
	}, []string{"result"})

	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devconnector_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// WebSocketConnections is the gauge of open realtime connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "devconnector_websocket_connections",
		Help: "Number of open realtime websocket connections",
	})

	// WebSocketBackpressureDrops counts events dropped because a client buffer was full.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devconnector_websocket_backpressure_drops_total",
		Help: "Realtime events dropped due to backpressure",
	}, []string{"reason"})
)
