package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application
type Metrics struct {
	// Catalog metrics
	SearchRequests    prometheus.Counter
	SearchLatency     prometheus.Histogram
	GenerateRequests  prometheus.Counter
	CatalogRefreshes  prometheus.Counter
	RequestErrors     *prometheus.CounterVec

	// WebSocket metrics
	WebSocketMessages *prometheus.CounterVec

	connManager *ConnectionManager
}

var globalMetrics *Metrics

// InitMetrics initializes the Prometheus metrics
func InitMetrics(connManager *ConnectionManager) *Metrics {
	metrics := &Metrics{
		connManager: connManager,

		SearchRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "patternhub_search_requests_total",
			Help: "Total number of pattern search requests processed",
		}),

		SearchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "patternhub_search_duration_seconds",
			Help:    "Pattern search latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),

		GenerateRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "patternhub_generate_requests_total",
			Help: "Total number of snippet generation requests processed",
		}),

		CatalogRefreshes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "patternhub_catalog_refreshes_total",
			Help: "Total number of catalog snapshot reloads",
		}),

		RequestErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "patternhub_request_errors_total",
			Help: "Total number of request errors by type",
		}, []string{"error_type"}), // validation, not_found, invalid_pattern, unsupported_option

		WebSocketMessages: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "patternhub_websocket_messages_total",
			Help: "Total number of WebSocket messages by type",
		}, []string{"type", "direction"}), // direction: "inbound" or "outbound"
	}

	// Live gauge backed by the connection manager
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "patternhub_websocket_connections_current",
			Help: "Current number of active WebSocket connections",
		},
		func() float64 {
			if connManager != nil {
				return float64(connManager.Count())
			}
			return 0
		},
	))

	globalMetrics = metrics
	return metrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	return globalMetrics
}
