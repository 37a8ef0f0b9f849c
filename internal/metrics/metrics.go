// Package metrics provides Prometheus metrics for the gamehub API.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled requests.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gamehub",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration measures request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gamehub",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// CascadeDeletesTotal counts documents removed by delete cascades.
	CascadeDeletesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gamehub",
			Name:      "cascade_deletes_total",
			Help:      "Total number of documents removed by delete cascades",
		},
		[]string{"kind"},
	)

	// RelationChangesTotal counts attach/detach operations by relation.
	RelationChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gamehub",
			Name:      "relation_changes_total",
			Help:      "Total number of relation attach and detach operations",
		},
		[]string{"relation", "op"},
	)

	// GameImportsTotal counts random game imports by outcome.
	GameImportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gamehub",
			Name:      "game_imports_total",
			Help:      "Total number of games imported from GiantBomb",
		},
		[]string{"status"},
	)
)

// RecordCascade records the documents deleted by one cascade.
func RecordCascade(deleted map[string]int) {
	for kind, n := range deleted {
		CascadeDeletesTotal.WithLabelValues(kind).Add(float64(n))
	}
}

// RecordRelationChange records one attach or detach.
func RecordRelationChange(relation, op string) {
	RelationChangesTotal.WithLabelValues(relation, op).Inc()
}

// RecordImport records a game import attempt.
func RecordImport(status string) {
	GameImportsTotal.WithLabelValues(status).Inc()
}

// Middleware records request count and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
