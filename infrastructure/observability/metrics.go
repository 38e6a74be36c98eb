package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mindcanvas/application/ports"
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Pipeline metrics
	LayoutDuration  *prometheus.HistogramVec
	LayoutNodes     prometheus.Histogram
	MergeCollisions *prometheus.CounterVec
	Migrations      *prometheus.CounterVec
	MigrationSteps  prometheus.Counter

	// Generator metrics
	AIRequests *prometheus.CounterVec
	AIDuration *prometheus.HistogramVec
}

var _ ports.PipelineMetrics = (*Collector)(nil)

// NewCollector creates a collector with its own registry, so several
// instances can coexist in one process.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		LayoutDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "layout_duration_seconds",
				Help:      "Layout computation time in seconds",
				Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"direction"},
		),
		LayoutNodes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "layout_nodes",
				Help:      "Number of nodes per layout run",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		MergeCollisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "merge_collisions_total",
				Help:      "Identifier collisions resolved while merging graphs",
			},
			[]string{"kind"},
		),
		Migrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "document_migrations_total",
				Help:      "Documents migrated, by declared source version",
			},
			[]string{"from_version"},
		),
		MigrationSteps: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "document_migration_steps_total",
				Help:      "Schema transitions applied",
			},
		),
		AIRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ai_requests_total",
				Help:      "Graph generation requests",
			},
			[]string{"operation", "outcome"},
		),
		AIDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ai_request_duration_seconds",
				Help:      "Graph generation latency in seconds",
				Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 30, 60, 90},
			},
			[]string{"operation"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.LayoutDuration,
		c.LayoutNodes,
		c.MergeCollisions,
		c.Migrations,
		c.MigrationSteps,
		c.AIRequests,
		c.AIDuration,
	)
	return c
}

// ObserveLayout records one layout run.
func (c *Collector) ObserveLayout(direction string, nodes int, d time.Duration) {
	c.LayoutDuration.WithLabelValues(direction).Observe(d.Seconds())
	c.LayoutNodes.Observe(float64(nodes))
}

// RecordMergeCollisions counts node and edge id collisions of one merge.
func (c *Collector) RecordMergeCollisions(nodes, edges int) {
	if nodes > 0 {
		c.MergeCollisions.WithLabelValues("node").Add(float64(nodes))
	}
	if edges > 0 {
		c.MergeCollisions.WithLabelValues("edge").Add(float64(edges))
	}
}

// RecordMigration counts a loaded document by the version it declared.
func (c *Collector) RecordMigration(fromVersion string, steps int) {
	if fromVersion == "" {
		fromVersion = "unversioned"
	}
	c.Migrations.WithLabelValues(fromVersion).Inc()
	c.MigrationSteps.Add(float64(steps))
}

// RecordGeneration records a generator call and whether it failed.
func (c *Collector) RecordGeneration(operation string, err error, d time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.AIRequests.WithLabelValues(operation, outcome).Inc()
	c.AIDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordHTTPRequest records a served request.
func (c *Collector) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}

// Handler exposes the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
