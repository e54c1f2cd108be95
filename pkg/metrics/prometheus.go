// Package metrics provides Prometheus metrics for the arena combat core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the combat core.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Combat metrics - shot validation outcomes
	shotsAccepted         prometheus.Counter
	shotsRejected         *prometheus.CounterVec
	shotValidationLatency prometheus.Histogram
	cheatFlags            *prometheus.CounterVec

	// Lag compensation metrics
	movementSamples       prometheus.Counter
	interpolationRequests prometheus.Counter
	reconcileSnaps        prometheus.Counter
	trackedPlayers        prometheus.Gauge

	// Matchmaking metrics
	queueJoins       prometheus.Counter
	queueLeaves      prometheus.Counter
	matchesFound     *prometheus.CounterVec
	ratingUpdates    prometheus.Counter
	queueDepth       *prometheus.GaugeVec
	matchScanLatency prometheus.Histogram

	// Ratings repository metrics
	ratingRecords             prometheus.Gauge
	repositoryShardCount      prometheus.Gauge
	repositoryUpdateLatency   prometheus.Histogram
	repositoryQueryLatency    prometheus.Histogram
	repositorySnapshotCount   prometheus.Counter
	repositorySnapshotLatency prometheus.Histogram

	// Event pipeline metrics
	eventsProcessed prometheus.Counter
	eventsDuplicate prometheus.Counter
	eventsRejected  prometheus.Counter

	// Queue metrics - inbound event queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueues      prometheus.Counter
	queueDequeues      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker metrics - dispatch pool
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error tracking
	errorsByComponent *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "arena",
		subsystem:        "combat",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // metric declarations are necessarily long
	auto := promauto.With(m.registry)

	m.shotsAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "shots_accepted_total",
		Help:      "Total number of shot attempts that passed validation",
	})

	m.shotsRejected = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "shots_rejected_total",
			Help:      "Total number of shot attempts rejected, by reason",
		},
		[]string{"reason"},
	)

	m.shotValidationLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "shot_validation_latency_milliseconds",
		Help:      "Histogram of shot validation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.cheatFlags = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "cheat_flags_total",
			Help:      "Total number of heuristic cheat flags raised, by kind",
		},
		[]string{"kind"},
	)

	m.movementSamples = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "movement_samples_total",
		Help:      "Total number of movement states recorded for lag compensation",
	})

	m.interpolationRequests = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "interpolation_requests_total",
		Help:      "Total number of interpolated state lookups",
	})

	m.reconcileSnaps = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reconcile_snaps_total",
		Help:      "Total number of reconciliations that snapped to server truth",
	})

	m.trackedPlayers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tracked_players",
		Help:      "Number of players with live movement history",
	})

	m.queueJoins = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matchmaking_joins_total",
		Help:      "Total number of matchmaking queue joins",
	})

	m.queueLeaves = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matchmaking_leaves_total",
		Help:      "Total number of matchmaking queue leaves",
	})

	m.matchesFound = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "matches_found_total",
			Help:      "Total number of matches paired, by game mode",
		},
		[]string{"mode"},
	)

	m.ratingUpdates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rating_updates_total",
		Help:      "Total number of post-match rating updates",
	})

	m.queueDepth = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "matchmaking_queue_depth",
			Help:      "Players currently waiting in the matchmaking queue, by mode",
		},
		[]string{"mode"},
	)

	m.matchScanLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matchmaking_scan_latency_milliseconds",
		Help:      "Histogram of matchmaking pass duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.ratingRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rating_records",
		Help:      "Total number of rating records tracked",
	})

	m.repositoryShardCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_shard_count",
		Help:      "Number of shards in the ratings store",
	})

	m.repositoryUpdateLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_update_latency_milliseconds",
		Help:      "Histogram of ratings store update latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.repositoryQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_query_latency_milliseconds",
		Help:      "Histogram of ratings store query latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.repositorySnapshotCount = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_snapshots_total",
		Help:      "Total number of leaderboard snapshots published",
	})

	m.repositorySnapshotLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_snapshot_latency_milliseconds",
		Help:      "Histogram of leaderboard snapshot rebuild duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.eventsProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_processed_total",
		Help:      "Total number of inbound events successfully dispatched",
	})

	m.eventsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_duplicate_total",
		Help:      "Total number of duplicate inbound events detected",
	})

	m.eventsRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_rejected_total",
		Help:      "Total number of inbound events rejected at the boundary",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the inbound event queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured capacity of the inbound event queue",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization",
		Help:      "Fraction of the inbound event queue in use",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueues_total",
		Help:      "Total number of events enqueued",
	})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeues_total",
		Help:      "Total number of events dequeued",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Total number of failed enqueue attempts (backpressure or closed)",
	})

	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_active_count",
		Help:      "Number of active dispatch workers",
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_milliseconds",
		Help:      "Histogram of per-event dispatch latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Total number of event dispatch errors",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component and type",
		},
		[]string{"component", "type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current allocated heap memory in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_milliseconds",
		Help:      "Histogram of GC pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// GetRegistry returns the custom registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Combat helpers.

// RecordShotAccepted increments the accepted shot counter.
func RecordShotAccepted() { globalManager.shotsAccepted.Inc() }

// RecordShotRejected increments the rejected shot counter for a reason.
func RecordShotRejected(reason string) { globalManager.shotsRejected.WithLabelValues(reason).Inc() }

// RecordShotValidationLatency records shot validation latency in milliseconds.
func RecordShotValidationLatency(ms float64) { globalManager.shotValidationLatency.Observe(ms) }

// RecordCheatFlag increments the cheat flag counter for a kind.
func RecordCheatFlag(kind string) { globalManager.cheatFlags.WithLabelValues(kind).Inc() }

// Lag compensation helpers.

// RecordMovementSample increments the movement sample counter.
func RecordMovementSample() { globalManager.movementSamples.Inc() }

// RecordInterpolationRequest increments the interpolation lookup counter.
func RecordInterpolationRequest() { globalManager.interpolationRequests.Inc() }

// RecordReconcileSnap increments the hard-snap reconciliation counter.
func RecordReconcileSnap() { globalManager.reconcileSnaps.Inc() }

// UpdateTrackedPlayers sets the number of players with live history.
func UpdateTrackedPlayers(n int) { globalManager.trackedPlayers.Set(float64(n)) }

// Matchmaking helpers.

// RecordQueueJoin increments the matchmaking join counter.
func RecordQueueJoin() { globalManager.queueJoins.Inc() }

// RecordQueueLeave increments the matchmaking leave counter.
func RecordQueueLeave() { globalManager.queueLeaves.Inc() }

// RecordMatchFound increments the matches found counter for a mode.
func RecordMatchFound(mode string) { globalManager.matchesFound.WithLabelValues(mode).Inc() }

// RecordRatingUpdate increments the rating update counter.
func RecordRatingUpdate() { globalManager.ratingUpdates.Inc() }

// UpdateQueueDepth sets the waiting player count for a mode.
func UpdateQueueDepth(mode string, n int) {
	globalManager.queueDepth.WithLabelValues(mode).Set(float64(n))
}

// RecordMatchScanLatency records a matchmaking pass duration in milliseconds.
func RecordMatchScanLatency(ms float64) { globalManager.matchScanLatency.Observe(ms) }

// Repository helpers.

// UpdateRatingRecords sets the total number of rating records.
func UpdateRatingRecords(n int) { globalManager.ratingRecords.Set(float64(n)) }

// UpdateRepositoryShardCount sets the number of store shards.
func UpdateRepositoryShardCount(n int) { globalManager.repositoryShardCount.Set(float64(n)) }

// RecordRepositoryUpdateLatency records a store update latency in milliseconds.
func RecordRepositoryUpdateLatency(ms float64) { globalManager.repositoryUpdateLatency.Observe(ms) }

// RecordRepositoryQueryLatency records a store query latency in milliseconds.
func RecordRepositoryQueryLatency(ms float64) { globalManager.repositoryQueryLatency.Observe(ms) }

// RecordRepositorySnapshot records one snapshot publish and its duration.
func RecordRepositorySnapshot(ms float64) {
	globalManager.repositorySnapshotCount.Inc()
	globalManager.repositorySnapshotLatency.Observe(ms)
}

// Event pipeline helpers.

// RecordEventProcessed increments the processed event counter.
func RecordEventProcessed() { globalManager.eventsProcessed.Inc() }

// RecordEventDuplicate increments the duplicate event counter.
func RecordEventDuplicate() { globalManager.eventsDuplicate.Inc() }

// RecordEventRejected increments the boundary rejection counter.
func RecordEventRejected() { globalManager.eventsRejected.Inc() }

// Queue helpers.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(n int) { globalManager.queueSize.Set(float64(n)) }

// UpdateQueueCapacity sets the configured queue capacity.
func UpdateQueueCapacity(n int) { globalManager.queueCapacity.Set(float64(n)) }

// UpdateQueueUtilization sets the queue utilization fraction.
func UpdateQueueUtilization(f float64) { globalManager.queueUtilization.Set(f) }

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() { globalManager.queueEnqueues.Inc() }

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() { globalManager.queueDequeues.Inc() }

// RecordQueueEnqueueError increments the failed enqueue counter.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// Worker helpers.

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(n int) { globalManager.workerActiveCount.Set(float64(n)) }

// RecordWorkerProcessingLatency records per-event dispatch latency in milliseconds.
func RecordWorkerProcessingLatency(ms float64) { globalManager.workerProcessingLatency.Observe(ms) }

// RecordWorkerError increments the dispatch error counter.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// HTTP helpers.

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
}

// Error helpers.

// RecordErrorByComponent increments the error counter for a component/type pair.
func RecordErrorByComponent(component, errType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errType).Inc()
}

// System helpers.

// UpdateSystemMemoryUsage sets the allocated heap bytes gauge.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine count gauge.
func UpdateSystemGoroutineCount(n int) { globalManager.systemGoroutineCount.Set(float64(n)) }

// RecordSystemGCPauseTime records average GC pause time in milliseconds.
func RecordSystemGCPauseTime(ms float64) { globalManager.systemGCPauseTime.Observe(ms) }
