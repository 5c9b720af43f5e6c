// Package metrics provides Prometheus metrics for the prixsix scoring engine.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics of the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Scoring Metrics - Races scored and what happened to each prediction
	resultsProcessed   prometheus.Counter
	resultsRejected    prometheus.Counter
	resultsDuplicate   prometheus.Counter
	scoresWritten      prometheus.Counter
	predictionsSkipped *prometheus.CounterVec
	carriedForward     prometheus.Counter
	scoringLatency     prometheus.Histogram
	standingsUpdates   prometheus.Counter

	// Consistency Metrics - Outcome of checker runs
	consistencyRuns    prometheus.Counter
	consistencyIssues  *prometheus.CounterVec
	consistencyStatus  *prometheus.GaugeVec
	consistencyLatency prometheus.Histogram

	// Repository Metrics - Standings store
	repositoryTeamsTotal      prometheus.Gauge
	repositoryUpdateLatency   prometheus.Histogram
	repositoryQueryLatency    prometheus.Histogram
	repositorySnapshotCount   prometheus.Counter
	repositorySnapshotRebuild prometheus.Histogram

	// Queue Metrics - Result queue
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueRate       prometheus.Counter
	queueDequeueRate       prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Worker Metrics - Processing pool
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerIdleCount         prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
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
		namespace:        "prixsix",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
		Buckets:     m.histogramBuckets,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.resultsProcessed = m.counter("results_processed_total", "Total number of official results scored")
	m.resultsRejected = m.counter("results_rejected_total", "Total number of official results rejected as malformed")
	m.resultsDuplicate = m.counter("results_duplicate_total", "Total number of submissions dropped because an identical result was already pending")
	m.scoresWritten = m.counter("scores_written_total", "Total number of race scores written")
	m.predictionsSkipped = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "predictions_skipped_total",
			Help:        "Total number of predictions excluded from scoring by reason",
			ConstLabels: m.customLabels,
		},
		[]string{"reason"},
	)
	m.carriedForward = m.counter("predictions_carried_forward_total", "Total number of scores computed from a carried-forward prediction")
	m.scoringLatency = m.histogram("scoring_latency_milliseconds", "Histogram of race scoring latency in milliseconds")
	m.standingsUpdates = m.counter("standings_updates_total", "Total number of standings recomputations")

	m.consistencyRuns = m.counter("consistency_runs_total", "Total number of consistency checker runs")
	m.consistencyIssues = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "consistency_issues_total",
			Help:        "Total number of consistency issues by category and severity",
			ConstLabels: m.customLabels,
		},
		[]string{"category", "severity"},
	)
	m.consistencyStatus = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "consistency_category_status",
			Help:        "Status of the last consistency run per category (0 pass, 1 warning, 2 error)",
			ConstLabels: m.customLabels,
		},
		[]string{"category"},
	)
	m.consistencyLatency = m.histogram("consistency_latency_milliseconds", "Consistency checker run latency in milliseconds")

	m.repositoryTeamsTotal = m.gauge("repository_teams_total", "Number of teams in the standings store")
	m.repositoryUpdateLatency = m.histogram("repository_update_latency_milliseconds", "Standings store update latency in milliseconds")
	m.repositoryQueryLatency = m.histogram("repository_query_latency_milliseconds", "Standings store query latency in milliseconds")
	m.repositorySnapshotCount = m.counter("repository_snapshot_count_total", "Total number of standings snapshots published")
	m.repositorySnapshotRebuild = m.histogram("repository_snapshot_rebuild_duration_milliseconds", "Standings snapshot rebuild duration in milliseconds")

	m.queueSize = m.gauge("queue_size", "Current number of results waiting to be scored")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)")
	m.queueEnqueueRate = m.counter("queue_enqueue_total", "Total number of results enqueued")
	m.queueDequeueRate = m.counter("queue_dequeue_total", "Total number of results dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of enqueue errors")
	m.queueProcessingLatency = m.histogram("queue_processing_latency_milliseconds", "Queue processing latency in milliseconds")

	m.workerCount = m.gauge("worker_count", "Configured number of scoring workers")
	m.workerActiveCount = m.gauge("worker_active_count", "Number of workers scoring a result")
	m.workerIdleCount = m.gauge("worker_idle_count", "Number of idle workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Worker processing latency in milliseconds")
	m.workerErrorRate = m.counter("worker_errors_total", "Total number of worker errors")

	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "errors_by_component_total",
			Help:        "Total number of errors by component",
			ConstLabels: m.customLabels,
		},
		[]string{"component", "error_type"},
	)
}

// Scoring Metrics Functions.

// RecordResultProcessed increments the processed results counter.
func RecordResultProcessed() {
	globalManager.resultsProcessed.Inc()
}

// RecordResultRejected increments the rejected results counter.
func RecordResultRejected() {
	globalManager.resultsRejected.Inc()
}

// RecordResultDuplicate increments the duplicate submissions counter.
func RecordResultDuplicate() {
	globalManager.resultsDuplicate.Inc()
}

// RecordScoresWritten adds n written scores.
func RecordScoresWritten(n int) {
	globalManager.scoresWritten.Add(float64(n))
}

// RecordPredictionSkipped increments the skipped predictions counter for reason.
func RecordPredictionSkipped(reason string) {
	globalManager.predictionsSkipped.WithLabelValues(reason).Inc()
}

// RecordCarriedForward adds n carried-forward scores.
func RecordCarriedForward(n int) {
	globalManager.carriedForward.Add(float64(n))
}

// RecordScoringLatency records scoring latency in milliseconds.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordStandingsUpdate increments the standings updates counter.
func RecordStandingsUpdate() {
	globalManager.standingsUpdates.Inc()
}

// Consistency Metrics Functions.

// RecordConsistencyRun increments the checker run counter and records its latency.
func RecordConsistencyRun(latencyMs float64) {
	globalManager.consistencyRuns.Inc()
	globalManager.consistencyLatency.Observe(latencyMs)
}

// RecordConsistencyIssues adds n issues for category at severity.
func RecordConsistencyIssues(category, severity string, n int) {
	globalManager.consistencyIssues.WithLabelValues(category, severity).Add(float64(n))
}

// Status values of the consistency_category_status gauge.
const (
	StatusPass    = 0
	StatusWarning = 1
	StatusError   = 2
)

// UpdateConsistencyStatus sets the last status of category.
func UpdateConsistencyStatus(category string, status int) {
	globalManager.consistencyStatus.WithLabelValues(category).Set(float64(status))
}

// Repository Metrics Functions.

// UpdateRepositoryTeamsTotal sets the number of teams in the standings store.
func UpdateRepositoryTeamsTotal(count int) {
	globalManager.repositoryTeamsTotal.Set(float64(count))
}

// RecordRepositoryUpdateLatency records repository update operation latency.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records repository query operation latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// RecordRepositorySnapshot counts a published snapshot and its rebuild time.
func RecordRepositorySnapshot(rebuildMs float64) {
	globalManager.repositorySnapshotCount.Inc()
	globalManager.repositorySnapshotRebuild.Observe(rebuildMs)
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records queue processing latency.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// Worker Metrics Functions.

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// UpdateWorkerIdleCount sets the number of idle workers.
func UpdateWorkerIdleCount(count int) {
	globalManager.workerIdleCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile writes every registered metric to path in the text
// exposition format, for node_exporter's textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	return nil
}
