// Package metrics provides Prometheus metrics for the scoutgrade scoring engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the scoring engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Run metrics
	runsTotal    *prometheus.CounterVec
	runDuration  prometheus.Histogram
	runLastUnix  prometheus.Gauge
	runPlayers   prometheus.Gauge
	runsInFlight prometheus.Gauge

	// Pipeline metrics, labelled by position profile
	playersScored   *prometheus.CounterVec
	profileDuration *prometheus.HistogramVec
	warnings        *prometheus.CounterVec
	styleFits       *prometheus.CounterVec
	topNFlags       *prometheus.CounterVec

	// Worker pool
	workerCount prometheus.Gauge
	workerBusy  prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "scoutgrade",
		subsystem:        "engine",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)

	m.runsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "runs_total",
		Help:        "Scoring runs by outcome",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_duration_milliseconds",
		Help:        "Wall time of a full scoring run in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.runLastUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_last_completed_unixtime",
		Help:        "Unix time of the last completed run",
		ConstLabels: m.constLabels,
	})

	m.runPlayers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_players",
		Help:        "Players scored by the last completed run",
		ConstLabels: m.constLabels,
	})

	m.runsInFlight = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "runs_in_flight",
		Help:        "Scoring runs currently executing",
		ConstLabels: m.constLabels,
	})

	m.playersScored = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "players_scored_total",
		Help:        "Players scored per position profile",
		ConstLabels: m.constLabels,
	}, []string{"profile"})

	m.profileDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "profile_pipeline_duration_milliseconds",
		Help:        "Duration of one position profile pipeline in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"profile"})

	m.warnings = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "warnings_total",
		Help:        "Recovered data gaps by kind (missing values, empty cohorts, position changes)",
		ConstLabels: m.constLabels,
	}, []string{"profile", "kind"})

	m.styleFits = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "style_fits_total",
		Help:        "Style fit matches found per position profile",
		ConstLabels: m.constLabels,
	}, []string{"profile"})

	m.topNFlags = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "top_n_flags_total",
		Help:        "Top-N flags raised per position profile",
		ConstLabels: m.constLabels,
	}, []string{"profile"})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "worker_count",
		Help:        "Configured pipeline workers",
		ConstLabels: m.constLabels,
	})

	m.workerBusy = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "worker_busy",
		Help:        "Pipeline workers currently processing a profile",
		ConstLabels: m.constLabels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordRun records the outcome and duration of a scoring run.
func RecordRun(outcome string, durationMs float64) {
	globalManager.runsTotal.WithLabelValues(outcome).Inc()
	globalManager.runDuration.Observe(durationMs)
}

// UpdateLastRun records completion time and population of the last successful run.
func UpdateLastRun(unix int64, players int) {
	globalManager.runLastUnix.Set(float64(unix))
	globalManager.runPlayers.Set(float64(players))
}

// IncRunsInFlight marks a run as started.
func IncRunsInFlight() { globalManager.runsInFlight.Inc() }

// DecRunsInFlight marks a run as finished.
func DecRunsInFlight() { globalManager.runsInFlight.Dec() }

// RecordPlayersScored adds scored players for a profile.
func RecordPlayersScored(profile string, count int) {
	globalManager.playersScored.WithLabelValues(profile).Add(float64(count))
}

// RecordProfileDuration records one profile pipeline duration.
func RecordProfileDuration(profile string, durationMs float64) {
	globalManager.profileDuration.WithLabelValues(profile).Observe(durationMs)
}

// RecordWarning counts a recovered data gap.
func RecordWarning(profile, kind string) {
	globalManager.warnings.WithLabelValues(profile, kind).Inc()
}

// RecordStyleFits adds style fit matches for a profile.
func RecordStyleFits(profile string, count int) {
	globalManager.styleFits.WithLabelValues(profile).Add(float64(count))
}

// RecordTopNFlags adds raised top-N flags for a profile.
func RecordTopNFlags(profile string, count int) {
	globalManager.topNFlags.WithLabelValues(profile).Add(float64(count))
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// IncWorkerBusy marks a worker as busy.
func IncWorkerBusy() { globalManager.workerBusy.Inc() }

// DecWorkerBusy marks a worker as idle.
func DecWorkerBusy() { globalManager.workerBusy.Dec() }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
