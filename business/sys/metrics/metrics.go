// Package metrics constructs the metrics the application will track.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// namespace prefixes every metric name.
const namespace = "ledger"

// Metrics holds the set of collectors for the web layer and the ledger.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	errors   prometheus.Counter
	panics   prometheus.Counter

	blocksMined     prometheus.Counter
	blockTrans      prometheus.Histogram
	miningDuration  prometheus.Histogram
	miningCancelled prometheus.Counter
	pending         prometheus.Gauge
	submitted       prometheus.Counter
	rejected        *prometheus.CounterVec
	validations     *prometheus.CounterVec
}

// New constructs the metrics against a private registry that also carries
// the go runtime and process collectors.
func New() *Metrics {
	m := Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total count of HTTP requests processed by method and status.",
		}, []string{"method", "status"}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "Total count of HTTP requests that returned an error.",
		}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_panics_total",
			Help:      "Total count of HTTP handlers that panicked.",
		}),
		blocksMined: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_mined_total",
			Help:      "Total count of blocks appended to the chain.",
		}),
		blockTrans: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "block_transactions",
			Help:      "Number of transactions in a mined block.",
			Buckets:   prometheus.LinearBuckets(0, 2, 6),
		}),
		miningDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mining_duration_seconds",
			Help:      "Time spent searching for a nonce that solves a block.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		miningCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mining_cancelled_total",
			Help:      "Total count of mining operations that were cancelled.",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_transactions",
			Help:      "Number of transactions waiting to be mined.",
		}),
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_submitted_total",
			Help:      "Total count of transactions accepted into the pool.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_rejected_total",
			Help:      "Total count of rejected transactions by reason.",
		}, []string{"reason"}),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chain_validations_total",
			Help:      "Total count of chain validations by outcome.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.errors,
		m.panics,
		m.blocksMined,
		m.blockTrans,
		m.miningDuration,
		m.miningCancelled,
		m.pending,
		m.submitted,
		m.rejected,
		m.validations,
	)

	return &m
}

// Handler returns the http handler that exposes the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// =============================================================================
// Web

// Request records a completed request.
func (m *Metrics) Request(method string, statusCode int) {
	m.requests.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
}

// Error records a request that returned an error.
func (m *Metrics) Error() {
	m.errors.Inc()
}

// Panic records a handler that panicked.
func (m *Metrics) Panic() {
	m.panics.Inc()
}

// =============================================================================
// Ledger

// BlockMined records a block appended to the chain.
func (m *Metrics) BlockMined(trans int, duration time.Duration) {
	m.blocksMined.Inc()
	m.blockTrans.Observe(float64(trans))
	m.miningDuration.Observe(duration.Seconds())
}

// MiningCancelled records a mining operation that stopped before it solved
// the block.
func (m *Metrics) MiningCancelled() {
	m.miningCancelled.Inc()
}

// TransactionSubmitted records a transaction accepted into the pool.
func (m *Metrics) TransactionSubmitted() {
	m.submitted.Inc()
}

// TransactionRejected records a transaction refused by the ledger.
func (m *Metrics) TransactionRejected(reason string) {
	m.rejected.WithLabelValues(reason).Inc()
}

// ChainValidated records the outcome of a chain validation.
func (m *Metrics) ChainValidated(valid bool) {
	outcome := "invalid"
	if valid {
		outcome = "valid"
	}
	m.validations.WithLabelValues(outcome).Inc()
}

// PendingTransactions records the size of the pending pool.
func (m *Metrics) PendingTransactions(n int) {
	m.pending.Set(float64(n))
}
