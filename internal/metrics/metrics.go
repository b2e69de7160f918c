package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters.
type Metrics struct {
	scans          *prometheus.CounterVec
	rpcCalls       *prometheus.CounterVec
	detectorErrors prometheus.Counter
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// Init initializes global metrics (idempotent).
func Init() *Metrics {
	once.Do(func() {
		metrics = &Metrics{
			scans: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "airdrop_radar_scans_total",
				Help: "Total number of wallet scans by chain and completeness",
			}, []string{"chain", "completeness"}),
			rpcCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "airdrop_radar_rpc_calls_total",
				Help: "Total number of RPC calls charged against scan budgets",
			}, []string{"chain"}),
			detectorErrors: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "airdrop_radar_detector_errors_total",
				Help: "Total number of tolerated single-call detector failures",
			}),
			cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "airdrop_radar_cache_hits_total",
				Help: "Total number of scan cache hits",
			}),
			cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "airdrop_radar_cache_misses_total",
				Help: "Total number of scan cache misses",
			}),
		}
		prometheus.MustRegister(
			metrics.scans,
			metrics.rpcCalls,
			metrics.detectorErrors,
			metrics.cacheHits,
			metrics.cacheMisses,
		)
	})
	return metrics
}

// ScanCompleted increments the scan counter for a chain/completeness pair.
func (m *Metrics) ScanCompleted(chain, completeness string) {
	if m != nil {
		m.scans.WithLabelValues(chain, completeness).Inc()
	}
}

// RPCCalls adds n charged RPC calls for a chain.
func (m *Metrics) RPCCalls(chain string, n int) {
	if m != nil && n > 0 {
		m.rpcCalls.WithLabelValues(chain).Add(float64(n))
	}
}

// DetectorError increments the tolerated detector failure counter.
func (m *Metrics) DetectorError() {
	if m != nil {
		m.detectorErrors.Inc()
	}
}

// CacheHit increments the cache hit counter.
func (m *Metrics) CacheHit() {
	if m != nil {
		m.cacheHits.Inc()
	}
}

// CacheMiss increments the cache miss counter.
func (m *Metrics) CacheMiss() {
	if m != nil {
		m.cacheMisses.Inc()
	}
}

// Handler returns an HTTP handler for /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
