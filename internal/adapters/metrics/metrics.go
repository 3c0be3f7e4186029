// Package metrics expone las métricas Prometheus del servicio.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alejandrodnm/truthbounty/internal/domain"
)

// Metrics agrupa los collectors sobre un registry propio (no el global),
// así los tests pueden crear tantas instancias como quieran.
type Metrics struct {
	registry *prometheus.Registry

	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	CacheTotal       *prometheus.CounterVec
	RefreshTotal     *prometheus.CounterVec
	Entries          prometheus.Gauge
	TradesResolved   *prometheus.CounterVec
}

// New crea y registra todos los collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		UpstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "truthbounty_upstream_requests_total",
				Help: "Requests to upstream platform APIs by outcome",
			},
			[]string{"platform", "outcome"},
		),
		UpstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "truthbounty_upstream_duration_seconds",
				Help:    "Latency of upstream platform requests",
				Buckets: prometheus.ExponentialBuckets(0.025, 2, 10), // 25ms a ~13s
			},
			[]string{"platform"},
		),
		CacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "truthbounty_leaderboard_cache_total",
				Help: "Leaderboard reads by cache result (fresh, stale, miss)",
			},
			[]string{"result"},
		),
		RefreshTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "truthbounty_leaderboard_refresh_total",
				Help: "Leaderboard refreshes by outcome",
			},
			[]string{"outcome"},
		),
		Entries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "truthbounty_leaderboard_entries",
				Help: "Entries in the current unified leaderboard",
			},
		),
		TradesResolved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "truthbounty_trades_resolved_total",
				Help: "Simulated trades resolved by platform and final status",
			},
			[]string{"platform", "status"},
		),
	}

	m.registry.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.CacheTotal,
		m.RefreshTotal,
		m.Entries,
		m.TradesResolved,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry devuelve el registry para tests o para montar otro handler.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler sirve /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveUpstream implementa httpx.Recorder.
func (m *Metrics) ObserveUpstream(platform, outcome string, d time.Duration) {
	m.UpstreamRequests.WithLabelValues(platform, outcome).Inc()
	m.UpstreamDuration.WithLabelValues(platform).Observe(d.Seconds())
}

// CacheResult cuenta una lectura del leaderboard.
func (m *Metrics) CacheResult(result string) {
	m.CacheTotal.WithLabelValues(result).Inc()
}

// RefreshDone cuenta un refresh terminado (ok, partial, error).
func (m *Metrics) RefreshDone(outcome string) {
	m.RefreshTotal.WithLabelValues(outcome).Inc()
}

// SetEntries actualiza el tamaño del leaderboard vigente.
func (m *Metrics) SetEntries(n int) {
	m.Entries.Set(float64(n))
}

// TradeResolved cuenta una apuesta simulada resuelta.
func (m *Metrics) TradeResolved(p domain.Platform, status domain.BetStatus) {
	m.TradesResolved.WithLabelValues(string(p), string(status)).Inc()
}
