package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "permit_history"

// Metrics agrupa los collectors del servicio sobre un registry propio.
// Todos los métodos aceptan receptor nil (métricas desactivadas).
type Metrics struct {
	registry *prometheus.Registry

	reloads        *prometheus.CounterVec
	reloadDuration prometheus.Histogram
	snapshots      *prometheus.GaugeVec
	latestEntities prometheus.Gauge
	ingested       *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reloads_total",
			Help:      "History reloads by result.",
		}, []string{"result"}),
		reloadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reload_duration_seconds",
			Help:      "Time to fetch all snapshots and rebuild the history.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		snapshots: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshots",
			Help:      "Snapshots in the cached history by kind (raw, skipped, canonical).",
		}, []string{"kind"}),
		latestEntities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "latest_day_permits",
			Help:      "Permits present in the latest canonical day.",
		}),
		ingested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_ingested_total",
			Help:      "Snapshots appended to the store by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.reloads,
		m.reloadDuration,
		m.snapshots,
		m.latestEntities,
		m.ingested,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler expone /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ReloadSucceeded registra una recarga completa.
func (m *Metrics) ReloadSucceeded(d time.Duration, raw, skipped, canonical, latestEntities int) {
	if m == nil {
		return
	}
	m.reloads.WithLabelValues("ok").Inc()
	m.reloadDuration.Observe(d.Seconds())
	m.snapshots.WithLabelValues("raw").Set(float64(raw))
	m.snapshots.WithLabelValues("skipped").Set(float64(skipped))
	m.snapshots.WithLabelValues("canonical").Set(float64(canonical))
	m.latestEntities.Set(float64(latestEntities))
}

// ReloadFailed registra un fallo de fetch; los gauges no se tocan (la caché previa sigue vigente).
func (m *Metrics) ReloadFailed(d time.Duration) {
	if m == nil {
		return
	}
	m.reloads.WithLabelValues("error").Inc()
	m.reloadDuration.Observe(d.Seconds())
}

func (m *Metrics) SnapshotIngested(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.ingested.WithLabelValues(result).Inc()
}
