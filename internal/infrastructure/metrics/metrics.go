// Package metrics implementa las métricas Prometheus del motor de stock.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jhoicas/stockmaster/internal/application/inventory"
)

var _ inventory.Metrics = (*Metrics)(nil)

// Metrics contadores del motor (transiciones, faltantes, ledger, conciliación) y del HTTP.
// Usa un registry propio para no mezclar con el global en tests.
type Metrics struct {
	Registry *prometheus.Registry

	transitions        *prometheus.CounterVec
	shortages          *prometheus.CounterVec
	ledgerEntries      *prometheus.CounterVec
	mismatches         prometheus.Counter
	httpRequests       *prometheus.CounterVec
	httpRequestLatency *prometheus.HistogramVec
}

// New registra las métricas con el prefijo configurado (METRICS_PREFIX).
func New(prefix string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_document_transitions_total",
			Help: "Transiciones de documentos por tipo, acción y resultado",
		}, []string{"kind", "action", "result"}),
		shortages: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_stock_shortage_lines_total",
			Help: "Líneas rechazadas por stock insuficiente",
		}, []string{"kind"}),
		ledgerEntries: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_ledger_entries_total",
			Help: "Asientos escritos en el ledger por tipo de transacción",
		}, []string{"transaction_type"}),
		mismatches: f.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_reconciliation_mismatches_total",
			Help: "Diferencias detectadas entre el ledger y las cachés de stock",
		}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total de peticiones HTTP",
		}, []string{"method", "path", "status"}),
		httpRequestLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duración de las peticiones HTTP en segundos",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

func (m *Metrics) TransitionObserved(kind, action, result string) {
	m.transitions.WithLabelValues(kind, action, result).Inc()
}

func (m *Metrics) StockShortage(kind string, lines int) {
	m.shortages.WithLabelValues(kind).Add(float64(lines))
}

func (m *Metrics) LedgerEntryWritten(txType string) {
	m.ledgerEntries.WithLabelValues(txType).Inc()
}

func (m *Metrics) ReconciliationMismatch() {
	m.mismatches.Inc()
}

// ObserveHTTP registra una petición terminada. path es la ruta registrada, no la URL.
func (m *Metrics) ObserveHTTP(method, path, status string, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, path, status).Inc()
	m.httpRequestLatency.WithLabelValues(method, path, status).Observe(elapsed.Seconds())
}
