// Package observability expone las métricas Prometheus del servicio.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appinventory "github.com/jhoicas/Inventario-ledger/internal/application/inventory"
)

var _ appinventory.Metrics = (*Metrics)(nil)

// Metrics agrupa los colectores del ledger sobre un registry propio.
// Todos los métodos aceptan un receptor nil.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	operations        *prometheus.CounterVec
	operationRecords  *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	conflicts         *prometheus.CounterVec
	rejections        *prometheus.CounterVec

	jobRuns             *prometheus.CounterVec
	integrityViolations prometheus.Gauge
}

// NewMetrics registra todos los colectores.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_http_requests_total",
			Help: "Peticiones HTTP por ruta, método y código.",
		}, []string{"route", "method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ledger_http_request_duration_seconds",
			Help:    "Duración de las peticiones HTTP por ruta.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Operaciones confirmadas en el ledger por tipo.",
		}, []string{"operation"}),
		operationRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_records_appended_total",
			Help: "Registros de movimiento añadidos por tipo de operación.",
		}, []string{"operation"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ledger_operation_duration_seconds",
			Help:    "Duración de la transacción de escritura, reintentos incluidos.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_conflicts_total",
			Help: "Conflictos de concurrencia detectados al añadir registros.",
		}, []string{"operation"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_rejections_total",
			Help: "Operaciones rechazadas por motivo.",
		}, []string{"operation", "reason"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_job_runs_total",
			Help: "Ejecuciones de tareas en segundo plano por estado.",
		}, []string{"job", "status"}),
		integrityViolations: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_integrity_violations",
			Help: "Grupos con stock negativo en la última verificación.",
		}),
	}
	registry.MustRegister(
		m.requestsTotal, m.requestDuration,
		m.operations, m.operationRecords, m.operationDuration, m.conflicts, m.rejections,
		m.jobRuns, m.integrityViolations,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler http.Handler para /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registerer expone el registry para colectores adicionales.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

// Middleware registra cada petición con la ruta declarada (no la URL concreta).
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := "unknown"
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		m.requestsTotal.WithLabelValues(route, c.Method(), strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		return err
	}
}

// ─── Ledger ──────────────────────────────────────────────────────────────────

func (m *Metrics) ObserveOperation(op string, records int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op).Inc()
	m.operationRecords.WithLabelValues(op).Add(float64(records))
	m.operationDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *Metrics) IncConflict(op string) {
	if m == nil {
		return
	}
	m.conflicts.WithLabelValues(op).Inc()
}

func (m *Metrics) IncRejected(op, reason string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(op, reason).Inc()
}

// ─── Tareas ──────────────────────────────────────────────────────────────────

// ObserveJob cuenta una ejecución de tarea y devuelve err sin modificar.
func (m *Metrics) ObserveJob(job string, err error) error {
	if m == nil {
		return err
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.jobRuns.WithLabelValues(job, status).Inc()
	return err
}

// SetIntegrityViolations fija el resultado de la última verificación.
func (m *Metrics) SetIntegrityViolations(n int) {
	if m == nil {
		return
	}
	m.integrityViolations.Set(float64(n))
}
