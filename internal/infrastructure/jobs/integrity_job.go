package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/hibiken/asynq"

	appinventory "github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

// IntegrityScanner lo implementa *appinventory.IntegrityUseCase.
type IntegrityScanner interface {
	Scan(ctx context.Context) (*appinventory.IntegrityReport, error)
}

// JobMetrics lo implementa *observability.Metrics.
type JobMetrics interface {
	ObserveJob(job string, err error) error
	SetIntegrityViolations(n int)
}

// IntegrityJob handler asynq de TaskIntegrityScan.
type IntegrityJob struct {
	scanner IntegrityScanner
	metrics JobMetrics
	log     *logger.Logger
}

// NewIntegrityJob construye el handler; metrics puede ser nil.
func NewIntegrityJob(scanner IntegrityScanner, metrics JobMetrics, log *logger.Logger) *IntegrityJob {
	if log == nil {
		log = logger.Nop()
	}
	return &IntegrityJob{scanner: scanner, metrics: metrics, log: log.Named("integrity_job")}
}

// Handle ejecuta la verificación. Las violaciones no son un fallo de la tarea:
// se registran en el log y en la métrica.
func (j *IntegrityJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.scanner == nil {
		return errors.New("integrity scan: handler no configurado")
	}
	var payload IntegrityScanPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	if j.metrics != nil {
		defer func() { err = j.metrics.ObserveJob(TaskIntegrityScan, err) }()
	}

	start := time.Now()
	report, err := j.scanner.Scan(ctx)
	if err != nil {
		j.log.Error().Err(err).Msg("verificación de integridad fallida")
		return err
	}
	if j.metrics != nil {
		j.metrics.SetIntegrityViolations(len(report.Violations))
	}
	ev := j.log.Info()
	if !report.OK() {
		ev = j.log.Warn()
	}
	ev.Str("requested_by", payload.RequestedBy).
		Int("products", report.ProductsChecked).
		Int("violations", len(report.Violations)).
		Dur("duration", time.Since(start)).
		Msg("tarea de integridad completada")
	return nil
}
