package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Garantiza que todos los registros de una operación se agreguen juntos o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		locRepo repository.LocationRepository,
	) error) error
}

// EventPublisher publica eventos del ledger hacia otros servicios.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data any) error
}

// Metrics contadores de operaciones del ledger.
type Metrics interface {
	ObserveOperation(operation string, records int, elapsed time.Duration)
	IncConflict(operation string)
	IncRejected(operation, reason string)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, any) error { return nil }

type noopMetrics struct{}

func (noopMetrics) ObserveOperation(string, int, time.Duration) {}
func (noopMetrics) IncConflict(string)                          {}
func (noopMetrics) IncRejected(string, string)                  {}
