package repository

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia del ledger de movimientos (solo agregar).
//
// La versión de un producto es el ID del último registro agregado (0 si no tiene).
// Append compara esa versión con expectedVersion y devuelve domain.ErrConflict si
// otro escritor agregó registros en medio; en ese caso el llamador vuelve a planificar.
type MovementRepository interface {
	ListByProduct(ctx context.Context, productID string) ([]entity.MovementRecord, int64, error)
	Append(ctx context.Context, productID string, expectedVersion int64, records []entity.MovementRecord) ([]entity.MovementRecord, error)
	ListProductIDs(ctx context.Context) ([]string, error)
	// LockProduct serializa escritores del mismo producto dentro de la transacción actual.
	LockProduct(ctx context.Context, productID string) error
}
