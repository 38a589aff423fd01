package repository

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// LocationRepository define el puerto de lectura del catálogo de zonas y pisos.
// CurrentStock de cada sububicación se deriva del ledger (vista física, todos los productos).
type LocationRepository interface {
	List(ctx context.Context) ([]entity.Location, error)
	GetByID(ctx context.Context, id int64) (*entity.Location, error)
	// GetForUpdate bloquea las sububicaciones de la zona hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id int64) (*entity.Location, error)
}
