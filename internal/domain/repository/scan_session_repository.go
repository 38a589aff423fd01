package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
)

// ScanSessionRepository guarda sesiones de escaneo en curso. Get devuelve nil, nil si no existe o expiró.
type ScanSessionRepository interface {
	Save(ctx context.Context, session *inventory.ScanSession, ttl time.Duration) error
	Get(ctx context.Context, id string) (*inventory.ScanSession, error)
	Delete(ctx context.Context, id string) error
}
