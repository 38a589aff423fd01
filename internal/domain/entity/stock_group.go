package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// GroupKey identifica un hueco físico de un lote: (lote, zona, piso/parte).
type GroupKey struct {
	LotID         string
	LocationID    int64
	SubLocationID int64
}

func (k GroupKey) String() string {
	return fmt.Sprintf("%s@%d/%d", k.LotID, k.LocationID, k.SubLocationID)
}

// StockGroup es el stock derivado del ledger para una GroupKey. Nunca se persiste.
type StockGroup struct {
	Key             GroupKey
	ProductID       string
	ProductType     ProductType
	SubLocationKind SubLocationKind
	Entree          int64
	Sortie          int64
	Available       int64
	QualityStatus   QualityStatus
	FabricationDate *time.Time
	ExpirationDate  *time.Time
	UnitCost        decimal.Decimal // costo promedio ponderado de las entradas
	LastMovementAt  time.Time
}

// Value valoriza el disponible al costo promedio del grupo.
func (g StockGroup) Value() decimal.Decimal {
	if g.Available <= 0 {
		return decimal.Zero
	}
	return g.UnitCost.Mul(decimal.NewFromInt(g.Available))
}
