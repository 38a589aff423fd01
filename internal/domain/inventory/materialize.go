package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// RecordMeta datos comunes a todos los registros de una operación.
type RecordMeta struct {
	OperationID   string
	ProductID     string
	ProductType   entity.ProductType
	Operation     entity.Operation
	IsTransferLeg bool
	CreatedAt     time.Time
	CreatedBy     string
}

// LotInfo procedencia de un lote; viaja sin cambios en salidas y transferencias.
type LotInfo struct {
	LotID           string
	FabricationDate *time.Time
	ExpirationDate  *time.Time
	QualityStatus   entity.QualityStatus
	UnitCost        decimal.Decimal
}

// LotFromGroup extrae la procedencia de un grupo de stock.
func LotFromGroup(g entity.StockGroup) LotInfo {
	return LotInfo{
		LotID:           g.Key.LotID,
		FabricationDate: g.FabricationDate,
		ExpirationDate:  g.ExpirationDate,
		QualityStatus:   g.QualityStatus.Normalize(),
		UnitCost:        g.UnitCost,
	}
}

// NewLotID genera un identificador de lote: LOT-AAAAMMDD-xxxxxxxx.
func NewLotID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("LOT-%s-%s", now.UTC().Format("20060102"), suffix)
}

// MaterializeSortie un registro de salida por asignación, con la procedencia del lote.
func MaterializeSortie(plan AllocationPlan, meta RecordMeta) []entity.MovementRecord {
	out := make([]entity.MovementRecord, 0, len(plan.Allocations))
	for _, a := range plan.Allocations {
		if a.QuantityTaken <= 0 {
			continue
		}
		out = append(out, newRecord(meta, entity.DirectionSortie, a.QuantityTaken,
			a.Group.Key.LocationID, a.Group.Key.SubLocationID, a.Group.SubLocationKind, LotFromGroup(a.Group)))
	}
	return out
}

// MaterializeEntree un registro de entrada por colocación no vacía.
func MaterializeEntree(plan DistributionPlan, lot LotInfo, meta RecordMeta) []entity.MovementRecord {
	out := make([]entity.MovementRecord, 0, len(plan.Placements))
	for _, p := range plan.Placements {
		if p.QuantityPlaced <= 0 {
			continue
		}
		out = append(out, newRecord(meta, entity.DirectionEntree, p.QuantityPlaced,
			p.LocationID, p.SubLocation.ID, p.SubLocation.Kind, lot))
	}
	return out
}

// MaterializeQualityChange par salida/entrada que reclasifica todo el disponible de un grupo
// al estado status. Las unidades no se mueven; el costo y las fechas se conservan.
func MaterializeQualityChange(g entity.StockGroup, status entity.QualityStatus, meta RecordMeta) []entity.MovementRecord {
	if g.Available <= 0 {
		return nil
	}
	meta.Operation = entity.OperationQualityRelease
	meta.IsTransferLeg = false
	before := LotFromGroup(g)
	after := before
	after.QualityStatus = status
	return []entity.MovementRecord{
		newRecord(meta, entity.DirectionSortie, g.Available, g.Key.LocationID, g.Key.SubLocationID, g.SubLocationKind, before),
		newRecord(meta, entity.DirectionEntree, g.Available, g.Key.LocationID, g.Key.SubLocationID, g.SubLocationKind, after),
	}
}

func newRecord(meta RecordMeta, dir entity.Direction, qty, locationID, subLocationID int64, kind entity.SubLocationKind, lot LotInfo) entity.MovementRecord {
	return entity.MovementRecord{
		OperationID:     meta.OperationID,
		ProductID:       meta.ProductID,
		ProductType:     meta.ProductType,
		Direction:       dir,
		Operation:       meta.Operation,
		Quantity:        qty,
		LocationID:      locationID,
		SubLocationID:   subLocationID,
		SubLocationKind: kind,
		LotID:           lot.LotID,
		FabricationDate: lot.FabricationDate,
		ExpirationDate:  lot.ExpirationDate,
		QualityStatus:   lot.QualityStatus.Normalize(),
		IsTransferLeg:   meta.IsTransferLeg,
		UnitCost:        lot.UnitCost,
		CreatedAt:       meta.CreatedAt,
		CreatedBy:       meta.CreatedBy,
	}
}

// SumQuantity suma las cantidades de un conjunto de registros.
func SumQuantity(records []entity.MovementRecord) int64 {
	var total int64
	for _, r := range records {
		total += r.Quantity
	}
	return total
}
