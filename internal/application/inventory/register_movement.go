package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
)

// EntreeInput entrada de un lote nuevo repartido sobre las zonas elegidas, en ese orden.
type EntreeInput struct {
	ProductID       string
	ProductType     entity.ProductType
	Quantity        int64
	LocationIDs     []int64
	FabricationDate *time.Time
	ExpirationDate  *time.Time
	QualityStatus   entity.QualityStatus // vacío = pending
	UnitCost        decimal.Decimal
	OperatorID      string
}

func (in EntreeInput) validate() error {
	if in.ProductID == "" || !in.ProductType.Valid() || in.Quantity <= 0 || len(in.LocationIDs) == 0 {
		return domain.ErrInvalidInput
	}
	if in.QualityStatus != "" && !in.QualityStatus.Valid() {
		return domain.ErrInvalidInput
	}
	if in.UnitCost.LessThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if in.FabricationDate != nil && in.ExpirationDate != nil && in.ExpirationDate.Before(*in.FabricationDate) {
		return domain.ErrInvalidInput
	}
	return nil
}

// EntreeResult lote creado y plan aplicado.
type EntreeResult struct {
	OperationID string
	LotID       string
	Plan        inventory.DistributionPlan
	Records     []entity.MovementRecord
}

// RegisterEntree genera un lote nuevo y lo coloca por capacidad. Exige colocación completa.
func (uc *LedgerUseCase) RegisterEntree(ctx context.Context, in EntreeInput) (*EntreeResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	meta := uc.newMeta(entity.OperationEntree, in.ProductID, in.ProductType, in.OperatorID)
	lot := inventory.LotInfo{
		LotID:           inventory.NewLotID(meta.CreatedAt),
		FabricationDate: in.FabricationDate,
		ExpirationDate:  in.ExpirationDate,
		QualityStatus:   in.QualityStatus.Normalize(),
		UnitCost:        in.UnitCost,
	}
	res := &EntreeResult{OperationID: meta.OperationID, LotID: lot.LotID}

	records, err := uc.execute(ctx, string(entity.OperationEntree), meta, func(ctx context.Context, tx *ledgerTx) ([]entity.MovementRecord, error) {
		if pt := productTypeOf(tx.records); pt != "" && pt != in.ProductType {
			return nil, domain.ErrInvalidInput
		}
		sel, err := selectZones(ctx, tx.locations.GetForUpdate, in.Quantity, in.LocationIDs)
		if err != nil {
			return nil, err
		}
		plan := sel.Plan()
		if err := plan.Err(); err != nil {
			return nil, err
		}
		res.Plan = plan
		return inventory.MaterializeEntree(plan, lot, meta), nil
	})
	if err != nil {
		return nil, err
	}
	res.Records = records
	return res, nil
}

// ComplementInput agrega unidades a un lote existente ("Complément Stock").
type ComplementInput struct {
	ProductID   string
	LotID       string
	Quantity    int64
	LocationIDs []int64
	UnitCost    *decimal.Decimal // nil = costo actual del lote
	OperatorID  string
}

// RegisterComplement coloca más unidades de un lote ya registrado. Fechas, calidad y tipo
// de producto se heredan del registro más reciente del lote.
func (uc *LedgerUseCase) RegisterComplement(ctx context.Context, in ComplementInput) (*EntreeResult, error) {
	if in.ProductID == "" || in.LotID == "" || in.Quantity <= 0 || len(in.LocationIDs) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.UnitCost != nil && in.UnitCost.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	meta := uc.newMeta(entity.OperationComplement, in.ProductID, "", in.OperatorID)
	res := &EntreeResult{OperationID: meta.OperationID, LotID: in.LotID}

	records, err := uc.execute(ctx, string(entity.OperationComplement), meta, func(ctx context.Context, tx *ledgerTx) ([]entity.MovementRecord, error) {
		groups := inventory.LotGroups(inventory.AggregateAll(tx.records, in.ProductID, inventory.ViewPhysical), in.LotID, 0)
		if len(groups) == 0 {
			return nil, domain.ErrNotFound
		}
		latest := groups[0]
		for _, g := range groups[1:] {
			if g.LastMovementAt.After(latest.LastMovementAt) {
				latest = g
			}
		}
		lot := inventory.LotFromGroup(latest)
		if in.UnitCost != nil {
			lot.UnitCost = *in.UnitCost
		}
		m := meta
		m.ProductType = latest.ProductType

		sel, err := selectZones(ctx, tx.locations.GetForUpdate, in.Quantity, in.LocationIDs)
		if err != nil {
			return nil, err
		}
		plan := sel.Plan()
		if err := plan.Err(); err != nil {
			return nil, err
		}
		res.Plan = plan
		return inventory.MaterializeEntree(plan, lot, m), nil
	})
	if err != nil {
		return nil, err
	}
	res.Records = records
	return res, nil
}

// SortieInput salida FIFO de stock conforme.
type SortieInput struct {
	ProductID  string
	Quantity   int64
	LocationID int64 // 0 = todas las zonas
	OperatorID string
}

// SortieResult plan FIFO aplicado.
type SortieResult struct {
	OperationID string
	Plan        inventory.AllocationPlan
	Records     []entity.MovementRecord
}

// RegisterSortie asigna FIFO sobre el stock conforme y registra las salidas.
// Un plan parcial se rechaza con *domain.InsufficientStockError y no se escribe nada.
func (uc *LedgerUseCase) RegisterSortie(ctx context.Context, in SortieInput) (*SortieResult, error) {
	if in.ProductID == "" || in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	meta := uc.newMeta(entity.OperationSortie, in.ProductID, "", in.OperatorID)
	res := &SortieResult{OperationID: meta.OperationID}

	records, err := uc.execute(ctx, string(entity.OperationSortie), meta, func(_ context.Context, tx *ledgerTx) ([]entity.MovementRecord, error) {
		plan := allocate(tx.records, in.ProductID, in.Quantity, in.LocationID, entity.QualityConforme)
		if err := plan.Err(); err != nil {
			return nil, err
		}
		res.Plan = plan
		m := meta
		m.ProductType = productTypeOf(tx.records)
		return inventory.MaterializeSortie(plan, m), nil
	})
	if err != nil {
		return nil, err
	}
	res.Records = records
	return res, nil
}
