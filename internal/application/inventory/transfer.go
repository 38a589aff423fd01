package inventory

import (
	"context"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
)

// TransferInput mover unidades de un lote entre zonas.
type TransferInput struct {
	ProductID             string
	LotID                 string
	Quantity              int64
	SourceLocationID      int64
	DestinationLocationID int64
	OperatorID            string
}

// TransferResult ambos tramos registrados.
type TransferResult struct {
	OperationID string
	Plan        inventory.TransferPlan
	Records     []entity.MovementRecord
}

// Transfer registra salida en origen y entrada en destino en la misma transacción.
func (uc *LedgerUseCase) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	req := inventory.TransferRequest{
		ProductID:             in.ProductID,
		LotID:                 in.LotID,
		Quantity:              in.Quantity,
		SourceLocationID:      in.SourceLocationID,
		DestinationLocationID: in.DestinationLocationID,
	}
	if req.ProductID == "" || req.LotID == "" || req.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if req.SourceLocationID == req.DestinationLocationID {
		return nil, &domain.InvalidTransferError{Reason: domain.ReasonSameLocation, LotID: req.LotID, LocationID: req.SourceLocationID}
	}
	meta := uc.newMeta(entity.OperationTransfer, in.ProductID, "", in.OperatorID)
	res := &TransferResult{OperationID: meta.OperationID}

	records, err := uc.execute(ctx, string(entity.OperationTransfer), meta, func(ctx context.Context, tx *ledgerTx) ([]entity.MovementRecord, error) {
		dest, err := tx.locations.GetForUpdate(ctx, req.DestinationLocationID)
		if err != nil {
			return nil, err
		}
		if dest == nil {
			return nil, domain.ErrNotFound
		}
		plan, err := inventory.PlanTransfer(req, tx.records, *dest, meta)
		if err != nil {
			return nil, err
		}
		res.Plan = plan
		return plan.Records(), nil
	})
	if err != nil {
		return nil, err
	}
	res.Records = records
	return res, nil
}

// ReleaseInput liberación de cuarentena de un lote en una zona.
type ReleaseInput struct {
	ProductID     string
	LotID         string
	LocationID    int64
	SubLocationID int64 // 0 = todos los pisos de la zona
	NewStatus     entity.QualityStatus
	OperatorID    string
}

// ReleaseResult registros de cambio de calidad.
type ReleaseResult struct {
	OperationID string
	Released    int64
	Records     []entity.MovementRecord
}

// ReleaseQuarantine cambia el estado de calidad del stock disponible de un lote. Por cada grupo
// afectado emite una salida con el estado anterior y una entrada con el nuevo, sin mover unidades.
func (uc *LedgerUseCase) ReleaseQuarantine(ctx context.Context, in ReleaseInput) (*ReleaseResult, error) {
	if in.ProductID == "" || in.LotID == "" || in.LocationID == 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.NewStatus != entity.QualityConforme && in.NewStatus != entity.QualityNonConforme {
		return nil, domain.ErrInvalidInput
	}
	meta := uc.newMeta(entity.OperationQualityRelease, in.ProductID, "", in.OperatorID)
	res := &ReleaseResult{OperationID: meta.OperationID}

	records, err := uc.execute(ctx, string(entity.OperationQualityRelease), meta, func(_ context.Context, tx *ledgerTx) ([]entity.MovementRecord, error) {
		groups := inventory.LotGroups(inventory.Aggregate(tx.records, in.ProductID, inventory.ViewPhysical), in.LotID, in.LocationID)
		var out []entity.MovementRecord
		found := false
		res.Released = 0
		for _, g := range groups {
			if in.SubLocationID != 0 && g.Key.SubLocationID != in.SubLocationID {
				continue
			}
			found = true
			if g.QualityStatus == in.NewStatus {
				continue
			}
			m := meta
			m.ProductType = g.ProductType
			out = append(out, inventory.MaterializeQualityChange(g, in.NewStatus, m)...)
			res.Released += g.Available
		}
		if !found {
			return nil, domain.ErrNotFound
		}
		if len(out) == 0 {
			return nil, domain.ErrInvalidInput
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	res.Records = records
	return res, nil
}
