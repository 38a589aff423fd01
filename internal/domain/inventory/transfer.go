package inventory

import (
	"fmt"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// TransferRequest mover Quantity unidades del lote LotID de una zona a otra.
type TransferRequest struct {
	ProductID             string
	LotID                 string
	Quantity              int64
	SourceLocationID      int64
	DestinationLocationID int64
}

// TransferPlan par de conjuntos de registros (salida en origen, entrada en destino)
// que deben agregarse al ledger juntos o no agregarse.
type TransferPlan struct {
	Source        AllocationPlan
	Destination   DistributionPlan
	SortieRecords []entity.MovementRecord
	EntreeRecords []entity.MovementRecord
}

// Records devuelve ambos tramos en orden de agregado (salidas primero).
func (p TransferPlan) Records() []entity.MovementRecord {
	out := make([]entity.MovementRecord, 0, len(p.SortieRecords)+len(p.EntreeRecords))
	out = append(out, p.SortieRecords...)
	return append(out, p.EntreeRecords...)
}

// PlanTransfer valida y arma una transferencia a partir del ledger del producto.
// Un lote que nunca estuvo en la zona de origen no puede transferirse desde ella.
// La calidad no se filtra: el stock en cuarentena también puede moverse.
func PlanTransfer(req TransferRequest, records []entity.MovementRecord, destination entity.Location, meta RecordMeta) (TransferPlan, error) {
	if req.Quantity <= 0 || req.LotID == "" || req.ProductID == "" {
		return TransferPlan{}, domain.ErrInvalidInput
	}
	if req.SourceLocationID == req.DestinationLocationID {
		return TransferPlan{}, &domain.InvalidTransferError{
			Reason: domain.ReasonSameLocation, LotID: req.LotID, LocationID: req.SourceLocationID,
		}
	}
	if destination.ID != req.DestinationLocationID {
		return TransferPlan{}, domain.ErrInvalidInput
	}

	all := AggregateAll(records, req.ProductID, ViewPhysical)
	if len(LotGroups(all, req.LotID, req.SourceLocationID)) == 0 {
		return TransferPlan{}, &domain.InvalidTransferError{
			Reason: domain.ReasonLotNotAtSource, LotID: req.LotID, LocationID: req.SourceLocationID,
		}
	}

	var sourceGroups []entity.StockGroup
	for _, g := range LotGroups(all, req.LotID, req.SourceLocationID) {
		if g.Available > 0 {
			sourceGroups = append(sourceGroups, g)
		}
	}
	allocs, shortfall := takeGreedy(req.Quantity, sourceGroups)
	source := AllocationPlan{Requested: req.Quantity, Allocations: allocs, Shortfall: shortfall}
	if err := source.Err(); err != nil {
		return TransferPlan{}, err
	}

	dest := Distribute(req.Quantity, []entity.Location{destination})
	if err := dest.Err(); err != nil {
		return TransferPlan{}, err
	}

	meta.ProductID = req.ProductID
	meta.Operation = entity.OperationTransfer
	meta.IsTransferLeg = true
	if meta.ProductType == "" && len(sourceGroups) > 0 {
		meta.ProductType = sourceGroups[0].ProductType
	}

	plan := TransferPlan{
		Source:        source,
		Destination:   dest,
		SortieRecords: MaterializeSortie(source, meta),
		EntreeRecords: pairLegs(source, dest, meta),
	}
	if err := checkLegs(plan, req.Quantity); err != nil {
		return TransferPlan{}, err
	}
	return plan, nil
}

// pairLegs recorre en paralelo lo tomado en origen y lo colocado en destino, de modo que
// cada entrada lleve la procedencia exacta del grupo del que sale.
func pairLegs(source AllocationPlan, dest DistributionPlan, meta RecordMeta) []entity.MovementRecord {
	var out []entity.MovementRecord
	si, di := 0, 0
	var srcLeft, dstLeft int64
	if len(source.Allocations) > 0 {
		srcLeft = source.Allocations[0].QuantityTaken
	}
	if len(dest.Placements) > 0 {
		dstLeft = dest.Placements[0].QuantityPlaced
	}
	for si < len(source.Allocations) && di < len(dest.Placements) {
		if srcLeft == 0 {
			si++
			if si < len(source.Allocations) {
				srcLeft = source.Allocations[si].QuantityTaken
			}
			continue
		}
		if dstLeft == 0 {
			di++
			if di < len(dest.Placements) {
				dstLeft = dest.Placements[di].QuantityPlaced
			}
			continue
		}
		qty := srcLeft
		if dstLeft < qty {
			qty = dstLeft
		}
		g := source.Allocations[si].Group
		p := dest.Placements[di]
		out = append(out, newRecord(meta, entity.DirectionEntree, qty,
			p.LocationID, p.SubLocation.ID, p.SubLocation.Kind, LotFromGroup(g)))
		srcLeft -= qty
		dstLeft -= qty
	}
	return out
}

func checkLegs(plan TransferPlan, quantity int64) error {
	out, in := SumQuantity(plan.SortieRecords), SumQuantity(plan.EntreeRecords)
	if out != in || out != quantity {
		return &domain.InternalConsistencyError{
			Detail: fmt.Sprintf("tramos de transferencia descuadrados: salida=%d entrada=%d pedido=%d", out, in, quantity),
		}
	}
	for _, r := range plan.Records() {
		if r.Quantity <= 0 || !r.IsTransferLeg {
			return &domain.InternalConsistencyError{Detail: "tramo de transferencia inválido"}
		}
	}
	return nil
}
