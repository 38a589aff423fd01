package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
)

// ─── Peticiones ──────────────────────────────────────────────────────────────

// AllocationPreviewRequest body de POST /api/inventory/allocations/preview.
type AllocationPreviewRequest struct {
	ProductID     string `json:"product_id" validate:"required"`
	Quantity      int64  `json:"quantity" validate:"required,min=1"`
	LocationID    int64  `json:"location_id" validate:"min=0"`
	QualityStatus string `json:"quality_status" validate:"omitempty,oneof=pending conforme non_conforme"`
}

// DistributionPreviewRequest body de POST /api/inventory/distributions/preview.
type DistributionPreviewRequest struct {
	Quantity    int64   `json:"quantity" validate:"required,min=1"`
	LocationIDs []int64 `json:"location_ids" validate:"required,min=1,dive,min=1"`
}

// EntreeRequest body de POST /api/inventory/entrees. Las zonas se recorren en el orden enviado.
type EntreeRequest struct {
	ProductID       string           `json:"product_id" validate:"required"`
	ProductType     string           `json:"product_type" validate:"required,oneof=raw_material semi_finished finished"`
	Quantity        int64            `json:"quantity" validate:"required,min=1"`
	LocationIDs     []int64          `json:"location_ids" validate:"required,min=1,dive,min=1"`
	FabricationDate string           `json:"fabrication_date" validate:"omitempty,datetime=2006-01-02"`
	ExpirationDate  string           `json:"expiration_date" validate:"omitempty,datetime=2006-01-02"`
	QualityStatus   string           `json:"quality_status" validate:"omitempty,oneof=pending conforme non_conforme"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
}

// ComplementRequest body de POST /api/inventory/complements.
type ComplementRequest struct {
	ProductID   string           `json:"product_id" validate:"required"`
	LotID       string           `json:"lot_id" validate:"required"`
	Quantity    int64            `json:"quantity" validate:"required,min=1"`
	LocationIDs []int64          `json:"location_ids" validate:"required,min=1,dive,min=1"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
}

// SortieRequest body de POST /api/inventory/sorties.
type SortieRequest struct {
	ProductID  string `json:"product_id" validate:"required"`
	Quantity   int64  `json:"quantity" validate:"required,min=1"`
	LocationID int64  `json:"location_id" validate:"min=0"`
}

// TransferRequest body de POST /api/inventory/transfers.
type TransferRequest struct {
	ProductID             string `json:"product_id" validate:"required"`
	LotID                 string `json:"lot_id" validate:"required"`
	Quantity              int64  `json:"quantity" validate:"required,min=1"`
	SourceLocationID      int64  `json:"source_location_id" validate:"required,min=1"`
	DestinationLocationID int64  `json:"destination_location_id" validate:"required,min=1"`
}

// QualityReleaseRequest body de POST /api/inventory/quality-releases.
type QualityReleaseRequest struct {
	ProductID     string `json:"product_id" validate:"required"`
	LotID         string `json:"lot_id" validate:"required"`
	LocationID    int64  `json:"location_id" validate:"required,min=1"`
	SubLocationID int64  `json:"sub_location_id" validate:"min=0"`
	NewStatus     string `json:"new_status" validate:"required,oneof=conforme non_conforme"`
}

// ─── Respuestas ──────────────────────────────────────────────────────────────

// MovementDTO registro del ledger.
type MovementDTO struct {
	ID              int64           `json:"id"`
	OperationID     string          `json:"operation_id"`
	ProductID       string          `json:"product_id"`
	ProductType     string          `json:"product_type"`
	Direction       string          `json:"direction"`
	Operation       string          `json:"operation"`
	Quantity        int64           `json:"quantity"`
	LocationID      int64           `json:"location_id"`
	SubLocationID   int64           `json:"sub_location_id"`
	SubLocationKind string          `json:"sub_location_kind"`
	LotID           string          `json:"lot_id"`
	FabricationDate *string         `json:"fabrication_date"`
	ExpirationDate  *string         `json:"expiration_date"`
	QualityStatus   string          `json:"quality_status"`
	IsTransferLeg   bool            `json:"is_transfer_leg"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	CreatedAt       time.Time       `json:"created_at"`
	CreatedBy       string          `json:"created_by,omitempty"`
}

// StockGroupDTO stock derivado de un lote en un piso/parte.
type StockGroupDTO struct {
	LotID           string          `json:"lot_id"`
	LocationID      int64           `json:"location_id"`
	LocationName    string          `json:"location_name,omitempty"`
	SubLocationID   int64           `json:"sub_location_id"`
	SubLocationKind string          `json:"sub_location_kind"`
	ProductType     string          `json:"product_type"`
	Entree          int64           `json:"entree"`
	Sortie          int64           `json:"sortie"`
	Available       int64           `json:"available"`
	QualityStatus   string          `json:"quality_status"`
	FabricationDate *string         `json:"fabrication_date"`
	ExpirationDate  *string         `json:"expiration_date"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	Value           decimal.Decimal `json:"value"`
	LastMovementAt  time.Time       `json:"last_movement_at"`
}

// StockResponse respuesta de GET /api/inventory/products/:productId/stock.
type StockResponse struct {
	ProductID      string          `json:"product_id"`
	View           string          `json:"view"`
	TotalAvailable int64           `json:"total_available"`
	TotalValue     decimal.Decimal `json:"total_value"`
	Groups         []StockGroupDTO `json:"groups"`
}

// AllocationDTO toma de un grupo dentro de un plan FIFO.
type AllocationDTO struct {
	LotID          string  `json:"lot_id"`
	LocationID     int64   `json:"location_id"`
	SubLocationID  int64   `json:"sub_location_id"`
	QualityStatus  string  `json:"quality_status"`
	ExpirationDate *string `json:"expiration_date"`
	Available      int64   `json:"available"`
	QuantityTaken  int64   `json:"quantity_taken"`
}

// AllocationPlanDTO plan FIFO.
type AllocationPlanDTO struct {
	Requested   int64           `json:"requested"`
	Taken       int64           `json:"taken"`
	Shortfall   int64           `json:"shortfall"`
	Allocations []AllocationDTO `json:"allocations"`
}

// PlacementDTO colocación en una sububicación.
type PlacementDTO struct {
	LocationID        int64  `json:"location_id"`
	SubLocationID     int64  `json:"sub_location_id"`
	SubLocationKind   string `json:"sub_location_kind"`
	SubLocationName   string `json:"sub_location_name"`
	AvailableCapacity int64  `json:"available_capacity"`
	QuantityPlaced    int64  `json:"quantity_placed"`
}

// DistributionPlanDTO reparto por capacidad.
type DistributionPlanDTO struct {
	Requested  int64          `json:"requested"`
	Placed     int64          `json:"placed"`
	Unplaced   int64          `json:"unplaced"`
	Placements []PlacementDTO `json:"placements"`
}

// EntreeResponse respuesta de entradas y complementos.
type EntreeResponse struct {
	OperationID string              `json:"operation_id"`
	LotID       string              `json:"lot_id"`
	Plan        DistributionPlanDTO `json:"plan"`
	Records     []MovementDTO       `json:"records"`
}

// SortieResponse respuesta de salidas y de confirmación de sesiones de escaneo.
type SortieResponse struct {
	OperationID string            `json:"operation_id"`
	Plan        AllocationPlanDTO `json:"plan"`
	Records     []MovementDTO     `json:"records"`
}

// TransferResponse ambos tramos de la transferencia.
type TransferResponse struct {
	OperationID string              `json:"operation_id"`
	Source      AllocationPlanDTO   `json:"source"`
	Destination DistributionPlanDTO `json:"destination"`
	Records     []MovementDTO       `json:"records"`
}

// QualityReleaseResponse cambio de calidad aplicado.
type QualityReleaseResponse struct {
	OperationID string        `json:"operation_id"`
	Released    int64         `json:"released"`
	Records     []MovementDTO `json:"records"`
}

// ─── Conversión ──────────────────────────────────────────────────────────────

// ParseDate convierte "AAAA-MM-DD" en *time.Time UTC; "" = nil.
func ParseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(DateLayout)
	return &s
}

func FromRecord(r entity.MovementRecord) MovementDTO {
	return MovementDTO{
		ID:              r.ID,
		OperationID:     r.OperationID,
		ProductID:       r.ProductID,
		ProductType:     string(r.ProductType),
		Direction:       string(r.Direction),
		Operation:       string(r.Operation),
		Quantity:        r.Quantity,
		LocationID:      r.LocationID,
		SubLocationID:   r.SubLocationID,
		SubLocationKind: string(r.SubLocationKind),
		LotID:           r.LotID,
		FabricationDate: formatDate(r.FabricationDate),
		ExpirationDate:  formatDate(r.ExpirationDate),
		QualityStatus:   string(r.QualityStatus.Normalize()),
		IsTransferLeg:   r.IsTransferLeg,
		UnitCost:        r.UnitCost,
		CreatedAt:       r.CreatedAt,
		CreatedBy:       r.CreatedBy,
	}
}

func FromRecords(list []entity.MovementRecord) []MovementDTO {
	out := make([]MovementDTO, 0, len(list))
	for _, r := range list {
		out = append(out, FromRecord(r))
	}
	return out
}

// FromStockGroup names puede ser nil.
func FromStockGroup(g entity.StockGroup, names map[int64]string) StockGroupDTO {
	return StockGroupDTO{
		LotID:           g.Key.LotID,
		LocationID:      g.Key.LocationID,
		LocationName:    names[g.Key.LocationID],
		SubLocationID:   g.Key.SubLocationID,
		SubLocationKind: string(g.SubLocationKind),
		ProductType:     string(g.ProductType),
		Entree:          g.Entree,
		Sortie:          g.Sortie,
		Available:       g.Available,
		QualityStatus:   string(g.QualityStatus.Normalize()),
		FabricationDate: formatDate(g.FabricationDate),
		ExpirationDate:  formatDate(g.ExpirationDate),
		UnitCost:        g.UnitCost,
		Value:           g.Value(),
		LastMovementAt:  g.LastMovementAt,
	}
}

func FromAllocationPlan(p inventory.AllocationPlan) AllocationPlanDTO {
	out := AllocationPlanDTO{
		Requested:   p.Requested,
		Taken:       p.Taken(),
		Shortfall:   p.Shortfall,
		Allocations: make([]AllocationDTO, 0, len(p.Allocations)),
	}
	for _, a := range p.Allocations {
		out.Allocations = append(out.Allocations, AllocationDTO{
			LotID:          a.Group.Key.LotID,
			LocationID:     a.Group.Key.LocationID,
			SubLocationID:  a.Group.Key.SubLocationID,
			QualityStatus:  string(a.Group.QualityStatus.Normalize()),
			ExpirationDate: formatDate(a.Group.ExpirationDate),
			Available:      a.Group.Available,
			QuantityTaken:  a.QuantityTaken,
		})
	}
	return out
}

func FromDistributionPlan(p inventory.DistributionPlan) DistributionPlanDTO {
	out := DistributionPlanDTO{
		Requested:  p.Requested,
		Placed:     p.Placed(),
		Unplaced:   p.Unplaced,
		Placements: make([]PlacementDTO, 0, len(p.Placements)),
	}
	for _, pl := range p.Placements {
		out.Placements = append(out.Placements, PlacementDTO{
			LocationID:        pl.LocationID,
			SubLocationID:     pl.SubLocation.ID,
			SubLocationKind:   string(pl.SubLocation.Kind),
			SubLocationName:   pl.SubLocation.Name,
			AvailableCapacity: pl.SubLocation.AvailableCapacity(),
			QuantityPlaced:    pl.QuantityPlaced,
		})
	}
	return out
}
