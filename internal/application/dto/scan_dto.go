package dto

import (
	"time"

	appinventory "github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
)

// StartScanRequest body de POST /api/inventory/scan-sessions.
type StartScanRequest struct {
	ProductID  string `json:"product_id" validate:"required"`
	Quantity   int64  `json:"quantity" validate:"required,min=1"`
	LocationID int64  `json:"location_id" validate:"min=0"`
}

// ScanRequest lectura cruda del lector QR.
type ScanRequest struct {
	Payload string `json:"payload" validate:"required"`
}

// ConfirmPartialRequest 0 = cantidad planificada.
type ConfirmPartialRequest struct {
	Quantity int64 `json:"quantity" validate:"min=0"`
}

// TakeDTO toma confirmada.
type TakeDTO struct {
	LotID         string `json:"lot_id"`
	LocationID    int64  `json:"location_id"`
	SubLocationID int64  `json:"sub_location_id"`
	Quantity      int64  `json:"quantity"`
}

// PartialPromptDTO pregunta pendiente al operador.
type PartialPromptDTO struct {
	LotID         string `json:"lot_id"`
	LocationID    int64  `json:"location_id"`
	SubLocationID int64  `json:"sub_location_id"`
	Requested     int64  `json:"requested"`
	Available     int64  `json:"available"`
}

// ScanSessionDTO estado de una sesión de escaneo.
type ScanSessionDTO struct {
	ID        string            `json:"id"`
	ProductID string            `json:"product_id"`
	State     string            `json:"state"`
	Requested int64             `json:"requested"`
	Confirmed int64             `json:"confirmed"`
	Remaining int64             `json:"remaining"`
	Plan      AllocationPlanDTO `json:"plan"`
	Takes     []TakeDTO         `json:"takes"`
	Pending   *PartialPromptDTO `json:"pending,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	CreatedBy string            `json:"created_by,omitempty"`
}

// ScanResultDTO resultado de una lectura o confirmación.
type ScanResultDTO struct {
	Outcome   string            `json:"outcome"`
	Take      *TakeDTO          `json:"take,omitempty"`
	Prompt    *PartialPromptDTO `json:"prompt,omitempty"`
	State     string            `json:"state"`
	Confirmed int64             `json:"confirmed"`
	Remaining int64             `json:"remaining"`
}

// ScanResponse respuesta de /scans y /confirm.
type ScanResponse struct {
	Session ScanSessionDTO `json:"session"`
	Result  ScanResultDTO  `json:"result"`
}

func takeDTO(t inventory.ConfirmedTake) TakeDTO {
	return TakeDTO{LotID: t.Key.LotID, LocationID: t.Key.LocationID, SubLocationID: t.Key.SubLocationID, Quantity: t.Quantity}
}

func promptDTO(p *inventory.PartialTakePrompt) *PartialPromptDTO {
	if p == nil {
		return nil
	}
	return &PartialPromptDTO{
		LotID:         p.Key.LotID,
		LocationID:    p.Key.LocationID,
		SubLocationID: p.Key.SubLocationID,
		Requested:     p.Requested,
		Available:     p.Available,
	}
}

func FromScanSession(s *inventory.ScanSession) ScanSessionDTO {
	out := ScanSessionDTO{
		ID:        s.ID,
		ProductID: s.ProductID,
		State:     string(s.State),
		Requested: s.Requested,
		Confirmed: s.Confirmed(),
		Remaining: s.Remaining(),
		Plan:      FromAllocationPlan(s.Plan),
		Takes:     make([]TakeDTO, 0, len(s.Takes)),
		Pending:   promptDTO(s.Pending),
		CreatedAt: s.CreatedAt,
		CreatedBy: s.CreatedBy,
	}
	for _, t := range s.Takes {
		out.Takes = append(out.Takes, takeDTO(t))
	}
	return out
}

func FromScanResult(r inventory.ScanResult) ScanResultDTO {
	out := ScanResultDTO{
		Outcome:   string(r.Outcome),
		Prompt:    promptDTO(r.Prompt),
		State:     string(r.State),
		Confirmed: r.Confirmed,
		Remaining: r.Remaining,
	}
	if r.Take != nil {
		t := takeDTO(*r.Take)
		out.Take = &t
	}
	return out
}

// IntegrityViolationDTO grupo con stock negativo.
type IntegrityViolationDTO struct {
	ProductID     string `json:"product_id"`
	LotID         string `json:"lot_id"`
	LocationID    int64  `json:"location_id"`
	SubLocationID int64  `json:"sub_location_id"`
	Available     int64  `json:"available"`
}

// IntegrityReportDTO resultado de GET /api/inventory/integrity.
type IntegrityReportDTO struct {
	CheckedAt       time.Time               `json:"checked_at"`
	ProductsChecked int                     `json:"products_checked"`
	OK              bool                    `json:"ok"`
	Violations      []IntegrityViolationDTO `json:"violations"`
}

func FromIntegrityReport(r *appinventory.IntegrityReport) IntegrityReportDTO {
	out := IntegrityReportDTO{
		CheckedAt:       r.CheckedAt,
		ProductsChecked: r.ProductsChecked,
		OK:              r.OK(),
		Violations:      make([]IntegrityViolationDTO, 0, len(r.Violations)),
	}
	for _, v := range r.Violations {
		out.Violations = append(out.Violations, IntegrityViolationDTO{
			ProductID:     v.ProductID,
			LotID:         v.Group.Key.LotID,
			LocationID:    v.Group.Key.LocationID,
			SubLocationID: v.Group.Key.SubLocationID,
			Available:     v.Group.Available,
		})
	}
	return out
}
