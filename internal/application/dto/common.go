package dto

// ErrorResponse cuerpo de error HTTP. Details lleva el detalle estructurado
// (faltante de stock, motivo de transferencia inválida, campos inválidos).
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// InsufficientStockDetails detalle de INSUFFICIENT_STOCK / INSUFFICIENT_CAPACITY.
type InsufficientStockDetails struct {
	Scope     string `json:"scope"`
	Requested int64  `json:"requested"`
	Available int64  `json:"available"`
	Shortfall int64  `json:"shortfall"`
}

// InvalidTransferDetails detalle de INVALID_TRANSFER.
type InvalidTransferDetails struct {
	Reason     string `json:"reason"`
	LotID      string `json:"lot_id,omitempty"`
	LocationID int64  `json:"location_id,omitempty"`
}

// ScanRejectionDetails detalle de DUPLICATE_SCAN / NOT_IN_PLAN / LABEL_QUANTITY.
type ScanRejectionDetails struct {
	LotID         string `json:"lot_id"`
	LocationID    int64  `json:"location_id,omitempty"`
	SubLocationID int64  `json:"sub_location_id"`
}

// DateLayout formato de las fechas de fabricación/caducidad en la API.
const DateLayout = "2006-01-02"
