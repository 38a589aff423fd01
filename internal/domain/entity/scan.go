package entity

// ScanPayload contenido lógico de un código QR ya decodificado. Quantity es lo que
// declara la etiqueta; 0 indica que la etiqueta no la trae.
type ScanPayload struct {
	LotID         string `json:"lot_id"`
	Quantity      int64  `json:"quantity"`
	SubLocationID int64  `json:"sub_location_id"`
}
