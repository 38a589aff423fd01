// Package scan decodifica el contenido de las etiquetas QR de lote.
package scan

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	appinventory "github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

var _ appinventory.PayloadDecoder = Decoder{}

// Decoder acepta dos formatos de etiqueta:
//
//	{"lotId":"LOT-20240301-AB12CD34","quantity":30,"subLocationId":7}   (etiquetas antiguas, JSON)
//	LOT-20240301-AB12CD34|30|7                                          (formato compacto)
//
// En JSON también se aceptan las claves lot_id, sub_location_id y la variante lot.
type Decoder struct{}

type legacyPayload struct {
	LotID            string      `json:"lotId"`
	LotIDSnake       string      `json:"lot_id"`
	Lot              string      `json:"lot"`
	Quantity         json.Number `json:"quantity"`
	SubLocationID    json.Number `json:"subLocationId"`
	SubLocationSnake json.Number `json:"sub_location_id"`
}

// Decode normaliza una lectura cruda en entity.ScanPayload.
func (Decoder) Decode(raw string) (entity.ScanPayload, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return entity.ScanPayload{}, fmt.Errorf("%w: lectura vacía", domain.ErrInvalidInput)
	}
	var (
		p   entity.ScanPayload
		err error
	)
	if strings.HasPrefix(raw, "{") {
		p, err = decodeJSON(raw)
	} else {
		p, err = decodePipe(raw)
	}
	if err != nil {
		return entity.ScanPayload{}, err
	}
	if p.LotID == "" || p.SubLocationID <= 0 || p.Quantity < 0 {
		return entity.ScanPayload{}, fmt.Errorf("%w: etiqueta incompleta", domain.ErrInvalidInput)
	}
	return p, nil
}

func decodeJSON(raw string) (entity.ScanPayload, error) {
	var lp legacyPayload
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&lp); err != nil {
		return entity.ScanPayload{}, fmt.Errorf("%w: etiqueta JSON: %v", domain.ErrInvalidInput, err)
	}
	lot := firstNonEmpty(lp.LotID, lp.LotIDSnake, lp.Lot)
	sub := lp.SubLocationID
	if sub == "" {
		sub = lp.SubLocationSnake
	}
	subID, err := parseInt(string(sub))
	if err != nil {
		return entity.ScanPayload{}, err
	}
	var qty int64
	if lp.Quantity != "" {
		if qty, err = parseInt(string(lp.Quantity)); err != nil {
			return entity.ScanPayload{}, err
		}
	}
	return entity.ScanPayload{LotID: strings.TrimSpace(lot), Quantity: qty, SubLocationID: subID}, nil
}

func decodePipe(raw string) (entity.ScanPayload, error) {
	parts := strings.Split(raw, "|")
	if len(parts) != 3 {
		return entity.ScanPayload{}, fmt.Errorf("%w: se esperaban 3 campos separados por '|'", domain.ErrInvalidInput)
	}
	qty, err := parseInt(parts[1])
	if err != nil {
		return entity.ScanPayload{}, err
	}
	sub, err := parseInt(parts[2])
	if err != nil {
		return entity.ScanPayload{}, err
	}
	return entity.ScanPayload{LotID: strings.TrimSpace(parts[0]), Quantity: qty, SubLocationID: sub}, nil
}

func parseInt(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: número inválido %q", domain.ErrInvalidInput, s)
	}
	return n, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
