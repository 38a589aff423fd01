package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductType categoría del producto; el motor es el mismo para las tres.
type ProductType string

const (
	ProductTypeRawMaterial  ProductType = "raw_material"
	ProductTypeSemiFinished ProductType = "semi_finished"
	ProductTypeFinished     ProductType = "finished"
)

// Valid indica si el tipo de producto es conocido.
func (t ProductType) Valid() bool {
	switch t {
	case ProductTypeRawMaterial, ProductTypeSemiFinished, ProductTypeFinished:
		return true
	}
	return false
}

// Direction sentido del movimiento en el ledger.
type Direction string

const (
	DirectionEntree Direction = "entree" // entrada
	DirectionSortie Direction = "sortie" // salida
)

// SubLocationKind distingue pisos (étages) de partes dentro de una zona.
type SubLocationKind string

const (
	SubLocationEtage SubLocationKind = "etage"
	SubLocationPart  SubLocationKind = "part"
)

// Valid indica si el tipo de sububicación es conocido.
func (k SubLocationKind) Valid() bool {
	return k == SubLocationEtage || k == SubLocationPart
}

// QualityStatus veredicto de control de calidad de un lote.
type QualityStatus string

const (
	QualityPending     QualityStatus = "pending"
	QualityConforme    QualityStatus = "conforme"
	QualityNonConforme QualityStatus = "non_conforme"
)

// Normalize trata el estado vacío (nulo en origen) como pendiente.
func (q QualityStatus) Normalize() QualityStatus {
	if q == "" {
		return QualityPending
	}
	return q
}

// Valid indica si el estado es uno de los tres veredictos conocidos (vacío incluido).
func (q QualityStatus) Valid() bool {
	switch q.Normalize() {
	case QualityPending, QualityConforme, QualityNonConforme:
		return true
	}
	return false
}

// Operation punto de entrada que generó el registro.
type Operation string

const (
	OperationEntree         Operation = "entree"
	OperationSortie         Operation = "sortie"
	OperationTransfer       Operation = "transfer"
	OperationComplement     Operation = "complement"
	OperationQualityRelease Operation = "quality_release"
)

// MovementRecord es un evento inmutable del ledger (solo se agregan registros).
// ID lo asigna el almacén al persistir; antes vale 0.
type MovementRecord struct {
	ID              int64
	OperationID     string
	ProductID       string
	ProductType     ProductType
	Direction       Direction
	Operation       Operation
	Quantity        int64 // siempre positivo; el signo lo da Direction
	LocationID      int64
	SubLocationID   int64
	SubLocationKind SubLocationKind
	LotID           string
	FabricationDate *time.Time
	ExpirationDate  *time.Time
	QualityStatus   QualityStatus
	IsTransferLeg   bool
	UnitCost        decimal.Decimal
	CreatedAt       time.Time
	CreatedBy       string
}

// Signed devuelve la cantidad con signo (+ entrada, - salida).
func (r MovementRecord) Signed() int64 {
	if r.Direction == DirectionSortie {
		return -r.Quantity
	}
	return r.Quantity
}

// Key devuelve la clave de agrupación del registro.
func (r MovementRecord) Key() GroupKey {
	return GroupKey{LotID: r.LotID, LocationID: r.LocationID, SubLocationID: r.SubLocationID}
}
