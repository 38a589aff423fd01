package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrInvalidTransfer     = errors.New("transferencia inválida")
	ErrDuplicateScan       = errors.New("lote ya escaneado")
	ErrNotInPlan           = errors.New("lote fuera del plan de salida")
	ErrLabelQuantity       = errors.New("la etiqueta declara menos unidades que la toma planificada")
	ErrInternalConsistency = errors.New("inconsistencia interna del ledger")
	ErrSessionClosed       = errors.New("la sesión de escaneo no acepta más lecturas")
	ErrConfirmationPending = errors.New("hay una toma parcial pendiente de confirmación")
)

// Alcances de InsufficientStockError.
const (
	ScopeStock    = "stock"    // no hay existencias suficientes
	ScopeCapacity = "capacity" // no hay capacidad suficiente en destino
)

// InsufficientStockError detalla la cantidad pedida frente a la disponible.
type InsufficientStockError struct {
	Scope     string
	Requested int64
	Available int64
	Shortfall int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s: %s solicitado=%d disponible=%d faltante=%d",
		ErrInsufficientStock, e.Scope, e.Requested, e.Available, e.Shortfall)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// Motivos de InvalidTransferError.
const (
	ReasonSameLocation   = "same_location"
	ReasonLotNotAtSource = "lot_not_at_source"
)

// InvalidTransferError bloquea una transferencia antes de generar registros.
type InvalidTransferError struct {
	Reason     string
	LotID      string
	LocationID int64
}

func (e *InvalidTransferError) Error() string {
	return fmt.Sprintf("%s: %s (lote=%s ubicación=%d)", ErrInvalidTransfer, e.Reason, e.LotID, e.LocationID)
}

func (e *InvalidTransferError) Unwrap() error { return ErrInvalidTransfer }

// ScanError es un rechazo recuperable de una lectura; la sesión sigue abierta.
type ScanError struct {
	Err           error // ErrDuplicateScan, ErrNotInPlan o ErrLabelQuantity
	LotID         string
	LocationID    int64
	SubLocationID int64
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("%s (lote=%s ubicación=%d sububicación=%d)", e.Err, e.LotID, e.LocationID, e.SubLocationID)
}

func (e *ScanError) Unwrap() error { return e.Err }

// InternalConsistencyError es fatal: la operación se aborta sin recuperación parcial.
type InternalConsistencyError struct {
	Detail string
}

func (e *InternalConsistencyError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInternalConsistency, e.Detail)
}

func (e *InternalConsistencyError) Unwrap() error { return ErrInternalConsistency }
