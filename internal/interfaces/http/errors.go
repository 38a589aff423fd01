package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
)

// writeError traduce errores de dominio a respuestas HTTP. Los errores internos
// nunca exponen su mensaje.
func writeError(c *fiber.Ctx, err error) error {
	var (
		insufficient *domain.InsufficientStockError
		transfer     *domain.InvalidTransferError
		scan         *domain.ScanError
	)
	switch {
	case errors.As(err, &insufficient):
		code := "INSUFFICIENT_STOCK"
		if insufficient.Scope == domain.ScopeCapacity {
			code = "INSUFFICIENT_CAPACITY"
		}
		return respond(c, fiber.StatusUnprocessableEntity, code, insufficient.Error(), dto.InsufficientStockDetails{
			Scope:     insufficient.Scope,
			Requested: insufficient.Requested,
			Available: insufficient.Available,
			Shortfall: insufficient.Shortfall,
		})
	case errors.As(err, &transfer):
		return respond(c, fiber.StatusUnprocessableEntity, "INVALID_TRANSFER", transfer.Error(), dto.InvalidTransferDetails{
			Reason: transfer.Reason, LotID: transfer.LotID, LocationID: transfer.LocationID,
		})
	case errors.As(err, &scan):
		code := "NOT_IN_PLAN"
		switch {
		case errors.Is(scan.Err, domain.ErrDuplicateScan):
			code = "DUPLICATE_SCAN"
		case errors.Is(scan.Err, domain.ErrLabelQuantity):
			code = "LABEL_QUANTITY"
		}
		return respond(c, fiber.StatusUnprocessableEntity, code, scan.Error(), dto.ScanRejectionDetails{
			LotID: scan.LotID, LocationID: scan.LocationID, SubLocationID: scan.SubLocationID,
		})
	case errors.Is(err, domain.ErrInsufficientStock):
		return respond(c, fiber.StatusUnprocessableEntity, "INSUFFICIENT_STOCK", "stock insuficiente", nil)
	case errors.Is(err, domain.ErrInvalidTransfer):
		return respond(c, fiber.StatusUnprocessableEntity, "INVALID_TRANSFER", "transferencia inválida", nil)
	case errors.Is(err, domain.ErrSessionClosed):
		return respond(c, fiber.StatusConflict, "SESSION_CLOSED", domain.ErrSessionClosed.Error(), nil)
	case errors.Is(err, domain.ErrConfirmationPending):
		return respond(c, fiber.StatusConflict, "CONFIRMATION_PENDING", domain.ErrConfirmationPending.Error(), nil)
	case errors.Is(err, domain.ErrInvalidInput):
		return respond(c, fiber.StatusBadRequest, "VALIDATION", "datos inválidos", nil)
	case errors.Is(err, domain.ErrNotFound):
		return respond(c, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado", nil)
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrDuplicate):
		return respond(c, fiber.StatusConflict, "CONFLICT", "el stock cambió durante la operación; reintente", nil)
	}
	return respond(c, fiber.StatusInternalServerError, "INTERNAL", "error interno", nil)
}

func respond(c *fiber.Ctx, status int, code, message string, details any) error {
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: message, Details: details})
}
