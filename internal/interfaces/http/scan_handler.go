package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	appinventory "github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
)

// ScanHandler sesiones de salida guiada por escaneo QR.
type ScanHandler struct {
	uc *appinventory.ScanUseCase
}

func NewScanHandler(uc *appinventory.ScanUseCase) *ScanHandler {
	return &ScanHandler{uc: uc}
}

// Start godoc
// @Summary      Abre una sesión de escaneo con el plan FIFO
// @Tags         scan
// @Accept       json
// @Produce      json
// @Param        X-Operator-ID  header  string                false  "Operador"
// @Param        body           body    dto.StartScanRequest  true   "Producto y cantidad"
// @Success      201  {object}  dto.ScanSessionDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/inventory/scan-sessions [post]
func (h *ScanHandler) Start(c *fiber.Ctx) error {
	var in dto.StartScanRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	s, err := h.uc.Start(c.UserContext(), appinventory.StartScanInput{
		ProductID:  in.ProductID,
		Quantity:   in.Quantity,
		LocationID: in.LocationID,
		OperatorID: GetOperatorID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromScanSession(s))
}

// Get godoc
// @Summary      Estado de una sesión de escaneo
// @Tags         scan
// @Produce      json
// @Param        id   path      string  true  "Sesión"
// @Success      200  {object}  dto.ScanSessionDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/scan-sessions/{id} [get]
func (h *ScanHandler) Get(c *fiber.Ctx) error {
	s, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromScanSession(s))
}

// Scan godoc
// @Summary      Registra una lectura QR
// @Tags         scan
// @Accept       json
// @Produce      json
// @Param        id    path      string           true  "Sesión"
// @Param        body  body      dto.ScanRequest  true  "Contenido leído"
// @Success      200   {object}  dto.ScanResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/inventory/scan-sessions/{id}/scans [post]
func (h *ScanHandler) Scan(c *fiber.Ctx) error {
	var in dto.ScanRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	s, res, err := h.uc.Scan(c.UserContext(), c.Params("id"), in.Payload)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(scanResponse(s, res))
}

// Confirm godoc
// @Summary      Confirma la toma parcial pendiente
// @Tags         scan
// @Accept       json
// @Produce      json
// @Param        id    path      string                     true  "Sesión"
// @Param        body  body      dto.ConfirmPartialRequest  true  "0 = cantidad planificada"
// @Success      200   {object}  dto.ScanResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/scan-sessions/{id}/confirm [post]
func (h *ScanHandler) Confirm(c *fiber.Ctx) error {
	var in dto.ConfirmPartialRequest
	if len(c.Body()) > 0 {
		if ok, err := parseBody(c, &in); !ok {
			return err
		}
	}
	s, res, err := h.uc.ConfirmPartial(c.UserContext(), c.Params("id"), in.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(scanResponse(s, res))
}

// Decline godoc
// @Summary      Descarta la toma parcial pendiente
// @Tags         scan
// @Produce      json
// @Param        id   path      string  true  "Sesión"
// @Success      200  {object}  dto.ScanSessionDTO
// @Router       /api/inventory/scan-sessions/{id}/decline [post]
func (h *ScanHandler) Decline(c *fiber.Ctx) error {
	s, err := h.uc.DeclinePartial(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromScanSession(s))
}

// Commit godoc
// @Summary      Registra las salidas confirmadas en el ledger
// @Tags         scan
// @Produce      json
// @Param        X-Operator-ID  header  string  false  "Operador"
// @Param        id             path    string  true   "Sesión"
// @Success      201  {object}  dto.SortieResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/scan-sessions/{id}/commit [post]
func (h *ScanHandler) Commit(c *fiber.Ctx) error {
	res, err := h.uc.Commit(c.UserContext(), c.Params("id"), GetOperatorID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sortieResponse(res))
}

// Cancel godoc
// @Summary      Cancela la sesión sin tocar el ledger
// @Tags         scan
// @Param        id  path  string  true  "Sesión"
// @Success      204
// @Router       /api/inventory/scan-sessions/{id} [delete]
func (h *ScanHandler) Cancel(c *fiber.Ctx) error {
	if err := h.uc.Cancel(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func scanResponse(s *inventory.ScanSession, res inventory.ScanResult) dto.ScanResponse {
	return dto.ScanResponse{Session: dto.FromScanSession(s), Result: dto.FromScanResult(res)}
}
