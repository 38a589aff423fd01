package http

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	appinventory "github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
)

// IntegrityEnqueuer lo implementa *jobs.Client.
type IntegrityEnqueuer interface {
	EnqueueIntegrityScan(ctx context.Context, requestedBy string) (*asynq.TaskInfo, error)
}

// LedgerHandler consultas y escrituras del ledger de movimientos.
type LedgerHandler struct {
	uc        *appinventory.LedgerUseCase
	integrity *appinventory.IntegrityUseCase
	jobs      IntegrityEnqueuer
}

// NewLedgerHandler construye el handler. jobs puede ser nil (sin worker).
func NewLedgerHandler(uc *appinventory.LedgerUseCase, integrity *appinventory.IntegrityUseCase, jobs IntegrityEnqueuer) *LedgerHandler {
	return &LedgerHandler{uc: uc, integrity: integrity, jobs: jobs}
}

// ListLocations godoc
// @Summary      Catálogo de zonas con capacidad libre
// @Tags         locations
// @Produce      json
// @Success      200  {array}   dto.LocationDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/locations [get]
func (h *LedgerHandler) ListLocations(c *fiber.Ctx) error {
	list, err := h.uc.Locations(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromLocations(list))
}

// GetStock godoc
// @Summary      Stock agregado de un producto por lote y piso
// @Tags         inventory
// @Produce      json
// @Param        productId  path   string  true   "Producto"
// @Param        view       query  string  false  "physical (defecto) o reporting"
// @Success      200  {object}  dto.StockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{productId}/stock [get]
func (h *LedgerHandler) GetStock(c *fiber.Ctx) error {
	view := c.Query("view", "physical")
	if view != "physical" && view != "reporting" {
		return respond(c, fiber.StatusBadRequest, "VALIDATION", "view debe ser physical o reporting", nil)
	}
	overview, err := h.uc.Stock(c.UserContext(), c.Params("productId"), inventory.ParseView(view))
	if err != nil {
		return writeError(c, err)
	}
	out := dto.StockResponse{
		ProductID:      overview.ProductID,
		View:           overview.View.String(),
		TotalAvailable: overview.TotalAvailable,
		TotalValue:     overview.TotalValue,
		Groups:         make([]dto.StockGroupDTO, 0, len(overview.Groups)),
	}
	for _, g := range overview.Groups {
		out.Groups = append(out.Groups, dto.FromStockGroup(g, overview.LocationNames))
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Registros del ledger de un producto
// @Tags         inventory
// @Produce      json
// @Param        productId          path   string  true   "Producto"
// @Param        include_transfers  query  bool    false  "Incluir tramos de transferencia y liberaciones"
// @Success      200  {array}   dto.MovementDTO
// @Router       /api/inventory/products/{productId}/movements [get]
func (h *LedgerHandler) ListMovements(c *fiber.Ctx) error {
	include, err := strconv.ParseBool(c.Query("include_transfers", "false"))
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "VALIDATION", "include_transfers debe ser booleano", nil)
	}
	list, err := h.uc.Movements(c.UserContext(), c.Params("productId"), include)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromRecords(list))
}

// PreviewAllocation godoc
// @Summary      Vista previa del plan FIFO (no escribe)
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body      dto.AllocationPreviewRequest  true  "Producto y cantidad"
// @Success      200   {object}  dto.AllocationPlanDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/allocations/preview [post]
func (h *LedgerHandler) PreviewAllocation(c *fiber.Ctx) error {
	var in dto.AllocationPreviewRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	plan, err := h.uc.PreviewAllocation(c.UserContext(), appinventory.AllocationInput{
		ProductID:     in.ProductID,
		Quantity:      in.Quantity,
		LocationID:    in.LocationID,
		QualityStatus: entity.QualityStatus(in.QualityStatus),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromAllocationPlan(plan))
}

// PreviewDistribution godoc
// @Summary      Vista previa del reparto por capacidad (no escribe)
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body      dto.DistributionPreviewRequest  true  "Cantidad y zonas en orden"
// @Success      200   {object}  dto.DistributionPlanDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/distributions/preview [post]
func (h *LedgerHandler) PreviewDistribution(c *fiber.Ctx) error {
	var in dto.DistributionPreviewRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	plan, err := h.uc.PreviewDistribution(c.UserContext(), in.Quantity, in.LocationIDs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromDistributionPlan(plan))
}

// RegisterEntree godoc
// @Summary      Entrada de un lote nuevo
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        X-Operator-ID  header  string             false  "Operador"
// @Param        body           body    dto.EntreeRequest  true   "Lote y zonas"
// @Success      201  {object}  dto.EntreeResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/inventory/entrees [post]
func (h *LedgerHandler) RegisterEntree(c *fiber.Ctx) error {
	var in dto.EntreeRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	fab, err := dto.ParseDate(in.FabricationDate)
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "VALIDATION", "fabrication_date inválida", nil)
	}
	exp, err := dto.ParseDate(in.ExpirationDate)
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "VALIDATION", "expiration_date inválida", nil)
	}
	cost := decimal.Zero
	if in.UnitCost != nil {
		cost = *in.UnitCost
	}
	res, err := h.uc.RegisterEntree(c.UserContext(), appinventory.EntreeInput{
		ProductID:       in.ProductID,
		ProductType:     entity.ProductType(in.ProductType),
		Quantity:        in.Quantity,
		LocationIDs:     in.LocationIDs,
		FabricationDate: fab,
		ExpirationDate:  exp,
		QualityStatus:   entity.QualityStatus(in.QualityStatus),
		UnitCost:        cost,
		OperatorID:      GetOperatorID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entreeResponse(res))
}

// RegisterComplement godoc
// @Summary      Complemento de stock de un lote existente
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        X-Operator-ID  header  string                 false  "Operador"
// @Param        body           body    dto.ComplementRequest  true   "Lote, cantidad y zonas"
// @Success      201  {object}  dto.EntreeResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/inventory/complements [post]
func (h *LedgerHandler) RegisterComplement(c *fiber.Ctx) error {
	var in dto.ComplementRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.uc.RegisterComplement(c.UserContext(), appinventory.ComplementInput{
		ProductID:   in.ProductID,
		LotID:       in.LotID,
		Quantity:    in.Quantity,
		LocationIDs: in.LocationIDs,
		UnitCost:    in.UnitCost,
		OperatorID:  GetOperatorID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entreeResponse(res))
}

// RegisterSortie godoc
// @Summary      Salida FIFO de stock conforme
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        X-Operator-ID  header  string             false  "Operador"
// @Param        body           body    dto.SortieRequest  true   "Producto y cantidad"
// @Success      201  {object}  dto.SortieResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/inventory/sorties [post]
func (h *LedgerHandler) RegisterSortie(c *fiber.Ctx) error {
	var in dto.SortieRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.uc.RegisterSortie(c.UserContext(), appinventory.SortieInput{
		ProductID:  in.ProductID,
		Quantity:   in.Quantity,
		LocationID: in.LocationID,
		OperatorID: GetOperatorID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sortieResponse(res))
}

// Transfer godoc
// @Summary      Transferencia de un lote entre zonas
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        X-Operator-ID  header  string               false  "Operador"
// @Param        body           body    dto.TransferRequest  true   "Lote, cantidad, origen y destino"
// @Success      201  {object}  dto.TransferResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers [post]
func (h *LedgerHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.uc.Transfer(c.UserContext(), appinventory.TransferInput{
		ProductID:             in.ProductID,
		LotID:                 in.LotID,
		Quantity:              in.Quantity,
		SourceLocationID:      in.SourceLocationID,
		DestinationLocationID: in.DestinationLocationID,
		OperatorID:            GetOperatorID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TransferResponse{
		OperationID: res.OperationID,
		Source:      dto.FromAllocationPlan(res.Plan.Source),
		Destination: dto.FromDistributionPlan(res.Plan.Destination),
		Records:     dto.FromRecords(res.Records),
	})
}

// ReleaseQuarantine godoc
// @Summary      Liberación de cuarentena (cambio de estado de calidad)
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        X-Operator-ID  header  string                     false  "Operador"
// @Param        body           body    dto.QualityReleaseRequest  true   "Lote, zona y nuevo estado"
// @Success      201  {object}  dto.QualityReleaseResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/quality-releases [post]
func (h *LedgerHandler) ReleaseQuarantine(c *fiber.Ctx) error {
	var in dto.QualityReleaseRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.uc.ReleaseQuarantine(c.UserContext(), appinventory.ReleaseInput{
		ProductID:     in.ProductID,
		LotID:         in.LotID,
		LocationID:    in.LocationID,
		SubLocationID: in.SubLocationID,
		NewStatus:     entity.QualityStatus(in.NewStatus),
		OperatorID:    GetOperatorID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.QualityReleaseResponse{
		OperationID: res.OperationID,
		Released:    res.Released,
		Records:     dto.FromRecords(res.Records),
	})
}

// CheckIntegrity godoc
// @Summary      Verificación síncrona de stock negativo en todo el ledger
// @Tags         integrity
// @Produce      json
// @Success      200  {object}  dto.IntegrityReportDTO
// @Router       /api/inventory/integrity [get]
func (h *LedgerHandler) CheckIntegrity(c *fiber.Ctx) error {
	report, err := h.integrity.Scan(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromIntegrityReport(report))
}

// EnqueueIntegrity godoc
// @Summary      Encola la verificación de integridad en el worker
// @Tags         integrity
// @Produce      json
// @Success      202  {object}  map[string]string
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/inventory/integrity/scans [post]
func (h *LedgerHandler) EnqueueIntegrity(c *fiber.Ctx) error {
	if h.jobs == nil {
		return respond(c, fiber.StatusServiceUnavailable, "WORKER_DISABLED", "no hay cola de tareas configurada", nil)
	}
	info, err := h.jobs.EnqueueIntegrityScan(c.UserContext(), GetOperatorID(c))
	if err != nil {
		return respond(c, fiber.StatusServiceUnavailable, "QUEUE_UNAVAILABLE", "no se pudo encolar la tarea", nil)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"task_id": info.ID, "queue": info.Queue})
}

func entreeResponse(res *appinventory.EntreeResult) dto.EntreeResponse {
	return dto.EntreeResponse{
		OperationID: res.OperationID,
		LotID:       res.LotID,
		Plan:        dto.FromDistributionPlan(res.Plan),
		Records:     dto.FromRecords(res.Records),
	}
}

func sortieResponse(res *appinventory.SortieResult) dto.SortieResponse {
	return dto.SortieResponse{
		OperationID: res.OperationID,
		Plan:        dto.FromAllocationPlan(res.Plan),
		Records:     dto.FromRecords(res.Records),
	}
}
