package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

// EventMovementsAppended se publica tras cada operación confirmada.
const EventMovementsAppended = "inventory.movements.appended"

// MovementsAppended payload del evento EventMovementsAppended.
type MovementsAppended struct {
	OperationID string    `json:"operation_id"`
	ProductID   string    `json:"product_id"`
	Operation   string    `json:"operation"`
	Records     int       `json:"records"`
	Quantity    int64     `json:"quantity"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Config parámetros de los casos de uso del ledger.
type Config struct {
	MaxConflictRetries int
	ScanSessionTTL     time.Duration
}

// LedgerUseCase operaciones sobre el ledger de movimientos. Cada escritura sigue
// bloquear → leer → agregar → planificar → agregar al ledger dentro de una sola transacción
// y se replanifica desde cero si otro escritor ganó la carrera (domain.ErrConflict).
type LedgerUseCase struct {
	txRunner  TxRunner
	movements repository.MovementRepository
	locations repository.LocationRepository
	publisher EventPublisher
	metrics   Metrics
	log       *logger.Logger
	cfg       Config
	now       func() time.Time
}

// NewLedgerUseCase construye el caso de uso. publisher y metrics pueden ser nil.
func NewLedgerUseCase(
	txRunner TxRunner,
	movements repository.MovementRepository,
	locations repository.LocationRepository,
	publisher EventPublisher,
	metrics Metrics,
	log *logger.Logger,
	cfg Config,
) *LedgerUseCase {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	if cfg.MaxConflictRetries < 0 {
		cfg.MaxConflictRetries = 0
	}
	return &LedgerUseCase{
		txRunner:  txRunner,
		movements: movements,
		locations: locations,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
		cfg:       cfg,
		now:       time.Now,
	}
}

// StockOverview stock agregado de un producto.
type StockOverview struct {
	ProductID      string
	View           inventory.View
	Groups         []entity.StockGroup
	LocationNames  map[int64]string
	TotalAvailable int64
	TotalValue     decimal.Decimal
}

// Stock reconstruye el stock del producto. Ledger y catálogo se leen en paralelo.
func (uc *LedgerUseCase) Stock(ctx context.Context, productID string, view inventory.View) (*StockOverview, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	var (
		records   []entity.MovementRecord
		locations []entity.Location
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, _, err = uc.movements.ListByProduct(gctx, productID)
		return err
	})
	g.Go(func() error {
		var err error
		locations, err = uc.locations.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &StockOverview{
		ProductID:     productID,
		View:          view,
		Groups:        inventory.Candidates(inventory.Aggregate(records, productID, view)),
		LocationNames: make(map[int64]string, len(locations)),
		TotalValue:    decimal.Zero,
	}
	for _, l := range locations {
		out.LocationNames[l.ID] = l.Name
	}
	for _, grp := range out.Groups {
		out.TotalAvailable += grp.Available
		out.TotalValue = out.TotalValue.Add(grp.Value())
	}
	return out, nil
}

// Movements lista el ledger del producto en orden de registro. Sin includeTransfers
// se ocultan los tramos de transferencia (vista de reporte de Entrée/Sortie).
func (uc *LedgerUseCase) Movements(ctx context.Context, productID string, includeTransfers bool) ([]entity.MovementRecord, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	records, _, err := uc.movements.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if includeTransfers {
		return records, nil
	}
	out := make([]entity.MovementRecord, 0, len(records))
	for _, r := range records {
		if !r.IsTransferLeg {
			out = append(out, r)
		}
	}
	return out, nil
}

// Locations catálogo de zonas con capacidad libre por sububicación.
func (uc *LedgerUseCase) Locations(ctx context.Context) ([]entity.Location, error) {
	return uc.locations.List(ctx)
}

// AllocationInput parámetros de una vista previa de salida.
type AllocationInput struct {
	ProductID     string
	Quantity      int64
	LocationID    int64 // 0 = todas las zonas
	QualityStatus entity.QualityStatus
}

// PreviewAllocation calcula el plan FIFO sin escribir nada. Un plan parcial no es error aquí.
func (uc *LedgerUseCase) PreviewAllocation(ctx context.Context, in AllocationInput) (inventory.AllocationPlan, error) {
	if in.ProductID == "" || in.Quantity <= 0 {
		return inventory.AllocationPlan{}, domain.ErrInvalidInput
	}
	if in.QualityStatus != "" && !in.QualityStatus.Valid() {
		return inventory.AllocationPlan{}, domain.ErrInvalidInput
	}
	records, _, err := uc.movements.ListByProduct(ctx, in.ProductID)
	if err != nil {
		return inventory.AllocationPlan{}, err
	}
	return allocate(records, in.ProductID, in.Quantity, in.LocationID, in.QualityStatus), nil
}

// PreviewDistribution calcula el reparto de quantity sobre las zonas, en el orden recibido.
func (uc *LedgerUseCase) PreviewDistribution(ctx context.Context, quantity int64, locationIDs []int64) (inventory.DistributionPlan, error) {
	if quantity <= 0 || len(locationIDs) == 0 {
		return inventory.DistributionPlan{}, domain.ErrInvalidInput
	}
	sel, err := selectZones(ctx, uc.locations.GetByID, quantity, locationIDs)
	if err != nil {
		return inventory.DistributionPlan{}, err
	}
	return sel.Plan(), nil
}

// ─── Núcleo transaccional ────────────────────────────────────────────────────

// ledgerTx estado visible para un plan dentro de la transacción.
type ledgerTx struct {
	locations repository.LocationRepository
	records   []entity.MovementRecord
}

type planFunc func(ctx context.Context, tx *ledgerTx) ([]entity.MovementRecord, error)

// execute corre plan dentro de una transacción y reintenta ante domain.ErrConflict.
func (uc *LedgerUseCase) execute(ctx context.Context, operation string, meta inventory.RecordMeta, plan planFunc) ([]entity.MovementRecord, error) {
	start := time.Now()
	attempts := uc.cfg.MaxConflictRetries + 1
	var appended []entity.MovementRecord
	for attempt := 1; ; attempt++ {
		err := uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository, locRepo repository.LocationRepository) error {
			if err := movRepo.LockProduct(ctx, meta.ProductID); err != nil {
				return err
			}
			records, version, err := movRepo.ListByProduct(ctx, meta.ProductID)
			if err != nil {
				return err
			}
			out, err := plan(ctx, &ledgerTx{locations: locRepo, records: records})
			if err != nil {
				return err
			}
			if len(out) == 0 {
				return &domain.InternalConsistencyError{Detail: "la operación no generó registros"}
			}
			appended, err = movRepo.Append(ctx, meta.ProductID, version, out)
			return err
		})
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrConflict) && attempt < attempts && ctx.Err() == nil {
			uc.metrics.IncConflict(operation)
			uc.log.Warn().
				Str("operation", operation).
				Str("operation_id", meta.OperationID).
				Str("product_id", meta.ProductID).
				Int("attempt", attempt).
				Msg("conflicto de versión en el ledger, replanificando")
			continue
		}
		uc.reject(operation, meta, err)
		return nil, err
	}

	uc.metrics.ObserveOperation(operation, len(appended), time.Since(start))
	uc.log.Info().
		Str("operation", operation).
		Str("operation_id", meta.OperationID).
		Str("product_id", meta.ProductID).
		Int("records", len(appended)).
		Msg("movimientos registrados")

	evt := MovementsAppended{
		OperationID: meta.OperationID,
		ProductID:   meta.ProductID,
		Operation:   operation,
		Records:     len(appended),
		Quantity:    inventory.SumQuantity(appended),
		CreatedBy:   meta.CreatedBy,
		CreatedAt:   meta.CreatedAt,
	}
	if err := uc.publisher.Publish(ctx, EventMovementsAppended, evt); err != nil {
		uc.log.Warn().Err(err).Str("operation_id", meta.OperationID).Msg("publicar evento de movimientos")
	}
	return appended, nil
}

func (uc *LedgerUseCase) reject(operation string, meta inventory.RecordMeta, err error) {
	reason := rejectReason(err)
	uc.metrics.IncRejected(operation, reason)
	evt := uc.log.Info()
	if reason == "internal_consistency" || reason == "internal" {
		evt = uc.log.Error()
	}
	evt.Err(err).
		Str("operation", operation).
		Str("operation_id", meta.OperationID).
		Str("product_id", meta.ProductID).
		Str("reason", reason).
		Msg("operación rechazada")
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrInvalidTransfer):
		return "invalid_transfer"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrInternalConsistency):
		return "internal_consistency"
	case errors.Is(err, domain.ErrSessionClosed), errors.Is(err, domain.ErrConfirmationPending):
		return "session_state"
	case errors.Is(err, domain.ErrDuplicateScan), errors.Is(err, domain.ErrNotInPlan), errors.Is(err, domain.ErrLabelQuantity):
		return "scan"
	}
	return "internal"
}

func (uc *LedgerUseCase) newMeta(operation entity.Operation, productID string, productType entity.ProductType, operatorID string) inventory.RecordMeta {
	return inventory.RecordMeta{
		OperationID: uuid.New().String(),
		ProductID:   productID,
		ProductType: productType,
		Operation:   operation,
		CreatedAt:   uc.now().UTC(),
		CreatedBy:   operatorID,
	}
}

// ─── Auxiliares ──────────────────────────────────────────────────────────────

// allocate agrega en vista física, filtra por zona y asigna FIFO.
func allocate(records []entity.MovementRecord, productID string, quantity, locationID int64, quality entity.QualityStatus) inventory.AllocationPlan {
	groups := inventory.Candidates(inventory.Aggregate(records, productID, inventory.ViewPhysical))
	if locationID != 0 {
		filtered := groups[:0]
		for _, g := range groups {
			if g.Key.LocationID == locationID {
				filtered = append(filtered, g)
			}
		}
		groups = filtered
	}
	return inventory.Allocate(quantity, groups, quality)
}

type locationLoader func(ctx context.Context, id int64) (*entity.Location, error)

// selectZones arma la selección de zonas en el orden recibido.
func selectZones(ctx context.Context, load locationLoader, quantity int64, locationIDs []int64) (*inventory.ZoneSelection, error) {
	sel := inventory.NewZoneSelection(quantity)
	for _, id := range locationIDs {
		loc, err := load(ctx, id)
		if err != nil {
			return nil, err
		}
		if loc == nil {
			return nil, domain.ErrNotFound
		}
		if _, err := sel.Add(*loc); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return nil, domain.ErrInvalidInput
			}
			return nil, err
		}
	}
	return sel, nil
}

// productTypeOf tipo con el que el producto ya figura en el ledger ("" si no tiene registros).
func productTypeOf(records []entity.MovementRecord) entity.ProductType {
	for _, r := range records {
		if r.ProductType != "" {
			return r.ProductType
		}
	}
	return ""
}
