package inventory

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

const integrityConcurrency = 4

// IntegrityViolation grupo con disponible físico negativo.
type IntegrityViolation struct {
	ProductID string
	Group     entity.StockGroup
}

// IntegrityReport resultado de una verificación completa del ledger.
type IntegrityReport struct {
	CheckedAt       time.Time
	ProductsChecked int
	Violations      []IntegrityViolation
}

// OK indica que no hay violaciones.
func (r IntegrityReport) OK() bool { return len(r.Violations) == 0 }

// IntegrityUseCase recorre el ledger buscando grupos en negativo.
type IntegrityUseCase struct {
	movements repository.MovementRepository
	log       *logger.Logger
	now       func() time.Time
}

// NewIntegrityUseCase construye el verificador.
func NewIntegrityUseCase(movements repository.MovementRepository, log *logger.Logger) *IntegrityUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &IntegrityUseCase{movements: movements, log: log, now: time.Now}
}

// Scan verifica todos los productos del ledger.
func (uc *IntegrityUseCase) Scan(ctx context.Context) (*IntegrityReport, error) {
	ids, err := uc.movements.ListProductIDs(ctx)
	if err != nil {
		return nil, err
	}
	report := &IntegrityReport{CheckedAt: uc.now().UTC(), ProductsChecked: len(ids)}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(integrityConcurrency)
	for _, id := range ids {
		productID := id
		g.Go(func() error {
			records, _, err := uc.movements.ListByProduct(gctx, productID)
			if err != nil {
				return err
			}
			neg := inventory.NegativeGroups(records, productID)
			if len(neg) == 0 {
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			for _, grp := range neg {
				report.Violations = append(report.Violations, IntegrityViolation{ProductID: productID, Group: grp})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(report.Violations, func(i, j int) bool {
		a, b := report.Violations[i], report.Violations[j]
		if a.ProductID != b.ProductID {
			return a.ProductID < b.ProductID
		}
		return a.Group.Key.String() < b.Group.Key.String()
	})
	for _, v := range report.Violations {
		uc.log.Error().
			Str("product_id", v.ProductID).
			Str("group", v.Group.Key.String()).
			Int64("available", v.Group.Available).
			Msg("stock negativo en el ledger")
	}
	uc.log.Info().
		Int("products", report.ProductsChecked).
		Int("violations", len(report.Violations)).
		Msg("verificación de integridad completada")
	return report, nil
}
