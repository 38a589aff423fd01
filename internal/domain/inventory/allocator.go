package inventory

import (
	"sort"
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// Allocation cantidad tomada de un grupo de stock.
type Allocation struct {
	Group         entity.StockGroup
	QuantityTaken int64
}

// AllocationPlan resultado de una asignación FIFO. Si Shortfall > 0 el plan es parcial
// y el llamador debe tratarlo como stock insuficiente.
type AllocationPlan struct {
	Requested   int64
	Allocations []Allocation
	Shortfall   int64
}

// Taken suma de lo asignado.
func (p AllocationPlan) Taken() int64 {
	var total int64
	for _, a := range p.Allocations {
		total += a.QuantityTaken
	}
	return total
}

// Complete indica si el plan cubre toda la cantidad pedida.
func (p AllocationPlan) Complete() bool { return p.Shortfall == 0 }

// Err devuelve *domain.InsufficientStockError si el plan es parcial.
func (p AllocationPlan) Err() error {
	if p.Shortfall <= 0 {
		return nil
	}
	return &domain.InsufficientStockError{
		Scope:     domain.ScopeStock,
		Requested: p.Requested,
		Available: p.Taken(),
		Shortfall: p.Shortfall,
	}
}

// Find busca la asignación de una clave.
func (p AllocationPlan) Find(key entity.GroupKey) (Allocation, bool) {
	for _, a := range p.Allocations {
		if a.Group.Key == key {
			return a, true
		}
	}
	return Allocation{}, false
}

// farFuture sustituye a una caducidad ausente: los lotes con fecha siempre van antes.
var farFuture = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

// Allocate reparte quantity sobre los candidatos con política FIFO.
// Solo son elegibles los grupos con QualityStatus == qualityFilter (conforme por defecto)
// y disponible > 0. Orden: caducidad asc (sin fecha al final), fabricación asc
// (sin fecha primero), lote asc, y zona/sububicación asc para un mismo lote.
func Allocate(quantity int64, candidates []entity.StockGroup, qualityFilter entity.QualityStatus) AllocationPlan {
	if qualityFilter == "" {
		qualityFilter = entity.QualityConforme
	}
	plan := AllocationPlan{Requested: quantity}
	if quantity <= 0 {
		return plan
	}
	eligible := make([]entity.StockGroup, 0, len(candidates))
	for _, c := range candidates {
		if c.QualityStatus.Normalize() == qualityFilter && c.Available > 0 {
			eligible = append(eligible, c)
		}
	}
	sortFIFO(eligible)
	plan.Allocations, plan.Shortfall = takeGreedy(quantity, eligible)
	return plan
}

// takeGreedy recorre los grupos en orden tomando min(disponible, restante).
func takeGreedy(quantity int64, groups []entity.StockGroup) ([]Allocation, int64) {
	remaining := quantity
	var out []Allocation
	for _, g := range groups {
		if remaining == 0 {
			break
		}
		take := g.Available
		if take > remaining {
			take = remaining
		}
		if take <= 0 {
			continue
		}
		out = append(out, Allocation{Group: g, QuantityTaken: take})
		remaining -= take
	}
	return out, remaining
}

func sortFIFO(groups []entity.StockGroup) {
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		ea, eb := expirationOrFar(a), expirationOrFar(b)
		if !ea.Equal(eb) {
			return ea.Before(eb)
		}
		fa, fb := fabricationOrZero(a), fabricationOrZero(b)
		if !fa.Equal(fb) {
			return fa.Before(fb)
		}
		return keyLess(a.Key, b.Key)
	})
}

func expirationOrFar(g entity.StockGroup) time.Time {
	if g.ExpirationDate == nil {
		return farFuture
	}
	return *g.ExpirationDate
}

func fabricationOrZero(g entity.StockGroup) time.Time {
	if g.FabricationDate == nil {
		return time.Time{}
	}
	return *g.FabricationDate
}
