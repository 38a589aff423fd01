package inventory_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
)

func lotsAB() []entity.StockGroup {
	return []entity.StockGroup{
		group("L2", 10, 50, entity.QualityConforme, "2024-02-01", "2024-07-01"),
		group("L1", 11, 30, entity.QualityConforme, "2024-01-01", "2024-06-01"),
	}
}

func taken(plan inventory.AllocationPlan) map[string]int64 {
	out := map[string]int64{}
	for _, a := range plan.Allocations {
		out[a.Group.Key.LotID] += a.QuantityTaken
	}
	return out
}

// ─── Casos de referencia ─────────────────────────────────────────────────────

func TestAllocate_CaducidadMasProximaPrimero(t *testing.T) {
	plan := inventory.Allocate(40, lotsAB(), "")

	require.Len(t, plan.Allocations, 2)
	assert.Equal(t, "L1", plan.Allocations[0].Group.Key.LotID)
	assert.Equal(t, int64(30), plan.Allocations[0].QuantityTaken)
	assert.Equal(t, "L2", plan.Allocations[1].Group.Key.LotID)
	assert.Equal(t, int64(10), plan.Allocations[1].QuantityTaken)
	assert.Equal(t, int64(0), plan.Shortfall)
	assert.True(t, plan.Complete())
	assert.NoError(t, plan.Err())
}

func TestAllocate_StockInsuficienteDevuelvePlanParcial(t *testing.T) {
	plan := inventory.Allocate(100, lotsAB(), "")

	assert.Equal(t, map[string]int64{"L1": 30, "L2": 50}, taken(plan))
	assert.Equal(t, int64(20), plan.Shortfall)

	err := plan.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, domain.ScopeStock, ise.Scope)
	assert.Equal(t, int64(100), ise.Requested)
	assert.Equal(t, int64(80), ise.Available)
	assert.Equal(t, int64(20), ise.Shortfall)
}

func TestAllocate_NoConformeNuncaSeAsigna(t *testing.T) {
	candidates := []entity.StockGroup{
		group("L1", 10, 50, entity.QualityNonConforme, "2024-01-01", "2024-06-01"),
		group("L2", 11, 50, entity.QualityConforme, "2024-02-01", "2024-07-01"),
	}
	plan := inventory.Allocate(20, candidates, "")

	require.Len(t, plan.Allocations, 1)
	assert.Equal(t, "L2", plan.Allocations[0].Group.Key.LotID)
	assert.Equal(t, int64(20), plan.Allocations[0].QuantityTaken)
}

// ─── Propiedades ─────────────────────────────────────────────────────────────

func TestAllocate_SinCaducidadVaAlFinal(t *testing.T) {
	candidates := []entity.StockGroup{
		group("A", 10, 5, entity.QualityConforme, "2023-01-01", ""),
		group("B", 11, 5, entity.QualityConforme, "2024-05-01", "2030-01-01"),
	}
	plan := inventory.Allocate(6, candidates, "")
	require.Len(t, plan.Allocations, 2)
	assert.Equal(t, "B", plan.Allocations[0].Group.Key.LotID)
	assert.Equal(t, "A", plan.Allocations[1].Group.Key.LotID)
}

func TestAllocate_EmpateDeCaducidadDesempataFabricacionYLote(t *testing.T) {
	candidates := []entity.StockGroup{
		group("C", 12, 5, entity.QualityConforme, "2024-03-01", "2025-01-01"),
		group("B", 11, 5, entity.QualityConforme, "", "2025-01-01"),
		group("A", 10, 5, entity.QualityConforme, "2024-03-01", "2025-01-01"),
	}
	plan := inventory.Allocate(15, candidates, "")
	require.Len(t, plan.Allocations, 3)
	// sin fabricación va primero; luego lote ascendente
	assert.Equal(t, []string{"B", "A", "C"}, []string{
		plan.Allocations[0].Group.Key.LotID,
		plan.Allocations[1].Group.Key.LotID,
		plan.Allocations[2].Group.Key.LotID,
	})
}

func TestAllocate_FiltroDeCalidadExplicito(t *testing.T) {
	candidates := []entity.StockGroup{
		group("P", 10, 8, entity.QualityPending, "", ""),
		group("C", 11, 8, entity.QualityConforme, "", ""),
	}
	plan := inventory.Allocate(5, candidates, entity.QualityPending)
	require.Len(t, plan.Allocations, 1)
	assert.Equal(t, "P", plan.Allocations[0].Group.Key.LotID)
}

func TestAllocate_CantidadNoPositivaDevuelvePlanVacio(t *testing.T) {
	for _, q := range []int64{0, -3} {
		plan := inventory.Allocate(q, lotsAB(), "")
		assert.Empty(t, plan.Allocations)
		assert.Equal(t, int64(0), plan.Shortfall)
	}
}

func TestAllocate_TomadoMasFaltanteIgualPedido(t *testing.T) {
	for _, q := range []int64{1, 29, 30, 31, 80, 81, 500} {
		plan := inventory.Allocate(q, lotsAB(), "")
		assert.Equal(t, q, plan.Taken()+plan.Shortfall, "q=%d", q)
		for _, a := range plan.Allocations {
			assert.Greater(t, a.QuantityTaken, int64(0))
			assert.LessOrEqual(t, a.QuantityTaken, a.Group.Available)
		}
	}
}

func TestAllocate_NoMutaCandidatos(t *testing.T) {
	candidates := lotsAB()
	before := append([]entity.StockGroup(nil), candidates...)
	_ = inventory.Allocate(40, candidates, "")
	assert.Equal(t, before, candidates)
}

func TestAllocationPlan_Find(t *testing.T) {
	plan := inventory.Allocate(40, lotsAB(), "")
	a, ok := plan.Find(entity.GroupKey{LotID: "L1", LocationID: 1, SubLocationID: 11})
	require.True(t, ok)
	assert.Equal(t, int64(30), a.QuantityTaken)

	_, ok = plan.Find(entity.GroupKey{LotID: "L9", LocationID: 1, SubLocationID: 11})
	assert.False(t, ok)
}
