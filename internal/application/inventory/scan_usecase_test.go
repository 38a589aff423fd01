package inventory_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/scan"
)

func newScanUC(f *fixture) *appinventory.ScanUseCase {
	return appinventory.NewScanUseCase(f.ledger, memory.NewSessionStore(), scan.Decoder{})
}

func label(lot string, qty, sub int64) string {
	return fmt.Sprintf("%s|%d|%d", lot, qty, sub)
}

func TestScanUseCase_FlujoCompleto(t *testing.T) {
	f := newFixture(t)
	lot := f.entree(t, 50, entity.QualityConforme, "", 1) // piso 10: 40, piso 11: 10
	uc := newScanUC(f)
	ctx := context.Background()

	s, err := uc.Start(ctx, appinventory.StartScanInput{ProductID: product, Quantity: 45, OperatorID: "op-s"})
	require.NoError(t, err)
	assert.Equal(t, inventory.SessionOpen, s.State)

	_, res, err := uc.Scan(ctx, s.ID, label(lot.LotID, 40, 10))
	require.NoError(t, err)
	assert.Equal(t, inventory.ScanAccepted, res.Outcome)

	_, _, err = uc.Scan(ctx, s.ID, label(lot.LotID, 40, 10))
	assert.ErrorIs(t, err, domain.ErrDuplicateScan)

	_, res, err = uc.Scan(ctx, s.ID, `{"lotId":"`+lot.LotID+`","quantity":10,"subLocationId":11}`)
	require.NoError(t, err)
	require.Equal(t, inventory.ScanNeedsConfirmation, res.Outcome)
	assert.Equal(t, int64(5), res.Prompt.Requested)
	assert.Equal(t, int64(10), res.Prompt.Available)

	got, res, err := uc.ConfirmPartial(ctx, s.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, inventory.SessionSatisfied, got.State)
	assert.Equal(t, int64(0), res.Remaining)

	out, err := uc.Commit(ctx, s.ID, "")
	require.NoError(t, err)
	require.Len(t, out.Records, 2)
	assert.Equal(t, "op-s", out.Records[0].CreatedBy)
	assert.Equal(t, int64(5), f.available(t, inventory.ViewPhysical))

	_, err = uc.Get(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "la sesión confirmada se elimina")
}

func TestScanUseCase_StockInsuficienteNoAbreSesion(t *testing.T) {
	f := newFixture(t)
	f.entree(t, 10, entity.QualityConforme, "", 1)

	_, err := newScanUC(f).Start(context.Background(), appinventory.StartScanInput{ProductID: product, Quantity: 11})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestScanUseCase_CancelarNoTocaElLedger(t *testing.T) {
	f := newFixture(t)
	lot := f.entree(t, 10, entity.QualityConforme, "", 1)
	uc := newScanUC(f)
	ctx := context.Background()

	s, err := uc.Start(ctx, appinventory.StartScanInput{ProductID: product, Quantity: 10})
	require.NoError(t, err)
	_, _, err = uc.Scan(ctx, s.ID, label(lot.LotID, 10, 10))
	require.NoError(t, err)

	require.NoError(t, uc.Cancel(ctx, s.ID))
	_, err = uc.Commit(ctx, s.ID, "op")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, int64(10), f.available(t, inventory.ViewPhysical))
}

func TestScanUseCase_CommitConStockConsumidoEsConflicto(t *testing.T) {
	f := newFixture(t)
	lot := f.entree(t, 10, entity.QualityConforme, "", 1)
	uc := newScanUC(f)
	ctx := context.Background()

	s, err := uc.Start(ctx, appinventory.StartScanInput{ProductID: product, Quantity: 8})
	require.NoError(t, err)
	_, _, err = uc.Scan(ctx, s.ID, label(lot.LotID, 8, 10))
	require.NoError(t, err)
	_, _, err = uc.ConfirmPartial(ctx, s.ID, 0)
	require.NoError(t, err)

	// otro operador retira stock mientras la sesión está abierta
	_, err = f.ledger.RegisterSortie(ctx, appinventory.SortieInput{ProductID: product, Quantity: 5})
	require.NoError(t, err)

	_, err = uc.Commit(ctx, s.ID, "op")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, int64(5), f.available(t, inventory.ViewPhysical))

	still, err := uc.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, inventory.SessionSatisfied, still.State)
}

func TestScanUseCase_CommitTrasLiberarANoConformeEsConflicto(t *testing.T) {
	f := newFixture(t)
	lot := f.entree(t, 10, entity.QualityConforme, "", 1)
	uc := newScanUC(f)
	ctx := context.Background()

	s, err := uc.Start(ctx, appinventory.StartScanInput{ProductID: product, Quantity: 10})
	require.NoError(t, err)

	// calidad rechaza el lote con la sesión abierta; el disponible no cambia
	_, err = f.ledger.ReleaseQuarantine(ctx, appinventory.ReleaseInput{
		ProductID: product, LotID: lot.LotID, LocationID: 1, NewStatus: entity.QualityNonConforme,
	})
	require.NoError(t, err)

	_, res, err := uc.Scan(ctx, s.ID, label(lot.LotID, 10, 10))
	require.NoError(t, err)
	require.Equal(t, inventory.SessionSatisfied, res.State)

	_, err = uc.Commit(ctx, s.ID, "op")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, int64(10), f.available(t, inventory.ViewPhysical))

	st, err := f.ledger.Stock(ctx, product, inventory.ViewPhysical)
	require.NoError(t, err)
	for _, g := range st.Groups {
		assert.Equal(t, entity.QualityNonConforme, g.QualityStatus)
	}

	still, err := uc.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, inventory.SessionSatisfied, still.State)
}

func TestScanUseCase_EtiquetaInsuficienteSeRechaza(t *testing.T) {
	f := newFixture(t)
	lot := f.entree(t, 10, entity.QualityConforme, "", 1)
	uc := newScanUC(f)
	ctx := context.Background()

	s, err := uc.Start(ctx, appinventory.StartScanInput{ProductID: product, Quantity: 10})
	require.NoError(t, err)
	_, _, err = uc.Scan(ctx, s.ID, label(lot.LotID, 6, 10))
	assert.ErrorIs(t, err, domain.ErrLabelQuantity)
	assert.Equal(t, 1, f.metrics.rejected["scan"])

	got, err := uc.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Takes)
}

func TestScanUseCase_LecturaIlegibleNoAlteraSesion(t *testing.T) {
	f := newFixture(t)
	f.entree(t, 10, entity.QualityConforme, "", 1)
	uc := newScanUC(f)
	ctx := context.Background()

	s, err := uc.Start(ctx, appinventory.StartScanInput{ProductID: product, Quantity: 10})
	require.NoError(t, err)
	_, _, err = uc.Scan(ctx, s.ID, "basura")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, _, err = uc.Scan(ctx, s.ID, label("OTRO", 1, 10))
	assert.ErrorIs(t, err, domain.ErrNotInPlan)

	got, err := uc.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Takes)
	assert.Equal(t, 1, f.metrics.rejected["scan"])
}

// ─── Integridad ──────────────────────────────────────────────────────────────

func TestIntegrity_DetectaStockNegativo(t *testing.T) {
	f := newFixture(t)
	lot := f.entree(t, 10, entity.QualityConforme, "", 1)
	ctx := context.Background()

	// escritura directa que salta al motor
	repo := f.store.Movements()
	_, version, err := repo.ListByProduct(ctx, product)
	require.NoError(t, err)
	_, err = repo.Append(ctx, product, version, []entity.MovementRecord{{
		ProductID: product, Direction: entity.DirectionSortie, Quantity: 12,
		LocationID: 1, SubLocationID: 10, LotID: lot.LotID,
	}})
	require.NoError(t, err)

	report, err := appinventory.NewIntegrityUseCase(repo, nil).Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.ProductsChecked)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, int64(-2), report.Violations[0].Group.Available)
	assert.False(t, report.OK())
}
