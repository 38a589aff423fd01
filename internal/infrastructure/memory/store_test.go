package memory

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/inventory"
)

func testCatalog() []entity.Location {
	return []entity.Location{{
		ID:   1,
		Name: "Zona A",
		SubLocations: []entity.SubLocation{
			{ID: 10, LocationID: 1, Kind: entity.SubLocationEtage, TotalCapacity: 20},
		},
	}}
}

func entree(lot string, sub, qty int64) entity.MovementRecord {
	return entity.MovementRecord{
		ProductID: "P1", Direction: entity.DirectionEntree, Quantity: qty,
		LocationID: 1, SubLocationID: sub, LotID: lot, CreatedAt: time.Now(),
	}
}

func TestStore_AppendAsignaIDsYVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewStore(testCatalog()).Movements()

	out, err := repo.Append(ctx, "P1", 0, []entity.MovementRecord{entree("L1", 10, 5), entree("L1", 10, 3)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), out[0].ID)
	assert.Equal(t, int64(2), out[1].ID)

	records, version, err := repo.ListByProduct(ctx, "P1")
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, int64(2), version)

	ids, err := repo.ListProductIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"P1"}, ids)
}

func TestStore_VersionDesactualizadaEsConflicto(t *testing.T) {
	ctx := context.Background()
	repo := NewStore(testCatalog()).Movements()
	_, err := repo.Append(ctx, "P1", 0, []entity.MovementRecord{entree("L1", 10, 5)})
	require.NoError(t, err)

	_, err = repo.Append(ctx, "P1", 0, []entity.MovementRecord{entree("L2", 10, 1)})
	assert.ErrorIs(t, err, domain.ErrConflict)

	records, _, _ := repo.ListByProduct(ctx, "P1")
	assert.Len(t, records, 1, "un conflicto no escribe nada")
}

func TestStore_CapacidadSeVerificaEntreProductos(t *testing.T) {
	ctx := context.Background()
	store := NewStore(testCatalog())
	repo := store.Movements()

	_, err := repo.Append(ctx, "P1", 0, []entity.MovementRecord{entree("L1", 10, 15)})
	require.NoError(t, err)

	other := entree("X1", 10, 6)
	other.ProductID = "P2"
	_, err = repo.Append(ctx, "P2", 0, []entity.MovementRecord{other})
	assert.ErrorIs(t, err, domain.ErrConflict)

	locs, err := store.Locations().List(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(15), locs[0].SubLocations[0].CurrentStock)
	assert.Equal(t, int64(5), locs[0].SubLocations[0].AvailableCapacity())
}

func TestStore_RechazaRegistrosDeOtroProducto(t *testing.T) {
	repo := NewStore(testCatalog()).Movements()
	_, err := repo.Append(context.Background(), "P9", 0, []entity.MovementRecord{entree("L1", 10, 1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLocationRepo_GetByIDInexistente(t *testing.T) {
	loc, err := NewStore(testCatalog()).Locations().GetByID(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, loc)
}

// ─── Catálogo ────────────────────────────────────────────────────────────────

func TestLoadCatalog(t *testing.T) {
	raw := `{"locations":[
		{"id":1,"name":"Zona A","sub_locations":[
			{"id":10,"kind":"etage","name":"Étage 1","position":1,"total_capacity":100},
			{"id":11,"kind":"part","name":"Partie 1","position":2,"total_capacity":50}]},
		{"id":2,"name":"Zona B","sub_locations":[{"id":20,"kind":"etage","position":1,"total_capacity":30}]}]}`
	locs, err := LoadCatalog(strings.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, locs, 2)
	assert.Equal(t, entity.SubLocationPart, locs[0].SubLocations[1].Kind)
	assert.Equal(t, int64(1), locs[0].SubLocations[1].LocationID)
	assert.Equal(t, int64(30), locs[1].AvailableCapacity())
}

func TestLoadCatalog_Invalido(t *testing.T) {
	cases := map[string]string{
		"sububicación repetida entre zonas": `{"locations":[{"id":1,"sub_locations":[{"id":10,"kind":"etage"}]},{"id":2,"sub_locations":[{"id":10,"kind":"etage"}]}]}`,
		"tipo desconocido":                  `{"locations":[{"id":1,"sub_locations":[{"id":10,"kind":"rack"}]}]}`,
		"capacidad negativa":                `{"locations":[{"id":1,"sub_locations":[{"id":10,"kind":"part","total_capacity":-1}]}]}`,
		"zona repetida":                     `{"locations":[{"id":1},{"id":1}]}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadCatalog(strings.NewReader(raw))
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

// ─── Sesiones ────────────────────────────────────────────────────────────────

func TestSessionStore_CopiaIndependienteYExpiracion(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	clock := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	plan := inventory.Allocate(5, []entity.StockGroup{{
		Key: entity.GroupKey{LotID: "L1", LocationID: 1, SubLocationID: 10}, ProductID: "P1",
		Available: 5, QualityStatus: entity.QualityConforme,
	}}, "")
	s, err := inventory.NewScanSession("s1", plan, inventory.RecordMeta{ProductID: "P1", CreatedAt: clock})
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, s, time.Minute))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	got.State = inventory.SessionCancelled

	again, _ := store.Get(ctx, "s1")
	assert.Equal(t, inventory.SessionOpen, again.State)
	assert.Equal(t, int64(5), again.Plan.Allocations[0].QuantityTaken)

	clock = clock.Add(2 * time.Minute)
	expired, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, expired)
}
