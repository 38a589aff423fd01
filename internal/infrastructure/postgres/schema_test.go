package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

func TestCatalogSeedSQL(t *testing.T) {
	sql := CatalogSeedSQL([]entity.Location{
		{ID: 2, Name: "Zona B", SubLocations: []entity.SubLocation{
			{ID: 21, Kind: entity.SubLocationPart, Name: "Parte 1", Position: 1, TotalCapacity: 30},
		}},
		{ID: 1, Name: "Zona d'A", SubLocations: []entity.SubLocation{
			{ID: 11, Kind: entity.SubLocationEtage, Name: "Piso 2", Position: 2, TotalCapacity: 40},
			{ID: 10, Kind: entity.SubLocationEtage, Name: "Piso 1", Position: 1, TotalCapacity: 40},
		}},
	})

	assert.True(t, strings.HasPrefix(sql, "-- Catálogo"))
	assert.Contains(t, sql, "VALUES (1, 'Zona d''A')")
	assert.Contains(t, sql, "VALUES (21, 2, 'part', 'Parte 1', 1, 30)")
	assert.Less(t, strings.Index(sql, "VALUES (1,"), strings.Index(sql, "VALUES (2,"), "zonas ordenadas por id")
	assert.Less(t, strings.Index(sql, "VALUES (10, 1"), strings.Index(sql, "VALUES (11, 1"))
	assert.True(t, strings.HasSuffix(sql, "COMMIT;\n"))
}

func TestSchemaSQL_AppendOnly(t *testing.T) {
	assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS movement_records")
	assert.Contains(t, schemaSQL, "BEFORE UPDATE OR DELETE ON movement_records")
}
