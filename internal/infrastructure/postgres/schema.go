package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema crea tablas, índices y el trigger append-only si no existen.
func EnsureSchema(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("aplicar esquema: %w", err)
	}
	return nil
}

// CatalogSeedSQL genera los INSERT ... ON CONFLICT del catálogo de zonas, ordenados por id.
func CatalogSeedSQL(locations []entity.Location) string {
	locs := make([]entity.Location, len(locations))
	copy(locs, locations)
	sort.Slice(locs, func(i, j int) bool { return locs[i].ID < locs[j].ID })

	var b strings.Builder
	b.WriteString("-- Catálogo de zonas generado por seed_locations\nBEGIN;\n\n")
	for _, l := range locs {
		fmt.Fprintf(&b, "INSERT INTO locations (id, name) VALUES (%d, %s)\n"+
			"    ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name;\n", l.ID, quote(l.Name))
		subs := append([]entity.SubLocation(nil), l.SubLocations...)
		sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
		for _, s := range subs {
			fmt.Fprintf(&b, "INSERT INTO sub_locations (id, location_id, kind, name, position, total_capacity)\n"+
				"    VALUES (%d, %d, %s, %s, %d, %d)\n"+
				"    ON CONFLICT (id) DO UPDATE SET location_id = EXCLUDED.location_id, kind = EXCLUDED.kind,\n"+
				"        name = EXCLUDED.name, position = EXCLUDED.position, total_capacity = EXCLUDED.total_capacity;\n",
				s.ID, l.ID, quote(string(s.Kind)), quote(s.Name), s.Position, s.TotalCapacity)
		}
		b.WriteString("\n")
	}
	b.WriteString("COMMIT;\n")
	return b.String()
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
