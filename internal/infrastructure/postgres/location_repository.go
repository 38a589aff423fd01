package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo catálogo de zonas; el stock de cada sububicación se deriva del ledger.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

const locationQuery = `
	SELECT l.id, l.name, s.id, s.kind, s.name, s.position, s.total_capacity, COALESCE(st.stock, 0)
	FROM locations l
	LEFT JOIN sub_locations s ON s.location_id = l.id
	LEFT JOIN (
		SELECT sub_location_id, SUM(CASE WHEN direction = 'sortie' THEN -quantity ELSE quantity END)::BIGINT AS stock
		FROM movement_records
		GROUP BY sub_location_id
	) st ON st.sub_location_id = s.id`

// List devuelve todas las zonas con el stock actual de cada sububicación.
func (r *LocationRepo) List(ctx context.Context) ([]entity.Location, error) {
	return r.query(ctx, locationQuery+` ORDER BY l.id, s.position, s.id`)
}

// GetByID obtiene una zona por ID; nil si no existe.
func (r *LocationRepo) GetByID(ctx context.Context, id int64) (*entity.Location, error) {
	list, err := r.query(ctx, locationQuery+` WHERE l.id = $1 ORDER BY s.position, s.id`, id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

// GetForUpdate bloquea las sububicaciones de la zona hasta el fin de la transacción
// y después lee el stock, ya serializado frente a otras entradas en la misma zona.
func (r *LocationRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Location, error) {
	rows, err := r.q.Query(ctx, `SELECT id FROM sub_locations WHERE location_id = $1 ORDER BY id FOR UPDATE`, id)
	if err != nil {
		return nil, fmt.Errorf("lock sub locations: %w", err)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lock sub locations: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *LocationRepo) query(ctx context.Context, sql string, args ...any) ([]entity.Location, error) {
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var out []entity.Location
	index := make(map[int64]int)
	for rows.Next() {
		var (
			locID        int64
			locName      string
			subID        *int64
			kind, name   *string
			position     *int32
			capacity     *int64
			currentStock int64
		)
		if err := rows.Scan(&locID, &locName, &subID, &kind, &name, &position, &capacity, &currentStock); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		i, ok := index[locID]
		if !ok {
			out = append(out, entity.Location{ID: locID, Name: locName})
			i = len(out) - 1
			index[locID] = i
		}
		if subID == nil {
			continue
		}
		sub := entity.SubLocation{ID: *subID, LocationID: locID, CurrentStock: currentStock}
		if kind != nil {
			sub.Kind = entity.SubLocationKind(*kind)
		}
		if name != nil {
			sub.Name = *name
		}
		if position != nil {
			sub.Position = int(*position)
		}
		if capacity != nil {
			sub.TotalCapacity = *capacity
		}
		out[i].SubLocations = append(out[i].SubLocations, sub)
	}
	return out, rows.Err()
}
