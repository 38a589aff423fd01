package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo ledger de movimientos sobre PostgreSQL (usable con pool o tx).
// La versión de un producto es el id de su último registro.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, operation_id, product_id, product_type, direction, operation, quantity,
	location_id, sub_location_id, sub_location_kind, lot_id, fabrication_date, expiration_date,
	quality_status, is_transfer_leg, unit_cost, created_at, created_by`

// ListByProduct devuelve el ledger completo del producto en orden de inserción.
func (r *MovementRepo) ListByProduct(ctx context.Context, productID string) ([]entity.MovementRecord, int64, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+movementColumns+` FROM movement_records WHERE product_id = $1 ORDER BY id`, productID)
	if err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var list []entity.MovementRecord
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}
	var version int64
	if n := len(list); n > 0 {
		version = list[n-1].ID
	}
	return list, version, nil
}

// Append inserta los registros si la versión del producto sigue siendo expectedVersion
// y ninguna sububicación que recibe unidades supera su capacidad.
func (r *MovementRepo) Append(ctx context.Context, productID string, expectedVersion int64, records []entity.MovementRecord) ([]entity.MovementRecord, error) {
	if len(records) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, rec := range records {
		if rec.ProductID != productID || rec.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
	}
	if err := lockProduct(ctx, r.q, productID); err != nil {
		return nil, fmt.Errorf("lock product: %w", err)
	}

	var current int64
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(MAX(id), 0) FROM movement_records WHERE product_id = $1`, productID).Scan(&current)
	if err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	if current != expectedVersion {
		return nil, domain.ErrConflict
	}
	if err := r.checkCapacity(ctx, records); err != nil {
		return nil, err
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		var quality *string
		if rec.QualityStatus != "" {
			q := string(rec.QualityStatus)
			quality = &q
		}
		batch.Queue(`
			INSERT INTO movement_records (operation_id, product_id, product_type, direction, operation, quantity,
				location_id, sub_location_id, sub_location_kind, lot_id, fabrication_date, expiration_date,
				quality_status, is_transfer_leg, unit_cost, created_at, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
			RETURNING id`,
			rec.OperationID, rec.ProductID, string(rec.ProductType), string(rec.Direction), string(rec.Operation),
			rec.Quantity, rec.LocationID, rec.SubLocationID, string(rec.SubLocationKind), rec.LotID,
			rec.FabricationDate, rec.ExpirationDate, quality, rec.IsTransferLeg, rec.UnitCost,
			rec.CreatedAt, nullString(rec.CreatedBy),
		)
	}
	br := r.q.SendBatch(ctx, batch)
	out := make([]entity.MovementRecord, len(records))
	for i, rec := range records {
		if err := br.QueryRow().Scan(&rec.ID); err != nil {
			_ = br.Close()
			return nil, fmt.Errorf("insert movement: %w", err)
		}
		out[i] = rec
	}
	if err := br.Close(); err != nil {
		return nil, fmt.Errorf("insert movement: %w", err)
	}
	return out, nil
}

// checkCapacity compara el stock neto de cada sububicación que recibe unidades con su capacidad.
func (r *MovementRepo) checkCapacity(ctx context.Context, records []entity.MovementRecord) error {
	delta := make(map[int64]int64)
	for _, rec := range records {
		delta[rec.SubLocationID] += rec.Signed()
	}
	ids := make([]int64, 0, len(delta))
	for id, d := range delta {
		if d > 0 {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT s.id, s.total_capacity, COALESCE(SUM(CASE WHEN m.direction = 'sortie' THEN -m.quantity ELSE m.quantity END), 0)::BIGINT
		FROM sub_locations s
		LEFT JOIN movement_records m ON m.sub_location_id = s.id
		WHERE s.id = ANY($1)
		GROUP BY s.id, s.total_capacity`, ids)
	if err != nil {
		return fmt.Errorf("check capacity: %w", err)
	}
	defer rows.Close()
	found := 0
	for rows.Next() {
		var id, capacity, stock int64
		if err := rows.Scan(&id, &capacity, &stock); err != nil {
			return fmt.Errorf("check capacity: %w", err)
		}
		found++
		if stock+delta[id] > capacity {
			return domain.ErrConflict
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("check capacity: %w", err)
	}
	if found != len(ids) {
		return fmt.Errorf("%w: sububicación desconocida", domain.ErrNotFound)
	}
	return nil
}

// ListProductIDs productos con al menos un registro, ordenados.
func (r *MovementRepo) ListProductIDs(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT DISTINCT product_id FROM movement_records ORDER BY product_id`)
	if err != nil {
		return nil, fmt.Errorf("list product ids: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// LockProduct serializa las escrituras del producto hasta el fin de la transacción.
func (r *MovementRepo) LockProduct(ctx context.Context, productID string) error {
	if err := lockProduct(ctx, r.q, productID); err != nil {
		return fmt.Errorf("lock product: %w", err)
	}
	return nil
}

func scanMovement(row pgx.Row) (entity.MovementRecord, error) {
	var (
		m                                   entity.MovementRecord
		productType, direction, op, subKind string
		quality, createdBy                  *string
		fab, exp                            *time.Time
		cost                                decimal.Decimal
	)
	err := row.Scan(&m.ID, &m.OperationID, &m.ProductID, &productType, &direction, &op, &m.Quantity,
		&m.LocationID, &m.SubLocationID, &subKind, &m.LotID, &fab, &exp,
		&quality, &m.IsTransferLeg, &cost, &m.CreatedAt, &createdBy)
	if err != nil {
		return m, fmt.Errorf("scan movement: %w", err)
	}
	m.ProductType = entity.ProductType(productType)
	m.Direction = entity.Direction(direction)
	m.Operation = entity.Operation(op)
	m.SubLocationKind = entity.SubLocationKind(subKind)
	m.FabricationDate, m.ExpirationDate = fab, exp
	m.UnitCost = cost
	if quality != nil {
		m.QualityStatus = entity.QualityStatus(*quality)
	}
	if createdBy != nil {
		m.CreatedBy = *createdBy
	}
	return m, nil
}
