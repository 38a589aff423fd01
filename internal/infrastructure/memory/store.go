// Package memory implementa el ledger y el catálogo en memoria del proceso.
// Sirve como backend de desarrollo (LEDGER_BACKEND=memory) y en pruebas.
package memory

import (
	"context"
	"sort"
	"sync"

	appinventory "github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
)

var (
	_ repository.MovementRepository = (*MovementRepo)(nil)
	_ repository.LocationRepository = (*LocationRepo)(nil)
	_ appinventory.TxRunner         = (*Store)(nil)
)

// Store ledger por producto más catálogo. La concurrencia es optimista: las lecturas
// no bloquean y Append compara la versión del producto bajo el mutex.
type Store struct {
	mu       sync.RWMutex
	nextID   int64
	records  map[string][]entity.MovementRecord
	versions map[string]int64
	catalog  []entity.Location
}

// NewStore crea un store vacío con el catálogo de zonas dado.
func NewStore(catalog []entity.Location) *Store {
	return &Store{
		records:  make(map[string][]entity.MovementRecord),
		versions: make(map[string]int64),
		catalog:  cloneCatalog(catalog),
	}
}

// Movements repositorio de movimientos sobre el store.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

// Locations repositorio del catálogo sobre el store.
func (s *Store) Locations() *LocationRepo { return &LocationRepo{s: s} }

// Run ejecuta fn con los repositorios del store. No hay rollback: toda la escritura
// de una operación ocurre en un único Append atómico.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	locRepo repository.LocationRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(s.Movements(), s.Locations())
}

// MovementRepo implementación en memoria de repository.MovementRepository.
type MovementRepo struct {
	s *Store
}

// ListByProduct devuelve una copia del ledger del producto y su versión.
func (r *MovementRepo) ListByProduct(_ context.Context, productID string) ([]entity.MovementRecord, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	src := r.s.records[productID]
	out := make([]entity.MovementRecord, len(src))
	copy(out, src)
	return out, r.s.versions[productID], nil
}

// Append agrega los registros si la versión no cambió y ninguna sububicación de destino
// queda por encima de su capacidad. Asigna IDs en orden.
func (r *MovementRepo) Append(_ context.Context, productID string, expectedVersion int64, records []entity.MovementRecord) ([]entity.MovementRecord, error) {
	if len(records) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, rec := range records {
		if rec.ProductID != productID || rec.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.versions[productID] != expectedVersion {
		return nil, domain.ErrConflict
	}
	if !r.s.fitsCapacity(records) {
		return nil, domain.ErrConflict
	}

	out := make([]entity.MovementRecord, len(records))
	for i, rec := range records {
		r.s.nextID++
		rec.ID = r.s.nextID
		out[i] = rec
	}
	r.s.records[productID] = append(r.s.records[productID], out...)
	r.s.versions[productID] = out[len(out)-1].ID
	return out, nil
}

// ListProductIDs productos con al menos un registro, ordenados.
func (r *MovementRepo) ListProductIDs(_ context.Context) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := make([]string, 0, len(r.s.records))
	for id := range r.s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// LockProduct no bloquea: el control de concurrencia está en Append.
func (r *MovementRepo) LockProduct(context.Context, string) error { return nil }

// LocationRepo implementación en memoria de repository.LocationRepository.
type LocationRepo struct {
	s *Store
}

// List devuelve el catálogo con el stock actual de cada sububicación.
func (r *LocationRepo) List(_ context.Context) ([]entity.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	stock := r.s.stockBySubLocation()
	out := cloneCatalog(r.s.catalog)
	for i := range out {
		fillStock(&out[i], stock)
	}
	return out, nil
}

// GetByID devuelve la zona o nil si no existe.
func (r *LocationRepo) GetByID(_ context.Context, id int64) (*entity.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, l := range r.s.catalog {
		if l.ID == id {
			loc := cloneCatalog([]entity.Location{l})[0]
			fillStock(&loc, r.s.stockBySubLocation())
			return &loc, nil
		}
	}
	return nil, nil
}

// GetForUpdate igual que GetByID; la capacidad se vuelve a comprobar en Append.
func (r *LocationRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Location, error) {
	return r.GetByID(ctx, id)
}

// stockBySubLocation suma con signo todos los registros por sububicación. Requiere mu.
func (s *Store) stockBySubLocation() map[int64]int64 {
	out := make(map[int64]int64)
	for _, recs := range s.records {
		for _, r := range recs {
			out[r.SubLocationID] += r.Signed()
		}
	}
	return out
}

// fitsCapacity comprueba las sububicaciones que reciben unidades netas. Requiere mu.
func (s *Store) fitsCapacity(records []entity.MovementRecord) bool {
	delta := make(map[int64]int64)
	for _, r := range records {
		delta[r.SubLocationID] += r.Signed()
	}
	stock := s.stockBySubLocation()
	for _, l := range s.catalog {
		for _, sub := range l.SubLocations {
			if d := delta[sub.ID]; d > 0 && stock[sub.ID]+d > sub.TotalCapacity {
				return false
			}
		}
	}
	return true
}

func fillStock(l *entity.Location, stock map[int64]int64) {
	for i := range l.SubLocations {
		l.SubLocations[i].CurrentStock = stock[l.SubLocations[i].ID]
	}
}

func cloneCatalog(in []entity.Location) []entity.Location {
	out := make([]entity.Location, len(in))
	for i, l := range in {
		out[i] = l
		out[i].SubLocations = append([]entity.SubLocation(nil), l.SubLocations...)
	}
	return out
}
