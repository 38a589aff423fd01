package inventory

import (
	"sort"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// Placement cantidad colocada en una sububicación. Puede ser 0 (seleccionada pero vacía).
type Placement struct {
	LocationID     int64
	SubLocation    entity.SubLocation
	QuantityPlaced int64
}

// DistributionPlan reparto de una cantidad sobre zonas/pisos según capacidad libre.
type DistributionPlan struct {
	Requested  int64
	Placements []Placement
	Unplaced   int64
}

// Placed suma de lo colocado.
func (p DistributionPlan) Placed() int64 {
	var total int64
	for _, pl := range p.Placements {
		total += pl.QuantityPlaced
	}
	return total
}

// Complete indica si toda la cantidad encontró lugar.
func (p DistributionPlan) Complete() bool { return p.Unplaced == 0 }

// Err devuelve *domain.InsufficientStockError (alcance capacidad) si quedó cantidad sin colocar.
func (p DistributionPlan) Err() error {
	if p.Unplaced <= 0 {
		return nil
	}
	return &domain.InsufficientStockError{
		Scope:     domain.ScopeCapacity,
		Requested: p.Requested,
		Available: p.Placed(),
		Shortfall: p.Unplaced,
	}
}

// Distribute coloca quantity recorriendo las zonas en el orden recibido (intención del operador)
// y, dentro de cada zona, las sububicaciones en orden de catálogo.
// Todas las sububicaciones de las zonas seleccionadas aparecen en el plan.
func Distribute(quantity int64, zones []entity.Location) DistributionPlan {
	plan := DistributionPlan{Requested: quantity}
	remaining := quantity
	if remaining < 0 {
		remaining = 0
	}
	for _, z := range zones {
		for _, sub := range catalogOrder(z.SubLocations) {
			place := sub.AvailableCapacity()
			if place > remaining {
				place = remaining
			}
			remaining -= place
			plan.Placements = append(plan.Placements, Placement{
				LocationID:     z.ID,
				SubLocation:    sub,
				QuantityPlaced: place,
			})
		}
	}
	plan.Unplaced = remaining
	return plan
}

// catalogOrder ordena por Position y luego ID, sin tocar el slice original.
func catalogOrder(subs []entity.SubLocation) []entity.SubLocation {
	out := make([]entity.SubLocation, len(subs))
	copy(out, subs)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ZoneSelection lista de zonas elegidas por el operador para una entrada.
// Cada cambio recalcula el plan completo sobre la lista actual.
type ZoneSelection struct {
	quantity int64
	zones    []entity.Location
	current  int // -1 = ninguna
	plan     DistributionPlan
}

// NewZoneSelection crea una selección vacía para quantity unidades.
func NewZoneSelection(quantity int64) *ZoneSelection {
	s := &ZoneSelection{quantity: quantity, current: -1}
	s.redistribute()
	return s
}

// Add agrega la zona al final, la selecciona y redistribuye.
func (s *ZoneSelection) Add(zone entity.Location) (DistributionPlan, error) {
	for _, z := range s.zones {
		if z.ID == zone.ID {
			return s.plan, domain.ErrDuplicate
		}
	}
	s.zones = append(s.zones, zone)
	s.current = len(s.zones) - 1
	s.redistribute()
	return s.plan, nil
}

// Remove quita la zona y redistribuye. La zona actual pasa a la anterior,
// o a la primera restante, o a ninguna.
func (s *ZoneSelection) Remove(locationID int64) (DistributionPlan, error) {
	idx := -1
	for i, z := range s.zones {
		if z.ID == locationID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s.plan, domain.ErrNotFound
	}
	s.zones = append(s.zones[:idx:idx], s.zones[idx+1:]...)
	switch {
	case len(s.zones) == 0:
		s.current = -1
	case idx > 0:
		s.current = idx - 1
	default:
		s.current = 0
	}
	s.redistribute()
	return s.plan, nil
}

// SetQuantity cambia la cantidad total y redistribuye.
func (s *ZoneSelection) SetQuantity(quantity int64) DistributionPlan {
	s.quantity = quantity
	s.redistribute()
	return s.plan
}

// Current devuelve la zona seleccionada, si hay.
func (s *ZoneSelection) Current() (entity.Location, bool) {
	if s.current < 0 || s.current >= len(s.zones) {
		return entity.Location{}, false
	}
	return s.zones[s.current], true
}

// Zones devuelve una copia de las zonas en orden del operador.
func (s *ZoneSelection) Zones() []entity.Location {
	out := make([]entity.Location, len(s.zones))
	copy(out, s.zones)
	return out
}

// Plan devuelve el último plan calculado.
func (s *ZoneSelection) Plan() DistributionPlan { return s.plan }

func (s *ZoneSelection) redistribute() {
	s.plan = Distribute(s.quantity, s.zones)
}
