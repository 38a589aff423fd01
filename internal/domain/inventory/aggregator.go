// Package inventory contiene el motor del ledger de movimientos: agregación de stock,
// asignación FIFO, distribución por capacidad, transferencias y sesiones de escaneo.
// Todas las funciones son puras o con estado acotado a una sesión; la persistencia
// y la concurrencia viven en la capa de aplicación.
package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// View selecciona qué registros cuentan en la agregación.
type View int

const (
	// ViewPhysical incluye todo: disponibilidad física real (tramos de transferencia incluidos).
	ViewPhysical View = iota
	// ViewReporting excluye tramos de transferencia y liberaciones de calidad,
	// para los reportes de Entrée/Sortie ordinarios.
	ViewReporting
)

// ParseView convierte el parámetro de consulta en View (por defecto física).
func ParseView(s string) View {
	if s == "reporting" {
		return ViewReporting
	}
	return ViewPhysical
}

func (v View) String() string {
	if v == ViewReporting {
		return "reporting"
	}
	return "physical"
}

func (v View) includes(r entity.MovementRecord) bool {
	if v == ViewReporting {
		return !r.IsTransferLeg && r.Operation != entity.OperationQualityRelease
	}
	return true
}

// Aggregate reconstruye el stock de un producto por (lote, zona, sububicación).
// Solo devuelve grupos con disponible > 0.
func Aggregate(records []entity.MovementRecord, productID string, view View) map[entity.GroupKey]entity.StockGroup {
	all := AggregateAll(records, productID, view)
	for k, g := range all {
		if g.Available <= 0 {
			delete(all, k)
		}
	}
	return all
}

// AggregateAll igual que Aggregate pero conserva los grupos agotados o negativos.
func AggregateAll(records []entity.MovementRecord, productID string, view View) map[entity.GroupKey]entity.StockGroup {
	ordered := ledgerOrder(records, productID, view)
	groups := make(map[entity.GroupKey]entity.StockGroup)
	for _, r := range ordered {
		key := r.Key()
		g, ok := groups[key]
		if !ok {
			g = entity.StockGroup{
				Key:         key,
				ProductID:   r.ProductID,
				ProductType: r.ProductType,
				UnitCost:    decimal.Zero,
			}
		}
		switch r.Direction {
		case entity.DirectionEntree:
			g.UnitCost = foldCost(g.Available, g.UnitCost, r.Quantity, r.UnitCost)
			g.Entree += r.Quantity
		case entity.DirectionSortie:
			g.Sortie += r.Quantity
		}
		g.Available = g.Entree - g.Sortie
		// El registro más reciente manda sobre calidad y procedencia.
		g.QualityStatus = r.QualityStatus.Normalize()
		if r.SubLocationKind != "" {
			g.SubLocationKind = r.SubLocationKind
		}
		if r.ProductType != "" {
			g.ProductType = r.ProductType
		}
		if r.FabricationDate != nil {
			g.FabricationDate = r.FabricationDate
		}
		if r.ExpirationDate != nil {
			g.ExpirationDate = r.ExpirationDate
		}
		g.LastMovementAt = r.CreatedAt
		groups[key] = g
	}
	return groups
}

// NegativeGroups devuelve los grupos con disponible físico negativo (violación del invariante).
func NegativeGroups(records []entity.MovementRecord, productID string) []entity.StockGroup {
	var out []entity.StockGroup
	for _, g := range Candidates(AggregateAll(records, productID, ViewPhysical)) {
		if g.Available < 0 {
			out = append(out, g)
		}
	}
	return out
}

// Candidates aplana el mapa en un slice ordenado por clave, entrada estable para el asignador.
func Candidates(groups map[entity.GroupKey]entity.StockGroup) []entity.StockGroup {
	out := make([]entity.StockGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return keyLess(out[i].Key, out[j].Key) })
	return out
}

// LotGroups filtra los grupos de un lote, opcionalmente limitados a una zona (0 = todas).
func LotGroups(groups map[entity.GroupKey]entity.StockGroup, lotID string, locationID int64) []entity.StockGroup {
	var out []entity.StockGroup
	for _, g := range Candidates(groups) {
		if g.Key.LotID != lotID {
			continue
		}
		if locationID != 0 && g.Key.LocationID != locationID {
			continue
		}
		out = append(out, g)
	}
	return out
}

// ledgerOrder filtra por producto y vista y ordena por (CreatedAt, ID) sobre una copia.
func ledgerOrder(records []entity.MovementRecord, productID string, view View) []entity.MovementRecord {
	out := make([]entity.MovementRecord, 0, len(records))
	for _, r := range records {
		if r.ProductID != productID || !view.includes(r) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func keyLess(a, b entity.GroupKey) bool {
	if a.LotID != b.LotID {
		return a.LotID < b.LotID
	}
	if a.LocationID != b.LocationID {
		return a.LocationID < b.LocationID
	}
	return a.SubLocationID < b.SubLocationID
}
