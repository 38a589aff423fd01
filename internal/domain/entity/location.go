package entity

// Location representa una zona física de almacenamiento subdividida en pisos o partes.
type Location struct {
	ID           int64
	Name         string
	SubLocations []SubLocation
}

// SubLocation piso (étage) o parte de una zona, con su capacidad.
// CurrentStock se deriva del ledger (todas las referencias).
type SubLocation struct {
	ID            int64
	LocationID    int64
	Kind          SubLocationKind
	Name          string
	Position      int // orden de catálogo dentro de la zona
	TotalCapacity int64
	CurrentStock  int64
}

// AvailableCapacity capacidad libre; nunca negativa.
func (s SubLocation) AvailableCapacity() int64 {
	free := s.TotalCapacity - s.CurrentStock
	if free < 0 {
		return 0
	}
	return free
}

// AvailableCapacity suma la capacidad libre de todas las sububicaciones.
func (l Location) AvailableCapacity() int64 {
	var total int64
	for _, s := range l.SubLocations {
		total += s.AvailableCapacity()
	}
	return total
}

// SubLocation busca una sububicación de la zona por ID.
func (l Location) SubLocation(id int64) (SubLocation, bool) {
	for _, s := range l.SubLocations {
		if s.ID == id {
			return s, true
		}
	}
	return SubLocation{}, false
}
