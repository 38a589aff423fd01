package dto

import "github.com/jhoicas/Inventario-ledger/internal/domain/entity"

// SubLocationDTO piso o parte con su ocupación.
type SubLocationDTO struct {
	ID                int64  `json:"id"`
	Kind              string `json:"kind"`
	Name              string `json:"name"`
	Position          int    `json:"position"`
	TotalCapacity     int64  `json:"total_capacity"`
	CurrentStock      int64  `json:"current_stock"`
	AvailableCapacity int64  `json:"available_capacity"`
}

// LocationDTO zona del catálogo.
type LocationDTO struct {
	ID                int64            `json:"id"`
	Name              string           `json:"name"`
	AvailableCapacity int64            `json:"available_capacity"`
	SubLocations      []SubLocationDTO `json:"sub_locations"`
}

func FromLocation(l entity.Location) LocationDTO {
	out := LocationDTO{
		ID:                l.ID,
		Name:              l.Name,
		AvailableCapacity: l.AvailableCapacity(),
		SubLocations:      make([]SubLocationDTO, 0, len(l.SubLocations)),
	}
	for _, s := range l.SubLocations {
		out.SubLocations = append(out.SubLocations, SubLocationDTO{
			ID:                s.ID,
			Kind:              string(s.Kind),
			Name:              s.Name,
			Position:          s.Position,
			TotalCapacity:     s.TotalCapacity,
			CurrentStock:      s.CurrentStock,
			AvailableCapacity: s.AvailableCapacity(),
		})
	}
	return out
}

func FromLocations(list []entity.Location) []LocationDTO {
	out := make([]LocationDTO, 0, len(list))
	for _, l := range list {
		out = append(out, FromLocation(l))
	}
	return out
}
