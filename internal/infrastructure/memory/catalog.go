package memory

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

type catalogFile struct {
	Locations []catalogLocation `json:"locations"`
}

type catalogLocation struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	SubLocations []catalogSubLoc `json:"sub_locations"`
}

type catalogSubLoc struct {
	ID            int64  `json:"id"`
	Kind          string `json:"kind"`
	Name          string `json:"name"`
	Position      int    `json:"position"`
	TotalCapacity int64  `json:"total_capacity"`
}

// LoadCatalogFile lee el catálogo de zonas desde un archivo JSON.
func LoadCatalogFile(path string) ([]entity.Location, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("abrir catálogo: %w", err)
	}
	defer f.Close()
	return LoadCatalog(f)
}

// LoadCatalog decodifica y valida el catálogo: ids únicos (también entre pisos de
// distintas zonas), tipo etage/part y capacidad no negativa.
func LoadCatalog(r io.Reader) ([]entity.Location, error) {
	var file catalogFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decodificar catálogo: %w", err)
	}
	zones := make(map[int64]bool)
	subs := make(map[int64]bool)
	out := make([]entity.Location, 0, len(file.Locations))
	for _, cl := range file.Locations {
		if cl.ID <= 0 || zones[cl.ID] {
			return nil, fmt.Errorf("%w: zona %d repetida o inválida", domain.ErrInvalidInput, cl.ID)
		}
		zones[cl.ID] = true
		loc := entity.Location{ID: cl.ID, Name: cl.Name}
		for _, cs := range cl.SubLocations {
			kind := entity.SubLocationKind(cs.Kind)
			if cs.ID <= 0 || subs[cs.ID] {
				return nil, fmt.Errorf("%w: sububicación %d repetida o inválida", domain.ErrInvalidInput, cs.ID)
			}
			if !kind.Valid() || cs.TotalCapacity < 0 {
				return nil, fmt.Errorf("%w: sububicación %d", domain.ErrInvalidInput, cs.ID)
			}
			subs[cs.ID] = true
			loc.SubLocations = append(loc.SubLocations, entity.SubLocation{
				ID:            cs.ID,
				LocationID:    cl.ID,
				Kind:          kind,
				Name:          cs.Name,
				Position:      cs.Position,
				TotalCapacity: cs.TotalCapacity,
			})
		}
		out = append(out, loc)
	}
	return out, nil
}
