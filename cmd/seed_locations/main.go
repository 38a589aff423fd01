// seed_locations genera el script SQL que carga el catálogo de zonas y pisos/partes
// a partir del JSON usado por el backend en memoria.
//
// Uso: go run ./cmd/seed_locations [ruta/locations.json] [salida.sql]
// Por defecto lee config/locations.json y escribe en
// internal/infrastructure/postgres/seed/locations.sql.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/postgres"
)

func main() {
	root := findModuleRoot()
	catalogPath := filepath.Join(root, "config", "locations.json")
	if len(os.Args) > 1 {
		catalogPath = os.Args[1]
	}
	outPath := filepath.Join(root, "internal", "infrastructure", "postgres", "seed", "locations.sql")
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}

	catalog, err := memory.LoadCatalogFile(catalogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer catálogo: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Crear directorio: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(outPath, []byte(postgres.CatalogSeedSQL(catalog)), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}

	subs := 0
	for _, l := range catalog {
		subs += len(l.SubLocations)
	}
	fmt.Printf("Generado %s: %d zonas, %d sububicaciones\n", outPath, len(catalog), subs)
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
