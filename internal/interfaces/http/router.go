package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	appinventory "github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/observability"
)

// RouterDeps dependencias para el router. Metrics y Jobs son opcionales.
type RouterDeps struct {
	Ledger    *appinventory.LedgerUseCase
	Scan      *appinventory.ScanUseCase
	Integrity *appinventory.IntegrityUseCase
	Jobs      IntegrityEnqueuer
	Metrics   *observability.Metrics
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Use(deps.Metrics.Middleware())
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	inv := app.Group("/api/inventory", OperatorMiddleware())

	ledger := NewLedgerHandler(deps.Ledger, deps.Integrity, deps.Jobs)
	inv.Get("/locations", ledger.ListLocations)
	inv.Get("/products/:productId/stock", ledger.GetStock)
	inv.Get("/products/:productId/movements", ledger.ListMovements)
	inv.Post("/allocations/preview", ledger.PreviewAllocation)
	inv.Post("/distributions/preview", ledger.PreviewDistribution)
	inv.Post("/entrees", ledger.RegisterEntree)
	inv.Post("/complements", ledger.RegisterComplement)
	inv.Post("/sorties", ledger.RegisterSortie)
	inv.Post("/transfers", ledger.Transfer)
	inv.Post("/quality-releases", ledger.ReleaseQuarantine)
	inv.Get("/integrity", ledger.CheckIntegrity)
	inv.Post("/integrity/scans", ledger.EnqueueIntegrity)

	scan := NewScanHandler(deps.Scan)
	sessions := inv.Group("/scan-sessions")
	sessions.Post("/", scan.Start)
	sessions.Get("/:id", scan.Get)
	sessions.Post("/:id/scans", scan.Scan)
	sessions.Post("/:id/confirm", scan.Confirm)
	sessions.Post("/:id/decline", scan.Decline)
	sessions.Post("/:id/commit", scan.Commit)
	sessions.Delete("/:id", scan.Cancel)
}
