package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"

	_ "github.com/jhoicas/Inventario-ledger/docs"
	appinventory "github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/jobs"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/messaging"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/Inventario-ledger/internal/infrastructure/redis"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/scan"
	httpRouter "github.com/jhoicas/Inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/Inventario-ledger/internal/observability"
	"github.com/jhoicas/Inventario-ledger/pkg/config"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

// backend repositorios y ejecutor de transacciones del ledger.
type backend struct {
	tx        appinventory.TxRunner
	movements repository.MovementRepository
	locations repository.LocationRepository
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("backend", cfg.Ledger.Backend).
		Msg("iniciando aplicación")

	ctx := context.Background()
	be, err := openBackend(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar backend del ledger")
	}
	defer be.close()

	// Sesiones de escaneo: Redis si hay dirección, si no en memoria (una sola instancia).
	var sessions repository.ScanSessionRepository = memory.NewSessionStore()
	if cfg.Redis.Addr != "" {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		sessions = infraredis.NewSessionStore(rdb)
	}

	var publisher appinventory.EventPublisher
	if cfg.AMQP.URL != "" {
		rmq, err := messaging.Dial(cfg.AMQP.URL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a RabbitMQ")
		}
		defer rmq.Close()
		pub, err := messaging.NewPublisher(rmq, cfg.AMQP.Exchange, cfg.App.Name, log)
		if err != nil {
			log.Fatal().Err(err).Msg("declarar exchange de eventos")
		}
		publisher = pub
	}

	metrics := observability.NewMetrics()

	ledgerUC := appinventory.NewLedgerUseCase(be.tx, be.movements, be.locations, publisher, metrics, log,
		appinventory.Config{MaxConflictRetries: cfg.Ledger.MaxRetries, ScanSessionTTL: cfg.Ledger.ScanSessionTTL})
	scanUC := appinventory.NewScanUseCase(ledgerUC, sessions, scan.Decoder{})
	integrityUC := appinventory.NewIntegrityUseCase(be.movements, log)

	var enqueuer httpRouter.IntegrityEnqueuer
	if cfg.Redis.Addr != "" {
		client := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer client.Close()
		enqueuer = client
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventario Ledger API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:    ledgerUC,
		Scan:      scanUC,
		Integrity: integrityUC,
		Jobs:      enqueuer,
		Metrics:   metrics,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	if cfg.Ledger.Backend == config.BackendMemory {
		catalog, err := memory.LoadCatalogFile(cfg.Ledger.CatalogFile)
		if err != nil {
			return nil, err
		}
		store := memory.NewStore(catalog)
		return &backend{tx: store, movements: store.Movements(), locations: store.Locations(), close: func() {}}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &backend{
		tx:        postgres.NewTxRunner(pool),
		movements: postgres.NewMovementRepository(pool),
		locations: postgres.NewLocationRepository(pool),
		close:     pool.Close,
	}, nil
}
