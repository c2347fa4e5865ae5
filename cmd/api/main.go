package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/stockmaster/internal/application/auth"
	"github.com/jhoicas/stockmaster/internal/application/inventory"
	"github.com/jhoicas/stockmaster/internal/application/usecase"
	"github.com/jhoicas/stockmaster/internal/infrastructure/memory"
	"github.com/jhoicas/stockmaster/internal/infrastructure/metrics"
	"github.com/jhoicas/stockmaster/internal/infrastructure/migration"
	"github.com/jhoicas/stockmaster/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stockmaster/internal/interfaces/http"
	"github.com/jhoicas/stockmaster/pkg/config"
	"github.com/jhoicas/stockmaster/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.StoreDriver).
		Str("warehouse", cfg.Warehouse.Code).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var txRunner inventory.TxRunner
	switch cfg.App.StoreDriver {
	case config.StoreDriverMemory:
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		txRunner = memory.NewStore()
	default:
		if cfg.DB.MigrateOnStart {
			if err := migrateUp(cfg.DB.ConnectionString(), log); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner = postgres.NewTxRunner(pool)
	}

	m := metrics.New(cfg.Metrics.Prefix)
	avail := inventory.NewAvailabilityCalculator(log)
	ledger := inventory.NewLedger(m, log)
	reservations := inventory.NewReservationManager(avail, log)
	refs := inventory.NewReferenceGenerator(cfg.Warehouse.Code)

	documentUC := inventory.NewDocumentUseCase(txRunner, refs, reservations, ledger, m, log)
	stockUC := inventory.NewStockUseCase(txRunner, avail, ledger, log)
	productUC := usecase.NewProductUseCase(txRunner)
	warehouseUC := usecase.NewWarehouseUseCase(txRunner)
	authUC := auth.NewAuthUseCase(txRunner, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.ExpMinutes,
		Issuer:     cfg.JWT.Issuer,
	}, log)

	if cfg.Bootstrap.AdminEmail != "" {
		if _, err := authUC.EnsureAdmin(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword); err != nil {
			log.Fatal().Err(err).Msg("crear admin inicial")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		DocumentUC:  documentUC,
		StockUC:     stockUC,
		ProductUC:   productUC,
		WarehouseUC: warehouseUC,
		AuthUC:      authUC,
		Metrics:     m,
		JWTSecret:   cfg.JWT.Secret,
		JWTIssuer:   cfg.JWT.Issuer,
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

func migrateUp(databaseURL string, log *logger.Logger) error {
	m, err := migration.New(databaseURL, log)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}
