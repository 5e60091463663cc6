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
	"github.com/jhoicas/multitienda-api/internal/application/auth"
	"github.com/jhoicas/multitienda-api/internal/application/events"
	"github.com/jhoicas/multitienda-api/internal/application/ledger"
	"github.com/jhoicas/multitienda-api/internal/application/receiving"
	"github.com/jhoicas/multitienda-api/internal/application/shift"
	"github.com/jhoicas/multitienda-api/internal/application/transfer"
	"github.com/jhoicas/multitienda-api/internal/infrastructure/postgres"
	"github.com/jhoicas/multitienda-api/internal/infrastructure/redisevents"
	httpRouter "github.com/jhoicas/multitienda-api/internal/interfaces/http"
	"github.com/jhoicas/multitienda-api/pkg/config"
	"github.com/jhoicas/multitienda-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Publisher de eventos de transición: Redis Streams si está configurado,
	// no-op en desarrollo sin Redis.
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Redis.Addr != "" {
		redisPublisher, err := redisevents.New(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer redisPublisher.Close()
		publisher = redisPublisher
		log.Info().Str("stream", cfg.Redis.Stream).Msg("eventos de transición hacia Redis Streams")
	}

	invRepo := postgres.NewInventoryRepository(pool)
	movRepo := postgres.NewStockMovementRepository(pool)
	transferRepo := postgres.NewStockTransferRepository(pool)
	receivedRepo := postgres.NewReceivedStockRepository(pool)
	shiftRepo := postgres.NewShiftRepository(pool)
	swapRepo := postgres.NewShiftSwapRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	ledgerUC := ledger.New(txRunner, invRepo, movRepo)
	transferUC := transfer.New(txRunner, transferRepo, publisher, log)
	receivingUC := receiving.New(txRunner, receivedRepo, publisher, log)
	shiftUC := shift.New(txRunner, shiftRepo, swapRepo, publisher, log)
	authUC := auth.New(userRepo, cfg.JWT)

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
		Title:    "Multitienda API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		LedgerUC:    ledgerUC,
		TransferUC:  transferUC,
		ReceivingUC: receivingUC,
		ShiftUC:     shiftUC,
		AuthUC:      authUC,
		JWTSecret:   cfg.JWT.Secret,
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
