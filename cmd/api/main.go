package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/pispas/incident-service/internal/api/http"
	"github.com/pispas/incident-service/internal/api/http/handlers"
	"github.com/pispas/incident-service/internal/config"
	"github.com/pispas/incident-service/internal/observability"
	"github.com/pispas/incident-service/internal/persistence"
	"github.com/pispas/incident-service/internal/repository"
	"github.com/pispas/incident-service/internal/service"
	"github.com/pispas/incident-service/internal/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()

	pool := pg.PoolHandle()
	incidentRepo := repository.NewIncidentRepository(pool)
	noteRepo := repository.NewIncidentNoteRepository(pool)
	historyRepo := repository.NewIncidentHistoryRepository(pool)
	orderRepo := repository.NewPurchaseOrderRepository(pool)
	orderSequence := repository.NewOrderSequence(redis.Client, orderRepo, logger)

	dispatcher := webhook.NewDispatcher(cfg.Webhook, logger)
	defer dispatcher.Close()

	incidentService := service.NewIncidentService(service.IncidentDependencies{
		IncidentRepo: incidentRepo,
		NoteRepo:     noteRepo,
		HistoryRepo:  historyRepo,
		Sender:       dispatcher,
		Logger:       logger,
	})
	orderService := service.NewPurchaseOrderService(orderRepo, orderSequence, logger)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	incidentsHandler := handlers.NewIncidentsHandler(incidentService)
	ordersHandler := handlers.NewPurchaseOrdersHandler(orderService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Incidents:      incidentsHandler,
		PurchaseOrders: ordersHandler,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
