package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-bot/internal/api/http"
	"github.com/spec-kit/ticket-bot/internal/api/http/handlers"
	"github.com/spec-kit/ticket-bot/internal/auth"
	"github.com/spec-kit/ticket-bot/internal/catalog"
	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/discord"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/observability"
	"github.com/spec-kit/ticket-bot/internal/persistence"
	"github.com/spec-kit/ticket-bot/internal/registry"
	"github.com/spec-kit/ticket-bot/internal/service"
	"github.com/spec-kit/ticket-bot/internal/worker"
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

	var registryOpts []registry.Option
	var redis *persistence.Redis
	if cfg.Redis.Addr != "" {
		redis = persistence.NewRedis(cfg.Redis, logger)
		defer redis.Close()
		registryOpts = append(registryOpts, registry.WithSnapshot(persistence.NewTicketSnapshotStore(redis)))
	} else {
		logger.Warn("REDIS_ADDR not provided; open tickets will not survive a restart")
	}

	reg := registry.New(logger, registryOpts...)
	if err := reg.Restore(ctx); err != nil {
		logger.Fatal("failed to restore ticket snapshot", zap.Error(err))
	}

	gateway := discord.NewClient(cfg.Discord, logger)
	cat := catalog.New(cfg.Discord.CategoryRoleIDs)
	dispatcher := events.NewInMemoryDispatcher()

	auditService := service.NewAuditService(dispatcher, logger)
	worker.StartAuditWorker(auditService)

	archiver := service.NewTranscriptArchiver(gateway, logger)
	lifecycle := service.NewTicketLifecycle(service.LifecycleConfig{
		GuildID:        cfg.Discord.GuildID,
		PanelChannelID: cfg.Discord.PanelChannelID,
		LogChannelID:   cfg.Discord.LogChannelID,
		OverseerRoleID: cfg.Discord.OverseerRoleID,
	}, service.LifecycleDependencies{
		Registry:   reg,
		Gateway:    gateway,
		Catalog:    cat,
		Archiver:   archiver,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics)

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, redis, metrics)
	interactionsHandler := handlers.NewInteractionsHandler(lifecycle, gateway, metrics, logger)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Interactions:   interactionsHandler,
		AuthMiddleware: auth.InteractionAuthMiddleware(cfg.Discord.PublicKey),
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
