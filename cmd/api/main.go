package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/classpulse/support-service/internal/api/http"
	"github.com/classpulse/support-service/internal/api/http/handlers"
	"github.com/classpulse/support-service/internal/auth"
	"github.com/classpulse/support-service/internal/cache"
	"github.com/classpulse/support-service/internal/config"
	"github.com/classpulse/support-service/internal/events"
	"github.com/classpulse/support-service/internal/observability"
	"github.com/classpulse/support-service/internal/persistence"
	"github.com/classpulse/support-service/internal/repository"
	"github.com/classpulse/support-service/internal/service"
	"github.com/classpulse/support-service/internal/worker"
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

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	responseRepo := repository.NewResponseRepository(pool)
	historyRepo := repository.NewTicketHistoryRepository(pool)
	staffDir := repository.NewStaffDirectory(pool)

	dispatcher := events.NewInMemoryDispatcher()
	kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)

	var ticketCache *cache.TicketCache
	if cfg.Cache.Enabled {
		ticketCache = cache.NewTicketCache(redis.Client, cfg.Cache.TicketTTL(), logger)
	}

	authService := service.NewAuthService(*cfg, userRepo)
	supportService := service.NewSupportService(service.SupportDependencies{
		TicketRepo:   ticketRepo,
		ResponseRepo: responseRepo,
		Staff:        staffDir,
		HistoryRepo:  historyRepo,
		Dispatcher:   dispatcher,
		Cache:        ticketCache,
	})
	adminService := service.NewAdminService(userRepo)
	notificationService := service.NewNotificationService(dispatcher, kafkaPublisher, logger)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Support:        handlers.NewSupportHandler(supportService),
		Admin:          handlers.NewAdminHandler(adminService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	_ = kafkaPublisher.Close()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
