package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/partline/quote-engine/internal/auth"
	"github.com/partline/quote-engine/internal/config"
	"github.com/partline/quote-engine/internal/handler"
	"github.com/partline/quote-engine/internal/infra/postgresql"
	"github.com/partline/quote-engine/internal/infra/postgresql/migrations"
	infraredis "github.com/partline/quote-engine/internal/infra/redis"
	"github.com/partline/quote-engine/internal/observability"
	"github.com/partline/quote-engine/internal/provider"
	"github.com/partline/quote-engine/internal/queue"
	"github.com/partline/quote-engine/internal/repository"
	"github.com/partline/quote-engine/internal/service"
	"github.com/partline/quote-engine/internal/transport"
)

func main() {
	// Local development convenience, absent .env files are fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}

	if err := migrations.Migrate(db); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("postgres underlying db init failed", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	mq, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatal("rabbitmq initialization failed", zap.Error(err))
	}
	defer mq.Close()
	publisher := queue.NewRabbitMQPublisher(mq)

	metrics := observability.NewMetrics()

	requestRepo := repository.NewGormRequestRepo(db)
	entryRepo := repository.NewGormEntryRepo(db)
	quoteRepo := repository.NewGormQuoteRepo(db)
	notificationRepo := repository.NewGormNotificationRepo(db)
	tierRepo := repository.NewGormTierRepo(db)
	acceptanceStore := repository.NewGormAcceptanceStore(db)

	notifier := service.NewNotifier(notificationRepo, logger)
	notifier.SetMetrics(metrics)

	tierResolver, err := infraredis.NewCachedTierResolver(rdb, tierRepo, logger)
	if err != nil {
		logger.Fatal("tier resolver initialization failed", zap.Error(err))
	}

	distributor, err := service.NewDistributor(entryRepo, tierResolver, logger)
	if err != nil {
		logger.Fatal("distributor initialization failed", zap.Error(err))
	}
	distributor.SetMetrics(metrics)

	requestService, err := service.NewRequestService(requestRepo, quoteRepo, distributor, logger)
	if err != nil {
		logger.Fatal("request service initialization failed", zap.Error(err))
	}

	limiter, err := infraredis.NewRedisRateLimiter(rdb, cfg.QuoteRateLimitPerMin)
	if err != nil {
		logger.Fatal("rate limiter initialization failed", zap.Error(err))
	}

	quoteService, err := service.NewQuoteService(quoteRepo, entryRepo, requestRepo, notifier, limiter, logger)
	if err != nil {
		logger.Fatal("quote service initialization failed", zap.Error(err))
	}
	quoteService.SetMetrics(metrics)

	acceptance, err := service.NewAcceptanceCoordinator(acceptanceStore, notifier, logger)
	if err != nil {
		logger.Fatal("acceptance coordinator initialization failed", zap.Error(err))
	}
	acceptance.SetMetrics(metrics)

	tierService, err := service.NewTierService(tierRepo, tierResolver, notifier, logger)
	if err != nil {
		logger.Fatal("tier service initialization failed", zap.Error(err))
	}

	deliveryWorker, err := service.NewDeliveryWorker(entryRepo, cfg.DeliveryScanInterval(), cfg.DeliveryBatchSize, logger)
	if err != nil {
		logger.Fatal("delivery worker initialization failed", zap.Error(err))
	}
	deliveryWorker.SetMetrics(metrics)

	sweeper, err := service.NewExpirySweeper(requestRepo, notifier, cfg.ExpiryScanInterval(), cfg.ExpiryWarnWindow(), logger)
	if err != nil {
		logger.Fatal("expiry sweeper initialization failed", zap.Error(err))
	}
	sweeper.SetMetrics(metrics)

	outbox, err := service.NewOutboxDispatcher(notificationRepo, publisher, cfg.OutboxScanInterval(), cfg.OutboxBatchSize, logger)
	if err != nil {
		logger.Fatal("outbox dispatcher initialization failed", zap.Error(err))
	}
	outbox.SetMetrics(metrics)

	if cfg.GatewayWebhookURL != "" {
		webhook, err := provider.NewWebhookProvider(cfg.GatewayWebhookURL)
		if err != nil {
			logger.Fatal("gateway webhook initialization failed", zap.Error(err))
		}
		outbox.SetWebhook(webhook)
	}

	authenticator, err := auth.NewAuthenticator(cfg.JWTSecret)
	if err != nil {
		logger.Fatal("authenticator initialization failed", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: transport.ErrorHandler(logger),
	})
	app.Use(requestid.New())
	app.Use(metrics.HTTPMiddleware())

	handler.RegisterHealthRoutes(app, sqlDB, rdb)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	app.Use(authenticator.Middleware())
	if err := handler.RegisterRequestRoutes(app, requestService, acceptance); err != nil {
		logger.Fatal("request routes registration failed", zap.Error(err))
	}
	if err := handler.RegisterQuoteRoutes(app, quoteService); err != nil {
		logger.Fatal("quote routes registration failed", zap.Error(err))
	}
	if err := handler.RegisterNotificationRoutes(app, notifier); err != nil {
		logger.Fatal("notification routes registration failed", zap.Error(err))
	}
	if err := handler.RegisterSellerRoutes(app, tierService); err != nil {
		logger.Fatal("seller routes registration failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return deliveryWorker.Start(gctx) })
	g.Go(func() error { return sweeper.Start(gctx) })
	g.Go(func() error { return outbox.Start(gctx) })
	g.Go(func() error {
		logger.Info("quote-engine api started", zap.Int("port", cfg.APIPort))
		return app.Listen(fmt.Sprintf(":%d", cfg.APIPort))
	})
	g.Go(func() error {
		<-gctx.Done()
		return app.Shutdown()
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("quote-engine terminated", zap.Error(err))
	}

	logger.Info("quote-engine stopped")
}
