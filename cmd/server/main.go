package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	appOrders "github.com/wms/backend/internal/application/orders"
	appShipping "github.com/wms/backend/internal/application/shipping"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/cache"
	"github.com/wms/backend/internal/infrastructure/carrier"
	"github.com/wms/backend/internal/infrastructure/config"
	"github.com/wms/backend/internal/infrastructure/event"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/infrastructure/persistence"
	"github.com/wms/backend/internal/infrastructure/storage"
	"github.com/wms/backend/internal/infrastructure/telemetry"
	"github.com/wms/backend/internal/interfaces/http/handler"
	"github.com/wms/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting order sync backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	orderRepo := persistence.NewGormOrderRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	reservationRepo := persistence.NewGormStockReservationRepository(db.DB)
	configRepo := persistence.NewGormSenderConfigRepository(db.DB)
	ruleRepo := persistence.NewGormSenderRuleRepository(db.DB)
	mappingRepo := persistence.NewGormClientMappingRepository(db.DB)

	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	carrierSelector, err := carrier.NewHTTPSelector(carrier.Config{
		Endpoint:       cfg.Carrier.Endpoint,
		APIKey:         cfg.Carrier.APIKey,
		RequestTimeout: cfg.Carrier.RequestTimeout,
	})
	if err != nil {
		log.Fatal("Failed to initialize carrier selector", zap.Error(err))
	}

	var labelArchiver appOrders.LabelArchiver
	if cfg.Storage.Enabled {
		labelArchiver, err = storage.NewS3LabelStore(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize label storage", zap.Error(err))
		}
		log.Info("Label archiving enabled", zap.String("bucket", cfg.Storage.Bucket))
	}

	eventBus := event.NewInMemoryEventBus(log)

	attributionService := appShipping.NewAttributionService(ruleRepo, configRepo, carrierSelector, log)
	importService := appOrders.NewOrderImportService(
		orderRepo, productRepo, reservationRepo, mappingRepo, configRepo,
		attributionService, eventBus, log,
	)
	queryService := appOrders.NewOrderQueryService(orderRepo)
	webhookService := appOrders.NewOrderWebhookService(
		orderRepo, idempotencyStore,
		shared.IdempotencyConfig{TTL: cfg.Sync.IdempotencyTTL, Enabled: true},
		labelArchiver, eventBus, log,
	)

	retryWorker := appShipping.NewCarrierRetryWorker(orderRepo, attributionService, appShipping.CarrierRetryConfig{
		PollInterval: cfg.Carrier.RetryInterval,
		BatchSize:    cfg.Carrier.RetryBatchSize,
		MaxAttempts:  cfg.Carrier.MaxAttempts,
	}, log)
	retryWorker.Start(ctx)
	defer retryWorker.Stop()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	r := router.NewRouter(engine, router.WithWebhookToken(cfg.HTTP.WebhookToken))
	r.UseDefaults(log, cfg.HTTP, cfg.Telemetry)

	systemHandler := handler.NewSystemHandler(db)
	systemHandler.RegisterRoutes(engine)

	r.Register(handler.NewSyncHandler(importService, cfg.Sync.MaxBatchSize)).
		RegisterTenant(handler.NewOrderHandler(queryService)).
		RegisterWebhook(handler.NewWebhookHandler(webhookService)).
		Setup()

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "debug":
		return gormlogger.Info
	case "warn", "warning":
		return gormlogger.Warn
	case "error":
		return gormlogger.Error
	default:
		return gormlogger.Warn
	}
}
