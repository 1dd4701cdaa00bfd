package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"store-service/internal/api/handlers"
	"store-service/internal/cache"
	"store-service/internal/database"
	"store-service/internal/repository"
	"store-service/internal/service"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := database.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	pool, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}
	defer pool.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	rdb, err := cache.ConnectRedis(cfg)
	if err != nil {
		logger.Fatal("failed to connect redis", zap.Error(err))
	}
	defer rdb.Close()

	productRepo := repository.NewProductRepository(pool)
	cachedProducts := cache.NewCachedProductRepository(productRepo, rdb, logger)
	orderRepo := repository.NewOrderRepository(pool)
	movementRepo := repository.NewStockMovementRepository(pool)
	auditRepo := repository.NewAuditLogRepository(pool)

	auditSvc := service.NewAuditService(auditRepo, logger)
	notifier := service.NewLogNotifier(logger)

	orderSvc := service.NewOrderService(orderRepo, auditSvc, notifier, logger)
	orderSvc.SetCacheInvalidator(cachedProducts)
	productSvc := service.NewProductService(cachedProducts, auditSvc, logger)

	router := handlers.NewRouter(
		handlers.NewOrderHandler(orderSvc),
		handlers.NewProductHandler(productSvc),
		handlers.NewStockMovementHandler(movementRepo, auditSvc),
	)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
}

func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
