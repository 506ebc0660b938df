package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cjfeed/backend/config"
	httpDelivery "github.com/cjfeed/backend/internal/delivery/http"
	"github.com/cjfeed/backend/internal/infrastructure/cj"
	"github.com/cjfeed/backend/internal/infrastructure/logger"
	"github.com/cjfeed/backend/internal/infrastructure/metrics"
	"github.com/cjfeed/backend/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Server.Environment, cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	zl.Info("starting cjfeed backend",
		zap.String("version", httpDelivery.Version),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	reg := metrics.NewRegistry()

	// Initialize infrastructure dependencies
	cjClient := cj.NewClient(cj.ClientConfig{
		AccessToken:       cfg.CJ.AccessToken,
		BaseURL:           cfg.CJ.BaseURL,
		Timeout:           cfg.CJ.Timeout,
		RequestsPerSecond: cfg.CJ.RequestsPerSecond,
		Burst:             cfg.CJ.Burst,
	}, zl, reg)

	if cfg.HasAccessToken() {
		zl.Info("CJ API configured", zap.String("base_url", cfg.CJ.BaseURL))
	} else {
		zl.Warn("CJ access token not configured; feed requests will fail until CJ_TOKEN is set",
			zap.String("base_url", cfg.CJ.BaseURL))
	}

	// Initialize usecase layer
	feedService := usecase.NewFeedService(
		cjClient,
		zl,
		reg.DetailsSkipped,
		usecase.FeedServiceConfig{
			DefaultPageSize: cfg.Feed.DefaultPageSize,
			MaxPageSize:     cfg.Feed.MaxPageSize,
			MapOptions: cj.MapOptions{
				DefaultVendor:   cfg.Feed.DefaultVendor,
				DefaultCurrency: cfg.Feed.DefaultCurrency,
			},
		},
	)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(feedService, zl, reg.ProductsRendered)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler, zl, reg)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		zl.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down server", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}
	zl.Info("server exited")
}
