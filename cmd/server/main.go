package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/tagrelay/internal/config"
	"github.com/wekeepgrowing/tagrelay/internal/forward"
	httpServer "github.com/wekeepgrowing/tagrelay/internal/infrastructure/http"
	"github.com/wekeepgrowing/tagrelay/internal/infrastructure/provider/bothelp"
	stripeProvider "github.com/wekeepgrowing/tagrelay/internal/infrastructure/provider/stripe"
	"github.com/wekeepgrowing/tagrelay/internal/metrics"
	"github.com/wekeepgrowing/tagrelay/internal/usecase"
	"github.com/wekeepgrowing/tagrelay/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewZapLogger(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		Development: cfg.Service.Environment != "production",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	// Metrics
	m := metrics.New(prometheus.DefaultRegisterer)

	// Remote platform clients
	directory := bothelp.NewClient(cfg.Service.BotHelp, zapLogger, m)
	customers := stripeProvider.NewCustomerStore(zapLogger)

	// Core pipeline
	resolver := usecase.NewResolver(customers, zapLogger)
	reconciler := usecase.NewReconciler(resolver, directory, customers, cfg.Service.BotHelp.Tag, zapLogger)
	forwarder := forward.NewForwarder(cfg.Service.ForwardURL, zapLogger)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize server
	httpSrv := httpServer.NewServer(cfg, zapLogger, reconciler, forwarder, m)

	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zapLogger.Info("Shutting down server...")

	if err := httpSrv.Shutdown(ctx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	zapLogger.Info("Server shut down successfully")
}
