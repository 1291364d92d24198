package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	handlers "github.com/wekeepgrowing/tagrelay/internal/adapter/handler/http"
	"github.com/wekeepgrowing/tagrelay/internal/config"
	"github.com/wekeepgrowing/tagrelay/internal/forward"
	"github.com/wekeepgrowing/tagrelay/internal/metrics"
	"github.com/wekeepgrowing/tagrelay/internal/usecase"
)

type Server struct {
	config *config.Config
	logger *zap.Logger
	echo   *echo.Echo

	reconciler *usecase.Reconciler
	forwarder  *forward.Forwarder
	metrics    *metrics.Metrics
}

func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	reconciler *usecase.Reconciler,
	forwarder *forward.Forwarder,
	m *metrics.Metrics,
) *Server {
	e := echo.New()
	e.HideBanner = true

	// Initialize Stripe
	stripe.Key = cfg.Service.Stripe.SecretKey

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	return &Server{
		config:     cfg,
		logger:     logger,
		echo:       e,
		reconciler: reconciler,
		forwarder:  forwarder,
		metrics:    m,
	}
}

func (s *Server) Start() error {
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	// Prometheus metrics
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	webhookHandler := handlers.NewWebhookHandler(
		s.logger,
		s.config.Service.Stripe.WebhookSecret,
		s.reconciler,
		s.forwarder,
		s.metrics,
	)
	payHandler := handlers.NewPayHandler(s.logger, s.config.Service.PaymentLinks)

	// Webhook route: raw body, signature-authenticated
	s.echo.POST("/webhook", webhookHandler.HandleWebhook)

	// Payment link redirect
	s.echo.GET("/pay/:lang", payHandler.Redirect)

	// Internal/Debug routes
	internal := s.echo.Group("/internal")
	internal.GET("/webhook-data", webhookHandler.GetWebhookData)
}
