package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/kevin07696/wompi-go/internal/handlers/webhook"
	"github.com/kevin07696/wompi-go/pkg/middleware"
	"github.com/kevin07696/wompi-go/pkg/observability"
	"github.com/kevin07696/wompi-go/pkg/shutdown"
	"go.uber.org/zap"
)

// WebhookPath is where Wompi posts event notifications
const WebhookPath = "/webhooks/wompi"

// Serve runs the event receiver and the metrics listener until ctx is done
func (a *App) Serve(ctx context.Context) error {
	if a.cfg.Wompi.EventsSecret == "" {
		return errors.New("events secret is required to serve webhooks")
	}

	health := observability.NewHealthChecker()
	health.Register("events_secret", func(context.Context) error {
		if a.cfg.Wompi.EventsSecret == "" {
			return errors.New("not configured")
		}
		return nil
	})

	limiter := middleware.NewRateLimiter(a.cfg.Webhook.RateLimit, a.cfg.Webhook.Burst, a.logger)

	handler := webhook.NewEventHandler(a.cfg.Wompi.EventsSecret, webhook.LoggingSink(a.logger), a.logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Webhook.Port),
		Handler:           newRouter(handler, limiter, health),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	metricsServer := observability.StartMetricsServer(strconv.Itoa(a.cfg.Webhook.MetricsPort), health, a.logger)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Webhook receiver listening",
			zap.Int("port", a.cfg.Webhook.Port),
			zap.String("path", WebhookPath),
			zap.Int("metrics_port", a.cfg.Webhook.MetricsPort),
			zap.String("environment", a.cfg.Wompi.Environment),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Stops in reverse: webhook server, metrics server, rate limiter
	sm := shutdown.NewManager(a.logger, 5*time.Second)
	sm.RegisterNoErr("rate_limiter", limiter.Shutdown)
	sm.RegisterHTTPServer("metrics_server", metricsServer)
	sm.RegisterHTTPServer("webhook_server", server)

	var serveErr error
	select {
	case <-ctx.Done():
		a.logger.Info("Shutting down servers...")
	case serveErr = <-errCh:
	}

	if err := sm.Shutdown(); err != nil && serveErr == nil {
		serveErr = err
	}

	a.logger.Info("Servers stopped")
	return serveErr
}

func newRouter(handler *webhook.EventHandler, limiter *middleware.RateLimiter, health *observability.HealthChecker) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", health.HealthHandler())

	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware)
		r.Post(WebhookPath, handler.HandleEvent)
	})

	return r
}
