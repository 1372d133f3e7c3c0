// Package app wires configuration, storage, notifications and the HTTP
// server together.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/orders/internal/domain/order"
	"github.com/xenking/orders/internal/handler"
	"github.com/xenking/orders/internal/storage/observed"
	"github.com/xenking/orders/pkg/health"
	"github.com/xenking/orders/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("notifier", cfg.Notifier.Driver),
	)

	store, err := OpenRepository(ctx, lg, cfg.Storage)
	if err != nil {
		return errors.Wrap(err, "open repository")
	}
	defer store.Close()

	notifier, closeNotifier, err := OpenNotifier(ctx, lg, cfg.Notifier)
	if err != nil {
		return errors.Wrap(err, "open notifier")
	}
	defer closeNotifier()

	orders, err := observed.New(store.Orders, m.TracerProvider(), m.MeterProvider())
	if err != nil {
		return errors.Wrap(err, "instrument repository")
	}

	healthSvc := health.New()
	if store.Ping != nil {
		healthSvc.AddReadinessCheck(cfg.Storage.Driver, cfg.Storage.Timeout, store.Ping)
	}
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: NewHTTPHandler(ctx, cfg,
			order.NewService(orders, notifier),
			healthSvc,
			m.TracerProvider(), m.MeterProvider(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// NewHTTPHandler mounts the order routes and health probes behind the
// middleware chain. ctx bounds the rate limiter's background cleanup and
// carries the base logger.
func NewHTTPHandler(
	ctx context.Context,
	cfg *Config,
	orders handler.OrderService,
	healthSvc *health.Health,
	tp trace.TracerProvider,
	mp metric.MeterProvider,
) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	handler.NewHandler(orders).Register(mux)

	routeFinder := httpmiddleware.MakeRouteFinder(mux)
	return httpmiddleware.Wrap(mux,
		httpmiddleware.InjectLogger(zctx.From(ctx)),
		httpmiddleware.Recovery(),
		httpmiddleware.RequestID(),
		httpmiddleware.Instrument("orders-api", routeFinder, tp, mp),
		httpmiddleware.Labeler(routeFinder),
		httpmiddleware.LogRequests(routeFinder),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			Origins:          cfg.CORS.Origins,
			Headers:          []string{"Content-Type", "X-Request-ID"},
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           86400,
		}),
		httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
			Max:    cfg.RateLimit.Max,
			Window: cfg.RateLimit.Window,
		}),
	)
}
