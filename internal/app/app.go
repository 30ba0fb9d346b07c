package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/cszshop/checkout-api/internal/domain/catalog"
	"github.com/cszshop/checkout-api/internal/domain/checkout"
	"github.com/cszshop/checkout-api/internal/domain/coupon"
	"github.com/cszshop/checkout-api/internal/domain/pricing"
	"github.com/cszshop/checkout-api/internal/gateway"
	"github.com/cszshop/checkout-api/internal/handler"
	"github.com/cszshop/checkout-api/internal/storage/redisstore"
	"github.com/cszshop/checkout-api/internal/storage/rest"
	"github.com/cszshop/checkout-api/pkg/health"
	"github.com/cszshop/checkout-api/pkg/httpmiddleware"
)

// newMux combines the health probes with the checkout API. Checkout routes
// live at the root: clients call POST /checkout/create-session, not a
// prefixed variant.
func newMux(healthSvc *health.Health, api http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/", api)
	return mux
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	vatRate, err := cfg.vatRate()
	if err != nil {
		return err
	}

	// Commerce backend client and the repositories built on it.
	storeClient := rest.NewClient(cfg.Store.BaseURL, cfg.Store.Token)
	catalogStore := rest.NewCatalogStore(storeClient)
	couponRepo := rest.NewCouponRepository(storeClient)
	orderRepo := rest.NewOrderRepository(storeClient)

	// Payment gateway client.
	gatewayClient := gateway.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.SecretKey)

	// Attempt store: shared via Redis when configured, in-process otherwise.
	var (
		attempts    checkout.AttemptStore
		redisClient *redis.Client
	)
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		attempts = redisstore.NewAttemptStore(redisClient, cfg.Checkout.AttemptTTL)
		lg.Info("Using redis attempt store", zap.String("addr", cfg.Redis.Addr))
	} else {
		mem := checkout.NewMemoryAttemptStore(cfg.Checkout.AttemptTTL)
		mem.StartCleanup(ctx)
		attempts = mem
		lg.Info("Using in-memory attempt store")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("store", 5*time.Second, health.PingCheck(storeClient))
	if redisClient != nil {
		healthSvc.AddReadinessCheck("redis", 5*time.Second, func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Domain services.
	resolver := catalog.NewResolver(catalogStore)
	evaluator := coupon.NewEvaluator(couponRepo)
	calc := pricing.Calculator{Shipping: cfg.shippingPolicy(), VATRate: vatRate}
	checkoutSvc := checkout.NewService(cfg.checkoutConfig(), resolver, evaluator, calc, orderRepo, gatewayClient, attempts)

	// HTTP handlers.
	h := handler.NewHandler(checkoutSvc)

	mux := newMux(healthSvc, h.Routes())

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(
			otelhttp.NewHandler(mux, "checkout-api",
				otelhttp.WithTracerProvider(m.TracerProvider()),
				otelhttp.WithMeterProvider(m.MeterProvider()),
			),
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization", "X-Idempotency-Key"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
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
