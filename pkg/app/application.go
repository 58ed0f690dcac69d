package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"eventbook/pkg/config"
	"eventbook/pkg/contracts"
	"eventbook/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

const (
	webhookPath = "/api/payments/webhook"

	// Razorpay sends a unique id per webhook delivery.
	webhookIdempotencyHeader = "X-Razorpay-Event-Id"
)

// Handlers groups the route owners by the middleware chain they run
// behind. The webhook gets its own chain because signature
// verification must see the raw body and nothing else should.
type Handlers struct {
	Health  contracts.Handler
	App     []contracts.Handler
	Webhook contracts.Handler
}

type Application struct {
	cfg                     *config.Config
	server                  *http.Server
	idempotencyStore        *middleware.InMemoryIdempotencyStore
	webhookIdempotencyStore *middleware.InMemoryIdempotencyStore
	rateLimiter             *middleware.KeyRateLimiter
	healthHandler           http.Handler
	appHandler              http.Handler
	webhookHandler          http.Handler
	closers                 []func()
}

func NewApplication() *Application {
	return &Application{}
}

// AddCloser registers a shutdown hook. Hooks run in registration order
// after the HTTP server has drained.
func (a *Application) AddCloser(fn func()) {
	a.closers = append(a.closers, fn)
}

func (a *Application) SetApp(cfg *config.Config, handlers Handlers) {
	a.cfg = cfg
	a.setHealthHandler(cfg, handlers.Health)
	a.setAppHandler(cfg, handlers.App)
	a.setWebhookHandler(cfg, handlers.Webhook)
	a.setAppServer()
}

func (a *Application) setHealthHandler(cfg *config.Config, handler contracts.Handler) {
	healthRouter := httprouter.New()
	handler.RegisterRoutes(healthRouter)

	var h http.Handler = healthRouter
	h = middleware.RequestLogging(cfg.Log)(h)
	h = middleware.Recovery(cfg.Log)(h)
	a.healthHandler = h
	cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
}

func (a *Application) setAppHandler(cfg *config.Config, handlers []contracts.Handler) {
	appRouter := httprouter.New()
	for _, handler := range handlers {
		handler.RegisterRoutes(appRouter)
	}

	a.idempotencyStore = middleware.NewInMemoryIdempotencyStore(cfg.IdempotencyTTL)
	a.rateLimiter = middleware.NewKeyRateLimiter(
		cfg.OTPSendRequests,
		cfg.OTPSendWindow,
		otpSendEmailExtractor,
		cfg.Log,
	)

	var h http.Handler = appRouter
	h = middleware.Idempotency(a.idempotencyStore, "Idempotency-Key")(h)
	h = middleware.RequestTimeout(cfg.RequestTimeout)(h)
	h = middleware.KeyRateLimit(a.rateLimiter)(h)
	h = middleware.ContentTypeValidation(cfg.Log)(h)
	h = middleware.MaxRequestSize(int64(cfg.MaxRequestSize))(h)
	h = middleware.RequestLogging(cfg.Log)(h)
	h = middleware.Recovery(cfg.Log)(h)
	a.appHandler = h
	cfg.Log.Info("Application endpoints configured with full middleware stack")
}

func (a *Application) setWebhookHandler(cfg *config.Config, handler contracts.Handler) {
	webhookRouter := httprouter.New()
	handler.RegisterRoutes(webhookRouter)

	// Webhook event ids live in their own store so a client-supplied
	// Idempotency-Key can never collide with a provider event id and
	// replay a cached response over the webhook.
	a.webhookIdempotencyStore = middleware.NewInMemoryIdempotencyStore(cfg.IdempotencyTTL)

	var h http.Handler = webhookRouter
	h = middleware.Idempotency(a.webhookIdempotencyStore, webhookIdempotencyHeader)(h)
	h = middleware.RazorpaySignatureVerification(cfg.WebhookSecret, cfg.Log)(h)
	h = middleware.MaxRequestSize(int64(cfg.MaxRequestSize))(h)
	h = middleware.RequestLogging(cfg.Log)(h)
	h = middleware.Recovery(cfg.Log)(h)
	a.webhookHandler = h
	cfg.Log.Info("Webhook endpoint configured with signature verification")
}

// otpSendEmailExtractor rate limits only the code-send route; every
// other request passes through unkeyed.
func otpSendEmailExtractor(r *http.Request) string {
	if !strings.HasSuffix(r.URL.Path, "/otp/send") {
		return ""
	}
	return middleware.EmailBodyExtractor(r)
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.healthHandler)
	mux.Handle("/ready", a.healthHandler)
	mux.Handle(webhookPath, a.webhookHandler)
	mux.Handle("/", a.appHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		a.cfg.Log.Fatal("HTTP server failed", "error", err)

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	a.cfg.Log.Info("Stopping background workers...")
	a.idempotencyStore.Stop()
	a.webhookIdempotencyStore.Stop()
	a.rateLimiter.Stop()
	for _, closer := range a.closers {
		closer()
	}
	a.cfg.Log.Info("Background workers stopped")

	a.cfg.Log.Info("Server stopped gracefully")
}
