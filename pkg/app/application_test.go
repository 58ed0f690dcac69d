package app

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"eventbook/pkg/config"
	"eventbook/pkg/contracts"
	"eventbook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:            "8080",
		WebhookSecret:   "whsec_test",
		OTPSendRequests: 100,
		OTPSendWindow:   time.Minute,
		RequestTimeout:  5 * time.Second,
		IdempotencyTTL:  time.Minute,
		MaxRequestSize:  1 << 20,
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
	}
}

// routeFunc adapts a plain handler func into a route owner.
type routeFunc struct {
	method string
	path   string
	fn     httprouter.Handle
}

func (r routeFunc) RegisterRoutes(router *httprouter.Router) {
	router.Handle(r.method, r.path, r.fn)
}

func sign(body, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func (a *Application) stopWorkers() {
	a.idempotencyStore.Stop()
	a.webhookIdempotencyStore.Stop()
	a.rateLimiter.Stop()
}

// A client-supplied Idempotency-Key equal to a later webhook event id
// must not replay the cached app response over the webhook delivery.
func TestWebhookIdempotencyIsolatedFromAppChain(t *testing.T) {
	cfg := testConfig()
	a := NewApplication()

	appCalls := 0
	a.setAppHandler(cfg, []contracts.Handler{
		routeFunc{http.MethodPost, "/api/payments/create-order", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
			appCalls++
			w.WriteHeader(http.StatusOK)
		}},
	})

	webhookCalls := 0
	a.setWebhookHandler(cfg, routeFunc{http.MethodPost, webhookPath, func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		webhookCalls++
		w.WriteHeader(http.StatusOK)
	}})
	defer a.stopWorkers()

	appReq := httptest.NewRequest(http.MethodPost, "/api/payments/create-order", strings.NewReader(`{}`))
	appReq.Header.Set("Content-Type", "application/json")
	appReq.Header.Set("Idempotency-Key", "evt_shared_id")
	a.appHandler.ServeHTTP(httptest.NewRecorder(), appReq)

	if appCalls != 1 {
		t.Fatalf("expected 1 app call, got %d", appCalls)
	}

	body := `{"event":"payment.captured","payload":{}}`
	webhookReq := httptest.NewRequest(http.MethodPost, webhookPath, strings.NewReader(body))
	webhookReq.Header.Set("X-Razorpay-Signature", sign(body, cfg.WebhookSecret))
	webhookReq.Header.Set(webhookIdempotencyHeader, "evt_shared_id")

	rec := httptest.NewRecorder()
	a.webhookHandler.ServeHTTP(rec, webhookReq)

	if webhookCalls != 1 {
		t.Fatalf("expected the webhook handler to run, got %d calls", webhookCalls)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

// A repeated event id on the webhook chain itself is still deduplicated.
func TestWebhookEventIDReplayed(t *testing.T) {
	cfg := testConfig()
	a := NewApplication()

	a.setAppHandler(cfg, nil)
	webhookCalls := 0
	a.setWebhookHandler(cfg, routeFunc{http.MethodPost, webhookPath, func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		webhookCalls++
		w.WriteHeader(http.StatusOK)
	}})
	defer a.stopWorkers()

	body := `{"event":"payment.captured","payload":{}}`
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, webhookPath, strings.NewReader(body))
		req.Header.Set("X-Razorpay-Signature", sign(body, cfg.WebhookSecret))
		req.Header.Set(webhookIdempotencyHeader, "evt_once")
		a.webhookHandler.ServeHTTP(httptest.NewRecorder(), req)
	}

	if webhookCalls != 1 {
		t.Fatalf("expected 1 webhook call after replay, got %d", webhookCalls)
	}
}
