package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventbook/pkg/logger"
)

const testWebhookSecret = "whsec_test"

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
}

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func webhookRequest(body []byte, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set("X-Razorpay-Signature", signature)
	}
	return req
}

func TestRazorpaySignature_ValidSignaturePasses(t *testing.T) {
	body := []byte(`{"event":"payment.captured","payload":{}}`)

	var handlerBody []byte
	handler := RazorpaySignatureVerification(testWebhookSecret, testLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerBody, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusOK)
		}),
	)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, webhookRequest(body, sign(body, testWebhookSecret)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !bytes.Equal(handlerBody, body) {
		t.Error("expected body restored for the handler after verification")
	}
}

func TestRazorpaySignature_AlteredBodyRejected(t *testing.T) {
	body := []byte(`{"event":"payment.captured","payload":{}}`)
	signature := sign(body, testWebhookSecret)

	tampered := []byte(`{"event":"payment.captured","payload":{"extra":1}}`)

	called := false
	handler := RazorpaySignatureVerification(testWebhookSecret, testLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}),
	)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, webhookRequest(tampered, signature))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if called {
		t.Error("handler must not run for a tampered body")
	}
}

func TestRazorpaySignature_WrongSecretRejected(t *testing.T) {
	body := []byte(`{"event":"payment.captured","payload":{}}`)

	called := false
	handler := RazorpaySignatureVerification(testWebhookSecret, testLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}),
	)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, webhookRequest(body, sign(body, "other-secret")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if called {
		t.Error("handler must not run for a bad signature")
	}
}

func TestRazorpaySignature_MissingHeaderRejected(t *testing.T) {
	body := []byte(`{"event":"payment.captured","payload":{}}`)

	handler := RazorpaySignatureVerification(testWebhookSecret, testLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler must not run without a signature header")
		}),
	)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, webhookRequest(body, ""))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
