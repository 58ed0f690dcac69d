package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestIdempotency_ReplaysCachedResponse(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	calls := 0
	handler := Idempotency(store, "X-Razorpay-Event-Id")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"call":%d}`, calls)
	}))

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", nil)
	req.Header.Set("X-Razorpay-Event-Id", "evt_123")
	handler.ServeHTTP(first, req)

	second := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/payments/webhook", nil)
	req.Header.Set("X-Razorpay-Event-Id", "evt_123")
	handler.ServeHTTP(second, req)

	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
	if first.Body.String() != second.Body.String() {
		t.Error("expected identical replayed response")
	}
}

func TestIdempotency_DistinctKeysBothRun(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	calls := 0
	handler := Idempotency(store, "X-Razorpay-Event-Id")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	for _, id := range []string{"evt_1", "evt_2"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", nil)
		req.Header.Set("X-Razorpay-Event-Id", id)
		handler.ServeHTTP(rec, req)
	}

	if calls != 2 {
		t.Errorf("expected handler to run for each event id, ran %d times", calls)
	}
}

func TestIdempotency_MissingKeyNotCached(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	calls := 0
	handler := Idempotency(store, "X-Razorpay-Event-Id")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/payments/webhook", nil))
	}

	if calls != 2 {
		t.Errorf("expected handler to run every time without a key, ran %d times", calls)
	}
}

func TestIdempotency_ErrorResponsesNotCached(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	calls := 0
	handler := Idempotency(store, "X-Razorpay-Event-Id")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", nil)
		req.Header.Set("X-Razorpay-Event-Id", "evt_err")
		handler.ServeHTTP(rec, req)
	}

	if calls != 2 {
		t.Errorf("expected failed responses to be retried, handler ran %d times", calls)
	}
}
