package service

import (
	"context"
	"errors"
	"testing"
	"time"

	bookingsvc "eventbook/internal/bookings/service"
	"eventbook/internal/bookings/validator"
	"eventbook/internal/otp/store"
	"eventbook/pkg/config"
	apperrors "eventbook/pkg/errors"
	"eventbook/pkg/logger"
	"eventbook/pkg/model"
)

type mockBookingService struct {
	createPendingFunc func(ctx context.Context, email string, details model.EventDetails) (*model.Booking, error)
	createCalls       int
}

func (m *mockBookingService) CreatePending(ctx context.Context, email string, details model.EventDetails) (*model.Booking, error) {
	m.createCalls++
	if m.createPendingFunc != nil {
		return m.createPendingFunc(ctx, email, details)
	}
	return &model.Booking{
		ID:       "68b000000000000000000001",
		Email:    email,
		Amount:   250000,
		Currency: config.DefaultCurrency,
		Status:   config.StatusPendingPayment,
	}, nil
}

func (m *mockBookingService) GetByID(context.Context, string) (*model.Booking, error) {
	return nil, apperrors.NotFound("Booking")
}

func (m *mockBookingService) GetAll(context.Context, int, int64) ([]*model.Booking, int64, error) {
	return nil, 0, nil
}

func (m *mockBookingService) GetPayable(context.Context, string) (*model.Booking, error) {
	return nil, apperrors.NotFound("Booking")
}

func (m *mockBookingService) AttachProviderOrder(context.Context, string, string) error {
	return nil
}

func (m *mockBookingService) AttachProviderPayment(context.Context, string, string) error {
	return nil
}

func (m *mockBookingService) MarkPaid(context.Context, string, string, string) (*model.Booking, bool, error) {
	return nil, false, apperrors.NotFound("Booking")
}

func (m *mockBookingService) MarkPaymentFailed(context.Context, string, string, string) (*model.Booking, bool, error) {
	return nil, false, apperrors.NotFound("Booking")
}

var _ bookingsvc.BookingService = (*mockBookingService)(nil)

type mockMailer struct {
	sendFunc func(ctx context.Context, to, code string) error
	sent     []string
}

func (m *mockMailer) Send(ctx context.Context, to, code string) error {
	m.sent = append(m.sent, code)
	if m.sendFunc != nil {
		return m.sendFunc(ctx, to, code)
	}
	return nil
}

func testConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})

	return &config.Config{
		Log:    log,
		OTPTTL: 5 * time.Minute,
	}
}

func newTestOTPService(t *testing.T, bookings *mockBookingService, m *mockMailer) (*otpService, *store.InMemoryStore) {
	t.Helper()

	cfg := testConfig()
	st := store.NewInMemoryStore(time.Minute)
	t.Cleanup(st.Stop)

	svc := &otpService{
		store:     st,
		bookings:  bookings,
		validator: validator.NewBookingValidator(cfg.Log),
		cfg:       cfg,
	}
	if m != nil {
		svc.mailer = m
	}
	return svc, st
}

func expectInvalidOTP(t *testing.T, err error) {
	t.Helper()

	if err == nil {
		t.Fatal("expected error")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInvalidOTP {
		t.Errorf("expected code %s, got %s", apperrors.CodeInvalidOTP, appErr.Code)
	}
}

func TestSend_StoresCodeWithExpiry(t *testing.T) {
	svc, st := newTestOTPService(t, &mockBookingService{}, nil)

	result, err := svc.Send(context.Background(), "Guest@Example.com ", model.EventDetails{Guests: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Email != "guest@example.com" {
		t.Errorf("expected normalized email, got %q", result.Email)
	}
	if result.DevCode == "" {
		t.Error("expected dev code without a mailer")
	}
	if len(result.DevCode) != 6 {
		t.Errorf("expected 6-digit code, got %q", result.DevCode)
	}

	entry, ok := st.Get("guest@example.com")
	if !ok {
		t.Fatal("expected entry in store")
	}
	if entry.Code != result.DevCode {
		t.Error("stored code does not match returned dev code")
	}
	if entry.Details.Guests != 2 {
		t.Errorf("expected details preserved, got guests %d", entry.Details.Guests)
	}
}

func TestSend_SecondCodeInvalidatesFirst(t *testing.T) {
	svc, _ := newTestOTPService(t, &mockBookingService{}, nil)

	first, err := svc.Send(context.Background(), "guest@example.com", model.EventDetails{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := svc.Send(context.Background(), "guest@example.com", model.EventDetails{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.DevCode != second.DevCode {
		_, err := svc.Verify(context.Background(), "guest@example.com", first.DevCode)
		expectInvalidOTP(t, err)
	}

	if _, err := svc.Verify(context.Background(), "guest@example.com", second.DevCode); err != nil {
		t.Errorf("expected second code to verify, got %v", err)
	}
}

func TestSend_MailerFailureRemovesEntry(t *testing.T) {
	m := &mockMailer{
		sendFunc: func(context.Context, string, string) error {
			return errors.New("smtp connection refused")
		},
	}
	svc, st := newTestOTPService(t, &mockBookingService{}, m)

	_, err := svc.Send(context.Background(), "guest@example.com", model.EventDetails{})
	if err == nil {
		t.Fatal("expected error when mail delivery fails")
	}

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeUpstream {
		t.Errorf("expected code %s, got %s", apperrors.CodeUpstream, appErr.Code)
	}

	if _, ok := st.Get("guest@example.com"); ok {
		t.Error("expected entry removed after failed delivery")
	}
}

func TestVerify_WrongCode(t *testing.T) {
	bookings := &mockBookingService{}
	svc, _ := newTestOTPService(t, bookings, nil)

	result, err := svc.Send(context.Background(), "guest@example.com", model.EventDetails{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wrong := "000000"
	if wrong == result.DevCode {
		wrong = "000001"
	}

	_, err = svc.Verify(context.Background(), "guest@example.com", wrong)
	expectInvalidOTP(t, err)

	if bookings.createCalls != 0 {
		t.Error("expected no booking created on wrong code")
	}
}

func TestVerify_UnknownEmail(t *testing.T) {
	svc, _ := newTestOTPService(t, &mockBookingService{}, nil)

	_, err := svc.Verify(context.Background(), "nobody@example.com", "123456")
	expectInvalidOTP(t, err)
}

func TestVerify_ExpiredCode(t *testing.T) {
	bookings := &mockBookingService{}
	svc, st := newTestOTPService(t, bookings, nil)

	st.Set("guest@example.com", store.Entry{
		Code:      "123456",
		ExpiresAt: time.Now().Add(-time.Second),
	})

	_, err := svc.Verify(context.Background(), "guest@example.com", "123456")
	expectInvalidOTP(t, err)

	if _, ok := st.Get("guest@example.com"); ok {
		t.Error("expected expired entry to be removed")
	}
	if bookings.createCalls != 0 {
		t.Error("expected no booking created on expired code")
	}
}

func TestVerify_CreatesBookingAndConsumesEntry(t *testing.T) {
	bookings := &mockBookingService{}
	svc, st := newTestOTPService(t, bookings, nil)

	result, err := svc.Send(context.Background(), "guest@example.com", model.EventDetails{Guests: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	booking, err := svc.Verify(context.Background(), "guest@example.com", result.DevCode)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Status != config.StatusPendingPayment {
		t.Errorf("expected pending_payment, got %q", booking.Status)
	}
	if bookings.createCalls != 1 {
		t.Fatalf("expected exactly one booking, got %d", bookings.createCalls)
	}
	if _, ok := st.Get("guest@example.com"); ok {
		t.Error("expected entry consumed after verify")
	}

	// Replaying the same code must fail once the entry is consumed.
	_, err = svc.Verify(context.Background(), "guest@example.com", result.DevCode)
	expectInvalidOTP(t, err)
	if bookings.createCalls != 1 {
		t.Errorf("expected no second booking, got %d", bookings.createCalls)
	}
}

func TestVerify_BookingFailureKeepsEntry(t *testing.T) {
	bookings := &mockBookingService{
		createPendingFunc: func(context.Context, string, model.EventDetails) (*model.Booking, error) {
			return nil, apperrors.Internal("database unavailable", nil)
		},
	}
	svc, st := newTestOTPService(t, bookings, nil)

	result, err := svc.Send(context.Background(), "guest@example.com", model.EventDetails{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.Verify(context.Background(), "guest@example.com", result.DevCode)
	if err == nil {
		t.Fatal("expected error when booking creation fails")
	}

	if _, ok := st.Get("guest@example.com"); !ok {
		t.Error("expected entry kept for retry after failed booking creation")
	}
}
