package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"
	"time"

	bookingsvc "eventbook/internal/bookings/service"
	"eventbook/internal/bookings/validator"
	otperrors "eventbook/internal/otp/errors"
	"eventbook/internal/otp/mailer"
	"eventbook/internal/otp/store"
	"eventbook/pkg/config"
	apperrors "eventbook/pkg/errors"
	"eventbook/pkg/model"
)

// codeMax bounds the generated code to six digits.
const codeMax = 1000000

// SendResult reports where the code went. DevCode is set only when no
// mailer is configured; it surfaces the code in the response instead.
type SendResult struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
	DevCode   string    `json:"dev_otp,omitempty"`
}

type OTPService interface {
	Send(ctx context.Context, email string, details model.EventDetails) (*SendResult, error)
	// Verify consumes the entry and creates the pending booking. Any
	// failure mode maps to the same invalid-or-expired error.
	Verify(ctx context.Context, email, code string) (*model.Booking, error)
}

type otpService struct {
	store     store.Store
	mailer    mailer.Mailer
	bookings  bookingsvc.BookingService
	validator *validator.BookingValidator
	cfg       *config.Config
}

func NewOTPService(
	st store.Store,
	m mailer.Mailer,
	bookings bookingsvc.BookingService,
	v *validator.BookingValidator,
	cfg *config.Config,
) OTPService {
	return &otpService{
		store:     st,
		mailer:    m,
		bookings:  bookings,
		validator: v,
		cfg:       cfg,
	}
}

func (s *otpService) Send(ctx context.Context, email string, details model.EventDetails) (*SendResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperrors.InvalidInput("Email is required")
	}

	if err := s.validator.ValidateDetails(&details); err != nil {
		s.cfg.Log.Warn("Event details validation failed", "email", email, "error", err)
		return nil, apperrors.Validation("Event details validation failed", map[string]any{"error": err.Error()})
	}

	code, err := generateCode()
	if err != nil {
		return nil, apperrors.Internal("Failed to generate verification code", err)
	}

	expiresAt := time.Now().Add(s.cfg.OTPTTL)

	// Overwrite any previous entry so only the latest code verifies.
	s.store.Set(email, store.Entry{
		Code:      code,
		ExpiresAt: expiresAt,
		Details:   details,
	})

	result := &SendResult{Email: email, ExpiresAt: expiresAt}

	if s.mailer == nil {
		s.cfg.Log.Warn("No mailer configured, returning code in response", "email", email)
		result.DevCode = code
		return result, nil
	}

	if err := s.mailer.Send(ctx, email, code); err != nil {
		s.store.Delete(email)
		s.cfg.Log.Error("Failed to send verification email", "email", email, "error", err)
		return nil, apperrors.Upstream("Email delivery", err)
	}

	s.cfg.Log.Info("Verification code sent", "email", email, "expires_at", expiresAt)
	return result, nil
}

func (s *otpService) Verify(ctx context.Context, email, code string) (*model.Booking, error) {
	email = normalizeEmail(email)
	if email == "" || code == "" {
		return nil, apperrors.InvalidOTP()
	}

	if err := s.check(email, code); err != nil {
		s.cfg.Log.Warn("Verification failed", "email", email, "reason", err)
		return nil, apperrors.InvalidOTP()
	}

	entry, ok := s.store.Get(email)
	if !ok {
		return nil, apperrors.InvalidOTP()
	}

	booking, err := s.bookings.CreatePending(ctx, email, entry.Details)
	if err != nil {
		return nil, err
	}

	// Consume only after the booking exists so a failed create leaves
	// the code usable for a retry.
	s.store.Delete(email)

	s.cfg.Log.Info("Email verified, booking created", "email", email, "booking_id", booking.ID)
	return booking, nil
}

// check distinguishes the failure modes internally for logging while
// callers collapse them into one response.
func (s *otpService) check(email, code string) error {
	entry, ok := s.store.Get(email)
	if !ok {
		return otperrors.ErrNotFound
	}

	if subtle.ConstantTimeCompare([]byte(entry.Code), []byte(code)) != 1 {
		return otperrors.ErrMismatch
	}

	if entry.Expired() {
		s.store.Delete(email)
		return otperrors.ErrExpired
	}

	return nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax))
	if err != nil {
		return "", fmt.Errorf("failed to generate random code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
