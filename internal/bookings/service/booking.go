package service

import (
	"context"
	"errors"
	"sync"

	bookingserrors "eventbook/internal/bookings/errors"
	"eventbook/internal/bookings/repository"
	"eventbook/internal/bookings/validator"
	"eventbook/internal/events"
	"eventbook/pkg/config"
	apperrors "eventbook/pkg/errors"
	"eventbook/pkg/model"
)

type BookingService interface {
	// CreatePending turns verified event details into a booking in
	// pending_payment. The only way bookings come into existence.
	CreatePending(ctx context.Context, email string, details model.EventDetails) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	// GetPayable fails with NOT_PAYABLE unless the booking is still
	// awaiting payment.
	GetPayable(ctx context.Context, id string) (*model.Booking, error)
	AttachProviderOrder(ctx context.Context, id string, orderID string) error
	AttachProviderPayment(ctx context.Context, id string, paymentID string) error
	// MarkPaid resolves the booking by provider order id, falling back
	// to the booking id the provider carried in its notes, and applies
	// the pending_payment -> paid transition. The returned bool is
	// false when the transition was a replay no-op.
	MarkPaid(ctx context.Context, providerOrderID, fallbackBookingID, paymentID string) (*model.Booking, bool, error)
	MarkPaymentFailed(ctx context.Context, providerOrderID, fallbackBookingID, paymentID string) (*model.Booking, bool, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *bookingService) CreatePending(ctx context.Context, email string, details model.EventDetails) (*model.Booking, error) {
	booking := &model.Booking{
		Email:     email,
		EventID:   details.EventID,
		EventName: details.EventName,
		EventDate: details.EventDate,
		Guests:    details.Guests,
		Amount:    details.Amount,
		Currency:  config.DefaultCurrency,
		Status:    config.StatusPendingPayment,
		Provider:  config.ProviderRazorpay,
		Notes:     details.AdditionalNotes,
	}
	s.applyDefaults(booking)

	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "email", email, "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		s.cfg.Log.Error("Failed to create booking", "email", email, "error", err)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.publisher.BookingCreated(ctx, booking)

	s.cfg.Log.Info("Booking created",
		"id", booking.ID,
		"email", booking.Email,
		"amount", booking.Amount,
		"guests", booking.Guests,
	)
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *bookingService) GetPayable(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.Status != config.StatusPendingPayment {
		return nil, apperrors.NotPayable(booking.ID, booking.Status)
	}

	return booking, nil
}

func (s *bookingService) AttachProviderOrder(ctx context.Context, id string, orderID string) error {
	if err := s.repo.SetProviderOrder(ctx, id, orderID); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", id)
		}
		return apperrors.Internal("Failed to record provider order", err)
	}
	return nil
}

func (s *bookingService) AttachProviderPayment(ctx context.Context, id string, paymentID string) error {
	if err := s.repo.SetProviderPayment(ctx, id, paymentID); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", id)
		}
		return apperrors.Internal("Failed to record provider payment", err)
	}
	return nil
}

func (s *bookingService) MarkPaid(ctx context.Context, providerOrderID, fallbackBookingID, paymentID string) (*model.Booking, bool, error) {
	return s.transition(ctx, providerOrderID, fallbackBookingID, paymentID, config.StatusPaid)
}

func (s *bookingService) MarkPaymentFailed(ctx context.Context, providerOrderID, fallbackBookingID, paymentID string) (*model.Booking, bool, error) {
	return s.transition(ctx, providerOrderID, fallbackBookingID, paymentID, config.StatusFailed)
}

func (s *bookingService) transition(ctx context.Context, providerOrderID, fallbackBookingID, paymentID, to string) (*model.Booking, bool, error) {
	booking, err := s.resolve(ctx, providerOrderID, fallbackBookingID)
	if err != nil {
		return nil, false, err
	}

	transitioned, err := s.repo.TransitionStatus(ctx, booking.ID, config.StatusPendingPayment, to, paymentID)
	if err != nil {
		s.cfg.Log.Error("Failed to transition booking status",
			"id", booking.ID,
			"to", to,
			"error", err,
		)
		return nil, false, apperrors.Internal("Failed to update booking status", err)
	}

	if !transitioned {
		s.cfg.Log.Info("Booking status transition skipped",
			"id", booking.ID,
			"status", booking.Status,
			"to", to,
		)
		return booking, false, nil
	}

	booking.Status = to
	if paymentID != "" {
		booking.ProviderPaymentID = paymentID
	}

	switch to {
	case config.StatusPaid:
		s.publisher.BookingPaid(ctx, booking)
	case config.StatusFailed:
		s.publisher.BookingPaymentFailed(ctx, booking)
	}

	s.cfg.Log.Info("Booking status updated",
		"id", booking.ID,
		"status", to,
		"payment_id", paymentID,
	)
	return booking, true, nil
}

// resolve finds the booking by provider order id first, then by the
// booking id carried in the provider's payment notes.
func (s *bookingService) resolve(ctx context.Context, providerOrderID, fallbackBookingID string) (*model.Booking, error) {
	if providerOrderID != "" {
		booking, err := s.repo.FindByProviderOrderID(ctx, providerOrderID)
		if err == nil {
			return booking, nil
		}
		if !errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.Internal("Failed to resolve booking", err)
		}
	}

	if fallbackBookingID != "" {
		booking, err := s.repo.FindByID(ctx, fallbackBookingID)
		if err == nil {
			return booking, nil
		}
		if !errors.Is(err, bookingserrors.ErrNotFound) && !errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.Internal("Failed to resolve booking", err)
		}
	}

	return nil, apperrors.NotFound("Booking")
}

func (s *bookingService) applyDefaults(b *model.Booking) {
	if b.Guests <= 0 {
		b.Guests = 1
	}
	if b.Amount <= 0 {
		b.Amount = s.cfg.DefaultBookingAmount
	}
	if b.Currency == "" {
		b.Currency = config.DefaultCurrency
	}
}
