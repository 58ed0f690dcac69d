package service

import (
	"context"
	"encoding/json"
	"fmt"

	bookingsvc "eventbook/internal/bookings/service"
	paymentserrors "eventbook/internal/payments/errors"
	"eventbook/internal/payments/provider"
	"eventbook/pkg/config"
	apperrors "eventbook/pkg/errors"
)

// Webhook event types that settle a booking.
const (
	EventPaymentCaptured = "payment.captured"
	EventOrderPaid       = "order.paid"
	EventPaymentLinkPaid = "payment_link.paid"
	EventPaymentFailed   = "payment.failed"
)

type OrderResult struct {
	OrderID   string `json:"orderId"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	BookingID string `json:"bookingId"`
	KeyID     string `json:"keyId"`
}

type PaymentLinkResult struct {
	ID        string `json:"id"`
	ShortURL  string `json:"short_url"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	BookingID string `json:"bookingId"`
}

// WebhookResult reports what a delivery did. Handled is false for
// event types we ack but do not act on.
type WebhookResult struct {
	Event     string `json:"event"`
	BookingID string `json:"booking_id,omitempty"`
	Status    string `json:"status,omitempty"`
	Handled   bool   `json:"handled"`
}

type PaymentService interface {
	CreateOrder(ctx context.Context, bookingID string) (*OrderResult, error)
	CreatePaymentLink(ctx context.Context, bookingID string, customer provider.Customer, address provider.Address) (*PaymentLinkResult, error)
	// ProcessWebhook parses an already signature-verified raw body and
	// applies the matching booking transition.
	ProcessWebhook(ctx context.Context, rawBody []byte) (*WebhookResult, error)
}

type paymentService struct {
	provider provider.Provider
	bookings bookingsvc.BookingService
	cfg      *config.Config
}

func NewPaymentService(p provider.Provider, bookings bookingsvc.BookingService, cfg *config.Config) PaymentService {
	return &paymentService{
		provider: p,
		bookings: bookings,
		cfg:      cfg,
	}
}

func (s *paymentService) CreateOrder(ctx context.Context, bookingID string) (*OrderResult, error) {
	if s.provider == nil {
		return nil, apperrors.Upstream("Payment provider", paymentserrors.ErrNotConfigured)
	}

	booking, err := s.bookings.GetPayable(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	order, err := s.provider.CreateOrder(ctx, booking)
	if err != nil {
		s.cfg.Log.Error("Provider order creation failed", "booking_id", bookingID, "error", err)
		return nil, apperrors.Upstream("Payment provider", err)
	}

	if err := s.bookings.AttachProviderOrder(ctx, booking.ID, order.ID); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Payment order created",
		"booking_id", booking.ID,
		"order_id", order.ID,
		"amount", order.Amount,
	)

	return &OrderResult{
		OrderID:   order.ID,
		Amount:    order.Amount,
		Currency:  order.Currency,
		BookingID: booking.ID,
		KeyID:     s.cfg.RazorpayKeyID,
	}, nil
}

func (s *paymentService) CreatePaymentLink(ctx context.Context, bookingID string, customer provider.Customer, address provider.Address) (*PaymentLinkResult, error) {
	if s.provider == nil {
		return nil, apperrors.Upstream("Payment provider", paymentserrors.ErrNotConfigured)
	}

	booking, err := s.bookings.GetPayable(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	link, err := s.provider.CreatePaymentLink(ctx, booking, customer, address)
	if err != nil {
		s.cfg.Log.Error("Provider payment link creation failed", "booking_id", bookingID, "error", err)
		return nil, apperrors.Upstream("Payment provider", err)
	}

	if err := s.bookings.AttachProviderPayment(ctx, booking.ID, link.ID); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Payment link created",
		"booking_id", booking.ID,
		"link_id", link.ID,
		"amount", link.Amount,
	)

	return &PaymentLinkResult{
		ID:        link.ID,
		ShortURL:  link.ShortURL,
		Amount:    link.Amount,
		Currency:  link.Currency,
		BookingID: booking.ID,
	}, nil
}

func (s *paymentService) ProcessWebhook(ctx context.Context, rawBody []byte) (*WebhookResult, error) {
	var event webhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return nil, apperrors.InvalidInput("Malformed webhook payload")
	}
	if event.Event == "" {
		return nil, apperrors.InvalidInput("Webhook payload missing event type")
	}

	orderID, bookingID, paymentID := event.correlation()

	switch event.Event {
	case EventPaymentCaptured, EventOrderPaid, EventPaymentLinkPaid:
		booking, transitioned, err := s.bookings.MarkPaid(ctx, orderID, bookingID, paymentID)
		if err != nil {
			return nil, err
		}
		if !transitioned {
			s.cfg.Log.Info("Webhook replay ignored", "event", event.Event, "booking_id", booking.ID)
		}
		return &WebhookResult{
			Event:     event.Event,
			BookingID: booking.ID,
			Status:    booking.Status,
			Handled:   true,
		}, nil

	case EventPaymentFailed:
		booking, _, err := s.bookings.MarkPaymentFailed(ctx, orderID, bookingID, paymentID)
		if err != nil {
			return nil, err
		}
		return &WebhookResult{
			Event:     event.Event,
			BookingID: booking.ID,
			Status:    booking.Status,
			Handled:   true,
		}, nil
	}

	// Unknown event types are acked so the provider stops retrying.
	s.cfg.Log.Debug("Ignoring webhook event", "event", event.Event)
	return &WebhookResult{Event: event.Event, Handled: false}, nil
}

type webhookEntity struct {
	ID      string         `json:"id"`
	OrderID string         `json:"order_id"`
	Notes   map[string]any `json:"notes"`
}

type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity webhookEntity `json:"entity"`
		} `json:"payment"`
		Order struct {
			Entity webhookEntity `json:"entity"`
		} `json:"order"`
		PaymentLink struct {
			Entity webhookEntity `json:"entity"`
		} `json:"payment_link"`
	} `json:"payload"`
}

// correlation extracts the provider order id, the bookingId carried in
// notes and the payment id from whichever entities the event includes.
func (e *webhookEvent) correlation() (orderID, bookingID, paymentID string) {
	payment := e.Payload.Payment.Entity
	order := e.Payload.Order.Entity
	link := e.Payload.PaymentLink.Entity

	paymentID = payment.ID

	orderID = payment.OrderID
	if orderID == "" {
		orderID = order.ID
	}
	if orderID == "" {
		orderID = link.OrderID
	}

	for _, notes := range []map[string]any{payment.Notes, order.Notes, link.Notes} {
		if id := noteString(notes, "bookingId"); id != "" {
			bookingID = id
			break
		}
	}

	return orderID, bookingID, paymentID
}

func noteString(notes map[string]any, key string) string {
	switch v := notes[key].(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	return ""
}
