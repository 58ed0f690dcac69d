package events

import (
	"context"

	"eventbook/pkg/kafka"
	"eventbook/pkg/logger"
	"eventbook/pkg/model"
)

const (
	TypeBookingCreated       = "booking.created"
	TypeBookingPaid          = "booking.paid"
	TypeBookingPaymentFailed = "booking.payment_failed"

	source = "eventbook-server"
)

// Publisher emits booking lifecycle events. Publishing is best effort:
// a broker failure never fails the request that triggered it.
type Publisher interface {
	BookingCreated(ctx context.Context, booking *model.Booking)
	BookingPaid(ctx context.Context, booking *model.Booking)
	BookingPaymentFailed(ctx context.Context, booking *model.Booking)
}

type BookingEvent struct {
	BookingID string `json:"booking_id"`
	Email     string `json:"email"`
	EventID   string `json:"event_id,omitempty"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
	PaymentID string `json:"payment_id,omitempty"`
	OrderID   string `json:"order_id,omitempty"`
}

type kafkaPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, log *logger.Logger) Publisher {
	return &kafkaPublisher{producer: producer, log: log}
}

func (p *kafkaPublisher) BookingCreated(ctx context.Context, booking *model.Booking) {
	p.publish(ctx, TypeBookingCreated, booking)
}

func (p *kafkaPublisher) BookingPaid(ctx context.Context, booking *model.Booking) {
	p.publish(ctx, TypeBookingPaid, booking)
}

func (p *kafkaPublisher) BookingPaymentFailed(ctx context.Context, booking *model.Booking) {
	p.publish(ctx, TypeBookingPaymentFailed, booking)
}

func (p *kafkaPublisher) publish(ctx context.Context, eventType string, booking *model.Booking) {
	msg := kafka.NewMessage().
		WithKey(booking.ID).
		WithEventType(eventType).
		WithSource(source).
		WithValue(BookingEvent{
			BookingID: booking.ID,
			Email:     booking.Email,
			EventID:   booking.EventID,
			Amount:    booking.Amount,
			Currency:  booking.Currency,
			Status:    booking.Status,
			PaymentID: booking.ProviderPaymentID,
			OrderID:   booking.ProviderOrderID,
		}).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
		return
	}

	p.log.Debug("Booking event published", "event_type", eventType, "booking_id", booking.ID)
}

type noopPublisher struct{}

// NewNoopPublisher is used when no Kafka brokers are configured.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) BookingCreated(context.Context, *model.Booking)       {}
func (noopPublisher) BookingPaid(context.Context, *model.Booking)          {}
func (noopPublisher) BookingPaymentFailed(context.Context, *model.Booking) {}
