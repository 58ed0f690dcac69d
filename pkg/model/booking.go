package model

import (
	"time"
)

// Booking tracks the payment lifecycle of an event reservation.
// Status moves pending_payment -> paid via a verified webhook; payment
// failures move it to failed. Bookings are never deleted in normal flow.
type Booking struct {
	ID                string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Email             string    `json:"email" bson:"email" validate:"required,email"`
	EventID           string    `json:"event_id,omitempty" bson:"event_id,omitempty"`
	EventName         string    `json:"event_name,omitempty" bson:"event_name,omitempty" validate:"omitempty,max=200"`
	EventDate         string    `json:"event_date,omitempty" bson:"event_date,omitempty"`
	Guests            int       `json:"guests" bson:"guests" validate:"required,min=1,max=10000"`
	Amount            int64     `json:"amount" bson:"amount" validate:"required,min=1"`
	Currency          string    `json:"currency" bson:"currency" validate:"required,iso4217"`
	Status            string    `json:"status" bson:"status" validate:"required,oneof=pending_payment paid failed cancelled"`
	Provider          string    `json:"provider" bson:"provider"`
	ProviderOrderID   string    `json:"provider_order_id,omitempty" bson:"provider_order_id,omitempty"`
	ProviderPaymentID string    `json:"provider_payment_id,omitempty" bson:"provider_payment_id,omitempty"`
	Notes             string    `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=1000"`
	CreatedAt         time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" bson:"updated_at"`
}

// EventDetails is what the visitor enters before their email is
// verified. It lives only in the OTP store until verification turns it
// into a Booking.
type EventDetails struct {
	EventID         string `json:"eventId,omitempty"`
	EventName       string `json:"eventName,omitempty" validate:"omitempty,max=200"`
	EventDate       string `json:"eventDate,omitempty"`
	Guests          int    `json:"guests,omitempty" validate:"omitempty,min=1,max=10000"`
	Amount          int64  `json:"amount,omitempty" validate:"omitempty,min=1"`
	AdditionalNotes string `json:"additionalNotes,omitempty" validate:"omitempty,max=1000"`
}
