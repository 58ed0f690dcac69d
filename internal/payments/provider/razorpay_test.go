package provider

import (
	"testing"

	"eventbook/pkg/config"
	"eventbook/pkg/model"
)

func linkBooking() *model.Booking {
	return &model.Booking{
		ID:       "68b000000000000000000001",
		Email:    "guest@example.com",
		Amount:   50000,
		Currency: "INR",
		Status:   config.StatusPendingPayment,
	}
}

func notesOf(t *testing.T, data map[string]interface{}) map[string]interface{} {
	t.Helper()
	notes, ok := data["notes"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected notes map, got %T", data["notes"])
	}
	return notes
}

func TestOrderPayload(t *testing.T) {
	data := orderPayload(linkBooking())

	if data["receipt"] != "booking_68b000000000000000000001" {
		t.Errorf("unexpected receipt %v", data["receipt"])
	}
	if data["amount"] != int64(50000) || data["currency"] != "INR" {
		t.Errorf("unexpected amount/currency %v/%v", data["amount"], data["currency"])
	}
	if notesOf(t, data)["bookingId"] != "68b000000000000000000001" {
		t.Error("expected bookingId in order notes")
	}
}

func TestPaymentLinkPayload_CallbackURL(t *testing.T) {
	p := &razorpayProvider{callbackURL: "https://booking.example.com/booking-success"}

	data := p.paymentLinkPayload(linkBooking(), Customer{Name: "Guest"}, Address{})

	if data["callback_url"] != "https://booking.example.com/booking-success" {
		t.Errorf("unexpected callback_url %v", data["callback_url"])
	}
	if data["callback_method"] != "get" {
		t.Errorf("unexpected callback_method %v", data["callback_method"])
	}
}

func TestPaymentLinkPayload_NoCallbackWhenUnconfigured(t *testing.T) {
	p := &razorpayProvider{}

	data := p.paymentLinkPayload(linkBooking(), Customer{Name: "Guest"}, Address{})

	if _, ok := data["callback_url"]; ok {
		t.Error("callback_url must be absent without an app URL")
	}
	if _, ok := data["callback_method"]; ok {
		t.Error("callback_method must be absent without an app URL")
	}
}

func TestPaymentLinkPayload_CustomerEmailFallsBackToBooking(t *testing.T) {
	p := &razorpayProvider{}

	data := p.paymentLinkPayload(linkBooking(), Customer{Name: "Guest", Contact: "9999999999"}, Address{})

	customer, ok := data["customer"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected customer map, got %T", data["customer"])
	}
	if customer["email"] != "guest@example.com" {
		t.Errorf("expected booking email fallback, got %v", customer["email"])
	}
	if customer["contact"] != "9999999999" {
		t.Errorf("unexpected contact %v", customer["contact"])
	}
}

func TestPaymentLinkPayload_AddressNotes(t *testing.T) {
	p := &razorpayProvider{}

	data := p.paymentLinkPayload(linkBooking(), Customer{Email: "other@example.com"}, Address{
		Line1:      "12 Marina Road",
		Line2:      "Flat 4B",
		City:       "Chennai",
		State:      "TN",
		PostalCode: "600001",
	})

	notes := notesOf(t, data)
	want := map[string]string{
		"bookingId":          "68b000000000000000000001",
		"email":              "guest@example.com",
		"address_line1":      "12 Marina Road",
		"address_line2":      "Flat 4B",
		"address_city":       "Chennai",
		"address_state":      "TN",
		"address_postalCode": "600001",
		"address_country":    "IN",
	}
	for key, value := range want {
		if notes[key] != value {
			t.Errorf("notes[%q] = %v, want %q", key, notes[key], value)
		}
	}
}

func TestPaymentLinkPayload_ExplicitCountryKept(t *testing.T) {
	p := &razorpayProvider{}

	data := p.paymentLinkPayload(linkBooking(), Customer{}, Address{Country: "SG"})

	if notesOf(t, data)["address_country"] != "SG" {
		t.Error("explicit country must not be overridden")
	}
}

func TestNewRazorpayProvider_CallbackFromAppURL(t *testing.T) {
	p := NewRazorpayProvider("rzp_test_key", "secret", "https://booking.example.com/", nil).(*razorpayProvider)

	if p.callbackURL != "https://booking.example.com/booking-success" {
		t.Errorf("unexpected callback URL %q", p.callbackURL)
	}
}
