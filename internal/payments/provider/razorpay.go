package provider

import (
	"context"
	"fmt"
	"strings"

	"eventbook/pkg/logger"
	"eventbook/pkg/model"

	razorpay "github.com/razorpay/razorpay-go"
)

const callbackPath = "/booking-success"

// Order is the subset of a provider order the service cares about.
type Order struct {
	ID       string
	Amount   int64
	Currency string
}

// PaymentLink is a hosted checkout page the customer can be sent to.
type PaymentLink struct {
	ID       string
	ShortURL string
	Amount   int64
	Currency string
}

type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"phone"`
}

// Address is folded into the payment link's notes for fulfilment.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Provider issues payment artifacts for a booking. Every call carries
// the booking id in the provider's notes so webhooks can correlate
// back even when the order id is missing.
type Provider interface {
	CreateOrder(ctx context.Context, booking *model.Booking) (*Order, error)
	CreatePaymentLink(ctx context.Context, booking *model.Booking, customer Customer, address Address) (*PaymentLink, error)
}

type razorpayProvider struct {
	client      *razorpay.Client
	callbackURL string
	log         *logger.Logger
}

// NewRazorpayProvider builds the provider. When appURL is set, payment
// links redirect the customer to its booking-success page after paying.
func NewRazorpayProvider(keyID, keySecret, appURL string, log *logger.Logger) Provider {
	callbackURL := ""
	if appURL != "" {
		callbackURL = strings.TrimRight(appURL, "/") + callbackPath
	}

	return &razorpayProvider{
		client:      razorpay.NewClient(keyID, keySecret),
		callbackURL: callbackURL,
		log:         log,
	}
}

func (p *razorpayProvider) CreateOrder(ctx context.Context, booking *model.Booking) (*Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := p.client.Order.Create(orderPayload(booking), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	order := &Order{
		ID:       stringField(body, "id"),
		Amount:   intField(body, "amount"),
		Currency: stringField(body, "currency"),
	}
	if order.ID == "" {
		return nil, fmt.Errorf("order response missing id")
	}

	p.log.Debug("Provider order created", "order_id", order.ID, "booking_id", booking.ID)
	return order, nil
}

func (p *razorpayProvider) CreatePaymentLink(ctx context.Context, booking *model.Booking, customer Customer, address Address) (*PaymentLink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := p.client.PaymentLink.Create(p.paymentLinkPayload(booking, customer, address), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment link: %w", err)
	}

	link := &PaymentLink{
		ID:       stringField(body, "id"),
		ShortURL: stringField(body, "short_url"),
		Amount:   intField(body, "amount"),
		Currency: stringField(body, "currency"),
	}
	if link.ID == "" {
		return nil, fmt.Errorf("payment link response missing id")
	}

	p.log.Debug("Provider payment link created", "link_id", link.ID, "booking_id", booking.ID)
	return link, nil
}

func orderPayload(booking *model.Booking) map[string]interface{} {
	return map[string]interface{}{
		"amount":   booking.Amount,
		"currency": booking.Currency,
		"receipt":  fmt.Sprintf("booking_%s", booking.ID),
		"notes": map[string]interface{}{
			"bookingId": booking.ID,
		},
	}
}

func (p *razorpayProvider) paymentLinkPayload(booking *model.Booking, customer Customer, address Address) map[string]interface{} {
	email := customer.Email
	if email == "" {
		email = booking.Email
	}

	country := address.Country
	if country == "" {
		country = "IN"
	}

	data := map[string]interface{}{
		"amount":         booking.Amount,
		"currency":       booking.Currency,
		"accept_partial": false,
		"description":    fmt.Sprintf("Payment for booking %s", booking.ID),
		"customer": map[string]interface{}{
			"name":    customer.Name,
			"email":   email,
			"contact": customer.Contact,
		},
		"notify": map[string]interface{}{
			"sms":   true,
			"email": true,
		},
		"reminder_enable": true,
		"notes": map[string]interface{}{
			"bookingId":          booking.ID,
			"email":              booking.Email,
			"address_line1":      address.Line1,
			"address_line2":      address.Line2,
			"address_city":       address.City,
			"address_state":      address.State,
			"address_postalCode": address.PostalCode,
			"address_country":    country,
		},
	}

	if p.callbackURL != "" {
		data["callback_url"] = p.callbackURL
		data["callback_method"] = "get"
	}

	return data
}

func stringField(body map[string]interface{}, key string) string {
	if v, ok := body[key].(string); ok {
		return v
	}
	return ""
}

// intField tolerates the SDK decoding numbers as float64.
func intField(body map[string]interface{}, key string) int64 {
	switch v := body[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}
