package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "eventbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "5000"
	DefaultLogLevel = "info"

	DefaultSMTPPort = 587
	DefaultSMTPFrom = "Event Management <no-reply@eventbook.local>"

	DefaultOTPTTL          = 5 * time.Minute
	DefaultOTPSendRequests = 30
	DefaultOTPSendWindow   = 1 * time.Minute

	DefaultJWTTTL = 30 * 24 * time.Hour

	DefaultKafkaBookingsTopic = "booking-events"

	// Paise; matches the original fallback of INR 2500.00 when the
	// booking details carry no amount.
	DefaultDefaultBookingAmount = 250000
	DefaultCurrency             = "INR"

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100
)

const (
	StatusPendingPayment = "pending_payment"
	StatusPaid           = "paid"
	StatusFailed         = "failed"
	StatusCancelled      = "cancelled"

	ProviderRazorpay = "razorpay"
)
