package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"
	EnvAppURL   = "APP_URL"

	EnvSMTPHost     = "EMAIL_HOST"
	EnvSMTPPort     = "EMAIL_PORT"
	EnvSMTPUser     = "EMAIL_USER"
	EnvSMTPPassword = "EMAIL_PASS"
	EnvSMTPFrom     = "EMAIL_FROM"

	EnvOTPTTL          = "OTP_TTL"
	EnvOTPSendRequests = "OTP_SEND_REQUESTS"
	EnvOTPSendWindow   = "OTP_SEND_WINDOW"

	EnvRazorpayKeyID     = "RAZORPAY_KEY_ID"
	EnvRazorpayKeySecret = "RAZORPAY_KEY_SECRET"
	EnvWebhookSecret     = "WEBHOOK_SECRET"

	EnvJWTSecret = "JWT_SECRET"
	EnvJWTTTL    = "JWT_TTL"

	EnvKafkaBrokers       = "KAFKA_BROKERS"
	EnvKafkaBookingsTopic = "KAFKA_BOOKINGS_TOPIC"
	EnvKafkaDLQTopic      = "KAFKA_DLQ_TOPIC"

	EnvDefaultBookingAmount = "DEFAULT_BOOKING_AMOUNT"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
