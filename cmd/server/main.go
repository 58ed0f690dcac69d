package main

import (
	"context"

	authhandler "eventbook/internal/auth/handler"
	authrepository "eventbook/internal/auth/repository"
	authservice "eventbook/internal/auth/service"
	bookingshandler "eventbook/internal/bookings/handler"
	bookingsrepository "eventbook/internal/bookings/repository"
	bookingsservice "eventbook/internal/bookings/service"
	"eventbook/internal/bookings/validator"
	"eventbook/internal/events"
	"eventbook/internal/health"
	otphandler "eventbook/internal/otp/handler"
	"eventbook/internal/otp/mailer"
	otpservice "eventbook/internal/otp/service"
	"eventbook/internal/otp/store"
	paymentshandler "eventbook/internal/payments/handler"
	"eventbook/internal/payments/provider"
	paymentsservice "eventbook/internal/payments/service"
	"eventbook/pkg/app"
	"eventbook/pkg/config"
	"eventbook/pkg/contracts"
	"eventbook/pkg/kafka"
	kafka_config "eventbook/pkg/kafka/config"

	"github.com/joho/godotenv"
)

const ServiceName = "server"

func main() {
	// Missing .env is fine; the environment may carry everything.
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	serverApp := app.NewApplication()
	serverApp.AddCloser(cfg.GracefulShutdown)

	publisher := initPublisher(cfg, serverApp)

	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := bookingsrepository.NewMongoBookingRepository(cfg)
	bookingService := bookingsservice.NewBookingService(bookingRepo, bookingValidator, publisher, cfg)

	otpStore := store.NewInMemoryStore(cfg.OTPTTL)
	serverApp.AddCloser(otpStore.Stop)
	otpService := otpservice.NewOTPService(
		otpStore,
		mailer.NewFromConfig(cfg),
		bookingService,
		bookingValidator,
		cfg,
	)

	var paymentProvider provider.Provider
	if cfg.RazorpayKeyID != "" {
		paymentProvider = provider.NewRazorpayProvider(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.AppURL, cfg.Log)
	} else {
		cfg.Log.Warn("Razorpay credentials not set, payment creation disabled")
	}
	paymentService := paymentsservice.NewPaymentService(paymentProvider, bookingService, cfg)

	userRepo := authrepository.NewMongoUserRepository(cfg)
	if err := userRepo.EnsureIndexes(context.Background()); err != nil {
		cfg.Log.Fatal("Failed to create user indexes", "error", err)
	}
	authService := authservice.NewAuthService(userRepo, cfg)

	serverApp.SetApp(cfg, app.Handlers{
		Health: health.NewHandler(cfg.Client.Mongo, cfg.Log),
		App: []contracts.Handler{
			otphandler.NewOTPHandler(otpService, cfg.Log),
			bookingshandler.NewBookingHandler(bookingService, cfg.Log),
			paymentshandler.NewPaymentHandler(paymentService, cfg.Log),
			authhandler.NewAuthHandler(authService, cfg.Log),
		},
		Webhook: paymentshandler.NewWebhookHandler(paymentService, cfg.Log),
	})

	cfg.Log.Info("Starting event booking server")
	serverApp.Run()
}

func initPublisher(cfg *config.Config, serverApp *app.Application) events.Publisher {
	if cfg.KafkaBrokers == "" {
		cfg.Log.Info("Kafka brokers not configured, booking events disabled")
		return events.NewNoopPublisher()
	}

	kafkaCfg, err := kafka_config.Load(cfg.KafkaBrokers)
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaBookingsTopic, cfg.KafkaDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	serverApp.AddCloser(func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	})

	cfg.Log.Info("Kafka publisher initialized", "topic", cfg.KafkaBookingsTopic)
	return events.NewKafkaPublisher(producer, cfg.Log)
}
