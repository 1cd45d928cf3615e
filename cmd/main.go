package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kingmomo1st/restaurant-saas-backend/internal/adapter/logger"
	"github.com/kingmomo1st/restaurant-saas-backend/internal/adapter/postgres"
	"github.com/kingmomo1st/restaurant-saas-backend/internal/adapter/rabbitmq"
	"github.com/kingmomo1st/restaurant-saas-backend/internal/app/checkout"
	"github.com/kingmomo1st/restaurant-saas-backend/internal/app/tracking"
	"github.com/kingmomo1st/restaurant-saas-backend/internal/config"

	amqpAdapter "github.com/kingmomo1st/restaurant-saas-backend/internal/adapter/amqp"
	httpAdapter "github.com/kingmomo1st/restaurant-saas-backend/internal/adapter/http"
)

const (
	modeCheckoutService = "checkout-service"
	modeOutcomeWorker   = "payment-outcome-worker"
	modeLoyaltyListener = "loyalty-subscriber"
)

func main() {
	mode := flag.String("mode", "", "Service mode: checkout-service, payment-outcome-worker, loyalty-subscriber")
	configPath := flag.String("config", "config.yaml", "Path to the YAML config file")
	port := flag.Int("port", 0, "HTTP port, overrides http.port")
	prefetch := flag.Int("prefetch", 10, "RabbitMQ prefetch count")
	flag.Parse()

	if *mode == "" {
		log.Fatal("--mode flag is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port > 0 {
		cfg.HTTP.Port = *port
	}

	lgr, err := logger.New(*mode, cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer lgr.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		lgr.Error("rabbitmq_connection_failed", "Failed to connect to RabbitMQ", "startup", nil, err)
		os.Exit(1)
	}
	defer mqConn.Close()

	lgr.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]interface{}{
		"host": cfg.RabbitMQ.Host,
	})

	switch *mode {
	case modeCheckoutService, modeOutcomeWorker:
		db, err := postgres.Connect(ctx, cfg.Database)
		if err != nil {
			lgr.Error("db_connection_failed", "Failed to connect to PostgreSQL", "startup", nil, err)
			os.Exit(1)
		}
		defer db.Close()

		lgr.Info("db_connected", "Connected to PostgreSQL database", "startup", map[string]interface{}{
			"host": cfg.Database.Host,
			"db":   cfg.Database.Database,
		})

		svc := newCheckoutService(cfg, db, mqConn, lgr)
		if *mode == modeCheckoutService {
			trackingService := tracking.NewService(postgres.NewCheckoutRepository(db), lgr, cfg.Checkout.StaleAfter)
			runCheckoutService(ctx, svc, trackingService, lgr, cfg.HTTP.Port)
		} else {
			runOutcomeWorker(ctx, svc, mqConn, lgr, *prefetch)
		}

	case modeLoyaltyListener:
		runLoyaltySubscriber(ctx, mqConn, lgr)

	default:
		lgr.Error("invalid_mode", fmt.Sprintf("Invalid mode: %s", *mode), "startup", nil, errors.New("unknown mode"))
		os.Exit(1)
	}
}

func newCheckoutService(cfg *config.Config, db postgres.DB, mqConn rabbitmq.Connection, lgr logger.Logger) *checkout.Service {
	publisher := rabbitmq.NewPublisher(mqConn)

	return checkout.NewService(
		postgres.NewSettingsRepository(db),
		postgres.NewPromoRepository(db),
		postgres.NewBalanceRepository(db),
		postgres.NewCheckoutRepository(db),
		publisher,
		publisher,
		lgr,
		checkout.Options{
			SettingsTimeout:        cfg.Checkout.SettingsTimeout,
			EnforcePromoCategories: cfg.Pricing.EnforcePromoCategories,
			Currency:               cfg.Checkout.Currency,
		},
	)
}

func runCheckoutService(ctx context.Context, svc *checkout.Service, trackingService *tracking.Service, lgr logger.Logger, port int) {
	router := httpAdapter.NewRouter(
		httpAdapter.NewCheckoutHandler(svc, lgr),
		httpAdapter.NewLoyaltyHandler(svc, lgr),
		httpAdapter.NewTrackingHandler(trackingService, lgr),
		lgr,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lgr.Info("service_started", fmt.Sprintf("Checkout Service started on port %d", port), "startup", map[string]interface{}{
		"port": port,
	})

	go func() {
		<-ctx.Done()
		lgr.Info("shutdown_initiated", "Shutting down Checkout Service", "shutdown", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			lgr.Error("shutdown_error", "Error during shutdown", "shutdown", nil, err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		lgr.Error("server_error", "Server error", "runtime", nil, err)
	}
}

func runOutcomeWorker(ctx context.Context, svc *checkout.Service, mqConn rabbitmq.Connection, lgr logger.Logger, prefetch int) {
	consumer := rabbitmq.NewConsumer(mqConn, prefetch, lgr)
	handler := amqpAdapter.NewPaymentOutcomeHandler(svc, lgr)

	lgr.Info("service_started", "Payment Outcome Worker started", "startup", map[string]interface{}{
		"prefetch": prefetch,
	})

	if err := consumer.ConsumePaymentOutcomes(ctx, handler.HandleOutcome); err != nil && !errors.Is(err, context.Canceled) {
		lgr.Error("consumer_error", "Error consuming payment outcomes", "runtime", nil, err)
	}

	lgr.Info("graceful_shutdown", "Shutting down Payment Outcome Worker", "shutdown", nil)
}

func runLoyaltySubscriber(ctx context.Context, mqConn rabbitmq.Connection, lgr logger.Logger) {
	consumer := rabbitmq.NewConsumer(mqConn, 1, lgr)
	handler := amqpAdapter.NewLoyaltyNotificationHandler(lgr)

	lgr.Info("service_started", "Loyalty Subscriber started", "startup", nil)

	if err := consumer.ConsumeLoyaltyUpdates(ctx, handler.HandleNotification); err != nil && !errors.Is(err, context.Canceled) {
		lgr.Error("consumer_error", "Error consuming loyalty updates", "runtime", nil, err)
	}

	lgr.Info("shutdown_initiated", "Shutting down Loyalty Subscriber", "shutdown", nil)
}
