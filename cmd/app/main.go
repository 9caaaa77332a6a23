package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/rajeev-ju/flight-booking-system/config"
	"github.com/rajeev-ju/flight-booking-system/internal/bootstrap"
	"github.com/rajeev-ju/flight-booking-system/internal/cache"
	"github.com/rajeev-ju/flight-booking-system/internal/client"
	"github.com/rajeev-ju/flight-booking-system/internal/kafka"
	"github.com/rajeev-ju/flight-booking-system/internal/repository"
	"github.com/rajeev-ju/flight-booking-system/internal/service/booking"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	seatCache := cache.NewSeatCache(
		cfg.Redis,
		time.Duration(cfg.Booking.SeatBlockTTLMinutes)*time.Minute,
		time.Duration(cfg.Booking.SeatCacheTTLHours)*time.Hour,
		logger,
	)
	defer seatCache.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers, logger)
	defer producer.Close()

	flightsClient := client.New(cfg.Flights, logger)
	payments := booking.NewMockPaymentService(time.Duration(cfg.Booking.PaymentDelayMillis)*time.Millisecond, logger)

	bookingRepo := repository.NewBookingRepository(pool)
	scheduleRepo := repository.NewScheduleRepository(pool)

	bookingService := booking.NewService(
		bookingRepo,
		seatCache,
		flightsClient,
		producer,
		payments,
		cfg.Kafka.BookingTopic,
		cfg.Kafka.SeatUpdatesTopic,
		time.Duration(cfg.Booking.SeatBlockTTLMinutes)*time.Minute,
		time.Duration(cfg.Booking.CancelCutoffHours)*time.Hour,
		cfg.Booking.PublishRetryAttempts,
		logger,
	)

	if err := bootstrap.Run(ctx, cfg, bookingService, scheduleRepo, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
