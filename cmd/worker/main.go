package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	kafkaGo "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/rajeev-ju/flight-booking-system/config"
	"github.com/rajeev-ju/flight-booking-system/internal/cache"
	"github.com/rajeev-ju/flight-booking-system/internal/client"
	"github.com/rajeev-ju/flight-booking-system/internal/dedupe"
	"github.com/rajeev-ju/flight-booking-system/internal/email"
	"github.com/rajeev-ju/flight-booking-system/internal/kafka"
	"github.com/rajeev-ju/flight-booking-system/internal/repository"
	"github.com/rajeev-ju/flight-booking-system/internal/service/booking"
	"github.com/rajeev-ju/flight-booking-system/internal/service/inventory"
)

const consumerRestartDelay = 5 * time.Second

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

	processed, err := dedupe.Open(cfg.Worker.DedupePath)
	if err != nil {
		logger.Fatal("open dedupe store", zap.Error(err))
	}
	defer processed.Close()

	seatCache := cache.NewSeatCache(
		cfg.Redis,
		time.Duration(cfg.Booking.SeatBlockTTLMinutes)*time.Minute,
		time.Duration(cfg.Booking.SeatCacheTTLHours)*time.Hour,
		logger,
	)
	defer seatCache.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers, logger)
	defer producer.Close()

	bookingRepo := repository.NewBookingRepository(pool)
	scheduleRepo := repository.NewScheduleRepository(pool)

	bookingService := booking.NewService(
		bookingRepo,
		seatCache,
		client.New(cfg.Flights, logger),
		producer,
		booking.NewMockPaymentService(time.Duration(cfg.Booking.PaymentDelayMillis)*time.Millisecond, logger),
		cfg.Kafka.BookingTopic,
		cfg.Kafka.SeatUpdatesTopic,
		time.Duration(cfg.Booking.SeatBlockTTLMinutes)*time.Minute,
		time.Duration(cfg.Booking.CancelCutoffHours)*time.Hour,
		cfg.Booking.PublishRetryAttempts,
		logger,
	)

	// Seat updates reconcile the source of record with what the cache
	// already committed to.
	seatHandler := inventory.NewHandler(scheduleRepo, processed, logger)
	seatConsumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.SeatUpdatesTopic, logger)
	defer seatConsumer.Close()

	go kafka.RunConsumer(ctx, logger, "seat-updates", consumerRestartDelay,
		seatConsumer.Consume, seatHandler.HandleSeatUpdate)

	// Booking lifecycle events drive user notifications.
	sender := email.NewSender(logger)
	bookingConsumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID+"-notifications", cfg.Kafka.BookingTopic, logger)
	defer bookingConsumer.Close()

	go kafka.RunConsumer(ctx, logger, "booking-events", consumerRestartDelay,
		bookingConsumer.Consume, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.BookingEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				logger.Error("dropping undecodable booking event", zap.Error(err))
				return nil
			}
			return sender.Send(ctx, event)
		})

	// Expired seat blocks drop their Redis record without restoring the
	// available counter; this sweep fails the stalled bookings and plugs
	// the leak.
	sweepTicker := time.NewTicker(time.Duration(cfg.Worker.StaleSweepMinutes) * time.Minute)
	defer sweepTicker.Stop()

	for {
		select {
		case <-sweepTicker.C:
			stale, err := bookingService.FailStaleBookings(ctx)
			if err != nil {
				logger.Error("stale booking sweep failed", zap.Error(err))
				continue
			}
			if len(stale) > 0 {
				logger.Info("failed stale bookings", zap.Int("count", len(stale)))
			}
		case <-ctx.Done():
			logger.Info("shutting down worker")
			return
		}
	}
}
