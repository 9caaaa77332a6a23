package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rajeev-ju/flight-booking-system/api"
	"github.com/rajeev-ju/flight-booking-system/config"
	"github.com/rajeev-ju/flight-booking-system/internal/repository"
	"github.com/rajeev-ju/flight-booking-system/internal/service/booking"
)

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails.
func Run(ctx context.Context, cfg *config.Config, bookingSvc booking.BookingUseCase, schedules repository.ScheduleRepository, logger *zap.Logger) error {
	router := gin.New()
	router.Use(gin.Recovery())

	root := router.Group("/api")
	api.NewBookingHandler(bookingSvc).Register(root.Group("/bookings"))
	api.NewScheduleHandler(schedules).Register(root.Group("/schedules"))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("address", cfg.HTTP.Address))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}
