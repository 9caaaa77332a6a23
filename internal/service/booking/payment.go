package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PaymentResult struct {
	Success       bool
	TransactionID string
	Message       string
}

type PaymentProcessor interface {
	Process(ctx context.Context, bookingID uuid.UUID, amountCents int64, email string) (PaymentResult, error)
}

// MockPaymentService stands in for the payment gateway: a fixed delay and a
// deterministic success.
type MockPaymentService struct {
	delay  time.Duration
	logger *zap.Logger
}

func NewMockPaymentService(delay time.Duration, logger *zap.Logger) *MockPaymentService {
	return &MockPaymentService{delay: delay, logger: logger}
}

func (p *MockPaymentService) Process(ctx context.Context, bookingID uuid.UUID, amountCents int64, email string) (PaymentResult, error) {
	p.logger.Info("processing payment",
		zap.String("booking_id", bookingID.String()),
		zap.Int64("amount_cents", amountCents))

	select {
	case <-time.After(p.delay):
	case <-ctx.Done():
		return PaymentResult{}, ctx.Err()
	}

	return PaymentResult{
		Success:       true,
		TransactionID: fmt.Sprintf("TXN%d", time.Now().UnixMilli()),
		Message:       "Payment successful",
	}, nil
}

var _ PaymentProcessor = (*MockPaymentService)(nil)
