package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentDetails is the card form of the payment step. It is never charged.
type PaymentDetails struct {
	CardNumber string `json:"cardNumber" binding:"required"`
	Expiry     string `json:"expiry" binding:"required"`
	CVC        string `json:"cvc" binding:"required"`
	Name       string `json:"name" binding:"required"`
}

// PaymentService simulates a payment provider
type PaymentService struct {
	delay  time.Duration
	logger *zap.Logger
}

// NewPaymentService creates a payment simulator that answers after delay
func NewPaymentService(delay time.Duration) *PaymentService {
	return &PaymentService{
		delay:  delay,
		logger: util.GetLogger(),
	}
}

// ProcessPayment waits out the simulated processing time and always succeeds.
// It only fails if ctx ends first.
func (ps *PaymentService) ProcessPayment(ctx context.Context, amount decimal.Decimal) (string, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.ProcessPayment")
	defer span.End()

	start := time.Now()
	defer func() {
		util.PaymentProcessingLatency.Observe(time.Since(start).Seconds())
	}()

	ps.logger.Info("Processing payment", zap.String("amount", amount.StringFixed(2)))

	if err := sleepCtx(ctx, ps.delay); err != nil {
		return "", fmt.Errorf("payment interrupted: %w", err)
	}

	txID := fmt.Sprintf("TXN-%s", uuid.New().String()[:8])
	ps.logger.Info("Payment succeeded", zap.String("tx_id", txID))
	return txID, nil
}

// sleepCtx waits for d or until ctx is done
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
