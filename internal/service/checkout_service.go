package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"storefront/internal/broker"
	"storefront/internal/cart"
	"storefront/internal/chat"
	"storefront/internal/models"
	"storefront/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrEmptyCart    = errors.New("cart is empty")
	ErrCheckoutStep = errors.New("operation not allowed at this checkout step")
	ErrInvalidEmail = errors.New("invalid email address")
	ErrMissingField = errors.New("missing required field")
)

// Step is a checkout stage
type Step string

const (
	StepShipping Step = "shipping"
	StepPayment  Step = "payment"
	StepComplete Step = "complete"
)

// ShippingDetails is the first checkout form
type ShippingDetails struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
}

// DefaultCountry is preselected on the shipping form
const DefaultCountry = "United States"

func (d *ShippingDetails) validate() error {
	d.Email = strings.TrimSpace(d.Email)
	if !chat.ValidEmail(d.Email) {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, d.Email)
	}
	required := map[string]string{
		"firstName": d.FirstName,
		"lastName":  d.LastName,
		"address":   d.Address,
		"city":      d.City,
		"zip":       d.Zip,
	}
	for name, v := range required {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, name)
		}
	}
	if strings.TrimSpace(d.Country) == "" {
		d.Country = DefaultCountry
	}
	return nil
}

// Receipt summarises a completed checkout
type Receipt struct {
	OrderID     string            `json:"orderId"`
	Email       string            `json:"email"`
	Items       []models.CartLine `json:"items"`
	Subtotal    decimal.Decimal   `json:"subtotal"`
	ShippingFee decimal.Decimal   `json:"shippingFee"`
	Total       decimal.Decimal   `json:"total"`
	TxID        string            `json:"txId"`
}

// CheckoutState is what the checkout page renders
type CheckoutState struct {
	Step        Step             `json:"step"`
	Processing  bool             `json:"processing"`
	Shipping    *ShippingDetails `json:"shipping,omitempty"`
	Subtotal    decimal.Decimal  `json:"subtotal"`
	ShippingFee decimal.Decimal  `json:"shippingFee"`
	Total       decimal.Decimal  `json:"total"`
	Receipt     *Receipt         `json:"receipt,omitempty"`
}

// CheckoutService walks the cart through shipping and payment. Payment always
// succeeds; completion creates an order and empties the cart.
type CheckoutService struct {
	mu         sync.Mutex
	step       Step
	processing bool
	shipping   *ShippingDetails
	receipt    *Receipt

	cart           *cart.Store
	orders         *OrderDirectory
	payments       *PaymentService
	eventPublisher *broker.EventPublisher
	shippingFee    decimal.Decimal
	logger         *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	cartStore *cart.Store,
	orders *OrderDirectory,
	payments *PaymentService,
	eventPublisher *broker.EventPublisher,
	shippingFee decimal.Decimal,
) *CheckoutService {
	return &CheckoutService{
		step:           StepShipping,
		cart:           cartStore,
		orders:         orders,
		payments:       payments,
		eventPublisher: eventPublisher,
		shippingFee:    shippingFee,
		logger:         util.GetLogger(),
	}
}

// State returns the current step with totals computed from the live cart
func (s *CheckoutService) State() CheckoutState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := CheckoutState{
		Step:        s.step,
		Processing:  s.processing,
		ShippingFee: s.shippingFee,
		Receipt:     s.receipt,
	}
	if s.shipping != nil {
		cp := *s.shipping
		st.Shipping = &cp
	}
	if s.receipt != nil {
		st.Subtotal = s.receipt.Subtotal
		st.Total = s.receipt.Total
	} else {
		st.Subtotal = s.cart.TotalPrice()
		st.Total = st.Subtotal.Add(s.shippingFee)
	}
	return st
}

// SubmitShipping records the shipping form and advances to payment
func (s *CheckoutService) SubmitShipping(ctx context.Context, details ShippingDetails) error {
	_, span := util.StartSpan(ctx, "CheckoutService.SubmitShipping")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != StepShipping {
		return fmt.Errorf("%w: submit shipping during %s", ErrCheckoutStep, s.step)
	}
	if s.cart.TotalItems() == 0 {
		return ErrEmptyCart
	}
	if err := details.validate(); err != nil {
		return err
	}

	s.shipping = &details
	s.step = StepPayment
	util.CheckoutStepsTotal.WithLabelValues(string(StepShipping)).Inc()
	s.logger.Info("Shipping details accepted", zap.String("email", details.Email))
	return nil
}

// Back returns from payment to shipping, keeping the entered details
func (s *CheckoutService) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != StepPayment || s.processing {
		return fmt.Errorf("%w: back during %s", ErrCheckoutStep, s.step)
	}
	s.step = StepShipping
	return nil
}

// SubmitPayment runs the simulated payment, then places the order and removes
// the paid-for lines from the cart. Items added while payment is processing
// are not part of the order and stay in the cart.
func (s *CheckoutService) SubmitPayment(ctx context.Context, payment PaymentDetails) (*Receipt, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.SubmitPayment")
	defer span.End()

	s.mu.Lock()
	if s.step != StepPayment || s.processing {
		step := s.step
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: submit payment during %s", ErrCheckoutStep, step)
	}
	snap := s.cart.Snapshot()
	if snap.TotalItems == 0 {
		s.mu.Unlock()
		return nil, ErrEmptyCart
	}
	s.processing = true
	email := s.shipping.Email
	s.mu.Unlock()

	total := snap.TotalPrice.Add(s.shippingFee)

	txID, err := s.payments.ProcessPayment(ctx, total)
	if err != nil {
		s.finishProcessing(nil)
		return nil, err
	}

	order, err := s.orders.CreateOrder(ctx, email, total)
	if err != nil {
		s.finishProcessing(nil)
		return nil, err
	}

	receipt := &Receipt{
		OrderID:     order.ID,
		Email:       email,
		Items:       snap.Items,
		Subtotal:    snap.TotalPrice,
		ShippingFee: s.shippingFee,
		Total:       total,
		TxID:        txID,
	}

	// Only what was paid for leaves the cart
	s.cart.Deduct(snap.Items)
	s.finishProcessing(receipt)

	util.CheckoutStepsTotal.WithLabelValues(string(StepPayment)).Inc()
	util.OrdersPlacedTotal.Inc()

	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		OrderID: order.ID,
		Email:   email,
		Total:   total,
		Items:   snap.Items,
	}
	if err := s.eventPublisher.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
	}

	s.logger.Info("Checkout complete", zap.String("order_id", order.ID), zap.String("tx_id", txID))
	return receipt, nil
}

func (s *CheckoutService) finishProcessing(receipt *Receipt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processing = false
	if receipt != nil {
		s.receipt = receipt
		s.step = StepComplete
	}
}

// Reset starts a fresh checkout
func (s *CheckoutService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.processing {
		return
	}
	s.step = StepShipping
	s.shipping = nil
	s.receipt = nil
}
