package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"storefront/internal/models"
	"storefront/internal/store"
	"storefront/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrOrderNotFound is returned by every OrderRepository for unknown ids
var ErrOrderNotFound = store.ErrOrderNotFound

// OrderRepository stores placed orders and answers order lookups.
// *store.Store is the Postgres implementation.
type OrderRepository interface {
	Lookup(ctx context.Context, id string) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) error
}

var _ OrderRepository = (*store.Store)(nil)

// ReferenceOrders are the demo orders the tracking flow can find
func ReferenceOrders() []models.Order {
	return []models.Order{
		{
			ID:        "JM-2024-001",
			Status:    models.OrderStatusShipped,
			Total:     decimal.RequireFromString("70.00"),
			Email:     "demo@example.com",
			CreatedAt: time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:        "JM-2024-002",
			Status:    models.OrderStatusDelivered,
			Total:     decimal.RequireFromString("35.00"),
			Email:     "test@example.com",
			CreatedAt: time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC),
		},
	}
}

// NewOrderID builds a JM-###### id from the last six digits of the epoch milliseconds
func NewOrderID(now time.Time) string {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	return "JM-" + ms
}

// MemoryOrderRepository keeps orders in process, seeded with the reference orders
type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders []models.Order
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: ReferenceOrders()}
}

// Lookup finds an order by id, ignoring case
func (r *MemoryOrderRepository) Lookup(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		if strings.EqualFold(o.ID, id) {
			found := o
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
}

func (r *MemoryOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, *order)
	return nil
}

// OrderDirectory issues new orders and resolves lookups
type OrderDirectory struct {
	repo   OrderRepository
	now    func() time.Time
	logger *zap.Logger
}

func NewOrderDirectory(repo OrderRepository) *OrderDirectory {
	return &OrderDirectory{
		repo:   repo,
		now:    time.Now,
		logger: util.GetLogger(),
	}
}

// Lookup resolves an order id for the tracking flow
func (d *OrderDirectory) Lookup(ctx context.Context, id string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderDirectory.Lookup")
	defer span.End()

	return d.repo.Lookup(ctx, strings.TrimSpace(id))
}

// CreateOrder records a pending order for email and returns it
func (d *OrderDirectory) CreateOrder(ctx context.Context, email string, total decimal.Decimal) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderDirectory.CreateOrder")
	defer span.End()

	now := d.now()
	order := &models.Order{
		ID:        NewOrderID(now),
		Status:    models.OrderStatusPending,
		Total:     total,
		Email:     email,
		CreatedAt: now,
	}
	if err := d.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	d.logger.Info("Order created", zap.String("order_id", order.ID), zap.String("total", total.StringFixed(2)))
	return order, nil
}
