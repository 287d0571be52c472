package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"tikiti/internal/shared/apperr"

	"gorm.io/gorm"
)

// ErrAlreadySettled is returned when a terminal order is updated again
var ErrAlreadySettled = errors.New("order already settled")

// Recorder stores orders. Postgres when configured, process memory otherwise.
type Recorder interface {
	Create(ctx context.Context, order *Order) error
	// UpdateStatus moves a pending order to its terminal status
	UpdateStatus(ctx context.Context, id string, update Update) error
	GetByID(ctx context.Context, id string) (*Order, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Recorder {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, order *Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id string, update Update) error {
	settledAt := update.SettledAt
	result := r.db.WithContext(ctx).
		Model(&Order{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]interface{}{
			"status":            update.Status,
			"payment_reference": update.PaymentReference,
			"failure_reason":    update.FailureReason,
			"settled_at":        &settledAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update order: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrAlreadySettled
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Order, error) {
	var order Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order", id)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

type memoryRecorder struct {
	mu     sync.RWMutex
	orders map[string]Order
}

func NewMemoryRecorder() Recorder {
	return &memoryRecorder{orders: make(map[string]Order)}
}

func (m *memoryRecorder) Create(ctx context.Context, order *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.orders[order.ID]; exists {
		return fmt.Errorf("failed to create order: duplicate id %s", order.ID)
	}
	m.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (m *memoryRecorder) UpdateStatus(ctx context.Context, id string, update Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return apperr.NotFound("order", id)
	}
	if order.Status != StatusPending {
		return ErrAlreadySettled
	}
	settledAt := update.SettledAt
	order.Status = update.Status
	order.PaymentReference = update.PaymentReference
	order.FailureReason = update.FailureReason
	order.SettledAt = &settledAt
	order.UpdatedAt = settledAt
	m.orders[id] = order
	return nil
}

func (m *memoryRecorder) GetByID(ctx context.Context, id string) (*Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, apperr.NotFound("order", id)
	}
	out := cloneOrder(order)
	return &out, nil
}

func cloneOrder(o Order) Order {
	o.Items = append([]OrderItem(nil), o.Items...)
	return o
}
