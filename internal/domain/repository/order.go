package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/paperdesk/papermart/internal/domain/model"
)

// OrderRepository describes persistence operations for orders.
type OrderRepository interface {
	// CreateFromBasket atomically persists an order with its snapshotted
	// coupon, lines, and attachment copies, and deletes the source basket.
	// No partial order is ever visible.
	CreateFromBasket(ctx context.Context, basketID uuid.UUID, order *model.Order) (*model.Order, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Order, error)
	// HasPaidOrders reports whether the customer has at least one PAID
	// order; first-timer coupon eligibility depends on it.
	HasPaidOrders(ctx context.Context, ownerID int64) (bool, error)
}
