package usecase

import (
	"context"
	"time"

	"github.com/paperdesk/papermart/internal/domain/errors"
	"github.com/paperdesk/papermart/internal/domain/model"
	"github.com/paperdesk/papermart/internal/domain/repository"
)

// OrderNotifier schedules post-commit notification side effects. Calls must
// never block and their failure never affects the enclosing transaction.
type OrderNotifier interface {
	OrderReceived(orderID, ownerID int64)
	OrderPaid(orderID int64)
}

// CheckoutUseCase converts a basket into an immutable priced order.
type CheckoutUseCase struct {
	baskets  repository.BasketRepository
	orders   repository.OrderRepository
	notifier OrderNotifier
	now      func() time.Time
}

// NewCheckoutUseCase constructs CheckoutUseCase.
func NewCheckoutUseCase(baskets repository.BasketRepository, orders repository.OrderRepository, notifier OrderNotifier) *CheckoutUseCase {
	return &CheckoutUseCase{baskets: baskets, orders: orders, notifier: notifier, now: time.Now}
}

// Checkout snapshots the owner's basket into an order in one transaction:
// coupon code and discount are copied as plain values, every line's catalog
// display attributes become text fields, due dates are counted from the
// checkout instant, attachments are carried over, and the basket is deleted.
// An expired coupon is silently dropped. Notifications fire only after the
// transaction commits.
func (u *CheckoutUseCase) Checkout(ctx context.Context, ownerID int64) (*model.Order, error) {
	basket, err := u.baskets.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(basket.Lines) == 0 {
		return nil, errors.ErrEmptyBasket
	}

	now := u.now()
	order := &model.Order{
		OwnerID: ownerID,
		Status:  model.OrderStatusUnpaid,
	}

	if basket.Coupon != nil && !basket.Coupon.IsExpired(now) {
		order.Coupon = &model.OrderCoupon{
			Code:     basket.Coupon.Code,
			Discount: basket.Discount(now),
		}
	}

	for _, line := range basket.Lines {
		snapshot := model.OrderLine{
			Topic:         line.Topic,
			ServiceType:   line.ServiceType.Name,
			Turnaround:    line.Turnaround.FullName(),
			Pages:         line.Pages,
			Quantity:      line.Quantity,
			References:    line.References,
			Comment:       line.Comment,
			PagePrice:     line.PagePrice,
			TierSurcharge: line.TierSurcharge,
			DueDate:       line.Turnaround.DueDate(now),
			Status:        model.OrderLineStatusPending,
			Attachments:   line.Attachments,
		}
		if line.Level != nil {
			name := line.Level.Name
			snapshot.Level = &name
		}
		if line.Tier != nil {
			name := line.Tier.Name
			snapshot.Tier = &name
		}
		order.Lines = append(order.Lines, snapshot)
	}

	created, err := u.orders.CreateFromBasket(ctx, basket.ID, order)
	if err != nil {
		return nil, err
	}

	u.notifier.OrderReceived(created.ID, ownerID)

	return created, nil
}

// Get returns an order with its lines.
func (u *CheckoutUseCase) Get(ctx context.Context, id int64) (*model.Order, error) {
	return u.orders.GetByID(ctx, id)
}

// ListByOwner returns the customer's orders, newest first.
func (u *CheckoutUseCase) ListByOwner(ctx context.Context, ownerID int64) ([]model.Order, error) {
	return u.orders.ListByOwner(ctx, ownerID)
}
