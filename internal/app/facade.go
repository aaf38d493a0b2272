package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/paperdesk/papermart/internal/domain/errors"
	"github.com/paperdesk/papermart/internal/domain/model"
	"github.com/paperdesk/papermart/internal/usecase"
)

// BillingFacade aggregates the use cases behind the HTTP surface.
type BillingFacade struct {
	auth          *usecase.AuthUseCase
	baskets       *usecase.BasketUseCase
	checkout      *usecase.CheckoutUseCase
	payments      *usecase.PaymentUseCase
	subscriptions *usecase.SubscriptionUseCase
}

// NewBillingFacade constructs BillingFacade.
func NewBillingFacade(
	auth *usecase.AuthUseCase,
	baskets *usecase.BasketUseCase,
	checkout *usecase.CheckoutUseCase,
	payments *usecase.PaymentUseCase,
	subscriptions *usecase.SubscriptionUseCase,
) *BillingFacade {
	return &BillingFacade{
		auth:          auth,
		baskets:       baskets,
		checkout:      checkout,
		payments:      payments,
		subscriptions: subscriptions,
	}
}

func (f *BillingFacade) Register(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Register(ctx, login, password)
	return token, err
}

func (f *BillingFacade) Authenticate(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, login, password)
	return token, err
}

func (f *BillingFacade) ParseToken(token string) (int64, error) {
	return f.auth.ParseToken(token)
}

func (f *BillingFacade) Basket(ctx context.Context, ownerID int64) (*model.Basket, error) {
	return f.baskets.Get(ctx, ownerID)
}

func (f *BillingFacade) AddBasketLine(ctx context.Context, ownerID int64, input usecase.LineInput) (*model.BasketLine, error) {
	return f.baskets.AddOrUpdateLine(ctx, ownerID, input)
}

func (f *BillingFacade) RemoveBasketLine(ctx context.Context, ownerID int64, lineID uuid.UUID) (*model.Basket, error) {
	return f.baskets.RemoveLine(ctx, ownerID, lineID)
}

func (f *BillingFacade) ClearBasket(ctx context.Context, ownerID int64) (*model.Basket, error) {
	return f.baskets.Clear(ctx, ownerID)
}

func (f *BillingFacade) ApplyCoupon(ctx context.Context, ownerID int64, code string) (*model.Basket, error) {
	return f.baskets.ApplyCoupon(ctx, ownerID, code)
}

func (f *BillingFacade) SuggestCoupon(ctx context.Context, ownerID int64) (*model.Coupon, error) {
	return f.baskets.SuggestCoupon(ctx, ownerID)
}

func (f *BillingFacade) AddAttachment(ctx context.Context, ownerID int64, lineID uuid.UUID, attachment *model.Attachment) error {
	return f.baskets.AddAttachment(ctx, ownerID, lineID, attachment)
}

func (f *BillingFacade) BasketTotals(basket *model.Basket) (subtotal, discount, total decimal.Decimal) {
	return f.baskets.Totals(basket)
}

func (f *BillingFacade) Checkout(ctx context.Context, ownerID int64) (*model.Order, error) {
	return f.checkout.Checkout(ctx, ownerID)
}

func (f *BillingFacade) Orders(ctx context.Context, ownerID int64) ([]model.Order, error) {
	return f.checkout.ListByOwner(ctx, ownerID)
}

// Order returns a single order with its ledger, scoped to the owner. An
// order belonging to someone else is indistinguishable from a missing one.
func (f *BillingFacade) Order(ctx context.Context, ownerID, orderID int64) (*model.Order, []model.PaymentRecord, error) {
	order, err := f.checkout.Get(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if order.OwnerID != ownerID {
		return nil, nil, domainErrors.ErrNotFound
	}
	ledger, err := f.payments.Ledger(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	return order, ledger, nil
}

func (f *BillingFacade) RecordPaymentCompleted(ctx context.Context, orderID int64, gateway model.GatewayKind, txRef string, amount decimal.Decimal, paidAt time.Time) error {
	return f.payments.RecordCompleted(ctx, orderID, gateway, txRef, amount, paidAt)
}

func (f *BillingFacade) RecordPaymentRefund(ctx context.Context, orderID int64, gateway model.GatewayKind, txRef string, amount decimal.Decimal, paidAt time.Time) error {
	return f.payments.RecordRefund(ctx, orderID, gateway, txRef, amount, paidAt)
}

func (f *BillingFacade) RecordPaymentDecline(ctx context.Context, orderID int64, gateway model.GatewayKind, txRef string, amount decimal.Decimal, paidAt time.Time) error {
	return f.payments.RecordDecline(ctx, orderID, gateway, txRef, amount, paidAt)
}

func (f *BillingFacade) SubscriptionActivated(ctx context.Context, externalID, planID string, startTime, nextBilling time.Time, cycles []model.BillingCycle) error {
	return f.subscriptions.Activated(ctx, externalID, planID, startTime, nextBilling, cycles)
}

func (f *BillingFacade) SubscriptionSuspended(ctx context.Context, externalID string) error {
	return f.subscriptions.Suspended(ctx, externalID)
}

func (f *BillingFacade) SubscriptionCancelled(ctx context.Context, externalID string, eventCreatedAt time.Time) error {
	return f.subscriptions.Cancelled(ctx, externalID, eventCreatedAt)
}

func (f *BillingFacade) SubscriptionSaleCompleted(ctx context.Context, externalID, txRef string, amount decimal.Decimal, paidAt time.Time) error {
	return f.subscriptions.SaleCompleted(ctx, externalID, txRef, amount, paidAt)
}

func (f *BillingFacade) SubscriptionUpdated(ctx context.Context, externalID string) error {
	return f.subscriptions.Updated(ctx, externalID)
}

func (f *BillingFacade) CurrentSubscription(ctx context.Context) (*model.Subscription, error) {
	return f.subscriptions.Current(ctx)
}

func (f *BillingFacade) BillingHistory(ctx context.Context) ([]model.PaymentRecord, error) {
	return f.subscriptions.BillingHistory(ctx)
}
