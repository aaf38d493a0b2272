package test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/paperdesk/papermart/internal/domain/model"
	"github.com/paperdesk/papermart/internal/usecase"
)

// AuthFacadeStub substitutes the auth facade in handler tests. Each call
// delegates to the matching Fn when set and returns zero values otherwise.
type AuthFacadeStub struct {
	RegisterFn     func(ctx context.Context, login, password string) (string, error)
	AuthenticateFn func(ctx context.Context, login, password string) (string, error)
	ParseTokenFn   func(token string) (int64, error)
}

func (s *AuthFacadeStub) Register(ctx context.Context, login, password string) (string, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, login, password)
	}
	return "", nil
}

func (s *AuthFacadeStub) Authenticate(ctx context.Context, login, password string) (string, error) {
	if s.AuthenticateFn != nil {
		return s.AuthenticateFn(ctx, login, password)
	}
	return "", nil
}

func (s *AuthFacadeStub) ParseToken(token string) (int64, error) {
	if s.ParseTokenFn != nil {
		return s.ParseTokenFn(token)
	}
	return 1, nil
}

// BasketFacadeStub substitutes the basket facade in handler tests.
type BasketFacadeStub struct {
	BasketFn           func(ctx context.Context, ownerID int64) (*model.Basket, error)
	AddBasketLineFn    func(ctx context.Context, ownerID int64, input usecase.LineInput) (*model.BasketLine, error)
	RemoveBasketLineFn func(ctx context.Context, ownerID int64, lineID uuid.UUID) (*model.Basket, error)
	ClearBasketFn      func(ctx context.Context, ownerID int64) (*model.Basket, error)
	ApplyCouponFn      func(ctx context.Context, ownerID int64, code string) (*model.Basket, error)
	SuggestCouponFn    func(ctx context.Context, ownerID int64) (*model.Coupon, error)
	AddAttachmentFn    func(ctx context.Context, ownerID int64, lineID uuid.UUID, attachment *model.Attachment) error
	CheckoutFn         func(ctx context.Context, ownerID int64) (*model.Order, error)
}

func (s *BasketFacadeStub) Basket(ctx context.Context, ownerID int64) (*model.Basket, error) {
	if s.BasketFn != nil {
		return s.BasketFn(ctx, ownerID)
	}
	return &model.Basket{OwnerID: ownerID}, nil
}

func (s *BasketFacadeStub) AddBasketLine(ctx context.Context, ownerID int64, input usecase.LineInput) (*model.BasketLine, error) {
	if s.AddBasketLineFn != nil {
		return s.AddBasketLineFn(ctx, ownerID, input)
	}
	return &model.BasketLine{}, nil
}

func (s *BasketFacadeStub) RemoveBasketLine(ctx context.Context, ownerID int64, lineID uuid.UUID) (*model.Basket, error) {
	if s.RemoveBasketLineFn != nil {
		return s.RemoveBasketLineFn(ctx, ownerID, lineID)
	}
	return &model.Basket{OwnerID: ownerID}, nil
}

func (s *BasketFacadeStub) ClearBasket(ctx context.Context, ownerID int64) (*model.Basket, error) {
	if s.ClearBasketFn != nil {
		return s.ClearBasketFn(ctx, ownerID)
	}
	return &model.Basket{OwnerID: ownerID}, nil
}

func (s *BasketFacadeStub) ApplyCoupon(ctx context.Context, ownerID int64, code string) (*model.Basket, error) {
	if s.ApplyCouponFn != nil {
		return s.ApplyCouponFn(ctx, ownerID, code)
	}
	return &model.Basket{OwnerID: ownerID}, nil
}

func (s *BasketFacadeStub) SuggestCoupon(ctx context.Context, ownerID int64) (*model.Coupon, error) {
	if s.SuggestCouponFn != nil {
		return s.SuggestCouponFn(ctx, ownerID)
	}
	return nil, nil
}

func (s *BasketFacadeStub) AddAttachment(ctx context.Context, ownerID int64, lineID uuid.UUID, attachment *model.Attachment) error {
	if s.AddAttachmentFn != nil {
		return s.AddAttachmentFn(ctx, ownerID, lineID, attachment)
	}
	return nil
}

func (s *BasketFacadeStub) BasketTotals(basket *model.Basket) (decimal.Decimal, decimal.Decimal, decimal.Decimal) {
	now := time.Now()
	return basket.Subtotal(), basket.Discount(now), basket.Total(now)
}

func (s *BasketFacadeStub) Checkout(ctx context.Context, ownerID int64) (*model.Order, error) {
	if s.CheckoutFn != nil {
		return s.CheckoutFn(ctx, ownerID)
	}
	return &model.Order{OwnerID: ownerID, Status: model.OrderStatusUnpaid}, nil
}

// OrderFacadeStub substitutes the order facade in handler tests.
type OrderFacadeStub struct {
	OrdersFn func(ctx context.Context, ownerID int64) ([]model.Order, error)
	OrderFn  func(ctx context.Context, ownerID, orderID int64) (*model.Order, []model.PaymentRecord, error)
}

func (s *OrderFacadeStub) Orders(ctx context.Context, ownerID int64) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, ownerID)
	}
	return nil, nil
}

func (s *OrderFacadeStub) Order(ctx context.Context, ownerID, orderID int64) (*model.Order, []model.PaymentRecord, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, ownerID, orderID)
	}
	return &model.Order{ID: orderID, OwnerID: ownerID, Status: model.OrderStatusUnpaid}, nil, nil
}

// PaymentFacadeStub records gateway payment event applications for webhook
// handler tests.
type PaymentFacadeStub struct {
	CompletedFn func(ctx context.Context, orderID int64, gateway model.GatewayKind, txRef string, amount decimal.Decimal, paidAt time.Time) error
	RefundFn    func(ctx context.Context, orderID int64, gateway model.GatewayKind, txRef string, amount decimal.Decimal, paidAt time.Time) error
	DeclineFn   func(ctx context.Context, orderID int64, gateway model.GatewayKind, txRef string, amount decimal.Decimal, paidAt time.Time) error

	Completed []RecordedPayment
	Refunded  []RecordedPayment
	Declined  []RecordedPayment
}

// RecordedPayment captures the arguments of one payment facade call.
type RecordedPayment struct {
	OrderID int64
	Gateway model.GatewayKind
	TxRef   string
	Amount  decimal.Decimal
	PaidAt  time.Time
}

func (s *PaymentFacadeStub) RecordPaymentCompleted(ctx context.Context, orderID int64, gateway model.GatewayKind, txRef string, amount decimal.Decimal, paidAt time.Time) error {
	if s.CompletedFn != nil {
		return s.CompletedFn(ctx, orderID, gateway, txRef, amount, paidAt)
	}
	s.Completed = append(s.Completed, RecordedPayment{orderID, gateway, txRef, amount, paidAt})
	return nil
}

func (s *PaymentFacadeStub) RecordPaymentRefund(ctx context.Context, orderID int64, gateway model.GatewayKind, txRef string, amount decimal.Decimal, paidAt time.Time) error {
	if s.RefundFn != nil {
		return s.RefundFn(ctx, orderID, gateway, txRef, amount, paidAt)
	}
	s.Refunded = append(s.Refunded, RecordedPayment{orderID, gateway, txRef, amount, paidAt})
	return nil
}

func (s *PaymentFacadeStub) RecordPaymentDecline(ctx context.Context, orderID int64, gateway model.GatewayKind, txRef string, amount decimal.Decimal, paidAt time.Time) error {
	if s.DeclineFn != nil {
		return s.DeclineFn(ctx, orderID, gateway, txRef, amount, paidAt)
	}
	s.Declined = append(s.Declined, RecordedPayment{orderID, gateway, txRef, amount, paidAt})
	return nil
}

// SubscriptionFacadeStub substitutes the subscription facade in webhook and
// handler tests.
type SubscriptionFacadeStub struct {
	ActivatedFn     func(ctx context.Context, externalID, planID string, startTime, nextBilling time.Time, cycles []model.BillingCycle) error
	SuspendedFn     func(ctx context.Context, externalID string) error
	CancelledFn     func(ctx context.Context, externalID string, eventCreatedAt time.Time) error
	SaleCompletedFn func(ctx context.Context, externalID, txRef string, amount decimal.Decimal, paidAt time.Time) error
	UpdatedFn       func(ctx context.Context, externalID string) error
	CurrentFn       func(ctx context.Context) (*model.Subscription, error)
	HistoryFn       func(ctx context.Context) ([]model.PaymentRecord, error)

	Activated []string
	Suspended []string
	Cancelled []string
	Sales     []string
	Updated   []string
}

func (s *SubscriptionFacadeStub) SubscriptionActivated(ctx context.Context, externalID, planID string, startTime, nextBilling time.Time, cycles []model.BillingCycle) error {
	if s.ActivatedFn != nil {
		return s.ActivatedFn(ctx, externalID, planID, startTime, nextBilling, cycles)
	}
	s.Activated = append(s.Activated, externalID)
	return nil
}

func (s *SubscriptionFacadeStub) SubscriptionSuspended(ctx context.Context, externalID string) error {
	if s.SuspendedFn != nil {
		return s.SuspendedFn(ctx, externalID)
	}
	s.Suspended = append(s.Suspended, externalID)
	return nil
}

func (s *SubscriptionFacadeStub) SubscriptionCancelled(ctx context.Context, externalID string, eventCreatedAt time.Time) error {
	if s.CancelledFn != nil {
		return s.CancelledFn(ctx, externalID, eventCreatedAt)
	}
	s.Cancelled = append(s.Cancelled, externalID)
	return nil
}

func (s *SubscriptionFacadeStub) SubscriptionSaleCompleted(ctx context.Context, externalID, txRef string, amount decimal.Decimal, paidAt time.Time) error {
	if s.SaleCompletedFn != nil {
		return s.SaleCompletedFn(ctx, externalID, txRef, amount, paidAt)
	}
	s.Sales = append(s.Sales, externalID)
	return nil
}

func (s *SubscriptionFacadeStub) SubscriptionUpdated(ctx context.Context, externalID string) error {
	if s.UpdatedFn != nil {
		return s.UpdatedFn(ctx, externalID)
	}
	s.Updated = append(s.Updated, externalID)
	return nil
}

func (s *SubscriptionFacadeStub) CurrentSubscription(ctx context.Context) (*model.Subscription, error) {
	if s.CurrentFn != nil {
		return s.CurrentFn(ctx)
	}
	return nil, nil
}

func (s *SubscriptionFacadeStub) BillingHistory(ctx context.Context) ([]model.PaymentRecord, error) {
	if s.HistoryFn != nil {
		return s.HistoryFn(ctx)
	}
	return nil, nil
}

// BillingFacadeStub aggregates the per-area stubs behind the full facade
// interface expected by the router.
type BillingFacadeStub struct {
	AuthFacadeStub
	BasketFacadeStub
	OrderFacadeStub
	PaymentFacadeStub
	SubscriptionFacadeStub
}

// NewBillingFacadeStub returns a stub with default behaviour everywhere.
func NewBillingFacadeStub() *BillingFacadeStub {
	return &BillingFacadeStub{}
}
