package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/paperdesk/papermart/internal/domain/model"
	"github.com/paperdesk/papermart/internal/usecase"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, login, password string) (string, error)
	Authenticate(ctx context.Context, login, password string) (string, error)
	ParseToken(token string) (int64, error)
}

// BasketFacade encapsulates basket operations exposed via HTTP.
type BasketFacade interface {
	Basket(ctx context.Context, ownerID int64) (*model.Basket, error)
	AddBasketLine(ctx context.Context, ownerID int64, input usecase.LineInput) (*model.BasketLine, error)
	RemoveBasketLine(ctx context.Context, ownerID int64, lineID uuid.UUID) (*model.Basket, error)
	ClearBasket(ctx context.Context, ownerID int64) (*model.Basket, error)
	ApplyCoupon(ctx context.Context, ownerID int64, code string) (*model.Basket, error)
	SuggestCoupon(ctx context.Context, ownerID int64) (*model.Coupon, error)
	AddAttachment(ctx context.Context, ownerID int64, lineID uuid.UUID, attachment *model.Attachment) error
	BasketTotals(basket *model.Basket) (subtotal, discount, total decimal.Decimal)
	Checkout(ctx context.Context, ownerID int64) (*model.Order, error)
}

// OrderFacade provides read access to orders and their ledgers.
type OrderFacade interface {
	Orders(ctx context.Context, ownerID int64) ([]model.Order, error)
	Order(ctx context.Context, ownerID, orderID int64) (*model.Order, []model.PaymentRecord, error)
}

// PaymentFacade applies verified gateway payment events.
type PaymentFacade interface {
	RecordPaymentCompleted(ctx context.Context, orderID int64, gateway model.GatewayKind, txRef string, amount decimal.Decimal, paidAt time.Time) error
	RecordPaymentRefund(ctx context.Context, orderID int64, gateway model.GatewayKind, txRef string, amount decimal.Decimal, paidAt time.Time) error
	RecordPaymentDecline(ctx context.Context, orderID int64, gateway model.GatewayKind, txRef string, amount decimal.Decimal, paidAt time.Time) error
}

// SubscriptionFacade applies platform subscription events and serves reads.
type SubscriptionFacade interface {
	SubscriptionActivated(ctx context.Context, externalID, planID string, startTime, nextBilling time.Time, cycles []model.BillingCycle) error
	SubscriptionSuspended(ctx context.Context, externalID string) error
	SubscriptionCancelled(ctx context.Context, externalID string, eventCreatedAt time.Time) error
	SubscriptionSaleCompleted(ctx context.Context, externalID, txRef string, amount decimal.Decimal, paidAt time.Time) error
	SubscriptionUpdated(ctx context.Context, externalID string) error
	CurrentSubscription(ctx context.Context) (*model.Subscription, error)
	BillingHistory(ctx context.Context) ([]model.PaymentRecord, error)
}

// BillingFacade aggregates the full set of operations used across handlers.
type BillingFacade interface {
	AuthFacade
	BasketFacade
	OrderFacade
	PaymentFacade
	SubscriptionFacade
}
