package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus describes the state of a single ledger record.
type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "PENDING"
	PaymentStatusCompleted         PaymentStatus = "COMPLETED"
	PaymentStatusRefunded          PaymentStatus = "REFUNDED"
	PaymentStatusPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
	PaymentStatusDeclined          PaymentStatus = "DECLINED"
	PaymentStatusFailed            PaymentStatus = "FAILED"
)

// GatewayKind identifies the external payment gateway a record came from.
type GatewayKind string

const (
	GatewayKindPayPal      GatewayKind = "PAYPAL"
	GatewayKindTwoCheckout GatewayKind = "TWOCHECKOUT"
)

// TargetKind discriminates what a ledger record or gateway link points at.
type TargetKind string

const (
	TargetKindOrder        TargetKind = "ORDER"
	TargetKindSubscription TargetKind = "SUBSCRIPTION"
)

// Target is a discriminated reference to either a customer order or a
// platform subscription gateway link. Consumers switch on Kind; exactly one
// of the typed ids is meaningful.
type Target struct {
	Kind           TargetKind
	OrderID        int64
	SubscriptionID uuid.UUID
}

// OrderTarget builds an order-scoped target.
func OrderTarget(orderID int64) Target {
	return Target{Kind: TargetKindOrder, OrderID: orderID}
}

// SubscriptionTarget builds a subscription-scoped target.
func SubscriptionTarget(id uuid.UUID) Target {
	return Target{Kind: TargetKindSubscription, SubscriptionID: id}
}

// PaymentRecord is one entry of the payment ledger. TxRef, when present, is
// the gateway transaction reference used as idempotency key: at most one
// completed-or-later record may exist per (target, TxRef).
type PaymentRecord struct {
	ID        uuid.UUID
	Target    Target
	TxRef     *string
	Amount    decimal.Decimal
	Status    PaymentStatus
	Gateway   GatewayKind
	PaidAt    *time.Time
	CreatedAt time.Time
}
