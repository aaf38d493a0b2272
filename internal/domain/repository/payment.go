package repository

import (
	"context"

	"github.com/paperdesk/papermart/internal/domain/model"
)

// CompletedOutcome reports what a completed-payment application did.
type CompletedOutcome struct {
	// Applied is false when the record was a duplicate idempotency key and
	// nothing changed.
	Applied bool
	// OrderPaid is true when this application brought the balance to zero
	// and transitioned the order to PAID.
	OrderPaid bool
}

// PaymentRepository applies gateway payment events to an order and its
// ledger. Each Apply* call is a single transaction serialized per order;
// all three deduplicate on the record's transaction reference.
type PaymentRepository interface {
	ApplyCompleted(ctx context.Context, orderID int64, record *model.PaymentRecord) (*CompletedOutcome, error)
	ApplyRefund(ctx context.Context, orderID int64, record *model.PaymentRecord) (bool, error)
	ApplyDecline(ctx context.Context, orderID int64, record *model.PaymentRecord) (bool, error)
	ListByOrder(ctx context.Context, orderID int64) ([]model.PaymentRecord, error)
}
