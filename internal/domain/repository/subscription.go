package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/paperdesk/papermart/internal/domain/model"
)

// SubscriptionRepository manages the platform subscription lifecycle and its
// gateway links.
type SubscriptionRepository interface {
	// Activate persists a new subscription with its gateway link and, in
	// the same transaction, retires every other currently ACTIVE
	// subscription, stamping retired_at.
	Activate(ctx context.Context, sub *model.Subscription, link *model.GatewayLink) (*model.Subscription, error)
	// Reactivate refreshes next billing time and forces status ACTIVE on
	// an already linked subscription.
	Reactivate(ctx context.Context, subscriptionID uuid.UUID, nextBilling time.Time) error
	// UpdateBilling refreshes next billing time and trial state.
	UpdateBilling(ctx context.Context, subscriptionID uuid.UUID, nextBilling time.Time, isOnTrial bool) error
	Suspend(ctx context.Context, subscriptionID uuid.UUID) error
	Cancel(ctx context.Context, subscriptionID uuid.UUID, cancelledAt time.Time) error
	GetLinkByExternalID(ctx context.Context, externalID string) (*model.GatewayLink, error)
	// RecordSalePayment appends a ledger record for a recurring sale,
	// deduplicating on the transaction reference. Returns false when the
	// record already existed.
	RecordSalePayment(ctx context.Context, linkID uuid.UUID, record *model.PaymentRecord) (bool, error)
	// Current returns the most recently created subscription.
	Current(ctx context.Context) (*model.Subscription, error)
	BillingHistory(ctx context.Context) ([]model.PaymentRecord, error)
}
