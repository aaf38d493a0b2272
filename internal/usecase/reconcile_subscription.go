package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/paperdesk/papermart/internal/domain/errors"
	"github.com/paperdesk/papermart/internal/domain/model"
	"github.com/paperdesk/papermart/internal/domain/repository"
)

// SubscriptionResource is the full subscription state fetched out-of-band
// from the gateway when a webhook payload is partial.
type SubscriptionResource struct {
	ExternalID      string
	PlanID          string
	StartTime       time.Time
	NextBillingTime time.Time
	Cycles          []model.BillingCycle
}

// SubscriptionGateway fetches subscription resources from the external
// gateway. Implementations own their timeout and retry policy; a slow
// upstream must not consume the webhook caller's retry budget.
type SubscriptionGateway interface {
	GetSubscription(ctx context.Context, externalID string) (*SubscriptionResource, error)
}

// SubscriptionUseCase reconciles gateway subscription events into the
// platform's recurring-billing state.
type SubscriptionUseCase struct {
	subscriptions repository.SubscriptionRepository
	gateway       SubscriptionGateway
}

// NewSubscriptionUseCase constructs SubscriptionUseCase.
func NewSubscriptionUseCase(subscriptions repository.SubscriptionRepository, gateway SubscriptionGateway) *SubscriptionUseCase {
	return &SubscriptionUseCase{subscriptions: subscriptions, gateway: gateway}
}

// Activated handles a subscription activation. Without an existing link a
// new subscription and link are created; activation retires every other
// currently ACTIVE subscription in the same transaction, keeping at most
// one active system-wide. With an existing link only next billing time and
// status are refreshed.
func (u *SubscriptionUseCase) Activated(ctx context.Context, externalID, planID string, startTime, nextBilling time.Time, cycles []model.BillingCycle) error {
	link, err := u.subscriptions.GetLinkByExternalID(ctx, externalID)
	if err != nil && !errors.Is(err, domainErrors.ErrNotFound) {
		return err
	}

	if link != nil {
		return u.subscriptions.Reactivate(ctx, link.Target.SubscriptionID, nextBilling)
	}

	sub := &model.Subscription{
		ID:              uuid.New(),
		Status:          model.SubscriptionStatusActive,
		IsOnTrial:       model.IsOnTrial(cycles),
		StartTime:       startTime,
		NextBillingTime: nextBilling,
	}
	newLink := &model.GatewayLink{
		ID:         uuid.New(),
		Target:     model.SubscriptionTarget(sub.ID),
		Gateway:    model.GatewayKindPayPal,
		ExternalID: externalID,
		PlanID:     planID,
	}
	_, err = u.subscriptions.Activate(ctx, sub, newLink)
	return err
}

// Suspended transitions the linked subscription to SUSPENDED. An unmatched
// link is acknowledged silently; the subscription may belong to another
// tenant context.
func (u *SubscriptionUseCase) Suspended(ctx context.Context, externalID string) error {
	link, err := u.subscriptions.GetLinkByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil
		}
		return err
	}
	return u.subscriptions.Suspend(ctx, link.Target.SubscriptionID)
}

// Cancelled transitions the linked subscription to CANCELLED, recording the
// event's creation time. An unmatched link is acknowledged silently.
func (u *SubscriptionUseCase) Cancelled(ctx context.Context, externalID string, eventCreatedAt time.Time) error {
	link, err := u.subscriptions.GetLinkByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil
		}
		return err
	}
	return u.subscriptions.Cancel(ctx, link.Target.SubscriptionID, eventCreatedAt)
}

// SaleCompleted appends a recurring-billing ledger record. The link must
// already exist: a sale arriving before its activation is transient and the
// gateway should redeliver after the activation lands.
func (u *SubscriptionUseCase) SaleCompleted(ctx context.Context, externalID, txRef string, amount decimal.Decimal, paidAt time.Time) error {
	link, err := u.subscriptions.GetLinkByExternalID(ctx, externalID)
	if err != nil {
		return mapTargetErr(err)
	}

	record := &model.PaymentRecord{
		ID:      uuid.New(),
		Target:  model.SubscriptionTarget(link.Target.SubscriptionID),
		Amount:  amount,
		Status:  model.PaymentStatusCompleted,
		Gateway: link.Gateway,
		PaidAt:  &paidAt,
	}
	if txRef != "" {
		record.TxRef = &txRef
	}
	_, err = u.subscriptions.RecordSalePayment(ctx, link.ID, record)
	return err
}

// Updated handles a partial update payload by fetching the full resource
// from the gateway, then refreshing next billing time and trial state.
// Token exchange or fetch failures are a configuration/upstream failure
// class, distinct from signature verification, and fail this event.
func (u *SubscriptionUseCase) Updated(ctx context.Context, externalID string) error {
	resource, err := u.gateway.GetSubscription(ctx, externalID)
	if err != nil {
		return fmt.Errorf("fetch subscription %s: %w", externalID, err)
	}

	link, err := u.subscriptions.GetLinkByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil
		}
		return err
	}

	return u.subscriptions.UpdateBilling(ctx, link.Target.SubscriptionID, resource.NextBillingTime, model.IsOnTrial(resource.Cycles))
}

// Current returns the most recently created subscription, nil when none
// exists yet.
func (u *SubscriptionUseCase) Current(ctx context.Context) (*model.Subscription, error) {
	sub, err := u.subscriptions.Current(ctx)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return sub, nil
}

// BillingHistory returns the platform's recurring-billing ledger.
func (u *SubscriptionUseCase) BillingHistory(ctx context.Context) ([]model.PaymentRecord, error) {
	return u.subscriptions.BillingHistory(ctx)
}
