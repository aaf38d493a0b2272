package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	domainErrors "github.com/paperdesk/papermart/internal/domain/errors"
	"github.com/paperdesk/papermart/internal/domain/model"
)

type subscriptionRepository struct {
	storage *Storage
}

func (r *subscriptionRepository) Activate(ctx context.Context, sub *model.Subscription, link *model.GatewayLink) (*model.Subscription, error) {
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		// Only one subscription may be active; activating a new one retires
		// every other active row in the same transaction.
		const retire = `UPDATE subscriptions SET status=$1, retired_at=NOW() WHERE status=$2`
		if _, err := tx.Exec(ctx, retire, model.SubscriptionStatusRetired, model.SubscriptionStatusActive); err != nil {
			return fmt.Errorf("retire active subscriptions: %w", err)
		}

		if sub.ID == uuid.Nil {
			sub.ID = uuid.New()
		}
		sub.Status = model.SubscriptionStatusActive
		const insertSub = `INSERT INTO subscriptions (id, status, is_on_trial, start_time, next_billing_time)
                           VALUES ($1, $2, $3, $4, $5) RETURNING created_at`
		err := tx.QueryRow(ctx, insertSub, sub.ID, sub.Status, sub.IsOnTrial, sub.StartTime, sub.NextBillingTime).
			Scan(&sub.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert subscription: %w", err)
		}

		if link.ID == uuid.Nil {
			link.ID = uuid.New()
		}
		link.Target = model.SubscriptionTarget(sub.ID)
		var amount decimal.NullDecimal
		if link.Amount != nil {
			amount = decimal.NullDecimal{Decimal: *link.Amount, Valid: true}
		}
		const insertLink = `INSERT INTO gateway_links (id, target_kind, subscription_id, gateway, external_id, plan_id, plan_name, amount)
                            VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING created_at`
		err = tx.QueryRow(ctx, insertLink,
			link.ID, model.TargetKindSubscription, sub.ID, link.Gateway,
			link.ExternalID, link.PlanID, link.PlanName, amount,
		).Scan(&link.CreatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return domainErrors.ErrAlreadyExists
			}
			return fmt.Errorf("insert gateway link: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *subscriptionRepository) Reactivate(ctx context.Context, subscriptionID uuid.UUID, nextBilling time.Time) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		// Reactivation makes this row the active one, so every other active
		// row is retired in the same transaction, as on Activate.
		const retire = `UPDATE subscriptions SET status=$1, retired_at=NOW() WHERE status=$2 AND id<>$3`
		if _, err := tx.Exec(ctx, retire, model.SubscriptionStatusRetired, model.SubscriptionStatusActive, subscriptionID); err != nil {
			return fmt.Errorf("retire active subscriptions: %w", err)
		}

		const query = `UPDATE subscriptions SET status=$2, next_billing_time=$3, cancelled_at=NULL, retired_at=NULL WHERE id=$1`
		tag, err := tx.Exec(ctx, query, subscriptionID, model.SubscriptionStatusActive, nextBilling)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domainErrors.ErrNotFound
		}
		return nil
	})
}

func (r *subscriptionRepository) UpdateBilling(ctx context.Context, subscriptionID uuid.UUID, nextBilling time.Time, isOnTrial bool) error {
	const query = `UPDATE subscriptions SET next_billing_time=$2, is_on_trial=$3 WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, subscriptionID, nextBilling, isOnTrial)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *subscriptionRepository) Suspend(ctx context.Context, subscriptionID uuid.UUID) error {
	const query = `UPDATE subscriptions SET status=$2 WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, subscriptionID, model.SubscriptionStatusSuspended)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *subscriptionRepository) Cancel(ctx context.Context, subscriptionID uuid.UUID, cancelledAt time.Time) error {
	const query = `UPDATE subscriptions SET status=$2, cancelled_at=$3 WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, subscriptionID, model.SubscriptionStatusCancelled, cancelledAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *subscriptionRepository) GetLinkByExternalID(ctx context.Context, externalID string) (*model.GatewayLink, error) {
	const query = `SELECT id, subscription_id, gateway, external_id, plan_id, plan_name, amount, created_at
                   FROM gateway_links WHERE external_id=$1 AND target_kind=$2`
	var (
		link   model.GatewayLink
		subID  uuid.UUID
		amount decimal.NullDecimal
	)
	err := r.storage.pool.QueryRow(ctx, query, externalID, model.TargetKindSubscription).
		Scan(&link.ID, &subID, &link.Gateway, &link.ExternalID, &link.PlanID, &link.PlanName, &amount, &link.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	link.Target = model.SubscriptionTarget(subID)
	if amount.Valid {
		link.Amount = &amount.Decimal
	}
	return &link, nil
}

func (r *subscriptionRepository) RecordSalePayment(ctx context.Context, linkID uuid.UUID, record *model.PaymentRecord) (bool, error) {
	applied := false
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		var subID uuid.UUID
		err := tx.QueryRow(ctx, `SELECT subscription_id FROM gateway_links WHERE id=$1 FOR UPDATE`, linkID).Scan(&subID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domainErrors.ErrNotFound
			}
			return err
		}

		if record.TxRef != nil {
			const dedupe = `SELECT EXISTS (SELECT 1 FROM payments WHERE subscription_id=$1 AND tx_ref=$2)`
			var seen bool
			if err := tx.QueryRow(ctx, dedupe, subID, *record.TxRef).Scan(&seen); err != nil {
				return err
			}
			if seen {
				return nil
			}
		}

		if record.ID == uuid.Nil {
			record.ID = uuid.New()
		}
		record.Target = model.SubscriptionTarget(subID)
		record.Status = model.PaymentStatusCompleted
		const insert = `INSERT INTO payments (id, target_kind, subscription_id, tx_ref, amount, status, gateway, paid_at)
                        VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING created_at`
		err = tx.QueryRow(ctx, insert,
			record.ID, model.TargetKindSubscription, subID, record.TxRef,
			record.Amount, record.Status, record.Gateway, record.PaidAt,
		).Scan(&record.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert sale payment: %w", err)
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

func (r *subscriptionRepository) Current(ctx context.Context) (*model.Subscription, error) {
	const query = `SELECT id, status, is_on_trial, start_time, next_billing_time, cancelled_at, retired_at, created_at
                   FROM subscriptions ORDER BY created_at DESC LIMIT 1`
	var sub model.Subscription
	err := r.storage.pool.QueryRow(ctx, query).
		Scan(&sub.ID, &sub.Status, &sub.IsOnTrial, &sub.StartTime, &sub.NextBillingTime, &sub.CancelledAt, &sub.RetiredAt, &sub.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) BillingHistory(ctx context.Context) ([]model.PaymentRecord, error) {
	const query = `SELECT id, subscription_id, tx_ref, amount, status, gateway, paid_at, created_at
                   FROM payments WHERE target_kind=$1 ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, model.TargetKindSubscription)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.PaymentRecord
	for rows.Next() {
		var (
			rec   model.PaymentRecord
			subID uuid.UUID
		)
		err := rows.Scan(&rec.ID, &subID, &rec.TxRef, &rec.Amount, &rec.Status, &rec.Gateway, &rec.PaidAt, &rec.CreatedAt)
		if err != nil {
			return nil, err
		}
		rec.Target = model.SubscriptionTarget(subID)
		records = append(records, rec)
	}
	return records, rows.Err()
}
