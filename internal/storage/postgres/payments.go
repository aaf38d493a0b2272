package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	domainErrors "github.com/paperdesk/papermart/internal/domain/errors"
	"github.com/paperdesk/papermart/internal/domain/model"
	"github.com/paperdesk/papermart/internal/domain/repository"
)

type paymentRepository struct {
	storage *Storage
}

// lockedOrder is the order state read under FOR UPDATE at the start of every
// Apply* transaction. The row lock serializes concurrent webhook deliveries
// for the same order.
type lockedOrder struct {
	status         model.OrderStatus
	createdAt      time.Time
	couponDiscount decimal.Decimal
}

func lockOrder(ctx context.Context, tx pgx.Tx, orderID int64) (*lockedOrder, error) {
	const query = `SELECT status, created_at, coupon_discount FROM orders WHERE id=$1 FOR UPDATE`
	var (
		o        lockedOrder
		discount decimal.NullDecimal
	)
	err := tx.QueryRow(ctx, query, orderID).Scan(&o.status, &o.createdAt, &discount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	if discount.Valid {
		o.couponDiscount = discount.Decimal
	}
	return &o, nil
}

// txRefSeen reports whether a record with the same transaction reference was
// already applied to this order. A nil reference never deduplicates.
func txRefSeen(ctx context.Context, tx pgx.Tx, orderID int64, txRef *string) (bool, error) {
	if txRef == nil {
		return false, nil
	}
	const query = `SELECT EXISTS (SELECT 1 FROM payments WHERE order_id=$1 AND tx_ref=$2)`
	var seen bool
	if err := tx.QueryRow(ctx, query, orderID, *txRef).Scan(&seen); err != nil {
		return false, err
	}
	return seen, nil
}

func insertOrderPayment(ctx context.Context, tx pgx.Tx, orderID int64, record *model.PaymentRecord) error {
	const query = `INSERT INTO payments (id, target_kind, order_id, tx_ref, amount, status, gateway, paid_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING created_at`
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.Target = model.OrderTarget(orderID)
	return tx.QueryRow(ctx, query,
		record.ID, model.TargetKindOrder, orderID, record.TxRef,
		record.Amount, record.Status, record.Gateway, record.PaidAt,
	).Scan(&record.CreatedAt)
}

// amountPayable recomputes the order's payable total from its lines and the
// snapshotted coupon discount, inside the current transaction.
func amountPayable(ctx context.Context, tx pgx.Tx, orderID int64, couponDiscount decimal.Decimal) (decimal.Decimal, error) {
	const query = `SELECT pages, quantity, page_price, tier_surcharge FROM order_lines WHERE order_id=$1`
	rows, err := tx.Query(ctx, query, orderID)
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()

	subtotal := decimal.Zero
	for rows.Next() {
		var (
			line      model.OrderLine
			surcharge decimal.NullDecimal
		)
		if err := rows.Scan(&line.Pages, &line.Quantity, &line.PagePrice, &surcharge); err != nil {
			return decimal.Zero, err
		}
		if surcharge.Valid {
			line.TierSurcharge = &surcharge.Decimal
		}
		subtotal = subtotal.Add(line.Total())
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, err
	}
	return subtotal.Sub(couponDiscount).Round(2), nil
}

// netPaid sums completed payments minus refunds for the order, floored at
// zero.
func netPaid(ctx context.Context, tx pgx.Tx, orderID int64) (decimal.Decimal, error) {
	const query = `
        SELECT COALESCE(SUM(CASE WHEN status=$2 THEN amount ELSE 0 END), 0),
               COALESCE(SUM(CASE WHEN status=$3 THEN amount ELSE 0 END), 0)
        FROM payments WHERE order_id=$1`
	var paid, refunded decimal.Decimal
	err := tx.QueryRow(ctx, query, orderID, model.PaymentStatusCompleted, model.PaymentStatusRefunded).
		Scan(&paid, &refunded)
	if err != nil {
		return decimal.Zero, err
	}
	net := paid.Sub(refunded)
	if net.IsNegative() {
		return decimal.Zero, nil
	}
	return net, nil
}

func (r *paymentRepository) ApplyCompleted(ctx context.Context, orderID int64, record *model.PaymentRecord) (*repository.CompletedOutcome, error) {
	outcome := &repository.CompletedOutcome{}
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		order, err := lockOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		seen, err := txRefSeen(ctx, tx, orderID, record.TxRef)
		if err != nil {
			return err
		}
		if seen {
			return nil
		}

		record.Status = model.PaymentStatusCompleted
		if err := insertOrderPayment(ctx, tx, orderID, record); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		outcome.Applied = true

		// Due dates float until the payment clock starts: lines still
		// waiting get the elapsed time since order creation added before
		// work begins.
		paidAt := time.Now().UTC()
		if record.PaidAt != nil {
			paidAt = *record.PaidAt
		}
		elapsed := paidAt.Sub(order.createdAt)
		if elapsed < 0 {
			elapsed = 0
		}
		const shift = `UPDATE order_lines
                       SET due_date = due_date + make_interval(secs => $2), status=$3
                       WHERE order_id=$1 AND status=$4`
		_, err = tx.Exec(ctx, shift, orderID, elapsed.Seconds(),
			model.OrderLineStatusInProgress, model.OrderLineStatusPending)
		if err != nil {
			return fmt.Errorf("shift due dates: %w", err)
		}

		payable, err := amountPayable(ctx, tx, orderID, order.couponDiscount)
		if err != nil {
			return err
		}
		net, err := netPaid(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.status == model.OrderStatusUnpaid && net.GreaterThanOrEqual(payable) {
			if _, err := tx.Exec(ctx, `UPDATE orders SET status=$2 WHERE id=$1`, orderID, model.OrderStatusPaid); err != nil {
				return err
			}
			outcome.OrderPaid = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func (r *paymentRepository) ApplyRefund(ctx context.Context, orderID int64, record *model.PaymentRecord) (bool, error) {
	applied := false
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := lockOrder(ctx, tx, orderID); err != nil {
			return err
		}
		seen, err := txRefSeen(ctx, tx, orderID, record.TxRef)
		if err != nil {
			return err
		}
		if seen {
			return nil
		}

		record.Status = model.PaymentStatusRefunded
		if err := insertOrderPayment(ctx, tx, orderID, record); err != nil {
			return fmt.Errorf("insert refund: %w", err)
		}
		applied = true

		// Any refund, even a partial one, voids the whole order.
		if _, err := tx.Exec(ctx, `UPDATE orders SET status=$2 WHERE id=$1`, orderID, model.OrderStatusRefunded); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `UPDATE order_lines SET status=$2 WHERE order_id=$1`, orderID, model.OrderLineStatusVoid)
		return err
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

func (r *paymentRepository) ApplyDecline(ctx context.Context, orderID int64, record *model.PaymentRecord) (bool, error) {
	applied := false
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := lockOrder(ctx, tx, orderID); err != nil {
			return err
		}
		seen, err := txRefSeen(ctx, tx, orderID, record.TxRef)
		if err != nil {
			return err
		}
		if seen {
			return nil
		}

		// Declines leave order and line statuses untouched.
		record.Status = model.PaymentStatusDeclined
		if err := insertOrderPayment(ctx, tx, orderID, record); err != nil {
			return fmt.Errorf("insert decline: %w", err)
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

func (r *paymentRepository) ListByOrder(ctx context.Context, orderID int64) ([]model.PaymentRecord, error) {
	const query = `SELECT id, tx_ref, amount, status, gateway, paid_at, created_at
                   FROM payments WHERE order_id=$1 ORDER BY created_at`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.PaymentRecord
	for rows.Next() {
		var rec model.PaymentRecord
		err := rows.Scan(&rec.ID, &rec.TxRef, &rec.Amount, &rec.Status, &rec.Gateway, &rec.PaidAt, &rec.CreatedAt)
		if err != nil {
			return nil, err
		}
		rec.Target = model.OrderTarget(orderID)
		records = append(records, rec)
	}
	return records, rows.Err()
}
