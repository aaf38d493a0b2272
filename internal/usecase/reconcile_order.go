package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/paperdesk/papermart/internal/domain/errors"
	"github.com/paperdesk/papermart/internal/domain/model"
	"github.com/paperdesk/papermart/internal/domain/repository"
)

// PaymentUseCase reconciles verified gateway payment events into the order
// ledger. Handlers call it only after signature verification; it is safe
// under concurrent and redelivered events: applications serialize per order
// and deduplicate on the gateway transaction reference.
type PaymentUseCase struct {
	payments repository.PaymentRepository
	notifier OrderNotifier
}

// NewPaymentUseCase constructs PaymentUseCase.
func NewPaymentUseCase(payments repository.PaymentRepository, notifier OrderNotifier) *PaymentUseCase {
	return &PaymentUseCase{payments: payments, notifier: notifier}
}

// RecordCompleted appends a COMPLETED ledger record. On the first payment
// every PENDING line's due date is shifted by the wall-clock time between
// order creation and payment, then moved to IN_PROGRESS: due dates float
// until the payment clock starts. When the balance reaches zero the order
// becomes PAID and new-order notifications fire exactly once, after commit.
// A duplicate transaction reference is a silent no-op. An unknown order is
// transient: the gateway should redeliver.
func (u *PaymentUseCase) RecordCompleted(ctx context.Context, orderID int64, gateway model.GatewayKind, txRef string, amount decimal.Decimal, paidAt time.Time) error {
	record := u.newRecord(orderID, gateway, txRef, amount, paidAt, model.PaymentStatusCompleted)
	outcome, err := u.payments.ApplyCompleted(ctx, orderID, record)
	if err != nil {
		return mapTargetErr(err)
	}
	if outcome.OrderPaid {
		u.notifier.OrderPaid(orderID)
	}
	return nil
}

// RecordRefund appends a REFUNDED record for the refunded amount and voids
// the whole order: status REFUNDED and every line VOID, even when the
// refund covers only part of the balance. Partial and full refunds are
// deliberately not distinguished here.
func (u *PaymentUseCase) RecordRefund(ctx context.Context, orderID int64, gateway model.GatewayKind, txRef string, amount decimal.Decimal, paidAt time.Time) error {
	record := u.newRecord(orderID, gateway, txRef, amount, paidAt, model.PaymentStatusRefunded)
	if _, err := u.payments.ApplyRefund(ctx, orderID, record); err != nil {
		return mapTargetErr(err)
	}
	return nil
}

// RecordDecline appends a DECLINED record. Declines are recorded, not acted
// on: neither the order nor its lines change status.
func (u *PaymentUseCase) RecordDecline(ctx context.Context, orderID int64, gateway model.GatewayKind, txRef string, amount decimal.Decimal, paidAt time.Time) error {
	record := u.newRecord(orderID, gateway, txRef, amount, paidAt, model.PaymentStatusDeclined)
	if _, err := u.payments.ApplyDecline(ctx, orderID, record); err != nil {
		return mapTargetErr(err)
	}
	return nil
}

// Ledger returns the order's payment records, oldest first.
func (u *PaymentUseCase) Ledger(ctx context.Context, orderID int64) ([]model.PaymentRecord, error) {
	return u.payments.ListByOrder(ctx, orderID)
}

func (u *PaymentUseCase) newRecord(orderID int64, gateway model.GatewayKind, txRef string, amount decimal.Decimal, paidAt time.Time, status model.PaymentStatus) *model.PaymentRecord {
	record := &model.PaymentRecord{
		ID:      uuid.New(),
		Target:  model.OrderTarget(orderID),
		Amount:  amount,
		Status:  status,
		Gateway: gateway,
		PaidAt:  &paidAt,
	}
	if txRef != "" {
		record.TxRef = &txRef
	}
	return record
}

func mapTargetErr(err error) error {
	if errors.Is(err, domainErrors.ErrNotFound) {
		return domainErrors.ErrEventTargetMissing
	}
	return err
}
