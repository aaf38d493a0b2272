package usecase

import (
	"github.com/shopspring/decimal"

	"github.com/paperdesk/papermart/internal/domain/model"
)

// Ledger derivations are pure functions over the payment record stream.
// Balances are never stored, so they cannot drift from the ledger.

// AmountPaid sums COMPLETED record amounts.
func AmountPaid(records []model.PaymentRecord) decimal.Decimal {
	total := decimal.Zero
	for _, rec := range records {
		if rec.Status == model.PaymentStatusCompleted {
			total = total.Add(rec.Amount)
		}
	}
	return total.Round(2)
}

// AmountRefunded sums REFUNDED record amounts.
func AmountRefunded(records []model.PaymentRecord) decimal.Decimal {
	total := decimal.Zero
	for _, rec := range records {
		if rec.Status == model.PaymentStatusRefunded {
			total = total.Add(rec.Amount)
		}
	}
	return total.Round(2)
}

// NetPaid is paid minus refunded, floored at zero.
func NetPaid(records []model.PaymentRecord) decimal.Decimal {
	net := AmountPaid(records).Sub(AmountRefunded(records))
	if net.IsNegative() {
		return decimal.Zero
	}
	return net.Round(2)
}

// Balance is the outstanding amount on an order given its payable total.
func Balance(amountPayable decimal.Decimal, records []model.PaymentRecord) decimal.Decimal {
	net := NetPaid(records)
	if net.GreaterThanOrEqual(amountPayable) {
		return decimal.Zero
	}
	if net.IsPositive() {
		return amountPayable.Sub(net).Round(2)
	}
	return amountPayable.Round(2)
}
