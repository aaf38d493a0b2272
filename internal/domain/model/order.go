package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus describes the payment lifecycle of an order.
type OrderStatus string

const (
	OrderStatusUnpaid            OrderStatus = "UNPAID"
	OrderStatusPaid              OrderStatus = "PAID"
	OrderStatusRefunded          OrderStatus = "REFUNDED"
	OrderStatusPartiallyRefunded OrderStatus = "PARTIALLY_REFUNDED"
	OrderStatusDeclined          OrderStatus = "DECLINED"
)

// OrderLineStatus describes the fulfilment lifecycle of a single line.
type OrderLineStatus string

const (
	OrderLineStatusPending    OrderLineStatus = "PENDING"
	OrderLineStatusInProgress OrderLineStatus = "IN_PROGRESS"
	OrderLineStatusComplete   OrderLineStatus = "COMPLETE"
	OrderLineStatusVoid       OrderLineStatus = "VOID"
)

// Order is the immutable, priced result of a basket checkout.
type Order struct {
	ID        int64
	OwnerID   int64
	Status    OrderStatus
	Coupon    *OrderCoupon
	Lines     []OrderLine
	CreatedAt time.Time
}

// OrderCoupon is a one-shot snapshot of the coupon applied at checkout. It
// holds plain values, not a live reference, so it survives coupon deletion.
type OrderCoupon struct {
	Code     string
	Discount decimal.Decimal
}

// OrderLine snapshots a basket line at checkout: catalog names are copied as
// plain text so later catalog edits never change an existing order.
type OrderLine struct {
	ID            int64
	OrderID       int64
	Topic         string
	ServiceType   string
	Turnaround    string
	Level         *string
	Tier          *string
	Pages         int
	Quantity      int
	References    *int
	Comment       string
	PagePrice     decimal.Decimal
	TierSurcharge *decimal.Decimal
	DueDate       time.Time
	Status        OrderLineStatus
	Attachments   []Attachment
}

// Price returns the unit price of the line, two decimal places.
func (l OrderLine) Price() decimal.Decimal {
	pages := decimal.NewFromInt(int64(l.Pages))
	price := pages.Mul(l.PagePrice)
	if l.TierSurcharge != nil {
		price = price.Add(pages.Mul(*l.TierSurcharge))
	}
	return price.Round(2)
}

// Total returns the line price multiplied by quantity.
func (l OrderLine) Total() decimal.Decimal {
	return l.Price().Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
}

// Subtotal sums line totals before discount.
func (o Order) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.Total())
	}
	return total.Round(2)
}

// Discount returns the snapshotted coupon discount, zero when no coupon was
// applied at checkout.
func (o Order) Discount() decimal.Decimal {
	if o.Coupon == nil {
		return decimal.Zero
	}
	return o.Coupon.Discount.Round(2)
}

// AmountPayable is the line subtotal minus the snapshotted discount.
func (o Order) AmountPayable() decimal.Decimal {
	return o.Subtotal().Sub(o.Discount()).Round(2)
}

// EarliestDue returns the earliest due date over lines still being worked on.
// Unpaid orders have no meaningful due date.
func (o Order) EarliestDue() *time.Time {
	if o.Status != OrderStatusPaid {
		return nil
	}
	var earliest *time.Time
	for i := range o.Lines {
		line := o.Lines[i]
		if line.Status != OrderLineStatusPending && line.Status != OrderLineStatusInProgress {
			continue
		}
		if earliest == nil || line.DueDate.Before(*earliest) {
			due := line.DueDate
			earliest = &due
		}
	}
	return earliest
}

// IsComplete reports whether every line reached a terminal status.
func (o Order) IsComplete() bool {
	for _, line := range o.Lines {
		if line.Status != OrderLineStatusComplete && line.Status != OrderLineStatusVoid {
			return false
		}
	}
	return len(o.Lines) > 0
}
