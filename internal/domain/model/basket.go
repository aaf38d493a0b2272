package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Basket is a single-owner, mutable pre-order collection of lines. It is
// destroyed when successfully converted to an order.
type Basket struct {
	ID        uuid.UUID
	OwnerID   int64
	Coupon    *Coupon
	Lines     []BasketLine
	CreatedAt time.Time
}

// BasketLine references catalog entities live, so catalog display edits are
// reflected until checkout. Resolved prices are captured when the line is
// added or updated and are not re-resolved when catalog rates change later.
type BasketLine struct {
	ID            uuid.UUID
	BasketID      uuid.UUID
	Topic         string
	ServiceType   ServiceType
	Turnaround    Turnaround
	Level         *Level
	Tier          *Tier
	Pages         int
	Quantity      int
	References    *int
	Comment       string
	PagePrice     decimal.Decimal
	TierSurcharge *decimal.Decimal
	Attachments   []Attachment
}

// Attachment is a binary blob reference attached to a basket or order line.
// Blob persistence itself lives in an external store keyed by StorageKey.
type Attachment struct {
	ID         uuid.UUID
	FileName   string
	StorageKey string
	Comment    string
}

// Price returns the unit price of the line: pages times page price plus the
// tier surcharge per page when present, rounded to two decimals.
func (l BasketLine) Price() decimal.Decimal {
	pages := decimal.NewFromInt(int64(l.Pages))
	price := pages.Mul(l.PagePrice)
	if l.TierSurcharge != nil {
		price = price.Add(pages.Mul(*l.TierSurcharge))
	}
	return price.Round(2)
}

// Total returns the line price multiplied by quantity.
func (l BasketLine) Total() decimal.Decimal {
	return l.Price().Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
}

// Subtotal sums line totals before any discount.
func (b Basket) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range b.Lines {
		total = total.Add(line.Total())
	}
	return total.Round(2)
}

// Discount returns the coupon discount for the current subtotal. An expired
// or absent coupon gives no discount.
func (b Basket) Discount(now time.Time) decimal.Decimal {
	if b.Coupon == nil || b.Coupon.IsExpired(now) {
		return decimal.Zero
	}
	return b.Coupon.Discount(b.Subtotal())
}

// Total returns the payable amount after discount.
func (b Basket) Total(now time.Time) decimal.Decimal {
	return b.Subtotal().Sub(b.Discount(now)).Round(2)
}
