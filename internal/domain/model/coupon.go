package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CouponKind describes eligibility rules of a coupon.
type CouponKind string

const (
	CouponKindRegular    CouponKind = "REGULAR"
	CouponKindFirstTimer CouponKind = "FIRST_TIMER"
)

// Coupon grants a percentage discount within a validity window. Coupons are
// created once and never mutated except soft deactivation; expiry is derived
// from the end of the window, never stored.
type Coupon struct {
	ID         uuid.UUID
	Code       string
	Kind       CouponKind
	PercentOff int
	Minimum    *decimal.Decimal
	StartsAt   time.Time
	EndsAt     time.Time
	Active     bool
	CreatedAt  time.Time
}

// IsExpired reports whether the coupon validity window has closed.
func (c Coupon) IsExpired(now time.Time) bool {
	return now.After(c.EndsAt)
}

// Discount returns the discount this coupon gives on amount, rounded to two
// decimal places.
func (c Coupon) Discount(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(int64(c.PercentOff))).Div(decimal.NewFromInt(100)).Round(2)
}
