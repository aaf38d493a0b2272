package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/paperdesk/papermart/internal/domain/model"
)

// CouponRepository describes persistence operations for coupons.
type CouponRepository interface {
	Create(ctx context.Context, coupon *model.Coupon) error
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	// FirstTimer returns the active first-timer coupon when one exists.
	FirstTimer(ctx context.Context) (*model.Coupon, error)
	// BestByMinimum returns the active coupon with the largest minimum not
	// exceeding subtotal.
	BestByMinimum(ctx context.Context, subtotal decimal.Decimal) (*model.Coupon, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}
