package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/paperdesk/papermart/internal/domain/errors"
	"github.com/paperdesk/papermart/internal/domain/model"
	"github.com/paperdesk/papermart/internal/domain/repository"
)

const couponCodeChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// CouponUseCase selects and validates discount coupons.
type CouponUseCase struct {
	coupons repository.CouponRepository
	orders  repository.OrderRepository
	now     func() time.Time
}

// NewCouponUseCase constructs CouponUseCase.
func NewCouponUseCase(coupons repository.CouponRepository, orders repository.OrderRepository) *CouponUseCase {
	return &CouponUseCase{coupons: coupons, orders: orders, now: time.Now}
}

// SelectBest chooses the most appropriate coupon for a subtotal. A valid
// first-timer coupon wins outright for customers without a paid order,
// bypassing minimum-threshold comparison. Otherwise the unexpired coupon
// with the largest qualifying minimum wins. No match returns nil without
// error.
func (u *CouponUseCase) SelectBest(ctx context.Context, subtotal decimal.Decimal, customerID *int64) (*model.Coupon, error) {
	firstTimer, err := u.coupons.FirstTimer(ctx)
	if err != nil && !errors.Is(err, domainErrors.ErrNotFound) {
		return nil, err
	}
	if firstTimer != nil {
		ok, err := u.isValid(ctx, firstTimer, subtotal, customerID)
		if err != nil {
			return nil, err
		}
		if ok {
			return firstTimer, nil
		}
	}

	best, err := u.coupons.BestByMinimum(ctx, subtotal)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	ok, err := u.isValid(ctx, best, subtotal, customerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return best, nil
}

// Validate checks a coupon against a subtotal and customer, returning a
// sentinel error describing why it cannot be applied.
func (u *CouponUseCase) Validate(ctx context.Context, coupon *model.Coupon, subtotal decimal.Decimal, customerID *int64) error {
	if coupon.IsExpired(u.now()) {
		return domainErrors.ErrCouponExpired
	}
	if coupon.Minimum != nil && subtotal.LessThan(*coupon.Minimum) {
		return domainErrors.ErrCouponNotApplicable
	}
	if coupon.Kind == model.CouponKindFirstTimer && customerID != nil {
		paid, err := u.orders.HasPaidOrders(ctx, *customerID)
		if err != nil {
			return err
		}
		if paid {
			return domainErrors.ErrCouponNotApplicable
		}
	}
	return nil
}

func (u *CouponUseCase) isValid(ctx context.Context, coupon *model.Coupon, subtotal decimal.Decimal, customerID *int64) (bool, error) {
	err := u.Validate(ctx, coupon, subtotal, customerID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domainErrors.ErrCouponExpired), errors.Is(err, domainErrors.ErrCouponNotApplicable):
		return false, nil
	default:
		return false, err
	}
}

// GetByCode fetches a coupon by its code.
func (u *CouponUseCase) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	return u.coupons.GetByCode(ctx, code)
}

// Create stores a new coupon, generating a unique code when none is given.
func (u *CouponUseCase) Create(ctx context.Context, coupon *model.Coupon) error {
	if coupon.PercentOff <= 0 || coupon.PercentOff > 100 {
		return domainErrors.ErrInvalidAmount
	}
	if coupon.ID == uuid.Nil {
		coupon.ID = uuid.New()
	}
	if coupon.Code == "" {
		code, err := u.generateCode(ctx, 8)
		if err != nil {
			return err
		}
		coupon.Code = code
	}
	coupon.Active = true
	return u.coupons.Create(ctx, coupon)
}

// Deactivate soft-disables a coupon; baskets referencing it lose the
// discount on their next recomputation.
func (u *CouponUseCase) Deactivate(ctx context.Context, id uuid.UUID) error {
	return u.coupons.Deactivate(ctx, id)
}

func (u *CouponUseCase) generateCode(ctx context.Context, length int) (string, error) {
	for {
		code := make([]byte, length)
		for i := range code {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(couponCodeChars))))
			if err != nil {
				return "", err
			}
			code[i] = couponCodeChars[n.Int64()]
		}
		exists, err := u.coupons.CodeExists(ctx, string(code))
		if err != nil {
			return "", err
		}
		if !exists {
			return string(code), nil
		}
	}
}
