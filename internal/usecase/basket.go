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

const (
	maxLinePages    = 1000
	maxLineQuantity = 3
)

// LineInput carries the request to add or update a basket line.
type LineInput struct {
	LineID        *uuid.UUID
	Topic         string
	ServiceTypeID uuid.UUID
	TurnaroundID  uuid.UUID
	LevelID       *uuid.UUID
	TierID        *uuid.UUID
	Pages         int
	Quantity      int
	References    *int
	Comment       string
}

// BasketUseCase manages the customer's single mutable basket.
type BasketUseCase struct {
	baskets repository.BasketRepository
	catalog repository.CatalogRepository
	rates   *RateUseCase
	coupons *CouponUseCase
	now     func() time.Time
}

// NewBasketUseCase constructs BasketUseCase.
func NewBasketUseCase(baskets repository.BasketRepository, catalog repository.CatalogRepository, rates *RateUseCase, coupons *CouponUseCase) *BasketUseCase {
	return &BasketUseCase{baskets: baskets, catalog: catalog, rates: rates, coupons: coupons, now: time.Now}
}

// Get returns the owner's basket, creating it on first use.
func (u *BasketUseCase) Get(ctx context.Context, ownerID int64) (*model.Basket, error) {
	return u.baskets.GetOrCreate(ctx, ownerID)
}

// AddOrUpdateLine resolves the current page price and tier surcharge for the
// requested scope and persists the line with those prices captured. Prices
// are not re-resolved when catalog rates change later; catalog display text
// stays a live reference until checkout.
func (u *BasketUseCase) AddOrUpdateLine(ctx context.Context, ownerID int64, input LineInput) (*model.BasketLine, error) {
	if input.Pages < 1 || input.Pages > maxLinePages || input.Quantity < 1 || input.Quantity > maxLineQuantity {
		return nil, domainErrors.ErrInvalidAmount
	}

	basket, err := u.baskets.GetOrCreate(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	rule, err := u.rates.Resolve(ctx, input.ServiceTypeID, input.TurnaroundID, input.LevelID)
	if err != nil {
		return nil, err
	}

	line := &model.BasketLine{
		BasketID:   basket.ID,
		Topic:      input.Topic,
		Pages:      input.Pages,
		Quantity:   input.Quantity,
		References: input.References,
		Comment:    input.Comment,
		PagePrice:  rule.AmountPerPage,
	}
	if input.LineID != nil {
		line.ID = *input.LineID
	} else {
		line.ID = uuid.New()
	}

	serviceType, err := u.catalog.ServiceType(ctx, input.ServiceTypeID)
	if err != nil {
		return nil, err
	}
	line.ServiceType = *serviceType

	turnaround, err := u.catalog.Turnaround(ctx, input.TurnaroundID)
	if err != nil {
		return nil, err
	}
	line.Turnaround = *turnaround

	if input.LevelID != nil {
		level, err := u.catalog.Level(ctx, *input.LevelID)
		if err != nil {
			return nil, err
		}
		line.Level = level
	}

	if input.TierID != nil {
		tier, err := u.catalog.Tier(ctx, *input.TierID)
		if err != nil {
			return nil, err
		}
		line.Tier = tier
		surcharge, err := u.rates.ResolveTierSurcharge(ctx, rule, *input.TierID)
		if err != nil {
			return nil, err
		}
		if surcharge != nil && !surcharge.AmountPerPage.IsZero() {
			amount := surcharge.AmountPerPage
			line.TierSurcharge = &amount
		}
	}

	return u.baskets.UpsertLine(ctx, basket.ID, line)
}

// RemoveLine deletes a line. The attached coupon is re-validated against the
// shrunken subtotal and detached when its minimum no longer holds. Removing
// the last line keeps the basket.
func (u *BasketUseCase) RemoveLine(ctx context.Context, ownerID int64, lineID uuid.UUID) (*model.Basket, error) {
	basket, err := u.baskets.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if err := u.baskets.RemoveLine(ctx, basket.ID, lineID); err != nil {
		return nil, err
	}

	basket, err = u.baskets.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if basket.Coupon != nil {
		if err := u.coupons.Validate(ctx, basket.Coupon, basket.Subtotal(), &ownerID); err != nil {
			if !errors.Is(err, domainErrors.ErrCouponExpired) && !errors.Is(err, domainErrors.ErrCouponNotApplicable) {
				return nil, err
			}
			if err := u.baskets.AttachCoupon(ctx, basket.ID, nil); err != nil {
				return nil, err
			}
			basket.Coupon = nil
		}
	}

	return basket, nil
}

// Clear removes all lines and detaches the coupon. The basket row survives.
func (u *BasketUseCase) Clear(ctx context.Context, ownerID int64) (*model.Basket, error) {
	basket, err := u.baskets.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := u.baskets.Clear(ctx, basket.ID); err != nil {
		return nil, err
	}
	return u.baskets.GetByOwner(ctx, ownerID)
}

// ApplyCoupon attaches a coupon by code after validating it against the
// current subtotal. Reapplying the already attached coupon is rejected.
func (u *BasketUseCase) ApplyCoupon(ctx context.Context, ownerID int64, code string) (*model.Basket, error) {
	basket, err := u.baskets.GetOrCreate(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	coupon, err := u.coupons.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if basket.Coupon != nil && basket.Coupon.ID == coupon.ID {
		return nil, domainErrors.ErrCouponAlreadyApplied
	}

	if err := u.coupons.Validate(ctx, coupon, basket.Subtotal(), &ownerID); err != nil {
		return nil, err
	}

	if err := u.baskets.AttachCoupon(ctx, basket.ID, &coupon.ID); err != nil {
		return nil, err
	}
	basket.Coupon = coupon
	return basket, nil
}

// SuggestCoupon returns the best coupon for the basket's current subtotal,
// nil when none qualifies.
func (u *BasketUseCase) SuggestCoupon(ctx context.Context, ownerID int64) (*model.Coupon, error) {
	basket, err := u.baskets.GetOrCreate(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return u.coupons.SelectBest(ctx, basket.Subtotal(), &ownerID)
}

// AddAttachment records an uploaded file reference on a basket line.
func (u *BasketUseCase) AddAttachment(ctx context.Context, ownerID int64, lineID uuid.UUID, attachment *model.Attachment) error {
	basket, err := u.baskets.GetByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	var found bool
	for _, line := range basket.Lines {
		if line.ID == lineID {
			found = true
			break
		}
	}
	if !found {
		return domainErrors.ErrNotFound
	}
	if attachment.ID == uuid.Nil {
		attachment.ID = uuid.New()
	}
	return u.baskets.AddAttachment(ctx, lineID, attachment)
}

// Totals reports subtotal, discount, and payable total for the basket.
func (u *BasketUseCase) Totals(basket *model.Basket) (subtotal, discount, total decimal.Decimal) {
	now := u.now()
	return basket.Subtotal(), basket.Discount(now), basket.Total(now)
}
