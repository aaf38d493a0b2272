package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/paperdesk/papermart/internal/domain/model"
)

// BasketRepository describes persistence operations for baskets. A customer
// owns at most one basket; GetOrCreate materializes it on first use.
type BasketRepository interface {
	GetOrCreate(ctx context.Context, ownerID int64) (*model.Basket, error)
	GetByOwner(ctx context.Context, ownerID int64) (*model.Basket, error)
	UpsertLine(ctx context.Context, basketID uuid.UUID, line *model.BasketLine) (*model.BasketLine, error)
	RemoveLine(ctx context.Context, basketID, lineID uuid.UUID) error
	// Clear removes every line and detaches the coupon; the basket row stays.
	Clear(ctx context.Context, basketID uuid.UUID) error
	// AttachCoupon binds a coupon to the basket; a nil id detaches.
	AttachCoupon(ctx context.Context, basketID uuid.UUID, couponID *uuid.UUID) error
	AddAttachment(ctx context.Context, lineID uuid.UUID, attachment *model.Attachment) error
}
