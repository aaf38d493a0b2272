package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/paperdesk/papermart/internal/domain/model"
)

// LineRequest describes an add-or-update basket line payload.
type LineRequest struct {
	ID            *uuid.UUID `json:"id,omitempty"`
	Topic         string     `json:"topic"`
	ServiceTypeID uuid.UUID  `json:"service_type_id" binding:"required"`
	TurnaroundID  uuid.UUID  `json:"turnaround_id" binding:"required"`
	LevelID       *uuid.UUID `json:"level_id,omitempty"`
	TierID        *uuid.UUID `json:"tier_id,omitempty"`
	Pages         int        `json:"pages" binding:"required"`
	Quantity      int        `json:"quantity" binding:"required"`
	References    *int       `json:"references,omitempty"`
	Comment       string     `json:"comment"`
}

// CouponRequest carries a coupon code to apply.
type CouponRequest struct {
	Code string `json:"code" binding:"required"`
}

// AttachmentRequest describes a file reference attached to a basket line.
type AttachmentRequest struct {
	FileName   string `json:"file_name" binding:"required"`
	StorageKey string `json:"storage_key" binding:"required"`
	Comment    string `json:"comment"`
}

// AttachmentResponse mirrors a stored attachment reference.
type AttachmentResponse struct {
	ID       uuid.UUID `json:"id"`
	FileName string    `json:"file_name"`
	Comment  string    `json:"comment,omitempty"`
}

// BasketLineResponse is a single basket line with its resolved prices.
type BasketLineResponse struct {
	ID          uuid.UUID            `json:"id"`
	Topic       string               `json:"topic"`
	ServiceType string               `json:"service_type"`
	Turnaround  string               `json:"turnaround"`
	Level       *string              `json:"level,omitempty"`
	Tier        *string              `json:"tier,omitempty"`
	Pages       int                  `json:"pages"`
	Quantity    int                  `json:"quantity"`
	References  *int                 `json:"references,omitempty"`
	Comment     string               `json:"comment,omitempty"`
	PagePrice   decimal.Decimal      `json:"page_price"`
	Surcharge   *decimal.Decimal     `json:"tier_surcharge,omitempty"`
	Price       decimal.Decimal      `json:"price"`
	Total       decimal.Decimal      `json:"total"`
	Attachments []AttachmentResponse `json:"attachments,omitempty"`
}

// CouponResponse mirrors an attached coupon.
type CouponResponse struct {
	Code       string `json:"code"`
	PercentOff int    `json:"percent_off"`
}

// BasketResponse is the full basket with derived totals.
type BasketResponse struct {
	ID       uuid.UUID            `json:"id"`
	Lines    []BasketLineResponse `json:"lines"`
	Coupon   *CouponResponse      `json:"coupon,omitempty"`
	Subtotal decimal.Decimal      `json:"subtotal"`
	Discount decimal.Decimal      `json:"discount"`
	Total    decimal.Decimal      `json:"total"`
}

// ToBasketLineResponse converts a domain basket line.
func ToBasketLineResponse(line model.BasketLine) BasketLineResponse {
	resp := BasketLineResponse{
		ID:          line.ID,
		Topic:       line.Topic,
		ServiceType: line.ServiceType.Name,
		Turnaround:  line.Turnaround.FullName(),
		Pages:       line.Pages,
		Quantity:    line.Quantity,
		References:  line.References,
		Comment:     line.Comment,
		PagePrice:   line.PagePrice,
		Surcharge:   line.TierSurcharge,
		Price:       line.Price(),
		Total:       line.Total(),
	}
	if line.Level != nil {
		name := line.Level.Name
		resp.Level = &name
	}
	if line.Tier != nil {
		name := line.Tier.Name
		resp.Tier = &name
	}
	for _, a := range line.Attachments {
		resp.Attachments = append(resp.Attachments, AttachmentResponse{ID: a.ID, FileName: a.FileName, Comment: a.Comment})
	}
	return resp
}

// ToBasketResponse converts a domain basket with its computed totals.
func ToBasketResponse(basket *model.Basket, subtotal, discount, total decimal.Decimal) BasketResponse {
	resp := BasketResponse{
		ID:       basket.ID,
		Lines:    make([]BasketLineResponse, 0, len(basket.Lines)),
		Subtotal: subtotal,
		Discount: discount,
		Total:    total,
	}
	for _, line := range basket.Lines {
		resp.Lines = append(resp.Lines, ToBasketLineResponse(line))
	}
	if basket.Coupon != nil {
		resp.Coupon = &CouponResponse{Code: basket.Coupon.Code, PercentOff: basket.Coupon.PercentOff}
	}
	return resp
}
