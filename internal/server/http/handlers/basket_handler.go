package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainErrors "github.com/paperdesk/papermart/internal/domain/errors"
	"github.com/paperdesk/papermart/internal/domain/model"
	"github.com/paperdesk/papermart/internal/server/http/dto"
	"github.com/paperdesk/papermart/internal/usecase"
)

// BasketHandler manages basket endpoints.
type BasketHandler struct {
	facade BasketFacade
}

// NewBasketHandler constructs BasketHandler.
func NewBasketHandler(facade BasketFacade) *BasketHandler {
	return &BasketHandler{facade: facade}
}

// Get handles GET /api/basket.
func (h *BasketHandler) Get(c *gin.Context) {
	ownerID := CurrentCustomerID(c)
	basket, err := h.facade.Basket(c.Request.Context(), ownerID)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	h.respondBasket(c, basket)
}

// AddLine handles POST /api/basket/lines.
func (h *BasketHandler) AddLine(c *gin.Context) {
	ownerID := CurrentCustomerID(c)
	var req dto.LineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	input := usecase.LineInput{
		LineID:        req.ID,
		Topic:         req.Topic,
		ServiceTypeID: req.ServiceTypeID,
		TurnaroundID:  req.TurnaroundID,
		LevelID:       req.LevelID,
		TierID:        req.TierID,
		Pages:         req.Pages,
		Quantity:      req.Quantity,
		References:    req.References,
		Comment:       req.Comment,
	}

	line, err := h.facade.AddBasketLine(c.Request.Context(), ownerID, input)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidAmount):
			c.Status(http.StatusUnprocessableEntity)
		case errors.Is(err, domainErrors.ErrRateUnavailable), errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusUnprocessableEntity)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToBasketLineResponse(*line))
}

// RemoveLine handles DELETE /api/basket/lines/:id.
func (h *BasketHandler) RemoveLine(c *gin.Context) {
	ownerID := CurrentCustomerID(c)
	lineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	basket, err := h.facade.RemoveBasketLine(c.Request.Context(), ownerID, lineID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}
	h.respondBasket(c, basket)
}

// Clear handles DELETE /api/basket.
func (h *BasketHandler) Clear(c *gin.Context) {
	ownerID := CurrentCustomerID(c)
	basket, err := h.facade.ClearBasket(c.Request.Context(), ownerID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}
	h.respondBasket(c, basket)
}

// ApplyCoupon handles POST /api/basket/coupon.
func (h *BasketHandler) ApplyCoupon(c *gin.Context) {
	ownerID := CurrentCustomerID(c)
	var req dto.CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	basket, err := h.facade.ApplyCoupon(c.Request.Context(), ownerID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, domainErrors.ErrCouponAlreadyApplied),
			errors.Is(err, domainErrors.ErrCouponExpired),
			errors.Is(err, domainErrors.ErrCouponNotApplicable):
			c.Status(http.StatusUnprocessableEntity)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}
	h.respondBasket(c, basket)
}

// SuggestCoupon handles GET /api/basket/coupon/suggest.
func (h *BasketHandler) SuggestCoupon(c *gin.Context) {
	ownerID := CurrentCustomerID(c)
	coupon, err := h.facade.SuggestCoupon(c.Request.Context(), ownerID)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if coupon == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, dto.CouponResponse{Code: coupon.Code, PercentOff: coupon.PercentOff})
}

// AddAttachment handles POST /api/basket/lines/:id/attachments.
func (h *BasketHandler) AddAttachment(c *gin.Context) {
	ownerID := CurrentCustomerID(c)
	lineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	var req dto.AttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	attachment := &model.Attachment{
		FileName:   req.FileName,
		StorageKey: req.StorageKey,
		Comment:    req.Comment,
	}
	if err := h.facade.AddAttachment(c.Request.Context(), ownerID, lineID, attachment); err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusCreated)
}

// Checkout handles POST /api/basket/checkout.
func (h *BasketHandler) Checkout(c *gin.Context) {
	ownerID := CurrentCustomerID(c)
	order, err := h.facade.Checkout(c.Request.Context(), ownerID)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrEmptyBasket):
			c.Status(http.StatusUnprocessableEntity)
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}
	c.JSON(http.StatusCreated, dto.ToOrderResponse(*order))
}

func (h *BasketHandler) respondBasket(c *gin.Context, basket *model.Basket) {
	subtotal, discount, total := h.facade.BasketTotals(basket)
	c.JSON(http.StatusOK, dto.ToBasketResponse(basket, subtotal, discount, total))
}
