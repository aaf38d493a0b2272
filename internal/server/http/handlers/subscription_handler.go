package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/paperdesk/papermart/internal/server/http/dto"
)

// SubscriptionHandler serves the platform's own subscription state.
type SubscriptionHandler struct {
	facade SubscriptionFacade
}

// NewSubscriptionHandler constructs SubscriptionHandler.
func NewSubscriptionHandler(facade SubscriptionFacade) *SubscriptionHandler {
	return &SubscriptionHandler{facade: facade}
}

// Current handles GET /api/subscription/current.
func (h *SubscriptionHandler) Current(c *gin.Context) {
	sub, err := h.facade.CurrentSubscription(c.Request.Context())
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if sub == nil {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, dto.SubscriptionResponse{
		ID:              sub.ID.String(),
		Status:          string(sub.Status),
		IsOnTrial:       sub.IsOnTrial,
		StartTime:       sub.StartTime,
		NextBillingTime: sub.NextBillingTime,
		CancelledAt:     sub.CancelledAt,
		IsExpired:       sub.IsExpired(time.Now().UTC()),
	})
}

// BillingHistory handles GET /api/subscription/payments.
func (h *SubscriptionHandler) BillingHistory(c *gin.Context) {
	records, err := h.facade.BillingHistory(c.Request.Context())
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(records) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.PaymentResponse, 0, len(records))
	for _, rec := range records {
		response = append(response, dto.PaymentResponse{
			TxRef:   rec.TxRef,
			Amount:  rec.Amount,
			Status:  string(rec.Status),
			Gateway: string(rec.Gateway),
			PaidAt:  rec.PaidAt,
		})
	}
	c.JSON(http.StatusOK, response)
}
