package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/paperdesk/papermart/internal/config"
	domainErrors "github.com/paperdesk/papermart/internal/domain/errors"
	"github.com/paperdesk/papermart/internal/domain/model"
	"github.com/paperdesk/papermart/internal/gateway/twocheckout"
	"github.com/paperdesk/papermart/internal/server/http/dto"
)

// TwoCheckoutWebhookHandler ingests 2Checkout INS notifications. The MD5
// hash over sale id, vendor id, invoice id and the shared secret must match
// before any domain logic runs.
type TwoCheckoutWebhookHandler struct {
	payments PaymentFacade
	cfg      config.TwoCheckoutConfig
	logger   *slog.Logger
}

// NewTwoCheckoutWebhookHandler constructs TwoCheckoutWebhookHandler.
func NewTwoCheckoutWebhookHandler(payments PaymentFacade, cfg config.TwoCheckoutConfig, logger *slog.Logger) *TwoCheckoutWebhookHandler {
	return &TwoCheckoutWebhookHandler{payments: payments, cfg: cfg, logger: logger}
}

// Notify handles POST /api/webhooks/twocheckout.
func (h *TwoCheckoutWebhookHandler) Notify(c *gin.Context) {
	if !h.cfg.Configured() {
		h.logger.Error("twocheckout notification received without gateway configuration")
		c.Status(http.StatusInternalServerError)
		return
	}

	var req dto.TwoCheckoutNotification
	if err := c.ShouldBind(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	if !twocheckout.VerifyHash(req.Hash, req.SaleID, h.cfg.SellerID, req.InvoiceID, h.cfg.Secret) {
		c.Status(http.StatusBadRequest)
		return
	}

	event := model.ParseTwoCheckoutMessage(req.MessageType)
	if event == model.OrderEventUnknown {
		c.Status(http.StatusOK)
		return
	}

	orderID, err := strconv.ParseInt(req.VendorOrderID, 10, 64)
	if err != nil {
		h.logger.Warn("twocheckout notification with unparsable order id",
			slog.String("message_type", req.MessageType), slog.String("vendor_order_id", req.VendorOrderID))
		c.Status(http.StatusOK)
		return
	}

	amount, err := decimal.NewFromString(req.ListAmount)
	if err != nil {
		h.logger.Warn("twocheckout notification with unparsable amount",
			slog.String("message_type", req.MessageType), slog.String("amount", req.ListAmount))
		c.Status(http.StatusOK)
		return
	}

	paidAt := h.paidAt(req)
	switch event {
	case model.OrderEventPaymentCompleted:
		err = h.payments.RecordPaymentCompleted(c.Request.Context(), orderID, model.GatewayKindTwoCheckout, req.SaleID, amount, paidAt)
	case model.OrderEventPaymentRefunded:
		err = h.payments.RecordPaymentRefund(c.Request.Context(), orderID, model.GatewayKindTwoCheckout, req.SaleID, amount, paidAt)
	}
	if err != nil {
		if errors.Is(err, domainErrors.ErrEventTargetMissing) {
			c.Status(http.StatusServiceUnavailable)
			return
		}
		h.logger.Error("twocheckout event application failed", slog.String("error", err.Error()))
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusOK)
}

// paidAt takes the sale timestamp from the notification itself so a delayed
// delivery does not shift due dates. Receipt time is the fallback.
func (h *TwoCheckoutWebhookHandler) paidAt(req dto.TwoCheckoutNotification) time.Time {
	if req.SaleDate != "" {
		if placed, err := time.ParseInLocation("2006-01-02 15:04:05", req.SaleDate, time.UTC); err == nil {
			return placed
		}
		h.logger.Warn("twocheckout notification with unparsable sale date",
			slog.String("sale_date_placed", req.SaleDate))
	}
	return time.Now().UTC()
}
