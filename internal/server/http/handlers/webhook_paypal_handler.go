package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/paperdesk/papermart/internal/config"
	domainErrors "github.com/paperdesk/papermart/internal/domain/errors"
	"github.com/paperdesk/papermart/internal/domain/model"
	"github.com/paperdesk/papermart/internal/gateway/paypal"
	"github.com/paperdesk/papermart/internal/server/http/dto"
)

// PayPalWebhookHandler ingests PayPal webhook deliveries. Signature
// verification always runs before any domain logic; domain-unresolvable
// events return 503 so the gateway redelivers, and unrecognized event types
// are acknowledged so the delivery queue never blocks.
type PayPalWebhookHandler struct {
	payments      PaymentFacade
	subscriptions SubscriptionFacade
	verifier      paypal.Verifier
	cfg           config.PayPalConfig
	tenant        string
	logger        *slog.Logger
}

// NewPayPalWebhookHandler constructs PayPalWebhookHandler.
func NewPayPalWebhookHandler(payments PaymentFacade, subscriptions SubscriptionFacade, verifier paypal.Verifier, cfg config.PayPalConfig, tenant string, logger *slog.Logger) *PayPalWebhookHandler {
	return &PayPalWebhookHandler{
		payments:      payments,
		subscriptions: subscriptions,
		verifier:      verifier,
		cfg:           cfg,
		tenant:        tenant,
		logger:        logger,
	}
}

// Orders handles POST /api/webhooks/paypal.
func (h *PayPalWebhookHandler) Orders(c *gin.Context) {
	event, ok := h.verified(c, h.cfg.WebhookID)
	if !ok {
		return
	}

	kind := model.ParsePayPalOrderEvent(event.EventType)
	switch kind {
	case model.OrderEventPaymentCompleted:
		h.applyCapture(c, event, kind, h.payments.RecordPaymentCompleted)
	case model.OrderEventPaymentRefunded:
		h.applyCapture(c, event, kind, h.payments.RecordPaymentRefund)
	case model.OrderEventPaymentDeclined:
		h.applyCapture(c, event, kind, h.payments.RecordPaymentDecline)
	default:
		c.Status(http.StatusOK)
	}
}

// Subscriptions handles POST /api/webhooks/paypal/subscription.
func (h *PayPalWebhookHandler) Subscriptions(c *gin.Context) {
	event, ok := h.verified(c, h.cfg.SubscriptionWebhookID)
	if !ok {
		return
	}

	switch model.ParsePayPalSubscriptionEvent(event.EventType) {
	case model.SubscriptionEventActivated:
		h.applyActivated(c, event)
	case model.SubscriptionEventSuspended:
		h.applyLifecycle(c, event, func(externalID string) error {
			return h.subscriptions.SubscriptionSuspended(c.Request.Context(), externalID)
		})
	case model.SubscriptionEventCancelled:
		h.applyLifecycle(c, event, func(externalID string) error {
			return h.subscriptions.SubscriptionCancelled(c.Request.Context(), externalID, event.CreateTime)
		})
	case model.SubscriptionEventSaleCompleted:
		h.applySale(c, event)
	case model.SubscriptionEventUpdated:
		h.applyLifecycle(c, event, func(externalID string) error {
			return h.subscriptions.SubscriptionUpdated(c.Request.Context(), externalID)
		})
	default:
		c.Status(http.StatusOK)
	}
}

// verified reads the request, checks configuration, and verifies the
// delivery signature. The returned flag is false when a response has
// already been written.
func (h *PayPalWebhookHandler) verified(c *gin.Context, webhookID string) (*dto.PayPalEvent, bool) {
	if !h.cfg.Configured() || webhookID == "" {
		h.logger.Error("paypal webhook received without gateway configuration")
		c.Status(http.StatusInternalServerError)
		return nil, false
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return nil, false
	}

	headers := paypal.WebhookHeaders{
		TransmissionID:   c.GetHeader("Paypal-Transmission-Id"),
		TransmissionTime: c.GetHeader("Paypal-Transmission-Time"),
		TransmissionSig:  c.GetHeader("Paypal-Transmission-Sig"),
		CertURL:          c.GetHeader("Paypal-Cert-Url"),
		AuthAlgo:         c.GetHeader("Paypal-Auth-Algo"),
	}

	if err := h.verifier.VerifyWebhookSignature(c.Request.Context(), webhookID, headers, body); err != nil {
		if errors.Is(err, paypal.ErrVerificationFailed) {
			c.Status(http.StatusBadRequest)
			return nil, false
		}
		h.logger.Error("paypal webhook verification errored", slog.String("error", err.Error()))
		c.Status(http.StatusInternalServerError)
		return nil, false
	}

	var event dto.PayPalEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.Status(http.StatusBadRequest)
		return nil, false
	}
	return &event, true
}

// tenantMismatch refuses deliveries whose custom id names another shop.
// The gateway redelivers, so a misrouted event is never silently dropped.
func (h *PayPalWebhookHandler) tenantMismatch(c *gin.Context, customID string) bool {
	if h.tenant == "" || customID == h.tenant {
		return false
	}
	c.Status(http.StatusServiceUnavailable)
	return true
}

type captureApply func(ctx context.Context, orderID int64, gateway model.GatewayKind, txRef string, amount decimal.Decimal, paidAt time.Time) error

func (h *PayPalWebhookHandler) applyCapture(c *gin.Context, event *dto.PayPalEvent, kind model.OrderEvent, apply captureApply) {
	var resource dto.PayPalCaptureResource
	if err := json.Unmarshal(event.Resource, &resource); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	if h.tenantMismatch(c, resource.CustomID) {
		return
	}

	orderID, err := strconv.ParseInt(resource.InvoiceID, 10, 64)
	if err != nil {
		h.logger.Warn("paypal capture with unparsable invoice id",
			slog.String("event", event.EventType), slog.String("invoice_id", resource.InvoiceID))
		c.Status(http.StatusOK)
		return
	}

	amountValue := resource.Amount.Value
	if kind == model.OrderEventPaymentRefunded {
		amountValue = resource.SellerPayableBreakdown.TotalRefundedAmount.Value
	}
	amount, err := decimal.NewFromString(amountValue)
	if err != nil {
		h.logger.Warn("paypal capture with unparsable amount",
			slog.String("event", event.EventType), slog.String("amount", amountValue))
		c.Status(http.StatusOK)
		return
	}

	paidAt := resource.CreateTime
	if paidAt.IsZero() {
		paidAt = event.CreateTime
	}

	if err := apply(c.Request.Context(), orderID, model.GatewayKindPayPal, resource.ID, amount, paidAt); err != nil {
		h.respondDomainErr(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *PayPalWebhookHandler) applyActivated(c *gin.Context, event *dto.PayPalEvent) {
	var resource dto.PayPalSubscriptionResource
	if err := json.Unmarshal(event.Resource, &resource); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	if h.tenantMismatch(c, resource.CustomID) {
		return
	}

	startTime, err := time.Parse(time.RFC3339, resource.StartTime)
	if err != nil {
		startTime = event.CreateTime
	}
	nextBilling, err := time.Parse(time.RFC3339, resource.BillingInfo.NextBillingTime)
	if err != nil {
		nextBilling = event.CreateTime
	}

	cycles := make([]model.BillingCycle, 0, len(resource.BillingInfo.CycleExecutions))
	for _, cycle := range resource.BillingInfo.CycleExecutions {
		cycles = append(cycles, model.BillingCycle{
			TenureType:      cycle.TenureType,
			CyclesRemaining: cycle.CyclesRemaining,
		})
	}

	if err := h.subscriptions.SubscriptionActivated(c.Request.Context(), resource.ID, resource.PlanID, startTime, nextBilling, cycles); err != nil {
		h.respondDomainErr(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *PayPalWebhookHandler) applyLifecycle(c *gin.Context, event *dto.PayPalEvent, apply func(externalID string) error) {
	var resource dto.PayPalSubscriptionResource
	if err := json.Unmarshal(event.Resource, &resource); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	if h.tenantMismatch(c, resource.CustomID) {
		return
	}
	if err := apply(resource.ID); err != nil {
		h.respondDomainErr(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *PayPalWebhookHandler) applySale(c *gin.Context, event *dto.PayPalEvent) {
	var resource dto.PayPalSaleResource
	if err := json.Unmarshal(event.Resource, &resource); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	if h.tenantMismatch(c, resource.Custom) {
		return
	}

	amount, err := decimal.NewFromString(resource.Amount.Total)
	if err != nil {
		h.logger.Warn("paypal sale with unparsable amount",
			slog.String("event", event.EventType), slog.String("amount", resource.Amount.Total))
		c.Status(http.StatusOK)
		return
	}

	paidAt := resource.CreateTime
	if paidAt.IsZero() {
		paidAt = event.CreateTime
	}

	if err := h.subscriptions.SubscriptionSaleCompleted(c.Request.Context(), resource.BillingAgreementID, resource.ID, amount, paidAt); err != nil {
		h.respondDomainErr(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *PayPalWebhookHandler) respondDomainErr(c *gin.Context, err error) {
	if errors.Is(err, domainErrors.ErrEventTargetMissing) {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.logger.Error("webhook event application failed", slog.String("error", err.Error()))
	c.Status(http.StatusInternalServerError)
}
