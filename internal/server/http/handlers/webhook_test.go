package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paperdesk/papermart/internal/config"
	domainErrors "github.com/paperdesk/papermart/internal/domain/errors"
	"github.com/paperdesk/papermart/internal/domain/model"
	"github.com/paperdesk/papermart/internal/gateway/paypal"
	"github.com/paperdesk/papermart/internal/gateway/twocheckout"
	testhelpers "github.com/paperdesk/papermart/internal/test"
)

var discardLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

func paypalConfig() config.PayPalConfig {
	return config.PayPalConfig{
		BaseURL:               "https://api.sandbox.paypal.com",
		ClientID:              "client-id",
		Secret:                "client-secret",
		WebhookID:             "wh-orders",
		SubscriptionWebhookID: "wh-subscription",
	}
}

func capturePayload(eventType, invoiceID, customID, amount string) []byte {
	return []byte(`{
		"id": "WH-1",
		"event_type": "` + eventType + `",
		"create_time": "2026-02-01T10:00:00Z",
		"resource": {
			"id": "8GT12345",
			"invoice_id": "` + invoiceID + `",
			"custom_id": "` + customID + `",
			"create_time": "2026-02-01T09:59:00Z",
			"amount": {"value": "` + amount + `", "currency_code": "USD"}
		}
	}`)
}

func refundPayload(invoiceID, customID, captureAmount, refundedAmount string) []byte {
	return []byte(`{
		"id": "WH-R1",
		"event_type": "PAYMENT.CAPTURE.REFUNDED",
		"create_time": "2026-02-05T10:00:00Z",
		"resource": {
			"id": "8GT12345",
			"invoice_id": "` + invoiceID + `",
			"custom_id": "` + customID + `",
			"create_time": "2026-02-05T09:59:00Z",
			"amount": {"value": "` + captureAmount + `", "currency_code": "USD"},
			"seller_payable_breakdown": {
				"total_refunded_amount": {"value": "` + refundedAmount + `", "currency_code": "USD"}
			}
		}
	}`)
}

func TestPayPalWebhookMissingConfiguration(t *testing.T) {
	payments := &testhelpers.PaymentFacadeStub{}
	handler := NewPayPalWebhookHandler(payments, &testhelpers.SubscriptionFacadeStub{}, &testhelpers.VerifierStub{}, config.PayPalConfig{}, "papermart", discardLogger)
	resp := performRequest(t, http.MethodPost, "/webhooks/paypal", "/webhooks/paypal", handler.Orders, nil, capturePayload("PAYMENT.CAPTURE.COMPLETED", "7", "papermart", "264.00"), nil)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.Code)
	}
	if len(payments.Completed) != 0 {
		t.Fatal("expected no payment application")
	}
}

func TestPayPalWebhookBadSignature(t *testing.T) {
	payments := &testhelpers.PaymentFacadeStub{}
	verifier := &testhelpers.VerifierStub{Err: paypal.ErrVerificationFailed}
	handler := NewPayPalWebhookHandler(payments, &testhelpers.SubscriptionFacadeStub{}, verifier, paypalConfig(), "papermart", discardLogger)
	resp := performRequest(t, http.MethodPost, "/webhooks/paypal", "/webhooks/paypal", handler.Orders, nil, capturePayload("PAYMENT.CAPTURE.COMPLETED", "7", "papermart", "264.00"), nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if len(payments.Completed) != 0 {
		t.Fatal("expected no payment application")
	}
}

func TestPayPalWebhookVerifierOutage(t *testing.T) {
	verifier := &testhelpers.VerifierStub{Err: errors.New("token exchange failed")}
	handler := NewPayPalWebhookHandler(&testhelpers.PaymentFacadeStub{}, &testhelpers.SubscriptionFacadeStub{}, verifier, paypalConfig(), "papermart", discardLogger)
	resp := performRequest(t, http.MethodPost, "/webhooks/paypal", "/webhooks/paypal", handler.Orders, nil, capturePayload("PAYMENT.CAPTURE.COMPLETED", "7", "papermart", "264.00"), nil)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.Code)
	}
}

func TestPayPalWebhookMalformedEnvelope(t *testing.T) {
	handler := NewPayPalWebhookHandler(&testhelpers.PaymentFacadeStub{}, &testhelpers.SubscriptionFacadeStub{}, &testhelpers.VerifierStub{}, paypalConfig(), "papermart", discardLogger)
	resp := performRequest(t, http.MethodPost, "/webhooks/paypal", "/webhooks/paypal", handler.Orders, nil, []byte("not json"), nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestPayPalWebhookCaptureCompleted(t *testing.T) {
	payments := &testhelpers.PaymentFacadeStub{}
	verifier := &testhelpers.VerifierStub{}
	handler := NewPayPalWebhookHandler(payments, &testhelpers.SubscriptionFacadeStub{}, verifier, paypalConfig(), "papermart", discardLogger)
	resp := performRequest(t, http.MethodPost, "/webhooks/paypal", "/webhooks/paypal", handler.Orders, nil, capturePayload("PAYMENT.CAPTURE.COMPLETED", "7", "papermart", "264.00"), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if len(verifier.Calls) != 1 || verifier.Calls[0] != "wh-orders" {
		t.Fatalf("expected verification against the orders webhook, got %v", verifier.Calls)
	}
	if len(payments.Completed) != 1 {
		t.Fatalf("expected one completed payment, got %d", len(payments.Completed))
	}
	rec := payments.Completed[0]
	if rec.OrderID != 7 || rec.Gateway != model.GatewayKindPayPal || rec.TxRef != "8GT12345" {
		t.Fatalf("unexpected payment: %+v", rec)
	}
	if !rec.Amount.Equal(decimal.RequireFromString("264.00")) {
		t.Fatalf("unexpected amount %s", rec.Amount)
	}
	wantPaidAt := time.Date(2026, 2, 1, 9, 59, 0, 0, time.UTC)
	if !rec.PaidAt.Equal(wantPaidAt) {
		t.Fatalf("expected paid at %s, got %s", wantPaidAt, rec.PaidAt)
	}
}

func TestPayPalWebhookCaptureRefundedAndDenied(t *testing.T) {
	payments := &testhelpers.PaymentFacadeStub{}
	handler := NewPayPalWebhookHandler(payments, &testhelpers.SubscriptionFacadeStub{}, &testhelpers.VerifierStub{}, paypalConfig(), "papermart", discardLogger)

	resp := performRequest(t, http.MethodPost, "/webhooks/paypal", "/webhooks/paypal", handler.Orders, nil, refundPayload("7", "papermart", "264.00", "100.00"), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for refund, got %d", resp.Code)
	}
	resp = performRequest(t, http.MethodPost, "/webhooks/paypal", "/webhooks/paypal", handler.Orders, nil, capturePayload("PAYMENT.CAPTURE.DENIED", "7", "papermart", "264.00"), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for decline, got %d", resp.Code)
	}

	if len(payments.Refunded) != 1 || len(payments.Declined) != 1 || len(payments.Completed) != 0 {
		t.Fatalf("unexpected application counts: %d refunded, %d declined, %d completed",
			len(payments.Refunded), len(payments.Declined), len(payments.Completed))
	}
	// Refunds carry their money in the seller payable breakdown, not in the
	// capture amount.
	if !payments.Refunded[0].Amount.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("unexpected refund amount %s", payments.Refunded[0].Amount)
	}
}

func TestPayPalWebhookTenantMismatch(t *testing.T) {
	payments := &testhelpers.PaymentFacadeStub{}
	handler := NewPayPalWebhookHandler(payments, &testhelpers.SubscriptionFacadeStub{}, &testhelpers.VerifierStub{}, paypalConfig(), "papermart", discardLogger)
	resp := performRequest(t, http.MethodPost, "/webhooks/paypal", "/webhooks/paypal", handler.Orders, nil, capturePayload("PAYMENT.CAPTURE.COMPLETED", "7", "other-shop", "264.00"), nil)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", resp.Code)
	}
	if len(payments.Completed) != 0 {
		t.Fatal("expected no payment application")
	}
}

func TestPayPalWebhookUnknownEventAcknowledged(t *testing.T) {
	payments := &testhelpers.PaymentFacadeStub{}
	handler := NewPayPalWebhookHandler(payments, &testhelpers.SubscriptionFacadeStub{}, &testhelpers.VerifierStub{}, paypalConfig(), "papermart", discardLogger)
	resp := performRequest(t, http.MethodPost, "/webhooks/paypal", "/webhooks/paypal", handler.Orders, nil, capturePayload("CHECKOUT.ORDER.APPROVED", "7", "papermart", "264.00"), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if len(payments.Completed)+len(payments.Refunded)+len(payments.Declined) != 0 {
		t.Fatal("expected no payment application")
	}
}

func TestPayPalWebhookUnparsableFieldsAcknowledged(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{name: "invoice id", body: capturePayload("PAYMENT.CAPTURE.COMPLETED", "manual-order", "papermart", "264.00")},
		{name: "amount", body: capturePayload("PAYMENT.CAPTURE.COMPLETED", "7", "papermart", "two hundred")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payments := &testhelpers.PaymentFacadeStub{}
			handler := NewPayPalWebhookHandler(payments, &testhelpers.SubscriptionFacadeStub{}, &testhelpers.VerifierStub{}, paypalConfig(), "papermart", discardLogger)
			resp := performRequest(t, http.MethodPost, "/webhooks/paypal", "/webhooks/paypal", handler.Orders, nil, tt.body, nil)
			if resp.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", resp.Code)
			}
			if len(payments.Completed) != 0 {
				t.Fatal("expected no payment application")
			}
		})
	}
}

func TestPayPalWebhookUnknownOrderRetried(t *testing.T) {
	payments := &testhelpers.PaymentFacadeStub{CompletedFn: func(context.Context, int64, model.GatewayKind, string, decimal.Decimal, time.Time) error {
		return domainErrors.ErrEventTargetMissing
	}}
	handler := NewPayPalWebhookHandler(payments, &testhelpers.SubscriptionFacadeStub{}, &testhelpers.VerifierStub{}, paypalConfig(), "papermart", discardLogger)
	resp := performRequest(t, http.MethodPost, "/webhooks/paypal", "/webhooks/paypal", handler.Orders, nil, capturePayload("PAYMENT.CAPTURE.COMPLETED", "7", "papermart", "264.00"), nil)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", resp.Code)
	}
}

func TestPayPalSubscriptionActivated(t *testing.T) {
	var gotExternalID, gotPlanID string
	var gotStart, gotNext time.Time
	var gotCycles []model.BillingCycle
	subs := &testhelpers.SubscriptionFacadeStub{ActivatedFn: func(_ context.Context, externalID, planID string, startTime, nextBilling time.Time, cycles []model.BillingCycle) error {
		gotExternalID, gotPlanID = externalID, planID
		gotStart, gotNext = startTime, nextBilling
		gotCycles = cycles
		return nil
	}}
	verifier := &testhelpers.VerifierStub{}
	handler := NewPayPalWebhookHandler(&testhelpers.PaymentFacadeStub{}, subs, verifier, paypalConfig(), "papermart", discardLogger)

	body := []byte(`{
		"id": "WH-2",
		"event_type": "BILLING.SUBSCRIPTION.ACTIVATED",
		"create_time": "2026-02-01T10:00:00Z",
		"resource": {
			"id": "I-BW452GLLEP1G",
			"plan_id": "P-5ML4271244454362WXNWU5NQ",
			"custom_id": "papermart",
			"start_time": "2026-02-01T00:00:00Z",
			"billing_info": {
				"next_billing_time": "2026-03-01T00:00:00Z",
				"cycle_executions": [
					{"tenure_type": "TRIAL", "cycles_remaining": 1},
					{"tenure_type": "REGULAR", "cycles_remaining": 0}
				]
			}
		}
	}`)
	resp := performRequest(t, http.MethodPost, "/webhooks/paypal/subscription", "/webhooks/paypal/subscription", handler.Subscriptions, nil, body, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if len(verifier.Calls) != 1 || verifier.Calls[0] != "wh-subscription" {
		t.Fatalf("expected verification against the subscription webhook, got %v", verifier.Calls)
	}
	if gotExternalID != "I-BW452GLLEP1G" || gotPlanID != "P-5ML4271244454362WXNWU5NQ" {
		t.Fatalf("unexpected subscription identifiers %q %q", gotExternalID, gotPlanID)
	}
	if !gotStart.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start time %s", gotStart)
	}
	if !gotNext.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected next billing time %s", gotNext)
	}
	if len(gotCycles) != 2 || !model.IsOnTrial(gotCycles) {
		t.Fatalf("unexpected cycles: %+v", gotCycles)
	}
}

func TestPayPalSubscriptionLifecycleEvents(t *testing.T) {
	body := func(eventType string) []byte {
		return []byte(`{
			"id": "WH-3",
			"event_type": "` + eventType + `",
			"create_time": "2026-02-10T10:00:00Z",
			"resource": {"id": "I-BW452GLLEP1G", "custom_id": "papermart"}
		}`)
	}

	subs := &testhelpers.SubscriptionFacadeStub{}
	handler := NewPayPalWebhookHandler(&testhelpers.PaymentFacadeStub{}, subs, &testhelpers.VerifierStub{}, paypalConfig(), "papermart", discardLogger)

	for _, eventType := range []string{"BILLING.SUBSCRIPTION.SUSPENDED", "BILLING.SUBSCRIPTION.CANCELLED", "BILLING.SUBSCRIPTION.UPDATED"} {
		resp := performRequest(t, http.MethodPost, "/webhooks/paypal/subscription", "/webhooks/paypal/subscription", handler.Subscriptions, nil, body(eventType), nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected status 200 for %s, got %d", eventType, resp.Code)
		}
	}

	if len(subs.Suspended) != 1 || len(subs.Cancelled) != 1 || len(subs.Updated) != 1 {
		t.Fatalf("unexpected application counts: %d suspended, %d cancelled, %d updated",
			len(subs.Suspended), len(subs.Cancelled), len(subs.Updated))
	}
	if subs.Suspended[0] != "I-BW452GLLEP1G" {
		t.Fatalf("unexpected external id %q", subs.Suspended[0])
	}
}

func TestPayPalSubscriptionSaleCompleted(t *testing.T) {
	var gotExternalID, gotTxRef string
	var gotAmount decimal.Decimal
	subs := &testhelpers.SubscriptionFacadeStub{SaleCompletedFn: func(_ context.Context, externalID, txRef string, amount decimal.Decimal, _ time.Time) error {
		gotExternalID, gotTxRef, gotAmount = externalID, txRef, amount
		return nil
	}}
	handler := NewPayPalWebhookHandler(&testhelpers.PaymentFacadeStub{}, subs, &testhelpers.VerifierStub{}, paypalConfig(), "papermart", discardLogger)

	body := []byte(`{
		"id": "WH-4",
		"event_type": "PAYMENT.SALE.COMPLETED",
		"create_time": "2026-03-01T00:05:00Z",
		"resource": {
			"id": "3RV12345",
			"billing_agreement_id": "I-BW452GLLEP1G",
			"custom": "papermart",
			"create_time": "2026-03-01T00:04:00Z",
			"amount": {"total": "29.00", "currency": "USD"}
		}
	}`)
	resp := performRequest(t, http.MethodPost, "/webhooks/paypal/subscription", "/webhooks/paypal/subscription", handler.Subscriptions, nil, body, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if gotExternalID != "I-BW452GLLEP1G" || gotTxRef != "3RV12345" {
		t.Fatalf("unexpected sale identifiers %q %q", gotExternalID, gotTxRef)
	}
	if !gotAmount.Equal(decimal.RequireFromString("29.00")) {
		t.Fatalf("unexpected amount %s", gotAmount)
	}
}

func TestPayPalSubscriptionSaleWithoutLinkRetried(t *testing.T) {
	subs := &testhelpers.SubscriptionFacadeStub{SaleCompletedFn: func(context.Context, string, string, decimal.Decimal, time.Time) error {
		return domainErrors.ErrEventTargetMissing
	}}
	handler := NewPayPalWebhookHandler(&testhelpers.PaymentFacadeStub{}, subs, &testhelpers.VerifierStub{}, paypalConfig(), "papermart", discardLogger)

	body := []byte(`{
		"id": "WH-5",
		"event_type": "PAYMENT.SALE.COMPLETED",
		"create_time": "2026-03-01T00:05:00Z",
		"resource": {"id": "3RV12345", "billing_agreement_id": "I-UNKNOWN", "custom": "papermart", "amount": {"total": "29.00"}}
	}`)
	resp := performRequest(t, http.MethodPost, "/webhooks/paypal/subscription", "/webhooks/paypal/subscription", handler.Subscriptions, nil, body, nil)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", resp.Code)
	}
}

func TestPayPalSubscriptionTenantMismatch(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{name: "activated", body: []byte(`{
			"id": "WH-6",
			"event_type": "BILLING.SUBSCRIPTION.ACTIVATED",
			"create_time": "2026-02-01T10:00:00Z",
			"resource": {"id": "I-BW452GLLEP1G", "plan_id": "P-1", "custom_id": "someone-elses-shop"}
		}`)},
		{name: "suspended", body: []byte(`{
			"id": "WH-7",
			"event_type": "BILLING.SUBSCRIPTION.SUSPENDED",
			"create_time": "2026-02-10T10:00:00Z",
			"resource": {"id": "I-BW452GLLEP1G", "custom_id": "someone-elses-shop"}
		}`)},
		{name: "sale", body: []byte(`{
			"id": "WH-8",
			"event_type": "PAYMENT.SALE.COMPLETED",
			"create_time": "2026-03-01T00:05:00Z",
			"resource": {"id": "3RV12345", "billing_agreement_id": "I-BW452GLLEP1G", "custom": "someone-elses-shop", "amount": {"total": "29.00"}}
		}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs := &testhelpers.SubscriptionFacadeStub{}
			handler := NewPayPalWebhookHandler(&testhelpers.PaymentFacadeStub{}, subs, &testhelpers.VerifierStub{}, paypalConfig(), "papermart", discardLogger)
			resp := performRequest(t, http.MethodPost, "/webhooks/paypal/subscription", "/webhooks/paypal/subscription", handler.Subscriptions, nil, tt.body, nil)
			if resp.Code != http.StatusServiceUnavailable {
				t.Fatalf("expected status 503, got %d", resp.Code)
			}
			if len(subs.Activated)+len(subs.Suspended)+len(subs.Cancelled)+len(subs.Sales)+len(subs.Updated) != 0 {
				t.Fatal("expected no subscription application")
			}
		})
	}
}

func TestPayPalSubscriptionMissingWebhookID(t *testing.T) {
	cfg := paypalConfig()
	cfg.SubscriptionWebhookID = ""
	handler := NewPayPalWebhookHandler(&testhelpers.PaymentFacadeStub{}, &testhelpers.SubscriptionFacadeStub{}, &testhelpers.VerifierStub{}, cfg, "papermart", discardLogger)
	resp := performRequest(t, http.MethodPost, "/webhooks/paypal/subscription", "/webhooks/paypal/subscription", handler.Subscriptions, nil, []byte(`{}`), nil)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.Code)
	}
}

func twoCheckoutConfig() config.TwoCheckoutConfig {
	return config.TwoCheckoutConfig{SellerID: "901234567", Secret: "ins-secret"}
}

func twoCheckoutForm(cfg config.TwoCheckoutConfig, messageType, saleID, invoiceID, vendorOrderID, amount string) []byte {
	form := url.Values{}
	form.Set("message_type", messageType)
	form.Set("sale_id", saleID)
	form.Set("vendor_id", cfg.SellerID)
	form.Set("invoice_id", invoiceID)
	form.Set("vendor_order_id", vendorOrderID)
	form.Set("invoice_list_amount", amount)
	form.Set("md5_hash", twocheckout.Hash(saleID, cfg.SellerID, invoiceID, cfg.Secret))
	return []byte(form.Encode())
}

var formHeaders = map[string]string{"Content-Type": "application/x-www-form-urlencoded"}

func TestTwoCheckoutMissingConfiguration(t *testing.T) {
	handler := NewTwoCheckoutWebhookHandler(&testhelpers.PaymentFacadeStub{}, config.TwoCheckoutConfig{}, discardLogger)
	body := twoCheckoutForm(twoCheckoutConfig(), "ORDER_CREATED", "sale-1", "inv-1", "7", "264.00")
	resp := performRequest(t, http.MethodPost, "/webhooks/twocheckout", "/webhooks/twocheckout", handler.Notify, nil, body, formHeaders)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.Code)
	}
}

func TestTwoCheckoutBadHash(t *testing.T) {
	cfg := twoCheckoutConfig()
	payments := &testhelpers.PaymentFacadeStub{}
	handler := NewTwoCheckoutWebhookHandler(payments, cfg, discardLogger)
	body := twoCheckoutForm(cfg, "ORDER_CREATED", "sale-1", "inv-1", "7", "264.00")
	tampered := strings.Replace(string(body), "sale_id=sale-1", "sale_id=sale-2", 1)
	resp := performRequest(t, http.MethodPost, "/webhooks/twocheckout", "/webhooks/twocheckout", handler.Notify, nil, []byte(tampered), formHeaders)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if len(payments.Completed) != 0 {
		t.Fatal("expected no payment application")
	}
}

func TestTwoCheckoutOrderCreated(t *testing.T) {
	cfg := twoCheckoutConfig()
	payments := &testhelpers.PaymentFacadeStub{}
	handler := NewTwoCheckoutWebhookHandler(payments, cfg, discardLogger)
	body := twoCheckoutForm(cfg, "ORDER_CREATED", "sale-1", "inv-1", "7", "264.00")
	resp := performRequest(t, http.MethodPost, "/webhooks/twocheckout", "/webhooks/twocheckout", handler.Notify, nil, body, formHeaders)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if len(payments.Completed) != 1 {
		t.Fatalf("expected one completed payment, got %d", len(payments.Completed))
	}
	rec := payments.Completed[0]
	if rec.OrderID != 7 || rec.Gateway != model.GatewayKindTwoCheckout || rec.TxRef != "sale-1" {
		t.Fatalf("unexpected payment: %+v", rec)
	}
	if !rec.Amount.Equal(decimal.RequireFromString("264.00")) {
		t.Fatalf("unexpected amount %s", rec.Amount)
	}
}

func TestTwoCheckoutSaleDateDrivesPaidAt(t *testing.T) {
	cfg := twoCheckoutConfig()
	payments := &testhelpers.PaymentFacadeStub{}
	handler := NewTwoCheckoutWebhookHandler(payments, cfg, discardLogger)

	form, _ := url.ParseQuery(string(twoCheckoutForm(cfg, "ORDER_CREATED", "sale-1", "inv-1", "7", "264.00")))
	form.Set("sale_date_placed", "2026-02-01 09:59:00")
	resp := performRequest(t, http.MethodPost, "/webhooks/twocheckout", "/webhooks/twocheckout", handler.Notify, nil, []byte(form.Encode()), formHeaders)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if len(payments.Completed) != 1 {
		t.Fatalf("expected one completed payment, got %d", len(payments.Completed))
	}
	wantPaidAt := time.Date(2026, 2, 1, 9, 59, 0, 0, time.UTC)
	if !payments.Completed[0].PaidAt.Equal(wantPaidAt) {
		t.Fatalf("expected paid at %s, got %s", wantPaidAt, payments.Completed[0].PaidAt)
	}
}

func TestTwoCheckoutBadSaleDateFallsBackToNow(t *testing.T) {
	cfg := twoCheckoutConfig()
	payments := &testhelpers.PaymentFacadeStub{}
	handler := NewTwoCheckoutWebhookHandler(payments, cfg, discardLogger)

	form, _ := url.ParseQuery(string(twoCheckoutForm(cfg, "ORDER_CREATED", "sale-1", "inv-1", "7", "264.00")))
	form.Set("sale_date_placed", "yesterday")
	before := time.Now().UTC()
	resp := performRequest(t, http.MethodPost, "/webhooks/twocheckout", "/webhooks/twocheckout", handler.Notify, nil, []byte(form.Encode()), formHeaders)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if len(payments.Completed) != 1 {
		t.Fatalf("expected one completed payment, got %d", len(payments.Completed))
	}
	if payments.Completed[0].PaidAt.Before(before) {
		t.Fatalf("expected paid at no earlier than %s, got %s", before, payments.Completed[0].PaidAt)
	}
}

func TestTwoCheckoutRefundIssued(t *testing.T) {
	cfg := twoCheckoutConfig()
	payments := &testhelpers.PaymentFacadeStub{}
	handler := NewTwoCheckoutWebhookHandler(payments, cfg, discardLogger)
	body := twoCheckoutForm(cfg, "REFUND_ISSUED", "sale-1", "inv-1", "7", "100.00")
	resp := performRequest(t, http.MethodPost, "/webhooks/twocheckout", "/webhooks/twocheckout", handler.Notify, nil, body, formHeaders)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if len(payments.Refunded) != 1 || len(payments.Completed) != 0 {
		t.Fatalf("unexpected application counts: %d refunded, %d completed", len(payments.Refunded), len(payments.Completed))
	}
}

func TestTwoCheckoutUnknownMessageAcknowledged(t *testing.T) {
	cfg := twoCheckoutConfig()
	payments := &testhelpers.PaymentFacadeStub{}
	handler := NewTwoCheckoutWebhookHandler(payments, cfg, discardLogger)
	body := twoCheckoutForm(cfg, "FRAUD_STATUS_CHANGED", "sale-1", "inv-1", "7", "264.00")
	resp := performRequest(t, http.MethodPost, "/webhooks/twocheckout", "/webhooks/twocheckout", handler.Notify, nil, body, formHeaders)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if len(payments.Completed)+len(payments.Refunded)+len(payments.Declined) != 0 {
		t.Fatal("expected no payment application")
	}
}

func TestTwoCheckoutUnparsableOrderAcknowledged(t *testing.T) {
	cfg := twoCheckoutConfig()
	payments := &testhelpers.PaymentFacadeStub{}
	handler := NewTwoCheckoutWebhookHandler(payments, cfg, discardLogger)
	body := twoCheckoutForm(cfg, "ORDER_CREATED", "sale-1", "inv-1", "legacy-7", "264.00")
	resp := performRequest(t, http.MethodPost, "/webhooks/twocheckout", "/webhooks/twocheckout", handler.Notify, nil, body, formHeaders)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if len(payments.Completed) != 0 {
		t.Fatal("expected no payment application")
	}
}

func TestTwoCheckoutUnknownOrderRetried(t *testing.T) {
	cfg := twoCheckoutConfig()
	payments := &testhelpers.PaymentFacadeStub{CompletedFn: func(context.Context, int64, model.GatewayKind, string, decimal.Decimal, time.Time) error {
		return domainErrors.ErrEventTargetMissing
	}}
	handler := NewTwoCheckoutWebhookHandler(payments, cfg, discardLogger)
	body := twoCheckoutForm(cfg, "ORDER_CREATED", "sale-1", "inv-1", "7", "264.00")
	resp := performRequest(t, http.MethodPost, "/webhooks/twocheckout", "/webhooks/twocheckout", handler.Notify, nil, body, formHeaders)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", resp.Code)
	}
}
