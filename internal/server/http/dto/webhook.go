package dto

import (
	"encoding/json"
	"time"
)

// PayPalEvent is the webhook envelope shared by all PayPal deliveries. The
// resource body stays raw until the event type selects its shape; signature
// verification needs the envelope byte-for-byte anyway.
type PayPalEvent struct {
	ID         string          `json:"id"`
	EventType  string          `json:"event_type"`
	CreateTime time.Time       `json:"create_time"`
	Resource   json.RawMessage `json:"resource"`
}

// PayPalAmount is the money shape used across PayPal resources.
type PayPalAmount struct {
	Value        string `json:"value"`
	CurrencyCode string `json:"currency_code"`
}

// PayPalCaptureResource is the resource of PAYMENT.CAPTURE.* events.
// InvoiceID carries the order id; CustomID carries the tenant name. Refund
// events report the refunded money under the seller payable breakdown, not
// under the capture amount.
type PayPalCaptureResource struct {
	ID                     string       `json:"id"`
	Amount                 PayPalAmount `json:"amount"`
	InvoiceID              string       `json:"invoice_id"`
	CustomID               string       `json:"custom_id"`
	CreateTime             time.Time    `json:"create_time"`
	SellerPayableBreakdown struct {
		TotalRefundedAmount PayPalAmount `json:"total_refunded_amount"`
	} `json:"seller_payable_breakdown"`
}

// PayPalSaleResource is the resource of PAYMENT.SALE.COMPLETED events. The
// billing agreement id keys the platform subscription rather than an order.
type PayPalSaleResource struct {
	ID                 string    `json:"id"`
	BillingAgreementID string    `json:"billing_agreement_id"`
	Custom             string    `json:"custom"`
	CreateTime         time.Time `json:"create_time"`
	Amount             struct {
		Total    string `json:"total"`
		Currency string `json:"currency"`
	} `json:"amount"`
}

// PayPalSubscriptionResource is the resource of BILLING.SUBSCRIPTION.*
// events. Update payloads are partial; the full resource is fetched
// out-of-band.
type PayPalSubscriptionResource struct {
	ID          string `json:"id"`
	PlanID      string `json:"plan_id"`
	StartTime   string `json:"start_time"`
	CustomID    string `json:"custom_id"`
	BillingInfo struct {
		NextBillingTime string `json:"next_billing_time"`
		CycleExecutions []struct {
			TenureType      string `json:"tenure_type"`
			CyclesRemaining int    `json:"cycles_remaining"`
		} `json:"cycle_executions"`
	} `json:"billing_info"`
}

// TwoCheckoutNotification is the INS form payload. VendorOrderID carries the
// order id assigned at checkout.
type TwoCheckoutNotification struct {
	MessageType   string `form:"message_type"`
	SaleID        string `form:"sale_id"`
	VendorID      string `form:"vendor_id"`
	InvoiceID     string `form:"invoice_id"`
	Hash          string `form:"md5_hash"`
	VendorOrderID string `form:"vendor_order_id"`
	ListAmount    string `form:"invoice_list_amount"`
	SaleDate      string `form:"sale_date_placed"`
}

// SubscriptionResponse mirrors the platform's current subscription.
type SubscriptionResponse struct {
	ID              string     `json:"id"`
	Status          string     `json:"status"`
	IsOnTrial       bool       `json:"is_on_trial"`
	StartTime       time.Time  `json:"start_time"`
	NextBillingTime time.Time  `json:"next_billing_time"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	IsExpired       bool       `json:"is_expired"`
}
