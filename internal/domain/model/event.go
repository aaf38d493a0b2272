package model

// OrderEvent is the closed set of gateway events recognized for customer
// order payments. Unknown provider strings map to OrderEventUnknown, which
// handlers acknowledge without acting so the delivery queue never blocks.
type OrderEvent int

const (
	OrderEventUnknown OrderEvent = iota
	OrderEventPaymentCompleted
	OrderEventPaymentRefunded
	OrderEventPaymentDeclined
)

// ParsePayPalOrderEvent maps a PayPal event type string to the closed set.
func ParsePayPalOrderEvent(eventType string) OrderEvent {
	switch eventType {
	case "PAYMENT.CAPTURE.COMPLETED":
		return OrderEventPaymentCompleted
	case "PAYMENT.CAPTURE.REFUNDED":
		return OrderEventPaymentRefunded
	case "PAYMENT.CAPTURE.DENIED":
		return OrderEventPaymentDeclined
	default:
		return OrderEventUnknown
	}
}

// ParseTwoCheckoutMessage maps a 2Checkout INS message type to the closed
// set. Only sale creation carries a payment today.
func ParseTwoCheckoutMessage(messageType string) OrderEvent {
	switch messageType {
	case "ORDER_CREATED":
		return OrderEventPaymentCompleted
	case "REFUND_ISSUED":
		return OrderEventPaymentRefunded
	default:
		return OrderEventUnknown
	}
}

// SubscriptionEvent is the closed set of gateway events recognized for the
// platform subscription lifecycle.
type SubscriptionEvent int

const (
	SubscriptionEventUnknown SubscriptionEvent = iota
	SubscriptionEventActivated
	SubscriptionEventSuspended
	SubscriptionEventCancelled
	SubscriptionEventSaleCompleted
	SubscriptionEventUpdated
)

// ParsePayPalSubscriptionEvent maps a PayPal event type string to the closed set.
func ParsePayPalSubscriptionEvent(eventType string) SubscriptionEvent {
	switch eventType {
	case "BILLING.SUBSCRIPTION.ACTIVATED":
		return SubscriptionEventActivated
	case "BILLING.SUBSCRIPTION.SUSPENDED":
		return SubscriptionEventSuspended
	case "BILLING.SUBSCRIPTION.CANCELLED":
		return SubscriptionEventCancelled
	case "PAYMENT.SALE.COMPLETED":
		return SubscriptionEventSaleCompleted
	case "BILLING.SUBSCRIPTION.UPDATED":
		return SubscriptionEventUpdated
	default:
		return SubscriptionEventUnknown
	}
}

// BillingCycle is one cycle execution entry from the gateway's subscription
// resource, used to derive trial state.
type BillingCycle struct {
	TenureType      string
	CyclesRemaining int
}

// IsOnTrial reports whether a TRIAL cycle with remaining executions exists.
func IsOnTrial(cycles []BillingCycle) bool {
	for _, cycle := range cycles {
		if cycle.TenureType == "TRIAL" {
			return cycle.CyclesRemaining > 0
		}
	}
	return false
}
