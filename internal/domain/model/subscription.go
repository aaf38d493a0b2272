package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SubscriptionStatus describes the recurring-billing lifecycle.
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "ACTIVE"
	SubscriptionStatusSuspended SubscriptionStatus = "SUSPENDED"
	SubscriptionStatusCancelled SubscriptionStatus = "CANCELLED"
	SubscriptionStatusRetired   SubscriptionStatus = "RETIRED"
)

// Subscription tracks the platform's own recurring billing. At most one
// subscription may be ACTIVE at a time; activating a new one retires every
// other currently active row.
type Subscription struct {
	ID              uuid.UUID
	Status          SubscriptionStatus
	IsOnTrial       bool
	StartTime       time.Time
	NextBillingTime time.Time
	CancelledAt     *time.Time
	RetiredAt       *time.Time
	CreatedAt       time.Time
}

// IsExpired reports whether the current billing period has lapsed.
func (s Subscription) IsExpired(now time.Time) bool {
	return now.After(s.NextBillingTime)
}

// GatewayLink binds a domain target to an external gateway's subscription or
// transaction identifiers. A subscription has exactly one active link.
type GatewayLink struct {
	ID         uuid.UUID
	Target     Target
	Gateway    GatewayKind
	ExternalID string
	PlanID     string
	PlanName   *string
	Amount     *decimal.Decimal
	CreatedAt  time.Time
}
