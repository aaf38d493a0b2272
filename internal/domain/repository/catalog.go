package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/paperdesk/papermart/internal/domain/model"
)

// CatalogRepository provides read access to catalog entities and rate
// tables. Rate lookups are exact on scope: passing a nil level id selects
// the wildcard rule.
type CatalogRepository interface {
	RateRule(ctx context.Context, serviceTypeID, turnaroundID uuid.UUID, levelID *uuid.UUID) (*model.RateRule, error)
	TierSurcharge(ctx context.Context, rateRuleID, tierID uuid.UUID) (*model.TierSurcharge, error)

	ServiceType(ctx context.Context, id uuid.UUID) (*model.ServiceType, error)
	Turnaround(ctx context.Context, id uuid.UUID) (*model.Turnaround, error)
	Level(ctx context.Context, id uuid.UUID) (*model.Level, error)
	Tier(ctx context.Context, id uuid.UUID) (*model.Tier, error)
}
