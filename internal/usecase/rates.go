package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"

	domainErrors "github.com/paperdesk/papermart/internal/domain/errors"
	"github.com/paperdesk/papermart/internal/domain/model"
	"github.com/paperdesk/papermart/internal/domain/repository"
)

// RateUseCase resolves per-page prices and tier surcharges from the rate
// tables.
type RateUseCase struct {
	catalog repository.CatalogRepository
}

// NewRateUseCase constructs RateUseCase.
func NewRateUseCase(catalog repository.CatalogRepository) *RateUseCase {
	return &RateUseCase{catalog: catalog}
}

// Resolve finds the rate rule for a (service type, turnaround, level) scope.
// The wildcard rule (no level) always wins when present, even if a
// level-specific rule exists too: a marketplace discounting "any level"
// prices all levels uniformly. Only when no wildcard exists is the
// level-specific rule consulted. Absence returns ErrRateUnavailable, an
// expected outcome meaning the service is currently not offered.
func (u *RateUseCase) Resolve(ctx context.Context, serviceTypeID, turnaroundID uuid.UUID, levelID *uuid.UUID) (*model.RateRule, error) {
	rule, err := u.catalog.RateRule(ctx, serviceTypeID, turnaroundID, nil)
	if err == nil {
		return rule, nil
	}
	if !errors.Is(err, domainErrors.ErrNotFound) {
		return nil, err
	}

	if levelID == nil {
		return nil, domainErrors.ErrRateUnavailable
	}

	rule, err = u.catalog.RateRule(ctx, serviceTypeID, turnaroundID, levelID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.ErrRateUnavailable
		}
		return nil, err
	}
	return rule, nil
}

// ResolveTierSurcharge finds the surcharge for a tier under an already
// resolved rate rule. A missing row means the tier is free: the caller gets
// nil surcharge and no error.
func (u *RateUseCase) ResolveTierSurcharge(ctx context.Context, rule *model.RateRule, tierID uuid.UUID) (*model.TierSurcharge, error) {
	surcharge, err := u.catalog.TierSurcharge(ctx, rule.ID, tierID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return surcharge, nil
}
