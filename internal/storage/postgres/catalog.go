package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/paperdesk/papermart/internal/domain/errors"
	"github.com/paperdesk/papermart/internal/domain/model"
)

type catalogRepository struct {
	storage *Storage
}

func (r *catalogRepository) RateRule(ctx context.Context, serviceTypeID, turnaroundID uuid.UUID, levelID *uuid.UUID) (*model.RateRule, error) {
	var (
		query string
		args  []any
	)
	if levelID == nil {
		query = `SELECT id, service_type_id, turnaround_id, level_id, amount_per_page
                 FROM rate_rules WHERE service_type_id=$1 AND turnaround_id=$2 AND level_id IS NULL`
		args = []any{serviceTypeID, turnaroundID}
	} else {
		query = `SELECT id, service_type_id, turnaround_id, level_id, amount_per_page
                 FROM rate_rules WHERE service_type_id=$1 AND turnaround_id=$2 AND level_id=$3`
		args = []any{serviceTypeID, turnaroundID, *levelID}
	}

	var rule model.RateRule
	err := r.storage.pool.QueryRow(ctx, query, args...).Scan(&rule.ID, &rule.ServiceTypeID, &rule.TurnaroundID, &rule.LevelID, &rule.AmountPerPage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &rule, nil
}

func (r *catalogRepository) TierSurcharge(ctx context.Context, rateRuleID, tierID uuid.UUID) (*model.TierSurcharge, error) {
	const query = `SELECT id, rate_rule_id, tier_id, amount_per_page
                   FROM tier_surcharges WHERE rate_rule_id=$1 AND tier_id=$2`
	var surcharge model.TierSurcharge
	err := r.storage.pool.QueryRow(ctx, query, rateRuleID, tierID).Scan(&surcharge.ID, &surcharge.RateRuleID, &surcharge.TierID, &surcharge.AmountPerPage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &surcharge, nil
}

func (r *catalogRepository) ServiceType(ctx context.Context, id uuid.UUID) (*model.ServiceType, error) {
	const query = `SELECT id, name, sort_order FROM service_types WHERE id=$1`
	var st model.ServiceType
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(&st.ID, &st.Name, &st.SortOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &st, nil
}

func (r *catalogRepository) Turnaround(ctx context.Context, id uuid.UUID) (*model.Turnaround, error) {
	const query = `SELECT id, value, unit, sort_order FROM turnarounds WHERE id=$1`
	var ta model.Turnaround
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(&ta.ID, &ta.Value, &ta.Unit, &ta.SortOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &ta, nil
}

func (r *catalogRepository) Level(ctx context.Context, id uuid.UUID) (*model.Level, error) {
	const query = `SELECT id, name, sort_order FROM levels WHERE id=$1`
	var lvl model.Level
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(&lvl.ID, &lvl.Name, &lvl.SortOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &lvl, nil
}

func (r *catalogRepository) Tier(ctx context.Context, id uuid.UUID) (*model.Tier, error) {
	const query = `SELECT id, name, description, sort_order FROM tiers WHERE id=$1`
	var tier model.Tier
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(&tier.ID, &tier.Name, &tier.Description, &tier.SortOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &tier, nil
}
