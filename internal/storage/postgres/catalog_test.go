package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"

	domainErrors "github.com/paperdesk/papermart/internal/domain/errors"
	"github.com/paperdesk/papermart/internal/domain/model"
)

func TestCatalogRateRuleWildcardScope(t *testing.T) {
	storage, mock := newMockStorage(t)
	serviceType := uuid.New()
	turnaround := uuid.New()

	mock.ExpectQuery("FROM rate_rules WHERE service_type_id=.* AND turnaround_id=.* AND level_id IS NULL").
		WithArgs(serviceType, turnaround).
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "service_type_id", "turnaround_id", "level_id", "amount_per_page"}).
			AddRow(uuid.New().String(), serviceType.String(), turnaround.String(), (*uuid.UUID)(nil), "15.00"))

	rule, err := storage.Catalog().RateRule(context.Background(), serviceType, turnaround, nil)
	if err != nil {
		t.Fatalf("rate rule returned error: %v", err)
	}
	if !rule.IsWildcard() {
		t.Fatal("expected wildcard rule")
	}
	if !rule.AmountPerPage.Equal(mustDecimal("15.00")) {
		t.Fatalf("unexpected amount: %s", rule.AmountPerPage)
	}
	expectationsMet(t, mock)
}

func TestCatalogRateRuleLevelScope(t *testing.T) {
	storage, mock := newMockStorage(t)
	serviceType := uuid.New()
	turnaround := uuid.New()
	level := uuid.New()

	mock.ExpectQuery("FROM rate_rules WHERE service_type_id=.* AND turnaround_id=.* AND level_id=").
		WithArgs(serviceType, turnaround, level).
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "service_type_id", "turnaround_id", "level_id", "amount_per_page"}).
			AddRow(uuid.New().String(), serviceType.String(), turnaround.String(), &level, "25.00"))

	rule, err := storage.Catalog().RateRule(context.Background(), serviceType, turnaround, &level)
	if err != nil {
		t.Fatalf("rate rule returned error: %v", err)
	}
	if rule.LevelID == nil || *rule.LevelID != level {
		t.Fatalf("unexpected level: %v", rule.LevelID)
	}
	expectationsMet(t, mock)
}

func TestCatalogRateRuleNotFound(t *testing.T) {
	storage, mock := newMockStorage(t)
	mock.ExpectQuery("FROM rate_rules").WillReturnError(pgx.ErrNoRows)

	_, err := storage.Catalog().RateRule(context.Background(), uuid.New(), uuid.New(), nil)
	if err != domainErrors.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCatalogTierSurcharge(t *testing.T) {
	storage, mock := newMockStorage(t)
	ruleID := uuid.New()
	tierID := uuid.New()

	mock.ExpectQuery("FROM tier_surcharges WHERE rate_rule_id=").
		WithArgs(ruleID, tierID).
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "rate_rule_id", "tier_id", "amount_per_page"}).
			AddRow(uuid.New().String(), ruleID.String(), tierID.String(), "20.00"))

	surcharge, err := storage.Catalog().TierSurcharge(context.Background(), ruleID, tierID)
	if err != nil {
		t.Fatalf("surcharge returned error: %v", err)
	}
	if !surcharge.AmountPerPage.Equal(mustDecimal("20.00")) {
		t.Fatalf("unexpected amount: %s", surcharge.AmountPerPage)
	}
}

func TestCatalogEntityLookups(t *testing.T) {
	storage, mock := newMockStorage(t)
	id := uuid.New()

	mock.ExpectQuery("SELECT id, name, sort_order FROM service_types WHERE id=").
		WithArgs(id).
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "name", "sort_order"}).AddRow(id.String(), "Essay", 1))
	if st, err := storage.Catalog().ServiceType(context.Background(), id); err != nil || st.Name != "Essay" {
		t.Fatalf("service type lookup: %v %+v", err, st)
	}

	mock.ExpectQuery("SELECT id, value, unit, sort_order FROM turnarounds WHERE id=").
		WithArgs(id).
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "value", "unit", "sort_order"}).AddRow(id.String(), 3, model.TurnaroundUnitDay, 1))
	if ta, err := storage.Catalog().Turnaround(context.Background(), id); err != nil || ta.Value != 3 {
		t.Fatalf("turnaround lookup: %v %+v", err, ta)
	}

	mock.ExpectQuery("SELECT id, name, sort_order FROM levels WHERE id=").
		WithArgs(id).WillReturnError(pgx.ErrNoRows)
	if _, err := storage.Catalog().Level(context.Background(), id); err != domainErrors.ErrNotFound {
		t.Fatalf("expected ErrNotFound for level, got %v", err)
	}

	mock.ExpectQuery("SELECT id, name, description, sort_order FROM tiers WHERE id=").
		WithArgs(id).
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "name", "description", "sort_order"}).AddRow(id.String(), "Premium", "first in line", 1))
	if tier, err := storage.Catalog().Tier(context.Background(), id); err != nil || tier.Name != "Premium" {
		t.Fatalf("tier lookup: %v %+v", err, tier)
	}
}
