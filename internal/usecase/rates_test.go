package usecase_test

import (
	. "github.com/paperdesk/papermart/internal/usecase"

	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/paperdesk/papermart/internal/domain/errors"
	"github.com/paperdesk/papermart/internal/domain/model"
	testhelpers "github.com/paperdesk/papermart/internal/test"
)

func TestRateUseCaseWildcardWinsOverLevelRule(t *testing.T) {
	catalog := testhelpers.NewCatalogRepositoryStub()
	serviceType := uuid.New()
	turnaround := uuid.New()
	level := uuid.New()

	catalog.AddRule(&model.RateRule{
		ID:            uuid.New(),
		ServiceTypeID: serviceType,
		TurnaroundID:  turnaround,
		AmountPerPage: decimal.NewFromInt(10),
	})
	catalog.AddRule(&model.RateRule{
		ID:            uuid.New(),
		ServiceTypeID: serviceType,
		TurnaroundID:  turnaround,
		LevelID:       &level,
		AmountPerPage: decimal.NewFromInt(25),
	})

	uc := NewRateUseCase(catalog)
	rule, err := uc.Resolve(context.Background(), serviceType, turnaround, &level)
	if err != nil {
		t.Fatalf("resolve returned error: %v", err)
	}
	if !rule.IsWildcard() {
		t.Fatal("expected wildcard rule to win")
	}
	if !rule.AmountPerPage.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected price: %s", rule.AmountPerPage)
	}
}

func TestRateUseCaseFallsBackToLevelRule(t *testing.T) {
	catalog := testhelpers.NewCatalogRepositoryStub()
	serviceType := uuid.New()
	turnaround := uuid.New()
	level := uuid.New()

	catalog.AddRule(&model.RateRule{
		ID:            uuid.New(),
		ServiceTypeID: serviceType,
		TurnaroundID:  turnaround,
		LevelID:       &level,
		AmountPerPage: decimal.NewFromInt(25),
	})

	uc := NewRateUseCase(catalog)
	rule, err := uc.Resolve(context.Background(), serviceType, turnaround, &level)
	if err != nil {
		t.Fatalf("resolve returned error: %v", err)
	}
	if rule.IsWildcard() {
		t.Fatal("expected level-specific rule")
	}
}

func TestRateUseCaseUnavailable(t *testing.T) {
	catalog := testhelpers.NewCatalogRepositoryStub()
	uc := NewRateUseCase(catalog)

	level := uuid.New()
	if _, err := uc.Resolve(context.Background(), uuid.New(), uuid.New(), &level); err != domainErrors.ErrRateUnavailable {
		t.Fatalf("expected ErrRateUnavailable, got %v", err)
	}
	if _, err := uc.Resolve(context.Background(), uuid.New(), uuid.New(), nil); err != domainErrors.ErrRateUnavailable {
		t.Fatalf("expected ErrRateUnavailable without level, got %v", err)
	}
}

func TestRateUseCaseTierSurcharge(t *testing.T) {
	catalog := testhelpers.NewCatalogRepositoryStub()
	rule := &model.RateRule{ID: uuid.New(), ServiceTypeID: uuid.New(), TurnaroundID: uuid.New(), AmountPerPage: decimal.NewFromInt(10)}
	tier := uuid.New()
	catalog.AddSurcharge(&model.TierSurcharge{
		ID:            uuid.New(),
		RateRuleID:    rule.ID,
		TierID:        tier,
		AmountPerPage: decimal.NewFromInt(5),
	})

	uc := NewRateUseCase(catalog)
	surcharge, err := uc.ResolveTierSurcharge(context.Background(), rule, tier)
	if err != nil {
		t.Fatalf("resolve surcharge returned error: %v", err)
	}
	if surcharge == nil || !surcharge.AmountPerPage.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("unexpected surcharge: %+v", surcharge)
	}

	missing, err := uc.ResolveTierSurcharge(context.Background(), rule, uuid.New())
	if err != nil {
		t.Fatalf("missing surcharge should not error: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil surcharge for free tier")
	}
}
