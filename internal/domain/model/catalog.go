package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TurnaroundUnit describes how a turnaround value is measured.
type TurnaroundUnit string

const (
	TurnaroundUnitHour TurnaroundUnit = "HOUR"
	TurnaroundUnitDay  TurnaroundUnit = "DAY"
)

// ServiceType is a catalog entry describing the kind of work offered.
type ServiceType struct {
	ID        uuid.UUID
	Name      string
	SortOrder int
}

// Turnaround is a catalog entry describing delivery speed.
type Turnaround struct {
	ID        uuid.UUID
	Value     int
	Unit      TurnaroundUnit
	SortOrder int
}

// FullName renders the turnaround for display, e.g. "3 Days".
func (t Turnaround) FullName() string {
	unit := "Day"
	if t.Unit == TurnaroundUnitHour {
		unit = "Hour"
	}
	if t.Value > 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s", t.Value, unit)
}

// Duration converts the turnaround value into a time duration.
func (t Turnaround) Duration() time.Duration {
	if t.Unit == TurnaroundUnitHour {
		return time.Duration(t.Value) * time.Hour
	}
	return time.Duration(t.Value) * 24 * time.Hour
}

// DueDate calculates the due date counted from start.
func (t Turnaround) DueDate(start time.Time) time.Time {
	return start.Add(t.Duration())
}

// Level is a catalog entry describing complexity of the work.
type Level struct {
	ID        uuid.UUID
	Name      string
	SortOrder int
}

// Tier is a premium service tier carrying an optional surcharge.
type Tier struct {
	ID          uuid.UUID
	Name        string
	Description string
	SortOrder   int
}

// RateRule resolves a per-page price for a (service type, turnaround, level)
// scope. A rule with LevelID == nil is a wildcard matching any level and it
// always wins over level-specific rules.
type RateRule struct {
	ID            uuid.UUID
	ServiceTypeID uuid.UUID
	TurnaroundID  uuid.UUID
	LevelID       *uuid.UUID
	AmountPerPage decimal.Decimal
}

// IsWildcard reports whether the rule matches any level.
func (r RateRule) IsWildcard() bool {
	return r.LevelID == nil
}

// TierSurcharge is an optional extra per-page charge bound to a rate rule and
// a tier. A zero amount means the tier is free for that rule.
type TierSurcharge struct {
	ID            uuid.UUID
	RateRuleID    uuid.UUID
	TierID        uuid.UUID
	AmountPerPage decimal.Decimal
}
