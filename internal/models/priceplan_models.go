package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Price plan client types.
const (
	PlanTypeMember = "member"
	PlanTypeWalkin = "walk-in"
	PlanTypeCoach  = "coach"
	PlanTypeClass  = "class"
)

// Plan effect kinds. The effect is derived once from the plan name when the
// catalog entry is saved, so purchase paths never re-parse names.
const (
	EffectRenewal  = "renewal"  // extends the membership due date
	EffectSessions = "sessions" // grants coaching sessions
	EffectLocker   = "locker"   // extends the locker due date by one month
	EffectFee      = "fee"      // extends the membership fee due date by one year
	EffectNone     = "none"     // plain charge, no ledger side effect
)

// Renewal effect units.
const (
	UnitDays   = "days"
	UnitMonths = "months"
	UnitYears  = "years"
)

// PlanEffect is the ledger effect a plan purchase applies.
type PlanEffect struct {
	Kind  string `json:"kind" db:"effect_kind"`
	Unit  string `json:"unit,omitempty" db:"effect_unit"`   // renewal only
	Value int    `json:"value,omitempty" db:"effect_value"` // interval length or session count
}

// PricePlan is a purchasable catalog entry.
type PricePlan struct {
	ID        int64           `json:"id" db:"id"`
	Name      string          `json:"name" db:"name" binding:"required"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Type      string          `json:"type" db:"type"`
	Effect    PlanEffect      `json:"effect"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}
