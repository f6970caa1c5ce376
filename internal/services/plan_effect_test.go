package services

import (
	"testing"

	"gnexgym_backend/internal/models"

	"github.com/stretchr/testify/require"
)

func TestDeriveEffect(t *testing.T) {
	tests := []struct {
		name string
		want models.PlanEffect
	}{
		{"Monthly", models.PlanEffect{Kind: models.EffectRenewal, Unit: models.UnitMonths, Value: 1}},
		{"Quarterly", models.PlanEffect{Kind: models.EffectRenewal, Unit: models.UnitMonths, Value: 3}},
		{"Semi-Annual", models.PlanEffect{Kind: models.EffectRenewal, Unit: models.UnitMonths, Value: 6}},
		{"Annual", models.PlanEffect{Kind: models.EffectRenewal, Unit: models.UnitYears, Value: 1}},
		{"Yearly Gold", models.PlanEffect{Kind: models.EffectRenewal, Unit: models.UnitYears, Value: 1}},
		{"3 Months", models.PlanEffect{Kind: models.EffectRenewal, Unit: models.UnitMonths, Value: 3}},
		{"2 Year Family", models.PlanEffect{Kind: models.EffectRenewal, Unit: models.UnitYears, Value: 2}},
		{"1 Day Pass", models.PlanEffect{Kind: models.EffectRenewal, Unit: models.UnitDays, Value: 1}},
		{"10 Sessions", models.PlanEffect{Kind: models.EffectSessions, Value: 10}},
		{"24 session pack", models.PlanEffect{Kind: models.EffectSessions, Value: 24}},
		{"Locker Rental", models.PlanEffect{Kind: models.EffectLocker, Unit: models.UnitMonths, Value: 1}},
		{"Membership Fee", models.PlanEffect{Kind: models.EffectFee, Unit: models.UnitYears, Value: 1}},
		{"Protein Shake", models.PlanEffect{Kind: models.EffectNone}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, DeriveEffect(tt.name))
		})
	}
}

func TestDeriveEffectLockerBeatsSessionCount(t *testing.T) {
	// A locker plan whose name also mentions a duration stays a locker plan.
	got := DeriveEffect("Locker Rental 3 Months")
	require.Equal(t, models.EffectLocker, got.Kind)
}
