package services

import (
	"regexp"
	"strconv"
	"strings"

	"gnexgym_backend/internal/models"
)

var (
	sessionCountRe = regexp.MustCompile(`(?i)(\d+)\s*session`)
	yearCountRe    = regexp.MustCompile(`(?i)(\d+)\s*year`)
	monthCountRe   = regexp.MustCompile(`(?i)(\d+)\s*month`)
	dayCountRe     = regexp.MustCompile(`(?i)(\d+)\s*day`)
)

// DeriveEffect maps a price plan name to its ledger effect. This runs once
// when a catalog entry is saved, so the purchase paths read the stored effect
// instead of re-parsing names. The recognized name patterns match the ones
// staff have always used on the price list: "Locker Rental", "Membership
// Fee", "10 Sessions", "Monthly", "Quarterly", "Annual", "3 Months",
// "1 Day Pass" and the like.
func DeriveEffect(name string) models.PlanEffect {
	lower := strings.ToLower(name)

	if strings.Contains(lower, "locker") {
		return models.PlanEffect{Kind: models.EffectLocker, Unit: models.UnitMonths, Value: 1}
	}
	if strings.Contains(lower, "membership fee") {
		return models.PlanEffect{Kind: models.EffectFee, Unit: models.UnitYears, Value: 1}
	}
	if m := sessionCountRe.FindStringSubmatch(name); m != nil {
		n, _ := strconv.Atoi(m[1])
		return models.PlanEffect{Kind: models.EffectSessions, Value: n}
	}

	switch {
	case strings.Contains(lower, "monthly"):
		return models.PlanEffect{Kind: models.EffectRenewal, Unit: models.UnitMonths, Value: 1}
	case strings.Contains(lower, "quarterly"):
		return models.PlanEffect{Kind: models.EffectRenewal, Unit: models.UnitMonths, Value: 3}
	case strings.Contains(lower, "semi-annual"), strings.Contains(lower, "half year"), strings.Contains(lower, "half-year"):
		return models.PlanEffect{Kind: models.EffectRenewal, Unit: models.UnitMonths, Value: 6}
	case strings.Contains(lower, "annual"), strings.Contains(lower, "yearly"):
		return models.PlanEffect{Kind: models.EffectRenewal, Unit: models.UnitYears, Value: 1}
	}

	if m := yearCountRe.FindStringSubmatch(name); m != nil {
		n, _ := strconv.Atoi(m[1])
		return models.PlanEffect{Kind: models.EffectRenewal, Unit: models.UnitYears, Value: n}
	}
	if m := monthCountRe.FindStringSubmatch(name); m != nil {
		n, _ := strconv.Atoi(m[1])
		return models.PlanEffect{Kind: models.EffectRenewal, Unit: models.UnitMonths, Value: n}
	}
	if m := dayCountRe.FindStringSubmatch(name); m != nil {
		n, _ := strconv.Atoi(m[1])
		return models.PlanEffect{Kind: models.EffectRenewal, Unit: models.UnitDays, Value: n}
	}

	return models.PlanEffect{Kind: models.EffectNone}
}
