package services

import (
	"time"

	"gnexgym_backend/internal/models"
	"gnexgym_backend/pkg/dates"
)

// Pure ledger math for the member ledger. Everything here mutates only the
// in-memory Member; persistence is the service's job.

// renewalBase picks the date a renewal interval extends from: the existing
// due date when it is still in the future (renewing early must not eat
// paid-for time), otherwise today or an explicitly supplied start date.
func renewalBase(currentDue *string, today time.Time, explicitStart *string) time.Time {
	base := today
	if explicitStart != nil {
		if t, err := dates.Parse(*explicitStart); err == nil {
			base = t
		}
	}
	if currentDue != nil {
		if due, err := dates.Parse(*currentDue); err == nil && !dates.IsOnOrBefore(due, base) {
			base = due
		}
	}
	return base
}

func addInterval(base time.Time, unit string, value int) time.Time {
	switch unit {
	case models.UnitDays:
		return dates.AddDays(base, value)
	case models.UnitYears:
		return dates.AddYears(base, value)
	default:
		return dates.AddMonths(base, value)
	}
}

// applyPlanEffect applies one purchased plan to the member's renewal,
// session, locker, or fee state. Returns false when the plan has no ledger
// effect on members.
func applyPlanEffect(m *models.Member, plan *models.PricePlan, today time.Time, startDate *string) bool {
	switch plan.Effect.Kind {
	case models.EffectRenewal:
		next := dates.Format(addInterval(renewalBase(m.DueDate, today, startDate), plan.Effect.Unit, plan.Effect.Value))
		m.DueDate = &next
		if m.SubscriptionStartDate == nil {
			s := dates.Format(today)
			m.SubscriptionStartDate = &s
		}
		if plan.Type == models.PlanTypeMember {
			m.MembershipType = plan.Name
		}
		if m.Status == models.StatusDue || m.Status == models.StatusInactive {
			m.Status = models.StatusActive
		}
	case models.EffectSessions:
		m.HasCoach = true
		m.TotalSessions += plan.Effect.Value
		expiry := dates.Format(dates.AddMonths(today, 3))
		m.SessionExpiryDate = &expiry
		if m.Status == models.StatusSessions {
			m.Status = models.StatusActive
		}
	case models.EffectLocker:
		next := dates.Format(addInterval(renewalBase(m.LockerDueDate, today, startDate), models.UnitMonths, 1))
		m.LockerDueDate = &next
		if m.LockerStartDate == nil {
			s := dates.Format(today)
			m.LockerStartDate = &s
		}
	case models.EffectFee:
		next := dates.Format(addInterval(renewalBase(m.MembershipFeeDueDate, today, startDate), models.UnitYears, 1))
		m.MembershipFeeDueDate = &next
		paid := dates.Format(today)
		m.MembershipFeeLastPaid = &paid
	default:
		return false
	}
	return true
}

// DeriveStatus computes the single authoritative display status from stored
// facts. Manual overrides (Frozen, Inactive) win; an exhausted coaching plan
// reports Sessions; an elapsed due date reports Due.
func DeriveStatus(m *models.Member, today time.Time) string {
	switch m.Status {
	case models.StatusFrozen, models.StatusInactive:
		return m.Status
	}
	if m.HasCoach && m.TotalSessions > 0 && m.SessionsUsed >= m.TotalSessions {
		return models.StatusSessions
	}
	if m.DueDate != nil {
		if due, err := dates.Parse(*m.DueDate); err == nil && dates.IsOnOrBefore(due, today) {
			return models.StatusDue
		}
	}
	return models.StatusActive
}

// sessionOutcome reports what MarkSessionComplete did.
type sessionOutcome string

const (
	sessionCompleted sessionOutcome = "completed"
	sessionExhausted sessionOutcome = "exhausted"
	sessionsExpired  sessionOutcome = "expired"
)

// completeSession applies the coach's "session done" action to the member.
// Expired plans flip the member Inactive and zero the counters. Callers must
// reject members without a coaching plan before calling.
func completeSession(m *models.Member, today time.Time) sessionOutcome {
	if m.SessionExpiryDate != nil {
		if expiry, err := dates.Parse(*m.SessionExpiryDate); err == nil && dates.IsBefore(expiry, today) {
			m.Status = models.StatusInactive
			m.TotalSessions = 0
			m.SessionsUsed = 0
			return sessionsExpired
		}
	}
	m.SessionsUsed++
	if m.SessionsUsed >= m.TotalSessions {
		m.Status = models.StatusSessions
		return sessionExhausted
	}
	return sessionCompleted
}
