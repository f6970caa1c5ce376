package services

import (
	"testing"
	"time"

	"gnexgym_backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testToday = time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)

func newMemberServiceForTest(t *testing.T, txCount int) (*memberService, *fakeMemberRepo, *fakePlanRepo) {
	t.Helper()
	memberRepo := newFakeMemberRepo()
	planRepo := newFakePlanRepo()
	svc := NewMemberService(memberRepo, planRepo, newTxDB(t, txCount)).(*memberService)
	svc.now = func() time.Time { return testToday }
	return svc, memberRepo, planRepo
}

func seedPlan(t *testing.T, planRepo *fakePlanRepo, name, planType string, amount string) int64 {
	t.Helper()
	p := &models.PricePlan{
		Name:   name,
		Amount: decimal.RequireFromString(amount),
		Type:   planType,
		Effect: DeriveEffect(name),
	}
	id, err := planRepo.Create(nil, p)
	require.NoError(t, err)
	return id
}

func TestEnrollAssignsGymNumberAndDefaultDueDate(t *testing.T) {
	svc, repo, _ := newMemberServiceForTest(t, 1)

	m, err := svc.Enroll(EnrollMemberRequest{Name: "Aruzhan S."})
	require.NoError(t, err)
	require.Equal(t, "G-0001", m.GymNumber)
	require.Equal(t, models.StatusActive, m.Status)
	require.NotNil(t, m.DueDate)
	require.Equal(t, "2025-04-15", *m.DueDate)

	entries, err := repo.GetHistory(m.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, models.HistoryTypeEnrollment, entries[0].Type)
}

func TestEnrollWithQuarterlyPlanSetsTermFromPlan(t *testing.T) {
	svc, _, planRepo := newMemberServiceForTest(t, 1)
	planID := seedPlan(t, planRepo, "Quarterly", models.PlanTypeMember, "30000")

	m, err := svc.Enroll(EnrollMemberRequest{Name: "Daniyar K.", PlanIDs: []int64{planID}})
	require.NoError(t, err)
	require.NotNil(t, m.DueDate)
	require.Equal(t, "2025-06-15", *m.DueDate)
	require.Equal(t, "Quarterly", m.MembershipType)
}

func TestEnrollRejectsEmptyName(t *testing.T) {
	svc, _, _ := newMemberServiceForTest(t, 0)
	_, err := svc.Enroll(EnrollMemberRequest{Name: "   "})
	require.ErrorIs(t, err, ErrValidation)
}

func TestEnrollRejectsUnknownPlan(t *testing.T) {
	svc, _, _ := newMemberServiceForTest(t, 0)
	_, err := svc.Enroll(EnrollMemberRequest{Name: "Aida", PlanIDs: []int64{99}})
	require.ErrorIs(t, err, ErrPlanNotFound)
}

func TestApplyPlansRenewalExtendsFromFutureDueDate(t *testing.T) {
	svc, repo, planRepo := newMemberServiceForTest(t, 2)
	planID := seedPlan(t, planRepo, "Monthly", models.PlanTypeMember, "12000")

	m, err := svc.Enroll(EnrollMemberRequest{Name: "Erlan"})
	require.NoError(t, err)
	require.Equal(t, "2025-04-15", *m.DueDate)

	// Renewing early must not eat the paid-for month.
	m, err = svc.ApplyPlans(m.ID, ApplyPlansRequest{PlanIDs: []int64{planID}, AsPayment: true})
	require.NoError(t, err)
	require.Equal(t, "2025-05-15", *m.DueDate)

	stored, err := repo.GetByID(m.ID)
	require.NoError(t, err)
	require.Equal(t, "2025-05-15", *stored.DueDate)
}

func TestApplyPlansOverdueRenewalStartsToday(t *testing.T) {
	svc, repo, planRepo := newMemberServiceForTest(t, 1)
	planID := seedPlan(t, planRepo, "Monthly", models.PlanTypeMember, "12000")

	past := "2025-02-01"
	member := &models.Member{GymNumber: "G-0001", Name: "Saule", Status: models.StatusDue, DueDate: &past}
	_, err := repo.Create(nil, member)
	require.NoError(t, err)

	m, err := svc.ApplyPlans(member.ID, ApplyPlansRequest{PlanIDs: []int64{planID}, AsPayment: true})
	require.NoError(t, err)
	require.Equal(t, "2025-04-15", *m.DueDate)
	require.Equal(t, models.StatusActive, m.Status)
}

func TestApplyPlansSessionPackAddsSessions(t *testing.T) {
	svc, _, planRepo := newMemberServiceForTest(t, 1)
	planID := seedPlan(t, planRepo, "10 Sessions", models.PlanTypeCoach, "50000")

	m, err := svc.Enroll(EnrollMemberRequest{Name: "Timur"})
	require.NoError(t, err)

	// Reuse the service with a fresh transaction budget for the second call.
	svc.db = newTxDB(t, 1)
	m, err = svc.ApplyPlans(m.ID, ApplyPlansRequest{PlanIDs: []int64{planID}, AsPayment: true})
	require.NoError(t, err)
	require.True(t, m.HasCoach)
	require.Equal(t, 10, m.TotalSessions)
	require.NotNil(t, m.SessionExpiryDate)
	require.Equal(t, "2025-06-15", *m.SessionExpiryDate)
}

func TestUseSessionWithoutPlanIsNoOp(t *testing.T) {
	svc, repo, _ := newMemberServiceForTest(t, 0)
	member := &models.Member{GymNumber: "G-0001", Name: "Olzhas", Status: models.StatusActive}
	_, err := repo.Create(nil, member)
	require.NoError(t, err)

	ok, err := svc.UseSession(member.ID)
	require.NoError(t, err)
	require.False(t, ok)

	stored, err := repo.GetByID(member.ID)
	require.NoError(t, err)
	require.Equal(t, 0, stored.SessionsUsed)
}

func TestMarkSessionCompleteRejectsWithoutCoachPlan(t *testing.T) {
	svc, repo, _ := newMemberServiceForTest(t, 0)
	member := &models.Member{GymNumber: "G-0001", Name: "Aliya", Status: models.StatusActive}
	_, err := repo.Create(nil, member)
	require.NoError(t, err)

	_, err = svc.MarkSessionComplete(member.ID)
	require.ErrorIs(t, err, ErrNoCoachPlan)
}

func TestMarkSessionCompleteRejectsExhaustedPack(t *testing.T) {
	svc, repo, _ := newMemberServiceForTest(t, 0)
	member := &models.Member{
		GymNumber: "G-0001", Name: "Aliya", Status: models.StatusSessions,
		HasCoach: true, TotalSessions: 10, SessionsUsed: 10,
	}
	_, err := repo.Create(nil, member)
	require.NoError(t, err)

	_, err = svc.MarkSessionComplete(member.ID)
	require.ErrorIs(t, err, ErrNoSessionsRemaining)
}

func TestMarkSessionCompleteConsumesOneSession(t *testing.T) {
	svc, repo, _ := newMemberServiceForTest(t, 1)
	expiry := "2025-06-01"
	member := &models.Member{
		GymNumber: "G-0001", Name: "Aliya", Status: models.StatusActive,
		HasCoach: true, TotalSessions: 10, SessionsUsed: 3, SessionExpiryDate: &expiry,
	}
	_, err := repo.Create(nil, member)
	require.NoError(t, err)

	result, err := svc.MarkSessionComplete(member.ID)
	require.NoError(t, err)
	require.Equal(t, "completed", result.Outcome)
	require.Equal(t, 4, result.Member.SessionsUsed)

	entries, err := repo.GetHistory(member.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, models.HistoryTypeSession, entries[0].Type)
}

func TestMarkSessionCompleteLastSessionFlipsStatus(t *testing.T) {
	svc, repo, _ := newMemberServiceForTest(t, 1)
	member := &models.Member{
		GymNumber: "G-0001", Name: "Aliya", Status: models.StatusActive,
		HasCoach: true, TotalSessions: 5, SessionsUsed: 4,
	}
	_, err := repo.Create(nil, member)
	require.NoError(t, err)

	result, err := svc.MarkSessionComplete(member.ID)
	require.NoError(t, err)
	require.Equal(t, "exhausted", result.Outcome)
	require.Equal(t, models.StatusSessions, result.Member.Status)
}

func TestMarkSessionCompleteExpiredPackDeactivates(t *testing.T) {
	svc, repo, _ := newMemberServiceForTest(t, 1)
	expiry := "2025-03-01" // before testToday
	member := &models.Member{
		GymNumber: "G-0001", Name: "Aliya", Status: models.StatusActive,
		HasCoach: true, TotalSessions: 10, SessionsUsed: 3, SessionExpiryDate: &expiry,
	}
	_, err := repo.Create(nil, member)
	require.NoError(t, err)

	result, err := svc.MarkSessionComplete(member.ID)
	require.NoError(t, err)
	require.Equal(t, "expired", result.Outcome)
	require.Equal(t, models.StatusInactive, result.Member.Status)
	require.Equal(t, 0, result.Member.TotalSessions)
	require.Equal(t, 0, result.Member.SessionsUsed)
}

func TestDeriveStatus(t *testing.T) {
	future := "2025-12-01"
	past := "2025-01-01"

	tests := []struct {
		name   string
		member models.Member
		want   string
	}{
		{"frozen override wins", models.Member{Status: models.StatusFrozen, DueDate: &past}, models.StatusFrozen},
		{"inactive override wins", models.Member{Status: models.StatusInactive}, models.StatusInactive},
		{"exhausted sessions", models.Member{Status: models.StatusActive, HasCoach: true, TotalSessions: 5, SessionsUsed: 5, DueDate: &future}, models.StatusSessions},
		{"overdue", models.Member{Status: models.StatusActive, DueDate: &past}, models.StatusDue},
		{"due today counts as due", models.Member{Status: models.StatusActive, DueDate: func() *string { d := "2025-03-15"; return &d }()}, models.StatusDue},
		{"active", models.Member{Status: models.StatusActive, DueDate: &future}, models.StatusActive},
		{"no due date is active", models.Member{Status: models.StatusActive}, models.StatusActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, DeriveStatus(&tt.member, testToday))
		})
	}
}
