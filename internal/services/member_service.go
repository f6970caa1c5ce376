package services

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gnexgym_backend/internal/models"
	"gnexgym_backend/internal/repositories"
	"gnexgym_backend/pkg/dates"
	"gnexgym_backend/pkg/utils"

	"github.com/360EntSecGroup-Skylar/excelize"
)

// --- Custom Service Errors for Member ---
var (
	ErrMemberNotFound      = errors.New("member not found")
	ErrGymNumberExists     = errors.New("gym number already exists")
	ErrPlanNotFound        = errors.New("price plan not found")
	ErrNoCoachPlan         = errors.New("member has no coaching plan")
	ErrNoSessionsRemaining = errors.New("no sessions remaining")
	ErrDateFormat          = errors.New("invalid date format")
)

// --- Member DTOs ---

type EnrollMemberRequest struct {
	Name                  string   `json:"name" binding:"required"`
	Phone                 *string  `json:"phone"`
	Email                 *string  `json:"email"`
	MembershipType        string   `json:"membership_type"`
	SubscriptionStartDate *string  `json:"subscription_start_date"`
	CoachName             *string  `json:"coach_name"`
	TrainingType          *string  `json:"training_type"`
	ClassID               *int64   `json:"class_id"`
	Details               *string  `json:"details"`
	PlanIDs               []int64  `json:"plan_ids"`
}

type UpdateMemberRequest struct {
	Name           *string `json:"name"`
	Phone          *string `json:"phone"`
	Email          *string `json:"email"`
	MembershipType *string `json:"membership_type"`
	Status         *string `json:"status"`
	CoachName      *string `json:"coach_name"`
	TrainingType   *string `json:"training_type"`
	ClassID        *int64  `json:"class_id"`
	Details        *string `json:"details"`
	DueDate        *string `json:"due_date"`
}

type ApplyPlansRequest struct {
	PlanIDs   []int64 `json:"plan_ids" binding:"required"`
	AsPayment bool    `json:"as_payment"`
	StartDate *string `json:"start_date"` // overrides "today" for overdue renewals
}

// SessionCompleteResult reports the branch MarkSessionComplete took.
type SessionCompleteResult struct {
	Member  *models.Member `json:"member"`
	Outcome string         `json:"outcome"` // completed, exhausted, expired
}

// --- MemberService Interface ---
type MemberService interface {
	Enroll(req EnrollMemberRequest) (*models.Member, error)
	GetByID(id int64) (*models.Member, error)
	GetByGymNumber(gymNumber string) (*models.Member, error)
	List(filters models.MemberFilters) ([]models.Member, int, error)
	Update(id int64, req UpdateMemberRequest) (*models.Member, error)
	Delete(id int64) error
	ApplyPlans(memberID int64, req ApplyPlansRequest) (*models.Member, error)
	UseSession(memberID int64) (bool, error)
	MarkSessionComplete(memberID int64) (*SessionCompleteResult, error)
	History(memberID int64) ([]models.HistoryEntry, error)
	Status(memberID int64) (string, error)
	ImportMembersCSV(r io.Reader) (*ImportResult, error)
	ExportMembersCSV(w io.Writer, filters models.MemberFilters) error
	ExportMembersExcel(filters models.MemberFilters) (*excelize.File, error)
}

type memberService struct {
	memberRepo repositories.MemberRepository
	planRepo   repositories.PricePlanRepository
	db         *sql.DB
	now        func() time.Time
}

// NewMemberService creates a new instance of MemberService.
func NewMemberService(mr repositories.MemberRepository, pr repositories.PricePlanRepository, db *sql.DB) MemberService {
	return &memberService{memberRepo: mr, planRepo: pr, db: db, now: time.Now}
}

func (s *memberService) Enroll(req EnrollMemberRequest) (*models.Member, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	if req.Email != nil && *req.Email != "" && !utils.IsValidEmail(*req.Email) {
		return nil, fmt.Errorf("%w: email format is invalid", ErrValidation)
	}
	today := s.now()
	startDate := dates.Format(today)
	if req.SubscriptionStartDate != nil && *req.SubscriptionStartDate != "" {
		t, err := dates.Parse(*req.SubscriptionStartDate)
		if err != nil {
			return nil, fmt.Errorf("%w: subscription start date: %v", ErrDateFormat, err)
		}
		startDate = dates.Format(t)
		today = t
	}

	plans, err := s.fetchPlans(req.PlanIDs)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	seq, err := s.memberRepo.NextGymSequence(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute next gym number: %w", err)
	}

	membershipType := req.MembershipType
	if membershipType == "" {
		membershipType = "Monthly"
	}
	m := &models.Member{
		GymNumber:             fmt.Sprintf("G-%04d", seq),
		Name:                  strings.TrimSpace(req.Name),
		Phone:                 req.Phone,
		Email:                 req.Email,
		MembershipType:        membershipType,
		Status:                models.StatusActive,
		SubscriptionStartDate: &startDate,
		CoachName:             req.CoachName,
		TrainingType:          req.TrainingType,
		ClassID:               req.ClassID,
		Details:               req.Details,
	}

	for i := range plans {
		applyPlanEffect(m, &plans[i], today, nil)
	}
	// Members who did not buy a renewal plan at enrollment get the default
	// one-month term.
	if m.DueDate == nil {
		dueDate := dates.Format(dates.AddMonths(today, 1))
		m.DueDate = &dueDate
	}

	if _, err := s.memberRepo.Create(tx, m); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %v", ErrGymNumberExists, err)
		}
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	entry := &models.HistoryEntry{
		Type:  models.HistoryTypeEnrollment,
		Title: "Enrolled as " + m.MembershipType,
	}
	if _, err := s.memberRepo.AddHistory(tx, m.ID, entry); err != nil {
		return nil, fmt.Errorf("failed to record enrollment history: %w", err)
	}
	for i := range plans {
		planEntry := &models.HistoryEntry{
			Type:          models.HistoryTypePayment,
			Title:         plans[i].Name,
			PaymentAmount: &plans[i].Amount,
		}
		if _, err := s.memberRepo.AddHistory(tx, m.ID, planEntry); err != nil {
			return nil, fmt.Errorf("failed to record plan history: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit enrollment: %w", err)
	}
	return m, nil
}

func (s *memberService) GetByID(id int64) (*models.Member, error) {
	m, err := s.memberRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return m, nil
}

func (s *memberService) GetByGymNumber(gymNumber string) (*models.Member, error) {
	m, err := s.memberRepo.GetByGymNumber(gymNumber)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return m, nil
}

func (s *memberService) List(filters models.MemberFilters) ([]models.Member, int, error) {
	members, total, err := s.memberRepo.List(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list members: %w", err)
	}
	return members, total, nil
}

func (s *memberService) Update(id int64, req UpdateMemberRequest) (*models.Member, error) {
	m, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		m.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		m.Phone = req.Phone
	}
	if req.Email != nil {
		if *req.Email != "" && !utils.IsValidEmail(*req.Email) {
			return nil, fmt.Errorf("%w: email format is invalid", ErrValidation)
		}
		m.Email = req.Email
	}
	if req.MembershipType != nil {
		m.MembershipType = *req.MembershipType
	}
	if req.Status != nil {
		m.Status = *req.Status
	}
	if req.CoachName != nil {
		m.CoachName = req.CoachName
	}
	if req.TrainingType != nil {
		m.TrainingType = req.TrainingType
	}
	if req.ClassID != nil {
		m.ClassID = req.ClassID
	}
	if req.Details != nil {
		m.Details = req.Details
	}
	if req.DueDate != nil {
		t, err := dates.Parse(*req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("%w: due date: %v", ErrDateFormat, err)
		}
		d := dates.Format(t)
		m.DueDate = &d
	}

	if err := s.memberRepo.Update(s.db, m); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to update member: %w", err)
	}
	return m, nil
}

func (s *memberService) Delete(id int64) error {
	if err := s.memberRepo.Delete(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to delete member: %w", err)
	}
	return nil
}

// ApplyPlans applies purchased plans to the member's renewal/session/locker/
// fee state and logs one history entry per plan. asPayment=false marks the
// charge as added to an open tab instead of a settled payment.
func (s *memberService) ApplyPlans(memberID int64, req ApplyPlansRequest) (*models.Member, error) {
	if len(req.PlanIDs) == 0 {
		return nil, fmt.Errorf("%w: no plans selected", ErrValidation)
	}
	if req.StartDate != nil && *req.StartDate != "" {
		if _, err := dates.Parse(*req.StartDate); err != nil {
			return nil, fmt.Errorf("%w: start date: %v", ErrDateFormat, err)
		}
	}
	m, err := s.GetByID(memberID)
	if err != nil {
		return nil, err
	}
	plans, err := s.fetchPlans(req.PlanIDs)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := applyPlansInTx(tx, s.memberRepo, m, plans, req.AsPayment, req.StartDate, s.now()); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit plan application: %w", err)
	}
	return m, nil
}

// applyPlansInTx is shared with the check-in service so add-plan-to-tab runs
// inside the check-in transaction.
func applyPlansInTx(executor repositories.SQLExecutor, repo repositories.MemberRepository,
	m *models.Member, plans []models.PricePlan, asPayment bool, startDate *string, today time.Time) error {

	for i := range plans {
		applyPlanEffect(m, &plans[i], today, startDate)

		entry := &models.HistoryEntry{
			Title: plans[i].Name,
		}
		if asPayment {
			entry.Type = models.HistoryTypePayment
			entry.PaymentAmount = &plans[i].Amount
		} else {
			entry.Type = models.HistoryTypeNote
			entry.Details = utils.NewNullString("added to tab")
		}
		if _, err := repo.AddHistory(executor, m.ID, entry); err != nil {
			return fmt.Errorf("failed to record plan history: %w", err)
		}
	}
	if err := repo.Update(executor, m); err != nil {
		return fmt.Errorf("failed to update member ledger state: %w", err)
	}
	return nil
}

// UseSession consumes one coaching session. Returns false without mutation
// when the member has no coaching plan or no sessions remain.
func (s *memberService) UseSession(memberID int64) (bool, error) {
	m, err := s.GetByID(memberID)
	if err != nil {
		return false, err
	}
	if !m.HasCoach || m.TotalSessions == 0 || m.SessionsUsed >= m.TotalSessions {
		return false, nil
	}
	m.SessionsUsed++
	if err := s.memberRepo.Update(s.db, m); err != nil {
		return false, fmt.Errorf("failed to update member sessions: %w", err)
	}
	return true, nil
}

// MarkSessionComplete is the coach's explicit confirmation that a session
// happened. Branches: expired plan deactivates the member and zeroes the
// counters; a member without a plan (or with zero sessions) is rejected
// without mutation; otherwise one session is consumed, flipping the member to
// the Sessions status when that exhausts the pack.
func (s *memberService) MarkSessionComplete(memberID int64) (*SessionCompleteResult, error) {
	m, err := s.GetByID(memberID)
	if err != nil {
		return nil, err
	}
	today := s.now()

	expired := false
	if m.SessionExpiryDate != nil {
		if expiry, err := dates.Parse(*m.SessionExpiryDate); err == nil && dates.IsBefore(expiry, today) {
			expired = true
		}
	}
	if !expired {
		if !m.HasCoach || m.TotalSessions == 0 {
			return nil, ErrNoCoachPlan
		}
		if m.SessionsUsed >= m.TotalSessions {
			return nil, ErrNoSessionsRemaining
		}
	}

	outcome := completeSession(m, today)

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.memberRepo.Update(tx, m); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}
	entry := &models.HistoryEntry{
		Type:  models.HistoryTypeSession,
		Title: sessionHistoryTitle(outcome, m),
	}
	if _, err := s.memberRepo.AddHistory(tx, m.ID, entry); err != nil {
		return nil, fmt.Errorf("failed to record session history: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit session completion: %w", err)
	}
	return &SessionCompleteResult{Member: m, Outcome: string(outcome)}, nil
}

func sessionHistoryTitle(outcome sessionOutcome, m *models.Member) string {
	switch outcome {
	case sessionsExpired:
		return "Coaching sessions expired"
	case sessionExhausted:
		return fmt.Sprintf("Session completed (%d/%d, pack finished)", m.SessionsUsed, m.TotalSessions)
	default:
		return fmt.Sprintf("Session completed (%d/%d)", m.SessionsUsed, m.TotalSessions)
	}
}

func (s *memberService) History(memberID int64) ([]models.HistoryEntry, error) {
	if _, err := s.GetByID(memberID); err != nil {
		return nil, err
	}
	entries, err := s.memberRepo.GetHistory(memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member history: %w", err)
	}
	return entries, nil
}

// Status returns the derived authoritative status for a member.
func (s *memberService) Status(memberID int64) (string, error) {
	m, err := s.GetByID(memberID)
	if err != nil {
		return "", err
	}
	return DeriveStatus(m, s.now()), nil
}

func (s *memberService) fetchPlans(ids []int64) ([]models.PricePlan, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	plans, err := s.planRepo.GetByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price plans: %w", err)
	}
	if len(plans) != len(ids) {
		return nil, fmt.Errorf("%w: requested %d plans, found %d", ErrPlanNotFound, len(ids), len(plans))
	}
	return plans, nil
}
