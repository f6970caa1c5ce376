package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gnexgym_backend/internal/models"
	"gnexgym_backend/internal/repositories"
	"gnexgym_backend/pkg/dates"
	"gnexgym_backend/pkg/utils"
)

// --- Custom Service Errors for Walk-in ---
var (
	ErrWalkinNotFound       = errors.New("walk-in client not found")
	ErrNoSessionPlan        = errors.New("walk-in client has no session plan")
	ErrSessionPlanExhausted = errors.New("session plan is used up")
)

// --- Walk-in DTOs ---

type CreateWalkinRequest struct {
	Name        string             `json:"name" binding:"required"`
	Phone       *string            `json:"phone"`
	Email       *string            `json:"email"`
	SessionPlan *SessionPlanRequest `json:"session_plan"`
}

type SessionPlanRequest struct {
	Name  string `json:"name" binding:"required"`
	Total int    `json:"total" binding:"required,gt=0"`
}

type UpdateWalkinRequest struct {
	Name        *string             `json:"name"`
	Phone       *string             `json:"phone"`
	Email       *string             `json:"email"`
	SessionPlan *SessionPlanRequest `json:"session_plan"`
}

// --- WalkinService Interface ---
type WalkinService interface {
	Create(req CreateWalkinRequest) (*models.WalkinClient, error)
	GetByID(id int64) (*models.WalkinClient, error)
	List(search *string, page, pageSize int) ([]models.WalkinClient, int, error)
	Update(id int64, req UpdateWalkinRequest) (*models.WalkinClient, error)
	Delete(id int64) error
	UseSession(id int64) (*models.WalkinClient, error)
	ConvertToMember(id int64) (*models.Member, error)
	History(id int64) ([]models.HistoryEntry, error)
}

type walkinService struct {
	walkinRepo repositories.WalkinRepository
	memberRepo repositories.MemberRepository
	db         *sql.DB
	now        func() time.Time
}

// NewWalkinService creates a new instance of WalkinService.
func NewWalkinService(wr repositories.WalkinRepository, mr repositories.MemberRepository, db *sql.DB) WalkinService {
	return &walkinService{walkinRepo: wr, memberRepo: mr, db: db, now: time.Now}
}

func (s *walkinService) Create(req CreateWalkinRequest) (*models.WalkinClient, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	today := dates.Format(s.now())
	w := &models.WalkinClient{
		Name:          strings.TrimSpace(req.Name),
		Phone:         req.Phone,
		Email:         req.Email,
		LastVisitDate: &today,
	}
	if req.SessionPlan != nil {
		w.SessionPlan = &models.SessionPlan{
			Name:  req.SessionPlan.Name,
			Total: req.SessionPlan.Total,
		}
	}
	if _, err := s.walkinRepo.Create(s.db, w); err != nil {
		return nil, fmt.Errorf("failed to create walk-in client: %w", err)
	}
	return w, nil
}

func (s *walkinService) GetByID(id int64) (*models.WalkinClient, error) {
	w, err := s.walkinRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrWalkinNotFound
		}
		return nil, fmt.Errorf("failed to get walk-in client: %w", err)
	}
	return w, nil
}

func (s *walkinService) List(search *string, page, pageSize int) ([]models.WalkinClient, int, error) {
	clients, total, err := s.walkinRepo.List(search, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list walk-in clients: %w", err)
	}
	return clients, total, nil
}

func (s *walkinService) Update(id int64, req UpdateWalkinRequest) (*models.WalkinClient, error) {
	w, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		w.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		w.Phone = req.Phone
	}
	if req.Email != nil {
		w.Email = req.Email
	}
	if req.SessionPlan != nil {
		// Attaching a plan replaces any previous one with a fresh counter.
		w.SessionPlan = &models.SessionPlan{
			Name:  req.SessionPlan.Name,
			Total: req.SessionPlan.Total,
		}
	}
	if err := s.walkinRepo.Update(s.db, w); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrWalkinNotFound
		}
		return nil, fmt.Errorf("failed to update walk-in client: %w", err)
	}
	return w, nil
}

func (s *walkinService) Delete(id int64) error {
	if err := s.walkinRepo.Delete(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrWalkinNotFound
		}
		return fmt.Errorf("failed to delete walk-in client: %w", err)
	}
	return nil
}

// UseSession consumes one session from the client's pack. Fails without
// mutation when there is no plan or the pack is used up.
func (s *walkinService) UseSession(id int64) (*models.WalkinClient, error) {
	w, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if w.SessionPlan == nil {
		return nil, ErrNoSessionPlan
	}
	if w.SessionPlan.Used >= w.SessionPlan.Total {
		return nil, ErrSessionPlanExhausted
	}

	today := dates.Format(s.now())
	w.SessionPlan.Used++
	w.SessionPlan.LastSessionUsedDate = &today
	w.LastVisitDate = &today

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.walkinRepo.Update(tx, w); err != nil {
		return nil, fmt.Errorf("failed to update walk-in session plan: %w", err)
	}
	entry := &models.HistoryEntry{
		Type:  models.HistoryTypeSession,
		Title: fmt.Sprintf("%s session used (%d/%d)", w.SessionPlan.Name, w.SessionPlan.Used, w.SessionPlan.Total),
	}
	if _, err := s.walkinRepo.AddHistory(tx, w.ID, entry); err != nil {
		return nil, fmt.Errorf("failed to record session history: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit session use: %w", err)
	}
	return w, nil
}

// ConvertToMember promotes a walk-in client to a full member: a member row is
// created from the identity fields and the walk-in record is deleted, both in
// one transaction so callers see the pair as atomic.
func (s *walkinService) ConvertToMember(id int64) (*models.Member, error) {
	w, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	today := s.now()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	seq, err := s.memberRepo.NextGymSequence(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute next gym number: %w", err)
	}
	startDate := dates.Format(today)
	dueDate := dates.Format(dates.AddMonths(today, 1))
	m := &models.Member{
		GymNumber:             fmt.Sprintf("G-%04d", seq),
		Name:                  w.Name,
		Phone:                 w.Phone,
		Email:                 w.Email,
		MembershipType:        "Monthly",
		Status:                models.StatusActive,
		SubscriptionStartDate: &startDate,
		DueDate:               &dueDate,
	}
	if _, err := s.memberRepo.Create(tx, m); err != nil {
		return nil, fmt.Errorf("failed to create member from walk-in: %w", err)
	}
	entry := &models.HistoryEntry{
		Type:    models.HistoryTypeEnrollment,
		Title:   "Converted from walk-in client",
		Details: utils.NewNullString(fmt.Sprintf("walk-in client #%d", w.ID)),
	}
	if _, err := s.memberRepo.AddHistory(tx, m.ID, entry); err != nil {
		return nil, fmt.Errorf("failed to record conversion history: %w", err)
	}
	if err := s.walkinRepo.Delete(tx, w.ID); err != nil {
		return nil, fmt.Errorf("failed to delete converted walk-in client: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit conversion: %w", err)
	}
	return m, nil
}

func (s *walkinService) History(id int64) ([]models.HistoryEntry, error) {
	if _, err := s.GetByID(id); err != nil {
		return nil, err
	}
	entries, err := s.walkinRepo.GetHistory(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get walk-in history: %w", err)
	}
	return entries, nil
}
