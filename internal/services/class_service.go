package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gnexgym_backend/internal/models"
	"gnexgym_backend/internal/repositories"
	"gnexgym_backend/pkg/dates"
)

var ErrClassNotFound = errors.New("class not found")

// --- Class DTOs ---

type CreateClassRequest struct {
	Name      string  `json:"name" binding:"required"`
	CoachName *string `json:"coach_name"`
	Schedule  *string `json:"schedule"`
}

type UpdateClassRequest struct {
	Name      *string `json:"name"`
	CoachName *string `json:"coach_name"`
	Schedule  *string `json:"schedule"`
}

type MarkAttendanceRequest struct {
	Date             string   `json:"date" binding:"required"`
	PresentMemberIDs []string `json:"present_member_ids"`
}

// --- ClassService Interface ---
type ClassService interface {
	Create(req CreateClassRequest) (*models.Class, error)
	GetByID(id int64) (*models.Class, error)
	List() ([]models.Class, error)
	Update(id int64, req UpdateClassRequest) (*models.Class, error)
	Delete(id int64) error
	MarkAttendance(classID int64, req MarkAttendanceRequest) (*models.ClassAttendance, error)
	Attendance(classID int64) ([]models.ClassAttendance, error)
	AttendanceByDate(classID int64, date string) (*models.ClassAttendance, error)
}

type classService struct {
	classRepo repositories.ClassRepository
	db        *sql.DB
}

// NewClassService creates a new instance of ClassService.
func NewClassService(cr repositories.ClassRepository, db *sql.DB) ClassService {
	return &classService{classRepo: cr, db: db}
}

func (s *classService) Create(req CreateClassRequest) (*models.Class, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	c := &models.Class{
		Name:      strings.TrimSpace(req.Name),
		CoachName: req.CoachName,
		Schedule:  req.Schedule,
	}
	if _, err := s.classRepo.Create(s.db, c); err != nil {
		return nil, fmt.Errorf("failed to create class: %w", err)
	}
	return c, nil
}

func (s *classService) GetByID(id int64) (*models.Class, error) {
	c, err := s.classRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("failed to get class: %w", err)
	}
	return c, nil
}

func (s *classService) List() ([]models.Class, error) {
	classes, err := s.classRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}
	return classes, nil
}

func (s *classService) Update(id int64, req UpdateClassRequest) (*models.Class, error) {
	c, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.CoachName != nil {
		c.CoachName = req.CoachName
	}
	if req.Schedule != nil {
		c.Schedule = req.Schedule
	}
	if err := s.classRepo.Update(s.db, c); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("failed to update class: %w", err)
	}
	return c, nil
}

func (s *classService) Delete(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.classRepo.Delete(tx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrClassNotFound
		}
		return fmt.Errorf("failed to delete class: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit class deletion: %w", err)
	}
	return nil
}

// MarkAttendance stores the roster for one class on one date, replacing any
// roster previously saved for that date.
func (s *classService) MarkAttendance(classID int64, req MarkAttendanceRequest) (*models.ClassAttendance, error) {
	t, err := dates.Parse(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: attendance date: %v", ErrDateFormat, err)
	}
	if _, err := s.GetByID(classID); err != nil {
		return nil, err
	}

	a := &models.ClassAttendance{
		ClassID:          classID,
		Date:             dates.Format(t),
		PresentMemberIDs: req.PresentMemberIDs,
	}
	if a.PresentMemberIDs == nil {
		a.PresentMemberIDs = []string{}
	}
	if err := s.classRepo.UpsertAttendance(s.db, a); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("failed to save attendance: %w", err)
	}
	return a, nil
}

func (s *classService) Attendance(classID int64) ([]models.ClassAttendance, error) {
	if _, err := s.GetByID(classID); err != nil {
		return nil, err
	}
	entries, err := s.classRepo.GetAttendance(classID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	return entries, nil
}

func (s *classService) AttendanceByDate(classID int64, date string) (*models.ClassAttendance, error) {
	t, err := dates.Parse(date)
	if err != nil {
		return nil, fmt.Errorf("%w: attendance date: %v", ErrDateFormat, err)
	}
	a, err := s.classRepo.GetAttendanceByDate(classID, dates.Format(t))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// No roster saved yet for this date reads as an empty roster.
			return &models.ClassAttendance{ClassID: classID, Date: dates.Format(t), PresentMemberIDs: []string{}}, nil
		}
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	return a, nil
}
