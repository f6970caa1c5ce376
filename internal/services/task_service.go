package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gnexgym_backend/internal/models"
	"gnexgym_backend/internal/repositories"
)

var ErrTaskNotFound = errors.New("task not found")

// The kiosk free-pass code lives in the settings table under this key.
const SettingFreePassCode = "free_pass_code"

// --- Task DTOs ---

type CreateTaskRequest struct {
	Title string `json:"title" binding:"required"`
}

type UpdateTaskRequest struct {
	Title *string `json:"title"`
	Done  *bool   `json:"done"`
}

// --- TaskService Interface ---
type TaskService interface {
	Create(req CreateTaskRequest) (*models.Task, error)
	List() ([]models.Task, error)
	Update(id int64, req UpdateTaskRequest) (*models.Task, error)
	Delete(id int64) error
}

type taskService struct {
	taskRepo repositories.TaskRepository
	db       *sql.DB
}

// NewTaskService creates a new instance of TaskService.
func NewTaskService(tr repositories.TaskRepository, db *sql.DB) TaskService {
	return &taskService{taskRepo: tr, db: db}
}

func (s *taskService) Create(req CreateTaskRequest) (*models.Task, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
	}
	t := &models.Task{Title: strings.TrimSpace(req.Title)}
	if _, err := s.taskRepo.Create(s.db, t); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return t, nil
}

func (s *taskService) List() ([]models.Task, error) {
	tasks, err := s.taskRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (s *taskService) Update(id int64, req UpdateTaskRequest) (*models.Task, error) {
	tasks, err := s.taskRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	var t *models.Task
	for i := range tasks {
		if tasks[i].ID == id {
			t = &tasks[i]
			break
		}
	}
	if t == nil {
		return nil, ErrTaskNotFound
	}
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
		}
		t.Title = strings.TrimSpace(*req.Title)
	}
	if req.Done != nil {
		t.Done = *req.Done
	}
	if err := s.taskRepo.Update(s.db, t); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return t, nil
}

func (s *taskService) Delete(id int64) error {
	if err := s.taskRepo.Delete(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// --- SettingsService ---

// SettingsService exposes the free-pass code used by the front desk to wave
// guests through without a billing record.
type SettingsService interface {
	FreePassCode() (string, error)
	SetFreePassCode(code string) error
	VerifyFreePassCode(code string) (bool, error)
}

type settingsService struct {
	settingsRepo repositories.SettingsRepository
	db           *sql.DB
}

// NewSettingsService creates a new instance of SettingsService.
func NewSettingsService(sr repositories.SettingsRepository, db *sql.DB) SettingsService {
	return &settingsService{settingsRepo: sr, db: db}
}

func (s *settingsService) FreePassCode() (string, error) {
	code, err := s.settingsRepo.Get(SettingFreePassCode)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", nil // not configured yet
		}
		return "", fmt.Errorf("failed to get free-pass code: %w", err)
	}
	return code, nil
}

func (s *settingsService) SetFreePassCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("%w: code cannot be empty", ErrValidation)
	}
	if err := s.settingsRepo.Set(s.db, SettingFreePassCode, code); err != nil {
		return fmt.Errorf("failed to set free-pass code: %w", err)
	}
	return nil
}

func (s *settingsService) VerifyFreePassCode(code string) (bool, error) {
	stored, err := s.FreePassCode()
	if err != nil {
		return false, err
	}
	if stored == "" {
		return false, nil
	}
	return stored == strings.TrimSpace(code), nil
}
