package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gnexgym_backend/internal/models"
	"gnexgym_backend/internal/repositories"

	"github.com/shopspring/decimal"
)

var ErrPlanNameExists = errors.New("a price plan with this name already exists")

// --- Price Plan DTOs ---

type CreatePricePlanRequest struct {
	Name   string          `json:"name" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Type   string          `json:"type" binding:"required"`
}

type UpdatePricePlanRequest struct {
	Name   *string          `json:"name"`
	Amount *decimal.Decimal `json:"amount"`
	Type   *string          `json:"type"`
}

// --- PricePlanService Interface ---
type PricePlanService interface {
	Create(req CreatePricePlanRequest) (*models.PricePlan, error)
	GetByID(id int64) (*models.PricePlan, error)
	List(planType *string) ([]models.PricePlan, error)
	Update(id int64, req UpdatePricePlanRequest) (*models.PricePlan, error)
	Delete(id int64) error
}

type pricePlanService struct {
	planRepo repositories.PricePlanRepository
	db       *sql.DB
}

// NewPricePlanService creates a new instance of PricePlanService.
func NewPricePlanService(pr repositories.PricePlanRepository, db *sql.DB) PricePlanService {
	return &pricePlanService{planRepo: pr, db: db}
}

func validPlanType(t string) bool {
	switch t {
	case models.PlanTypeMember, models.PlanTypeWalkin, models.PlanTypeCoach, models.PlanTypeClass:
		return true
	}
	return false
}

// Create stores a catalog entry. The plan's ledger effect is derived from its
// name once here, so purchase paths never re-parse names.
func (s *pricePlanService) Create(req CreatePricePlanRequest) (*models.PricePlan, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	if req.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount cannot be negative", ErrValidation)
	}
	if !validPlanType(req.Type) {
		return nil, fmt.Errorf("%w: unknown plan type %q", ErrValidation, req.Type)
	}

	p := &models.PricePlan{
		Name:   name,
		Amount: req.Amount.Round(2),
		Type:   req.Type,
		Effect: DeriveEffect(name),
	}
	if _, err := s.planRepo.Create(s.db, p); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %s", ErrPlanNameExists, name)
		}
		return nil, fmt.Errorf("failed to create price plan: %w", err)
	}
	return p, nil
}

func (s *pricePlanService) GetByID(id int64) (*models.PricePlan, error) {
	p, err := s.planRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to get price plan: %w", err)
	}
	return p, nil
}

func (s *pricePlanService) List(planType *string) ([]models.PricePlan, error) {
	if planType != nil && *planType != "" && !validPlanType(*planType) {
		return nil, fmt.Errorf("%w: unknown plan type %q", ErrValidation, *planType)
	}
	plans, err := s.planRepo.List(planType)
	if err != nil {
		return nil, fmt.Errorf("failed to list price plans: %w", err)
	}
	return plans, nil
}

// Update edits a catalog entry. Renaming re-derives the effect; already-sold
// plans keep the effect they were purchased with, via the member's ledger
// fields and history.
func (s *pricePlanService) Update(id int64, req UpdatePricePlanRequest) (*models.PricePlan, error) {
	p, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		p.Name = name
		p.Effect = DeriveEffect(name)
	}
	if req.Amount != nil {
		if req.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: amount cannot be negative", ErrValidation)
		}
		p.Amount = req.Amount.Round(2)
	}
	if req.Type != nil {
		if !validPlanType(*req.Type) {
			return nil, fmt.Errorf("%w: unknown plan type %q", ErrValidation, *req.Type)
		}
		p.Type = *req.Type
	}
	if err := s.planRepo.Update(s.db, p); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %s", ErrPlanNameExists, p.Name)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to update price plan: %w", err)
	}
	return p, nil
}

func (s *pricePlanService) Delete(id int64) error {
	if err := s.planRepo.Delete(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPlanNotFound
		}
		return fmt.Errorf("failed to delete price plan: %w", err)
	}
	return nil
}
