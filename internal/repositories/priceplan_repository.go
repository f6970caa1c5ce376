package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gnexgym_backend/internal/models"

	"github.com/lib/pq"
)

// PricePlanRepository defines the interface for price plan catalog operations.
type PricePlanRepository interface {
	Create(executor SQLExecutor, p *models.PricePlan) (int64, error)
	GetByID(id int64) (*models.PricePlan, error)
	GetByIDs(ids []int64) ([]models.PricePlan, error)
	List(planType *string) ([]models.PricePlan, error)
	Update(executor SQLExecutor, p *models.PricePlan) error
	Delete(executor SQLExecutor, id int64) error
}

type pricePlanRepository struct {
	db *sql.DB
}

// NewPricePlanRepository creates a new instance of PricePlanRepository.
func NewPricePlanRepository(db *sql.DB) PricePlanRepository {
	return &pricePlanRepository{db: db}
}

const pricePlanColumns = `id, name, amount, type, effect_kind, effect_unit, effect_value, created_at, updated_at`

func (r *pricePlanRepository) Create(executor SQLExecutor, p *models.PricePlan) (int64, error) {
	query := `INSERT INTO price_plans (name, amount, type, effect_kind, effect_unit, effect_value, created_at, updated_at)
	          VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	err := executor.QueryRow(query,
		p.Name, p.Amount, p.Type, p.Effect.Kind, nullIfEmpty(p.Effect.Unit), p.Effect.Value, now, now,
	).Scan(&p.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: price plan '%s' already exists (constraint: %s)", ErrDuplicateKey, p.Name, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating price plan: %v", ErrDatabaseError, err)
	}
	return p.ID, nil
}

func (r *pricePlanRepository) GetByID(id int64) (*models.PricePlan, error) {
	query := `SELECT ` + pricePlanColumns + ` FROM price_plans WHERE id = $1`
	p, err := scanPricePlan(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting price plan by ID %d: %v", ErrDatabaseError, id, err)
	}
	return p, nil
}

func (r *pricePlanRepository) GetByIDs(ids []int64) ([]models.PricePlan, error) {
	plans := []models.PricePlan{}
	if len(ids) == 0 {
		return plans, nil
	}
	query := `SELECT ` + pricePlanColumns + ` FROM price_plans WHERE id = ANY($1)`
	rows, err := r.db.Query(query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("%w: querying price plans by IDs: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPricePlan(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning price plan: %v", ErrDatabaseError, err)
		}
		plans = append(plans, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating price plan rows: %v", ErrDatabaseError, err)
	}
	return plans, nil
}

func (r *pricePlanRepository) List(planType *string) ([]models.PricePlan, error) {
	plans := []models.PricePlan{}
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + pricePlanColumns + ` FROM price_plans`)
	var args []interface{}
	if planType != nil && *planType != "" {
		queryBuilder.WriteString(" WHERE type = $1")
		args = append(args, *planType)
	}
	queryBuilder.WriteString(" ORDER BY type, name")

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying price plans: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPricePlan(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning price plan: %v", ErrDatabaseError, err)
		}
		plans = append(plans, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating price plan rows: %v", ErrDatabaseError, err)
	}
	return plans, nil
}

func (r *pricePlanRepository) Update(executor SQLExecutor, p *models.PricePlan) error {
	query := `UPDATE price_plans SET name = $1, amount = $2, type = $3,
	            effect_kind = $4, effect_unit = $5, effect_value = $6, updated_at = $7
	          WHERE id = $8`
	p.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		p.Name, p.Amount, p.Type, p.Effect.Kind, nullIfEmpty(p.Effect.Unit), p.Effect.Value, p.UpdatedAt, p.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: price plan '%s' already exists (constraint: %s)", ErrDuplicateKey, p.Name, pqErr.Constraint)
		}
		return fmt.Errorf("%w: updating price plan ID %d: %v", ErrDatabaseError, p.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pricePlanRepository) Delete(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM price_plans WHERE id = $1`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return fmt.Errorf("%w: price plan ID %d is referenced by other records (constraint: %s)", ErrDatabaseError, id, pqErr.Constraint)
		}
		return fmt.Errorf("%w: deleting price plan ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPricePlan(s scanner) (*models.PricePlan, error) {
	p := &models.PricePlan{}
	var unit sql.NullString
	if err := s.Scan(&p.ID, &p.Name, &p.Amount, &p.Type,
		&p.Effect.Kind, &unit, &p.Effect.Value, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Effect.Unit = unit.String
	return p, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
