package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gnexgym_backend/internal/models"

	"github.com/shopspring/decimal"
)

// WalkinRepository defines the interface for walk-in client database operations.
type WalkinRepository interface {
	Create(executor SQLExecutor, w *models.WalkinClient) (int64, error)
	GetByID(id int64) (*models.WalkinClient, error)
	List(search *string, page, pageSize int) ([]models.WalkinClient, int, error)
	Update(executor SQLExecutor, w *models.WalkinClient) error
	Delete(executor SQLExecutor, id int64) error
	AddHistory(executor SQLExecutor, walkinID int64, e *models.HistoryEntry) (int64, error)
	GetHistory(walkinID int64) ([]models.HistoryEntry, error)
}

type walkinRepository struct {
	db *sql.DB
}

// NewWalkinRepository creates a new instance of WalkinRepository.
func NewWalkinRepository(db *sql.DB) WalkinRepository {
	return &walkinRepository{db: db}
}

const walkinColumns = `id, name, phone, email, last_visit_date,
	session_plan_name, session_plan_total, session_plan_used, last_session_used_date,
	created_at, updated_at`

func (r *walkinRepository) Create(executor SQLExecutor, w *models.WalkinClient) (int64, error) {
	query := `INSERT INTO walkin_clients
	          (name, phone, email, last_visit_date,
	           session_plan_name, session_plan_total, session_plan_used, last_session_used_date,
	           created_at, updated_at)
	          VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	          RETURNING id`
	now := time.Now()
	w.CreatedAt = now
	w.UpdatedAt = now

	planName, planTotal, planUsed, planLastUsed := splitSessionPlan(w.SessionPlan)
	err := executor.QueryRow(query,
		w.Name, w.Phone, w.Email, toNullDate(w.LastVisitDate),
		planName, planTotal, planUsed, toNullDate(planLastUsed),
		w.CreatedAt, w.UpdatedAt,
	).Scan(&w.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating walk-in client: %v", ErrDatabaseError, err)
	}
	return w.ID, nil
}

func (r *walkinRepository) GetByID(id int64) (*models.WalkinClient, error) {
	query := `SELECT ` + walkinColumns + ` FROM walkin_clients WHERE id = $1`
	w, err := scanWalkin(r.db.QueryRow(query, id), nil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting walk-in client by ID %d: %v", ErrDatabaseError, id, err)
	}
	return w, nil
}

func (r *walkinRepository) List(search *string, page, pageSize int) ([]models.WalkinClient, int, error) {
	clients := []models.WalkinClient{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + walkinColumns + `, COUNT(*) OVER() AS total_count FROM walkin_clients`)

	var args []interface{}
	argCount := 1
	if search != nil && *search != "" {
		pattern := "%" + strings.ToLower(*search) + "%"
		queryBuilder.WriteString(fmt.Sprintf(" WHERE (LOWER(name) LIKE $%d OR phone LIKE $%d)", argCount, argCount))
		args = append(args, pattern)
		argCount++
	}
	queryBuilder.WriteString(" ORDER BY name ASC")
	if pageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
		if page <= 0 {
			page = 1
		}
		args = append(args, pageSize, (page-1)*pageSize)
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying walk-in clients: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		w, err := scanWalkin(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning walk-in client: %v", ErrDatabaseError, err)
		}
		clients = append(clients, *w)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating walk-in rows: %v", ErrDatabaseError, err)
	}
	return clients, totalCount, nil
}

func (r *walkinRepository) Update(executor SQLExecutor, w *models.WalkinClient) error {
	query := `UPDATE walkin_clients SET
	            name = $1, phone = $2, email = $3, last_visit_date = $4,
	            session_plan_name = $5, session_plan_total = $6, session_plan_used = $7,
	            last_session_used_date = $8, updated_at = $9
	          WHERE id = $10`
	w.UpdatedAt = time.Now()
	planName, planTotal, planUsed, planLastUsed := splitSessionPlan(w.SessionPlan)
	result, err := executor.Exec(query,
		w.Name, w.Phone, w.Email, toNullDate(w.LastVisitDate),
		planName, planTotal, planUsed, toNullDate(planLastUsed),
		w.UpdatedAt, w.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating walk-in client ID %d: %v", ErrDatabaseError, w.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *walkinRepository) Delete(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM walkin_clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting walk-in client ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *walkinRepository) AddHistory(executor SQLExecutor, walkinID int64, e *models.HistoryEntry) (int64, error) {
	query := `INSERT INTO walkin_history (walkin_client_id, timestamp, type, title, details, payment_amount)
	          VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	var amount decimal.NullDecimal
	if e.PaymentAmount != nil {
		amount = decimal.NullDecimal{Decimal: *e.PaymentAmount, Valid: true}
	}
	err := executor.QueryRow(query, walkinID, e.Timestamp, e.Type, e.Title, e.Details, amount).Scan(&e.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: adding history for walk-in client ID %d: %v", ErrDatabaseError, walkinID, err)
	}
	return e.ID, nil
}

func (r *walkinRepository) GetHistory(walkinID int64) ([]models.HistoryEntry, error) {
	entries := []models.HistoryEntry{}
	query := `SELECT id, timestamp, type, title, details, payment_amount
	          FROM walkin_history WHERE walkin_client_id = $1 ORDER BY timestamp DESC, id DESC`
	rows, err := r.db.Query(query, walkinID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying history for walk-in client ID %d: %v", ErrDatabaseError, walkinID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var e models.HistoryEntry
		var amount decimal.NullDecimal
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Type, &e.Title, &e.Details, &amount); err != nil {
			return nil, fmt.Errorf("%w: scanning walk-in history entry: %v", ErrDatabaseError, err)
		}
		if amount.Valid {
			e.PaymentAmount = &amount.Decimal
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating walk-in history rows: %v", ErrDatabaseError, err)
	}
	return entries, nil
}

func splitSessionPlan(p *models.SessionPlan) (name *string, total, used sql.NullInt64, lastUsed *string) {
	if p == nil {
		return nil, sql.NullInt64{}, sql.NullInt64{}, nil
	}
	return &p.Name,
		sql.NullInt64{Int64: int64(p.Total), Valid: true},
		sql.NullInt64{Int64: int64(p.Used), Valid: true},
		p.LastSessionUsedDate
}

func scanWalkin(s scanner, totalCount *int) (*models.WalkinClient, error) {
	w := &models.WalkinClient{}
	var lastVisit, lastSessionUsed sql.NullTime
	var planName sql.NullString
	var planTotal, planUsed sql.NullInt64

	dest := []interface{}{
		&w.ID, &w.Name, &w.Phone, &w.Email, &lastVisit,
		&planName, &planTotal, &planUsed, &lastSessionUsed,
		&w.CreatedAt, &w.UpdatedAt,
	}
	if totalCount != nil {
		dest = append(dest, totalCount)
	}
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}

	w.LastVisitDate = fromNullDate(lastVisit)
	if planName.Valid {
		w.SessionPlan = &models.SessionPlan{
			Name:                planName.String,
			Total:               int(planTotal.Int64),
			Used:                int(planUsed.Int64),
			LastSessionUsedDate: fromNullDate(lastSessionUsed),
		}
	}
	return w, nil
}
