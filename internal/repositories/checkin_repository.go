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

// CheckinRepository defines the interface for check-in record database operations.
type CheckinRepository interface {
	Create(executor SQLExecutor, rec *models.CheckinRecord) error
	GetByID(id string) (*models.CheckinRecord, error)
	List(filters models.CheckinFilters) ([]models.CheckinRecord, int, error)
	Update(executor SQLExecutor, rec *models.CheckinRecord) error
	Delete(executor SQLExecutor, id string) error

	// ListClosedWithBalance returns the client's checked-out records that
	// still carry a positive balance, for the carry-over sweep.
	ListClosedWithBalance(executor SQLExecutor, clientType string, gymNumber *string, walkinClientID *int64) ([]models.CheckinRecord, error)
	// ZeroBalance marks a prior record's debt as carried forward.
	ZeroBalance(executor SQLExecutor, id string) error
	// FindActiveForClient returns the client's confirmed, not-yet-checked-out
	// record created on the given date, or ErrNotFound.
	FindActiveForClient(executor SQLExecutor, clientType string, gymNumber *string, walkinClientID *int64, date string) (*models.CheckinRecord, error)

	AddItem(executor SQLExecutor, item *models.CheckinItem) error
	GetItem(recordID, itemID string) (*models.CheckinItem, error)
	GetItems(recordID string) ([]models.CheckinItem, error)
	DeleteItem(executor SQLExecutor, recordID, itemID string) error
}

type checkinRepository struct {
	db *sql.DB
}

// NewCheckinRepository creates a new instance of CheckinRepository.
func NewCheckinRepository(db *sql.DB) CheckinRepository {
	return &checkinRepository{db: db}
}

const checkinColumns = `id, timestamp, type, gym_number, walkin_client_id, walkin_name,
	status, pending_action, amount_due, amount_paid, balance, carried_over_balance,
	payment_plan, payment_amount, balance_due_date, checkout_timestamp, cancel_reason,
	coach_assigned, class_name, needs_coach, session_completed, is_new_walkin,
	created_at, updated_at`

func (r *checkinRepository) Create(executor SQLExecutor, rec *models.CheckinRecord) error {
	query := `INSERT INTO checkin_records
	          (id, timestamp, type, gym_number, walkin_client_id, walkin_name,
	           status, pending_action, amount_due, amount_paid, balance, carried_over_balance,
	           payment_plan, payment_amount, balance_due_date, checkout_timestamp, cancel_reason,
	           coach_assigned, class_name, needs_coach, session_completed, is_new_walkin,
	           created_at, updated_at)
	          VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)`
	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	_, err := executor.Exec(query,
		rec.ID, rec.Timestamp, rec.Type, rec.GymNumber, rec.WalkinClientID, rec.WalkinName,
		rec.Status, rec.PendingAction, rec.AmountDue, rec.AmountPaid, rec.Balance, rec.CarriedOverBalance,
		rec.PaymentPlan, toNullDecimal(rec.PaymentAmount), toNullDate(rec.BalanceDueDate),
		toNullTime(rec.CheckoutTimestamp), rec.CancelReason,
		rec.CoachAssigned, rec.ClassName, rec.NeedsCoach, rec.SessionCompleted, rec.IsNewWalkin,
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: creating check-in record: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *checkinRepository) GetByID(id string) (*models.CheckinRecord, error) {
	query := `SELECT ` + checkinColumns + ` FROM checkin_records WHERE id = $1`
	rec, err := scanCheckin(r.db.QueryRow(query, id), nil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting check-in record %s: %v", ErrDatabaseError, id, err)
	}
	items, err := r.GetItems(id)
	if err != nil {
		return nil, err
	}
	rec.ProductsPurchased = items
	return rec, nil
}

func (r *checkinRepository) List(filters models.CheckinFilters) ([]models.CheckinRecord, int, error) {
	records := []models.CheckinRecord{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + checkinColumns + `, COUNT(*) OVER() AS total_count FROM checkin_records`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Date != nil && *filters.Date != "" {
		conditions = append(conditions, fmt.Sprintf("DATE(timestamp) = $%d", argCount))
		args = append(args, *filters.Date)
		argCount++
	}
	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}
	if filters.Type != nil && *filters.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argCount))
		args = append(args, *filters.Type)
		argCount++
	}
	if filters.GymNumber != nil && *filters.GymNumber != "" {
		conditions = append(conditions, fmt.Sprintf("gym_number = $%d", argCount))
		args = append(args, *filters.GymNumber)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY timestamp DESC")

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
		page := filters.Page
		if page <= 0 {
			page = 1
		}
		args = append(args, filters.PageSize, (page-1)*filters.PageSize)
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying check-in records: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanCheckin(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning check-in record: %v", ErrDatabaseError, err)
		}
		records = append(records, *rec)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating check-in rows: %v", ErrDatabaseError, err)
	}
	return records, totalCount, nil
}

func (r *checkinRepository) Update(executor SQLExecutor, rec *models.CheckinRecord) error {
	query := `UPDATE checkin_records SET
	            type = $1, gym_number = $2, walkin_client_id = $3, walkin_name = $4,
	            status = $5, pending_action = $6, amount_due = $7, amount_paid = $8,
	            balance = $9, carried_over_balance = $10, payment_plan = $11, payment_amount = $12,
	            balance_due_date = $13, checkout_timestamp = $14, cancel_reason = $15,
	            coach_assigned = $16, class_name = $17, needs_coach = $18,
	            session_completed = $19, is_new_walkin = $20, updated_at = $21
	          WHERE id = $22`
	rec.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		rec.Type, rec.GymNumber, rec.WalkinClientID, rec.WalkinName,
		rec.Status, rec.PendingAction, rec.AmountDue, rec.AmountPaid,
		rec.Balance, rec.CarriedOverBalance, rec.PaymentPlan, toNullDecimal(rec.PaymentAmount),
		toNullDate(rec.BalanceDueDate), toNullTime(rec.CheckoutTimestamp), rec.CancelReason,
		rec.CoachAssigned, rec.ClassName, rec.NeedsCoach,
		rec.SessionCompleted, rec.IsNewWalkin, rec.UpdatedAt, rec.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating check-in record %s: %v", ErrDatabaseError, rec.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *checkinRepository) Delete(executor SQLExecutor, id string) error {
	if _, err := executor.Exec(`DELETE FROM checkin_items WHERE record_id = $1`, id); err != nil {
		return fmt.Errorf("%w: deleting items for check-in record %s: %v", ErrDatabaseError, id, err)
	}
	result, err := executor.Exec(`DELETE FROM checkin_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting check-in record %s: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *checkinRepository) ListClosedWithBalance(executor SQLExecutor, clientType string, gymNumber *string, walkinClientID *int64) ([]models.CheckinRecord, error) {
	records := []models.CheckinRecord{}
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + checkinColumns + ` FROM checkin_records
	          WHERE type = $1 AND checkout_timestamp IS NOT NULL AND balance > 0`)
	args := []interface{}{clientType}
	switch {
	case gymNumber != nil:
		queryBuilder.WriteString(" AND gym_number = $2")
		args = append(args, *gymNumber)
	case walkinClientID != nil:
		queryBuilder.WriteString(" AND walkin_client_id = $2")
		args = append(args, *walkinClientID)
	default:
		return records, nil // no client identity, nothing to sweep
	}
	queryBuilder.WriteString(" ORDER BY timestamp ASC")

	rows, err := executor.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying closed records with balance: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanCheckin(rows, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning closed record: %v", ErrDatabaseError, err)
		}
		records = append(records, *rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating closed record rows: %v", ErrDatabaseError, err)
	}
	return records, nil
}

func (r *checkinRepository) ZeroBalance(executor SQLExecutor, id string) error {
	result, err := executor.Exec(
		`UPDATE checkin_records SET balance = 0, balance_due_date = NULL, updated_at = $1 WHERE id = $2`,
		time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: zeroing balance on check-in record %s: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *checkinRepository) FindActiveForClient(executor SQLExecutor, clientType string, gymNumber *string, walkinClientID *int64, date string) (*models.CheckinRecord, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + checkinColumns + ` FROM checkin_records
	          WHERE type = $1 AND status = $2 AND checkout_timestamp IS NULL AND DATE(timestamp) = $3`)
	args := []interface{}{clientType, models.CheckinStatusConfirmed, date}
	switch {
	case gymNumber != nil:
		queryBuilder.WriteString(" AND gym_number = $4")
		args = append(args, *gymNumber)
	case walkinClientID != nil:
		queryBuilder.WriteString(" AND walkin_client_id = $4")
		args = append(args, *walkinClientID)
	default:
		return nil, ErrNotFound
	}
	queryBuilder.WriteString(" LIMIT 1")

	rec, err := scanCheckin(executor.QueryRow(queryBuilder.String(), args...), nil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding active check-in: %v", ErrDatabaseError, err)
	}
	return rec, nil
}

func (r *checkinRepository) AddItem(executor SQLExecutor, item *models.CheckinItem) error {
	query := `INSERT INTO checkin_items (item_id, record_id, kind, product_id, plan_id, name, quantity, price)
	          VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := executor.Exec(query,
		item.ItemID, item.RecordID, item.Kind, item.ProductID, item.PlanID,
		item.Name, item.Quantity, item.Price,
	)
	if err != nil {
		return fmt.Errorf("%w: adding item to check-in record %s: %v", ErrDatabaseError, item.RecordID, err)
	}
	return nil
}

func (r *checkinRepository) GetItem(recordID, itemID string) (*models.CheckinItem, error) {
	item := &models.CheckinItem{}
	query := `SELECT item_id, record_id, kind, product_id, plan_id, name, quantity, price
	          FROM checkin_items WHERE record_id = $1 AND item_id = $2`
	err := r.db.QueryRow(query, recordID, itemID).Scan(
		&item.ItemID, &item.RecordID, &item.Kind, &item.ProductID, &item.PlanID,
		&item.Name, &item.Quantity, &item.Price,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting item %s on record %s: %v", ErrDatabaseError, itemID, recordID, err)
	}
	return item, nil
}

func (r *checkinRepository) GetItems(recordID string) ([]models.CheckinItem, error) {
	items := []models.CheckinItem{}
	query := `SELECT item_id, record_id, kind, product_id, plan_id, name, quantity, price
	          FROM checkin_items WHERE record_id = $1 ORDER BY item_id`
	rows, err := r.db.Query(query, recordID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying items for record %s: %v", ErrDatabaseError, recordID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.CheckinItem
		if err := rows.Scan(
			&item.ItemID, &item.RecordID, &item.Kind, &item.ProductID, &item.PlanID,
			&item.Name, &item.Quantity, &item.Price,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning check-in item: %v", ErrDatabaseError, err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating check-in item rows: %v", ErrDatabaseError, err)
	}
	return items, nil
}

func (r *checkinRepository) DeleteItem(executor SQLExecutor, recordID, itemID string) error {
	result, err := executor.Exec(`DELETE FROM checkin_items WHERE record_id = $1 AND item_id = $2`, recordID, itemID)
	if err != nil {
		return fmt.Errorf("%w: deleting item %s on record %s: %v", ErrDatabaseError, itemID, recordID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- scan helpers ---

func scanCheckin(s scanner, totalCount *int) (*models.CheckinRecord, error) {
	rec := &models.CheckinRecord{}
	var paymentAmount decimal.NullDecimal
	var balanceDueDate sql.NullTime
	var checkoutTs sql.NullTime

	dest := []interface{}{
		&rec.ID, &rec.Timestamp, &rec.Type, &rec.GymNumber, &rec.WalkinClientID, &rec.WalkinName,
		&rec.Status, &rec.PendingAction, &rec.AmountDue, &rec.AmountPaid, &rec.Balance, &rec.CarriedOverBalance,
		&rec.PaymentPlan, &paymentAmount, &balanceDueDate, &checkoutTs, &rec.CancelReason,
		&rec.CoachAssigned, &rec.ClassName, &rec.NeedsCoach, &rec.SessionCompleted, &rec.IsNewWalkin,
		&rec.CreatedAt, &rec.UpdatedAt,
	}
	if totalCount != nil {
		dest = append(dest, totalCount)
	}
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}

	if paymentAmount.Valid {
		rec.PaymentAmount = &paymentAmount.Decimal
	}
	rec.BalanceDueDate = fromNullDate(balanceDueDate)
	if checkoutTs.Valid {
		rec.CheckoutTimestamp = &checkoutTs.Time
	}
	return rec, nil
}

func toNullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
