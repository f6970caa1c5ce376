package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gnexgym_backend/internal/models"
	"gnexgym_backend/pkg/dates"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// MemberRepository defines the interface for member-related database operations.
type MemberRepository interface {
	Create(executor SQLExecutor, m *models.Member) (int64, error)
	GetByID(id int64) (*models.Member, error)
	GetByGymNumber(gymNumber string) (*models.Member, error)
	List(filters models.MemberFilters) ([]models.Member, int, error)
	Update(executor SQLExecutor, m *models.Member) error
	Delete(executor SQLExecutor, id int64) error
	NextGymSequence(executor SQLExecutor) (int, error)
	AddHistory(executor SQLExecutor, memberID int64, e *models.HistoryEntry) (int64, error)
	GetHistory(memberID int64) ([]models.HistoryEntry, error)
}

type memberRepository struct {
	db *sql.DB
}

// NewMemberRepository creates a new instance of MemberRepository.
func NewMemberRepository(db *sql.DB) MemberRepository {
	return &memberRepository{db: db}
}

const memberColumns = `id, gym_number, name, phone, email, membership_type, status,
	subscription_start_date, due_date, has_coach, coach_name, training_type,
	total_sessions, sessions_used, session_expiry_date,
	locker_start_date, locker_due_date, membership_fee_last_paid, membership_fee_due_date,
	class_id, details, created_at, updated_at`

func (r *memberRepository) Create(executor SQLExecutor, m *models.Member) (int64, error) {
	query := `INSERT INTO members
	          (gym_number, name, phone, email, membership_type, status,
	           subscription_start_date, due_date, has_coach, coach_name, training_type,
	           total_sessions, sessions_used, session_expiry_date,
	           locker_start_date, locker_due_date, membership_fee_last_paid, membership_fee_due_date,
	           class_id, details, created_at, updated_at)
	          VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
	          RETURNING id`
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now

	err := executor.QueryRow(query,
		m.GymNumber, m.Name, m.Phone, m.Email, m.MembershipType, m.Status,
		toNullDate(m.SubscriptionStartDate), toNullDate(m.DueDate), m.HasCoach, m.CoachName, m.TrainingType,
		m.TotalSessions, m.SessionsUsed, toNullDate(m.SessionExpiryDate),
		toNullDate(m.LockerStartDate), toNullDate(m.LockerDueDate),
		toNullDate(m.MembershipFeeLastPaid), toNullDate(m.MembershipFeeDueDate),
		m.ClassID, m.Details, m.CreatedAt, m.UpdatedAt,
	).Scan(&m.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: gym number '%s' already exists (constraint: %s)", ErrDuplicateKey, m.GymNumber, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating member: %v", ErrDatabaseError, err)
	}
	return m.ID, nil
}

func (r *memberRepository) GetByID(id int64) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	m, err := scanMember(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting member by ID %d: %v", ErrDatabaseError, id, err)
	}
	return m, nil
}

func (r *memberRepository) GetByGymNumber(gymNumber string) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE gym_number = $1`
	m, err := scanMember(r.db.QueryRow(query, gymNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting member by gym number %s: %v", ErrDatabaseError, gymNumber, err)
	}
	return m, nil
}

func (r *memberRepository) List(filters models.MemberFilters) ([]models.Member, int, error) {
	members := []models.Member{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + memberColumns + `, COUNT(*) OVER() AS total_count FROM members`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}
	if filters.HasCoach != nil {
		conditions = append(conditions, fmt.Sprintf("has_coach = $%d", argCount))
		args = append(args, *filters.HasCoach)
		argCount++
	}
	if filters.ClassID != nil {
		conditions = append(conditions, fmt.Sprintf("class_id = $%d", argCount))
		args = append(args, *filters.ClassID)
		argCount++
	}
	if filters.Search != nil && *filters.Search != "" {
		pattern := "%" + strings.ToLower(*filters.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(gym_number) LIKE $%d)", argCount, argCount))
		args = append(args, pattern)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY gym_number ASC")

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
		return nil, 0, fmt.Errorf("%w: querying members: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanMemberWithCount(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning member: %v", ErrDatabaseError, err)
		}
		members = append(members, *m)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating member rows: %v", ErrDatabaseError, err)
	}
	return members, totalCount, nil
}

func (r *memberRepository) Update(executor SQLExecutor, m *models.Member) error {
	query := `UPDATE members SET
	            name = $1, phone = $2, email = $3, membership_type = $4, status = $5,
	            subscription_start_date = $6, due_date = $7, has_coach = $8, coach_name = $9,
	            training_type = $10, total_sessions = $11, sessions_used = $12, session_expiry_date = $13,
	            locker_start_date = $14, locker_due_date = $15,
	            membership_fee_last_paid = $16, membership_fee_due_date = $17,
	            class_id = $18, details = $19, updated_at = $20
	          WHERE id = $21`
	m.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		m.Name, m.Phone, m.Email, m.MembershipType, m.Status,
		toNullDate(m.SubscriptionStartDate), toNullDate(m.DueDate), m.HasCoach, m.CoachName,
		m.TrainingType, m.TotalSessions, m.SessionsUsed, toNullDate(m.SessionExpiryDate),
		toNullDate(m.LockerStartDate), toNullDate(m.LockerDueDate),
		toNullDate(m.MembershipFeeLastPaid), toNullDate(m.MembershipFeeDueDate),
		m.ClassID, m.Details, m.UpdatedAt, m.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating member ID %d: %v", ErrDatabaseError, m.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *memberRepository) Delete(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" { // foreign_key_violation
			return fmt.Errorf("%w: member ID %d is referenced by other records (constraint: %s)", ErrDatabaseError, id, pqErr.Constraint)
		}
		return fmt.Errorf("%w: deleting member ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// NextGymSequence returns the next sequential gym number suffix. Gym numbers
// are G-NNNN, so the suffix is everything after the dash.
func (r *memberRepository) NextGymSequence(executor SQLExecutor) (int, error) {
	var next int
	query := `SELECT COALESCE(MAX(CAST(SUBSTRING(gym_number FROM 3) AS INTEGER)), 0) + 1 FROM members`
	if err := executor.QueryRow(query).Scan(&next); err != nil {
		return 0, fmt.Errorf("%w: computing next gym number: %v", ErrDatabaseError, err)
	}
	return next, nil
}

func (r *memberRepository) AddHistory(executor SQLExecutor, memberID int64, e *models.HistoryEntry) (int64, error) {
	query := `INSERT INTO member_history (member_id, timestamp, type, title, details, payment_amount)
	          VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	var amount decimal.NullDecimal
	if e.PaymentAmount != nil {
		amount = decimal.NullDecimal{Decimal: *e.PaymentAmount, Valid: true}
	}
	err := executor.QueryRow(query, memberID, e.Timestamp, e.Type, e.Title, e.Details, amount).Scan(&e.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: adding history for member ID %d: %v", ErrDatabaseError, memberID, err)
	}
	return e.ID, nil
}

func (r *memberRepository) GetHistory(memberID int64) ([]models.HistoryEntry, error) {
	entries := []models.HistoryEntry{}
	query := `SELECT id, timestamp, type, title, details, payment_amount
	          FROM member_history WHERE member_id = $1 ORDER BY timestamp DESC, id DESC`
	rows, err := r.db.Query(query, memberID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying history for member ID %d: %v", ErrDatabaseError, memberID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var e models.HistoryEntry
		var amount decimal.NullDecimal
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Type, &e.Title, &e.Details, &amount); err != nil {
			return nil, fmt.Errorf("%w: scanning history entry: %v", ErrDatabaseError, err)
		}
		if amount.Valid {
			e.PaymentAmount = &amount.Decimal
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating history rows: %v", ErrDatabaseError, err)
	}
	return entries, nil
}

// --- scan helpers ---

func scanMember(s scanner) (*models.Member, error) {
	return scanMemberInto(s, nil)
}

func scanMemberWithCount(s scanner, totalCount *int) (*models.Member, error) {
	return scanMemberInto(s, totalCount)
}

func scanMemberInto(s scanner, totalCount *int) (*models.Member, error) {
	m := &models.Member{}
	var subStart, dueDate, sessionExpiry, lockerStart, lockerDue, feeLastPaid, feeDue sql.NullTime

	dest := []interface{}{
		&m.ID, &m.GymNumber, &m.Name, &m.Phone, &m.Email, &m.MembershipType, &m.Status,
		&subStart, &dueDate, &m.HasCoach, &m.CoachName, &m.TrainingType,
		&m.TotalSessions, &m.SessionsUsed, &sessionExpiry,
		&lockerStart, &lockerDue, &feeLastPaid, &feeDue,
		&m.ClassID, &m.Details, &m.CreatedAt, &m.UpdatedAt,
	}
	if totalCount != nil {
		dest = append(dest, totalCount)
	}
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}

	m.SubscriptionStartDate = fromNullDate(subStart)
	m.DueDate = fromNullDate(dueDate)
	m.SessionExpiryDate = fromNullDate(sessionExpiry)
	m.LockerStartDate = fromNullDate(lockerStart)
	m.LockerDueDate = fromNullDate(lockerDue)
	m.MembershipFeeLastPaid = fromNullDate(feeLastPaid)
	m.MembershipFeeDueDate = fromNullDate(feeDue)
	return m, nil
}

// toNullDate converts a canonical YYYY-MM-DD string into a DATE parameter.
// Unparseable values become NULL; validation happens in the service layer.
func toNullDate(s *string) sql.NullTime {
	if s == nil || *s == "" {
		return sql.NullTime{}
	}
	t, err := dates.Parse(*s)
	if err != nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

func fromNullDate(t sql.NullTime) *string {
	if !t.Valid {
		return nil
	}
	s := dates.Format(t.Time)
	return &s
}
