package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gnexgym_backend/internal/models"

	"github.com/lib/pq"
)

// ClassRepository defines the interface for class and attendance operations.
type ClassRepository interface {
	Create(executor SQLExecutor, c *models.Class) (int64, error)
	GetByID(id int64) (*models.Class, error)
	List() ([]models.Class, error)
	Update(executor SQLExecutor, c *models.Class) error
	Delete(executor SQLExecutor, id int64) error

	// UpsertAttendance replaces the attendance roster for (classID, date).
	UpsertAttendance(executor SQLExecutor, a *models.ClassAttendance) error
	GetAttendance(classID int64) ([]models.ClassAttendance, error)
	GetAttendanceByDate(classID int64, date string) (*models.ClassAttendance, error)
}

type classRepository struct {
	db *sql.DB
}

// NewClassRepository creates a new instance of ClassRepository.
func NewClassRepository(db *sql.DB) ClassRepository {
	return &classRepository{db: db}
}

func (r *classRepository) Create(executor SQLExecutor, c *models.Class) (int64, error) {
	query := `INSERT INTO classes (name, coach_name, schedule, created_at, updated_at)
	          VALUES ($1,$2,$3,$4,$5) RETURNING id`
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	err := executor.QueryRow(query, c.Name, c.CoachName, c.Schedule, now, now).Scan(&c.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: class '%s' already exists (constraint: %s)", ErrDuplicateKey, c.Name, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating class: %v", ErrDatabaseError, err)
	}
	return c.ID, nil
}

func (r *classRepository) GetByID(id int64) (*models.Class, error) {
	c := &models.Class{}
	query := `SELECT id, name, coach_name, schedule, created_at, updated_at FROM classes WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(&c.ID, &c.Name, &c.CoachName, &c.Schedule, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting class by ID %d: %v", ErrDatabaseError, id, err)
	}
	return c, nil
}

func (r *classRepository) List() ([]models.Class, error) {
	classes := []models.Class{}
	query := `SELECT id, name, coach_name, schedule, created_at, updated_at FROM classes ORDER BY name`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying classes: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Class
		if err := rows.Scan(&c.ID, &c.Name, &c.CoachName, &c.Schedule, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning class: %v", ErrDatabaseError, err)
		}
		classes = append(classes, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating class rows: %v", ErrDatabaseError, err)
	}
	return classes, nil
}

func (r *classRepository) Update(executor SQLExecutor, c *models.Class) error {
	query := `UPDATE classes SET name = $1, coach_name = $2, schedule = $3, updated_at = $4 WHERE id = $5`
	c.UpdatedAt = time.Now()
	result, err := executor.Exec(query, c.Name, c.CoachName, c.Schedule, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("%w: updating class ID %d: %v", ErrDatabaseError, c.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *classRepository) Delete(executor SQLExecutor, id int64) error {
	if _, err := executor.Exec(`DELETE FROM class_attendance WHERE class_id = $1`, id); err != nil {
		return fmt.Errorf("%w: deleting attendance for class ID %d: %v", ErrDatabaseError, id, err)
	}
	result, err := executor.Exec(`DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting class ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *classRepository) UpsertAttendance(executor SQLExecutor, a *models.ClassAttendance) error {
	query := `INSERT INTO class_attendance (class_id, date, present_member_ids)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (class_id, date) DO UPDATE SET present_member_ids = EXCLUDED.present_member_ids`
	_, err := executor.Exec(query, a.ClassID, a.Date, pq.Array(a.PresentMemberIDs))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return ErrNotFound
		}
		return fmt.Errorf("%w: upserting attendance for class %d on %s: %v", ErrDatabaseError, a.ClassID, a.Date, err)
	}
	return nil
}

func (r *classRepository) GetAttendance(classID int64) ([]models.ClassAttendance, error) {
	entries := []models.ClassAttendance{}
	query := `SELECT class_id, date, present_member_ids FROM class_attendance
	          WHERE class_id = $1 ORDER BY date DESC`
	rows, err := r.db.Query(query, classID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying attendance for class %d: %v", ErrDatabaseError, classID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var a models.ClassAttendance
		var date time.Time
		if err := rows.Scan(&a.ClassID, &date, pq.Array(&a.PresentMemberIDs)); err != nil {
			return nil, fmt.Errorf("%w: scanning attendance entry: %v", ErrDatabaseError, err)
		}
		a.Date = date.Format("2006-01-02")
		entries = append(entries, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating attendance rows: %v", ErrDatabaseError, err)
	}
	return entries, nil
}

func (r *classRepository) GetAttendanceByDate(classID int64, date string) (*models.ClassAttendance, error) {
	a := &models.ClassAttendance{}
	var d time.Time
	query := `SELECT class_id, date, present_member_ids FROM class_attendance
	          WHERE class_id = $1 AND date = $2`
	err := r.db.QueryRow(query, classID, date).Scan(&a.ClassID, &d, pq.Array(&a.PresentMemberIDs))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting attendance for class %d on %s: %v", ErrDatabaseError, classID, date, err)
	}
	a.Date = d.Format("2006-01-02")
	return a, nil
}
