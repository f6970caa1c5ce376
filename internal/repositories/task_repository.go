package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gnexgym_backend/internal/models"
)

// TaskRepository defines the interface for staff task operations.
type TaskRepository interface {
	Create(executor SQLExecutor, t *models.Task) (int64, error)
	List() ([]models.Task, error)
	Update(executor SQLExecutor, t *models.Task) error
	Delete(executor SQLExecutor, id int64) error
}

type taskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new instance of TaskRepository.
func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(executor SQLExecutor, t *models.Task) (int64, error) {
	query := `INSERT INTO tasks (title, done, created_at, updated_at) VALUES ($1,$2,$3,$4) RETURNING id`
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	if err := executor.QueryRow(query, t.Title, t.Done, now, now).Scan(&t.ID); err != nil {
		return 0, fmt.Errorf("%w: creating task: %v", ErrDatabaseError, err)
	}
	return t.ID, nil
}

func (r *taskRepository) List() ([]models.Task, error) {
	tasks := []models.Task{}
	rows, err := r.db.Query(`SELECT id, title, done, created_at, updated_at FROM tasks ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying tasks: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Done, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning task: %v", ErrDatabaseError, err)
		}
		tasks = append(tasks, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating task rows: %v", ErrDatabaseError, err)
	}
	return tasks, nil
}

func (r *taskRepository) Update(executor SQLExecutor, t *models.Task) error {
	query := `UPDATE tasks SET title = $1, done = $2, updated_at = $3 WHERE id = $4`
	t.UpdatedAt = time.Now()
	result, err := executor.Exec(query, t.Title, t.Done, t.UpdatedAt, t.ID)
	if err != nil {
		return fmt.Errorf("%w: updating task ID %d: %v", ErrDatabaseError, t.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *taskRepository) Delete(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting task ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SettingsRepository is a small key-value store for one-off settings such as
// the kiosk free-pass code.
type SettingsRepository interface {
	Get(key string) (string, error)
	Set(executor SQLExecutor, key, value string) error
}

type settingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new instance of SettingsRepository.
func NewSettingsRepository(db *sql.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: getting setting %s: %v", ErrDatabaseError, key, err)
	}
	return value, nil
}

func (r *settingsRepository) Set(executor SQLExecutor, key, value string) error {
	query := `INSERT INTO settings (key, value) VALUES ($1, $2)
	          ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
	if _, err := executor.Exec(query, key, value); err != nil {
		return fmt.Errorf("%w: setting %s: %v", ErrDatabaseError, key, err)
	}
	return nil
}
