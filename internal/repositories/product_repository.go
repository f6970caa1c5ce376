package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gnexgym_backend/internal/models"

	"github.com/lib/pq"
)

// ProductRepository defines the interface for retail product operations.
type ProductRepository interface {
	Create(executor SQLExecutor, p *models.Product) (int64, error)
	GetByID(id int64) (*models.Product, error)
	List() ([]models.Product, error)
	Update(executor SQLExecutor, p *models.Product) error
	Delete(executor SQLExecutor, id int64) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository.
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(executor SQLExecutor, p *models.Product) (int64, error) {
	query := `INSERT INTO products (name, price, stock, created_at, updated_at)
	          VALUES ($1,$2,$3,$4,$5) RETURNING id`
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	err := executor.QueryRow(query, p.Name, p.Price, p.Stock, now, now).Scan(&p.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: product '%s' already exists (constraint: %s)", ErrDuplicateKey, p.Name, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating product: %v", ErrDatabaseError, err)
	}
	return p.ID, nil
}

func (r *productRepository) GetByID(id int64) (*models.Product, error) {
	p := &models.Product{}
	query := `SELECT id, name, price, stock, created_at, updated_at FROM products WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting product by ID %d: %v", ErrDatabaseError, id, err)
	}
	return p, nil
}

func (r *productRepository) List() ([]models.Product, error) {
	products := []models.Product{}
	rows, err := r.db.Query(`SELECT id, name, price, stock, created_at, updated_at FROM products ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying products: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning product: %v", ErrDatabaseError, err)
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating product rows: %v", ErrDatabaseError, err)
	}
	return products, nil
}

func (r *productRepository) Update(executor SQLExecutor, p *models.Product) error {
	query := `UPDATE products SET name = $1, price = $2, stock = $3, updated_at = $4 WHERE id = $5`
	p.UpdatedAt = time.Now()
	result, err := executor.Exec(query, p.Name, p.Price, p.Stock, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("%w: updating product ID %d: %v", ErrDatabaseError, p.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepository) Delete(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return fmt.Errorf("%w: product ID %d is referenced by check-in items (constraint: %s)", ErrDatabaseError, id, pqErr.Constraint)
		}
		return fmt.Errorf("%w: deleting product ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
