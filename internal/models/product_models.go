package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a retail item sold over the counter (drinks, supplements, gear).
type Product struct {
	ID        int64           `json:"id" db:"id"`
	Name      string          `json:"name" db:"name" binding:"required"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Stock     *int            `json:"stock,omitempty" db:"stock"` // nil when stock is not tracked
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// Task is a staff to-do item.
type Task struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title" binding:"required"`
	Done      bool      `json:"done" db:"done"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
