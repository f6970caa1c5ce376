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

var ErrProductNameExists = errors.New("a product with this name already exists")

// --- Product DTOs ---

type CreateProductRequest struct {
	Name  string          `json:"name" binding:"required"`
	Price decimal.Decimal `json:"price" binding:"required"`
	Stock *int            `json:"stock"` // nil means stock is not tracked
}

type UpdateProductRequest struct {
	Name  *string          `json:"name"`
	Price *decimal.Decimal `json:"price"`
	Stock *int             `json:"stock"`
}

// --- ProductService Interface ---
type ProductService interface {
	Create(req CreateProductRequest) (*models.Product, error)
	GetByID(id int64) (*models.Product, error)
	List() ([]models.Product, error)
	Update(id int64, req UpdateProductRequest) (*models.Product, error)
	Delete(id int64) error
}

type productService struct {
	productRepo repositories.ProductRepository
	db          *sql.DB
}

// NewProductService creates a new instance of ProductService.
func NewProductService(pr repositories.ProductRepository, db *sql.DB) ProductService {
	return &productService{productRepo: pr, db: db}
}

func (s *productService) Create(req CreateProductRequest) (*models.Product, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if req.Stock != nil && *req.Stock < 0 {
		return nil, fmt.Errorf("%w: stock cannot be negative", ErrValidation)
	}
	p := &models.Product{
		Name:  strings.TrimSpace(req.Name),
		Price: req.Price.Round(2),
		Stock: req.Stock,
	}
	if _, err := s.productRepo.Create(s.db, p); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %s", ErrProductNameExists, p.Name)
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return p, nil
}

func (s *productService) GetByID(id int64) (*models.Product, error) {
	p, err := s.productRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

func (s *productService) List() ([]models.Product, error) {
	products, err := s.productRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *productService) Update(id int64, req UpdateProductRequest) (*models.Product, error) {
	p, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
		}
		p.Price = req.Price.Round(2)
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, fmt.Errorf("%w: stock cannot be negative", ErrValidation)
		}
		p.Stock = req.Stock
	}
	if err := s.productRepo.Update(s.db, p); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %s", ErrProductNameExists, p.Name)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return p, nil
}

func (s *productService) Delete(id int64) error {
	if err := s.productRepo.Delete(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}
