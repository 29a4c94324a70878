package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"warunku-backend/internal/domain"
	"warunku-backend/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrNoUnits            = errors.New("at least one unit variant is required")
	ErrDuplicateUnitLabel = errors.New("unit labels must be unique per product")
	ErrInvalidPrice       = errors.New("selling price must be a non-negative number")
	ErrUnitNotFound       = errors.New("unit not found for product")
)

// UnitResolution is the pricing snapshot the ledger takes from the catalog
// when a debt item is created.
type UnitResolution struct {
	ProductID    uuid.UUID
	ProductName  string
	Label        string
	SellingPrice float64
}

// UnitInput describes one unit variant on a create/update request
type UnitInput struct {
	Label        string
	SellingPrice float64
}

// ProductInput carries the caller-supplied product fields
type ProductInput struct {
	Name        string
	Description string
	Category    string
	Units       []UnitInput
}

// ProductService defines the catalog operations, including the unit
// resolution hook the debt ledger consumes
type ProductService interface {
	Create(ctx context.Context, input ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, search, category string, page, pageSize int) ([]*domain.Product, int, error)
	ResolveUnit(ctx context.Context, productID uuid.UUID, unitLabel string) (*UnitResolution, error)
}

type productService struct {
	productRepo repository.ProductRepository
}

// NewProductService creates a new instance of ProductService
func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

// Create validates the unit variants and persists a new product
func (s *productService) Create(ctx context.Context, input ProductInput) (*domain.Product, error) {
	units, err := buildUnits(input.Units)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		Units:       units,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// Update replaces the product fields and its unit variant list
func (s *productService) Update(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	units, err := buildUnits(input.Units)
	if err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Category = input.Category
	product.Units = units
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// Delete removes a product from the catalog. Debt items keep their snapshot
// of the product's name and pricing, so history is unaffected.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}

// Get retrieves a product with its unit variants
func (s *productService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// List retrieves a page of products
func (s *productService) List(ctx context.Context, search, category string, page, pageSize int) ([]*domain.Product, int, error) {
	return s.productRepo.List(ctx, search, category, page, pageSize)
}

// ResolveUnit finds the product's unit variant matching the label
// case-insensitively and returns its current price together with the
// canonical label and product name for snapshotting.
func (s *productService) ResolveUnit(ctx context.Context, productID uuid.UUID, unitLabel string) (*UnitResolution, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	unit, ok := product.FindUnit(unitLabel)
	if !ok {
		return nil, fmt.Errorf("unit '%s' for product '%s': %w", unitLabel, product.Name, ErrUnitNotFound)
	}

	return &UnitResolution{
		ProductID:    product.ID,
		ProductName:  product.Name,
		Label:        unit.Label,
		SellingPrice: unit.SellingPrice,
	}, nil
}

func buildUnits(inputs []UnitInput) ([]domain.ProductUnit, error) {
	if len(inputs) == 0 {
		return nil, ErrNoUnits
	}

	seen := make(map[string]bool, len(inputs))
	units := make([]domain.ProductUnit, 0, len(inputs))

	for _, in := range inputs {
		label := strings.TrimSpace(in.Label)
		key := strings.ToLower(label)
		if seen[key] {
			return nil, fmt.Errorf("label '%s': %w", label, ErrDuplicateUnitLabel)
		}
		seen[key] = true

		if in.SellingPrice < 0 {
			return nil, fmt.Errorf("unit '%s': %w", label, ErrInvalidPrice)
		}

		units = append(units, domain.ProductUnit{
			ID:           uuid.New(),
			Label:        label,
			SellingPrice: in.SellingPrice,
		})
	}

	return units, nil
}
