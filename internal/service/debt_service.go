package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"warunku-backend/internal/domain"
	"warunku-backend/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrNoItems              = errors.New("at least one debt item is required")
	ErrInvalidQuantity      = errors.New("item quantity must be greater than zero")
	ErrInvalidPaymentAmount = errors.New("payment amount must be greater than zero")
	ErrDueBeforeDebtDate    = errors.New("due date cannot be before the debt date")
)

// DebtItemInput is one requested line of a new debt record. PriceOverride,
// when set, is used verbatim instead of the unit's current selling price
// (historical or negotiated pricing).
type DebtItemInput struct {
	ProductID     uuid.UUID
	UnitLabel     string
	Quantity      float64
	PriceOverride *float64
}

// CreateDebtInput carries the caller-supplied fields for a new debt record.
// Totals are never taken from the caller.
type CreateDebtInput struct {
	CustomerID     uuid.UUID
	Items          []DebtItemInput
	DebtDate       *time.Time
	DueDate        *time.Time
	Notes          string
	InitialPayment *float64
}

// RecordPaymentInput carries one payment against an existing debt record
type RecordPaymentInput struct {
	Amount      float64
	PaymentDate *time.Time
	Method      string
	Notes       string
}

// UpdateDebtMetaInput carries the only mutable fields of a debt record.
// Nil means leave unchanged.
type UpdateDebtMetaInput struct {
	Notes   *string
	DueDate *time.Time
}

// DebtService is the debt ledger engine. It owns record creation with the
// item-pricing snapshot, append-only payment recording and status derivation.
type DebtService interface {
	Create(ctx context.Context, input CreateDebtInput) (*domain.DebtRecord, error)
	RecordPayment(ctx context.Context, id uuid.UUID, input RecordPaymentInput) (*domain.DebtRecord, error)
	UpdateMeta(ctx context.Context, id uuid.UUID, input UpdateDebtMetaInput) (*domain.DebtRecord, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.DebtRecord, error)
	List(ctx context.Context, filter repository.DebtFilter) ([]*domain.DebtRecord, int, error)
}

type debtService struct {
	debtRepo     repository.DebtRecordRepository
	customerRepo repository.CustomerRepository
	catalog      ProductService
}

// NewDebtService creates a new instance of DebtService
func NewDebtService(
	debtRepo repository.DebtRecordRepository,
	customerRepo repository.CustomerRepository,
	catalog ProductService,
) DebtService {
	return &debtService{
		debtRepo:     debtRepo,
		customerRepo: customerRepo,
		catalog:      catalog,
	}
}

// Create resolves the customer and each item's product unit, snapshots the
// pricing, computes the total server-side and persists the record with its
// derived status.
func (s *debtService) Create(ctx context.Context, input CreateDebtInput) (*domain.DebtRecord, error) {
	if len(input.Items) == 0 {
		return nil, ErrNoItems
	}

	customer, err := s.customerRepo.FindByID(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	debtDate := now
	if input.DebtDate != nil {
		debtDate = *input.DebtDate
	}
	if input.DueDate != nil && input.DueDate.Before(debtDate) {
		return nil, ErrDueBeforeDebtDate
	}

	items := make([]domain.DebtItem, 0, len(input.Items))
	for _, in := range input.Items {
		if in.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}

		resolution, err := s.catalog.ResolveUnit(ctx, in.ProductID, in.UnitLabel)
		if err != nil {
			return nil, err
		}

		price := resolution.SellingPrice
		if in.PriceOverride != nil {
			price = *in.PriceOverride
		}
		if price < 0 {
			return nil, fmt.Errorf("unit '%s' of product '%s': %w", resolution.Label, resolution.ProductName, ErrInvalidPrice)
		}

		items = append(items, domain.DebtItem{
			ID:          uuid.New(),
			ProductID:   resolution.ProductID,
			ProductName: resolution.ProductName,
			UnitLabel:   resolution.Label,
			Quantity:    in.Quantity,
			UnitPrice:   price,
			LineTotal:   in.Quantity * price,
		})
	}

	record := &domain.DebtRecord{
		ID:         uuid.New(),
		CustomerID: customer.ID,
		Items:      items,
		DebtDate:   debtDate,
		DueDate:    input.DueDate,
		Notes:      input.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if input.InitialPayment != nil {
		amount := *input.InitialPayment
		if amount < 0 {
			return nil, ErrInvalidPaymentAmount
		}
		if amount > 0 {
			record.PaymentHistory = append(record.PaymentHistory, domain.PaymentEntry{
				ID:          uuid.New(),
				Amount:      amount,
				PaymentDate: debtDate,
				RecordedAt:  now,
			})
		}
	}

	record.Recalculate()

	if err := s.debtRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create debt record: %w", err)
	}

	record.CustomerName = customer.Name
	record.CustomerPhone = customer.PhoneNumber

	return record, nil
}

// RecordPayment appends a payment entry and recomputes the derived fields.
// There is no upper bound against the total: overpayment is allowed and the
// status simply caps at PAID.
func (s *debtService) RecordPayment(ctx context.Context, id uuid.UUID, input RecordPaymentInput) (*domain.DebtRecord, error) {
	if input.Amount <= 0 {
		return nil, ErrInvalidPaymentAmount
	}

	record, err := s.debtRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	paymentDate := now
	if input.PaymentDate != nil {
		paymentDate = *input.PaymentDate
	}

	entry := domain.PaymentEntry{
		ID:           uuid.New(),
		DebtRecordID: record.ID,
		Amount:       input.Amount,
		PaymentDate:  paymentDate,
		Method:       input.Method,
		Notes:        input.Notes,
		RecordedAt:   now,
	}

	record.PaymentHistory = append(record.PaymentHistory, entry)
	record.Recalculate()
	record.UpdatedAt = now

	if err := s.debtRepo.AppendPayment(ctx, record, &entry); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	return record, nil
}

// UpdateMeta changes notes and/or due date. Items, customer and the derived
// fields are immutable through this operation.
func (s *debtService) UpdateMeta(ctx context.Context, id uuid.UUID, input UpdateDebtMetaInput) (*domain.DebtRecord, error) {
	record, err := s.debtRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Notes != nil {
		record.Notes = *input.Notes
	}
	if input.DueDate != nil {
		if input.DueDate.Before(record.DebtDate) {
			return nil, ErrDueBeforeDebtDate
		}
		record.DueDate = input.DueDate
	}
	record.UpdatedAt = time.Now()

	if err := s.debtRepo.UpdateMeta(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to update debt record: %w", err)
	}

	return record, nil
}

// Get retrieves a debt record with items, payment history and customer
// display fields. Reads never mutate state.
func (s *debtService) Get(ctx context.Context, id uuid.UUID) (*domain.DebtRecord, error) {
	return s.debtRepo.FindByID(ctx, id)
}

// List retrieves a page of debt records matching the filter
func (s *debtService) List(ctx context.Context, filter repository.DebtFilter) ([]*domain.DebtRecord, int, error) {
	if filter.CustomerID != nil {
		if _, err := s.customerRepo.FindByID(ctx, *filter.CustomerID); err != nil {
			return nil, 0, err
		}
	}

	return s.debtRepo.List(ctx, filter)
}
