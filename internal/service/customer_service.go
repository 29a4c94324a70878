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
	ErrPhoneNumberTaken = errors.New("customer with this phone number already exists")
	ErrOutstandingDebts = errors.New("customer has outstanding debts")
)

// CustomerInput carries the caller-supplied customer fields
type CustomerInput struct {
	Name        string
	PhoneNumber string
	Address     string
}

// CustomerService defines the customer directory operations. Delete enforces
// the one cross-entity invariant: a customer with any non-PAID debt record
// cannot be removed.
type CustomerService interface {
	Create(ctx context.Context, input CustomerInput) (*domain.Customer, error)
	Update(ctx context.Context, id uuid.UUID, input CustomerInput) (*domain.Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Customer, int, error)
}

type customerService struct {
	customerRepo repository.CustomerRepository
	debtRepo     repository.DebtRecordRepository
}

// NewCustomerService creates a new instance of CustomerService
func NewCustomerService(customerRepo repository.CustomerRepository, debtRepo repository.DebtRecordRepository) CustomerService {
	return &customerService{
		customerRepo: customerRepo,
		debtRepo:     debtRepo,
	}
}

// Create registers a new customer, rejecting duplicate phone numbers
func (s *customerService) Create(ctx context.Context, input CustomerInput) (*domain.Customer, error) {
	if input.PhoneNumber != "" {
		if err := s.checkPhoneAvailable(ctx, input.PhoneNumber, uuid.Nil); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	customer := &domain.Customer{
		ID:          uuid.New(),
		Name:        input.Name,
		PhoneNumber: input.PhoneNumber,
		Address:     input.Address,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	return customer, nil
}

// Update changes a customer's contact fields
func (s *customerService) Update(ctx context.Context, id uuid.UUID, input CustomerInput) (*domain.Customer, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.PhoneNumber != "" && input.PhoneNumber != customer.PhoneNumber {
		if err := s.checkPhoneAvailable(ctx, input.PhoneNumber, id); err != nil {
			return nil, err
		}
	}

	if input.Name != "" {
		customer.Name = input.Name
	}
	customer.PhoneNumber = input.PhoneNumber
	customer.Address = input.Address
	customer.UpdatedAt = time.Now()

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	return customer, nil
}

// Delete removes a customer unless they still owe money. Receivables
// tracking must never be lost silently.
func (s *customerService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.customerRepo.FindByID(ctx, id); err != nil {
		return err
	}

	outstanding, err := s.debtRepo.HasOutstanding(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check outstanding debts: %w", err)
	}
	if outstanding {
		return ErrOutstandingDebts
	}

	return s.customerRepo.Delete(ctx, id)
}

// Get retrieves a customer by ID
func (s *customerService) Get(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	return s.customerRepo.FindByID(ctx, id)
}

// Search retrieves a page of customers matching the query by name or phone
func (s *customerService) Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Customer, int, error) {
	return s.customerRepo.Search(ctx, query, page, pageSize)
}

func (s *customerService) checkPhoneAvailable(ctx context.Context, phoneNumber string, selfID uuid.UUID) error {
	existing, err := s.customerRepo.FindByPhone(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check phone number: %w", err)
	}
	if existing.ID != selfID {
		return ErrPhoneNumberTaken
	}
	return nil
}
