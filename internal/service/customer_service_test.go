package service

import (
	"context"
	"errors"
	"testing"

	"warunku-backend/internal/repository"

	"github.com/google/uuid"
)

func TestCustomerDeletionBlockedByOutstandingDebt(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	customers := NewCustomerService(f.customerRepo, f.debtRepo)

	record, err := f.debts.Create(ctx, CreateDebtInput{
		CustomerID: f.customer.ID,
		Items:      []DebtItemInput{{ProductID: f.rice.ID, UnitLabel: "Kg", Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("create debt failed: %v", err)
	}

	if err := customers.Delete(ctx, f.customer.ID); !errors.Is(err, ErrOutstandingDebts) {
		t.Fatalf("expected ErrOutstandingDebts, got %v", err)
	}
	if _, err := customers.Get(ctx, f.customer.ID); err != nil {
		t.Fatalf("customer must survive a refused deletion: %v", err)
	}

	// Partial settlement is still outstanding
	if _, err := f.debts.RecordPayment(ctx, record.ID, RecordPaymentInput{Amount: 10000}); err != nil {
		t.Fatalf("payment failed: %v", err)
	}
	if err := customers.Delete(ctx, f.customer.ID); !errors.Is(err, ErrOutstandingDebts) {
		t.Fatalf("expected ErrOutstandingDebts after partial payment, got %v", err)
	}

	// Full settlement releases the guard
	if _, err := f.debts.RecordPayment(ctx, record.ID, RecordPaymentInput{Amount: 15000}); err != nil {
		t.Fatalf("payment failed: %v", err)
	}
	if err := customers.Delete(ctx, f.customer.ID); err != nil {
		t.Fatalf("deletion should succeed once all debts are PAID: %v", err)
	}
	if _, err := customers.Get(ctx, f.customer.ID); !errors.Is(err, repository.ErrCustomerNotFound) {
		t.Fatalf("expected customer gone, got %v", err)
	}
}

func TestCustomerDeleteUnknownIsNotFound(t *testing.T) {
	f := newLedgerFixture(t)
	customers := NewCustomerService(f.customerRepo, f.debtRepo)

	if err := customers.Delete(context.Background(), uuid.New()); !errors.Is(err, repository.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestCustomerPhoneNumberUniqueness(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	customers := NewCustomerService(f.customerRepo, f.debtRepo)

	created, err := customers.Create(ctx, CustomerInput{Name: "Pak Budi", PhoneNumber: "0811111111"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := customers.Create(ctx, CustomerInput{Name: "Budi Kedua", PhoneNumber: "0811111111"}); !errors.Is(err, ErrPhoneNumberTaken) {
		t.Fatalf("expected ErrPhoneNumberTaken, got %v", err)
	}

	// Updating a customer keeping their own number is fine
	if _, err := customers.Update(ctx, created.ID, CustomerInput{Name: "Pak Budi", PhoneNumber: "0811111111"}); err != nil {
		t.Fatalf("self update failed: %v", err)
	}

	// Taking another customer's number is not
	if _, err := customers.Update(ctx, created.ID, CustomerInput{Name: "Pak Budi", PhoneNumber: f.customer.PhoneNumber}); !errors.Is(err, ErrPhoneNumberTaken) {
		t.Fatalf("expected ErrPhoneNumberTaken on update, got %v", err)
	}
}

func TestCustomerCreateWithoutPhone(t *testing.T) {
	f := newLedgerFixture(t)
	customers := NewCustomerService(f.customerRepo, f.debtRepo)

	first, err := customers.Create(context.Background(), CustomerInput{Name: "Tanpa Telepon"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second, err := customers.Create(context.Background(), CustomerInput{Name: "Juga Tanpa"})
	if err != nil {
		t.Fatalf("second phoneless customer must be allowed: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("distinct customers share an ID")
	}
}

func TestCustomerUpdateFields(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	customers := NewCustomerService(f.customerRepo, f.debtRepo)

	updated, err := customers.Update(ctx, f.customer.ID, CustomerInput{
		Name:        "Bu Siti Aminah",
		PhoneNumber: "0822222222",
		Address:     "Jl. Melati 5",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if updated.Name != "Bu Siti Aminah" || updated.PhoneNumber != "0822222222" || updated.Address != "Jl. Melati 5" {
		t.Errorf("fields not applied: %+v", updated)
	}
}
