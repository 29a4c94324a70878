package repository

import (
	"context"
	"testing"
	"time"

	"warunku-backend/internal/domain"

	"github.com/google/uuid"
)

func TestCustomerRoundTrip(t *testing.T) {
	repo := NewCustomerRepository(testDB)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	customer := &domain.Customer{
		ID:          uuid.New(),
		Name:        "Bu Lastri Roundtrip",
		PhoneNumber: "0811900001",
		Address:     "Jl. Kenanga 12",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := repo.Create(ctx, customer); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	loaded, err := repo.FindByID(ctx, customer.ID)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if loaded.Name != customer.Name || loaded.PhoneNumber != customer.PhoneNumber || loaded.Address != customer.Address {
		t.Errorf("loaded customer differs: %+v", loaded)
	}

	byPhone, err := repo.FindByPhone(ctx, "0811900001")
	if err != nil {
		t.Fatalf("find by phone failed: %v", err)
	}
	if byPhone.ID != customer.ID {
		t.Errorf("phone lookup returned wrong customer")
	}

	customer.Address = "Jl. Kenanga 13"
	customer.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	if err := repo.Update(ctx, customer); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	loaded, err = repo.FindByID(ctx, customer.ID)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if loaded.Address != "Jl. Kenanga 13" {
		t.Errorf("update not persisted: %q", loaded.Address)
	}

	if err := repo.Delete(ctx, customer.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := repo.FindByID(ctx, customer.ID); err != ErrCustomerNotFound {
		t.Fatalf("expected ErrCustomerNotFound after delete, got %v", err)
	}
}

func TestCustomerNullableFields(t *testing.T) {
	repo := NewCustomerRepository(testDB)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	customer := &domain.Customer{
		ID:        uuid.New(),
		Name:      "Tanpa Kontak",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := repo.Create(ctx, customer); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	loaded, err := repo.FindByID(ctx, customer.ID)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if loaded.PhoneNumber != "" || loaded.Address != "" {
		t.Errorf("expected empty optional fields, got %+v", loaded)
	}
}

func TestCustomerSearch(t *testing.T) {
	repo := NewCustomerRepository(testDB)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	names := []struct{ name, phone string }{
		{"Searchable Agus", "0899000001"},
		{"Searchable Anton", "0899000002"},
		{"Unrelated Wati", "0877000003"},
	}
	for _, n := range names {
		customer := &domain.Customer{
			ID:          uuid.New(),
			Name:        n.name,
			PhoneNumber: n.phone,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := repo.Create(ctx, customer); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	// Name match is case-insensitive
	results, total, err := repo.Search(ctx, "searchable", 1, 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if total != 2 || len(results) != 2 {
		t.Fatalf("expected 2 matches, got %d", total)
	}
	// Ordered by name
	if results[0].Name != "Searchable Agus" || results[1].Name != "Searchable Anton" {
		t.Errorf("results not ordered by name: %q, %q", results[0].Name, results[1].Name)
	}

	// Phone match
	_, total, err = repo.Search(ctx, "0877000003", 1, 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 phone match, got %d", total)
	}

	// Pagination
	results, total, err = repo.Search(ctx, "searchable", 2, 1)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if total != 2 || len(results) != 1 {
		t.Fatalf("expected page 2 of size 1 to hold 1 of 2 matches, got %d of %d", len(results), total)
	}
}
