package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"warunku-backend/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrDebtRecordNotFound = errors.New("debt record not found")
)

// DebtFilter narrows a debt record listing. EndDate is inclusive of the whole
// calendar day it falls on.
type DebtFilter struct {
	CustomerID *uuid.UUID
	Status     *domain.DebtStatus
	StartDate  *time.Time
	EndDate    *time.Time
	Page       int
	PageSize   int
}

// DebtRecordRepository defines the interface for debt record data access.
// Every mutation touches exactly one record and runs in a single transaction;
// the stored derived columns (total_amount, amount_paid, status) are written
// atomically with the raw facts that produced them.
type DebtRecordRepository interface {
	Create(ctx context.Context, record *domain.DebtRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.DebtRecord, error)
	List(ctx context.Context, filter DebtFilter) ([]*domain.DebtRecord, int, error)
	AppendPayment(ctx context.Context, record *domain.DebtRecord, entry *domain.PaymentEntry) error
	UpdateMeta(ctx context.Context, record *domain.DebtRecord) error
	HasOutstanding(ctx context.Context, customerID uuid.UUID) (bool, error)
}

type debtRecordRepository struct {
	db *sql.DB
}

// NewDebtRecordRepository creates a new instance of DebtRecordRepository
func NewDebtRecordRepository(db *sql.DB) DebtRecordRepository {
	return &debtRecordRepository{db: db}
}

// Create persists a debt record, its item snapshot and any initial payment
// entries in one transaction
func (r *debtRecordRepository) Create(ctx context.Context, record *domain.DebtRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO debt_records (id, customer_id, total_amount, amount_paid, status,
		                          debt_date, due_date, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = tx.ExecContext(
		ctx,
		query,
		record.ID,
		record.CustomerID,
		record.TotalAmount,
		record.AmountPaid,
		record.Status,
		record.DebtDate,
		record.DueDate,
		record.Notes,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create debt record: %w", err)
	}

	itemQuery := `
		INSERT INTO debt_items (id, debt_record_id, product_id, product_name,
		                        unit_label, quantity, unit_price, line_total, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for i := range record.Items {
		item := &record.Items[i]
		item.DebtRecordID = record.ID
		item.Position = i

		_, err = tx.ExecContext(
			ctx,
			itemQuery,
			item.ID,
			item.DebtRecordID,
			item.ProductID,
			item.ProductName,
			item.UnitLabel,
			item.Quantity,
			item.UnitPrice,
			item.LineTotal,
			item.Position,
		)
		if err != nil {
			return fmt.Errorf("failed to insert debt item: %w", err)
		}
	}

	for i := range record.PaymentHistory {
		entry := &record.PaymentHistory[i]
		entry.DebtRecordID = record.ID

		if err := insertPaymentEntry(ctx, tx, entry); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit debt record: %w", err)
	}

	return nil
}

// FindByID retrieves a debt record with its items, payment history and
// customer display fields
func (r *debtRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.DebtRecord, error) {
	query := `
		SELECT d.id, d.customer_id, d.total_amount, d.amount_paid, d.status,
		       d.debt_date, d.due_date, COALESCE(d.notes, ''), d.created_at, d.updated_at,
		       c.name, COALESCE(c.phone_number, '')
		FROM debt_records d
		JOIN customers c ON c.id = d.customer_id
		WHERE d.id = $1
	`

	record := &domain.DebtRecord{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID,
		&record.CustomerID,
		&record.TotalAmount,
		&record.AmountPaid,
		&record.Status,
		&record.DebtDate,
		&record.DueDate,
		&record.Notes,
		&record.CreatedAt,
		&record.UpdatedAt,
		&record.CustomerName,
		&record.CustomerPhone,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrDebtRecordNotFound
		}
		return nil, fmt.Errorf("failed to find debt record by ID: %w", err)
	}

	if err := r.loadChildren(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

// List retrieves debt records matching the filter, sorted by debt date then
// creation time, newest first
func (r *debtRecordRepository) List(ctx context.Context, filter DebtFilter) ([]*domain.DebtRecord, int, error) {
	whereClause := ""
	args := []interface{}{}
	argIndex := 1

	appendCondition := func(cond string, value interface{}) {
		if whereClause == "" {
			whereClause = "WHERE "
		} else {
			whereClause += " AND "
		}
		whereClause += fmt.Sprintf(cond, argIndex)
		args = append(args, value)
		argIndex++
	}

	if filter.CustomerID != nil {
		appendCondition("d.customer_id = $%d", *filter.CustomerID)
	}
	if filter.Status != nil {
		appendCondition("d.status = $%d", *filter.Status)
	}
	if filter.StartDate != nil {
		appendCondition("d.debt_date >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		// Push the bound to the next midnight so the end date's whole
		// calendar day is included.
		endExclusive := filter.EndDate.Truncate(24 * time.Hour).AddDate(0, 0, 1)
		appendCondition("d.debt_date < $%d", endExclusive)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM debt_records d %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count debt records: %w", err)
	}

	offset := (filter.Page - 1) * filter.PageSize

	listQuery := fmt.Sprintf(`
		SELECT d.id, d.customer_id, d.total_amount, d.amount_paid, d.status,
		       d.debt_date, d.due_date, COALESCE(d.notes, ''), d.created_at, d.updated_at,
		       c.name, COALESCE(c.phone_number, '')
		FROM debt_records d
		JOIN customers c ON c.id = d.customer_id
		%s
		ORDER BY d.debt_date DESC, d.created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIndex, argIndex+1)

	args = append(args, filter.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list debt records: %w", err)
	}
	defer rows.Close()

	records := []*domain.DebtRecord{}
	for rows.Next() {
		record := &domain.DebtRecord{}
		err := rows.Scan(
			&record.ID,
			&record.CustomerID,
			&record.TotalAmount,
			&record.AmountPaid,
			&record.Status,
			&record.DebtDate,
			&record.DueDate,
			&record.Notes,
			&record.CreatedAt,
			&record.UpdatedAt,
			&record.CustomerName,
			&record.CustomerPhone,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan debt record: %w", err)
		}
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating debt records: %w", err)
	}

	for _, record := range records {
		if err := r.loadChildren(ctx, record); err != nil {
			return nil, 0, err
		}
	}

	return records, total, nil
}

// AppendPayment inserts the payment entry and writes the recomputed derived
// fields in the same transaction. The record must already be recalculated.
func (r *debtRecordRepository) AppendPayment(ctx context.Context, record *domain.DebtRecord, entry *domain.PaymentEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	entry.DebtRecordID = record.ID
	if err := insertPaymentEntry(ctx, tx, entry); err != nil {
		return err
	}

	query := `
		UPDATE debt_records
		SET amount_paid = $2, status = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := tx.ExecContext(ctx, query, record.ID, record.AmountPaid, record.Status, record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update debt record payment state: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrDebtRecordNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit payment: %w", err)
	}

	return nil
}

// UpdateMeta persists notes and due date; items, customer and the derived
// fields are never written through this path
func (r *debtRecordRepository) UpdateMeta(ctx context.Context, record *domain.DebtRecord) error {
	query := `
		UPDATE debt_records
		SET notes = $2, due_date = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, record.ID, record.Notes, record.DueDate, record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update debt record meta: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrDebtRecordNotFound
	}

	return nil
}

// HasOutstanding reports whether the customer has any debt record whose
// status is not PAID
func (r *debtRecordRepository) HasOutstanding(ctx context.Context, customerID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM debt_records
			WHERE customer_id = $1 AND status <> $2
		)
	`

	var outstanding bool
	if err := r.db.QueryRowContext(ctx, query, customerID, domain.StatusPaid).Scan(&outstanding); err != nil {
		return false, fmt.Errorf("failed to check outstanding debts: %w", err)
	}

	return outstanding, nil
}

func (r *debtRecordRepository) loadChildren(ctx context.Context, record *domain.DebtRecord) error {
	itemQuery := `
		SELECT id, debt_record_id, product_id, product_name, unit_label,
		       quantity, unit_price, line_total, position
		FROM debt_items
		WHERE debt_record_id = $1
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, itemQuery, record.ID)
	if err != nil {
		return fmt.Errorf("failed to load debt items: %w", err)
	}
	defer rows.Close()

	items := []domain.DebtItem{}
	for rows.Next() {
		item := domain.DebtItem{}
		err := rows.Scan(
			&item.ID,
			&item.DebtRecordID,
			&item.ProductID,
			&item.ProductName,
			&item.UnitLabel,
			&item.Quantity,
			&item.UnitPrice,
			&item.LineTotal,
			&item.Position,
		)
		if err != nil {
			return fmt.Errorf("failed to scan debt item: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating debt items: %w", err)
	}
	record.Items = items

	paymentQuery := `
		SELECT id, debt_record_id, amount, payment_date, COALESCE(method, ''),
		       COALESCE(notes, ''), recorded_at
		FROM payment_entries
		WHERE debt_record_id = $1
		ORDER BY payment_date ASC, recorded_at ASC
	`

	payRows, err := r.db.QueryContext(ctx, paymentQuery, record.ID)
	if err != nil {
		return fmt.Errorf("failed to load payment entries: %w", err)
	}
	defer payRows.Close()

	payments := []domain.PaymentEntry{}
	for payRows.Next() {
		entry := domain.PaymentEntry{}
		err := payRows.Scan(
			&entry.ID,
			&entry.DebtRecordID,
			&entry.Amount,
			&entry.PaymentDate,
			&entry.Method,
			&entry.Notes,
			&entry.RecordedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to scan payment entry: %w", err)
		}
		payments = append(payments, entry)
	}
	if err = payRows.Err(); err != nil {
		return fmt.Errorf("error iterating payment entries: %w", err)
	}
	record.PaymentHistory = payments

	return nil
}

func insertPaymentEntry(ctx context.Context, tx *sql.Tx, entry *domain.PaymentEntry) error {
	query := `
		INSERT INTO payment_entries (id, debt_record_id, amount, payment_date, method, notes, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.DebtRecordID,
		entry.Amount,
		entry.PaymentDate,
		entry.Method,
		entry.Notes,
		entry.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment entry: %w", err)
	}

	return nil
}
