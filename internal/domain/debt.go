package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DebtStatus is the derived settlement state of a debt record.
type DebtStatus string

const (
	StatusUnpaid        DebtStatus = "UNPAID"
	StatusPartiallyPaid DebtStatus = "PARTIALLY_PAID"
	StatusPaid          DebtStatus = "PAID"
)

// ParseDebtStatus matches a status value case-insensitively.
func ParseDebtStatus(s string) (DebtStatus, bool) {
	switch DebtStatus(strings.ToUpper(s)) {
	case StatusUnpaid:
		return StatusUnpaid, true
	case StatusPartiallyPaid:
		return StatusPartiallyPaid, true
	case StatusPaid:
		return StatusPaid, true
	}
	return "", false
}

// DebtItem is one priced line of a debt record. Product name, unit label and
// unit price are snapshots taken at creation time, so later catalog edits do
// not alter historical records.
type DebtItem struct {
	ID           uuid.UUID `json:"id" db:"id"`
	DebtRecordID uuid.UUID `json:"debt_record_id" db:"debt_record_id"`
	ProductID    uuid.UUID `json:"product_id" db:"product_id"`
	ProductName  string    `json:"product_name" db:"product_name"`
	UnitLabel    string    `json:"unit_label" db:"unit_label"`
	Quantity     float64   `json:"quantity" db:"quantity"`
	UnitPrice    float64   `json:"unit_price" db:"unit_price"`
	LineTotal    float64   `json:"line_total" db:"line_total"`
	Position     int       `json:"-" db:"position"`
}

// PaymentEntry is one recorded partial or full payment against a debt record.
// The payment history is append-only.
type PaymentEntry struct {
	ID           uuid.UUID `json:"id" db:"id"`
	DebtRecordID uuid.UUID `json:"debt_record_id" db:"debt_record_id"`
	Amount       float64   `json:"amount" db:"amount"`
	PaymentDate  time.Time `json:"payment_date" db:"payment_date"`
	Method       string    `json:"method,omitempty" db:"method"`
	Notes        string    `json:"notes,omitempty" db:"notes"`
	RecordedAt   time.Time `json:"recorded_at" db:"recorded_at"`
}

// DebtRecord is the ledger aggregate: a credit sale with an item snapshot and
// an append-only payment history. TotalAmount, AmountPaid and Status are
// derived; Recalculate keeps them consistent with the raw facts.
type DebtRecord struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	CustomerID uuid.UUID  `json:"customer_id" db:"customer_id"`
	Items      []DebtItem `json:"items"`

	TotalAmount    float64        `json:"total_amount" db:"total_amount"`
	AmountPaid     float64        `json:"amount_paid" db:"amount_paid"`
	PaymentHistory []PaymentEntry `json:"payment_history"`
	Status         DebtStatus     `json:"status" db:"status"`

	DebtDate time.Time  `json:"debt_date" db:"debt_date"`
	DueDate  *time.Time `json:"due_date,omitempty" db:"due_date"`
	Notes    string     `json:"notes,omitempty" db:"notes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Denormalized customer display fields, populated on reads.
	CustomerName  string `json:"customer_name,omitempty" db:"-"`
	CustomerPhone string `json:"customer_phone,omitempty" db:"-"`
}

// DeriveStatus computes the settlement status from the two derived amounts.
// A zero-value debt is trivially settled, so that branch is checked first.
func DeriveStatus(totalAmount, amountPaid float64) DebtStatus {
	switch {
	case totalAmount <= 0:
		return StatusPaid
	case amountPaid >= totalAmount:
		return StatusPaid
	case amountPaid > 0:
		return StatusPartiallyPaid
	default:
		return StatusUnpaid
	}
}

// Recalculate recomputes TotalAmount from the items, AmountPaid from the
// payment history, and Status from both. It must run after every mutation of
// Items or PaymentHistory; callers never set the derived fields directly.
func (d *DebtRecord) Recalculate() {
	total := 0.0
	for i := range d.Items {
		total += d.Items[i].LineTotal
	}
	d.TotalAmount = total

	paid := 0.0
	for i := range d.PaymentHistory {
		paid += d.PaymentHistory[i].Amount
	}
	d.AmountPaid = paid

	d.Status = DeriveStatus(d.TotalAmount, d.AmountPaid)
}
