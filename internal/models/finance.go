package models

import (
	"database/sql/driver"
	"strings"
	"time"
)

// FinanceKind discriminates the three finance record shapes. Every
// finance identifier carries its kind as a prefix (PAY-, INV-, PLAN-) so
// lookups dispatch on the parsed tag instead of probing each table.
type FinanceKind string

const (
	FinanceKindPayment     FinanceKind = "payment"
	FinanceKindInvoice     FinanceKind = "invoice"
	FinanceKindInstallment FinanceKind = "installment_plan"
)

// Finance ID prefixes.
const (
	PaymentIDPrefix     = "PAY-"
	InvoiceIDPrefix     = "INV-"
	InstallmentIDPrefix = "PLAN-"
)

// ParseFinanceKind extracts the kind tag from a finance identifier.
func ParseFinanceKind(id string) (FinanceKind, bool) {
	switch {
	case strings.HasPrefix(id, PaymentIDPrefix):
		return FinanceKindPayment, true
	case strings.HasPrefix(id, InvoiceIDPrefix):
		return FinanceKindInvoice, true
	case strings.HasPrefix(id, InstallmentIDPrefix):
		return FinanceKindInstallment, true
	default:
		return "", false
	}
}

// PaymentStatus is shared by payments and invoices.
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusOverdue PaymentStatus = "overdue"
)

// Valid reports whether the status is a supported value.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPaid, PaymentStatusPending, PaymentStatusOverdue:
		return true
	default:
		return false
	}
}

// Payment represents a received or expected payment.
type Payment struct {
	ID          string        `db:"id" json:"id"`
	StudentID   string        `db:"student_id" json:"student_id"`
	StudentName string        `db:"student_name" json:"student_name"`
	Amount      float64       `db:"amount" json:"amount"`
	Date        time.Time     `db:"date" json:"date"`
	Method      string        `db:"method" json:"method"`
	Status      PaymentStatus `db:"status" json:"status"`
	Description string        `db:"description" json:"description"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// InvoiceLine is one line item of an invoice.
type InvoiceLine struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// InvoiceLines is stored as an ordered jsonb list.
type InvoiceLines []InvoiceLine

func (l InvoiceLines) Value() (driver.Value, error) { return jsonValue(l) }
func (l *InvoiceLines) Scan(src interface{}) error  { return jsonScan(src, l) }

// Invoice represents an issued invoice. DueDate is never before Date.
type Invoice struct {
	ID          string        `db:"id" json:"id"`
	StudentID   string        `db:"student_id" json:"student_id"`
	StudentName string        `db:"student_name" json:"student_name"`
	Amount      float64       `db:"amount" json:"amount"`
	Date        time.Time     `db:"date" json:"date"`
	DueDate     time.Time     `db:"due_date" json:"due_date"`
	Status      PaymentStatus `db:"status" json:"status"`
	Lines       InvoiceLines  `db:"lines" json:"lines,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// InstallmentStatus is the lifecycle state of an installment plan.
type InstallmentStatus string

const (
	InstallmentStatusActive    InstallmentStatus = "active"
	InstallmentStatusCompleted InstallmentStatus = "completed"
	InstallmentStatusOverdue   InstallmentStatus = "overdue"
	InstallmentStatusDueSoon   InstallmentStatus = "due_soon"
)

// Valid reports whether the status is a supported value.
func (s InstallmentStatus) Valid() bool {
	switch s {
	case InstallmentStatusActive, InstallmentStatusCompleted, InstallmentStatusOverdue, InstallmentStatusDueSoon:
		return true
	default:
		return false
	}
}

// InstallmentPlan represents a tuition installment plan. The amounts obey
// total == paid + remaining.
type InstallmentPlan struct {
	ID               string            `db:"id" json:"id"`
	StudentID        string            `db:"student_id" json:"student_id"`
	StudentName      string            `db:"student_name" json:"student_name"`
	TotalAmount      float64           `db:"total_amount" json:"total_amount"`
	PaidAmount       float64           `db:"paid_amount" json:"paid_amount"`
	RemainingAmount  float64           `db:"remaining_amount" json:"remaining_amount"`
	InstallmentCount int               `db:"installment_count" json:"installment_count"`
	NextDueDate      *time.Time        `db:"next_due_date" json:"next_due_date,omitempty"`
	Status           InstallmentStatus `db:"status" json:"status"`
	CreatedAt        time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time         `db:"updated_at" json:"updated_at"`
}

// FinanceItem is the discriminated union returned by the finance
// resolver. Exactly one of the payload fields is set, matching Kind.
type FinanceItem struct {
	Kind        FinanceKind      `json:"kind"`
	Payment     *Payment         `json:"payment,omitempty"`
	Invoice     *Invoice         `json:"invoice,omitempty"`
	Installment *InstallmentPlan `json:"installment_plan,omitempty"`
}

// FinanceFilter captures filtering criteria shared by the finance lists.
type FinanceFilter struct {
	StudentID string
	Status    string
	Page      int
	PageSize  int
}
