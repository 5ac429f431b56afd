package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ecolehub/school-admin-api/internal/models"
)

const paymentColumns = `id, student_id, student_name, amount, date, method, status, description,
created_at, updated_at`

const invoiceColumns = `id, student_id, student_name, amount, date, due_date, status, lines,
created_at, updated_at`

const installmentColumns = `id, student_id, student_name, total_amount, paid_amount, remaining_amount,
installment_count, next_due_date, status, created_at, updated_at`

// FinanceRepository manages the three finance record shapes. Every
// identifier carries its kind prefix so one repository covers all three
// tables.
type FinanceRepository struct {
	db *sqlx.DB
}

// NewFinanceRepository constructs a FinanceRepository.
func NewFinanceRepository(db *sqlx.DB) *FinanceRepository {
	return &FinanceRepository{db: db}
}

func financeWhere(filter models.FinanceFilter) (string, []interface{}) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.StudentID != "" {
		where = append(where, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	return strings.Join(where, " AND "), args
}

func financePage(filter models.FinanceFilter) (int, int) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return size, (page - 1) * size
}

// ListPayments returns payments matching the filters, in insertion order.
func (r *FinanceRepository) ListPayments(ctx context.Context, filter models.FinanceFilter) ([]models.Payment, int, error) {
	whereClause, args := financeWhere(filter)
	size, offset := financePage(filter)

	query := fmt.Sprintf(`SELECT %s FROM payments WHERE %s ORDER BY created_at ASC, id ASC LIMIT %d OFFSET %d`,
		paymentColumns, whereClause, size, offset)
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM payments WHERE %s", whereClause), args...); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}
	return payments, total, nil
}

// ListInvoices returns invoices matching the filters, in insertion order.
func (r *FinanceRepository) ListInvoices(ctx context.Context, filter models.FinanceFilter) ([]models.Invoice, int, error) {
	whereClause, args := financeWhere(filter)
	size, offset := financePage(filter)

	query := fmt.Sprintf(`SELECT %s FROM invoices WHERE %s ORDER BY created_at ASC, id ASC LIMIT %d OFFSET %d`,
		invoiceColumns, whereClause, size, offset)
	var invoices []models.Invoice
	if err := r.db.SelectContext(ctx, &invoices, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM invoices WHERE %s", whereClause), args...); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}
	return invoices, total, nil
}

// ListInstallmentPlans returns plans matching the filters, in insertion
// order.
func (r *FinanceRepository) ListInstallmentPlans(ctx context.Context, filter models.FinanceFilter) ([]models.InstallmentPlan, int, error) {
	whereClause, args := financeWhere(filter)
	size, offset := financePage(filter)

	query := fmt.Sprintf(`SELECT %s FROM installment_plans WHERE %s ORDER BY created_at ASC, id ASC LIMIT %d OFFSET %d`,
		installmentColumns, whereClause, size, offset)
	var plans []models.InstallmentPlan
	if err := r.db.SelectContext(ctx, &plans, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list installment plans: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM installment_plans WHERE %s", whereClause), args...); err != nil {
		return nil, 0, fmt.Errorf("count installment plans: %w", err)
	}
	return plans, total, nil
}

// FindPaymentByID fetches one payment.
func (r *FinanceRepository) FindPaymentByID(ctx context.Context, id string) (*models.Payment, error) {
	query := fmt.Sprintf("SELECT %s FROM payments WHERE id = $1", paymentColumns)
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		return nil, err
	}
	return &payment, nil
}

// FindInvoiceByID fetches one invoice.
func (r *FinanceRepository) FindInvoiceByID(ctx context.Context, id string) (*models.Invoice, error) {
	query := fmt.Sprintf("SELECT %s FROM invoices WHERE id = $1", invoiceColumns)
	var invoice models.Invoice
	if err := r.db.GetContext(ctx, &invoice, query, id); err != nil {
		return nil, err
	}
	return &invoice, nil
}

// FindInstallmentPlanByID fetches one installment plan.
func (r *FinanceRepository) FindInstallmentPlanByID(ctx context.Context, id string) (*models.InstallmentPlan, error) {
	query := fmt.Sprintf("SELECT %s FROM installment_plans WHERE id = $1", installmentColumns)
	var plan models.InstallmentPlan
	if err := r.db.GetContext(ctx, &plan, query, id); err != nil {
		return nil, err
	}
	return &plan, nil
}

// CreatePayment inserts a new payment with a prefixed identifier.
func (r *FinanceRepository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = models.PaymentIDPrefix + uuid.NewString()
	}
	now := time.Now().UTC()
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now
	}
	payment.UpdatedAt = now
	const query = `INSERT INTO payments (id, student_id, student_name, amount, date, method, status,
description, created_at, updated_at)
VALUES (:id, :student_id, :student_name, :amount, :date, :method, :status,
:description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// CreateInvoice inserts a new invoice with a prefixed identifier.
func (r *FinanceRepository) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = models.InvoiceIDPrefix + uuid.NewString()
	}
	now := time.Now().UTC()
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = now
	}
	invoice.UpdatedAt = now
	const query = `INSERT INTO invoices (id, student_id, student_name, amount, date, due_date, status,
lines, created_at, updated_at)
VALUES (:id, :student_id, :student_name, :amount, :date, :due_date, :status,
:lines, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, invoice); err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}
	return nil
}

// CreateInstallmentPlan inserts a new plan with a prefixed identifier.
func (r *FinanceRepository) CreateInstallmentPlan(ctx context.Context, plan *models.InstallmentPlan) error {
	if plan.ID == "" {
		plan.ID = models.InstallmentIDPrefix + uuid.NewString()
	}
	now := time.Now().UTC()
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = now
	}
	plan.UpdatedAt = now
	const query = `INSERT INTO installment_plans (id, student_id, student_name, total_amount, paid_amount,
remaining_amount, installment_count, next_due_date, status, created_at, updated_at)
VALUES (:id, :student_id, :student_name, :total_amount, :paid_amount,
:remaining_amount, :installment_count, :next_due_date, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, plan); err != nil {
		return fmt.Errorf("create installment plan: %w", err)
	}
	return nil
}

// UpdatePayment persists the full merged payment row.
func (r *FinanceRepository) UpdatePayment(ctx context.Context, payment *models.Payment) error {
	payment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE payments SET student_id = :student_id, student_name = :student_name,
amount = :amount, date = :date, method = :method, status = :status,
description = :description, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	return nil
}

// UpdateInvoice persists the full merged invoice row.
func (r *FinanceRepository) UpdateInvoice(ctx context.Context, invoice *models.Invoice) error {
	invoice.UpdatedAt = time.Now().UTC()
	const query = `UPDATE invoices SET student_id = :student_id, student_name = :student_name,
amount = :amount, date = :date, due_date = :due_date, status = :status,
lines = :lines, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, invoice); err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}

// UpdateInstallmentPlan persists the full merged plan row.
func (r *FinanceRepository) UpdateInstallmentPlan(ctx context.Context, plan *models.InstallmentPlan) error {
	plan.UpdatedAt = time.Now().UTC()
	const query = `UPDATE installment_plans SET student_id = :student_id, student_name = :student_name,
total_amount = :total_amount, paid_amount = :paid_amount, remaining_amount = :remaining_amount,
installment_count = :installment_count, next_due_date = :next_due_date, status = :status,
updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, plan); err != nil {
		return fmt.Errorf("update installment plan: %w", err)
	}
	return nil
}

func (r *FinanceRepository) deleteFrom(ctx context.Context, table, id string) error {
	res, err := r.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete from %s result: %w", table, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeletePayment removes one payment. sql.ErrNoRows signals an unknown ID.
func (r *FinanceRepository) DeletePayment(ctx context.Context, id string) error {
	return r.deleteFrom(ctx, "payments", id)
}

// DeleteInvoice removes one invoice. sql.ErrNoRows signals an unknown ID.
func (r *FinanceRepository) DeleteInvoice(ctx context.Context, id string) error {
	return r.deleteFrom(ctx, "invoices", id)
}

// DeleteInstallmentPlan removes one plan. sql.ErrNoRows signals an
// unknown ID.
func (r *FinanceRepository) DeleteInstallmentPlan(ctx context.Context, id string) error {
	return r.deleteFrom(ctx, "installment_plans", id)
}
