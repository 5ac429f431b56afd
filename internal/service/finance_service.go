package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ecolehub/school-admin-api/internal/models"
	appErrors "github.com/ecolehub/school-admin-api/pkg/errors"
)

type financeRepository interface {
	ListPayments(ctx context.Context, filter models.FinanceFilter) ([]models.Payment, int, error)
	ListInvoices(ctx context.Context, filter models.FinanceFilter) ([]models.Invoice, int, error)
	ListInstallmentPlans(ctx context.Context, filter models.FinanceFilter) ([]models.InstallmentPlan, int, error)
	FindPaymentByID(ctx context.Context, id string) (*models.Payment, error)
	FindInvoiceByID(ctx context.Context, id string) (*models.Invoice, error)
	FindInstallmentPlanByID(ctx context.Context, id string) (*models.InstallmentPlan, error)
	CreatePayment(ctx context.Context, payment *models.Payment) error
	CreateInvoice(ctx context.Context, invoice *models.Invoice) error
	CreateInstallmentPlan(ctx context.Context, plan *models.InstallmentPlan) error
	UpdatePayment(ctx context.Context, payment *models.Payment) error
	UpdateInvoice(ctx context.Context, invoice *models.Invoice) error
	UpdateInstallmentPlan(ctx context.Context, plan *models.InstallmentPlan) error
	DeletePayment(ctx context.Context, id string) error
	DeleteInvoice(ctx context.Context, id string) error
	DeleteInstallmentPlan(ctx context.Context, id string) error
}

// CreatePaymentRequest holds payload for recording payments.
type CreatePaymentRequest struct {
	StudentID   string    `json:"student_id" validate:"required"`
	Amount      float64   `json:"amount" validate:"gt=0"`
	Date        time.Time `json:"date" validate:"required"`
	Method      string    `json:"method" validate:"required"`
	Status      string    `json:"status" validate:"required"`
	Description string    `json:"description"`
}

// UpdatePaymentRequest holds a partial payment update.
type UpdatePaymentRequest struct {
	Amount      *float64   `json:"amount"`
	Date        *time.Time `json:"date"`
	Method      *string    `json:"method"`
	Status      *string    `json:"status"`
	Description *string    `json:"description"`
}

// CreateInvoiceRequest holds payload for issuing invoices.
type CreateInvoiceRequest struct {
	StudentID string               `json:"student_id" validate:"required"`
	Amount    float64              `json:"amount" validate:"gt=0"`
	Date      time.Time            `json:"date" validate:"required"`
	DueDate   time.Time            `json:"due_date" validate:"required"`
	Status    string               `json:"status" validate:"required"`
	Lines     []models.InvoiceLine `json:"lines"`
}

// UpdateInvoiceRequest holds a partial invoice update.
type UpdateInvoiceRequest struct {
	Amount  *float64             `json:"amount"`
	Date    *time.Time           `json:"date"`
	DueDate *time.Time           `json:"due_date"`
	Status  *string              `json:"status"`
	Lines   []models.InvoiceLine `json:"lines"`
}

// CreateInstallmentPlanRequest holds payload for opening installment
// plans. The remaining amount is derived from total and paid.
type CreateInstallmentPlanRequest struct {
	StudentID        string     `json:"student_id" validate:"required"`
	TotalAmount      float64    `json:"total_amount" validate:"gt=0"`
	PaidAmount       float64    `json:"paid_amount" validate:"gte=0"`
	InstallmentCount int        `json:"installment_count" validate:"gt=0"`
	NextDueDate      *time.Time `json:"next_due_date"`
	Status           string     `json:"status" validate:"required"`
}

// UpdateInstallmentPlanRequest holds a partial plan update.
type UpdateInstallmentPlanRequest struct {
	TotalAmount      *float64   `json:"total_amount"`
	PaidAmount       *float64   `json:"paid_amount"`
	InstallmentCount *int       `json:"installment_count"`
	NextDueDate      *time.Time `json:"next_due_date"`
	Status           *string    `json:"status"`
}

// FinanceService handles the three finance record shapes and resolves
// mixed identifiers through their kind prefix.
type FinanceService struct {
	repo      financeRepository
	students  studentReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFinanceService constructs the finance service.
func NewFinanceService(repo financeRepository, students studentReader, validate *validator.Validate, logger *zap.Logger) *FinanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FinanceService{repo: repo, students: students, validator: validate, logger: logger}
}

func (s *FinanceService) resolveStudent(ctx context.Context, studentID string) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrStaleReference, "student not found: "+studentID)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student")
	}
	return student, nil
}

// ListPayments returns payments and pagination metadata.
func (s *FinanceService) ListPayments(ctx context.Context, filter models.FinanceFilter) ([]models.Payment, *models.Pagination, error) {
	payments, total, err := s.repo.ListPayments(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	return payments, paginationFor(filter.Page, filter.PageSize, total), nil
}

// ListInvoices returns invoices and pagination metadata.
func (s *FinanceService) ListInvoices(ctx context.Context, filter models.FinanceFilter) ([]models.Invoice, *models.Pagination, error) {
	invoices, total, err := s.repo.ListInvoices(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list invoices")
	}
	return invoices, paginationFor(filter.Page, filter.PageSize, total), nil
}

// ListInstallmentPlans returns plans and pagination metadata.
func (s *FinanceService) ListInstallmentPlans(ctx context.Context, filter models.FinanceFilter) ([]models.InstallmentPlan, *models.Pagination, error) {
	plans, total, err := s.repo.ListInstallmentPlans(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list installment plans")
	}
	return plans, paginationFor(filter.Page, filter.PageSize, total), nil
}

// ResolveItem looks up any finance record by its prefixed identifier and
// returns it wrapped in the discriminated union.
func (s *FinanceService) ResolveItem(ctx context.Context, id string) (*models.FinanceItem, error) {
	kind, ok := models.ParseFinanceKind(id)
	if !ok {
		return nil, appErrors.FieldViolation("id", "must carry a PAY-, INV- or PLAN- prefix")
	}
	switch kind {
	case models.FinanceKindPayment:
		payment, err := s.GetPayment(ctx, id)
		if err != nil {
			return nil, err
		}
		return &models.FinanceItem{Kind: kind, Payment: payment}, nil
	case models.FinanceKindInvoice:
		invoice, err := s.GetInvoice(ctx, id)
		if err != nil {
			return nil, err
		}
		return &models.FinanceItem{Kind: kind, Invoice: invoice}, nil
	default:
		plan, err := s.GetInstallmentPlan(ctx, id)
		if err != nil {
			return nil, err
		}
		return &models.FinanceItem{Kind: kind, Installment: plan}, nil
	}
}

// GetPayment returns one payment by identifier.
func (s *FinanceService) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := s.repo.FindPaymentByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	return payment, nil
}

// GetInvoice returns one invoice by identifier.
func (s *FinanceService) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	invoice, err := s.repo.FindInvoiceByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "invoice not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load invoice")
	}
	return invoice, nil
}

// GetInstallmentPlan returns one plan by identifier.
func (s *FinanceService) GetInstallmentPlan(ctx context.Context, id string) (*models.InstallmentPlan, error) {
	plan, err := s.repo.FindInstallmentPlanByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "installment plan not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load installment plan")
	}
	return plan, nil
}

// CreatePayment records a new payment.
func (s *FinanceService) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	status := models.PaymentStatus(req.Status)
	if !status.Valid() {
		return nil, appErrors.FieldViolation("status", "must be one of paid, pending, overdue")
	}
	student, err := s.resolveStudent(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		StudentID:   student.ID,
		StudentName: student.FullName,
		Amount:      req.Amount,
		Date:        req.Date,
		Method:      req.Method,
		Status:      status,
		Description: req.Description,
	}
	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create payment")
	}
	return payment, nil
}

// CreateInvoice issues a new invoice. The due date never precedes the
// issue date.
func (s *FinanceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*models.Invoice, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid invoice payload")
	}
	status := models.PaymentStatus(req.Status)
	if !status.Valid() {
		return nil, appErrors.FieldViolation("status", "must be one of paid, pending, overdue")
	}
	if req.DueDate.Before(req.Date) {
		return nil, appErrors.FieldViolation("due_date", "must not be before date")
	}
	student, err := s.resolveStudent(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}

	invoice := &models.Invoice{
		StudentID:   student.ID,
		StudentName: student.FullName,
		Amount:      req.Amount,
		Date:        req.Date,
		DueDate:     req.DueDate,
		Status:      status,
		Lines:       req.Lines,
	}
	if err := s.repo.CreateInvoice(ctx, invoice); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create invoice")
	}
	return invoice, nil
}

// CreateInstallmentPlan opens a new plan. The remaining amount is derived
// so that total always equals paid plus remaining.
func (s *FinanceService) CreateInstallmentPlan(ctx context.Context, req CreateInstallmentPlanRequest) (*models.InstallmentPlan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid installment plan payload")
	}
	status := models.InstallmentStatus(req.Status)
	if !status.Valid() {
		return nil, appErrors.FieldViolation("status", "must be one of active, completed, overdue, due_soon")
	}
	if req.PaidAmount > req.TotalAmount {
		return nil, appErrors.FieldViolation("paid_amount", "cannot exceed total amount")
	}
	student, err := s.resolveStudent(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}

	plan := &models.InstallmentPlan{
		StudentID:        student.ID,
		StudentName:      student.FullName,
		TotalAmount:      req.TotalAmount,
		PaidAmount:       req.PaidAmount,
		RemainingAmount:  req.TotalAmount - req.PaidAmount,
		InstallmentCount: req.InstallmentCount,
		NextDueDate:      req.NextDueDate,
		Status:           status,
	}
	if err := s.repo.CreateInstallmentPlan(ctx, plan); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create installment plan")
	}
	return plan, nil
}

// UpdatePayment merges the request into the stored payment.
func (s *FinanceService) UpdatePayment(ctx context.Context, id string, req UpdatePaymentRequest) (*models.Payment, error) {
	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			return nil, appErrors.FieldViolation("amount", "must be positive")
		}
		payment.Amount = *req.Amount
	}
	if req.Date != nil {
		payment.Date = *req.Date
	}
	if req.Method != nil {
		payment.Method = *req.Method
	}
	if req.Status != nil {
		status := models.PaymentStatus(*req.Status)
		if !status.Valid() {
			return nil, appErrors.FieldViolation("status", "must be one of paid, pending, overdue")
		}
		payment.Status = status
	}
	if req.Description != nil {
		payment.Description = *req.Description
	}
	if err := s.repo.UpdatePayment(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update payment")
	}
	return payment, nil
}

// UpdateInvoice merges the request into the stored invoice.
func (s *FinanceService) UpdateInvoice(ctx context.Context, id string, req UpdateInvoiceRequest) (*models.Invoice, error) {
	invoice, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			return nil, appErrors.FieldViolation("amount", "must be positive")
		}
		invoice.Amount = *req.Amount
	}
	if req.Date != nil {
		invoice.Date = *req.Date
	}
	if req.DueDate != nil {
		invoice.DueDate = *req.DueDate
	}
	if req.Status != nil {
		status := models.PaymentStatus(*req.Status)
		if !status.Valid() {
			return nil, appErrors.FieldViolation("status", "must be one of paid, pending, overdue")
		}
		invoice.Status = status
	}
	if req.Lines != nil {
		invoice.Lines = req.Lines
	}
	if invoice.DueDate.Before(invoice.Date) {
		return nil, appErrors.FieldViolation("due_date", "must not be before date")
	}
	if err := s.repo.UpdateInvoice(ctx, invoice); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update invoice")
	}
	return invoice, nil
}

// UpdateInstallmentPlan merges the request into the stored plan and
// re-derives the remaining amount.
func (s *FinanceService) UpdateInstallmentPlan(ctx context.Context, id string, req UpdateInstallmentPlanRequest) (*models.InstallmentPlan, error) {
	plan, err := s.GetInstallmentPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.TotalAmount != nil {
		if *req.TotalAmount <= 0 {
			return nil, appErrors.FieldViolation("total_amount", "must be positive")
		}
		plan.TotalAmount = *req.TotalAmount
	}
	if req.PaidAmount != nil {
		if *req.PaidAmount < 0 {
			return nil, appErrors.FieldViolation("paid_amount", "must not be negative")
		}
		plan.PaidAmount = *req.PaidAmount
	}
	if plan.PaidAmount > plan.TotalAmount {
		return nil, appErrors.FieldViolation("paid_amount", "cannot exceed total amount")
	}
	plan.RemainingAmount = plan.TotalAmount - plan.PaidAmount
	if req.InstallmentCount != nil {
		if *req.InstallmentCount <= 0 {
			return nil, appErrors.FieldViolation("installment_count", "must be positive")
		}
		plan.InstallmentCount = *req.InstallmentCount
	}
	if req.NextDueDate != nil {
		plan.NextDueDate = req.NextDueDate
	}
	if req.Status != nil {
		status := models.InstallmentStatus(*req.Status)
		if !status.Valid() {
			return nil, appErrors.FieldViolation("status", "must be one of active, completed, overdue, due_soon")
		}
		plan.Status = status
	}
	if err := s.repo.UpdateInstallmentPlan(ctx, plan); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update installment plan")
	}
	return plan, nil
}

// DeleteItem removes any finance record through its prefixed identifier.
func (s *FinanceService) DeleteItem(ctx context.Context, id string) error {
	kind, ok := models.ParseFinanceKind(id)
	if !ok {
		return appErrors.FieldViolation("id", "must carry a PAY-, INV- or PLAN- prefix")
	}
	var err error
	var label string
	switch kind {
	case models.FinanceKindPayment:
		err = s.repo.DeletePayment(ctx, id)
		label = "payment"
	case models.FinanceKindInvoice:
		err = s.repo.DeleteInvoice(ctx, id)
		label = "invoice"
	default:
		err = s.repo.DeleteInstallmentPlan(ctx, id)
		label = "installment plan"
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, label+" not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete "+label)
	}
	return nil
}
