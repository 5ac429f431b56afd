package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecolehub/school-admin-api/internal/models"
	appErrors "github.com/ecolehub/school-admin-api/pkg/errors"
)

type mockFinanceRepo struct {
	payments map[string]*models.Payment
	invoices map[string]*models.Invoice
	plans    map[string]*models.InstallmentPlan
}

func newMockFinanceRepo() *mockFinanceRepo {
	return &mockFinanceRepo{
		payments: make(map[string]*models.Payment),
		invoices: make(map[string]*models.Invoice),
		plans:    make(map[string]*models.InstallmentPlan),
	}
}

func (m *mockFinanceRepo) ListPayments(ctx context.Context, filter models.FinanceFilter) ([]models.Payment, int, error) {
	var out []models.Payment
	for _, p := range m.payments {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *mockFinanceRepo) ListInvoices(ctx context.Context, filter models.FinanceFilter) ([]models.Invoice, int, error) {
	var out []models.Invoice
	for _, inv := range m.invoices {
		out = append(out, *inv)
	}
	return out, len(out), nil
}

func (m *mockFinanceRepo) ListInstallmentPlans(ctx context.Context, filter models.FinanceFilter) ([]models.InstallmentPlan, int, error) {
	var out []models.InstallmentPlan
	for _, p := range m.plans {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *mockFinanceRepo) FindPaymentByID(ctx context.Context, id string) (*models.Payment, error) {
	if p, ok := m.payments[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockFinanceRepo) FindInvoiceByID(ctx context.Context, id string) (*models.Invoice, error) {
	if inv, ok := m.invoices[id]; ok {
		cp := *inv
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockFinanceRepo) FindInstallmentPlanByID(ctx context.Context, id string) (*models.InstallmentPlan, error) {
	if p, ok := m.plans[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockFinanceRepo) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = models.PaymentIDPrefix + "fixed"
	}
	cp := *payment
	m.payments[payment.ID] = &cp
	return nil
}

func (m *mockFinanceRepo) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = models.InvoiceIDPrefix + "fixed"
	}
	cp := *invoice
	m.invoices[invoice.ID] = &cp
	return nil
}

func (m *mockFinanceRepo) CreateInstallmentPlan(ctx context.Context, plan *models.InstallmentPlan) error {
	if plan.ID == "" {
		plan.ID = models.InstallmentIDPrefix + "fixed"
	}
	cp := *plan
	m.plans[plan.ID] = &cp
	return nil
}

func (m *mockFinanceRepo) UpdatePayment(ctx context.Context, payment *models.Payment) error {
	cp := *payment
	m.payments[payment.ID] = &cp
	return nil
}

func (m *mockFinanceRepo) UpdateInvoice(ctx context.Context, invoice *models.Invoice) error {
	cp := *invoice
	m.invoices[invoice.ID] = &cp
	return nil
}

func (m *mockFinanceRepo) UpdateInstallmentPlan(ctx context.Context, plan *models.InstallmentPlan) error {
	cp := *plan
	m.plans[plan.ID] = &cp
	return nil
}

func (m *mockFinanceRepo) DeletePayment(ctx context.Context, id string) error {
	if _, ok := m.payments[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.payments, id)
	return nil
}

func (m *mockFinanceRepo) DeleteInvoice(ctx context.Context, id string) error {
	if _, ok := m.invoices[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.invoices, id)
	return nil
}

func (m *mockFinanceRepo) DeleteInstallmentPlan(ctx context.Context, id string) error {
	if _, ok := m.plans[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.plans, id)
	return nil
}

func newFinanceFixture() (*FinanceService, *mockFinanceRepo) {
	repo := newMockFinanceRepo()
	students := &mockStudentReader{students: map[string]*models.Student{"stu-1": seedStudent()}}
	return NewFinanceService(repo, students, nil, nil), repo
}

func TestFinanceServiceResolveItemDispatchesByPrefix(t *testing.T) {
	svc, repo := newFinanceFixture()
	repo.payments["PAY-1"] = &models.Payment{ID: "PAY-1", StudentID: "stu-1", Amount: 100}
	repo.invoices["INV-1"] = &models.Invoice{ID: "INV-1", StudentID: "stu-1", Amount: 250}
	repo.plans["PLAN-1"] = &models.InstallmentPlan{ID: "PLAN-1", StudentID: "stu-1", TotalAmount: 900}

	item, err := svc.ResolveItem(context.Background(), "PAY-1")
	require.NoError(t, err)
	require.NotNil(t, item.Payment)
	assert.Equal(t, models.FinanceKindPayment, item.Kind)

	item, err = svc.ResolveItem(context.Background(), "INV-1")
	require.NoError(t, err)
	require.NotNil(t, item.Invoice)
	assert.Equal(t, models.FinanceKindInvoice, item.Kind)

	item, err = svc.ResolveItem(context.Background(), "PLAN-1")
	require.NoError(t, err)
	require.NotNil(t, item.Installment)
	assert.Equal(t, models.FinanceKindInstallment, item.Kind)
}

func TestFinanceServiceResolveItemUnknownPrefix(t *testing.T) {
	svc, _ := newFinanceFixture()

	_, err := svc.ResolveItem(context.Background(), "TXN-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Fields["id"], "prefix")
}

func TestFinanceServiceCreatePaymentDenormalizesStudentName(t *testing.T) {
	svc, _ := newFinanceFixture()

	payment, err := svc.CreatePayment(context.Background(), CreatePaymentRequest{
		StudentID: "stu-1",
		Amount:    150,
		Date:      time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		Method:    "bank_transfer",
		Status:    "paid",
	})
	require.NoError(t, err)
	assert.Equal(t, seedStudent().FullName, payment.StudentName)
}

func TestFinanceServiceCreatePaymentUnknownStudent(t *testing.T) {
	svc, _ := newFinanceFixture()

	_, err := svc.CreatePayment(context.Background(), CreatePaymentRequest{
		StudentID: "stu-missing",
		Amount:    150,
		Date:      time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		Method:    "cash",
		Status:    "paid",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrStaleReference.Code, appErr.Code)
}

func TestFinanceServiceCreateInvoiceRejectsDueBeforeIssue(t *testing.T) {
	svc, _ := newFinanceFixture()

	issued := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	_, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		StudentID: "stu-1",
		Amount:    200,
		Date:      issued,
		DueDate:   issued.AddDate(0, 0, -1),
		Status:    "pending",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, "must not be before date", appErr.Fields["due_date"])
}

func TestFinanceServiceInstallmentPlanDerivesRemaining(t *testing.T) {
	svc, _ := newFinanceFixture()

	plan, err := svc.CreateInstallmentPlan(context.Background(), CreateInstallmentPlanRequest{
		StudentID:        "stu-1",
		TotalAmount:      900,
		PaidAmount:       300,
		InstallmentCount: 3,
		Status:           "active",
	})
	require.NoError(t, err)
	assert.Equal(t, 600.0, plan.RemainingAmount)

	paid := 900.0
	updated, err := svc.UpdateInstallmentPlan(context.Background(), plan.ID, UpdateInstallmentPlanRequest{PaidAmount: &paid})
	require.NoError(t, err)
	assert.Equal(t, 0.0, updated.RemainingAmount)
}

func TestFinanceServiceInstallmentPlanRejectsOverpayment(t *testing.T) {
	svc, _ := newFinanceFixture()

	_, err := svc.CreateInstallmentPlan(context.Background(), CreateInstallmentPlanRequest{
		StudentID:        "stu-1",
		TotalAmount:      900,
		PaidAmount:       1000,
		InstallmentCount: 3,
		Status:           "active",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, "cannot exceed total amount", appErr.Fields["paid_amount"])
}

func TestFinanceServiceDeleteItemByPrefix(t *testing.T) {
	svc, repo := newFinanceFixture()
	repo.plans["PLAN-1"] = &models.InstallmentPlan{ID: "PLAN-1", StudentID: "stu-1"}

	require.NoError(t, svc.DeleteItem(context.Background(), "PLAN-1"))

	err := svc.DeleteItem(context.Background(), "PLAN-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
