package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/ecolehub/school-admin-api/internal/models"
	"github.com/ecolehub/school-admin-api/internal/service"
)

type financeRepoStub struct {
	payments map[string]*models.Payment
}

func (m *financeRepoStub) ListPayments(ctx context.Context, filter models.FinanceFilter) ([]models.Payment, int, error) {
	return nil, 0, nil
}

func (m *financeRepoStub) ListInvoices(ctx context.Context, filter models.FinanceFilter) ([]models.Invoice, int, error) {
	return nil, 0, nil
}

func (m *financeRepoStub) ListInstallmentPlans(ctx context.Context, filter models.FinanceFilter) ([]models.InstallmentPlan, int, error) {
	return nil, 0, nil
}

func (m *financeRepoStub) FindPaymentByID(ctx context.Context, id string) (*models.Payment, error) {
	if p, ok := m.payments[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *financeRepoStub) FindInvoiceByID(ctx context.Context, id string) (*models.Invoice, error) {
	return nil, sql.ErrNoRows
}

func (m *financeRepoStub) FindInstallmentPlanByID(ctx context.Context, id string) (*models.InstallmentPlan, error) {
	return nil, sql.ErrNoRows
}

func (m *financeRepoStub) CreatePayment(ctx context.Context, payment *models.Payment) error { return nil }
func (m *financeRepoStub) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	return nil
}
func (m *financeRepoStub) CreateInstallmentPlan(ctx context.Context, plan *models.InstallmentPlan) error {
	return nil
}
func (m *financeRepoStub) UpdatePayment(ctx context.Context, payment *models.Payment) error { return nil }
func (m *financeRepoStub) UpdateInvoice(ctx context.Context, invoice *models.Invoice) error {
	return nil
}
func (m *financeRepoStub) UpdateInstallmentPlan(ctx context.Context, plan *models.InstallmentPlan) error {
	return nil
}
func (m *financeRepoStub) DeletePayment(ctx context.Context, id string) error { return nil }
func (m *financeRepoStub) DeleteInvoice(ctx context.Context, id string) error { return nil }
func (m *financeRepoStub) DeleteInstallmentPlan(ctx context.Context, id string) error {
	return nil
}

type studentReaderStub struct{}

func (studentReaderStub) FindByID(ctx context.Context, id string) (*models.Student, error) {
	return nil, sql.ErrNoRows
}

func TestFinanceHandlerGetItemPrefixDispatch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &financeRepoStub{payments: map[string]*models.Payment{
		"PAY-1": {ID: "PAY-1", StudentID: "stu-1", Amount: 120},
	}}
	handler := NewFinanceHandler(service.NewFinanceService(repo, studentReaderStub{}, nil, nil))

	router := gin.New()
	router.GET("/finance/items/:id", handler.GetItem)

	t.Run("payment found", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/finance/items/PAY-1", nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"kind":"payment"`)
	})

	t.Run("unknown prefix rejected", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/finance/items/TXN-9", nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		require.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("missing invoice returns 404", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/finance/items/INV-9", nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		require.Equal(t, http.StatusNotFound, resp.Code)
	})
}
