package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ecolehub/school-admin-api/internal/models"
	"github.com/ecolehub/school-admin-api/internal/service"
	appErrors "github.com/ecolehub/school-admin-api/pkg/errors"
	"github.com/ecolehub/school-admin-api/pkg/response"
)

// FinanceHandler exposes payment, invoice and installment plan
// endpoints plus prefix-dispatched item lookups.
type FinanceHandler struct {
	finance *service.FinanceService
}

// NewFinanceHandler constructs FinanceHandler.
func NewFinanceHandler(finance *service.FinanceService) *FinanceHandler {
	return &FinanceHandler{finance: finance}
}

func financeFilterFromQuery(c *gin.Context) models.FinanceFilter {
	var filter models.FinanceFilter
	filter.StudentID = c.Query("studentId")
	filter.Status = c.Query("status")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	return filter
}

// ListPayments godoc
// @Summary List payments
// @Tags Finance
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /finance/payments [get]
func (h *FinanceHandler) ListPayments(c *gin.Context) {
	payments, pagination, err := h.finance.ListPayments(c.Request.Context(), financeFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, pagination)
}

// CreatePayment godoc
// @Summary Record payment
// @Tags Finance
// @Accept json
// @Produce json
// @Param payload body service.CreatePaymentRequest true "Payment payload"
// @Success 201 {object} response.Envelope
// @Router /finance/payments [post]
func (h *FinanceHandler) CreatePayment(c *gin.Context) {
	var req service.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	payment, err := h.finance.CreatePayment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payment)
}

// UpdatePayment godoc
// @Summary Update payment
// @Tags Finance
// @Accept json
// @Produce json
// @Param id path string true "Payment ID"
// @Param payload body service.UpdatePaymentRequest true "Payment payload"
// @Success 200 {object} response.Envelope
// @Router /finance/payments/{id} [patch]
func (h *FinanceHandler) UpdatePayment(c *gin.Context) {
	var req service.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	payment, err := h.finance.UpdatePayment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment, nil)
}

// ListInvoices godoc
// @Summary List invoices
// @Tags Finance
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /finance/invoices [get]
func (h *FinanceHandler) ListInvoices(c *gin.Context) {
	invoices, pagination, err := h.finance.ListInvoices(c.Request.Context(), financeFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invoices, pagination)
}

// CreateInvoice godoc
// @Summary Issue invoice
// @Tags Finance
// @Accept json
// @Produce json
// @Param payload body service.CreateInvoiceRequest true "Invoice payload"
// @Success 201 {object} response.Envelope
// @Router /finance/invoices [post]
func (h *FinanceHandler) CreateInvoice(c *gin.Context) {
	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	invoice, err := h.finance.CreateInvoice(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, invoice)
}

// UpdateInvoice godoc
// @Summary Update invoice
// @Tags Finance
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param payload body service.UpdateInvoiceRequest true "Invoice payload"
// @Success 200 {object} response.Envelope
// @Router /finance/invoices/{id} [patch]
func (h *FinanceHandler) UpdateInvoice(c *gin.Context) {
	var req service.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	invoice, err := h.finance.UpdateInvoice(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invoice, nil)
}

// ListInstallmentPlans godoc
// @Summary List installment plans
// @Tags Finance
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /finance/installment-plans [get]
func (h *FinanceHandler) ListInstallmentPlans(c *gin.Context) {
	plans, pagination, err := h.finance.ListInstallmentPlans(c.Request.Context(), financeFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plans, pagination)
}

// CreateInstallmentPlan godoc
// @Summary Open installment plan
// @Tags Finance
// @Accept json
// @Produce json
// @Param payload body service.CreateInstallmentPlanRequest true "Plan payload"
// @Success 201 {object} response.Envelope
// @Router /finance/installment-plans [post]
func (h *FinanceHandler) CreateInstallmentPlan(c *gin.Context) {
	var req service.CreateInstallmentPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	plan, err := h.finance.CreateInstallmentPlan(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, plan)
}

// UpdateInstallmentPlan godoc
// @Summary Update installment plan
// @Tags Finance
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Param payload body service.UpdateInstallmentPlanRequest true "Plan payload"
// @Success 200 {object} response.Envelope
// @Router /finance/installment-plans/{id} [patch]
func (h *FinanceHandler) UpdateInstallmentPlan(c *gin.Context) {
	var req service.UpdateInstallmentPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	plan, err := h.finance.UpdateInstallmentPlan(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}

// GetItem godoc
// @Summary Resolve a finance record by prefixed identifier
// @Description The record kind is derived from the PAY-, INV- or PLAN- prefix.
// @Tags Finance
// @Produce json
// @Param id path string true "Prefixed finance ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /finance/items/{id} [get]
func (h *FinanceHandler) GetItem(c *gin.Context) {
	item, err := h.finance.ResolveItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// DeleteItem godoc
// @Summary Delete a finance record by prefixed identifier
// @Tags Finance
// @Produce json
// @Param id path string true "Prefixed finance ID"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Router /finance/items/{id} [delete]
func (h *FinanceHandler) DeleteItem(c *gin.Context) {
	if err := h.finance.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
