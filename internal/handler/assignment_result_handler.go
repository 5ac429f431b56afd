package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecolehub/school-admin-api/internal/service"
	appErrors "github.com/ecolehub/school-admin-api/pkg/errors"
	"github.com/ecolehub/school-admin-api/pkg/response"
)

// AssignmentResultHandler exposes per-student grading endpoints.
type AssignmentResultHandler struct {
	results *service.AssignmentResultService
}

// NewAssignmentResultHandler constructs AssignmentResultHandler.
func NewAssignmentResultHandler(results *service.AssignmentResultService) *AssignmentResultHandler {
	return &AssignmentResultHandler{results: results}
}

// List godoc
// @Summary List results for an assignment
// @Tags AssignmentResults
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/results [get]
func (h *AssignmentResultHandler) List(c *gin.Context) {
	results, err := h.results.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

// Get godoc
// @Summary Get one student's result
// @Tags AssignmentResults
// @Produce json
// @Param id path string true "Assignment ID"
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/results/{studentId} [get]
func (h *AssignmentResultHandler) Get(c *gin.Context) {
	result, err := h.results.Get(c.Request.Context(), c.Param("id"), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Record godoc
// @Summary Record a student's result
// @Description Recording again for the same pair replaces the earlier result.
// @Tags AssignmentResults
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param studentId path string true "Student ID"
// @Param payload body service.RecordResultRequest true "Result payload"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/results/{studentId} [put]
func (h *AssignmentResultHandler) Record(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.RecordResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.results.Record(c.Request.Context(), c.Param("id"), c.Param("studentId"), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Delete godoc
// @Summary Delete one student's result
// @Tags AssignmentResults
// @Produce json
// @Param id path string true "Assignment ID"
// @Param studentId path string true "Student ID"
// @Success 204
// @Router /assignments/{id}/results/{studentId} [delete]
func (h *AssignmentResultHandler) Delete(c *gin.Context) {
	if err := h.results.Delete(c.Request.Context(), c.Param("id"), c.Param("studentId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Statistics godoc
// @Summary Grading statistics for an assignment
// @Tags AssignmentResults
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/results/statistics [get]
func (h *AssignmentResultHandler) Statistics(c *gin.Context) {
	stats, err := h.results.Statistics(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
