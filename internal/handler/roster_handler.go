package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rotaworks/rota-api/internal/dto"
	"github.com/rotaworks/rota-api/internal/service"
	appErrors "github.com/rotaworks/rota-api/pkg/errors"
	"github.com/rotaworks/rota-api/pkg/response"
)

// RosterHandler exposes schedule generation and retrieval endpoints.
type RosterHandler struct {
	roster  *service.RosterService
	exports *service.ExportService
}

// NewRosterHandler constructs RosterHandler.
func NewRosterHandler(roster *service.RosterService, exports *service.ExportService) *RosterHandler {
	return &RosterHandler{roster: roster, exports: exports}
}

// Generate godoc
// @Summary Generate a roster
// @Description Runs the assignment engine for the requested range. Long
// @Description ranges are queued; poll the returned run id.
// @Tags Roster
// @Accept json
// @Produce json
// @Param payload body dto.GenerateRosterRequest true "Generation payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /roster/generate [post]
func (h *RosterHandler) Generate(c *gin.Context) {
	var req dto.GenerateRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	requestedBy := ""
	if claims := claimsFromContext(c); claims != nil {
		requestedBy = claims.UserID
	}

	res, err := h.roster.Generate(c.Request.Context(), req, requestedBy)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// GetRun godoc
// @Summary Get run status
// @Tags Roster
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} response.Envelope
// @Router /roster/runs/{id} [get]
func (h *RosterHandler) GetRun(c *gin.Context) {
	run, err := h.roster.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, run, nil)
}

// ListRuns godoc
// @Summary List recent runs
// @Tags Roster
// @Produce json
// @Param limit query int false "Max runs to return"
// @Success 200 {object} response.Envelope
// @Router /roster/runs [get]
func (h *RosterHandler) ListRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}
	runs, err := h.roster.ListRuns(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, runs, nil)
}

// ListAssignments godoc
// @Summary List stored assignments
// @Tags Roster
// @Produce json
// @Param from query string false "Window start (YYYY-MM-DD)"
// @Param to query string false "Window end (YYYY-MM-DD)"
// @Param employeeId query string false "Filter by employee"
// @Param runId query string false "Filter by run"
// @Success 200 {object} response.Envelope
// @Router /roster/assignments [get]
func (h *RosterHandler) ListAssignments(c *gin.Context) {
	var query dto.RosterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	assignments, err := h.roster.ListAssignments(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// Export godoc
// @Summary Export stored assignments
// @Description Renders matching assignments as CSV or PDF
// @Tags Roster
// @Produce text/csv
// @Produce application/pdf
// @Param format query string true "Export format (csv or pdf)"
// @Param from query string false "Window start (YYYY-MM-DD)"
// @Param to query string false "Window end (YYYY-MM-DD)"
// @Param employeeId query string false "Filter by employee"
// @Param runId query string false "Filter by run"
// @Success 200 {file} binary
// @Failure 412 {object} response.Envelope
// @Router /roster/export [get]
func (h *RosterHandler) Export(c *gin.Context) {
	var query dto.RosterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}

	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	result, err := h.exports.Export(c.Request.Context(), query, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
