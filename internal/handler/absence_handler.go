package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rotaworks/rota-api/internal/dto"
	"github.com/rotaworks/rota-api/internal/models"
	"github.com/rotaworks/rota-api/internal/service"
	appErrors "github.com/rotaworks/rota-api/pkg/errors"
	"github.com/rotaworks/rota-api/pkg/response"
)

// AbsenceHandler exposes absence endpoints.
type AbsenceHandler struct {
	absences *service.AbsenceService
}

// NewAbsenceHandler constructs AbsenceHandler.
func NewAbsenceHandler(absences *service.AbsenceService) *AbsenceHandler {
	return &AbsenceHandler{absences: absences}
}

// List godoc
// @Summary List absences
// @Tags Absences
// @Produce json
// @Param employeeId query string false "Filter by employee"
// @Param from query string false "Window start (YYYY-MM-DD)"
// @Param to query string false "Window end (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /absences [get]
func (h *AbsenceHandler) List(c *gin.Context) {
	var filter models.AbsenceFilter
	filter.EmployeeID = c.Query("employeeId")
	if from := c.Query("from"); from != "" {
		parsed, err := time.Parse("2006-01-02", from)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrInvalidDateRange, "unparseable from date"))
			return
		}
		filter.From = &parsed
	}
	if to := c.Query("to"); to != "" {
		parsed, err := time.Parse("2006-01-02", to)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrInvalidDateRange, "unparseable to date"))
			return
		}
		filter.To = &parsed
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	absences, total, err := h.absences.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, absences, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// Create godoc
// @Summary Record absence
// @Tags Absences
// @Accept json
// @Produce json
// @Param payload body dto.CreateAbsenceRequest true "Absence payload"
// @Success 201 {object} response.Envelope
// @Router /absences [post]
func (h *AbsenceHandler) Create(c *gin.Context) {
	var req dto.CreateAbsenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	absence, err := h.absences.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, absence)
}

// Update godoc
// @Summary Update absence
// @Tags Absences
// @Accept json
// @Produce json
// @Param id path string true "Absence ID"
// @Param payload body dto.UpdateAbsenceRequest true "Absence payload"
// @Success 200 {object} response.Envelope
// @Router /absences/{id} [put]
func (h *AbsenceHandler) Update(c *gin.Context) {
	var req dto.UpdateAbsenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	absence, err := h.absences.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, absence, nil)
}

// Delete godoc
// @Summary Delete absence
// @Tags Absences
// @Produce json
// @Param id path string true "Absence ID"
// @Success 204 {object} response.Envelope
// @Router /absences/{id} [delete]
func (h *AbsenceHandler) Delete(c *gin.Context) {
	if err := h.absences.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
