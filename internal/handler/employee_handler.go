package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rotaworks/rota-api/internal/dto"
	"github.com/rotaworks/rota-api/internal/models"
	"github.com/rotaworks/rota-api/internal/service"
	appErrors "github.com/rotaworks/rota-api/pkg/errors"
	"github.com/rotaworks/rota-api/pkg/response"
)

// EmployeeHandler exposes roster-member endpoints.
type EmployeeHandler struct {
	employees *service.EmployeeService
}

// NewEmployeeHandler constructs EmployeeHandler.
func NewEmployeeHandler(employees *service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employees: employees}
}

// List godoc
// @Summary List employees
// @Tags Employees
// @Produce json
// @Param search query string false "Search by name"
// @Param group query string false "Filter by group (TL, VZ, TZ, GFB)"
// @Param active query bool false "Filter by active state"
// @Param keyholder query bool false "Filter by keyholder flag"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /employees [get]
func (h *EmployeeHandler) List(c *gin.Context) {
	var filter models.EmployeeFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Group = models.EmployeeGroup(c.Query("group"))
	filter.Active = boolQuery(c, "active")
	filter.Keyholder = boolQuery(c, "keyholder")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	employees, total, err := h.employees.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employees, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// Get godoc
// @Summary Get employee detail
// @Tags Employees
// @Produce json
// @Param id path string true "Employee ID"
// @Success 200 {object} response.Envelope
// @Router /employees/{id} [get]
func (h *EmployeeHandler) Get(c *gin.Context) {
	emp, err := h.employees.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, emp, nil)
}

// Create godoc
// @Summary Create employee
// @Tags Employees
// @Accept json
// @Produce json
// @Param payload body dto.CreateEmployeeRequest true "Employee payload"
// @Success 201 {object} response.Envelope
// @Router /employees [post]
func (h *EmployeeHandler) Create(c *gin.Context) {
	var req dto.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	emp, err := h.employees.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, emp)
}

// Update godoc
// @Summary Update employee
// @Tags Employees
// @Accept json
// @Produce json
// @Param id path string true "Employee ID"
// @Param payload body dto.UpdateEmployeeRequest true "Employee payload"
// @Success 200 {object} response.Envelope
// @Router /employees/{id} [put]
func (h *EmployeeHandler) Update(c *gin.Context) {
	var req dto.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	emp, err := h.employees.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, emp, nil)
}

// Deactivate godoc
// @Summary Deactivate employee
// @Description Soft-delete; history and past assignments are kept
// @Tags Employees
// @Produce json
// @Param id path string true "Employee ID"
// @Success 204 {object} response.Envelope
// @Router /employees/{id} [delete]
func (h *EmployeeHandler) Deactivate(c *gin.Context) {
	if err := h.employees.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func boolQuery(c *gin.Context, name string) *bool {
	switch c.Query(name) {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	}
	return nil
}
