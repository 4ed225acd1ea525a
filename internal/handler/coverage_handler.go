package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rotaworks/rota-api/internal/dto"
	"github.com/rotaworks/rota-api/internal/service"
	appErrors "github.com/rotaworks/rota-api/pkg/errors"
	"github.com/rotaworks/rota-api/pkg/response"
)

// CoverageHandler exposes one-off and recurring staffing rules.
type CoverageHandler struct {
	coverage *service.CoverageService
}

// NewCoverageHandler constructs CoverageHandler.
func NewCoverageHandler(coverage *service.CoverageService) *CoverageHandler {
	return &CoverageHandler{coverage: coverage}
}

// ListRules godoc
// @Summary List one-off coverage rules
// @Tags Coverage
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /coverage-rules [get]
func (h *CoverageHandler) ListRules(c *gin.Context) {
	rules, err := h.coverage.ListRules(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rules, nil)
}

// CreateRule godoc
// @Summary Create a one-off coverage rule
// @Tags Coverage
// @Accept json
// @Produce json
// @Param payload body dto.CreateCoverageRuleRequest true "Rule payload"
// @Success 201 {object} response.Envelope
// @Router /coverage-rules [post]
func (h *CoverageHandler) CreateRule(c *gin.Context) {
	var req dto.CreateCoverageRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	rule, err := h.coverage.CreateRule(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rule)
}

// UpdateRule godoc
// @Summary Update a one-off coverage rule
// @Tags Coverage
// @Accept json
// @Produce json
// @Param id path string true "Rule ID"
// @Param payload body dto.CreateCoverageRuleRequest true "Rule payload"
// @Success 200 {object} response.Envelope
// @Router /coverage-rules/{id} [put]
func (h *CoverageHandler) UpdateRule(c *gin.Context) {
	var req dto.CreateCoverageRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	rule, err := h.coverage.UpdateRule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rule, nil)
}

// DeleteRule godoc
// @Summary Delete a one-off coverage rule
// @Tags Coverage
// @Produce json
// @Param id path string true "Rule ID"
// @Success 204 {object} response.Envelope
// @Router /coverage-rules/{id} [delete]
func (h *CoverageHandler) DeleteRule(c *gin.Context) {
	if err := h.coverage.DeleteRule(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListRecurring godoc
// @Summary List recurring coverage rules
// @Tags Coverage
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /recurring-rules [get]
func (h *CoverageHandler) ListRecurring(c *gin.Context) {
	rules, err := h.coverage.ListRecurring(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rules, nil)
}

// CreateRecurring godoc
// @Summary Create a recurring coverage rule
// @Tags Coverage
// @Accept json
// @Produce json
// @Param payload body dto.CreateRecurringRuleRequest true "Rule payload"
// @Success 201 {object} response.Envelope
// @Router /recurring-rules [post]
func (h *CoverageHandler) CreateRecurring(c *gin.Context) {
	var req dto.CreateRecurringRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	rule, err := h.coverage.CreateRecurring(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rule)
}

// UpdateRecurring godoc
// @Summary Update a recurring coverage rule
// @Tags Coverage
// @Accept json
// @Produce json
// @Param id path string true "Rule ID"
// @Param payload body dto.CreateRecurringRuleRequest true "Rule payload"
// @Success 200 {object} response.Envelope
// @Router /recurring-rules/{id} [put]
func (h *CoverageHandler) UpdateRecurring(c *gin.Context) {
	var req dto.CreateRecurringRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	rule, err := h.coverage.UpdateRecurring(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rule, nil)
}

// DeleteRecurring godoc
// @Summary Delete a recurring coverage rule
// @Tags Coverage
// @Produce json
// @Param id path string true "Rule ID"
// @Success 204 {object} response.Envelope
// @Router /recurring-rules/{id} [delete]
func (h *CoverageHandler) DeleteRecurring(c *gin.Context) {
	if err := h.coverage.DeleteRecurring(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
