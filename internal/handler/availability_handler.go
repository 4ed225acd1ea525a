package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rotaworks/rota-api/internal/dto"
	"github.com/rotaworks/rota-api/internal/service"
	appErrors "github.com/rotaworks/rota-api/pkg/errors"
	"github.com/rotaworks/rota-api/pkg/response"
)

// AvailabilityHandler exposes the per-employee weekly grid.
type AvailabilityHandler struct {
	availability *service.AvailabilityService
}

// NewAvailabilityHandler constructs AvailabilityHandler.
func NewAvailabilityHandler(availability *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability}
}

// Get godoc
// @Summary Get an employee's weekly availability grid
// @Tags Availability
// @Produce json
// @Param id path string true "Employee ID"
// @Success 200 {object} response.Envelope
// @Router /employees/{id}/availability [get]
func (h *AvailabilityHandler) Get(c *gin.Context) {
	records, err := h.availability.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Replace godoc
// @Summary Replace an employee's weekly availability grid
// @Description Swaps the full grid atomically; an empty entry list clears it
// @Tags Availability
// @Accept json
// @Produce json
// @Param id path string true "Employee ID"
// @Param payload body dto.ReplaceAvailabilityRequest true "Grid payload"
// @Success 200 {object} response.Envelope
// @Router /employees/{id}/availability [put]
func (h *AvailabilityHandler) Replace(c *gin.Context) {
	var req dto.ReplaceAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	records, err := h.availability.Replace(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}
