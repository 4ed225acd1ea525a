package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rotaworks/rota-api/internal/dto"
	"github.com/rotaworks/rota-api/internal/service"
	appErrors "github.com/rotaworks/rota-api/pkg/errors"
	"github.com/rotaworks/rota-api/pkg/response"
)

// SettingsHandler exposes the store calendar configuration.
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler constructs SettingsHandler.
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get godoc
// @Summary Get store settings
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.settings.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// Update godoc
// @Summary Replace store settings
// @Description Stores a new settings version; cached rosters are invalidated
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body dto.UpdateSettingsRequest true "Settings payload"
// @Success 200 {object} response.Envelope
// @Router /settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	settings, err := h.settings.Update(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}
