package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/gl_engine/internal/core/ports/services"
	"github.com/SscSPs/gl_engine/internal/dto"
	"github.com/SscSPs/gl_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

type settingsHandler struct {
	settingsService portssvc.SettingsSvcFacade
}

func registerSettingsRoutes(rg *gin.RouterGroup, settingsService portssvc.SettingsSvcFacade) {
	h := &settingsHandler{settingsService: settingsService}

	rg.GET("/settings/", h.getSettings)
	rg.PUT("/settings/", h.updateSettings)
}

// getSettings godoc
// @Summary Get engine settings
// @Tags settings
// @Produce  json
// @Success 200 {object} domain.EngineSettings
// @Security BearerAuth
// @Router /settings/ [get]
func (h *settingsHandler) getSettings(c *gin.Context) {
	settings, err := h.settingsService.Current(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// updateSettings godoc
// @Summary Update engine settings
// @Description Changes the capitalization threshold, corporate tax rate or default aging boundaries
// @Tags settings
// @Accept  json
// @Produce  json
// @Param   settings body dto.UpdateSettingsRequest true "Fields to change"
// @Success 200 {object} domain.EngineSettings
// @Failure 400 {object} dto.ErrorResponse "Invalid settings"
// @Security BearerAuth
// @Router /settings/ [put]
func (h *settingsHandler) updateSettings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, "UpdateSettings", err)
		return
	}

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	settings, err := h.settingsService.Update(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to update settings")
		return
	}

	logger.Info("Settings updated", slog.String("corporate_tax_rate", settings.CorporateTaxRate.String()))
	c.JSON(http.StatusOK, settings)
}
