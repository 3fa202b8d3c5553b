package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/akshatyadav31/Lumora-Ai/internal/service"
)

// GetSettings returns the provider settings. The API key is never returned.
// GET /v1/settings
func (h *Handler) GetSettings(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.Settings())
}

// UpdateSettings changes the provider, model or API key.
// PUT /v1/settings
func (h *Handler) UpdateSettings(c echo.Context) error {
	var req service.SettingsUpdate
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	settings, err := h.service.UpdateSettings(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, settings)
}

// ListModels lists the models the provider offers.
// GET /v1/models
func (h *Handler) ListModels(c echo.Context) error {
	models, err := h.service.ListModels(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"models": models,
	})
}
