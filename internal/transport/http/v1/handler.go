// Package v1 provides the HTTP handlers for the public API.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	lerrors "github.com/akshatyadav31/Lumora-Ai/internal/errors"
	"github.com/akshatyadav31/Lumora-Ai/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service        *service.Service
	maxUploadBytes int64
	log            logrus.FieldLogger
}

// NewHandler creates a new handler. maxUploadBytes caps dataset uploads;
// zero means no cap.
func NewHandler(svc *service.Service, maxUploadBytes int64, log logrus.FieldLogger) *Handler {
	return &Handler{
		service:        svc,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

// RegisterRoutes registers the public routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Datasets
	e.GET("/v1/datasets", h.ListDatasets)
	e.POST("/v1/datasets", h.UploadDataset)
	e.GET("/v1/datasets/active", h.GetActiveDataset)
	e.POST("/v1/datasets/:dataset_id/select", h.SelectDataset)
	e.GET("/v1/suggestions", h.GetSuggestions)

	// Conversation
	e.GET("/v1/messages", h.GetMessages)
	e.POST("/v1/messages", h.SendMessage)
	e.GET("/v1/state", h.GetState)

	// Provider settings
	e.GET("/v1/settings", h.GetSettings)
	e.PUT("/v1/settings", h.UpdateSettings)
	e.GET("/v1/models", h.ListModels)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// statusOf maps an error kind to the response status.
func statusOf(err error) int {
	switch lerrors.KindOf(err) {
	case lerrors.KindUnsupportedInput:
		return http.StatusBadRequest
	case lerrors.KindDecode:
		return http.StatusUnprocessableEntity
	case lerrors.KindProvider:
		return http.StatusBadGateway
	case lerrors.KindUnimplemented:
		return http.StatusNotImplemented
	case lerrors.KindConflict:
		return http.StatusConflict
	case lerrors.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c echo.Context, err error) error {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		h.log.WithError(err).WithField("path", c.Path()).Error("request failed")
	}
	return c.JSON(status, map[string]string{
		"error": err.Error(),
		"kind":  string(lerrors.KindOf(err)),
	})
}
