package v1

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	lerrors "github.com/akshatyadav31/Lumora-Ai/internal/errors"
)

// ListDatasets lists demo and uploaded datasets.
// GET /v1/datasets
func (h *Handler) ListDatasets(c echo.Context) error {
	ctx := c.Request().Context()

	datasets, err := h.service.ListDatasets(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	active, err := h.service.ActiveDataset(ctx)
	if err != nil {
		return h.fail(c, err)
	}

	activeID := ""
	if active != nil {
		activeID = active.DatasetID
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"datasets":          datasets,
		"active_dataset_id": activeID,
	})
}

// UploadDataset parses a multipart "file" upload and makes it active.
// POST /v1/datasets
func (h *Handler) UploadDataset(c echo.Context) error {
	ctx := c.Request().Context()

	if h.maxUploadBytes > 0 {
		c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, h.maxUploadBytes)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{
				"error": fmt.Sprintf("file exceeds the %d byte upload limit", h.maxUploadBytes),
			})
		}
		if errors.Is(err, http.ErrMissingFile) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "file is required"})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid multipart upload: " + err.Error()})
	}

	f, err := fh.Open()
	if err != nil {
		return h.fail(c, lerrors.Wrap(lerrors.KindInternal, "failed to open upload", err))
	}
	defer f.Close()

	ds, err := h.service.UploadDataset(ctx, fh.Filename, f)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, ds)
}

// GetActiveDataset returns the active dataset.
// GET /v1/datasets/active
func (h *Handler) GetActiveDataset(c echo.Context) error {
	ds, err := h.service.ActiveDataset(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	if ds == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no dataset selected"})
	}
	return c.JSON(http.StatusOK, ds)
}

// SelectDataset makes a dataset active.
// POST /v1/datasets/:dataset_id/select
func (h *Handler) SelectDataset(c echo.Context) error {
	ds, err := h.service.SelectDataset(c.Request().Context(), c.Param("dataset_id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, ds)
}

// GetSuggestions returns suggested questions for the active dataset.
// GET /v1/suggestions
func (h *Handler) GetSuggestions(c echo.Context) error {
	suggestions, err := h.service.Suggestions(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
	})
}
