package v1

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// SendMessageRequest is the request to ask a question.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// GetMessages returns the transcript, oldest first.
// GET /v1/messages
func (h *Handler) GetMessages(c echo.Context) error {
	limit := 0
	if l := c.QueryParam("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 {
			limit = val
		}
	}

	messages, err := h.service.Messages(c.Request().Context(), limit)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"messages": messages,
	})
}

// SendMessage runs one conversation turn and returns the assistant reply.
// A failed turn is still a 200: the reply carries the error text and
// is_error. Refusals and concurrent submissions get 400 and 409.
// POST /v1/messages
func (h *Handler) SendMessage(c echo.Context) error {
	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	// A started turn runs to completion even if the client goes away, the
	// same as turns asked over the socket.
	ctx := context.WithoutCancel(c.Request().Context())
	msg, err := h.service.SendMessage(ctx, req.Content)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, msg)
}

// GetState returns the turn state.
// GET /v1/state
func (h *Handler) GetState(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.State(c.Request().Context()))
}
