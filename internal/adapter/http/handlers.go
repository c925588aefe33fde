package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"scholarship-backend/internal/domain/notification"
)

const (
	defaultInboxLimit = 20
	maxInboxLimit     = 100
)

type Handler struct{ inbox notification.Inbox }

func NewHandler(inbox notification.Inbox) *Handler { return &Handler{inbox: inbox} }

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// Notifications lists the caller's most recent messages, newest first.
func (h *Handler) Notifications(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return unauthorized(c)
	}
	limit := defaultInboxLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxInboxLimit {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be between 1 and 100"})
		}
		limit = n
	}
	msgs, err := h.inbox.Recent(c.Request().Context(), actor.UserID, limit)
	if err != nil {
		return respondError(c, err)
	}
	if msgs == nil {
		msgs = []notification.Message{}
	}
	return c.JSON(http.StatusOK, map[string]any{"notifications": msgs})
}
