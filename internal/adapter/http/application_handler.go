package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	domain "scholarship-backend/internal/domain/application"
	"scholarship-backend/internal/usecase/application"
)

type ApplicationHandler struct{ uc *application.Usecase }

func NewApplicationHandler(uc *application.Usecase) *ApplicationHandler {
	return &ApplicationHandler{uc: uc}
}

type transitionReq struct {
	Notes string `json:"notes" validate:"max=2000"`
}

// Apply creates a draft application for the calling student.
func (h *ApplicationHandler) Apply(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return unauthorized(c)
	}
	programID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	dto, err := h.uc.Apply(c.Request().Context(), actor, programID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *ApplicationHandler) Get(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	dto, err := h.uc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// Mine lists the calling student's applications.
func (h *ApplicationHandler) Mine(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return unauthorized(c)
	}
	apps, err := h.uc.Mine(c.Request().Context(), actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"applications": apps})
}

func (h *ApplicationHandler) Delete(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	plan, err := h.uc.Delete(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, plan)
}

// Transition runs the state-machine operation named in the path.
func (h *ApplicationHandler) Transition(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var req transitionReq
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Transition(c.Request().Context(), actor, application.TransitionInput{
		ApplicationID: id,
		Op:            domain.Operation(c.Param("op")),
		Notes:         req.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
