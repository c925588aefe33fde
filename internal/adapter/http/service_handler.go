package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"scholarship-backend/internal/usecase/communityservice"
)

type ServiceHandler struct{ uc *communityservice.Usecase }

func NewServiceHandler(uc *communityservice.Usecase) *ServiceHandler {
	return &ServiceHandler{uc: uc}
}

type startEntryReq struct {
	Description string `json:"description" validate:"max=2000"`
}

type endEntryReq struct {
	TimeOut        *time.Time `json:"time_out"`
	LessonsLearned string     `json:"lessons_learned" validate:"max=5000"`
}

type reviewReq struct {
	Notes string `json:"notes" validate:"max=2000"`
}

type reviewReportReq struct {
	Approve *bool  `json:"approve" validate:"required"`
	Notes   string `json:"notes"   validate:"max=2000"`
}

func (h *ServiceHandler) Start(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return unauthorized(c)
	}
	appID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var req startEntryReq
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	e, err := h.uc.StartEntry(c.Request().Context(), actor, communityservice.StartInput{
		ApplicationID: appID, Description: req.Description,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *ServiceHandler) End(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var req endEntryReq
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	e, err := h.uc.EndEntry(c.Request().Context(), actor, communityservice.EndInput{
		EntryID: id, TimeOut: req.TimeOut, LessonsLearned: req.LessonsLearned,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *ServiceHandler) Cancel(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	if err := h.uc.CancelEntry(c.Request().Context(), actor, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ServiceHandler) Approve(c echo.Context) error { return h.review(c, true) }
func (h *ServiceHandler) Reject(c echo.Context) error  { return h.review(c, false) }

func (h *ServiceHandler) review(c echo.Context, approve bool) error {
	actor, err := actorOf(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var req reviewReq
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	e, err := h.uc.ReviewEntry(c.Request().Context(), actor, communityservice.ReviewInput{
		ID: id, Approve: approve, Notes: req.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

// SubmitReport takes multipart fields description, days_completed and an optional photo.
func (h *ServiceHandler) SubmitReport(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return unauthorized(c)
	}
	appID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var details []FieldError
	desc := c.FormValue("description")
	if desc == "" {
		details = append(details, FieldError{Field: "description", Message: "is required"})
	}
	days, err := strconv.Atoi(c.FormValue("days_completed"))
	if err != nil || days < 1 {
		details = append(details, FieldError{Field: "days_completed", Message: "must be greater than or equal to 1"})
	}
	if len(details) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: details})
	}

	in := communityservice.ReportInput{ApplicationID: appID, Description: desc, DaysCompleted: days}
	if _, err := c.FormFile("photo"); err == nil {
		if in.PhotoName, in.Photo, err = formFile(c, "photo"); err != nil {
			return badRequest(c, err)
		}
	}
	r, err := h.uc.SubmitReport(c.Request().Context(), actor, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *ServiceHandler) ReviewReport(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var req reviewReportReq
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	r, err := h.uc.ReviewReport(c.Request().Context(), actor, communityservice.ReviewInput{
		ID: id, Approve: *req.Approve, Notes: req.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *ServiceHandler) Progress(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return unauthorized(c)
	}
	appID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	p, err := h.uc.Progress(c.Request().Context(), actor, appID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}
