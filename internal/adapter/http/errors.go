package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"scholarship-backend/internal/domain/application"
	"scholarship-backend/internal/domain/communityservice"
	"scholarship-backend/internal/domain/document"
	"scholarship-backend/internal/domain/program"
	"scholarship-backend/internal/domain/student"
	ucprogram "scholarship-backend/internal/usecase/program"
	ucstudent "scholarship-backend/internal/usecase/student"
)

var notFound = []error{
	application.ErrNotFound, program.ErrNotFound, student.ErrNotFound,
	document.ErrNotFound, communityservice.ErrNotFound,
}

// conflicts are well-formed requests that the current state refuses.
var conflicts = []error{
	communityservice.ErrSessionAlreadyActive, communityservice.ErrNoActiveSession,
	communityservice.ErrNotCompleted, communityservice.ErrReportReviewed, communityservice.ErrServiceClosed,
	document.ErrAlreadyReviewed, document.ErrUploadClosed,
}

// invalid are requests whose content breaks a rule.
var invalid = []error{
	communityservice.ErrInvalidTimeOut, communityservice.ErrFutureTimeOut,
	document.ErrEmptyFile, document.ErrInvalidReview, document.ErrRequirementNotSet,
	program.ErrInvalidBudget, ucprogram.ErrDeadlinePassed,
	ucstudent.ErrInvalidGPA, ucstudent.ErrInvalidSchoolType,
}

// respondError maps usecase errors to HTTP responses. Store failures are
// logged and reported without detail.
func respondError(c echo.Context, err error) error {
	var (
		te *application.TransitionError
		gv *application.GuardViolation
		pe *application.PersistenceError
	)
	switch {
	case errors.As(err, &te):
		return c.JSON(http.StatusConflict, ErrorResponse{
			Error: err.Error(), Code: "invalid_transition", CurrentStatus: string(te.Current),
		})
	case errors.As(err, &gv):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: gv.Error(), Code: string(gv.Code)})
	case errors.Is(err, application.ErrForbidden):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	case errors.Is(err, application.ErrUnknownOperation):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case isAny(err, notFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case isAny(err, conflicts):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case isAny(err, invalid):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "request cancelled"})
	case errors.As(err, &pe):
		log.Printf("%s %s: %v", c.Request().Method, c.Path(), err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	default:
		log.Printf("%s %s: unexpected error: %v", c.Request().Method, c.Path(), err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
