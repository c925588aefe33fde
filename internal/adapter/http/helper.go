package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"

	"scholarship-backend/internal/adapter/middleware"
	"scholarship-backend/internal/domain/application"
	"scholarship-backend/internal/usecase/document"
)

var errNoActor = errors.New("missing caller identity")

// accepted upload types for documents and report photos
var uploadTypes = []string{"application/pdf", "image/jpeg", "image/png", "image/webp"}

func actorOf(c echo.Context) (application.Actor, error) {
	a, ok := middleware.ActorFrom(c)
	if !ok {
		return application.Actor{}, errNoActor
	}
	return a, nil
}

func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s path param", name)
	}
	return id, nil
}

// bindJSON binds and validates req, writing the 400/422 response itself.
// It returns false when the handler should stop.
func bindJSON(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}

// formFile reads a multipart file field, capped at document.MaxFileSize and
// restricted to uploadTypes.
func formFile(c echo.Context, field string) (name string, data []byte, err error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", nil, fmt.Errorf("missing %s file", field)
	}
	if fh.Size > document.MaxFileSize {
		return "", nil, fmt.Errorf("%s exceeds %d bytes", field, document.MaxFileSize)
	}
	src, err := fh.Open()
	if err != nil {
		return "", nil, fmt.Errorf("open %s: %w", field, err)
	}
	defer src.Close()

	data, err = io.ReadAll(io.LimitReader(src, document.MaxFileSize+1))
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", field, err)
	}
	if len(data) > document.MaxFileSize {
		return "", nil, fmt.Errorf("%s exceeds %d bytes", field, document.MaxFileSize)
	}
	if len(data) > 0 && !mimetype.EqualsAny(mimetype.Detect(data).String(), uploadTypes...) {
		return "", nil, fmt.Errorf("%s must be a PDF or an image", field)
	}
	return fh.Filename, data, nil
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: errNoActor.Error()})
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
}
