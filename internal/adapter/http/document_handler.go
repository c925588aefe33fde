package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"

	domain "scholarship-backend/internal/domain/document"
	"scholarship-backend/internal/usecase/document"
)

type DocumentHandler struct{ uc *document.Usecase }

func NewDocumentHandler(uc *document.Usecase) *DocumentHandler { return &DocumentHandler{uc: uc} }

type reviewDocumentReq struct {
	Status string `json:"status" validate:"required,oneof=approved rejected_invalid rejected_incomplete rejected_illegible"`
	Notes  string `json:"notes"  validate:"max=2000"`
}

// Upload takes multipart form fields requirement_id and file.
func (h *DocumentHandler) Upload(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return unauthorized(c)
	}
	appID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	reqID, err := strconv.ParseUint(c.FormValue("requirement_id"), 10, 64)
	if err != nil || reqID == 0 {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: []FieldError{{Field: "requirement_id", Message: "is required"}},
		})
	}
	name, data, err := formFile(c, "file")
	if err != nil {
		return badRequest(c, err)
	}
	doc, err := h.uc.Upload(c.Request().Context(), actor, document.UploadInput{
		ApplicationID: appID, RequirementID: reqID, FileName: name, Data: data,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, doc)
}

func (h *DocumentHandler) Review(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var req reviewDocumentReq
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	doc, err := h.uc.Review(c.Request().Context(), actor, document.ReviewInput{
		DocumentID: id, Status: domain.Status(req.Status), Notes: req.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, doc)
}

// File streams the stored document back with its detected content type.
func (h *DocumentHandler) File(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	doc, data, err := h.uc.Read(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", doc.FileName))
	return c.Blob(http.StatusOK, mimetype.Detect(data).String(), data)
}
