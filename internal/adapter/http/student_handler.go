package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"scholarship-backend/internal/domain/program"
	"scholarship-backend/internal/usecase/student"
)

type StudentHandler struct{ uc *student.Usecase }

func NewStudentHandler(uc *student.Usecase) *StudentHandler { return &StudentHandler{uc: uc} }

type profileReq struct {
	FullName   string  `json:"full_name"   validate:"required,notblank,max=191"`
	SchoolType string  `json:"school_type" validate:"required,oneof=high_school college"`
	School     string  `json:"school"      validate:"max=191"`
	GPA        float64 `json:"gpa"         validate:"gte=0,lte=100,dec2"`
	Units      *int    `json:"units"       validate:"omitempty,gte=0"`
}

func (h *StudentHandler) Upsert(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return unauthorized(c)
	}
	var req profileReq
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	p, err := h.uc.Upsert(c.Request().Context(), actor, student.ProfileInput{
		FullName:   req.FullName,
		SchoolType: program.SchoolType(req.SchoolType),
		School:     req.School,
		GPA:        req.GPA,
		Units:      req.Units,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *StudentHandler) Get(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return unauthorized(c)
	}
	userID, err := pathID(c, "user_id")
	if err != nil {
		return badRequest(c, err)
	}
	p, err := h.uc.Get(c.Request().Context(), actor, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}
