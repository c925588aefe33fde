package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	domain "scholarship-backend/internal/domain/program"
	"scholarship-backend/internal/usecase/program"
)

type ProgramHandler struct{ uc *program.Usecase }

func NewProgramHandler(uc *program.Usecase) *ProgramHandler { return &ProgramHandler{uc: uc} }

type createProgramReq struct {
	Name                  string  `json:"name"                    validate:"required,notblank,max=191"`
	Description           string  `json:"description"             validate:"max=5000"`
	TotalBudget           float64 `json:"total_budget"            validate:"gt=0,dec2"`
	PerStudentBudget      float64 `json:"per_student_budget"      validate:"gt=0,dec2,ltefield=TotalBudget"`
	MinGPA                float64 `json:"min_gpa"                 validate:"gte=0,lte=100,dec2"`
	MinUnits              *int    `json:"min_units"               validate:"omitempty,gte=0"`
	SchoolTypeEligibility string  `json:"school_type_eligibility" validate:"omitempty,oneof=high_school college both"`
	// RFC3339 with timezone
	ApplicationDeadline  time.Time `json:"application_deadline"   validate:"required"`
	CommunityServiceDays int       `json:"community_service_days" validate:"gte=0,lte=365"`
}

type requirementReq struct {
	Name        string `json:"name"        validate:"required,notblank,max=191"`
	Description string `json:"description" validate:"max=2000"`
	Required    *bool  `json:"required"`
}

func (h *ProgramHandler) Create(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return unauthorized(c)
	}
	var req createProgramReq
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Create(c.Request().Context(), actor, program.CreateInput{
		Name:                  req.Name,
		Description:           req.Description,
		TotalBudget:           req.TotalBudget,
		PerStudentBudget:      req.PerStudentBudget,
		MinGPA:                req.MinGPA,
		MinUnits:              req.MinUnits,
		SchoolTypeEligibility: domain.SchoolType(req.SchoolTypeEligibility),
		ApplicationDeadline:   req.ApplicationDeadline,
		CommunityServiceDays:  req.CommunityServiceDays,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *ProgramHandler) Get(c echo.Context) error {
	if _, err := actorOf(c); err != nil {
		return unauthorized(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	dto, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ProgramHandler) Delete(c echo.Context) error {
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

func (h *ProgramHandler) AddRequirement(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var req requirementReq
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	r, err := h.uc.AddRequirement(c.Request().Context(), actor, program.RequirementInput{
		ProgramID: id, Name: req.Name, Description: req.Description, Required: req.Required,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}
