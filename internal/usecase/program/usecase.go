package program

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"scholarship-backend/internal/domain/application"
	plan "scholarship-backend/internal/domain/cascade"
	domain "scholarship-backend/internal/domain/program"
	"scholarship-backend/internal/usecase/access"
	"scholarship-backend/internal/usecase/storeerr"
)

var ErrDeadlinePassed = errors.New("application_deadline must be in the future")

type CreateInput struct {
	Name                  string            `json:"name"`
	Description           string            `json:"description"`
	TotalBudget           float64           `json:"total_budget"`
	PerStudentBudget      float64           `json:"per_student_budget"`
	MinGPA                float64           `json:"min_gpa"`
	MinUnits              *int              `json:"min_units"`
	SchoolTypeEligibility domain.SchoolType `json:"school_type_eligibility"`
	ApplicationDeadline   time.Time         `json:"application_deadline"`
	CommunityServiceDays  int               `json:"community_service_days"`
}

type RequirementInput struct {
	ProgramID   uint64 `json:"-"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    *bool  `json:"required"`
}

type ProgramDTO struct {
	domain.Program
	RequiredServiceHours float64                      `json:"required_service_hours"`
	Requirements         []domain.DocumentRequirement `json:"requirements"`
}

// Deleter removes a program with everything hanging off it.
type Deleter interface {
	DeleteProgram(ctx context.Context, programID uint64) (plan.Plan, error)
}

type Usecase struct {
	repo domain.Repository
	del  Deleter
	now  func() time.Time
}

func NewUsecase(repo domain.Repository, del Deleter) *Usecase {
	return &Usecase{repo: repo, del: del, now: func() time.Time { return time.Now().UTC() }}
}

// Create stores a program whose slot pool is derived from its budget.
func (u *Usecase) Create(ctx context.Context, actor application.Actor, in CreateInput) (*ProgramDTO, error) {
	if err := access.Admin(actor); err != nil {
		return nil, err
	}
	slots, err := domain.SlotsFor(in.TotalBudget, in.PerStudentBudget)
	if err != nil {
		return nil, err
	}
	if !in.ApplicationDeadline.After(u.now()) {
		return nil, ErrDeadlinePassed
	}
	eligibility := in.SchoolTypeEligibility
	if eligibility == "" {
		eligibility = domain.SchoolBoth
	}

	p := &domain.Program{
		Name:                  strings.TrimSpace(in.Name),
		Description:           in.Description,
		TotalBudget:           in.TotalBudget,
		PerStudentBudget:      in.PerStudentBudget,
		AvailableSlots:        slots,
		MinGPA:                in.MinGPA,
		MinUnits:              in.MinUnits,
		SchoolTypeEligibility: eligibility,
		ApplicationDeadline:   in.ApplicationDeadline.UTC(),
		CommunityServiceDays:  in.CommunityServiceDays,
		Active:                true,
	}
	if err := u.repo.Create(ctx, p); err != nil {
		return nil, storeerr.Wrap("create program", err, nil)
	}
	return toDTO(p, nil), nil
}

func (u *Usecase) AddRequirement(ctx context.Context, actor application.Actor, in RequirementInput) (*domain.DocumentRequirement, error) {
	if err := access.Admin(actor); err != nil {
		return nil, err
	}
	if _, err := u.repo.GetByID(ctx, in.ProgramID); err != nil {
		return nil, storeerr.Wrap("load program", err, domain.ErrNotFound)
	}
	r := &domain.DocumentRequirement{
		ProgramID:   in.ProgramID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Required:    in.Required == nil || *in.Required,
	}
	if err := u.repo.CreateRequirement(ctx, r); err != nil {
		return nil, storeerr.Wrap("create requirement", err, nil)
	}
	return r, nil
}

// Get is open to every authenticated actor.
func (u *Usecase) Get(ctx context.Context, id uint64) (*ProgramDTO, error) {
	var (
		p    *domain.Program
		reqs []domain.DocumentRequirement
	)
	err := storeerr.Read(ctx, func() (err error) {
		if p, err = u.repo.GetByID(ctx, id); err != nil {
			return err
		}
		reqs, err = u.repo.ListRequirements(ctx, id)
		return err
	})
	if err != nil {
		return nil, storeerr.Wrap("load program", err, domain.ErrNotFound)
	}
	return toDTO(p, reqs), nil
}

func (u *Usecase) Delete(ctx context.Context, actor application.Actor, id uint64) (plan.Plan, error) {
	if err := access.Admin(actor); err != nil {
		return plan.Plan{}, err
	}
	return u.del.DeleteProgram(ctx, id)
}

// SweepDeadlines closes programs whose application deadline has passed.
func (u *Usecase) SweepDeadlines(ctx context.Context) (int64, error) {
	n, err := u.repo.DeactivateExpired(ctx, u.now())
	if err != nil {
		return 0, storeerr.Wrap("deactivate expired programs", err, nil)
	}
	if n > 0 {
		log.Printf("program: deactivated %d programs past their deadline", n)
	}
	return n, nil
}

func toDTO(p *domain.Program, reqs []domain.DocumentRequirement) *ProgramDTO {
	if reqs == nil {
		reqs = []domain.DocumentRequirement{}
	}
	return &ProgramDTO{Program: *p, RequiredServiceHours: p.RequiredServiceHours(), Requirements: reqs}
}
