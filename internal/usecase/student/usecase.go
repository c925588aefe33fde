package student

import (
	"context"
	"errors"
	"strings"

	"scholarship-backend/internal/domain/application"
	"scholarship-backend/internal/domain/program"
	domain "scholarship-backend/internal/domain/student"
	"scholarship-backend/internal/usecase/storeerr"
)

var (
	ErrInvalidGPA        = errors.New("gpa must be between 0 and 100")
	ErrInvalidSchoolType = errors.New("school_type must be high_school or college")
)

type ProfileInput struct {
	FullName   string             `json:"full_name"`
	SchoolType program.SchoolType `json:"school_type"`
	School     string             `json:"school"`
	GPA        float64            `json:"gpa"`
	Units      *int               `json:"units"`
}

type Usecase struct{ repo domain.Repository }

func NewUsecase(repo domain.Repository) *Usecase { return &Usecase{repo: repo} }

// Upsert creates or updates the acting student's own profile.
func (u *Usecase) Upsert(ctx context.Context, actor application.Actor, in ProfileInput) (*domain.Profile, error) {
	if actor.Role != application.RoleStudent || actor.UserID == 0 {
		return nil, application.ErrForbidden
	}
	if in.GPA < 0 || in.GPA > 100 {
		return nil, ErrInvalidGPA
	}
	if in.SchoolType != program.SchoolHighSchool && in.SchoolType != program.SchoolCollege {
		return nil, ErrInvalidSchoolType
	}

	p, err := u.repo.GetByUserID(ctx, actor.UserID)
	created := false
	switch {
	case err == nil:
	case storeerr.IsNotFound(err):
		p, created = &domain.Profile{UserID: actor.UserID}, true
	default:
		return nil, storeerr.Wrap("load student", err, nil)
	}
	p.FullName = strings.TrimSpace(in.FullName)
	p.SchoolType = in.SchoolType
	p.School = strings.TrimSpace(in.School)
	p.GPA = in.GPA
	p.Units = in.Units

	if created {
		err = u.repo.Create(ctx, p)
	} else {
		err = u.repo.Save(ctx, p)
	}
	if err != nil {
		return nil, storeerr.Wrap("save student", err, nil)
	}
	return p, nil
}

// Get returns a profile by user id. Students may only read their own.
func (u *Usecase) Get(ctx context.Context, actor application.Actor, userID uint64) (*domain.Profile, error) {
	if !actor.IsAdmin() && actor.UserID != userID {
		return nil, application.ErrForbidden
	}
	var p *domain.Profile
	err := storeerr.Read(ctx, func() (err error) {
		p, err = u.repo.GetByUserID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, storeerr.Wrap("load student", err, domain.ErrNotFound)
	}
	return p, nil
}
