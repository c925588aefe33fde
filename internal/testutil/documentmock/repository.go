package documentmock

import (
	"context"

	domain "scholarship-backend/internal/domain/document"

	"gorm.io/gorm"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset lookups return gorm.ErrRecordNotFound; unset writes succeed.
type Repo struct {
	CreateFn               func(ctx context.Context, u *domain.Upload) error
	SaveFn                 func(ctx context.Context, u *domain.Upload) error
	GetByIDFn              func(ctx context.Context, id uint64) (*domain.Upload, error)
	GetByRequirementFn     func(ctx context.Context, applicationID, requirementID uint64) (*domain.Upload, error)
	ListByApplicationFn    func(ctx context.Context, applicationID uint64) ([]domain.Upload, error)
	ListByApplicationsFn   func(ctx context.Context, applicationIDs []uint64) ([]domain.Upload, error)
	DeleteByApplicationsFn func(ctx context.Context, applicationIDs []uint64) error
}

func (m *Repo) Create(ctx context.Context, u *domain.Upload) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, u)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, u *domain.Upload) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, u)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Upload, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) GetByRequirement(ctx context.Context, applicationID, requirementID uint64) (*domain.Upload, error) {
	if m.GetByRequirementFn != nil {
		return m.GetByRequirementFn(ctx, applicationID, requirementID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) ListByApplication(ctx context.Context, applicationID uint64) ([]domain.Upload, error) {
	if m.ListByApplicationFn != nil {
		return m.ListByApplicationFn(ctx, applicationID)
	}
	return nil, nil
}

func (m *Repo) ListByApplications(ctx context.Context, applicationIDs []uint64) ([]domain.Upload, error) {
	if m.ListByApplicationsFn != nil {
		return m.ListByApplicationsFn(ctx, applicationIDs)
	}
	return nil, nil
}

func (m *Repo) DeleteByApplications(ctx context.Context, applicationIDs []uint64) error {
	if m.DeleteByApplicationsFn != nil {
		return m.DeleteByApplicationsFn(ctx, applicationIDs)
	}
	return nil
}
