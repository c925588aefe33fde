package disbursementmock

import (
	"context"

	domain "scholarship-backend/internal/domain/disbursement"

	"gorm.io/gorm"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset lookups return gorm.ErrRecordNotFound; unset writes succeed.
type Repo struct {
	CreateFn                 func(ctx context.Context, d *domain.Disbursement) error
	SaveFn                   func(ctx context.Context, d *domain.Disbursement) error
	GetOpenByApplicationIDFn func(ctx context.Context, applicationID uint64) (*domain.Disbursement, error)
	ListByApplicationFn      func(ctx context.Context, applicationID uint64) ([]domain.Disbursement, error)
	DeleteByApplicationsFn   func(ctx context.Context, applicationIDs []uint64) error
}

func (m *Repo) Create(ctx context.Context, d *domain.Disbursement) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, d)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, d *domain.Disbursement) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, d)
	}
	return nil
}

func (m *Repo) GetOpenByApplicationID(ctx context.Context, applicationID uint64) (*domain.Disbursement, error) {
	if m.GetOpenByApplicationIDFn != nil {
		return m.GetOpenByApplicationIDFn(ctx, applicationID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) ListByApplication(ctx context.Context, applicationID uint64) ([]domain.Disbursement, error) {
	if m.ListByApplicationFn != nil {
		return m.ListByApplicationFn(ctx, applicationID)
	}
	return nil, nil
}

func (m *Repo) DeleteByApplications(ctx context.Context, applicationIDs []uint64) error {
	if m.DeleteByApplicationsFn != nil {
		return m.DeleteByApplicationsFn(ctx, applicationIDs)
	}
	return nil
}
