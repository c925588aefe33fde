package servicemock

import (
	"context"

	domain "scholarship-backend/internal/domain/communityservice"

	"gorm.io/gorm"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset lookups return gorm.ErrRecordNotFound; unset writes succeed.
type Repo struct {
	CreateEntryFn               func(ctx context.Context, e *domain.Entry) error
	SaveEntryFn                 func(ctx context.Context, e *domain.Entry) error
	DeleteEntryFn               func(ctx context.Context, id uint64) error
	GetEntryByIDFn              func(ctx context.Context, id uint64) (*domain.Entry, error)
	GetEntryByIDForUpdateFn     func(ctx context.Context, id uint64) (*domain.Entry, error)
	GetActiveEntryFn            func(ctx context.Context, applicationID uint64) (*domain.Entry, error)
	SumApprovedHoursFn          func(ctx context.Context, applicationID uint64) (float64, error)
	CreateReportFn              func(ctx context.Context, r *domain.Report) error
	SaveReportFn                func(ctx context.Context, r *domain.Report) error
	GetReportByIDFn             func(ctx context.Context, id uint64) (*domain.Report, error)
	ListReportsByApplicationsFn func(ctx context.Context, applicationIDs []uint64) ([]domain.Report, error)
	DeleteByApplicationsFn      func(ctx context.Context, applicationIDs []uint64) error
}

func (m *Repo) CreateEntry(ctx context.Context, e *domain.Entry) error {
	if m.CreateEntryFn != nil {
		return m.CreateEntryFn(ctx, e)
	}
	return nil
}

func (m *Repo) SaveEntry(ctx context.Context, e *domain.Entry) error {
	if m.SaveEntryFn != nil {
		return m.SaveEntryFn(ctx, e)
	}
	return nil
}

func (m *Repo) DeleteEntry(ctx context.Context, id uint64) error {
	if m.DeleteEntryFn != nil {
		return m.DeleteEntryFn(ctx, id)
	}
	return nil
}

func (m *Repo) GetEntryByID(ctx context.Context, id uint64) (*domain.Entry, error) {
	if m.GetEntryByIDFn != nil {
		return m.GetEntryByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) GetEntryByIDForUpdate(ctx context.Context, id uint64) (*domain.Entry, error) {
	if m.GetEntryByIDForUpdateFn != nil {
		return m.GetEntryByIDForUpdateFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) GetActiveEntry(ctx context.Context, applicationID uint64) (*domain.Entry, error) {
	if m.GetActiveEntryFn != nil {
		return m.GetActiveEntryFn(ctx, applicationID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) SumApprovedHours(ctx context.Context, applicationID uint64) (float64, error) {
	if m.SumApprovedHoursFn != nil {
		return m.SumApprovedHoursFn(ctx, applicationID)
	}
	return 0, nil
}

func (m *Repo) CreateReport(ctx context.Context, r *domain.Report) error {
	if m.CreateReportFn != nil {
		return m.CreateReportFn(ctx, r)
	}
	return nil
}

func (m *Repo) SaveReport(ctx context.Context, r *domain.Report) error {
	if m.SaveReportFn != nil {
		return m.SaveReportFn(ctx, r)
	}
	return nil
}

func (m *Repo) GetReportByID(ctx context.Context, id uint64) (*domain.Report, error) {
	if m.GetReportByIDFn != nil {
		return m.GetReportByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) ListReportsByApplications(ctx context.Context, applicationIDs []uint64) ([]domain.Report, error) {
	if m.ListReportsByApplicationsFn != nil {
		return m.ListReportsByApplicationsFn(ctx, applicationIDs)
	}
	return nil, nil
}

func (m *Repo) DeleteByApplications(ctx context.Context, applicationIDs []uint64) error {
	if m.DeleteByApplicationsFn != nil {
		return m.DeleteByApplicationsFn(ctx, applicationIDs)
	}
	return nil
}
