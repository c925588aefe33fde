package applicationmock

import (
	"context"

	domain "scholarship-backend/internal/domain/application"

	"gorm.io/gorm"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset lookups return gorm.ErrRecordNotFound; unset writes succeed.
type Repo struct {
	CreateFn           func(ctx context.Context, a *domain.Application) error
	SaveFn             func(ctx context.Context, a *domain.Application) error
	GetByIDFn          func(ctx context.Context, id uint64) (*domain.Application, error)
	GetByIDForUpdateFn func(ctx context.Context, id uint64) (*domain.Application, error)
	FindActiveFn       func(ctx context.Context, studentID, programID uint64) (*domain.Application, error)
	ListByProgramFn    func(ctx context.Context, programID uint64) ([]domain.Application, error)
	ListByStudentFn    func(ctx context.Context, studentID uint64) ([]domain.Application, error)
	DeleteByIDsFn      func(ctx context.Context, ids []uint64) error
	AppendHistoryFn    func(ctx context.Context, h *domain.StatusHistory) error
	ListHistoryFn      func(ctx context.Context, applicationID uint64) ([]domain.StatusHistory, error)
	DeleteHistoryFn    func(ctx context.Context, applicationIDs []uint64) error
}

func (m *Repo) Create(ctx context.Context, a *domain.Application) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, a *domain.Application) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, a)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Application, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Application, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) FindActive(ctx context.Context, studentID, programID uint64) (*domain.Application, error) {
	if m.FindActiveFn != nil {
		return m.FindActiveFn(ctx, studentID, programID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) ListByProgram(ctx context.Context, programID uint64) ([]domain.Application, error) {
	if m.ListByProgramFn != nil {
		return m.ListByProgramFn(ctx, programID)
	}
	return nil, nil
}

func (m *Repo) ListByStudent(ctx context.Context, studentID uint64) ([]domain.Application, error) {
	if m.ListByStudentFn != nil {
		return m.ListByStudentFn(ctx, studentID)
	}
	return nil, nil
}

func (m *Repo) DeleteByIDs(ctx context.Context, ids []uint64) error {
	if m.DeleteByIDsFn != nil {
		return m.DeleteByIDsFn(ctx, ids)
	}
	return nil
}

func (m *Repo) AppendHistory(ctx context.Context, h *domain.StatusHistory) error {
	if m.AppendHistoryFn != nil {
		return m.AppendHistoryFn(ctx, h)
	}
	return nil
}

func (m *Repo) ListHistory(ctx context.Context, applicationID uint64) ([]domain.StatusHistory, error) {
	if m.ListHistoryFn != nil {
		return m.ListHistoryFn(ctx, applicationID)
	}
	return nil, nil
}

func (m *Repo) DeleteHistory(ctx context.Context, applicationIDs []uint64) error {
	if m.DeleteHistoryFn != nil {
		return m.DeleteHistoryFn(ctx, applicationIDs)
	}
	return nil
}
