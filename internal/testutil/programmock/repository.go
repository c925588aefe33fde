package programmock

import (
	"context"
	"time"

	domain "scholarship-backend/internal/domain/program"

	"gorm.io/gorm"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset lookups return gorm.ErrRecordNotFound; unset writes succeed.
type Repo struct {
	CreateFn             func(ctx context.Context, p *domain.Program) error
	GetByIDFn            func(ctx context.Context, id uint64) (*domain.Program, error)
	SaveFn               func(ctx context.Context, p *domain.Program) error
	DeleteFn             func(ctx context.Context, id uint64) error
	DecrementSlotFn      func(ctx context.Context, id uint64) (bool, error)
	ReleaseSlotFn        func(ctx context.Context, id uint64) error
	DeactivateExpiredFn  func(ctx context.Context, now time.Time) (int64, error)
	CreateRequirementFn  func(ctx context.Context, r *domain.DocumentRequirement) error
	ListRequirementsFn   func(ctx context.Context, programID uint64) ([]domain.DocumentRequirement, error)
	DeleteRequirementsFn func(ctx context.Context, programID uint64) error
}

func (m *Repo) Create(ctx context.Context, p *domain.Program) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Program, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) Save(ctx context.Context, p *domain.Program) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, p)
	}
	return nil
}

func (m *Repo) Delete(ctx context.Context, id uint64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *Repo) DecrementSlot(ctx context.Context, id uint64) (bool, error) {
	if m.DecrementSlotFn != nil {
		return m.DecrementSlotFn(ctx, id)
	}
	return false, nil
}

func (m *Repo) ReleaseSlot(ctx context.Context, id uint64) error {
	if m.ReleaseSlotFn != nil {
		return m.ReleaseSlotFn(ctx, id)
	}
	return nil
}

func (m *Repo) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	if m.DeactivateExpiredFn != nil {
		return m.DeactivateExpiredFn(ctx, now)
	}
	return 0, nil
}

func (m *Repo) CreateRequirement(ctx context.Context, r *domain.DocumentRequirement) error {
	if m.CreateRequirementFn != nil {
		return m.CreateRequirementFn(ctx, r)
	}
	return nil
}

func (m *Repo) ListRequirements(ctx context.Context, programID uint64) ([]domain.DocumentRequirement, error) {
	if m.ListRequirementsFn != nil {
		return m.ListRequirementsFn(ctx, programID)
	}
	return nil, nil
}

func (m *Repo) DeleteRequirements(ctx context.Context, programID uint64) error {
	if m.DeleteRequirementsFn != nil {
		return m.DeleteRequirementsFn(ctx, programID)
	}
	return nil
}
