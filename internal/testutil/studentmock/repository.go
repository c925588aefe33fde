package studentmock

import (
	"context"

	domain "scholarship-backend/internal/domain/student"

	"gorm.io/gorm"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset lookups return gorm.ErrRecordNotFound; unset writes succeed.
type Repo struct {
	CreateFn      func(ctx context.Context, p *domain.Profile) error
	SaveFn        func(ctx context.Context, p *domain.Profile) error
	GetByIDFn     func(ctx context.Context, id uint64) (*domain.Profile, error)
	GetByUserIDFn func(ctx context.Context, userID uint64) (*domain.Profile, error)
	// LockByUserIDFn falls back to GetByUserIDFn when unset.
	LockByUserIDFn func(ctx context.Context, userID uint64) (*domain.Profile, error)
}

func (m *Repo) Create(ctx context.Context, p *domain.Profile) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, p *domain.Profile) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, p)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Profile, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) GetByUserID(ctx context.Context, userID uint64) (*domain.Profile, error) {
	if m.GetByUserIDFn != nil {
		return m.GetByUserIDFn(ctx, userID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) LockByUserID(ctx context.Context, userID uint64) (*domain.Profile, error) {
	if m.LockByUserIDFn != nil {
		return m.LockByUserIDFn(ctx, userID)
	}
	return m.GetByUserID(ctx, userID)
}
