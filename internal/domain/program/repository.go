package program

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, p *Program) error
	GetByID(ctx context.Context, id uint64) (*Program, error)
	Save(ctx context.Context, p *Program) error
	Delete(ctx context.Context, id uint64) error

	// DecrementSlot consumes one slot with a single conditional update.
	// It returns false when no slot was left.
	DecrementSlot(ctx context.Context, id uint64) (bool, error)
	// ReleaseSlot gives a previously consumed slot back to the pool.
	ReleaseSlot(ctx context.Context, id uint64) error

	// DeactivateExpired flips active=false on programs whose deadline is before now.
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)

	CreateRequirement(ctx context.Context, r *DocumentRequirement) error
	ListRequirements(ctx context.Context, programID uint64) ([]DocumentRequirement, error)
	DeleteRequirements(ctx context.Context, programID uint64) error
}
