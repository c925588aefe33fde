package application

import "context"

type Repository interface {
	Create(ctx context.Context, a *Application) error
	Save(ctx context.Context, a *Application) error
	GetByID(ctx context.Context, id uint64) (*Application, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id uint64) (*Application, error)
	// FindActive returns the newest non-rejected, non-cancelled application of the pair.
	FindActive(ctx context.Context, studentID, programID uint64) (*Application, error)
	ListByProgram(ctx context.Context, programID uint64) ([]Application, error)
	ListByStudent(ctx context.Context, studentID uint64) ([]Application, error)
	DeleteByIDs(ctx context.Context, ids []uint64) error

	AppendHistory(ctx context.Context, h *StatusHistory) error
	ListHistory(ctx context.Context, applicationID uint64) ([]StatusHistory, error)
	DeleteHistory(ctx context.Context, applicationIDs []uint64) error
}
