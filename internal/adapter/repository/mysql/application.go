package mysql

import (
	"context"

	appDomain "scholarship-backend/internal/domain/application"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApplicationRepository struct{ db *gorm.DB }

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Tx runs fn in a db transaction, passing a repo bound to the tx
func (r *ApplicationRepository) Tx(ctx context.Context, fn func(repo appDomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ApplicationRepository{db: tx})
	})
}

func (r *ApplicationRepository) Create(ctx context.Context, a *appDomain.Application) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ApplicationRepository) Save(ctx context.Context, a *appDomain.Application) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id uint64) (*appDomain.Application, error) {
	var out appDomain.Application
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *ApplicationRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*appDomain.Application, error) {
	var out appDomain.Application
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&out)
	return &out, res.Error
}

func (r *ApplicationRepository) FindActive(ctx context.Context, studentID, programID uint64) (*appDomain.Application, error) {
	var out appDomain.Application
	res := r.db.WithContext(ctx).
		Where("student_id = ? AND program_id = ? AND status NOT IN ?", studentID, programID,
			[]appDomain.Status{appDomain.StatusRejected, appDomain.StatusCancelled}).
		Order("id DESC").
		First(&out)
	return &out, res.Error
}

func (r *ApplicationRepository) ListByProgram(ctx context.Context, programID uint64) ([]appDomain.Application, error) {
	var out []appDomain.Application
	err := r.db.WithContext(ctx).Where("program_id = ?", programID).Order("id").Find(&out).Error
	return out, err
}

func (r *ApplicationRepository) ListByStudent(ctx context.Context, studentID uint64) ([]appDomain.Application, error) {
	var out []appDomain.Application
	err := r.db.WithContext(ctx).Where("student_id = ?", studentID).Order("id DESC").Find(&out).Error
	return out, err
}

func (r *ApplicationRepository) DeleteByIDs(ctx context.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&appDomain.Application{}).Error
}

func (r *ApplicationRepository) AppendHistory(ctx context.Context, h *appDomain.StatusHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *ApplicationRepository) ListHistory(ctx context.Context, applicationID uint64) ([]appDomain.StatusHistory, error) {
	var out []appDomain.StatusHistory
	err := r.db.WithContext(ctx).Where("application_id = ?", applicationID).Order("id").Find(&out).Error
	return out, err
}

func (r *ApplicationRepository) DeleteHistory(ctx context.Context, applicationIDs []uint64) error {
	if len(applicationIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("application_id IN ?", applicationIDs).
		Delete(&appDomain.StatusHistory{}).Error
}
