package mysql

import (
	"context"

	docDomain "scholarship-backend/internal/domain/document"

	"gorm.io/gorm"
)

type DocumentRepository struct{ db *gorm.DB }

func NewDocumentRepository(db *gorm.DB) *DocumentRepository { return &DocumentRepository{db: db} }

func (r *DocumentRepository) Create(ctx context.Context, u *docDomain.Upload) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *DocumentRepository) Save(ctx context.Context, u *docDomain.Upload) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *DocumentRepository) GetByID(ctx context.Context, id uint64) (*docDomain.Upload, error) {
	var out docDomain.Upload
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *DocumentRepository) GetByRequirement(ctx context.Context, applicationID, requirementID uint64) (*docDomain.Upload, error) {
	var out docDomain.Upload
	res := r.db.WithContext(ctx).
		Where("application_id = ? AND requirement_id = ?", applicationID, requirementID).
		Order("id DESC").
		First(&out)
	return &out, res.Error
}

func (r *DocumentRepository) ListByApplication(ctx context.Context, applicationID uint64) ([]docDomain.Upload, error) {
	var out []docDomain.Upload
	err := r.db.WithContext(ctx).Where("application_id = ?", applicationID).Order("id").Find(&out).Error
	return out, err
}

func (r *DocumentRepository) ListByApplications(ctx context.Context, applicationIDs []uint64) ([]docDomain.Upload, error) {
	var out []docDomain.Upload
	if len(applicationIDs) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Where("application_id IN ?", applicationIDs).Order("id").Find(&out).Error
	return out, err
}

func (r *DocumentRepository) DeleteByApplications(ctx context.Context, applicationIDs []uint64) error {
	if len(applicationIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("application_id IN ?", applicationIDs).
		Delete(&docDomain.Upload{}).Error
}
