package mysql

import (
	"context"

	disbDomain "scholarship-backend/internal/domain/disbursement"

	"gorm.io/gorm"
)

type DisbursementRepository struct{ db *gorm.DB }

func NewDisbursementRepository(db *gorm.DB) *DisbursementRepository {
	return &DisbursementRepository{db: db}
}

func (r *DisbursementRepository) Create(ctx context.Context, d *disbDomain.Disbursement) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DisbursementRepository) Save(ctx context.Context, d *disbDomain.Disbursement) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *DisbursementRepository) GetOpenByApplicationID(ctx context.Context, applicationID uint64) (*disbDomain.Disbursement, error) {
	var out disbDomain.Disbursement
	res := r.db.WithContext(ctx).
		Where("application_id = ? AND status IN ?", applicationID,
			[]disbDomain.Status{disbDomain.StatusPending, disbDomain.StatusProcessing, disbDomain.StatusOnHold}).
		Order("id DESC").
		First(&out)
	return &out, res.Error
}

func (r *DisbursementRepository) ListByApplication(ctx context.Context, applicationID uint64) ([]disbDomain.Disbursement, error) {
	var out []disbDomain.Disbursement
	err := r.db.WithContext(ctx).Where("application_id = ?", applicationID).Order("id").Find(&out).Error
	return out, err
}

func (r *DisbursementRepository) DeleteByApplications(ctx context.Context, applicationIDs []uint64) error {
	if len(applicationIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("application_id IN ?", applicationIDs).
		Delete(&disbDomain.Disbursement{}).Error
}
