package mysql

import (
	"context"

	csDomain "scholarship-backend/internal/domain/communityservice"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ServiceRepository struct{ db *gorm.DB }

func NewServiceRepository(db *gorm.DB) *ServiceRepository { return &ServiceRepository{db: db} }

func (r *ServiceRepository) CreateEntry(ctx context.Context, e *csDomain.Entry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *ServiceRepository) SaveEntry(ctx context.Context, e *csDomain.Entry) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *ServiceRepository) DeleteEntry(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&csDomain.Entry{}).Error
}

func (r *ServiceRepository) GetEntryByID(ctx context.Context, id uint64) (*csDomain.Entry, error) {
	var out csDomain.Entry
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *ServiceRepository) GetEntryByIDForUpdate(ctx context.Context, id uint64) (*csDomain.Entry, error) {
	var out csDomain.Entry
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&out)
	return &out, res.Error
}

func (r *ServiceRepository) GetActiveEntry(ctx context.Context, applicationID uint64) (*csDomain.Entry, error) {
	var out csDomain.Entry
	res := r.db.WithContext(ctx).
		Where("application_id = ? AND status = ?", applicationID, csDomain.EntryInProgress).
		First(&out)
	return &out, res.Error
}

func (r *ServiceRepository) SumApprovedHours(ctx context.Context, applicationID uint64) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&csDomain.Entry{}).
		Where("application_id = ? AND status = ?", applicationID, csDomain.EntryApproved).
		Select("COALESCE(SUM(hours_completed), 0)").
		Scan(&total).Error
	return csDomain.Round2(total), err
}

func (r *ServiceRepository) CreateReport(ctx context.Context, rep *csDomain.Report) error {
	return r.db.WithContext(ctx).Create(rep).Error
}

func (r *ServiceRepository) SaveReport(ctx context.Context, rep *csDomain.Report) error {
	return r.db.WithContext(ctx).Save(rep).Error
}

func (r *ServiceRepository) GetReportByID(ctx context.Context, id uint64) (*csDomain.Report, error) {
	var out csDomain.Report
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *ServiceRepository) ListReportsByApplications(ctx context.Context, applicationIDs []uint64) ([]csDomain.Report, error) {
	var out []csDomain.Report
	if len(applicationIDs) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Where("application_id IN ?", applicationIDs).Order("id").Find(&out).Error
	return out, err
}

func (r *ServiceRepository) DeleteByApplications(ctx context.Context, applicationIDs []uint64) error {
	if len(applicationIDs) == 0 {
		return nil
	}
	db := r.db.WithContext(ctx)
	if err := db.Where("application_id IN ?", applicationIDs).Delete(&csDomain.Entry{}).Error; err != nil {
		return err
	}
	return db.Where("application_id IN ?", applicationIDs).Delete(&csDomain.Report{}).Error
}
