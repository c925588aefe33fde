package mysql

import (
	"context"
	"time"

	programDomain "scholarship-backend/internal/domain/program"

	"gorm.io/gorm"
)

type ProgramRepository struct{ db *gorm.DB }

func NewProgramRepository(db *gorm.DB) *ProgramRepository { return &ProgramRepository{db: db} }

func (r *ProgramRepository) Create(ctx context.Context, p *programDomain.Program) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProgramRepository) GetByID(ctx context.Context, id uint64) (*programDomain.Program, error) {
	var out programDomain.Program
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *ProgramRepository) Save(ctx context.Context, p *programDomain.Program) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *ProgramRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&programDomain.Program{}).Error
}

// DecrementSlot is a single conditional UPDATE so two concurrent enrolls
// can never both take the last slot.
func (r *ProgramRepository) DecrementSlot(ctx context.Context, id uint64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&programDomain.Program{}).
		Where("id = ? AND available_slots > 0", id).
		UpdateColumn("available_slots", gorm.Expr("available_slots - ?", 1))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *ProgramRepository) ReleaseSlot(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).
		Model(&programDomain.Program{}).
		Where("id = ?", id).
		UpdateColumn("available_slots", gorm.Expr("available_slots + ?", 1)).Error
}

func (r *ProgramRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&programDomain.Program{}).
		Where("active = ? AND application_deadline < ?", true, now).
		Update("active", false)
	return res.RowsAffected, res.Error
}

func (r *ProgramRepository) CreateRequirement(ctx context.Context, req *programDomain.DocumentRequirement) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *ProgramRepository) ListRequirements(ctx context.Context, programID uint64) ([]programDomain.DocumentRequirement, error) {
	var out []programDomain.DocumentRequirement
	err := r.db.WithContext(ctx).Where("program_id = ?", programID).Order("id").Find(&out).Error
	return out, err
}

func (r *ProgramRepository) DeleteRequirements(ctx context.Context, programID uint64) error {
	return r.db.WithContext(ctx).
		Where("program_id = ?", programID).
		Delete(&programDomain.DocumentRequirement{}).Error
}
