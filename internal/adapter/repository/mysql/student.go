package mysql

import (
	"context"

	studentDomain "scholarship-backend/internal/domain/student"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StudentRepository struct{ db *gorm.DB }

func NewStudentRepository(db *gorm.DB) *StudentRepository { return &StudentRepository{db: db} }

func (r *StudentRepository) Create(ctx context.Context, p *studentDomain.Profile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *StudentRepository) Save(ctx context.Context, p *studentDomain.Profile) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *StudentRepository) GetByID(ctx context.Context, id uint64) (*studentDomain.Profile, error) {
	var out studentDomain.Profile
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *StudentRepository) GetByUserID(ctx context.Context, userID uint64) (*studentDomain.Profile, error) {
	var out studentDomain.Profile
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&out)
	return &out, res.Error
}

func (r *StudentRepository) LockByUserID(ctx context.Context, userID uint64) (*studentDomain.Profile, error) {
	var out studentDomain.Profile
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&out)
	return &out, res.Error
}
