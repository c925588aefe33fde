package student

import (
	"context"
	"errors"
	"time"

	"scholarship-backend/internal/domain/program"
)

var ErrNotFound = errors.New("student profile not found")

// Table: student_profiles
type Profile struct {
	ID         uint64             `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID     uint64             `gorm:"column:user_id;not null;uniqueIndex" json:"user_id"`
	FullName   string             `gorm:"column:full_name;size:191;not null" json:"full_name"`
	SchoolType program.SchoolType `gorm:"column:school_type;size:16;not null" json:"school_type"`
	School     string             `gorm:"column:school;size:191" json:"school"`
	GPA        float64            `gorm:"column:gpa;type:decimal(5,2);not null;default:0" json:"gpa"`
	Units      *int               `gorm:"column:units" json:"units,omitempty"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Profile) TableName() string { return "student_profiles" }

type Repository interface {
	Create(ctx context.Context, p *Profile) error
	Save(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id uint64) (*Profile, error)
	GetByUserID(ctx context.Context, userID uint64) (*Profile, error)
	// LockByUserID is GetByUserID with a row lock held until the tx ends.
	LockByUserID(ctx context.Context, userID uint64) (*Profile, error)
}
