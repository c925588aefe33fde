package document

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound          = errors.New("document not found")
	ErrInvalidReview     = errors.New("invalid review status")
	ErrAlreadyReviewed   = errors.New("document already reviewed")
	ErrRequirementNotSet = errors.New("requirement does not belong to the application's program")
	ErrUploadClosed      = errors.New("documents can no longer be changed for this application")
	ErrEmptyFile         = errors.New("file is empty")
)

type Status string

const (
	StatusPendingReview      Status = "pending_review"
	StatusApproved           Status = "approved"
	StatusRejectedInvalid    Status = "rejected_invalid"
	StatusRejectedIncomplete Status = "rejected_incomplete"
	StatusRejectedIllegible  Status = "rejected_illegible"
)

// Rejected reports whether s is one of the rejected_* review outcomes.
func (s Status) Rejected() bool { return strings.HasPrefix(string(s), "rejected_") }

// ReviewOutcome reports whether s may be assigned by a reviewer.
func (s Status) ReviewOutcome() bool {
	switch s {
	case StatusApproved, StatusRejectedInvalid, StatusRejectedIncomplete, StatusRejectedIllegible:
		return true
	}
	return false
}

// Table: document_uploads
type Upload struct {
	ID            uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ApplicationID uint64     `gorm:"column:application_id;not null;index" json:"application_id"`
	RequirementID uint64     `gorm:"column:requirement_id;not null;index" json:"requirement_id"`
	FileName      string     `gorm:"column:file_name;size:255;not null" json:"file_name"`
	Path          string     `gorm:"column:path;size:512;not null" json:"-"`
	SizeBytes     int64      `gorm:"column:size_bytes;not null;default:0" json:"size_bytes"`
	Status        Status     `gorm:"column:status;size:32;not null;default:'pending_review'" json:"status"`
	ReviewNotes   string     `gorm:"column:review_notes;type:text" json:"review_notes,omitempty"`
	ReviewedAt    *time.Time `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Upload) TableName() string { return "document_uploads" }

type Repository interface {
	Create(ctx context.Context, u *Upload) error
	Save(ctx context.Context, u *Upload) error
	GetByID(ctx context.Context, id uint64) (*Upload, error)
	GetByRequirement(ctx context.Context, applicationID, requirementID uint64) (*Upload, error)
	ListByApplication(ctx context.Context, applicationID uint64) ([]Upload, error)
	ListByApplications(ctx context.Context, applicationIDs []uint64) ([]Upload, error)
	DeleteByApplications(ctx context.Context, applicationIDs []uint64) error
}
