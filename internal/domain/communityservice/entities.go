package communityservice

import (
	"context"
	"errors"
	"math"
	"time"
)

var (
	ErrNotFound             = errors.New("community service record not found")
	ErrSessionAlreadyActive = errors.New("a community service session is already in progress for this application")
	ErrNoActiveSession      = errors.New("community service entry is not in progress")
	ErrInvalidTimeOut       = errors.New("time_out must be after time_in")
	ErrFutureTimeOut        = errors.New("time_out cannot be in the future")
	ErrNotCompleted         = errors.New("only completed entries can be reviewed")
	ErrReportReviewed       = errors.New("report already reviewed")
	ErrServiceClosed        = errors.New("community service can only be logged while the application is enrolled or service is pending")
)

type EntryStatus string

const (
	EntryInProgress EntryStatus = "in_progress"
	EntryCompleted  EntryStatus = "completed"
	EntryApproved   EntryStatus = "approved"
	EntryRejected   EntryStatus = "rejected"
)

// Table: community_service_entries
type Entry struct {
	ID             uint64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ApplicationID  uint64      `gorm:"column:application_id;not null;index" json:"application_id"`
	Description    string      `gorm:"column:description;type:text" json:"description"`
	LessonsLearned string      `gorm:"column:lessons_learned;type:text" json:"lessons_learned,omitempty"`
	TimeIn         time.Time   `gorm:"column:time_in;not null" json:"time_in"`
	TimeOut        *time.Time  `gorm:"column:time_out" json:"time_out,omitempty"`
	HoursCompleted float64     `gorm:"column:hours_completed;type:decimal(8,2);not null;default:0" json:"hours_completed"`
	Status         EntryStatus `gorm:"column:status;size:16;not null;default:'in_progress'" json:"status"`
	AdminNotes     string      `gorm:"column:admin_notes;type:text" json:"admin_notes,omitempty"`
	CreatedAt      time.Time   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Entry) TableName() string { return "community_service_entries" }

// ElapsedHours is (out - in) in hours, rounded to 2 decimals.
func ElapsedHours(in, out time.Time) float64 {
	return Round2(out.Sub(in).Hours())
}

func Round2(f float64) float64 { return math.Round(f*100) / 100 }

type ReportStatus string

const (
	ReportPendingReview ReportStatus = "pending_review"
	ReportApproved      ReportStatus = "approved"
	ReportRejected      ReportStatus = "rejected"
)

// Table: community_service_reports
type Report struct {
	ID            uint64       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ApplicationID uint64       `gorm:"column:application_id;not null;index" json:"application_id"`
	Description   string       `gorm:"column:description;type:text;not null" json:"description"`
	DaysCompleted int          `gorm:"column:days_completed;not null;default:0" json:"days_completed"`
	PhotoPath     string       `gorm:"column:photo_path;size:512" json:"-"`
	Status        ReportStatus `gorm:"column:status;size:16;not null;default:'pending_review'" json:"status"`
	AdminNotes    string       `gorm:"column:admin_notes;type:text" json:"admin_notes,omitempty"`
	CreatedAt     time.Time    `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Report) TableName() string { return "community_service_reports" }

type Repository interface {
	CreateEntry(ctx context.Context, e *Entry) error
	SaveEntry(ctx context.Context, e *Entry) error
	DeleteEntry(ctx context.Context, id uint64) error
	GetEntryByID(ctx context.Context, id uint64) (*Entry, error)
	GetEntryByIDForUpdate(ctx context.Context, id uint64) (*Entry, error)
	GetActiveEntry(ctx context.Context, applicationID uint64) (*Entry, error)
	// SumApprovedHours totals hours_completed of approved entries.
	SumApprovedHours(ctx context.Context, applicationID uint64) (float64, error)

	CreateReport(ctx context.Context, r *Report) error
	SaveReport(ctx context.Context, r *Report) error
	GetReportByID(ctx context.Context, id uint64) (*Report, error)
	ListReportsByApplications(ctx context.Context, applicationIDs []uint64) ([]Report, error)

	DeleteByApplications(ctx context.Context, applicationIDs []uint64) error
}
