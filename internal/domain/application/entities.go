package application

import (
	"time"

	"gorm.io/datatypes"
)

type Status string

const (
	StatusDraft                 Status = "draft"
	StatusSubmitted             Status = "submitted"
	StatusDocumentsPending      Status = "documents_pending"
	StatusDocumentsUnderReview  Status = "documents_under_review"
	StatusDocumentsApproved     Status = "documents_approved"
	StatusDocumentsRejected     Status = "documents_rejected"
	StatusEligibilityVerified   Status = "eligibility_verified"
	StatusEnrolled              Status = "enrolled"
	StatusServicePending        Status = "service_pending"
	StatusServiceCompleted      Status = "service_completed"
	StatusDisbursementPending   Status = "disbursement_pending"
	StatusDisbursementProcessed Status = "disbursement_processed"
	StatusCompleted             Status = "completed"
	StatusRejected              Status = "rejected"
	StatusCancelled             Status = "cancelled"
)

// Statuses lists every status in happy-path order followed by the side states.
var Statuses = []Status{
	StatusDraft,
	StatusSubmitted,
	StatusDocumentsPending,
	StatusDocumentsUnderReview,
	StatusDocumentsApproved,
	StatusEligibilityVerified,
	StatusEnrolled,
	StatusServicePending,
	StatusServiceCompleted,
	StatusDisbursementPending,
	StatusDisbursementProcessed,
	StatusCompleted,
	StatusDocumentsRejected,
	StatusRejected,
	StatusCancelled,
}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Terminal statuses accept no further operation.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusRejected || s == StatusCancelled
}

// Active applications block a second application to the same program.
func (s Status) Active() bool {
	return s != StatusRejected && s != StatusCancelled
}

// HoldsSlot is true for statuses reached after a slot was consumed by enroll.
func (s Status) HoldsSlot() bool {
	switch s {
	case StatusEnrolled, StatusServicePending, StatusServiceCompleted,
		StatusDisbursementPending, StatusDisbursementProcessed:
		return true
	}
	return false
}

// Table: scholarship_applications
type Application struct {
	ID          uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	StudentID   uint64     `gorm:"column:student_id;not null;index:idx_applications_student_program" json:"student_id"`
	ProgramID   uint64     `gorm:"column:program_id;not null;index:idx_applications_student_program;index" json:"program_id"`
	Status      Status     `gorm:"column:status;size:32;not null;default:'draft';index" json:"status"`
	AdminNotes  *string    `gorm:"column:admin_notes;type:text" json:"admin_notes,omitempty"`
	SubmittedAt *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	ReviewedAt  *time.Time `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Application) TableName() string { return "scholarship_applications" }

// Table: application_status_history
type StatusHistory struct {
	ID            uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ApplicationID uint64         `gorm:"column:application_id;not null;index" json:"application_id"`
	FromStatus    Status         `gorm:"column:from_status;size:32;not null" json:"from_status"`
	ToStatus      Status         `gorm:"column:to_status;size:32;not null" json:"to_status"`
	Operation     Operation      `gorm:"column:operation;size:32;not null" json:"operation"`
	ActorID       uint64         `gorm:"column:actor_id;not null" json:"actor_id"`
	ActorRole     Role           `gorm:"column:actor_role;size:16;not null" json:"actor_role"`
	Notes         *string        `gorm:"column:notes;type:text" json:"notes,omitempty"`
	Effects       datatypes.JSON `gorm:"column:effects" json:"effects,omitempty"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (StatusHistory) TableName() string { return "application_status_history" }

type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID uint64
	Role   Role
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
