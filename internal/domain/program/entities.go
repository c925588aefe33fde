package program

import (
	"errors"
	"math"
	"time"
)

var (
	ErrNotFound       = errors.New("program not found")
	ErrInvalidBudget  = errors.New("per_student_budget must be greater than zero and not exceed total_budget")
	ErrSlotsExhausted = errors.New("no available slots left")
)

type SchoolType string

const (
	SchoolHighSchool SchoolType = "high_school"
	SchoolCollege    SchoolType = "college"
	SchoolBoth       SchoolType = "both"
)

// Accepts reports whether a student of type t may apply to a program with eligibility e.
func (e SchoolType) Accepts(t SchoolType) bool {
	return e == SchoolBoth || e == t
}

// HoursPerServiceDay converts community_service_days into required hours.
const HoursPerServiceDay = 8

// Table: scholarship_programs
type Program struct {
	ID                    uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name                  string     `gorm:"column:name;size:191;not null" json:"name"`
	Description           string     `gorm:"column:description;type:text" json:"description"`
	TotalBudget           float64    `gorm:"column:total_budget;type:decimal(14,2);not null" json:"total_budget"`
	PerStudentBudget      float64    `gorm:"column:per_student_budget;type:decimal(14,2);not null" json:"per_student_budget"`
	AvailableSlots        int        `gorm:"column:available_slots;not null;default:0" json:"available_slots"`
	MinGPA                float64    `gorm:"column:min_gpa;type:decimal(5,2);not null;default:0" json:"min_gpa"`
	MinUnits              *int       `gorm:"column:min_units" json:"min_units,omitempty"`
	SchoolTypeEligibility SchoolType `gorm:"column:school_type_eligibility;size:16;not null;default:'both'" json:"school_type_eligibility"`
	ApplicationDeadline   time.Time  `gorm:"column:application_deadline;not null" json:"application_deadline"`
	CommunityServiceDays  int        `gorm:"column:community_service_days;not null;default:0" json:"community_service_days"`
	Active                bool       `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt             time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Program) TableName() string { return "scholarship_programs" }

// RequiredServiceHours is community_service_days expressed in hours.
func (p Program) RequiredServiceHours() float64 {
	return float64(p.CommunityServiceDays * HoursPerServiceDay)
}

// RequiresService reports whether enrolled students owe community service.
func (p Program) RequiresService() bool { return p.CommunityServiceDays > 0 }

// DeadlinePassed is true once now is strictly after the application deadline.
func (p Program) DeadlinePassed(now time.Time) bool {
	return now.After(p.ApplicationDeadline)
}

// SlotsFor derives the initial slot pool as floor(total / perStudent).
func SlotsFor(total, perStudent float64) (int, error) {
	if perStudent <= 0 || total < 0 || perStudent > total {
		return 0, ErrInvalidBudget
	}
	// guard against 0.3/0.1 style float drift before flooring
	return int(math.Floor(total/perStudent + 1e-9)), nil
}

// Table: document_requirements
type DocumentRequirement struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ProgramID   uint64    `gorm:"column:program_id;not null;index" json:"program_id"`
	Name        string    `gorm:"column:name;size:191;not null" json:"name"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Required    bool      `gorm:"column:required;not null;default:true" json:"required"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (DocumentRequirement) TableName() string { return "document_requirements" }
