package disbursement

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("disbursement not found")

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusDisbursed  Status = "disbursed"
	StatusOnHold     Status = "on_hold"
	StatusCancelled  Status = "cancelled"
)

// Open reports whether the payment has not been settled or cancelled yet.
func (s Status) Open() bool {
	return s == StatusPending || s == StatusProcessing || s == StatusOnHold
}

// Table: disbursements
type Disbursement struct {
	ID            uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ApplicationID uint64     `gorm:"column:application_id;not null;index" json:"application_id"`
	Amount        float64    `gorm:"column:amount;type:decimal(14,2);not null" json:"amount"`
	Status        Status     `gorm:"column:status;size:16;not null;default:'pending'" json:"status"`
	Reference     string     `gorm:"column:reference;size:64" json:"reference,omitempty"`
	AdminNotes    *string    `gorm:"column:admin_notes;type:text" json:"admin_notes,omitempty"`
	DisbursedAt   *time.Time `gorm:"column:disbursed_at" json:"disbursed_at,omitempty"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Disbursement) TableName() string { return "disbursements" }

type Repository interface {
	Create(ctx context.Context, d *Disbursement) error
	Save(ctx context.Context, d *Disbursement) error
	// GetOpenByApplicationID returns the newest disbursement still open for payment.
	GetOpenByApplicationID(ctx context.Context, applicationID uint64) (*Disbursement, error)
	ListByApplication(ctx context.Context, applicationID uint64) ([]Disbursement, error)
	DeleteByApplications(ctx context.Context, applicationIDs []uint64) error
}
