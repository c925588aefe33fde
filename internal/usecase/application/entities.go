package application

import (
	"time"

	domain "scholarship-backend/internal/domain/application"
	"scholarship-backend/internal/domain/disbursement"
)

type TransitionInput struct {
	ApplicationID uint64           `json:"-"`
	Op            domain.Operation `json:"-"`
	Notes         string           `json:"notes"`
}

type ApplicationDTO struct {
	ID          uint64             `json:"id"`
	StudentID   uint64             `json:"student_id"`
	ProgramID   uint64             `json:"program_id"`
	Status      domain.Status      `json:"status"`
	AdminNotes  *string            `json:"admin_notes,omitempty"`
	SubmittedAt *time.Time         `json:"submitted_at,omitempty"`
	ReviewedAt  *time.Time         `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	Allowed     []domain.Operation `json:"allowed_operations"`
}

// DetailDTO is what GET /applications/:id returns.
type DetailDTO struct {
	ApplicationDTO
	History       []domain.StatusHistory      `json:"history"`
	Disbursements []disbursement.Disbursement `json:"disbursements"`
}

// TransitionDTO reports the edge that was taken.
type TransitionDTO struct {
	ApplicationDTO
	From    domain.Status       `json:"from"`
	Op      domain.Operation    `json:"operation"`
	Effects []domain.EffectKind `json:"effects"`
}

func toDTO(a *domain.Application) ApplicationDTO {
	allowed := domain.Allowed(a.Status)
	if allowed == nil {
		allowed = []domain.Operation{}
	}
	return ApplicationDTO{
		ID:          a.ID,
		StudentID:   a.StudentID,
		ProgramID:   a.ProgramID,
		Status:      a.Status,
		AdminNotes:  a.AdminNotes,
		SubmittedAt: a.SubmittedAt,
		ReviewedAt:  a.ReviewedAt,
		CreatedAt:   a.CreatedAt,
		Allowed:     allowed,
	}
}
