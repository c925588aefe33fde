package student

import (
	"context"
	"errors"
	"testing"

	"scholarship-backend/internal/domain/application"
	"scholarship-backend/internal/domain/program"
	domain "scholarship-backend/internal/domain/student"
	"scholarship-backend/internal/testutil/studentmock"

	"gorm.io/gorm"
)

var me = application.Actor{UserID: 42, Role: application.RoleStudent}

func TestUpsert_CreatesThenUpdates(t *testing.T) {
	var stored *domain.Profile
	creates, saves := 0, 0
	repo := &studentmock.Repo{
		GetByUserIDFn: func(ctx context.Context, userID uint64) (*domain.Profile, error) {
			if stored == nil {
				return nil, gorm.ErrRecordNotFound
			}
			cp := *stored
			return &cp, nil
		},
		CreateFn: func(ctx context.Context, p *domain.Profile) error {
			creates++
			p.ID = 1
			stored = p
			return nil
		},
		SaveFn: func(ctx context.Context, p *domain.Profile) error {
			saves++
			stored = p
			return nil
		},
	}
	uc := NewUsecase(repo)

	p, err := uc.Upsert(context.Background(), me, ProfileInput{FullName: " Ada ", SchoolType: program.SchoolCollege, GPA: 88.5})
	if err != nil {
		t.Fatalf("Upsert create: %v", err)
	}
	if p.UserID != 42 || p.FullName != "Ada" || creates != 1 {
		t.Fatalf("unexpected profile: %+v creates=%d", p, creates)
	}

	units := 18
	p, err = uc.Upsert(context.Background(), me, ProfileInput{FullName: "Ada", SchoolType: program.SchoolCollege, GPA: 91, Units: &units})
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if p.ID != 1 || p.GPA != 91 || *p.Units != 18 || saves != 1 || creates != 1 {
		t.Fatalf("unexpected update: %+v creates=%d saves=%d", p, creates, saves)
	}
}

func TestUpsert_Validation(t *testing.T) {
	tests := []struct {
		name  string
		actor application.Actor
		in    ProfileInput
		want  error
	}{
		{"admin has no profile", application.Actor{UserID: 1, Role: application.RoleAdmin}, ProfileInput{SchoolType: program.SchoolCollege}, application.ErrForbidden},
		{"gpa above 100", me, ProfileInput{SchoolType: program.SchoolCollege, GPA: 100.5}, ErrInvalidGPA},
		{"negative gpa", me, ProfileInput{SchoolType: program.SchoolCollege, GPA: -1}, ErrInvalidGPA},
		{"both is a program setting", me, ProfileInput{SchoolType: program.SchoolBoth}, ErrInvalidSchoolType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewUsecase(&studentmock.Repo{}).Upsert(context.Background(), tt.actor, tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("want %v, got %v", tt.want, err)
			}
		})
	}
}

func TestGet(t *testing.T) {
	repo := &studentmock.Repo{
		GetByUserIDFn: func(ctx context.Context, userID uint64) (*domain.Profile, error) {
			if userID == 42 {
				return &domain.Profile{ID: 1, UserID: 42}, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	}
	uc := NewUsecase(repo)

	if _, err := uc.Get(context.Background(), me, 42); err != nil {
		t.Fatalf("own profile: %v", err)
	}
	if _, err := uc.Get(context.Background(), me, 43); !errors.Is(err, application.ErrForbidden) {
		t.Fatalf("other profile: want ErrForbidden, got %v", err)
	}
	admin := application.Actor{UserID: 1, Role: application.RoleAdmin}
	if _, err := uc.Get(context.Background(), admin, 43); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing: want ErrNotFound, got %v", err)
	}
}
