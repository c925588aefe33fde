package applicationmock

import (
	"context"
	"errors"
	"testing"

	domain "scholarship-backend/internal/domain/application"

	"gorm.io/gorm"
)

func TestRepo_Create(t *testing.T) {
	ctx := context.Background()
	a := &domain.Application{ID: 1}

	called := false
	wantErr := errors.New("boom")
	m := &Repo{
		CreateFn: func(gotCtx context.Context, got *domain.Application) error {
			called = true
			if gotCtx != ctx {
				t.Fatalf("Create ctx mismatch")
			}
			if got != a {
				t.Fatalf("Create arg mismatch")
			}
			return wantErr
		},
	}
	if err := m.Create(ctx, a); !errors.Is(err, wantErr) {
		t.Fatalf("Create: want %v, got %v", wantErr, err)
	}
	if !called {
		t.Fatalf("CreateFn not called")
	}

	// Default (nil func) → no-op, nil error
	m = &Repo{}
	if err := m.Create(ctx, a); err != nil {
		t.Fatalf("Create default: want nil, got %v", err)
	}
}

func TestRepo_GetByIDForUpdate(t *testing.T) {
	ctx := context.Background()
	want := &domain.Application{ID: 9, Status: domain.StatusSubmitted}

	m := &Repo{
		GetByIDForUpdateFn: func(gotCtx context.Context, id uint64) (*domain.Application, error) {
			if id != 9 {
				t.Fatalf("GetByIDForUpdate id mismatch: got %d", id)
			}
			return want, nil
		},
	}
	got, err := m.GetByIDForUpdate(ctx, 9)
	if err != nil || got != want {
		t.Fatalf("GetByIDForUpdate: got %+v, %v", got, err)
	}

	// Default (nil func) → record not found
	m = &Repo{}
	got, err = m.GetByIDForUpdate(ctx, 9)
	if !errors.Is(err, gorm.ErrRecordNotFound) || got != nil {
		t.Fatalf("GetByIDForUpdate default: got %+v, %v", got, err)
	}
}

func TestRepo_FindActive(t *testing.T) {
	ctx := context.Background()
	m := &Repo{
		FindActiveFn: func(_ context.Context, studentID, programID uint64) (*domain.Application, error) {
			if studentID != 3 || programID != 4 {
				t.Fatalf("FindActive args mismatch: %d %d", studentID, programID)
			}
			return &domain.Application{ID: 1}, nil
		},
	}
	if got, err := m.FindActive(ctx, 3, 4); err != nil || got.ID != 1 {
		t.Fatalf("FindActive: got %+v, %v", got, err)
	}
	if _, err := (&Repo{}).FindActive(ctx, 3, 4); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("FindActive default: want not found, got %v", err)
	}
}

func TestRepo_History(t *testing.T) {
	ctx := context.Background()
	var appended []*domain.StatusHistory
	m := &Repo{
		AppendHistoryFn: func(_ context.Context, h *domain.StatusHistory) error {
			appended = append(appended, h)
			return nil
		},
		ListHistoryFn: func(_ context.Context, applicationID uint64) ([]domain.StatusHistory, error) {
			out := make([]domain.StatusHistory, 0, len(appended))
			for _, h := range appended {
				if h.ApplicationID == applicationID {
					out = append(out, *h)
				}
			}
			return out, nil
		},
	}
	_ = m.AppendHistory(ctx, &domain.StatusHistory{ApplicationID: 1, ToStatus: domain.StatusDraft})
	_ = m.AppendHistory(ctx, &domain.StatusHistory{ApplicationID: 2, ToStatus: domain.StatusDraft})
	got, err := m.ListHistory(ctx, 1)
	if err != nil || len(got) != 1 {
		t.Fatalf("ListHistory: got %d rows, %v", len(got), err)
	}

	// Defaults → empty, no error
	m = &Repo{}
	if err := m.AppendHistory(ctx, &domain.StatusHistory{}); err != nil {
		t.Fatalf("AppendHistory default: %v", err)
	}
	if rows, err := m.ListHistory(ctx, 1); err != nil || rows != nil {
		t.Fatalf("ListHistory default: %v, %v", rows, err)
	}
	if err := m.DeleteHistory(ctx, []uint64{1}); err != nil {
		t.Fatalf("DeleteHistory default: %v", err)
	}
}
