package uowmock

import (
	"context"
	"errors"
	"testing"

	"scholarship-backend/internal/domain/application"
	"scholarship-backend/internal/domain/uow"
	"scholarship-backend/internal/testutil/applicationmock"
	"scholarship-backend/internal/testutil/programmock"
)

func TestUoW_WithinTx_Happy(t *testing.T) {
	ctx := context.Background()

	apps := &applicationmock.Repo{}
	progs := &programmock.Repo{}
	repos := uow.Repos{Applications: apps, Programs: progs}

	innerCalled := false
	m := &UoW{
		WithinTxFn: func(gotCtx context.Context, fn func(r uow.Repos) error) error {
			if gotCtx != ctx {
				t.Fatalf("WithinTx: ctx mismatch")
			}
			return fn(repos)
		},
	}

	err := m.WithinTx(ctx, func(r uow.Repos) error {
		innerCalled = true
		if r.Applications != apps || r.Programs != progs {
			t.Fatalf("WithinTx: repos not forwarded correctly")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithinTx: unexpected err: %v", err)
	}
	if !innerCalled {
		t.Fatalf("WithinTx: inner fn not called")
	}
}

func TestUoW_Default_Unimplemented(t *testing.T) {
	ctx := context.Background()
	m := &UoW{}
	if err := m.WithinTx(ctx, func(uow.Repos) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinTx default: want errUnimplemented, got %v", err)
	}
	if err := m.WithinApplicationTx(ctx, 1, func(uow.Repos, *application.Application) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinApplicationTx default: want errUnimplemented, got %v", err)
	}
}

func TestPassthrough_LocksApplication(t *testing.T) {
	lock := &application.Application{ID: 7, Status: application.StatusDraft}
	apps := &applicationmock.Repo{
		GetByIDForUpdateFn: func(_ context.Context, id uint64) (*application.Application, error) {
			if id != 7 {
				t.Fatalf("locked id=%d", id)
			}
			return lock, nil
		},
	}
	m := Passthrough(uow.Repos{Applications: apps})
	if m.Repos().Applications != apps {
		t.Fatalf("Repos not forwarded")
	}
	err := m.WithinApplicationTx(context.Background(), 7, func(_ uow.Repos, a *application.Application) error {
		if a != lock {
			t.Fatalf("application not forwarded: %+v", a)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestPassthrough_LockErrorStopsBody(t *testing.T) {
	sentinel := errors.New("gone")
	apps := &applicationmock.Repo{
		GetByIDForUpdateFn: func(context.Context, uint64) (*application.Application, error) { return nil, sentinel },
	}
	m := Passthrough(uow.Repos{Applications: apps})
	err := m.WithinApplicationTx(context.Background(), 1, func(uow.Repos, *application.Application) error {
		t.Fatalf("body must not run")
		return nil
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("want %v, got %v", sentinel, err)
	}
}

func TestUoW_FluentSetters_And_Reset(t *testing.T) {
	m := New().
		WithWithinTx(func(context.Context, func(uow.Repos) error) error { return nil }).
		WithWithinApplicationTx(func(context.Context, uint64, func(uow.Repos, *application.Application) error) error { return nil })
	if m.WithinTxFn == nil || m.WithinApplicationTxFn == nil {
		t.Fatalf("fluent setters didn't assign funcs")
	}
	m.Reset()
	if m.WithinTxFn != nil || m.WithinApplicationTxFn != nil {
		t.Fatalf("Reset should clear function fields")
	}
}
