// Package access decides who may touch an application outside the state
// machine (documents, service entries, reads).
package access

import (
	"context"

	"scholarship-backend/internal/domain/application"
	"scholarship-backend/internal/domain/student"
	"scholarship-backend/internal/usecase/storeerr"
)

// Owner loads the profile behind a and fails with ErrForbidden unless the
// actor is that student.
func Owner(ctx context.Context, students student.Repository, actor application.Actor, a *application.Application) (*student.Profile, error) {
	if actor.Role != application.RoleStudent || actor.UserID == 0 {
		return nil, application.ErrForbidden
	}
	p, err := students.GetByID(ctx, a.StudentID)
	if err != nil {
		if storeerr.IsNotFound(err) {
			return nil, application.ErrForbidden
		}
		return nil, storeerr.Wrap("load student", err, nil)
	}
	if p.UserID != actor.UserID {
		return nil, application.ErrForbidden
	}
	return p, nil
}

// OwnerOrAdmin is Owner but lets admins through. The profile is still
// returned for admins so callers can notify the student.
func OwnerOrAdmin(ctx context.Context, students student.Repository, actor application.Actor, a *application.Application) (*student.Profile, error) {
	if !actor.IsAdmin() {
		return Owner(ctx, students, actor, a)
	}
	p, err := students.GetByID(ctx, a.StudentID)
	if err != nil {
		return nil, storeerr.Wrap("load student", err, student.ErrNotFound)
	}
	return p, nil
}

// Admin fails with ErrForbidden unless the actor is an admin.
func Admin(actor application.Actor) error {
	if !actor.IsAdmin() {
		return application.ErrForbidden
	}
	return nil
}

// Hide turns not-found into forbidden for non-admins so a student cannot
// discover which ids exist.
func Hide(actor application.Actor, err error, notFound error) error {
	if err != nil && !actor.IsAdmin() && err == notFound {
		return application.ErrForbidden
	}
	return err
}
