package communityservice

import (
	"context"
	"fmt"
	"log"
	"time"

	"scholarship-backend/internal/domain/application"
	domain "scholarship-backend/internal/domain/communityservice"
	"scholarship-backend/internal/domain/notification"
	"scholarship-backend/internal/domain/program"
	"scholarship-backend/internal/domain/storage"
	"scholarship-backend/internal/domain/uow"
	"scholarship-backend/internal/usecase/access"
	"scholarship-backend/internal/usecase/storeerr"
)

type StartInput struct {
	ApplicationID uint64 `json:"-"`
	Description   string `json:"description"`
}

type EndInput struct {
	EntryID        uint64     `json:"-"`
	TimeOut        *time.Time `json:"time_out"`
	LessonsLearned string     `json:"lessons_learned"`
}

type ReviewInput struct {
	ID      uint64 `json:"-"`
	Approve bool   `json:"approve"`
	Notes   string `json:"notes"`
}

type ReportInput struct {
	ApplicationID uint64
	Description   string
	DaysCompleted int
	PhotoName     string
	Photo         []byte
}

// ProgressDTO summarizes where an application stands on its service hours.
type ProgressDTO struct {
	ApplicationID  uint64        `json:"application_id"`
	ApprovedHours  float64       `json:"approved_hours"`
	RequiredHours  float64       `json:"required_hours"`
	RemainingHours float64       `json:"remaining_hours"`
	Active         *domain.Entry `json:"active_entry,omitempty"`
}

type Usecase struct {
	uow      uow.UnitOfWork
	store    storage.Store
	notifier notification.Sink
	now      func() time.Time
}

func NewUsecase(tx uow.UnitOfWork, store storage.Store, sink notification.Sink) *Usecase {
	return &Usecase{uow: tx, store: store, notifier: sink, now: func() time.Time { return time.Now().UTC() }}
}

// StartEntry opens the timer. The application row lock makes two
// concurrent starts resolve to one entry and one ErrSessionAlreadyActive.
func (u *Usecase) StartEntry(ctx context.Context, actor application.Actor, in StartInput) (*domain.Entry, error) {
	var (
		out   *domain.Entry
		fnErr error
	)
	err := u.uow.WithinApplicationTx(ctx, in.ApplicationID, func(r uow.Repos, a *application.Application) error {
		fnErr = func() error {
			if _, err := access.Owner(ctx, r.Students, actor, a); err != nil {
				return err
			}
			if !serviceOpen(a.Status) {
				return domain.ErrServiceClosed
			}
			_, err := r.Service.GetActiveEntry(ctx, a.ID)
			switch {
			case err == nil:
				return domain.ErrSessionAlreadyActive
			case !storeerr.IsNotFound(err):
				return storeerr.Wrap("find active entry", err, nil)
			}
			e := &domain.Entry{
				ApplicationID: a.ID,
				Description:   in.Description,
				TimeIn:        u.now(),
				Status:        domain.EntryInProgress,
			}
			if err := r.Service.CreateEntry(ctx, e); err != nil {
				return storeerr.Wrap("create entry", err, nil)
			}
			out = e
			return nil
		}()
		return fnErr
	})
	if err := storeerr.Settle("start entry", err, fnErr, application.ErrNotFound); err != nil {
		return nil, access.Hide(actor, err, application.ErrNotFound)
	}
	return out, nil
}

// EndEntry stops the timer and records the elapsed hours.
func (u *Usecase) EndEntry(ctx context.Context, actor application.Actor, in EndInput) (*domain.Entry, error) {
	var out *domain.Entry
	err := u.withEntry(ctx, actor, in.EntryID, func(r uow.Repos, _ *application.Application, e *domain.Entry) error {
		if e.Status != domain.EntryInProgress {
			return domain.ErrNoActiveSession
		}
		now := u.now()
		end := now
		if in.TimeOut != nil {
			end = in.TimeOut.UTC()
		}
		if end.After(now) {
			return domain.ErrFutureTimeOut
		}
		if !end.After(e.TimeIn) {
			return domain.ErrInvalidTimeOut
		}
		e.TimeOut = &end
		e.HoursCompleted = domain.ElapsedHours(e.TimeIn, end)
		e.LessonsLearned = in.LessonsLearned
		e.Status = domain.EntryCompleted
		return storeerr.Wrap("save entry", r.Service.SaveEntry(ctx, e), nil)
	}, func(e *domain.Entry) { out = e })
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CancelEntry throws a running session away without recording hours.
func (u *Usecase) CancelEntry(ctx context.Context, actor application.Actor, entryID uint64) error {
	return u.withEntry(ctx, actor, entryID, func(r uow.Repos, _ *application.Application, e *domain.Entry) error {
		if e.Status != domain.EntryInProgress {
			return domain.ErrNoActiveSession
		}
		return storeerr.Wrap("delete entry", r.Service.DeleteEntry(ctx, e.ID), nil)
	}, nil)
}

// ReviewEntry approves or rejects a completed entry. Only approved hours
// count toward complete_service.
func (u *Usecase) ReviewEntry(ctx context.Context, actor application.Actor, in ReviewInput) (*domain.Entry, error) {
	if err := access.Admin(actor); err != nil {
		return nil, err
	}
	var (
		out  *domain.Entry
		note *notification.Message
	)
	err := u.withEntry(ctx, actor, in.ID, func(r uow.Repos, a *application.Application, e *domain.Entry) error {
		if e.Status != domain.EntryCompleted {
			return domain.ErrNotCompleted
		}
		e.Status = domain.EntryRejected
		if in.Approve {
			e.Status = domain.EntryApproved
		}
		e.AdminNotes = in.Notes
		if err := r.Service.SaveEntry(ctx, e); err != nil {
			return storeerr.Wrap("save entry", err, nil)
		}
		m, err := u.message(ctx, r, a, fmt.Sprintf("Service entry %s", e.Status),
			fmt.Sprintf("Your community service entry of %.2f hours was %s.", e.HoursCompleted, e.Status), in.Approve)
		note = m
		return err
	}, func(e *domain.Entry) { out = e })
	if err != nil {
		return nil, err
	}
	u.deliver(ctx, note)
	return out, nil
}

// SubmitReport stores the photo and files a report for admin review.
func (u *Usecase) SubmitReport(ctx context.Context, actor application.Actor, in ReportInput) (*domain.Report, error) {
	var (
		out   *domain.Report
		photo string
		fnErr error
	)
	err := u.uow.WithinApplicationTx(ctx, in.ApplicationID, func(r uow.Repos, a *application.Application) error {
		fnErr = func() error {
			if _, err := access.Owner(ctx, r.Students, actor, a); err != nil {
				return err
			}
			if !serviceOpen(a.Status) {
				return domain.ErrServiceClosed
			}
			if len(in.Photo) > 0 {
				p, err := u.store.Put(ctx, fmt.Sprintf("service-reports/%d", a.ID), in.PhotoName, in.Photo)
				if err != nil {
					return fmt.Errorf("store photo: %w", err)
				}
				photo = p
			}
			rep := &domain.Report{
				ApplicationID: a.ID,
				Description:   in.Description,
				DaysCompleted: in.DaysCompleted,
				PhotoPath:     photo,
				Status:        domain.ReportPendingReview,
			}
			if err := r.Service.CreateReport(ctx, rep); err != nil {
				return storeerr.Wrap("create report", err, nil)
			}
			out = rep
			return nil
		}()
		return fnErr
	})
	if err := storeerr.Settle("submit report", err, fnErr, application.ErrNotFound); err != nil {
		u.discard(ctx, photo)
		return nil, access.Hide(actor, err, application.ErrNotFound)
	}
	return out, nil
}

func (u *Usecase) ReviewReport(ctx context.Context, actor application.Actor, in ReviewInput) (*domain.Report, error) {
	if err := access.Admin(actor); err != nil {
		return nil, err
	}
	rep, err := u.uow.Repos().Service.GetReportByID(ctx, in.ID)
	if err != nil {
		return nil, storeerr.Wrap("load report", err, domain.ErrNotFound)
	}
	var (
		out   *domain.Report
		note  *notification.Message
		fnErr error
	)
	err = u.uow.WithinApplicationTx(ctx, rep.ApplicationID, func(r uow.Repos, a *application.Application) error {
		fnErr = func() error {
			rep, err := r.Service.GetReportByID(ctx, in.ID)
			if err != nil {
				return storeerr.Wrap("load report", err, domain.ErrNotFound)
			}
			if rep.Status != domain.ReportPendingReview {
				return domain.ErrReportReviewed
			}
			rep.Status = domain.ReportRejected
			if in.Approve {
				rep.Status = domain.ReportApproved
			}
			rep.AdminNotes = in.Notes
			if err := r.Service.SaveReport(ctx, rep); err != nil {
				return storeerr.Wrap("save report", err, nil)
			}
			out = rep
			note, err = u.message(ctx, r, a, fmt.Sprintf("Service report %s", rep.Status),
				fmt.Sprintf("Your community service report (%d days) was %s.", rep.DaysCompleted, rep.Status), in.Approve)
			return err
		}()
		return fnErr
	})
	if err := storeerr.Settle("review report", err, fnErr, application.ErrNotFound); err != nil {
		return nil, err
	}
	u.deliver(ctx, note)
	return out, nil
}

// Progress reports approved against required hours for one application.
func (u *Usecase) Progress(ctx context.Context, actor application.Actor, applicationID uint64) (*ProgressDTO, error) {
	r := u.uow.Repos()
	var (
		a     *application.Application
		p     *program.Program
		hours float64
	)
	err := storeerr.Read(ctx, func() (err error) {
		a, err = r.Applications.GetByID(ctx, applicationID)
		return err
	})
	if err != nil {
		return nil, access.Hide(actor, storeerr.Wrap("load application", err, application.ErrNotFound), application.ErrNotFound)
	}
	if _, err := access.OwnerOrAdmin(ctx, r.Students, actor, a); err != nil {
		return nil, err
	}
	err = storeerr.Read(ctx, func() (err error) {
		if p, err = r.Programs.GetByID(ctx, a.ProgramID); err != nil {
			return err
		}
		hours, err = r.Service.SumApprovedHours(ctx, a.ID)
		return err
	})
	if err != nil {
		return nil, storeerr.Wrap("load service progress", err, program.ErrNotFound)
	}

	out := &ProgressDTO{ApplicationID: a.ID, ApprovedHours: hours, RequiredHours: p.RequiredServiceHours()}
	if rem := domain.Round2(out.RequiredHours - hours); rem > 0 {
		out.RemainingHours = rem
	}
	active, err := r.Service.GetActiveEntry(ctx, a.ID)
	switch {
	case err == nil:
		out.Active = active
	case !storeerr.IsNotFound(err):
		return nil, storeerr.Wrap("find active entry", err, nil)
	}
	return out, nil
}

// withEntry locks the entry's application, re-reads the entry under that
// lock, checks the actor and runs fn. done receives the entry after commit.
func (u *Usecase) withEntry(ctx context.Context, actor application.Actor, entryID uint64, fn func(r uow.Repos, a *application.Application, e *domain.Entry) error, done func(e *domain.Entry)) error {
	e, err := u.uow.Repos().Service.GetEntryByID(ctx, entryID)
	if err != nil {
		return access.Hide(actor, storeerr.Wrap("load entry", err, domain.ErrNotFound), domain.ErrNotFound)
	}
	var (
		locked *domain.Entry
		fnErr  error
	)
	err = u.uow.WithinApplicationTx(ctx, e.ApplicationID, func(r uow.Repos, a *application.Application) error {
		fnErr = func() (err error) {
			if !actor.IsAdmin() {
				if _, err := access.Owner(ctx, r.Students, actor, a); err != nil {
					return err
				}
			}
			if locked, err = r.Service.GetEntryByIDForUpdate(ctx, entryID); err != nil {
				return storeerr.Wrap("load entry", err, domain.ErrNotFound)
			}
			return fn(r, a, locked)
		}()
		return fnErr
	})
	if err := storeerr.Settle("update entry", err, fnErr, application.ErrNotFound); err != nil {
		return err
	}
	if done != nil {
		done(locked)
	}
	return nil
}

func (u *Usecase) message(ctx context.Context, r uow.Repos, a *application.Application, title, body string, good bool) (*notification.Message, error) {
	s, err := r.Students.GetByID(ctx, a.StudentID)
	if err != nil {
		return nil, storeerr.Wrap("load student", err, nil)
	}
	t := notification.TypeWarning
	if good {
		t = notification.TypeSuccess
	}
	return &notification.Message{
		UserID:    s.UserID,
		Title:     title,
		Message:   body,
		Type:      t,
		ActionURL: fmt.Sprintf("/applications/%d/service", a.ID),
	}, nil
}

func (u *Usecase) deliver(ctx context.Context, m *notification.Message) {
	if m == nil || u.notifier == nil {
		return
	}
	if err := u.notifier.Notify(context.WithoutCancel(ctx), *m); err != nil {
		log.Printf("notify user %d: %v", m.UserID, err)
	}
}

func (u *Usecase) discard(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := u.store.Delete(context.WithoutCancel(ctx), path); err != nil {
		log.Printf("communityservice: discard blob %s: %v", path, err)
	}
}

func serviceOpen(s application.Status) bool {
	return s == application.StatusEnrolled || s == application.StatusServicePending
}
