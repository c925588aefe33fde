package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	domain "scholarship-backend/internal/domain/application"
	"scholarship-backend/internal/domain/cascade"
	"scholarship-backend/internal/domain/disbursement"
	"scholarship-backend/internal/domain/document"
	"scholarship-backend/internal/domain/notification"
	"scholarship-backend/internal/domain/program"
	"scholarship-backend/internal/domain/student"
	"scholarship-backend/internal/domain/uow"
	"scholarship-backend/internal/usecase/access"
	"scholarship-backend/internal/usecase/storeerr"
	"scholarship-backend/pkg/id"
)

// opApply is recorded in the history for the row that created the draft.
const opApply domain.Operation = "apply"

// Deleter removes an application with everything it owns.
type Deleter interface {
	DeleteApplication(ctx context.Context, applicationID uint64) (cascade.Plan, error)
}

type Options struct {
	// AllowDeferredUpload lets submit proceed with missing documents; the
	// application then waits in documents_pending.
	AllowDeferredUpload bool
	Now                 func() time.Time
}

type Usecase struct {
	uow      uow.UnitOfWork
	notifier notification.Sink
	deleter  Deleter
	opts     Options
}

func NewUsecase(tx uow.UnitOfWork, sink notification.Sink, del Deleter, opts Options) *Usecase {
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Usecase{uow: tx, notifier: sink, deleter: del, opts: opts}
}

// Apply creates a draft application of the acting student to programID.
func (u *Usecase) Apply(ctx context.Context, actor domain.Actor, programID uint64) (*ApplicationDTO, error) {
	if actor.Role != domain.RoleStudent || actor.UserID == 0 {
		return nil, domain.ErrForbidden
	}
	var (
		dto   ApplicationDTO
		fnErr error
	)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		fnErr = func() error {
			// serializes applies by the same student
			s, err := r.Students.LockByUserID(ctx, actor.UserID)
			if err != nil {
				return storeerr.Wrap("load student", err, student.ErrNotFound)
			}
			p, err := r.Programs.GetByID(ctx, programID)
			if err != nil {
				return storeerr.Wrap("load program", err, program.ErrNotFound)
			}
			if !p.Active {
				return domain.ErrProgramInactive
			}
			if p.DeadlinePassed(u.opts.Now()) {
				return domain.ErrDeadlinePassed
			}

			_, err = r.Applications.FindActive(ctx, s.ID, p.ID)
			switch {
			case err == nil:
				return domain.ErrDuplicateApplication
			case !storeerr.IsNotFound(err):
				return storeerr.Wrap("find active application", err, nil)
			}

			a := &domain.Application{StudentID: s.ID, ProgramID: p.ID, Status: domain.StatusDraft}
			if err := r.Applications.Create(ctx, a); err != nil {
				return storeerr.Wrap("create application", err, nil)
			}
			h := &domain.StatusHistory{
				ApplicationID: a.ID,
				ToStatus:      domain.StatusDraft,
				Operation:     opApply,
				ActorID:       actor.UserID,
				ActorRole:     actor.Role,
			}
			if err := r.Applications.AppendHistory(ctx, h); err != nil {
				return storeerr.Wrap("append history", err, nil)
			}
			dto = toDTO(a)
			return nil
		}()
		return fnErr
	})
	if err := storeerr.Settle("apply", err, fnErr, nil); err != nil {
		return nil, err
	}
	return &dto, nil
}

// Transition runs op against the application under a row lock. Every
// effect the state machine asks for is executed in the same transaction;
// notifications go out only after commit and never fail the call.
func (u *Usecase) Transition(ctx context.Context, actor domain.Actor, in TransitionInput) (*TransitionDTO, error) {
	if !in.Op.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownOperation, in.Op)
	}

	var (
		dto    TransitionDTO
		outbox []notification.Message
		fnErr  error
	)
	err := u.uow.WithinApplicationTx(ctx, in.ApplicationID, func(r uow.Repos, a *domain.Application) error {
		fnErr = func() error {
			f, err := u.gather(ctx, r, actor, a, in.Op)
			if err != nil {
				return err
			}
			t, err := domain.Decide(*a, in.Op, f)
			if err != nil {
				return err
			}
			outbox, err = u.execute(ctx, r, a, t, f, in.Notes)
			if err != nil {
				return err
			}

			t.Apply(a, f.Now)
			if in.Notes != "" && actor.IsAdmin() {
				notes := in.Notes
				a.AdminNotes = &notes
			}
			if err := r.Applications.Save(ctx, a); err != nil {
				return storeerr.Wrap("save application", err, nil)
			}
			if err := r.Applications.AppendHistory(ctx, historyFor(a.ID, actor, t, in.Notes)); err != nil {
				return storeerr.Wrap("append history", err, nil)
			}

			dto = TransitionDTO{ApplicationDTO: toDTO(a), From: t.From, Op: t.Op, Effects: kinds(t.Effects)}
			return nil
		}()
		return fnErr
	})
	if err := storeerr.Settle("transition", err, fnErr, domain.ErrNotFound); err != nil {
		return nil, access.Hide(actor, err, domain.ErrNotFound)
	}

	u.deliver(ctx, outbox)
	return &dto, nil
}

// Get returns the application with its history; students only see their own.
func (u *Usecase) Get(ctx context.Context, actor domain.Actor, applicationID uint64) (*DetailDTO, error) {
	r := u.uow.Repos()
	var a *domain.Application
	err := storeerr.Read(ctx, func() (err error) {
		a, err = r.Applications.GetByID(ctx, applicationID)
		return err
	})
	if err != nil {
		return nil, access.Hide(actor, storeerr.Wrap("load application", err, domain.ErrNotFound), domain.ErrNotFound)
	}
	if _, err := access.OwnerOrAdmin(ctx, r.Students, actor, a); err != nil {
		return nil, err
	}

	var (
		history []domain.StatusHistory
		pays    []disbursement.Disbursement
	)
	err = storeerr.Read(ctx, func() (err error) {
		if history, err = r.Applications.ListHistory(ctx, a.ID); err != nil {
			return err
		}
		pays, err = r.Disbursements.ListByApplication(ctx, a.ID)
		return err
	})
	if err != nil {
		return nil, storeerr.Wrap("load application detail", err, nil)
	}
	if history == nil {
		history = []domain.StatusHistory{}
	}
	if pays == nil {
		pays = []disbursement.Disbursement{}
	}
	return &DetailDTO{ApplicationDTO: toDTO(a), History: history, Disbursements: pays}, nil
}

// Mine lists the acting student's applications, newest first. A student
// without a profile has none.
func (u *Usecase) Mine(ctx context.Context, actor domain.Actor) ([]ApplicationDTO, error) {
	if actor.Role != domain.RoleStudent {
		return nil, domain.ErrForbidden
	}
	r := u.uow.Repos()
	var apps []domain.Application
	err := storeerr.Read(ctx, func() error {
		s, err := r.Students.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return err
		}
		apps, err = r.Applications.ListByStudent(ctx, s.ID)
		return err
	})
	if err != nil && !storeerr.IsNotFound(err) {
		return nil, storeerr.Wrap("list applications", err, nil)
	}
	out := make([]ApplicationDTO, 0, len(apps))
	for i := range apps {
		out = append(out, toDTO(&apps[i]))
	}
	return out, nil
}

// Delete removes the application and everything it owns. Admin only.
func (u *Usecase) Delete(ctx context.Context, actor domain.Actor, applicationID uint64) (cascade.Plan, error) {
	if err := access.Admin(actor); err != nil {
		return cascade.Plan{}, err
	}
	return u.deleter.DeleteApplication(ctx, applicationID)
}

// gather loads only the facts op's guard and effects look at.
func (u *Usecase) gather(ctx context.Context, r uow.Repos, actor domain.Actor, a *domain.Application, op domain.Operation) (domain.Facts, error) {
	f := domain.Facts{Now: u.opts.Now(), Actor: actor, AllowDeferredUpload: u.opts.AllowDeferredUpload}

	s, err := r.Students.GetByID(ctx, a.StudentID)
	if err != nil {
		return f, storeerr.Wrap("load student", err, student.ErrNotFound)
	}
	f.Student = *s

	// authorization comes before anything that could reveal program or
	// document state to a caller that is not allowed to see it
	if !actor.IsAdmin() && actor.UserID != s.UserID {
		return f, domain.ErrForbidden
	}

	p, err := r.Programs.GetByID(ctx, a.ProgramID)
	if err != nil {
		return f, storeerr.Wrap("load program", err, program.ErrNotFound)
	}
	f.Program = *p

	switch op {
	case domain.OpSubmit, domain.OpBeginDocumentReview, domain.OpApproveDocuments,
		domain.OpRejectDocuments, domain.OpResubmitDocuments:
		reqs, err := r.Programs.ListRequirements(ctx, a.ProgramID)
		if err != nil {
			return f, storeerr.Wrap("list requirements", err, nil)
		}
		uploads, err := r.Documents.ListByApplication(ctx, a.ID)
		if err != nil {
			return f, storeerr.Wrap("list documents", err, nil)
		}
		f.Documents = document.Summarize(requiredIDs(reqs), uploads)
	case domain.OpCompleteService:
		hours, err := r.Service.SumApprovedHours(ctx, a.ID)
		if err != nil {
			return f, storeerr.Wrap("sum service hours", err, nil)
		}
		f.ApprovedServiceHours = hours
	}
	return f, nil
}

// execute performs the effects that touch other rows and returns the
// notifications to send once the transaction has committed.
func (u *Usecase) execute(ctx context.Context, r uow.Repos, a *domain.Application, t domain.Transition, f domain.Facts, notes string) ([]notification.Message, error) {
	var outbox []notification.Message
	for _, e := range t.Effects {
		switch e.Kind {
		case domain.EffectConsumeSlot:
			ok, err := r.Programs.DecrementSlot(ctx, a.ProgramID)
			if err != nil {
				return nil, storeerr.Wrap("consume slot", err, nil)
			}
			if !ok {
				return nil, domain.ErrSlotsExhausted
			}
		case domain.EffectReleaseSlot:
			if err := r.Programs.ReleaseSlot(ctx, a.ProgramID); err != nil {
				return nil, storeerr.Wrap("release slot", err, nil)
			}
		case domain.EffectCreateDisbursement:
			d := &disbursement.Disbursement{
				ApplicationID: a.ID,
				Amount:        f.Program.PerStudentBudget,
				Status:        disbursement.StatusPending,
				Reference:     "DSB-" + id.NewID32()[:16],
			}
			if err := r.Disbursements.Create(ctx, d); err != nil {
				return nil, storeerr.Wrap("create disbursement", err, nil)
			}
		case domain.EffectMarkDisbursed:
			d, err := r.Disbursements.GetOpenByApplicationID(ctx, a.ID)
			if err != nil {
				return nil, storeerr.Wrap("load disbursement", err, disbursement.ErrNotFound)
			}
			now := f.Now
			d.Status = disbursement.StatusDisbursed
			d.DisbursedAt = &now
			if notes != "" {
				n := notes
				d.AdminNotes = &n
			}
			if err := r.Disbursements.Save(ctx, d); err != nil {
				return nil, storeerr.Wrap("save disbursement", err, nil)
			}
		case domain.EffectCancelDisbursement:
			d, err := r.Disbursements.GetOpenByApplicationID(ctx, a.ID)
			if storeerr.IsNotFound(err) {
				continue
			}
			if err != nil {
				return nil, storeerr.Wrap("load disbursement", err, nil)
			}
			d.Status = disbursement.StatusCancelled
			if err := r.Disbursements.Save(ctx, d); err != nil {
				return nil, storeerr.Wrap("save disbursement", err, nil)
			}
		case domain.EffectNotifyStudent:
			outbox = append(outbox, notification.Message{
				UserID:    f.Student.UserID,
				Title:     e.Title,
				Message:   e.Message,
				Type:      e.Type,
				ActionURL: fmt.Sprintf("/applications/%d", a.ID),
			})
		}
	}
	return outbox, nil
}

func (u *Usecase) deliver(ctx context.Context, outbox []notification.Message) {
	if u.notifier == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, m := range outbox {
		if err := u.notifier.Notify(ctx, m); err != nil {
			log.Printf("notify user %d: %v", m.UserID, err)
		}
	}
}

func historyFor(applicationID uint64, actor domain.Actor, t domain.Transition, notes string) *domain.StatusHistory {
	h := &domain.StatusHistory{
		ApplicationID: applicationID,
		FromStatus:    t.From,
		ToStatus:      t.To,
		Operation:     t.Op,
		ActorID:       actor.UserID,
		ActorRole:     actor.Role,
	}
	if notes != "" {
		h.Notes = &notes
	}
	if ks := kinds(t.Effects); len(ks) > 0 {
		if b, err := json.Marshal(ks); err == nil {
			h.Effects = b
		}
	}
	return h
}

func kinds(effects []domain.Effect) []domain.EffectKind {
	out := make([]domain.EffectKind, 0, len(effects))
	for _, e := range effects {
		out = append(out, e.Kind)
	}
	return out
}

func requiredIDs(reqs []program.DocumentRequirement) []uint64 {
	var out []uint64
	for _, r := range reqs {
		if r.Required {
			out = append(out, r.ID)
		}
	}
	return out
}
