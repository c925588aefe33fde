package cascade

import (
	"context"
	"log"

	"scholarship-backend/internal/domain/application"
	plan "scholarship-backend/internal/domain/cascade"
	"scholarship-backend/internal/domain/program"
	"scholarship-backend/internal/domain/storage"
	"scholarship-backend/internal/domain/uow"
	"scholarship-backend/internal/usecase/storeerr"
)

// Deleter removes programs and applications together with every row and
// blob they own. Rows go in one transaction; blobs are removed after commit
// so a rollback never leaves rows pointing at deleted files.
type Deleter struct {
	uow   uow.UnitOfWork
	store storage.Store
}

func NewDeleter(tx uow.UnitOfWork, store storage.Store) *Deleter {
	return &Deleter{uow: tx, store: store}
}

func (d *Deleter) DeleteProgram(ctx context.Context, programID uint64) (plan.Plan, error) {
	var (
		p     plan.Plan
		fnErr error
	)
	err := d.uow.WithinTx(ctx, func(r uow.Repos) error {
		fnErr = func() error {
			if _, err := r.Programs.GetByID(ctx, programID); err != nil {
				return storeerr.Wrap("load program", err, program.ErrNotFound)
			}
			apps, err := r.Applications.ListByProgram(ctx, programID)
			if err != nil {
				return storeerr.Wrap("list applications", err, nil)
			}
			if p, err = d.planFor(ctx, r, programID, apps); err != nil {
				return err
			}
			return execute(ctx, r, p)
		}()
		return fnErr
	})
	if err := storeerr.Settle("delete program", err, fnErr, program.ErrNotFound); err != nil {
		return plan.Plan{}, err
	}
	d.removeBlobs(ctx, p.BlobPaths)
	return p, nil
}

func (d *Deleter) DeleteApplication(ctx context.Context, applicationID uint64) (plan.Plan, error) {
	var (
		p     plan.Plan
		fnErr error
	)
	err := d.uow.WithinApplicationTx(ctx, applicationID, func(r uow.Repos, a *application.Application) error {
		fnErr = func() (err error) {
			if p, err = d.planFor(ctx, r, 0, []application.Application{*a}); err != nil {
				return err
			}
			return execute(ctx, r, p)
		}()
		return fnErr
	})
	if err := storeerr.Settle("delete application", err, fnErr, application.ErrNotFound); err != nil {
		return plan.Plan{}, err
	}
	d.removeBlobs(ctx, p.BlobPaths)
	return p, nil
}

// planFor plans apps; a non-zero programID takes the program down with them.
func (d *Deleter) planFor(ctx context.Context, r uow.Repos, programID uint64, apps []application.Application) (plan.Plan, error) {
	ids := make([]uint64, 0, len(apps))
	for _, a := range apps {
		ids = append(ids, a.ID)
	}
	uploads, err := r.Documents.ListByApplications(ctx, ids)
	if err != nil {
		return plan.Plan{}, storeerr.Wrap("list documents", err, nil)
	}
	reports, err := r.Service.ListReportsByApplications(ctx, ids)
	if err != nil {
		return plan.Plan{}, storeerr.Wrap("list service reports", err, nil)
	}
	if programID != 0 {
		return plan.ForProgram(programID, apps, uploads, reports), nil
	}
	return plan.ForApplications(apps, uploads, reports), nil
}

type step struct {
	op string
	fn func() error
}

// execute deletes children before parents.
func execute(ctx context.Context, r uow.Repos, p plan.Plan) error {
	ids := p.ApplicationIDs
	steps := []step{
		{"delete documents", func() error { return r.Documents.DeleteByApplications(ctx, ids) }},
		{"delete service records", func() error { return r.Service.DeleteByApplications(ctx, ids) }},
		{"delete disbursements", func() error { return r.Disbursements.DeleteByApplications(ctx, ids) }},
		{"delete history", func() error { return r.Applications.DeleteHistory(ctx, ids) }},
		{"delete applications", func() error { return r.Applications.DeleteByIDs(ctx, ids) }},
	}
	if p.ProgramID != 0 {
		steps = append(steps,
			step{"delete requirements", func() error { return r.Programs.DeleteRequirements(ctx, p.ProgramID) }},
			step{"delete program", func() error { return r.Programs.Delete(ctx, p.ProgramID) }},
		)
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			return storeerr.Wrap(s.op, err, nil)
		}
	}
	return nil
}

func (d *Deleter) removeBlobs(ctx context.Context, paths []string) {
	if d.store == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, p := range paths {
		if err := d.store.Delete(ctx, p); err != nil {
			log.Printf("cascade: delete blob %s: %v", p, err)
		}
	}
}
