package document

import (
	"context"
	"fmt"
	"log"
	"time"

	"scholarship-backend/internal/domain/application"
	domain "scholarship-backend/internal/domain/document"
	"scholarship-backend/internal/domain/notification"
	"scholarship-backend/internal/domain/program"
	"scholarship-backend/internal/domain/storage"
	"scholarship-backend/internal/domain/uow"
	"scholarship-backend/internal/usecase/access"
	"scholarship-backend/internal/usecase/storeerr"
)

// MaxFileSize caps a single upload.
const MaxFileSize = 10 << 20

type UploadInput struct {
	ApplicationID uint64
	RequirementID uint64
	FileName      string
	Data          []byte
}

type ReviewInput struct {
	DocumentID uint64        `json:"-"`
	Status     domain.Status `json:"status"`
	Notes      string        `json:"notes"`
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

// Upload stores the file and records it against the requirement. A second
// upload for the same requirement replaces the first and resets its review.
func (u *Usecase) Upload(ctx context.Context, actor application.Actor, in UploadInput) (*domain.Upload, error) {
	if len(in.Data) == 0 {
		return nil, domain.ErrEmptyFile
	}
	var (
		out      *domain.Upload
		newPath  string
		oldPath  string
		fnErr    error
		replaced bool
	)
	err := u.uow.WithinApplicationTx(ctx, in.ApplicationID, func(r uow.Repos, a *application.Application) error {
		fnErr = func() error {
			if _, err := access.Owner(ctx, r.Students, actor, a); err != nil {
				return err
			}
			if !uploadOpen(a.Status) {
				return domain.ErrUploadClosed
			}
			reqs, err := r.Programs.ListRequirements(ctx, a.ProgramID)
			if err != nil {
				return storeerr.Wrap("list requirements", err, nil)
			}
			if !hasRequirement(reqs, in.RequirementID) {
				return domain.ErrRequirementNotSet
			}

			p, err := u.store.Put(ctx, fmt.Sprintf("documents/%d", a.ID), in.FileName, in.Data)
			if err != nil {
				return fmt.Errorf("store document: %w", err)
			}
			newPath = p

			doc, err := r.Documents.GetByRequirement(ctx, a.ID, in.RequirementID)
			switch {
			case err == nil:
				replaced, oldPath = true, doc.Path
			case storeerr.IsNotFound(err):
				doc = &domain.Upload{ApplicationID: a.ID, RequirementID: in.RequirementID}
			default:
				return storeerr.Wrap("find document", err, nil)
			}
			doc.FileName = in.FileName
			doc.Path = newPath
			doc.SizeBytes = int64(len(in.Data))
			doc.Status = domain.StatusPendingReview
			doc.ReviewNotes = ""
			doc.ReviewedAt = nil

			if replaced {
				err = r.Documents.Save(ctx, doc)
			} else {
				err = r.Documents.Create(ctx, doc)
			}
			if err != nil {
				return storeerr.Wrap("save document", err, nil)
			}
			out = doc
			return nil
		}()
		return fnErr
	})
	if err := storeerr.Settle("upload document", err, fnErr, application.ErrNotFound); err != nil {
		u.discard(ctx, newPath)
		return nil, access.Hide(actor, err, application.ErrNotFound)
	}
	if oldPath != newPath {
		u.discard(ctx, oldPath)
	}
	return out, nil
}

// Review records the admin's verdict on one pending document.
func (u *Usecase) Review(ctx context.Context, actor application.Actor, in ReviewInput) (*domain.Upload, error) {
	if err := access.Admin(actor); err != nil {
		return nil, err
	}
	if !in.Status.ReviewOutcome() {
		return nil, domain.ErrInvalidReview
	}
	doc, err := u.uow.Repos().Documents.GetByID(ctx, in.DocumentID)
	if err != nil {
		return nil, storeerr.Wrap("load document", err, domain.ErrNotFound)
	}

	var (
		out   *domain.Upload
		note  *notification.Message
		fnErr error
	)
	err = u.uow.WithinApplicationTx(ctx, doc.ApplicationID, func(r uow.Repos, a *application.Application) error {
		fnErr = func() error {
			d, err := r.Documents.GetByID(ctx, in.DocumentID)
			if err != nil {
				return storeerr.Wrap("load document", err, domain.ErrNotFound)
			}
			if d.Status != domain.StatusPendingReview {
				return domain.ErrAlreadyReviewed
			}
			now := u.now()
			d.Status = in.Status
			d.ReviewNotes = in.Notes
			d.ReviewedAt = &now
			if err := r.Documents.Save(ctx, d); err != nil {
				return storeerr.Wrap("save document", err, nil)
			}
			out = d

			if d.Status.Rejected() {
				s, err := r.Students.GetByID(ctx, a.StudentID)
				if err != nil {
					return storeerr.Wrap("load student", err, nil)
				}
				note = &notification.Message{
					UserID:    s.UserID,
					Title:     "Document needs attention",
					Message:   fmt.Sprintf("%s was marked %s. %s", d.FileName, d.Status, d.ReviewNotes),
					Type:      notification.TypeWarning,
					ActionURL: fmt.Sprintf("/applications/%d", a.ID),
				}
			}
			return nil
		}()
		return fnErr
	})
	if err := storeerr.Settle("review document", err, fnErr, application.ErrNotFound); err != nil {
		return nil, err
	}
	if note != nil && u.notifier != nil {
		if err := u.notifier.Notify(context.WithoutCancel(ctx), *note); err != nil {
			log.Printf("notify user %d: %v", note.UserID, err)
		}
	}
	return out, nil
}

// Read returns the stored file; only the owning student and admins may read it.
func (u *Usecase) Read(ctx context.Context, actor application.Actor, documentID uint64) (*domain.Upload, []byte, error) {
	r := u.uow.Repos()
	var (
		doc *domain.Upload
		a   *application.Application
	)
	err := storeerr.Read(ctx, func() (err error) {
		if doc, err = r.Documents.GetByID(ctx, documentID); err != nil {
			return err
		}
		a, err = r.Applications.GetByID(ctx, doc.ApplicationID)
		return err
	})
	if err != nil {
		return nil, nil, access.Hide(actor, storeerr.Wrap("load document", err, domain.ErrNotFound), domain.ErrNotFound)
	}
	if _, err := access.OwnerOrAdmin(ctx, r.Students, actor, a); err != nil {
		return nil, nil, err
	}

	var data []byte
	err = storeerr.Read(ctx, func() (err error) {
		data, err = u.store.Get(ctx, doc.Path)
		if err == storage.ErrNotFound {
			// not transient; stop the retry
			return nil
		}
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("read document: %w", err)
	}
	if data == nil {
		return nil, nil, domain.ErrNotFound
	}
	return doc, data, nil
}

func (u *Usecase) discard(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := u.store.Delete(context.WithoutCancel(ctx), path); err != nil {
		log.Printf("document: discard blob %s: %v", path, err)
	}
}

func uploadOpen(s application.Status) bool {
	switch s {
	case application.StatusDraft, application.StatusSubmitted,
		application.StatusDocumentsPending, application.StatusDocumentsRejected:
		return true
	}
	return false
}

func hasRequirement(reqs []program.DocumentRequirement, id uint64) bool {
	for _, r := range reqs {
		if r.ID == id {
			return true
		}
	}
	return false
}
