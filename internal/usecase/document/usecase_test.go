package document

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"scholarship-backend/internal/adapter/repository/mysql"
	fsstore "scholarship-backend/internal/adapter/storage"
	"scholarship-backend/internal/domain/application"
	domain "scholarship-backend/internal/domain/document"
	"scholarship-backend/internal/domain/notification"
	"scholarship-backend/internal/domain/program"
	"scholarship-backend/internal/domain/student"
	"scholarship-backend/internal/domain/uow"
	"scholarship-backend/internal/testutil/sqlitedb"
)

var (
	owner    = application.Actor{UserID: 51, Role: application.RoleStudent}
	stranger = application.Actor{UserID: 52, Role: application.RoleStudent}
	admin    = application.Actor{UserID: 1, Role: application.RoleAdmin}
)

type sink struct {
	mu  sync.Mutex
	got []notification.Message
}

func (s *sink) Notify(_ context.Context, m notification.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, m)
	return nil
}

type env struct {
	uc    *Usecase
	repos uow.Repos
	store *fsstore.FSStore
	sink  *sink
	appID uint64
	reqID uint64
	other uint64 // requirement of a different program
}

func newEnv(t *testing.T, status application.Status) *env {
	t.Helper()
	ctx := context.Background()
	u := mysql.NewGormUoW(sqlitedb.Open(t))
	r := u.Repos()

	mk := func(name string) (*program.Program, *program.DocumentRequirement) {
		p := &program.Program{
			Name: name, TotalBudget: 1000, PerStudentBudget: 1000, AvailableSlots: 1,
			SchoolTypeEligibility: program.SchoolBoth, ApplicationDeadline: time.Now().Add(time.Hour).UTC(), Active: true,
		}
		require.NoError(t, r.Programs.Create(ctx, p))
		req := &program.DocumentRequirement{ProgramID: p.ID, Name: "Transcript", Required: true}
		require.NoError(t, r.Programs.CreateRequirement(ctx, req))
		return p, req
	}
	p, req := mk("Merit")
	_, otherReq := mk("Other")

	for _, uid := range []uint64{owner.UserID, stranger.UserID} {
		require.NoError(t, r.Students.Create(ctx, &student.Profile{UserID: uid, FullName: "S", SchoolType: program.SchoolCollege}))
	}
	s, err := r.Students.GetByUserID(ctx, owner.UserID)
	require.NoError(t, err)
	a := &application.Application{StudentID: s.ID, ProgramID: p.ID, Status: status}
	require.NoError(t, r.Applications.Create(ctx, a))

	e := &env{repos: r, store: fsstore.NewFSStore(afero.NewMemMapFs()), sink: &sink{}, appID: a.ID, reqID: req.ID, other: otherReq.ID}
	e.uc = NewUsecase(u, e.store, e.sink)
	return e
}

func (e *env) upload(t *testing.T, data string) *domain.Upload {
	t.Helper()
	doc, err := e.uc.Upload(context.Background(), owner, UploadInput{
		ApplicationID: e.appID, RequirementID: e.reqID, FileName: "Transcript.PDF", Data: []byte(data),
	})
	require.NoError(t, err)
	return doc
}

// uploadThenMove uploads while the application is still open, then moves it
// to status the way a transition would.
func (e *env) uploadThenMove(t *testing.T, data string, status application.Status) *domain.Upload {
	t.Helper()
	doc := e.upload(t, data)
	ctx := context.Background()
	a, err := e.repos.Applications.GetByID(ctx, e.appID)
	require.NoError(t, err)
	a.Status = status
	require.NoError(t, e.repos.Applications.Save(ctx, a))
	return doc
}

func TestUpload_StoresBlobAndRow(t *testing.T) {
	e := newEnv(t, application.StatusDraft)
	doc := e.upload(t, "pdf-bytes")

	require.Equal(t, domain.StatusPendingReview, doc.Status)
	require.Equal(t, int64(9), doc.SizeBytes)
	require.Regexp(t, `^documents/\d+/[a-f0-9]{32}\.pdf$`, doc.Path)

	ok, err := e.store.Exists(context.Background(), doc.Path)
	require.NoError(t, err)
	require.True(t, ok)

	got, data, err := e.uc.Read(context.Background(), owner, doc.ID)
	require.NoError(t, err)
	require.Equal(t, doc.ID, got.ID)
	require.Equal(t, "pdf-bytes", string(data))
}

func TestUpload_ReplaceResetsReview(t *testing.T) {
	e := newEnv(t, application.StatusDocumentsRejected)
	ctx := context.Background()
	first := e.upload(t, "blurry")

	_, err := e.uc.Review(ctx, admin, ReviewInput{DocumentID: first.ID, Status: domain.StatusRejectedIllegible, Notes: "unreadable"})
	require.NoError(t, err)

	second := e.upload(t, "sharp")
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, domain.StatusPendingReview, second.Status)
	require.Empty(t, second.ReviewNotes)
	require.Nil(t, second.ReviewedAt)

	ok, err := e.store.Exists(ctx, first.Path)
	require.NoError(t, err)
	require.False(t, ok, "old blob should be removed")

	docs, err := e.repos.Documents.ListByApplication(ctx, e.appID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
}

func TestUpload_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		status application.Status
		actor  application.Actor
		req    func(e *env) uint64
		data   string
		want   error
	}{
		{"empty file", application.StatusDraft, owner, func(e *env) uint64 { return e.reqID }, "", domain.ErrEmptyFile},
		{"window closed", application.StatusDocumentsApproved, owner, func(e *env) uint64 { return e.reqID }, "x", domain.ErrUploadClosed},
		{"foreign requirement", application.StatusDraft, owner, func(e *env) uint64 { return e.other }, "x", domain.ErrRequirementNotSet},
		{"not the owner", application.StatusDraft, stranger, func(e *env) uint64 { return e.reqID }, "x", application.ErrForbidden},
		{"admin is not the owner", application.StatusDraft, admin, func(e *env) uint64 { return e.reqID }, "x", application.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, tt.status)
			_, err := e.uc.Upload(context.Background(), tt.actor, UploadInput{
				ApplicationID: e.appID, RequirementID: tt.req(e), FileName: "a.pdf", Data: []byte(tt.data),
			})
			require.True(t, errors.Is(err, tt.want), "got %v", err)

			docs, err := e.repos.Documents.ListByApplication(context.Background(), e.appID)
			require.NoError(t, err)
			require.Empty(t, docs)
		})
	}
}

func TestUpload_MissingApplicationHiddenFromStudents(t *testing.T) {
	e := newEnv(t, application.StatusDraft)
	_, err := e.uc.Upload(context.Background(), owner, UploadInput{ApplicationID: 999, RequirementID: e.reqID, FileName: "a.pdf", Data: []byte("x")})
	require.True(t, errors.Is(err, application.ErrForbidden), "got %v", err)
}

func TestReview_NotifiesOnRejection(t *testing.T) {
	e := newEnv(t, application.StatusDraft)
	ctx := context.Background()
	doc := e.uploadThenMove(t, "scan", application.StatusDocumentsUnderReview)

	_, err := e.uc.Review(ctx, owner, ReviewInput{DocumentID: doc.ID, Status: domain.StatusApproved})
	require.True(t, errors.Is(err, application.ErrForbidden), "got %v", err)

	_, err = e.uc.Review(ctx, admin, ReviewInput{DocumentID: doc.ID, Status: domain.StatusPendingReview})
	require.True(t, errors.Is(err, domain.ErrInvalidReview), "got %v", err)

	got, err := e.uc.Review(ctx, admin, ReviewInput{DocumentID: doc.ID, Status: domain.StatusRejectedIncomplete, Notes: "page 2 missing"})
	require.NoError(t, err)
	require.Equal(t, domain.StatusRejectedIncomplete, got.Status)
	require.NotNil(t, got.ReviewedAt)

	// the verdict never moves the application itself
	a, err := e.repos.Applications.GetByID(ctx, e.appID)
	require.NoError(t, err)
	require.Equal(t, application.StatusDocumentsUnderReview, a.Status)

	require.Len(t, e.sink.got, 1)
	require.Equal(t, owner.UserID, e.sink.got[0].UserID)
	require.Equal(t, notification.TypeWarning, e.sink.got[0].Type)
	require.Contains(t, e.sink.got[0].Message, "page 2 missing")

	_, err = e.uc.Review(ctx, admin, ReviewInput{DocumentID: doc.ID, Status: domain.StatusApproved})
	require.True(t, errors.Is(err, domain.ErrAlreadyReviewed), "got %v", err)
}

func TestReview_ApprovalIsSilent(t *testing.T) {
	e := newEnv(t, application.StatusDraft)
	doc := e.uploadThenMove(t, "scan", application.StatusDocumentsUnderReview)

	_, err := e.uc.Review(context.Background(), admin, ReviewInput{DocumentID: doc.ID, Status: domain.StatusApproved})
	require.NoError(t, err)
	require.Empty(t, e.sink.got)

	_, err = e.uc.Review(context.Background(), admin, ReviewInput{DocumentID: 404, Status: domain.StatusApproved})
	require.True(t, errors.Is(err, domain.ErrNotFound), "got %v", err)
}

func TestRead_Access(t *testing.T) {
	e := newEnv(t, application.StatusDraft)
	doc := e.upload(t, "scan")
	ctx := context.Background()

	_, _, err := e.uc.Read(ctx, admin, doc.ID)
	require.NoError(t, err)

	_, _, err = e.uc.Read(ctx, stranger, doc.ID)
	require.True(t, errors.Is(err, application.ErrForbidden), "got %v", err)

	_, _, err = e.uc.Read(ctx, stranger, 404)
	require.True(t, errors.Is(err, application.ErrForbidden), "got %v", err)

	_, _, err = e.uc.Read(ctx, admin, 404)
	require.True(t, errors.Is(err, domain.ErrNotFound), "got %v", err)

	require.NoError(t, e.store.Delete(ctx, doc.Path))
	_, _, err = e.uc.Read(ctx, owner, doc.ID)
	require.True(t, errors.Is(err, domain.ErrNotFound), "got %v", err)
}
