package communityservice

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"

	"scholarship-backend/internal/adapter/repository/mysql"
	fsstore "scholarship-backend/internal/adapter/storage"
	"scholarship-backend/internal/domain/application"
	domain "scholarship-backend/internal/domain/communityservice"
	"scholarship-backend/internal/domain/notification"
	"scholarship-backend/internal/domain/program"
	"scholarship-backend/internal/domain/student"
	"scholarship-backend/internal/domain/uow"
	"scholarship-backend/internal/testutil/sqlitedb"
)

var (
	owner    = application.Actor{UserID: 71, Role: application.RoleStudent}
	stranger = application.Actor{UserID: 72, Role: application.RoleStudent}
	admin    = application.Actor{UserID: 1, Role: application.RoleAdmin}
	t0       = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)
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
	clock time.Time
}

func newEnv(t *testing.T, status application.Status) *env {
	t.Helper()
	ctx := context.Background()
	u := mysql.NewGormUoW(sqlitedb.Open(t))
	r := u.Repos()

	p := &program.Program{
		Name: "Service Grant", TotalBudget: 2000, PerStudentBudget: 1000, AvailableSlots: 2,
		SchoolTypeEligibility: program.SchoolBoth, ApplicationDeadline: t0.Add(time.Hour), CommunityServiceDays: 1, Active: true,
	}
	if err := r.Programs.Create(ctx, p); err != nil {
		t.Fatalf("program: %v", err)
	}
	for _, uid := range []uint64{owner.UserID, stranger.UserID} {
		if err := r.Students.Create(ctx, &student.Profile{UserID: uid, FullName: "S", SchoolType: program.SchoolCollege}); err != nil {
			t.Fatalf("student: %v", err)
		}
	}
	s, _ := r.Students.GetByUserID(ctx, owner.UserID)
	a := &application.Application{StudentID: s.ID, ProgramID: p.ID, Status: status}
	if err := r.Applications.Create(ctx, a); err != nil {
		t.Fatalf("application: %v", err)
	}

	e := &env{repos: r, store: fsstore.NewFSStore(afero.NewMemMapFs()), sink: &sink{}, appID: a.ID, clock: t0}
	e.uc = NewUsecase(u, e.store, e.sink)
	e.uc.now = func() time.Time { return e.clock }
	return e
}

func (e *env) start(t *testing.T) *domain.Entry {
	t.Helper()
	en, err := e.uc.StartEntry(context.Background(), owner, StartInput{ApplicationID: e.appID, Description: "library shelving"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	return en
}

func TestStartEntry_SingleActiveSession(t *testing.T) {
	e := newEnv(t, application.StatusServicePending)
	first := e.start(t)
	if first.Status != domain.EntryInProgress || !first.TimeIn.Equal(t0) {
		t.Fatalf("unexpected entry: %+v", first)
	}

	_, err := e.uc.StartEntry(context.Background(), owner, StartInput{ApplicationID: e.appID})
	if !errors.Is(err, domain.ErrSessionAlreadyActive) {
		t.Fatalf("want ErrSessionAlreadyActive, got %v", err)
	}
	active, err := e.repos.Service.GetActiveEntry(context.Background(), e.appID)
	if err != nil || active.ID != first.ID {
		t.Fatalf("active=%+v err=%v", active, err)
	}
}

func TestStartEntry_Concurrent(t *testing.T) {
	e := newEnv(t, application.StatusServicePending)
	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		ok, already int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.uc.StartEntry(context.Background(), owner, StartInput{ApplicationID: e.appID})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrSessionAlreadyActive):
				already++
			default:
				t.Errorf("unexpected err: %v", err)
			}
		}()
	}
	wg.Wait()
	if ok != 1 || already != 4 {
		t.Fatalf("ok=%d already=%d", ok, already)
	}
}

func TestStartEntry_Rejections(t *testing.T) {
	e := newEnv(t, application.StatusDraft)
	if _, err := e.uc.StartEntry(context.Background(), owner, StartInput{ApplicationID: e.appID}); !errors.Is(err, domain.ErrServiceClosed) {
		t.Fatalf("draft: want ErrServiceClosed, got %v", err)
	}

	e = newEnv(t, application.StatusEnrolled)
	if _, err := e.uc.StartEntry(context.Background(), stranger, StartInput{ApplicationID: e.appID}); !errors.Is(err, application.ErrForbidden) {
		t.Fatalf("stranger: want ErrForbidden, got %v", err)
	}
	if _, err := e.uc.StartEntry(context.Background(), stranger, StartInput{ApplicationID: 999}); !errors.Is(err, application.ErrForbidden) {
		t.Fatalf("missing id for student: want ErrForbidden, got %v", err)
	}
	if _, err := e.uc.StartEntry(context.Background(), admin, StartInput{ApplicationID: e.appID}); !errors.Is(err, application.ErrForbidden) {
		t.Fatalf("admin has no timer: want ErrForbidden, got %v", err)
	}
}

func TestEndEntry_ComputesRoundedHours(t *testing.T) {
	e := newEnv(t, application.StatusServicePending)
	en := e.start(t)

	e.clock = t0.Add(2*time.Hour + 20*time.Minute) // 2.333.. h
	done, err := e.uc.EndEntry(context.Background(), owner, EndInput{EntryID: en.ID, LessonsLearned: "patience"})
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if done.Status != domain.EntryCompleted || done.HoursCompleted != 2.33 || done.LessonsLearned != "patience" {
		t.Fatalf("unexpected entry: %+v", done)
	}

	if _, err := e.uc.EndEntry(context.Background(), owner, EndInput{EntryID: en.ID}); !errors.Is(err, domain.ErrNoActiveSession) {
		t.Fatalf("second end: want ErrNoActiveSession, got %v", err)
	}
}

func TestEndEntry_ExplicitTimeOut(t *testing.T) {
	e := newEnv(t, application.StatusServicePending)
	en := e.start(t)

	before := t0.Add(-time.Minute)
	if _, err := e.uc.EndEntry(context.Background(), owner, EndInput{EntryID: en.ID, TimeOut: &before}); !errors.Is(err, domain.ErrInvalidTimeOut) {
		t.Fatalf("want ErrInvalidTimeOut, got %v", err)
	}
	// a session cannot end after the moment it is reported
	e.clock = t0.Add(time.Hour)
	out := t0.Add(90 * time.Minute)
	if _, err := e.uc.EndEntry(context.Background(), owner, EndInput{EntryID: en.ID, TimeOut: &out}); !errors.Is(err, domain.ErrFutureTimeOut) {
		t.Fatalf("want ErrFutureTimeOut, got %v", err)
	}

	e.clock = t0.Add(2 * time.Hour)
	done, err := e.uc.EndEntry(context.Background(), owner, EndInput{EntryID: en.ID, TimeOut: &out})
	if err != nil || done.HoursCompleted != 1.5 {
		t.Fatalf("done=%+v err=%v", done, err)
	}
}

func TestCancelEntry(t *testing.T) {
	e := newEnv(t, application.StatusServicePending)
	en := e.start(t)

	if err := e.uc.CancelEntry(context.Background(), stranger, en.ID); !errors.Is(err, application.ErrForbidden) {
		t.Fatalf("stranger cancel: want ErrForbidden, got %v", err)
	}
	if err := e.uc.CancelEntry(context.Background(), owner, en.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := e.repos.Service.GetEntryByID(context.Background(), en.ID); err == nil {
		t.Fatalf("entry still present")
	}
	if err := e.uc.CancelEntry(context.Background(), owner, en.ID); !errors.Is(err, application.ErrForbidden) {
		t.Fatalf("cancel twice as student: want ErrForbidden (hidden not-found), got %v", err)
	}

	// a new session can start once the old one is gone
	e.start(t)
}

func TestCancelEntry_CompletedIsRefused(t *testing.T) {
	e := newEnv(t, application.StatusServicePending)
	en := e.start(t)
	e.clock = t0.Add(time.Hour)
	if _, err := e.uc.EndEntry(context.Background(), owner, EndInput{EntryID: en.ID}); err != nil {
		t.Fatalf("end: %v", err)
	}
	if err := e.uc.CancelEntry(context.Background(), owner, en.ID); !errors.Is(err, domain.ErrNoActiveSession) {
		t.Fatalf("want ErrNoActiveSession, got %v", err)
	}
}

func TestReviewEntry_OnlyApprovedHoursCount(t *testing.T) {
	e := newEnv(t, application.StatusServicePending)
	ctx := context.Background()

	var ids []uint64
	for _, d := range []time.Duration{5 * time.Hour, 3 * time.Hour} {
		e.clock = t0
		en := e.start(t)
		e.clock = t0.Add(d)
		if _, err := e.uc.EndEntry(ctx, owner, EndInput{EntryID: en.ID}); err != nil {
			t.Fatalf("end: %v", err)
		}
		ids = append(ids, en.ID)
	}

	if _, err := e.uc.ReviewEntry(ctx, owner, ReviewInput{ID: ids[0], Approve: true}); !errors.Is(err, application.ErrForbidden) {
		t.Fatalf("student review: want ErrForbidden, got %v", err)
	}
	if _, err := e.uc.ReviewEntry(ctx, admin, ReviewInput{ID: ids[0], Approve: true, Notes: "ok"}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := e.uc.ReviewEntry(ctx, admin, ReviewInput{ID: ids[1], Approve: false, Notes: "no proof"}); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := e.uc.ReviewEntry(ctx, admin, ReviewInput{ID: ids[1], Approve: true}); !errors.Is(err, domain.ErrNotCompleted) {
		t.Fatalf("re-review: want ErrNotCompleted, got %v", err)
	}

	p, err := e.uc.Progress(ctx, owner, e.appID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if p.ApprovedHours != 5 || p.RequiredHours != 8 || p.RemainingHours != 3 || p.Active != nil {
		t.Fatalf("progress=%+v", p)
	}
	if len(e.sink.got) != 2 || e.sink.got[0].UserID != owner.UserID || e.sink.got[1].Type != notification.TypeWarning {
		t.Fatalf("notifications=%+v", e.sink.got)
	}
}

func TestReports(t *testing.T) {
	e := newEnv(t, application.StatusServicePending)
	ctx := context.Background()

	rep, err := e.uc.SubmitReport(ctx, owner, ReportInput{
		ApplicationID: e.appID, Description: "food bank", DaysCompleted: 1, PhotoName: "crew.jpg", Photo: []byte{1, 2, 3},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if rep.PhotoPath == "" || rep.Status != domain.ReportPendingReview {
		t.Fatalf("report=%+v", rep)
	}
	if ok, _ := e.store.Exists(ctx, rep.PhotoPath); !ok {
		t.Fatalf("photo not stored")
	}

	if _, err := e.uc.SubmitReport(ctx, stranger, ReportInput{ApplicationID: e.appID, Photo: []byte{9}}); !errors.Is(err, application.ErrForbidden) {
		t.Fatalf("stranger: want ErrForbidden, got %v", err)
	}

	got, err := e.uc.ReviewReport(ctx, admin, ReviewInput{ID: rep.ID, Approve: true})
	if err != nil || got.Status != domain.ReportApproved {
		t.Fatalf("review=%+v err=%v", got, err)
	}
	if _, err := e.uc.ReviewReport(ctx, admin, ReviewInput{ID: rep.ID}); !errors.Is(err, domain.ErrReportReviewed) {
		t.Fatalf("second review: want ErrReportReviewed, got %v", err)
	}
	if _, err := e.uc.ReviewReport(ctx, admin, ReviewInput{ID: 999}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing: want ErrNotFound, got %v", err)
	}
}

func TestSubmitReport_ServiceClosed(t *testing.T) {
	e := newEnv(t, application.StatusCompleted)
	_, err := e.uc.SubmitReport(context.Background(), owner, ReportInput{ApplicationID: e.appID, Photo: []byte{1}, PhotoName: "x.jpg"})
	if !errors.Is(err, domain.ErrServiceClosed) {
		t.Fatalf("want ErrServiceClosed, got %v", err)
	}
}
