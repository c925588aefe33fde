package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const (
	transitionRoute = "/applications/:id/transitions/:op"
	submitURL       = "/applications/7/transitions/submit"
	fixedReqID      = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
)

type harness struct {
	t    *testing.T
	mr   *miniredis.Miniredis
	rdb  *redis.Client
	e    *echo.Echo
	runs int32
}

// newHarness mounts handler behind both middlewares on the transition route.
// The handler sees the running call count.
func newHarness(t *testing.T, handler func(c echo.Context, run int32) error) *harness {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	h := &harness{t: t, mr: mr, rdb: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	h.e = echo.New()
	h.e.Use(ActorMiddleware(), IdempotencyMiddleware(h.rdb, 2*time.Minute))
	wrapped := func(c echo.Context) error { return handler(c, atomic.AddInt32(&h.runs, 1)) }
	h.e.POST(transitionRoute, wrapped)
	h.e.GET(transitionRoute, wrapped)
	return h
}

func stamp(user string) http.Header {
	h := http.Header{}
	h.Set(HeaderRequestID, fixedReqID)
	h.Set(HeaderRequestAt, time.Now().UTC().Format(time.RFC3339))
	h.Set(HeaderUserID, user)
	h.Set(HeaderUserRole, "student")
	return h
}

func (h *harness) send(method, body string, hdr http.Header) *httptest.ResponseRecorder {
	h.t.Helper()
	req := httptest.NewRequest(method, submitURL, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range hdr {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.e.ServeHTTP(rec, req)
	return rec
}

func created(c echo.Context, run int32) error {
	return c.JSON(http.StatusCreated, map[string]any{"ok": true, "run": run})
}

func TestIdempotency_GETIsNotTracked(t *testing.T) {
	h := newHarness(t, func(c echo.Context, _ int32) error { return c.String(http.StatusOK, "ok") })
	hdr := http.Header{}
	hdr.Set(HeaderUserID, "5")
	hdr.Set(HeaderUserRole, "admin")
	for i := 0; i < 2; i++ {
		if rec := h.send(http.MethodGet, "", hdr); rec.Code != http.StatusOK {
			t.Fatalf("GET => want 200, got %d", rec.Code)
		}
	}
	if h.runs != 2 {
		t.Fatalf("GET should always run the handler, ran %d", h.runs)
	}
	if keys := h.mr.Keys(); len(keys) != 0 {
		t.Fatalf("GET left keys behind: %v", keys)
	}
}

func TestIdempotency_RejectsBadHeaders(t *testing.T) {
	h := newHarness(t, created)
	edit := func(k, v string) http.Header {
		hdr := stamp("77")
		if v == "" {
			hdr.Del(k)
		} else {
			hdr.Set(k, v)
		}
		return hdr
	}
	stale := time.Now().UTC().Add(-maxClockSkew - time.Minute).Format(time.RFC3339)

	cases := []struct {
		name string
		hdr  http.Header
		want int
	}{
		{"no request id", edit(HeaderRequestID, ""), http.StatusBadRequest},
		{"garbage request id", edit(HeaderRequestID, "NOT-VALID"), http.StatusBadRequest},
		{"garbage request time", edit(HeaderRequestAt, "yesterday"), http.StatusBadRequest},
		{"stale request time", edit(HeaderRequestAt, stale), http.StatusBadRequest},
		{"no user", edit(HeaderUserID, ""), http.StatusUnauthorized},
		{"non-numeric user", edit(HeaderUserID, "abc"), http.StatusUnauthorized},
		{"unknown role", edit(HeaderUserRole, "root"), http.StatusUnauthorized},
	}
	for _, tc := range cases {
		if rec := h.send(http.MethodPost, `{"x":1}`, tc.hdr); rec.Code != tc.want {
			t.Errorf("%s => want %d, got %d (%s)", tc.name, tc.want, rec.Code, rec.Body.String())
		}
	}
	if h.runs != 0 {
		t.Fatalf("handler ran %d times for rejected requests", h.runs)
	}
}

func TestIdempotency_StandaloneReadsActorHeaders(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()
	e := echo.New()
	e.Use(IdempotencyMiddleware(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute))
	e.POST(transitionRoute, func(c echo.Context) error { return c.NoContent(http.StatusCreated) })

	for user, want := range map[string]int{"0": http.StatusBadRequest, "12": http.StatusCreated} {
		req := httptest.NewRequest(http.MethodPost, submitURL, strings.NewReader(`{}`))
		req.Header = stamp(user)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("user %s => want %d, got %d", user, want, rec.Code)
		}
	}
}

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	h := newHarness(t, created)

	first := h.send(http.MethodPost, `{"notes":"ok"}`, stamp("77"))
	if first.Code != http.StatusCreated {
		t.Fatalf("first => want 201, got %d: %s", first.Code, first.Body.String())
	}
	if first.Header().Get(HeaderReplayed) != "" {
		t.Fatalf("first response must not be marked as replay")
	}

	again := h.send(http.MethodPost, `{"notes":"ok"}`, stamp("77"))
	if again.Code != http.StatusCreated || again.Body.String() != first.Body.String() {
		t.Fatalf("replay => got %d %q, want 201 %q", again.Code, again.Body.String(), first.Body.String())
	}
	if again.Header().Get(HeaderReplayed) != "true" {
		t.Fatalf("replay header missing")
	}
	if !strings.HasPrefix(again.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		t.Fatalf("replay content type = %q", again.Header().Get(echo.HeaderContentType))
	}
	if h.runs != 1 {
		t.Fatalf("handler ran %d times, want 1", h.runs)
	}
}

func TestIdempotency_ReplaysEmptyBody(t *testing.T) {
	h := newHarness(t, func(c echo.Context, _ int32) error { return c.NoContent(http.StatusNoContent) })
	for i := 0; i < 2; i++ {
		if rec := h.send(http.MethodPost, `{}`, stamp("77")); rec.Code != http.StatusNoContent {
			t.Fatalf("attempt %d => want 204, got %d", i, rec.Code)
		}
	}
	if h.runs != 1 {
		t.Fatalf("handler ran %d times, want 1", h.runs)
	}
}

func TestIdempotency_KeysAreScopedPerUser(t *testing.T) {
	h := newHarness(t, created)
	for _, user := range []string{"77", "78"} {
		if rec := h.send(http.MethodPost, `{"notes":"ok"}`, stamp(user)); rec.Code != http.StatusCreated {
			t.Fatalf("user %s => want 201, got %d", user, rec.Code)
		}
	}
	if h.runs != 2 {
		t.Fatalf("handler ran %d times, want 2", h.runs)
	}
}

func TestIdempotency_ServerErrorReleasesKey(t *testing.T) {
	h := newHarness(t, func(c echo.Context, run int32) error {
		if run == 1 {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
		return c.JSON(http.StatusOK, map[string]int32{"run": run})
	})

	if rec := h.send(http.MethodPost, `{}`, stamp("77")); rec.Code != http.StatusInternalServerError {
		t.Fatalf("first => want 500, got %d", rec.Code)
	}
	if keys := h.mr.Keys(); len(keys) != 0 {
		t.Fatalf("5xx must release the key, still have %v", keys)
	}
	rec := h.send(http.MethodPost, `{}`, stamp("77"))
	if rec.Code != http.StatusOK || h.runs != 2 {
		t.Fatalf("retry => want 200 after 2 runs, got %d after %d", rec.Code, h.runs)
	}
}

func TestIdempotency_ReturnedErrorIsRendered(t *testing.T) {
	h := newHarness(t, func(c echo.Context, _ int32) error {
		return echo.NewHTTPError(http.StatusConflict, "already decided")
	})
	for i := 0; i < 2; i++ {
		if rec := h.send(http.MethodPost, `{}`, stamp("77")); rec.Code != http.StatusConflict {
			t.Fatalf("attempt %d => want 409, got %d", i, rec.Code)
		}
	}
	if h.runs != 1 {
		t.Fatalf("a 4xx outcome is final; handler ran %d times", h.runs)
	}
}

func TestIdempotency_Conflicts(t *testing.T) {
	body := `{"x":1}`
	key := buildKey(http.MethodPost, transitionRoute, 77, fixedReqID)

	cases := []struct {
		name string
		seed func(ctx context.Context, s *replayStore) error
		body string
	}{
		{"claim still held", func(ctx context.Context, s *replayStore) error {
			_, _, err := s.claim(ctx, key, bodyHash([]byte(body)), time.Now())
			return err
		}, body},
		{"finished with another body", func(ctx context.Context, s *replayStore) error {
			return s.finish(ctx, key, replayEntry{Code: http.StatusCreated, Body: []byte(`{"ok":true}`), BodySHA256: bodyHash([]byte(`{"x":2}`))})
		}, body},
		{"claimed with another body", func(ctx context.Context, s *replayStore) error {
			_, _, err := s.claim(ctx, key, bodyHash([]byte(`{"x":2}`)), time.Now())
			return err
		}, body},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, created)
			store := &replayStore{rdb: h.rdb, lock: time.Minute, keep: time.Minute}
			if err := tc.seed(context.Background(), store); err != nil {
				t.Fatalf("seed: %v", err)
			}
			if rec := h.send(http.MethodPost, tc.body, stamp("77")); rec.Code != http.StatusConflict {
				t.Fatalf("want 409, got %d: %s", rec.Code, rec.Body.String())
			}
			if h.runs != 0 {
				t.Fatalf("handler ran %d times", h.runs)
			}
		})
	}
}

func TestIdempotency_StoreDownIs503(t *testing.T) {
	e := echo.New()
	e.Use(ActorMiddleware(), IdempotencyMiddleware(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), time.Minute))
	e.POST(transitionRoute, func(c echo.Context) error { return c.NoContent(http.StatusCreated) })

	req := httptest.NewRequest(http.MethodPost, submitURL, strings.NewReader(`{}`))
	req.Header = stamp("77")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("store down => want 503, got %d", rec.Code)
	}
}
