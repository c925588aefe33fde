package middleware

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const (
	HeaderRequestID = "Ax-Request-Id"
	HeaderRequestAt = "Ax-Request-At"
	// HeaderReplayed is set on responses served from the idempotency store.
	HeaderReplayed = "Ax-Idempotent-Replay"

	claimTTL     = 60 * time.Second
	maxClockSkew = 10 * time.Minute
	storeTimeout = 2 * time.Second
)

// replayRecorder tees the response so it can be stored after the handler.
type replayRecorder struct {
	http.ResponseWriter
	buf  bytes.Buffer
	code int
}

func (r *replayRecorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *replayRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// IdempotencyMiddleware makes mutating requests safe to retry. Each request
// carries Ax-Request-Id and Ax-Request-At; the first request with a given
// id (per user and route) runs, later ones get the stored response. A 5xx
// outcome is not stored, so the client can retry once the server recovers.
func IdempotencyMiddleware(rdb *redis.Client, ttl time.Duration) echo.MiddlewareFunc {
	store := &replayStore{rdb: rdb, lock: claimTTL, keep: ttl}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			reqID, reqAt, err := requestStamp(req.Header.Get(HeaderRequestID), req.Header.Get(HeaderRequestAt), nowUTC())
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			}
			actor, ok := ActorFrom(c)
			if !ok {
				if actor, err = parseActor(req.Header); err != nil {
					return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
				}
			}

			var body []byte
			if req.Body != nil {
				if body, err = io.ReadAll(req.Body); err != nil {
					return c.JSON(http.StatusBadRequest, map[string]string{"error": "unreadable body"})
				}
			}
			req.Body = io.NopCloser(bytes.NewReader(body))
			fingerprint := bodyHash(body)
			key := buildKey(req.Method, c.Path(), actor.UserID, reqID)

			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			defer cancel()
			prev, claimed, err := store.claim(ctx, key, fingerprint, reqAt)
			if err != nil {
				log.Printf("idempotency: claim %s: %v", key, err)
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "idempotency store unavailable"})
			}
			if !claimed {
				return replay(c, prev, fingerprint)
			}

			rec := &replayRecorder{ResponseWriter: c.Response().Writer, code: http.StatusOK}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				c.Error(err)
			}

			saveCtx, cancelSave := context.WithTimeout(context.WithoutCancel(req.Context()), storeTimeout)
			defer cancelSave()
			if rec.code >= http.StatusInternalServerError {
				if err := store.release(saveCtx, key); err != nil {
					log.Printf("idempotency: release %s: %v", key, err)
				}
				return nil
			}
			err = store.finish(saveCtx, key, replayEntry{
				Code:        rec.code,
				ContentType: rec.Header().Get(echo.HeaderContentType),
				Body:        rec.buf.Bytes(),
				BodySHA256:  fingerprint,
				RequestAtMS: reqAt.UnixMilli(),
				CreatedAt:   nowUTC(),
			})
			if err != nil {
				log.Printf("idempotency: store response %s: %v", key, err)
			}
			return nil
		}
	}
}

func replay(c echo.Context, prev *replayEntry, fingerprint string) error {
	switch {
	case prev == nil, prev.InProgress && prev.BodySHA256 == fingerprint:
		return c.JSON(http.StatusConflict, map[string]string{"error": "request is already in progress"})
	case prev.BodySHA256 != fingerprint:
		return c.JSON(http.StatusConflict, map[string]string{"error": HeaderRequestID + " reused with different body"})
	}
	c.Response().Header().Set(HeaderReplayed, "true")
	if len(prev.Body) == 0 {
		return c.NoContent(prev.Code)
	}
	ct := prev.ContentType
	if ct == "" {
		ct = echo.MIMEApplicationJSON
	}
	return c.Blob(prev.Code, ct, prev.Body)
}
