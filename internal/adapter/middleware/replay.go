package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// replayEntry is what Redis holds per idempotency key: a lock while the
// handler runs, then the response to replay.
type replayEntry struct {
	InProgress  bool      `json:"in_progress"`
	Code        int       `json:"code,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Body        []byte    `json:"body,omitempty"`
	BodySHA256  string    `json:"body_sha256"`
	RequestAtMS int64     `json:"request_at_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

type replayStore struct {
	rdb  *redis.Client
	lock time.Duration // how long an unfinished claim blocks retries
	keep time.Duration // how long a finished response is replayed
}

// claim reserves key for the current request. When the key is taken the
// stored entry is returned; it is nil if the key expired in between.
func (s *replayStore) claim(ctx context.Context, key, fingerprint string, at time.Time) (*replayEntry, bool, error) {
	payload, err := json.Marshal(replayEntry{
		InProgress:  true,
		BodySHA256:  fingerprint,
		RequestAtMS: at.UnixMilli(),
		CreatedAt:   nowUTC(),
	})
	if err != nil {
		return nil, false, err
	}
	ok, err := s.rdb.SetNX(ctx, key, payload, s.lock).Result()
	if err != nil || ok {
		return nil, ok, err
	}
	prev, err := s.load(ctx, key)
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	return prev, false, err
}

func (s *replayStore) load(ctx context.Context, key string) (*replayEntry, error) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	var e replayEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &e, nil
}

func (s *replayStore) finish(ctx context.Context, key string, e replayEntry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, payload, s.keep).Err()
}

// release drops the claim so the client may retry with the same id.
func (s *replayStore) release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

func bodyHash(b []byte) string { s := sha256.Sum256(b); return hex.EncodeToString(s[:]) }

func nowUTC() time.Time { return time.Now().UTC() }

// buildKey scopes request ids per user and route, so two users (or two
// endpoints) may reuse the same id.
func buildKey(method, path string, userID uint64, requestID string) string {
	return "scholarship:idem:" + strconv.FormatUint(userID, 10) + ":" +
		strings.ToLower(method) + ":" + path + ":" + strings.ToLower(requestID)
}

var (
	reUUID  = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[1-5][a-f0-9]{3}-[89ab][a-f0-9]{3}-[a-f0-9]{12}$`)
	reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)
)

// validReqID accepts a UUID or the 32-char hex form pkg/id produces.
func validReqID(id string) bool {
	id = strings.ToLower(strings.TrimSpace(id))
	return reUUID.MatchString(id) || reHex32.MatchString(id)
}

// parseRequestAt accepts epoch seconds, epoch milliseconds, or RFC3339
// with an explicit zone. Local times without a zone are ambiguous and refused.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing " + HeaderRequestAt)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errors.New(HeaderRequestAt + " must be epoch (s/ms) or RFC3339 with timezone")
}

// requestStamp validates the idempotency headers against now.
func requestStamp(id, at string, now time.Time) (string, time.Time, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", time.Time{}, errors.New("missing " + HeaderRequestID)
	}
	if !validReqID(id) {
		return "", time.Time{}, errors.New("invalid " + HeaderRequestID + " format")
	}
	t, err := parseRequestAt(at)
	if err != nil {
		return "", time.Time{}, err
	}
	if t.Before(now.Add(-maxClockSkew)) || t.After(now.Add(maxClockSkew)) {
		return "", time.Time{}, errors.New(HeaderRequestAt + " too skewed")
	}
	return id, t, nil
}
