package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"scholarship-backend/internal/domain/notification"
)

const inboxCap = 100

var (
	_ notification.Sink  = (*Redis)(nil)
	_ notification.Inbox = (*Redis)(nil)
)

// Redis publishes each message on the user's channel and keeps the last
// inboxCap messages in a list so clients that were offline can catch up.
type Redis struct{ rdb *redis.Client }

func NewRedis(rdb *redis.Client) *Redis { return &Redis{rdb: rdb} }

func Channel(userID uint64) string  { return fmt.Sprintf("notifications:%d", userID) }
func inboxKey(userID uint64) string { return fmt.Sprintf("notifications:inbox:%d", userID) }

func (r *Redis) Notify(ctx context.Context, m notification.Message) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	key := inboxKey(m.UserID)
	_, err = r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, key, b)
		p.LTrim(ctx, key, 0, inboxCap-1)
		p.Publish(ctx, Channel(m.UserID), b)
		return nil
	})
	return err
}

// Recent returns newest first.
func (r *Redis) Recent(ctx context.Context, userID uint64, limit int) ([]notification.Message, error) {
	if limit <= 0 || limit > inboxCap {
		limit = inboxCap
	}
	raw, err := r.rdb.LRange(ctx, inboxKey(userID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]notification.Message, 0, len(raw))
	for _, s := range raw {
		var m notification.Message
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}
