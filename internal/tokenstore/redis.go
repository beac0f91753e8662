package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// KeyPrefix namespaces gateway session records in Redis.
	KeyPrefix = "sess:"

	fieldRecord   = "record"
	fieldLastSeen = "last_seen"
)

func Key(sessionID string) string {
	return KeyPrefix + sessionID
}

// Session is the Redis backend, one record per gateway session ID. The key
// carries a TTL matching the session cookie; reads slide it forward and stamp
// last_seen so the idle sweep can reap abandoned sessions early.
type Session struct {
	client    *redis.Client
	sessionID string
	ttl       time.Duration
}

func NewSession(client *redis.Client, sessionID string, ttl time.Duration) *Session {
	return &Session{client: client, sessionID: sessionID, ttl: ttl}
}

func (s *Session) key() string {
	return Key(s.sessionID)
}

func (s *Session) Set(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.key(), fieldRecord, data, fieldLastSeen, time.Now().UTC().Format(time.RFC3339))
	pipe.Expire(ctx, s.key(), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *Session) Get(ctx context.Context) (Record, bool, error) {
	data, err := s.client.HGet(ctx, s.key(), fieldRecord).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, false, nil
		}
		return Record{}, false, fmt.Errorf("load session: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, false, nil
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.key(), fieldLastSeen, time.Now().UTC().Format(time.RFC3339))
	pipe.Expire(ctx, s.key(), s.ttl)
	_, _ = pipe.Exec(ctx)

	return rec, rec.AccessToken != "", nil
}

func (s *Session) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// LastSeen reports when the session record was last touched. Used by the
// idle-session sweep.
func LastSeen(ctx context.Context, client *redis.Client, key string) (time.Time, error) {
	val, err := client.HGet(ctx, key, fieldLastSeen).Result()
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, val)
}
