package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/prefeitura-digital/authgate/internal/tokenstore"
)

// Scheduler reaps gateway sessions that went idle before their cookie TTL
// elapsed. Redis expiry handles the hard deadline; this sweep handles the
// "remembered for 30 days but untouched for a week" case.
type Scheduler struct {
	cron    *cron.Cron
	redis   *redis.Client
	maxIdle time.Duration
	log     zerolog.Logger
}

func NewScheduler(redisClient *redis.Client, maxIdle time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		redis:   redisClient,
		maxIdle: maxIdle,
		log:     log,
	}
}

func (s *Scheduler) Start() error {
	if s.redis == nil || s.maxIdle <= 0 {
		return nil
	}

	if _, err := s.cron.AddFunc("0 */10 * * * *", s.sweepIdleSessions); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop blocks until in-flight jobs finish or the timeout elapses.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) sweepIdleSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var swept int
	iter := s.redis.Scan(ctx, 0, tokenstore.KeyPrefix+"*", 200).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()

		lastSeen, err := tokenstore.LastSeen(ctx, s.redis, key)
		if err != nil {
			continue
		}
		if time.Since(lastSeen) <= s.maxIdle {
			continue
		}

		if err := s.redis.Del(ctx, key).Err(); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("idle session delete failed")
			continue
		}
		swept++
	}
	if err := iter.Err(); err != nil {
		s.log.Error().Err(err).Msg("idle session scan failed")
		return
	}

	if swept > 0 {
		s.log.Info().Int("sessions", swept).Msg("idle sessions swept")
	}
}
