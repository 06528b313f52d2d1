package worker

// retry_cron.go
// Background goroutine that periodically moves dead-lettered production
// sheet jobs back onto their queue. Each job is replayed at most
// maxDLQReplays times; after that it is parked in dlq:{queue}:exhausted
// for manual inspection. Ticks are skipped while the snapshot breaker is
// open since the render step would fail again.

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	replayTickInterval = 2 * time.Minute
	replayBatchSize    = 10
	maxDLQReplays      = 3
	exhaustedSuffix    = ":exhausted"
)

// dlqStore is the list plumbing the replayer needs.
type dlqStore interface {
	// pop removes the oldest DLQ entry; ok is false when the DLQ is empty.
	pop(ctx context.Context) (raw []byte, ok bool, err error)
	requeue(ctx context.Context, job Job) error
	park(ctx context.Context, raw []byte) error
}

type redisDLQ struct {
	rdb   *redis.Client
	queue string
}

func (r redisDLQ) pop(ctx context.Context) ([]byte, bool, error) {
	raw, err := r.rdb.RPop(ctx, DLQPrefix+r.queue).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (r redisDLQ) requeue(ctx context.Context, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return r.rdb.LPush(ctx, r.queue, encoded).Err()
}

func (r redisDLQ) park(ctx context.Context, raw []byte) error {
	return r.rdb.LPush(ctx, DLQPrefix+r.queue+exhaustedSuffix, raw).Err()
}

// ReplayCronConfig holds the dependencies of the replay goroutine.
type ReplayCronConfig struct {
	RDB     *redis.Client
	Breaker *infra.CircuitBreaker
	Queue   string
}

// StartReplayCron launches the replay goroutine. It stops with ctx.
func StartReplayCron(ctx context.Context, cfg ReplayCronConfig) {
	if cfg.RDB == nil {
		return
	}
	store := redisDLQ{rdb: cfg.RDB, queue: cfg.Queue}
	go func() {
		ticker := time.NewTicker(replayTickInterval)
		defer ticker.Stop()

		log.Info().Str("queue", cfg.Queue).Msg("replay_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("replay_cron: shutting down")
				return
			case <-ticker.C:
				replayDLQ(ctx, store, cfg.Breaker, time.Now())
			}
		}
	}()
}

// replayDLQ handles up to replayBatchSize entries and returns how many
// were requeued.
func replayDLQ(ctx context.Context, store dlqStore, cb *infra.CircuitBreaker, now time.Time) int {
	if cb != nil && cb.State() == infra.CBOpen {
		log.Debug().Msg("replay_cron: circuit breaker is open, skipping tick")
		return 0
	}

	replayed := 0
	for i := 0; i < replayBatchSize; i++ {
		raw, ok, err := store.pop(ctx)
		if err != nil {
			log.Error().Err(err).Msg("replay_cron: failed to pop DLQ entry")
			return replayed
		}
		if !ok {
			break
		}

		var entry DLQEntry
		if err := json.Unmarshal(raw, &entry); err != nil || entry.JobType == "" {
			log.Error().Err(err).Msg("replay_cron: unreadable DLQ entry parked")
			_ = store.park(ctx, raw)
			continue
		}
		if entry.Replays >= maxDLQReplays {
			log.Warn().
				Str("job_id", entry.JobID).
				Int("replays", entry.Replays).
				Str("reason", entry.Reason).
				Msg("replay_cron: replays exhausted, parking job")
			if err := store.park(ctx, raw); err != nil {
				log.Error().Err(err).Str("job_id", entry.JobID).Msg("replay_cron: park failed")
			}
			continue
		}

		job := Job{
			ID:         entry.JobID,
			Type:       entry.JobType,
			Payload:    entry.Payload,
			EnqueuedAt: now.UTC().Format(time.RFC3339),
			Replays:    entry.Replays + 1,
		}
		if err := store.requeue(ctx, job); err != nil {
			log.Error().Err(err).Str("job_id", job.ID).Msg("replay_cron: requeue failed, parking job")
			_ = store.park(ctx, raw)
			continue
		}
		replayed++
	}

	if replayed > 0 {
		log.Info().Int("count", replayed).Msg("replay_cron: jobs requeued from DLQ")
	}
	return replayed
}
