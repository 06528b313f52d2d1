package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueProductionSheet = "jobs:production_sheet"

	JobTypeProductionSheet = "production_sheet"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt string          `json:"enqueued_at"`
	Replays    int             `json:"replays,omitempty"` // times replayed from the DLQ
}

// JobHandler processes one job payload. A returned error moves the job to
// the dead letter queue; handlers retry transient failures themselves.
type JobHandler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueProductionSheet pushes a render-and-mail job and returns its id.
func (d *Dispatcher) EnqueueProductionSheet(ctx context.Context, payload ProductionSheetPayload) (string, error) {
	return d.enqueue(ctx, QueueProductionSheet, JobTypeProductionSheet, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) (string, error) {
	if d == nil || d.rdb == nil {
		return "", fmt.Errorf("dispatcher: redis not configured")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	job := Job{
		ID:         uuid.NewString(),
		Type:       jobType,
		Payload:    data,
		EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
	}
	encoded, err := json.Marshal(job)
	if err != nil {
		return "", err
	}
	if err := d.rdb.LPush(ctx, queue, encoded).Err(); err != nil {
		return "", err
	}
	return job.ID, nil
}

// popErrorBackoff is how long a worker waits after Redis itself fails.
const popErrorBackoff = 2 * time.Second

// Pool routes dequeued jobs to their handlers by job type.
type Pool struct {
	handlers map[string]JobHandler
	dlq      func(ctx context.Context, queue string, job Job, reason string)
	pop      func(ctx context.Context) ([]string, error)
	backoff  time.Duration
}

func NewPool(rdb *redis.Client, handlers map[string]JobHandler) *Pool {
	p := &Pool{handlers: handlers, backoff: popErrorBackoff}
	p.pop = func(ctx context.Context) ([]string, error) {
		// Blocking pop; waits up to 5s then loops to check ctx
		return rdb.BRPop(ctx, 5*time.Second, QueueProductionSheet).Result()
	}
	p.dlq = func(ctx context.Context, queue string, job Job, reason string) {
		SendToDLQ(ctx, rdb, queue, job, reason, maxSheetAttempts)
	}
	return p
}

// Start launches numWorkers goroutines consuming the job queues.
// Each goroutine blocks on BRPOP, so idle workers cost no CPU.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go p.run(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func (p *Pool) run(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			result, err := p.pop(ctx)
			if err != nil {
				if errors.Is(err, redis.Nil) || ctx.Err() != nil {
					continue // timeout or shutdown
				}
				log.Warn().Err(err).Int("worker", id).Dur("backoff", p.backoff).Msg("queue pop failed")
				select {
				case <-ctx.Done():
				case <-time.After(p.backoff):
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			p.handle(ctx, result[0], result[1])
		}
	}
}

func (p *Pool) handle(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	h, ok := p.handlers[job.Type]
	if !ok {
		log.Error().Str("type", job.Type).Str("queue", queue).Msg("no handler for job type")
		p.dlq(ctx, queue, job, "unknown job type")
		return
	}

	start := time.Now()
	if err := h.Process(ctx, job.Payload); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Str("type", job.Type).Msg("job failed")
		p.dlq(ctx, queue, job, err.Error())
		return
	}
	log.Info().
		Str("job_id", job.ID).
		Str("type", job.Type).
		Dur("took", time.Since(start)).
		Msg("job done")
}
