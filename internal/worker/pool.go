package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"cobranzas/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueNotificaciones = "jobs:notificaciones"

	JobEmail = "email"

	// MaxIntentos is how many times a job runs before it is moved to the DLQ.
	MaxIntentos = 3
)

var ErrSinCola = errors.New("cola de trabajos no configurada")

// Job is the envelope stored in the Redis list.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Intentos int             `json:"intentos"`
}

// Handler processes one job payload. A returned error schedules a retry.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Dispatcher enqueues jobs with LPUSH; the pool consumes them with BRPOP.
type Dispatcher struct {
	rdb   *redis.Client
	queue string
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb, queue: QueueNotificaciones}
}

// EnqueueEmail pushes an EmailJobPayload (or any JSON-compatible value) as an email job.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload interface{}) error {
	return d.enqueue(ctx, JobEmail, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, jobType string, payload interface{}) error {
	if d == nil || d.rdb == nil {
		return ErrSinCola
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", jobType, err)
	}
	return push(ctx, d.rdb, d.queue, Job{Type: jobType, Payload: data})
}

func push(ctx context.Context, rdb *redis.Client, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// Pool runs N goroutines blocked on BRPOP over the notification queue.
type Pool struct {
	rdb      *redis.Client
	queue    string
	handlers map[string]Handler
	metrics  *metrics.Metrics
	wg       sync.WaitGroup
}

func NewPool(rdb *redis.Client, m *metrics.Metrics) *Pool {
	return &Pool{
		rdb:      rdb,
		queue:    QueueNotificaciones,
		handlers: make(map[string]Handler),
		metrics:  m,
	}
}

// Handle registers h for jobType. Must be called before Start.
func (p *Pool) Handle(jobType string, h Handler) {
	p.handlers[jobType] = h
}

func (p *Pool) Start(ctx context.Context, numWorkers int) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go p.runWorker(ctx, i)
	}
	log.Info().Int("workers", numWorkers).Str("queue", p.queue).Msg("worker pool started")
}

// Wait blocks until every worker has returned after ctx cancellation.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) runWorker(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		if ctx.Err() != nil {
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		}
		// waits up to 5s then loops to check ctx
		result, err := p.rdb.BRPop(ctx, 5*time.Second, p.queue).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				log.Error().Err(err).Int("worker", id).Msg("brpop failed")
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}
		p.process(ctx, result[1])
	}
}

func (p *Pool) process(ctx context.Context, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Err(err).Str("queue", p.queue).Msg("failed to unmarshal job")
		SendToDLQ(ctx, p.rdb, p.queue, "unknown", json.RawMessage(fmt.Sprintf("%q", raw)), err.Error(), 0)
		p.metrics.Job("unknown", "dlq")
		return
	}

	h, ok := p.handlers[job.Type]
	if !ok {
		SendToDLQ(ctx, p.rdb, p.queue, job.Type, job.Payload, "no handler registered", job.Intentos)
		p.metrics.Job(job.Type, "dlq")
		return
	}

	err := h(ctx, job.Payload)
	if err == nil {
		p.metrics.Job(job.Type, "ok")
		return
	}

	job.Intentos++
	if agotado(job) {
		SendToDLQ(ctx, p.rdb, p.queue, job.Type, job.Payload, err.Error(), job.Intentos)
		p.metrics.Job(job.Type, "dlq")
		return
	}
	log.Warn().Err(err).Str("type", job.Type).Int("intentos", job.Intentos).Msg("job failed, requeued")
	p.metrics.Job(job.Type, "retry")
	if perr := push(ctx, p.rdb, p.queue, job); perr != nil {
		log.Error().Err(perr).Str("type", job.Type).Msg("requeue failed")
	}
}

func agotado(job Job) bool { return job.Intentos >= MaxIntentos }
