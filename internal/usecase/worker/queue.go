package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/simaogato/bioastro-backend/internal/domain"
	"github.com/simaogato/bioastro-backend/internal/usecase/chart"
)

// Defaults applied to zero Config fields
const (
	DefaultConcurrency = 4
	DefaultMaxRetries  = 5
	DefaultRetryBase   = time.Second
	DefaultMaxBackoff  = 5 * time.Minute
	DefaultQueueSize   = 1024
	DefaultRetention   = time.Hour
)

// ErrQueueFull is returned when the pending buffer has no room left
var ErrQueueFull = errors.New("compute queue full")

// Computer runs the chart pipeline; chart.Service implements it
type Computer interface {
	ComputeChart(ctx context.Context, chartID uuid.UUID, force bool) (chart.Outcome, error)
}

// Config controls the worker pool
type Config struct {
	Concurrency int
	MaxRetries  int // retries after the first attempt
	RetryBase   time.Duration
	MaxBackoff  time.Duration
	QueueSize   int
	Retention   time.Duration // how long finished jobs stay visible to Job
}

func (c Config) withDefaults() Config {
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryBase <= 0 {
		c.RetryBase = DefaultRetryBase
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = DefaultMaxBackoff
	}
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}
	if c.Retention <= 0 {
		c.Retention = DefaultRetention
	}
	return c
}

// Queue runs chart computations in the background on a fixed worker pool.
// Failed runs are retried with exponential backoff unless the error is permanent.
type Queue struct {
	computer Computer
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.RWMutex
	jobs    map[uuid.UUID]*domain.ComputeJob
	closed  bool
	pending chan uuid.UUID

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewQueue creates a queue and starts its workers
func NewQueue(computer Computer, cfg Config, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())

	q := &Queue{
		computer: computer,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		jobs:     make(map[uuid.UUID]*domain.ComputeJob),
		pending:  make(chan uuid.UUID, cfg.QueueSize),
		ctx:      ctx,
		cancel:   cancel,
	}

	q.wg.Add(cfg.Concurrency)
	for i := 0; i < cfg.Concurrency; i++ {
		go q.work()
	}
	return q
}

// Enqueue registers a pending job and returns its ID without waiting for it to run
func (q *Queue) Enqueue(chartID uuid.UUID, force bool) (uuid.UUID, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return uuid.Nil, domain.ErrQueueClosed
	}

	now := q.now()
	q.prune(now)

	job := &domain.ComputeJob{
		ID:        uuid.New(),
		ChartID:   chartID,
		Force:     force,
		Status:    domain.JobPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	select {
	case q.pending <- job.ID:
	default:
		return uuid.Nil, ErrQueueFull
	}
	q.jobs[job.ID] = job

	q.logger.Info("charts.queue.enqueued",
		zap.String("job_id", job.ID.String()),
		zap.String("chart_id", chartID.String()),
		zap.Bool("force", force),
	)
	return job.ID, nil
}

// Job returns a copy of the job's current state
func (q *Queue) Job(id uuid.UUID) (domain.ComputeJob, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	job, ok := q.jobs[id]
	if !ok {
		return domain.ComputeJob{}, fmt.Errorf("job %s: %w", id, domain.ErrJobNotFound)
	}
	return *job, nil
}

// Shutdown stops accepting jobs and waits for queued ones to finish.
// When ctx expires first, in-flight runs are cancelled and marked failed.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.pending)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		<-done
		return ctx.Err()
	}
}

func (q *Queue) work() {
	defer q.wg.Done()
	for id := range q.pending {
		q.run(id)
	}
}

func (q *Queue) run(id uuid.UUID) {
	job, err := q.Job(id)
	if err != nil {
		return
	}
	log := q.logger.With(zap.String("job_id", id.String()), zap.String("chart_id", job.ChartID.String()))

	for attempt := 0; ; attempt++ {
		if err := q.ctx.Err(); err != nil {
			q.fail(id, err)
			log.Warn("charts.queue.aborted", zap.Error(err))
			return
		}

		q.update(id, func(j *domain.ComputeJob) {
			j.Status = domain.JobProcessing
			j.Attempts = attempt + 1
		})

		outcome, err := q.computer.ComputeChart(q.ctx, job.ChartID, job.Force)
		if err == nil {
			q.update(id, func(j *domain.ComputeJob) {
				j.Status = domain.JobReady
				j.Outcome = string(outcome)
				j.LastError = ""
			})
			log.Info("charts.queue.ready", zap.String("outcome", string(outcome)), zap.Int("attempts", attempt+1))
			return
		}

		if !retryable(err) || attempt >= q.cfg.MaxRetries {
			q.fail(id, err)
			log.Error("charts.queue.failed", zap.Error(err), zap.Int("attempts", attempt+1))
			return
		}

		delay := q.backoff(attempt)
		q.update(id, func(j *domain.ComputeJob) {
			j.Status = domain.JobPending
			j.LastError = err.Error()
		})
		log.Warn("charts.queue.retrying", zap.Error(err), zap.Int("attempt", attempt+1), zap.Duration("backoff", delay))

		timer := time.NewTimer(delay)
		select {
		case <-q.ctx.Done():
			timer.Stop()
		case <-timer.C:
		}
	}
}

// backoff doubles the base delay per attempt, capped at MaxBackoff
func (q *Queue) backoff(attempt int) time.Duration {
	delay := q.cfg.RetryBase
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= q.cfg.MaxBackoff {
			return q.cfg.MaxBackoff
		}
	}
	return delay
}

// prune drops finished jobs older than the retention window; callers hold q.mu
func (q *Queue) prune(now time.Time) {
	cutoff := now.Add(-q.cfg.Retention)
	for id, job := range q.jobs {
		if job.Status.IsTerminal() && job.UpdatedAt.Before(cutoff) {
			delete(q.jobs, id)
		}
	}
}

func (q *Queue) fail(id uuid.UUID, err error) {
	q.update(id, func(j *domain.ComputeJob) {
		j.Status = domain.JobFailed
		j.LastError = err.Error()
	})
}

func (q *Queue) update(id uuid.UUID, fn func(*domain.ComputeJob)) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if job, ok := q.jobs[id]; ok {
		fn(job)
		job.UpdatedAt = q.now()
	}
}

// retryable reports whether another attempt could succeed
func retryable(err error) bool {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrChartNotFound),
		errors.Is(err, domain.ErrProviderNotImplemented),
		errors.Is(err, context.Canceled):
		return false
	}
	return true
}
