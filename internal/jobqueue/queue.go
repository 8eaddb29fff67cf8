package jobqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/4csolutions/razorpay-payments/internal/shared/apperr"
)

const (
	jobKeyPrefix = "rzp:job:"
	jobQueueKey  = "rzp:job_queue"

	jobTTL     = 24 * time.Hour
	popTimeout = 2 * time.Second

	defaultRetryBackoff = 2 * time.Second
)

// Handler processes one decoded job. A returned error marks the job
// failed; errors apperr classifies as permanent are never retried.
type Handler func(ctx context.Context, job *Job) error

// Queue is a Redis-backed at-least-once job queue with a fixed worker
// pool. Jobs are LPUSHed onto a list and BRPOPed by workers; the job
// body lives under its own key so failures stay inspectable.
type Queue struct {
	client       *redis.Client
	workers      int
	maxRetries   int
	retryBackoff time.Duration
	handlers     map[JobType]Handler
	logger       *slog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

func NewQueue(client *redis.Client, workers, maxRetries int, logger *slog.Logger) *Queue {
	if workers <= 0 {
		workers = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		client:       client,
		workers:      workers,
		maxRetries:   maxRetries,
		retryBackoff: defaultRetryBackoff,
		handlers:     make(map[JobType]Handler),
		logger:       logger,
		stopCh:       make(chan struct{}),
	}
}

// Register binds a handler to a job type. Call before Start.
func (q *Queue) Register(t JobType, h Handler) {
	q.handlers[t] = h
}

// Enqueue stores the job and makes it visible to workers. The job is
// visible only once this call returns, so callers that must order the
// enqueue after their own commit simply call Enqueue after the
// transaction closes.
func (q *Queue) Enqueue(ctx context.Context, t JobType, payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	now := time.Now()
	job := Job{
		ID:         uuid.NewString(),
		Type:       t,
		Status:     JobStatusPending,
		Payload:    raw,
		CreatedAt:  now,
		UpdatedAt:  now,
		MaxRetries: q.maxRetries,
	}

	if err := q.saveJob(ctx, &job); err != nil {
		return "", err
	}
	if err := q.client.LPush(ctx, jobQueueKey, job.ID).Err(); err != nil {
		return "", fmt.Errorf("push job: %w", err)
	}
	return job.ID, nil
}

func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	q.running = true

	q.logger.Info("job queue starting", "workers", q.workers)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.running {
		return
	}
	close(q.stopCh)
	q.running = false
	q.wg.Wait()
	q.logger.Info("job queue stopped")
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()
	ctx := context.Background()

	for {
		select {
		case <-q.stopCh:
			return
		default:
		}

		res, err := q.client.BRPop(ctx, popTimeout, jobQueueKey).Result()
		if err != nil {
			if err != redis.Nil {
				q.logger.Error("job pop failed", "worker", id, "err", err)
				time.Sleep(time.Second)
			}
			continue
		}
		// BRPop returns [key, value]
		q.process(ctx, id, res[1])
	}
}

func (q *Queue) process(ctx context.Context, worker int, jobID string) {
	job, err := q.loadJob(ctx, jobID)
	if err != nil {
		q.logger.Error("job load failed", "worker", worker, "job_id", jobID, "err", err)
		return
	}

	handler, ok := q.handlers[job.Type]
	if !ok {
		job.markFailed(fmt.Sprintf("no handler for job type %s", job.Type))
		_ = q.saveJob(ctx, job)
		q.logger.Error("job has no handler", "job_id", job.ID, "type", job.Type)
		return
	}

	job.markProcessing()
	_ = q.saveJob(ctx, job)

	if err := handler(ctx, job); err != nil {
		q.fail(ctx, job, err)
		return
	}

	job.markCompleted()
	_ = q.saveJob(ctx, job)
	q.logger.Info("job completed", "job_id", job.ID, "type", job.Type)
}

func (q *Queue) fail(ctx context.Context, job *Job, cause error) {
	job.markFailed(cause.Error())

	if apperr.Permanent(cause) || !job.Retryable() {
		_ = q.saveJob(ctx, job)
		q.logger.Error("job failed permanently",
			"job_id", job.ID, "type", job.Type, "retries", job.RetryCount, "err", cause)
		return
	}

	job.markRetrying()
	_ = q.saveJob(ctx, job)
	q.logger.Warn("job failed, retrying",
		"job_id", job.ID, "type", job.Type, "attempt", job.RetryCount, "err", cause)

	time.Sleep(q.retryBackoff)
	if err := q.client.LPush(ctx, jobQueueKey, job.ID).Err(); err != nil {
		q.logger.Error("job requeue failed", "job_id", job.ID, "err", err)
	}
}

func (q *Queue) saveJob(ctx context.Context, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.Set(ctx, jobKeyPrefix+job.ID, data, jobTTL).Err(); err != nil {
		return fmt.Errorf("store job: %w", err)
	}
	return nil
}

func (q *Queue) loadJob(ctx context.Context, id string) (*Job, error) {
	data, err := q.client.Get(ctx, jobKeyPrefix+id).Bytes()
	if err != nil {
		return nil, fmt.Errorf("fetch job %s: %w", id, err)
	}
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("unmarshal job %s: %w", id, err)
	}
	return &job, nil
}
