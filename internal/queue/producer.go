package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/mathdrill/internal/drill"
)

// Producer publishes worksheet jobs and their results
type Producer struct {
	pub     Publisher
	retrier retry.Retry[struct{}]
}

// NewProducer creates a producer that retries transient publish failures
func NewProducer(pub Publisher) *Producer {
	return &Producer{
		pub: pub,
		retrier: retry.New[struct{}](retry.Config{
			MaxAttempts:   3,
			InitialDelay:  100 * time.Millisecond,
			MaxDelay:      2 * time.Second,
			Multiplier:    2.0,
			BackoffPolicy: retry.BackoffExponential,
			Jitter:        true,
			IsRetryable: func(err error) bool {
				return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
			},
		}),
	}
}

func (p *Producer) publish(ctx context.Context, queue string, data any) error {
	_, err := p.retrier.Do(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, p.pub.PublishJSON(ctx, queue, data)
	})
	return err
}

// PublishJob enqueues a worksheet job
func (p *Producer) PublishJob(ctx context.Context, job *WorksheetJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}

	if err := p.publish(ctx, JobQueueName, job); err != nil {
		return fmt.Errorf("failed to publish worksheet job: %w", err)
	}

	slog.Info("published worksheet job",
		"job_id", job.ID,
		"topic", job.Request.Topic,
		"count", job.Request.Count,
	)
	return nil
}

// PublishResult publishes a job result to the results queue
func (p *Producer) PublishResult(ctx context.Context, result *JobResult) error {
	if result.CompletedAt.IsZero() {
		result.CompletedAt = time.Now().UTC()
	}

	if err := p.publish(ctx, ResultQueueName, result); err != nil {
		return fmt.Errorf("failed to publish job result: %w", err)
	}

	slog.Info("published job result",
		"job_id", result.JobID,
		"status", result.Status,
		"worksheet_id", result.WorksheetID,
		"duration", result.Duration,
	)
	return nil
}

// NewWorksheetJob wraps a batch request in a job
func NewWorksheetJob(req drill.BatchRequest) *WorksheetJob {
	return &WorksheetJob{
		ID:        uuid.New(),
		Request:   req,
		CreatedAt: time.Now().UTC(),
	}
}
