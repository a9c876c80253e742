package queue

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Handler processes one claimed job. It must be idempotent: delivery is
// at-least-once and a failed job is requeued.
type Handler func(ctx context.Context, job Job) error

// Worker polls a delayed queue and dispatches due jobs to a handler
type Worker struct {
	queue        *DelayedQueue
	handler      Handler
	interval     time.Duration
	requeueDelay time.Duration
}

// NewWorker creates a polling worker for the queue
func NewWorker(q *DelayedQueue, handler Handler, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = time.Second
	}

	return &Worker{
		queue:        q,
		handler:      handler,
		interval:     interval,
		requeueDelay: 5 * time.Second,
	}
}

// Start begins the polling loop in a goroutine; cancel ctx to stop it
func (w *Worker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *Worker) run(ctx context.Context) {
	slog.Info("queue worker started", "interval", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("queue worker stopped")
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

// poll claims due jobs, retrying transient Redis failures with exponential
// backoff before giving up until the next tick
func (w *Worker) poll(ctx context.Context) {
	var jobs []Job

	claim := func() error {
		var err error
		jobs, err = w.queue.claimDue(ctx, time.Now())
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(claim, backoff.WithContext(b, ctx)); err != nil {
		slog.Error("failed to claim due jobs", "error", err)
		return
	}

	for _, job := range jobs {
		if err := w.handler(ctx, job); err != nil {
			slog.Error("job handler failed, requeueing",
				"error", err,
				"job_id", job.ID,
				"challenge_id", job.ChallengeID,
			)
			if reqErr := w.queue.Requeue(ctx, job, w.requeueDelay); reqErr != nil {
				slog.Error("failed to requeue job", "error", reqErr, "job_id", job.ID)
			}
		}
	}
}
