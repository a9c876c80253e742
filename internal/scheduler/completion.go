package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/yvesHakizimana/umurava-skill-challenge-backend/internal/queue"
)

// CompletionStore is the slice of storage the fire handler needs
type CompletionStore interface {
	MarkCompleted(ctx context.Context, id string) (int64, error)
}

// CacheInvalidator drops cached listings after a background state change
type CacheInvalidator interface {
	InvalidateAll(ctx context.Context) error
}

// CompletionScheduler arranges a status transition to completed at each
// challenge's deadline. At most one active job exists per challenge: a
// deadline change goes through Reschedule, which is cancel-then-enqueue
// because the underlying queue has no in-place update.
type CompletionScheduler struct {
	queue  *queue.DelayedQueue
	store  CompletionStore
	cache  CacheInvalidator
	worker *queue.Worker
}

// New creates a completion scheduler; call Start to begin firing jobs
func New(q *queue.DelayedQueue, store CompletionStore, cache CacheInvalidator, pollInterval time.Duration) *CompletionScheduler {
	s := &CompletionScheduler{
		queue: q,
		store: store,
		cache: cache,
	}
	s.worker = queue.NewWorker(q, s.handleFire, pollInterval)
	return s
}

// Start launches the fire loop; cancel ctx to stop it
func (s *CompletionScheduler) Start(ctx context.Context) {
	s.worker.Start(ctx)
}

// Schedule enqueues a completion job firing at the deadline. A deadline
// already in the past schedules nothing: such challenges stay open or
// ongoing until transitioned by hand.
func (s *CompletionScheduler) Schedule(ctx context.Context, challengeID string, deadline time.Time) error {
	delay := time.Until(deadline)
	if delay <= 0 {
		slog.Warn("deadline already passed, completion not scheduled",
			"challenge_id", challengeID,
			"deadline", deadline,
		)
		return nil
	}

	if err := s.queue.Enqueue(ctx, challengeID, delay); err != nil {
		return err
	}

	slog.Info("completion scheduled", "challenge_id", challengeID, "deadline", deadline)
	return nil
}

// Cancel removes any pending completion job for the challenge. No-op when
// none exists.
func (s *CompletionScheduler) Cancel(ctx context.Context, challengeID string) error {
	removed, err := s.queue.CancelByChallenge(ctx, challengeID)
	if err != nil {
		return err
	}

	if removed > 0 {
		slog.Info("completion job cancelled", "challenge_id", challengeID, "removed", removed)
	}
	return nil
}

// Reschedule replaces the pending job with one at the new deadline. Safe to
// call when no prior job exists.
func (s *CompletionScheduler) Reschedule(ctx context.Context, challengeID string, newDeadline time.Time) error {
	if err := s.Cancel(ctx, challengeID); err != nil {
		return err
	}
	return s.Schedule(ctx, challengeID, newDeadline)
}

// handleFire marks the challenge completed and drops cached listings.
// Setting the status unconditionally keeps the handler idempotent under
// at-least-once delivery; zero rows affected means the challenge was
// deleted in the meantime, which is not an error.
func (s *CompletionScheduler) handleFire(ctx context.Context, job queue.Job) error {
	affected, err := s.store.MarkCompleted(ctx, job.ChallengeID)
	if err != nil {
		return err
	}

	if affected == 0 {
		slog.Info("challenge gone before completion fired", "challenge_id", job.ChallengeID)
	} else {
		slog.Info("challenge completed at deadline", "challenge_id", job.ChallengeID)
	}

	if err := s.cache.InvalidateAll(ctx); err != nil {
		slog.Error("failed to invalidate listing cache after completion",
			"error", err,
			"challenge_id", job.ChallengeID,
		)
	}

	return nil
}
