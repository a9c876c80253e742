package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Job is the payload of one deferred unit of work
type Job struct {
	ID          string `json:"id"`
	ChallengeID string `json:"challenge_id"`
}

// PendingJob is a not-yet-fired job together with its fire time
type PendingJob struct {
	Job
	FireAt time.Time

	// member is the raw sorted-set member, needed for removal
	member string
}

// DelayedQueue is a durable delayed-job queue backed by a Redis sorted set.
// Members are serialized jobs scored by their fire time in unix milliseconds,
// so pending jobs survive process restarts.
type DelayedQueue struct {
	client *redis.Client
	key    string
}

// NewDelayedQueue creates a delayed queue with the given name
func NewDelayedQueue(client *redis.Client, name string) *DelayedQueue {
	return &DelayedQueue{
		client: client,
		key:    name + ":delayed",
	}
}

// Enqueue adds a job firing after the given delay
func (q *DelayedQueue) Enqueue(ctx context.Context, challengeID string, delay time.Duration) error {
	job := Job{
		ID:          uuid.NewString(),
		ChallengeID: challengeID,
	}

	member, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	fireAt := time.Now().Add(delay)
	err = q.client.ZAdd(ctx, q.key, redis.Z{
		Score:  float64(fireAt.UnixMilli()),
		Member: string(member),
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}

	return nil
}

// ListPending returns all not-yet-claimed jobs with their fire times
func (q *DelayedQueue) ListPending(ctx context.Context) ([]PendingJob, error) {
	entries, err := q.client.ZRangeWithScores(ctx, q.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list pending jobs: %w", err)
	}

	pending := make([]PendingJob, 0, len(entries))
	for _, e := range entries {
		member, ok := e.Member.(string)
		if !ok {
			continue
		}

		var job Job
		if err := json.Unmarshal([]byte(member), &job); err != nil {
			// Unreadable members are skipped, not fatal
			continue
		}

		pending = append(pending, PendingJob{
			Job:    job,
			FireAt: time.UnixMilli(int64(e.Score)),
			member: member,
		})
	}

	return pending, nil
}

// CancelByChallenge removes every pending job referencing the challenge.
// Returns the number of jobs removed; zero is not an error.
func (q *DelayedQueue) CancelByChallenge(ctx context.Context, challengeID string) (int, error) {
	pending, err := q.ListPending(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, p := range pending {
		if p.ChallengeID != challengeID {
			continue
		}
		n, err := q.client.ZRem(ctx, q.key, p.member).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to remove job %s: %w", p.ID, err)
		}
		removed += int(n)
	}

	return removed, nil
}

// Requeue puts a job back with a fresh delay, used after a failed fire
func (q *DelayedQueue) Requeue(ctx context.Context, job Job, delay time.Duration) error {
	member, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	err = q.client.ZAdd(ctx, q.key, redis.Z{
		Score:  float64(time.Now().Add(delay).UnixMilli()),
		Member: string(member),
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to requeue job: %w", err)
	}

	return nil
}

// claimDue atomically claims jobs whose fire time has passed. A job counts
// as claimed only when this process removed its member, so two workers
// polling the same queue never both fire the same member.
func (q *DelayedQueue) claimDue(ctx context.Context, now time.Time) ([]Job, error) {
	members, err := q.client.ZRangeByScore(ctx, q.key, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%d", now.UnixMilli()),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to range due jobs: %w", err)
	}

	var claimed []Job
	for _, member := range members {
		n, err := q.client.ZRem(ctx, q.key, member).Result()
		if err != nil {
			return claimed, fmt.Errorf("failed to claim job: %w", err)
		}
		if n == 0 {
			// Another worker claimed it first
			continue
		}

		var job Job
		if err := json.Unmarshal([]byte(member), &job); err != nil {
			continue
		}
		claimed = append(claimed, job)
	}

	return claimed, nil
}
