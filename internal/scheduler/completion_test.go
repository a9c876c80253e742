package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yvesHakizimana/umurava-skill-challenge-backend/internal/queue"
)

type fakeStore struct {
	completed []string
	affected  int64
	err       error
}

func (f *fakeStore) MarkCompleted(ctx context.Context, id string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.completed = append(f.completed, id)
	return f.affected, nil
}

type fakeInvalidator struct {
	calls int
	err   error
}

func (f *fakeInvalidator) InvalidateAll(ctx context.Context) error {
	f.calls++
	return f.err
}

func TestHandleFireMarksCompletedAndInvalidates(t *testing.T) {
	store := &fakeStore{affected: 1}
	inv := &fakeInvalidator{}
	s := New(nil, store, inv, time.Second)

	job := queue.Job{ID: "job-1", ChallengeID: "chal-1"}
	if err := s.handleFire(context.Background(), job); err != nil {
		t.Fatalf("handleFire failed: %v", err)
	}

	if len(store.completed) != 1 || store.completed[0] != "chal-1" {
		t.Errorf("challenge not marked completed: %v", store.completed)
	}
	if inv.calls != 1 {
		t.Errorf("cache should be invalidated once, got %d", inv.calls)
	}
}

func TestHandleFireDeletedChallengeIsNotAnError(t *testing.T) {
	// Zero rows affected means the challenge was deleted before the job
	// fired; the job must still be consumed
	store := &fakeStore{affected: 0}
	inv := &fakeInvalidator{}
	s := New(nil, store, inv, time.Second)

	if err := s.handleFire(context.Background(), queue.Job{ChallengeID: "gone"}); err != nil {
		t.Fatalf("deleted challenge should not fail the fire: %v", err)
	}
}

func TestHandleFireStoreErrorPropagates(t *testing.T) {
	// A store failure must surface so the worker requeues the job
	store := &fakeStore{err: errors.New("connection refused")}
	s := New(nil, store, &fakeInvalidator{}, time.Second)

	if err := s.handleFire(context.Background(), queue.Job{ChallengeID: "chal-1"}); err == nil {
		t.Error("expected store error to propagate")
	}
}

func TestHandleFireCacheFailureIsSwallowed(t *testing.T) {
	// The status change is durable; a failed invalidation only delays cache
	// freshness until the TTL and must not trigger a redelivery
	store := &fakeStore{affected: 1}
	inv := &fakeInvalidator{err: errors.New("redis down")}
	s := New(nil, store, inv, time.Second)

	if err := s.handleFire(context.Background(), queue.Job{ChallengeID: "chal-1"}); err != nil {
		t.Fatalf("cache failure should be swallowed: %v", err)
	}
}
