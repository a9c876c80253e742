package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yvesHakizimana/umurava-skill-challenge-backend/internal/models"
)

// fakeStore is an in-memory Store for aggregator tests
type fakeStore struct {
	countsByStatus map[models.ChallengeStatus]int
	participants   int
	snapshots      []*models.StatsSnapshot
	covering       *models.StatsSnapshot

	countErr    error
	insertCalls int
}

func (f *fakeStore) CountCreatedInRange(ctx context.Context, r models.DateRange, status models.ChallengeStatus) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.countsByStatus[status], nil
}

func (f *fakeStore) CountDistinctParticipants(ctx context.Context, r models.DateRange) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.participants, nil
}

func (f *fakeStore) InsertSnapshot(ctx context.Context, s *models.StatsSnapshot) error {
	f.insertCalls++
	f.snapshots = append(f.snapshots, s)
	return nil
}

func (f *fakeStore) FindSnapshotByPeriod(ctx context.Context, start, end time.Time) (*models.StatsSnapshot, error) {
	for _, s := range f.snapshots {
		if s.PeriodStart.Equal(start) && s.PeriodEnd.Equal(end) {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindSnapshotCovering(ctx context.Context, r models.DateRange) (*models.StatsSnapshot, error) {
	return f.covering, nil
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		countsByStatus: map[models.ChallengeStatus]int{
			"":                     10,
			models.StatusOpen:      4,
			models.StatusOngoing:   3,
			models.StatusCompleted: 3,
		},
		participants: 25,
	}
}

func TestAggregate(t *testing.T) {
	store := newFakeStore()
	agg := New(store)

	totals, err := agg.Aggregate(context.Background(), models.DateRange{})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if totals.TotalChallenges != 10 {
		t.Errorf("total: got %d, want 10", totals.TotalChallenges)
	}
	if totals.OpenChallenges != 4 {
		t.Errorf("open: got %d, want 4", totals.OpenChallenges)
	}
	if totals.OnGoingChallenges != 3 {
		t.Errorf("ongoing: got %d, want 3", totals.OnGoingChallenges)
	}
	if totals.CompletedChallenges != 3 {
		t.Errorf("completed: got %d, want 3", totals.CompletedChallenges)
	}
	if totals.TotalParticipants != 25 {
		t.Errorf("participants: got %d, want 25", totals.TotalParticipants)
	}
}

func TestAggregatePropagatesStoreError(t *testing.T) {
	store := newFakeStore()
	store.countErr = errors.New("connection reset")
	agg := New(store)

	if _, err := agg.Aggregate(context.Background(), models.DateRange{}); err == nil {
		t.Error("expected error from failing store")
	}
}

func TestCombinedStatsPrefersSnapshot(t *testing.T) {
	store := newFakeStore()
	store.covering = &models.StatsSnapshot{
		ID: "snap-1",
		StatTotals: models.StatTotals{
			TotalChallenges:   99,
			TotalParticipants: 7,
		},
	}
	agg := New(store)

	totals, err := agg.CombinedStats(context.Background(), models.DateRange{})
	if err != nil {
		t.Fatalf("CombinedStats failed: %v", err)
	}

	// Snapshot values must be returned verbatim, never recomputed
	if totals.TotalChallenges != 99 {
		t.Errorf("expected snapshot total 99, got %d", totals.TotalChallenges)
	}
	if totals.TotalParticipants != 7 {
		t.Errorf("expected snapshot participants 7, got %d", totals.TotalParticipants)
	}
}

func TestCombinedStatsFallsBackToLive(t *testing.T) {
	store := newFakeStore()
	agg := New(store)

	totals, err := agg.CombinedStats(context.Background(), models.DateRange{})
	if err != nil {
		t.Fatalf("CombinedStats failed: %v", err)
	}

	if totals.TotalChallenges != 10 {
		t.Errorf("expected live total 10, got %d", totals.TotalChallenges)
	}
}

func TestSnapshotDaily(t *testing.T) {
	store := newFakeStore()
	agg := New(store)
	now := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)

	if err := agg.SnapshotDaily(context.Background(), now); err != nil {
		t.Fatalf("SnapshotDaily failed: %v", err)
	}

	if store.insertCalls != 1 {
		t.Fatalf("expected 1 snapshot insert, got %d", store.insertCalls)
	}

	snap := store.snapshots[0]
	if !snap.PeriodStart.Equal(now.AddDate(0, 0, -30)) {
		t.Errorf("snapshot period start wrong: %v", snap.PeriodStart)
	}
	if !snap.PeriodEnd.Equal(now) {
		t.Errorf("snapshot period end wrong: %v", snap.PeriodEnd)
	}
	if snap.TotalChallenges != 10 {
		t.Errorf("snapshot totals wrong: %d", snap.TotalChallenges)
	}
	if snap.ID == "" {
		t.Error("snapshot should get an id")
	}
}

func TestSnapshotDailyIdempotent(t *testing.T) {
	store := newFakeStore()
	agg := New(store)
	now := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)

	if err := agg.SnapshotDaily(context.Background(), now); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if err := agg.SnapshotDaily(context.Background(), now); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if store.insertCalls != 1 {
		t.Errorf("second run for the same period should not insert, got %d inserts", store.insertCalls)
	}

	// A different day produces a different period and a new snapshot
	if err := agg.SnapshotDaily(context.Background(), now.AddDate(0, 0, 1)); err != nil {
		t.Fatalf("next-day run failed: %v", err)
	}
	if store.insertCalls != 2 {
		t.Errorf("next-day run should insert a new snapshot, got %d inserts", store.insertCalls)
	}
}
