package stats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yvesHakizimana/umurava-skill-challenge-backend/internal/models"
)

// Store is the slice of storage the aggregator needs
type Store interface {
	CountCreatedInRange(ctx context.Context, r models.DateRange, status models.ChallengeStatus) (int, error)
	CountDistinctParticipants(ctx context.Context, r models.DateRange) (int, error)
	InsertSnapshot(ctx context.Context, s *models.StatsSnapshot) error
	FindSnapshotByPeriod(ctx context.Context, start, end time.Time) (*models.StatsSnapshot, error)
	FindSnapshotCovering(ctx context.Context, r models.DateRange) (*models.StatsSnapshot, error)
}

// Aggregator computes point-in-time statistics over the challenge store,
// either live or through persisted snapshots
type Aggregator struct {
	store Store
}

// New creates an aggregator over the given store
func New(store Store) *Aggregator {
	return &Aggregator{store: store}
}

// Aggregate computes the five facet counts live for a range. The facets are
// independent queries over the same match set; off the request hot path the
// extra passes are acceptable.
func (a *Aggregator) Aggregate(ctx context.Context, r models.DateRange) (models.StatTotals, error) {
	var totals models.StatTotals
	var err error

	if totals.TotalChallenges, err = a.store.CountCreatedInRange(ctx, r, ""); err != nil {
		return totals, fmt.Errorf("failed to aggregate total challenges: %w", err)
	}
	if totals.CompletedChallenges, err = a.store.CountCreatedInRange(ctx, r, models.StatusCompleted); err != nil {
		return totals, fmt.Errorf("failed to aggregate completed challenges: %w", err)
	}
	if totals.OpenChallenges, err = a.store.CountCreatedInRange(ctx, r, models.StatusOpen); err != nil {
		return totals, fmt.Errorf("failed to aggregate open challenges: %w", err)
	}
	if totals.OnGoingChallenges, err = a.store.CountCreatedInRange(ctx, r, models.StatusOngoing); err != nil {
		return totals, fmt.Errorf("failed to aggregate ongoing challenges: %w", err)
	}
	if totals.TotalParticipants, err = a.store.CountDistinctParticipants(ctx, r); err != nil {
		return totals, fmt.Errorf("failed to aggregate participants: %w", err)
	}

	return totals, nil
}

// CombinedStats returns statistics for a range, preferring a persisted
// snapshot over live aggregation. A matching snapshot is returned verbatim,
// never recomputed.
func (a *Aggregator) CombinedStats(ctx context.Context, r models.DateRange) (models.StatTotals, error) {
	snapshot, err := a.store.FindSnapshotCovering(ctx, r)
	if err != nil {
		return models.StatTotals{}, fmt.Errorf("failed to look up snapshot: %w", err)
	}

	if snapshot != nil {
		slog.Debug("serving statistics from snapshot",
			"period_start", snapshot.PeriodStart,
			"period_end", snapshot.PeriodEnd,
		)
		return snapshot.StatTotals, nil
	}

	return a.Aggregate(ctx, r)
}

// SnapshotDaily computes the trailing-30-day totals and persists them as a
// new snapshot. Idempotent: when a snapshot for the exact period already
// exists the run is a no-op.
func (a *Aggregator) SnapshotDaily(ctx context.Context, now time.Time) error {
	current, _, err := DateRanges(FilterLast30Days, now)
	if err != nil {
		return err
	}

	existing, err := a.store.FindSnapshotByPeriod(ctx, current.Start, current.End)
	if err != nil {
		return fmt.Errorf("failed to check existing snapshot: %w", err)
	}
	if existing != nil {
		slog.Info("statistics snapshot already exists for period, skipping",
			"period_start", current.Start,
			"period_end", current.End,
		)
		return nil
	}

	totals, err := a.Aggregate(ctx, current)
	if err != nil {
		return err
	}

	snapshot := &models.StatsSnapshot{
		ID:          uuid.NewString(),
		PeriodStart: current.Start,
		PeriodEnd:   current.End,
		StatTotals:  totals,
		CreatedAt:   now,
	}

	if err := a.store.InsertSnapshot(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to persist snapshot: %w", err)
	}

	slog.Info("statistics snapshot saved",
		"period_start", current.Start,
		"period_end", current.End,
		"total_challenges", totals.TotalChallenges,
	)
	return nil
}
