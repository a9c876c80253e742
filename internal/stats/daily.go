package stats

import (
	"context"
	"log/slog"
	"time"
)

// DailyWorker runs the statistics aggregation once per day at midnight UTC.
// Failures are logged and the run retried on the next cycle; the worker is
// owned and supervised by the process entry point.
type DailyWorker struct {
	aggregator *Aggregator
}

// NewDailyWorker creates the daily statistics worker
func NewDailyWorker(aggregator *Aggregator) *DailyWorker {
	return &DailyWorker{aggregator: aggregator}
}

// Start begins the daily loop in a goroutine; cancel ctx to stop it
func (w *DailyWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *DailyWorker) run(ctx context.Context) {
	slog.Info("daily statistics worker started")

	for {
		next := nextMidnightUTC(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("daily statistics worker stopped")
			return
		case <-timer.C:
		}

		if err := w.aggregator.SnapshotDaily(ctx, time.Now()); err != nil {
			slog.Error("daily statistics aggregation failed", "error", err)
		}
	}
}

func nextMidnightUTC(now time.Time) time.Time {
	utc := now.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}
