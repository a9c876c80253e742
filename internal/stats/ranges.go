package stats

import (
	"errors"
	"math"
	"time"

	"github.com/yvesHakizimana/umurava-skill-challenge-backend/internal/models"
)

// Statistics filters accepted by the reporting path
const (
	FilterThisWeek   = "this_week"
	FilterLast30Days = "last_30_days"
)

// ErrUnknownFilter is returned for a filter outside the accepted set
var ErrUnknownFilter = errors.New("unknown statistics filter")

// WeekRange returns the Sunday-to-Saturday calendar week containing t:
// start is that Sunday at 00:00:00.000, end the following Saturday at
// 23:59:59.999, both in t's location.
func WeekRange(t time.Time) models.DateRange {
	year, month, day := t.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, t.Location())
	start := midnight.AddDate(0, 0, -int(t.Weekday()))

	lastDay := start.AddDate(0, 0, 6)
	end := time.Date(lastDay.Year(), lastDay.Month(), lastDay.Day(),
		23, 59, 59, int(999*time.Millisecond), lastDay.Location())

	return models.DateRange{Start: start, End: end}
}

// DateRanges computes the current and previous period for a filter.
// this_week compares the calendar week of now against the week one week
// earlier; last_30_days compares the trailing 30 days against the 30 days
// before them. All boundaries are matched inclusively downstream.
func DateRanges(filter string, now time.Time) (current, previous models.DateRange, err error) {
	switch filter {
	case FilterThisWeek:
		return WeekRange(now), WeekRange(now.AddDate(0, 0, -7)), nil
	case FilterLast30Days:
		current = models.DateRange{Start: now.AddDate(0, 0, -30), End: now}
		previous = models.DateRange{Start: now.AddDate(0, 0, -60), End: now.AddDate(0, 0, -30)}
		return current, previous, nil
	default:
		return models.DateRange{}, models.DateRange{}, ErrUnknownFilter
	}
}

// ChangePercent computes the percent change between two counts, rounded to
// two decimal places. A rise from zero counts as 100%, zero-to-zero as 0%.
func ChangePercent(current, previous int) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}

	pct := float64(current-previous) / float64(previous) * 100
	return math.Round(pct*100) / 100
}
