package models

import "time"

// DateRange is a boundary-inclusive period used by statistics queries
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// StatTotals are the five facet counts computed over one period
type StatTotals struct {
	TotalChallenges     int `json:"total_challenges"`
	CompletedChallenges int `json:"completed_challenges"`
	OpenChallenges      int `json:"open_challenges"`
	OnGoingChallenges   int `json:"ongoing_challenges"`
	TotalParticipants   int `json:"total_participants"`
}

// StatsSnapshot is an immutable precomputed statistics record for a period.
// Never mutated after creation.
type StatsSnapshot struct {
	ID          string    `json:"id"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	StatTotals
	CreatedAt time.Time `json:"created_at"`
}

// MetricChange compares one metric between the current and previous period
type MetricChange struct {
	Current       int     `json:"current"`
	Previous      int     `json:"previous"`
	ChangePercent float64 `json:"change_percent"`
}

// StatsComparison is the full current-vs-previous statistics report
type StatsComparison struct {
	TotalChallenges     MetricChange `json:"total_challenges"`
	TotalParticipants   MetricChange `json:"total_participants"`
	CompletedChallenges MetricChange `json:"completed_challenges"`
	OpenChallenges      MetricChange `json:"open_challenges"`
	OnGoingChallenges   MetricChange `json:"ongoing_challenges"`
}

// TalentStats summarizes challenge availability for a single talent
type TalentStats struct {
	AllChallenges       int `json:"all_challenges"`
	OpenChallenges      int `json:"open_challenges"`
	OngoingChallenges   int `json:"ongoing_challenges"`
	CompletedChallenges int `json:"completed_challenges"`
}
