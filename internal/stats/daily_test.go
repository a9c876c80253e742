package stats

import (
	"testing"
	"time"
)

func TestNextMidnightUTC(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "midday",
			now:  time.Date(2026, 8, 26, 14, 30, 0, 0, time.UTC),
			want: time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "exactly midnight rolls to next day",
			now:  time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "month boundary",
			now:  time.Date(2026, 8, 31, 23, 59, 0, 0, time.UTC),
			want: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "non-utc input normalized",
			now:  time.Date(2026, 8, 26, 23, 0, 0, 0, time.FixedZone("CAT", 2*3600)),
			want: time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nextMidnightUTC(tt.now)
			if !got.Equal(tt.want) {
				t.Errorf("nextMidnightUTC(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}
