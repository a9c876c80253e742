package seed

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/yvesHakizimana/umurava-skill-challenge-backend/internal/models"
)

func TestLoadSeedFile(t *testing.T) {
	f, err := Load(filepath.Join("testdata", "seed.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(f.Users) != 3 {
		t.Errorf("expected 3 users, got %d", len(f.Users))
	}
	if len(f.Challenges) != 3 {
		t.Errorf("expected 3 challenges, got %d", len(f.Challenges))
	}

	admin := f.Users[0]
	if !admin.IsAdmin {
		t.Error("first seed user should be an admin")
	}
	if admin.Email != "admin@umurava.africa" {
		t.Errorf("unexpected admin email: %s", admin.Email)
	}

	payroll := f.Challenges[1]
	if payroll.Category != "backend" {
		t.Errorf("expected category 'backend', got %q", payroll.Category)
	}
	if len(payroll.Participants) != 1 {
		t.Errorf("expected 1 participant, got %d", len(payroll.Participants))
	}
	if len(payroll.SeniorityLevel) != 2 {
		t.Errorf("expected 2 seniority levels, got %d", len(payroll.SeniorityLevel))
	}
}

func TestParseRejectsIncompleteEntries(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{
			name: "user without email",
			yaml: "users:\n  - id: \"abc\"\n    first_name: \"No\"\n",
		},
		{
			name: "challenge without deadline",
			yaml: "challenges:\n  - title: \"Broken\"\n    created_by: \"abc\"\n",
		},
		{
			name: "challenge without creator",
			yaml: "challenges:\n  - title: \"Broken\"\n    deadline: 2027-01-01T00:00:00Z\n",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.yaml)); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestToChallengeStatusDerivation(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	base := challengeEntry{
		Title:     "Status check",
		CreatedBy: "creator",
	}

	past := base
	past.Deadline = now.AddDate(0, 0, -1)
	past.Participants = []string{"someone"}
	if got := toChallenge(past, now).Status; got != models.StatusCompleted {
		t.Errorf("past deadline: expected completed, got %s", got)
	}

	joined := base
	joined.Deadline = now.AddDate(0, 0, 7)
	joined.Participants = []string{"someone"}
	if got := toChallenge(joined, now).Status; got != models.StatusOngoing {
		t.Errorf("with participants: expected ongoing, got %s", got)
	}

	fresh := base
	fresh.Deadline = now.AddDate(0, 0, 7)
	c := toChallenge(fresh, now)
	if c.Status != models.StatusOpen {
		t.Errorf("no participants: expected open, got %s", c.Status)
	}
	if c.Participants == nil {
		t.Error("participants should be an empty slice, not nil")
	}
	if c.ID == "" {
		t.Error("missing id should be generated")
	}
}
