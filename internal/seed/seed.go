package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/yvesHakizimana/umurava-skill-challenge-backend/internal/challenge"
	"github.com/yvesHakizimana/umurava-skill-challenge-backend/internal/models"
	"github.com/yvesHakizimana/umurava-skill-challenge-backend/internal/storage"
)

// File represents the YAML structure of a seed file
type File struct {
	Users      []userEntry      `yaml:"users"`
	Challenges []challengeEntry `yaml:"challenges"`
}

type userEntry struct {
	ID        string `yaml:"id"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Email     string `yaml:"email"`
	IsAdmin   bool   `yaml:"is_admin"`
}

type challengeEntry struct {
	ID                  string    `yaml:"id"`
	Title               string    `yaml:"title"`
	Deadline            time.Time `yaml:"deadline"`
	MoneyPrize          string    `yaml:"money_prize"`
	ContactEmail        string    `yaml:"contact_email"`
	ProjectBrief        string    `yaml:"project_brief"`
	ProjectDescription  []string  `yaml:"project_description"`
	ProjectRequirements []string  `yaml:"project_requirements"`
	Deliverables        []string  `yaml:"deliverables"`
	CreatedBy           string    `yaml:"created_by"`
	SeniorityLevel      []string  `yaml:"seniority_level"`
	Category            string    `yaml:"category"`
	SkillsNeeded        []string  `yaml:"skills_needed"`
	Participants        []string  `yaml:"participants"`
}

// Load parses a seed file from disk
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Parse parses seed YAML and validates the entries
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed YAML: %w", err)
	}

	for i, u := range f.Users {
		if u.ID == "" || u.Email == "" {
			return nil, fmt.Errorf("seed user %d: id and email are required", i)
		}
	}

	for i, c := range f.Challenges {
		if c.Title == "" {
			return nil, fmt.Errorf("seed challenge %d: title is required", i)
		}
		if c.Deadline.IsZero() {
			return nil, fmt.Errorf("seed challenge %q: deadline is required", c.Title)
		}
		if c.CreatedBy == "" {
			return nil, fmt.Errorf("seed challenge %q: created_by is required", c.Title)
		}
	}

	return &f, nil
}

// Apply writes the seed data through the repository and schedules completion
// jobs for challenges whose deadline has not passed. Seeding is skipped
// entirely when the store already holds challenges.
func Apply(ctx context.Context, f *File, repo storage.Repository, sched challenge.Scheduler) error {
	existing, err := repo.CountChallenges(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to check for existing data: %w", err)
	}
	if existing > 0 {
		slog.Info("seed skipped, store already populated", "challenges", existing)
		return nil
	}

	now := time.Now()

	for _, u := range f.Users {
		user := &models.User{
			ID:        u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
			IsAdmin:   u.IsAdmin,
			CreatedAt: now,
		}
		if err := repo.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("failed to seed user %q: %w", u.Email, err)
		}
	}

	for _, entry := range f.Challenges {
		c := toChallenge(entry, now)

		if err := repo.CreateChallenge(ctx, c); err != nil {
			return fmt.Errorf("failed to seed challenge %q: %w", c.Title, err)
		}

		if c.Status != models.StatusCompleted {
			if err := sched.Schedule(ctx, c.ID, c.Deadline); err != nil {
				slog.Error("failed to schedule seeded challenge", "error", err, "challenge_id", c.ID)
			}
		}
	}

	slog.Info("seed applied", "users", len(f.Users), "challenges", len(f.Challenges))
	return nil
}

// toChallenge converts a seed entry into a challenge, deriving status the
// same way the runtime does: past deadline means completed, at least one
// participant means ongoing, otherwise open.
func toChallenge(entry challengeEntry, now time.Time) *models.Challenge {
	id := entry.ID
	if id == "" {
		id = uuid.NewString()
	}

	seniority := make([]models.SeniorityLevel, 0, len(entry.SeniorityLevel))
	for _, s := range entry.SeniorityLevel {
		seniority = append(seniority, models.SeniorityLevel(s))
	}

	participants := entry.Participants
	if participants == nil {
		participants = []string{}
	}

	status := models.StatusOpen
	switch {
	case entry.Deadline.Before(now):
		status = models.StatusCompleted
	case len(participants) > 0:
		status = models.StatusOngoing
	}

	return &models.Challenge{
		ID:                  id,
		Title:               entry.Title,
		Deadline:            entry.Deadline,
		MoneyPrize:          entry.MoneyPrize,
		ContactEmail:        entry.ContactEmail,
		ProjectBrief:        entry.ProjectBrief,
		ProjectDescription:  entry.ProjectDescription,
		ProjectRequirements: entry.ProjectRequirements,
		Deliverables:        entry.Deliverables,
		CreatedBy:           entry.CreatedBy,
		SeniorityLevel:      seniority,
		Category:            models.Category(entry.Category),
		SkillsNeeded:        entry.SkillsNeeded,
		Participants:        participants,
		Status:              status,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}
