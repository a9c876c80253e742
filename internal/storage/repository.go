package storage

import (
	"context"
	"time"

	"github.com/yvesHakizimana/umurava-skill-challenge-backend/internal/models"
)

// Repository defines the interface for challenge persistence
type Repository interface {
	// Challenges
	CreateChallenge(ctx context.Context, c *models.Challenge) error
	GetChallenge(ctx context.Context, id string) (*models.Challenge, error)
	UpdateChallenge(ctx context.Context, id string, upd *models.UpdateChallengeRequest) (*models.Challenge, error)
	DeleteChallenge(ctx context.Context, id string) (bool, error)
	ListChallenges(ctx context.Context, filters models.ListFilters) ([]*models.Challenge, error)
	CountChallenges(ctx context.Context, status models.ChallengeStatus) (int, error)

	// Participation
	AddParticipant(ctx context.Context, challengeID, participantID string) (bool, error)
	MarkCompleted(ctx context.Context, id string) (int64, error)

	// Users
	CreateUser(ctx context.Context, u *models.User) error
	GetUsersByIDs(ctx context.Context, ids []string) ([]*models.User, error)

	// Statistics facets
	CountCreatedInRange(ctx context.Context, r models.DateRange, status models.ChallengeStatus) (int, error)
	CountDistinctParticipants(ctx context.Context, r models.DateRange) (int, error)
	CountOpenWithoutParticipants(ctx context.Context) (int, error)
	CountOngoingForTalent(ctx context.Context, talentID string, now time.Time) (int, error)
	CountPastDeadlineForTalent(ctx context.Context, talentID string, now time.Time) (int, error)

	// Statistics snapshots
	InsertSnapshot(ctx context.Context, s *models.StatsSnapshot) error
	FindSnapshotByPeriod(ctx context.Context, start, end time.Time) (*models.StatsSnapshot, error)
	FindSnapshotCovering(ctx context.Context, r models.DateRange) (*models.StatsSnapshot, error)

	// Health
	Ping(ctx context.Context) error
	Close() error
}
