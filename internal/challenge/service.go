package challenge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yvesHakizimana/umurava-skill-challenge-backend/internal/cache"
	"github.com/yvesHakizimana/umurava-skill-challenge-backend/internal/models"
	"github.com/yvesHakizimana/umurava-skill-challenge-backend/internal/stats"
	"github.com/yvesHakizimana/umurava-skill-challenge-backend/internal/storage"
)

// Scheduler arranges, replaces, and removes deadline completion jobs
type Scheduler interface {
	Schedule(ctx context.Context, challengeID string, deadline time.Time) error
	Reschedule(ctx context.Context, challengeID string, newDeadline time.Time) error
	Cancel(ctx context.Context, challengeID string) error
}

// ListingCache fronts paginated listings; it is an optimization only and
// every operation must behave correctly when it fails
type ListingCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	InvalidateAll(ctx context.Context) error
}

// Service is the single point through which all challenge reads and
// mutations flow, keeping the store, the completion scheduler, and the
// listing cache consistent. The store is the unit of correctness; scheduler
// and cache updates are best-effort side effects that never roll back or
// fail a primary mutation.
type Service struct {
	repo       storage.Repository
	cache      ListingCache
	scheduler  Scheduler
	aggregator *stats.Aggregator
}

// NewService creates the challenge lifecycle service with explicit
// dependencies
func NewService(repo storage.Repository, listingCache ListingCache, sched Scheduler, aggregator *stats.Aggregator) *Service {
	return &Service{
		repo:       repo,
		cache:      listingCache,
		scheduler:  sched,
		aggregator: aggregator,
	}
}

// CreateChallenge persists a new challenge as open, schedules its completion
// job, and drops cached listings. Scheduling failure does not fail the
// creation: the record outranks timely auto-completion.
func (s *Service) CreateChallenge(ctx context.Context, req *models.CreateChallengeRequest, createdBy string) (*models.Challenge, error) {
	if req == nil || req.IsEmpty() {
		return nil, ErrEmptyRequest
	}
	if !validID(createdBy) {
		return nil, fmt.Errorf("%w: creator id", ErrInvalidID)
	}

	now := time.Now()
	c := &models.Challenge{
		ID:                  uuid.NewString(),
		Title:               req.Title,
		Deadline:            req.Deadline,
		MoneyPrize:          req.MoneyPrize,
		ContactEmail:        req.ContactEmail,
		ProjectBrief:        req.ProjectBrief,
		ProjectDescription:  req.ProjectDescription,
		ProjectRequirements: req.ProjectRequirements,
		Deliverables:        req.Deliverables,
		CreatedBy:           createdBy,
		SeniorityLevel:      req.SeniorityLevel,
		Category:            req.Category,
		SkillsNeeded:        req.SkillsNeeded,
		Participants:        []string{},
		Status:              models.StatusOpen,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.repo.CreateChallenge(ctx, c); err != nil {
		return nil, err
	}

	if err := s.scheduler.Schedule(ctx, c.ID, c.Deadline); err != nil {
		slog.Error("failed to schedule challenge completion", "error", err, "challenge_id", c.ID)
	}

	s.invalidateListings(ctx)
	slog.Info("challenge created", "challenge_id", c.ID, "deadline", c.Deadline)
	return c, nil
}

// GetAllChallenges returns one listing page, served from the cache when a
// page for the same (page, limit, status) was cached since the last mutation
func (s *Service) GetAllChallenges(ctx context.Context, page, limit int, status models.ChallengeStatus) (*models.PaginatedChallenges, error) {
	if page < 1 || limit < 1 {
		return nil, ErrInvalidPagination
	}

	key := cache.ListingKey(page, limit, string(status))

	cached, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		slog.Error("listing cache read failed", "error", err, "key", key)
	} else if hit {
		var result models.PaginatedChallenges
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			slog.Debug("listing served from cache", "key", key)
			return &result, nil
		}
		slog.Warn("discarding unreadable cache entry", "key", key)
	}

	filters := models.ListFilters{Page: page, Limit: limit, Status: status}

	challenges, err := s.repo.ListChallenges(ctx, filters)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.CountChallenges(ctx, status)
	if err != nil {
		return nil, err
	}

	if challenges == nil {
		challenges = []*models.Challenge{}
	}

	result := &models.PaginatedChallenges{
		Data: challenges,
		Pagination: models.Pagination{
			Page:            page,
			Limit:           limit,
			TotalChallenges: total,
			TotalPages:      (total + limit - 1) / limit,
		},
	}

	if serialized, err := json.Marshal(result); err == nil {
		if err := s.cache.Set(ctx, key, string(serialized), cache.DefaultTTL); err != nil {
			slog.Error("listing cache write failed", "error", err, "key", key)
		}
	}

	return result, nil
}

// GetChallenge returns a single challenge by id
func (s *Service) GetChallenge(ctx context.Context, id string) (*models.Challenge, error) {
	if id == "" {
		return nil, ErrEmptyRequest
	}
	if !validID(id) {
		return nil, ErrInvalidID
	}

	c, err := s.repo.GetChallenge(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrChallengeNotFound
	}

	return c, nil
}

// UpdateChallengeByID applies a partial update, then replaces the pending
// completion job against the possibly changed deadline and drops cached
// listings. A rescheduling failure is logged, never surfaced.
func (s *Service) UpdateChallengeByID(ctx context.Context, id string, upd *models.UpdateChallengeRequest) (*models.Challenge, error) {
	if id == "" {
		return nil, ErrEmptyRequest
	}
	if !validID(id) {
		return nil, ErrInvalidID
	}
	if upd == nil || upd.IsEmpty() {
		return nil, ErrEmptyRequest
	}

	existing, err := s.repo.GetChallenge(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrChallengeNotFound
	}

	updated, err := s.repo.UpdateChallenge(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrChallengeNotFound
	}

	if err := s.scheduler.Reschedule(ctx, id, updated.Deadline); err != nil {
		slog.Error("failed to reschedule challenge completion", "error", err, "challenge_id", id)
	}

	s.invalidateListings(ctx)
	slog.Info("challenge updated", "challenge_id", id)
	return updated, nil
}

// DeleteChallengeByID removes a challenge, drops cached listings, and
// cancels its pending completion job. Cancellation failure is logged only.
func (s *Service) DeleteChallengeByID(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyRequest
	}
	if !validID(id) {
		return ErrInvalidID
	}

	deleted, err := s.repo.DeleteChallenge(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrChallengeNotFound
	}

	s.invalidateListings(ctx)

	if err := s.scheduler.Cancel(ctx, id); err != nil {
		slog.Error("failed to cancel challenge completion", "error", err, "challenge_id", id)
	}

	slog.Info("challenge deleted", "challenge_id", id)
	return nil
}

// StartChallenge appends a participant; the first participant flips the
// status from open to ongoing in the same store update
func (s *Service) StartChallenge(ctx context.Context, challengeID, participantID string) (*models.Challenge, error) {
	if !validID(challengeID) || !validID(participantID) {
		return nil, ErrInvalidID
	}

	c, err := s.repo.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrChallengeNotFound
	}
	if c.Status == models.StatusCompleted {
		return nil, ErrChallengeEnded
	}
	if c.HasParticipant(participantID) {
		return nil, ErrAlreadyJoined
	}

	joined, err := s.repo.AddParticipant(ctx, challengeID, participantID)
	if err != nil {
		return nil, err
	}
	if !joined {
		// Lost a race since the checks above; re-read to report why
		current, err := s.repo.GetChallenge(ctx, challengeID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, ErrChallengeNotFound
		}
		if current.Status == models.StatusCompleted {
			return nil, ErrChallengeEnded
		}
		return nil, ErrAlreadyJoined
	}

	updated, err := s.repo.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrChallengeNotFound
	}

	slog.Info("participant joined challenge",
		"challenge_id", challengeID,
		"participant_id", participantID,
		"status", updated.Status,
	)
	return updated, nil
}

// CheckParticipationStatus reports whether the participant already joined
func (s *Service) CheckParticipationStatus(ctx context.Context, challengeID, participantID string) (bool, error) {
	if !validID(challengeID) || !validID(participantID) {
		return false, ErrInvalidID
	}

	c, err := s.repo.GetChallenge(ctx, challengeID)
	if err != nil {
		return false, err
	}
	if c == nil {
		return false, ErrChallengeNotFound
	}

	return c.HasParticipant(participantID), nil
}

// GetParticipantDetails returns one page of a challenge's participants with
// name and email. Pagination slices the already-materialized participant
// list, preserving join order.
func (s *Service) GetParticipantDetails(ctx context.Context, challengeID string, page, limit int) (*models.ParticipantPage, error) {
	if !validID(challengeID) {
		return nil, ErrInvalidID
	}
	if page < 1 || limit < 1 {
		return nil, ErrInvalidPagination
	}

	c, err := s.repo.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrChallengeNotFound
	}

	total := len(c.Participants)

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	pageIDs := c.Participants[start:end]

	users, err := s.repo.GetUsersByIDs(ctx, pageIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	details := make([]models.ParticipantDetail, 0, len(pageIDs))
	for _, id := range pageIDs {
		u, ok := byID[id]
		if !ok {
			// Participant reference without a user record; skip it
			continue
		}
		details = append(details, models.ParticipantDetail{
			FullName: u.FullName(),
			Email:    u.Email,
		})
	}

	return &models.ParticipantPage{
		Participants:      details,
		TotalParticipants: total,
	}, nil
}

// GetChallengeStats compares the current period against the previous one
// for each metric, per the filter's date-range rule
func (s *Service) GetChallengeStats(ctx context.Context, filter string) (*models.StatsComparison, error) {
	current, previous, err := stats.DateRanges(filter, time.Now())
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFilter, filter)
	}

	currentTotals, err := s.aggregator.CombinedStats(ctx, current)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStatsUnavailable, err)
	}

	previousTotals, err := s.aggregator.CombinedStats(ctx, previous)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStatsUnavailable, err)
	}

	return &models.StatsComparison{
		TotalChallenges:     metricChange(currentTotals.TotalChallenges, previousTotals.TotalChallenges),
		TotalParticipants:   metricChange(currentTotals.TotalParticipants, previousTotals.TotalParticipants),
		CompletedChallenges: metricChange(currentTotals.CompletedChallenges, previousTotals.CompletedChallenges),
		OpenChallenges:      metricChange(currentTotals.OpenChallenges, previousTotals.OpenChallenges),
		OnGoingChallenges:   metricChange(currentTotals.OnGoingChallenges, previousTotals.OnGoingChallenges),
	}, nil
}

// GetTalentStatistics summarizes challenge availability for one talent
func (s *Service) GetTalentStatistics(ctx context.Context, talentID string) (*models.TalentStats, error) {
	if !validID(talentID) {
		return nil, ErrInvalidID
	}

	now := time.Now()

	open, err := s.repo.CountOpenWithoutParticipants(ctx)
	if err != nil {
		return nil, err
	}

	ongoing, err := s.repo.CountOngoingForTalent(ctx, talentID, now)
	if err != nil {
		return nil, err
	}

	completed, err := s.repo.CountPastDeadlineForTalent(ctx, talentID, now)
	if err != nil {
		return nil, err
	}

	return &models.TalentStats{
		AllChallenges:       open + ongoing + completed,
		OpenChallenges:      open,
		OngoingChallenges:   ongoing,
		CompletedChallenges: completed,
	}, nil
}

// invalidateListings drops all cached listing pages; failures are logged
// and swallowed because the cache is derived data
func (s *Service) invalidateListings(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		slog.Error("failed to invalidate listing cache", "error", err)
	}
}

func metricChange(current, previous int) models.MetricChange {
	return models.MetricChange{
		Current:       current,
		Previous:      previous,
		ChangePercent: stats.ChangePercent(current, previous),
	}
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
