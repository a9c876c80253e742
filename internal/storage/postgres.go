package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yvesHakizimana/umurava-skill-challenge-backend/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 25 // default
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 5 // default
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

const challengeColumns = `id, title, deadline, money_prize, contact_email, project_brief,
	project_description, project_requirements, deliverables, created_by,
	seniority_level, category, skills_needed, participants, status, created_at, updated_at`

// CreateChallenge creates a new challenge record
func (r *PostgresRepository) CreateChallenge(ctx context.Context, c *models.Challenge) error {
	descJSON, reqJSON, delivJSON, senJSON, skillsJSON, partJSON, err := marshalChallengeArrays(c)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO challenges (id, title, deadline, money_prize, contact_email, project_brief,
			project_description, project_requirements, deliverables, created_by,
			seniority_level, category, skills_needed, participants, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err = r.pool.Exec(ctx, query,
		c.ID,
		c.Title,
		c.Deadline,
		c.MoneyPrize,
		c.ContactEmail,
		c.ProjectBrief,
		descJSON,
		reqJSON,
		delivJSON,
		c.CreatedBy,
		senJSON,
		string(c.Category),
		skillsJSON,
		partJSON,
		string(c.Status),
		c.CreatedAt,
		c.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create challenge: %w", err)
	}

	return nil
}

// GetChallenge retrieves a challenge by ID. Returns (nil, nil) when absent.
func (r *PostgresRepository) GetChallenge(ctx context.Context, id string) (*models.Challenge, error) {
	query := fmt.Sprintf(`SELECT %s FROM challenges WHERE id = $1`, challengeColumns)

	c, err := scanChallenge(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}

	return c, nil
}

// UpdateChallenge applies a partial update and returns the updated record.
// Returns (nil, nil) when the challenge does not exist.
func (r *PostgresRepository) UpdateChallenge(ctx context.Context, id string, upd *models.UpdateChallengeRequest) (*models.Challenge, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id}
	argNum := 2

	addSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argNum))
		args = append(args, value)
		argNum++
	}

	if upd.Title != nil {
		addSet("title", *upd.Title)
	}
	if upd.Deadline != nil {
		addSet("deadline", *upd.Deadline)
	}
	if upd.MoneyPrize != nil {
		addSet("money_prize", *upd.MoneyPrize)
	}
	if upd.ContactEmail != nil {
		addSet("contact_email", *upd.ContactEmail)
	}
	if upd.ProjectBrief != nil {
		addSet("project_brief", *upd.ProjectBrief)
	}
	if upd.ProjectDescription != nil {
		b, err := json.Marshal(upd.ProjectDescription)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal project description: %w", err)
		}
		addSet("project_description", b)
	}
	if upd.ProjectRequirements != nil {
		b, err := json.Marshal(upd.ProjectRequirements)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal project requirements: %w", err)
		}
		addSet("project_requirements", b)
	}
	if upd.Deliverables != nil {
		b, err := json.Marshal(upd.Deliverables)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal deliverables: %w", err)
		}
		addSet("deliverables", b)
	}
	if upd.SeniorityLevel != nil {
		b, err := json.Marshal(upd.SeniorityLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal seniority level: %w", err)
		}
		addSet("seniority_level", b)
	}
	if upd.Category != nil {
		addSet("category", string(*upd.Category))
	}
	if upd.SkillsNeeded != nil {
		b, err := json.Marshal(upd.SkillsNeeded)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal skills: %w", err)
		}
		addSet("skills_needed", b)
	}

	query := fmt.Sprintf(`
		UPDATE challenges
		SET %s
		WHERE id = $1
		RETURNING %s
	`, joinSets(sets), challengeColumns)

	c, err := scanChallenge(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update challenge: %w", err)
	}

	return c, nil
}

// DeleteChallenge deletes a challenge by ID; reports whether a row was removed
func (r *PostgresRepository) DeleteChallenge(ctx context.Context, id string) (bool, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM challenges WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete challenge: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// ListChallenges returns one page of challenges sorted by ascending deadline
func (r *PostgresRepository) ListChallenges(ctx context.Context, filters models.ListFilters) ([]*models.Challenge, error) {
	query := fmt.Sprintf(`SELECT %s FROM challenges WHERE 1=1`, challengeColumns)
	args := make([]interface{}, 0)
	argNum := 1

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, string(filters.Status))
		argNum++
	}

	query += " ORDER BY deadline ASC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filters.Limit)
		argNum++
	}

	if filters.Offset() > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filters.Offset())
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	defer rows.Close()

	var challenges []*models.Challenge

	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		challenges = append(challenges, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating challenges: %w", err)
	}

	return challenges, nil
}

// CountChallenges returns the total number of challenges matching the status filter
func (r *PostgresRepository) CountChallenges(ctx context.Context, status models.ChallengeStatus) (int, error) {
	query := `SELECT COUNT(*) FROM challenges`
	args := make([]interface{}, 0)

	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(status))
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count challenges: %w", err)
	}

	return count, nil
}

// AddParticipant appends a participant to a challenge atomically. The first
// participant flips an open challenge to ongoing in the same statement, and
// the guard clause rejects duplicates and completed challenges, so two
// concurrent joins cannot double-insert or double-flip. Reports whether a
// row was updated.
func (r *PostgresRepository) AddParticipant(ctx context.Context, challengeID, participantID string) (bool, error) {
	query := `
		UPDATE challenges
		SET participants = participants || to_jsonb($2::text),
		    status = CASE
		        WHEN jsonb_array_length(participants) = 0 AND status = 'open' THEN 'ongoing'
		        ELSE status
		    END,
		    updated_at = NOW()
		WHERE id = $1
		  AND status != 'completed'
		  AND NOT participants @> to_jsonb($2::text)
	`

	result, err := r.pool.Exec(ctx, query, challengeID, participantID)
	if err != nil {
		return false, fmt.Errorf("failed to add participant: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// MarkCompleted sets a challenge's status to completed unconditionally.
// Zero rows affected means the challenge no longer exists, which callers
// treat as a no-op.
func (r *PostgresRepository) MarkCompleted(ctx context.Context, id string) (int64, error) {
	result, err := r.pool.Exec(ctx,
		`UPDATE challenges SET status = 'completed', updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to mark challenge completed: %w", err)
	}

	return result.RowsAffected(), nil
}

// --- Users ---

// CreateUser creates a new user record
func (r *PostgresRepository) CreateUser(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (id, first_name, last_name, email, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query, u.ID, u.FirstName, u.LastName, u.Email, u.IsAdmin, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUsersByIDs retrieves all users whose ID appears in the given set
func (r *PostgresRepository) GetUsersByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, first_name, last_name, email, is_admin, created_at
		FROM users
		WHERE id = ANY($1)
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	defer rows.Close()

	var users []*models.User

	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.IsAdmin, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// --- Statistics facets ---

// CountCreatedInRange counts challenges created inside the range, optionally
// narrowed to one status. Both range boundaries are inclusive.
func (r *PostgresRepository) CountCreatedInRange(ctx context.Context, dr models.DateRange, status models.ChallengeStatus) (int, error) {
	query := `SELECT COUNT(*) FROM challenges WHERE created_at >= $1 AND created_at <= $2`
	args := []interface{}{dr.Start, dr.End}

	if status != "" {
		query += ` AND status = $3`
		args = append(args, string(status))
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count challenges in range: %w", err)
	}

	return count, nil
}

// CountDistinctParticipants counts distinct participant references across
// all challenges created inside the range
func (r *PostgresRepository) CountDistinctParticipants(ctx context.Context, dr models.DateRange) (int, error) {
	query := `
		SELECT COUNT(DISTINCT p)
		FROM challenges c, jsonb_array_elements_text(c.participants) p
		WHERE c.created_at >= $1 AND c.created_at <= $2
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, dr.Start, dr.End).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count distinct participants: %w", err)
	}

	return count, nil
}

// CountOpenWithoutParticipants counts open challenges nobody has joined yet
func (r *PostgresRepository) CountOpenWithoutParticipants(ctx context.Context) (int, error) {
	query := `
		SELECT COUNT(*) FROM challenges
		WHERE status = 'open' AND jsonb_array_length(participants) = 0
	`

	var count int
	if err := r.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count open challenges: %w", err)
	}

	return count, nil
}

// CountOngoingForTalent counts ongoing challenges the talent joined whose
// deadline has not passed yet
func (r *PostgresRepository) CountOngoingForTalent(ctx context.Context, talentID string, now time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM challenges
		WHERE status = 'ongoing'
		  AND participants @> to_jsonb($1::text)
		  AND deadline >= $2
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, talentID, now).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count ongoing challenges: %w", err)
	}

	return count, nil
}

// CountPastDeadlineForTalent counts challenges the talent joined whose
// deadline has already passed
func (r *PostgresRepository) CountPastDeadlineForTalent(ctx context.Context, talentID string, now time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM challenges
		WHERE participants @> to_jsonb($1::text)
		  AND deadline <= $2
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, talentID, now).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count past-deadline challenges: %w", err)
	}

	return count, nil
}

// --- Statistics snapshots ---

// InsertSnapshot persists a new immutable statistics snapshot
func (r *PostgresRepository) InsertSnapshot(ctx context.Context, s *models.StatsSnapshot) error {
	query := `
		INSERT INTO challenge_stats (id, period_start, period_end, total_challenges,
			completed_challenges, open_challenges, ongoing_challenges, total_participants, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		s.ID,
		s.PeriodStart,
		s.PeriodEnd,
		s.TotalChallenges,
		s.CompletedChallenges,
		s.OpenChallenges,
		s.OnGoingChallenges,
		s.TotalParticipants,
		s.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	return nil
}

const snapshotColumns = `id, period_start, period_end, total_challenges,
	completed_challenges, open_challenges, ongoing_challenges, total_participants, created_at`

// FindSnapshotByPeriod looks up a snapshot for the exact (start, end) pair.
// Returns (nil, nil) when no snapshot exists.
func (r *PostgresRepository) FindSnapshotByPeriod(ctx context.Context, start, end time.Time) (*models.StatsSnapshot, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM challenge_stats
		WHERE period_start = $1 AND period_end = $2
		LIMIT 1
	`, snapshotColumns)

	return r.scanSnapshotRow(r.pool.QueryRow(ctx, query, start, end))
}

// FindSnapshotCovering returns a snapshot whose stored period starts and ends
// no later than the requested range boundaries. The containment check is
// deliberately loose on the start side: a snapshot for an earlier window can
// satisfy a later request.
func (r *PostgresRepository) FindSnapshotCovering(ctx context.Context, dr models.DateRange) (*models.StatsSnapshot, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM challenge_stats
		WHERE period_start <= $1 AND period_end <= $2
		ORDER BY created_at DESC
		LIMIT 1
	`, snapshotColumns)

	return r.scanSnapshotRow(r.pool.QueryRow(ctx, query, dr.Start, dr.End))
}

func (r *PostgresRepository) scanSnapshotRow(row pgx.Row) (*models.StatsSnapshot, error) {
	var s models.StatsSnapshot

	err := row.Scan(
		&s.ID,
		&s.PeriodStart,
		&s.PeriodEnd,
		&s.TotalChallenges,
		&s.CompletedChallenges,
		&s.OpenChallenges,
		&s.OnGoingChallenges,
		&s.TotalParticipants,
		&s.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	return &s, nil
}

// --- Helpers ---

func marshalChallengeArrays(c *models.Challenge) (desc, req, deliv, sen, skills, part []byte, err error) {
	if desc, err = json.Marshal(emptyIfNil(c.ProjectDescription)); err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal project description: %w", err)
	}
	if req, err = json.Marshal(emptyIfNil(c.ProjectRequirements)); err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal project requirements: %w", err)
	}
	if deliv, err = json.Marshal(emptyIfNil(c.Deliverables)); err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal deliverables: %w", err)
	}
	if sen, err = json.Marshal(c.SeniorityLevel); err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal seniority level: %w", err)
	}
	if skills, err = json.Marshal(emptyIfNil(c.SkillsNeeded)); err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal skills: %w", err)
	}
	if part, err = json.Marshal(emptyIfNil(c.Participants)); err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal participants: %w", err)
	}
	return desc, req, deliv, sen, skills, part, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func scanChallenge(row pgx.Row) (*models.Challenge, error) {
	var c models.Challenge
	var statusStr, categoryStr string
	var descJSON, reqJSON, delivJSON, senJSON, skillsJSON, partJSON []byte

	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Deadline,
		&c.MoneyPrize,
		&c.ContactEmail,
		&c.ProjectBrief,
		&descJSON,
		&reqJSON,
		&delivJSON,
		&c.CreatedBy,
		&senJSON,
		&categoryStr,
		&skillsJSON,
		&partJSON,
		&statusStr,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Status = models.ChallengeStatus(statusStr)
	c.Category = models.Category(categoryStr)

	if err := json.Unmarshal(descJSON, &c.ProjectDescription); err != nil {
		return nil, fmt.Errorf("failed to unmarshal project description: %w", err)
	}
	if err := json.Unmarshal(reqJSON, &c.ProjectRequirements); err != nil {
		return nil, fmt.Errorf("failed to unmarshal project requirements: %w", err)
	}
	if err := json.Unmarshal(delivJSON, &c.Deliverables); err != nil {
		return nil, fmt.Errorf("failed to unmarshal deliverables: %w", err)
	}
	if err := json.Unmarshal(senJSON, &c.SeniorityLevel); err != nil {
		return nil, fmt.Errorf("failed to unmarshal seniority level: %w", err)
	}
	if err := json.Unmarshal(skillsJSON, &c.SkillsNeeded); err != nil {
		return nil, fmt.Errorf("failed to unmarshal skills: %w", err)
	}
	if err := json.Unmarshal(partJSON, &c.Participants); err != nil {
		return nil, fmt.Errorf("failed to unmarshal participants: %w", err)
	}

	return &c, nil
}

func joinSets(sets []string) string {
	return strings.Join(sets, ", ")
}
