package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/tournament-portal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound         = errors.New("match not found")
	ErrMatchSameTeams        = errors.New("home and away team must differ")
	ErrMatchInvalidScore     = errors.New("scores must be non-negative")
	ErrMatchInvalidStatus    = errors.New("invalid match status")
	ErrMatchInvalidReference = errors.New("invalid tournament, group or team reference")
)

type ListMatchesFilter struct {
	TournamentID *uuid.UUID
	GroupIDs     []uuid.UUID
	From         *time.Time
	To           *time.Time
	Statuses     []models.MatchStatus
	Limit        int
}

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	// CreateBatch inserts all matches in one transaction.
	CreateBatch(ctx context.Context, matches []*models.Match) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error)
	List(ctx context.Context, filter ListMatchesFilter) ([]models.Match, error)
	Update(ctx context.Context, match *models.Match) error
	UpdateResult(ctx context.Context, id uuid.UUID, status models.MatchStatus, homeScore, awayScore *int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresMatchRepository struct {
	db *sqlx.DB
}

func NewPostgresMatchRepository(db *sqlx.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchSelect = `
	SELECT
		m.id, m.tournament_id, m.group_id, m.home_team_id, m.away_team_id,
		m.match_date, m.venue, m.status, m.home_score, m.away_score,
		m.home_formation, m.away_formation, m.created_at, m.updated_at,
		COALESCE(ht.name, '') AS home_team_name,
		COALESCE(at.name, '') AS away_team_name
	FROM matches m
	LEFT JOIN teams ht ON ht.id = m.home_team_id
	LEFT JOIN teams at ON at.id = m.away_team_id`

const matchInsert = `
	INSERT INTO matches (
		tournament_id, group_id, home_team_id, away_team_id, match_date, venue,
		status, home_score, away_score, home_formation, away_formation
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	RETURNING id, created_at, updated_at`

func (r *postgresMatchRepository) Create(ctx context.Context, m *models.Match) error {
	return r.insert(ctx, r.db, m)
}

func (r *postgresMatchRepository) CreateBatch(ctx context.Context, matches []*models.Match) error {
	if len(matches) == 0 {
		return nil
	}
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for i, m := range matches {
			if err := r.insert(ctx, tx, m); err != nil {
				return fmt.Errorf("match %d of %d: %w", i+1, len(matches), err)
			}
		}
		return nil
	})
}

func (r *postgresMatchRepository) insert(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	if m.Status == "" {
		m.Status = models.MatchStatusScheduled
	}
	err := exec.QueryRowxContext(ctx, matchInsert,
		m.TournamentID, m.GroupID, m.HomeTeamID, m.AwayTeamID, m.MatchDate, m.Venue,
		m.Status, m.HomeScore, m.AwayScore, m.HomeFormation, m.AwayFormation,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	m := &models.Match{}
	if err := r.db.GetContext(ctx, m, matchSelect+` WHERE m.id = $1`, id); err != nil {
		return nil, notFound(err, ErrMatchNotFound)
	}
	return m, nil
}

func (r *postgresMatchRepository) List(ctx context.Context, filter ListMatchesFilter) ([]models.Match, error) {
	var conditions []string
	args := []interface{}{}
	argID := 1

	if filter.TournamentID != nil {
		conditions = append(conditions, fmt.Sprintf("m.tournament_id = $%d", argID))
		args = append(args, *filter.TournamentID)
		argID++
	}
	if filter.GroupIDs != nil {
		conditions = append(conditions, fmt.Sprintf("m.group_id = ANY($%d::uuid[])", argID))
		args = append(args, pq.Array(uuidStrings(filter.GroupIDs)))
		argID++
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("m.match_date >= $%d", argID))
		args = append(args, *filter.From)
		argID++
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("m.match_date < $%d", argID))
		args = append(args, *filter.To)
		argID++
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		conditions = append(conditions, fmt.Sprintf("m.status = ANY($%d)", argID))
		args = append(args, pq.Array(statuses))
		argID++
	}

	query := matchSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY m.match_date, m.id"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
	}

	matches := make([]models.Match, 0)
	if err := r.db.SelectContext(ctx, &matches, query, args...); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *postgresMatchRepository) Update(ctx context.Context, m *models.Match) error {
	query := `
		UPDATE matches SET
			group_id = $1,
			home_team_id = $2,
			away_team_id = $3,
			match_date = $4,
			venue = $5,
			home_formation = $6,
			away_formation = $7,
			updated_at = now()
		WHERE id = $8`

	result, err := r.db.ExecContext(ctx, query,
		m.GroupID, m.HomeTeamID, m.AwayTeamID, m.MatchDate, m.Venue, m.HomeFormation, m.AwayFormation, m.ID,
	)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, id uuid.UUID, status models.MatchStatus, homeScore, awayScore *int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE matches SET status = $1, home_score = $2, away_score = $3, updated_at = now() WHERE id = $4`,
		status, homeScore, awayScore, id,
	)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := asPQError(err); ok {
		switch pqErr.Code {
		case pqCheckViolation:
			switch pqErr.Constraint {
			case "matches_teams_check":
				return ErrMatchSameTeams
			case "matches_scores_check":
				return ErrMatchInvalidScore
			case "matches_status_check":
				return ErrMatchInvalidStatus
			}
		case pqForeignKeyViolation:
			return ErrMatchInvalidReference
		}
	}
	return err
}
