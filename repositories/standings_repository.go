package repositories

import (
	"context"
	"fmt"

	"github.com/Dosada05/tournament-portal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// StandingsRepository reads everything the standings aggregation needs and stores
// the derived per-group table.
type StandingsRepository interface {
	GetStage(ctx context.Context, stageID uuid.UUID) (*models.Stage, error)
	GetGroupStage(ctx context.Context, groupID uuid.UUID) (*models.Stage, error)
	ListStageIDs(ctx context.Context, tournamentID uuid.UUID) ([]uuid.UUID, error)
	ListGroupIDs(ctx context.Context, stageIDs []uuid.UUID) ([]uuid.UUID, error)
	// ListMatchesByGroups returns matches ordered by match_date, id.
	ListMatchesByGroups(ctx context.Context, groupIDs []uuid.UUID) ([]models.Match, error)
	// TeamNamesByGroups resolves every team assigned to, or playing in, the groups.
	TeamNamesByGroups(ctx context.Context, groupIDs []uuid.UUID) (map[uuid.UUID]string, error)
	TeamNames(ctx context.Context, teamIDs []uuid.UUID) (map[uuid.UUID]string, error)
	ListDerived(ctx context.Context, groupIDs []uuid.UUID) ([]models.GroupStandingRow, error)
	ReplaceGroupStandings(ctx context.Context, groupID uuid.UUID, rows []models.StandingRow) error
}

type postgresStandingsRepository struct {
	db *sqlx.DB
}

func NewPostgresStandingsRepository(db *sqlx.DB) StandingsRepository {
	return &postgresStandingsRepository{db: db}
}

func (r *postgresStandingsRepository) GetStage(ctx context.Context, stageID uuid.UUID) (*models.Stage, error) {
	s := &models.Stage{}
	if err := r.db.GetContext(ctx, s, `SELECT `+stageColumns+` FROM tournament_stages WHERE id = $1`, stageID); err != nil {
		return nil, notFound(err, ErrStageNotFound)
	}
	return s, nil
}

func (r *postgresStandingsRepository) GetGroupStage(ctx context.Context, groupID uuid.UUID) (*models.Stage, error) {
	s := &models.Stage{}
	query := `
		SELECT s.id, s.tournament_id, s.name, s.role, s.stage_order, s.created_at
		FROM groups g
		JOIN tournament_stages s ON s.id = g.stage_id
		WHERE g.id = $1`
	if err := r.db.GetContext(ctx, s, query, groupID); err != nil {
		return nil, notFound(err, ErrGroupNotFound)
	}
	return s, nil
}

func (r *postgresStandingsRepository) ListStageIDs(ctx context.Context, tournamentID uuid.UUID) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0)
	err := r.db.SelectContext(ctx, &ids,
		`SELECT id FROM tournament_stages WHERE tournament_id = $1 ORDER BY stage_order, created_at`, tournamentID)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *postgresStandingsRepository) ListGroupIDs(ctx context.Context, stageIDs []uuid.UUID) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0)
	if len(stageIDs) == 0 {
		return ids, nil
	}
	err := r.db.SelectContext(ctx, &ids,
		`SELECT id FROM groups WHERE stage_id = ANY($1::uuid[]) ORDER BY name, id`, pq.Array(uuidStrings(stageIDs)))
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *postgresStandingsRepository) ListMatchesByGroups(ctx context.Context, groupIDs []uuid.UUID) ([]models.Match, error) {
	matches := make([]models.Match, 0)
	if len(groupIDs) == 0 {
		return matches, nil
	}
	query := `
		SELECT id, tournament_id, group_id, home_team_id, away_team_id, match_date, venue, status,
		       home_score, away_score, home_formation, away_formation, created_at, updated_at
		FROM matches
		WHERE group_id = ANY($1::uuid[])
		ORDER BY match_date, id`
	if err := r.db.SelectContext(ctx, &matches, query, pq.Array(uuidStrings(groupIDs))); err != nil {
		return nil, err
	}
	return matches, nil
}

type teamName struct {
	ID   uuid.UUID `db:"id"`
	Name string    `db:"name"`
}

func (r *postgresStandingsRepository) TeamNamesByGroups(ctx context.Context, groupIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	if len(groupIDs) == 0 {
		return map[uuid.UUID]string{}, nil
	}
	query := `
		SELECT t.id, t.name
		FROM teams t
		WHERE t.id IN (
			SELECT team_id FROM group_teams WHERE group_id = ANY($1::uuid[])
			UNION
			SELECT home_team_id FROM matches WHERE group_id = ANY($1::uuid[])
			UNION
			SELECT away_team_id FROM matches WHERE group_id = ANY($1::uuid[])
		)`
	return r.selectNames(ctx, query, pq.Array(uuidStrings(groupIDs)))
}

func (r *postgresStandingsRepository) TeamNames(ctx context.Context, teamIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	if len(teamIDs) == 0 {
		return map[uuid.UUID]string{}, nil
	}
	return r.selectNames(ctx, `SELECT id, name FROM teams WHERE id = ANY($1::uuid[])`, pq.Array(uuidStrings(teamIDs)))
}

func (r *postgresStandingsRepository) selectNames(ctx context.Context, query string, args ...interface{}) (map[uuid.UUID]string, error) {
	var rows []teamName
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(rows))
	for _, t := range rows {
		names[t.ID] = t.Name
	}
	return names, nil
}

func (r *postgresStandingsRepository) ListDerived(ctx context.Context, groupIDs []uuid.UUID) ([]models.GroupStandingRow, error) {
	rows := make([]models.GroupStandingRow, 0)
	if len(groupIDs) == 0 {
		return rows, nil
	}
	query := `
		SELECT group_id, team_id, '' AS team_name, played, wins, draws, losses,
		       goals_for, goals_against, goal_difference, points, updated_at
		FROM group_standings
		WHERE group_id = ANY($1::uuid[])
		ORDER BY group_id, points DESC, goal_difference DESC, goals_for DESC`
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(uuidStrings(groupIDs))); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *postgresStandingsRepository) ReplaceGroupStandings(ctx context.Context, groupID uuid.UUID, rows []models.StandingRow) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM group_standings WHERE group_id = $1`, groupID); err != nil {
			return fmt.Errorf("failed to clear group standings: %w", err)
		}
		for _, row := range rows {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO group_standings (
					group_id, team_id, played, wins, draws, losses,
					goals_for, goals_against, goal_difference, points, updated_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())`,
				groupID, row.TeamID, row.Played, row.Wins, row.Draws, row.Losses,
				row.GoalsFor, row.GoalsAgainst, row.GoalDifference, row.Points,
			)
			if err != nil {
				if pqErr, ok := asPQError(err); ok && pqErr.Code == pqForeignKeyViolation {
					return ErrGroupNotFound
				}
				return fmt.Errorf("failed to store standing for team %s: %w", row.TeamID, err)
			}
		}
		return nil
	})
}
