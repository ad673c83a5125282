package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-portal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrGroupNotFound     = errors.New("group not found")
	ErrGroupNameConflict = errors.New("group name already used in this stage")
	ErrGroupInvalidStage = errors.New("invalid stage reference")
	ErrGroupInvalidTeam  = errors.New("invalid team reference")
)

type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Group, error)
	ListByStage(ctx context.Context, stageID uuid.UUID) ([]models.Group, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListTeams(ctx context.Context, groupID uuid.UUID) ([]models.Team, error)
	// ReplaceTeams sets the group's membership to exactly teamIDs.
	ReplaceTeams(ctx context.Context, groupID uuid.UUID, teamIDs []uuid.UUID) error
}

type postgresGroupRepository struct {
	db *sqlx.DB
}

func NewPostgresGroupRepository(db *sqlx.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

func (r *postgresGroupRepository) Create(ctx context.Context, g *models.Group) error {
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO groups (stage_id, name) VALUES ($1, $2) RETURNING id, created_at`,
		g.StageID, g.Name,
	).Scan(&g.ID, &g.CreatedAt)
	return r.handleGroupError(err)
}

func (r *postgresGroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	g := &models.Group{}
	if err := r.db.GetContext(ctx, g, `SELECT id, stage_id, name, created_at FROM groups WHERE id = $1`, id); err != nil {
		return nil, notFound(err, ErrGroupNotFound)
	}
	return g, nil
}

func (r *postgresGroupRepository) ListByStage(ctx context.Context, stageID uuid.UUID) ([]models.Group, error) {
	groups := make([]models.Group, 0)
	err := r.db.SelectContext(ctx, &groups,
		`SELECT id, stage_id, name, created_at FROM groups WHERE stage_id = $1 ORDER BY name`, stageID)
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *postgresGroupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrGroupNotFound)
}

func (r *postgresGroupRepository) ListTeams(ctx context.Context, groupID uuid.UUID) ([]models.Team, error) {
	teams := make([]models.Team, 0)
	query := `
		SELECT t.id, t.name, t.short_name, t.logo_url, t.created_at
		FROM group_teams gt
		JOIN teams t ON t.id = gt.team_id
		WHERE gt.group_id = $1
		ORDER BY t.name`
	if err := r.db.SelectContext(ctx, &teams, query, groupID); err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *postgresGroupRepository) ReplaceTeams(ctx context.Context, groupID uuid.UUID, teamIDs []uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var exists bool
		if err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM groups WHERE id = $1)`, groupID); err != nil {
			return err
		}
		if !exists {
			return ErrGroupNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM group_teams WHERE group_id = $1`, groupID); err != nil {
			return fmt.Errorf("failed to clear group teams: %w", err)
		}
		if len(teamIDs) == 0 {
			return nil
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO group_teams (group_id, team_id)
			SELECT $1, unnest($2::uuid[])
			ON CONFLICT DO NOTHING`,
			groupID, pq.Array(uuidStrings(teamIDs)),
		)
		return r.handleGroupError(err)
	})
}

func (r *postgresGroupRepository) handleGroupError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := asPQError(err); ok {
		switch pqErr.Code {
		case pqUniqueViolation:
			return ErrGroupNameConflict
		case pqForeignKeyViolation:
			if pqErr.Constraint == "group_teams_team_id_fkey" {
				return ErrGroupInvalidTeam
			}
			return ErrGroupInvalidStage
		}
	}
	return err
}

// uuidStrings prepares ids for pq.Array, which has no native uuid support.
func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
