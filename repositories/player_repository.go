package repositories

import (
	"context"
	"errors"

	"github.com/Dosada05/tournament-portal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrPlayerNotFound      = errors.New("player not found")
	ErrPlayerInvalidTeam   = errors.New("invalid team reference")
	ErrPlayerInvalidJersey = errors.New("jersey number out of range")
)

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Player, error)
	// List returns every player, or only the players of teamID when it is set.
	List(ctx context.Context, teamID *uuid.UUID) ([]models.Player, error)
	Update(ctx context.Context, player *models.Player) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresPlayerRepository struct {
	db *sqlx.DB
}

func NewPostgresPlayerRepository(db *sqlx.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

const playerColumns = `id, team_id, name, jersey_number, position, created_at`

func (r *postgresPlayerRepository) Create(ctx context.Context, p *models.Player) error {
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO players (team_id, name, jersey_number, position) VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		p.TeamID, p.Name, p.JerseyNumber, p.Position,
	).Scan(&p.ID, &p.CreatedAt)
	return r.handlePlayerError(err)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	p := &models.Player{}
	if err := r.db.GetContext(ctx, p, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id); err != nil {
		return nil, notFound(err, ErrPlayerNotFound)
	}
	return p, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context, teamID *uuid.UUID) ([]models.Player, error) {
	players := make([]models.Player, 0)
	query := `SELECT ` + playerColumns + ` FROM players`
	args := []interface{}{}
	if teamID != nil {
		query += ` WHERE team_id = $1`
		args = append(args, *teamID)
	}
	query += ` ORDER BY jersey_number NULLS LAST, name`

	if err := r.db.SelectContext(ctx, &players, query, args...); err != nil {
		return nil, err
	}
	return players, nil
}

func (r *postgresPlayerRepository) Update(ctx context.Context, p *models.Player) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE players SET team_id = $1, name = $2, jersey_number = $3, position = $4 WHERE id = $5`,
		p.TeamID, p.Name, p.JerseyNumber, p.Position, p.ID,
	)
	if err != nil {
		return r.handlePlayerError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) handlePlayerError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := asPQError(err); ok {
		switch pqErr.Code {
		case pqForeignKeyViolation:
			return ErrPlayerInvalidTeam
		case pqCheckViolation:
			return ErrPlayerInvalidJersey
		}
	}
	return err
}
