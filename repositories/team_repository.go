package repositories

import (
	"context"
	"errors"

	"github.com/Dosada05/tournament-portal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamNameConflict = errors.New("team name already exists")
	ErrTeamInUse        = errors.New("team cannot be deleted as it has matches")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error)
	List(ctx context.Context) ([]models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresTeamRepository struct {
	db *sqlx.DB
}

func NewPostgresTeamRepository(db *sqlx.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

const teamColumns = `id, name, short_name, logo_url, created_at`

func (r *postgresTeamRepository) Create(ctx context.Context, t *models.Team) error {
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO teams (name, short_name, logo_url) VALUES ($1, $2, $3) RETURNING id, created_at`,
		t.Name, t.ShortName, t.LogoURL,
	).Scan(&t.ID, &t.CreatedAt)
	return r.handleTeamError(err)
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	t := &models.Team{}
	if err := r.db.GetContext(ctx, t, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id); err != nil {
		return nil, notFound(err, ErrTeamNotFound)
	}
	return t, nil
}

func (r *postgresTeamRepository) List(ctx context.Context) ([]models.Team, error) {
	teams := make([]models.Team, 0)
	if err := r.db.SelectContext(ctx, &teams, `SELECT `+teamColumns+` FROM teams ORDER BY name`); err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *postgresTeamRepository) Update(ctx context.Context, t *models.Team) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE teams SET name = $1, short_name = $2, logo_url = $3 WHERE id = $4`,
		t.Name, t.ShortName, t.LogoURL, t.ID,
	)
	if err != nil {
		return r.handleTeamError(err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return r.handleTeamError(err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) handleTeamError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := asPQError(err); ok {
		switch pqErr.Code {
		case pqUniqueViolation:
			if pqErr.Constraint == "teams_name_key" {
				return ErrTeamNameConflict
			}
		case pqForeignKeyViolation:
			return ErrTeamInUse
		}
	}
	return err
}
