package repositories

import (
	"context"
	"errors"

	"github.com/Dosada05/tournament-portal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrStageNotFound          = errors.New("stage not found")
	ErrStageNameConflict      = errors.New("stage name already used in this tournament")
	ErrStageInvalidTournament = errors.New("invalid tournament reference")
	ErrStageInvalidRole       = errors.New("invalid stage role")
)

type StageRepository interface {
	Create(ctx context.Context, stage *models.Stage) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Stage, error)
	ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]models.Stage, error)
	Update(ctx context.Context, stage *models.Stage) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresStageRepository struct {
	db *sqlx.DB
}

func NewPostgresStageRepository(db *sqlx.DB) StageRepository {
	return &postgresStageRepository{db: db}
}

const stageColumns = `id, tournament_id, name, role, stage_order, created_at`

func (r *postgresStageRepository) Create(ctx context.Context, s *models.Stage) error {
	query := `
		INSERT INTO tournament_stages (tournament_id, name, role, stage_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query, s.TournamentID, s.Name, s.Role, s.Order).Scan(&s.ID, &s.CreatedAt)
	return r.handleStageError(err)
}

func (r *postgresStageRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Stage, error) {
	s := &models.Stage{}
	if err := r.db.GetContext(ctx, s, `SELECT `+stageColumns+` FROM tournament_stages WHERE id = $1`, id); err != nil {
		return nil, notFound(err, ErrStageNotFound)
	}
	return s, nil
}

func (r *postgresStageRepository) ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]models.Stage, error) {
	stages := make([]models.Stage, 0)
	query := `SELECT ` + stageColumns + ` FROM tournament_stages WHERE tournament_id = $1 ORDER BY stage_order, created_at`
	if err := r.db.SelectContext(ctx, &stages, query, tournamentID); err != nil {
		return nil, err
	}
	return stages, nil
}

func (r *postgresStageRepository) Update(ctx context.Context, s *models.Stage) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tournament_stages SET name = $1, role = $2, stage_order = $3 WHERE id = $4`,
		s.Name, s.Role, s.Order, s.ID,
	)
	if err != nil {
		return r.handleStageError(err)
	}
	return checkAffectedRows(result, ErrStageNotFound)
}

func (r *postgresStageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournament_stages WHERE id = $1`, id)
	if err != nil {
		return r.handleStageError(err)
	}
	return checkAffectedRows(result, ErrStageNotFound)
}

func (r *postgresStageRepository) handleStageError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := asPQError(err); ok {
		switch pqErr.Code {
		case pqUniqueViolation:
			return ErrStageNameConflict
		case pqForeignKeyViolation:
			return ErrStageInvalidTournament
		case pqCheckViolation:
			return ErrStageInvalidRole
		}
	}
	return err
}
