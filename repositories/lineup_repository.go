package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-portal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrLineupInvalidReference = errors.New("invalid match, player or team reference")

type LineupRepository interface {
	ListByMatch(ctx context.Context, matchID uuid.UUID) ([]models.LineupEntry, error)
	// ReplaceTeamLineup swaps one team's lineup for a match in a single transaction.
	ReplaceTeamLineup(ctx context.Context, matchID, teamID uuid.UUID, entries []models.LineupEntry) error
}

type postgresLineupRepository struct {
	db *sqlx.DB
}

func NewPostgresLineupRepository(db *sqlx.DB) LineupRepository {
	return &postgresLineupRepository{db: db}
}

func (r *postgresLineupRepository) ListByMatch(ctx context.Context, matchID uuid.UUID) ([]models.LineupEntry, error) {
	entries := make([]models.LineupEntry, 0)
	query := `
		SELECT
			l.match_id, l.player_id, l.team_id, l.is_starting, l.goals, l.yellow_cards, l.red_cards,
			p.name AS player_name, p.jersey_number
		FROM match_lineups l
		JOIN players p ON p.id = l.player_id
		WHERE l.match_id = $1
		ORDER BY l.team_id, l.is_starting DESC, p.jersey_number NULLS LAST, p.name`
	if err := r.db.SelectContext(ctx, &entries, query, matchID); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *postgresLineupRepository) ReplaceTeamLineup(ctx context.Context, matchID, teamID uuid.UUID, entries []models.LineupEntry) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM match_lineups WHERE match_id = $1 AND team_id = $2`, matchID, teamID,
		); err != nil {
			return fmt.Errorf("failed to clear lineup: %w", err)
		}

		for _, e := range entries {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO match_lineups (match_id, player_id, team_id, is_starting, goals, yellow_cards, red_cards)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				matchID, e.PlayerID, teamID, e.IsStarting, e.Goals, e.YellowCards, e.RedCards,
			)
			if err != nil {
				if pqErr, ok := asPQError(err); ok && pqErr.Code == pqForeignKeyViolation {
					return ErrLineupInvalidReference
				}
				return err
			}
		}
		return nil
	})
}
