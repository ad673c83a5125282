package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/tournament-portal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrStatInvalidReference = errors.New("invalid match or player reference")

type PlayerStatSort string

const (
	SortByGoals   PlayerStatSort = "goals"
	SortByAssists PlayerStatSort = "assists"
)

type PlayerStatFilter struct {
	TeamID *uuid.UUID
	// Search matches player names case-insensitively.
	Search string
	SortBy PlayerStatSort
}

type PlayerStatRepository interface {
	// Upsert writes per-player counters for one match.
	Upsert(ctx context.Context, matchID uuid.UUID, stats []models.PlayerMatchStat) error
	ListByMatch(ctx context.Context, matchID uuid.UUID) ([]models.PlayerMatchStat, error)
	Totals(ctx context.Context, filter PlayerStatFilter) ([]models.PlayerStatTotal, error)
}

type postgresPlayerStatRepository struct {
	db *sqlx.DB
}

func NewPostgresPlayerStatRepository(db *sqlx.DB) PlayerStatRepository {
	return &postgresPlayerStatRepository{db: db}
}

func (r *postgresPlayerStatRepository) Upsert(ctx context.Context, matchID uuid.UUID, stats []models.PlayerMatchStat) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, s := range stats {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO player_match_stats (match_id, player_id, goals, assists, yellow_cards, red_cards)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (match_id, player_id) DO UPDATE SET
					goals = EXCLUDED.goals,
					assists = EXCLUDED.assists,
					yellow_cards = EXCLUDED.yellow_cards,
					red_cards = EXCLUDED.red_cards`,
				matchID, s.PlayerID, s.Goals, s.Assists, s.YellowCards, s.RedCards,
			)
			if err != nil {
				if pqErr, ok := asPQError(err); ok && pqErr.Code == pqForeignKeyViolation {
					return ErrStatInvalidReference
				}
				return fmt.Errorf("failed to upsert stats for player %s: %w", s.PlayerID, err)
			}
		}
		return nil
	})
}

func (r *postgresPlayerStatRepository) ListByMatch(ctx context.Context, matchID uuid.UUID) ([]models.PlayerMatchStat, error) {
	stats := make([]models.PlayerMatchStat, 0)
	err := r.db.SelectContext(ctx, &stats, `
		SELECT match_id, player_id, goals, assists, yellow_cards, red_cards
		FROM player_match_stats WHERE match_id = $1`, matchID)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *postgresPlayerStatRepository) Totals(ctx context.Context, filter PlayerStatFilter) ([]models.PlayerStatTotal, error) {
	var conditions []string
	args := []interface{}{}
	argID := 1

	if filter.TeamID != nil {
		conditions = append(conditions, fmt.Sprintf("p.team_id = $%d", argID))
		args = append(args, *filter.TeamID)
		argID++
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		conditions = append(conditions, fmt.Sprintf("p.name ILIKE $%d", argID))
		args = append(args, "%"+escapeLike(search)+"%")
	}

	query := `
		SELECT
			p.id AS player_id,
			p.name,
			COALESCE(t.name, '') AS team_name,
			COALESCE(SUM(s.goals), 0) AS goals,
			COALESCE(SUM(s.assists), 0) AS assists,
			COALESCE(SUM(s.yellow_cards), 0) AS yellow_cards,
			COALESCE(SUM(s.red_cards), 0) AS red_cards
		FROM players p
		LEFT JOIN teams t ON t.id = p.team_id
		LEFT JOIN player_match_stats s ON s.player_id = p.id`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " GROUP BY p.id, p.name, t.name"

	switch filter.SortBy {
	case SortByAssists:
		query += " ORDER BY assists DESC, goals DESC, p.name"
	default:
		query += " ORDER BY goals DESC, assists DESC, p.name"
	}

	totals := make([]models.PlayerStatTotal, 0)
	if err := r.db.SelectContext(ctx, &totals, query, args...); err != nil {
		return nil, err
	}
	return totals, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
