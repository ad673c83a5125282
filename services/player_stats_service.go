package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/Dosada05/tournament-portal/models"
	"github.com/Dosada05/tournament-portal/repositories"
	"github.com/google/uuid"
)

type PlayerStatsFilter struct {
	TeamID *uuid.UUID
	Search string
	// SortBy is "goals" (default) or "assists".
	SortBy string
}

type PlayerStatsService interface {
	Leaderboard(ctx context.Context, filter PlayerStatsFilter) ([]models.PlayerStatTotal, error)
}

type playerStatsService struct {
	statRepo repositories.PlayerStatRepository
}

func NewPlayerStatsService(statRepo repositories.PlayerStatRepository) PlayerStatsService {
	return &playerStatsService{statRepo: statRepo}
}

func (s *playerStatsService) Leaderboard(ctx context.Context, filter PlayerStatsFilter) ([]models.PlayerStatTotal, error) {
	sortBy := repositories.SortByGoals
	switch filter.SortBy {
	case "", string(repositories.SortByGoals):
	case string(repositories.SortByAssists):
		sortBy = repositories.SortByAssists
	default:
		return nil, fieldError("sort", "must be one of: goals assists")
	}

	totals, err := s.statRepo.Totals(ctx, repositories.PlayerStatFilter{
		TeamID: filter.TeamID,
		Search: filter.Search,
		SortBy: sortBy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load player statistics: %w", err)
	}
	return totals, nil
}

// WriteStatsCSV writes the leaderboard as CSV with a header row.
func WriteStatsCSV(w io.Writer, totals []models.PlayerStatTotal) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Player", "Team", "Goals", "Assists", "Yellow Cards", "Red Cards"}); err != nil {
		return err
	}
	for _, t := range totals {
		record := []string{
			t.Name,
			t.TeamName,
			strconv.Itoa(t.Goals),
			strconv.Itoa(t.Assists),
			strconv.Itoa(t.YellowCards),
			strconv.Itoa(t.RedCards),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
