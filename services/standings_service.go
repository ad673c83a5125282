package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tournament-portal/models"
	"github.com/Dosada05/tournament-portal/repositories"
	"github.com/Dosada05/tournament-portal/standings"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var ErrStandingsRebuildFailed = errors.New("failed to rebuild group standings")

// StandingsStore is the read side the standings service depends on.
// repositories.StandingsRepository satisfies it.
type StandingsStore interface {
	GetStage(ctx context.Context, stageID uuid.UUID) (*models.Stage, error)
	GetGroupStage(ctx context.Context, groupID uuid.UUID) (*models.Stage, error)
	ListStageIDs(ctx context.Context, tournamentID uuid.UUID) ([]uuid.UUID, error)
	ListGroupIDs(ctx context.Context, stageIDs []uuid.UUID) ([]uuid.UUID, error)
	ListMatchesByGroups(ctx context.Context, groupIDs []uuid.UUID) ([]models.Match, error)
	TeamNamesByGroups(ctx context.Context, groupIDs []uuid.UUID) (map[uuid.UUID]string, error)
	TeamNames(ctx context.Context, teamIDs []uuid.UUID) (map[uuid.UUID]string, error)
	ListDerived(ctx context.Context, groupIDs []uuid.UUID) ([]models.GroupStandingRow, error)
	ReplaceGroupStandings(ctx context.Context, groupID uuid.UUID, rows []models.StandingRow) error
}

type StandingsService interface {
	// GroupStandings ranks the teams of one group. The table is live while the group's
	// stage is a group stage.
	GroupStandings(ctx context.Context, groupID uuid.UUID) (standings.Table, error)
	// StageStandings ranks the teams over every group of one stage.
	StageStandings(ctx context.Context, stageID uuid.UUID) (standings.Table, error)
	// TournamentStandings ranks the teams over every group of the tournament.
	// stageID selects the stage being viewed; it only decides liveness and the title.
	TournamentStandings(ctx context.Context, tournamentID uuid.UUID, stageID *uuid.UUID) (standings.Table, error)
	// RebuildGroup recomputes a group from its matches and stores the derived rows.
	RebuildGroup(ctx context.Context, groupID uuid.UUID) ([]models.StandingRow, error)
}

type StandingsConfig struct {
	// Derived reads pre-aggregated group_standings rows instead of matches.
	Derived     bool
	Eligibility standings.Eligibility
}

type standingsService struct {
	store  StandingsStore
	cfg    StandingsConfig
	logger *slog.Logger
}

func NewStandingsService(store StandingsStore, cfg StandingsConfig, logger *slog.Logger) StandingsService {
	if cfg.Eligibility == "" {
		cfg.Eligibility = standings.EligibleStarted
	}
	return &standingsService{
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *standingsService) GroupStandings(ctx context.Context, groupID uuid.UUID) (standings.Table, error) {
	stage, err := s.store.GetGroupStage(ctx, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return standings.Table{}, ErrGroupNotFound
		}
		return standings.Table{}, fmt.Errorf("%w: %w", ErrStandingsUnavailable, err)
	}

	rows, err := s.rows(ctx, []uuid.UUID{groupID})
	if err != nil {
		return standings.Table{}, err
	}
	return standings.NewTable(standings.TitleGroup, stage.Role.IsLive(), rows), nil
}

func (s *standingsService) StageStandings(ctx context.Context, stageID uuid.UUID) (standings.Table, error) {
	stage, err := s.getStage(ctx, stageID)
	if err != nil {
		return standings.Table{}, err
	}

	groupIDs, err := s.store.ListGroupIDs(ctx, []uuid.UUID{stageID})
	if err != nil {
		return standings.Table{}, fmt.Errorf("%w: %w", ErrStandingsUnavailable, err)
	}

	rows, err := s.rows(ctx, groupIDs)
	if err != nil {
		return standings.Table{}, err
	}
	live := stage.Role.IsLive()
	return standings.NewTable(tournamentTitle(live), live, rows), nil
}

func (s *standingsService) TournamentStandings(ctx context.Context, tournamentID uuid.UUID, stageID *uuid.UUID) (standings.Table, error) {
	live := true
	if stageID != nil {
		stage, err := s.getStage(ctx, *stageID)
		if err != nil {
			return standings.Table{}, err
		}
		if stage.TournamentID != tournamentID {
			return standings.Table{}, ErrStageNotFound
		}
		live = stage.Role.IsLive()
	}

	stageIDs, err := s.store.ListStageIDs(ctx, tournamentID)
	if err != nil {
		return standings.Table{}, fmt.Errorf("%w: %w", ErrStandingsUnavailable, err)
	}
	groupIDs, err := s.store.ListGroupIDs(ctx, stageIDs)
	if err != nil {
		return standings.Table{}, fmt.Errorf("%w: %w", ErrStandingsUnavailable, err)
	}

	rows, err := s.rows(ctx, groupIDs)
	if err != nil {
		return standings.Table{}, err
	}
	return standings.NewTable(tournamentTitle(live), live, rows), nil
}

func (s *standingsService) RebuildGroup(ctx context.Context, groupID uuid.UUID) ([]models.StandingRow, error) {
	if _, err := s.store.GetGroupStage(ctx, groupID); err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrStandingsRebuildFailed, err)
	}

	matches, err := s.store.ListMatchesByGroups(ctx, []uuid.UUID{groupID})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStandingsRebuildFailed, err)
	}

	rows := standings.Aggregate(matches, nil, s.cfg.Eligibility)
	if err := s.store.ReplaceGroupStandings(ctx, groupID, rows); err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrStandingsRebuildFailed, err)
	}

	s.logger.Info("group standings rebuilt",
		slog.String("group_id", groupID.String()),
		slog.Int("teams", len(rows)),
		slog.Int("matches", len(matches)),
	)
	return rows, nil
}

func (s *standingsService) getStage(ctx context.Context, stageID uuid.UUID) (*models.Stage, error) {
	stage, err := s.store.GetStage(ctx, stageID)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrStandingsUnavailable, err)
	}
	return stage, nil
}

// rows returns the ranked rows over groupIDs; no groups means no rows.
func (s *standingsService) rows(ctx context.Context, groupIDs []uuid.UUID) ([]models.StandingRow, error) {
	if len(groupIDs) == 0 {
		return []models.StandingRow{}, nil
	}
	if s.cfg.Derived {
		return s.derivedRows(ctx, groupIDs)
	}

	var (
		matches []models.Match
		names   map[uuid.UUID]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		matches, err = s.store.ListMatchesByGroups(gctx, groupIDs)
		return err
	})
	g.Go(func() error {
		var err error
		names, err = s.store.TeamNamesByGroups(gctx, groupIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStandingsUnavailable, err)
	}

	return standings.Aggregate(matches, names, s.cfg.Eligibility), nil
}

func (s *standingsService) derivedRows(ctx context.Context, groupIDs []uuid.UUID) ([]models.StandingRow, error) {
	stored, err := s.store.ListDerived(ctx, groupIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStandingsUnavailable, err)
	}
	if len(stored) == 0 {
		return []models.StandingRow{}, nil
	}

	seen := make(map[uuid.UUID]struct{}, len(stored))
	teamIDs := make([]uuid.UUID, 0, len(stored))
	for _, r := range stored {
		if _, ok := seen[r.TeamID]; !ok {
			seen[r.TeamID] = struct{}{}
			teamIDs = append(teamIDs, r.TeamID)
		}
	}

	names, err := s.store.TeamNames(ctx, teamIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStandingsUnavailable, err)
	}
	for i := range stored {
		stored[i].TeamName = names[stored[i].TeamID]
	}

	return standings.Merge(stored), nil
}

func tournamentTitle(live bool) string {
	if live {
		return standings.TitleTournament
	}
	return standings.TitleFinal
}
