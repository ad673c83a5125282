package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/tournament-portal/models"
	"github.com/Dosada05/tournament-portal/repositories"
	"github.com/google/uuid"
)

var (
	ErrMatchCreationFailed = errors.New("failed to create match")
	ErrMatchUpdateFailed   = errors.New("failed to update match")
	ErrMatchDeleteFailed   = errors.New("failed to delete match")
	ErrLineupUpdateFailed  = errors.New("failed to update lineup")
	ErrStatsUpdateFailed   = errors.New("failed to update player stats")
)

// MatchTab selects which slice of the schedule is listed.
type MatchTab string

const (
	MatchTabAll      MatchTab = "all"
	MatchTabToday    MatchTab = "today"
	MatchTabUpcoming MatchTab = "upcoming"
)

func ParseMatchTab(s string) (MatchTab, error) {
	switch MatchTab(s) {
	case "":
		return MatchTabAll, nil
	case MatchTabAll, MatchTabToday, MatchTabUpcoming:
		return MatchTab(s), nil
	}
	return "", fieldError("tab", "must be one of: all today upcoming")
}

type ListMatchesInput struct {
	Tab          MatchTab
	TournamentID *uuid.UUID
	// LiveOnly keeps ongoing and halftime matches.
	LiveOnly bool
}

// MatchDetail is the match page: both teams' lineups and per-player stats.
type MatchDetail struct {
	Match *models.Match            `json:"match"`
	Home  models.TeamLineup        `json:"home"`
	Away  models.TeamLineup        `json:"away"`
	Stats []models.PlayerMatchStat `json:"stats"`
}

type MatchService interface {
	CreateMatch(ctx context.Context, input CreateMatchInput) (*models.Match, error)
	GetMatchByID(ctx context.Context, id uuid.UUID) (*models.Match, error)
	GetMatchDetail(ctx context.Context, id uuid.UUID) (*MatchDetail, error)
	ListMatches(ctx context.Context, input ListMatchesInput) ([]models.Match, error)
	UpdateMatch(ctx context.Context, id uuid.UUID, input UpdateMatchInput) (*models.Match, error)
	// UpdateResult records status and score and refreshes the group's stored standings.
	UpdateResult(ctx context.Context, id uuid.UUID, input UpdateResultInput) (*models.Match, error)
	DeleteMatch(ctx context.Context, id uuid.UUID) error
	ReplaceLineup(ctx context.Context, matchID, teamID uuid.UUID, input ReplaceLineupInput) (*models.TeamLineup, error)
	UpsertStats(ctx context.Context, matchID uuid.UUID, input UpsertStatsInput) ([]models.PlayerMatchStat, error)
}

type CreateMatchInput struct {
	TournamentID  uuid.UUID  `json:"tournament_id" validate:"required"`
	GroupID       *uuid.UUID `json:"group_id"`
	HomeTeamID    uuid.UUID  `json:"home_team_id" validate:"required"`
	AwayTeamID    uuid.UUID  `json:"away_team_id" validate:"required,nefield=HomeTeamID"`
	MatchDate     time.Time  `json:"match_date" validate:"required"`
	Venue         *string    `json:"venue" validate:"omitempty,max=200"`
	HomeFormation *string    `json:"home_formation" validate:"omitempty,max=20"`
	AwayFormation *string    `json:"away_formation" validate:"omitempty,max=20"`
}

type UpdateMatchInput struct {
	GroupID       *uuid.UUID `json:"group_id"`
	HomeTeamID    *uuid.UUID `json:"home_team_id"`
	AwayTeamID    *uuid.UUID `json:"away_team_id"`
	MatchDate     *time.Time `json:"match_date"`
	Venue         *string    `json:"venue" validate:"omitempty,max=200"`
	HomeFormation *string    `json:"home_formation" validate:"omitempty,max=20"`
	AwayFormation *string    `json:"away_formation" validate:"omitempty,max=20"`
}

type UpdateResultInput struct {
	Status    string `json:"status" validate:"required,oneof=scheduled ongoing halftime finished"`
	HomeScore *int   `json:"home_score" validate:"omitempty,gte=0"`
	AwayScore *int   `json:"away_score" validate:"omitempty,gte=0"`
}

type LineupEntryInput struct {
	PlayerID    uuid.UUID `json:"player_id" validate:"required"`
	IsStarting  bool      `json:"is_starting"`
	Goals       int       `json:"goals" validate:"gte=0"`
	YellowCards int       `json:"yellow_cards" validate:"gte=0,lte=2"`
	RedCards    int       `json:"red_cards" validate:"gte=0,lte=1"`
}

type ReplaceLineupInput struct {
	Formation *string            `json:"formation" validate:"omitempty,max=20"`
	Entries   []LineupEntryInput `json:"entries" validate:"dive"`
}

type PlayerStatInput struct {
	PlayerID    uuid.UUID `json:"player_id" validate:"required"`
	Goals       int       `json:"goals" validate:"gte=0"`
	Assists     int       `json:"assists" validate:"gte=0"`
	YellowCards int       `json:"yellow_cards" validate:"gte=0,lte=2"`
	RedCards    int       `json:"red_cards" validate:"gte=0,lte=1"`
}

type UpsertStatsInput struct {
	Stats []PlayerStatInput `json:"stats" validate:"required,min=1,dive"`
}

// groupRebuilder refreshes the stored standings of one group.
type groupRebuilder interface {
	RebuildGroup(ctx context.Context, groupID uuid.UUID) ([]models.StandingRow, error)
}

type matchService struct {
	matchRepo  repositories.MatchRepository
	lineupRepo repositories.LineupRepository
	statRepo   repositories.PlayerStatRepository
	playerRepo repositories.PlayerRepository
	standings  groupRebuilder
	logger     *slog.Logger
	now        func() time.Time
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	lineupRepo repositories.LineupRepository,
	statRepo repositories.PlayerStatRepository,
	playerRepo repositories.PlayerRepository,
	standings groupRebuilder,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		matchRepo:  matchRepo,
		lineupRepo: lineupRepo,
		statRepo:   statRepo,
		playerRepo: playerRepo,
		standings:  standings,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *matchService) CreateMatch(ctx context.Context, input CreateMatchInput) (*models.Match, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	match := &models.Match{
		TournamentID:  input.TournamentID,
		GroupID:       input.GroupID,
		HomeTeamID:    input.HomeTeamID,
		AwayTeamID:    input.AwayTeamID,
		MatchDate:     input.MatchDate,
		Venue:         trimmedPtr(input.Venue),
		Status:        models.MatchStatusScheduled,
		HomeFormation: trimmedPtr(input.HomeFormation),
		AwayFormation: trimmedPtr(input.AwayFormation),
	}
	if err := s.matchRepo.Create(ctx, match); err != nil {
		return nil, mapMatchRepoError(err, ErrMatchCreationFailed)
	}
	return match, nil
}

func (s *matchService) GetMatchByID(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match by id %s: %w", id, err)
	}
	return match, nil
}

func (s *matchService) GetMatchDetail(ctx context.Context, id uuid.UUID) (*MatchDetail, error) {
	match, err := s.GetMatchByID(ctx, id)
	if err != nil {
		return nil, err
	}

	entries, err := s.lineupRepo.ListByMatch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list lineups of match %s: %w", id, err)
	}
	stats, err := s.statRepo.ListByMatch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list stats of match %s: %w", id, err)
	}

	return &MatchDetail{
		Match: match,
		Home:  buildLineup(match.HomeTeamID, match.HomeTeamName, match.HomeFormation, entries),
		Away:  buildLineup(match.AwayTeamID, match.AwayTeamName, match.AwayFormation, entries),
		Stats: stats,
	}, nil
}

func (s *matchService) ListMatches(ctx context.Context, input ListMatchesInput) ([]models.Match, error) {
	filter := repositories.ListMatchesFilter{TournamentID: input.TournamentID}

	now := s.now()
	switch input.Tab {
	case MatchTabToday:
		from, to := dayBounds(now)
		filter.From, filter.To = &from, &to
	case MatchTabUpcoming:
		filter.From = &now
		filter.Statuses = []models.MatchStatus{models.MatchStatusScheduled}
	}
	if input.LiveOnly {
		filter.Statuses = []models.MatchStatus{models.MatchStatusOngoing, models.MatchStatusHalftime}
	}

	matches, err := s.matchRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

func (s *matchService) UpdateMatch(ctx context.Context, id uuid.UUID, input UpdateMatchInput) (*models.Match, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	match, err := s.GetMatchByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previousGroup := match.GroupID

	if input.GroupID != nil {
		match.GroupID = input.GroupID
	}
	if input.HomeTeamID != nil {
		match.HomeTeamID = *input.HomeTeamID
	}
	if input.AwayTeamID != nil {
		match.AwayTeamID = *input.AwayTeamID
	}
	if match.HomeTeamID == match.AwayTeamID {
		return nil, ErrMatchSameTeams
	}
	if input.MatchDate != nil {
		match.MatchDate = *input.MatchDate
	}
	if input.Venue != nil {
		match.Venue = trimmedPtr(input.Venue)
	}
	if input.HomeFormation != nil {
		match.HomeFormation = trimmedPtr(input.HomeFormation)
	}
	if input.AwayFormation != nil {
		match.AwayFormation = trimmedPtr(input.AwayFormation)
	}

	if err := s.matchRepo.Update(ctx, match); err != nil {
		return nil, mapMatchRepoError(err, ErrMatchUpdateFailed)
	}

	s.rebuild(ctx, previousGroup)
	if match.GroupID != nil && (previousGroup == nil || *previousGroup != *match.GroupID) {
		s.rebuild(ctx, match.GroupID)
	}
	return s.GetMatchByID(ctx, id)
}

func (s *matchService) UpdateResult(ctx context.Context, id uuid.UUID, input UpdateResultInput) (*models.Match, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if (input.HomeScore == nil) != (input.AwayScore == nil) {
		return nil, fieldError("away_score", "home_score and away_score must be set together")
	}
	status := models.MatchStatus(input.Status)
	if status == models.MatchStatusFinished && input.HomeScore == nil {
		return nil, fieldError("home_score", "a finished match needs a score")
	}

	if err := s.matchRepo.UpdateResult(ctx, id, status, input.HomeScore, input.AwayScore); err != nil {
		return nil, mapMatchRepoError(err, ErrMatchUpdateFailed)
	}

	match, err := s.GetMatchByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.rebuild(ctx, match.GroupID)
	return match, nil
}

func (s *matchService) DeleteMatch(ctx context.Context, id uuid.UUID) error {
	match, err := s.GetMatchByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.matchRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("%w (id: %s): %w", ErrMatchDeleteFailed, id, err)
	}
	s.rebuild(ctx, match.GroupID)
	return nil
}

func (s *matchService) ReplaceLineup(ctx context.Context, matchID, teamID uuid.UUID, input ReplaceLineupInput) (*models.TeamLineup, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	match, err := s.GetMatchByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if teamID != match.HomeTeamID && teamID != match.AwayTeamID {
		return nil, ErrMatchTeamNotInLineup
	}

	players, err := s.playerRepo.List(ctx, &teamID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLineupUpdateFailed, err)
	}
	squad := make(map[uuid.UUID]struct{}, len(players))
	for _, p := range players {
		squad[p.ID] = struct{}{}
	}

	seen := make(map[uuid.UUID]struct{}, len(input.Entries))
	entries := make([]models.LineupEntry, 0, len(input.Entries))
	for _, e := range input.Entries {
		if _, ok := squad[e.PlayerID]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrPlayerNotInTeam, e.PlayerID)
		}
		if _, dup := seen[e.PlayerID]; dup {
			return nil, fieldError("entries", "player listed more than once")
		}
		seen[e.PlayerID] = struct{}{}
		entries = append(entries, models.LineupEntry{
			MatchID:     matchID,
			PlayerID:    e.PlayerID,
			TeamID:      teamID,
			IsStarting:  e.IsStarting,
			Goals:       e.Goals,
			YellowCards: e.YellowCards,
			RedCards:    e.RedCards,
		})
	}

	if err := s.lineupRepo.ReplaceTeamLineup(ctx, matchID, teamID, entries); err != nil {
		if errors.Is(err, repositories.ErrLineupInvalidReference) {
			return nil, ErrInvalidReference
		}
		return nil, fmt.Errorf("%w: %w", ErrLineupUpdateFailed, err)
	}

	if input.Formation != nil {
		if teamID == match.HomeTeamID {
			match.HomeFormation = trimmedPtr(input.Formation)
		} else {
			match.AwayFormation = trimmedPtr(input.Formation)
		}
		if err := s.matchRepo.Update(ctx, match); err != nil {
			return nil, mapMatchRepoError(err, ErrLineupUpdateFailed)
		}
	}

	detail, err := s.GetMatchDetail(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if teamID == match.HomeTeamID {
		return &detail.Home, nil
	}
	return &detail.Away, nil
}

func (s *matchService) UpsertStats(ctx context.Context, matchID uuid.UUID, input UpsertStatsInput) ([]models.PlayerMatchStat, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if _, err := s.GetMatchByID(ctx, matchID); err != nil {
		return nil, err
	}

	stats := make([]models.PlayerMatchStat, 0, len(input.Stats))
	for _, st := range input.Stats {
		stats = append(stats, models.PlayerMatchStat{
			MatchID:     matchID,
			PlayerID:    st.PlayerID,
			Goals:       st.Goals,
			Assists:     st.Assists,
			YellowCards: st.YellowCards,
			RedCards:    st.RedCards,
		})
	}

	if err := s.statRepo.Upsert(ctx, matchID, stats); err != nil {
		if errors.Is(err, repositories.ErrStatInvalidReference) {
			return nil, ErrInvalidReference
		}
		return nil, fmt.Errorf("%w: %w", ErrStatsUpdateFailed, err)
	}
	return s.statRepo.ListByMatch(ctx, matchID)
}

// rebuild refreshes stored group standings after a match change. A failure is logged
// and left for the next change or a manual rebuild.
func (s *matchService) rebuild(ctx context.Context, groupID *uuid.UUID) {
	if groupID == nil || s.standings == nil {
		return
	}
	if _, err := s.standings.RebuildGroup(ctx, *groupID); err != nil {
		s.logger.Warn("failed to rebuild group standings",
			slog.String("group_id", groupID.String()),
			slog.Any("error", err),
		)
	}
}

// buildLineup splits one team's entries into starters and bench.
func buildLineup(teamID uuid.UUID, teamName string, formation *string, entries []models.LineupEntry) models.TeamLineup {
	lineup := models.TeamLineup{
		TeamID:    teamID,
		TeamName:  teamName,
		Formation: models.DefaultFormation,
		Starting:  []models.LineupEntry{},
		Bench:     []models.LineupEntry{},
	}
	if f := strings.TrimSpace(derefString(formation)); f != "" {
		lineup.Formation = f
	}
	for _, e := range entries {
		if e.TeamID != teamID {
			continue
		}
		if e.IsStarting {
			lineup.Starting = append(lineup.Starting, e)
		} else {
			lineup.Bench = append(lineup.Bench, e)
		}
	}
	return lineup
}

func mapMatchRepoError(err, fallback error) error {
	switch {
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrMatchSameTeams):
		return ErrMatchSameTeams
	case errors.Is(err, repositories.ErrMatchInvalidScore):
		return fieldError("home_score", "scores must be non-negative")
	case errors.Is(err, repositories.ErrMatchInvalidStatus):
		return fieldError("status", "must be one of: scheduled ongoing halftime finished")
	case errors.Is(err, repositories.ErrMatchInvalidReference):
		return ErrInvalidReference
	default:
		return fmt.Errorf("%w: %w", fallback, err)
	}
}
