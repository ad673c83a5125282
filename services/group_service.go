package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/tournament-portal/brackets"
	"github.com/Dosada05/tournament-portal/models"
	"github.com/Dosada05/tournament-portal/repositories"
	"github.com/google/uuid"
)

var (
	ErrGroupCreationFailed     = errors.New("failed to create group")
	ErrGroupDeleteFailed       = errors.New("failed to delete group")
	ErrGroupAssignFailed       = errors.New("failed to assign teams to group")
	ErrFixtureGenerationFailed = errors.New("failed to generate fixtures")
	ErrGroupHasMatches         = errors.New("group already has matches")
)

type GroupService interface {
	CreateGroup(ctx context.Context, stageID uuid.UUID, input CreateGroupInput) (*models.Group, error)
	// GetGroupByID returns the group with its assigned teams.
	GetGroupByID(ctx context.Context, id uuid.UUID) (*models.Group, error)
	DeleteGroup(ctx context.Context, id uuid.UUID) error
	AssignTeams(ctx context.Context, id uuid.UUID, input AssignTeamsInput) (*models.Group, error)
	// GenerateFixtures creates a round robin between the group's teams.
	GenerateFixtures(ctx context.Context, id uuid.UUID, input GenerateFixturesInput) ([]*models.Match, error)
}

type CreateGroupInput struct {
	Name string `json:"name" validate:"required,max=50"`
}

type AssignTeamsInput struct {
	TeamIDs []uuid.UUID `json:"team_ids" validate:"unique"`
}

type GenerateFixturesInput struct {
	Legs           int        `json:"legs" validate:"omitempty,oneof=1 2"`
	FirstMatchDate *time.Time `json:"first_match_date" validate:"required"`
	// RoundIntervalDays defaults to 7.
	RoundIntervalDays int     `json:"round_interval_days" validate:"omitempty,gte=1,lte=60"`
	Venue             *string `json:"venue" validate:"omitempty,max=200"`
}

const defaultRoundIntervalDays = 7

type groupService struct {
	groupRepo repositories.GroupRepository
	stageRepo repositories.StageRepository
	matchRepo repositories.MatchRepository
	generator brackets.FixtureGenerator
	logger    *slog.Logger
}

func NewGroupService(
	groupRepo repositories.GroupRepository,
	stageRepo repositories.StageRepository,
	matchRepo repositories.MatchRepository,
	generator brackets.FixtureGenerator,
	logger *slog.Logger,
) GroupService {
	return &groupService{
		groupRepo: groupRepo,
		stageRepo: stageRepo,
		matchRepo: matchRepo,
		generator: generator,
		logger:    logger,
	}
}

func (s *groupService) CreateGroup(ctx context.Context, stageID uuid.UUID, input CreateGroupInput) (*models.Group, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	group := &models.Group{StageID: stageID, Name: input.Name}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		switch {
		case errors.Is(err, repositories.ErrGroupNameConflict):
			return nil, ErrGroupNameConflict
		case errors.Is(err, repositories.ErrGroupInvalidStage):
			return nil, ErrStageNotFound
		default:
			return nil, fmt.Errorf("%w: %w", ErrGroupCreationFailed, err)
		}
	}
	return group, nil
}

func (s *groupService) GetGroupByID(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	group, err := s.groupRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get group %s: %w", id, err)
	}

	teams, err := s.groupRepo.ListTeams(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams of group %s: %w", id, err)
	}
	group.Teams = teams
	return group, nil
}

func (s *groupService) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	if err := s.groupRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return ErrGroupNotFound
		}
		return fmt.Errorf("%w (id: %s): %w", ErrGroupDeleteFailed, id, err)
	}
	return nil
}

func (s *groupService) AssignTeams(ctx context.Context, id uuid.UUID, input AssignTeamsInput) (*models.Group, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	if err := s.groupRepo.ReplaceTeams(ctx, id, input.TeamIDs); err != nil {
		switch {
		case errors.Is(err, repositories.ErrGroupNotFound):
			return nil, ErrGroupNotFound
		case errors.Is(err, repositories.ErrGroupInvalidTeam):
			return nil, ErrTeamNotFound
		default:
			return nil, fmt.Errorf("%w: %w", ErrGroupAssignFailed, err)
		}
	}
	return s.GetGroupByID(ctx, id)
}

func (s *groupService) GenerateFixtures(ctx context.Context, id uuid.UUID, input GenerateFixturesInput) ([]*models.Match, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	group, err := s.GetGroupByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(group.Teams) < 2 {
		return nil, ErrNotEnoughTeams
	}

	existing, err := s.matchRepo.List(ctx, repositories.ListMatchesFilter{GroupIDs: []uuid.UUID{id}, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFixtureGenerationFailed, err)
	}
	if len(existing) > 0 {
		return nil, ErrGroupHasMatches
	}

	stage, err := s.stageRepo.GetByID(ctx, group.StageID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFixtureGenerationFailed, err)
	}

	interval := input.RoundIntervalDays
	if interval == 0 {
		interval = defaultRoundIntervalDays
	}
	teamIDs := make([]uuid.UUID, 0, len(group.Teams))
	for _, t := range group.Teams {
		teamIDs = append(teamIDs, t.ID)
	}

	fixtures, err := s.generator.GenerateFixtures(ctx, brackets.GenerateFixturesParams{
		Teams:          teamIDs,
		Legs:           input.Legs,
		FirstMatchDate: *input.FirstMatchDate,
		RoundInterval:  time.Duration(interval) * 24 * time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFixtureGenerationFailed, err)
	}

	venue := trimmedPtr(input.Venue)
	matches := make([]*models.Match, 0, len(fixtures))
	for _, f := range fixtures {
		matches = append(matches, &models.Match{
			TournamentID: stage.TournamentID,
			GroupID:      &group.ID,
			HomeTeamID:   f.HomeTeamID,
			AwayTeamID:   f.AwayTeamID,
			MatchDate:    f.MatchDate,
			Venue:        venue,
			Status:       models.MatchStatusScheduled,
		})
	}

	if err := s.matchRepo.CreateBatch(ctx, matches); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFixtureGenerationFailed, err)
	}

	s.logger.Info("fixtures generated",
		slog.String("group_id", id.String()),
		slog.String("generator", s.generator.GetName()),
		slog.Int("matches", len(matches)),
	)
	return matches, nil
}
