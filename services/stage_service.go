package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/tournament-portal/models"
	"github.com/Dosada05/tournament-portal/repositories"
	"github.com/google/uuid"
)

var (
	ErrStageCreationFailed = errors.New("failed to create stage")
	ErrStageUpdateFailed   = errors.New("failed to update stage")
	ErrStageDeleteFailed   = errors.New("failed to delete stage")
)

// StageOverview is what the stage page shows: groups with their matches plus
// the day's fixtures and what comes next.
type StageOverview struct {
	Stage          *models.Stage                `json:"stage"`
	MatchesByGroup map[uuid.UUID][]models.Match `json:"matches_by_group"`
	Today          []models.Match               `json:"today"`
	Upcoming       []models.Match               `json:"upcoming"`
}

type StageService interface {
	CreateStage(ctx context.Context, tournamentID uuid.UUID, input CreateStageInput) (*models.Stage, error)
	GetStageByID(ctx context.Context, id uuid.UUID) (*models.Stage, error)
	GetStageOverview(ctx context.Context, id uuid.UUID) (*StageOverview, error)
	UpdateStage(ctx context.Context, id uuid.UUID, input UpdateStageInput) (*models.Stage, error)
	DeleteStage(ctx context.Context, id uuid.UUID) error
}

type CreateStageInput struct {
	Name  string `json:"name" validate:"required,max=100"`
	Role  string `json:"role" validate:"required,oneof=group knockout"`
	Order int    `json:"stage_order" validate:"gte=0"`
}

type UpdateStageInput struct {
	Name  *string `json:"name" validate:"omitempty,max=100"`
	Role  *string `json:"role" validate:"omitempty,oneof=group knockout"`
	Order *int    `json:"stage_order" validate:"omitempty,gte=0"`
}

const upcomingLimit = 10

type stageService struct {
	stageRepo repositories.StageRepository
	groupRepo repositories.GroupRepository
	matchRepo repositories.MatchRepository
	now       func() time.Time
}

func NewStageService(
	stageRepo repositories.StageRepository,
	groupRepo repositories.GroupRepository,
	matchRepo repositories.MatchRepository,
) StageService {
	return &stageService{
		stageRepo: stageRepo,
		groupRepo: groupRepo,
		matchRepo: matchRepo,
		now:       time.Now,
	}
}

func (s *stageService) CreateStage(ctx context.Context, tournamentID uuid.UUID, input CreateStageInput) (*models.Stage, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	stage := &models.Stage{
		TournamentID: tournamentID,
		Name:         input.Name,
		Role:         models.StageRole(input.Role),
		Order:        input.Order,
	}
	if err := s.stageRepo.Create(ctx, stage); err != nil {
		return nil, mapStageRepoError(err, ErrStageCreationFailed)
	}
	return stage, nil
}

func (s *stageService) GetStageByID(ctx context.Context, id uuid.UUID) (*models.Stage, error) {
	stage, err := s.stageRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to get stage %s: %w", id, err)
	}

	groups, err := s.groupRepo.ListByStage(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups of stage %s: %w", id, err)
	}
	stage.Groups = groups
	return stage, nil
}

func (s *stageService) GetStageOverview(ctx context.Context, id uuid.UUID) (*StageOverview, error) {
	stage, err := s.GetStageByID(ctx, id)
	if err != nil {
		return nil, err
	}

	overview := &StageOverview{
		Stage:          stage,
		MatchesByGroup: make(map[uuid.UUID][]models.Match, len(stage.Groups)),
		Today:          []models.Match{},
		Upcoming:       []models.Match{},
	}
	if len(stage.Groups) == 0 {
		return overview, nil
	}

	groupIDs := make([]uuid.UUID, 0, len(stage.Groups))
	for _, g := range stage.Groups {
		groupIDs = append(groupIDs, g.ID)
		overview.MatchesByGroup[g.ID] = []models.Match{}
	}

	matches, err := s.matchRepo.List(ctx, repositories.ListMatchesFilter{GroupIDs: groupIDs})
	if err != nil {
		return nil, fmt.Errorf("failed to list matches of stage %s: %w", id, err)
	}

	now := s.now()
	dayStart, dayEnd := dayBounds(now)
	for _, m := range matches {
		if m.GroupID != nil {
			overview.MatchesByGroup[*m.GroupID] = append(overview.MatchesByGroup[*m.GroupID], m)
		}
		switch {
		case !m.MatchDate.Before(dayStart) && m.MatchDate.Before(dayEnd):
			overview.Today = append(overview.Today, m)
		case m.MatchDate.After(now) && m.Status == models.MatchStatusScheduled && len(overview.Upcoming) < upcomingLimit:
			overview.Upcoming = append(overview.Upcoming, m)
		}
	}
	return overview, nil
}

func (s *stageService) UpdateStage(ctx context.Context, id uuid.UUID, input UpdateStageInput) (*models.Stage, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	stage, err := s.stageRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("%w (id: %s): %w", ErrStageUpdateFailed, id, err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fieldError("name", "must not be empty")
		}
		stage.Name = name
	}
	if input.Role != nil {
		stage.Role = models.StageRole(*input.Role)
	}
	if input.Order != nil {
		stage.Order = *input.Order
	}

	if err := s.stageRepo.Update(ctx, stage); err != nil {
		return nil, mapStageRepoError(err, ErrStageUpdateFailed)
	}
	return stage, nil
}

func (s *stageService) DeleteStage(ctx context.Context, id uuid.UUID) error {
	if err := s.stageRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return ErrStageNotFound
		}
		return fmt.Errorf("%w (id: %s): %w", ErrStageDeleteFailed, id, err)
	}
	return nil
}

// dayBounds returns [00:00, next 00:00) of t's day in t's location.
func dayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

func mapStageRepoError(err, fallback error) error {
	switch {
	case errors.Is(err, repositories.ErrStageNotFound):
		return ErrStageNotFound
	case errors.Is(err, repositories.ErrStageNameConflict):
		return ErrStageNameConflict
	case errors.Is(err, repositories.ErrStageInvalidTournament):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrStageInvalidRole):
		return fieldError("role", "must be one of: group knockout")
	default:
		return fmt.Errorf("%w: %w", fallback, err)
	}
}
