package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/tournament-portal/models"
	"github.com/Dosada05/tournament-portal/repositories"
	"github.com/google/uuid"
)

var (
	ErrTeamCreationFailed = errors.New("failed to create team")
	ErrTeamUpdateFailed   = errors.New("failed to update team")
	ErrTeamDeleteFailed   = errors.New("failed to delete team")
)

type TeamService interface {
	CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error)
	// GetTeamByID returns the team with its players.
	GetTeamByID(ctx context.Context, id uuid.UUID) (*models.Team, error)
	ListTeams(ctx context.Context) ([]models.Team, error)
	UpdateTeam(ctx context.Context, id uuid.UUID, input UpdateTeamInput) (*models.Team, error)
	DeleteTeam(ctx context.Context, id uuid.UUID) error
}

type CreateTeamInput struct {
	Name      string  `json:"name" validate:"required,max=100"`
	ShortName *string `json:"short_name" validate:"omitempty,max=10"`
	LogoURL   *string `json:"logo_url" validate:"omitempty,url"`
}

type UpdateTeamInput struct {
	Name      *string `json:"name" validate:"omitempty,max=100"`
	ShortName *string `json:"short_name" validate:"omitempty,max=10"`
	LogoURL   *string `json:"logo_url" validate:"omitempty,url"`
}

type teamService struct {
	teamRepo   repositories.TeamRepository
	playerRepo repositories.PlayerRepository
}

func NewTeamService(teamRepo repositories.TeamRepository, playerRepo repositories.PlayerRepository) TeamService {
	return &teamService{
		teamRepo:   teamRepo,
		playerRepo: playerRepo,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	team := &models.Team{
		Name:      input.Name,
		ShortName: trimmedPtr(input.ShortName),
		LogoURL:   trimmedPtr(input.LogoURL),
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		return nil, fmt.Errorf("%w: %w", ErrTeamCreationFailed, err)
	}
	return team, nil
}

func (s *teamService) GetTeamByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team by id %s: %w", id, err)
	}

	players, err := s.playerRepo.List(ctx, &id)
	if err != nil {
		return nil, fmt.Errorf("failed to list players of team %s: %w", id, err)
	}
	team.Players = players
	return team, nil
}

func (s *teamService) ListTeams(ctx context.Context) ([]models.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	if teams == nil {
		return []models.Team{}, nil
	}
	return teams, nil
}

func (s *teamService) UpdateTeam(ctx context.Context, id uuid.UUID, input UpdateTeamInput) (*models.Team, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("%w (id: %s): %w", ErrTeamUpdateFailed, id, err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fieldError("name", "must not be empty")
		}
		team.Name = name
	}
	if input.ShortName != nil {
		team.ShortName = trimmedPtr(input.ShortName)
	}
	if input.LogoURL != nil {
		team.LogoURL = trimmedPtr(input.LogoURL)
	}

	if err := s.teamRepo.Update(ctx, team); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamNotFound):
			return nil, ErrTeamNotFound
		case errors.Is(err, repositories.ErrTeamNameConflict):
			return nil, ErrTeamNameConflict
		default:
			return nil, fmt.Errorf("%w (id: %s): %w", ErrTeamUpdateFailed, id, err)
		}
	}
	return team, nil
}

func (s *teamService) DeleteTeam(ctx context.Context, id uuid.UUID) error {
	if err := s.teamRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamNotFound):
			return ErrTeamNotFound
		case errors.Is(err, repositories.ErrTeamInUse):
			return ErrTeamInUse
		default:
			return fmt.Errorf("%w (id: %s): %w", ErrTeamDeleteFailed, id, err)
		}
	}
	return nil
}
