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
	ErrPlayerCreationFailed = errors.New("failed to create player")
	ErrPlayerUpdateFailed   = errors.New("failed to update player")
	ErrPlayerDeleteFailed   = errors.New("failed to delete player")
)

type PlayerService interface {
	CreatePlayer(ctx context.Context, input CreatePlayerInput) (*models.Player, error)
	GetPlayerByID(ctx context.Context, id uuid.UUID) (*models.Player, error)
	ListPlayers(ctx context.Context, teamID *uuid.UUID) ([]models.Player, error)
	UpdatePlayer(ctx context.Context, id uuid.UUID, input UpdatePlayerInput) (*models.Player, error)
	DeletePlayer(ctx context.Context, id uuid.UUID) error
}

type CreatePlayerInput struct {
	TeamID       *uuid.UUID `json:"team_id"`
	Name         string     `json:"name" validate:"required,max=100"`
	JerseyNumber *int       `json:"jersey_number" validate:"omitempty,gte=1,lte=99"`
	Position     *string    `json:"position" validate:"omitempty,max=30"`
}

type UpdatePlayerInput struct {
	TeamID       *uuid.UUID `json:"team_id"`
	Name         *string    `json:"name" validate:"omitempty,max=100"`
	JerseyNumber *int       `json:"jersey_number" validate:"omitempty,gte=1,lte=99"`
	Position     *string    `json:"position" validate:"omitempty,max=30"`
}

type playerService struct {
	playerRepo repositories.PlayerRepository
}

func NewPlayerService(playerRepo repositories.PlayerRepository) PlayerService {
	return &playerService{playerRepo: playerRepo}
}

func (s *playerService) CreatePlayer(ctx context.Context, input CreatePlayerInput) (*models.Player, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	player := &models.Player{
		TeamID:       input.TeamID,
		Name:         input.Name,
		JerseyNumber: input.JerseyNumber,
		Position:     trimmedPtr(input.Position),
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, mapPlayerRepoError(err, ErrPlayerCreationFailed)
	}
	return player, nil
}

func (s *playerService) GetPlayerByID(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player by id %s: %w", id, err)
	}
	return player, nil
}

func (s *playerService) ListPlayers(ctx context.Context, teamID *uuid.UUID) ([]models.Player, error) {
	players, err := s.playerRepo.List(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	if players == nil {
		return []models.Player{}, nil
	}
	return players, nil
}

func (s *playerService) UpdatePlayer(ctx context.Context, id uuid.UUID, input UpdatePlayerInput) (*models.Player, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("%w (id: %s): %w", ErrPlayerUpdateFailed, id, err)
	}

	if input.TeamID != nil {
		player.TeamID = input.TeamID
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fieldError("name", "must not be empty")
		}
		player.Name = name
	}
	if input.JerseyNumber != nil {
		player.JerseyNumber = input.JerseyNumber
	}
	if input.Position != nil {
		player.Position = trimmedPtr(input.Position)
	}

	if err := s.playerRepo.Update(ctx, player); err != nil {
		return nil, mapPlayerRepoError(err, ErrPlayerUpdateFailed)
	}
	return player, nil
}

func (s *playerService) DeletePlayer(ctx context.Context, id uuid.UUID) error {
	if err := s.playerRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("%w (id: %s): %w", ErrPlayerDeleteFailed, id, err)
	}
	return nil
}

func mapPlayerRepoError(err, fallback error) error {
	switch {
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrPlayerInvalidTeam):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrPlayerInvalidJersey):
		return fieldError("jersey_number", "must be between 1 and 99")
	default:
		return fmt.Errorf("%w: %w", fallback, err)
	}
}
