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
	ErrTournamentCreationFailed = errors.New("failed to create tournament")
	ErrTournamentUpdateFailed   = errors.New("failed to update tournament")
	ErrTournamentDeleteFailed   = errors.New("failed to delete tournament")
)

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	// GetTournamentByID returns the tournament with its stages in order.
	GetTournamentByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
	ListTournaments(ctx context.Context) ([]models.Tournament, error)
	UpdateTournament(ctx context.Context, id uuid.UUID, input UpdateTournamentInput) (*models.Tournament, error)
	DeleteTournament(ctx context.Context, id uuid.UUID) error
}

type CreateTournamentInput struct {
	Name        string     `json:"name" validate:"required,max=150"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	Location    *string    `json:"location" validate:"omitempty,max=200"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

type UpdateTournamentInput struct {
	Name        *string    `json:"name" validate:"omitempty,max=150"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	Location    *string    `json:"location" validate:"omitempty,max=200"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	stageRepo      repositories.StageRepository
}

func NewTournamentService(tournamentRepo repositories.TournamentRepository, stageRepo repositories.StageRepository) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		stageRepo:      stageRepo,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := checkDates(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}

	tournament := &models.Tournament{
		Name:        input.Name,
		Description: trimmedPtr(input.Description),
		Location:    trimmedPtr(input.Location),
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, mapTournamentRepoError(err, ErrTournamentCreationFailed)
	}
	return tournament, nil
}

func (s *tournamentService) GetTournamentByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", id, err)
	}

	stages, err := s.stageRepo.ListByTournament(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages of tournament %s: %w", id, err)
	}
	tournament.Stages = stages
	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	if tournaments == nil {
		return []models.Tournament{}, nil
	}
	return tournaments, nil
}

func (s *tournamentService) UpdateTournament(ctx context.Context, id uuid.UUID, input UpdateTournamentInput) (*models.Tournament, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("%w (id: %s): %w", ErrTournamentUpdateFailed, id, err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fieldError("name", "must not be empty")
		}
		tournament.Name = name
	}
	if input.Description != nil {
		tournament.Description = trimmedPtr(input.Description)
	}
	if input.Location != nil {
		tournament.Location = trimmedPtr(input.Location)
	}
	if input.StartDate != nil {
		tournament.StartDate = input.StartDate
	}
	if input.EndDate != nil {
		tournament.EndDate = input.EndDate
	}
	if err := checkDates(tournament.StartDate, tournament.EndDate); err != nil {
		return nil, err
	}

	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		return nil, mapTournamentRepoError(err, ErrTournamentUpdateFailed)
	}
	return tournament, nil
}

func (s *tournamentService) DeleteTournament(ctx context.Context, id uuid.UUID) error {
	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("%w (id: %s): %w", ErrTournamentDeleteFailed, id, err)
	}
	return nil
}

func checkDates(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return fieldError("end_date", "must not be before start_date")
	}
	return nil
}

func mapTournamentRepoError(err, fallback error) error {
	switch {
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentNameConflict):
		return ErrTournamentNameConflict
	case errors.Is(err, repositories.ErrTournamentInvalidDates):
		return fieldError("end_date", "must not be before start_date")
	default:
		return fmt.Errorf("%w: %w", fallback, err)
	}
}
