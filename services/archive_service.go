package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-portal/models"
	"github.com/Dosada05/tournament-portal/repositories"
	"github.com/Dosada05/tournament-portal/standings"
	"github.com/Dosada05/tournament-portal/storage"
	"github.com/google/uuid"
)

var (
	ErrArchiveNotFound = errors.New("standings archive not found")
	ErrArchiveFailed   = errors.New("failed to archive standings")
)

// StandingsSnapshot is the published copy of a stage's final table.
type StandingsSnapshot struct {
	TournamentID uuid.UUID       `json:"tournament_id"`
	StageID      uuid.UUID       `json:"stage_id"`
	ArchivedAt   time.Time       `json:"archived_at"`
	Table        standings.Table `json:"table"`
	URL          string          `json:"url,omitempty"`
}

type ArchiveService interface {
	// ArchiveStage stores the stage's current standings as a JSON document.
	ArchiveStage(ctx context.Context, stageID uuid.UUID) (*StandingsSnapshot, error)
	GetArchive(ctx context.Context, stageID uuid.UUID) (*StandingsSnapshot, error)
	DeleteArchive(ctx context.Context, stageID uuid.UUID) error
}

type archiveService struct {
	store     storage.ObjectStore
	standings StandingsService
	stages    StandingsStore
	logger    *slog.Logger
	now       func() time.Time
}

// NewArchiveService returns a service whose calls fail with ErrArchiveDisabled when store is nil.
func NewArchiveService(store storage.ObjectStore, standingsSvc StandingsService, stages StandingsStore, logger *slog.Logger) ArchiveService {
	return &archiveService{
		store:     store,
		standings: standingsSvc,
		stages:    stages,
		logger:    logger,
		now:       time.Now,
	}
}

func archiveKey(tournamentID, stageID uuid.UUID) string {
	return fmt.Sprintf("standings/%s/%s.json", tournamentID, stageID)
}

func (s *archiveService) ArchiveStage(ctx context.Context, stageID uuid.UUID) (*StandingsSnapshot, error) {
	if s.store == nil {
		return nil, ErrArchiveDisabled
	}

	stage, err := s.stageOf(ctx, stageID)
	if err != nil {
		return nil, err
	}
	table, err := s.standings.StageStandings(ctx, stageID)
	if err != nil {
		return nil, err
	}

	snapshot := &StandingsSnapshot{
		TournamentID: stage.TournamentID,
		StageID:      stageID,
		ArchivedAt:   s.now().UTC(),
		Table:        table,
	}
	body, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArchiveFailed, err)
	}

	key := archiveKey(stage.TournamentID, stageID)
	result, err := s.store.Put(ctx, key, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArchiveFailed, err)
	}
	snapshot.URL = result.Location

	s.logger.Info("standings archived",
		slog.String("stage_id", stageID.String()),
		slog.String("key", result.Key),
		slog.Int("rows", len(table.Rows)),
	)
	return snapshot, nil
}

func (s *archiveService) GetArchive(ctx context.Context, stageID uuid.UUID) (*StandingsSnapshot, error) {
	if s.store == nil {
		return nil, ErrArchiveDisabled
	}

	stage, err := s.stageOf(ctx, stageID)
	if err != nil {
		return nil, err
	}

	key := archiveKey(stage.TournamentID, stageID)
	body, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrArchiveNotFound
		}
		return nil, fmt.Errorf("failed to read standings archive: %w", err)
	}
	defer body.Close()

	var snapshot StandingsSnapshot
	if err := json.NewDecoder(body).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode standings archive %s: %w", key, err)
	}
	snapshot.URL = s.store.GetPublicURL(key)
	return &snapshot, nil
}

func (s *archiveService) DeleteArchive(ctx context.Context, stageID uuid.UUID) error {
	if s.store == nil {
		return ErrArchiveDisabled
	}

	stage, err := s.stageOf(ctx, stageID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, archiveKey(stage.TournamentID, stageID)); err != nil {
		return fmt.Errorf("failed to delete standings archive: %w", err)
	}
	return nil
}

func (s *archiveService) stageOf(ctx context.Context, stageID uuid.UUID) (*models.Stage, error) {
	stage, err := s.stages.GetStage(ctx, stageID)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to load stage %s: %w", stageID, err)
	}
	return stage, nil
}
