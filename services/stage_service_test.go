package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dosada05/tournament-portal/models"
	"github.com/Dosada05/tournament-portal/repositories"
	"github.com/google/uuid"
)

type fakeStageRepo struct {
	stages map[uuid.UUID]*models.Stage
}

func (f *fakeStageRepo) Create(_ context.Context, s *models.Stage) error {
	f.stages[s.ID] = s
	return nil
}

func (f *fakeStageRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Stage, error) {
	s, ok := f.stages[id]
	if !ok {
		return nil, repositories.ErrStageNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStageRepo) ListByTournament(_ context.Context, tid uuid.UUID) ([]models.Stage, error) {
	var out []models.Stage
	for _, s := range f.stages {
		if s.TournamentID == tid {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeStageRepo) Update(_ context.Context, s *models.Stage) error {
	f.stages[s.ID] = s
	return nil
}

func (f *fakeStageRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.stages, id)
	return nil
}

type fakeGroupRepo struct {
	byStage map[uuid.UUID][]models.Group
}

func (f *fakeGroupRepo) Create(_ context.Context, g *models.Group) error {
	f.byStage[g.StageID] = append(f.byStage[g.StageID], *g)
	return nil
}

func (f *fakeGroupRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Group, error) {
	for _, groups := range f.byStage {
		for _, g := range groups {
			if g.ID == id {
				return &g, nil
			}
		}
	}
	return nil, repositories.ErrGroupNotFound
}

func (f *fakeGroupRepo) ListByStage(_ context.Context, stageID uuid.UUID) ([]models.Group, error) {
	return f.byStage[stageID], nil
}

func (f *fakeGroupRepo) Delete(context.Context, uuid.UUID) error { return nil }

func (f *fakeGroupRepo) ListTeams(context.Context, uuid.UUID) ([]models.Team, error) {
	return nil, nil
}

func (f *fakeGroupRepo) ReplaceTeams(context.Context, uuid.UUID, []uuid.UUID) error { return nil }

func newTestStageService(matches []models.Match, groups ...uuid.UUID) (*stageService, *fakeMatchRepo) {
	stageRepo := &fakeStageRepo{stages: map[uuid.UUID]*models.Stage{
		groupStage: {ID: groupStage, TournamentID: tournamentID, Name: "Группы", Role: models.StageRoleGroup},
	}}
	groupRepo := &fakeGroupRepo{byStage: map[uuid.UUID][]models.Group{}}
	for _, id := range groups {
		groupRepo.byStage[groupStage] = append(groupRepo.byStage[groupStage], models.Group{ID: id, StageID: groupStage})
	}
	matchRepo := newFakeMatchRepo()
	matchRepo.list = matches

	return &stageService{
		stageRepo: stageRepo,
		groupRepo: groupRepo,
		matchRepo: matchRepo,
		now:       func() time.Time { return matchClock },
	}, matchRepo
}

func fixture(group uuid.UUID, at time.Time, status models.MatchStatus) models.Match {
	return models.Match{
		ID:         uuid.New(),
		GroupID:    &group,
		HomeTeamID: teamA,
		AwayTeamID: teamB,
		MatchDate:  at,
		Status:     status,
	}
}

func TestStageOverviewSplit(t *testing.T) {
	tests := []struct {
		name         string
		match        models.Match
		wantToday    bool
		wantUpcoming bool
	}{
		{name: "finished this morning", match: fixture(group1, matchClock.Add(-6*time.Hour), models.MatchStatusFinished), wantToday: true},
		{name: "at midnight", match: fixture(group1, time.Date(2025, time.May, 10, 0, 0, 0, 0, time.UTC), models.MatchStatusFinished), wantToday: true},
		{name: "later today scheduled", match: fixture(group2, matchClock.Add(3*time.Hour), models.MatchStatusScheduled), wantToday: true},
		{name: "live now", match: fixture(group1, matchClock.Add(-30*time.Minute), models.MatchStatusOngoing), wantToday: true},
		{name: "tomorrow scheduled", match: fixture(group1, matchClock.Add(24*time.Hour), models.MatchStatusScheduled), wantUpcoming: true},
		{name: "next midnight", match: fixture(group2, time.Date(2025, time.May, 11, 0, 0, 0, 0, time.UTC), models.MatchStatusScheduled), wantUpcoming: true},
		{name: "tomorrow already finished", match: fixture(group1, matchClock.Add(24*time.Hour), models.MatchStatusFinished)},
		{name: "yesterday never played", match: fixture(group2, matchClock.Add(-24*time.Hour), models.MatchStatusScheduled)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestStageService([]models.Match{tt.match}, group1, group2)

			overview, err := svc.GetStageOverview(context.Background(), groupStage)
			if err != nil {
				t.Fatalf("GetStageOverview: %v", err)
			}
			if got := len(overview.Today) == 1; got != tt.wantToday {
				t.Errorf("today = %v, want %v", overview.Today, tt.wantToday)
			}
			if got := len(overview.Upcoming) == 1; got != tt.wantUpcoming {
				t.Errorf("upcoming = %v, want %v", overview.Upcoming, tt.wantUpcoming)
			}
			if len(overview.MatchesByGroup[*tt.match.GroupID]) != 1 {
				t.Errorf("match not bucketed under its group: %v", overview.MatchesByGroup)
			}
		})
	}
}

func TestStageOverviewGroups(t *testing.T) {
	var matches []models.Match
	for i := 0; i < upcomingLimit+3; i++ {
		matches = append(matches, fixture(group1, matchClock.Add(time.Duration(i+1)*24*time.Hour), models.MatchStatusScheduled))
	}
	svc, matchRepo := newTestStageService(matches, group1, group2)

	overview, err := svc.GetStageOverview(context.Background(), groupStage)
	if err != nil {
		t.Fatalf("GetStageOverview: %v", err)
	}
	if len(overview.Upcoming) != upcomingLimit {
		t.Errorf("upcoming = %d, want %d", len(overview.Upcoming), upcomingLimit)
	}
	if len(overview.MatchesByGroup[group1]) != upcomingLimit+3 {
		t.Errorf("group1 has %d matches", len(overview.MatchesByGroup[group1]))
	}
	if g2, ok := overview.MatchesByGroup[group2]; !ok || len(g2) != 0 {
		t.Errorf("empty group should be listed with no matches, got %v (present %v)", g2, ok)
	}
	if len(matchRepo.lastFilter.GroupIDs) != 2 {
		t.Errorf("filter groups = %v", matchRepo.lastFilter.GroupIDs)
	}
}

func TestStageOverviewWithoutGroups(t *testing.T) {
	svc, matchRepo := newTestStageService(nil)

	overview, err := svc.GetStageOverview(context.Background(), groupStage)
	if err != nil {
		t.Fatalf("GetStageOverview: %v", err)
	}
	if len(overview.Today) != 0 || len(overview.Upcoming) != 0 || len(overview.MatchesByGroup) != 0 {
		t.Errorf("overview = %+v", overview)
	}
	if matchRepo.lastFilter.GroupIDs != nil {
		t.Error("matches listed for a stage without groups")
	}

	if _, err := svc.GetStageOverview(context.Background(), koStage); !errors.Is(err, ErrStageNotFound) {
		t.Errorf("unknown stage: got %v", err)
	}
}
