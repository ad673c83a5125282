package brackets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func teams(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids
}

func TestRoundRobinPairingCounts(t *testing.T) {
	tests := []struct {
		teams       int
		legs        int
		wantMatches int
		wantRounds  int
	}{
		{teams: 2, legs: 1, wantMatches: 1, wantRounds: 1},
		{teams: 3, legs: 1, wantMatches: 3, wantRounds: 3},
		{teams: 4, legs: 1, wantMatches: 6, wantRounds: 3},
		{teams: 5, legs: 1, wantMatches: 10, wantRounds: 5},
		{teams: 4, legs: 2, wantMatches: 12, wantRounds: 6},
		{teams: 6, legs: 2, wantMatches: 30, wantRounds: 10},
	}

	gen := NewRoundRobinGenerator()
	for _, tt := range tests {
		ids := teams(tt.teams)
		fixtures, err := gen.GenerateFixtures(context.Background(), GenerateFixturesParams{Teams: ids, Legs: tt.legs})
		if err != nil {
			t.Fatalf("%d teams, %d legs: %v", tt.teams, tt.legs, err)
		}
		if len(fixtures) != tt.wantMatches {
			t.Errorf("%d teams, %d legs: got %d fixtures, want %d", tt.teams, tt.legs, len(fixtures), tt.wantMatches)
		}

		pairs := make(map[[2]uuid.UUID]int)
		perRound := make(map[int]map[uuid.UUID]bool)
		maxRound := 0
		for _, f := range fixtures {
			if f.HomeTeamID == f.AwayTeamID {
				t.Fatalf("team plays itself in round %d", f.Round)
			}
			pairs[[2]uuid.UUID{f.HomeTeamID, f.AwayTeamID}]++
			if perRound[f.Round] == nil {
				perRound[f.Round] = make(map[uuid.UUID]bool)
			}
			for _, id := range []uuid.UUID{f.HomeTeamID, f.AwayTeamID} {
				if perRound[f.Round][id] {
					t.Fatalf("team %s plays twice in round %d", id, f.Round)
				}
				perRound[f.Round][id] = true
			}
			if f.Round > maxRound {
				maxRound = f.Round
			}
		}
		if maxRound != tt.wantRounds {
			t.Errorf("%d teams, %d legs: %d rounds, want %d", tt.teams, tt.legs, maxRound, tt.wantRounds)
		}

		for i, a := range ids {
			for _, b := range ids[i+1:] {
				got := pairs[[2]uuid.UUID{a, b}] + pairs[[2]uuid.UUID{b, a}]
				if got != tt.legs {
					t.Errorf("%d teams: pair met %d times, want %d", tt.teams, got, tt.legs)
				}
				if tt.legs == 2 && (pairs[[2]uuid.UUID{a, b}] != 1 || pairs[[2]uuid.UUID{b, a}] != 1) {
					t.Errorf("%d teams: second leg must swap home and away", tt.teams)
				}
			}
		}
	}
}

func TestRoundRobinSchedule(t *testing.T) {
	start := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	fixtures, err := NewRoundRobinGenerator().GenerateFixtures(context.Background(), GenerateFixturesParams{
		Teams:          teams(4),
		FirstMatchDate: start,
		RoundInterval:  7 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range fixtures {
		want := start.AddDate(0, 0, 7*(f.Round-1))
		if !f.MatchDate.Equal(want) {
			t.Errorf("round %d at %s, want %s", f.Round, f.MatchDate, want)
		}
	}
}

func TestRoundRobinRejectsBadInput(t *testing.T) {
	dup := uuid.New()
	tests := []struct {
		name   string
		params GenerateFixturesParams
		want   error
	}{
		{name: "one team", params: GenerateFixturesParams{Teams: teams(1)}, want: ErrNotEnoughTeams},
		{name: "duplicate", params: GenerateFixturesParams{Teams: []uuid.UUID{dup, uuid.New(), dup}}, want: ErrDuplicateTeam},
		{name: "three legs", params: GenerateFixturesParams{Teams: teams(4), Legs: 3}, want: ErrInvalidLegs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRoundRobinGenerator().GenerateFixtures(context.Background(), tt.params)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}
