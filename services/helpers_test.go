package services

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/Dosada05/tournament-portal/models"
	"github.com/google/uuid"
)

func TestValidateInput(t *testing.T) {
	home := uuid.New()
	tests := []struct {
		name      string
		input     interface{}
		wantField string
	}{
		{name: "missing name", input: CreateTeamInput{}, wantField: "name"},
		{name: "bad logo url", input: CreateTeamInput{Name: "Alpha", LogoURL: strPtr("not a url")}, wantField: "logo_url"},
		{name: "same teams", input: CreateMatchInput{TournamentID: uuid.New(), HomeTeamID: home, AwayTeamID: home}, wantField: "away_team_id"},
		{name: "unknown role", input: CreateStageInput{Name: "Groups", Role: "league"}, wantField: "role"},
		{name: "negative score", input: UpdateResultInput{Status: "ongoing", HomeScore: intPtr(-1), AwayScore: intPtr(0)}, wantField: "home_score"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateInput(tt.input)
			if !errors.Is(err, ErrValidationFailed) {
				t.Fatalf("got %v, want a validation error", err)
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error is %T, want *ValidationError", err)
			}
			if _, ok := vErr.Fields[tt.wantField]; !ok {
				t.Errorf("fields %v do not mention %q", vErr.Fields, tt.wantField)
			}
		})
	}

	if err := validateInput(CreateTeamInput{Name: "Alpha"}); err != nil {
		t.Errorf("valid input rejected: %v", err)
	}
}

func TestToSnake(t *testing.T) {
	tests := map[string]string{
		"Name":         "name",
		"HomeTeamID":   "home_team_id",
		"LogoURL":      "logo_url",
		"JerseyNumber": "jersey_number",
	}
	for in, want := range tests {
		if got := toSnake(in); got != want {
			t.Errorf("toSnake(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteStatsCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteStatsCSV(&buf, []models.PlayerStatTotal{
		{Name: "Ivan Petrov", TeamName: "Alpha", Goals: 5, Assists: 2, YellowCards: 1},
		{Name: "Smith, John", TeamName: "Bravo", Goals: 3},
	})
	if err != nil {
		t.Fatal(err)
	}

	want := "Player,Team,Goals,Assists,Yellow Cards,Red Cards\n" +
		"Ivan Petrov,Alpha,5,2,1,0\n" +
		"\"Smith, John\",Bravo,3,0,0,0\n"
	if got := buf.String(); got != want {
		t.Errorf("csv:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuildLineup(t *testing.T) {
	home, away := uuid.New(), uuid.New()
	entries := []models.LineupEntry{
		{TeamID: home, PlayerName: "A", IsStarting: true},
		{TeamID: home, PlayerName: "B"},
		{TeamID: away, PlayerName: "C", IsStarting: true},
	}

	lineup := buildLineup(home, "Alpha", nil, entries)
	if lineup.Formation != models.DefaultFormation {
		t.Errorf("formation = %q, want default", lineup.Formation)
	}
	if len(lineup.Starting) != 1 || len(lineup.Bench) != 1 {
		t.Errorf("starting=%d bench=%d", len(lineup.Starting), len(lineup.Bench))
	}

	lineup = buildLineup(away, "Bravo", strPtr(" 3-5-2 "), entries)
	if lineup.Formation != "3-5-2" || len(lineup.Starting) != 1 || len(lineup.Bench) != 0 {
		t.Errorf("away lineup = %+v", lineup)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"name": "must be provided", "end_date": "must not be before start_date"}}
	if !strings.HasPrefix(err.Error(), "validation failed: end_date:") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
