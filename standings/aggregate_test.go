package standings

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/Dosada05/tournament-portal/models"
	"github.com/google/uuid"
)

var (
	teamA = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	teamB = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000002")
	teamC = uuid.MustParse("cccccccc-0000-0000-0000-000000000003")
	teamD = uuid.MustParse("dddddddd-0000-0000-0000-000000000004")

	names = map[uuid.UUID]string{teamA: "A", teamB: "B", teamC: "C", teamD: "D"}
)

func score(n int) *int { return &n }

func played(home, away uuid.UUID, h, a int, status models.MatchStatus) models.Match {
	return models.Match{
		ID:         uuid.New(),
		HomeTeamID: home,
		AwayTeamID: away,
		HomeScore:  score(h),
		AwayScore:  score(a),
		Status:     status,
	}
}

func finished(home, away uuid.UUID, h, a int) models.Match {
	return played(home, away, h, a, models.MatchStatusFinished)
}

func byTeam(rows []models.StandingRow) map[uuid.UUID]models.StandingRow {
	out := make(map[uuid.UUID]models.StandingRow, len(rows))
	for _, r := range rows {
		out[r.TeamID] = r
	}
	return out
}

func TestAggregateScenario(t *testing.T) {
	matches := []models.Match{
		finished(teamA, teamB, 3, 1),
		finished(teamB, teamC, 2, 2),
	}

	rows := Aggregate(matches, names, EligibleStarted)

	want := []models.StandingRow{
		{TeamID: teamA, TeamName: "A", Played: 1, Wins: 1, GoalsFor: 3, GoalsAgainst: 1, GoalDifference: 2, Points: 3, Rank: 1},
		{TeamID: teamC, TeamName: "C", Played: 1, Draws: 1, GoalsFor: 2, GoalsAgainst: 2, GoalDifference: 0, Points: 1, Rank: 2},
		{TeamID: teamB, TeamName: "B", Played: 2, Draws: 1, Losses: 1, GoalsFor: 3, GoalsAgainst: 5, GoalDifference: -2, Points: 1, Rank: 3},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("Aggregate() =\n%+v\nwant\n%+v", rows, want)
	}
}

func TestAggregatePoints(t *testing.T) {
	tests := []struct {
		name         string
		home, away   int
		wantHomePts  int
		wantAwayPts  int
		wantHomeWins int
		wantAwayWins int
	}{
		{name: "home win", home: 2, away: 0, wantHomePts: 3, wantAwayPts: 0, wantHomeWins: 1},
		{name: "away win", home: 0, away: 1, wantHomePts: 0, wantAwayPts: 3, wantAwayWins: 1},
		{name: "draw", home: 1, away: 1, wantHomePts: 1, wantAwayPts: 1},
		{name: "goalless draw", home: 0, away: 0, wantHomePts: 1, wantAwayPts: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := byTeam(Aggregate([]models.Match{finished(teamA, teamB, tt.home, tt.away)}, names, EligibleStarted))
			home, away := rows[teamA], rows[teamB]
			if home.Points != tt.wantHomePts || away.Points != tt.wantAwayPts {
				t.Errorf("points = %d/%d, want %d/%d", home.Points, away.Points, tt.wantHomePts, tt.wantAwayPts)
			}
			if home.Wins != tt.wantHomeWins || away.Wins != tt.wantAwayWins {
				t.Errorf("wins = %d/%d, want %d/%d", home.Wins, away.Wins, tt.wantHomeWins, tt.wantAwayWins)
			}
		})
	}
}

func TestAggregateInvariants(t *testing.T) {
	matches := []models.Match{
		finished(teamA, teamB, 3, 1),
		finished(teamC, teamD, 0, 0),
		finished(teamA, teamC, 1, 2),
		finished(teamB, teamD, 4, 4),
		finished(teamD, teamA, 2, 5),
		finished(teamB, teamC, 1, 0),
	}

	rows := Aggregate(matches, names, EligibleStarted)

	var gf, ga, played int
	for _, r := range rows {
		if r.Played != r.Wins+r.Draws+r.Losses {
			t.Errorf("%s: played %d != w+d+l %d", r.TeamName, r.Played, r.Wins+r.Draws+r.Losses)
		}
		if r.GoalDifference != r.GoalsFor-r.GoalsAgainst {
			t.Errorf("%s: gd %d != gf-ga %d", r.TeamName, r.GoalDifference, r.GoalsFor-r.GoalsAgainst)
		}
		if r.Points != PointsWin*r.Wins+PointsDraw*r.Draws {
			t.Errorf("%s: points %d inconsistent with record", r.TeamName, r.Points)
		}
		gf += r.GoalsFor
		ga += r.GoalsAgainst
		played += r.Played
	}
	if gf != ga {
		t.Errorf("sum(goals_for) = %d, sum(goals_against) = %d", gf, ga)
	}
	if played != 2*len(matches) {
		t.Errorf("sum(played) = %d, want %d", played, 2*len(matches))
	}
}

func TestAggregateIdempotent(t *testing.T) {
	matches := []models.Match{
		finished(teamA, teamB, 1, 1),
		finished(teamC, teamD, 1, 1),
		finished(teamA, teamD, 2, 2),
	}

	first := Aggregate(matches, names, EligibleStarted)
	second := Aggregate(matches, names, EligibleStarted)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("second run differs:\n%+v\n%+v", first, second)
	}
}

func TestAggregateOmitsTeamsWithoutEligibleMatches(t *testing.T) {
	matches := []models.Match{
		finished(teamA, teamB, 1, 0),
		{ID: uuid.New(), HomeTeamID: teamC, AwayTeamID: teamD, Status: models.MatchStatusScheduled},
	}

	rows := Aggregate(matches, names, EligibleStarted)
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	for _, r := range rows {
		if r.TeamID == teamC || r.TeamID == teamD {
			t.Errorf("team %s has no eligible match but is listed", r.TeamName)
		}
	}
}

func TestAggregateEmpty(t *testing.T) {
	rows := Aggregate(nil, nil, EligibleStarted)
	if rows == nil || len(rows) != 0 {
		t.Fatalf("Aggregate(nil) = %#v, want empty non-nil slice", rows)
	}
}

func TestEligibility(t *testing.T) {
	partial := models.Match{HomeTeamID: teamA, AwayTeamID: teamB, Status: models.MatchStatusOngoing, HomeScore: score(1)}

	tests := []struct {
		name  string
		match models.Match
		rule  Eligibility
		want  bool
	}{
		{"finished counts under started", finished(teamA, teamB, 1, 0), EligibleStarted, true},
		{"finished counts under finished", finished(teamA, teamB, 1, 0), EligibleFinished, true},
		{"ongoing with scores counts under started", played(teamA, teamB, 1, 0, models.MatchStatusOngoing), EligibleStarted, true},
		{"halftime with scores counts under started", played(teamA, teamB, 0, 0, models.MatchStatusHalftime), EligibleStarted, true},
		{"ongoing excluded under finished", played(teamA, teamB, 1, 0, models.MatchStatusOngoing), EligibleFinished, false},
		{"partial score never counts", partial, EligibleStarted, false},
		{"scheduled with scores never counts", played(teamA, teamB, 1, 0, models.MatchStatusScheduled), EligibleStarted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rule.Eligible(tt.match); got != tt.want {
				t.Errorf("Eligible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseEligibility(t *testing.T) {
	if got, err := ParseEligibility(""); err != nil || got != EligibleStarted {
		t.Errorf("ParseEligibility(\"\") = %q, %v", got, err)
	}
	if got, err := ParseEligibility("finished"); err != nil || got != EligibleFinished {
		t.Errorf("ParseEligibility(finished) = %q, %v", got, err)
	}
	if _, err := ParseEligibility("whenever"); err == nil {
		t.Error("expected error for unknown rule")
	}
}

func TestSortGoalDifferenceBreaksPointsTie(t *testing.T) {
	rows := []models.StandingRow{
		{TeamName: "minus", Points: 6, GoalDifference: -1},
		{TeamName: "three", Points: 3, GoalDifference: 0},
		{TeamName: "plus", Points: 6, GoalDifference: 2},
	}

	Sort(rows)

	got := []string{rows[0].TeamName, rows[1].TeamName, rows[2].TeamName}
	want := []string{"plus", "minus", "three"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestSortGoalsForThenEncounterOrder(t *testing.T) {
	rows := []models.StandingRow{
		{TeamName: "first", Points: 4, GoalDifference: 1, GoalsFor: 3},
		{TeamName: "more goals", Points: 4, GoalDifference: 1, GoalsFor: 5},
		{TeamName: "second", Points: 4, GoalDifference: 1, GoalsFor: 3},
	}

	Sort(rows)

	got := []string{rows[0].TeamName, rows[1].TeamName, rows[2].TeamName}
	want := []string{"more goals", "first", "second"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestPlaceholderName(t *testing.T) {
	rows := Aggregate([]models.Match{finished(teamA, teamB, 0, 1)}, map[uuid.UUID]string{teamA: "A"}, EligibleStarted)
	got := byTeam(rows)[teamB].TeamName
	if got != "Team bbbb" {
		t.Fatalf("placeholder = %q, want %q", got, "Team bbbb")
	}
}

func TestMerge(t *testing.T) {
	group1, group2 := uuid.New(), uuid.New()
	in := []models.GroupStandingRow{
		{GroupID: group1, StandingRow: models.StandingRow{TeamID: teamA, TeamName: "A", Played: 2, Wins: 1, Draws: 1, GoalsFor: 4, GoalsAgainst: 2, GoalDifference: 2, Points: 4}},
		{GroupID: group1, StandingRow: models.StandingRow{TeamID: teamB, TeamName: "B", Played: 2, Losses: 2, GoalsFor: 1, GoalsAgainst: 5, GoalDifference: -4, Points: 0}},
		{GroupID: group2, StandingRow: models.StandingRow{TeamID: teamB, TeamName: "B", Played: 1, Wins: 1, GoalsFor: 3, GoalsAgainst: 0, GoalDifference: 3, Points: 3}},
		{GroupID: group2, StandingRow: models.StandingRow{TeamID: teamC, TeamName: "", Played: 1, Losses: 1, GoalsFor: 0, GoalsAgainst: 3, GoalDifference: -3, Points: 0}},
	}

	rows := Merge(in)

	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}
	b := byTeam(rows)[teamB]
	want := models.StandingRow{TeamID: teamB, TeamName: "B", Played: 3, Wins: 1, Losses: 2, GoalsFor: 4, GoalsAgainst: 5, GoalDifference: -1, Points: 3, Rank: 2}
	if b != want {
		t.Errorf("merged B = %+v, want %+v", b, want)
	}
	if rows[0].TeamID != teamA || rows[2].TeamID != teamC {
		t.Errorf("order = %s, %s, %s", rows[0].TeamName, rows[1].TeamName, rows[2].TeamName)
	}
	if rows[2].TeamName != "Team cccc" {
		t.Errorf("missing name fallback = %q", rows[2].TeamName)
	}
}

func TestMergeAgreesWithAggregate(t *testing.T) {
	group1 := []models.Match{finished(teamA, teamB, 2, 1), finished(teamB, teamA, 0, 0)}
	group2 := []models.Match{finished(teamA, teamC, 1, 3)}

	var derived []models.GroupStandingRow
	for _, matches := range [][]models.Match{group1, group2} {
		for _, r := range Aggregate(matches, names, EligibleStarted) {
			derived = append(derived, models.GroupStandingRow{StandingRow: r})
		}
	}
	merged := Merge(derived)
	direct := Aggregate(append(append([]models.Match{}, group1...), group2...), names, EligibleStarted)

	if !reflect.DeepEqual(byTeam(merged), byTeam(direct)) {
		t.Fatalf("merge and aggregate disagree:\n%+v\n%+v", merged, direct)
	}
}

func TestTableText(t *testing.T) {
	empty := NewTable(TitleTournament, true, nil)
	if empty.Available || empty.Rows == nil {
		t.Fatalf("empty table = %+v", empty)
	}
	var buf bytes.Buffer
	if err := WriteText(&buf, empty); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "Tournament Standings not available yet.\n" {
		t.Errorf("empty render = %q", got)
	}

	buf.Reset()
	table := NewTable(TitleGroup, true, Aggregate([]models.Match{finished(teamA, teamB, 3, 1)}, names, EligibleStarted))
	if err := WriteText(&buf, table); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Standings", "PTS", "+2", "-2"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
}
