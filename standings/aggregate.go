// Package standings computes group and tournament tables from match results.
//
// Everything here is a pure function of its input: rows are rebuilt from scratch on
// every call and nothing is carried between invocations.
package standings

import (
	"fmt"
	"sort"

	"github.com/Dosada05/tournament-portal/models"
	"github.com/google/uuid"
)

const (
	PointsWin  = 3
	PointsDraw = 1
)

// Eligibility decides which matches count toward standings.
type Eligibility string

const (
	// EligibleStarted counts every match that has left the scheduled state and has both
	// scores entered, so an ongoing match moves the table while it is played.
	EligibleStarted Eligibility = "started"
	// EligibleFinished counts only finished matches with both scores entered.
	EligibleFinished Eligibility = "finished"
)

func ParseEligibility(s string) (Eligibility, error) {
	switch Eligibility(s) {
	case EligibleStarted, EligibleFinished:
		return Eligibility(s), nil
	case "":
		return EligibleStarted, nil
	}
	return "", fmt.Errorf("unknown standings eligibility %q (expected %q or %q)", s, EligibleStarted, EligibleFinished)
}

// Eligible reports whether m contributes to standings under rule e.
// A scheduled match never counts, neither does a match without both scores.
func (e Eligibility) Eligible(m models.Match) bool {
	if !m.HasScore() || m.Status == models.MatchStatusScheduled {
		return false
	}
	if e == EligibleFinished {
		return m.Status == models.MatchStatusFinished
	}
	return true
}

// Aggregate builds the ranked table for the given matches in one pass.
// Teams without an eligible match are omitted. names resolves team ids; a missing
// entry falls back to PlaceholderName.
func Aggregate(matches []models.Match, names map[uuid.UUID]string, rule Eligibility) []models.StandingRow {
	acc := newAccumulator(names)

	for _, m := range matches {
		if !rule.Eligible(m) {
			continue
		}
		home := acc.row(m.HomeTeamID)
		away := acc.row(m.AwayTeamID)
		applyResult(home, away, *m.HomeScore, *m.AwayScore)
	}

	rows := acc.rows()
	Sort(rows)
	Rank(rows)
	return rows
}

// applyResult updates both sides of one match together.
func applyResult(home, away *models.StandingRow, homeScore, awayScore int) {
	home.Played++
	away.Played++

	home.GoalsFor += homeScore
	home.GoalsAgainst += awayScore
	away.GoalsFor += awayScore
	away.GoalsAgainst += homeScore

	switch {
	case homeScore > awayScore:
		home.Wins++
		home.Points += PointsWin
		away.Losses++
	case homeScore < awayScore:
		away.Wins++
		away.Points += PointsWin
		home.Losses++
	default:
		home.Draws++
		away.Draws++
		home.Points += PointsDraw
		away.Points += PointsDraw
	}

	home.GoalDifference = home.GoalsFor - home.GoalsAgainst
	away.GoalDifference = away.GoalsFor - away.GoalsAgainst
}

// Merge combines per-group rows of the same team into one row (derived-table mode).
// Counters are summed as stored, they are not re-derived from match results.
func Merge(groupRows []models.GroupStandingRow) []models.StandingRow {
	acc := newAccumulator(nil)

	for _, gr := range groupRows {
		r := acc.row(gr.TeamID)
		if r.TeamName == PlaceholderName(gr.TeamID) && gr.TeamName != "" {
			r.TeamName = gr.TeamName
		}
		r.Played += gr.Played
		r.Wins += gr.Wins
		r.Draws += gr.Draws
		r.Losses += gr.Losses
		r.GoalsFor += gr.GoalsFor
		r.GoalsAgainst += gr.GoalsAgainst
		r.GoalDifference += gr.GoalDifference
		r.Points += gr.Points
	}

	rows := acc.rows()
	Sort(rows)
	Rank(rows)
	return rows
}

// Sort orders rows by points, then goal difference, then goals scored, all descending.
// The sort is stable: rows equal on all three keep their input order.
func Sort(rows []models.StandingRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		return a.GoalsFor > b.GoalsFor
	})
}

// Rank numbers rows from 1 in their current order.
func Rank(rows []models.StandingRow) {
	for i := range rows {
		rows[i].Rank = i + 1
	}
}

// PlaceholderName is shown for a team whose name could not be resolved.
func PlaceholderName(id uuid.UUID) string {
	return "Team " + id.String()[:4]
}

// accumulator keeps rows in first-appearance order so ties stay deterministic.
type accumulator struct {
	names map[uuid.UUID]string
	index map[uuid.UUID]*models.StandingRow
	order []*models.StandingRow
}

func newAccumulator(names map[uuid.UUID]string) *accumulator {
	return &accumulator{
		names: names,
		index: make(map[uuid.UUID]*models.StandingRow),
	}
}

func (a *accumulator) row(teamID uuid.UUID) *models.StandingRow {
	if r, ok := a.index[teamID]; ok {
		return r
	}
	name, ok := a.names[teamID]
	if !ok || name == "" {
		name = PlaceholderName(teamID)
	}
	r := &models.StandingRow{TeamID: teamID, TeamName: name}
	a.index[teamID] = r
	a.order = append(a.order, r)
	return r
}

func (a *accumulator) rows() []models.StandingRow {
	out := make([]models.StandingRow, 0, len(a.order))
	for _, r := range a.order {
		out = append(out, *r)
	}
	return out
}
