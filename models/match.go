package models

import (
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusOngoing   MatchStatus = "ongoing"
	MatchStatusHalftime  MatchStatus = "halftime"
	MatchStatusFinished  MatchStatus = "finished"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchStatusScheduled, MatchStatusOngoing, MatchStatusHalftime, MatchStatusFinished:
		return true
	}
	return false
}

// InPlay is true while the match is being played (shown as LIVE).
func (s MatchStatus) InPlay() bool {
	return s == MatchStatusOngoing || s == MatchStatusHalftime
}

const DefaultFormation = "4-3-3"

type Match struct {
	ID            uuid.UUID   `json:"id" db:"id"`
	TournamentID  uuid.UUID   `json:"tournament_id" db:"tournament_id"`
	GroupID       *uuid.UUID  `json:"group_id,omitempty" db:"group_id"`
	HomeTeamID    uuid.UUID   `json:"home_team_id" db:"home_team_id"`
	AwayTeamID    uuid.UUID   `json:"away_team_id" db:"away_team_id"`
	MatchDate     time.Time   `json:"match_date" db:"match_date"`
	Venue         *string     `json:"venue,omitempty" db:"venue"`
	Status        MatchStatus `json:"status" db:"status"`
	HomeScore     *int        `json:"home_score" db:"home_score"`
	AwayScore     *int        `json:"away_score" db:"away_score"`
	HomeFormation *string     `json:"home_formation,omitempty" db:"home_formation"`
	AwayFormation *string     `json:"away_formation,omitempty" db:"away_formation"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`

	// Заполняются JOIN-ом при чтении, в таблице matches их нет.
	HomeTeamName string `json:"home_team_name,omitempty" db:"home_team_name"`
	AwayTeamName string `json:"away_team_name,omitempty" db:"away_team_name"`
}

// HasScore reports whether both sides have a recorded score.
func (m Match) HasScore() bool {
	return m.HomeScore != nil && m.AwayScore != nil
}
