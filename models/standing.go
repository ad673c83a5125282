package models

import (
	"time"

	"github.com/google/uuid"
)

// StandingRow: строка турнирной таблицы. Всегда вычисляется заново, не хранится агрегатором.
type StandingRow struct {
	TeamID         uuid.UUID `json:"team_id" db:"team_id"`
	TeamName       string    `json:"team_name" db:"team_name"`
	Played         int       `json:"played" db:"played"`
	Wins           int       `json:"wins" db:"wins"`
	Draws          int       `json:"draws" db:"draws"`
	Losses         int       `json:"losses" db:"losses"`
	GoalsFor       int       `json:"goals_for" db:"goals_for"`
	GoalsAgainst   int       `json:"goals_against" db:"goals_against"`
	GoalDifference int       `json:"goal_difference" db:"goal_difference"`
	Points         int       `json:"points" db:"points"`
	Rank           int       `json:"rank" db:"-"`
}

// GroupStandingRow is one pre-aggregated row of the group_standings table.
type GroupStandingRow struct {
	GroupID uuid.UUID `json:"group_id" db:"group_id"`
	StandingRow
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
