package models

import "github.com/google/uuid"

type LineupEntry struct {
	MatchID     uuid.UUID `json:"match_id" db:"match_id"`
	PlayerID    uuid.UUID `json:"player_id" db:"player_id"`
	TeamID      uuid.UUID `json:"team_id" db:"team_id"`
	IsStarting  bool      `json:"is_starting" db:"is_starting"`
	Goals       int       `json:"goals" db:"goals"`
	YellowCards int       `json:"yellow_cards" db:"yellow_cards"`
	RedCards    int       `json:"red_cards" db:"red_cards"`

	PlayerName   string `json:"player_name,omitempty" db:"player_name"`
	JerseyNumber *int   `json:"jersey_number,omitempty" db:"jersey_number"`
}

// TeamLineup: состав одной команды на матч: стартовые и запасные.
type TeamLineup struct {
	TeamID    uuid.UUID     `json:"team_id"`
	TeamName  string        `json:"team_name"`
	Formation string        `json:"formation"`
	Starting  []LineupEntry `json:"starting"`
	Bench     []LineupEntry `json:"bench"`
}
