package models

import "github.com/google/uuid"

type PlayerMatchStat struct {
	MatchID     uuid.UUID `json:"match_id" db:"match_id"`
	PlayerID    uuid.UUID `json:"player_id" db:"player_id"`
	Goals       int       `json:"goals" db:"goals"`
	Assists     int       `json:"assists" db:"assists"`
	YellowCards int       `json:"yellow_cards" db:"yellow_cards"`
	RedCards    int       `json:"red_cards" db:"red_cards"`
}

// PlayerStatTotal is a player's statistics summed over all recorded matches.
type PlayerStatTotal struct {
	PlayerID    uuid.UUID `json:"player_id" db:"player_id"`
	Name        string    `json:"name" db:"name"`
	TeamName    string    `json:"team_name" db:"team_name"`
	Goals       int       `json:"goals" db:"goals"`
	Assists     int       `json:"assists" db:"assists"`
	YellowCards int       `json:"yellow_cards" db:"yellow_cards"`
	RedCards    int       `json:"red_cards" db:"red_cards"`
}
