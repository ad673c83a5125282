package models

import (
	"time"

	"github.com/google/uuid"
)

type Player struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	TeamID       *uuid.UUID `json:"team_id,omitempty" db:"team_id"`
	Name         string     `json:"name" db:"name"`
	JerseyNumber *int       `json:"jersey_number,omitempty" db:"jersey_number"`
	Position     *string    `json:"position,omitempty" db:"position"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}
