package models

import (
	"time"

	"github.com/google/uuid"
)

// StageRole определяет, как этап влияет на таблицу: групповой этап считается "живым".
type StageRole string

const (
	StageRoleGroup    StageRole = "group"
	StageRoleKnockout StageRole = "knockout"
)

func (r StageRole) Valid() bool {
	return r == StageRoleGroup || r == StageRoleKnockout
}

// IsLive reports whether standings for this role keep following match changes.
func (r StageRole) IsLive() bool {
	return r == StageRoleGroup
}

type Stage struct {
	ID           uuid.UUID `json:"id" db:"id"`
	TournamentID uuid.UUID `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	Role         StageRole `json:"role" db:"role"`
	Order        int       `json:"stage_order" db:"stage_order"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	Groups []Group `json:"groups,omitempty" db:"-"`
}
