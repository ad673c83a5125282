package models

import (
	"time"

	"github.com/google/uuid"
)

// Tournament представляет турнир.
type Tournament struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description,omitempty" db:"description"`
	Location    *string    `json:"location,omitempty" db:"location"`
	StartDate   *time.Time `json:"start_date,omitempty" db:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty" db:"end_date"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Stages []Stage `json:"stages,omitempty" db:"-"`
}
