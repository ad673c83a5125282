package brackets

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type GenerateFixturesParams struct {
	Teams []uuid.UUID
	// Legs is 1 for a single round robin or 2 for home and away.
	Legs int
	// FirstMatchDate is the kickoff of round 1; later rounds follow every RoundInterval.
	FirstMatchDate time.Time
	RoundInterval  time.Duration
}

// Fixture is one generated pairing.
type Fixture struct {
	Round        int
	OrderInRound int
	HomeTeamID   uuid.UUID
	AwayTeamID   uuid.UUID
	MatchDate    time.Time
}

type FixtureGenerator interface {
	GenerateFixtures(ctx context.Context, params GenerateFixturesParams) ([]Fixture, error)

	GetName() string
}
