package brackets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotEnoughTeams = errors.New("not enough teams for a round robin")
	ErrDuplicateTeam  = errors.New("team listed more than once")
	ErrInvalidLegs    = errors.New("legs must be 1 or 2")
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() FixtureGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateFixtures schedules every team against every other team once per leg using the
// circle method, so each round has every team playing at most once.
// With an odd number of teams one team rests each round.
// The second leg repeats the first with home and away swapped.
func (g *RoundRobinGenerator) GenerateFixtures(ctx context.Context, params GenerateFixturesParams) ([]Fixture, error) {
	legs := params.Legs
	if legs == 0 {
		legs = 1
	}
	if legs != 1 && legs != 2 {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidLegs, legs)
	}
	if len(params.Teams) < 2 {
		return nil, fmt.Errorf("%w (found %d, min 2 required)", ErrNotEnoughTeams, len(params.Teams))
	}

	seen := make(map[uuid.UUID]struct{}, len(params.Teams))
	slots := make([]uuid.UUID, 0, len(params.Teams)+1)
	for _, id := range params.Teams {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTeam, id)
		}
		seen[id] = struct{}{}
		slots = append(slots, id)
	}
	if len(slots)%2 == 1 {
		slots = append(slots, uuid.Nil) // bye
	}

	n := len(slots)
	roundsPerLeg := n - 1
	fixtures := make([]Fixture, 0, legs*len(params.Teams)*(len(params.Teams)-1)/2)

	for round := 0; round < roundsPerLeg; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		order := 0
		for i := 0; i < n/2; i++ {
			home, away := slots[i], slots[n-1-i]
			if home == uuid.Nil || away == uuid.Nil {
				continue
			}
			// Fixed team alternates sides so nobody plays at home every round.
			if i == 0 && round%2 == 1 {
				home, away = away, home
			}
			order++
			fixtures = append(fixtures, Fixture{
				Round:        round + 1,
				OrderInRound: order,
				HomeTeamID:   home,
				AwayTeamID:   away,
			})
		}
		rotate(slots)
	}

	if legs == 2 {
		firstLeg := len(fixtures)
		for _, f := range fixtures[:firstLeg] {
			fixtures = append(fixtures, Fixture{
				Round:        f.Round + roundsPerLeg,
				OrderInRound: f.OrderInRound,
				HomeTeamID:   f.AwayTeamID,
				AwayTeamID:   f.HomeTeamID,
			})
		}
	}

	if !params.FirstMatchDate.IsZero() {
		for i := range fixtures {
			fixtures[i].MatchDate = params.FirstMatchDate.Add(time.Duration(fixtures[i].Round-1) * params.RoundInterval)
		}
	}

	return fixtures, nil
}

// rotate keeps slots[0] in place and turns the rest one step clockwise.
func rotate(slots []uuid.UUID) {
	if len(slots) < 3 {
		return
	}
	last := slots[len(slots)-1]
	copy(slots[2:], slots[1:len(slots)-1])
	slots[1] = last
}
