// Package live keeps standings views current: change sources report row changes in the
// match store, a Controller re-runs the aggregation for one scope, and the Hub pushes
// the result to websocket viewers.
package live

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

const (
	TableMatches        = "matches"
	TableGroupStandings = "group_standings"
)

const (
	OpInsert = "INSERT"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
	// OpResync is sent after the feed may have lost notifications.
	OpResync = "resync"
	// OpTick is sent by PollSource on every visible interval.
	OpTick = "tick"
)

// ChangeEvent mirrors the JSON payload published by the notify_portal_change trigger.
type ChangeEvent struct {
	Table        string     `json:"table"`
	Op           string     `json:"op"`
	RowID        *uuid.UUID `json:"id,omitempty"`
	GroupID      *uuid.UUID `json:"group_id,omitempty"`
	TournamentID *uuid.UUID `json:"tournament_id,omitempty"`
}

// Filter narrows a subscription to the rows a standings scope depends on.
// Zero value matches everything.
type Filter struct {
	Tables       []string
	GroupIDs     []uuid.UUID
	TournamentID *uuid.UUID
}

// Matches reports whether ev may change the scope described by f.
// Events without a table (resync, poll ticks) always match.
func (f Filter) Matches(ev ChangeEvent) bool {
	if ev.Table == "" {
		return true
	}
	if len(f.Tables) > 0 && !slices.Contains(f.Tables, ev.Table) {
		return false
	}
	if len(f.GroupIDs) == 0 && f.TournamentID == nil {
		return true
	}
	if ev.GroupID != nil && slices.Contains(f.GroupIDs, *ev.GroupID) {
		return true
	}
	return f.TournamentID != nil && ev.TournamentID != nil && *f.TournamentID == *ev.TournamentID
}

// ChangeSource delivers change events to fn until the subscription is released or ctx ends.
// fn may be called from a goroutine owned by the source.
type ChangeSource interface {
	Subscribe(ctx context.Context, f Filter, fn func(ChangeEvent)) (Subscription, error)
}

// Subscription is a live registration with a ChangeSource.
// Unsubscribe is safe to call more than once.
type Subscription interface {
	Unsubscribe()
}

type subscription struct {
	once    sync.Once
	release func()
}

func newSubscription(release func()) *subscription {
	return &subscription{release: release}
}

func (s *subscription) Unsubscribe() {
	s.once.Do(s.release)
}
