package live

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/tournament-portal/standings"
	"github.com/google/uuid"
)

const roomPrefix = "standings"

// Scope identifies one standings view: a single group, or a tournament optionally
// narrowed to one stage.
type Scope struct {
	GroupID      *uuid.UUID
	TournamentID *uuid.UUID
	StageID      *uuid.UUID
}

func GroupScope(groupID uuid.UUID) Scope {
	return Scope{GroupID: &groupID}
}

func TournamentScope(tournamentID uuid.UUID, stageID *uuid.UUID) Scope {
	return Scope{TournamentID: &tournamentID, StageID: stageID}
}

// Room is the hub room name for s: standings:group:<id> or
// standings:tournament:<id>[:<stage id>].
func (s Scope) Room() string {
	switch {
	case s.GroupID != nil:
		return roomPrefix + ":group:" + s.GroupID.String()
	case s.StageID != nil:
		return roomPrefix + ":tournament:" + s.TournamentID.String() + ":" + s.StageID.String()
	case s.TournamentID != nil:
		return roomPrefix + ":tournament:" + s.TournamentID.String()
	}
	return ""
}

// Filter lists the change events that can affect s.
func (s Scope) Filter() Filter {
	f := Filter{Tables: []string{TableMatches, TableGroupStandings}}
	if s.GroupID != nil {
		f.GroupIDs = []uuid.UUID{*s.GroupID}
		return f
	}
	f.TournamentID = s.TournamentID
	return f
}

func ParseRoom(room string) (Scope, error) {
	parts := strings.Split(room, ":")
	if len(parts) < 3 || parts[0] != roomPrefix {
		return Scope{}, fmt.Errorf("invalid standings room %q", room)
	}

	ids := make([]uuid.UUID, 0, len(parts)-2)
	for _, p := range parts[2:] {
		id, err := uuid.Parse(p)
		if err != nil {
			return Scope{}, fmt.Errorf("invalid standings room %q: %w", room, err)
		}
		ids = append(ids, id)
	}

	switch {
	case parts[1] == "group" && len(ids) == 1:
		return GroupScope(ids[0]), nil
	case parts[1] == "tournament" && len(ids) == 1:
		return TournamentScope(ids[0], nil), nil
	case parts[1] == "tournament" && len(ids) == 2:
		return TournamentScope(ids[0], &ids[1]), nil
	}
	return Scope{}, fmt.Errorf("invalid standings room %q", room)
}

// StandingsReader produces the table for a scope.
type StandingsReader interface {
	GroupStandings(ctx context.Context, groupID uuid.UUID) (standings.Table, error)
	TournamentStandings(ctx context.Context, tournamentID uuid.UUID, stageID *uuid.UUID) (standings.Table, error)
}

type ManagerConfig struct {
	// Source is the primary change feed. With a nil Source every room polls.
	Source ChangeSource
	// PollInterval drives the poll source; zero disables the poll fallback when Source is set.
	PollInterval   time.Duration
	RefreshTimeout time.Duration
}

// Manager mounts one Controller per occupied standings room: the first viewer starts
// it, the last viewer leaving stops it, and every later viewer triggers a refresh so
// it receives the current table.
type Manager struct {
	hub    *Hub
	reader StandingsReader
	cfg    ManagerConfig
	logger *slog.Logger

	mu          sync.Mutex
	controllers map[string]*Controller
	closed      bool
}

func NewManager(hub *Hub, reader StandingsReader, cfg ManagerConfig, logger *slog.Logger) *Manager {
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = 10 * time.Second
	}
	m := &Manager{
		hub:         hub,
		reader:      reader,
		cfg:         cfg,
		logger:      logger,
		controllers: make(map[string]*Controller),
	}
	hub.SetHooks(RoomHooks{Joined: m.joined, Left: m.left})
	return m
}

func (m *Manager) joined(room string, viewers int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}

	if ctrl, ok := m.controllers[room]; ok {
		ctrl.Trigger()
		return
	}

	scope, err := ParseRoom(room)
	if err != nil {
		m.logger.Warn("Viewer joined unknown room", slog.String("room", room), slog.Any("error", err))
		return
	}

	ctrl := m.newController(room, scope)
	if err := ctrl.Start(context.Background()); err != nil {
		m.logger.Error("Failed to start standings controller", slog.String("room", room), slog.Any("error", err))
		return
	}
	m.controllers[room] = ctrl
	m.logger.Info("Standings view mounted", slog.String("room", room), slog.Int("viewers", viewers))
}

func (m *Manager) left(room string, viewers int) {
	if viewers > 0 {
		return
	}
	m.mu.Lock()
	ctrl, ok := m.controllers[room]
	delete(m.controllers, room)
	m.mu.Unlock()

	if ok {
		ctrl.Stop()
		m.logger.Info("Standings view unmounted", slog.String("room", room))
	}
}

// Mounted reports whether room currently has a running controller.
func (m *Manager) Mounted(room string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.controllers[room]
	return ok
}

// Close stops every controller. Rooms joined afterwards are not mounted.
func (m *Manager) Close() {
	m.mu.Lock()
	ctrls := m.controllers
	m.controllers = make(map[string]*Controller)
	m.closed = true
	m.mu.Unlock()

	for _, ctrl := range ctrls {
		ctrl.Stop()
	}
}

func (m *Manager) newController(room string, scope Scope) *Controller {
	var poll ChangeSource
	if m.cfg.Source == nil || m.cfg.PollInterval > 0 {
		poll = NewPollSource(m.cfg.PollInterval, func() bool { return m.hub.ViewerCount(room) > 0 })
	}

	primary, fallback := m.cfg.Source, poll
	if primary == nil {
		primary, fallback = poll, nil
	}

	return NewController(ControllerConfig{
		Filter:   scope.Filter(),
		Source:   primary,
		Fallback: fallback,
		Refresh:  m.refreshFunc(scope),
		Deliver:  m.deliverFunc(room),
		Logger:   m.logger.With(slog.String("room", room)),
	})
}

func (m *Manager) refreshFunc(scope Scope) RefreshFunc {
	return func(ctx context.Context) (standings.Table, error) {
		ctx, cancel := context.WithTimeout(ctx, m.cfg.RefreshTimeout)
		defer cancel()
		if scope.GroupID != nil {
			return m.reader.GroupStandings(ctx, *scope.GroupID)
		}
		return m.reader.TournamentStandings(ctx, *scope.TournamentID, scope.StageID)
	}
}

func (m *Manager) deliverFunc(room string) DeliverFunc {
	return func(table standings.Table, err error) {
		if err != nil {
			m.hub.BroadcastToRoom(room, WebSocketMessage{Type: MessageStandingsUnavailable, RoomID: room})
			return
		}
		m.hub.BroadcastToRoom(room, WebSocketMessage{Type: MessageStandingsUpdated, Payload: table, RoomID: room})
	}
}
