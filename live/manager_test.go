package live

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Dosada05/tournament-portal/models"
	"github.com/Dosada05/tournament-portal/standings"
	"github.com/google/uuid"
)

type fakeReader struct {
	err error
}

func (r fakeReader) GroupStandings(context.Context, uuid.UUID) (standings.Table, error) {
	if r.err != nil {
		return standings.Table{}, r.err
	}
	return standings.NewTable(standings.TitleGroup, false, []models.StandingRow{{TeamName: "A", Rank: 1}}), nil
}

func (r fakeReader) TournamentStandings(context.Context, uuid.UUID, *uuid.UUID) (standings.Table, error) {
	return standings.NewTable(standings.TitleTournament, false, nil), r.err
}

func testClient(hub *Hub, room string) *Client {
	return &Client{Hub: hub, Send: make(chan []byte, 16), Room: room}
}

func readMessage(t *testing.T, c *Client) WebSocketMessage {
	t.Helper()
	select {
	case raw := <-c.Send:
		var msg WebSocketMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("bad message %q: %v", raw, err)
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
	return WebSocketMessage{}
}

func startHub(t *testing.T, reader StandingsReader) (*Hub, *Manager) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(discardLogger())
	mgr := NewManager(hub, reader, ManagerConfig{}, discardLogger())
	go hub.Run(ctx)
	t.Cleanup(func() {
		mgr.Close()
		cancel()
	})
	return hub, mgr
}

func TestManagerMountsPerRoom(t *testing.T) {
	hub, mgr := startHub(t, fakeReader{})
	room := GroupScope(uuid.New()).Room()

	first := testClient(hub, room)
	if !hub.Join(first) {
		t.Fatal("hub refused client")
	}
	msg := readMessage(t, first)
	if msg.Type != MessageStandingsUpdated || msg.RoomID != room {
		t.Fatalf("first message = %+v", msg)
	}
	if !mgr.Mounted(room) {
		t.Fatal("room not mounted after first viewer")
	}

	second := testClient(hub, room)
	hub.Join(second)
	readMessage(t, second)
	readMessage(t, first)
	if n := hub.ViewerCount(room); n != 2 {
		t.Fatalf("ViewerCount = %d, want 2", n)
	}

	hub.Unregister <- first
	waitFor(t, "first leaves", func() bool { return hub.ViewerCount(room) == 1 })
	if !mgr.Mounted(room) {
		t.Fatal("room unmounted while a viewer remains")
	}

	hub.Unregister <- second
	waitFor(t, "unmount", func() bool { return !mgr.Mounted(room) })
}

func TestManagerBroadcastsUnavailable(t *testing.T) {
	hub, _ := startHub(t, fakeReader{err: errors.New("timeout")})
	room := TournamentScope(uuid.New(), nil).Room()

	c := testClient(hub, room)
	hub.Join(c)
	if msg := readMessage(t, c); msg.Type != MessageStandingsUnavailable || msg.Payload != nil {
		t.Fatalf("message = %+v", msg)
	}
}

func TestManagerIgnoresUnknownRoom(t *testing.T) {
	hub, mgr := startHub(t, fakeReader{})
	c := testClient(hub, "bracket:1")
	hub.Join(c)
	waitFor(t, "registration", func() bool { return hub.ViewerCount("bracket:1") == 1 })
	if mgr.Mounted("bracket:1") {
		t.Fatal("unknown room was mounted")
	}
}

func TestParseRoom(t *testing.T) {
	tour, stage, group := uuid.New(), uuid.New(), uuid.New()

	for _, s := range []Scope{GroupScope(group), TournamentScope(tour, nil), TournamentScope(tour, &stage)} {
		got, err := ParseRoom(s.Room())
		if err != nil {
			t.Fatalf("ParseRoom(%q): %v", s.Room(), err)
		}
		if got.Room() != s.Room() {
			t.Errorf("round trip %q -> %q", s.Room(), got.Room())
		}
	}

	for _, bad := range []string{"", "standings", "standings:group", "standings:group:x", "standings:team:" + group.String(), "other:group:" + group.String()} {
		if _, err := ParseRoom(bad); err == nil {
			t.Errorf("ParseRoom(%q) accepted", bad)
		}
	}
}
