package live

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/tournament-portal/standings"
	"github.com/google/uuid"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// settle gives stray goroutines a chance to misbehave before asserting nothing happened.
func settle() { time.Sleep(50 * time.Millisecond) }

type fakeSource struct {
	mu         sync.Mutex
	err        error
	handler    func(ChangeEvent)
	subscribes int
	releases   int
}

func (s *fakeSource) Subscribe(_ context.Context, _ Filter, fn func(ChangeEvent)) (Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.subscribes++
	s.handler = fn
	return fakeSubscription{s}, nil
}

// fakeSubscription counts every release, it does not deduplicate.
type fakeSubscription struct{ s *fakeSource }

func (f fakeSubscription) Unsubscribe() {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.releases++
}

func (s *fakeSource) emit(ev ChangeEvent) {
	s.mu.Lock()
	h := s.handler
	s.mu.Unlock()
	if h != nil {
		h(ev)
	}
}

func (s *fakeSource) counts() (subscribes, releases int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscribes, s.releases
}

type recorder struct {
	mu     sync.Mutex
	tables []standings.Table
	errs   []error
}

func (r *recorder) deliver(table standings.Table, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables = append(r.tables, table)
	r.errs = append(r.errs, err)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tables)
}

type countingRefresh struct {
	mu    sync.Mutex
	calls int
	live  bool
	err   error
}

func (c *countingRefresh) refresh(context.Context) (standings.Table, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return standings.Table{}, c.err
	}
	return standings.NewTable(standings.TitleGroup, c.live, nil), nil
}

func (c *countingRefresh) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

var groupID = uuid.MustParse("11111111-2222-3333-4444-555555555555")

func TestControllerRefreshOnChange(t *testing.T) {
	src := &fakeSource{}
	rec := &recorder{}
	ref := &countingRefresh{live: true}
	ctrl := NewController(ControllerConfig{
		Filter:  GroupScope(groupID).Filter(),
		Source:  src,
		Refresh: ref.refresh,
		Deliver: rec.deliver,
	})

	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "mount refresh", func() bool { return rec.count() == 1 })
	waitFor(t, "subscription", func() bool { s, _ := src.counts(); return s == 1 })

	src.emit(ChangeEvent{Table: TableMatches, Op: OpUpdate, GroupID: &groupID})
	waitFor(t, "refresh after change", func() bool { return rec.count() == 2 })
	settle()
	if got := rec.count(); got != 2 {
		t.Fatalf("one change produced %d refreshes, want exactly one", got-1)
	}

	other := uuid.New()
	src.emit(ChangeEvent{Table: TableMatches, Op: OpUpdate, GroupID: &other})
	settle()
	if got := rec.count(); got != 2 {
		t.Fatalf("unrelated change caused a refresh (%d deliveries)", got)
	}

	ctrl.Stop()
	src.emit(ChangeEvent{Table: TableMatches, Op: OpUpdate, GroupID: &groupID})
	settle()
	if got := ref.count(); got != 2 {
		t.Fatalf("refresh ran after Stop: %d calls", got)
	}
	if ctrl.State() != StateUnsubscribed {
		t.Fatalf("state = %s, want unsubscribed", ctrl.State())
	}
	<-ctrl.Done()
}

func TestControllerNotLiveReleasesSubscription(t *testing.T) {
	src := &fakeSource{}
	rec := &recorder{}
	ref := &countingRefresh{live: false}
	ctrl := NewController(ControllerConfig{
		Filter:  GroupScope(groupID).Filter(),
		Source:  src,
		Refresh: ref.refresh,
		Deliver: rec.deliver,
	})

	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "mount refresh", func() bool { return rec.count() == 1 })
	waitFor(t, "release", func() bool { _, r := src.counts(); return r == 1 })

	if s, _ := src.counts(); s != 1 {
		t.Fatalf("subscribes = %d, want 1", s)
	}
	if ctrl.State() != StateIdle {
		t.Fatalf("state = %s, want idle", ctrl.State())
	}

	ctrl.Stop()
	if _, r := src.counts(); r != 1 {
		t.Fatalf("static view released %d times, want 1", r)
	}
}

func TestControllerCatchesChangeDuringMountRefresh(t *testing.T) {
	feed := NewBroadcaster()
	rec := &recorder{}

	var mu sync.Mutex
	calls := 0
	ctrl := NewController(ControllerConfig{
		Filter: GroupScope(groupID).Filter(),
		Source: feed,
		Refresh: func(context.Context) (standings.Table, error) {
			mu.Lock()
			calls++
			n := calls
			mu.Unlock()
			if n == 1 {
				// запись коммитится, пока идёт начальное чтение
				feed.Publish(ChangeEvent{Table: TableMatches, Op: OpUpdate, GroupID: &groupID})
			}
			return standings.NewTable(standings.TitleGroup, true, nil), nil
		},
		Deliver: rec.deliver,
	})

	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer ctrl.Stop()

	waitFor(t, "re-read after change in mount window", func() bool { return rec.count() == 2 })
	settle()
	mu.Lock()
	defer mu.Unlock()
	if calls != 2 {
		t.Fatalf("refresh calls = %d, want 2", calls)
	}
	if ctrl.State() != StateSubscribed {
		t.Fatalf("state = %s, want subscribed", ctrl.State())
	}
}

func TestControllerStopDropsInFlightResult(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	rec := &recorder{}
	ctrl := NewController(ControllerConfig{
		Source: &fakeSource{},
		Refresh: func(context.Context) (standings.Table, error) {
			close(started)
			<-release
			return standings.NewTable(standings.TitleGroup, true, nil), nil
		},
		Deliver: rec.deliver,
	})

	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	<-started
	if ctrl.State() != StateRefreshing {
		t.Fatalf("state = %s, want refreshing", ctrl.State())
	}
	ctrl.Stop()
	close(release)
	<-ctrl.Done()

	if got := rec.count(); got != 0 {
		t.Fatalf("result delivered after Stop (%d deliveries)", got)
	}
}

func TestControllerCoalescesTriggers(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	firstStarted := make(chan struct{})
	release := make(chan struct{})
	rec := &recorder{}

	ctrl := NewController(ControllerConfig{
		Refresh: func(context.Context) (standings.Table, error) {
			mu.Lock()
			calls++
			n := calls
			mu.Unlock()
			if n == 1 {
				close(firstStarted)
				<-release
			}
			return standings.NewTable(standings.TitleGroup, false, nil), nil
		},
		Deliver: rec.deliver,
	})

	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	<-firstStarted
	for i := 0; i < 5; i++ {
		ctrl.Trigger()
	}
	close(release)

	waitFor(t, "follow-up refresh", func() bool { return rec.count() == 2 })
	settle()
	if got := rec.count(); got != 2 {
		t.Fatalf("deliveries = %d, want 2", got)
	}
	ctrl.Stop()
}

func TestControllerReleasesSubscriptionOnce(t *testing.T) {
	src := &fakeSource{}
	rec := &recorder{}
	ctrl := NewController(ControllerConfig{
		Source:  src,
		Refresh: (&countingRefresh{live: true}).refresh,
		Deliver: rec.deliver,
	})

	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "subscription", func() bool { s, _ := src.counts(); return s == 1 })

	ctrl.Stop()
	ctrl.Stop()

	if _, r := src.counts(); r != 1 {
		t.Fatalf("subscription released %d times, want 1", r)
	}
	if err := ctrl.Start(context.Background()); !errors.Is(err, ErrControllerStopped) {
		t.Fatalf("Start after Stop = %v, want ErrControllerStopped", err)
	}
}

func TestControllerStartTwice(t *testing.T) {
	ctrl := NewController(ControllerConfig{Refresh: (&countingRefresh{}).refresh})
	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer ctrl.Stop()
	if err := ctrl.Start(context.Background()); !errors.Is(err, ErrControllerStarted) {
		t.Fatalf("second Start = %v, want ErrControllerStarted", err)
	}
}

func TestControllerSubscriptionFallback(t *testing.T) {
	tests := []struct {
		name         string
		primaryErr   error
		fallback     *fakeSource
		wantPrimary  int
		wantFallback int
		wantState    State
	}{
		{name: "primary works", fallback: &fakeSource{}, wantPrimary: 1, wantState: StateSubscribed},
		{name: "falls back", primaryErr: ErrNotListening, fallback: &fakeSource{}, wantFallback: 1, wantState: StateSubscribed},
		{name: "stays static", primaryErr: ErrNotListening, fallback: &fakeSource{err: errors.New("down")}, wantState: StateIdle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := &fakeSource{err: tt.primaryErr}
			rec := &recorder{}
			ctrl := NewController(ControllerConfig{
				Source:   primary,
				Fallback: tt.fallback,
				Refresh:  (&countingRefresh{live: true}).refresh,
				Deliver:  rec.deliver,
				Logger:   discardLogger(),
			})
			if err := ctrl.Start(context.Background()); err != nil {
				t.Fatal(err)
			}
			defer ctrl.Stop()

			waitFor(t, "mount refresh", func() bool { return rec.count() == 1 })
			settle()

			if s, _ := primary.counts(); s != tt.wantPrimary {
				t.Errorf("primary subscribes = %d, want %d", s, tt.wantPrimary)
			}
			if s, _ := tt.fallback.counts(); s != tt.wantFallback {
				t.Errorf("fallback subscribes = %d, want %d", s, tt.wantFallback)
			}
			if got := ctrl.State(); got != tt.wantState {
				t.Errorf("state = %s, want %s", got, tt.wantState)
			}
		})
	}
}

func TestControllerFetchFailureStillSubscribes(t *testing.T) {
	src := &fakeSource{}
	rec := &recorder{}
	ref := &countingRefresh{err: errors.New("connection refused")}
	ctrl := NewController(ControllerConfig{
		Source:  src,
		Refresh: ref.refresh,
		Deliver: rec.deliver,
	})
	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer ctrl.Stop()

	waitFor(t, "subscription", func() bool { s, _ := src.counts(); return s == 1 })
	rec.mu.Lock()
	gotErr := rec.errs[0]
	rec.mu.Unlock()
	if gotErr == nil {
		t.Fatal("failed refresh delivered without error")
	}

	src.emit(ChangeEvent{Op: OpResync})
	waitFor(t, "retry after resync", func() bool { return ref.count() == 2 })
}
