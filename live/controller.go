package live

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/Dosada05/tournament-portal/standings"
)

var (
	ErrControllerStarted = errors.New("controller already started")
	ErrControllerStopped = errors.New("controller stopped")
)

type State int

const (
	StateIdle State = iota
	StateSubscribed
	StateRefreshing
	StateUnsubscribed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubscribed:
		return "subscribed"
	case StateRefreshing:
		return "refreshing"
	case StateUnsubscribed:
		return "unsubscribed"
	}
	return "unknown"
}

// RefreshFunc re-reads and aggregates one standings scope.
type RefreshFunc func(ctx context.Context) (standings.Table, error)

// DeliverFunc receives every accepted refresh result. It runs while the controller
// holds its lock and must not call back into the controller.
type DeliverFunc func(table standings.Table, err error)

type ControllerConfig struct {
	Filter Filter
	// Source is tried first; Fallback is used when subscribing to Source fails.
	Source   ChangeSource
	Fallback ChangeSource
	Refresh  RefreshFunc
	Deliver  DeliverFunc
	Logger   *slog.Logger
}

// Controller keeps one standings view current.
//
// Start subscribes to the change source and then runs the mount refresh on the worker
// goroutine. If that refresh shows a static table the subscription is released; a live
// table (or a failed refresh) keeps it, and every matching event requests another
// refresh. Requests made while a refresh is running coalesce into a single follow-up. Stop releases the subscription and discards any
// result that has not been delivered yet.
type Controller struct {
	cfg     ControllerConfig
	logger  *slog.Logger
	trigger chan struct{}
	done    chan struct{}

	mu        sync.Mutex
	state     State
	started   bool
	attempted bool
	mounting  bool
	token     uint64
	sub       Subscription
	cancel    context.CancelFunc
}

func NewController(cfg ControllerConfig) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Controller{
		cfg:     cfg,
		logger:  logger,
		trigger: make(chan struct{}, 1),
		done:    make(chan struct{}),
		state:   StateIdle,
	}
}

func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.state == StateUnsubscribed:
		c.mu.Unlock()
		return ErrControllerStopped
	case c.started:
		c.mu.Unlock()
		return ErrControllerStarted
	}
	c.started = true
	ctx, c.cancel = context.WithCancel(ctx)
	c.mu.Unlock()

	go c.run(ctx)
	c.Trigger()
	return nil
}

// Trigger requests a refresh. It never blocks.
func (c *Controller) Trigger() {
	c.mu.Lock()
	stopped := c.state == StateUnsubscribed
	c.mu.Unlock()
	if stopped {
		return
	}
	select {
	case c.trigger <- struct{}{}:
	default:
	}
}

// Stop is idempotent. No result is delivered after it returns.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.state == StateUnsubscribed {
		c.mu.Unlock()
		return
	}
	c.state = StateUnsubscribed
	c.token++
	sub, cancel := c.sub, c.cancel
	c.sub = nil
	c.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
	if cancel != nil {
		cancel()
	} else {
		close(c.done)
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Done is closed once the worker goroutine has exited after Stop.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

func (c *Controller) run(ctx context.Context) {
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.trigger:
		}

		// Подписка до первого чтения: изменение, закоммиченное во время
		// начального refresh, ставит в очередь ещё один.
		if c.markMounted() {
			c.subscribe(ctx)
		}

		token, ok := c.begin()
		if !ok {
			return
		}
		table, err := c.cfg.Refresh(ctx)
		if static := c.finish(token, table, err); static != nil {
			static.Unsubscribe()
		}
	}
}

// markMounted reports whether this is the controller's first refresh.
func (c *Controller) markMounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.attempted {
		return false
	}
	c.attempted = true
	c.mounting = true
	return true
}

func (c *Controller) begin() (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateUnsubscribed {
		return 0, false
	}
	c.token++
	c.state = StateRefreshing
	return c.token, true
}

// finish delivers the result of the refresh identified by token unless a newer request
// or Stop superseded it. When the mount refresh shows a static view it detaches the
// subscription and returns it for release outside the lock.
func (c *Controller) finish(token uint64, table standings.Table, err error) Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateUnsubscribed || token != c.token {
		c.logger.Debug("Dropping superseded standings refresh", slog.Uint64("token", token))
		return nil
	}

	var static Subscription
	if c.mounting {
		c.mounting = false
		if err == nil && !table.Live {
			static, c.sub = c.sub, nil
		}
	}

	if c.sub != nil {
		c.state = StateSubscribed
	} else {
		c.state = StateIdle
	}
	if err != nil {
		c.logger.Warn("Standings refresh failed", slog.Any("error", err))
	}
	if c.cfg.Deliver != nil {
		c.cfg.Deliver(table, err)
	}
	return static
}

func (c *Controller) subscribe(ctx context.Context) {
	handler := func(ev ChangeEvent) {
		if c.cfg.Filter.Matches(ev) {
			c.Trigger()
		}
	}

	for i, src := range []ChangeSource{c.cfg.Source, c.cfg.Fallback} {
		if src == nil {
			continue
		}
		sub, err := src.Subscribe(ctx, c.cfg.Filter, handler)
		if err != nil {
			c.logger.Warn("Standings subscription failed",
				slog.Bool("fallback", i > 0), slog.Any("error", err))
			continue
		}

		c.mu.Lock()
		if c.state == StateUnsubscribed {
			c.mu.Unlock()
			sub.Unsubscribe()
			return
		}
		c.sub = sub
		c.state = StateSubscribed
		c.mu.Unlock()
		return
	}

	if c.cfg.Source != nil || c.cfg.Fallback != nil {
		c.logger.Warn("No change source available, standings stay static")
	}
}
