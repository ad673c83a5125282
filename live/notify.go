package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/lib/pq"
)

// NotifyChannel is the channel the notify_portal_change trigger publishes on.
const NotifyChannel = "portal_changes"

const (
	reconnectBackoff = 5 * time.Second
	maxReconnect     = 30 * time.Second
	pingInterval     = 90 * time.Second
)

var ErrNotListening = errors.New("change feed is not connected")

// NotifySource turns PostgreSQL LISTEN/NOTIFY traffic into change events.
// One dedicated listener connection serves every subscriber.
type NotifySource struct {
	dsn       string
	logger    *slog.Logger
	bus       *Broadcaster
	listening atomic.Bool
}

func NewNotifySource(dsn string, logger *slog.Logger) *NotifySource {
	return &NotifySource{
		dsn:    dsn,
		logger: logger,
		bus:    NewBroadcaster(),
	}
}

// Subscribe fails while the listener is down so callers can fall back to polling.
func (s *NotifySource) Subscribe(ctx context.Context, f Filter, fn func(ChangeEvent)) (Subscription, error) {
	if !s.listening.Load() {
		return nil, ErrNotListening
	}
	return s.bus.Subscribe(ctx, f, fn)
}

// Run listens on NotifyChannel until ctx is cancelled. The underlying pq.Listener
// reconnects on its own; after a reconnect every subscriber receives OpResync.
// Intended to be called with `go`.
func (s *NotifySource) Run(ctx context.Context) error {
	listener := pq.NewListener(s.dsn, reconnectBackoff, maxReconnect, s.onListenerEvent)
	defer listener.Close()

	if err := listener.Listen(NotifyChannel); err != nil {
		return fmt.Errorf("LISTEN %s: %w", NotifyChannel, err)
	}
	s.listening.Store(true)
	defer s.listening.Store(false)
	s.logger.Info("Change feed listener connected", slog.String("channel", NotifyChannel))

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Change feed listener stopped (context cancelled)")
			return nil

		case n := <-listener.Notify:
			if n == nil {
				s.bus.Publish(ChangeEvent{Op: OpResync})
				continue
			}
			ev, err := decodeNotification(n.Extra)
			if err != nil {
				s.logger.Warn("Failed to parse change notification",
					slog.String("payload", n.Extra), slog.Any("error", err))
				continue
			}
			s.bus.Publish(ev)

		case <-ticker.C:
			go func() {
				if err := listener.Ping(); err != nil {
					s.logger.Warn("Change feed ping failed", slog.Any("error", err))
				}
			}()
		}
	}
}

func (s *NotifySource) onListenerEvent(ev pq.ListenerEventType, err error) {
	switch ev {
	case pq.ListenerEventConnected, pq.ListenerEventReconnected:
		s.listening.Store(true)
		if ev == pq.ListenerEventReconnected {
			s.logger.Info("Change feed listener reconnected")
		}
	case pq.ListenerEventDisconnected:
		s.listening.Store(false)
		s.logger.Error("Change feed listener disconnected, reconnecting...", slog.Any("error", err))
	case pq.ListenerEventConnectionAttemptFailed:
		s.logger.Warn("Change feed reconnect attempt failed", slog.Any("error", err))
	}
}

func decodeNotification(payload string) (ChangeEvent, error) {
	var ev ChangeEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return ChangeEvent{}, err
	}
	if ev.Table == "" {
		return ChangeEvent{}, errors.New("notification without table")
	}
	return ev, nil
}
