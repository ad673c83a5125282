package live

import (
	"context"
	"errors"
	"time"
)

const DefaultPollInterval = 15 * time.Second

// PollSource emits a tick event every Interval. Ticks are skipped while Visible
// reports false, so a scope nobody watches is not re-read.
type PollSource struct {
	Interval time.Duration
	Visible  func() bool
}

func NewPollSource(interval time.Duration, visible func() bool) *PollSource {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &PollSource{Interval: interval, Visible: visible}
}

func (p *PollSource) Subscribe(ctx context.Context, f Filter, fn func(ChangeEvent)) (Subscription, error) {
	if p.Interval <= 0 {
		return nil, errors.New("poll interval must be positive")
	}

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(p.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if p.Visible != nil && !p.Visible() {
					continue
				}
				fn(ChangeEvent{Op: OpTick})
			}
		}
	}()

	return newSubscription(cancel), nil
}
