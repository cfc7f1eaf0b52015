package services

import (
	"context"
	"fmt"
	"sync"

	"fleet-route-service/internal/ports"
)

// Tracker manages the live device-position watch for an active trip.
// At most one watch exists per tracker: starting again tears down the
// previous watch first, so watchers never accumulate. Position updates
// drive view recentering only and never touch the waypoint sequence.
type Tracker struct {
	source ports.PositionSource
	opts   ports.WatchOptions

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewTracker(source ports.PositionSource, opts ports.WatchOptions) *Tracker {
	return &Tracker{source: source, opts: opts}
}

// Start begins following the device position, replacing any existing watch.
// onPosition is invoked from the watch goroutine for every update until the
// watch is stopped or ctx is done.
func (t *Tracker) Start(ctx context.Context, onPosition func(ports.PositionUpdate)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}

	wctx, cancel := context.WithCancel(ctx)
	ch, err := t.source.Watch(wctx, t.opts)
	if err != nil {
		cancel()
		return fmt.Errorf("start tracking: watch: %w", err)
	}
	t.cancel = cancel

	go func() {
		for update := range ch {
			onPosition(update)
		}
	}()

	return nil
}

// Stop tears down the current watch. Safe to call when not tracking.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

// Active reports whether a watch is currently registered.
func (t *Tracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}
