package geolocate

import (
	"context"
	"sync"
	"time"

	"fleet-route-service/internal/ports"
)

// FeedSource adapts externally reported position fixes (a device client
// posting over HTTP) into a PositionSource. Each Watch gets its own
// subscription; Publish fans out to all of them.
type FeedSource struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]subscription
}

type subscription struct {
	ch   chan ports.PositionUpdate
	opts ports.WatchOptions
}

func NewFeedSource() *FeedSource {
	return &FeedSource{subs: make(map[int]subscription)}
}

// Watch subscribes to published fixes until ctx is done. The returned
// channel is closed on unsubscribe.
func (f *FeedSource) Watch(ctx context.Context, opts ports.WatchOptions) (<-chan ports.PositionUpdate, error) {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	sub := subscription{ch: make(chan ports.PositionUpdate, 16), opts: opts}
	f.subs[id] = sub
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
		close(sub.ch)
	}()

	return sub.ch, nil
}

// Publish delivers a fix to all current watchers. Fixes older than a
// watcher's MaximumAge are dropped for that watcher; slow watchers lose
// fixes rather than blocking the publisher.
func (f *FeedSource) Publish(update ports.PositionUpdate) {
	if update.Timestamp.IsZero() {
		update.Timestamp = time.Now()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, sub := range f.subs {
		if sub.opts.MaximumAge > 0 && time.Since(update.Timestamp) > sub.opts.MaximumAge {
			continue
		}
		select {
		case sub.ch <- update:
		default:
		}
	}
}

// WatcherCount returns the number of active subscriptions.
func (f *FeedSource) WatcherCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
