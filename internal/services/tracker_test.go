package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-route-service/internal/adapters/geolocate"
	"fleet-route-service/internal/domain"
	"fleet-route-service/internal/ports"
)

func TestTrackerDeliversUpdates(t *testing.T) {
	feed := geolocate.NewFeedSource()
	tracker := NewTracker(feed, ports.WatchOptions{HighAccuracy: true})

	var last atomic.Value
	require.NoError(t, tracker.Start(context.Background(), func(u ports.PositionUpdate) {
		last.Store(u.Coordinates)
	}))
	defer tracker.Stop()

	assert.Eventually(t, func() bool { return feed.WatcherCount() == 1 }, time.Second, 5*time.Millisecond)

	feed.Publish(ports.PositionUpdate{Coordinates: domain.Coordinates{Lat: 14.6, Lng: 120.98}})

	assert.Eventually(t, func() bool {
		c, ok := last.Load().(domain.Coordinates)
		return ok && c.Lat == 14.6 && c.Lng == 120.98
	}, time.Second, 5*time.Millisecond)
}

func TestTrackerNeverAccumulatesWatchers(t *testing.T) {
	feed := geolocate.NewFeedSource()
	tracker := NewTracker(feed, ports.WatchOptions{})

	for i := 0; i < 5; i++ {
		require.NoError(t, tracker.Start(context.Background(), func(ports.PositionUpdate) {}))
	}
	defer tracker.Stop()

	// Restarting replaces the previous watch; at most one survives.
	assert.Eventually(t, func() bool { return feed.WatcherCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, tracker.Active())
}

func TestTrackerStopTearsDownWatch(t *testing.T) {
	feed := geolocate.NewFeedSource()
	tracker := NewTracker(feed, ports.WatchOptions{})

	require.NoError(t, tracker.Start(context.Background(), func(ports.PositionUpdate) {}))
	tracker.Stop()

	assert.False(t, tracker.Active())
	assert.Eventually(t, func() bool { return feed.WatcherCount() == 0 }, time.Second, 5*time.Millisecond)

	tracker.Stop() // idempotent
}

func TestFeedSourceDropsStaleFixes(t *testing.T) {
	feed := geolocate.NewFeedSource()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := feed.Watch(ctx, ports.WatchOptions{MaximumAge: 50 * time.Millisecond})
	require.NoError(t, err)

	feed.Publish(ports.PositionUpdate{
		Coordinates: domain.Coordinates{Lat: 1, Lng: 1},
		Timestamp:   time.Now().Add(-time.Second),
	})
	feed.Publish(ports.PositionUpdate{
		Coordinates: domain.Coordinates{Lat: 2, Lng: 2},
	})

	select {
	case u := <-ch:
		assert.Equal(t, 2.0, u.Coordinates.Lat, "stale fix must be dropped, fresh one delivered")
	case <-time.After(time.Second):
		t.Fatal("no fix delivered")
	}
}
