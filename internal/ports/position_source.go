package ports

import (
	"context"
	"time"

	"fleet-route-service/internal/domain"
)

// A single device-position reading.
type PositionUpdate struct {
	Coordinates    domain.Coordinates
	AccuracyMeters float64
	Timestamp      time.Time
}

// Watch configuration mirroring the geolocation primitive: high accuracy,
// bounded staleness, bounded acquisition timeout.
type WatchOptions struct {
	HighAccuracy bool
	MaximumAge   time.Duration
	Timeout      time.Duration
}

// Contract for a continuous device-position feed. The returned channel is
// closed when the watch ends; source errors are logged by implementations
// and never surface as terminal failures.
type PositionSource interface {
	Watch(ctx context.Context, opts WatchOptions) (<-chan PositionUpdate, error)
}
