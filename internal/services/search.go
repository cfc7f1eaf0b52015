package services

import (
	"context"
	"sync"
	"time"

	"fleet-route-service/internal/domain"
	"fleet-route-service/internal/ports"
)

// Quiet period after the last keystroke before a search call is issued.
const defaultSearchDebounce = 750 * time.Millisecond

// searchBox debounces forward-search keystrokes. A call is issued only
// after the quiet period elapses with no further input; every keystroke
// resets the window, and queries below the minimum length never schedule a
// call at all. Responses that arrive after a newer keystroke are discarded.
type searchBox struct {
	ctx       context.Context
	geocoder  ports.Geocoder
	quiet     time.Duration
	onResults func(query string, places []domain.Place)

	mu     sync.Mutex
	timer  *time.Timer
	gen    uint64
	closed bool
}

func newSearchBox(
	ctx context.Context,
	geocoder ports.Geocoder,
	quiet time.Duration,
	onResults func(query string, places []domain.Place),
) *searchBox {
	if quiet <= 0 {
		quiet = defaultSearchDebounce
	}
	return &searchBox{ctx: ctx, geocoder: geocoder, quiet: quiet, onResults: onResults}
}

// Type registers a keystroke. Returns false when the query is below the
// minimum length, in which case no call will be made for it.
func (b *searchBox) Type(query string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return false
	}

	// Any keystroke supersedes pending and in-flight work for older input.
	b.gen++
	gen := b.gen

	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}

	if len([]rune(query)) < ports.MinQueryLen {
		return false
	}

	b.timer = time.AfterFunc(b.quiet, func() { b.fire(gen, query) })
	return true
}

func (b *searchBox) fire(gen uint64, query string) {
	b.mu.Lock()
	stale := b.closed || gen != b.gen
	b.mu.Unlock()
	if stale {
		return
	}

	places := b.geocoder.SearchPlaces(b.ctx, query)

	b.mu.Lock()
	stale = b.closed || gen != b.gen
	b.mu.Unlock()
	if stale {
		return
	}

	b.onResults(query, places)
}

// Close stops any pending timer and suppresses late responses. Safe to call
// more than once.
func (b *searchBox) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
