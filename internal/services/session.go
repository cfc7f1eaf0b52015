package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"fleet-route-service/internal/domain"
	"fleet-route-service/internal/geo"
	"fleet-route-service/internal/ports"
)

// ErrSessionClosed is returned by operations on a closed planning session.
var ErrSessionClosed = errors.New("planning session closed")

// SessionState reflects what the planning surface is doing.
type SessionState string

const (
	// No waypoints placed yet.
	StateIdle SessionState = "idle"
	// At least one waypoint, no route fetch in flight.
	StateEditing SessionState = "editing"
	// A route fetch is in flight.
	StateRouting SessionState = "routing"
)

// A waypoint as rendered on the map: 1-based number, index-derived role and
// color. Rebuilt from scratch on every change; nothing here is stored.
type Marker struct {
	WaypointID string
	Number     int
	Role       domain.Role
	Color      string
	Name       string
	Lat        float64
	Lng        float64
}

// Bounding box fitted around the current waypoints.
type Bounds struct {
	MinLat float64
	MinLng float64
	MaxLat float64
	MaxLng float64
}

// ViewState is the full renderable snapshot of a planning session.
type ViewState struct {
	State                 SessionState
	Markers               []Marker
	RouteLine             []domain.Coordinates
	Handles               []domain.RouteHandle
	Distances             domain.DistanceSummary
	RoutedDistanceMeters  int
	RoutedDurationSeconds int
	Center                *domain.Coordinates
	Bounds                *Bounds
	Tracking              bool
	Warning               string
	SearchQuery           string
	SearchResults         []domain.Place
	Expenses              []domain.Expense
	TripID                string
}

type SessionConfig struct {
	SearchDebounce time.Duration
	Watch          ports.WatchOptions
}

// External collaborators a session needs.
type SessionDeps struct {
	Geocoder  ports.Geocoder
	Routes    ports.RouteProvider
	Positions ports.PositionSource
	Store     ports.TripStore
	Config    SessionConfig
}

// PlannerSession is the orchestrator bound to one planning surface. It owns
// the waypoint sequence exclusively, wires gestures (click, drag, search
// selection, handle drag) to mutations, keeps route and distance data
// current, and layers live tracking on top without ever letting it touch
// the waypoints.
type PlannerSession struct {
	ID string

	geocoder ports.Geocoder
	computer *RouteComputer
	search   *searchBox
	tracker  *Tracker
	store    ports.TripStore

	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	seq           *Sequence
	searchQuery   string
	searchResults []domain.Place
	center        *domain.Coordinates
	expenses      []domain.Expense
	tripID        string
	closed        bool
}

func NewPlannerSession(deps SessionDeps) *PlannerSession {
	ctx, cancel := context.WithCancel(context.Background())

	s := &PlannerSession{
		ID:       uuid.NewString(),
		geocoder: deps.Geocoder,
		computer: NewRouteComputer(deps.Routes),
		tracker:  NewTracker(deps.Positions, deps.Config.Watch),
		store:    deps.Store,
		ctx:      ctx,
		cancel:   cancel,
		seq:      NewSequence(),
	}

	s.search = newSearchBox(ctx, deps.Geocoder, deps.Config.SearchDebounce, s.applySearchResults)

	return s
}

// SeedFromTrip loads a trip's persisted route points into the session so a
// driver can resume an active trip. Fresh waypoint ids are assigned.
func (s *PlannerSession) SeedFromTrip(ctx context.Context, tripID string) error {
	points, err := s.store.ListRoutePoints(ctx, tripID)
	if err != nil {
		return fmt.Errorf("seed session: list route points: %w", err)
	}

	waypoints := make([]domain.Waypoint, 0, len(points))
	for _, p := range points {
		waypoints = append(waypoints, domain.Waypoint{
			Name:        p.Name,
			Coordinates: domain.Coordinates{Lat: p.Lat, Lng: p.Lng},
		})
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.tripID = tripID
	s.seq.ReplaceAll(waypoints)
	token := s.computer.Begin()
	snapshot := s.seq.Snapshot()
	s.mu.Unlock()

	go s.runRoute(token, snapshot)
	return nil
}

// Click adds a waypoint at a clicked map coordinate. The click position is
// reverse geocoded first so the waypoint arrives named (or with the
// coordinate fallback).
func (s *PlannerSession) Click(ctx context.Context, lat, lng float64) (domain.Waypoint, error) {
	name := s.geocoder.ReverseGeocode(ctx, lat, lng)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.Waypoint{}, ErrSessionClosed
	}
	wp := s.seq.Append(domain.Waypoint{
		Name:        name,
		Coordinates: domain.Coordinates{Lat: lat, Lng: lng},
	})
	token := s.computer.Begin()
	snapshot := s.seq.Snapshot()
	s.mu.Unlock()

	go s.runRoute(token, snapshot)
	return wp, nil
}

// TypeSearch registers a search keystroke. Queries below the minimum
// length clear the result list without scheduling any provider call.
func (s *PlannerSession) TypeSearch(query string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.searchQuery = query
	if len([]rune(query)) < ports.MinQueryLen {
		s.searchResults = nil
	}
	s.mu.Unlock()

	s.search.Type(query)
	return nil
}

func (s *PlannerSession) applySearchResults(query string, places []domain.Place) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.searchQuery != query {
		return
	}
	s.searchResults = places
}

// SelectSearchResult appends the chosen candidate as a waypoint, using the
// provider-supplied name directly, and recenters the view on it. The
// result list is cleared like the original search box.
func (s *PlannerSession) SelectSearchResult(index int) (domain.Waypoint, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.Waypoint{}, ErrSessionClosed
	}
	if index < 0 || index >= len(s.searchResults) {
		s.mu.Unlock()
		return domain.Waypoint{}, fmt.Errorf("select search result: index %d out of range", index)
	}

	place := s.searchResults[index]
	wp := s.seq.Append(domain.Waypoint{
		Name:        place.Name,
		Coordinates: domain.Coordinates{Lat: place.Lat, Lng: place.Lng},
	})
	s.center = &domain.Coordinates{Lat: place.Lat, Lng: place.Lng}
	s.searchQuery = ""
	s.searchResults = nil
	token := s.computer.Begin()
	snapshot := s.seq.Snapshot()
	s.mu.Unlock()

	go s.runRoute(token, snapshot)
	return wp, nil
}

// DragMarker moves an existing waypoint and re-resolves its name
// asynchronously. Dragging an unknown id is a silent no-op. The returned
// bool reports whether the waypoint was found.
func (s *PlannerSession) DragMarker(id string, lat, lng float64) (bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, ErrSessionClosed
	}
	gen, ok := s.seq.UpdatePosition(id, lat, lng)
	if !ok {
		s.mu.Unlock()
		return false, nil
	}
	token := s.computer.Begin()
	snapshot := s.seq.Snapshot()
	s.mu.Unlock()

	go s.runRoute(token, snapshot)
	go s.resolveName(id, gen, lat, lng)
	return true, nil
}

// DragHandle inserts a new intermediate waypoint where a route handle was
// dropped: immediately after the nearest preceding waypoint in travel
// order. The handle itself is synthetic and is not moved.
func (s *PlannerSession) DragHandle(handleIndex int, lat, lng float64) (domain.Waypoint, error) {
	path := s.computer.Path()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.Waypoint{}, ErrSessionClosed
	}
	if handleIndex < 0 || handleIndex >= len(path.Handles) {
		s.mu.Unlock()
		return domain.Waypoint{}, fmt.Errorf("drag handle: index %d out of range", handleIndex)
	}

	pos := InsertPositionForHandle(s.seq.Snapshot(), path.Geometry, path.Handles[handleIndex].GeometryIndex)
	wp := s.seq.InsertAt(pos, domain.Waypoint{
		Coordinates: domain.Coordinates{Lat: lat, Lng: lng},
	})
	token := s.computer.Begin()
	snapshot := s.seq.Snapshot()
	s.mu.Unlock()

	go s.runRoute(token, snapshot)
	go s.resolveName(wp.ID, 0, lat, lng)
	return wp, nil
}

// RemoveWaypoint deletes a waypoint by id; absent ids are a silent no-op.
func (s *PlannerSession) RemoveWaypoint(id string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.seq.RemoveAt(id)
	token := s.computer.Begin()
	snapshot := s.seq.Snapshot()
	s.mu.Unlock()

	go s.runRoute(token, snapshot)
	return nil
}

// SetTracking toggles the live device-position follow. Enabling replaces
// any existing watch; updates recenter the view and never mutate the
// waypoint sequence.
func (s *PlannerSession) SetTracking(enabled bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.mu.Unlock()

	if !enabled {
		s.tracker.Stop()
		return nil
	}

	return s.tracker.Start(s.ctx, func(update ports.PositionUpdate) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		c := update.Coordinates
		s.center = &c
	})
}

// AddExpense appends a blank expense entry and returns it.
func (s *PlannerSession) AddExpense() (domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.Expense{}, ErrSessionClosed
	}

	e := domain.Expense{ID: uuid.NewString()}
	s.expenses = append(s.expenses, e)
	return e, nil
}

// UpdateExpense edits an expense entry; unknown ids are a silent no-op.
func (s *PlannerSession) UpdateExpense(id, reason string, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}

	for i := range s.expenses {
		if s.expenses[i].ID == id {
			s.expenses[i].Reason = reason
			s.expenses[i].Amount = amount
			break
		}
	}
	return nil
}

// RemoveExpense deletes an expense entry; unknown ids are a silent no-op.
func (s *PlannerSession) RemoveExpense(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}

	for i := range s.expenses {
		if s.expenses[i].ID == id {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			break
		}
	}
	return nil
}

// Submit validates and persists the planned trip, then clears the planner
// the way the trip form resets after a successful request.
func (s *PlannerSession) Submit(ctx context.Context, input SubmitInput) (string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", ErrSessionClosed
	}
	waypoints := s.seq.Snapshot()
	s.mu.Unlock()

	total := geo.Summarize(waypoints).TotalKm

	tripID, err := SubmitTrip(ctx, s.store, input, waypoints, total)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	if !s.closed {
		s.seq.ReplaceAll(nil)
		s.searchQuery = ""
		s.searchResults = nil
		s.center = nil
		token := s.computer.Begin()
		snapshot := s.seq.Snapshot()
		s.mu.Unlock()
		go s.runRoute(token, snapshot)
	} else {
		s.mu.Unlock()
	}

	return tripID, nil
}

// Complete finishes the session's active trip, recording its expenses
// first. Refused while any expense has a non-positive amount.
func (s *PlannerSession) Complete(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	tripID := s.tripID
	expenses := make([]domain.Expense, len(s.expenses))
	copy(expenses, s.expenses)
	s.mu.Unlock()

	if tripID == "" {
		return &ValidationError{Msg: "session has no active trip"}
	}

	return CompleteTrip(ctx, s.store, tripID, expenses)
}

// DismissWarning clears the pending routing warning.
func (s *PlannerSession) DismissWarning() {
	s.computer.DismissWarning()
}

// View assembles the renderable snapshot: markers with index-derived
// numbering and roles, the current route line and handles, distance
// figures, and the fitted bounds.
func (s *PlannerSession) View() ViewState {
	path := s.computer.Path()
	warning := s.computer.Warning()
	busy := s.computer.Busy()
	tracking := s.tracker.Active()

	s.mu.Lock()
	defer s.mu.Unlock()

	waypoints := s.seq.Snapshot()

	markers := make([]Marker, 0, len(waypoints))
	for i, wp := range waypoints {
		role := domain.RoleAt(i, len(waypoints))
		markers = append(markers, Marker{
			WaypointID: wp.ID,
			Number:     i + 1,
			Role:       role,
			Color:      domain.MarkerColor(role),
			Name:       wp.Name,
			Lat:        wp.Lat,
			Lng:        wp.Lng,
		})
	}

	state := StateIdle
	switch {
	case len(waypoints) == 0:
		state = StateIdle
	case busy:
		state = StateRouting
	default:
		state = StateEditing
	}

	view := ViewState{
		State:                 state,
		Markers:               markers,
		RouteLine:             path.Geometry,
		Handles:               path.Handles,
		Distances:             geo.Summarize(waypoints),
		RoutedDistanceMeters:  path.DistanceMeters,
		RoutedDurationSeconds: path.DurationSeconds,
		Tracking:              tracking,
		Warning:               warning,
		SearchQuery:           s.searchQuery,
		SearchResults:         append([]domain.Place(nil), s.searchResults...),
		Expenses:              append([]domain.Expense(nil), s.expenses...),
		TripID:                s.tripID,
	}

	if s.center != nil {
		c := *s.center
		view.Center = &c
	} else if len(waypoints) == 1 {
		c := waypoints[0].Coordinates
		view.Center = &c
	}

	if len(waypoints) > 1 {
		b := Bounds{
			MinLat: waypoints[0].Lat, MaxLat: waypoints[0].Lat,
			MinLng: waypoints[0].Lng, MaxLng: waypoints[0].Lng,
		}
		for _, wp := range waypoints[1:] {
			if wp.Lat < b.MinLat {
				b.MinLat = wp.Lat
			}
			if wp.Lat > b.MaxLat {
				b.MaxLat = wp.Lat
			}
			if wp.Lng < b.MinLng {
				b.MinLng = wp.Lng
			}
			if wp.Lng > b.MaxLng {
				b.MaxLng = wp.Lng
			}
		}
		view.Bounds = &b
	}

	return view
}

// Close tears down the session: the tracker watch stops, pending search
// timers are cancelled, and in-flight geocode or route callbacks can no
// longer mutate state.
func (s *PlannerSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.search.Close()
	s.tracker.Stop()
}

func (s *PlannerSession) runRoute(token uint64, waypoints []domain.Waypoint) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}

	s.computer.Run(s.ctx, token, waypoints)
}

func (s *PlannerSession) resolveName(id string, gen uint64, lat, lng float64) {
	name := s.geocoder.ReverseGeocode(s.ctx, lat, lng)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.seq.ResolveName(id, gen, name)
}
