package services

import (
	"github.com/google/uuid"

	"fleet-route-service/internal/domain"
)

// Sequence is the ordered, mutable waypoint list for one planning session.
// Order reflects travel order; ids are unique and never reused. The zero
// value is not usable, construct with NewSequence.
//
// Sequence is not safe for concurrent use on its own; the owning session
// serializes access.
type Sequence struct {
	waypoints []domain.Waypoint
	revision  uint64

	// Per-waypoint drag generation. A reverse-geocode resolution started
	// for an older position is discarded when a newer drag has occurred.
	positionGen map[string]uint64
}

func NewSequence() *Sequence {
	return &Sequence{positionGen: make(map[string]uint64)}
}

func (s *Sequence) Len() int { return len(s.waypoints) }

// Revision increments on every structural or positional change. Consumers
// use it to tell sequence states apart.
func (s *Sequence) Revision() uint64 { return s.revision }

// Snapshot returns a copy of the current waypoint list.
func (s *Sequence) Snapshot() []domain.Waypoint {
	out := make([]domain.Waypoint, len(s.waypoints))
	copy(out, s.waypoints)
	return out
}

// Get returns the waypoint with the given id.
func (s *Sequence) Get(id string) (domain.Waypoint, bool) {
	for _, wp := range s.waypoints {
		if wp.ID == id {
			return wp, true
		}
	}
	return domain.Waypoint{}, false
}

// Append adds a waypoint to the end of the sequence, assigning a fresh id
// when the caller does not supply one. Returns the stored waypoint.
func (s *Sequence) Append(wp domain.Waypoint) domain.Waypoint {
	if wp.ID == "" {
		wp.ID = uuid.NewString()
	}
	if wp.Name == "" {
		wp.Name = domain.PlaceholderName(wp.Lat, wp.Lng)
	}

	s.waypoints = append(s.waypoints, wp)
	s.revision++
	return wp
}

// InsertAt places a waypoint at the given position, shifting later entries.
// Positions outside [0, Len()] are clamped. Used for handle-drag insertion.
func (s *Sequence) InsertAt(pos int, wp domain.Waypoint) domain.Waypoint {
	if wp.ID == "" {
		wp.ID = uuid.NewString()
	}
	if wp.Name == "" {
		wp.Name = domain.PlaceholderName(wp.Lat, wp.Lng)
	}

	if pos < 0 {
		pos = 0
	}
	if pos > len(s.waypoints) {
		pos = len(s.waypoints)
	}

	s.waypoints = append(s.waypoints, domain.Waypoint{})
	copy(s.waypoints[pos+1:], s.waypoints[pos:])
	s.waypoints[pos] = wp
	s.revision++
	return wp
}

// RemoveAt removes the waypoint with the given id. Removing an absent id is
// a silent no-op; remaining waypoints keep their identities.
func (s *Sequence) RemoveAt(id string) {
	for i, wp := range s.waypoints {
		if wp.ID == id {
			s.waypoints = append(s.waypoints[:i], s.waypoints[i+1:]...)
			delete(s.positionGen, id)
			s.revision++
			return
		}
	}
}

// UpdatePosition moves the waypoint with the given id and resets its name
// to the coordinate placeholder pending re-resolution. The returned
// generation must be passed to ResolveName so that stale resolutions from
// an earlier position are discarded. ok is false when the id is absent.
func (s *Sequence) UpdatePosition(id string, lat, lng float64) (gen uint64, ok bool) {
	for i := range s.waypoints {
		if s.waypoints[i].ID != id {
			continue
		}

		s.waypoints[i].Lat = lat
		s.waypoints[i].Lng = lng
		s.waypoints[i].Name = domain.PlaceholderName(lat, lng)
		s.positionGen[id]++
		s.revision++
		return s.positionGen[id], true
	}
	return 0, false
}

// ResolveName applies an asynchronously resolved name. The name is ignored
// when the waypoint has been dragged again (or removed) since the
// resolution started.
func (s *Sequence) ResolveName(id string, gen uint64, name string) bool {
	if s.positionGen[id] != gen {
		return false
	}

	for i := range s.waypoints {
		if s.waypoints[i].ID == id {
			s.waypoints[i].Name = name
			return true
		}
	}
	return false
}

// ReplaceAll swaps the whole sequence, used when seeding a session from a
// trip's persisted route or clearing the planner. Fresh ids are assigned to
// entries without one.
func (s *Sequence) ReplaceAll(points []domain.Waypoint) {
	s.waypoints = s.waypoints[:0]
	s.positionGen = make(map[string]uint64)

	for _, wp := range points {
		if wp.ID == "" {
			wp.ID = uuid.NewString()
		}
		if wp.Name == "" {
			wp.Name = domain.PlaceholderName(wp.Lat, wp.Lng)
		}
		s.waypoints = append(s.waypoints, wp)
	}
	s.revision++
}
