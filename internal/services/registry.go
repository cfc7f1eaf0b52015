package services

import "sync"

// SessionRegistry owns the live planning sessions and the shared
// collaborators they are built from. One session per planning surface;
// sessions are never shared across surfaces.
type SessionRegistry struct {
	deps SessionDeps

	mu       sync.Mutex
	sessions map[string]*PlannerSession
}

func NewSessionRegistry(deps SessionDeps) *SessionRegistry {
	return &SessionRegistry{
		deps:     deps,
		sessions: make(map[string]*PlannerSession),
	}
}

// Create starts a new planning session and registers it.
func (r *SessionRegistry) Create() *PlannerSession {
	s := NewPlannerSession(r.deps)

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	return s
}

// Get looks up a live session by id.
func (r *SessionRegistry) Get(id string) (*PlannerSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Close tears down and forgets a session. Closing an unknown id reports
// false.
func (r *SessionRegistry) Close(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		s.Close()
	}
	return ok
}

// CloseAll tears down every live session, used on server shutdown.
func (r *SessionRegistry) CloseAll() {
	r.mu.Lock()
	sessions := make([]*PlannerSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.sessions = make(map[string]*PlannerSession)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
