package handlers

import (
	"errors"
	"log"
	"net/http"

	"fleet-route-service/internal/api/dto"
	"fleet-route-service/internal/domain"
	"fleet-route-service/internal/ports"
	"fleet-route-service/internal/services"
)

// SessionHandler exposes the planning session lifecycle and its gesture
// endpoints. Every mutation returns quickly; route recomputation and name
// resolution run inside the session and surface through the view state.
type SessionHandler struct {
	Sessions *services.SessionRegistry
	Feed     interface {
		Publish(update ports.PositionUpdate)
	}
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSessionRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	s := h.Sessions.Create()

	if req.TripID != "" {
		if err := s.SeedFromTrip(r.Context(), req.TripID); err != nil {
			h.Sessions.Close(s.ID)
			log.Printf("seed session failed: trip=%s err=%v", req.TripID, err)
			writeError(w, r, http.StatusInternalServerError, "could not load trip")
			return
		}
	}

	writeJSON(w, r, http.StatusCreated, dto.CreateSessionResponse{SessionID: s.ID})
}

func (h *SessionHandler) View(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, viewResponse(s.View()))
}

func (h *SessionHandler) Click(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req dto.ClickRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	wp, err := s.Click(r.Context(), req.Lat, req.Lng)
	if err != nil {
		h.writeSessionError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, waypointResponse(wp))
}

func (h *SessionHandler) Search(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req dto.SearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.TypeSearch(req.Query); err != nil {
		h.writeSessionError(w, r, err)
		return
	}
	// The provider call is debounced; results land in the view state.
	w.WriteHeader(http.StatusAccepted)
}

func (h *SessionHandler) SearchResults(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	view := s.View()
	results := make([]dto.PlaceResponse, 0, len(view.SearchResults))
	for _, p := range view.SearchResults {
		results = append(results, dto.PlaceResponse{Name: p.Name, Lat: p.Lat, Lng: p.Lng})
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"query":   view.SearchQuery,
		"results": results,
	})
}

func (h *SessionHandler) Select(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req dto.SelectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	wp, err := s.SelectSearchResult(req.Index)
	if err != nil {
		h.writeSessionError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, waypointResponse(wp))
}

func (h *SessionHandler) DragMarker(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req dto.DragMarkerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	found, err := s.DragMarker(req.WaypointID, req.Lat, req.Lng)
	if err != nil {
		h.writeSessionError(w, r, err)
		return
	}
	if !found {
		writeError(w, r, http.StatusNotFound, "waypoint not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) DragHandle(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req dto.DragHandleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	wp, err := s.DragHandle(req.HandleIndex, req.Lat, req.Lng)
	if err != nil {
		h.writeSessionError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, waypointResponse(wp))
}

func (h *SessionHandler) RemoveWaypoint(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := s.RemoveWaypoint(r.PathValue("wid")); err != nil {
		h.writeSessionError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) Tracking(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req dto.TrackingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.SetTracking(req.Enabled); err != nil {
		h.writeSessionError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Position ingests a device fix. Fixes fan out through the shared feed;
// only sessions with tracking enabled react to them.
func (h *SessionHandler) Position(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.session(w, r); !ok {
		return
	}

	var req dto.PositionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	update := ports.PositionUpdate{
		Coordinates:    domain.Coordinates{Lat: req.Lat, Lng: req.Lng},
		AccuracyMeters: req.AccuracyMeters,
	}
	if req.Timestamp != nil {
		update.Timestamp = *req.Timestamp
	}
	h.Feed.Publish(update)

	w.WriteHeader(http.StatusAccepted)
}

func (h *SessionHandler) AddExpense(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	e, err := s.AddExpense()
	if err != nil {
		h.writeSessionError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, dto.ExpenseResponse{ID: e.ID, Reason: e.Reason, Amount: e.Amount})
}

func (h *SessionHandler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req dto.ExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.UpdateExpense(r.PathValue("eid"), req.Reason, req.Amount); err != nil {
		h.writeSessionError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) RemoveExpense(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := s.RemoveExpense(r.PathValue("eid")); err != nil {
		h.writeSessionError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req dto.SubmitRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tripID, err := s.Submit(r.Context(), services.SubmitInput{
		RequesterID: req.RequesterID,
		DriverID:    req.DriverID,
		VehicleID:   req.VehicleID,
		Reason:      req.Reason,
		StartTime:   req.StartTime,
	})
	if err != nil {
		h.writeSessionError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, dto.SubmitResponse{TripID: tripID})
}

func (h *SessionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := s.Complete(r.Context()); err != nil {
		h.writeSessionError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) DismissWarning(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	s.DismissWarning()
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	if !h.Sessions.Close(r.PathValue("id")) {
		writeError(w, r, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*services.PlannerSession, bool) {
	s, ok := h.Sessions.Get(r.PathValue("id"))
	if !ok {
		writeError(w, r, http.StatusNotFound, "session not found")
		return nil, false
	}
	return s, true
}

func (h *SessionHandler) writeSessionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrSessionClosed):
		writeError(w, r, http.StatusGone, "session closed")
	case services.IsValidation(err):
		writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		log.Printf("session operation failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func waypointResponse(wp domain.Waypoint) dto.WaypointResponse {
	return dto.WaypointResponse{
		WaypointID: wp.ID,
		Name:       wp.Name,
		Lat:        wp.Lat,
		Lng:        wp.Lng,
	}
}

func viewResponse(v services.ViewState) dto.ViewResponse {
	res := dto.ViewResponse{
		State:                 string(v.State),
		Markers:               make([]dto.MarkerResponse, 0, len(v.Markers)),
		RouteLine:             make([]dto.PointResponse, 0, len(v.RouteLine)),
		Handles:               make([]dto.HandleResponse, 0, len(v.Handles)),
		SegmentsKm:            v.Distances.SegmentsKm,
		TotalKm:               v.Distances.TotalKm,
		RoutedDistanceMeters:  v.RoutedDistanceMeters,
		RoutedDurationSeconds: v.RoutedDurationSeconds,
		Tracking:              v.Tracking,
		Warning:               v.Warning,
		SearchQuery:           v.SearchQuery,
		SearchResults:         make([]dto.PlaceResponse, 0, len(v.SearchResults)),
		Expenses:              make([]dto.ExpenseResponse, 0, len(v.Expenses)),
		TripID:                v.TripID,
	}

	for _, m := range v.Markers {
		res.Markers = append(res.Markers, dto.MarkerResponse{
			WaypointID: m.WaypointID,
			Number:     m.Number,
			Role:       string(m.Role),
			Color:      m.Color,
			Name:       m.Name,
			Lat:        m.Lat,
			Lng:        m.Lng,
		})
	}
	for _, p := range v.RouteLine {
		res.RouteLine = append(res.RouteLine, dto.PointResponse{Lat: p.Lat, Lng: p.Lng})
	}
	for i, hd := range v.Handles {
		res.Handles = append(res.Handles, dto.HandleResponse{
			Index: i,
			Lat:   hd.Position.Lat,
			Lng:   hd.Position.Lng,
		})
	}
	for _, p := range v.SearchResults {
		res.SearchResults = append(res.SearchResults, dto.PlaceResponse{Name: p.Name, Lat: p.Lat, Lng: p.Lng})
	}
	for _, e := range v.Expenses {
		res.Expenses = append(res.Expenses, dto.ExpenseResponse{ID: e.ID, Reason: e.Reason, Amount: e.Amount})
	}

	if v.Center != nil {
		res.Center = &dto.PointResponse{Lat: v.Center.Lat, Lng: v.Center.Lng}
	}
	if v.Bounds != nil {
		res.Bounds = &dto.BoundsResponse{
			MinLat: v.Bounds.MinLat,
			MinLng: v.Bounds.MinLng,
			MaxLat: v.Bounds.MaxLat,
			MaxLng: v.Bounds.MaxLng,
		}
	}

	return res
}
