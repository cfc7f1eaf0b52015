package api

import (
	"net/http"

	"fleet-route-service/internal/adapters/geolocate"
	"fleet-route-service/internal/api/handlers"
	"fleet-route-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(sessions *services.SessionRegistry, feed *geolocate.FeedSource) http.Handler {
	mux := http.NewServeMux()

	sessionHandler := &handlers.SessionHandler{
		Sessions: sessions,
		Feed:     feed,
	}

	mux.HandleFunc("GET /health", handlers.Health)

	mux.HandleFunc("POST /sessions", sessionHandler.Create)
	mux.HandleFunc("GET /sessions/{id}", sessionHandler.View)
	mux.HandleFunc("DELETE /sessions/{id}", sessionHandler.Close)

	mux.HandleFunc("POST /sessions/{id}/click", sessionHandler.Click)
	mux.HandleFunc("POST /sessions/{id}/search", sessionHandler.Search)
	mux.HandleFunc("GET /sessions/{id}/search", sessionHandler.SearchResults)
	mux.HandleFunc("POST /sessions/{id}/select", sessionHandler.Select)
	mux.HandleFunc("POST /sessions/{id}/drag", sessionHandler.DragMarker)
	mux.HandleFunc("POST /sessions/{id}/handle-drag", sessionHandler.DragHandle)
	mux.HandleFunc("DELETE /sessions/{id}/waypoints/{wid}", sessionHandler.RemoveWaypoint)

	mux.HandleFunc("POST /sessions/{id}/tracking", sessionHandler.Tracking)
	mux.HandleFunc("POST /sessions/{id}/position", sessionHandler.Position)

	mux.HandleFunc("POST /sessions/{id}/expenses", sessionHandler.AddExpense)
	mux.HandleFunc("PATCH /sessions/{id}/expenses/{eid}", sessionHandler.UpdateExpense)
	mux.HandleFunc("DELETE /sessions/{id}/expenses/{eid}", sessionHandler.RemoveExpense)

	mux.HandleFunc("POST /sessions/{id}/dismiss-warning", sessionHandler.DismissWarning)

	mux.HandleFunc("POST /sessions/{id}/submit", sessionHandler.Submit)
	mux.HandleFunc("POST /sessions/{id}/complete", sessionHandler.Complete)

	return requestIDMiddleware(loggingMiddleware(mux))
}
