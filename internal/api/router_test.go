package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-route-service/internal/adapters/geocode"
	"fleet-route-service/internal/adapters/geolocate"
	"fleet-route-service/internal/adapters/repositories"
	"fleet-route-service/internal/adapters/routing"
	"fleet-route-service/internal/api/dto"
	"fleet-route-service/internal/domain"
	"fleet-route-service/internal/ports"
	"fleet-route-service/internal/services"
)

type apiFixture struct {
	server *httptest.Server
	store  *repositories.MemTripStore
	feed   *geolocate.FeedSource
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	geometry := []domain.Coordinates{{Lat: 14.6, Lng: 120.9}, {Lat: 14.62, Lng: 120.95}, {Lat: 14.65, Lng: 121.0}}
	provider := &routing.MockRouteProvider{
		Fetch: func(ctx context.Context, coords []domain.Coordinates) (ports.RouteResult, error) {
			return ports.RouteResult{Geometry: geometry, DistanceMeters: 7900, DurationSeconds: 720}, nil
		},
	}

	store := repositories.NewMemTripStore()
	feed := geolocate.NewFeedSource()

	sessions := services.NewSessionRegistry(services.SessionDeps{
		Geocoder: &geocode.StaticGeocoder{
			Names: map[domain.Coordinates]string{
				{Lat: 14.6, Lng: 120.9}:  "Ermita, Manila",
				{Lat: 14.65, Lng: 121.0}: "San Juan City",
			},
		},
		Routes:    provider,
		Positions: feed,
		Store:     store,
		Config:    services.SessionConfig{SearchDebounce: 10 * time.Millisecond},
	})
	t.Cleanup(sessions.CloseAll)

	server := httptest.NewServer(NewRouter(sessions, feed))
	t.Cleanup(server.Close)

	return &apiFixture{server: server, store: store, feed: feed}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, f.server.URL+path, &buf)
	require.NoError(t, err)

	res, err := f.server.Client().Do(req)
	require.NoError(t, err)
	return res
}

func decodeBody[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	defer res.Body.Close()

	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))
	return v
}

func (f *apiFixture) createSession(t *testing.T) string {
	t.Helper()

	res := f.do(t, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	return decodeBody[dto.CreateSessionResponse](t, res).SessionID
}

func TestHealthEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	res := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ok", decodeBody[map[string]string](t, res)["status"])
}

func TestClickThenViewShowsMarkers(t *testing.T) {
	f := newAPIFixture(t)
	id := f.createSession(t)

	res := f.do(t, http.MethodPost, "/sessions/"+id+"/click", dto.ClickRequest{Lat: 14.6, Lng: 120.9})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	wp := decodeBody[dto.WaypointResponse](t, res)
	assert.Equal(t, "Ermita, Manila", wp.Name)

	res = f.do(t, http.MethodPost, "/sessions/"+id+"/click", dto.ClickRequest{Lat: 14.65, Lng: 121.0})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	res.Body.Close()

	assert.Eventually(t, func() bool {
		res := f.do(t, http.MethodGet, "/sessions/"+id, nil)
		view := decodeBody[dto.ViewResponse](t, res)
		return len(view.RouteLine) == 3
	}, time.Second, 10*time.Millisecond)

	res = f.do(t, http.MethodGet, "/sessions/"+id, nil)
	view := decodeBody[dto.ViewResponse](t, res)
	require.Len(t, view.Markers, 2)
	assert.Equal(t, "start", view.Markers[0].Role)
	assert.Equal(t, "green", view.Markers[0].Color)
	assert.Equal(t, "end", view.Markers[1].Role)
	assert.Equal(t, 7900, view.RoutedDistanceMeters)
	assert.InDelta(t, 7.6, view.TotalKm, 0.2)
}

func TestUnknownSessionIs404(t *testing.T) {
	f := newAPIFixture(t)

	res := f.do(t, http.MethodGet, "/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	res.Body.Close()

	res = f.do(t, http.MethodPost, "/sessions/nope/click", dto.ClickRequest{Lat: 1, Lng: 2})
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	res.Body.Close()
}

func TestStrictBodyDecoding(t *testing.T) {
	f := newAPIFixture(t)
	id := f.createSession(t)

	req, err := http.NewRequest(http.MethodPost, f.server.URL+"/sessions/"+id+"/click",
		bytes.NewBufferString(`{"lat": 1, "lng": 2, "zoom": 13}`))
	require.NoError(t, err)

	res, err := f.server.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestRemoveWaypoint(t *testing.T) {
	f := newAPIFixture(t)
	id := f.createSession(t)

	res := f.do(t, http.MethodPost, "/sessions/"+id+"/click", dto.ClickRequest{Lat: 14.6, Lng: 120.9})
	wp := decodeBody[dto.WaypointResponse](t, res)

	res = f.do(t, http.MethodDelete, "/sessions/"+id+"/waypoints/"+wp.WaypointID, nil)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	res.Body.Close()

	res = f.do(t, http.MethodGet, "/sessions/"+id, nil)
	view := decodeBody[dto.ViewResponse](t, res)
	assert.Empty(t, view.Markers)
	assert.Equal(t, "idle", view.State)
}

func TestTrackingAndPositionFeed(t *testing.T) {
	f := newAPIFixture(t)
	id := f.createSession(t)

	res := f.do(t, http.MethodPost, "/sessions/"+id+"/tracking", dto.TrackingRequest{Enabled: true})
	require.Equal(t, http.StatusNoContent, res.StatusCode)
	res.Body.Close()

	assert.Eventually(t, func() bool { return f.feed.WatcherCount() == 1 }, time.Second, 5*time.Millisecond)

	res = f.do(t, http.MethodPost, "/sessions/"+id+"/position", dto.PositionRequest{Lat: 14.61, Lng: 120.92})
	require.Equal(t, http.StatusAccepted, res.StatusCode)
	res.Body.Close()

	assert.Eventually(t, func() bool {
		res := f.do(t, http.MethodGet, "/sessions/"+id, nil)
		view := decodeBody[dto.ViewResponse](t, res)
		return view.Tracking && view.Center != nil && view.Center.Lat == 14.61
	}, time.Second, 10*time.Millisecond)
}

func TestExpenseLedgerEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	id := f.createSession(t)

	res := f.do(t, http.MethodPost, "/sessions/"+id+"/expenses", nil)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	exp := decodeBody[dto.ExpenseResponse](t, res)

	res = f.do(t, http.MethodPatch, "/sessions/"+id+"/expenses/"+exp.ID, dto.ExpenseRequest{Reason: "fuel", Amount: 900})
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	res.Body.Close()

	res = f.do(t, http.MethodGet, "/sessions/"+id, nil)
	view := decodeBody[dto.ViewResponse](t, res)
	require.Len(t, view.Expenses, 1)
	assert.Equal(t, "fuel", view.Expenses[0].Reason)

	res = f.do(t, http.MethodDelete, "/sessions/"+id+"/expenses/"+exp.ID, nil)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	res.Body.Close()
}

func TestSubmitValidationSurfacesAs400(t *testing.T) {
	f := newAPIFixture(t)
	id := f.createSession(t)

	res := f.do(t, http.MethodPost, "/sessions/"+id+"/submit", dto.SubmitRequest{})
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestSubmitPersistsTrip(t *testing.T) {
	f := newAPIFixture(t)
	id := f.createSession(t)

	for _, c := range []dto.ClickRequest{{Lat: 14.6, Lng: 120.9}, {Lat: 14.65, Lng: 121.0}} {
		res := f.do(t, http.MethodPost, "/sessions/"+id+"/click", c)
		require.Equal(t, http.StatusCreated, res.StatusCode)
		res.Body.Close()
	}

	res := f.do(t, http.MethodPost, "/sessions/"+id+"/submit", dto.SubmitRequest{
		RequesterID: "u1",
		DriverID:    "d1",
		VehicleID:   "v1",
		Reason:      "site inspection",
		StartTime:   time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC),
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	tripID := decodeBody[dto.SubmitResponse](t, res).TripID

	assert.Contains(t, f.store.Trips, tripID)
	assert.Len(t, f.store.RoutePoints[tripID], 2)
}

func TestSeededSessionAndComplete(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()

	tripID, err := f.store.CreateTrip(ctx, domain.TripRequest{RequesterID: "u1", DriverID: "d1", VehicleID: "v1"})
	require.NoError(t, err)
	require.NoError(t, f.store.AddRoutePoint(ctx, tripID, domain.RoutePoint{Seq: 1, Name: "A", Lat: 14.6, Lng: 120.9}))
	require.NoError(t, f.store.AddRoutePoint(ctx, tripID, domain.RoutePoint{Seq: 2, Name: "B", Lat: 14.65, Lng: 121.0}))

	res := f.do(t, http.MethodPost, "/sessions", dto.CreateSessionRequest{TripID: tripID})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	id := decodeBody[dto.CreateSessionResponse](t, res).SessionID

	res = f.do(t, http.MethodGet, "/sessions/"+id, nil)
	view := decodeBody[dto.ViewResponse](t, res)
	require.Len(t, view.Markers, 2)
	assert.Equal(t, tripID, view.TripID)

	res = f.do(t, http.MethodPost, "/sessions/"+id+"/complete", nil)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	res.Body.Close()
	assert.True(t, f.store.Completed[tripID])
}

func TestCloseSessionThenGone(t *testing.T) {
	f := newAPIFixture(t)
	id := f.createSession(t)

	res := f.do(t, http.MethodDelete, "/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	res.Body.Close()

	res = f.do(t, http.MethodGet, "/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	res.Body.Close()

	res = f.do(t, http.MethodDelete, "/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	res.Body.Close()
}

func TestRequestIDHeaderEchoed(t *testing.T) {
	f := newAPIFixture(t)

	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/health", f.server.URL), nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "test-req-1")

	res, err := f.server.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, "test-req-1", res.Header.Get("X-Request-ID"))
}
