package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/twpayne/go-polyline"

	"fleet-route-service/internal/domain"
	"fleet-route-service/internal/platform/obs"
	"fleet-route-service/internal/ports"
)

// OSRMClient implements RouteProvider against an OSRM route/v1 endpoint
// (the public router.project-osrm.org or a self-hosted instance).
//
// Transient failures are retried with backoff; route-not-found responses
// are reported as errors without retrying. The client is safe for
// concurrent use.
type OSRMClient struct {
	session *http.Client
	baseURL string
	profile string
}

func NewOSRMClient(baseURL, profile string) *OSRMClient {
	if baseURL == "" {
		baseURL = "https://router.project-osrm.org"
	}
	if profile == "" {
		profile = "driving"
	}

	return &OSRMClient{
		session: &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		profile: profile,
	}
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Geometry string  `json:"geometry"`
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

// FetchRoute requests a path through the given coordinates in travel order.
func (o *OSRMClient) FetchRoute(ctx context.Context, coords []domain.Coordinates) (_ ports.RouteResult, err error) {
	defer obs.Time(ctx, "osrm.FetchRoute")(&err)

	if len(coords) < 2 {
		return ports.RouteResult{}, errors.New("fetch route: at least two coordinates required")
	}

	url := o.routeURL(coords)

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, url)
	})
	if err != nil {
		return ports.RouteResult{}, fmt.Errorf("fetch route: execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.RouteResult{}, fmt.Errorf("fetch route: decode response: %w", err)
	}

	// OSRM signals route-not-found with a non-Ok code and HTTP 200.
	if decoded.Code != "Ok" {
		return ports.RouteResult{}, fmt.Errorf("fetch route: provider code %q", decoded.Code)
	}
	if len(decoded.Routes) == 0 {
		return ports.RouteResult{}, errors.New("fetch route: response contains no routes")
	}

	route := decoded.Routes[0]

	pairs, _, err := polyline.DecodeCoords([]byte(route.Geometry))
	if err != nil {
		return ports.RouteResult{}, fmt.Errorf("fetch route: decode polyline: %w", err)
	}

	geometry := make([]domain.Coordinates, 0, len(pairs))
	for _, p := range pairs {
		geometry = append(geometry, domain.Coordinates{Lat: p[0], Lng: p[1]})
	}

	return ports.RouteResult{
		Geometry:        geometry,
		DistanceMeters:  int(math.Round(route.Distance)),
		DurationSeconds: int(math.Round(route.Duration)),
	}, nil
}

// routeURL builds the route/v1 request URL. OSRM expects semicolon-separated
// lng,lat pairs in the path.
func (o *OSRMClient) routeURL(coords []domain.Coordinates) string {
	var sb strings.Builder
	for i, c := range coords {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(strconv.FormatFloat(c.Lng, 'f', 6, 64))
		sb.WriteByte(',')
		sb.WriteString(strconv.FormatFloat(c.Lat, 'f', 6, 64))
	}

	return fmt.Sprintf(
		"%s/route/v1/%s/%s?overview=full&geometries=polyline",
		o.baseURL, o.profile, sb.String(),
	)
}
