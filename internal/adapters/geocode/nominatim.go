package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"fleet-route-service/internal/adapters/cache"
	"fleet-route-service/internal/domain"
	"fleet-route-service/internal/platform/obs"
	"fleet-route-service/internal/ports"
)

// NominatimClient implements Geocoder against a Nominatim-compatible
// endpoint (OSM Nominatim, LocationIQ).
//
// It coordinates:
//   - Request rate limiting (public Nominatim allows 1 req/s)
//   - Optional memoization via a Redis place cache
//   - Deterministic fallbacks so callers never see a failure
//
// The client is safe for concurrent use.
type NominatimClient struct {
	session *http.Client
	baseURL string
	apiKey  string
	agent   string
	limiter *rate.Limiter
	cache   *cache.RedisPlaceCache
}

type Config struct {
	BaseURL        string
	APIKey         string
	UserAgent      string
	RequestsPerSec float64
	Timeout        time.Duration
}

func NewNominatimClient(cfg Config, placeCache *cache.RedisPlaceCache) *NominatimClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://nominatim.openstreetmap.org"
	}
	if cfg.RequestsPerSec == 0 {
		cfg.RequestsPerSec = 1
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "fleet-route-service"
	}

	return &NominatimClient{
		session: &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		agent:   cfg.UserAgent,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1),
		cache:   placeCache,
	}
}

// ReverseGeocode resolves a coordinate pair to a display name. On any
// failure (network, rate limit, malformed or empty response) it returns the
// coordinate placeholder instead, so callers never handle an error.
func (n *NominatimClient) ReverseGeocode(ctx context.Context, lat, lng float64) string {
	if n.cache != nil {
		if name, ok, err := n.cache.GetName(ctx, lat, lng); err != nil {
			log.Printf("reverse geocode cache read failed: %v", err)
		} else if ok {
			return name
		}
	}

	name, err := n.reverse(ctx, lat, lng)
	if err != nil {
		log.Printf("reverse geocode failed lat=%.5f lng=%.5f err=%v", lat, lng, err)
		return domain.PlaceholderName(lat, lng)
	}

	if n.cache != nil {
		if err := n.cache.PutName(ctx, lat, lng, name); err != nil {
			log.Printf("reverse geocode cache write failed: %v", err)
		}
	}

	return name
}

func (n *NominatimClient) reverse(ctx context.Context, lat, lng float64) (_ string, err error) {
	defer obs.Time(ctx, "geocode.reverse")(&err)

	if err := n.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("reverse geocode: rate limit wait: %w", err)
	}

	params := url.Values{
		"lat":    {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":    {strconv.FormatFloat(lng, 'f', -1, 64)},
		"format": {"jsonv2"},
	}
	n.sign(params)

	var decoded struct {
		DisplayName string `json:"display_name"`
	}
	if err := n.getJSON(ctx, n.baseURL+"/reverse?"+params.Encode(), &decoded); err != nil {
		return "", err
	}

	if decoded.DisplayName == "" {
		return "", errors.New("reverse geocode: response missing display_name")
	}

	return decoded.DisplayName, nil
}

// SearchPlaces resolves a free-text query to candidate places. Queries
// shorter than MinQueryLen never reach the provider; failures yield an
// empty list.
func (n *NominatimClient) SearchPlaces(ctx context.Context, query string) []domain.Place {
	if len([]rune(query)) < ports.MinQueryLen {
		return nil
	}

	if n.cache != nil {
		if places, ok, err := n.cache.GetPlaces(ctx, query); err != nil {
			log.Printf("place search cache read failed: %v", err)
		} else if ok {
			return places
		}
	}

	places, err := n.search(ctx, query)
	if err != nil {
		log.Printf("place search failed query=%q err=%v", query, err)
		return nil
	}

	if n.cache != nil {
		if err := n.cache.PutPlaces(ctx, query, places); err != nil {
			log.Printf("place search cache write failed: %v", err)
		}
	}

	return places
}

func (n *NominatimClient) search(ctx context.Context, query string) (_ []domain.Place, err error) {
	defer obs.Time(ctx, "geocode.search")(&err)

	if err := n.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("place search: rate limit wait: %w", err)
	}

	params := url.Values{
		"q":      {query},
		"format": {"json"},
	}
	n.sign(params)

	var decoded []struct {
		PlaceID     json.Number `json:"place_id"`
		DisplayName string      `json:"display_name"`
		Lat         string      `json:"lat"`
		Lon         string      `json:"lon"`
	}
	if err := n.getJSON(ctx, n.baseURL+"/search?"+params.Encode(), &decoded); err != nil {
		return nil, err
	}

	places := make([]domain.Place, 0, len(decoded))
	for _, r := range decoded {
		lat, latErr := strconv.ParseFloat(r.Lat, 64)
		lng, lngErr := strconv.ParseFloat(r.Lon, 64)
		if latErr != nil || lngErr != nil {
			// Skip candidates with unparseable coordinates rather than
			// failing the whole result set.
			continue
		}

		places = append(places, domain.Place{
			Name:       r.DisplayName,
			Lat:        lat,
			Lng:        lng,
			ExternalID: r.PlaceID.String(),
		})
	}

	return places, nil
}

// sign appends the provider API key when one is configured
// (LocationIQ-style key query parameter).
func (n *NominatimClient) sign(params url.Values) {
	if n.apiKey != "" {
		params.Set("key", n.apiKey)
	}
}

func (n *NominatimClient) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", n.agent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.session.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
