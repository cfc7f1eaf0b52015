package main

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"

	"fleet-route-service/internal/adapters/cache"
	"fleet-route-service/internal/adapters/geocode"
	"fleet-route-service/internal/adapters/geolocate"
	"fleet-route-service/internal/adapters/repositories"
	"fleet-route-service/internal/adapters/routing"
	"fleet-route-service/internal/api"
	"fleet-route-service/internal/config"
	"fleet-route-service/internal/platform/db"
	"fleet-route-service/internal/ports"
	"fleet-route-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, Redis, Nominatim, OSRM) behind
// ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	port := config.Get("PORT", "8080")

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	sqlDB, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer sqlDB.Close()

	// Place lookups are memoized in Redis so repeated clicks and searches
	// skip the geocoding provider entirely.
	var placeCache *cache.RedisPlaceCache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		placeCache = cache.NewRedisPlaceCache(client, config.GetDuration("GEOCODE_CACHE_TTL", 24*time.Hour))
	} else {
		log.Println("REDIS_ADDR not set, geocode caching disabled")
	}

	geocoder := geocode.NewNominatimClient(geocode.Config{
		BaseURL:        config.Get("GEOCODER_BASE_URL", ""),
		APIKey:         os.Getenv("GEOCODER_API_KEY"),
		UserAgent:      config.Get("GEOCODER_USER_AGENT", "fleet-route-service/1.0"),
		RequestsPerSec: config.GetFloat("GEOCODER_RPS", 0),
	}, placeCache)

	routes := routing.NewOSRMClient(
		config.Get("OSRM_BASE_URL", ""),
		config.Get("OSRM_PROFILE", "driving"),
	)

	feed := geolocate.NewFeedSource()
	store := repositories.NewPgTripStore(sqlDB)

	sessions := services.NewSessionRegistry(services.SessionDeps{
		Geocoder:  geocoder,
		Routes:    routes,
		Positions: feed,
		Store:     store,
		Config: services.SessionConfig{
			SearchDebounce: config.GetDuration("SEARCH_DEBOUNCE", 0),
			Watch: ports.WatchOptions{
				HighAccuracy: true,
				MaximumAge:   config.GetDuration("POSITION_MAX_AGE", 0),
			},
		},
	})
	defer sessions.CloseAll()

	router := api.NewRouter(sessions, feed)

	// Timeouts are tuned for routing calls against external providers.
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}
