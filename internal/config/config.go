package config

import (
	"os"
	"strconv"
	"time"
)

// Get returns the environment value for key, or fallback when unset or
// empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetFloat returns the environment value parsed as a float, or fallback
// when unset or unparseable.
func GetFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

// GetDuration returns the environment value parsed as a duration, or
// fallback when unset or unparseable.
func GetDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
