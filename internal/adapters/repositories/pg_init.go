package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the Postgres schema for trips and their ordered route points.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createTripsQuery := `
	CREATE TABLE IF NOT EXISTS trips (
		id TEXT PRIMARY KEY,
		requester_id TEXT NOT NULL,
		driver_id TEXT NOT NULL,
		vehicle_id TEXT NOT NULL,
		reason TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'requested',
		distance_travelled_km NUMERIC(10, 2) NOT NULL,
		start_time TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createRoutePointsQuery := `
	CREATE TABLE IF NOT EXISTS trip_route_points (
		trip_id TEXT NOT NULL REFERENCES trips(id),
		seq INTEGER NOT NULL,
		name TEXT NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		lng DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (trip_id, seq)
	);
	`

	createExpensesQuery := `
	CREATE TABLE IF NOT EXISTS trip_expenses (
		id TEXT PRIMARY KEY,
		trip_id TEXT NOT NULL REFERENCES trips(id),
		reason TEXT NOT NULL,
		amount NUMERIC(10, 2) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_trip_route_points_trip
	ON trip_route_points(trip_id, seq);
	`

	statements := []string{
		createTripsQuery,
		createRoutePointsQuery,
		createExpensesQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
