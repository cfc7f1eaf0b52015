package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"fleet-route-service/internal/domain"
	"fleet-route-service/internal/platform/obs"
)

// PgTripStore is the Postgres-backed TripStore.
type PgTripStore struct {
	DB *sql.DB
}

func NewPgTripStore(db *sql.DB) *PgTripStore {
	return &PgTripStore{DB: db}
}

// Persist a trip record and return its identifier. Route points are written
// separately by the caller (best-effort, see AddRoutePoint).
func (s *PgTripStore) CreateTrip(ctx context.Context, req domain.TripRequest) (_ string, err error) {
	defer obs.Time(ctx, "trips.CreateTrip")(&err)

	if s.DB == nil {
		return "", errors.New("trip store: db is nil")
	}

	tripID := uuid.NewString()

	q := `
	INSERT INTO trips (id, requester_id, driver_id, vehicle_id, reason, status, distance_travelled_km, start_time)
	VALUES ($1, $2, $3, $4, $5, 'requested', $6, $7);
	`

	_, err = s.DB.ExecContext(ctx, q,
		tripID,
		req.RequesterID,
		req.DriverID,
		req.VehicleID,
		strings.TrimSpace(req.Reason),
		req.TotalKm,
		req.StartTime,
	)
	if err != nil {
		return "", fmt.Errorf("create trip: insert: %w", err)
	}

	return tripID, nil
}

// Persist a single ordered route point for a trip.
func (s *PgTripStore) AddRoutePoint(ctx context.Context, tripID string, point domain.RoutePoint) error {
	if s.DB == nil {
		return errors.New("trip store: db is nil")
	}

	q := `
	INSERT INTO trip_route_points (trip_id, seq, name, lat, lng)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (trip_id, seq) DO UPDATE
	SET name = EXCLUDED.name,
		lat = EXCLUDED.lat,
		lng = EXCLUDED.lng;
	`

	if _, err := s.DB.ExecContext(ctx, q, tripID, point.Seq, point.Name, point.Lat, point.Lng); err != nil {
		return fmt.Errorf("add route point: trip=%s seq=%d: %w", tripID, point.Seq, err)
	}

	return nil
}

// Retrieve a trip's route points ordered by sequence.
func (s *PgTripStore) ListRoutePoints(ctx context.Context, tripID string) (_ []domain.RoutePoint, err error) {
	defer obs.Time(ctx, "trips.ListRoutePoints")(&err)

	if s.DB == nil {
		return nil, errors.New("trip store: db is nil")
	}

	q := `
	SELECT seq, name, lat, lng
	FROM trip_route_points
	WHERE trip_id = $1
	ORDER BY seq;
	`

	rows, err := s.DB.QueryContext(ctx, q, tripID)
	if err != nil {
		return nil, fmt.Errorf("list route points: query: %w", err)
	}
	defer rows.Close()

	var out []domain.RoutePoint
	for rows.Next() {
		var p domain.RoutePoint
		if err := rows.Scan(&p.Seq, &p.Name, &p.Lat, &p.Lng); err != nil {
			return nil, fmt.Errorf("list route points: scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list route points: row iteration: %w", err)
	}

	return out, nil
}

// Record an expense against an active trip.
func (s *PgTripStore) RecordExpense(ctx context.Context, tripID string, expense domain.Expense) error {
	if s.DB == nil {
		return errors.New("trip store: db is nil")
	}

	id := expense.ID
	if id == "" {
		id = uuid.NewString()
	}

	q := `
	INSERT INTO trip_expenses (id, trip_id, reason, amount)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (id) DO UPDATE
	SET reason = EXCLUDED.reason,
		amount = EXCLUDED.amount;
	`

	if _, err := s.DB.ExecContext(ctx, q, id, tripID, expense.Reason, expense.Amount); err != nil {
		return fmt.Errorf("record expense: trip=%s: %w", tripID, err)
	}

	return nil
}

// Mark a trip completed.
func (s *PgTripStore) CompleteTrip(ctx context.Context, tripID string) error {
	if s.DB == nil {
		return errors.New("trip store: db is nil")
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE trips SET status = 'completed' WHERE id = $1;`, tripID)
	if err != nil {
		return fmt.Errorf("complete trip: trip=%s: %w", tripID, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("complete trip: trip=%s not found", tripID)
	}

	return nil
}
