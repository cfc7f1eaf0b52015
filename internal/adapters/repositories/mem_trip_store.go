package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"fleet-route-service/internal/domain"
)

// MemTripStore is an in-memory TripStore for tests. FailRoutePointSeqs
// injects per-point write failures to exercise best-effort persistence.
type MemTripStore struct {
	FailRoutePointSeqs map[int]bool
	FailCreate         bool

	mu          sync.Mutex
	Trips       map[string]domain.TripRequest
	RoutePoints map[string][]domain.RoutePoint
	Expenses    map[string][]domain.Expense
	Completed   map[string]bool
}

func NewMemTripStore() *MemTripStore {
	return &MemTripStore{
		Trips:       make(map[string]domain.TripRequest),
		RoutePoints: make(map[string][]domain.RoutePoint),
		Expenses:    make(map[string][]domain.Expense),
		Completed:   make(map[string]bool),
	}
}

func (s *MemTripStore) CreateTrip(ctx context.Context, req domain.TripRequest) (string, error) {
	if s.FailCreate {
		return "", errors.New("mem trip store: create failure injected")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.Trips[id] = req
	return id, nil
}

func (s *MemTripStore) AddRoutePoint(ctx context.Context, tripID string, point domain.RoutePoint) error {
	if s.FailRoutePointSeqs[point.Seq] {
		return fmt.Errorf("mem trip store: write failure injected for seq %d", point.Seq)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.Trips[tripID]; !ok {
		return fmt.Errorf("mem trip store: unknown trip %q", tripID)
	}
	s.RoutePoints[tripID] = append(s.RoutePoints[tripID], point)
	return nil
}

func (s *MemTripStore) ListRoutePoints(ctx context.Context, tripID string) ([]domain.RoutePoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.RoutePoint, len(s.RoutePoints[tripID]))
	copy(out, s.RoutePoints[tripID])
	return out, nil
}

func (s *MemTripStore) RecordExpense(ctx context.Context, tripID string, expense domain.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Expenses[tripID] = append(s.Expenses[tripID], expense)
	return nil
}

func (s *MemTripStore) CompleteTrip(ctx context.Context, tripID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Completed[tripID] = true
	return nil
}
