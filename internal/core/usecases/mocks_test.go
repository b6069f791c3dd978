package usecases_test

import (
	"context"
	"errors"
	"sync"

	"github.com/samirrijal/trainengine/internal/core/domain"
)

// --- Mock StationRepository ---

type mockStationRepo struct {
	findForLegFn func(ctx context.Context, from, to string) ([]domain.Station, error)
}

func (m *mockStationRepo) FindForLeg(ctx context.Context, from, to string) ([]domain.Station, error) {
	if m.findForLegFn != nil {
		return m.findForLegFn(ctx, from, to)
	}
	return nil, nil
}

func (m *mockStationRepo) UpsertBatch(ctx context.Context, stations []domain.Station) error {
	return nil
}

// --- Mock CorrelationRepository ---

type mockCorrelationRepo struct {
	mu    sync.Mutex
	calls map[string]int
	codes map[string][]string
	err   error
}

func (m *mockCorrelationRepo) SupplierCodes(ctx context.Context, code string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[code]++
	if m.err != nil {
		return nil, m.err
	}
	return m.codes[code], nil
}

func (m *mockCorrelationRepo) UpsertBatch(ctx context.Context, correlations []domain.SupplierCorrelation) error {
	return nil
}

func (m *mockCorrelationRepo) callCount(code string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[code]
}

// --- Mock CacheService ---

var errCacheMiss = errors.New("cache miss")

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, errCacheMiss
	}
	return v, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

// --- Mock SupplierGateway ---

type priceCall struct {
	ShipID        string
	DepartureDate string
	Accommodation string
	Class         domain.PaxClass
	Bonus         []string
}

type mockSupplier struct {
	timetablesFn     func(ctx context.Context, from, to, date string, pax domain.Passengers) ([]domain.Run, error)
	accommodationsFn func(ctx context.Context, shipID, departureDate string, pax domain.Passengers) ([]domain.Accommodation, error)
	priceFn          func(ctx context.Context, shipID, departureDate, accommodation string, class domain.PaxClass, bonus []string) (float64, error)

	mu              sync.Mutex
	timetableCalls  int
	priceCalls      []priceCall
	accommodationIn []string
}

func (m *mockSupplier) FetchTimetables(ctx context.Context, from, to, date string, pax domain.Passengers) ([]domain.Run, error) {
	m.mu.Lock()
	m.timetableCalls++
	m.mu.Unlock()
	if m.timetablesFn != nil {
		return m.timetablesFn(ctx, from, to, date, pax)
	}
	return nil, nil
}

func (m *mockSupplier) FetchAccommodations(ctx context.Context, shipID, departureDate string, pax domain.Passengers) ([]domain.Accommodation, error) {
	m.mu.Lock()
	m.accommodationIn = append(m.accommodationIn, shipID+"@"+departureDate)
	m.mu.Unlock()
	if m.accommodationsFn != nil {
		return m.accommodationsFn(ctx, shipID, departureDate, pax)
	}
	return nil, nil
}

func (m *mockSupplier) FetchPrice(ctx context.Context, shipID, departureDate, accommodation string, class domain.PaxClass, bonus []string) (float64, error) {
	m.mu.Lock()
	m.priceCalls = append(m.priceCalls, priceCall{shipID, departureDate, accommodation, class, bonus})
	m.mu.Unlock()
	if m.priceFn != nil {
		return m.priceFn(ctx, shipID, departureDate, accommodation, class, bonus)
	}
	return 0, nil
}

func (m *mockSupplier) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timetableCalls + len(m.accommodationIn) + len(m.priceCalls)
}

// --- Mock OfferRepository ---

type mockOfferRepo struct {
	mu      sync.Mutex
	batches map[string][]domain.Offer
	saveErr error
}

func (m *mockOfferRepo) SaveBatch(ctx context.Context, searchID string, offers []domain.Offer) (int, error) {
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.batches == nil {
		m.batches = map[string][]domain.Offer{}
	}
	for _, o := range offers {
		o.SearchID = searchID
		m.batches[searchID] = append(m.batches[searchID], o)
	}
	return len(offers), nil
}

func (m *mockOfferRepo) ListBySearch(ctx context.Context, searchID string) ([]domain.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batches[searchID], nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	events    []*domain.SearchCompleted
	requested []*domain.SearchRequested
	err       error
}

func (m *mockPublisher) PublishSearchCompleted(ctx context.Context, event *domain.SearchCompleted) error {
	m.events = append(m.events, event)
	return m.err
}

func (m *mockPublisher) PublishSearchRequested(ctx context.Context, event *domain.SearchRequested) error {
	m.requested = append(m.requested, event)
	return m.err
}

// --- Fixtures ---

func oneWayRequest(adults, children int) domain.SearchRequest {
	return domain.SearchRequest{
		Journeys: []domain.Leg{{From: "MAD", To: "BCN", Date: "2025-06-01"}},
		Passenger: domain.Passengers{
			Adults:   adults,
			Children: children,
			Total:    adults + children,
		},
	}
}

func servivueloCandidate(id string) domain.StationCandidate {
	return domain.StationCandidate{
		Station: domain.Station{
			ID:              id,
			DestinationCode: "MAD",
			ArrivalCode:     "BCN",
		},
		DestinationSupplierCodes: []string{"SERVIVUELO#MAD1"},
		ArrivalSupplierCodes:     []string{"SERVIVUELO#BCN1"},
	}
}
