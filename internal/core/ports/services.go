package ports

import (
	"context"

	"github.com/samirrijal/trainengine/internal/core/domain"
)

// SupplierGateway calls the third-party timetable/fare supplier.
// Every failure is returned as a *domain.SupplierError; there are no retries.
type SupplierGateway interface {
	FetchTimetables(ctx context.Context, from, to, date string, pax domain.Passengers) ([]domain.Run, error)
	FetchAccommodations(ctx context.Context, shipID, departureDate string, pax domain.Passengers) ([]domain.Accommodation, error)
	FetchPrice(ctx context.Context, shipID, departureDate, accommodation string, class domain.PaxClass, bonus []string) (float64, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishSearchCompleted(ctx context.Context, event *domain.SearchCompleted) error
	PublishSearchRequested(ctx context.Context, event *domain.SearchRequested) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
}
