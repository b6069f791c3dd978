package ports

import (
	"context"

	"github.com/samirrijal/trainengine/internal/core/domain"
)

// StationRepository reads the journey destination tree.
type StationRepository interface {
	// FindForLeg returns stations whose destination tree contains from and
	// whose arrival tree contains to. No match is an empty slice, not an error.
	FindForLeg(ctx context.Context, from, to string) ([]domain.Station, error)
	UpsertBatch(ctx context.Context, stations []domain.Station) error
}

// CorrelationRepository reads supplier station correlations.
type CorrelationRepository interface {
	// SupplierCodes returns the supplier codes correlated with an internal
	// station code, or nil when there is no correlation record.
	SupplierCodes(ctx context.Context, code string) ([]string, error)
	UpsertBatch(ctx context.Context, correlations []domain.SupplierCorrelation) error
}

// OfferRepository persists assembled offers. Each search appends a batch;
// rows are never updated.
type OfferRepository interface {
	// SaveBatch bulk-inserts offers under searchID and returns how many rows
	// were written. No transaction is used.
	SaveBatch(ctx context.Context, searchID string, offers []domain.Offer) (int, error)
	ListBySearch(ctx context.Context, searchID string) ([]domain.Offer, error)
}
