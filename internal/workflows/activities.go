package workflows

import (
	"context"
	"errors"

	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/trainengine/internal/core/domain"
	"github.com/samirrijal/trainengine/internal/core/usecases"
)

// Searcher runs a search under a pre-assigned id.
// *usecases.SearchService implements it.
type Searcher interface {
	SearchAs(ctx context.Context, searchID string, req domain.SearchRequest) (*usecases.SearchOutcome, error)
}

// SearchActivities holds the activity implementations for the search workflow.
type SearchActivities struct {
	Search Searcher
}

// RunSearch executes the search pipeline and stores the offers under
// input.SearchID. Invalid requests fail without retry.
func (a *SearchActivities) RunSearch(ctx context.Context, input SearchInput) (*usecases.SearchOutcome, error) {
	out, err := a.Search.SearchAs(ctx, input.SearchID, input.Request)
	if errors.Is(err, domain.ErrValidation) {
		return nil, temporal.NewNonRetryableApplicationError(err.Error(), "validation", err)
	}
	return out, err
}
