package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/trainengine/internal/core/domain"
	"github.com/samirrijal/trainengine/internal/core/usecases"
)

// SearchInput is the input for the search workflow. SearchID is handed out
// to the client before the workflow starts and becomes the batch id.
type SearchInput struct {
	SearchID string
	Request  domain.SearchRequest
}

// searchTimeout bounds one pipeline run: station lookups, every supplier
// call and the bulk insert.
const searchTimeout = 5 * time.Minute

// SearchWorkflow runs a queued search. The supplier calls are not retried,
// and neither is the activity: a second attempt would store a second batch
// under the same id.
func SearchWorkflow(ctx workflow.Context, input SearchInput) (*usecases.SearchOutcome, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting search workflow", "searchId", input.SearchID, "legs", len(input.Request.Journeys))

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: searchTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	})

	var outcome usecases.SearchOutcome
	if err := workflow.ExecuteActivity(ctx, "RunSearch", input).Get(ctx, &outcome); err != nil {
		logger.Error("Search failed", "searchId", input.SearchID, "error", err)
		return nil, err
	}

	logger.Info("Search finished", "searchId", outcome.SearchID,
		"offers", outcome.Offers, "availability", outcome.Availability)
	return &outcome, nil
}
