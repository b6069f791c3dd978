package workflows

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/client"

	"github.com/samirrijal/trainengine/internal/core/domain"
)

// WorkflowIDPrefix prefixes the search id to form the workflow id.
const WorkflowIDPrefix = "journey-search-"

// WorkflowStarter is the part of client.Client used to start searches.
type WorkflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// StartSearch starts the search workflow for a queued request. The workflow
// id is derived from the search id, so a redelivered request joins the run
// already started for it instead of storing a second batch.
func StartSearch(ctx context.Context, c WorkflowStarter, taskQueue string, event *domain.SearchRequested) error {
	if event == nil || event.SearchID == "" {
		return fmt.Errorf("%w: search id is required", domain.ErrValidation)
	}

	opts := client.StartWorkflowOptions{
		ID:        WorkflowIDPrefix + event.SearchID,
		TaskQueue: taskQueue,
	}
	if _, err := c.ExecuteWorkflow(ctx, opts, SearchWorkflow, SearchInput{
		SearchID: event.SearchID,
		Request:  event.Request,
	}); err != nil {
		return fmt.Errorf("start search workflow %s: %w", opts.ID, err)
	}
	return nil
}
