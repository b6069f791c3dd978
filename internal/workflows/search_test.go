package workflows_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/samirrijal/trainengine/internal/core/domain"
	"github.com/samirrijal/trainengine/internal/core/usecases"
	"github.com/samirrijal/trainengine/internal/workflows"
)

const searchID = "6f1c2a8e-3c55-4c0e-9a57-0d9d4f1b2c3d"

type fakeSearcher struct {
	mu    sync.Mutex
	calls []string
	fn    func(searchID string, req domain.SearchRequest) (*usecases.SearchOutcome, error)
}

func (f *fakeSearcher) SearchAs(ctx context.Context, id string, req domain.SearchRequest) (*usecases.SearchOutcome, error) {
	f.mu.Lock()
	f.calls = append(f.calls, id)
	f.mu.Unlock()
	return f.fn(id, req)
}

func (f *fakeSearcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func input() workflows.SearchInput {
	return workflows.SearchInput{
		SearchID: searchID,
		Request: domain.SearchRequest{
			Journeys:  []domain.Leg{{From: "MAD", To: "BCN", Date: "2025-06-01"}},
			Passenger: domain.Passengers{Adults: 1, Total: 1},
		},
	}
}

func runWorkflow(t *testing.T, s workflows.Searcher) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterActivity(&workflows.SearchActivities{Search: s})
	env.ExecuteWorkflow(workflows.SearchWorkflow, input())
	require.True(t, env.IsWorkflowCompleted())
	return env
}

func TestSearchWorkflow_Success(t *testing.T) {
	s := &fakeSearcher{fn: func(id string, req domain.SearchRequest) (*usecases.SearchOutcome, error) {
		return &usecases.SearchOutcome{
			SearchID:     id,
			Type:         domain.ClassifyTrip(req.Journeys),
			Offers:       3,
			Availability: usecases.AvailabilityAvailable,
		}, nil
	}}

	env := runWorkflow(t, s)
	require.NoError(t, env.GetWorkflowError())

	var out usecases.SearchOutcome
	require.NoError(t, env.GetWorkflowResult(&out))
	assert.Equal(t, searchID, out.SearchID)
	assert.Equal(t, 3, out.Offers)
	assert.Equal(t, domain.TrainOneWay, out.Type)
	assert.Equal(t, []string{searchID}, s.calls)
}

func TestSearchWorkflow_FailureIsNotRetried(t *testing.T) {
	s := &fakeSearcher{fn: func(string, domain.SearchRequest) (*usecases.SearchOutcome, error) {
		return nil, errors.New("save offers: connection refused")
	}}

	env := runWorkflow(t, s)
	require.Error(t, env.GetWorkflowError())
	assert.Equal(t, 1, s.callCount())
}

func TestSearchWorkflow_ValidationIsNonRetryable(t *testing.T) {
	s := &fakeSearcher{fn: func(string, domain.SearchRequest) (*usecases.SearchOutcome, error) {
		return nil, domain.ErrValidation
	}}

	env := runWorkflow(t, s)
	err := env.GetWorkflowError()
	require.Error(t, err)

	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "validation", appErr.Type())
	assert.True(t, appErr.NonRetryable())
}

type fakeStarter struct {
	opts client.StartWorkflowOptions
	args []interface{}
	err  error
}

func (f *fakeStarter) ExecuteWorkflow(ctx context.Context, opts client.StartWorkflowOptions, wf interface{}, args ...interface{}) (client.WorkflowRun, error) {
	f.opts = opts
	f.args = args
	return nil, f.err
}

func TestStartSearch(t *testing.T) {
	starter := &fakeStarter{}
	in := input()

	err := workflows.StartSearch(context.Background(), starter, "journey-search", &domain.SearchRequested{
		SearchID: in.SearchID,
		Request:  in.Request,
	})
	require.NoError(t, err)

	assert.Equal(t, "journey-search-"+searchID, starter.opts.ID)
	assert.Equal(t, "journey-search", starter.opts.TaskQueue)
	require.Len(t, starter.args, 1)
	assert.Equal(t, in, starter.args[0])
}

func TestStartSearch_Errors(t *testing.T) {
	err := workflows.StartSearch(context.Background(), &fakeStarter{}, "q", &domain.SearchRequested{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	starter := &fakeStarter{err: errors.New("temporal down")}
	err = workflows.StartSearch(context.Background(), starter, "q", &domain.SearchRequested{SearchID: searchID})
	assert.ErrorContains(t, err, "temporal down")
}
