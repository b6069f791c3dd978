package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/trainengine/internal/core/domain"
	"github.com/samirrijal/trainengine/internal/core/usecases"
)

// searchData is the data section of a synchronous search response.
type searchData struct {
	Success bool `json:"success"`
	*usecases.SearchOutcome
}

// queuedData is the data section of an asynchronous search response.
type queuedData struct {
	SearchID string `json:"searchId"`
}

// resultsData is the data section of a results lookup.
type resultsData struct {
	SearchID string         `json:"searchId"`
	Count    int            `json:"count"`
	Offers   []domain.Offer `json:"offers"`
}

func parseSearchRequest(c *fiber.Ctx) (domain.SearchRequest, error) {
	var req domain.SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return req, validationError("request body must be a JSON search request")
	}
	return req, nil
}

type validationError string

func (e validationError) Error() string { return domain.ErrValidation.Error() + ": " + string(e) }
func (e validationError) Unwrap() error { return domain.ErrValidation }

// SearchJourneysHandler runs a search and stores its offers as a new batch.
// A search that finds nothing is still a 200; data.availability tells
// "none" apart from "available".
func SearchJourneysHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := parseSearchRequest(c)
		if err != nil {
			return respondError(c, deps, err)
		}

		out, err := deps.Search.Search(c.UserContext(), req)
		if err != nil {
			return respondError(c, deps, err)
		}

		return ok(c, fiber.StatusOK, searchData{Success: true, SearchOutcome: out}, "Stations retrieved successfully")
	}
}

// SubmitSearchHandler queues a search for the worker and answers 202 with
// the id its offers will be stored under.
func SubmitSearchHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := parseSearchRequest(c)
		if err != nil {
			return respondError(c, deps, err)
		}

		id, err := deps.Search.Submit(c.UserContext(), req)
		if err != nil {
			return respondError(c, deps, err)
		}

		c.Set(fiber.HeaderLocation, "/api/journeys/results/"+id)
		return ok(c, fiber.StatusAccepted, queuedData{SearchID: id}, "Search queued")
	}
}

// SearchResultsHandler returns every offer stored under a search id.
func SearchResultsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("searchId")

		offers, err := deps.Search.Results(c.UserContext(), id)
		if err != nil {
			return respondError(c, deps, err)
		}
		if len(offers) == 0 {
			return errNotFound(c, "No results found for search "+id)
		}

		return ok(c, fiber.StatusOK, resultsData{SearchID: id, Count: len(offers), Offers: offers}, "Results retrieved successfully")
	}
}

// NotFoundHandler answers unmatched routes.
func NotFoundHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return errNotFound(c, "Route "+c.Method()+" "+c.OriginalURL()+" not found")
	}
}
