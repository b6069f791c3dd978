package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/trainengine/internal/core/domain"
	"github.com/samirrijal/trainengine/internal/core/ports"
	"github.com/samirrijal/trainengine/internal/pkg/metrics"
)

// Availability values reported for a finished search.
const (
	AvailabilityAvailable = "available"
	AvailabilityNone      = "none"
)

// SearchOutcome summarises a search run.
type SearchOutcome struct {
	SearchID      string           `json:"searchId"`
	Type          domain.TrainType `json:"type"`
	Offers        int              `json:"offers"`
	StationErrors int              `json:"stationErrors"`
	Availability  string           `json:"availability"`
}

// SearchService runs the full search pipeline:
// stations → supplier codes → supplier enrichment → offers → storage.
type SearchService struct {
	resolver  *StationResolver
	codes     *SupplierCodeEnricher
	enricher  *JourneyEnricher
	assembler *CombinationAssembler
	offers    ports.OfferRepository
	publisher ports.EventPublisher
	log       *slog.Logger

	newID func() string
	now   func() time.Time
}

// NewSearchService creates a new SearchService. publisher may be nil.
func NewSearchService(
	resolver *StationResolver,
	codes *SupplierCodeEnricher,
	enricher *JourneyEnricher,
	assembler *CombinationAssembler,
	offers ports.OfferRepository,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) *SearchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchService{
		resolver:  resolver,
		codes:     codes,
		enricher:  enricher,
		assembler: assembler,
		offers:    offers,
		publisher: publisher,
		log:       logger,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// Collect runs the pipeline up to assembly without saving anything.
func (s *SearchService) Collect(ctx context.Context, req domain.SearchRequest) ([]domain.LegResult, []domain.Offer, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	s.log.InfoContext(ctx, "Received search request",
		"legs", len(req.Journeys), "adults", req.Passenger.Adults, "children", req.Passenger.Children)

	legStations, err := s.resolver.Resolve(ctx, req.Journeys)
	if err != nil {
		s.log.ErrorContext(ctx, "resolve stations", "error", err)
		return nil, nil, err
	}

	if err := s.codes.Enrich(ctx, legStations); err != nil {
		s.log.ErrorContext(ctx, "resolve supplier codes", "error", err)
		return nil, nil, err
	}

	legs := s.enricher.Enrich(ctx, legStations, req)
	offers := s.assembler.Assemble(ctx, legs, req)
	return legs, offers, nil
}

// Search runs the pipeline and persists the offers as a new batch.
// Partial station failures are not errors; only validation, reference data
// and persistence failures are returned.
func (s *SearchService) Search(ctx context.Context, req domain.SearchRequest) (*SearchOutcome, error) {
	return s.SearchAs(ctx, s.newID(), req)
}

// SearchAs is Search with a caller-chosen batch id, used by asynchronous
// searches whose id is handed out before the pipeline runs.
func (s *SearchService) SearchAs(ctx context.Context, searchID string, req domain.SearchRequest) (*SearchOutcome, error) {
	if _, err := uuid.Parse(searchID); err != nil {
		return nil, fmt.Errorf("%w: invalid search id", domain.ErrValidation)
	}

	legs, offers, err := s.Collect(ctx, req)
	if err != nil {
		return nil, err
	}

	outcome := &SearchOutcome{
		SearchID:      searchID,
		Type:          domain.ClassifyTrip(req.Journeys),
		StationErrors: domain.StationErrors(legs),
		Availability:  AvailabilityNone,
	}

	if len(offers) == 0 {
		s.log.WarnContext(ctx, "No valid combinations found to save",
			"searchId", outcome.SearchID, "stationErrors", outcome.StationErrors)
		metrics.ObserveSearch(string(outcome.Type), outcome.Availability, 0, outcome.StationErrors)
		return outcome, nil
	}

	saved, err := s.Save(ctx, outcome.SearchID, offers)
	if err != nil {
		return nil, err
	}
	outcome.Offers = saved
	outcome.Availability = AvailabilityAvailable

	s.log.InfoContext(ctx, "Generated and saved train combinations",
		"searchId", outcome.SearchID, "count", saved)
	metrics.ObserveSearch(string(outcome.Type), outcome.Availability, saved, outcome.StationErrors)

	if s.publisher != nil {
		event := &domain.SearchCompleted{
			SearchID:  outcome.SearchID,
			Type:      outcome.Type,
			Legs:      len(req.Journeys),
			Offers:    saved,
			Timestamp: s.now().UTC(),
		}
		// Best-effort; the batch is already stored.
		if err := s.publisher.PublishSearchCompleted(ctx, event); err != nil {
			s.log.WarnContext(ctx, "publish search completed", "error", err, "searchId", outcome.SearchID)
		}
	}

	return outcome, nil
}

// Submit validates req and queues it for a worker under a new search id.
// The offers become readable through Results once the worker is done.
func (s *SearchService) Submit(ctx context.Context, req domain.SearchRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	if s.publisher == nil {
		return "", domain.ErrAsyncUnavailable
	}

	event := &domain.SearchRequested{
		SearchID:    s.newID(),
		Request:     req,
		RequestedAt: s.now().UTC(),
	}
	if err := s.publisher.PublishSearchRequested(ctx, event); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrAsyncUnavailable, err)
	}

	s.log.InfoContext(ctx, "Queued search request", "searchId", event.SearchID, "legs", len(req.Journeys))
	return event.SearchID, nil
}

// Save stores a batch of offers under searchID.
func (s *SearchService) Save(ctx context.Context, searchID string, offers []domain.Offer) (int, error) {
	s.log.InfoContext(ctx, "Saving train combinations to database", "count", len(offers))

	saved, err := s.offers.SaveBatch(ctx, searchID, offers)
	if err != nil {
		s.log.ErrorContext(ctx, "Error saving train combinations to database", "error", err)
		return 0, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	s.log.InfoContext(ctx, "Successfully saved train combinations", "count", saved)
	return saved, nil
}

// Results returns the offers stored for a search.
func (s *SearchService) Results(ctx context.Context, searchID string) ([]domain.Offer, error) {
	if searchID == "" {
		return nil, fmt.Errorf("%w: search id is required", domain.ErrValidation)
	}
	if _, err := uuid.Parse(searchID); err != nil {
		return nil, fmt.Errorf("%w: invalid search id", domain.ErrValidation)
	}
	return s.offers.ListBySearch(ctx, searchID)
}
