package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/samirrijal/trainengine/internal/core/domain"
	"github.com/samirrijal/trainengine/internal/core/ports"
)

// JourneyEnricher fetches runs, accommodations and prices for candidate
// stations. Failures are attached to the smallest unit they affect
// (station, run or accommodation) and never abort sibling work.
type JourneyEnricher struct {
	supplier    ports.SupplierGateway
	prefix      string
	concurrency int
	log         *slog.Logger
}

// NewJourneyEnricher creates a new JourneyEnricher. prefix selects the
// supplier codes to use ("SERVIVUELO"); concurrency caps how many stations
// are processed at once (<= 0 means 4).
func NewJourneyEnricher(supplier ports.SupplierGateway, prefix string, concurrency int, logger *slog.Logger) *JourneyEnricher {
	if concurrency <= 0 {
		concurrency = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &JourneyEnricher{supplier: supplier, prefix: prefix, concurrency: concurrency, log: logger}
}

// Enrich processes every station of every leg. The result has one group per
// leg in request order and one result per station in resolver order.
func (e *JourneyEnricher) Enrich(ctx context.Context, legs []domain.LegStations, req domain.SearchRequest) []domain.LegResult {
	results := make([]domain.LegResult, len(legs))
	for i, l := range legs {
		results[i] = domain.LegResult{Leg: l.Leg, Stations: make([]domain.StationResult, len(l.Stations))}
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, e.concurrency)

	for i := range legs {
		for j := range legs[i].Stations {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				// Stations still waiting for a slot are tagged, not started.
				results[i].Stations[j] = domain.StationResult{Station: legs[i].Stations[j], Err: ctx.Err()}
				continue
			}

			wg.Add(1)
			go func(i, j int) {
				defer wg.Done()
				defer func() { <-sem }()

				// Each goroutine owns exactly one slot.
				results[i].Stations[j] = e.EnrichStation(ctx, legs[i].Stations[j], legs[i].Leg, req)
			}(i, j)
		}
	}

	wg.Wait()
	return results
}

// EnrichStation runs timetables → accommodations → prices for one station.
func (e *JourneyEnricher) EnrichStation(ctx context.Context, st domain.StationCandidate, leg domain.Leg, req domain.SearchRequest) domain.StationResult {
	result := domain.StationResult{Station: st}

	from, okFrom := domain.SupplierCode(st.DestinationSupplierCodes, e.prefix)
	to, okTo := domain.SupplierCode(st.ArrivalSupplierCodes, e.prefix)
	if !okFrom || !okTo {
		e.log.WarnContext(ctx, "Missing supplier station codes",
			"station", st.ID,
			"destinationCodes", st.DestinationSupplierCodes,
			"arrivalCodes", st.ArrivalSupplierCodes,
		)
		result.Err = missingCodesError(okFrom, okTo)
		return result
	}

	e.log.InfoContext(ctx, "Processing station for available trains, accommodations and prices",
		"from", from, "to", to, "date", leg.Date)

	runs, err := e.supplier.FetchTimetables(ctx, from, to, leg.Date, req.Passenger)
	if err != nil {
		e.log.ErrorContext(ctx, "Error processing station for journey",
			"error", err, "station", st.ID, "from", leg.From, "to", leg.To, "date", leg.Date)
		result.Err = err
		return result
	}

	result.Runs = make([]domain.RunResult, 0, len(runs))
	for _, run := range runs {
		result.Runs = append(result.Runs, e.enrichRun(ctx, run, req))
	}
	return result
}

func (e *JourneyEnricher) enrichRun(ctx context.Context, run domain.Run, req domain.SearchRequest) domain.RunResult {
	rr := domain.RunResult{Run: run, Accommodations: []domain.PricedAccommodation{}}

	accommodations, err := e.supplier.FetchAccommodations(ctx, run.ShipID, run.DepartureTime, req.Passenger)
	if err != nil {
		e.log.ErrorContext(ctx, "Error processing train accommodations", "error", err, "trainId", run.ShipID)
		rr.Err = err
		return rr
	}

	for _, acc := range accommodations {
		rr.Accommodations = append(rr.Accommodations, e.priceAccommodation(ctx, run, acc, req))
	}
	return rr
}

// priceAccommodation quotes each passenger class with a non-zero count.
// Classes are independent: one failing does not skip the other, but any
// failure leaves the accommodation without a total.
func (e *JourneyEnricher) priceAccommodation(ctx context.Context, run domain.Run, acc domain.Accommodation, req domain.SearchRequest) domain.PricedAccommodation {
	pa := domain.PricedAccommodation{Accommodation: acc}
	pax := req.Passenger

	e.log.DebugContext(ctx, "Fetching prices for train-accommodation combination",
		"shipID", run.ShipID, "accommodation", acc.Type)

	if pax.Adults > 0 {
		pa.Adult = e.quote(ctx, run, acc.Type, domain.PaxAdult, req.Bonus)
	}
	if pax.Children > 0 {
		pa.Children = e.quote(ctx, run, acc.Type, domain.PaxChildren, nil)
	}

	if err := errors.Join(pa.Adult.Err, pa.Children.Err); err != nil {
		e.log.ErrorContext(ctx, "Error fetching prices for train-accommodation combination",
			"error", err, "trainId", run.ShipID, "accommodationType", acc.Type)
		pa.Err = err
		return pa
	}

	pa.Price = &domain.Price{
		Total: pa.Adult.Unit*float64(pax.Adults) + pa.Children.Unit*float64(pax.Children),
		Breakdown: domain.PriceBreakdown{
			Adult:    pa.Adult.Unit,
			Children: pa.Children.Unit,
		},
	}
	return pa
}

func (e *JourneyEnricher) quote(ctx context.Context, run domain.Run, accommodation string, class domain.PaxClass, bonus []string) domain.ClassQuote {
	unit, err := e.supplier.FetchPrice(ctx, run.ShipID, run.DepartureTime, accommodation, class, bonus)
	if err != nil {
		return domain.ClassQuote{Requested: true, Err: fmt.Errorf("%s price: %w", class, err)}
	}
	return domain.ClassQuote{Requested: true, Unit: unit}
}

func missingCodesError(okFrom, okTo bool) error {
	switch {
	case !okFrom && !okTo:
		return fmt.Errorf("%w: destination and arrival", domain.ErrMissingSupplierCode)
	case !okFrom:
		return fmt.Errorf("%w: destination", domain.ErrMissingSupplierCode)
	default:
		return fmt.Errorf("%w: arrival", domain.ErrMissingSupplierCode)
	}
}
