package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/trainengine/internal/core/domain"
	"github.com/samirrijal/trainengine/internal/core/usecases"
)

type searchFixture struct {
	stations  *mockStationRepo
	codes     *mockCorrelationRepo
	supplier  *mockSupplier
	offers    *mockOfferRepo
	publisher *mockPublisher
	svc       *usecases.SearchService
}

func newSearchFixture() *searchFixture {
	f := &searchFixture{
		stations: &mockStationRepo{
			findForLegFn: func(ctx context.Context, from, to string) ([]domain.Station, error) {
				return []domain.Station{{ID: "s1", DestinationCode: from, ArrivalCode: to}}, nil
			},
		},
		codes: &mockCorrelationRepo{codes: map[string][]string{
			"MAD": {"SERVIVUELO#MAD1"},
			"BCN": {"SERVIVUELO#BCN1"},
		}},
		supplier: &mockSupplier{
			timetablesFn: func(ctx context.Context, from, to, date string, pax domain.Passengers) ([]domain.Run, error) {
				return []domain.Run{{ShipID: "T1", DepartureTime: "08:00", ArrivalTime: "10:30"}}, nil
			},
			accommodationsFn: func(ctx context.Context, shipID, departureDate string, pax domain.Passengers) ([]domain.Accommodation, error) {
				return []domain.Accommodation{{Type: "Turista", Available: "10"}}, nil
			},
			priceFn: func(ctx context.Context, shipID, departureDate, accommodation string, class domain.PaxClass, bonus []string) (float64, error) {
				return 75, nil
			},
		},
		offers:    &mockOfferRepo{},
		publisher: &mockPublisher{},
	}

	f.svc = usecases.NewSearchService(
		usecases.NewStationResolver(f.stations, nil),
		usecases.NewSupplierCodeEnricher(f.codes, nil, 0, 0, nil),
		usecases.NewJourneyEnricher(f.supplier, "SERVIVUELO", 0, nil),
		usecases.NewCombinationAssembler(nil),
		f.offers,
		f.publisher,
		nil,
	)
	return f
}

func TestSearchService_Search_OneWay(t *testing.T) {
	f := newSearchFixture()

	out, err := f.svc.Search(context.Background(), oneWayRequest(2, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Offers != 1 || out.Availability != usecases.AvailabilityAvailable {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if out.Type != domain.TrainOneWay {
		t.Errorf("expected oneway, got %s", out.Type)
	}

	stored, _ := f.offers.ListBySearch(context.Background(), out.SearchID)
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored offer, got %d", len(stored))
	}
	price := stored[0].Train.Options[0].Price
	if price.Total != 150 || price.Breakdown.Adult != 75 || price.Breakdown.Children != 0 {
		t.Errorf("unexpected price %+v", price)
	}
	if stored[0].Train.Journeys[0].Duration != (domain.Duration{Hours: 2, Minutes: 30}) {
		t.Errorf("unexpected duration %+v", stored[0].Train.Journeys[0].Duration)
	}

	if len(f.publisher.events) != 1 || f.publisher.events[0].SearchID != out.SearchID {
		t.Errorf("expected one SearchCompleted event, got %+v", f.publisher.events)
	}
}

func TestSearchService_Search_AppendsNewBatchEachTime(t *testing.T) {
	f := newSearchFixture()
	req := oneWayRequest(1, 0)

	first, err := f.svc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := f.svc.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.SearchID == second.SearchID {
		t.Fatal("each search should get its own batch id")
	}
	if len(f.offers.batches) != 2 {
		t.Errorf("expected 2 batches, got %d", len(f.offers.batches))
	}
}

func TestSearchService_Search_NoAvailability(t *testing.T) {
	f := newSearchFixture()
	f.codes.codes = map[string][]string{"MAD": {"OTHER#X"}}

	out, err := f.svc.Search(context.Background(), oneWayRequest(1, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Availability != usecases.AvailabilityNone || out.Offers != 0 {
		t.Errorf("expected no availability, got %+v", out)
	}
	if out.StationErrors != 1 {
		t.Errorf("expected 1 station error, got %d", out.StationErrors)
	}
	if len(f.offers.batches) != 0 {
		t.Error("nothing should be saved")
	}
	if f.supplier.totalCalls() != 0 {
		t.Error("no supplier calls expected for stations without codes")
	}
}

func TestSearchService_Search_PersistenceError(t *testing.T) {
	f := newSearchFixture()
	f.offers.saveErr = errors.New("disk full")

	_, err := f.svc.Search(context.Background(), oneWayRequest(1, 0))
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if len(f.publisher.events) != 0 {
		t.Error("no event should be published when saving fails")
	}
}

func TestSearchService_Search_PublishErrorIgnored(t *testing.T) {
	f := newSearchFixture()
	f.publisher.err = errors.New("nats down")

	out, err := f.svc.Search(context.Background(), oneWayRequest(1, 0))
	if err != nil {
		t.Fatalf("publish failures must not fail the search: %v", err)
	}
	if out.Offers != 1 {
		t.Errorf("expected 1 offer, got %d", out.Offers)
	}
}

func TestSearchService_Search_Validation(t *testing.T) {
	f := newSearchFixture()
	req := oneWayRequest(1, 0)
	req.Passenger.Total = 3

	_, err := f.svc.Search(context.Background(), req)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSearchService_Results_InvalidID(t *testing.T) {
	f := newSearchFixture()

	if _, err := f.svc.Results(context.Background(), "not-a-uuid"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSearchService_Submit(t *testing.T) {
	f := newSearchFixture()

	id, err := f.svc.Submit(context.Background(), oneWayRequest(1, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.publisher.requested) != 1 || f.publisher.requested[0].SearchID != id {
		t.Fatalf("expected one SearchRequested event for %s, got %+v", id, f.publisher.requested)
	}
	if f.supplier.totalCalls() != 0 {
		t.Error("submit must not run the pipeline")
	}

	out, err := f.svc.SearchAs(context.Background(), id, f.publisher.requested[0].Request)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.SearchID != id {
		t.Errorf("expected search id %s, got %s", id, out.SearchID)
	}
}

func TestSearchService_Submit_NoBroker(t *testing.T) {
	f := newSearchFixture()
	svc := usecases.NewSearchService(
		usecases.NewStationResolver(f.stations, nil),
		usecases.NewSupplierCodeEnricher(f.codes, nil, 0, 0, nil),
		usecases.NewJourneyEnricher(f.supplier, "SERVIVUELO", 0, nil),
		usecases.NewCombinationAssembler(nil),
		f.offers,
		nil,
		nil,
	)

	if _, err := svc.Submit(context.Background(), oneWayRequest(1, 0)); !errors.Is(err, domain.ErrAsyncUnavailable) {
		t.Fatalf("expected ErrAsyncUnavailable, got %v", err)
	}
}
