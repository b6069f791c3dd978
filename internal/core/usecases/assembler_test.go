package usecases_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/trainengine/internal/core/domain"
	"github.com/samirrijal/trainengine/internal/core/usecases"
)

func pricedLeg(runs ...domain.RunResult) []domain.LegResult {
	return []domain.LegResult{{
		Leg: testLeg,
		Stations: []domain.StationResult{{
			Station: servivueloCandidate("s1"),
			Runs:    runs,
		}},
	}}
}

func priced(accType string, total float64) domain.PricedAccommodation {
	return domain.PricedAccommodation{
		Accommodation: domain.Accommodation{Type: accType},
		Price:         &domain.Price{Total: total, Breakdown: domain.PriceBreakdown{Adult: total}},
	}
}

func TestCombinationAssembler_Assemble(t *testing.T) {
	a := usecases.NewCombinationAssembler(nil)
	legs := pricedLeg(domain.RunResult{
		Run:            domain.Run{ShipID: "T1", DepartureTime: "08:00", ArrivalTime: "10:30"},
		Accommodations: []domain.PricedAccommodation{priced("Turista", 75), priced("Preferente", 110)},
	})

	offers := a.Assemble(context.Background(), legs, oneWayRequest(1, 0))
	require.Len(t, offers, 2)

	o := offers[0]
	assert.Equal(t, domain.TrainOneWay, o.Train.Type)
	require.Len(t, o.Train.Journeys, 1)
	require.Len(t, o.Train.Options, 1)

	j := o.Train.Journeys[0]
	assert.Equal(t, domain.Endpoint{Date: "01/06/2025", Time: "08:00", Station: "MAD"}, j.Departure)
	assert.Equal(t, domain.Endpoint{Date: "01/06/2025", Time: "10:30", Station: "BCN"}, j.Arrival)
	assert.Equal(t, domain.Duration{Hours: 2, Minutes: 30}, j.Duration)

	opt := o.Train.Options[0]
	assert.Equal(t, "Turista", opt.Accommodation.Type)
	assert.Equal(t, domain.OptionPassengers{Adults: "1", Children: "0"}, opt.Accommodation.Passengers)
	assert.Equal(t, 75.0, opt.Price.Total)
	assert.Equal(t, "Preferente", offers[1].Train.Options[0].Accommodation.Type)
}

func TestCombinationAssembler_OvernightRun(t *testing.T) {
	a := usecases.NewCombinationAssembler(nil)
	legs := pricedLeg(domain.RunResult{
		Run:            domain.Run{ShipID: "N1", DepartureTime: "23:15", ArrivalTime: "06:45"},
		Accommodations: []domain.PricedAccommodation{priced("Cama", 90)},
	})

	offers := a.Assemble(context.Background(), legs, oneWayRequest(1, 0))
	require.Len(t, offers, 1)

	j := offers[0].Train.Journeys[0]
	assert.Equal(t, domain.Duration{Hours: 7, Minutes: 30}, j.Duration)
	assert.Equal(t, "01/06/2025", j.Departure.Date)
	assert.Equal(t, "02/06/2025", j.Arrival.Date)
}

func TestCombinationAssembler_SkipsUnpriced(t *testing.T) {
	a := usecases.NewCombinationAssembler(nil)
	broken := domain.PricedAccommodation{
		Accommodation: domain.Accommodation{Type: "Turista"},
		Err:           errors.New("adult price: boom"),
	}
	nan := priced("Preferente", math.NaN())

	legs := []domain.LegResult{{
		Leg: testLeg,
		Stations: []domain.StationResult{
			{Station: servivueloCandidate("s0"), Err: domain.ErrMissingSupplierCode},
			{
				Station: servivueloCandidate("s1"),
				Runs: []domain.RunResult{
					{Run: domain.Run{ShipID: "T1", DepartureTime: "08:00", ArrivalTime: "09:00"}, Err: errors.New("accommodations down")},
					{Run: domain.Run{ShipID: "T2", DepartureTime: "bad", ArrivalTime: "09:00"}, Accommodations: []domain.PricedAccommodation{priced("Turista", 10)}},
					{Run: domain.Run{ShipID: "T3", DepartureTime: "10:00", ArrivalTime: "11:00"}, Accommodations: []domain.PricedAccommodation{broken, nan, priced("Cama", 99)}},
				},
			},
		},
	}}

	offers := a.Assemble(context.Background(), legs, oneWayRequest(1, 0))
	require.Len(t, offers, 1)
	assert.Equal(t, "Cama", offers[0].Train.Options[0].Accommodation.Type)
}

func TestCombinationAssembler_Deterministic(t *testing.T) {
	a := usecases.NewCombinationAssembler(nil)
	legs := pricedLeg(
		domain.RunResult{Run: domain.Run{ShipID: "T1", DepartureTime: "08:00", ArrivalTime: "10:30"}, Accommodations: []domain.PricedAccommodation{priced("A", 1), priced("B", 2)}},
		domain.RunResult{Run: domain.Run{ShipID: "T2", DepartureTime: "09:00", ArrivalTime: "11:30"}, Accommodations: []domain.PricedAccommodation{priced("C", 3)}},
	)
	req := oneWayRequest(1, 0)

	assert.Equal(t, a.Assemble(context.Background(), legs, req), a.Assemble(context.Background(), legs, req))
}

func TestClassifyTrip(t *testing.T) {
	tests := []struct {
		name string
		legs []domain.Leg
		want domain.TrainType
	}{
		{"one leg", []domain.Leg{{From: "A", To: "B"}}, domain.TrainOneWay},
		{"mirror", []domain.Leg{{From: "A", To: "B"}, {From: "B", To: "A"}}, domain.TrainRoundTrip},
		{"two legs not mirrored", []domain.Leg{{From: "A", To: "B"}, {From: "B", To: "C"}}, domain.TrainMultiDestination},
		{"two disjoint legs", []domain.Leg{{From: "A", To: "B"}, {From: "C", To: "D"}}, domain.TrainMultiDestination},
		{"three legs", []domain.Leg{{From: "A", To: "B"}, {From: "B", To: "A"}, {From: "A", To: "B"}}, domain.TrainMultiDestination},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ClassifyTrip(tt.legs))
		})
	}
}
