package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/samirrijal/trainengine/internal/core/domain"
)

const (
	offerDateLayout = "02/01/2006"
	clockLayout     = "15:04"
	minutesPerDay   = 24 * 60
)

// CombinationAssembler turns enriched leg results into offers.
type CombinationAssembler struct {
	log *slog.Logger
}

// NewCombinationAssembler creates a new CombinationAssembler.
func NewCombinationAssembler(logger *slog.Logger) *CombinationAssembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CombinationAssembler{log: logger}
}

// Assemble emits one offer per (station, run, priced accommodation).
// Stations with an error, runs without accommodations and accommodations
// without a valid total are skipped. The output order follows legs,
// stations, runs and accommodations, so identical input gives identical
// output.
func (a *CombinationAssembler) Assemble(ctx context.Context, legs []domain.LegResult, req domain.SearchRequest) []domain.Offer {
	trainType := domain.ClassifyTrip(req.Journeys)
	passengers := domain.OptionPassengers{
		Adults:   strconv.Itoa(req.Passenger.Adults),
		Children: strconv.Itoa(req.Passenger.Children),
	}

	var offers []domain.Offer
	for _, leg := range legs {
		day, err := domain.ParseLegDate(leg.Leg.Date)
		if err != nil {
			a.log.WarnContext(ctx, "skipping leg with unparseable date", "date", leg.Leg.Date, "error", err)
			continue
		}

		for _, st := range leg.Stations {
			if st.Err != nil || len(st.Runs) == 0 {
				continue
			}

			for _, run := range st.Runs {
				if len(run.Accommodations) == 0 {
					continue
				}

				journey, err := buildJourney(day, run.Run, st.Station)
				if err != nil {
					a.log.WarnContext(ctx, "skipping run with invalid times",
						"shipID", run.ShipID, "departure", run.DepartureTime, "arrival", run.ArrivalTime, "error", err)
					continue
				}

				for _, acc := range run.Accommodations {
					if !validPrice(acc) {
						a.log.WarnContext(ctx, "Invalid price data for accommodation",
							"accommodation", acc.Type, "shipID", run.ShipID, "error", errString(acc.Err))
						continue
					}

					offers = append(offers, domain.Offer{
						Parameters: req,
						Train: domain.Train{
							Type:     trainType,
							Journeys: []domain.OfferJourney{journey},
							Options: []domain.OfferOption{{
								Accommodation: domain.OptionAccommodation{
									Type:       acc.Type,
									Passengers: passengers,
								},
								Price: *acc.Price,
							}},
						},
					})
				}
			}
		}
	}

	return offers
}

func buildJourney(day time.Time, run domain.Run, st domain.StationCandidate) (domain.OfferJourney, error) {
	dep, err := clockMinutes(run.DepartureTime)
	if err != nil {
		return domain.OfferJourney{}, err
	}
	arr, err := clockMinutes(run.ArrivalTime)
	if err != nil {
		return domain.OfferJourney{}, err
	}

	duration, overnight := journeyDuration(dep, arr)
	arrivalDay := day
	if overnight {
		arrivalDay = day.AddDate(0, 0, 1)
	}

	return domain.OfferJourney{
		Departure: domain.Endpoint{
			Date:    day.Format(offerDateLayout),
			Time:    formatClock(dep),
			Station: st.DestinationCode,
		},
		Arrival: domain.Endpoint{
			Date:    arrivalDay.Format(offerDateLayout),
			Time:    formatClock(arr),
			Station: st.ArrivalCode,
		},
		Duration: duration,
	}, nil
}

// journeyDuration returns arrival − departure split in hours and minutes.
// An arrival earlier than the departure is an overnight run: the arrival is
// on the next day and 24h are added.
func journeyDuration(depMinutes, arrMinutes int) (domain.Duration, bool) {
	diff := arrMinutes - depMinutes
	overnight := diff < 0
	if overnight {
		diff += minutesPerDay
	}
	return domain.Duration{Hours: diff / 60, Minutes: diff % 60}, overnight
}

func clockMinutes(s string) (int, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func validPrice(acc domain.PricedAccommodation) bool {
	if acc.Err != nil || acc.Price == nil {
		return false
	}
	t := acc.Price.Total
	return !math.IsNaN(t) && !math.IsInf(t, 0)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
