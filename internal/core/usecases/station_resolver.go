package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samirrijal/trainengine/internal/core/domain"
	"github.com/samirrijal/trainengine/internal/core/ports"
)

// StationResolver maps requested legs to candidate stations.
type StationResolver struct {
	stations ports.StationRepository
	log      *slog.Logger
}

// NewStationResolver creates a new StationResolver.
func NewStationResolver(stations ports.StationRepository, logger *slog.Logger) *StationResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &StationResolver{stations: stations, log: logger}
}

// Resolve looks up the stations of every leg, one query per leg, keeping
// leg order. A leg without stations yields an empty group.
func (r *StationResolver) Resolve(ctx context.Context, legs []domain.Leg) ([]domain.LegStations, error) {
	results := make([]domain.LegStations, 0, len(legs))

	for i, leg := range legs {
		stations, err := r.stations.FindForLeg(ctx, leg.From, leg.To)
		if err != nil {
			return nil, fmt.Errorf("find stations for leg %d (%s→%s): %w", i, leg.From, leg.To, err)
		}

		candidates := make([]domain.StationCandidate, 0, len(stations))
		for _, s := range stations {
			candidates = append(candidates, domain.StationCandidate{Station: s})
		}
		if len(candidates) == 0 {
			r.log.InfoContext(ctx, "no stations found for leg", "from", leg.From, "to", leg.To)
		}

		results = append(results, domain.LegStations{Leg: leg, Stations: candidates})
	}

	return results, nil
}
