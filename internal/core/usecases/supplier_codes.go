package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/samirrijal/trainengine/internal/core/domain"
	"github.com/samirrijal/trainengine/internal/core/ports"
	"github.com/samirrijal/trainengine/internal/pkg/metrics"
)

// SupplierCodeEnricher attaches supplier codes to candidate stations.
type SupplierCodeEnricher struct {
	correlations ports.CorrelationRepository
	cache        ports.CacheService
	cacheTTL     int
	limit        int
	log          *slog.Logger
}

// NewSupplierCodeEnricher creates a new SupplierCodeEnricher.
// cache may be nil. limit caps concurrent lookups (<= 0 means 16).
func NewSupplierCodeEnricher(
	correlations ports.CorrelationRepository,
	cache ports.CacheService,
	cacheTTLSeconds int,
	limit int,
	logger *slog.Logger,
) *SupplierCodeEnricher {
	if limit <= 0 {
		limit = 16
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SupplierCodeEnricher{
		correlations: correlations,
		cache:        cache,
		cacheTTL:     cacheTTLSeconds,
		limit:        limit,
		log:          logger,
	}
}

// Enrich resolves the destination and arrival codes of every station in
// place. A missing correlation leaves the code set empty; only lookup
// failures are returned.
func (e *SupplierCodeEnricher) Enrich(ctx context.Context, legs []domain.LegStations) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)

	for i := range legs {
		for j := range legs[i].Stations {
			st := &legs[i].Stations[j]

			g.Go(func() error {
				codes, err := e.lookup(gctx, st.DestinationCode)
				if err != nil {
					return err
				}
				st.DestinationSupplierCodes = codes
				return nil
			})
			g.Go(func() error {
				codes, err := e.lookup(gctx, st.ArrivalCode)
				if err != nil {
					return err
				}
				st.ArrivalSupplierCodes = codes
				return nil
			})
		}
	}

	return g.Wait()
}

func (e *SupplierCodeEnricher) lookup(ctx context.Context, code string) ([]string, error) {
	cacheKey := "supplier:codes:" + code
	if e.cache != nil {
		if data, err := e.cache.Get(ctx, cacheKey); err == nil {
			var codes []string
			if err := json.Unmarshal(data, &codes); err == nil {
				metrics.CacheHits.WithLabelValues("supplier_codes").Inc()
				return codes, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("supplier_codes").Inc()
	}

	codes, err := e.correlations.SupplierCodes(ctx, code)
	if err != nil {
		e.log.ErrorContext(ctx, "Error fetching supplier station by code", "error", err, "supplierStationCode", code)
		return nil, fmt.Errorf("supplier codes for %s: %w", code, err)
	}

	// Absent correlations are cached too (as null) so they are not re-queried.
	if e.cache != nil && e.cacheTTL > 0 {
		if data, err := json.Marshal(codes); err == nil {
			_ = e.cache.Set(ctx, cacheKey, data, e.cacheTTL)
		}
	}

	return codes, nil
}
