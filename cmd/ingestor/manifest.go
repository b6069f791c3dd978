package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/samirrijal/trainengine/internal/core/domain"
	"github.com/samirrijal/trainengine/internal/core/ports"
)

// batchSize caps rows per pgx batch.
const batchSize = 500

// Manifest is the reference data file.
type Manifest struct {
	Source       string                       `json:"source"`
	Stations     []domain.Station             `json:"stations"`
	Correlations []domain.SupplierCorrelation `json:"correlations"`
}

type ingestStats struct {
	Stations     int
	Correlations int
}

// loadManifest reads a manifest from a path or an http(s) URL.
func loadManifest(ctx context.Context, client *http.Client, src string) (*Manifest, error) {
	var r io.ReadCloser
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("download %s: %w", src, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("download %s: status %d", src, resp.StatusCode)
		}
		r = resp.Body
	} else {
		f, err := os.Open(src)
		if err != nil {
			return nil, err
		}
		r = f
	}
	defer r.Close()

	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.Source == "" {
		m.Source = src
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// validate rejects records the search could never match.
func (m *Manifest) validate() error {
	var errs []error
	for i, s := range m.Stations {
		if s.DestinationCode == "" || s.ArrivalCode == "" {
			errs = append(errs, fmt.Errorf("stations[%d]: destinationCode and arrivalCode are required", i))
		}
		if len(s.DestinationTree) == 0 || len(s.ArrivalTree) == 0 {
			errs = append(errs, fmt.Errorf("stations[%d]: destinationTree and arrivalTree are required", i))
		}
	}
	for i, c := range m.Correlations {
		if c.Code == "" {
			errs = append(errs, fmt.Errorf("correlations[%d]: code is required", i))
		}
		for _, s := range c.Suppliers {
			if !strings.Contains(s, "#") {
				errs = append(errs, fmt.Errorf("correlations[%d]: supplier code %q is not <SUPPLIER>#<code>", i, s))
			}
		}
	}
	return errors.Join(errs...)
}

// ingest upserts the manifest in batches. A station's own code is added to
// its tree when missing so a search by station code always matches.
func ingest(ctx context.Context, stations ports.StationRepository, correlations ports.CorrelationRepository, m *Manifest) (ingestStats, error) {
	var stats ingestStats

	for start := 0; start < len(m.Stations); start += batchSize {
		end := min(start+batchSize, len(m.Stations))
		batch := make([]domain.Station, 0, end-start)
		for _, s := range m.Stations[start:end] {
			s.DestinationTree = withCode(s.DestinationTree, s.DestinationCode)
			s.ArrivalTree = withCode(s.ArrivalTree, s.ArrivalCode)
			batch = append(batch, s)
		}
		if err := stations.UpsertBatch(ctx, batch); err != nil {
			return stats, fmt.Errorf("upsert stations %d-%d: %w", start, end, err)
		}
		stats.Stations += len(batch)
	}

	for start := 0; start < len(m.Correlations); start += batchSize {
		end := min(start+batchSize, len(m.Correlations))
		if err := correlations.UpsertBatch(ctx, m.Correlations[start:end]); err != nil {
			return stats, fmt.Errorf("upsert correlations %d-%d: %w", start, end, err)
		}
		stats.Correlations += end - start
	}

	return stats, nil
}

func withCode(tree []string, code string) []string {
	for _, c := range tree {
		if c == code {
			return tree
		}
	}
	return append([]string{code}, tree...)
}
