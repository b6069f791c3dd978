package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/trainengine/internal/core/domain"
	"github.com/samirrijal/trainengine/internal/core/ports"
)

var _ ports.CorrelationRepository = (*CorrelationRepo)(nil)

// CorrelationRepo implements ports.CorrelationRepository over
// supplier_station_correlation.
type CorrelationRepo struct {
	db *DB
}

// NewCorrelationRepo creates a new CorrelationRepo.
func NewCorrelationRepo(db *DB) *CorrelationRepo {
	return &CorrelationRepo{db: db}
}

// SupplierCodes returns the supplier codes of an internal station code.
// A missing record is not an error and yields nil.
func (r *CorrelationRepo) SupplierCodes(ctx context.Context, code string) ([]string, error) {
	var suppliers []string
	err := r.db.Pool.QueryRow(ctx, `
		SELECT suppliers FROM supplier_station_correlation WHERE code = $1
	`, code).Scan(&suppliers)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return suppliers, nil
}

// UpsertBatch inserts or replaces many correlations using pgx.Batch.
func (r *CorrelationRepo) UpsertBatch(ctx context.Context, correlations []domain.SupplierCorrelation) error {
	batch := &pgx.Batch{}
	for _, c := range correlations {
		batch.Queue(`
			INSERT INTO supplier_station_correlation (code, suppliers)
			VALUES ($1, $2)
			ON CONFLICT (code) DO UPDATE SET suppliers = EXCLUDED.suppliers
		`, c.Code, c.Suppliers)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range correlations {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}
