package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/trainengine/internal/core/domain"
	"github.com/samirrijal/trainengine/internal/core/ports"
)

var _ ports.OfferRepository = (*OfferRepo)(nil)

// OfferRepo implements ports.OfferRepository over train_results.
// Offers are append-only; each search writes a new batch.
type OfferRepo struct {
	db *DB
}

// NewOfferRepo creates a new OfferRepo.
func NewOfferRepo(db *DB) *OfferRepo {
	return &OfferRepo{db: db}
}

// SaveBatch inserts offers with pgx.Batch. The batch is pipelined under a
// single sync, so Postgres runs it as one implicit transaction: a failing row
// rolls back every row and 0 is returned.
func (r *OfferRepo) SaveBatch(ctx context.Context, searchID string, offers []domain.Offer) (int, error) {
	if len(offers) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, o := range offers {
		// pgx encodes structs passed to jsonb columns as JSON.
		batch.Queue(`
			INSERT INTO train_results (search_id, parameters, train)
			VALUES ($1, $2, $3)
		`, searchID, o.Parameters, o.Train)
	}

	br := r.db.Pool.SendBatch(ctx, batch)
	for range offers {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return 0, fmt.Errorf("batch exec: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("batch close: %w", err)
	}
	return len(offers), nil
}

// ListBySearch returns the offers of a search in insertion order.
func (r *OfferRepo) ListBySearch(ctx context.Context, searchID string) ([]domain.Offer, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id::text, search_id::text, parameters, train, created_at
		FROM train_results
		WHERE search_id = $1
		ORDER BY id
	`, searchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	offers := []domain.Offer{}
	for rows.Next() {
		var (
			o         domain.Offer
			createdAt time.Time
		)
		if err := rows.Scan(&o.ID, &o.SearchID, &o.Parameters, &o.Train, &createdAt); err != nil {
			return nil, err
		}
		o.CreatedAt = &createdAt
		offers = append(offers, o)
	}
	return offers, rows.Err()
}
