package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/trainengine/internal/core/domain"
	"github.com/samirrijal/trainengine/internal/core/ports"
)

var _ ports.StationRepository = (*StationRepo)(nil)

// StationRepo implements ports.StationRepository over journey_destination_tree.
type StationRepo struct {
	db *DB
}

// NewStationRepo creates a new StationRepo.
func NewStationRepo(db *DB) *StationRepo {
	return &StationRepo{db: db}
}

// FindForLeg returns stations whose destination tree contains from and
// whose arrival tree contains to, in insertion order.
func (r *StationRepo) FindForLeg(ctx context.Context, from, to string) ([]domain.Station, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id::text, destination_code, destination_tree, arrival_code, arrival_tree
		FROM journey_destination_tree
		WHERE $1 = ANY(destination_tree) AND $2 = ANY(arrival_tree)
		ORDER BY id
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stations := []domain.Station{}
	for rows.Next() {
		var s domain.Station
		if err := rows.Scan(&s.ID, &s.DestinationCode, &s.DestinationTree, &s.ArrivalCode, &s.ArrivalTree); err != nil {
			return nil, err
		}
		stations = append(stations, s)
	}
	return stations, rows.Err()
}

// UpsertBatch inserts many stations using pgx.Batch, keyed on the
// (destination_code, arrival_code) pair.
func (r *StationRepo) UpsertBatch(ctx context.Context, stations []domain.Station) error {
	batch := &pgx.Batch{}
	for _, s := range stations {
		batch.Queue(`
			INSERT INTO journey_destination_tree (destination_code, destination_tree, arrival_code, arrival_tree)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (destination_code, arrival_code) DO UPDATE
			SET destination_tree = EXCLUDED.destination_tree, arrival_tree = EXCLUDED.arrival_tree
		`, s.DestinationCode, s.DestinationTree, s.ArrivalCode, s.ArrivalTree)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range stations {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}
