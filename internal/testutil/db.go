// Package testutil provides shared helpers for integration tests.
// Helpers skip the test when TEST_DATABASE_URL is not set.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/samirrijal/trainengine/internal/adapters/postgres"
	"github.com/samirrijal/trainengine/migrations"
)

// NewDB migrates the test database to the latest version and returns a
// pool wrapped in postgres.DB. Tables are truncated before returning.
func NewDB(t *testing.T) *postgres.DB {
	t.Helper()

	dsn := requireDSN(t)
	Migrate(t, dsn)

	db, err := postgres.New(context.Background(), dsn, 5)
	if err != nil {
		t.Fatalf("testutil.NewDB: %v", err)
	}
	t.Cleanup(db.Close)

	_, err = db.Pool.Exec(context.Background(), `
		TRUNCATE journey_destination_tree, supplier_station_correlation, train_results RESTART IDENTITY
	`)
	if err != nil {
		t.Fatalf("testutil.NewDB: truncate: %v", err)
	}
	return db
}

// Migrate applies every embedded migration to dsn.
func Migrate(t *testing.T, dsn string) {
	t.Helper()

	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("testutil.Migrate: open: %v", err)
	}
	defer sqlDB.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, migrations.FS)
	if err != nil {
		t.Fatalf("testutil.Migrate: provider: %v", err)
	}
	if _, err := provider.Up(context.Background()); err != nil {
		t.Fatalf("testutil.Migrate: up: %v", err)
	}
}

// DSN returns TEST_DATABASE_URL, skipping the test if it is not set.
func DSN(t *testing.T) string {
	t.Helper()
	return requireDSN(t)
}

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}
	return dsn
}
