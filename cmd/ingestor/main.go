package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/samirrijal/trainengine/internal/adapters/postgres"
	"github.com/samirrijal/trainengine/internal/pkg/config"
	"github.com/samirrijal/trainengine/internal/pkg/logging"
)

// ingestor loads reference data (journey destination trees and supplier
// station correlations) from a JSON manifest, local or over HTTP.
//
//	ingestor [manifest.json | https://.../manifest.json]
func main() {
	cfg, err := config.Load("trainengine-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.App.Name, cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	src := "manifest.json"
	if len(os.Args) > 1 {
		src = os.Args[1]
	}

	manifest, err := loadManifest(ctx, &http.Client{Timeout: 120 * time.Second}, src)
	if err != nil {
		log.Fatalf("load manifest: %v", err)
	}

	slog.Info("Reference data ingestion starting",
		"source", manifest.Source,
		"stations", len(manifest.Stations),
		"correlations", len(manifest.Correlations))

	stats, err := ingest(ctx, postgres.NewStationRepo(db), postgres.NewCorrelationRepo(db), manifest)
	if err != nil {
		log.Fatalf("ingest: %v", err)
	}

	slog.Info("ingestion complete", "stations", stats.Stations, "correlations", stats.Correlations)
}
