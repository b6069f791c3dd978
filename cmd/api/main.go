package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/trainengine/internal/adapters/http"
	natsadapter "github.com/samirrijal/trainengine/internal/adapters/nats"
	"github.com/samirrijal/trainengine/internal/adapters/postgres"
	"github.com/samirrijal/trainengine/internal/adapters/servivuelo"
	"github.com/samirrijal/trainengine/internal/adapters/valkey"
	"github.com/samirrijal/trainengine/internal/core/ports"
	"github.com/samirrijal/trainengine/internal/core/usecases"
	"github.com/samirrijal/trainengine/internal/pkg/config"
	"github.com/samirrijal/trainengine/internal/pkg/logging"
	"github.com/samirrijal/trainengine/internal/pkg/metrics"
	"github.com/samirrijal/trainengine/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("trainengine-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.Setup(cfg.App.Name, cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go reportPoolStats(ctx, db)

	// Cache (optional: correlation lookups fall through to Postgres)
	var correlationCache ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr, "trainengine")
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
		correlationCache = cache
	}

	// NATS (optional: events are best-effort, async search needs it)
	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Close()
	}

	supplier := servivuelo.New(cfg.Supplier.BaseURL, cfg.Supplier.Timeout(), servivuelo.WithLogger(logger))

	search := usecases.NewSearchService(
		usecases.NewStationResolver(postgres.NewStationRepo(db), logger),
		usecases.NewSupplierCodeEnricher(postgres.NewCorrelationRepo(db), correlationCache,
			cfg.Search.CorrelationCacheTTL, cfg.Search.LookupConcurrency, logger),
		usecases.NewJourneyEnricher(supplier, cfg.Supplier.Prefix, cfg.Search.StationConcurrency, logger),
		usecases.NewCombinationAssembler(logger),
		postgres.NewOfferRepo(db),
		publisher,
		logger,
	)

	deps := &http.Dependencies{
		Search:         search,
		NATS:           natsConn,
		DB:             db,
		Cache:          cache,
		IsDevelopment:  cfg.App.IsDevelopment(),
		RequestTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
		CORSOrigins:    cfg.Server.CORSOrigins,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Train Engine API",
		ErrorHandler: http.ErrorHandler(deps.IsDevelopment),
	})

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "env", cfg.App.Env)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight searches up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// reportPoolStats refreshes the database pool gauges until ctx is done.
func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			metrics.UpdateDBPoolMetrics(db.Pool.Stat())
		case <-ctx.Done():
			return
		}
	}
}
