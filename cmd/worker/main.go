package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/trainengine/internal/adapters/nats"
	"github.com/samirrijal/trainengine/internal/adapters/postgres"
	"github.com/samirrijal/trainengine/internal/adapters/servivuelo"
	"github.com/samirrijal/trainengine/internal/adapters/valkey"
	"github.com/samirrijal/trainengine/internal/core/domain"
	"github.com/samirrijal/trainengine/internal/core/ports"
	"github.com/samirrijal/trainengine/internal/core/usecases"
	"github.com/samirrijal/trainengine/internal/pkg/config"
	"github.com/samirrijal/trainengine/internal/pkg/logging"
	"github.com/samirrijal/trainengine/internal/pkg/telemetry"
	"github.com/samirrijal/trainengine/internal/workflows"
)

func main() {
	cfg, err := config.Load("trainengine-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.Setup(cfg.App.Name, cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	var correlationCache ports.CacheService
	if cache, err := valkey.New(cfg.Valkey.Addr, "trainengine"); err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
		correlationCache = cache
	}

	// The worker publishes SearchCompleted for the WebSocket feed.
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats publisher: %v", err)
	}
	defer publisher.Close()

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

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    tlog.NewStructuredLogger(logger),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.SearchWorkflow)
	w.RegisterActivity(&workflows.SearchActivities{Search: search})

	// Queued searches arrive over JetStream; each one starts a workflow.
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer sub.Close()

	err = sub.SubscribeSearchRequests(ctx, func(ctx context.Context, event *domain.SearchRequested) error {
		if err := workflows.StartSearch(ctx, c, cfg.Temporal.TaskQueue, event); err != nil {
			slog.Error("start search workflow", "searchId", event.SearchID, "error", err)
			return err
		}
		slog.Info("Search workflow started", "searchId", event.SearchID)
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe search requests: %v", err)
	}

	slog.Info("search worker started", "taskQueue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
