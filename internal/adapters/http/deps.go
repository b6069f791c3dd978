package http

import (
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/trainengine/internal/adapters/postgres"
	"github.com/samirrijal/trainengine/internal/adapters/valkey"
	"github.com/samirrijal/trainengine/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
// Infrastructure fields may be nil; readiness reports them as not configured.
type Dependencies struct {
	Search *usecases.SearchService
	NATS   *nats.Conn
	DB     *postgres.DB
	Cache  *valkey.Cache

	// IsDevelopment exposes internal error messages in 500 responses.
	IsDevelopment  bool
	RequestTimeout time.Duration
	CORSOrigins    []string
}

func (d *Dependencies) requestTimeout() time.Duration {
	if d.RequestTimeout <= 0 {
		return 30 * time.Second
	}
	return d.RequestTimeout
}
