package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/trainengine/internal/core/domain"
	"github.com/samirrijal/trainengine/internal/core/ports"
)

// Subjects and stream names used for search events.
const (
	StreamSearchEvents      = "SEARCH_EVENTS"
	StreamSearchRequests    = "SEARCH_REQUESTS"
	SubjectSearchCompleted  = "journeys.search.completed"
	SubjectSearchRequested  = "journeys.requests.search"
	subjectSearchEventsAll  = "journeys.search.>"
	subjectSearchRequestAll = "journeys.requests.>"
)

var _ ports.EventPublisher = (*Publisher)(nil)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	if err := ensureStreams(js); err != nil {
		conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, js: js}, nil
}

func ensureStreams(js nats.JetStreamContext) error {
	streams := []nats.StreamConfig{
		{
			Name:      StreamSearchEvents,
			Subjects:  []string{subjectSearchEventsAll},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      StreamSearchRequests,
			Subjects:  []string{subjectSearchRequestAll},
			Retention: nats.WorkQueuePolicy,
			MaxAge:    1 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// already exists, update in place
			if _, err := js.UpdateStream(&cfg); err != nil {
				return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}
	return nil
}

// PublishSearchCompleted announces a saved batch of offers.
func (p *Publisher) PublishSearchCompleted(ctx context.Context, event *domain.SearchCompleted) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectSearchCompleted, data, nats.Context(ctx))
	return err
}

// PublishSearchRequested queues a search for the worker. The search id is
// used as message id so a duplicate publish is dropped by JetStream.
func (p *Publisher) PublishSearchRequested(ctx context.Context, event *domain.SearchRequested) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectSearchRequested, data, nats.Context(ctx), nats.MsgId(event.SearchID))
	return err
}

// Conn exposes the underlying connection for health checks.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
