package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/trainengine/internal/adapters/nats"
	"github.com/samirrijal/trainengine/internal/core/domain"
	"github.com/samirrijal/trainengine/internal/pkg/metrics"
)

// wsMessage is sent from client to narrow or widen the feed.
type wsMessage struct {
	Action   string `json:"action"`   // "watch" | "unwatch"
	SearchID string `json:"searchId"` // "" = every search
}

// searchFilter tracks which search ids a client wants; empty means all.
type searchFilter struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

func (f *searchFilter) watch(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ids == nil {
		f.ids = make(map[string]struct{})
	}
	f.ids[id] = struct{}{}
}

func (f *searchFilter) unwatch(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.ids[id]; !ok {
		return false
	}
	delete(f.ids, id)
	return true
}

func (f *searchFilter) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = nil
}

func (f *searchFilter) match(id string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if len(f.ids) == 0 {
		return true
	}
	_, ok := f.ids[id]
	return ok
}

// WebSocketHandler returns a handler that relays SearchCompleted events
// from NATS to connected clients. By default a client sees every search;
// {"action":"watch","searchId":"..."} narrows the feed to the watched ids and
// {"action":"unwatch","searchId":""} widens it again.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		log := slog.Default().With("remote", c.RemoteAddr().String())
		log.Info("ws client connected")
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		filter := &searchFilter{}
		sub, err := nc.Subscribe(natsadapter.SubjectSearchCompleted, func(msg *nats.Msg) {
			var event domain.SearchCompleted
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				return
			}
			if filter.match(event.SearchID) {
				_ = writeJSON(json.RawMessage(msg.Data))
			}
		})
		if err != nil {
			log.Error("ws subscribe failed", "error", err)
			return
		}
		defer func() { _ = sub.Unsubscribe() }()

		// Keep-alive ping
		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(raw, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			switch m.Action {
			case "watch":
				if m.SearchID == "" {
					_ = writeJSON(map[string]string{"error": "searchId is required"})
					continue
				}
				filter.watch(m.SearchID)
				_ = writeJSON(map[string]string{"status": "watching", "searchId": m.SearchID})
			case "unwatch":
				if m.SearchID == "" {
					filter.reset()
					_ = writeJSON(map[string]string{"status": "watching all"})
					continue
				}
				if !filter.unwatch(m.SearchID) {
					_ = writeJSON(map[string]string{"error": "not watching " + m.SearchID})
					continue
				}
				_ = writeJSON(map[string]string{"status": "unwatched", "searchId": m.SearchID})
			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		log.Info("ws client disconnected")
	}
}
