// Package servivuelo implements ports.SupplierGateway against the
// Servivuelo timetable and fare API.
package servivuelo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/trainengine/internal/core/domain"
	"github.com/samirrijal/trainengine/internal/core/ports"
	"github.com/samirrijal/trainengine/internal/pkg/metrics"
	"github.com/samirrijal/trainengine/internal/pkg/telemetry"
)

var _ ports.SupplierGateway = (*Client)(nil)

// maxBody caps how much of a response is read.
const maxBody = 4 << 20

// Client calls the Servivuelo API. Every call is a JSON POST bounded by
// the configured timeout; nothing is retried.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	log     *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a Client for baseURL. timeout applies to each call.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    &http.Client{},
		log:     slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type timetablesRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Date string `json:"date"`
}

type timetablesResponse struct {
	TimeTables []timeTable `json:"timeTables"`
}

type timeTable struct {
	ShipID        string `json:"shipID"`
	ShipIDAlt     string `json:"shipId"`
	DepartureDate string `json:"departureDate"`
	ArrivalDate   string `json:"arrivalDate"`
}

type accommodationsRequest struct {
	ShipID        string `json:"shipID"`
	DepartureDate string `json:"departureDate"`
}

type accommodationsResponse struct {
	Accommodations []accommodation `json:"accommodations"`
}

type accommodation struct {
	Type      string    `json:"type"`
	Available flexValue `json:"available"`
}

type pricesRequest struct {
	ShipID        string `json:"shipID"`
	DepartureDate string `json:"departureDate"`
	Accommodation string `json:"accommodation"`
}

// flexValue accepts a JSON string or number and keeps its text.
type flexValue string

func (f *flexValue) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexValue(n.String())
	return nil
}

// FetchTimetables returns the runs between two supplier stations on date.
func (c *Client) FetchTimetables(ctx context.Context, from, to, date string, pax domain.Passengers) ([]domain.Run, error) {
	q := url.Values{}
	q.Set("adults", strconv.Itoa(pax.Adults))
	q.Set("childrens", strconv.Itoa(pax.Children))

	var resp timetablesResponse
	if err := c.call(ctx, domain.OpTimetables, q, timetablesRequest{From: from, To: to, Date: date}, &resp,
		attribute.String("supplier.from", from), attribute.String("supplier.to", to)); err != nil {
		return nil, err
	}

	runs := make([]domain.Run, 0, len(resp.TimeTables))
	for _, tt := range resp.TimeTables {
		id := tt.ShipID
		if id == "" {
			id = tt.ShipIDAlt
		}
		runs = append(runs, domain.Run{ShipID: id, DepartureTime: tt.DepartureDate, ArrivalTime: tt.ArrivalDate})
	}
	return runs, nil
}

// FetchAccommodations returns the fare classes of a run. departureDate is
// the run's departure value as returned by the timetable call.
func (c *Client) FetchAccommodations(ctx context.Context, shipID, departureDate string, pax domain.Passengers) ([]domain.Accommodation, error) {
	var resp accommodationsResponse
	if err := c.call(ctx, domain.OpAccommodations, nil, accommodationsRequest{ShipID: shipID, DepartureDate: departureDate}, &resp,
		telemetry.AttrSupplierShip.String(shipID)); err != nil {
		return nil, err
	}

	out := make([]domain.Accommodation, 0, len(resp.Accommodations))
	for _, a := range resp.Accommodations {
		out = append(out, domain.Accommodation{Type: a.Type, Available: string(a.Available)})
	}
	return out, nil
}

// FetchPrice returns the unit price of one passenger class. bonus is only
// sent for adults, as a JSON array.
func (c *Client) FetchPrice(ctx context.Context, shipID, departureDate, accommodation string, class domain.PaxClass, bonus []string) (float64, error) {
	q := url.Values{}
	q.Set("pax", string(class))
	if class == domain.PaxAdult && len(bonus) > 0 {
		b, err := json.Marshal(bonus)
		if err != nil {
			return 0, &domain.SupplierError{Op: domain.OpPrices, Message: "encode bonus", Err: err}
		}
		q.Set("bonus", string(b))
	}

	var raw json.RawMessage
	if err := c.call(ctx, domain.OpPrices, q, pricesRequest{ShipID: shipID, DepartureDate: departureDate, Accommodation: accommodation}, &raw,
		telemetry.AttrSupplierShip.String(shipID), telemetry.AttrSupplierClass.String(string(class))); err != nil {
		return 0, err
	}

	price, err := parsePrice(raw)
	if err != nil {
		return 0, &domain.SupplierError{Op: domain.OpPrices, Status: http.StatusOK, Message: err.Error(), Err: domain.ErrMalformedPrice}
	}
	return price, nil
}

// parsePrice accepts a JSON number or a numeric string.
func parsePrice(raw json.RawMessage) (float64, error) {
	s := strings.TrimSpace(string(raw))
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", domain.ErrMalformedPrice, truncate(string(raw), 64))
	}
	return v, nil
}

// call POSTs body to <base>/<op>?query and decodes a 2xx JSON response
// into out. Every failure is a *domain.SupplierError.
func (c *Client) call(ctx context.Context, op string, query url.Values, body, out any, attrs ...attribute.KeyValue) (err error) {
	start := time.Now()
	ctx, span := telemetry.Tracer().Start(ctx, "servivuelo."+op)
	span.SetAttributes(append(attrs, telemetry.AttrSupplierOp.String(op))...)
	defer func() {
		metrics.ObserveSupplierCall(op, start, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return &domain.SupplierError{Op: op, Message: "encode request", Err: err}
	}

	u := c.baseURL + "/" + op
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return &domain.SupplierError{Op: op, Message: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.log.DebugContext(ctx, "supplier request", "operation", op, "url", u)

	resp, err := c.http.Do(req)
	if err != nil {
		msg := "request failed"
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "timeout"
		}
		c.log.ErrorContext(ctx, "supplier call failed", "operation", op, "error", err)
		return &domain.SupplierError{Op: op, Message: msg, Err: err}
	}
	defer resp.Body.Close()

	span.SetAttributes(telemetry.AttrHTTPStatus.Int(resp.StatusCode))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return &domain.SupplierError{Op: op, Status: resp.StatusCode, Message: "read body", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.ErrorContext(ctx, "supplier returned error status",
			"operation", op, "status", resp.StatusCode, "body", truncate(string(data), 256))
		return &domain.SupplierError{Op: op, Status: resp.StatusCode, Message: truncate(strings.TrimSpace(string(data)), 256)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &domain.SupplierError{Op: op, Status: resp.StatusCode, Message: "decode response", Err: err}
	}

	c.log.DebugContext(ctx, "supplier response", "operation", op, "status", resp.StatusCode, "elapsed", time.Since(start))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
