package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a malformed search request. Handlers map it to 400.
	ErrValidation = errors.New("validation failed")

	// ErrMissingSupplierCode is attached to a station that has no supplier
	// code in one or both directions. No supplier call is made for it.
	ErrMissingSupplierCode = errors.New("missing supplier station codes")

	// ErrPersistence wraps a failed bulk save of offers.
	ErrPersistence = errors.New("save offers")

	// ErrMalformedPrice is returned when the supplier answers a price call
	// with something that is not a number.
	ErrMalformedPrice = errors.New("malformed price")

	// ErrAsyncUnavailable is returned when an asynchronous search cannot be
	// queued because no event broker is connected.
	ErrAsyncUnavailable = errors.New("asynchronous search unavailable")
)

// Supplier operations, used as SupplierError.Op and metric labels.
const (
	OpTimetables     = "timetables"
	OpAccommodations = "accommodations"
	OpPrices         = "prices"
)

// SupplierError is a failed call to the supplier API: transport error,
// timeout, non-2xx status or an undecodable body.
type SupplierError struct {
	Op      string // timetables, accommodations or prices
	Status  int    // 0 when no response was received
	Message string
	Err     error
}

func (e *SupplierError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("supplier %s: status %d: %s", e.Op, e.Status, msg)
	}
	return fmt.Sprintf("supplier %s: %s", e.Op, msg)
}

func (e *SupplierError) Unwrap() error { return e.Err }

// IsSupplierError reports whether err is (or wraps) a *SupplierError.
func IsSupplierError(err error) bool {
	var se *SupplierError
	return errors.As(err, &se)
}
