package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/trainengine/internal/core/domain"
)

// Envelope is the body of every JSON response of the search API.
type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func requestID(c *fiber.Ctx) string {
	rid, _ := c.Locals("requestid").(string)
	return rid
}

// ok writes a successful envelope.
func ok(c *fiber.Ctx, status int, data any, message string) error {
	return c.Status(status).JSON(Envelope{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// newError builds a JSON error envelope with a request ID.
func newError(c *fiber.Ctx, status int, title, message string, details any) error {
	return c.Status(status).JSON(Envelope{
		Success:   false,
		Error:     title,
		Message:   message,
		Details:   details,
		RequestID: requestID(c),
	})
}

// errValidation returns a 400 listing every problem found in the request.
func errValidation(c *fiber.Ctx, err error) error {
	return newError(c, fiber.StatusBadRequest, "Validation failed", "", validationDetails(err))
}

// errNotFound returns a 404.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "Not Found", msg, nil)
}

// errUnavailable returns a 503.
func errUnavailable(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusServiceUnavailable, "Service unavailable", msg, nil)
}

// errInternal returns a 500. The cause is only exposed in development.
func errInternal(c *fiber.Ctx, deps *Dependencies, err error) error {
	return newError(c, fiber.StatusInternalServerError, "Internal server error", internalMessage(deps, err), nil)
}

// internalMessage is the caller-facing text of an unexpected failure. Detail
// is only exposed in development.
func internalMessage(deps *Dependencies, err error) string {
	if deps.IsDevelopment && err != nil {
		return err.Error()
	}
	return "Failed to retrieve stations"
}

// respondError maps a service error onto the matching envelope.
func respondError(c *fiber.Ctx, deps *Dependencies, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return errValidation(c, err)
	case errors.Is(err, domain.ErrAsyncUnavailable):
		return errUnavailable(c, "Asynchronous search is not available")
	default:
		LoggerFromCtx(c.UserContext()).Error("request failed",
			"path", c.Path(), "error", err)
		return errInternal(c, deps, err)
	}
}

// validationDetails turns a wrapped ErrValidation into its list of problems.
func validationDetails(err error) []string {
	msg := strings.TrimPrefix(err.Error(), domain.ErrValidation.Error())
	msg = strings.TrimPrefix(msg, ": ")
	if msg == "" {
		return []string{domain.ErrValidation.Error()}
	}
	return strings.Split(msg, "; ")
}

// ErrorHandler renders errors returned by handlers and middleware (timeouts,
// upgrade required, panics recovered) as envelopes.
func ErrorHandler(isDevelopment bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return newError(c, fe.Code, httpStatusTitle(fe.Code), fe.Message, nil)
		}
		msg := "Internal server error"
		if isDevelopment {
			msg = err.Error()
		}
		return newError(c, fiber.StatusInternalServerError, "Internal server error", msg, nil)
	}
}

func httpStatusTitle(code int) string {
	switch code {
	case fiber.StatusNotFound:
		return "Not Found"
	case fiber.StatusRequestTimeout:
		return "Request Timeout"
	case fiber.StatusTooManyRequests:
		return "Too Many Requests"
	case fiber.StatusUpgradeRequired:
		return "Upgrade Required"
	}
	if code >= 500 {
		return "Internal server error"
	}
	return "Bad Request"
}
