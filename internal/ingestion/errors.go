package ingestion

import (
	"errors"
	"fmt"
	"net"
)

var (
	// ErrTransport covers network failures, timeouts and cancelled waits.
	ErrTransport = errors.New("feed transport failure")
	// ErrStatus is matched by every *StatusError.
	ErrStatus = errors.New("feed returned non-success status")
	// ErrMalformed covers empty bodies, invalid JSON and a missing features array.
	ErrMalformed = errors.New("feed response malformed")
)

// StatusError reports a non-2xx response from the feed.
type StatusError struct {
	Code   int
	Status string
	Body   string // leading bytes of the response body
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status code: %d - status: %s", e.Code, e.Status)
	}
	return fmt.Sprintf("unexpected status code: %d - status: %s: %s", e.Code, e.Status, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}

// UserMessage turns a fetch error into a single sentence suitable for the dashboard.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var statusErr *StatusError
	var netErr net.Error
	switch {
	case errors.As(err, &statusErr):
		return fmt.Sprintf("The earthquake feed responded with HTTP %d (%s).", statusErr.Code, statusErr.Status)
	case errors.As(err, &netErr) && netErr.Timeout():
		return "Request timed out while contacting the earthquake feed."
	case errors.Is(err, ErrTransport):
		return "Could not reach the earthquake feed."
	case errors.Is(err, ErrMalformed):
		return "The earthquake feed returned a response that could not be read."
	default:
		return "Unexpected error while loading earthquake data."
	}
}
