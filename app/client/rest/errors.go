package rest

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrCircuitOpen is returned while an upstream is considered unhealthy and
// requests to it are rejected without being sent.
var ErrCircuitOpen = errors.New("circuit breaker is open")

const maxErrorBody = 2048

// APIError describes a non-2xx upstream response.
type APIError struct {
	Service    string
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	if body == "" {
		return fmt.Sprintf("%s API error: %s", e.Service, e.Status)
	}
	return fmt.Sprintf("%s API error: %s: %s", e.Service, e.Status, body)
}

// clientFault reports 4xx responses. They mean the request was wrong, not
// that the upstream is failing, so the breaker does not count them.
func (e *APIError) clientFault() bool {
	return e.StatusCode >= http.StatusBadRequest && e.StatusCode < http.StatusInternalServerError
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}
