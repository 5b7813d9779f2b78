package gh

import (
	"fmt"
	"strings"
)

// APIError is any remote failure that is not classified as rate limiting:
// not-found, permission denied, schema or argument errors. It is never
// retried. StatusCode is 0 when the transport exposed no HTTP status.
type APIError struct {
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("github api error (status %d): %s", e.StatusCode, e.Message)
	}
	return "github api error: " + e.Message
}

// RateLimitError is returned after a rate-limit condition persisted through
// every retry attempt. It is distinct from APIError so callers can apply
// their own backoff or alerting.
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string {
	return "rate limit exceeded: " + e.Message
}

// ValidationError is a local rejection of a caller-supplied query. No network
// call has been made when it is returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Message
}

// isRateLimited reports whether an error looks like GitHub throttling. The
// GraphQL transport exposes no structured rate-limit signal, so this is a
// last-resort substring heuristic on the error text.
func isRateLimited(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "rate limit")
}

// classify wraps a non-rate-limit transport failure as an APIError, pulling
// an HTTP status out of the error text when the transport included one
// ("server returned a non-200 status code: 502").
func classify(err error) *APIError {
	msg := err.Error()
	apiErr := &APIError{Message: msg}

	const marker = "status code: "
	if idx := strings.LastIndex(msg, marker); idx >= 0 {
		var code int
		if _, scanErr := fmt.Sscanf(msg[idx+len(marker):], "%d", &code); scanErr == nil {
			apiErr.StatusCode = code
		}
	}
	return apiErr
}
