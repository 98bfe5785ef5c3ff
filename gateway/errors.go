package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound matches 404 responses.
	ErrNotFound = errors.New("not found")
	// ErrPremiumRequired matches 403 responses from premium-only endpoints.
	ErrPremiumRequired = errors.New("premium subscription required")
	// ErrUnavailable matches 5xx responses and transport failures.
	ErrUnavailable = errors.New("service unavailable")
)

// APIError describes a failed call to the remote service.
type APIError struct {
	Op     string
	Status int    // 0 when the request never got a response
	Body   string
	Err    error // transport error, if any
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.Body == "" {
		return fmt.Sprintf("%s: API returned %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: API returned %d: %s", e.Op, e.Status, e.Body)
}

func (e *APIError) Unwrap() error { return e.Err }

// Is lets errors.Is match the sentinel errors by status.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrPremiumRequired:
		return e.Status == http.StatusForbidden
	case ErrUnavailable:
		return e.Status == 0 || e.Status >= 500
	}
	return false
}

// NotFound reports a 404; transcript lookups treat it as "nothing stored".
func (e *APIError) NotFound() bool { return e.Status == http.StatusNotFound }

func isRetryable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// UserMessage converts an error from this package into a short message fit
// for a notification.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPremiumRequired):
		return "Premium subscription required for this feature."
	case errors.Is(err, ErrNotFound):
		return "The requested briefing is not available."
	case errors.Is(err, ErrUnavailable):
		return "Briefing service is unavailable. Please try again."
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Body != "" {
		return fmt.Sprintf("Request failed (%d): %s", apiErr.Status, apiErr.Body)
	}
	return "Something went wrong while contacting the briefing service."
}
