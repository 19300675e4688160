package providers

import (
	"fmt"
)

// Google web service status codes.
const (
	statusOK             = "OK"
	statusZeroResults    = "ZERO_RESULTS"
	statusNotFound       = "NOT_FOUND"
	statusInvalidRequest = "INVALID_REQUEST"
)

// googleStatus converts the status field of a Google web service answer
// into an error. OVER_QUERY_LIMIT, REQUEST_DENIED and UNKNOWN_ERROR are
// upstream failures.
func googleStatus(op, status, message string) error {
	switch status {
	case statusOK:
		return nil
	case statusZeroResults, statusNotFound:
		return fmt.Errorf("%s: %s: %w", op, status, ErrNotFound)
	case statusInvalidRequest:
		return fmt.Errorf("%s: %s %s: %w", op, status, message, ErrInvalidRequest)
	case "":
		return fmt.Errorf("%s: response without status", op)
	default:
		return fmt.Errorf("%s: upstream status %s %s", op, status, message)
	}
}
