package api

import (
	"errors"
	"fmt"
)

// ErrCircuitOpen is returned without contacting the backend while the breaker is open.
var ErrCircuitOpen = errors.New("backend temporarily unavailable")

// StatusError is a response outside the 2xx range.
type StatusError struct {
	StatusCode int
	// Message and Details come from a {"error": ..., "details": ...} body when present.
	Message string
	Details string
}

func (e *StatusError) Error() string {
	switch {
	case e.Message != "" && e.Details != "":
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	case e.Message != "":
		return e.Message
	default:
		return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
	}
}

// IsStatus reports whether err carries the given HTTP status.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
