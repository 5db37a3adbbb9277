package ai

import (
	"errors"
	"fmt"

	"github.com/sony/gobreaker/v2"
)

// CollaboratorError wraps a failure reported by or while reaching the
// processing collaborator. StatusCode is zero for transport failures.
type CollaboratorError struct {
	Operation  string
	StatusCode int
	Message    string
	Err        error
}

func (e *CollaboratorError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("ai %s: status %d: %s", e.Operation, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("ai %s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("ai %s: %s", e.Operation, e.Message)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// ErrNotConfigured is returned when no collaborator endpoint is set.
var ErrNotConfigured = errors.New("ai service not configured")

// IsCircuitOpen reports whether the error means the breaker is refusing
// calls rather than the collaborator itself failing.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
