package donation

import (
	"errors"
	"fmt"

	"github.com/rohits-web03/foodlink/internal/models"
)

// ErrNotFound is returned when a donation id does not resolve.
var ErrNotFound = errors.New("donation not found")

// ValidationError reports malformed input at creation time.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidTransitionError reports an illegal or stale lifecycle transition,
// including the loser of a race against a concurrent transition or sweep.
type InvalidTransitionError struct {
	From models.Status
	To   models.Status
	Role models.Role
}

func (e *InvalidTransitionError) Error() string {
	if e.Role != "" {
		return fmt.Sprintf("role %s may not move a donation from %s to %s", e.Role, e.From, e.To)
	}
	return fmt.Sprintf("cannot move a donation from %s to %s", e.From, e.To)
}

// StorageError wraps an I/O failure from the donation store. Request-driven
// callers surface it; the sweeper logs it and waits for the next tick.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
