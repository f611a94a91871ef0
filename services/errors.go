package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Engine error taxonomy. Handlers map these to HTTP status codes in one place;
// services never touch fiber.

// ValidationError: malformed or out-of-range input, rejected before any state change.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// ConflictError covers both idempotency flavors:
//   - Benign: duplicate of a naturally-idempotent action (second check-in today,
//     duplicate registration) — the state already reflects the intent.
//   - Hard (Benign=false): double-spending a one-way transition (completing an
//     already-completed event) — rejected with no state change.
type ConflictError struct {
	Resource string
	Reason   string
	Benign   bool
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: %s", e.Resource, e.Reason)
}

// NotFoundError: unknown user/event/badge/quiz/lesson.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// PermissionError: role-gated action attempted without the required role.
type PermissionError struct {
	Action string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("not allowed to %s", e.Action)
}

// StoreError wraps a persistence failure. Propagated as-is, no retry — every
// write path is idempotent or guarded by a one-way check, so callers may retry.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// isDuplicate reports whether err is the store's unique-constraint conflict
// signal. The engine branches on this instead of pre-checking existence, so
// there is no check-then-act window.
func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func hasRole(roles []string, want string) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}
