package booking

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds raised by the lifecycle manager. Callers distinguish
// them with errors.Is.
var (
	// ErrTradeNotFound means no active trade version exists for the tradeId.
	ErrTradeNotFound = errors.New("trade not found")

	// ErrInvalidState means the operation is not legal for the active
	// version's current status.
	ErrInvalidState = errors.New("operation not permitted in current trade status")

	// ErrConflict means a concurrent writer changed the trade between the
	// read and the write. The operation may be retried.
	ErrConflict = errors.New("trade was modified concurrently")

	// ErrInactiveEntity means a referenced book, counterparty or trader
	// exists but is inactive. Kept distinct from not-found so callers can
	// message the two differently.
	ErrInactiveEntity = errors.New("referenced entity is inactive")
)

// ValidationError carries every accumulated business-rule violation from a
// rejected create or amend, never just the first.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("trade validation failed: %s", strings.Join(e.Errors, "; "))
}

// GatewayError wraps an infrastructural failure from the reference-data or
// persistence gateway, keeping it distinct from business-rule failures.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway failure during %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
