// Package lifecycle encodes the pickup request state machine. It
// validates status words and transitions; it deliberately does not
// check who is asking. Whether the caller is the assigned collector,
// or whether the assignment target actually holds the collector role,
// is not enforced here and matches the observed upstream behaviour.
package lifecycle

import (
	"errors"
	"fmt"

	"github.com/greenloop/ewaste-pickup/internal/model"
)

// ErrInvalidTransition wraps every rejected status change so handlers
// can map the whole family to a single 400 response.
var ErrInvalidTransition = errors.New("invalid status transition")

// validTransitions lists, per current status, the statuses a request
// may move to. Completed is terminal.
var validTransitions = map[model.PickupStatus][]model.PickupStatus{
	model.StatusPending: {
		model.StatusAssigned,
	},
	model.StatusAssigned: {
		model.StatusInProgress,
		model.StatusCompleted,
	},
	model.StatusInProgress: {
		model.StatusCompleted,
	},
	model.StatusCompleted: {
		// terminal
	},
}

// ValidStatus reports whether s names a known lifecycle state.
func ValidStatus(s string) bool {
	_, ok := validTransitions[model.PickupStatus(s)]
	return ok
}

// ValidateTransition checks that moving from current to next is
// allowed. Re-asserting the current status is a no-op and always
// permitted, so partial updates that echo the stored status back do
// not fail.
func ValidateTransition(current, next model.PickupStatus) error {
	if current == next {
		return nil
	}
	allowed, ok := validTransitions[current]
	if !ok {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, current)
	}
	for _, s := range allowed {
		if s == next {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, next)
}
