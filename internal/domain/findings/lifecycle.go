package findings

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidTransition is returned when a status change is not allowed
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrNotFound is returned when a finding does not exist
var ErrNotFound = errors.New("finding not found")

var allowedTransitions = map[Status][]Status{
	StatusOpen:          {StatusResolved, StatusAccepted, StatusFalsePositive},
	StatusResolved:      {StatusOpen},
	StatusAccepted:      {StatusOpen},
	StatusFalsePositive: {StatusOpen},
}

// Transition moves the finding to the target status.
// Accepting a risk or marking a false positive needs a justification.
func Transition(f *Finding, to Status, justification string, now time.Time) error {
	if !canTransition(f.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, f.Status, to)
	}

	justification = strings.TrimSpace(justification)
	if (to == StatusAccepted || to == StatusFalsePositive) && justification == "" {
		return fmt.Errorf("%w: %s requires a justification", ErrInvalidTransition, to)
	}

	switch to {
	case StatusResolved:
		resolvedAt := now
		f.ResolvedAt = &resolvedAt
	case StatusOpen:
		f.ResolvedAt = nil
	}

	if justification != "" {
		f.Justification = justification
	}
	f.Status = to
	return nil
}

func canTransition(from, to Status) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
