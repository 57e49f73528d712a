package scheduling

import (
	"fmt"
	"strings"

	"github.com/dentalops/dentalops/internal/platform/apperr"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

var allStatuses = []Status{StatusScheduled, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled}

// ParseStatus accepts the canonical spelling, case-insensitively.
func ParseStatus(s string) (Status, error) {
	v := Status(strings.ToLower(strings.TrimSpace(s)))
	if v.Valid() {
		return v, nil
	}
	return "", apperr.Validation("status", "unknown status %q", s)
}

func (s Status) Valid() bool {
	for _, v := range allStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// next lists the forward transitions of the lifecycle. cancelled is
// reachable from every non-terminal state and is added by CanTransition.
var next = map[Status]Status{
	StatusScheduled:  StatusConfirmed,
	StatusConfirmed:  StatusInProgress,
	StatusInProgress: StatusCompleted,
}

// StatusPolicy controls how strictly status edits follow the lifecycle.
type StatusPolicy string

const (
	// PolicyTerminal allows any status to be selected while the appointment
	// is open, but never reopens a completed or cancelled one.
	PolicyTerminal StatusPolicy = "terminal"
	// PolicyStrict enforces the full transition table.
	PolicyStrict StatusPolicy = "strict"
	// PolicyPermissive allows free reassignment of any status.
	PolicyPermissive StatusPolicy = "permissive"
)

// ParsePolicy maps a configuration value to a StatusPolicy. Empty means
// PolicyTerminal.
func ParsePolicy(s string) (StatusPolicy, error) {
	switch p := StatusPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyTerminal, nil
	case PolicyTerminal, PolicyStrict, PolicyPermissive:
		return p, nil
	default:
		return "", fmt.Errorf("unknown appointment status policy %q", s)
	}
}

// CanTransition returns a ValidationError when policy forbids moving from
// one status to another. Staying in the same status is always allowed.
func (p StatusPolicy) CanTransition(from, to Status) error {
	if !to.Valid() {
		return apperr.Validation("status", "unknown status %q", to)
	}
	if from == to || p == PolicyPermissive {
		return nil
	}
	if from.IsTerminal() {
		return apperr.Validation("status", "appointment is %s and cannot become %s", from, to)
	}
	if p == PolicyTerminal {
		return nil
	}
	if to == StatusCancelled || next[from] == to {
		return nil
	}
	return apperr.Validation("status", "cannot move from %s to %s", from, to)
}
