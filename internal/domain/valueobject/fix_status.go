package valueobject

import "fmt"

// FixStatus represents the per-file state of a repair attempt.
type FixStatus string

// Fix status constants.
const (
	FixStatusUnmodified  FixStatus = "unmodified"
	FixStatusPatched     FixStatus = "patched"
	FixStatusValidatedOK FixStatus = "validated_ok"
	FixStatusRejected    FixStatus = "rejected"
	FixStatusFailed      FixStatus = "failed"
)

// validFixStatuses contains all valid fix statuses.
var validFixStatuses = map[FixStatus]bool{
	FixStatusUnmodified:  true,
	FixStatusPatched:     true,
	FixStatusValidatedOK: true,
	FixStatusRejected:    true,
	FixStatusFailed:      true,
}

// NewFixStatus creates a new FixStatus with validation.
func NewFixStatus(status string) (FixStatus, error) {
	s := FixStatus(status)
	if !validFixStatuses[s] {
		return "", fmt.Errorf("invalid fix status: %s", status)
	}
	return s, nil
}

// String returns the string representation of the status.
func (s FixStatus) String() string {
	return string(s)
}

// IsTerminal returns true if this status represents a final state.
func (s FixStatus) IsTerminal() bool {
	return s == FixStatusUnmodified || s == FixStatusValidatedOK ||
		s == FixStatusRejected || s == FixStatusFailed
}

// CanTransitionTo returns true if the status can transition to the target status.
// The per-file lifecycle is: unmodified -> patched -> {validated_ok, rejected}.
// A file may also move straight to failed on an I/O error at any non-terminal
// point. Rejection restores the original content, so rejected is terminal and
// the on-disk state equals the unmodified state.
func (s FixStatus) CanTransitionTo(target FixStatus) bool {
	transitions := map[FixStatus][]FixStatus{
		FixStatusUnmodified: {
			FixStatusPatched,
			FixStatusFailed,
		},
		FixStatusPatched: {
			FixStatusValidatedOK,
			FixStatusRejected,
			FixStatusFailed,
		},
		FixStatusValidatedOK: {},
		FixStatusRejected:    {},
		FixStatusFailed:      {},
	}

	for _, validTarget := range transitions[s] {
		if target == validTarget {
			return true
		}
	}
	return false
}
