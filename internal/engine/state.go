package engine

import "fmt"

// Status is the runtime execution state of one target.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusRunning   Status = "RUNNING"
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
	StatusSkipped   Status = "SKIPPED"
)

// IsTerminal reports whether the status is final for this invocation.
func IsTerminal(s Status) bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusSkipped:
		return true
	default:
		return false
	}
}

// RunState is the mutable per-target status table for one invocation.
//
// Single writer (the engine's walk); dependents read a target's outcome only
// after it has been recorded.
type RunState map[string]Status

// NewRunState initializes every named target to PENDING.
func NewRunState(names []string) RunState {
	state := make(RunState, len(names))
	for _, name := range names {
		state[name] = StatusPending
	}
	return state
}

// transition performs a validated state change for a single target. The
// caller supplies the expected prior status so invalid walks are observable
// rather than silent.
func (s RunState) transition(name string, from, to Status) error {
	cur, ok := s[name]
	if !ok {
		return fmt.Errorf("unknown target in run state: %q", name)
	}
	if cur != from {
		return fmt.Errorf("invalid transition for %q: expected %s, got %s", name, from, cur)
	}
	if !allowedTransition(from, to) {
		return fmt.Errorf("disallowed transition for %q: %s -> %s", name, from, to)
	}
	s[name] = to
	return nil
}

func allowedTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusRunning || to == StatusSkipped
	case StatusRunning:
		return to == StatusSucceeded || to == StatusFailed
	default:
		return false
	}
}
