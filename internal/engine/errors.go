package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvocationFailed is the sentinel kind for the aggregate run error.
var ErrInvocationFailed = errors.New("invocation failed")

// InvocationError is the aggregate outcome error for one invocation.
//
// It is returned after the run completes, never raised mid-run, so callers
// can report a full summary.
type InvocationError struct {
	// Failed lists targets that ended FAILED, in plan order.
	Failed []string
	// Skipped lists targets that ended SKIPPED, in plan order.
	Skipped []string
}

func (e *InvocationError) Error() string {
	var parts []string
	if len(e.Failed) > 0 {
		parts = append(parts, fmt.Sprintf("failed: %s", strings.Join(e.Failed, " ")))
	}
	if len(e.Skipped) > 0 {
		parts = append(parts, fmt.Sprintf("skipped: %s", strings.Join(e.Skipped, " ")))
	}
	if len(parts) == 0 {
		return "invocation failed"
	}
	return "invocation failed: " + strings.Join(parts, "; ")
}

func (e *InvocationError) Unwrap() error { return ErrInvocationFailed }
