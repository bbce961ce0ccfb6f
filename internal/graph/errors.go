package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownTarget = errors.New("unknown target")
	ErrCycle         = errors.New("dependency cycle")
)

// UnknownTargetError reports a dependency reference that does not resolve to
// any target in the registry.
type UnknownTargetError struct {
	// Name is the missing target name.
	Name string
	// ReferencedBy is the target whose dependency list names it. Empty when
	// the missing name was requested directly as a root.
	ReferencedBy string
}

func (e *UnknownTargetError) Error() string {
	if e.ReferencedBy == "" {
		return fmt.Sprintf("unknown target: %q", e.Name)
	}
	return fmt.Sprintf("unknown target: %q (dependency of %q)", e.Name, e.ReferencedBy)
}

func (e *UnknownTargetError) Unwrap() error { return ErrUnknownTarget }

// CycleError reports a dependency cycle. Targets holds the cycle path in
// walk order, closed (first element repeated last).
type CycleError struct {
	Targets []string
}

func (e *CycleError) Error() string {
	if len(e.Targets) == 0 {
		return "dependency cycle"
	}
	return "dependency cycle: " + strings.Join(e.Targets, " -> ")
}

func (e *CycleError) Unwrap() error { return ErrCycle }
