// Package cli canonicalizes an invocation and wires the parsers, graph and
// engine together for the faterun binary.
package cli

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Semantic process exit codes.
const (
	ExitSuccess           = 0
	ExitRunFailure        = 1
	ExitInvalidInvocation = 2
	ExitConfigError       = 3
	ExitInternalError     = 4
)

// Invocation is the canonicalized description of one run.
type Invocation struct {
	// Targets are the requested root target names, in request order.
	Targets []string

	// File is an explicit manifest path. Empty means discover one in Dir.
	File string

	// ParserName forces a specific parser. Empty means guess.
	ParserName string

	// Dir is the working directory for discovery and spawned commands.
	Dir string

	// KeepGoing and Dry are invocation-level overrides (engine.Config).
	KeepGoing bool
	Dry       bool

	// LogLevel is the zerolog level name (default info).
	LogLevel string

	// ListOnly lists targets instead of running them.
	ListOnly bool
}

// InvocationError carries a semantic exit code alongside the message.
type InvocationError struct {
	ExitCode int
	Message  string
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func invalidInvocationf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitInvalidInvocation, Message: fmt.Sprintf(format, args...)}
}

func configErrorf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitConfigError, Message: fmt.Sprintf(format, args...)}
}

// Canonicalize validates the invocation and normalizes its paths.
func (inv *Invocation) Canonicalize() error {
	if !inv.ListOnly && len(inv.Targets) == 0 {
		return invalidInvocationf("at least one target is required")
	}
	for _, name := range inv.Targets {
		if name == "" {
			return invalidInvocationf("empty target name")
		}
	}
	if inv.Dir == "" {
		inv.Dir = "."
	}
	inv.Dir = filepath.Clean(inv.Dir)
	if inv.File != "" {
		inv.File = filepath.Clean(inv.File)
	}
	return nil
}

// ExitCodeFor extracts a semantic exit code from an error returned by
// Execute. Unknown errors map to ExitInternalError.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var invErr *InvocationError
	if errors.As(err, &invErr) && invErr != nil && invErr.ExitCode != 0 {
		return invErr.ExitCode
	}
	return ExitInternalError
}
