// Package task defines the format-agnostic data model shared by the parsers
// and the execution engine: a Target is one named unit of work, a Registry is
// an immutable collection of them.
package task

// Options is the fixed record of per-target execution flags.
//
// The zero value (all false) is the default for every flag. Options are
// strictly local to the target that declares them; they are never inherited
// from dependents or dependencies.
type Options struct {
	// Silent discards the subprocess's stdout and stderr entirely.
	Silent bool `json:"silent,omitempty" yaml:"silent,omitempty" toml:"silent"`

	// IgnoreErr tolerates failures: a failing command does not fail the
	// target, and a failed dependency does not prevent the target from
	// running.
	IgnoreErr bool `json:"ignore_err,omitempty" yaml:"ignore_err,omitempty" toml:"ignore_err"`

	// KeepGoing keeps the invocation walking past this target's own
	// unsuppressed failure instead of aborting the remaining plan.
	KeepGoing bool `json:"keep_going,omitempty" yaml:"keep_going,omitempty" toml:"keep_going"`

	// Dry logs what would run and reports synthetic success; no process is
	// spawned.
	Dry bool `json:"dry,omitempty" yaml:"dry,omitempty" toml:"dry"`

	// Shell hands the command string to `sh -c` for interpretation instead
	// of splitting it into argv and executing directly.
	Shell bool `json:"shell,omitempty" yaml:"shell,omitempty" toml:"shell"`
}

// Target is the parsed representation of one named task.
//
// Referential integrity of Dependencies is a graph-build concern; a Target
// may reference names that do not exist in its Registry until graph.Build
// rejects them.
type Target struct {
	// Name is the unique key within a registry. Required.
	Name string `json:"name" yaml:"name" toml:"name"`

	// Commands is the ordered list of command strings. May be empty: a
	// target with no commands is a pure aggregation of its dependencies.
	Commands []string `json:"commands,omitempty" yaml:"commands,omitempty" toml:"commands"`

	// Dependencies lists targets that must complete before this one runs.
	// Declared order is preserved; it drives deterministic plan ordering.
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty" toml:"dependencies"`

	// Options are this target's execution flags.
	Options Options `json:"options,omitempty" yaml:"options,omitempty" toml:"options"`
}
