// Package engine walks an execution plan in dependency order, runs each
// target's commands through a runner, and applies the failure propagation
// policy.
package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"faterun/internal/graph"
	"faterun/internal/runner"
	"faterun/internal/task"
)

// Config is the explicit invocation-level configuration. It is deliberately
// separate from per-target options: nothing here is merged into target
// records.
type Config struct {
	// KeepGoing continues processing remaining branches of the plan after
	// an unsuppressed failure instead of aborting.
	KeepGoing bool

	// Dry forces dry mode for every command of every target.
	Dry bool
}

// Result is the recorded outcome of one invocation.
type Result struct {
	// State holds each planned target's final status. Targets never
	// considered because of an abort remain PENDING.
	State RunState

	// ExecutionOrder lists targets that entered RUNNING, in order.
	ExecutionOrder []string

	// Errors holds the triggering error for each FAILED target.
	Errors map[string]error
}

// Engine executes plans. A single logical thread of control drives the walk;
// each target runs at most once per invocation and all dependents observe
// the same recorded outcome.
type Engine struct {
	Runner runner.Runner
	Log    zerolog.Logger
	Config Config
}

// New returns an engine using the given runner.
func New(r runner.Runner, log zerolog.Logger, cfg Config) *Engine {
	return &Engine{Runner: r, Log: log, Config: cfg}
}

// Run executes the plan against the registry and returns per-target
// outcomes.
//
// The returned error is either an internal walk error or, once the walk has
// completed, an *InvocationError enumerating failed and skipped targets. A
// non-nil *Result accompanies the aggregate error so callers can report a
// full summary.
func (e *Engine) Run(ctx context.Context, plan *graph.Plan, reg *task.Registry) (*Result, error) {
	if plan == nil {
		return nil, fmt.Errorf("nil plan")
	}
	if e.Runner == nil {
		return nil, fmt.Errorf("nil runner")
	}

	order := plan.Order()
	state := NewRunState(order)
	res := &Result{
		State:          state,
		ExecutionOrder: make([]string, 0, len(order)),
		Errors:         make(map[string]error),
	}

	aborted := false
	for _, name := range order {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("execution cancelled: %w", err)
		}

		t, ok := reg.Lookup(name)
		if !ok {
			return res, fmt.Errorf("planned target %q missing from registry", name)
		}

		// After an abort the walk drains the remaining plan: nothing runs,
		// but dependents of a failure are still recorded as SKIPPED so the
		// aggregate error names them. Independent targets stay PENDING.
		if aborted {
			if e.skipOnDrain(state, t) {
				if err := state.transition(name, StatusPending, StatusSkipped); err != nil {
					return res, err
				}
				e.Log.Warn().Str("target", name).Msg("skipped: dependency did not succeed")
			}
			continue
		}

		proceed, err := e.gateDependencies(state, t)
		if err != nil {
			return res, err
		}
		if !proceed {
			if err := state.transition(name, StatusPending, StatusSkipped); err != nil {
				return res, err
			}
			e.Log.Warn().Str("target", name).Msg("skipped: dependency did not succeed")
			continue
		}

		if err := state.transition(name, StatusPending, StatusRunning); err != nil {
			return res, err
		}
		res.ExecutionOrder = append(res.ExecutionOrder, name)
		e.Log.Info().Str("target", name).Msg("running")

		runErr := e.runCommands(ctx, t)
		if runErr != nil {
			if err := state.transition(name, StatusRunning, StatusFailed); err != nil {
				return res, err
			}
			res.Errors[name] = runErr
			e.Log.Error().Str("target", name).Err(runErr).Msg("failed")
			if !e.Config.KeepGoing && !t.Options.KeepGoing {
				aborted = true
			}
			continue
		}

		if err := state.transition(name, StatusRunning, StatusSucceeded); err != nil {
			return res, err
		}
		e.Log.Debug().Str("target", name).Msg("succeeded")
	}

	if agg := e.aggregate(order, state); agg != nil {
		return res, agg
	}
	return res, nil
}

// skipOnDrain reports whether a target must be marked SKIPPED while the
// walk drains an aborted plan.
//
// Only dependents of a recorded failure are skipped; a dependency that is
// still PENDING means the target was never reached, and a target whose
// IgnoreErr would have cleared the gate is left PENDING too, since nothing
// is scheduled after an abort.
func (e *Engine) skipOnDrain(state RunState, t task.Target) bool {
	if t.Options.IgnoreErr {
		return false
	}
	for _, dep := range t.Dependencies {
		if st := state[dep]; st == StatusFailed || st == StatusSkipped {
			return true
		}
	}
	return false
}

// gateDependencies evaluates a target's recorded dependency outcomes.
//
// Returns false when the target must be skipped. A dependency with no
// terminal outcome indicates a broken plan and is an internal error.
func (e *Engine) gateDependencies(state RunState, t task.Target) (bool, error) {
	unhappy := false
	for _, dep := range t.Dependencies {
		st, ok := state[dep]
		if !ok || !IsTerminal(st) {
			return false, fmt.Errorf("dependency %q of %q has no recorded outcome", dep, t.Name)
		}
		if st == StatusFailed || st == StatusSkipped {
			unhappy = true
		}
	}
	if unhappy && !t.Options.IgnoreErr {
		return false, nil
	}
	return true, nil
}

// runCommands runs the target's commands in order.
//
// A command failure stops the target and is returned — unless the target's
// IgnoreErr is set, in which case the failure is logged as ignored and the
// remaining commands still run (tolerant-continue). An empty command list is
// a pure aggregation target and succeeds immediately.
func (e *Engine) runCommands(ctx context.Context, t task.Target) error {
	opts := t.Options
	if e.Config.Dry {
		opts.Dry = true
	}

	for _, command := range t.Commands {
		err := e.Runner.Run(ctx, command, opts)
		if err == nil {
			continue
		}
		if opts.IgnoreErr {
			e.Log.Info().Str("target", t.Name).Str("command", command).Err(err).Msg("ignored")
			continue
		}
		return fmt.Errorf("target %q: %w", t.Name, err)
	}
	return nil
}

// aggregate builds the post-walk invocation error, if any outcome warrants
// one. Both lists follow plan order.
func (e *Engine) aggregate(order []string, state RunState) *InvocationError {
	var failed, skipped []string
	for _, name := range order {
		switch state[name] {
		case StatusFailed:
			failed = append(failed, name)
		case StatusSkipped:
			skipped = append(skipped, name)
		}
	}
	if len(failed) == 0 && len(skipped) == 0 {
		return nil
	}
	return &InvocationError{Failed: failed, Skipped: skipped}
}
