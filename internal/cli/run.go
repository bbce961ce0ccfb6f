package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"faterun/internal/engine"
	"faterun/internal/graph"
	"faterun/internal/observability"
	"faterun/internal/parser"
	"faterun/internal/runner"
	"faterun/internal/task"
)

// Execute runs one canonicalized invocation end to end and returns the
// process exit code.
//
// Exit code mapping: configuration problems (no manifest, parse errors,
// unknown targets, cycles) abort before any command runs with
// ExitConfigError; a completed run with failed or skipped targets returns
// ExitRunFailure.
func Execute(ctx context.Context, inv Invocation) (int, error) {
	return execute(ctx, inv, os.Stdout)
}

func execute(ctx context.Context, inv Invocation, stdout io.Writer) (int, error) {
	if err := inv.Canonicalize(); err != nil {
		return ExitCodeFor(err), err
	}
	logger := observability.InitLogger("faterun", observability.ParseLevel(inv.LogLevel))

	manifest, path, err := loadManifest(inv)
	if err != nil {
		return ExitCodeFor(err), err
	}
	logger.Debug().Str("manifest", path).Msg("configuration loaded")
	warnIgnoredDefaults(logger, manifest.Defaults)

	if inv.ListOnly {
		for _, name := range manifest.Registry.Names() {
			fmt.Fprintln(stdout, name)
		}
		return ExitSuccess, nil
	}

	plan, err := graph.Build(manifest.Registry, inv.Targets)
	if err != nil {
		wrapped := configErrorf("%v", err)
		return ExitCodeFor(wrapped), wrapped
	}

	cfg := engine.Config{
		KeepGoing: inv.KeepGoing || manifest.Defaults.KeepGoing,
		Dry:       inv.Dry || manifest.Defaults.Dry,
	}
	eng := engine.New(&runner.ExecRunner{Dir: inv.Dir, Log: logger}, logger, cfg)

	res, runErr := eng.Run(ctx, plan, manifest.Registry)
	if runErr == nil {
		logger.Info().Int("targets", plan.Len()).Msg("all targets succeeded")
		return ExitSuccess, nil
	}

	var aggErr *engine.InvocationError
	if errors.As(runErr, &aggErr) {
		for _, name := range aggErr.Failed {
			logger.Error().Str("target", name).Err(res.Errors[name]).Msg("target failed")
		}
		for _, name := range aggErr.Skipped {
			logger.Warn().Str("target", name).Msg("target skipped")
		}
		return ExitRunFailure, runErr
	}
	return ExitInternalError, runErr
}

// warnIgnoredDefaults flags manifest-level option keys that only have
// per-target meaning. Options are never inherited by targets, so a top-level
// silent/ignore_err/shell has no effect; only keep_going and dry are
// invocation-scoped.
func warnIgnoredDefaults(logger zerolog.Logger, defaults task.Options) {
	var ignored []string
	if defaults.Silent {
		ignored = append(ignored, "silent")
	}
	if defaults.IgnoreErr {
		ignored = append(ignored, "ignore_err")
	}
	if defaults.Shell {
		ignored = append(ignored, "shell")
	}
	if len(ignored) > 0 {
		logger.Warn().
			Strs("options", ignored).
			Msg("manifest-level options apply per target only; ignored")
	}
}

// loadManifest resolves the configuration source per the invocation:
// explicit parser + file, explicit file with format guessing, or full
// directory discovery.
func loadManifest(inv Invocation) (*parser.Manifest, string, error) {
	parsers := parser.Default()

	var p parser.Parser
	if inv.ParserName != "" {
		found, ok := parsers.Lookup(inv.ParserName)
		if !ok {
			return nil, "", invalidInvocationf("unknown parser %q (have: %v)", inv.ParserName, parsers.Names())
		}
		p = found
	}

	if inv.File != "" {
		data, err := os.ReadFile(inv.File)
		if err != nil {
			return nil, "", configErrorf("reading %q: %v", inv.File, err)
		}
		if p == nil {
			p, err = parsers.ForFile(inv.File, data)
			if err != nil {
				return nil, "", configErrorf("%v", err)
			}
		}
		m, err := p.Parse(data)
		if err != nil {
			return nil, "", configErrorf("%v", err)
		}
		return m, inv.File, nil
	}

	if p != nil {
		// Forced parser without an explicit file: discover with only that
		// parser registered.
		path, found, err := parser.NewRegistry(p).Discover(inv.Dir)
		if err != nil {
			return nil, "", configErrorf("%v", err)
		}
		return parseFile(found, path)
	}

	path, found, err := parsers.Discover(inv.Dir)
	if err != nil {
		return nil, "", configErrorf("%v", err)
	}
	return parseFile(found, path)
}

func parseFile(p parser.Parser, path string) (*parser.Manifest, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", configErrorf("reading %q: %v", path, err)
	}
	m, err := p.Parse(data)
	if err != nil {
		return nil, "", configErrorf("%v", err)
	}
	return m, path, nil
}
