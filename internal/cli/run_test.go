package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"faterun/internal/task"
)

func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestExecute_EndToEndSuccess(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "pyproject.toml", `
[tool.faterun.targets]
hello = ["touch hello.txt"]
`)
	code, err := Execute(context.Background(), Invocation{
		Targets:  []string{"hello"},
		Dir:      dir,
		LogLevel: "error",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if code != ExitSuccess {
		t.Fatalf("expected exit %d, got %d", ExitSuccess, code)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "hello.txt")); statErr != nil {
		t.Fatalf("expected command to run in workdir: %v", statErr)
	}
}

func TestExecute_DependencyFailureExitCode(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "faterun.yaml", `
targets:
  docker-build:
    - "false"
  docker-run:
    commands: ["touch ran.txt"]
    dependencies: [docker-build]
`)
	code, err := Execute(context.Background(), Invocation{
		Targets:  []string{"docker-run"},
		Dir:      dir,
		LogLevel: "fatal",
	})
	if err == nil {
		t.Fatalf("expected invocation error")
	}
	if code != ExitRunFailure {
		t.Fatalf("expected exit %d, got %d", ExitRunFailure, code)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "ran.txt")); !os.IsNotExist(statErr) {
		t.Fatalf("skipped target's command ran")
	}
}

func TestExecute_CycleIsConfigError(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "faterun.json", `{
  "targets": {
    "a": {"commands": ["true"], "dependencies": ["b"]},
    "b": {"commands": ["true"], "dependencies": ["a"]}
  }
}`)
	code, err := Execute(context.Background(), Invocation{
		Targets:  []string{"a"},
		Dir:      dir,
		LogLevel: "fatal",
	})
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if code != ExitConfigError {
		t.Fatalf("expected exit %d, got %d", ExitConfigError, code)
	}
}

func TestExecute_UnknownTargetIsConfigError(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "faterun.yaml", "targets:\n  a: [\"true\"]\n")
	code, _ := Execute(context.Background(), Invocation{
		Targets:  []string{"missing"},
		Dir:      dir,
		LogLevel: "fatal",
	})
	if code != ExitConfigError {
		t.Fatalf("expected exit %d, got %d", ExitConfigError, code)
	}
}

func TestExecute_NoManifest(t *testing.T) {
	dir := t.TempDir()
	code, err := Execute(context.Background(), Invocation{
		Targets:  []string{"a"},
		Dir:      dir,
		LogLevel: "fatal",
	})
	if err == nil || code != ExitConfigError {
		t.Fatalf("expected config error, got code %d err %v", code, err)
	}
}

func TestExecute_NoTargets(t *testing.T) {
	code, err := Execute(context.Background(), Invocation{LogLevel: "fatal"})
	if err == nil || code != ExitInvalidInvocation {
		t.Fatalf("expected invalid invocation, got code %d err %v", code, err)
	}
}

func TestExecute_UnknownParserName(t *testing.T) {
	code, err := Execute(context.Background(), Invocation{
		Targets:    []string{"a"},
		ParserName: "hcl",
		LogLevel:   "fatal",
	})
	if err == nil || code != ExitInvalidInvocation {
		t.Fatalf("expected invalid invocation, got code %d err %v", code, err)
	}
}

func TestExecute_ExplicitFileWithForcedParser(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "tasks.conf", "targets:\n  a: [\"true\"]\n")
	code, err := Execute(context.Background(), Invocation{
		Targets:    []string{"a"},
		File:       path,
		ParserName: "yaml",
		Dir:        dir,
		LogLevel:   "fatal",
	})
	if err != nil || code != ExitSuccess {
		t.Fatalf("expected success, got code %d err %v", code, err)
	}
}

func TestExecute_GlobalDryRunsNothing(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "faterun.yaml", "targets:\n  mark: [\"touch mark.txt\"]\n")
	code, err := Execute(context.Background(), Invocation{
		Targets:  []string{"mark"},
		Dir:      dir,
		Dry:      true,
		LogLevel: "fatal",
	})
	if err != nil || code != ExitSuccess {
		t.Fatalf("expected success, got code %d err %v", code, err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "mark.txt")); !os.IsNotExist(statErr) {
		t.Fatalf("dry run spawned a process")
	}
}

func TestExecute_ManifestKeepGoingDefault(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "faterun.yaml", `
options:
  keep_going: true
targets:
  broken:
    - "false"
  fine:
    - "touch fine.txt"
`)
	code, _ := Execute(context.Background(), Invocation{
		Targets:  []string{"broken", "fine"},
		Dir:      dir,
		LogLevel: "fatal",
	})
	if code != ExitRunFailure {
		t.Fatalf("expected exit %d, got %d", ExitRunFailure, code)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "fine.txt")); statErr != nil {
		t.Fatalf("keep_going default did not continue independent target: %v", statErr)
	}
}

func TestExecute_ListTargets(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "faterun.yaml", "targets:\n  b: [\"true\"]\n  a: [\"true\"]\n")
	var out bytes.Buffer
	code, err := execute(context.Background(), Invocation{
		ListOnly: true,
		Dir:      dir,
		LogLevel: "fatal",
	}, &out)
	if err != nil || code != ExitSuccess {
		t.Fatalf("expected success, got code %d err %v", code, err)
	}
	if got := out.String(); got != "a\nb\n" {
		t.Fatalf("unexpected listing: %q", got)
	}
}

func TestWarnIgnoredDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	warnIgnoredDefaults(logger, task.Options{Silent: true, Shell: true})
	got := buf.String()
	for _, want := range []string{"silent", "shell", "ignored"} {
		if !bytes.Contains([]byte(got), []byte(want)) {
			t.Fatalf("expected %q in warning, got %q", want, got)
		}
	}
	if bytes.Contains([]byte(got), []byte("ignore_err")) {
		t.Fatalf("unset option must not be reported: %q", got)
	}

	buf.Reset()
	warnIgnoredDefaults(logger, task.Options{KeepGoing: true, Dry: true})
	if buf.Len() != 0 {
		t.Fatalf("invocation-scoped defaults must not warn: %q", buf.String())
	}
}

func TestExitCodeFor(t *testing.T) {
	if got := ExitCodeFor(nil); got != ExitSuccess {
		t.Fatalf("expected %d, got %d", ExitSuccess, got)
	}
	if got := ExitCodeFor(invalidInvocationf("bad")); got != ExitInvalidInvocation {
		t.Fatalf("expected %d, got %d", ExitInvalidInvocation, got)
	}
	if got := ExitCodeFor(configErrorf("bad")); got != ExitConfigError {
		t.Fatalf("expected %d, got %d", ExitConfigError, got)
	}
	if got := ExitCodeFor(os.ErrClosed); got != ExitInternalError {
		t.Fatalf("expected %d, got %d", ExitInternalError, got)
	}
}
