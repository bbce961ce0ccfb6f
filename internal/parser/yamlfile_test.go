package parser

import (
	"reflect"
	"testing"
)

const yamlSample = `
options:
  dry: true
targets:
  check:
    - go vet ./...
    - go test ./...
  docker-build:
    commands:
      - docker build -t app .
  docker-run:
    commands: ["docker run app"]
    dependencies: [docker-build]
    options:
      ignore_err: true
`

func TestYAML_Parse(t *testing.T) {
	m, err := NewYAMLParser().Parse([]byte(yamlSample))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	check, ok := m.Registry.Lookup("check")
	if !ok {
		t.Fatalf("expected check target")
	}
	want := []string{"go vet ./...", "go test ./..."}
	if !reflect.DeepEqual(check.Commands, want) {
		t.Fatalf("commands mismatch: got %v want %v", check.Commands, want)
	}

	run, _ := m.Registry.Lookup("docker-run")
	if !reflect.DeepEqual(run.Dependencies, []string{"docker-build"}) {
		t.Fatalf("unexpected dependencies: %v", run.Dependencies)
	}
	if !run.Options.IgnoreErr {
		t.Fatalf("expected ignore_err, got %+v", run.Options)
	}

	if !m.Defaults.Dry {
		t.Fatalf("expected manifest-level dry default")
	}
}

func TestYAML_UnknownOptionKeyRejected(t *testing.T) {
	data := []byte("targets:\n  a:\n    commands: [x]\n    options: {loud: true}\n")
	if _, err := NewYAMLParser().Parse(data); err == nil {
		t.Fatalf("expected error for unknown option key")
	}
}

func TestYAML_ScalarTargetRejected(t *testing.T) {
	data := []byte("targets:\n  a: 42\n")
	if _, err := NewYAMLParser().Parse(data); err == nil {
		t.Fatalf("expected error for scalar target")
	}
}

func TestYAML_MissingTargets(t *testing.T) {
	p := NewYAMLParser()
	data := []byte("options:\n  dry: true\n")
	if p.MatchesContent(data) {
		t.Fatalf("expected content mismatch without targets")
	}
	if _, err := p.Parse(data); err == nil {
		t.Fatalf("expected parse error without targets")
	}
}

func TestYAML_FileName(t *testing.T) {
	p := NewYAMLParser()
	for _, name := range []string{"faterun.yaml", "faterun.yml"} {
		if !p.MatchesFileName(name) {
			t.Fatalf("expected %q to match", name)
		}
	}
	if p.MatchesFileName("pipeline.yaml") {
		t.Fatalf("unexpected match for pipeline.yaml")
	}
}
