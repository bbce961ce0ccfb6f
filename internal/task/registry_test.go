package task

import (
	"reflect"
	"testing"
)

func TestNewRegistry_Valid(t *testing.T) {
	r, err := NewRegistry([]Target{
		{Name: "check", Commands: []string{"go vet ./..."}},
		{Name: "build", Dependencies: []string{"check"}},
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if r.Len() != 2 {
		t.Fatalf("expected 2 targets, got %d", r.Len())
	}
	got, ok := r.Lookup("build")
	if !ok {
		t.Fatalf("expected build to resolve")
	}
	if !reflect.DeepEqual(got.Dependencies, []string{"check"}) {
		t.Fatalf("unexpected dependencies: %v", got.Dependencies)
	}
}

func TestNewRegistry_RejectsEmptyName(t *testing.T) {
	if _, err := NewRegistry([]Target{{Name: ""}}); err == nil {
		t.Fatalf("expected error for empty name")
	}
}

func TestNewRegistry_RejectsDuplicateName(t *testing.T) {
	_, err := NewRegistry([]Target{{Name: "a"}, {Name: "a"}})
	if err == nil {
		t.Fatalf("expected error for duplicate name")
	}
}

func TestNewRegistry_RejectsDuplicateDependency(t *testing.T) {
	_, err := NewRegistry([]Target{{Name: "a", Dependencies: []string{"b", "b"}}})
	if err == nil {
		t.Fatalf("expected error for duplicate dependency")
	}
}

func TestNewRegistry_UnknownDependencyAllowedHere(t *testing.T) {
	// Referential integrity is checked at graph-build time, not earlier.
	if _, err := NewRegistry([]Target{{Name: "a", Dependencies: []string{"missing"}}}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestRegistry_NamesSorted(t *testing.T) {
	r, err := NewRegistry([]Target{{Name: "c"}, {Name: "a"}, {Name: "b"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"a", "b", "c"}
	if got := r.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("names mismatch: got %v want %v", got, want)
	}
}
