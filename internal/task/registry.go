package task

import (
	"fmt"
	"sort"
)

// Registry is an immutable mapping from target name to Target.
//
// It validates on construction and is safe for concurrent read access.
type Registry struct {
	targets map[string]Target
}

// NewRegistry builds a Registry from the given targets.
//
// Validation rejects:
//   - empty target names
//   - duplicate target names
//   - duplicate entries within a single dependency list
func NewRegistry(targets []Target) (*Registry, error) {
	byName := make(map[string]Target, len(targets))
	for _, t := range targets {
		if t.Name == "" {
			return nil, fmt.Errorf("target name is required")
		}
		if _, exists := byName[t.Name]; exists {
			return nil, fmt.Errorf("duplicate target name: %q", t.Name)
		}
		seen := make(map[string]struct{}, len(t.Dependencies))
		for _, dep := range t.Dependencies {
			if dep == "" {
				return nil, fmt.Errorf("target %q: empty dependency name", t.Name)
			}
			if _, dup := seen[dep]; dup {
				return nil, fmt.Errorf("target %q: duplicate dependency %q", t.Name, dep)
			}
			seen[dep] = struct{}{}
		}
		byName[t.Name] = t
	}
	return &Registry{targets: byName}, nil
}

// Lookup returns the target with the given name.
func (r *Registry) Lookup(name string) (Target, bool) {
	t, ok := r.targets[name]
	return t, ok
}

// Len returns the number of targets in the registry.
func (r *Registry) Len() int { return len(r.targets) }

// Names returns all target names in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.targets))
	for name := range r.targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
