package graph

import (
	"fmt"

	"faterun/internal/task"
)

// Plan is the validated execution order for one invocation.
//
// It is immutable after Build and safe for concurrent read access.
type Plan struct {
	order   []string
	roots   []string
	members map[string]struct{}
}

// Order returns the topological execution order: every dependency appears
// strictly before each of its dependents.
func (p *Plan) Order() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Roots returns the requested target names in request order.
func (p *Plan) Roots() []string {
	out := make([]string, len(p.roots))
	copy(out, p.roots)
	return out
}

// Contains reports whether name is part of the plan's closure.
func (p *Plan) Contains(name string) bool {
	_, ok := p.members[name]
	return ok
}

// Len returns the number of targets in the plan.
func (p *Plan) Len() int { return len(p.order) }

// DFS visit colors.
const (
	unvisited = 0
	visiting  = 1
	done      = 2
)

// Build resolves the closure of roots over the registry's dependency edges
// into a Plan.
//
// Traversal is depth-first from each root in request order, following each
// target's dependency list in declared order; a back-edge to a node still
// marked visiting is a cycle. Post-order emission yields a topological order
// whose ties are broken by first-discovery order, so identical input always
// produces an identical plan.
//
// Errors: *UnknownTargetError for a reference that does not resolve,
// *CycleError naming the participating targets. Targets outside the closure
// are never validated or executed.
func Build(reg *task.Registry, roots []string) (*Plan, error) {
	if reg == nil {
		return nil, fmt.Errorf("nil registry")
	}
	if len(roots) == 0 {
		return nil, fmt.Errorf("no targets requested")
	}

	color := make(map[string]int, reg.Len())
	order := make([]string, 0, reg.Len())
	// stack holds the current DFS path for cycle reporting.
	stack := make([]string, 0, reg.Len())

	var visit func(name, referencedBy string) error
	visit = func(name, referencedBy string) error {
		switch color[name] {
		case done:
			return nil
		case visiting:
			return &CycleError{Targets: cyclePath(stack, name)}
		}

		t, ok := reg.Lookup(name)
		if !ok {
			return &UnknownTargetError{Name: name, ReferencedBy: referencedBy}
		}

		color[name] = visiting
		stack = append(stack, name)
		for _, dep := range t.Dependencies {
			if err := visit(dep, name); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		color[name] = done
		order = append(order, name)
		return nil
	}

	seenRoots := make(map[string]struct{}, len(roots))
	uniqueRoots := make([]string, 0, len(roots))
	for _, root := range roots {
		if root == "" {
			return nil, fmt.Errorf("empty target name requested")
		}
		if _, dup := seenRoots[root]; dup {
			continue
		}
		seenRoots[root] = struct{}{}
		uniqueRoots = append(uniqueRoots, root)
		if err := visit(root, ""); err != nil {
			return nil, err
		}
	}

	members := make(map[string]struct{}, len(order))
	for _, name := range order {
		members[name] = struct{}{}
	}
	return &Plan{order: order, roots: uniqueRoots, members: members}, nil
}

// cyclePath extracts the closed cycle ending at the back-edge target from
// the current DFS stack.
func cyclePath(stack []string, backEdge string) []string {
	start := 0
	for i, name := range stack {
		if name == backEdge {
			start = i
			break
		}
	}
	path := make([]string, 0, len(stack)-start+1)
	path = append(path, stack[start:]...)
	path = append(path, backEdge)
	return path
}
