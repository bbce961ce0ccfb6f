// Package parser turns raw configuration content into a target registry.
//
// Parsers implement a recognition contract (file name + content) so the host
// can try candidates in a defined priority order until one matches — the
// deterministic counterpart of "guessing" the configuration format.
package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"faterun/internal/task"
)

// ErrNoConfig means no registered parser recognized any file.
var ErrNoConfig = errors.New("no configuration file found")

// Manifest is the parsed content of one configuration file.
type Manifest struct {
	// Registry holds the target definitions.
	Registry *task.Registry

	// Defaults carries the manifest-level options table. It is surfaced as
	// an explicit invocation-scoped structure; it is never merged into
	// per-target option records.
	Defaults task.Options
}

// Parser converts one configuration format into a Manifest.
//
// A parser that recognizes a file but finds structurally invalid target data
// must fail Parse with a descriptive error rather than producing an empty
// registry.
type Parser interface {
	// Name identifies the parser for --parser selection.
	Name() string

	// MatchesFileName reports whether the base file name belongs to this
	// format.
	MatchesFileName(name string) bool

	// MatchesContent reports whether the content looks like this format.
	// Used during discovery to reject files that share the name but carry
	// no runnable configuration (e.g. a pyproject.toml without our tool
	// section).
	MatchesContent(data []byte) bool

	Parse(data []byte) (*Manifest, error)
}

// Registry is an ordered list of parsers, iterated in priority order.
type Registry struct {
	parsers []Parser
}

// NewRegistry builds a parser registry with the given priority order.
func NewRegistry(parsers ...Parser) *Registry {
	return &Registry{parsers: parsers}
}

// Default returns the standard parser set: pyproject.toml first, then the
// dedicated YAML and JSON manifests.
func Default() *Registry {
	return NewRegistry(NewPyprojectParser(), NewYAMLParser(), NewJSONParser())
}

// Lookup returns the parser with the given name.
func (r *Registry) Lookup(name string) (Parser, bool) {
	for _, p := range r.parsers {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// Names returns the registered parser names in priority order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.parsers))
	for _, p := range r.parsers {
		names = append(names, p.Name())
	}
	return names
}

// Discover scans dir for a recognizable configuration file.
//
// Parsers are tried in priority order; within a parser, directory entries
// are visited in lexical order. The first file whose name and content both
// match wins, so discovery is ordered fallback, never nondeterministic.
func (r *Registry) Discover(dir string) (string, Parser, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", nil, fmt.Errorf("scanning %q: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, p := range r.parsers {
		for _, name := range names {
			if !p.MatchesFileName(name) {
				continue
			}
			path := filepath.Join(dir, name)
			data, err := os.ReadFile(path)
			if err != nil {
				return "", nil, fmt.Errorf("reading %q: %w", path, err)
			}
			if p.MatchesContent(data) {
				return path, p, nil
			}
		}
	}
	return "", nil, ErrNoConfig
}

// ForFile picks a parser for an explicitly given file, by file name first
// and by content as a fallback.
func (r *Registry) ForFile(path string, data []byte) (Parser, error) {
	base := filepath.Base(path)
	for _, p := range r.parsers {
		if p.MatchesFileName(base) && p.MatchesContent(data) {
			return p, nil
		}
	}
	for _, p := range r.parsers {
		if p.MatchesContent(data) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("cannot determine parser for %q (use --parser)", path)
}

// setOption assigns one recognized boolean option key. Shared by the YAML
// and JSON parsers; the TOML parser gets strictness from undecoded-key
// tracking instead.
func setOption(opts *task.Options, key string, value bool) error {
	switch key {
	case "silent":
		opts.Silent = value
	case "ignore_err":
		opts.IgnoreErr = value
	case "keep_going":
		opts.KeepGoing = value
	case "dry":
		opts.Dry = value
	case "shell":
		opts.Shell = value
	default:
		return fmt.Errorf("unknown option %q", key)
	}
	return nil
}

// decodeOptions validates and applies a full options mapping.
func decodeOptions(raw map[string]bool) (task.Options, error) {
	var opts task.Options
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := setOption(&opts, k, raw[k]); err != nil {
			return task.Options{}, err
		}
	}
	return opts, nil
}

// sortedKeys returns map keys in lexical order for stable iteration and
// error reporting.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
