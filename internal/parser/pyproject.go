package parser

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"faterun/internal/task"
)

// PyprojectParser reads targets from a pyproject.toml's [tool.<name>]
// section, so a project can keep its task definitions next to the rest of
// its tooling config.
//
// A target is either an array of command strings:
//
//	[tool.faterun.targets]
//	check = ["ruff check .", "mypy ."]
//
// or a table with commands, dependencies and options:
//
//	[tool.faterun.targets.docker-run]
//	commands = ["docker run app"]
//	dependencies = ["docker-build"]
//	options = { silent = true }
type PyprojectParser struct {
	toolName string
}

// NewPyprojectParser uses the default "faterun" tool section.
func NewPyprojectParser() *PyprojectParser {
	return &PyprojectParser{toolName: "faterun"}
}

// NewPyprojectParserFor reads the [tool.<toolName>] section instead.
func NewPyprojectParserFor(toolName string) *PyprojectParser {
	return &PyprojectParser{toolName: toolName}
}

func (p *PyprojectParser) Name() string { return "pyproject" }

func (p *PyprojectParser) MatchesFileName(name string) bool {
	return name == "pyproject.toml"
}

// MatchesContent reports whether the TOML carries our tool section. A
// pyproject.toml without it belongs to some other tool and discovery should
// look elsewhere.
func (p *PyprojectParser) MatchesContent(data []byte) bool {
	var file pyprojectFile
	if _, err := toml.Decode(string(data), &file); err != nil {
		return false
	}
	_, ok := file.Tool[p.toolName]
	return ok
}

type pyprojectFile struct {
	Tool map[string]toml.Primitive `toml:"tool"`
}

type pyprojectSection struct {
	Options task.Options              `toml:"options"`
	Targets map[string]toml.Primitive `toml:"targets"`
}

type pyprojectTarget struct {
	Commands     []string     `toml:"commands"`
	Dependencies []string     `toml:"dependencies"`
	Options      task.Options `toml:"options"`
}

func (p *PyprojectParser) Parse(data []byte) (*Manifest, error) {
	var file pyprojectFile
	md, err := toml.Decode(string(data), &file)
	if err != nil {
		return nil, fmt.Errorf("pyproject: %w", err)
	}

	prim, ok := file.Tool[p.toolName]
	if !ok {
		return nil, fmt.Errorf("pyproject: missing [tool.%s] section", p.toolName)
	}

	var section pyprojectSection
	if err := md.PrimitiveDecode(prim, &section); err != nil {
		return nil, fmt.Errorf("pyproject: [tool.%s]: %w", p.toolName, err)
	}
	if section.Targets == nil {
		return nil, fmt.Errorf("pyproject: [tool.%s] has no targets table", p.toolName)
	}

	targets := make([]task.Target, 0, len(section.Targets))
	for _, name := range sortedKeys(section.Targets) {
		target, err := p.decodeTarget(md, name, section.Targets[name])
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}

	if err := p.checkUndecoded(md); err != nil {
		return nil, err
	}

	reg, err := task.NewRegistry(targets)
	if err != nil {
		return nil, fmt.Errorf("pyproject: %w", err)
	}
	return &Manifest{Registry: reg, Defaults: section.Options}, nil
}

// decodeTarget handles the list-or-table union shape of a target value.
func (p *PyprojectParser) decodeTarget(md toml.MetaData, name string, prim toml.Primitive) (task.Target, error) {
	var commands []string
	if err := md.PrimitiveDecode(prim, &commands); err == nil {
		return task.Target{Name: name, Commands: commands}, nil
	}

	var body pyprojectTarget
	if err := md.PrimitiveDecode(prim, &body); err != nil {
		return task.Target{}, fmt.Errorf("pyproject: target %q is neither a command list nor a table: %w", name, err)
	}
	return task.Target{
		Name:         name,
		Commands:     body.Commands,
		Dependencies: body.Dependencies,
		Options:      body.Options,
	}, nil
}

// checkUndecoded rejects keys under our tool section that no decode
// consumed, e.g. a misspelled option flag. Keys belonging to other tools'
// sections are ignored.
func (p *PyprojectParser) checkUndecoded(md toml.MetaData) error {
	prefix := "tool." + p.toolName + "."
	var stray []string
	for _, key := range md.Undecoded() {
		if strings.HasPrefix(key.String(), prefix) {
			stray = append(stray, key.String())
		}
	}
	if len(stray) > 0 {
		return fmt.Errorf("pyproject: unrecognized keys: %s", strings.Join(stray, ", "))
	}
	return nil
}
