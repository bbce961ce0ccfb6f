package parser

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"faterun/internal/task"
)

// YAMLParser reads a dedicated faterun.yaml manifest:
//
//	options:
//	  keep_going: true
//	targets:
//	  check:
//	    - go vet ./...
//	  docker-run:
//	    commands: ["docker run app"]
//	    dependencies: [docker-build]
//	    options: {silent: true}
type YAMLParser struct{}

func NewYAMLParser() *YAMLParser { return &YAMLParser{} }

func (p *YAMLParser) Name() string { return "yaml" }

func (p *YAMLParser) MatchesFileName(name string) bool {
	return name == "faterun.yaml" || name == "faterun.yml"
}

func (p *YAMLParser) MatchesContent(data []byte) bool {
	var doc yamlManifest
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return false
	}
	return doc.Targets != nil
}

type yamlManifest struct {
	Options map[string]bool      `yaml:"options"`
	Targets map[string]yaml.Node `yaml:"targets"`
}

type yamlTarget struct {
	Commands     []string        `yaml:"commands"`
	Dependencies []string        `yaml:"dependencies"`
	Options      map[string]bool `yaml:"options"`
}

func (p *YAMLParser) Parse(data []byte) (*Manifest, error) {
	var doc yamlManifest
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	if doc.Targets == nil {
		return nil, fmt.Errorf("yaml: missing targets mapping")
	}

	defaults, err := decodeOptions(doc.Options)
	if err != nil {
		return nil, fmt.Errorf("yaml: options: %w", err)
	}

	targets := make([]task.Target, 0, len(doc.Targets))
	for _, name := range sortedKeys(doc.Targets) {
		target, err := decodeYAMLTarget(name, doc.Targets[name])
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}

	reg, err := task.NewRegistry(targets)
	if err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	return &Manifest{Registry: reg, Defaults: defaults}, nil
}

// decodeYAMLTarget handles the sequence-or-mapping union shape.
func decodeYAMLTarget(name string, node yaml.Node) (task.Target, error) {
	switch node.Kind {
	case yaml.SequenceNode:
		var commands []string
		if err := node.Decode(&commands); err != nil {
			return task.Target{}, fmt.Errorf("yaml: target %q: %w", name, err)
		}
		return task.Target{Name: name, Commands: commands}, nil
	case yaml.MappingNode:
		var body yamlTarget
		if err := node.Decode(&body); err != nil {
			return task.Target{}, fmt.Errorf("yaml: target %q: %w", name, err)
		}
		opts, err := decodeOptions(body.Options)
		if err != nil {
			return task.Target{}, fmt.Errorf("yaml: target %q: options: %w", name, err)
		}
		return task.Target{
			Name:         name,
			Commands:     body.Commands,
			Dependencies: body.Dependencies,
			Options:      opts,
		}, nil
	default:
		return task.Target{}, fmt.Errorf("yaml: target %q is neither a command list nor a mapping", name)
	}
}
