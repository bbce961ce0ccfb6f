package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"faterun/internal/task"
)

// JSONParser reads a dedicated faterun.json manifest:
//
//	{
//	  "options": {"keep_going": true},
//	  "targets": {
//	    "check": ["go vet ./..."],
//	    "docker-run": {
//	      "commands": ["docker run app"],
//	      "dependencies": ["docker-build"],
//	      "options": {"silent": true}
//	    }
//	  }
//	}
//
// Decoding is strict: unknown fields and trailing data are rejected to avoid
// silent divergence between what the file says and what runs.
type JSONParser struct{}

func NewJSONParser() *JSONParser { return &JSONParser{} }

func (p *JSONParser) Name() string { return "json" }

func (p *JSONParser) MatchesFileName(name string) bool {
	return name == "faterun.json"
}

func (p *JSONParser) MatchesContent(data []byte) bool {
	var doc struct {
		Targets map[string]json.RawMessage `json:"targets"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return false
	}
	return doc.Targets != nil
}

type jsonManifest struct {
	Options map[string]bool            `json:"options"`
	Targets map[string]json.RawMessage `json:"targets"`
}

type jsonTarget struct {
	Commands     []string        `json:"commands"`
	Dependencies []string        `json:"dependencies"`
	Options      map[string]bool `json:"options"`
}

func (p *JSONParser) Parse(data []byte) (*Manifest, error) {
	var doc jsonManifest
	if err := strictDecode(data, &doc); err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	if doc.Targets == nil {
		return nil, fmt.Errorf("json: missing targets object")
	}

	defaults, err := decodeOptions(doc.Options)
	if err != nil {
		return nil, fmt.Errorf("json: options: %w", err)
	}

	targets := make([]task.Target, 0, len(doc.Targets))
	for _, name := range sortedKeys(doc.Targets) {
		target, err := decodeJSONTarget(name, doc.Targets[name])
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}

	reg, err := task.NewRegistry(targets)
	if err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	return &Manifest{Registry: reg, Defaults: defaults}, nil
}

// decodeJSONTarget handles the array-or-object union shape.
func decodeJSONTarget(name string, raw json.RawMessage) (task.Target, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var commands []string
		if err := json.Unmarshal(trimmed, &commands); err != nil {
			return task.Target{}, fmt.Errorf("json: target %q: %w", name, err)
		}
		return task.Target{Name: name, Commands: commands}, nil
	}

	var body jsonTarget
	if err := strictDecode(trimmed, &body); err != nil {
		return task.Target{}, fmt.Errorf("json: target %q is neither a command list nor an object: %w", name, err)
	}
	opts, err := decodeOptions(body.Options)
	if err != nil {
		return task.Target{}, fmt.Errorf("json: target %q: options: %w", name, err)
	}
	return task.Target{
		Name:         name,
		Commands:     body.Commands,
		Dependencies: body.Dependencies,
		Options:      opts,
	}, nil
}

// strictDecode decodes one JSON value, rejecting unknown fields and any
// trailing data (including a second JSON value).
func strictDecode(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	var trailing any
	if err := dec.Decode(&trailing); err != io.EOF {
		if err == nil {
			return fmt.Errorf("trailing data")
		}
		return err
	}
	return nil
}
