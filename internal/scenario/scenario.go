// Package scenario reads and writes YAML scenario files: a budget, cost
// entries, effect entries and an optional scaling configuration.
//
// The entry types are defined by their JSON wire format, so YAML is decoded
// generically and re-encoded as JSON before it reaches the typed structs.
package scenario

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/carllingstrom/AI-Delning-sub001/internal/project"
	"github.com/carllingstrom/AI-Delning-sub001/internal/service"
	"github.com/carllingstrom/AI-Delning-sub001/pkg/finance"
	"github.com/carllingstrom/AI-Delning-sub001/pkg/model"
	"github.com/carllingstrom/AI-Delning-sub001/pkg/scaling"
	"gopkg.in/yaml.v3"
)

// File is one scenario.
type File struct {
	Name        string              `json:"name,omitempty"`
	Budget      interface{}         `json:"budget,omitempty"`
	CostEntries []model.CostEntry   `json:"costEntries,omitempty"`
	Effects     []model.EffectEntry `json:"effects,omitempty"`
	Scaling     *scaling.Input      `json:"scaling,omitempty"`
}

// Load reads the scenario at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML (or JSON) scenario document.
func Parse(data []byte) (*File, error) {
	var generic interface{}
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if generic == nil {
		return &File{}, nil
	}
	if _, ok := generic.(map[string]interface{}); !ok {
		return nil, fmt.Errorf("failed to parse scenario: expected a mapping, got %T", generic)
	}

	encoded, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("failed to convert scenario: %w", err)
	}

	var f File
	if err := json.Unmarshal(encoded, &f); err != nil {
		return nil, fmt.Errorf("failed to decode scenario: %w", err)
	}
	return &f, nil
}

// Marshal renders f as block-style YAML with keys in declaration order.
func Marshal(f *File) ([]byte, error) {
	encoded, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("failed to encode scenario: %w", err)
	}

	// JSON is valid YAML; decoding into a node keeps the key order.
	var node yaml.Node
	if err := yaml.Unmarshal(encoded, &node); err != nil {
		return nil, fmt.Errorf("failed to convert scenario: %w", err)
	}
	blockStyle(&node)

	out, err := yaml.Marshal(&node)
	if err != nil {
		return nil, fmt.Errorf("failed to render scenario: %w", err)
	}
	return out, nil
}

func blockStyle(n *yaml.Node) {
	if n.Kind == yaml.MappingNode || n.Kind == yaml.SequenceNode {
		n.Style = 0
	}
	if n.Kind == yaml.ScalarNode && n.Style == yaml.DoubleQuotedStyle {
		n.Style = 0
	}
	for _, child := range n.Content {
		blockStyle(child)
	}
}

// FromProject builds a scenario from a stored project.
func FromProject(p *project.Project) (*File, error) {
	costs, err := p.CostEntries()
	if err != nil {
		return nil, err
	}
	effects, err := p.EffectEntries()
	if err != nil {
		return nil, err
	}

	f := &File{Name: p.Title, CostEntries: costs, Effects: effects}
	if p.Budget != "" {
		if amount := finance.ParseBudget(p.Budget); amount != 0 {
			f.Budget = amount
		} else {
			f.Budget = p.Budget
		}
	}
	return f, nil
}

// Request converts the scenario into a stateless calculation request.
func (f *File) Request() service.CalculationRequest {
	return service.CalculationRequest{
		Budget:      f.Budget,
		CostEntries: f.CostEntries,
		Effects:     f.Effects,
		Scaling:     f.Scaling,
	}
}
