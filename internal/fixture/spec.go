package fixture

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// NodeSpec describes one node of a fixture desktop.
type NodeSpec struct {
	Name         string `yaml:"name"`
	Class        string `yaml:"class,omitempty"`
	AutomationID string `yaml:"automation_id,omitempty"`
	ControlType  string `yaml:"control_type,omitempty"`
	Localized    string `yaml:"localized,omitempty"`
	Bounds       [4]int `yaml:"bounds,flow,omitempty"`
	// Runtime is a hex list such as "[2A,7]". Nodes without one are
	// numbered automatically.
	Runtime string `yaml:"runtime,omitempty"`
	// Fail lists operations that return an error for this node: any of
	// the property names (name, class, automation_id, control_type,
	// localized, bounds, runtime), the navigation names (parent,
	// first_child, next_sibling, last_child), click, or "all".
	Fail     []string   `yaml:"fail,omitempty,flow"`
	Children []NodeSpec `yaml:"children,omitempty"`
}

// File is the top level of a fixture YAML document.
type File struct {
	Desktop NodeSpec `yaml:"desktop"`
}

// Parse decodes a fixture document and builds its desktop.
func Parse(data []byte) (*Desktop, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return New(f.Desktop)
}

// Load reads a fixture document from disk.
func Load(path string) (*Desktop, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return Parse(data)
}
