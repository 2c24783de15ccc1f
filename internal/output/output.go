// Package output prints command results to stdout as YAML or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mj1618/ui-inspector/internal/model"
	"github.com/mj1618/ui-inspector/internal/resolve"
)

// Format represents the output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// OutputFormat is the current output format, set by the root command's --format flag.
var OutputFormat Format = FormatYAML

// PrettyOutput enables pretty-printing for JSON output.
var PrettyOutput bool

// ParseFormat maps a --format value to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatYAML, "":
		return FormatYAML, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (use yaml or json)", s)
	}
}

// CaptureResult is the output of `capture`.
type CaptureResult struct {
	TS    int64      `yaml:"ts"    json:"ts"`
	X     int        `yaml:"x"     json:"x"`
	Y     int        `yaml:"y"     json:"y"`
	Focal model.Node `yaml:"focal" json:"focal"`
	Tree  model.Node `yaml:"tree"  json:"tree"`
}

// ChildrenResult is the output of `children`.
type ChildrenResult struct {
	TS        int64           `yaml:"ts"                json:"ts"`
	DrillID   model.DrillID   `yaml:"drill"             json:"drill"`
	RuntimeID model.RuntimeID `yaml:"runtime,omitempty" json:"runtime,omitempty"`
	Children  []model.Node    `yaml:"children"          json:"children"`
}

// TreeResult is the output of `export`.
type TreeResult struct {
	TS   int64      `yaml:"ts"   json:"ts"`
	Tree model.Node `yaml:"tree" json:"tree"`
}

// FlatResult is the output of `export --flat`.
type FlatResult struct {
	TS    int64            `yaml:"ts"    json:"ts"`
	Nodes []model.FlatNode `yaml:"nodes" json:"nodes"`
}

// DiffResult is the output of `export --diff`.
type DiffResult struct {
	TS      int64          `yaml:"ts"      json:"ts"`
	Since   int64          `yaml:"since"   json:"since"`
	Changes []model.Change `yaml:"changes" json:"changes"`
}

// AppsResult is the output of `apps`.
type AppsResult struct {
	TS   int64         `yaml:"ts"   json:"ts"`
	Apps []resolve.App `yaml:"apps" json:"apps"`
}

// ClickResult is the output of `click`.
type ClickResult struct {
	OK          bool   `yaml:"ok"                    json:"ok"`
	Action      string `yaml:"action"                json:"action"`
	Target      string `yaml:"target"                json:"target"`
	Button      string `yaml:"button"                json:"button"`
	Unsupported bool   `yaml:"unsupported,omitempty" json:"unsupported,omitempty"`
	Error       string `yaml:"error,omitempty"       json:"error,omitempty"`
}

// Now is the timestamp stamped on results.
func Now() int64 { return time.Now().Unix() }

// Print serializes v to stdout in the current output format.
func Print(v interface{}) error {
	switch OutputFormat {
	case FormatJSON:
		if PrettyOutput {
			return PrintPrettyJSON(v)
		}
		return PrintJSON(v)
	case FormatYAML:
		return PrintYAML(v)
	default:
		return fmt.Errorf("unsupported output format: %s", OutputFormat)
	}
}

// PrintJSON serializes v to stdout as compact single-line JSON.
func PrintJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}

// PrintPrettyJSON serializes v to stdout as indented JSON.
func PrintPrettyJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}

// PrintYAML serializes v to stdout as YAML.
func PrintYAML(v interface{}) error {
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}
