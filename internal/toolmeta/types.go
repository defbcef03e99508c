// Package toolmeta holds per-tool metadata records (spec §3, §6): required
// mode, selection requirement, parameter bounds, keywords, and sample
// prompts. Records are immutable after load.
package toolmeta

import "github.com/pocketomega/router-supervisor/internal/scenectx"

// ParamBounds describes a single declared parameter's type, default, and
// optional numeric range — enough for Correction clamping and Firewall
// bound checks.
type ParamBounds struct {
	Type    string // "float" | "int" | "string" | "bool"
	Default any
	Range   *[2]float64 // nil = unbounded
	Options []string    // enum values, for string parameters
}

// Meta is one tool's immutable metadata record (spec §3).
type Meta struct {
	ToolName          string
	Category          string
	ModeRequired      scenectx.Mode // scenectx.ModeAny = no requirement
	SelectionRequired bool
	Keywords          []string
	SamplePrompts     []string
	Parameters        map[string]ParamBounds
	RelatedTools      []string
	Patterns          []string
	Description       string
}

// yamlMeta is the on-disk shape, decoded via gopkg.in/yaml.v3 and converted
// to Meta after validation (loader.go). Unknown fields are ignored by
// yaml.v3's default Unmarshal behavior, matching spec §6 ("Unknown fields
// are ignored").
type yamlMeta struct {
	ToolName          string                   `yaml:"tool_name"`
	Category          string                   `yaml:"category"`
	ModeRequired      string                   `yaml:"mode_required"`
	SelectionRequired bool                     `yaml:"selection_required"`
	Keywords          []string                 `yaml:"keywords"`
	SamplePrompts     []string                 `yaml:"sample_prompts"`
	Parameters        map[string]yamlParamSpec `yaml:"parameters"`
	RelatedTools      []string                 `yaml:"related_tools"`
	Patterns          []string                 `yaml:"patterns"`
	Description       string                   `yaml:"description"`
}

type yamlParamSpec struct {
	Type    string    `yaml:"type"`
	Default any       `yaml:"default"`
	Range   []float64 `yaml:"range"`
	Options []string  `yaml:"options"`
}
