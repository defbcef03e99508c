package workflow

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse decodes a single workflow definition document and validates it
// against the invariants in spec §3 (Parameter Schema) before returning.
func Parse(data []byte) (Def, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Def{}, fmt.Errorf("workflow: parse: %w", err)
	}
	return fromRaw(raw)
}

func fromRaw(raw map[string]any) (Def, error) {
	def := Def{
		Name:            asString(raw["name"]),
		Description:     asString(raw["description"]),
		Category:        asString(raw["category"]),
		TriggerPattern:  asString(raw["trigger_pattern"]),
		TriggerKeywords: asStringSlice(raw["trigger_keywords"]),
		SamplePrompts:   asStringSlice(raw["sample_prompts"]),
		Defaults:        asMap(raw["defaults"]),
	}

	if def.Name == "" {
		return Def{}, fmt.Errorf("workflow: name is required")
	}
	if def.Description == "" {
		return Def{}, fmt.Errorf("workflow %q: description is required", def.Name)
	}

	mods, err := parseModifiers(raw["modifiers"])
	if err != nil {
		return Def{}, fmt.Errorf("workflow %q: %w", def.Name, err)
	}
	def.Modifiers = mods

	params, err := parseParameters(raw["parameters"])
	if err != nil {
		return Def{}, fmt.Errorf("workflow %q: %w", def.Name, err)
	}
	def.Parameters = params
	if err := validateParameters(params); err != nil {
		return Def{}, fmt.Errorf("workflow %q: %w", def.Name, err)
	}

	steps, err := parseSteps(raw["steps"])
	if err != nil {
		return Def{}, fmt.Errorf("workflow %q: %w", def.Name, err)
	}
	def.Steps = steps

	return def, nil
}

func parseModifiers(raw any) (map[string]Modifier, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, nil
	}
	out := make(map[string]Modifier, len(m))
	for phrase, v := range m {
		entry, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("modifier %q: expected a mapping", phrase)
		}
		mod := Modifier{NegativeSignals: asStringSlice(entry["negative_signals"])}
		if overrides, ok := entry["overrides"].(map[string]any); ok {
			mod.Overrides = overrides
		} else {
			// Allow a flat shorthand: every key except negative_signals is an override.
			flat := make(map[string]any, len(entry))
			for k, val := range entry {
				if k == "negative_signals" {
					continue
				}
				flat[k] = val
			}
			mod.Overrides = flat
		}
		out[phrase] = mod
	}
	return out, nil
}

func parseParameters(raw any) (map[string]ParameterSchema, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, nil
	}
	out := make(map[string]ParameterSchema, len(m))
	for name, v := range m {
		spec, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("parameter %q: expected a mapping", name)
		}
		ps := ParameterSchema{
			Type:          asString(spec["type"]),
			Description:   asString(spec["description"]),
			SemanticHints: asStringSlice(spec["semantic_hints"]),
			Group:         asString(spec["group"]),
			Computed:      asString(spec["computed"]),
			DependsOn:     asStringSlice(spec["depends_on"]),
			Enum:          asStringSlice(spec["enum"]),
		}
		if d, present := spec["default"]; present {
			ps.Default = d
			ps.HasDefault = true
		}
		if rng := asFloatSlice(spec["range"]); len(rng) == 2 {
			r := [2]float64{rng[0], rng[1]}
			ps.Range = &r
		}
		out[name] = ps
	}
	return out, nil
}

// validateParameters enforces the Parameter Schema invariants from spec §3.
func validateParameters(params map[string]ParameterSchema) error {
	for name, p := range params {
		if p.Enum != nil && p.Range != nil {
			return fmt.Errorf("parameter %q: enum and range are mutually exclusive", name)
		}
		if p.HasDefault && p.Enum != nil {
			if !enumContainsNormalized(p.Enum, p.Default) {
				return fmt.Errorf("parameter %q: default %v is not in enum %v", name, p.Default, p.Enum)
			}
		}
		if p.IsComputed() && len(p.DependsOn) == 0 {
			return fmt.Errorf("parameter %q: computed requires a non-empty depends_on", name)
		}
	}
	return checkAcyclicComputed(params)
}

func checkAcyclicComputed(params map[string]ParameterSchema) error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(params))
	var visit func(name string) error
	visit = func(name string) error {
		p, isComputed := params[name]
		if !isComputed || !p.IsComputed() {
			return nil
		}
		switch color[name] {
		case black:
			return nil
		case gray:
			return fmt.Errorf("cyclic computed-parameter dependency involving %q", name)
		}
		color[name] = gray
		for _, dep := range p.DependsOn {
			if err := visit(dep); err != nil {
				return err
			}
		}
		color[name] = black
		return nil
	}
	for name := range params {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

func parseSteps(raw any) ([]Step, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, nil
	}
	out := make([]Step, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("step %d: expected a mapping", i)
		}
		s, err := parseStep(m)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// knownStepFields lists every schema-defined Step field name, so any other
// key with a boolean value becomes a semantic-parameter extra (spec §4.11);
// other keys with non-boolean values are ignored.
var knownStepFields = map[string]bool{
	"tool": true, "params": true, "id": true, "description": true,
	"condition": true, "loop": true, "optional": true,
	"disable_adaptation": true, "tags": true, "depends_on": true,
	"timeout": true, "max_retries": true, "retry_delay": true,
	"on_failure": true, "priority": true,
}

func parseStep(m map[string]any) (Step, error) {
	s := Step{
		Tool:              asString(m["tool"]),
		Params:            asMap(m["params"]),
		ID:                asString(m["id"]),
		Description:       asString(m["description"]),
		Condition:         asString(m["condition"]),
		Optional:          asBool(m["optional"]),
		DisableAdaptation: asBool(m["disable_adaptation"]),
		Tags:              asStringSlice(m["tags"]),
		DependsOn:         asStringSlice(m["depends_on"]),
		Timeout:           asString(m["timeout"]),
		MaxRetries:        asInt(m["max_retries"]),
		RetryDelay:        asString(m["retry_delay"]),
		OnFailure:         OnFailure(asString(m["on_failure"])),
		Priority:          asInt(m["priority"]),
	}
	if s.Tool == "" {
		return Step{}, fmt.Errorf("tool is required")
	}

	if lraw, ok := m["loop"]; ok {
		loop, err := parseLoop(lraw)
		if err != nil {
			return Step{}, fmt.Errorf("loop: %w", err)
		}
		s.Loop = loop
	}

	extras := make(map[string]bool)
	for k, v := range m {
		if knownStepFields[k] {
			continue
		}
		if b, ok := v.(bool); ok {
			extras[k] = b
		}
	}
	if len(extras) > 0 {
		s.Extras = extras
	}

	return s, nil
}

func parseLoop(raw any) (*Loop, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a mapping")
	}
	loop := &Loop{Group: asString(m["group"])}

	if v, ok := m["variable"]; ok {
		name := asString(v)
		lv := LoopVar{Name: name}
		if rng, ok := m["range"]; ok {
			pair, err := rangePair(rng)
			if err != nil {
				return nil, err
			}
			lv.RangeExpr = pair
		}
		if vals, ok := m["values"]; ok {
			lv.Values = asAnySlice(vals)
		}
		loop.Vars = append(loop.Vars, lv)
		return loop, nil
	}

	if vars, ok := m["variables"]; ok {
		names := asStringSlice(vars)
		ranges, _ := m["ranges"].(map[string]any)
		values, _ := m["values"].(map[string]any)
		for _, name := range names {
			lv := LoopVar{Name: name}
			if ranges != nil {
				if rng, ok := ranges[name]; ok {
					pair, err := rangePair(rng)
					if err != nil {
						return nil, err
					}
					lv.RangeExpr = pair
				}
			}
			if values != nil {
				if vals, ok := values[name]; ok {
					lv.Values = asAnySlice(vals)
				}
			}
			loop.Vars = append(loop.Vars, lv)
		}
		return loop, nil
	}

	return nil, fmt.Errorf("loop requires 'variable' or 'variables'")
}

func rangePair(raw any) (*[2]string, error) {
	list := asAnySlice(raw)
	if len(list) != 2 {
		return nil, fmt.Errorf("range must have exactly 2 elements")
	}
	pair := [2]string{fmt.Sprintf("%v", list[0]), fmt.Sprintf("%v", list[1])}
	return &pair, nil
}

func enumContainsNormalized(enum []string, v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	for _, e := range enum {
		if strings.EqualFold(strings.TrimSpace(e), strings.TrimSpace(s)) {
			return true
		}
	}
	return false
}
