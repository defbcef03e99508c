// Package correction implements the Correction Engine (spec §4.8): given a
// tool call and the scene context it will run against, it prepends the
// mode-switch and selection pre-steps Tool Metadata demands and clamps
// declared parameters to their bounds.
package correction

import (
	"fmt"
	"sort"

	"github.com/pocketomega/router-supervisor/internal/callmodel"
	"github.com/pocketomega/router-supervisor/internal/config"
	"github.com/pocketomega/router-supervisor/internal/scenectx"
	"github.com/pocketomega/router-supervisor/internal/toolmeta"
)

// setModeTool and selectAllTool are the two fixed injected pre-step tools
// (spec §4.8, S1).
const (
	setModeTool   = "system_set_mode"
	selectAllTool = "mesh_select"
)

// Correct consults meta for tool and returns the corrected call plus any
// ordered pre-steps that must run before it. meta, ok=false means the tool
// is unknown to the store: the call passes through unmodified, since there
// is nothing to correct against.
func Correct(toolName string, params map[string]any, ctx scenectx.SceneContext, meta toolmeta.Meta, metaOK bool, cfg config.Configuration) (callmodel.Corrected, []callmodel.Corrected) {
	corrected := callmodel.Corrected{ToolName: toolName, Params: cloneParams(params)}
	if !metaOK {
		return corrected, nil
	}

	var preSteps []callmodel.Corrected

	if cfg.AutoModeSwitch && meta.ModeRequired != scenectx.ModeAny && meta.ModeRequired != "" && ctx.Mode != meta.ModeRequired {
		preSteps = append(preSteps, callmodel.Corrected{
			ToolName:           setModeTool,
			Params:             map[string]any{"mode": string(meta.ModeRequired)},
			IsInjected:         true,
			CorrectionsApplied: []string{"mode_auto_fix"},
		})
	}

	if cfg.AutoSelection && meta.SelectionRequired && !ctx.HasSelection() {
		preSteps = append(preSteps, callmodel.Corrected{
			ToolName:           selectAllTool,
			Params:             map[string]any{"action": "all"},
			IsInjected:         true,
			CorrectionsApplied: []string{"selection_auto_fix"},
		})
	}

	if cfg.ClampParameters {
		corrected = clampParameters(corrected, toolName, meta, ctx, cfg)
	}

	return corrected, preSteps
}

// clampParameters clamps every declared parameter with a range to that
// range, then applies any dimension-relative special case registered for
// this tool (spec §4.8: "for a small set of dimension-relative cases").
func clampParameters(c callmodel.Corrected, toolName string, meta toolmeta.Meta, ctx scenectx.SceneContext, cfg config.Configuration) callmodel.Corrected {
	names := make([]string, 0, len(meta.Parameters))
	for name := range meta.Parameters {
		names = append(names, name)
	}
	sort.Strings(names) // deterministic correction order

	for _, name := range names {
		bounds := meta.Parameters[name]
		raw, present := c.Params[name]
		if !present || bounds.Range == nil {
			continue
		}
		v, ok := toFloat(raw)
		if !ok {
			continue
		}
		lo, hi := bounds.Range[0], bounds.Range[1]
		clamped := clamp(v, lo, hi)
		if clamped != v {
			c = c.WithCorrection(fmt.Sprintf("clamp:%s", name))
			c.Params[name] = clamped
		}
	}

	if rule, ok := dimensionRelativeRules[toolName]; ok {
		if obj, ok := ctx.ActiveObjectInfo(); ok {
			raw, present := c.Params[rule.Param]
			if present {
				if v, ok := toFloat(raw); ok {
					limit := rule.Limit(obj.Dimensions, cfg)
					if v > limit {
						c = c.WithCorrection(fmt.Sprintf("dimension_clamp:%s", rule.Param))
						c.Params[rule.Param] = limit
					}
				}
			}
		}
	}
	return c
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func cloneParams(p map[string]any) map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
