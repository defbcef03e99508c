package firewall

import (
	"fmt"
	"strconv"

	"github.com/pocketomega/router-supervisor/internal/callmodel"
	"github.com/pocketomega/router-supervisor/internal/config"
	"github.com/pocketomega/router-supervisor/internal/scenectx"
	"github.com/pocketomega/router-supervisor/internal/toolmeta"
)

// destructiveTools is the small fixed set of calls that permanently remove
// scene content and therefore make no sense against an empty scene.
var destructiveTools = map[string]bool{
	"scene_delete_object": true,
	"mesh_delete":         true,
	"object_delete":       true,
}

// BuiltinRules returns the six fixed rule categories spec §4.10 names,
// gated by the two Firewall config flags: mode violations on mesh/sculpt
// tools, a missing selection on a selection-requiring tool, bevel offset
// past the object's min-dimension ratio, subdivide cuts past the
// configured ceiling, and destructive calls against an empty scene.
func BuiltinRules(store *toolmeta.Store, cfg config.Configuration) []Rule {
	var rules []Rule

	if action, ok := modeViolationAction(cfg); ok {
		meshCheck, _ := ParseCondition("mode != EDIT")
		rules = append(rules, Rule{
			Name: "mesh_requires_edit_mode", ToolPattern: "mesh_*",
			Check: meshCheck, Action: action,
			Message:  "mesh tool invoked outside EDIT mode",
			PreSteps: modeAutoFix(string(scenectx.ModeEdit)),
		})
		sculptCheck, _ := ParseCondition("mode != SCULPT")
		rules = append(rules, Rule{
			Name: "sculpt_requires_sculpt_mode", ToolPattern: "sculpt_*",
			Check: sculptCheck, Action: action,
			Message:  "sculpt tool invoked outside SCULPT mode",
			PreSteps: modeAutoFix(string(scenectx.ModeSculpt)),
		})
	}

	if action, ok := blockAction(cfg); ok {
		rules = append(rules, Rule{
			Name: "selection_required", ToolPattern: "*",
			Check: func(call callmodel.Corrected, ctx scenectx.SceneContext) bool {
				meta, ok := store.Get(call.ToolName)
				return ok && meta.SelectionRequired && !ctx.HasSelection()
			},
			Action:  action,
			Message: "tool requires a selection and none is present",
		})

		noObjects, _ := ParseCondition("no_objects")
		rules = append(rules, Rule{
			Name: "destructive_on_empty_scene", ToolPattern: "*",
			Check: func(call callmodel.Corrected, ctx scenectx.SceneContext) bool {
				return destructiveTools[call.ToolName] && noObjects(call, ctx)
			},
			Action:  ActionBlock,
			Message: "destructive call targets an empty scene",
		})
	}

	bevelCheck, _ := ParseCondition(fmt.Sprintf("param:offset > dimension_ratio:%s", strconv.FormatFloat(cfg.BevelMaxRatio, 'f', -1, 64)))
	rules = append(rules, Rule{
		Name: "bevel_offset_ceiling", ToolPattern: "mesh_bevel",
		Check:  bevelCheck,
		Action: ActionModify,
		Limits: map[string]ParamLimit{
			"offset": func(ctx scenectx.SceneContext) (float64, bool) {
				obj, ok := ctx.ActiveObjectInfo()
				if !ok {
					return 0, false
				}
				return minOf3(obj.Dimensions[0], obj.Dimensions[1], obj.Dimensions[2]) * cfg.BevelMaxRatio, true
			},
		},
		Message: "bevel offset exceeds half the object's min dimension",
	})

	subdivideCheck, _ := ParseCondition(fmt.Sprintf("param:cuts > %d", cfg.SubdivideMaxCuts))
	rules = append(rules, Rule{
		Name: "subdivide_cuts_ceiling", ToolPattern: "mesh_subdivide",
		Check:  subdivideCheck,
		Action: ActionModify,
		Limits: map[string]ParamLimit{
			"cuts": func(scenectx.SceneContext) (float64, bool) { return float64(cfg.SubdivideMaxCuts), true },
		},
		Message: "subdivide cut count exceeds the configured ceiling",
	})

	return rules
}

func modeAutoFix(mode string) PreStepBuilder {
	return func(callmodel.Corrected, scenectx.SceneContext) []callmodel.Corrected {
		return []callmodel.Corrected{{
			ToolName:           "system_set_mode",
			Params:             map[string]any{"mode": mode},
			IsInjected:         true,
			CorrectionsApplied: []string{"firewall_mode_auto_fix"},
		}}
	}
}

func modeViolationAction(cfg config.Configuration) (Action, bool) {
	if cfg.AutoFixModeViolations {
		return ActionAutoFix, true
	}
	if cfg.BlockInvalidOperations {
		return ActionBlock, true
	}
	return "", false
}

func blockAction(cfg config.Configuration) (Action, bool) {
	if cfg.BlockInvalidOperations {
		return ActionBlock, true
	}
	return "", false
}
