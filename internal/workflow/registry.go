package workflow

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pocketomega/router-supervisor/internal/eval"
	"github.com/pocketomega/router-supervisor/internal/proportion"
	"github.com/pocketomega/router-supervisor/internal/scenectx"
	"github.com/pocketomega/router-supervisor/internal/value"
)

// Registry holds every known Workflow Definition and implements the
// canonical expansion pipeline (spec §4.3, §4.4, §4.5). The definition
// table is guarded by a read-write mutex: reads share the lock and a writer
// takes it exclusively. It uses a mutex rather than an atomic snapshot
// swap, since (unlike toolmeta.Store)
// register_workflow happens one definition at a time rather than as a bulk
// reload — a mutex is the simpler, equally correct tool for that shape.
type Registry struct {
	mu    sync.RWMutex
	defs  map[string]Def
	order []string // registration order, for deterministic find_by_* iteration
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Def)}
}

// RegisterWorkflow adds or replaces a single definition.
func (r *Registry) RegisterWorkflow(def Def) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[def.Name]; !exists {
		r.order = append(r.order, def.Name)
	}
	r.defs[def.Name] = def
	log.Printf("[Workflow] Registered %q (%d steps)", def.Name, len(def.Steps))
}

// LoadCustom walks dir for *.yaml/*.yml workflow documents and registers
// each one, mirroring toolmeta.LoadDir's tolerant-of-partial-failure shape:
// bad files are reported, not fatal to the rest of the load.
func (r *Registry) LoadCustom(dir string) (int, []error) {
	var errs []error
	loaded := 0
	walkErr := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			return nil
		}
		def, err := Parse(data)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			return nil
		}
		r.RegisterWorkflow(def)
		loaded++
		return nil
	})
	if walkErr != nil {
		if os.IsNotExist(walkErr) {
			return 0, nil
		}
		errs = append(errs, walkErr)
	}
	return loaded, errs
}

// Get returns the named definition.
func (r *Registry) Get(name string) (Def, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[name]
	return d, ok
}

// All returns every registered definition in registration order, for
// callers (such as the Ensemble Matcher) that need to score the whole set.
func (r *Registry) All() []Def {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Def, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.defs[name])
	}
	return out
}

// FindByPattern returns the first registered definition (in registration
// order) whose trigger_pattern equals pattern (spec §4.4).
func (r *Registry) FindByPattern(pattern string) (Def, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range r.order {
		if d := r.defs[name]; d.TriggerPattern == pattern {
			return d, true
		}
	}
	return Def{}, false
}

// FindByKeywords returns the first registered definition one of whose
// trigger_keywords occurs, case-insensitively, as a substring of text
// (spec §4.4).
func (r *Registry) FindByKeywords(text string) (Def, bool) {
	lower := strings.ToLower(text)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range r.order {
		d := r.defs[name]
		for _, k := range d.TriggerKeywords {
			if k != "" && strings.Contains(lower, strings.ToLower(k)) {
				return d, true
			}
		}
	}
	return Def{}, false
}

// Result is the outcome of ExpandWorkflow: the resolved, ordered list of
// tool calls to emit, plus the steps that a condition gated out (spec §4.4,
// §4.5 — gated steps are not errors, they are documented non-emissions).
type Result struct {
	Calls  []Call
	Gated  []string // IDs/tools of steps whose condition evaluated false
	Vars   value.Map
}

// Call is one fully resolved step ready for the Correction/Override/
// Firewall stages (spec §4.4).
type Call struct {
	StepID      string
	Tool        string
	Params      map[string]any
	Description string
	Optional    bool
	IsCore      bool
	Tags        []string
	OnFailure   OnFailure
	MaxRetries  int
	Priority    int
	Extras      map[string]bool
}

// ExpandWorkflow runs the canonical six-stage pipeline (spec §4.4):
//  1. build variables from defaults + every matching modifier's overrides (last match wins) + explicit params
//  2. resolve computed parameters
//  3. validate resolved values against each parameter's enum/range
//  4. expand loops and interpolate (or use stepsOverride verbatim)
//  5. resolve each field's $CALCULATE / $AUTO_ / $name forms
//  6. evaluate each step's condition against the (simulated) scene context and emit
func (r *Registry) ExpandWorkflow(
	name string,
	explicitParams map[string]any,
	userPrompt string,
	sceneCtx scenectx.SceneContext,
	dims *proportion.Dims,
	stepsOverride []Step,
	maxExpandedSteps int,
) (Result, error) {
	def, ok := r.Get(name)
	if !ok {
		return Result{}, fmt.Errorf("workflow: unknown workflow %q", name)
	}

	vars, err := buildVariables(def, explicitParams, userPrompt)
	if err != nil {
		return Result{}, fmt.Errorf("workflow %q: %w", name, err)
	}

	vars, err = resolveComputedParams(def, vars)
	if err != nil {
		return Result{}, fmt.Errorf("workflow %q: %w", name, err)
	}

	if err := validateResolved(def, vars); err != nil {
		return Result{}, fmt.Errorf("workflow %q: %w", name, err)
	}

	steps := def.Steps
	if stepsOverride != nil {
		steps = stepsOverride
	}
	expanded, err := ExpandSteps(steps, vars, maxExpandedSteps)
	if err != nil {
		return Result{}, fmt.Errorf("workflow %q: %w", name, err)
	}

	sim := NewSimulator(sceneCtx)
	flatCtx := flattenSceneForConditions(dims, sceneCtx.Proportions)
	res := Result{Vars: vars}
	for _, es := range expanded {
		params, err := ResolveValue(es.Params, vars, dims)
		if err != nil {
			return Result{}, fmt.Errorf("workflow %q: step %q: %w", name, es.Tool, err)
		}
		resolvedParams, _ := params.(map[string]any)

		condCtx := mergeConditionVars(vars, mergeConditionVars(sim.ConditionVars(), flatCtx))
		if !eval.Condition(es.Condition, condCtx) {
			res.Gated = append(res.Gated, stepLabel(es))
			continue
		}

		res.Calls = append(res.Calls, Call{
			StepID:      stepLabel(es),
			Tool:        es.Tool,
			Params:      resolvedParams,
			Description: es.Description,
			Optional:    es.Optional,
			IsCore:      Step{Optional: es.Optional, DisableAdaptation: es.DisableAdaptation}.IsCore(),
			Tags:        es.Tags,
			OnFailure:   es.OnFailure,
			MaxRetries:  es.MaxRetries,
			Priority:    es.Priority,
			Extras:      es.Extras,
		})
		sim.Apply(es.Tool, resolvedParams)
	}

	return res, nil
}

func stepLabel(es Expanded) string {
	if es.ID != "" {
		return es.ID
	}
	return es.Tool
}

func mergeConditionVars(vars value.Map, extra value.Map) value.Map {
	out := vars.Clone()
	for k, v := range extra {
		if _, exists := out[k]; !exists {
			out[k] = v
		}
	}
	return out
}

// flattenSceneForConditions derives the width/height/depth/min_dim/max_dim
// and proportions_* bindings (spec §4.1, "Context flattening") a step
// condition can reference, from the active object's dimensions and its
// precomputed ProportionInfo. Either input may be nil, in which case the
// corresponding bindings are simply absent from the result.
func flattenSceneForConditions(dims *proportion.Dims, prop *scenectx.ProportionInfo) value.Map {
	ctx := value.Map{}
	if dims != nil {
		ctx["dimensions"] = value.Vector([]float64{dims.X, dims.Y, dims.Z})
	}
	ctx = eval.FlattenDimensions(ctx)
	if prop != nil {
		ctx = eval.FlattenProportions(ctx, proportionsValue(*prop))
	}
	delete(ctx, "dimensions")
	return ctx
}

// proportionsValue converts a ProportionInfo into the value.Map
// FlattenProportions expects, keyed by snake_case field name.
func proportionsValue(p scenectx.ProportionInfo) value.Map {
	return value.Map{
		"aspect_xy":     value.Number(p.AspectXY),
		"aspect_xz":     value.Number(p.AspectXZ),
		"aspect_yz":     value.Number(p.AspectYZ),
		"is_flat":       value.Bool(p.IsFlat),
		"is_tall":       value.Bool(p.IsTall),
		"is_wide":       value.Bool(p.IsWide),
		"is_cubic":      value.Bool(p.IsCubic),
		"dominant_axis": value.String(p.DominantAxis),
		"volume":        value.Number(p.Volume),
		"surface_area":  value.Number(p.SurfaceArea),
	}
}

// buildVariables implements pipeline stage 1: defaults, then every modifier
// phrase whose keyword is contained in userPrompt (negative_signals excepted),
// applied in name order so the last match wins, then explicit params — each
// layer overwriting the previous one field at a time (spec §3, §4.4).
func buildVariables(def Def, explicitParams map[string]any, userPrompt string) (value.Map, error) {
	vars := make(value.Map, len(def.Parameters))
	for name, p := range def.Parameters {
		if p.IsComputed() {
			continue
		}
		if p.HasDefault {
			v, ok := value.FromAny(p.Default)
			if ok {
				vars[name] = v
			}
		}
	}
	for name, raw := range def.Defaults {
		v, ok := value.FromAny(raw)
		if ok {
			vars[name] = v
		}
	}

	for _, mod := range matchingModifiers(def, userPrompt) {
		for name, raw := range mod.Overrides {
			v, ok := value.FromAny(raw)
			if ok {
				vars[name] = v
			}
		}
	}

	for name, raw := range explicitParams {
		v, ok := value.FromAny(raw)
		if !ok {
			return nil, fmt.Errorf("parameter %q: unsupported value type %T", name, raw)
		}
		vars[name] = v
	}

	return vars, nil
}

// matchingModifiers returns every modifier declared on def whose phrase is
// contained (case-insensitively) in userPrompt and whose negative_signals
// don't also appear there, in name order — the deterministic order
// buildVariables applies them in, so the alphabetically-last matching phrase
// wins a given field (spec §4.4, "the last match wins"). Semantic (as
// opposed to substring) matching is handled upstream by
// ensemble.ExtractModifiers, whose pick is folded into explicitParams before
// ExpandWorkflow is ever called; this pass only needs literal containment.
func matchingModifiers(def Def, userPrompt string) []Modifier {
	if len(def.Modifiers) == 0 || userPrompt == "" {
		return nil
	}
	lower := strings.ToLower(userPrompt)
	names := sortedModifierNames(def.Modifiers)

	var out []Modifier
	for _, name := range names {
		mod := def.Modifiers[name]
		if !strings.Contains(lower, strings.ToLower(name)) {
			continue
		}
		blocked := false
		for _, neg := range mod.NegativeSignals {
			if neg != "" && strings.Contains(lower, strings.ToLower(neg)) {
				blocked = true
				break
			}
		}
		if !blocked {
			out = append(out, mod)
		}
	}
	return out
}

func sortedModifierNames(mods map[string]Modifier) []string {
	names := make([]string, 0, len(mods))
	for name := range mods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func resolveComputedParams(def Def, vars value.Map) (value.Map, error) {
	var decl []eval.Computed
	for name, p := range def.Parameters {
		if !p.IsComputed() {
			continue
		}
		decl = append(decl, eval.Computed{Name: name, Expr: p.Computed, DependsOn: p.DependsOn})
	}
	if len(decl) == 0 {
		return vars, nil
	}
	sort.Slice(decl, func(i, j int) bool { return decl[i].Name < decl[j].Name })
	return eval.ResolveComputed(vars, decl)
}

// validateResolved checks every non-computed parameter's resolved value
// against its enum (if any) then its range (if any) — enum takes priority
// since a parameter schema may not declare both (loader.go enforces that).
func validateResolved(def Def, vars value.Map) error {
	for name, p := range def.Parameters {
		v, ok := vars[name]
		if !ok {
			continue
		}
		if len(p.Enum) > 0 {
			s := v.String()
			found := false
			for _, e := range p.Enum {
				if e == s {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("parameter %q: value %q is not in enum %v", name, s, p.Enum)
			}
			continue
		}
		if p.Range != nil {
			f, ok := v.AsFloat()
			if !ok {
				return fmt.Errorf("parameter %q: range-bounded parameter must be numeric", name)
			}
			if f < p.Range[0] || f > p.Range[1] {
				return fmt.Errorf("parameter %q: value %v out of range [%v, %v]", name, f, p.Range[0], p.Range[1])
			}
		}
	}
	return nil
}
