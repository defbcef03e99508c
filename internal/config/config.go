package config

import (
	"log"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Configuration is the single record of recognized pipeline options (spec
// §6). Unknown environment variables are ignored; a field keeps its default
// when its variable is unset or fails to parse, and the whole record reverts
// to Default() when the assembled values fail validation.
type Configuration struct {
	// Correction
	AutoModeSwitch  bool `validate:"-"`
	AutoSelection   bool `validate:"-"`
	ClampParameters bool `validate:"-"`

	// Engines
	EnableOverrides          bool `validate:"-"`
	EnableWorkflowExpansion  bool `validate:"-"`
	EnableWorkflowAdaptation bool `validate:"-"`

	// Firewall
	BlockInvalidOperations bool `validate:"-"`
	AutoFixModeViolations  bool `validate:"-"`

	// Thresholds
	EmbeddingThreshold          float64 `validate:"gte=0,lte=1"`
	BevelMaxRatio               float64 `validate:"gte=0,lte=1"`
	SubdivideMaxCuts            int     `validate:"gte=1"`
	AdaptationSemanticThreshold float64 `validate:"gte=0,lte=1"`
	WorkflowSimilarityThreshold float64 `validate:"gte=0,lte=1"`
	GeneralizationThreshold     float64 `validate:"gte=0,lte=1"`

	// Caching and limits
	CacheSceneContext bool    `validate:"-"`
	CacheTTLSeconds   float64 `validate:"gte=0"`
	MaxWorkflowSteps  int     `validate:"gte=1"`
	MaxExpandedSteps  int     `validate:"gte=1"`
	LogDecisions      bool    `validate:"-"`
}

// Default returns the Configuration spec §6 describes before any
// environment override is applied.
func Default() Configuration {
	return Configuration{
		AutoModeSwitch:  true,
		AutoSelection:   true,
		ClampParameters: true,

		EnableOverrides:          true,
		EnableWorkflowExpansion:  true,
		EnableWorkflowAdaptation: true,

		BlockInvalidOperations: true,
		AutoFixModeViolations:  true,

		EmbeddingThreshold:          0.40,
		BevelMaxRatio:               0.5,
		SubdivideMaxCuts:            6,
		AdaptationSemanticThreshold: 0.6,
		WorkflowSimilarityThreshold: 0.5,
		GeneralizationThreshold:     0.3,

		CacheSceneContext: true,
		CacheTTLSeconds:   5,
		MaxWorkflowSteps:  20,
		MaxExpandedSteps:  2000,
		LogDecisions:      false,
	}
}

var validate = validator.New()

// boolFields, floatFields and intFields pair each environment variable with
// the setter that applies
// a successfully parsed value to a Configuration. Mirrors the teacher's
// loadMaxSteps shape (internal/agent/state.go) generalized across a whole
// record instead of one field, since here every field follows the same
// parse-or-default-and-warn recipe.
var boolFields = map[string]func(*Configuration, bool){
	"ROUTER_AUTO_MODE_SWITCH":             func(c *Configuration, v bool) { c.AutoModeSwitch = v },
	"ROUTER_AUTO_SELECTION":               func(c *Configuration, v bool) { c.AutoSelection = v },
	"ROUTER_CLAMP_PARAMETERS":             func(c *Configuration, v bool) { c.ClampParameters = v },
	"ROUTER_ENABLE_OVERRIDES":             func(c *Configuration, v bool) { c.EnableOverrides = v },
	"ROUTER_ENABLE_WORKFLOW_EXPANSION":    func(c *Configuration, v bool) { c.EnableWorkflowExpansion = v },
	"ROUTER_ENABLE_WORKFLOW_ADAPTATION":   func(c *Configuration, v bool) { c.EnableWorkflowAdaptation = v },
	"ROUTER_BLOCK_INVALID_OPERATIONS":     func(c *Configuration, v bool) { c.BlockInvalidOperations = v },
	"ROUTER_AUTO_FIX_MODE_VIOLATIONS":     func(c *Configuration, v bool) { c.AutoFixModeViolations = v },
	"ROUTER_CACHE_SCENE_CONTEXT":          func(c *Configuration, v bool) { c.CacheSceneContext = v },
	"ROUTER_LOG_DECISIONS":                func(c *Configuration, v bool) { c.LogDecisions = v },
}

var floatFields = map[string]func(*Configuration, float64){
	"ROUTER_EMBEDDING_THRESHOLD":            func(c *Configuration, v float64) { c.EmbeddingThreshold = v },
	"ROUTER_BEVEL_MAX_RATIO":                func(c *Configuration, v float64) { c.BevelMaxRatio = v },
	"ROUTER_ADAPTATION_SEMANTIC_THRESHOLD":  func(c *Configuration, v float64) { c.AdaptationSemanticThreshold = v },
	"ROUTER_WORKFLOW_SIMILARITY_THRESHOLD":  func(c *Configuration, v float64) { c.WorkflowSimilarityThreshold = v },
	"ROUTER_GENERALIZATION_THRESHOLD":       func(c *Configuration, v float64) { c.GeneralizationThreshold = v },
	"ROUTER_CACHE_TTL_SECONDS":              func(c *Configuration, v float64) { c.CacheTTLSeconds = v },
}

var intFields = map[string]func(*Configuration, int){
	"ROUTER_SUBDIVIDE_MAX_CUTS":   func(c *Configuration, v int) { c.SubdivideMaxCuts = v },
	"ROUTER_MAX_WORKFLOW_STEPS":   func(c *Configuration, v int) { c.MaxWorkflowSteps = v },
	"ROUTER_MAX_EXPANDED_STEPS":   func(c *Configuration, v int) { c.MaxExpandedSteps = v },
}

// Load builds a Configuration from Default() overridden by any recognized
// environment variable, then validates struct bounds via
// go-playground/validator. A field that fails to parse keeps its default
// and is logged; if the assembled record fails validation, the whole record
// reverts to Default() and the failure is logged. Like the teacher's
// loadMaxSteps, it warns and falls back rather than failing startup outright.
func Load() Configuration {
	LoadEnv()
	cfg := Default()

	for name, set := range boolFields {
		if raw, ok := os.LookupEnv(name); ok {
			if v, err := strconv.ParseBool(raw); err == nil {
				set(&cfg, v)
			} else {
				log.Printf("[Config] WARNING: invalid %s=%q (want bool), keeping default", name, raw)
			}
		}
	}
	for name, set := range floatFields {
		if raw, ok := os.LookupEnv(name); ok {
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				set(&cfg, v)
			} else {
				log.Printf("[Config] WARNING: invalid %s=%q (want number), keeping default", name, raw)
			}
		}
	}
	for name, set := range intFields {
		if raw, ok := os.LookupEnv(name); ok {
			if v, err := strconv.Atoi(raw); err == nil {
				set(&cfg, v)
			} else {
				log.Printf("[Config] WARNING: invalid %s=%q (want integer), keeping default", name, raw)
			}
		}
	}

	if err := validate.Struct(cfg); err != nil {
		log.Printf("[Config] WARNING: configuration failed validation (%v), reverting to defaults", err)
		return Default()
	}
	return cfg
}
