package toolmeta

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pocketomega/router-supervisor/internal/scenectx"
)

var validModes = map[string]scenectx.Mode{
	"OBJECT":        scenectx.ModeObject,
	"EDIT":          scenectx.ModeEdit,
	"SCULPT":        scenectx.ModeSculpt,
	"VERTEX_PAINT":  scenectx.ModeVertexPaint,
	"WEIGHT_PAINT":  scenectx.ModeWeightPaint,
	"TEXTURE_PAINT": scenectx.ModeTexturePaint,
	"POSE":          scenectx.ModePose,
	"ANY":           scenectx.ModeAny,
	"":              scenectx.ModeAny,
}

// LoadDir scans a directory tree of "<category>/<tool_name>.yaml" files and
// returns the parsed, validated Meta records plus any per-file errors.
// Per-file errors are non-fatal: other files continue to load, mirroring
// the teacher's skill.ScanDir tolerance for partial failure.
func LoadDir(root string) ([]Meta, []error) {
	var metas []Meta
	var errs []error

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, []error{fmt.Errorf("toolmeta: scan %q: %w", root, err)}
	}

	for _, catEntry := range entries {
		if !catEntry.IsDir() {
			continue
		}
		catDir := filepath.Join(root, catEntry.Name())
		files, err := os.ReadDir(catDir)
		if err != nil {
			errs = append(errs, fmt.Errorf("toolmeta: scan category %q: %w", catEntry.Name(), err))
			continue
		}
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".yaml") {
				continue
			}
			path := filepath.Join(catDir, f.Name())
			m, err := loadFile(path, catEntry.Name())
			if err != nil {
				errs = append(errs, err)
				continue
			}
			metas = append(metas, m)
		}
	}
	return metas, errs
}

func loadFile(path, category string) (Meta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Meta{}, fmt.Errorf("toolmeta: read %q: %w", path, err)
	}

	var raw yamlMeta
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Meta{}, fmt.Errorf("toolmeta: parse %q: %w", path, err)
	}

	if raw.ToolName == "" {
		return Meta{}, fmt.Errorf("toolmeta: %q: tool_name is required", path)
	}
	if raw.Description == "" {
		return Meta{}, fmt.Errorf("toolmeta: %q: description is required", path)
	}

	mode, ok := validModes[strings.ToUpper(raw.ModeRequired)]
	if !ok {
		return Meta{}, fmt.Errorf("toolmeta: %q: unknown mode_required %q", path, raw.ModeRequired)
	}

	params := make(map[string]ParamBounds, len(raw.Parameters))
	for name, spec := range raw.Parameters {
		pb := ParamBounds{Type: spec.Type, Default: spec.Default, Options: spec.Options}
		if len(spec.Range) == 2 {
			r := [2]float64{spec.Range[0], spec.Range[1]}
			pb.Range = &r
		}
		params[name] = pb
	}

	if raw.Category == "" {
		raw.Category = category
	}

	return Meta{
		ToolName:          raw.ToolName,
		Category:          raw.Category,
		ModeRequired:      mode,
		SelectionRequired: raw.SelectionRequired,
		Keywords:          raw.Keywords,
		SamplePrompts:     raw.SamplePrompts,
		Parameters:        params,
		RelatedTools:      raw.RelatedTools,
		Patterns:          raw.Patterns,
		Description:       raw.Description,
	}, nil
}
