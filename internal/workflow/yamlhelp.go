package workflow

import "fmt"

// The YAML documents this package loads are untyped (map[string]any) by
// design — workflow authors write loosely-typed YAML, and Step.Params in
// particular must accept any scalar, list, or nested map the user writes.
// These helpers centralize the any -> typed conversions the loader needs.

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asAnySlice(v any) []any {
	list, _ := v.([]any)
	return list
}

func asStringSlice(v any) []string {
	list := asAnySlice(v)
	if list == nil {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, fmt.Sprintf("%v", item))
	}
	return out
}

func asFloatSlice(v any) []float64 {
	list := asAnySlice(v)
	if list == nil {
		return nil
	}
	out := make([]float64, 0, len(list))
	for _, item := range list {
		switch n := item.(type) {
		case float64:
			out = append(out, n)
		case int:
			out = append(out, float64(n))
		case int64:
			out = append(out, float64(n))
		}
	}
	return out
}
