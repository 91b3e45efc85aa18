// Package config holds the value coercion shared by the ConfigStore
// adapters. Stores keep raw decoded values; callers read them typed.
//
// Decoders disagree on numeric types: TOML yields int64 and float64,
// tests and Set calls pass int and float32. A threshold written as
// "rotation = 1" decodes as an integer, so float reads widen integers.
package config

// AsString returns v as a string, or "" for any other type.
func AsString(v any) string {
	s, _ := v.(string)
	return s
}

// AsInt returns v as an int. Floats are truncated.
func AsInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// AsFloat returns v as a float64. Integers are widened.
func AsFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

// AsBool returns v as a bool, or false for any other type.
func AsBool(v any) bool {
	b, _ := v.(bool)
	return b
}

// AsStringSlice returns v as a string slice. Decoded arrays arrive as
// []any; non-string items are dropped. Returns nil for other types.
func AsStringSlice(v any) []string {
	switch items := v.(type) {
	case []string:
		return items
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
