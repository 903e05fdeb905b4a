package field

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// separator splits path segments.
const separator = "."

// Get returns the value at path inside obj, or def if any segment cannot be
// resolved. A null value at the end of the path also yields def.
func Get(obj any, path string, def any) any {
	v, ok := lookup(obj, path)
	if !ok || v == nil {
		return def
	}
	return v
}

// Has reports whether a non-null value exists at path.
func Has(obj any, path string) bool {
	v, ok := lookup(obj, path)
	return ok && v != nil
}

// lookup walks path through nested maps and slices.
func lookup(obj any, path string) (any, bool) {
	if path == "" {
		return obj, true
	}

	cur := obj
	for _, segment := range strings.Split(path, separator) {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			// nil, scalars and foreign types cannot be descended into.
			return nil, false
		}
	}
	return cur, true
}

// String returns the string at path, or def if it is absent or not a string.
func String(obj any, path, def string) string {
	if s, ok := Get(obj, path, nil).(string); ok {
		return s
	}
	return def
}

// NonEmptyString is like String but also returns def for blank strings.
func NonEmptyString(obj any, path, def string) string {
	s := String(obj, path, "")
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// Int returns the integer at path, or def if it is absent or not a number.
// Non-integral numbers truncate toward zero.
func Int(obj any, path string, def int) int {
	n, ok := ToInt(Get(obj, path, nil))
	if !ok {
		return def
	}
	return n
}

// Bool returns the boolean at path, or def if it is absent or not a boolean.
func Bool(obj any, path string, def bool) bool {
	if b, ok := Get(obj, path, nil).(bool); ok {
		return b
	}
	return def
}

// Map returns the object at path, or nil if it is absent or not an object.
func Map(obj any, path string) map[string]any {
	m, _ := Get(obj, path, nil).(map[string]any)
	return m
}

// Slice returns the list at path, or nil if it is absent or not a list.
func Slice(obj any, path string) []any {
	s, _ := Get(obj, path, nil).([]any)
	return s
}

// StringSlice returns the string elements of the list at path, skipping
// elements that are not strings. The result is never nil.
func StringSlice(obj any, path string) []string {
	items := Slice(obj, path)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// ToInt converts a decoded JSON number to int.
// It accepts float64 (encoding/json's default), json.Number, and Go integer
// types. NaN, infinities and out-of-range values are rejected.
func ToInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return floatToInt(n)
	case float32:
		return floatToInt(float64(n))
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		if n > math.MaxInt || n < math.MinInt {
			return 0, false
		}
		return int(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return ToInt(i)
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	default:
		return 0, false
	}
}

// floatToInt truncates f toward zero if it fits in an int.
func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	t := math.Trunc(f)
	if t >= math.MaxInt64 || t < math.MinInt64 {
		return 0, false
	}
	return int(t), true
}
