package navigation

import (
	"fmt"
	"sort"
	"strings"
)

// Args are the keyword arguments of a navigation, e.g. the name of the
// entity to open.
type Args map[string]any

// String returns the string value of key, or "".
func (a Args) String(key string) string {
	switch v := a[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Bool returns the boolean value of key, false when unset.
func (a Args) Bool(key string) bool {
	switch v := a[key].(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "yes" || v == "1"
	default:
		return false
	}
}

// Map returns the mapping value of key, nil when unset or of another type.
func (a Args) Map(key string) map[string]any {
	m, _ := a[key].(map[string]any)
	return m
}

// Strings returns the list value of key. A single string is a one element list.
func (a Args) Strings(key string) []string {
	switch v := a[key].(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			out = append(out, fmt.Sprint(e))
		}
		return out
	default:
		return nil
	}
}

// Only returns a copy of a restricted to keys.
func (a Args) Only(keys ...string) Args {
	out := make(Args, len(keys))
	for _, k := range keys {
		if v, ok := a[k]; ok {
			out[k] = v
		}
	}
	return out
}

// With returns a copy of a with key set to value.
func (a Args) With(key string, value any) Args {
	out := make(Args, len(a)+1)
	for k, v := range a {
		out[k] = v
	}
	out[key] = value
	return out
}

// Format renders a as "k1=v1,k2=v2" in key order, for logs.
func (a Args) Format() string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, a[k]))
	}
	return strings.Join(parts, ",")
}
