// Package common holds helpers shared by the tool packages: argument
// extraction from already-validated JSON argument maps and result
// formatting for text tool output.
package common

import (
	"encoding/json"
	"fmt"
)

// String returns the named string argument, or "" when absent.
func String(args map[string]any, name string) string {
	s, _ := args[name].(string)
	return s
}

// Int returns the named numeric argument as an int, or def when absent.
// JSON numbers arrive as float64; integer kinds are accepted too.
func Int(args map[string]any, name string, def int) int {
	switch v := args[name].(type) {
	case float64:
		return int(v)
	case float32:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	default:
		return def
	}
}

// Bool returns the named boolean argument, or false when absent.
func Bool(args map[string]any, name string) bool {
	b, _ := args[name].(bool)
	return b
}

// StringSlice returns the named argument as a string slice. It accepts a
// JSON array of strings or a single string, and skips non-string elements.
func StringSlice(args map[string]any, name string) []string {
	switch v := args[name].(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// FormatJSON pretty-prints a raw API object for tool output.
func FormatJSON(raw json.RawMessage) (string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("format result: %w", err)
	}
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("format result: %w", err)
	}
	return string(buf), nil
}

// FormatList pretty-prints a list of raw API objects with a count header.
func FormatList(label string, items []json.RawMessage) (string, error) {
	if items == nil {
		items = []json.RawMessage{}
	}
	buf, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("format result: %w", err)
	}
	return fmt.Sprintf("Found %d %s:\n%s", len(items), label, buf), nil
}
