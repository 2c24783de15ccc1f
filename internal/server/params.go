package server

import (
	"fmt"
	"strings"
)

// stringParam extracts a string parameter from an MCP arguments map.
func stringParam(params map[string]interface{}, key, def string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// intParam extracts an integer parameter. JSON numbers arrive as float64.
func intParam(params map[string]interface{}, key string, def int) int {
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

// boolParam extracts a boolean parameter.
func boolParam(params map[string]interface{}, key string, def bool) bool {
	if v, ok := params[key].(bool); ok {
		return v
	}
	return def
}

// hasParam reports whether key was supplied at all.
func hasParam(params map[string]interface{}, key string) bool {
	_, ok := params[key]
	return ok
}

// listParam splits a comma-separated parameter, dropping empty items.
func listParam(params map[string]interface{}, key string) []string {
	var out []string
	for _, part := range strings.Split(stringParam(params, key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func requirePoint(params map[string]interface{}) (int, int, error) {
	if !hasParam(params, "x") || !hasParam(params, "y") {
		return 0, 0, fmt.Errorf("x and y are required")
	}
	return intParam(params, "x", 0), intParam(params, "y", 0), nil
}
