// Package tools holds the MCP tool definitions and handlers, grouped by the
// upstream they talk to.
package tools

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/samber/oops"
)

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, oops.In("tools").Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func errorResult(prefix string, err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(prefix + ": " + err.Error()), nil
}

func missingArgs(keys ...string) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(strings.Join(keys, ", ") + " required"), nil
}

// scalar renders a JSON scalar as text. Numbers come in as float64 and are
// printed without a fractional part when they have none.
func scalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	case json.Number:
		return t.String(), true
	default:
		return "", false
	}
}

func stringArg(req mcp.CallToolRequest, key string) string {
	s, _ := scalar(req.GetArguments()[key])
	return strings.TrimSpace(s)
}

// textArg reads a string argument verbatim.
func textArg(req mcp.CallToolRequest, key string) string {
	s, _ := req.GetArguments()[key].(string)
	return s
}

// requireArgs returns the values of keys, or false when any is blank.
func requireArgs(req mcp.CallToolRequest, keys ...string) ([]string, bool) {
	values := make([]string, len(keys))
	for i, key := range keys {
		values[i] = stringArg(req, key)
		if values[i] == "" {
			return nil, false
		}
	}
	return values, true
}

func optString(req mcp.CallToolRequest, key string) *string {
	s, ok := scalar(req.GetArguments()[key])
	if !ok {
		return nil
	}
	return &s
}

func optBool(req mcp.CallToolRequest, key string) *bool {
	switch v := req.GetArguments()[key].(type) {
	case bool:
		return &v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return &b
		}
	}
	return nil
}

func optInt(req mcp.CallToolRequest, key string) *int {
	s, ok := scalar(req.GetArguments()[key])
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	n := int(f)
	return &n
}

func intArg(req mcp.CallToolRequest, key string, def int) int {
	if n := optInt(req, key); n != nil {
		return *n
	}
	return def
}

func boolArg(req mcp.CallToolRequest, key string, def bool) bool {
	if b := optBool(req, key); b != nil {
		return *b
	}
	return def
}

// stringsArg reads an array of scalars. Non-scalar items are dropped.
func stringsArg(req mcp.CallToolRequest, key string) []string {
	items, ok := req.GetArguments()[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := scalar(item); ok {
			out = append(out, s)
		}
	}
	return out
}

func intsArg(req mcp.CallToolRequest, key string) []int {
	var out []int
	for _, s := range stringsArg(req, key) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			out = append(out, int(f))
		}
	}
	return out
}

// objectsArg reads an array argument of objects. ok is false when the
// argument is missing or not an array; non-object items are dropped.
func objectsArg(req mcp.CallToolRequest, key string) ([]map[string]any, bool) {
	items, ok := req.GetArguments()[key].([]any)
	if !ok {
		return nil, false
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out, true
}

func field(obj map[string]any, key string) (string, bool) {
	s, ok := obj[key].(string)
	return s, ok
}

// stringsField requires an array whose items are all strings.
func stringsField(obj map[string]any, key string) ([]string, bool) {
	items, ok := obj[key].([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
