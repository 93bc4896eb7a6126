package tools

import (
	"context"
	"devmcp/app/config"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testHTTP = config.HTTP{
	Timeout:         5 * time.Second,
	RateLimit:       1000,
	Burst:           1000,
	BreakerFailures: 5,
	BreakerTimeout:  time.Minute,
}

func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, r)
	require.NotEmpty(t, r.Content)
	text, ok := r.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", r.Content[0])
	return text.Text
}

// call runs the named tool from list and fails the test on a Go error.
func call(t *testing.T, list []server.ServerTool, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	for _, tool := range list {
		if tool.Tool.Name == name {
			result, err := tool.Handler(context.Background(), makeReq(args))
			require.NoError(t, err)
			return result
		}
	}
	t.Fatalf("tool %s is not registered", name)
	return nil
}

func names(list []server.ServerTool) []string {
	result := make([]string, 0, len(list))
	for _, tool := range list {
		result = append(result, tool.Tool.Name)
	}
	return result
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestScalar(t *testing.T) {
	for _, tt := range []struct {
		in   any
		want string
		ok   bool
	}{
		{"abc", "abc", true},
		{float64(42), "42", true},
		{1.5, "1.5", true},
		{7, "7", true},
		{int64(8), "8", true},
		{true, "true", true},
		{json.Number("12"), "12", true},
		{nil, "", false},
		{[]any{"x"}, "", false},
	} {
		got, ok := scalar(tt.in)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.ok, ok)
	}
}

func TestArgReaders(t *testing.T) {
	req := makeReq(map[string]interface{}{
		"project_id": "  group/proj ",
		"iid":        float64(12),
		"flag":       "true",
		"labels":     []any{"bug", 3.0, map[string]any{}},
		"ids":        []any{1.0, "2", "x"},
		"blank":      "   ",
	})

	assert.Equal(t, "group/proj", stringArg(req, "project_id"))
	assert.Equal(t, "12", stringArg(req, "iid"))
	assert.Equal(t, 12, intArg(req, "iid", 0))
	assert.Equal(t, 5, intArg(req, "missing", 5))
	assert.True(t, boolArg(req, "flag", false))
	assert.True(t, boolArg(req, "missing", true))
	assert.Nil(t, optBool(req, "project_id"))
	assert.Equal(t, []string{"bug", "3"}, stringsArg(req, "labels"))
	assert.Equal(t, []int{1, 2}, intsArg(req, "ids"))
	assert.Nil(t, stringsArg(req, "missing"))

	values, ok := requireArgs(req, "project_id", "iid")
	assert.True(t, ok)
	assert.Equal(t, []string{"group/proj", "12"}, values)

	_, ok = requireArgs(req, "project_id", "blank")
	assert.False(t, ok)
}

func TestObjectsArg(t *testing.T) {
	req := makeReq(map[string]interface{}{
		"items": []any{map[string]any{"name": "a", "tags": []any{"x", "y"}}, "junk"},
		"bad":   "nope",
	})

	items, ok := objectsArg(req, "items")
	require.True(t, ok)
	require.Len(t, items, 1)

	name, ok := field(items[0], "name")
	assert.True(t, ok)
	assert.Equal(t, "a", name)

	tags, ok := stringsField(items[0], "tags")
	assert.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, tags)

	_, ok = stringsField(map[string]any{"tags": []any{"x", 1.0}}, "tags")
	assert.False(t, ok)

	_, ok = objectsArg(req, "bad")
	assert.False(t, ok)
	_, ok = objectsArg(req, "missing")
	assert.False(t, ok)
}

func TestResults(t *testing.T) {
	r, err := missingArgs("project_id", "title")
	require.NoError(t, err)
	assert.True(t, r.IsError)
	assert.Equal(t, "project_id, title required", resultText(t, r))

	r, err = jsonResult(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.False(t, r.IsError)
	assert.JSONEq(t, `{"a":1}`, resultText(t, r))
}

func TestLoggingMiddleware(t *testing.T) {
	handler := LoggingMiddleware(func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("hello " + stringArg(req, "name")), nil
	})

	req := makeReq(map[string]interface{}{"name": "kim"})
	req.Params.Name = "greet"

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "hello kim", resultText(t, result))

	failing := LoggingMiddleware(func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("boom"), nil
	})
	result, err = failing(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "boom", firstText(result))
}
