package server

import (
	"devmcp/app/config"
	"encoding/json"
	"io"
	"net/http/httptest"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeTool(name string) mcpserver.ServerTool {
	return mcpserver.ServerTool{Tool: mcp.NewTool(name)}
}

func toolNames(list []mcpserver.ServerTool) []string {
	names := make([]string, 0, len(list))
	for _, t := range list {
		names = append(names, t.Tool.Name)
	}
	return names
}

func TestToolset_SkipsDisabledGroups(t *testing.T) {
	built := map[string]bool{}
	group := func(name string, tools ...string) toolGroup {
		return toolGroup{name, func() []mcpserver.ServerTool {
			built[name] = true
			result := make([]mcpserver.ServerTool, 0, len(tools))
			for _, n := range tools {
				result = append(result, fakeTool(n))
			}
			return result
		}}
	}

	cfg := config.Default()
	cfg.Tools.Disabled = []string{"figma"}

	result := toolset(&cfg, []toolGroup{
		group("gitlab", "get_issue"),
		group("figma", "get_figma_data"),
		group("memory", "read_graph", "open_nodes"),
	})

	assert.Equal(t, []string{"get_issue", "read_graph", "open_nodes"}, toolNames(result))
	assert.False(t, built["figma"])
}

func TestGroups_AllRegistered(t *testing.T) {
	cfg := config.Default()
	cfg.Memory.FilePath = filepath.Join(t.TempDir(), "memory.json")

	di := do.New()
	t.Cleanup(func() { _ = di.Shutdown() })
	do.ProvideValue(di, &cfg)
	Provide(di)

	names := toolNames(toolset(&cfg, groups(di, &cfg)))
	assert.Contains(t, names, "get_merge_request")
	assert.Contains(t, names, "confluence_search")
	assert.Contains(t, names, "get_figma_data")
	assert.Contains(t, names, "mattermost_search_posts")
	assert.Contains(t, names, "oracle_execute_select")
	assert.Contains(t, names, "create_entities")
	assert.NotContains(t, names, "create_issue_link")

	cfg.GitLab.IssueLinkWrite = true
	names = toolNames(toolset(&cfg, groups(di, &cfg)))
	assert.Contains(t, names, "create_issue_link")
}

func TestHealthz(t *testing.T) {
	cfg := config.Default()
	cfg.Tools.Disabled = []string{"gitlab", "confluence", "figma", "mattermost", "database", "memory"}

	di := do.New()
	t.Cleanup(func() { _ = di.Shutdown() })
	do.ProvideValue(di, &cfg)

	svc, err := New(di)
	require.NoError(t, err)

	resp, err := svc.newApp().Test(httptest.NewRequest("GET", "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "ok", payload["status"])
	assert.Equal(t, Version, payload["version"])
}

func TestShutdown_WithoutHTTP(t *testing.T) {
	svc := &Service{}
	assert.NoError(t, svc.Shutdown())
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func postRPC(t *testing.T, app *fiber.App, session, body string) (*http.Response, rpcResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	if session != "" {
		req.Header.Set("Mcp-Session-Id", session)
	}

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	// event stream responses carry the message on a data line
	payload := string(raw)
	for _, line := range strings.Split(payload, "\n") {
		if data, ok := strings.CutPrefix(line, "data: "); ok {
			payload = data
			break
		}
	}

	var msg rpcResponse
	require.NoError(t, json.Unmarshal([]byte(payload), &msg), payload)
	require.Nil(t, msg.Error)
	return resp, msg
}

func TestMCPEndpoint_InitializeAndCallTool(t *testing.T) {
	cfg := config.Default()
	cfg.Memory.FilePath = filepath.Join(t.TempDir(), "memory.json")
	cfg.Tools.Disabled = []string{"gitlab", "confluence", "figma", "mattermost", "database"}

	di := do.New()
	t.Cleanup(func() { _ = di.Shutdown() })
	do.ProvideValue(di, &cfg)
	Provide(di)

	svc, err := New(di)
	require.NoError(t, err)
	app := svc.newApp()

	resp, msg := postRPC(t, app, "", `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{
		"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`)
	session := resp.Header.Get("Mcp-Session-Id")
	require.NotEmpty(t, session)

	var initResult struct {
		ServerInfo struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"serverInfo"`
	}
	require.NoError(t, json.Unmarshal(msg.Result, &initResult))
	assert.Equal(t, cfg.Server.Name, initResult.ServerInfo.Name)
	assert.Equal(t, Version, initResult.ServerInfo.Version)

	_, msg = postRPC(t, app, session, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{
		"name":"create_entities","arguments":{"entities":[{"name":"Kim","entityType":"person","observations":["on call"]}]}}}`)

	var callResult struct {
		IsError bool `json:"isError"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(msg.Result, &callResult))
	assert.False(t, callResult.IsError)
	require.Len(t, callResult.Content, 1)
	assert.JSONEq(t, `[{"name":"Kim","entityType":"person","observations":["on call"]}]`, callResult.Content[0].Text)
}
