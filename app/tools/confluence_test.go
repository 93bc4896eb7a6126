package tools

import (
	"devmcp/app/client/confluence"
	"devmcp/app/config"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConfluenceClient(t *testing.T, spaces string, handler http.HandlerFunc) *confluence.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return confluence.NewClient(config.Confluence{BaseURL: srv.URL, BearerToken: "oauth", SpacesFilter: spaces}, testHTTP)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 1, clampLimit(0))
	assert.Equal(t, 1, clampLimit(-3))
	assert.Equal(t, 10, clampLimit(10))
	assert.Equal(t, 50, clampLimit(500))
}

func TestConfluenceSearch_SpacesFilter(t *testing.T) {
	var gotCQL, gotLimit string
	client := newConfluenceClient(t, "DEV", func(w http.ResponseWriter, r *http.Request) {
		gotCQL = r.URL.Query().Get("cql")
		gotLimit = r.URL.Query().Get("limit")
		writeJSON(w, map[string]any{"results": []any{}})
	})
	list := ConfluenceTools(client)

	r := call(t, list, "confluence_search", map[string]interface{}{"query": "deploy"})
	require.False(t, r.IsError, resultText(t, r))
	assert.Equal(t, `(space = "DEV") AND (siteSearch ~ "deploy")`, gotCQL)
	assert.Equal(t, "10", gotLimit)
	assert.Equal(t, "[]", resultText(t, r))

	call(t, list, "confluence_search", map[string]interface{}{"query": "deploy", "spaces_filter": "OPS,QA", "limit": 80.0})
	assert.Equal(t, `(space = "OPS" OR space = "QA") AND (siteSearch ~ "deploy")`, gotCQL)
	assert.Equal(t, "50", gotLimit)

	call(t, list, "confluence_search", map[string]interface{}{"query": "type = page", "spaces_filter": ""})
	assert.Equal(t, "type = page", gotCQL)

	r = call(t, list, "confluence_search", map[string]interface{}{"query": " "})
	assert.True(t, r.IsError)
}

func TestConfluenceGetPage_RequiresLocator(t *testing.T) {
	list := ConfluenceTools(confluence.NewClient(config.Confluence{}, testHTTP))

	r := call(t, list, "confluence_get_page", map[string]interface{}{"title": "Guide"})
	assert.True(t, r.IsError)
	assert.Equal(t, "either page_id or title and space_key are required", resultText(t, r))
}

func TestConfluenceCreatePage_ConvertsMarkdown(t *testing.T) {
	client := newConfluenceClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{
			"type": "page",
			"title": "Runbook",
			"space": {"key": "DEV"},
			"body": {"storage": {"value": "<h1>Steps</h1>", "representation": "storage"}}
		}`, string(body))
		writeJSON(w, map[string]any{"id": "77"})
	})

	r := call(t, ConfluenceTools(client), "confluence_create_page", map[string]interface{}{
		"space":   "DEV",
		"title":   "Runbook",
		"content": "# Steps",
	})
	require.False(t, r.IsError, resultText(t, r))
	assert.JSONEq(t, `{"id":"77"}`, resultText(t, r))
}

func TestConfluenceAddComment_WikiPassThrough(t *testing.T) {
	client := newConfluenceClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"representation":"wiki"`)
		assert.Contains(t, string(body), `"value":"h1. Hi"`)
		writeJSON(w, map[string]any{"id": "c1"})
	})

	r := call(t, ConfluenceTools(client), "confluence_add_comment", map[string]interface{}{
		"page_id": "42",
		"content": "h1. Hi",
		"format":  "wiki",
	})
	require.False(t, r.IsError, resultText(t, r))
}

func TestConfluenceDeletePage(t *testing.T) {
	client := newConfluenceClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	r := call(t, ConfluenceTools(client), "confluence_delete_page", map[string]interface{}{"page_id": "42"})
	assert.JSONEq(t, `{"success":true,"page_id":"42"}`, resultText(t, r))
}
