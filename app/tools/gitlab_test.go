package tools

import (
	"devmcp/app/client/gitlab"
	"devmcp/app/config"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGitLabClient(t *testing.T, handler http.HandlerFunc) *gitlab.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return gitlab.NewClient(config.GitLab{APIURL: srv.URL + "/api/v4", Token: "glpat"}, testHTTP)
}

func TestGitLabTools_IssueLinkWriteGate(t *testing.T) {
	client := gitlab.NewClient(config.GitLab{APIURL: "http://localhost/api/v4"}, testHTTP)

	readOnly := names(GitLabTools(client, false))
	assert.Contains(t, readOnly, "get_merge_request")
	assert.Contains(t, readOnly, "list_issue_links")
	assert.NotContains(t, readOnly, "get_issue_link")
	assert.NotContains(t, readOnly, "create_issue_link")
	assert.NotContains(t, readOnly, "delete_issue_link")

	writable := names(GitLabTools(client, true))
	assert.Len(t, writable, len(readOnly)+3)
	assert.Contains(t, writable, "create_issue_link")
}

func TestListIssues_ForwardsFilters(t *testing.T) {
	client := newGitLabClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v4/projects/group%2Fproj/issues", r.URL.EscapedPath())
		q := r.URL.Query()
		assert.Equal(t, "opened", q.Get("state"))
		assert.Equal(t, []string{"bug", "ui"}, q["labels[]"])
		assert.Equal(t, "true", q.Get("confidential"))
		assert.Equal(t, "2", q.Get("page"))
		assert.NotContains(t, q, "search")

		w.Header().Set("X-Page", "2")
		w.Header().Set("X-Total", "21")
		writeJSON(w, []map[string]any{{"id": 1, "iid": 7, "title": "Broken login", "state": "opened"}})
	})

	r := call(t, GitLabTools(client, false), "list_issues", map[string]interface{}{
		"project_id":   "group/proj",
		"state":        "opened",
		"labels":       []any{"bug", "ui"},
		"confidential": true,
		"page":         2.0,
	})
	require.False(t, r.IsError, resultText(t, r))

	text := resultText(t, r)
	assert.Contains(t, text, `"title":"Broken login"`)
	assert.Contains(t, text, `"pagination"`)
}

func TestMyIssues_ScopesToAssignee(t *testing.T) {
	client := newGitLabClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v4/issues", r.URL.Path)
		assert.Equal(t, "assigned_to_me", r.URL.Query().Get("scope"))
		writeJSON(w, []any{})
	})

	r := call(t, GitLabTools(client, false), "my_issues", map[string]interface{}{})
	require.False(t, r.IsError, resultText(t, r))
}

func TestCreateIssue(t *testing.T) {
	client := newGitLabClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"title":"New","assignee_ids":[3],"labels":["bug"],"issue_type":"incident"}`, string(body))
		writeJSON(w, map[string]any{"id": 10, "iid": 1, "title": "New"})
	})

	list := GitLabTools(client, false)

	r := call(t, list, "create_issue", map[string]interface{}{"project_id": "42"})
	assert.True(t, r.IsError)
	assert.Equal(t, "project_id, title required", resultText(t, r))

	r = call(t, list, "create_issue", map[string]interface{}{
		"project_id":   "42",
		"title":        "New",
		"assignee_ids": []any{3.0},
		"labels":       []any{"bug"},
		"issue_type":   "incident",
	})
	require.False(t, r.IsError, resultText(t, r))
	assert.Contains(t, resultText(t, r), `"iid":1`)
}

func TestDeleteIssueAndLink(t *testing.T) {
	client := newGitLabClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	list := GitLabTools(client, true)

	r := call(t, list, "delete_issue", map[string]interface{}{"project_id": "42", "issue_iid": "3"})
	assert.JSONEq(t, `{"message":"Issue deleted successfully"}`, resultText(t, r))

	r = call(t, list, "delete_issue_link", map[string]interface{}{"project_id": "42", "issue_iid": "3", "issue_link_id": "9"})
	assert.JSONEq(t, `{"message":"Issue link deleted successfully"}`, resultText(t, r))
}

func TestGetIssue_UpstreamError(t *testing.T) {
	client := newGitLabClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"404 Not found"}`))
	})

	r := call(t, GitLabTools(client, false), "get_issue", map[string]interface{}{"project_id": "42", "issue_iid": "999"})
	assert.True(t, r.IsError)
	assert.Contains(t, resultText(t, r), "Failed to get issue: ")
}

func TestGetMergeRequest_RequiresIdOrBranch(t *testing.T) {
	client := gitlab.NewClient(config.GitLab{APIURL: "http://localhost/api/v4"}, testHTTP)

	r := call(t, GitLabTools(client, false), "get_merge_request", map[string]interface{}{"project_id": "42"})
	assert.True(t, r.IsError)
	assert.Equal(t, "either merge_request_id or source_branch is required", resultText(t, r))
}
