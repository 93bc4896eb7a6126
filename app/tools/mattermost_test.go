package tools

import (
	"devmcp/app/client/mattermost"
	"devmcp/app/config"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMattermostClient(t *testing.T, handler http.HandlerFunc) *mattermost.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return mattermost.NewClient(config.Mattermost{APIURL: srv.URL + "/api/v4", Token: "mm"}, testHTTP)
}

func TestMattermostSearchPosts(t *testing.T) {
	client := newMattermostClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v4/teams/team1/posts/search", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{
			"terms": "deploy",
			"is_or_search": true,
			"page": 0,
			"per_page": 20,
			"include_deleted_channels": false,
			"time_zone_offset": 32400
		}`, string(body))
		writeJSON(w, map[string]any{"order": []string{"p1"}, "posts": map[string]any{"p1": map[string]any{"id": "p1", "message": "deployed"}}})
	})

	r := call(t, MattermostTools(client), "mattermost_search_posts", map[string]interface{}{
		"team_id":          "team1",
		"terms":            "deploy",
		"is_or_search":     true,
		"time_zone_offset": 32400.0,
	})
	require.False(t, r.IsError, resultText(t, r))
	assert.Contains(t, resultText(t, r), `"message":"deployed"`)
}

func TestMattermostSearch_RequiresTerms(t *testing.T) {
	list := MattermostTools(mattermost.NewClient(config.Mattermost{APIURL: "http://localhost"}, testHTTP))

	for _, name := range []string{"mattermost_search_posts", "mattermost_search_files"} {
		r := call(t, list, name, map[string]interface{}{"terms": " "})
		assert.True(t, r.IsError, name)
		assert.Equal(t, "terms required", resultText(t, r), name)
	}

	r := call(t, list, "mattermost_get_channels", map[string]interface{}{})
	assert.True(t, r.IsError)
	assert.Equal(t, "team_id required", resultText(t, r))
}

func TestMattermostGetTeams(t *testing.T) {
	client := newMattermostClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v4/users/me/teams", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "5", r.URL.Query().Get("per_page"))
		_, _ = w.Write([]byte("null"))
	})

	r := call(t, MattermostTools(client), "mattermost_get_teams", map[string]interface{}{"page": 1.0, "per_page": 5.0})
	require.False(t, r.IsError, resultText(t, r))
	assert.Equal(t, "[]", resultText(t, r))
}
