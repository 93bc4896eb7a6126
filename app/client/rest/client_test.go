package rest

import (
	"context"
	"devmcp/app/config"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHTTP() config.HTTP {
	return config.HTTP{
		Timeout:         5 * time.Second,
		RateLimit:       1000,
		Burst:           1000,
		BreakerFailures: 2,
		BreakerTimeout:  time.Minute,
	}
}

func newTestClient(srv *httptest.Server, auth AuthFunc) *Client {
	return New(Options{
		Service: "test",
		BaseURL: srv.URL + "/api/",
		Auth:    auth,
		HTTP:    testHTTP(),
	})
}

func TestClient_DoSendsJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/projects/group%2Fproj/issues", r.URL.EscapedPath())
		assert.Equal(t, "a,b", r.URL.Query().Get("labels"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		data, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"title":"bug"}`, string(data))

		w.Header().Set("x-total", "7")
		_ = json.NewEncoder(w).Encode(map[string]any{"iid": 3})
	}))
	defer srv.Close()

	c := newTestClient(srv, BearerAuth("secret"))

	var out struct {
		IID int `json:"iid"`
	}
	h, err := c.Do(context.Background(), http.MethodPost, "/projects/"+url.PathEscape("group/proj")+"/issues",
		url.Values{"labels": {"a,b"}}, map[string]string{"title": "bug"}, &out)
	require.NoError(t, err)
	assert.Equal(t, 3, out.IID)
	assert.Equal(t, "7", h.Get("x-total"))
}

func TestClient_DoEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	var out map[string]any
	_, err := newTestClient(srv, nil).Do(context.Background(), http.MethodDelete, "/x", nil, nil, &out)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestClient_APIErrorDoesNotTrip(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"message":"404 Not Found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(srv, nil)
	for i := 0; i < 5; i++ {
		_, err := c.Do(context.Background(), http.MethodGet, "/missing", nil, nil, nil)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
		assert.Equal(t, "test", apiErr.Service)
		assert.Contains(t, apiErr.Body, "404 Not Found")
		assert.True(t, IsStatus(err, http.StatusNotFound))
	}
	assert.EqualValues(t, 5, calls.Load())
}

func TestClient_ServerErrorsOpenCircuit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(srv, nil)
	for i := 0; i < 2; i++ {
		_, err := c.Do(context.Background(), http.MethodGet, "/flaky", nil, nil, nil)
		require.True(t, IsStatus(err, http.StatusBadGateway))
	}

	_, err := c.Do(context.Background(), http.MethodGet, "/flaky", nil, nil, nil)
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.EqualValues(t, 2, calls.Load())
}

func TestClient_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	var out map[string]any
	_, err := newTestClient(srv, nil).Do(context.Background(), http.MethodGet, "/", nil, nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
}

func TestClient_Download(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token", r.Header.Get("X-Figma-Token"))
		_, _ = w.Write([]byte("PNGDATA"))
	}))
	defer srv.Close()

	c := New(Options{Service: "figma", BaseURL: "https://unused.example", Auth: HeaderAuth("X-Figma-Token", "token"), HTTP: testHTTP()})

	data, err := c.Download(context.Background(), srv.URL+"/img.png")
	require.NoError(t, err)
	assert.Equal(t, "PNGDATA", string(data))
}

func TestClient_BasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "dev@example.com", user)
		assert.Equal(t, "tok", pass)
	}))
	defer srv.Close()

	_, err := newTestClient(srv, BasicAuth("dev@example.com", "tok")).Do(context.Background(), http.MethodGet, "/", nil, nil, nil)
	require.NoError(t, err)
}

func TestClient_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(srv, nil).Do(ctx, http.MethodGet, "/", nil, nil, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestParsePagination(t *testing.T) {
	h := http.Header{}
	h.Set("x-page", "2")
	h.Set("x-per-page", "50")
	h.Set("x-total", "120")
	h.Set("x-total-pages", "3")

	assert.Equal(t, Pagination{Page: 2, PerPage: 50, Total: 120, TotalPages: 3}, ParsePagination(h))
	assert.Equal(t, Pagination{Page: 1, PerPage: 20}, ParsePagination(http.Header{}))

	h.Set("x-page", "abc")
	assert.Equal(t, 1, ParsePagination(h).Page)
}

func TestAPIError_Message(t *testing.T) {
	err := &APIError{Service: "gitlab", StatusCode: 401, Status: "401 Unauthorized", Body: "nope"}
	assert.Equal(t, "gitlab API error: 401 Unauthorized: nope", err.Error())

	err.Body = ""
	assert.Equal(t, "gitlab API error: 401 Unauthorized", err.Error())
}
