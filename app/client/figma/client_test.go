package figma

import (
	"context"
	"devmcp/app/config"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

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

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, string) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(config.Figma{APIURL: srv.URL, APIKey: "figd_key"}, testHTTP)
	require.NoError(t, err)

	return c, srv.URL
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestAuthFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	authFor(config.Figma{OAuthToken: "oauth", APIKey: "key"})(req)
	assert.Equal(t, "Bearer oauth", req.Header.Get("Authorization"))
	assert.Empty(t, req.Header.Get("X-Figma-Token"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	authFor(config.Figma{APIKey: "key"})(req)
	assert.Equal(t, "key", req.Header.Get("X-Figma-Token"))
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestNewTransport(t *testing.T) {
	tr, err := newTransport(config.Figma{Insecure: true})
	require.NoError(t, err)
	require.NotNil(t, tr.TLSClientConfig)
	assert.True(t, tr.TLSClientConfig.InsecureSkipVerify)

	tr, err = newTransport(config.Figma{Insecure: false})
	require.NoError(t, err)
	assert.False(t, tr.TLSClientConfig.InsecureSkipVerify)

	tr, err = newTransport(config.Figma{CACertPEM: filepath.Join(t.TempDir(), "missing.pem"), Insecure: true})
	require.NoError(t, err)
	assert.True(t, tr.TLSClientConfig.InsecureSkipVerify)

	bad := filepath.Join(t.TempDir(), "bad.pem")
	require.NoError(t, os.WriteFile(bad, []byte("not a certificate"), 0o644))
	_, err = newTransport(config.Figma{CACertPEM: bad})
	assert.Error(t, err)
}

func TestClient_GetFileSimplified(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/abc", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("depth"))
		assert.Equal(t, "figd_key", r.Header.Get("X-Figma-Token"))
		writeJSON(w, map[string]any{
			"name":         "Design",
			"lastModified": "2024-05-01T00:00:00Z",
			"version":      "123",
			"document": map[string]any{
				"id": "0:0", "name": "Document", "type": "DOCUMENT",
				"children": []map[string]any{
					{"id": "1:1", "name": "Page", "type": "CANVAS", "visible": false, "fills": []any{}},
				},
			},
		})
	})

	data, err := c.GetFile(context.Background(), "abc", 2)
	require.NoError(t, err)

	out, err := json.Marshal(Simplify(data, false))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"metadata": {"name": "Design", "lastModified": "2024-05-01T00:00:00Z", "version": "123"},
		"nodes": [{
			"id": "0:0", "name": "Document", "type": "DOCUMENT", "visible": true,
			"children": [{"id": "1:1", "name": "Page", "type": "CANVAS", "visible": false}]
		}],
		"globalVars": {"styles": {}, "components": {}}
	}`, string(out))
}

func TestClient_GetNodesSimplified(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/abc/nodes", r.URL.Path)
		assert.Equal(t, "1:2,1:3", r.URL.Query().Get("ids"))
		assert.Empty(t, r.URL.Query().Get("depth"))
		writeJSON(w, map[string]any{
			"nodes": map[string]any{
				"1:3": map[string]any{"document": map[string]any{"id": "1:3", "name": "B", "type": "FRAME"}},
				"1:2": map[string]any{"document": map[string]any{"id": "1:2", "name": "A", "type": "TEXT"}},
				"9:9": nil,
			},
		})
	})

	data, err := c.GetNodes(context.Background(), "abc", []string{"1:2", "1:3"}, 0)
	require.NoError(t, err)

	design := Simplify(data, true)
	assert.Equal(t, "Node Data", design.Metadata.Name)
	assert.Empty(t, design.Metadata.Version)
	require.Len(t, design.Nodes, 2)
	assert.Equal(t, "A", *design.Nodes[0].Name)
	assert.Equal(t, "B", *design.Nodes[1].Name)
	assert.Nil(t, design.Nodes[0].Children)
}

func TestSimplify_Empty(t *testing.T) {
	design := Simplify(&FileData{}, false)
	assert.Equal(t, "Unknown", design.Metadata.Name)
	assert.Equal(t, []Node{}, design.Nodes)
}

func TestFinalName(t *testing.T) {
	assert.Equal(t, "icon.svg", FinalName("icon.svg", ""))
	assert.Equal(t, "icon-dark.svg", FinalName("icon.svg", "dark"))
	assert.Equal(t, "icon-dark.svg", FinalName("icon-dark.svg", "dark"))
	assert.Equal(t, "icon-dark", FinalName("icon", "dark"))
	assert.Equal(t, ".hidden-x", FinalName(".hidden", "x"))
}

func TestResolveTarget(t *testing.T) {
	root := t.TempDir()

	got, err := ResolveTarget(root, "assets/img")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "assets", "img"), got)

	got, err = ResolveTarget(root, filepath.Join(root, "x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "x"), got)

	got, err = ResolveTarget(root, root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(root), got)

	_, err = ResolveTarget(root, "../outside")
	assert.ErrorIs(t, err, ErrPathTraversal)

	_, err = ResolveTarget(root, "/etc")
	assert.ErrorIs(t, err, ErrPathTraversal)

	_, err = ResolveTarget(root, "a/../../b")
	assert.ErrorIs(t, err, ErrPathTraversal)
}

func TestClient_DownloadImages(t *testing.T) {
	var (
		mu     sync.Mutex
		served []string
	)

	var base string
	c, base := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/files/abc/images":
			writeJSON(w, map[string]any{"meta": map[string]any{"images": map[string]string{
				"ref1": base + "/cdn/fill.png",
			}}})
		case r.URL.Path == "/images/abc" && r.URL.Query().Get("format") == "png":
			assert.Equal(t, "1:2", r.URL.Query().Get("ids"))
			assert.Equal(t, "3", r.URL.Query().Get("scale"))
			writeJSON(w, map[string]any{"images": map[string]any{"1:2": base + "/cdn/render.png"}})
		case r.URL.Path == "/images/abc" && r.URL.Query().Get("format") == "svg":
			assert.Equal(t, "1:3,1:4", r.URL.Query().Get("ids"))
			assert.Equal(t, "true", r.URL.Query().Get("svg_outline_text"))
			writeJSON(w, map[string]any{"images": map[string]any{"1:3": base + "/cdn/icon.svg", "1:4": nil}})
		case strings.HasPrefix(r.URL.Path, "/cdn/"):
			mu.Lock()
			served = append(served, r.URL.Path)
			mu.Unlock()
			_, _ = w.Write([]byte("bytes:" + r.URL.Path))
		default:
			t.Errorf("unexpected request %s", r.URL.String())
		}
	})

	dir := filepath.Join(t.TempDir(), "out")
	names, err := c.DownloadImages(context.Background(), "abc", dir, []DownloadItem{
		{ImageRef: "ref1", FileName: "bg.png"},
		{ImageRef: "missing", FileName: "nope.png"},
		{NodeID: "1:2", FileName: "hero.png", FilenameSuffix: "v2"},
		{NodeID: "1:3", FileName: "icon.SVG"},
		{NodeID: "1:4", FileName: "broken.svg"},
		{NodeID: "1:5"},
	}, 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"bg.png", "hero-v2.png", "icon.SVG"}, names)
	assert.Len(t, served, 3)

	data, err := os.ReadFile(filepath.Join(dir, "hero-v2.png"))
	require.NoError(t, err)
	assert.Equal(t, "bytes:/cdn/render.png", string(data))
}

func TestClient_DownloadImagesRejectsEscapingName(t *testing.T) {
	var base string
	c, base := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"images": map[string]any{"1:2": base + "/cdn/x.png"}})
	})

	_, err := c.DownloadImages(context.Background(), "abc", t.TempDir(), []DownloadItem{
		{NodeID: "1:2", FileName: "../evil.png"},
	}, 0)
	assert.ErrorIs(t, err, ErrPathTraversal)
}
