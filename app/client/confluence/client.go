package confluence

import (
	"context"
	"devmcp/app/client/rest"
	"devmcp/app/config"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/samber/do"
	"github.com/samber/oops"
)

const (
	expandBody     = "body.export_view,body.storage"
	expandMetadata = expandBody + ",version,space,history"
)

type Client struct {
	rest    *rest.Client
	baseURL string
	spaces  string
}

func New(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)
	return NewClient(cfg.Confluence, cfg.HTTP), nil
}

func NewClient(cfg config.Confluence, httpCfg config.HTTP) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		rest: rest.New(rest.Options{
			Service: "Confluence",
			BaseURL: baseURL,
			Auth:    authFor(cfg),
			HTTP:    httpCfg,
		}),
		baseURL: baseURL,
		spaces:  cfg.SpacesFilter,
	}
}

// authFor prefers an OAuth bearer token over basic credentials.
func authFor(cfg config.Confluence) rest.AuthFunc {
	switch {
	case cfg.BearerToken != "":
		return rest.BearerAuth(cfg.BearerToken)
	case cfg.Username != "" && cfg.APIToken != "":
		return rest.BasicAuth(cfg.Username, cfg.APIToken)
	default:
		return nil
	}
}

// DefaultSpaces is the configured space filter applied when a search does
// not pass its own.
func (c *Client) DefaultSpaces() string {
	return c.spaces
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c.baseURL == "" {
		return oops.In("confluence").Code("not_configured").Errorf("CONFLUENCE_BASE_URL is not configured")
	}
	_, err := c.rest.Do(ctx, method, path, query, body, out)
	return err
}

func contentPath(pageID string) string {
	return "/rest/api/content/" + url.PathEscape(pageID)
}

func (c *Client) Search(ctx context.Context, cql string, limit int) ([]SearchResult, error) {
	var resp struct {
		Results []searchItem `json:"results"`
	}
	query := url.Values{"cql": {cql}, "limit": {strconv.Itoa(limit)}}
	if err := c.do(ctx, http.MethodGet, "/rest/api/search", query, nil, &resp); err != nil {
		return nil, err
	}

	results := c.simplifyResults(resp.Results)
	if results == nil {
		results = []SearchResult{}
	}
	return results, nil
}

// GetPage loads a page by id, or by exact title inside a space when pageID
// is empty. Label lookup failures are logged and ignored.
func (c *Client) GetPage(ctx context.Context, pageID, title, spaceKey string, includeMetadata, asHTML bool) (*Page, error) {
	expand := expandBody
	if includeMetadata {
		expand = expandMetadata
	}

	var page *content
	var err error
	if pageID != "" {
		page, err = c.pageByID(ctx, pageID, expand)
	} else {
		page, err = c.pageByTitle(ctx, spaceKey, title, expand)
	}
	if err != nil {
		return nil, err
	}

	var labels []string
	if includeMetadata && page.ID != "" {
		if labels, err = c.labels(ctx, page.ID); err != nil {
			slog.Warn("Failed to fetch page labels", slog.String("page_id", page.ID), slog.Any("error", err))
			labels = nil
		}
	}

	return c.simplifyPage(page, labels, asHTML), nil
}

func (c *Client) pageByID(ctx context.Context, pageID, expand string) (*content, error) {
	var page content
	if err := c.do(ctx, http.MethodGet, contentPath(pageID), url.Values{"expand": {expand}}, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) pageByTitle(ctx context.Context, spaceKey, title, expand string) (*content, error) {
	var resp struct {
		Results []content `json:"results"`
	}
	query := url.Values{"spaceKey": {spaceKey}, "title": {title}, "expand": {expand}}
	if err := c.do(ctx, http.MethodGet, "/rest/api/content", query, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, oops.In("confluence").With("space_key", spaceKey, "title", title).Errorf("page not found by title and space_key")
	}
	return &resp.Results[0], nil
}

func (c *Client) labels(ctx context.Context, pageID string) ([]string, error) {
	var resp struct {
		Results []struct {
			Name string `json:"name"`
		} `json:"results"`
	}
	if err := c.do(ctx, http.MethodGet, contentPath(pageID)+"/label", nil, nil, &resp); err != nil {
		return nil, err
	}

	labels := make([]string, 0, len(resp.Results))
	for _, l := range resp.Results {
		if l.Name != "" {
			labels = append(labels, l.Name)
		}
	}
	return labels, nil
}

func storageBody(value, representation string) map[string]any {
	return map[string]any{
		"storage": bodyValue{Value: value, Representation: representation},
	}
}

func ancestors(parentID string) []map[string]string {
	return []map[string]string{{"id": parentID}}
}

func (c *Client) CreatePage(ctx context.Context, req CreatePageRequest) (json.RawMessage, error) {
	payload := map[string]any{
		"type":  "page",
		"title": req.Title,
		"space": space{Key: req.SpaceKey},
		"body":  storageBody(req.Body, req.Representation),
	}
	if req.ParentID != "" {
		payload["ancestors"] = ancestors(req.ParentID)
	}

	var created json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/rest/api/content", nil, payload, &created); err != nil {
		return nil, err
	}
	return created, nil
}

// UpdatePage reads the current version and writes the next one.
func (c *Client) UpdatePage(ctx context.Context, req UpdatePageRequest) (json.RawMessage, error) {
	var current struct {
		Version *struct {
			Number int `json:"number"`
		} `json:"version"`
	}
	if err := c.do(ctx, http.MethodGet, contentPath(req.PageID), url.Values{"expand": {"version,ancestors"}}, nil, &current); err != nil {
		return nil, err
	}

	version := 1
	if current.Version != nil && current.Version.Number > 0 {
		version = current.Version.Number
	}

	versionBody := map[string]any{
		"number":    version + 1,
		"minorEdit": req.MinorEdit,
	}
	if req.VersionComment != "" {
		versionBody["message"] = req.VersionComment
	}

	payload := map[string]any{
		"id":      req.PageID,
		"type":    "page",
		"title":   req.Title,
		"body":    storageBody(req.Body, req.Representation),
		"version": versionBody,
	}
	if req.ParentID != "" {
		payload["ancestors"] = ancestors(req.ParentID)
	}

	var updated json.RawMessage
	if err := c.do(ctx, http.MethodPut, contentPath(req.PageID), nil, payload, &updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (c *Client) DeletePage(ctx context.Context, pageID string) error {
	return c.do(ctx, http.MethodDelete, contentPath(pageID), nil, nil, nil)
}

func (c *Client) AddComment(ctx context.Context, pageID, body, representation string) (json.RawMessage, error) {
	payload := map[string]any{
		"type": "comment",
		"container": map[string]string{
			"type": "page",
			"id":   pageID,
		},
		"body": storageBody(body, representation),
	}

	var created json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/rest/api/content", nil, payload, &created); err != nil {
		return nil, err
	}
	return created, nil
}
