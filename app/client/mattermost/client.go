package mattermost

import (
	"context"
	"devmcp/app/client/rest"
	"devmcp/app/config"
	"net/http"
	"net/url"
	"strconv"

	"github.com/samber/do"
)

const defaultPerPage = 20

type Client struct {
	rest *rest.Client
}

func New(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)
	return NewClient(cfg.Mattermost, cfg.HTTP), nil
}

func NewClient(cfg config.Mattermost, httpCfg config.HTTP) *Client {
	return &Client{
		rest: rest.New(rest.Options{
			Service: "Mattermost",
			BaseURL: cfg.APIURL,
			Auth:    rest.BearerAuth(cfg.Token),
			HTTP:    httpCfg,
		}),
	}
}

func searchPath(teamID, kind string) string {
	if teamID == "" {
		return "/" + kind + "/search"
	}
	return "/teams/" + url.PathEscape(teamID) + "/" + kind + "/search"
}

func pageQuery(page, perPage int) url.Values {
	if page < 0 {
		page = 0
	}
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	return url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
	}
}

// SearchPosts searches one team, or every team the user belongs to when
// req.TeamID is empty.
func (c *Client) SearchPosts(ctx context.Context, req SearchRequest) (*PostSearchResponse, error) {
	var resp PostSearchResponse
	if _, err := c.rest.Do(ctx, http.MethodPost, searchPath(req.TeamID, "posts"), nil, req, &resp); err != nil {
		return nil, err
	}
	if resp.Posts == nil {
		resp.Posts = map[string]Post{}
	}
	if resp.Order == nil {
		resp.Order = []string{}
	}
	return &resp, nil
}

func (c *Client) SearchFiles(ctx context.Context, req SearchRequest) (*FileSearchResponse, error) {
	var resp FileSearchResponse
	if _, err := c.rest.Do(ctx, http.MethodPost, searchPath(req.TeamID, "files"), nil, req, &resp); err != nil {
		return nil, err
	}
	if resp.FileInfos == nil {
		resp.FileInfos = map[string]FileInfo{}
	}
	if resp.Order == nil {
		resp.Order = []string{}
	}
	return &resp, nil
}

func list[T any](ctx context.Context, c *Client, path string, page, perPage int) ([]T, error) {
	var items []T
	if _, err := c.rest.Do(ctx, http.MethodGet, path, pageQuery(page, perPage), nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// GetTeams lists the teams the token owner is a member of.
func (c *Client) GetTeams(ctx context.Context, page, perPage int) ([]Team, error) {
	return list[Team](ctx, c, "/users/me/teams", page, perPage)
}

func (c *Client) GetChannels(ctx context.Context, teamID string, page, perPage int) ([]Channel, error) {
	return list[Channel](ctx, c, "/teams/"+url.PathEscape(teamID)+"/channels", page, perPage)
}

func (c *Client) GetUsers(ctx context.Context, page, perPage int) ([]User, error) {
	return list[User](ctx, c, "/users", page, perPage)
}
