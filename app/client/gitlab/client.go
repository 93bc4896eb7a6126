package gitlab

import (
	"context"
	"devmcp/app/client/rest"
	"devmcp/app/config"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/samber/do"
)

type Client struct {
	rest *rest.Client
}

func New(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)
	return NewClient(cfg.GitLab, cfg.HTTP), nil
}

func NewClient(cfg config.GitLab, httpCfg config.HTTP) *Client {
	return &Client{
		rest: rest.New(rest.Options{
			Service: "GitLab",
			BaseURL: cfg.APIURL,
			Auth:    rest.BearerAuth(cfg.Token),
			HTTP:    httpCfg,
		}),
	}
}

// projectPath accepts both "group/project" and "group%2Fproject" and returns
// the path-escaped form used in URLs.
func projectPath(projectID string) string {
	decoded, err := url.PathUnescape(projectID)
	if err != nil {
		decoded = projectID
	}
	return "/projects/" + url.PathEscape(decoded)
}

func pageQuery(page, perPage int) url.Values {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		query.Set("per_page", strconv.Itoa(perPage))
	}
	return query
}

func list[T any](ctx context.Context, c *Client, path string, query url.Values) (*Page[T], error) {
	items := make([]T, 0)
	header, err := c.rest.Do(ctx, http.MethodGet, path, query, nil, &items)
	if err != nil {
		return nil, err
	}

	return &Page[T]{
		Items:      items,
		Pagination: rest.ParsePagination(header),
	}, nil
}

// Filters are list parameters. Slice values are sent as repeated key[]
// parameters, everything else with its default formatting.
type Filters map[string]any

func (f Filters) values() url.Values {
	query := url.Values{}

	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := f[k].(type) {
		case nil:
		case []string:
			for _, item := range v {
				query.Add(k+"[]", item)
			}
		case []int:
			for _, item := range v {
				query.Add(k+"[]", strconv.Itoa(item))
			}
		case string:
			if v != "" {
				query.Set(k, v)
			}
		default:
			query.Set(k, fmt.Sprint(v))
		}
	}

	return query
}
