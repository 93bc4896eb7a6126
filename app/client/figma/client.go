package figma

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"devmcp/app/client/rest"
	"devmcp/app/config"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/samber/do"
	"github.com/samber/oops"
)

type Client struct {
	rest *rest.Client
}

func New(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)
	return NewClient(cfg.Figma, cfg.HTTP)
}

func NewClient(cfg config.Figma, httpCfg config.HTTP) (*Client, error) {
	transport, err := newTransport(cfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		rest: rest.New(rest.Options{
			Service:   "Figma",
			BaseURL:   cfg.APIURL,
			Auth:      authFor(cfg),
			HTTP:      httpCfg,
			Transport: transport,
		}),
	}, nil
}

// authFor prefers an OAuth token over a personal access token.
func authFor(cfg config.Figma) rest.AuthFunc {
	if cfg.OAuthToken != "" {
		return rest.BearerAuth(cfg.OAuthToken)
	}
	return rest.HeaderAuth("X-Figma-Token", cfg.APIKey)
}

// newTransport trusts the configured CA bundle when the file exists. Without
// one, certificate verification is skipped unless cfg.Insecure is false.
func newTransport(cfg config.Figma) (*http.Transport, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	if cfg.CACertPEM != "" {
		data, err := os.ReadFile(cfg.CACertPEM)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			slog.Warn("Figma CA bundle not found", slog.String("path", cfg.CACertPEM))
		case err != nil:
			return nil, oops.In("figma").With("path", cfg.CACertPEM).Errorf("failed to read CA bundle: %w", err)
		default:
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(data) {
				return nil, oops.In("figma").With("path", cfg.CACertPEM).Errorf("no certificates found in CA bundle")
			}
			transport.TLSClientConfig.RootCAs = pool
			return transport, nil
		}
	}

	if cfg.Insecure {
		transport.TLSClientConfig.InsecureSkipVerify = true
	}

	return transport, nil
}

func fileQuery(depth int) url.Values {
	query := url.Values{}
	if depth > 0 {
		query.Set("depth", strconv.Itoa(depth))
	}
	return query
}

func filePath(fileKey string) string {
	return "/files/" + url.PathEscape(fileKey)
}

// GetFile loads the whole document tree. depth <= 0 means unlimited.
func (c *Client) GetFile(ctx context.Context, fileKey string, depth int) (*FileData, error) {
	var data FileData
	if _, err := c.rest.Do(ctx, http.MethodGet, filePath(fileKey), fileQuery(depth), nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) GetNodes(ctx context.Context, fileKey string, nodeIDs []string, depth int) (*FileData, error) {
	query := fileQuery(depth)
	query.Set("ids", strings.Join(nodeIDs, ","))

	var data FileData
	if _, err := c.rest.Do(ctx, http.MethodGet, filePath(fileKey)+"/nodes", query, nil, &data); err != nil {
		return nil, err
	}
	data.order = nodeIDs
	return &data, nil
}

// GetImageFills maps image fill refs to their download URLs.
func (c *Client) GetImageFills(ctx context.Context, fileKey string) (map[string]string, error) {
	var resp struct {
		Meta struct {
			Images map[string]string `json:"images"`
		} `json:"meta"`
	}
	if _, err := c.rest.Do(ctx, http.MethodGet, filePath(fileKey)+"/images", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Meta.Images, nil
}

// GetImages renders nodes and maps node ids to download URLs. Nodes Figma
// could not render are missing from the result.
func (c *Client) GetImages(ctx context.Context, fileKey string, nodeIDs []string, format string, extra url.Values) (map[string]string, error) {
	query := url.Values{
		"ids":    {strings.Join(nodeIDs, ",")},
		"format": {format},
	}
	for k, v := range extra {
		query[k] = v
	}

	var resp struct {
		Images map[string]*string `json:"images"`
	}
	if _, err := c.rest.Do(ctx, http.MethodGet, "/images/"+url.PathEscape(fileKey), query, nil, &resp); err != nil {
		return nil, err
	}

	images := make(map[string]string, len(resp.Images))
	for id, u := range resp.Images {
		if u != nil && *u != "" {
			images[id] = *u
		}
	}
	return images, nil
}

func (c *Client) Download(ctx context.Context, rawURL string) ([]byte, error) {
	return c.rest.Download(ctx, rawURL)
}
