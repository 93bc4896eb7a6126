package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither the -config flag nor DEVMCP_CONFIG is set.
const DefaultPath = "config.yaml"

type Config struct {
	Log        Log        `yaml:"log"`
	Server     Server     `yaml:"server"`
	HTTP       HTTP       `yaml:"http"`
	GitLab     GitLab     `yaml:"gitlab"`
	Confluence Confluence `yaml:"confluence"`
	Figma      Figma      `yaml:"figma"`
	Mattermost Mattermost `yaml:"mattermost"`
	Database   Database   `yaml:"database"`
	Memory     Memory     `yaml:"memory"`
	Tools      Tools      `yaml:"tools"`
}

type Log struct {
	// Minimum console level
	Level string `yaml:"level" example:"info" validate:"omitempty,oneof=debug info warn error"`
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

type Server struct {
	// Server name announced to MCP clients
	Name string `yaml:"name" example:"gabia-dev-mcp-server" validate:"required"`
	// Transport: stdio or http
	Transport string `yaml:"transport" example:"stdio" validate:"oneof=stdio http"`
	// Listen address for the http transport
	Listen string `yaml:"listen" example:":8080" validate:"required_if=Transport http"`
}

// HTTP holds the outbound client settings shared by every REST integration.
type HTTP struct {
	Timeout time.Duration `yaml:"timeout" example:"30s" validate:"gt=0"`
	// Requests per second allowed towards one upstream
	RateLimit float64 `yaml:"rate_limit" example:"10" validate:"gt=0"`
	Burst     int     `yaml:"burst" example:"20" validate:"gt=0"`
	// Consecutive failures before the circuit opens
	BreakerFailures uint32        `yaml:"breaker_failures" example:"5" validate:"gt=0"`
	BreakerTimeout  time.Duration `yaml:"breaker_timeout" example:"30s" validate:"gt=0"`
}

type GitLab struct {
	// GitLab REST API v4 root
	APIURL string `yaml:"api_url" example:"https://gitlab.example.com/api/v4" validate:"required,url"`
	// Personal access token
	Token string `yaml:"token" example:"glpat-abc123"`
	// Register get/create/delete issue link tools
	IssueLinkWrite bool `yaml:"issue_link_write" example:"false"`
}

type Confluence struct {
	BaseURL string `yaml:"base_url" example:"https://wiki.example.com" validate:"omitempty,url"`
	// OAuth bearer token, preferred over basic auth
	BearerToken string `yaml:"bearer_token"`
	Username    string `yaml:"username" example:"dev@example.com"`
	APIToken    string `yaml:"api_token"`
	// Comma separated space keys applied to every search
	SpacesFilter string `yaml:"spaces_filter" example:"DEV,OPS"`
}

type Figma struct {
	APIURL     string `yaml:"api_url" example:"https://api.figma.com/v1" validate:"required,url"`
	APIKey     string `yaml:"api_key"`
	OAuthToken string `yaml:"oauth_token"`
	// PEM bundle of a corporate CA
	CACertPEM string `yaml:"ca_cert_pem" example:"/etc/ssl/corp.pem"`
	// Skip TLS verification when no CA bundle is configured
	Insecure bool `yaml:"insecure" example:"true"`
}

type Mattermost struct {
	APIURL string `yaml:"api_url" example:"https://chat.example.com/api/v4" validate:"required,url"`
	Token  string `yaml:"token"`
}

type Database struct {
	// oracle, postgres or sqlite
	Driver string `yaml:"driver" example:"oracle" validate:"oneof=oracle postgres sqlite"`
	// Full DSN; when empty it is built from the fields below (oracle only)
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host" example:"db.example.com"`
	Port     int    `yaml:"port" example:"1521" validate:"gte=0,lte=65535"`
	SID      string `yaml:"sid" example:"DEVGABIA"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type Memory struct {
	// NDJSON graph file; relative paths resolve against the executable directory
	FilePath string `yaml:"file_path" example:"memory.json"`
}

type Tools struct {
	// Tool groups to skip: gitlab, confluence, figma, mattermost, database, memory
	Disabled []string `yaml:"disabled" validate:"dive,oneof=gitlab confluence figma mattermost database memory"`
}

// Enabled reports whether the named tool group should be registered.
func (t Tools) Enabled(group string) bool {
	for _, d := range t.Disabled {
		if d == group {
			return false
		}
	}
	return true
}

func Default() Config {
	return Config{
		Log: Log{Level: "info"},
		Server: Server{
			Name:      "gabia-dev-mcp-server",
			Transport: "stdio",
			Listen:    ":8080",
		},
		HTTP: HTTP{
			Timeout:         30 * time.Second,
			RateLimit:       10,
			Burst:           20,
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		GitLab:     GitLab{APIURL: "https://gitlab.gabia.com/api/v4"},
		Figma:      Figma{APIURL: "https://api.figma.com/v1", Insecure: true},
		Mattermost: Mattermost{APIURL: "https://mattermost.gabia.com/api/v4"},
		Database: Database{
			Driver: "oracle",
			Port:   1521,
			SID:    "DEVGABIA",
		},
		Memory: Memory{FilePath: "memory.json"},
	}
}

// Load reads the YAML file at path (a missing file is allowed), applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	result := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, oops.Errorf("failed to read config file: %w", err)
	default:
		if err = yaml.Unmarshal(data, &result); err != nil {
			return nil, oops.Errorf("failed to parse YAML config: %w", err)
		}
	}

	if err = applyEnv(&result, os.LookupEnv); err != nil {
		return nil, err
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err = validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}

type lookupFunc func(key string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(dst *string, keys ...string) {
		for _, key := range keys {
			if v, ok := lookup(key); ok && v != "" {
				*dst = v
				return
			}
		}
	}

	str(&cfg.GitLab.APIURL, "GITLAB_API_URL")
	str(&cfg.GitLab.Token, "GITLAB_TOKEN")

	str(&cfg.Confluence.BaseURL, "CONFLUENCE_BASE_URL")
	str(&cfg.Confluence.BearerToken, "ATLASSIAN_OAUTH_ACCESS_TOKEN")
	str(&cfg.Confluence.Username, "CONFLUENCE_USERNAME", "ATLASSIAN_EMAIL")
	str(&cfg.Confluence.APIToken, "CONFLUENCE_API_TOKEN", "ATLASSIAN_API_TOKEN")
	str(&cfg.Confluence.SpacesFilter, "CONFLUENCE_SPACES_FILTER")
	cfg.Confluence.BaseURL = strings.TrimRight(cfg.Confluence.BaseURL, "/")

	str(&cfg.Figma.APIKey, "FIGMA_API_KEY")
	str(&cfg.Figma.OAuthToken, "FIGMA_OAUTH_TOKEN")
	str(&cfg.Figma.CACertPEM, "FIGMA_CA_CERT_PEM")
	if v, ok := lookup("FIGMA_SSL_INSECURE"); ok && v != "" {
		cfg.Figma.Insecure = strings.EqualFold(v, "true")
	}

	str(&cfg.Mattermost.APIURL, "MATTERMOST_API_URL")
	str(&cfg.Mattermost.Token, "MATTERMOST_TOKEN")

	str(&cfg.Database.Host, "ORACLE_HOST")
	str(&cfg.Database.SID, "ORACLE_SID")
	str(&cfg.Database.Username, "ORACLE_USERNAME")
	str(&cfg.Database.Password, "ORACLE_PASSWORD")
	if v, ok := lookup("ORACLE_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return oops.With("value", v).Errorf("invalid ORACLE_PORT: %w", err)
		}
		cfg.Database.Port = port
	}

	str(&cfg.Memory.FilePath, "MEMORY_FILE_PATH")

	return nil
}
