package server

import (
	"context"
	"devmcp/app/client/confluence"
	"devmcp/app/client/database"
	"devmcp/app/client/figma"
	"devmcp/app/client/gitlab"
	"devmcp/app/client/mattermost"
	"devmcp/app/config"
	"devmcp/app/service/memory"
	"devmcp/app/tools"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/samber/do"
	"github.com/samber/oops"
)

// Version is announced to MCP clients; overridden at build time with -ldflags.
var Version = "0.1.0"

const shutdownTimeout = 10 * time.Second

var _ do.Shutdownable = (*Service)(nil)

type Service struct {
	cfg *config.Config
	mcp *mcpserver.MCPServer
	app *fiber.App
}

type toolGroup struct {
	name  string
	tools func() []mcpserver.ServerTool
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	mcpServer := mcpserver.NewMCPServer(
		cfg.Server.Name,
		Version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
		mcpserver.WithToolHandlerMiddleware(tools.LoggingMiddleware),
	)

	registered := toolset(cfg, groups(di, cfg))
	mcpServer.AddTools(registered...)
	slog.Info("Tools registered", slog.Int("count", len(registered)))

	return &Service{
		cfg: cfg,
		mcp: mcpServer,
	}, nil
}

// Provide registers the clients behind every tool group.
func Provide(di *do.Injector) {
	do.Provide(di, gitlab.New)
	do.Provide(di, confluence.New)
	do.Provide(di, figma.New)
	do.Provide(di, mattermost.New)
	do.Provide(di, database.New)
	do.Provide(di, memory.New)
}

// groups resolves clients lazily so a disabled group never builds its client.
func groups(di *do.Injector, cfg *config.Config) []toolGroup {
	return []toolGroup{
		{"gitlab", func() []mcpserver.ServerTool {
			return tools.GitLabTools(do.MustInvoke[*gitlab.Client](di), cfg.GitLab.IssueLinkWrite)
		}},
		{"confluence", func() []mcpserver.ServerTool {
			return tools.ConfluenceTools(do.MustInvoke[*confluence.Client](di))
		}},
		{"figma", func() []mcpserver.ServerTool {
			return tools.FigmaTools(do.MustInvoke[*figma.Client](di))
		}},
		{"mattermost", func() []mcpserver.ServerTool {
			return tools.MattermostTools(do.MustInvoke[*mattermost.Client](di))
		}},
		{"database", func() []mcpserver.ServerTool {
			return tools.DatabaseTools(do.MustInvoke[*database.Runner](di))
		}},
		{"memory", func() []mcpserver.ServerTool {
			return tools.MemoryTools(do.MustInvoke[*memory.Store](di))
		}},
	}
}

func toolset(cfg *config.Config, groups []toolGroup) []mcpserver.ServerTool {
	var result []mcpserver.ServerTool
	for _, g := range groups {
		if !cfg.Tools.Enabled(g.name) {
			slog.Info("Tool group disabled", slog.String("group", g.name))
			continue
		}
		result = append(result, g.tools()...)
	}
	return result
}

// Run serves the configured transport until ctx is cancelled or the
// transport fails.
func (s *Service) Run(ctx context.Context) error {
	slog.Info("MCP server started",
		slog.String("name", s.cfg.Server.Name),
		slog.String("version", Version),
		slog.String("transport", s.cfg.Server.Transport),
	)

	switch s.cfg.Server.Transport {
	case "http":
		return s.runHTTP(ctx)
	default:
		return s.runStdio(ctx)
	}
}

func (s *Service) runStdio(ctx context.Context) error {
	err := mcpserver.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
	if err != nil && !errors.Is(err, context.Canceled) {
		return oops.In("server").Errorf("stdio transport failed: %w", err)
	}
	return nil
}

func (s *Service) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               s.cfg.Server.Name,
		DisableStartupMessage: true,
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "version": Version})
	})
	app.All("/mcp", adaptor.HTTPHandler(mcpserver.NewStreamableHTTPServer(s.mcp)))

	return app
}

func (s *Service) runHTTP(ctx context.Context) error {
	s.app = s.newApp()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(s.cfg.Server.Listen)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return oops.In("server").With("listen", s.cfg.Server.Listen).Errorf("http transport failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		return s.Shutdown()
	}
}

func (s *Service) Shutdown() error {
	if s.app == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.app.ShutdownWithContext(ctx); err != nil {
		return oops.In("server").Errorf("failed to shutdown http transport: %w", err)
	}
	return nil
}
