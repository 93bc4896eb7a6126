package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// LoggingMiddleware logs every tool call with its duration. Error results are
// logged at warn level, handler errors at error level.
func LoggingMiddleware(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		logger := slog.With(
			slog.String("tool", req.Params.Name),
			slog.String("call_id", uuid.NewString()),
		)

		result, err := next(ctx, req)
		elapsed := slog.Duration("elapsed", time.Since(start))

		switch {
		case err != nil:
			logger.Error("Tool call failed", elapsed, slog.Any("error", err))
		case result != nil && result.IsError:
			logger.Warn("Tool call returned error", elapsed, slog.String("result", firstText(result)))
		default:
			logger.Debug("Tool call done", elapsed)
		}

		return result, err
	}
}

func firstText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		if text, ok := c.(mcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}
