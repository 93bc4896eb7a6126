package tools

import (
	"context"
	"devmcp/app/client/database"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type databaseTools struct {
	runner *database.Runner
}

func DatabaseTools(runner *database.Runner) []server.ServerTool {
	t := &databaseTools{runner: runner}

	return []server.ServerTool{
		{
			Tool: mcp.NewTool("oracle_execute_select",
				mcp.WithDescription("Execute a read-only SELECT query and return the rows as a table"),
				mcp.WithString("query", mcp.Required(), mcp.Description("SELECT statement to run; anything else is rejected")),
			),
			Handler: t.executeSelect,
		},
		{
			Tool: mcp.NewTool("oracle_test_connection",
				mcp.WithDescription("Check that the configured database is reachable"),
			),
			Handler: t.testConnection,
		},
	}
}

func (t *databaseTools) executeSelect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := stringArg(req, "query")
	if query == "" {
		return missingArgs("query")
	}

	result, err := t.runner.ExecuteSelect(ctx, query)
	switch {
	case errors.Is(err, database.ErrNotSelect), errors.Is(err, database.ErrNotConfigured):
		return errorResult("Error", err)
	case err != nil:
		return errorResult("Query execution failed", err)
	}
	return mcp.NewToolResultText(database.Summary(result)), nil
}

func (t *databaseTools) testConnection(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !t.runner.TestConnection(ctx) {
		return mcp.NewToolResultError("Database connection failed."), nil
	}
	return mcp.NewToolResultText("Database connection successful."), nil
}
