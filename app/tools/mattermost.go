package tools

import (
	"context"
	"devmcp/app/client/mattermost"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const mattermostPerPage = 20

func pagingArgs() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithNumber("page", mcp.Description("Page number, starting at 0 (default: 0)")),
		mcp.WithNumber("per_page", mcp.Description("Number of items per page (default: 20)")),
	}
}

func searchTool(name, description string) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithString("team_id", mcp.Description("Team to search; omit to search every team you belong to")),
		mcp.WithString("terms", mcp.Required(), mcp.Description("Search terms")),
		mcp.WithBoolean("is_or_search", mcp.Description("Match any of the terms instead of all of them (default: false)")),
		mcp.WithBoolean("include_deleted_channels", mcp.Description("Include deleted channels in the results (default: false)")),
		mcp.WithNumber("time_zone_offset", mcp.Description("Offset from UTC of the user timezone, in seconds")),
	}
	return mcp.NewTool(name, append(opts, pagingArgs()...)...)
}

type mattermostTools struct {
	client *mattermost.Client
}

func MattermostTools(client *mattermost.Client) []server.ServerTool {
	t := &mattermostTools{client: client}

	return []server.ServerTool{
		{
			Tool:    searchTool("mattermost_search_posts", "Search Mattermost posts matching the terms"),
			Handler: t.searchPosts,
		},
		{
			Tool:    searchTool("mattermost_search_files", "Search Mattermost files matching the terms"),
			Handler: t.searchFiles,
		},
		{
			Tool: mcp.NewTool("mattermost_get_teams",
				append([]mcp.ToolOption{mcp.WithDescription("List the teams the current user belongs to")}, pagingArgs()...)...,
			),
			Handler: t.getTeams,
		},
		{
			Tool: mcp.NewTool("mattermost_get_channels",
				append([]mcp.ToolOption{
					mcp.WithDescription("List public channels of a team"),
					mcp.WithString("team_id", mcp.Required(), mcp.Description("Team ID")),
				}, pagingArgs()...)...,
			),
			Handler: t.getChannels,
		},
		{
			Tool: mcp.NewTool("mattermost_get_users",
				append([]mcp.ToolOption{mcp.WithDescription("List users")}, pagingArgs()...)...,
			),
			Handler: t.getUsers,
		},
	}
}

func searchRequest(req mcp.CallToolRequest) (mattermost.SearchRequest, bool) {
	terms := stringArg(req, "terms")
	return mattermost.SearchRequest{
		TeamID:                 stringArg(req, "team_id"),
		Terms:                  terms,
		IsOrSearch:             boolArg(req, "is_or_search", false),
		Page:                   intArg(req, "page", 0),
		PerPage:                intArg(req, "per_page", mattermostPerPage),
		IncludeDeletedChannels: boolArg(req, "include_deleted_channels", false),
		TimeZoneOffset:         optInt(req, "time_zone_offset"),
	}, terms != ""
}

func (t *mattermostTools) searchPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	search, ok := searchRequest(req)
	if !ok {
		return missingArgs("terms")
	}

	resp, err := t.client.SearchPosts(ctx, search)
	if err != nil {
		return errorResult("Failed to search posts", err)
	}
	return jsonResult(resp)
}

func (t *mattermostTools) searchFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	search, ok := searchRequest(req)
	if !ok {
		return missingArgs("terms")
	}

	resp, err := t.client.SearchFiles(ctx, search)
	if err != nil {
		return errorResult("Failed to search files", err)
	}
	return jsonResult(resp)
}

func (t *mattermostTools) getTeams(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	teams, err := t.client.GetTeams(ctx, intArg(req, "page", 0), intArg(req, "per_page", mattermostPerPage))
	if err != nil {
		return errorResult("Failed to get teams", err)
	}
	return jsonResult(teams)
}

func (t *mattermostTools) getChannels(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	teamID := stringArg(req, "team_id")
	if teamID == "" {
		return missingArgs("team_id")
	}

	channels, err := t.client.GetChannels(ctx, teamID, intArg(req, "page", 0), intArg(req, "per_page", mattermostPerPage))
	if err != nil {
		return errorResult("Failed to get channels", err)
	}
	return jsonResult(channels)
}

func (t *mattermostTools) getUsers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	users, err := t.client.GetUsers(ctx, intArg(req, "page", 0), intArg(req, "per_page", mattermostPerPage))
	if err != nil {
		return errorResult("Failed to get users", err)
	}
	return jsonResult(users)
}
