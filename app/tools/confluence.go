package tools

import (
	"context"
	"devmcp/app/client/confluence"
	"devmcp/app/service/markup"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	searchLimitDefault = 10
	searchLimitMax     = 50
)

func formatArg() mcp.ToolOption {
	return mcp.WithString("format",
		mcp.Description("Content format: markdown is converted to storage, storage and wiki are sent as is (default: markdown)"),
		mcp.Enum(markup.FormatMarkdown, markup.FormatStorage, markup.FormatWiki),
	)
}

type confluenceTools struct {
	client *confluence.Client
}

func ConfluenceTools(client *confluence.Client) []server.ServerTool {
	t := &confluenceTools{client: client}

	return []server.ServerTool{
		{
			Tool: mcp.NewTool("confluence_search",
				mcp.WithDescription("Search Confluence content using simple terms or CQL"),
				mcp.WithString("query", mcp.Required(), mcp.Description(`Search query: plain text (e.g. "project documentation") or CQL (e.g. 'type=page AND space=DEV')`)),
				mcp.WithNumber("limit", mcp.Description("Maximum number of results (1-50, default: 10)")),
				mcp.WithString("spaces_filter", mcp.Description("Comma-separated space keys to restrict the search to; an empty string disables the configured filter")),
			),
			Handler: t.search,
		},
		{
			Tool: mcp.NewTool("confluence_get_page",
				mcp.WithDescription("Get content of a Confluence page by ID, or by title and space key"),
				mcp.WithString("page_id", mcp.Description("Confluence page ID")),
				mcp.WithString("title", mcp.Description("Exact page title, used together with space_key")),
				mcp.WithString("space_key", mcp.Description("Space key, used together with title")),
				mcp.WithBoolean("include_metadata", mcp.Description("Include version, labels and history (default: true)")),
				mcp.WithBoolean("convert_to_markdown", mcp.Description("Convert the body to Markdown; false returns raw HTML (default: true)")),
			),
			Handler: t.getPage,
		},
		{
			Tool: mcp.NewTool("confluence_create_page",
				mcp.WithDescription("Create a new Confluence page"),
				mcp.WithString("space", mcp.Required(), mcp.Description("Key of the space to create the page in")),
				mcp.WithString("title", mcp.Required(), mcp.Description("Page title")),
				mcp.WithString("content", mcp.Required(), mcp.Description("Page content")),
				mcp.WithString("parent_id", mcp.Description("Parent page ID")),
				formatArg(),
			),
			Handler: t.createPage,
		},
		{
			Tool: mcp.NewTool("confluence_update_page",
				mcp.WithDescription("Update an existing Confluence page"),
				mcp.WithString("page_id", mcp.Required(), mcp.Description("ID of the page to update")),
				mcp.WithString("title", mcp.Required(), mcp.Description("New page title")),
				mcp.WithString("content", mcp.Required(), mcp.Description("New page content")),
				mcp.WithBoolean("minor_edit", mcp.Description("Mark the change as a minor edit (default: false)")),
				mcp.WithString("version_comment", mcp.Description("Comment describing the change")),
				mcp.WithString("parent_id", mcp.Description("New parent page ID")),
				formatArg(),
			),
			Handler: t.updatePage,
		},
		{
			Tool: mcp.NewTool("confluence_delete_page",
				mcp.WithDescription("Delete a Confluence page"),
				mcp.WithString("page_id", mcp.Required(), mcp.Description("ID of the page to delete")),
			),
			Handler: t.deletePage,
		},
		{
			Tool: mcp.NewTool("confluence_add_comment",
				mcp.WithDescription("Add a comment to a Confluence page"),
				mcp.WithString("page_id", mcp.Required(), mcp.Description("ID of the page to comment on")),
				mcp.WithString("content", mcp.Required(), mcp.Description("Comment content")),
				formatArg(),
			),
			Handler: t.addComment,
		},
	}
}

func clampLimit(n int) int {
	switch {
	case n < 1:
		return 1
	case n > searchLimitMax:
		return searchLimitMax
	default:
		return n
	}
}

func (t *confluenceTools) search(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := stringArg(req, "query")
	if query == "" {
		return missingArgs("query")
	}

	spaces := t.client.DefaultSpaces()
	if s := optString(req, "spaces_filter"); s != nil {
		spaces = *s
	}

	cql := confluence.ApplySpacesFilter(confluence.WrapQuery(query), spaces)
	results, err := t.client.Search(ctx, cql, clampLimit(intArg(req, "limit", searchLimitDefault)))
	if err != nil {
		return errorResult("Failed to search Confluence", err)
	}
	return jsonResult(results)
}

func (t *confluenceTools) getPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID := stringArg(req, "page_id")
	title := stringArg(req, "title")
	spaceKey := stringArg(req, "space_key")
	if pageID == "" && (title == "" || spaceKey == "") {
		return mcp.NewToolResultError("either page_id or title and space_key are required"), nil
	}

	page, err := t.client.GetPage(ctx, pageID, title, spaceKey,
		boolArg(req, "include_metadata", true),
		!boolArg(req, "convert_to_markdown", true),
	)
	if err != nil {
		return errorResult("Failed to get page", err)
	}
	return jsonResult(page)
}

func (t *confluenceTools) createPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := requireArgs(req, "space", "title")
	content := textArg(req, "content")
	if !ok || strings.TrimSpace(content) == "" {
		return missingArgs("space", "title", "content")
	}

	body, representation := markup.NormalizeBody(content, stringArg(req, "format"))
	created, err := t.client.CreatePage(ctx, confluence.CreatePageRequest{
		SpaceKey:       args[0],
		Title:          args[1],
		Body:           body,
		Representation: representation,
		ParentID:       stringArg(req, "parent_id"),
	})
	if err != nil {
		return errorResult("Failed to create page", err)
	}
	return mcp.NewToolResultText(string(created)), nil
}

func (t *confluenceTools) updatePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := requireArgs(req, "page_id", "title")
	content := textArg(req, "content")
	if !ok || strings.TrimSpace(content) == "" {
		return missingArgs("page_id", "title", "content")
	}

	body, representation := markup.NormalizeBody(content, stringArg(req, "format"))
	updated, err := t.client.UpdatePage(ctx, confluence.UpdatePageRequest{
		PageID:         args[0],
		Title:          args[1],
		Body:           body,
		Representation: representation,
		MinorEdit:      boolArg(req, "minor_edit", false),
		VersionComment: stringArg(req, "version_comment"),
		ParentID:       stringArg(req, "parent_id"),
	})
	if err != nil {
		return errorResult("Failed to update page", err)
	}
	return mcp.NewToolResultText(string(updated)), nil
}

func (t *confluenceTools) deletePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID := stringArg(req, "page_id")
	if pageID == "" {
		return missingArgs("page_id")
	}

	if err := t.client.DeletePage(ctx, pageID); err != nil {
		return errorResult("Failed to delete page", err)
	}
	return jsonResult(map[string]any{"success": true, "page_id": pageID})
}

func (t *confluenceTools) addComment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID := stringArg(req, "page_id")
	content := textArg(req, "content")
	if pageID == "" || strings.TrimSpace(content) == "" {
		return missingArgs("page_id", "content")
	}

	body, representation := markup.NormalizeBody(content, stringArg(req, "format"))
	created, err := t.client.AddComment(ctx, pageID, body, representation)
	if err != nil {
		return errorResult("Failed to add comment", err)
	}
	return mcp.NewToolResultText(string(created)), nil
}
