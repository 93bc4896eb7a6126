package tools

import (
	"context"
	"devmcp/app/client/gitlab"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

var issueTypes = []string{"issue", "incident", "test_case", "task"}

func issueIIDArg() mcp.ToolOption {
	return mcp.WithString("issue_iid", mcp.Required(), mcp.Description("The internal ID of a project issue"))
}

// issueListFilters are forwarded to the list endpoint as is.
var issueListFilters = []string{
	"assignee_id", "author_id", "author_username", "created_after", "created_before",
	"due_date", "milestone", "issue_type", "iteration_id", "scope", "search", "state",
	"updated_after", "updated_before", "my_reaction_emoji", "order_by", "sort",
}

type issueTools struct {
	client *gitlab.Client
}

// GitLabTools exposes merge request and issue tools. Issue link mutations are
// only registered with linkWrite.
func GitLabTools(client *gitlab.Client, linkWrite bool) []server.ServerTool {
	return append(mergeRequestToolset(client), issueToolset(client, linkWrite)...)
}

func issueToolset(client *gitlab.Client, linkWrite bool) []server.ServerTool {
	t := &issueTools{client: client}

	tools := []server.ServerTool{
		{
			Tool: mcp.NewTool("create_issue",
				mcp.WithDescription("Create a new issue in a GitLab project"),
				projectIDArg(),
				mcp.WithString("title", mcp.Required(), mcp.Description("Issue title")),
				mcp.WithString("description", mcp.Description("Issue description")),
				mcp.WithArray("assignee_ids", mcp.Description("Array of user IDs to assign"), mcp.WithNumberItems()),
				mcp.WithString("milestone_id", mcp.Description("Milestone ID to assign")),
				mcp.WithArray("labels", mcp.Description("Array of label names"), mcp.WithStringItems()),
				mcp.WithString("issue_type", mcp.Description("The type of issue"), mcp.Enum(issueTypes...)),
			),
			Handler: t.createIssue,
		},
		{
			Tool: mcp.NewTool("list_issues",
				mcp.WithDescription("List issues in a project or across all accessible projects"),
				mcp.WithString("project_id", mcp.Description("Project ID or URL-encoded path; omit to search all projects")),
				mcp.WithString("assignee_id", mcp.Description("Return issues assigned to the given user ID")),
				mcp.WithArray("assignee_username", mcp.Description("Return issues assigned to the given usernames"), mcp.WithStringItems()),
				mcp.WithString("author_id", mcp.Description("Return issues created by the given user ID")),
				mcp.WithString("author_username", mcp.Description("Return issues created by the given username")),
				mcp.WithBoolean("confidential", mcp.Description("Filter confidential or public issues")),
				mcp.WithString("created_after", mcp.Description("Return issues created after the given time")),
				mcp.WithString("created_before", mcp.Description("Return issues created before the given time")),
				mcp.WithString("due_date", mcp.Description("Return issues that have the due date")),
				mcp.WithArray("labels", mcp.Description("Array of label names"), mcp.WithStringItems()),
				mcp.WithString("milestone", mcp.Description("Milestone title")),
				mcp.WithString("issue_type", mcp.Description("Filter to a given type of issue"), mcp.Enum(issueTypes...)),
				mcp.WithString("iteration_id", mcp.Description("Return issues assigned to the given iteration ID")),
				mcp.WithString("scope", mcp.Description("Return issues from a specific scope"), mcp.Enum("created_by_me", "assigned_to_me", "all")),
				mcp.WithString("search", mcp.Description("Search for specific terms")),
				mcp.WithString("state", mcp.Description("Return issues with a specific state"), mcp.Enum("opened", "closed", "all")),
				mcp.WithString("updated_after", mcp.Description("Return issues updated after the given time")),
				mcp.WithString("updated_before", mcp.Description("Return issues updated before the given time")),
				mcp.WithNumber("weight", mcp.Description("Return issues with the specified weight")),
				mcp.WithString("my_reaction_emoji", mcp.Description("Return issues reacted by the authenticated user by the given emoji")),
				mcp.WithString("order_by", mcp.Description("Return issues ordered by the given field"),
					mcp.Enum("created_at", "updated_at", "priority", "due_date", "relative_position", "label_priority", "milestone_due", "popularity", "weight")),
				mcp.WithString("sort", mcp.Description("Return issues sorted in ascending or descending order"), mcp.Enum("asc", "desc")),
				mcp.WithBoolean("with_labels_details", mcp.Description("Return more details for each label")),
				mcp.WithNumber("page", mcp.Description("Page number for pagination (default: 1)")),
				mcp.WithNumber("per_page", mcp.Description("Number of items per page (max: 100, default: 20)")),
			),
			Handler: t.listIssues,
		},
		{
			Tool: mcp.NewTool("my_issues",
				mcp.WithDescription("List issues assigned to the authenticated user (defaults to open issues)"),
				mcp.WithString("project_id", mcp.Description("Project ID or URL-encoded path; omit to search all projects")),
				mcp.WithString("state", mcp.Description("Return issues with a specific state"), mcp.Enum("opened", "closed", "all")),
				mcp.WithArray("labels", mcp.Description("Array of label names"), mcp.WithStringItems()),
				mcp.WithString("milestone", mcp.Description("Milestone title")),
				mcp.WithString("search", mcp.Description("Search for specific terms")),
				mcp.WithString("created_after", mcp.Description("Return issues created after the given time")),
				mcp.WithString("created_before", mcp.Description("Return issues created before the given time")),
				mcp.WithString("updated_after", mcp.Description("Return issues updated after the given time")),
				mcp.WithString("updated_before", mcp.Description("Return issues updated before the given time")),
				mcp.WithNumber("page", mcp.Description("Page number for pagination (default: 1)")),
				mcp.WithNumber("per_page", mcp.Description("Number of items per page (max: 100, default: 20)")),
			),
			Handler: t.myIssues,
		},
		{
			Tool: mcp.NewTool("get_issue",
				mcp.WithDescription("Get details of a specific issue in a GitLab project"),
				projectIDArg(),
				issueIIDArg(),
			),
			Handler: t.getIssue,
		},
		{
			Tool: mcp.NewTool("update_issue",
				mcp.WithDescription("Update an issue in a GitLab project"),
				projectIDArg(),
				issueIIDArg(),
				mcp.WithString("title", mcp.Description("The title of the issue")),
				mcp.WithString("description", mcp.Description("The description of the issue")),
				mcp.WithArray("assignee_ids", mcp.Description("Array of user IDs to assign"), mcp.WithNumberItems()),
				mcp.WithBoolean("confidential", mcp.Description("Set the issue to be confidential")),
				mcp.WithBoolean("discussion_locked", mcp.Description("Flag to lock discussions")),
				mcp.WithString("due_date", mcp.Description("Date the issue is due (YYYY-MM-DD)")),
				mcp.WithArray("labels", mcp.Description("Array of label names"), mcp.WithStringItems()),
				mcp.WithString("milestone_id", mcp.Description("Milestone ID to assign")),
				mcp.WithString("state_event", mcp.Description("Update the issue state"), mcp.Enum("close", "reopen")),
				mcp.WithNumber("weight", mcp.Description("Weight of the issue (0-9)")),
				mcp.WithString("issue_type", mcp.Description("The type of issue"), mcp.Enum(issueTypes...)),
			),
			Handler: t.updateIssue,
		},
		{
			Tool: mcp.NewTool("delete_issue",
				mcp.WithDescription("Delete an issue from a GitLab project"),
				projectIDArg(),
				issueIIDArg(),
			),
			Handler: t.deleteIssue,
		},
		{
			Tool: mcp.NewTool("list_issue_discussions",
				mcp.WithDescription("List discussions for an issue in a GitLab project"),
				projectIDArg(),
				issueIIDArg(),
				mcp.WithNumber("page", mcp.Description("Page number for pagination (default: 1)")),
				mcp.WithNumber("per_page", mcp.Description("Number of items per page (max: 100, default: 20)")),
			),
			Handler: t.listDiscussions,
		},
		{
			Tool: mcp.NewTool("create_issue_note",
				mcp.WithDescription("Add a new note to an existing issue thread"),
				projectIDArg(),
				issueIIDArg(),
				mcp.WithString("discussion_id", mcp.Required(), mcp.Description("The ID of a thread")),
				mcp.WithString("body", mcp.Required(), mcp.Description("The content of the note or reply")),
				mcp.WithString("created_at", mcp.Description("Date the note was created at (ISO 8601 format)")),
			),
			Handler: t.createNote,
		},
		{
			Tool: mcp.NewTool("update_issue_note",
				mcp.WithDescription("Modify an existing issue thread note"),
				projectIDArg(),
				issueIIDArg(),
				mcp.WithString("discussion_id", mcp.Required(), mcp.Description("The ID of a thread")),
				mcp.WithString("note_id", mcp.Required(), mcp.Description("The ID of a thread note")),
				mcp.WithString("body", mcp.Required(), mcp.Description("The content of the note or reply")),
			),
			Handler: t.updateNote,
		},
		{
			Tool: mcp.NewTool("list_issue_links",
				mcp.WithDescription("List all issue links for a specific issue"),
				projectIDArg(),
				issueIIDArg(),
			),
			Handler: t.listLinks,
		},
	}

	if !linkWrite {
		return tools
	}

	return append(tools,
		server.ServerTool{
			Tool: mcp.NewTool("get_issue_link",
				mcp.WithDescription("Get a specific issue link"),
				projectIDArg(),
				issueIIDArg(),
				mcp.WithString("issue_link_id", mcp.Required(), mcp.Description("ID of an issue relationship")),
			),
			Handler: t.getLink,
		},
		server.ServerTool{
			Tool: mcp.NewTool("create_issue_link",
				mcp.WithDescription("Create an issue link between two issues"),
				projectIDArg(),
				issueIIDArg(),
				mcp.WithString("target_project_id", mcp.Required(), mcp.Description("The ID or URL-encoded path of a target project")),
				mcp.WithString("target_issue_iid", mcp.Required(), mcp.Description("The internal ID of a target project's issue")),
				mcp.WithString("link_type", mcp.Description("The type of the relation, defaults to relates_to"), mcp.Enum("relates_to", "blocks", "is_blocked_by")),
			),
			Handler: t.createLink,
		},
		server.ServerTool{
			Tool: mcp.NewTool("delete_issue_link",
				mcp.WithDescription("Delete an issue link"),
				projectIDArg(),
				issueIIDArg(),
				mcp.WithString("issue_link_id", mcp.Required(), mcp.Description("The ID of an issue relationship")),
			),
			Handler: t.deleteLink,
		},
	)
}

func (t *issueTools) createIssue(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := requireArgs(req, "project_id", "title")
	if !ok {
		return missingArgs("project_id", "title")
	}

	issue, err := t.client.CreateIssue(ctx, args[0], gitlab.CreateIssueRequest{
		Title:       args[1],
		Description: stringArg(req, "description"),
		AssigneeIDs: intsArg(req, "assignee_ids"),
		MilestoneID: stringArg(req, "milestone_id"),
		Labels:      stringsArg(req, "labels"),
		IssueType:   stringArg(req, "issue_type"),
	})
	if err != nil {
		return errorResult("Failed to create issue", err)
	}
	return jsonResult(issue)
}

func (t *issueTools) listIssues(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filters := gitlab.Filters{}
	for _, key := range issueListFilters {
		filters[key] = stringArg(req, key)
	}
	filters["assignee_username"] = stringsArg(req, "assignee_username")
	filters["labels"] = stringsArg(req, "labels")
	for _, key := range []string{"confidential", "with_labels_details"} {
		if b := optBool(req, key); b != nil {
			filters[key] = *b
		}
	}
	for _, key := range []string{"weight", "page", "per_page"} {
		if n := optInt(req, key); n != nil {
			filters[key] = *n
		}
	}

	page, err := t.client.ListIssues(ctx, stringArg(req, "project_id"), filters)
	if err != nil {
		return errorResult("Failed to list issues", err)
	}
	return jsonResult(page)
}

func (t *issueTools) myIssues(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filters := gitlab.Filters{"scope": "assigned_to_me"}
	for _, key := range []string{"state", "milestone", "search", "created_after", "created_before", "updated_after", "updated_before"} {
		filters[key] = stringArg(req, key)
	}
	filters["labels"] = stringsArg(req, "labels")
	for _, key := range []string{"page", "per_page"} {
		if n := optInt(req, key); n != nil {
			filters[key] = *n
		}
	}

	page, err := t.client.ListIssues(ctx, stringArg(req, "project_id"), filters)
	if err != nil {
		return errorResult("Failed to list my issues", err)
	}
	return jsonResult(page)
}

func (t *issueTools) getIssue(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := requireArgs(req, "project_id", "issue_iid")
	if !ok {
		return missingArgs("project_id", "issue_iid")
	}

	issue, err := t.client.GetIssue(ctx, args[0], args[1])
	if err != nil {
		return errorResult("Failed to get issue", err)
	}
	return jsonResult(issue)
}

func (t *issueTools) updateIssue(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := requireArgs(req, "project_id", "issue_iid")
	if !ok {
		return missingArgs("project_id", "issue_iid")
	}

	issue, err := t.client.UpdateIssue(ctx, args[0], args[1], gitlab.UpdateIssueRequest{
		Title:            optString(req, "title"),
		Description:      optString(req, "description"),
		AssigneeIDs:      intsArg(req, "assignee_ids"),
		Confidential:     optBool(req, "confidential"),
		DiscussionLocked: optBool(req, "discussion_locked"),
		DueDate:          optString(req, "due_date"),
		Labels:           stringsArg(req, "labels"),
		MilestoneID:      optString(req, "milestone_id"),
		StateEvent:       optString(req, "state_event"),
		Weight:           optInt(req, "weight"),
		IssueType:        optString(req, "issue_type"),
	})
	if err != nil {
		return errorResult("Failed to update issue", err)
	}
	return jsonResult(issue)
}

func (t *issueTools) deleteIssue(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := requireArgs(req, "project_id", "issue_iid")
	if !ok {
		return missingArgs("project_id", "issue_iid")
	}

	if err := t.client.DeleteIssue(ctx, args[0], args[1]); err != nil {
		return errorResult("Failed to delete issue", err)
	}
	return jsonResult(map[string]string{"message": "Issue deleted successfully"})
}

func (t *issueTools) listDiscussions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := requireArgs(req, "project_id", "issue_iid")
	if !ok {
		return missingArgs("project_id", "issue_iid")
	}

	page, err := t.client.ListIssueDiscussions(ctx, args[0], args[1], intArg(req, "page", 0), intArg(req, "per_page", 0))
	if err != nil {
		return errorResult("Failed to list issue discussions", err)
	}
	return jsonResult(page)
}

func (t *issueTools) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := requireArgs(req, "project_id", "issue_iid", "discussion_id", "body")
	if !ok {
		return missingArgs("project_id", "issue_iid", "discussion_id", "body")
	}

	note, err := t.client.CreateIssueNote(ctx, args[0], args[1], args[2], args[3], stringArg(req, "created_at"))
	if err != nil {
		return errorResult("Failed to create issue note", err)
	}
	return jsonResult(note)
}

func (t *issueTools) updateNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := requireArgs(req, "project_id", "issue_iid", "discussion_id", "note_id", "body")
	if !ok {
		return missingArgs("project_id", "issue_iid", "discussion_id", "note_id", "body")
	}

	note, err := t.client.UpdateIssueNote(ctx, args[0], args[1], args[2], args[3], args[4])
	if err != nil {
		return errorResult("Failed to update issue note", err)
	}
	return jsonResult(note)
}

func (t *issueTools) listLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := requireArgs(req, "project_id", "issue_iid")
	if !ok {
		return missingArgs("project_id", "issue_iid")
	}

	links, err := t.client.ListIssueLinks(ctx, args[0], args[1])
	if err != nil {
		return errorResult("Failed to list issue links", err)
	}
	return jsonResult(links)
}

func (t *issueTools) getLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := requireArgs(req, "project_id", "issue_iid", "issue_link_id")
	if !ok {
		return missingArgs("project_id", "issue_iid", "issue_link_id")
	}

	link, err := t.client.GetIssueLink(ctx, args[0], args[1], args[2])
	if err != nil {
		return errorResult("Failed to get issue link", err)
	}
	return jsonResult(link)
}

func (t *issueTools) createLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := requireArgs(req, "project_id", "issue_iid", "target_project_id", "target_issue_iid")
	if !ok {
		return missingArgs("project_id", "issue_iid", "target_project_id", "target_issue_iid")
	}

	link, err := t.client.CreateIssueLink(ctx, args[0], args[1], args[2], args[3], stringArg(req, "link_type"))
	if err != nil {
		return errorResult("Failed to create issue link", err)
	}
	return jsonResult(link)
}

func (t *issueTools) deleteLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := requireArgs(req, "project_id", "issue_iid", "issue_link_id")
	if !ok {
		return missingArgs("project_id", "issue_iid", "issue_link_id")
	}

	if err := t.client.DeleteIssueLink(ctx, args[0], args[1], args[2]); err != nil {
		return errorResult("Failed to delete issue link", err)
	}
	return jsonResult(map[string]string{"message": "Issue link deleted successfully"})
}
