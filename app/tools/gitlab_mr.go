package tools

import (
	"context"
	"devmcp/app/client/gitlab"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func projectIDArg() mcp.ToolOption {
	return mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID or URL-encoded path"))
}

type mergeRequestTools struct {
	client *gitlab.Client
}

func mergeRequestToolset(client *gitlab.Client) []server.ServerTool {
	t := &mergeRequestTools{client: client}

	return []server.ServerTool{
		{
			Tool: mcp.NewTool("get_merge_request",
				mcp.WithDescription("Get details of a merge request (either merge_request_id or source_branch must be provided)"),
				projectIDArg(),
				mcp.WithString("merge_request_id", mcp.Description("The IID of a merge request")),
				mcp.WithString("source_branch", mcp.Description("Source branch name")),
			),
			Handler: t.getMergeRequest,
		},
		{
			Tool: mcp.NewTool("get_merge_request_diffs",
				mcp.WithDescription("Get the changes/diffs of a merge request (either merge_request_id or source_branch must be provided)"),
				projectIDArg(),
				mcp.WithString("merge_request_id", mcp.Description("The IID of a merge request")),
				mcp.WithString("source_branch", mcp.Description("Source branch name")),
				mcp.WithString("view", mcp.Description("Diff view type (inline or parallel)"), mcp.Enum("inline", "parallel")),
			),
			Handler: t.getMergeRequestDiffs,
		},
		{
			Tool: mcp.NewTool("mr_discussions",
				mcp.WithDescription("List discussion items for a merge request"),
				projectIDArg(),
				mcp.WithString("merge_request_id", mcp.Required(), mcp.Description("The IID of a merge request")),
				mcp.WithNumber("page", mcp.Description("Page number for pagination (default: 1)")),
				mcp.WithNumber("per_page", mcp.Description("Number of items per page (max: 100, default: 20)")),
			),
			Handler: t.listDiscussions,
		},
		{
			Tool: mcp.NewTool("create_merge_request",
				mcp.WithDescription("Create a new merge request in a GitLab project"),
				projectIDArg(),
				mcp.WithString("title", mcp.Required(), mcp.Description("Merge request title")),
				mcp.WithString("source_branch", mcp.Required(), mcp.Description("Branch containing changes")),
				mcp.WithString("target_branch", mcp.Required(), mcp.Description("Branch to merge into")),
				mcp.WithString("description", mcp.Description("Merge request description")),
				mcp.WithNumber("target_project_id", mcp.Description("Numeric ID of the target project")),
				mcp.WithArray("assignee_ids", mcp.Description("The ID of the users to assign the MR to"), mcp.WithNumberItems()),
				mcp.WithArray("reviewer_ids", mcp.Description("The ID of the users to assign as reviewers of the MR"), mcp.WithNumberItems()),
				mcp.WithArray("labels", mcp.Description("Labels for the MR"), mcp.WithStringItems()),
				mcp.WithBoolean("draft", mcp.Description("Create as draft merge request")),
				mcp.WithBoolean("allow_collaboration", mcp.Description("Allow commits from upstream members")),
				mcp.WithBoolean("remove_source_branch", mcp.Description("Flag indicating if a merge request should remove the source branch when merging")),
				mcp.WithBoolean("squash", mcp.Description("If true, squash all commits into a single commit on merge")),
			),
			Handler: t.createMergeRequest,
		},
		{
			Tool: mcp.NewTool("list_merge_requests",
				mcp.WithDescription("List merge requests in a GitLab project with filtering options"),
				projectIDArg(),
				mcp.WithString("assignee_id", mcp.Description("Return issues assigned to the given user ID. user id or none or any")),
				mcp.WithString("assignee_username", mcp.Description("Returns merge requests assigned to the given username")),
				mcp.WithString("author_id", mcp.Description("Returns merge requests created by the given user ID")),
				mcp.WithString("author_username", mcp.Description("Returns merge requests created by the given username")),
				mcp.WithString("reviewer_id", mcp.Description("Returns merge requests which have the user as a reviewer. user id or none or any")),
				mcp.WithString("reviewer_username", mcp.Description("Returns merge requests which have the user as a reviewer")),
				mcp.WithString("created_after", mcp.Description("Return merge requests created after the given time")),
				mcp.WithString("created_before", mcp.Description("Return merge requests created before the given time")),
				mcp.WithString("updated_after", mcp.Description("Return merge requests updated after the given time")),
				mcp.WithString("updated_before", mcp.Description("Return merge requests updated before the given time")),
				mcp.WithArray("labels", mcp.Description("Array of label names"), mcp.WithStringItems()),
				mcp.WithString("milestone", mcp.Description("Milestone title")),
				mcp.WithString("scope", mcp.Description("Return merge requests from a specific scope"), mcp.Enum("created_by_me", "assigned_to_me", "all")),
				mcp.WithString("search", mcp.Description("Search for specific terms")),
				mcp.WithString("state", mcp.Description("Return merge requests with the given state"), mcp.Enum("opened", "closed", "locked", "merged", "all")),
				mcp.WithString("wip", mcp.Description("Filter merge requests by their work in progress status"), mcp.Enum("yes", "no")),
				mcp.WithBoolean("with_merge_status_recheck", mcp.Description("Return merge requests that need their merge status rechecked")),
				mcp.WithString("order_by", mcp.Description("Order merge requests by created_at, updated_at, or title"), mcp.Enum("created_at", "updated_at", "title")),
				mcp.WithString("sort", mcp.Description("Sort order (asc or desc)"), mcp.Enum("asc", "desc")),
				mcp.WithString("view", mcp.Description("If simple, returns the iid, URL, title, description, and basic state"), mcp.Enum("simple", "detailed")),
				mcp.WithString("my_reaction_emoji", mcp.Description("Return merge requests reacted by the authenticated user by the given emoji")),
				mcp.WithString("source_branch", mcp.Description("Return merge requests with the given source branch")),
				mcp.WithString("target_branch", mcp.Description("Return merge requests with the given target branch")),
				mcp.WithNumber("page", mcp.Description("Page number for pagination (default: 1)")),
				mcp.WithNumber("per_page", mcp.Description("Number of items per page (max: 100, default: 20)")),
			),
			Handler: t.listMergeRequests,
		},
	}
}

func (t *mergeRequestTools) getMergeRequest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID := stringArg(req, "project_id")
	iid, branch := stringArg(req, "merge_request_id"), stringArg(req, "source_branch")
	if projectID == "" {
		return missingArgs("project_id")
	}
	if iid == "" && branch == "" {
		return mcp.NewToolResultError("either merge_request_id or source_branch is required"), nil
	}

	mr, err := t.client.GetMergeRequest(ctx, projectID, iid, branch)
	if err != nil {
		return errorResult("Failed to get merge request", err)
	}
	return jsonResult(mr)
}

func (t *mergeRequestTools) getMergeRequestDiffs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID := stringArg(req, "project_id")
	iid, branch := stringArg(req, "merge_request_id"), stringArg(req, "source_branch")
	if projectID == "" {
		return missingArgs("project_id")
	}
	if iid == "" && branch == "" {
		return mcp.NewToolResultError("either merge_request_id or source_branch is required"), nil
	}

	diffs, err := t.client.GetMergeRequestDiffs(ctx, projectID, iid, branch, stringArg(req, "view"))
	if err != nil {
		return errorResult("Failed to get merge request diffs", err)
	}
	return jsonResult(diffs)
}

func (t *mergeRequestTools) listDiscussions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := requireArgs(req, "project_id", "merge_request_id")
	if !ok {
		return missingArgs("project_id", "merge_request_id")
	}

	page, err := t.client.ListMergeRequestDiscussions(ctx, args[0], args[1], intArg(req, "page", 0), intArg(req, "per_page", 0))
	if err != nil {
		return errorResult("Failed to list merge request discussions", err)
	}
	return jsonResult(page)
}

func (t *mergeRequestTools) createMergeRequest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := requireArgs(req, "project_id", "title", "source_branch", "target_branch")
	if !ok {
		return missingArgs("project_id", "title", "source_branch", "target_branch")
	}

	mr, err := t.client.CreateMergeRequest(ctx, args[0], gitlab.CreateMergeRequestRequest{
		Title:              args[1],
		Description:        stringArg(req, "description"),
		SourceBranch:       args[2],
		TargetBranch:       args[3],
		TargetProjectID:    optInt(req, "target_project_id"),
		AssigneeIDs:        intsArg(req, "assignee_ids"),
		ReviewerIDs:        intsArg(req, "reviewer_ids"),
		Labels:             stringsArg(req, "labels"),
		Draft:              optBool(req, "draft"),
		AllowCollaboration: optBool(req, "allow_collaboration"),
		RemoveSourceBranch: optBool(req, "remove_source_branch"),
		Squash:             optBool(req, "squash"),
	})
	if err != nil {
		return errorResult("Failed to create merge request", err)
	}
	return jsonResult(mr)
}

func (t *mergeRequestTools) listMergeRequests(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID := stringArg(req, "project_id")
	if projectID == "" {
		return missingArgs("project_id")
	}

	page, err := t.client.ListMergeRequests(ctx, projectID, gitlab.ListMergeRequestsOptions{
		AssigneeID:             stringArg(req, "assignee_id"),
		AssigneeUsername:       stringArg(req, "assignee_username"),
		AuthorID:               stringArg(req, "author_id"),
		AuthorUsername:         stringArg(req, "author_username"),
		ReviewerID:             stringArg(req, "reviewer_id"),
		ReviewerUsername:       stringArg(req, "reviewer_username"),
		CreatedAfter:           stringArg(req, "created_after"),
		CreatedBefore:          stringArg(req, "created_before"),
		UpdatedAfter:           stringArg(req, "updated_after"),
		UpdatedBefore:          stringArg(req, "updated_before"),
		Labels:                 stringsArg(req, "labels"),
		Milestone:              stringArg(req, "milestone"),
		Scope:                  stringArg(req, "scope"),
		Search:                 stringArg(req, "search"),
		State:                  stringArg(req, "state"),
		WIP:                    stringArg(req, "wip"),
		WithMergeStatusRecheck: optBool(req, "with_merge_status_recheck"),
		OrderBy:                stringArg(req, "order_by"),
		Sort:                   stringArg(req, "sort"),
		View:                   stringArg(req, "view"),
		MyReactionEmoji:        stringArg(req, "my_reaction_emoji"),
		SourceBranch:           stringArg(req, "source_branch"),
		TargetBranch:           stringArg(req, "target_branch"),
		Page:                   intArg(req, "page", 0),
		PerPage:                intArg(req, "per_page", 0),
	})
	if err != nil {
		return errorResult("Failed to list merge requests", err)
	}
	return jsonResult(page)
}
