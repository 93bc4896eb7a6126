package gitlab

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

func issuePath(projectID, iid string) string {
	return fmt.Sprintf("%s/issues/%s", projectPath(projectID), url.PathEscape(iid))
}

func (c *Client) CreateIssue(ctx context.Context, projectID string, req CreateIssueRequest) (*Issue, error) {
	var issue Issue
	if _, err := c.rest.Do(ctx, http.MethodPost, projectPath(projectID)+"/issues", nil, req, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// ListIssues lists project issues, or issues across all visible projects when
// projectID is empty.
func (c *Client) ListIssues(ctx context.Context, projectID string, filters Filters) (*Page[Issue], error) {
	path := "/issues"
	if projectID != "" {
		path = projectPath(projectID) + "/issues"
	}
	return list[Issue](ctx, c, path, filters.values())
}

func (c *Client) GetIssue(ctx context.Context, projectID, iid string) (*Issue, error) {
	var issue Issue
	if _, err := c.rest.Do(ctx, http.MethodGet, issuePath(projectID, iid), nil, nil, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

func (c *Client) UpdateIssue(ctx context.Context, projectID, iid string, req UpdateIssueRequest) (*Issue, error) {
	var issue Issue
	if _, err := c.rest.Do(ctx, http.MethodPut, issuePath(projectID, iid), nil, req, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

func (c *Client) DeleteIssue(ctx context.Context, projectID, iid string) error {
	_, err := c.rest.Do(ctx, http.MethodDelete, issuePath(projectID, iid), nil, nil, nil)
	return err
}

func (c *Client) ListIssueDiscussions(ctx context.Context, projectID, iid string, page, perPage int) (*Page[Discussion], error) {
	return list[Discussion](ctx, c, issuePath(projectID, iid)+"/discussions", pageQuery(page, perPage))
}

func (c *Client) CreateIssueNote(ctx context.Context, projectID, iid, discussionID, body, createdAt string) (*Note, error) {
	payload := map[string]string{"body": body}
	if createdAt != "" {
		payload["created_at"] = createdAt
	}

	var note Note
	path := fmt.Sprintf("%s/discussions/%s/notes", issuePath(projectID, iid), url.PathEscape(discussionID))
	if _, err := c.rest.Do(ctx, http.MethodPost, path, nil, payload, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) UpdateIssueNote(ctx context.Context, projectID, iid, discussionID, noteID, body string) (*Note, error) {
	var note Note
	path := fmt.Sprintf("%s/discussions/%s/notes/%s", issuePath(projectID, iid), url.PathEscape(discussionID), url.PathEscape(noteID))
	if _, err := c.rest.Do(ctx, http.MethodPut, path, nil, map[string]string{"body": body}, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) ListIssueLinks(ctx context.Context, projectID, iid string) ([]LinkedIssue, error) {
	links := make([]LinkedIssue, 0)
	if _, err := c.rest.Do(ctx, http.MethodGet, issuePath(projectID, iid)+"/links", nil, nil, &links); err != nil {
		return nil, err
	}
	return links, nil
}

func (c *Client) GetIssueLink(ctx context.Context, projectID, iid, linkID string) (*IssueLink, error) {
	var link IssueLink
	if _, err := c.rest.Do(ctx, http.MethodGet, issuePath(projectID, iid)+"/links/"+url.PathEscape(linkID), nil, nil, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (c *Client) CreateIssueLink(ctx context.Context, projectID, iid, targetProjectID, targetIssueIID, linkType string) (*IssueLink, error) {
	payload := map[string]string{
		"target_project_id": targetProjectID,
		"target_issue_iid":  targetIssueIID,
	}
	if linkType != "" {
		payload["link_type"] = linkType
	}

	var link IssueLink
	if _, err := c.rest.Do(ctx, http.MethodPost, issuePath(projectID, iid)+"/links", nil, payload, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (c *Client) DeleteIssueLink(ctx context.Context, projectID, iid, linkID string) error {
	_, err := c.rest.Do(ctx, http.MethodDelete, issuePath(projectID, iid)+"/links/"+url.PathEscape(linkID), nil, nil, nil)
	return err
}
