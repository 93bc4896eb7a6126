package gitlab

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/samber/oops"
)

// ListMergeRequestsOptions maps to the GitLab merge request list filters.
// Zero values are not sent.
type ListMergeRequestsOptions struct {
	AssigneeID             string
	AssigneeUsername       string
	AuthorID               string
	AuthorUsername         string
	ReviewerID             string
	ReviewerUsername       string
	CreatedAfter           string
	CreatedBefore          string
	UpdatedAfter           string
	UpdatedBefore          string
	Labels                 []string
	Milestone              string
	Scope                  string
	Search                 string
	State                  string
	WIP                    string
	WithMergeStatusRecheck *bool
	OrderBy                string
	Sort                   string
	View                   string
	MyReactionEmoji        string
	SourceBranch           string
	TargetBranch           string
	Page                   int
	PerPage                int
}

func (o ListMergeRequestsOptions) values() url.Values {
	query := pageQuery(o.Page, o.PerPage)
	set := func(key, value string) {
		if value != "" {
			query.Set(key, value)
		}
	}

	set("assignee_id", o.AssigneeID)
	set("assignee_username", o.AssigneeUsername)
	set("author_id", o.AuthorID)
	set("author_username", o.AuthorUsername)
	set("reviewer_id", o.ReviewerID)
	set("reviewer_username", o.ReviewerUsername)
	set("created_after", o.CreatedAfter)
	set("created_before", o.CreatedBefore)
	set("updated_after", o.UpdatedAfter)
	set("updated_before", o.UpdatedBefore)
	set("labels", strings.Join(o.Labels, ","))
	set("milestone", o.Milestone)
	set("scope", o.Scope)
	set("search", o.Search)
	set("state", o.State)
	set("wip", o.WIP)
	if o.WithMergeStatusRecheck != nil {
		set("with_merge_status_recheck", strconv.FormatBool(*o.WithMergeStatusRecheck))
	}
	set("order_by", o.OrderBy)
	set("sort", o.Sort)
	set("view", o.View)
	set("my_reaction_emoji", o.MyReactionEmoji)
	set("source_branch", o.SourceBranch)
	set("target_branch", o.TargetBranch)

	return query
}

// GetMergeRequest looks a merge request up by iid, or by source branch when
// iid is empty. A branch lookup returns the first match.
func (c *Client) GetMergeRequest(ctx context.Context, projectID, iid, sourceBranch string) (*MergeRequest, error) {
	base := projectPath(projectID) + "/merge_requests"

	switch {
	case iid != "":
		var mr MergeRequest
		if _, err := c.rest.Do(ctx, http.MethodGet, base+"/"+url.PathEscape(iid), nil, nil, &mr); err != nil {
			return nil, err
		}
		return &mr, nil
	case sourceBranch != "":
		var mrs []MergeRequest
		query := url.Values{"source_branch": {sourceBranch}}
		if _, err := c.rest.Do(ctx, http.MethodGet, base, query, nil, &mrs); err != nil {
			return nil, err
		}
		if len(mrs) == 0 {
			return nil, oops.In("gitlab").With("source_branch", sourceBranch).Errorf("no merge request found for branch %s", sourceBranch)
		}
		return &mrs[0], nil
	default:
		return nil, oops.In("gitlab").Errorf("either merge request iid or source branch must be provided")
	}
}

func (c *Client) GetMergeRequestDiffs(ctx context.Context, projectID, iid, sourceBranch, view string) ([]Diff, error) {
	if iid == "" {
		mr, err := c.GetMergeRequest(ctx, projectID, "", sourceBranch)
		if err != nil {
			return nil, err
		}
		iid = strconv.Itoa(mr.IID)
	}

	query := url.Values{}
	if view != "" {
		query.Set("view", view)
	}

	var resp struct {
		Changes []Diff `json:"changes"`
	}
	path := fmt.Sprintf("%s/merge_requests/%s/changes", projectPath(projectID), url.PathEscape(iid))
	if _, err := c.rest.Do(ctx, http.MethodGet, path, query, nil, &resp); err != nil {
		return nil, err
	}

	if resp.Changes == nil {
		resp.Changes = []Diff{}
	}
	return resp.Changes, nil
}

func (c *Client) ListMergeRequestDiscussions(ctx context.Context, projectID, iid string, page, perPage int) (*Page[Discussion], error) {
	path := fmt.Sprintf("%s/merge_requests/%s/discussions", projectPath(projectID), url.PathEscape(iid))
	return list[Discussion](ctx, c, path, pageQuery(page, perPage))
}

func (c *Client) CreateMergeRequest(ctx context.Context, projectID string, req CreateMergeRequestRequest) (*MergeRequest, error) {
	var mr MergeRequest
	if _, err := c.rest.Do(ctx, http.MethodPost, projectPath(projectID)+"/merge_requests", nil, req, &mr); err != nil {
		return nil, err
	}
	return &mr, nil
}

func (c *Client) ListMergeRequests(ctx context.Context, projectID string, opts ListMergeRequestsOptions) (*Page[MergeRequest], error) {
	return list[MergeRequest](ctx, c, projectPath(projectID)+"/merge_requests", opts.values())
}
