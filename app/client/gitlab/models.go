package gitlab

import "devmcp/app/client/rest"

type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	State     string `json:"state"`
	AvatarURL string `json:"avatar_url,omitempty"`
	WebURL    string `json:"web_url"`
}

type DiffRefs struct {
	BaseSHA  string `json:"base_sha"`
	HeadSHA  string `json:"head_sha"`
	StartSHA string `json:"start_sha"`
}

type MergeRequest struct {
	ID                        int       `json:"id"`
	IID                       int       `json:"iid"`
	ProjectID                 int       `json:"project_id"`
	Title                     string    `json:"title"`
	Description               string    `json:"description,omitempty"`
	State                     string    `json:"state"`
	Draft                     bool      `json:"draft"`
	Author                    *User     `json:"author,omitempty"`
	Assignees                 []User    `json:"assignees,omitempty"`
	Reviewers                 []User    `json:"reviewers,omitempty"`
	MergedBy                  *User     `json:"merged_by,omitempty"`
	MergeUser                 *User     `json:"merge_user,omitempty"`
	ClosedBy                  *User     `json:"closed_by,omitempty"`
	SourceBranch              string    `json:"source_branch"`
	TargetBranch              string    `json:"target_branch"`
	DiffRefs                  *DiffRefs `json:"diff_refs,omitempty"`
	WebURL                    string    `json:"web_url"`
	CreatedAt                 string    `json:"created_at"`
	UpdatedAt                 string    `json:"updated_at"`
	MergedAt                  *string   `json:"merged_at,omitempty"`
	ClosedAt                  *string   `json:"closed_at,omitempty"`
	MergeCommitSHA            *string   `json:"merge_commit_sha,omitempty"`
	DetailedMergeStatus       string    `json:"detailed_merge_status,omitempty"`
	MergeStatus               string    `json:"merge_status,omitempty"`
	MergeError                *string   `json:"merge_error,omitempty"`
	BlockingDiscussionsOK     *bool     `json:"blocking_discussions_resolved,omitempty"`
	ShouldRemoveSourceBranch  *bool     `json:"should_remove_source_branch,omitempty"`
	ForceRemoveSourceBranch   *bool     `json:"force_remove_source_branch,omitempty"`
	AllowCollaboration        *bool     `json:"allow_collaboration,omitempty"`
	ChangesCount              string    `json:"changes_count,omitempty"`
	MergeWhenPipelineSucceeds *bool     `json:"merge_when_pipeline_succeeds,omitempty"`
	Squash                    *bool     `json:"squash,omitempty"`
	Labels                    []string  `json:"labels,omitempty"`
}

type Diff struct {
	OldPath     string `json:"old_path"`
	NewPath     string `json:"new_path"`
	AMode       string `json:"a_mode"`
	BMode       string `json:"b_mode"`
	Diff        string `json:"diff"`
	NewFile     bool   `json:"new_file"`
	RenamedFile bool   `json:"renamed_file"`
	DeletedFile bool   `json:"deleted_file"`
}

type DiffPosition struct {
	BaseSHA      string `json:"base_sha"`
	StartSHA     string `json:"start_sha"`
	HeadSHA      string `json:"head_sha"`
	OldPath      string `json:"old_path"`
	NewPath      string `json:"new_path"`
	PositionType string `json:"position_type"`
	OldLine      *int   `json:"old_line,omitempty"`
	NewLine      *int   `json:"new_line,omitempty"`
}

// Note is a single comment inside a discussion, on a merge request or an issue.
type Note struct {
	ID           int           `json:"id"`
	Type         *string       `json:"type,omitempty"`
	Body         string        `json:"body"`
	Author       *User         `json:"author,omitempty"`
	CreatedAt    string        `json:"created_at"`
	UpdatedAt    string        `json:"updated_at"`
	System       bool          `json:"system"`
	NoteableID   int           `json:"noteable_id"`
	NoteableType string        `json:"noteable_type"`
	NoteableIID  *int          `json:"noteable_iid,omitempty"`
	Position     *DiffPosition `json:"position,omitempty"`
	Resolvable   bool          `json:"resolvable"`
	Resolved     *bool         `json:"resolved,omitempty"`
	ResolvedBy   *User         `json:"resolved_by,omitempty"`
	ResolvedAt   *string       `json:"resolved_at,omitempty"`
	Confidential bool          `json:"confidential,omitempty"`
	Internal     bool          `json:"internal,omitempty"`
}

type Discussion struct {
	ID             string `json:"id"`
	IndividualNote bool   `json:"individual_note"`
	Notes          []Note `json:"notes"`
}

type Milestone struct {
	ID    int    `json:"id"`
	IID   int    `json:"iid"`
	Title string `json:"title"`
	State string `json:"state"`
}

type Issue struct {
	ID               int        `json:"id"`
	IID              int        `json:"iid"`
	ProjectID        int        `json:"project_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	State            string     `json:"state"`
	CreatedAt        string     `json:"created_at"`
	UpdatedAt        string     `json:"updated_at"`
	ClosedAt         *string    `json:"closed_at,omitempty"`
	ClosedBy         *User      `json:"closed_by,omitempty"`
	Labels           []string   `json:"labels"`
	Milestone        *Milestone `json:"milestone,omitempty"`
	Assignees        []User     `json:"assignees"`
	Author           *User      `json:"author,omitempty"`
	WebURL           string     `json:"web_url"`
	DueDate          *string    `json:"due_date,omitempty"`
	Confidential     bool       `json:"confidential"`
	DiscussionLocked *bool      `json:"discussion_locked,omitempty"`
	Weight           *int       `json:"weight,omitempty"`
	IssueType        string     `json:"issue_type,omitempty"`
}

// LinkedIssue is an entry of an issue's link list: the linked issue plus the
// link itself.
type LinkedIssue struct {
	Issue
	IssueLinkID int    `json:"issue_link_id"`
	LinkType    string `json:"link_type"`
}

type IssueLink struct {
	SourceIssue Issue  `json:"source_issue"`
	TargetIssue Issue  `json:"target_issue"`
	LinkType    string `json:"link_type"`
}

type Page[T any] struct {
	Items      []T             `json:"items"`
	Pagination rest.Pagination `json:"pagination"`
}

type CreateMergeRequestRequest struct {
	Title              string   `json:"title"`
	Description        string   `json:"description,omitempty"`
	SourceBranch       string   `json:"source_branch"`
	TargetBranch       string   `json:"target_branch"`
	TargetProjectID    *int     `json:"target_project_id,omitempty"`
	AssigneeIDs        []int    `json:"assignee_ids,omitempty"`
	ReviewerIDs        []int    `json:"reviewer_ids,omitempty"`
	Labels             []string `json:"labels,omitempty"`
	Draft              *bool    `json:"draft,omitempty"`
	AllowCollaboration *bool    `json:"allow_collaboration,omitempty"`
	RemoveSourceBranch *bool    `json:"remove_source_branch,omitempty"`
	Squash             *bool    `json:"squash,omitempty"`
}

type CreateIssueRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	AssigneeIDs []int    `json:"assignee_ids,omitempty"`
	MilestoneID string   `json:"milestone_id,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	IssueType   string   `json:"issue_type,omitempty"`
}

type UpdateIssueRequest struct {
	Title            *string  `json:"title,omitempty"`
	Description      *string  `json:"description,omitempty"`
	AssigneeIDs      []int    `json:"assignee_ids,omitempty"`
	Confidential     *bool    `json:"confidential,omitempty"`
	DiscussionLocked *bool    `json:"discussion_locked,omitempty"`
	DueDate          *string  `json:"due_date,omitempty"`
	Labels           []string `json:"labels,omitempty"`
	MilestoneID      *string  `json:"milestone_id,omitempty"`
	StateEvent       *string  `json:"state_event,omitempty"`
	Weight           *int     `json:"weight,omitempty"`
	IssueType        *string  `json:"issue_type,omitempty"`
}
