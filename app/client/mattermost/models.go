package mattermost

import "encoding/json"

type SearchRequest struct {
	TeamID                 string `json:"-"`
	Terms                  string `json:"terms"`
	IsOrSearch             bool   `json:"is_or_search"`
	Page                   int    `json:"page"`
	PerPage                int    `json:"per_page"`
	IncludeDeletedChannels bool   `json:"include_deleted_channels"`
	TimeZoneOffset         *int   `json:"time_zone_offset,omitempty"`
}

type PostSearchResponse struct {
	Posts      map[string]Post `json:"posts"`
	Order      []string        `json:"order"`
	NextPostID *string         `json:"next_post_id"`
	PrevPostID *string         `json:"prev_post_id"`
	HasMore    bool            `json:"has_more"`
}

type Post struct {
	ID        string          `json:"id"`
	CreateAt  int64           `json:"create_at"`
	UpdateAt  int64           `json:"update_at"`
	EditAt    int64           `json:"edit_at"`
	DeleteAt  int64           `json:"delete_at"`
	IsPinned  bool            `json:"is_pinned"`
	UserID    string          `json:"user_id"`
	ChannelID string          `json:"channel_id"`
	RootID    string          `json:"root_id"`
	ParentID  string          `json:"parent_id"`
	Message   string          `json:"message"`
	Type      string          `json:"type"`
	Props     json.RawMessage `json:"props,omitempty"`
	Hashtags  string          `json:"hashtags"`
	FileIDs   []string        `json:"file_ids"`
	Metadata  *PostMetadata   `json:"metadata,omitempty"`
}

type PostMetadata struct {
	Files     []FileInfo `json:"files"`
	Reactions []Reaction `json:"reactions"`
	Embeds    []struct {
		Type string          `json:"type"`
		URL  string          `json:"url"`
		Data json.RawMessage `json:"data,omitempty"`
	} `json:"embeds"`
	Emojis []struct {
		Name string `json:"name"`
	} `json:"emojis"`
}

type Reaction struct {
	UserID    string `json:"user_id"`
	PostID    string `json:"post_id"`
	EmojiName string `json:"emoji_name"`
	CreateAt  int64  `json:"create_at"`
}

type FileSearchResponse struct {
	Order          []string            `json:"order"`
	FileInfos      map[string]FileInfo `json:"file_infos"`
	NextFileInfoID *string             `json:"next_file_info_id"`
	PrevFileInfoID *string             `json:"prev_file_info_id"`
	HasMore        bool                `json:"has_more"`
}

type FileInfo struct {
	ID              string `json:"id"`
	UserID          string `json:"user_id"`
	PostID          string `json:"post_id"`
	ChannelID       string `json:"channel_id,omitempty"`
	CreateAt        int64  `json:"create_at"`
	UpdateAt        int64  `json:"update_at"`
	DeleteAt        int64  `json:"delete_at"`
	Name            string `json:"name"`
	Extension       string `json:"extension"`
	Size            int64  `json:"size"`
	MimeType        string `json:"mime_type"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	HasPreviewImage bool   `json:"has_preview_image"`
}

type Team struct {
	ID              string  `json:"id"`
	CreateAt        int64   `json:"create_at"`
	UpdateAt        int64   `json:"update_at"`
	DeleteAt        int64   `json:"delete_at"`
	DisplayName     string  `json:"display_name"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	Email           string  `json:"email"`
	Type            string  `json:"type"`
	CompanyName     string  `json:"company_name"`
	AllowedDomains  string  `json:"allowed_domains"`
	InviteID        string  `json:"invite_id"`
	AllowOpenInvite bool    `json:"allow_open_invite"`
	SchemeID        string  `json:"scheme_id"`
	PolicyID        *string `json:"policy_id"`
}

type Channel struct {
	ID            string  `json:"id"`
	CreateAt      int64   `json:"create_at"`
	UpdateAt      int64   `json:"update_at"`
	DeleteAt      int64   `json:"delete_at"`
	TeamID        string  `json:"team_id"`
	Type          string  `json:"type"`
	DisplayName   string  `json:"display_name"`
	Name          string  `json:"name"`
	Header        string  `json:"header"`
	Purpose       string  `json:"purpose"`
	LastPostAt    int64   `json:"last_post_at"`
	TotalMsgCount int64   `json:"total_msg_count"`
	CreatorID     string  `json:"creator_id"`
	SchemeID      *string `json:"scheme_id"`
	Shared        bool    `json:"shared"`
}

type User struct {
	ID             string `json:"id"`
	CreateAt       int64  `json:"create_at"`
	UpdateAt       int64  `json:"update_at"`
	DeleteAt       int64  `json:"delete_at"`
	Username       string `json:"username"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Nickname       string `json:"nickname"`
	Email          string `json:"email"`
	Position       string `json:"position,omitempty"`
	Roles          string `json:"roles"`
	Locale         string `json:"locale"`
	LastActivityAt int64  `json:"last_activity_at"`
	IsBot          bool   `json:"is_bot"`
	Timezone       *struct {
		UseAutomaticTimezone bool   `json:"useAutomaticTimezone"`
		ManualTimezone       string `json:"manualTimezone"`
		AutomaticTimezone    string `json:"automaticTimezone"`
	} `json:"timezone,omitempty"`
}
