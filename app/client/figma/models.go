package figma

import "encoding/json"

// FileData is the part of a file or nodes response the tools read.
type FileData struct {
	Name         *string                    `json:"name"`
	LastModified *string                    `json:"lastModified"`
	Version      *string                    `json:"version"`
	Document     *rawNode                   `json:"document"`
	Nodes        map[string]json.RawMessage `json:"nodes"`

	// requested node ids, used to keep the output order stable
	order []string
}

type rawNode struct {
	ID       *string   `json:"id"`
	Name     *string   `json:"name"`
	Type     *string   `json:"type"`
	Visible  *bool     `json:"visible"`
	Children []rawNode `json:"children"`
}

type Node struct {
	ID       *string `json:"id"`
	Name     *string `json:"name"`
	Type     *string `json:"type"`
	Visible  bool    `json:"visible"`
	Children []Node  `json:"children,omitempty"`
}

type Metadata struct {
	Name         string `json:"name"`
	LastModified string `json:"lastModified"`
	Version      string `json:"version"`
}

type GlobalVars struct {
	Styles     map[string]any `json:"styles"`
	Components map[string]any `json:"components"`
}

// Design is the simplified view returned by get_figma_data.
type Design struct {
	Metadata   Metadata   `json:"metadata"`
	Nodes      []Node     `json:"nodes"`
	GlobalVars GlobalVars `json:"globalVars"`
}

// DownloadItem describes one image to save. Fills are resolved by ImageRef,
// renders by NodeID; an item with both is saved twice.
type DownloadItem struct {
	NodeID         string `json:"nodeId"`
	ImageRef       string `json:"imageRef"`
	FileName       string `json:"fileName"`
	FilenameSuffix string `json:"filenameSuffix"`
}
