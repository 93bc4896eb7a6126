package figma

import (
	"encoding/json"
	"sort"
)

// Simplify reduces a file or nodes response to the node skeleton.
// fromNode only changes the fallback name.
func Simplify(data *FileData, fromNode bool) *Design {
	meta := Metadata{Name: "Unknown"}
	if fromNode {
		meta.Name = "Node Data"
	}
	if data.Name != nil {
		meta.Name = *data.Name
	}
	if data.LastModified != nil {
		meta.LastModified = *data.LastModified
	}
	if data.Version != nil {
		meta.Version = *data.Version
	}

	return &Design{
		Metadata: meta,
		Nodes:    extractNodes(data),
		GlobalVars: GlobalVars{
			Styles:     map[string]any{},
			Components: map[string]any{},
		},
	}
}

func extractNodes(data *FileData) []Node {
	if data.Document != nil {
		return []Node{walk(*data.Document)}
	}

	nodes := []Node{}
	for _, id := range nodeKeys(data) {
		raw := data.Nodes[id]
		if len(raw) == 0 || string(raw) == "null" {
			continue
		}

		var wrapper struct {
			Document *rawNode `json:"document"`
		}
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			continue
		}
		if wrapper.Document == nil {
			var node rawNode
			if err := json.Unmarshal(raw, &node); err != nil {
				continue
			}
			wrapper.Document = &node
		}
		nodes = append(nodes, walk(*wrapper.Document))
	}
	return nodes
}

// nodeKeys lists requested ids first, then whatever else came back sorted.
func nodeKeys(data *FileData) []string {
	seen := make(map[string]bool, len(data.Nodes))
	keys := make([]string, 0, len(data.Nodes))
	for _, id := range data.order {
		if _, ok := data.Nodes[id]; ok && !seen[id] {
			seen[id] = true
			keys = append(keys, id)
		}
	}

	var rest []string
	for id := range data.Nodes {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)

	return append(keys, rest...)
}

func walk(node rawNode) Node {
	result := Node{
		ID:      node.ID,
		Name:    node.Name,
		Type:    node.Type,
		Visible: node.Visible == nil || *node.Visible,
	}
	for _, child := range node.Children {
		result.Children = append(result.Children, walk(child))
	}
	return result
}
