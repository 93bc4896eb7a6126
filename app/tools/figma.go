package tools

import (
	"context"
	"devmcp/app/client/figma"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type figmaTools struct {
	client *figma.Client
	// root is the directory download targets must stay inside.
	root func() (string, error)
}

func FigmaTools(client *figma.Client) []server.ServerTool {
	t := &figmaTools{client: client, root: os.Getwd}
	return t.toolset()
}

func (t *figmaTools) toolset() []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool("get_figma_data",
				mcp.WithDescription("Get layout information about a Figma file, or a single node inside it"),
				mcp.WithString("fileKey", mcp.Required(), mcp.Description("The key of the Figma file, found in a URL like figma.com/(file|design)/<fileKey>/...")),
				mcp.WithString("nodeId", mcp.Description("The ID of the node to fetch, found as URL parameter node-id=<nodeId>")),
				mcp.WithNumber("depth", mcp.Description("How many levels deep to traverse the node tree")),
			),
			Handler: t.getData,
		},
		{
			Tool: mcp.NewTool("download_figma_images",
				mcp.WithDescription("Download SVG and PNG images used in a Figma file based on the IDs of image or icon nodes"),
				mcp.WithString("fileKey", mcp.Required(), mcp.Description("The key of the Figma file containing the nodes")),
				mcp.WithArray("nodes", mcp.Required(), mcp.Description("The nodes to fetch as images"), mcp.Items(map[string]any{
					"type": "object",
					"properties": map[string]any{
						"nodeId":         map[string]any{"type": "string", "description": "Node ID like 1234:5678 or I5666:180910;1:10515;1:10336"},
						"imageRef":       map[string]any{"type": "string", "description": "Image fill reference; set it to download a fill instead of rendering the node"},
						"fileName":       map[string]any{"type": "string", "description": "Local file name, the extension picks png or svg rendering"},
						"filenameSuffix": map[string]any{"type": "string", "description": "Suffix appended to the file name before the extension"},
					},
					"required": []string{"fileName"},
				})),
				mcp.WithString("localPath", mcp.Required(), mcp.Description("Directory to store the images in, relative to the working directory")),
				mcp.WithNumber("pngScale", mcp.Description("Export scale for PNG images (default: 2)")),
			),
			Handler: t.downloadImages,
		},
	}
}

func (t *figmaTools) getData(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fileKey := stringArg(req, "fileKey")
	if fileKey == "" {
		return missingArgs("fileKey")
	}
	nodeID := stringArg(req, "nodeId")
	depth := intArg(req, "depth", 0)

	var (
		data *figma.FileData
		err  error
	)
	if nodeID != "" {
		data, err = t.client.GetNodes(ctx, fileKey, []string{nodeID}, depth)
	} else {
		data, err = t.client.GetFile(ctx, fileKey, depth)
	}
	if err != nil {
		return errorResult("Error fetching Figma data", err)
	}

	return jsonResult(figma.Simplify(data, nodeID != ""))
}

func downloadItems(req mcp.CallToolRequest) []figma.DownloadItem {
	objs, _ := objectsArg(req, "nodes")
	items := make([]figma.DownloadItem, 0, len(objs))
	for _, obj := range objs {
		var it figma.DownloadItem
		it.NodeID, _ = field(obj, "nodeId")
		it.ImageRef, _ = field(obj, "imageRef")
		it.FileName, _ = field(obj, "fileName")
		it.FilenameSuffix, _ = field(obj, "filenameSuffix")
		items = append(items, it)
	}
	return items
}

func (t *figmaTools) downloadImages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := requireArgs(req, "fileKey", "localPath")
	if !ok {
		return missingArgs("fileKey", "nodes", "localPath")
	}
	if _, ok := objectsArg(req, "nodes"); !ok {
		return missingArgs("fileKey", "nodes", "localPath")
	}

	root, err := t.root()
	if err != nil {
		return errorResult("Failed to download images", err)
	}
	dir, err := figma.ResolveTarget(root, args[1])
	if err != nil {
		if errors.Is(err, figma.ErrPathTraversal) {
			return mcp.NewToolResultError("Invalid path specified. Directory traversal is not allowed."), nil
		}
		return errorResult("Failed to download images", err)
	}

	saved, err := t.client.DownloadImages(ctx, args[0], dir, downloadItems(req), intArg(req, "pngScale", 2))
	if err != nil {
		return errorResult("Failed to download images", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Downloaded %d images:", len(saved))
	for _, name := range saved {
		sb.WriteString("\n- " + name)
	}
	return mcp.NewToolResultText(sb.String()), nil
}
