package tools

import (
	"context"
	"devmcp/app/service/memory"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

var relationItems = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"from":         map[string]any{"type": "string", "description": "The name of the entity where the relation starts"},
		"to":           map[string]any{"type": "string", "description": "The name of the entity where the relation ends"},
		"relationType": map[string]any{"type": "string", "description": "The type of the relation"},
	},
	"required":             []string{"from", "to", "relationType"},
	"additionalProperties": false,
}

type memoryTools struct {
	store *memory.Store
}

// MemoryTools exposes the knowledge graph store.
func MemoryTools(store *memory.Store) []server.ServerTool {
	t := &memoryTools{store: store}

	return []server.ServerTool{
		{
			Tool: mcp.NewTool("create_entities",
				mcp.WithDescription("Create multiple new entities in the knowledge graph"),
				mcp.WithArray("entities", mcp.Required(), mcp.Items(map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name":       map[string]any{"type": "string", "description": "The name of the entity"},
						"entityType": map[string]any{"type": "string", "description": "The type of the entity"},
						"observations": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "An array of observation contents associated with the entity",
						},
					},
					"required":             []string{"name", "entityType"},
					"additionalProperties": false,
				})),
			),
			Handler: t.createEntities,
		},
		{
			Tool: mcp.NewTool("create_relations",
				mcp.WithDescription("Create multiple new relations between entities in the knowledge graph. Relations should be in active voice"),
				mcp.WithArray("relations", mcp.Required(), mcp.Items(relationItems)),
			),
			Handler: t.createRelations,
		},
		{
			Tool: mcp.NewTool("add_observations",
				mcp.WithDescription("Add new observations to existing entities in the knowledge graph"),
				mcp.WithArray("observations", mcp.Required(), mcp.Items(map[string]any{
					"type": "object",
					"properties": map[string]any{
						"entityName": map[string]any{"type": "string", "description": "The name of the entity to add the observations to"},
						"contents": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "An array of observation contents to add",
						},
					},
					"required":             []string{"entityName", "contents"},
					"additionalProperties": false,
				})),
			),
			Handler: t.addObservations,
		},
		{
			Tool: mcp.NewTool("delete_entities",
				mcp.WithDescription("Delete multiple entities and their associated relations from the knowledge graph"),
				mcp.WithArray("entityNames", mcp.Required(),
					mcp.Description("An array of entity names to delete"),
					mcp.WithStringItems(),
				),
			),
			Handler: t.deleteEntities,
		},
		{
			Tool: mcp.NewTool("delete_observations",
				mcp.WithDescription("Delete specific observations from entities in the knowledge graph"),
				mcp.WithArray("deletions", mcp.Required(), mcp.Items(map[string]any{
					"type": "object",
					"properties": map[string]any{
						"entityName": map[string]any{"type": "string", "description": "The name of the entity containing the observations"},
						"observations": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "An array of observations to delete",
						},
					},
					"required":             []string{"entityName", "observations"},
					"additionalProperties": false,
				})),
			),
			Handler: t.deleteObservations,
		},
		{
			Tool: mcp.NewTool("delete_relations",
				mcp.WithDescription("Delete multiple relations from the knowledge graph"),
				mcp.WithArray("relations", mcp.Required(), mcp.Items(relationItems)),
			),
			Handler: t.deleteRelations,
		},
		{
			Tool: mcp.NewTool("read_graph",
				mcp.WithDescription("Read the entire knowledge graph"),
			),
			Handler: t.readGraph,
		},
		{
			Tool: mcp.NewTool("search_nodes",
				mcp.WithDescription("Search for nodes in the knowledge graph based on a query"),
				mcp.WithString("query", mcp.Required(),
					mcp.Description("The search query to match against entity names, types, and observation content"),
				),
			),
			Handler: t.searchNodes,
		},
		{
			Tool: mcp.NewTool("open_nodes",
				mcp.WithDescription("Open specific nodes in the knowledge graph by their names"),
				mcp.WithArray("names", mcp.Required(),
					mcp.Description("An array of entity names to retrieve"),
					mcp.WithStringItems(),
				),
			),
			Handler: t.openNodes,
		},
	}
}

func parseRelations(items []map[string]any) []memory.Relation {
	relations := make([]memory.Relation, 0, len(items))
	for _, obj := range items {
		from, ok1 := field(obj, "from")
		to, ok2 := field(obj, "to")
		relationType, ok3 := field(obj, "relationType")
		if ok1 && ok2 && ok3 {
			relations = append(relations, memory.Relation{From: from, To: to, RelationType: relationType})
		}
	}
	return relations
}

func (t *memoryTools) createEntities(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, ok := objectsArg(req, "entities")
	if !ok {
		return mcp.NewToolResultError("Missing 'entities'"), nil
	}

	entities := make([]memory.Entity, 0, len(items))
	for _, obj := range items {
		name, ok1 := field(obj, "name")
		entityType, ok2 := field(obj, "entityType")
		if !ok1 || !ok2 {
			continue
		}
		// a missing observations array means none, the same as on load
		observations := []string{}
		if _, present := obj["observations"]; present {
			var ok bool
			if observations, ok = stringsField(obj, "observations"); !ok {
				continue
			}
		}
		entities = append(entities, memory.Entity{Name: name, EntityType: entityType, Observations: observations})
	}

	created, err := t.store.CreateEntities(entities)
	if err != nil {
		return errorResult("Error", err)
	}
	return jsonResult(created)
}

func (t *memoryTools) createRelations(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, ok := objectsArg(req, "relations")
	if !ok {
		return mcp.NewToolResultError("Missing 'relations'"), nil
	}

	created, err := t.store.CreateRelations(parseRelations(items))
	if err != nil {
		return errorResult("Error", err)
	}
	return jsonResult(created)
}

func (t *memoryTools) addObservations(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, ok := objectsArg(req, "observations")
	if !ok {
		return mcp.NewToolResultError("Missing 'observations'"), nil
	}

	requests := make([]memory.ObservationRequest, 0, len(items))
	for _, obj := range items {
		name, ok1 := field(obj, "entityName")
		contents, ok2 := stringsField(obj, "contents")
		if ok1 && ok2 {
			requests = append(requests, memory.ObservationRequest{EntityName: name, Contents: contents})
		}
	}

	results, err := t.store.AddObservations(requests)
	if err != nil {
		return errorResult("Error", err)
	}
	return jsonResult(results)
}

func (t *memoryTools) deleteEntities(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, ok := req.GetArguments()["entityNames"].([]any); !ok {
		return mcp.NewToolResultError("Missing 'entityNames'"), nil
	}

	if err := t.store.DeleteEntities(stringsArg(req, "entityNames")); err != nil {
		return errorResult("Error", err)
	}
	return mcp.NewToolResultText("Entities deleted successfully"), nil
}

func (t *memoryTools) deleteObservations(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, ok := objectsArg(req, "deletions")
	if !ok {
		return mcp.NewToolResultError("Missing 'deletions'"), nil
	}

	deletions := make([]memory.DeleteObservationsRequest, 0, len(items))
	for _, obj := range items {
		name, ok1 := field(obj, "entityName")
		observations, ok2 := stringsField(obj, "observations")
		if ok1 && ok2 {
			deletions = append(deletions, memory.DeleteObservationsRequest{EntityName: name, Observations: observations})
		}
	}

	if err := t.store.DeleteObservations(deletions); err != nil {
		return errorResult("Error", err)
	}
	return mcp.NewToolResultText("Observations deleted successfully"), nil
}

func (t *memoryTools) deleteRelations(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, ok := objectsArg(req, "relations")
	if !ok {
		return mcp.NewToolResultError("Missing 'relations'"), nil
	}

	if err := t.store.DeleteRelations(parseRelations(items)); err != nil {
		return errorResult("Error", err)
	}
	return mcp.NewToolResultText("Relations deleted successfully"), nil
}

func (t *memoryTools) readGraph(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	graph, err := t.store.ReadGraph()
	if err != nil {
		return errorResult("Error", err)
	}
	return jsonResult(graph)
}

func (t *memoryTools) searchNodes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, _ := req.GetArguments()["query"].(string)
	if strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("Missing 'query'"), nil
	}

	graph, err := t.store.SearchNodes(query)
	if err != nil {
		return errorResult("Error", err)
	}
	return jsonResult(graph)
}

func (t *memoryTools) openNodes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, ok := req.GetArguments()["names"].([]any); !ok {
		return mcp.NewToolResultError("Missing 'names'"), nil
	}

	graph, err := t.store.OpenNodes(stringsArg(req, "names"))
	if err != nil {
		return errorResult("Error", err)
	}
	return jsonResult(graph)
}
