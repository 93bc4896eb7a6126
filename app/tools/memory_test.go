package tools

import (
	"devmcp/app/service/memory"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTools_Flow(t *testing.T) {
	store := memory.NewStore(filepath.Join(t.TempDir(), "memory.json"))
	list := MemoryTools(store)

	assert.Equal(t, []string{
		"create_entities", "create_relations", "add_observations",
		"delete_entities", "delete_observations", "delete_relations",
		"read_graph", "search_nodes", "open_nodes",
	}, names(list))

	r := call(t, list, "create_entities", map[string]interface{}{
		"entities": []any{
			map[string]any{"name": "Kim", "entityType": "person", "observations": []any{"likes go"}},
			map[string]any{"name": "devmcp", "entityType": "project", "observations": []any{}},
			map[string]any{"name": "broken"},
		},
	})
	require.False(t, r.IsError, resultText(t, r))

	var created []memory.Entity
	require.NoError(t, json.Unmarshal([]byte(resultText(t, r)), &created))
	require.Len(t, created, 2)
	assert.Equal(t, "Kim", created[0].Name)

	r = call(t, list, "create_relations", map[string]interface{}{
		"relations": []any{map[string]any{"from": "Kim", "to": "devmcp", "relationType": "maintains"}},
	})
	require.False(t, r.IsError, resultText(t, r))

	r = call(t, list, "add_observations", map[string]interface{}{
		"observations": []any{map[string]any{"entityName": "Kim", "contents": []any{"likes go", "writes tests"}}},
	})
	require.False(t, r.IsError, resultText(t, r))
	assert.JSONEq(t, `[{"entityName":"Kim","addedObservations":["writes tests"]}]`, resultText(t, r))

	r = call(t, list, "add_observations", map[string]interface{}{
		"observations": []any{map[string]any{"entityName": "Nobody", "contents": []any{"x"}}},
	})
	assert.True(t, r.IsError)
	assert.Contains(t, resultText(t, r), "Error: ")

	r = call(t, list, "search_nodes", map[string]interface{}{"query": "TESTS"})
	var graph memory.KnowledgeGraph
	require.NoError(t, json.Unmarshal([]byte(resultText(t, r)), &graph))
	require.Len(t, graph.Entities, 1)
	assert.Equal(t, "Kim", graph.Entities[0].Name)

	r = call(t, list, "open_nodes", map[string]interface{}{"names": []any{"Kim", "devmcp"}})
	graph = memory.KnowledgeGraph{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, r)), &graph))
	assert.Len(t, graph.Entities, 2)
	assert.Len(t, graph.Relations, 1)

	r = call(t, list, "delete_observations", map[string]interface{}{
		"deletions": []any{map[string]any{"entityName": "Kim", "observations": []any{"likes go"}}},
	})
	assert.Equal(t, "Observations deleted successfully", resultText(t, r))

	r = call(t, list, "delete_relations", map[string]interface{}{
		"relations": []any{map[string]any{"from": "Kim", "to": "devmcp", "relationType": "maintains"}},
	})
	assert.Equal(t, "Relations deleted successfully", resultText(t, r))

	r = call(t, list, "delete_entities", map[string]interface{}{"entityNames": []any{"devmcp"}})
	assert.Equal(t, "Entities deleted successfully", resultText(t, r))

	r = call(t, list, "read_graph", nil)
	graph = memory.KnowledgeGraph{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, r)), &graph))
	require.Len(t, graph.Entities, 1)
	assert.Equal(t, []string{"writes tests"}, graph.Entities[0].Observations)
	assert.Empty(t, graph.Relations)
}

func TestCreateEntities_ObservationsOptional(t *testing.T) {
	list := MemoryTools(memory.NewStore(filepath.Join(t.TempDir(), "memory.json")))

	r := call(t, list, "create_entities", map[string]interface{}{
		"entities": []any{
			map[string]any{"name": "Lee", "entityType": "person"},
			map[string]any{"name": "Bad", "entityType": "person", "observations": []any{"ok", 1.0}},
			map[string]any{"name": "Null", "entityType": "person", "observations": nil},
		},
	})
	require.False(t, r.IsError, resultText(t, r))

	var created []memory.Entity
	require.NoError(t, json.Unmarshal([]byte(resultText(t, r)), &created))
	require.Len(t, created, 1)
	assert.Equal(t, "Lee", created[0].Name)
	assert.Empty(t, created[0].Observations)

	r = call(t, list, "open_nodes", map[string]interface{}{"names": []any{"Lee"}})
	var graph memory.KnowledgeGraph
	require.NoError(t, json.Unmarshal([]byte(resultText(t, r)), &graph))
	require.Len(t, graph.Entities, 1)
}

func TestMemoryTools_MissingArguments(t *testing.T) {
	list := MemoryTools(memory.NewStore(filepath.Join(t.TempDir(), "memory.json")))

	for tool, msg := range map[string]string{
		"create_entities":     "Missing 'entities'",
		"create_relations":    "Missing 'relations'",
		"add_observations":    "Missing 'observations'",
		"delete_entities":     "Missing 'entityNames'",
		"delete_observations": "Missing 'deletions'",
		"delete_relations":    "Missing 'relations'",
		"search_nodes":        "Missing 'query'",
		"open_nodes":          "Missing 'names'",
	} {
		r := call(t, list, tool, map[string]interface{}{"query": "  "})
		assert.True(t, r.IsError, tool)
		assert.Equal(t, msg, resultText(t, r), tool)
	}
}
