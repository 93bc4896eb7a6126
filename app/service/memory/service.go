package memory

import (
	"bufio"
	"bytes"
	"devmcp/app/config"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/elliotchance/pie/v2"
	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/samber/oops"
)

const defaultFileName = "memory.json"

const maxLineSize = 16 * 1024 * 1024

// Store keeps the knowledge graph in one newline-delimited JSON file. Every
// operation reads the whole file; mutations rewrite it in full.
//
// The lock only serializes callers inside this process. Two processes sharing
// one file can still lose each other's writes.
type Store struct {
	path string
	mu   sync.RWMutex
}

func New(di *do.Injector) (*Store, error) {
	cfg := do.MustInvoke[*config.Config](di)

	store := NewStore(ResolvePath(cfg.Memory.FilePath))
	slog.Info("Memory store ready", slog.String("path", store.path))

	return store, nil
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// ResolvePath makes a configured graph path absolute. Relative paths and the
// empty default resolve against the executable directory, falling back to the
// working directory when the executable cannot be located.
func ResolvePath(configured string) string {
	if configured == "" {
		configured = defaultFileName
	}
	if filepath.IsAbs(configured) {
		return filepath.Clean(configured)
	}

	return filepath.Join(baseDir(), configured)
}

func baseDir() string {
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}

	if wd, err := os.Getwd(); err == nil {
		return wd
	}

	return "."
}

func (s *Store) loadGraph() (*KnowledgeGraph, error) {
	graph := &KnowledgeGraph{
		Entities:  []*Entity{},
		Relations: []*Relation{},
	}

	file, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return graph, nil
	}
	if err != nil {
		return nil, oops.In("memory").With("path", s.path).Errorf("failed to open memory file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		decodeLine(graph, line)
	}

	if err = scanner.Err(); err != nil {
		return nil, oops.In("memory").With("path", s.path).Errorf("error reading memory file: %w", err)
	}

	return graph, nil
}

// saveGraph writes entities then relations, one per line, to a temp file in
// the target directory and renames it over the graph file.
func (s *Store) saveGraph(graph *KnowledgeGraph) error {
	lines := make([][]byte, 0, len(graph.Entities)+len(graph.Relations))
	for _, e := range graph.Entities {
		data, err := encodeEntity(e)
		if err != nil {
			return oops.In("memory").Errorf("failed to marshal entity: %w", err)
		}
		lines = append(lines, data)
	}
	for _, r := range graph.Relations {
		data, err := encodeRelation(r)
		if err != nil {
			return oops.In("memory").Errorf("failed to marshal relation: %w", err)
		}
		lines = append(lines, data)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return oops.In("memory").With("dir", dir).Errorf("failed to create memory dir: %w", err)
	}

	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(s.path), uuid.NewString()))
	if err := os.WriteFile(tmpPath, bytes.Join(lines, []byte("\n")), 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return oops.In("memory").With("path", tmpPath).Errorf("failed to write memory file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return oops.In("memory").With("path", s.path).Errorf("failed to replace memory file: %w", err)
	}

	return nil
}

// CreateEntities appends entities whose names are not stored yet and returns
// only those. Repeated names inside the input keep the first occurrence.
func (s *Store) CreateEntities(entities []Entity) ([]*Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	graph, err := s.loadGraph()
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(graph.Entities))
	for _, e := range graph.Entities {
		known[e.Name] = struct{}{}
	}

	created := make([]*Entity, 0, len(entities))
	for _, e := range entities {
		if _, ok := known[e.Name]; ok {
			continue
		}
		known[e.Name] = struct{}{}

		entity := &Entity{
			Name:         e.Name,
			EntityType:   e.EntityType,
			Observations: dedupe(e.Observations),
		}
		created = append(created, entity)
	}

	if len(created) == 0 {
		return created, nil
	}

	graph.Entities = append(graph.Entities, created...)
	if err = s.saveGraph(graph); err != nil {
		return nil, err
	}

	slog.Debug("Created entities", slog.Int("count", len(created)))

	return created, nil
}

// CreateRelations appends relations not stored yet, matched on the
// from/to/type triple. Endpoints are not checked against stored entities.
func (s *Store) CreateRelations(relations []Relation) ([]*Relation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	graph, err := s.loadGraph()
	if err != nil {
		return nil, err
	}

	known := make(map[Relation]struct{}, len(graph.Relations))
	for _, r := range graph.Relations {
		known[*r] = struct{}{}
	}

	created := make([]*Relation, 0, len(relations))
	for _, r := range relations {
		if _, ok := known[r]; ok {
			continue
		}
		known[r] = struct{}{}

		relation := r
		created = append(created, &relation)
	}

	if len(created) == 0 {
		return created, nil
	}

	graph.Relations = append(graph.Relations, created...)
	if err = s.saveGraph(graph); err != nil {
		return nil, err
	}

	slog.Debug("Created relations", slog.Int("count", len(created)))

	return created, nil
}

// AddObservations appends observations not yet present on each entity. All
// names are resolved before anything changes: one unknown name fails the
// whole call with ErrEntityNotFound and the file is left untouched.
func (s *Store) AddObservations(requests []ObservationRequest) ([]ObservationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	graph, err := s.loadGraph()
	if err != nil {
		return nil, err
	}

	targets := make([]*Entity, len(requests))
	for i, req := range requests {
		idx := pie.FindFirstUsing(graph.Entities, func(e *Entity) bool {
			return e.Name == req.EntityName
		})
		if idx < 0 {
			return nil, oops.
				In("memory").
				Code("entity_not_found").
				With("entity", req.EntityName).
				Errorf("%w: %s", ErrEntityNotFound, req.EntityName)
		}
		targets[i] = graph.Entities[idx]
	}

	results := make([]ObservationResult, 0, len(requests))
	changed := false
	for i, req := range requests {
		entity := targets[i]

		added := make([]string, 0, len(req.Contents))
		for _, content := range req.Contents {
			if pie.Contains(entity.Observations, content) {
				continue
			}
			entity.Observations = append(entity.Observations, content)
			added = append(added, content)
		}
		changed = changed || len(added) > 0

		results = append(results, ObservationResult{
			EntityName:        req.EntityName,
			AddedObservations: added,
		})
	}

	if changed {
		if err = s.saveGraph(graph); err != nil {
			return nil, err
		}
	}

	return results, nil
}

// DeleteEntities removes the named entities and every relation touching
// them. Unknown names are ignored.
func (s *Store) DeleteEntities(names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	graph, err := s.loadGraph()
	if err != nil {
		return err
	}

	doomed := toSet(names)

	graph.Entities = pie.Filter(graph.Entities, func(e *Entity) bool {
		_, ok := doomed[e.Name]
		return !ok
	})
	graph.Relations = pie.Filter(graph.Relations, func(r *Relation) bool {
		_, fromDoomed := doomed[r.From]
		_, toDoomed := doomed[r.To]
		return !fromDoomed && !toDoomed
	})

	if err = s.saveGraph(graph); err != nil {
		return err
	}

	slog.Debug("Deleted entities", slog.Any("names", names))

	return nil
}

// DeleteObservations removes the listed observations. Unknown entities and
// observations are ignored.
func (s *Store) DeleteObservations(deletions []DeleteObservationsRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	graph, err := s.loadGraph()
	if err != nil {
		return err
	}

	for _, d := range deletions {
		idx := pie.FindFirstUsing(graph.Entities, func(e *Entity) bool {
			return e.Name == d.EntityName
		})
		if idx < 0 {
			continue
		}

		entity := graph.Entities[idx]
		doomed := toSet(d.Observations)
		entity.Observations = pie.Filter(entity.Observations, func(o string) bool {
			_, ok := doomed[o]
			return !ok
		})
	}

	return s.saveGraph(graph)
}

// DeleteRelations removes relations matching the exact triple.
func (s *Store) DeleteRelations(relations []Relation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	graph, err := s.loadGraph()
	if err != nil {
		return err
	}

	doomed := make(map[Relation]struct{}, len(relations))
	for _, r := range relations {
		doomed[r] = struct{}{}
	}

	graph.Relations = pie.Filter(graph.Relations, func(r *Relation) bool {
		_, ok := doomed[*r]
		return !ok
	})

	return s.saveGraph(graph)
}

func (s *Store) ReadGraph() (*KnowledgeGraph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loadGraph()
}

// SearchNodes matches query case-insensitively against entity names, types
// and observations. Only relations between matched entities are returned.
func (s *Store) SearchNodes(query string) (*KnowledgeGraph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	graph, err := s.loadGraph()
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(query)
	matches := func(v string) bool {
		return strings.Contains(strings.ToLower(v), query)
	}

	entities := pie.Filter(graph.Entities, func(e *Entity) bool {
		if matches(e.Name) || matches(e.EntityType) {
			return true
		}
		return pie.FindFirstUsing(e.Observations, matches) >= 0
	})

	result := subgraph(graph, entities)
	slog.Debug("Search completed",
		slog.String("query", query),
		slog.Int("entities_count", len(result.Entities)),
	)

	return result, nil
}

// OpenNodes returns the named entities and the relations between them.
func (s *Store) OpenNodes(names []string) (*KnowledgeGraph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	graph, err := s.loadGraph()
	if err != nil {
		return nil, err
	}

	wanted := toSet(names)
	entities := pie.Filter(graph.Entities, func(e *Entity) bool {
		_, ok := wanted[e.Name]
		return ok
	})

	return subgraph(graph, entities), nil
}

func subgraph(graph *KnowledgeGraph, entities []*Entity) *KnowledgeGraph {
	names := make(map[string]struct{}, len(entities))
	for _, e := range entities {
		names[e.Name] = struct{}{}
	}

	relations := pie.Filter(graph.Relations, func(r *Relation) bool {
		_, fromOK := names[r.From]
		_, toOK := names[r.To]
		return fromOK && toOK
	})

	if entities == nil {
		entities = []*Entity{}
	}
	if relations == nil {
		relations = []*Relation{}
	}

	return &KnowledgeGraph{
		Entities:  entities,
		Relations: relations,
	}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func dedupe(values []string) []string {
	result := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
