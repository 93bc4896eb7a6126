package memory

import (
	"encoding/json"
	"errors"
)

var ErrEntityNotFound = errors.New("entity not found")

type Entity struct {
	Name         string   `json:"name"`
	EntityType   string   `json:"entityType"`
	Observations []string `json:"observations"`
}

type Relation struct {
	From         string `json:"from"`
	To           string `json:"to"`
	RelationType string `json:"relationType"`
}

type KnowledgeGraph struct {
	Entities  []*Entity   `json:"entities"`
	Relations []*Relation `json:"relations"`
}

type ObservationRequest struct {
	EntityName string   `json:"entityName"`
	Contents   []string `json:"contents"`
}

type ObservationResult struct {
	EntityName        string   `json:"entityName"`
	AddedObservations []string `json:"addedObservations"`
}

type DeleteObservationsRequest struct {
	EntityName   string   `json:"entityName"`
	Observations []string `json:"observations"`
}

const (
	lineTypeEntity   = "entity"
	lineTypeRelation = "relation"
)

// jsonLineItem is one line of the graph file. Pointers tell a missing field
// apart from an empty one.
type jsonLineItem struct {
	Type         string   `json:"type"`
	Name         *string  `json:"name,omitempty"`
	EntityType   *string  `json:"entityType,omitempty"`
	Observations []string `json:"observations,omitempty"`
	From         *string  `json:"from,omitempty"`
	To           *string  `json:"to,omitempty"`
	RelationType *string  `json:"relationType,omitempty"`
}

type entityLine struct {
	Type         string   `json:"type"`
	Name         string   `json:"name"`
	EntityType   string   `json:"entityType"`
	Observations []string `json:"observations"`
}

type relationLine struct {
	Type         string `json:"type"`
	From         string `json:"from"`
	To           string `json:"to"`
	RelationType string `json:"relationType"`
}

// decodeLine parses one line into the graph. Lines that are malformed, of an
// unknown type or missing required fields are ignored.
func decodeLine(graph *KnowledgeGraph, line []byte) {
	var item jsonLineItem
	if err := json.Unmarshal(line, &item); err != nil {
		return
	}

	switch item.Type {
	case lineTypeEntity:
		if item.Name == nil || item.EntityType == nil {
			return
		}
		observations := item.Observations
		if observations == nil {
			observations = []string{}
		}
		graph.Entities = append(graph.Entities, &Entity{
			Name:         *item.Name,
			EntityType:   *item.EntityType,
			Observations: observations,
		})
	case lineTypeRelation:
		if item.From == nil || item.To == nil || item.RelationType == nil {
			return
		}
		graph.Relations = append(graph.Relations, &Relation{
			From:         *item.From,
			To:           *item.To,
			RelationType: *item.RelationType,
		})
	}
}

func encodeEntity(e *Entity) ([]byte, error) {
	observations := e.Observations
	if observations == nil {
		observations = []string{}
	}
	return json.Marshal(entityLine{
		Type:         lineTypeEntity,
		Name:         e.Name,
		EntityType:   e.EntityType,
		Observations: observations,
	})
}

func encodeRelation(r *Relation) ([]byte, error) {
	return json.Marshal(relationLine{
		Type:         lineTypeRelation,
		From:         r.From,
		To:           r.To,
		RelationType: r.RelationType,
	})
}
