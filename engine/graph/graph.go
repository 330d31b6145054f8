// Package graph persists extracted connectivity into Neo4j: one node per
// connector, splice or ground point, one CONNECTS_TO edge per inferred wire.
package graph

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/WessleyAI/wiretrace/engine/domain"
)

// Node is one endpoint in the persisted graph.
type Node struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"` // connector, splice, ground
	Diagram string `json:"diagram"`
}

// Edge is one persisted wire.
type Edge struct {
	ID        string `json:"id"`
	FromID    string `json:"from_id"`
	FromPin   string `json:"from_pin"`
	ToID      string `json:"to_id"`
	ToPin     string `json:"to_pin"`
	WireDM    string `json:"wire_dm"`
	WireColor string `json:"wire_color"`
}

// edgeNamespace keys deterministic edge IDs: re-running extraction on the
// same diagram produces the same UUIDs, so MERGE is a true upsert.
var edgeNamespace = uuid.MustParse("8f0c2a4e-5b1d-4c11-9a76-3d2a9b7e0c55")

// EdgeID derives the stable identity of a connection within a diagram.
func EdgeID(diagram string, c domain.Connection) string {
	name := diagram + "|" + c.FromID + "," + c.FromPin + "->" + c.ToID + "," + c.ToPin
	return uuid.NewSHA1(edgeNamespace, []byte(name)).String()
}

func nodeKind(id string) string {
	switch domain.Classify(id) {
	case domain.KindSplice:
		return "splice"
	case domain.KindGround:
		return "ground"
	default:
		return "connector"
	}
}

// Store provides graph persistence on a Neo4j driver.
type Store struct {
	driver neo4j.DriverWithContext
}

func New(driver neo4j.DriverWithContext) *Store {
	return &Store{driver: driver}
}

// SaveDiagram upserts one diagram's full connection set in a single write
// transaction.
func (s *Store) SaveDiagram(ctx context.Context, diagram string, connections []domain.Connection) error {
	sess := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	_, err := sess.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, c := range connections {
			for _, id := range []string{c.FromID, c.ToID} {
				if _, err := tx.Run(ctx,
					`MERGE (n:Point {id: $id, diagram: $diagram}) SET n.kind = $kind`,
					map[string]any{"id": id, "diagram": diagram, "kind": nodeKind(id)},
				); err != nil {
					return nil, err
				}
			}
			if _, err := tx.Run(ctx,
				`MATCH (a:Point {id: $from, diagram: $diagram}), (b:Point {id: $to, diagram: $diagram})
				 MERGE (a)-[r:CONNECTS_TO {id: $id}]->(b)
				 SET r.from_pin = $from_pin, r.to_pin = $to_pin,
				     r.wire_dm = $wire_dm, r.wire_color = $wire_color`,
				map[string]any{
					"id":         EdgeID(diagram, c),
					"diagram":    diagram,
					"from":       c.FromID,
					"from_pin":   c.FromPin,
					"to":         c.ToID,
					"to_pin":     c.ToPin,
					"wire_dm":    c.WireDM,
					"wire_color": c.WireColor,
				},
			); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("save diagram %q: %w", diagram, err)
	}
	return nil
}

// Connections reads a diagram's persisted wires back.
func (s *Store) Connections(ctx context.Context, diagram string) ([]domain.Connection, error) {
	sess := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	result, err := sess.Run(ctx,
		`MATCH (a:Point {diagram: $diagram})-[r:CONNECTS_TO]->(b:Point)
		 RETURN a.id AS from_id, r.from_pin AS from_pin,
		        b.id AS to_id, r.to_pin AS to_pin,
		        r.wire_dm AS wire_dm, r.wire_color AS wire_color
		 ORDER BY from_id, from_pin, to_id, to_pin`,
		map[string]any{"diagram": diagram})
	if err != nil {
		return nil, err
	}

	var out []domain.Connection
	for result.Next(ctx) {
		rec := result.Record()
		out = append(out, domain.Connection{
			FromID:    recordStr(rec, "from_id"),
			FromPin:   recordStr(rec, "from_pin"),
			ToID:      recordStr(rec, "to_id"),
			ToPin:     recordStr(rec, "to_pin"),
			WireDM:    recordStr(rec, "wire_dm"),
			WireColor: recordStr(rec, "wire_color"),
		})
	}
	return out, result.Err()
}

// Neighbors returns the endpoints within depth hops of a node.
func (s *Store) Neighbors(ctx context.Context, diagram, id string, depth int) ([]Node, error) {
	if depth <= 0 {
		depth = 1
	}
	sess := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := fmt.Sprintf(
		`MATCH (start:Point {id: $id, diagram: $diagram})-[*1..%d]-(n:Point)
		 WHERE n.id <> $id
		 RETURN DISTINCT n ORDER BY n.id`, depth)
	result, err := sess.Run(ctx, cypher, map[string]any{"id": id, "diagram": diagram})
	if err != nil {
		return nil, err
	}

	var out []Node
	for result.Next(ctx) {
		node, _, err := neo4j.GetRecordValue[dbtype.Node](result.Record(), "n")
		if err != nil {
			return nil, err
		}
		out = append(out, Node{
			ID:      strProp(node.Props, "id"),
			Kind:    strProp(node.Props, "kind"),
			Diagram: strProp(node.Props, "diagram"),
		})
	}
	return out, result.Err()
}

// TracePath finds the shortest electrical path between two endpoints.
func (s *Store) TracePath(ctx context.Context, diagram, fromID, toID string) ([]Node, error) {
	sess := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	result, err := sess.Run(ctx,
		`MATCH p = shortestPath((a:Point {id: $from, diagram: $diagram})-[*]-(b:Point {id: $to, diagram: $diagram}))
		 RETURN nodes(p) AS nodes`,
		map[string]any{"from": fromID, "to": toID, "diagram": diagram})
	if err != nil {
		return nil, err
	}
	if !result.Next(ctx) {
		return nil, fmt.Errorf("no path from %s to %s", fromID, toID)
	}
	nodesVal, ok := result.Record().Get("nodes")
	if !ok {
		return nil, fmt.Errorf("no nodes in path result")
	}
	nodeList, ok := nodesVal.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected nodes type %T", nodesVal)
	}

	var out []Node
	for _, raw := range nodeList {
		node, ok := raw.(dbtype.Node)
		if !ok {
			continue
		}
		out = append(out, Node{
			ID:      strProp(node.Props, "id"),
			Kind:    strProp(node.Props, "kind"),
			Diagram: strProp(node.Props, "diagram"),
		})
	}
	return out, nil
}

func strProp(props map[string]any, key string) string {
	if s, ok := props[key].(string); ok {
		return s
	}
	return ""
}

func recordStr(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
