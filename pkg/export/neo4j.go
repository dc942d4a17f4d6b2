package export

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/docugraph/docugraph/pkg/types"
)

// Neo4jLoader writes extraction results directly into a Neo4j database.
type Neo4jLoader struct {
	client   neo4j.DriverWithContext
	database string
	logger   *slog.Logger
}

// NewNeo4jLoader creates a loader connected to the given Neo4j instance.
func NewNeo4jLoader(uri, username, password, database string, logger *slog.Logger) (*Neo4jLoader, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}
	if database == "" {
		database = "neo4j"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Neo4jLoader{
		client:   driver,
		database: database,
		logger:   logger,
	}, nil
}

// Load writes all nodes and relationships of the result. Nodes are merged on
// their stable identifier so re-loading the same result is idempotent.
func (l *Neo4jLoader) Load(ctx context.Context, result *types.ExtractionResult) error {
	session := l.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: l.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, node := range result.Nodes {
			query := `
				MERGE (n:Entity {stable_id: $stableID})
				SET n.name = $name,
				    n.entity_type = $entityType,
				    n.source_location = $sourceLocation,
				    n += $properties
			`
			_, err := tx.Run(ctx, query, map[string]any{
				"stableID":       node.StableID,
				"name":           node.NormalizedName,
				"entityType":     node.Type,
				"sourceLocation": node.SourceLocation,
				"properties":     sanitizeProperties(node.Properties),
			})
			if err != nil {
				return nil, fmt.Errorf("merging node %s: %w", node.StableID, err)
			}
		}

		for _, rel := range result.Relationships {
			query := `
				MATCH (source:Entity {stable_id: $sourceID})
				MATCH (target:Entity {stable_id: $targetID})
				MERGE (source)-[r:RELATES_TO {stable_id: $stableID}]->(target)
				SET r.relationship_type = $relType,
				    r.source_location = $sourceLocation,
				    r += $properties
			`
			_, err := tx.Run(ctx, query, map[string]any{
				"stableID":       rel.StableID,
				"sourceID":       rel.SourceStableID,
				"targetID":       rel.TargetStableID,
				"relType":        rel.Type,
				"sourceLocation": rel.SourceLocation,
				"properties":     sanitizeProperties(rel.Properties),
			})
			if err != nil {
				return nil, fmt.Errorf("merging relationship %s: %w", rel.StableID, err)
			}
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	l.logger.Info("loaded extraction result into neo4j",
		"database", l.database,
		"nodes", len(result.Nodes),
		"relationships", len(result.Relationships))
	return nil
}

// CreateIndices creates the stable identifier constraint used by Load.
func (l *Neo4jLoader) CreateIndices(ctx context.Context) error {
	session := l.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: l.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `CREATE CONSTRAINT entity_stable_id IF NOT EXISTS
			FOR (n:Entity) REQUIRE n.stable_id IS UNIQUE`
		_, err := tx.Run(ctx, query, nil)
		return nil, err
	})
	return err
}

// Close shuts down the underlying driver.
func (l *Neo4jLoader) Close(ctx context.Context) error {
	return l.client.Close(ctx)
}

// sanitizeProperties drops values Neo4j cannot store as properties (nested
// maps and slices of mixed types are flattened to their JSON text).
func sanitizeProperties(props map[string]interface{}) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		switch v.(type) {
		case string, bool, int, int64, float64, float32:
			out[k] = v
		case nil:
			// skip
		default:
			out[k] = fmt.Sprintf("%v", v)
		}
	}
	return out
}
