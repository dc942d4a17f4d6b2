// Package export writes extraction results to downstream graph stores.
// CSV exporters produce bulk-import files for Neo4j and Amazon Neptune;
// Neo4jLoader writes directly into a running Neo4j instance.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/docugraph/docugraph/pkg/types"
)

// CSVDialect selects the header convention for bulk-import CSV files.
type CSVDialect string

const (
	// DialectNeo4j matches neo4j-admin import headers (fieldname:ID etc).
	DialectNeo4j CSVDialect = "neo4j"
	// DialectNeptune matches the Neptune bulk loader Gremlin CSV format.
	DialectNeptune CSVDialect = "neptune"
)

// WriteNodesCSV writes the canonical entities as a bulk-import node file.
func WriteNodesCSV(w io.Writer, dialect CSVDialect, nodes []*types.CanonicalEntity) error {
	cw := csv.NewWriter(w)

	var header []string
	switch dialect {
	case DialectNeo4j:
		header = []string{"id:ID", ":LABEL", "name", "source_location", "properties"}
	case DialectNeptune:
		header = []string{"~id", "~label", "name:String", "source_location:String", "properties:String"}
	default:
		return fmt.Errorf("unknown CSV dialect %q", dialect)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing node header: %w", err)
	}

	for _, node := range nodes {
		props, err := encodeProperties(node.Properties)
		if err != nil {
			return fmt.Errorf("encoding properties for node %s: %w", node.StableID, err)
		}
		record := []string{node.StableID, node.Type, node.NormalizedName, node.SourceLocation, props}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing node %s: %w", node.StableID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteRelationshipsCSV writes the resolved relationships as a bulk-import
// edge file.
func WriteRelationshipsCSV(w io.Writer, dialect CSVDialect, relationships []*types.ResolvedRelationship) error {
	cw := csv.NewWriter(w)

	var header []string
	switch dialect {
	case DialectNeo4j:
		header = []string{"id", ":START_ID", ":END_ID", ":TYPE", "source_location", "properties"}
	case DialectNeptune:
		header = []string{"~id", "~from", "~to", "~label", "source_location:String", "properties:String"}
	default:
		return fmt.Errorf("unknown CSV dialect %q", dialect)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing relationship header: %w", err)
	}

	for _, rel := range relationships {
		props, err := encodeProperties(rel.Properties)
		if err != nil {
			return fmt.Errorf("encoding properties for relationship %s: %w", rel.StableID, err)
		}
		record := []string{rel.StableID, rel.SourceStableID, rel.TargetStableID, rel.Type, rel.SourceLocation, props}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing relationship %s: %w", rel.StableID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// encodeProperties serializes a property map as JSON. encoding/json emits
// map keys in sorted order, so output is stable across runs.
func encodeProperties(props map[string]interface{}) (string, error) {
	if len(props) == 0 {
		return "", nil
	}
	data, err := json.Marshal(props)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
