// Package ontology defines the entity and relationship type vocabulary used
// to steer extraction. Ontologies are stored as YAML and can either be
// written by hand or inferred from sample text by a language model.
package ontology

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmptyOntology is returned when an ontology defines no entity types.
var ErrEmptyOntology = errors.New("ontology defines no entity types")

// EntityType describes one kind of entity the extractor should look for.
type EntityType struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Properties  []string `yaml:"properties,omitempty" json:"properties,omitempty"`
}

// RelationshipType describes one kind of relationship between entity types.
type RelationshipType struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	SourceTypes []string `yaml:"source_types,omitempty" json:"source_types,omitempty"`
	TargetTypes []string `yaml:"target_types,omitempty" json:"target_types,omitempty"`
}

// Ontology is the full extraction vocabulary.
type Ontology struct {
	Name              string             `yaml:"name,omitempty" json:"name,omitempty"`
	EntityTypes       []EntityType       `yaml:"entity_types" json:"entity_types"`
	RelationshipTypes []RelationshipType `yaml:"relationship_types" json:"relationship_types"`
}

// Validate checks the ontology is usable for extraction.
func (o *Ontology) Validate() error {
	if len(o.EntityTypes) == 0 {
		return ErrEmptyOntology
	}
	for _, et := range o.EntityTypes {
		if strings.TrimSpace(et.Name) == "" {
			return fmt.Errorf("entity type with empty name")
		}
	}
	for _, rt := range o.RelationshipTypes {
		if strings.TrimSpace(rt.Name) == "" {
			return fmt.Errorf("relationship type with empty name")
		}
	}
	return nil
}

// PromptText renders the ontology as the plain-text type listing injected
// into extraction prompts.
func (o *Ontology) PromptText() string {
	var b strings.Builder

	b.WriteString("Entity types:\n")
	for _, et := range o.EntityTypes {
		b.WriteString("- ")
		b.WriteString(et.Name)
		if et.Description != "" {
			b.WriteString(": ")
			b.WriteString(et.Description)
		}
		if len(et.Properties) > 0 {
			b.WriteString(" (properties: ")
			b.WriteString(strings.Join(et.Properties, ", "))
			b.WriteString(")")
		}
		b.WriteString("\n")
	}

	if len(o.RelationshipTypes) > 0 {
		b.WriteString("Relationship types:\n")
		for _, rt := range o.RelationshipTypes {
			b.WriteString("- ")
			b.WriteString(rt.Name)
			if et := rt.Description; et != "" {
				b.WriteString(": ")
				b.WriteString(et)
			}
			if len(rt.SourceTypes) > 0 && len(rt.TargetTypes) > 0 {
				b.WriteString(fmt.Sprintf(" (%s -> %s)",
					strings.Join(rt.SourceTypes, "|"), strings.Join(rt.TargetTypes, "|")))
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

// Load reads an ontology from a YAML file.
func Load(path string) (*Ontology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ontology file: %w", err)
	}
	return Parse(data)
}

// Parse decodes an ontology from YAML bytes.
func Parse(data []byte) (*Ontology, error) {
	var o Ontology
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("parsing ontology: %w", err)
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return &o, nil
}

// Save writes the ontology to a YAML file.
func (o *Ontology) Save(path string) error {
	data, err := yaml.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshaling ontology: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing ontology file: %w", err)
	}
	return nil
}
